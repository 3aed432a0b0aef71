package core

import (
	"image"
	"image/color"

	"github.com/pkg/errors"
)

// Image is a 4-channel float32 render target. It backs both the three
// G-buffer planes and the final tone-mapped colour output; the alpha
// channel of a G-buffer plane is repurposed storage, never transparency.
type Image struct {
	Width  int
	Height int
	Pix    []float32 // RGBA interleaved, len = Width*Height*4
}

// NewImage allocates a zeroed float image. Non-positive dimensions are a
// resource error surfaced to the caller.
func NewImage(width, height int) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("image: invalid dimensions %dx%d", width, height)
	}
	return &Image{
		Width:  width,
		Height: height,
		Pix:    make([]float32, width*height*4),
	}, nil
}

// At fetches the texel at an integer pixel coordinate. Exact nearest-pixel
// fetch: no filtering, no wrapping. Out-of-bounds coordinates return zero.
func (im *Image) At(x, y int) [4]float32 {
	if x < 0 || y < 0 || x >= im.Width || y >= im.Height {
		return [4]float32{}
	}
	i := (y*im.Width + x) * 4
	return [4]float32{im.Pix[i], im.Pix[i+1], im.Pix[i+2], im.Pix[i+3]}
}

// Set stores a texel at an integer pixel coordinate. Out-of-bounds writes
// are dropped.
func (im *Image) Set(x, y int, v [4]float32) {
	if x < 0 || y < 0 || x >= im.Width || y >= im.Height {
		return
	}
	i := (y*im.Width + x) * 4
	im.Pix[i] = v[0]
	im.Pix[i+1] = v[1]
	im.Pix[i+2] = v[2]
	im.Pix[i+3] = v[3]
}

// Clear fills every texel with v.
func (im *Image) Clear(v [4]float32) {
	for i := 0; i < len(im.Pix); i += 4 {
		im.Pix[i] = v[0]
		im.Pix[i+1] = v[1]
		im.Pix[i+2] = v[2]
		im.Pix[i+3] = v[3]
	}
}

// ToRGBA converts the float image to an 8-bit image.RGBA, clamping each
// channel to [0,1]. Used by the demo host to write PNG output.
func (im *Image) ToRGBA() *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, im.Width, im.Height))
	for y := 0; y < im.Height; y++ {
		for x := 0; x < im.Width; x++ {
			t := im.At(x, y)
			out.SetRGBA(x, y, color.RGBA{
				R: floatToByte(t[0]),
				G: floatToByte(t[1]),
				B: floatToByte(t[2]),
				A: floatToByte(t[3]),
			})
		}
	}
	return out
}

func floatToByte(f float32) uint8 {
	if f <= 0 {
		return 0
	}
	if f >= 1 {
		return 255
	}
	return uint8(f*255 + 0.5)
}
