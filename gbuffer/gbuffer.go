// Package gbuffer defines the intermediate image set the geometry pass
// writes and the lighting resolver reads. The channel packing here is the
// binding contract between the two passes: both depend on this package
// rather than on an implicit texture-channel convention.
package gbuffer

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"deferred-engine/core"
	"deferred-engine/lighting"
)

// Texel is one pixel's worth of G-buffer data across the three planes.
// The fourth channel of each plane is repurposed storage:
//
//	Position: world x, y, z, ambient occlusion
//	Normal:   world nx, ny, nz, roughness
//	Albedo:   r, g, b, metallic
type Texel struct {
	Position [4]float32
	Normal   [4]float32
	Albedo   [4]float32
}

// Encode packs a surface point into the fixed channel layout.
func Encode(s lighting.Surface) Texel {
	return Texel{
		Position: [4]float32{s.Position.X(), s.Position.Y(), s.Position.Z(), s.AO},
		Normal:   [4]float32{s.Normal.X(), s.Normal.Y(), s.Normal.Z(), s.Roughness},
		Albedo:   [4]float32{s.Albedo.X(), s.Albedo.Y(), s.Albedo.Z(), s.Metallic},
	}
}

// Decode unpacks a texel back into a surface point. The normal is returned
// as stored; the shading core renormalizes it.
func Decode(t Texel) lighting.Surface {
	return lighting.Surface{
		Position:  mgl32.Vec3{t.Position[0], t.Position[1], t.Position[2]},
		AO:        t.Position[3],
		Normal:    mgl32.Vec3{t.Normal[0], t.Normal[1], t.Normal[2]},
		Roughness: t.Normal[3],
		Albedo:    mgl32.Vec3{t.Albedo[0], t.Albedo[1], t.Albedo[2]},
		Metallic:  t.Albedo[3],
	}
}

// GBuffer owns the three attribute planes plus the depth buffer used to
// resolve fragment ordering during the geometry pass. All planes share
// pixel-for-pixel correspondence; they are allocated together, resized
// together, and overwritten every frame.
type GBuffer struct {
	Position *core.Image
	Normal   *core.Image
	Albedo   *core.Image

	depth  []float32
	width  int
	height int
}

// New allocates a G-buffer sized to the viewport. Allocation failure
// (non-positive dimensions) is fatal to the frame and surfaced to the host.
func New(width, height int) (*GBuffer, error) {
	g := &GBuffer{}
	if err := g.Resize(width, height); err != nil {
		return nil, err
	}
	return g, nil
}

// Resize recreates all planes at the new pixel dimensions. This is a
// configuration change, not a per-frame event.
func (g *GBuffer) Resize(width, height int) error {
	pos, err := core.NewImage(width, height)
	if err != nil {
		return errors.Wrap(err, "gbuffer: position plane")
	}
	nrm, err := core.NewImage(width, height)
	if err != nil {
		return errors.Wrap(err, "gbuffer: normal plane")
	}
	alb, err := core.NewImage(width, height)
	if err != nil {
		return errors.Wrap(err, "gbuffer: albedo plane")
	}
	g.Position, g.Normal, g.Albedo = pos, nrm, alb
	g.depth = make([]float32, width*height)
	g.width, g.height = width, height
	g.Clear()
	return nil
}

func (g *GBuffer) Width() int  { return g.width }
func (g *GBuffer) Height() int { return g.height }

// Clear zeroes all planes and resets the depth buffer to the far plane.
func (g *GBuffer) Clear() {
	zero := [4]float32{}
	g.Position.Clear(zero)
	g.Normal.Clear(zero)
	g.Albedo.Clear(zero)
	for i := range g.depth {
		g.depth[i] = math32.MaxFloat32
	}
}

// Store writes a texel if the fragment passes the depth test (closer wins).
// It reports whether the write happened. Out-of-bounds fragments are
// dropped.
func (g *GBuffer) Store(x, y int, depth float32, t Texel) bool {
	if x < 0 || y < 0 || x >= g.width || y >= g.height {
		return false
	}
	i := y*g.width + x
	if depth >= g.depth[i] {
		return false
	}
	g.depth[i] = depth
	g.Position.Set(x, y, t.Position)
	g.Normal.Set(x, y, t.Normal)
	g.Albedo.Set(x, y, t.Albedo)
	return true
}

// DepthAt returns the stored depth for a pixel, or the far-plane value for
// coordinates outside the buffer.
func (g *GBuffer) DepthAt(x, y int) float32 {
	if x < 0 || y < 0 || x >= g.width || y >= g.height {
		return math32.MaxFloat32
	}
	return g.depth[y*g.width+x]
}

// TexelAt fetches one pixel across all three planes by integer coordinate.
// Exact nearest-pixel fetch; never filtered.
func (g *GBuffer) TexelAt(x, y int) Texel {
	return Texel{
		Position: g.Position.At(x, y),
		Normal:   g.Normal.At(x, y),
		Albedo:   g.Albedo.At(x, y),
	}
}

// Covered reports whether the geometry pass wrote this pixel, using the
// depth buffer rather than attribute contents so a legitimately black
// surface is not mistaken for background.
func (g *GBuffer) Covered(x, y int) bool {
	return g.DepthAt(x, y) < math32.MaxFloat32
}
