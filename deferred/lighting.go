package deferred

import (
	"github.com/pkg/errors"

	"deferred-engine/core"
	"deferred-engine/gbuffer"
	"deferred-engine/lighting"
)

// LightingPass is the full-screen resolve: no geometry input, every pixel
// reconstructed from the G-buffer and shaded independently.
type LightingPass struct {
	gb *gbuffer.GBuffer
}

func NewLightingPass(gb *gbuffer.GBuffer) *LightingPass {
	return &LightingPass{gb: gb}
}

// Resolve shades every pixel of the G-buffer into dst. Configuration is
// validated up front; by the time the pixel loop runs, only the fixed
// epsilons guard the numerics. The G-buffer must not be written while
// Resolve runs — pass ordering is the caller's barrier.
func (p *LightingPass) Resolve(lights *lighting.LightBlock, view lighting.View, dst *core.Image) error {
	if lights == nil {
		return errors.New("deferred: nil light block")
	}
	if err := view.Validate(); err != nil {
		return err
	}
	if dst.Width != p.gb.Width() || dst.Height != p.gb.Height() {
		return errors.Errorf("deferred: output %dx%d does not match G-buffer %dx%d",
			dst.Width, dst.Height, p.gb.Width(), p.gb.Height())
	}

	active := lights.Lights()
	parallelRows(p.gb.Height(), func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < dst.Width; x++ {
				s := gbuffer.Decode(p.gb.TexelAt(x, y))
				c := lighting.Shade(s, active, view)
				dst.Set(x, y, [4]float32{c.R, c.G, c.B, c.A})
			}
		}
	})
	return nil
}
