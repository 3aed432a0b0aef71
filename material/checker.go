package material

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"deferred-engine/core"
)

// Checker is the procedural variant: a two-colour check pattern driven by
// the surface coordinate. It supplies albedo only; the surface response
// parameters are fixed per instance.
type Checker struct {
	Colour1   core.Color
	Colour2   core.Color
	CheckSize float32
	CheckOn   bool

	// Fixed surface response for every cell of the pattern.
	Metallic  float32
	Roughness float32
	AO        float32
}

// NewChecker returns the floor checker from the deferred demo: light and
// dark grey cells at 60 checks per UV unit, fully rough dielectric.
func NewChecker() *Checker {
	return &Checker{
		Colour1:   core.Color{R: 0.9, G: 0.9, B: 0.9, A: 1.0},
		Colour2:   core.Color{R: 0.6, G: 0.6, B: 0.6, A: 1.0},
		CheckSize: 60,
		CheckOn:   true,
		Metallic:  0.0,
		Roughness: 0.6,
		AO:        1.0,
	}
}

// Sample evaluates the check pattern at uv. The cell test is floor of each
// scaled axis, summed, then parity: an even sum selects Colour2, odd
// Colour1. Flooring (not rounding) is load-bearing; any other quantisation
// shifts the cell boundary by up to half a cell.
func (c *Checker) Sample(uv mgl32.Vec2) Sample {
	colour := c.Colour1
	if c.CheckOn {
		cx := int(math32.Floor(uv.X() * c.CheckSize))
		cy := int(math32.Floor(uv.Y() * c.CheckSize))
		if (cx+cy)%2 == 0 {
			colour = c.Colour2
		}
	}
	return Sample{
		Albedo:    colourRGB(colour),
		Metallic:  c.Metallic,
		Roughness: c.Roughness,
		AO:        c.AO,
	}
}
