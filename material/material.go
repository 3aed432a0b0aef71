// Package material defines the surface material evaluators feeding the
// geometry pass. Exactly one evaluator variant is bound per draw call; the
// lighting resolver is agnostic to which one produced the G-buffer.
package material

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"deferred-engine/core"
)

// Sample is the evaluator output contract: everything the G-buffer stores
// about a surface point besides its position and normal.
type Sample struct {
	Albedo    mgl32.Vec3
	Metallic  float32
	Roughness float32
	AO        float32
}

// Evaluator maps a 2D surface coordinate to a material sample. Evaluators
// are pure and safe for concurrent use across fragments.
type Evaluator interface {
	Sample(uv mgl32.Vec2) Sample
}

// PBR is the fixed-parameter variant: one albedo/metallic/roughness/AO set
// for the whole surface.
type PBR struct {
	Albedo    mgl32.Vec3
	Metallic  float32
	Roughness float32
	AO        float32
}

// NewPBR validates the parameter set. A roughness of exactly zero makes the
// GGX distribution term singular; the lighting core does not self-clamp, so
// it is rejected here, at the boundary.
func NewPBR(albedo mgl32.Vec3, metallic, roughness, ao float32) (*PBR, error) {
	if roughness <= 0 {
		return nil, errors.Errorf("material: roughness must be positive, got %v", roughness)
	}
	if metallic < 0 || metallic > 1 {
		return nil, errors.Errorf("material: metallic must be in [0,1], got %v", metallic)
	}
	if ao < 0 || ao > 1 {
		return nil, errors.Errorf("material: ambient occlusion must be in [0,1], got %v", ao)
	}
	return &PBR{Albedo: albedo, Metallic: metallic, Roughness: roughness, AO: ao}, nil
}

func (m *PBR) Sample(uv mgl32.Vec2) Sample {
	return Sample{Albedo: m.Albedo, Metallic: m.Metallic, Roughness: m.Roughness, AO: m.AO}
}

// Gold returns the fixed material the teapot demo uses.
func Gold() *PBR {
	return &PBR{
		Albedo:    mgl32.Vec3{0.950, 0.71, 0.29},
		Metallic:  1.0,
		Roughness: 0.38,
		AO:        0.2,
	}
}

var _ Evaluator = (*PBR)(nil)
var _ Evaluator = (*Checker)(nil)

// colourRGB drops alpha when converting a colour to albedo. The G-buffer
// albedo alpha channel carries metallic, so material alpha never survives
// past the evaluator.
func colourRGB(c core.Color) mgl32.Vec3 {
	return mgl32.Vec3{c.R, c.G, c.B}
}
