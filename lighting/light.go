// Package lighting implements the Cook-Torrance point-light shading core
// shared by the deferred resolver and the forward path.
package lighting

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// MaxLights is the fixed capacity of the light uniform block. The resolver
// loop is bounded by the active count, never by this capacity.
const MaxLights = 20

// Light is one point light: position and (unbounded, HDR) colour.
type Light struct {
	Position mgl32.Vec3
	Color    mgl32.Vec3
}

// LightBlock is a bounded sequence of lights with an explicit active count.
// The count invariant (0 <= count <= MaxLights) is enforced at construction
// so the shading loop never has to re-check it.
type LightBlock struct {
	lights [MaxLights]Light
	count  int
}

// NewLightBlock builds a block from the given lights. More than MaxLights
// is a configuration error, rejected here rather than truncated.
func NewLightBlock(lights ...Light) (*LightBlock, error) {
	if len(lights) > MaxLights {
		return nil, errors.Errorf("lighting: %d lights exceeds capacity %d", len(lights), MaxLights)
	}
	b := &LightBlock{count: len(lights)}
	copy(b.lights[:], lights)
	return b, nil
}

// Append adds one light, failing when the block is full.
func (b *LightBlock) Append(l Light) error {
	if b.count >= MaxLights {
		return errors.Errorf("lighting: light block full (capacity %d)", MaxLights)
	}
	b.lights[b.count] = l
	b.count++
	return nil
}

// Count reports the number of active lights.
func (b *LightBlock) Count() int { return b.count }

// Lights returns the active slice of the block. The backing array is owned
// by the block; callers must not retain the slice across mutations.
func (b *LightBlock) Lights() []Light { return b.lights[:b.count] }

// View holds the per-frame camera parameters the shading core reads.
type View struct {
	CamPos   mgl32.Vec3
	Exposure float32
}

// Validate rejects a non-positive exposure; it divides into the inverse
// gamma exponent during output correction.
func (v View) Validate() error {
	if v.Exposure <= 0 {
		return errors.Errorf("lighting: exposure must be positive, got %v", v.Exposure)
	}
	return nil
}
