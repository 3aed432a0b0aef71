package lighting

import "deferred-engine/core"

// ShadeForward is the forward PBR path: the same per-light math as the
// deferred resolver, evaluated against exactly one light with the surface
// supplied directly instead of fetched from the G-buffer. Given matching
// inputs it produces the same colour as a single-light deferred resolve.
func ShadeForward(s Surface, light Light, view View) (core.Color, error) {
	if err := view.Validate(); err != nil {
		return core.Color{}, err
	}
	return Shade(s, []Light{light}, view), nil
}
