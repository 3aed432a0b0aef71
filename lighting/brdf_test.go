package lighting

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

func approx(a, b, eps float32) bool {
	return math32.Abs(a-b) <= eps
}

func TestDistributionGGX(t *testing.T) {
	// At roughness 1 the distribution is uniform: a2 = 1 so D = 1/pi for
	// every half-angle.
	for _, nDotH := range []float32{0, 0.3, 0.7, 1} {
		if got := DistributionGGX(nDotH, 1); !approx(got, 1/math32.Pi, 1e-5) {
			t.Errorf("DistributionGGX(%v, 1) = %v, want 1/pi", nDotH, got)
		}
	}

	// a = 0.25, a2 = 0.0625, aligned half-angle: d = a2, so D = 1/(pi*a2).
	const want = 1 / (math32.Pi * 0.0625)
	if got := DistributionGGX(1, 0.5); !approx(got, want, 1e-3) {
		t.Errorf("DistributionGGX(1, 0.5) = %v, want %v", got, want)
	}
}

func TestGeometrySchlickGGXAligned(t *testing.T) {
	// nDotX = 1 cancels the remapping for any roughness.
	for _, rough := range []float32{0.1, 0.5, 1} {
		if got := GeometrySchlickGGX(1, rough); !approx(got, 1, 1e-6) {
			t.Errorf("GeometrySchlickGGX(1, %v) = %v, want 1", rough, got)
		}
	}
	// Grazing direction has zero visibility.
	if got := GeometrySchlickGGX(0, 0.5); got != 0 {
		t.Errorf("GeometrySchlickGGX(0, 0.5) = %v, want 0", got)
	}
}

func TestFresnelSchlick(t *testing.T) {
	f0 := mgl32.Vec3{0.04, 0.04, 0.04}

	head := FresnelSchlick(1, f0)
	if !approx(head.X(), 0.04, 1e-6) {
		t.Errorf("head-on Fresnel = %v, want f0", head)
	}

	grazing := FresnelSchlick(0, f0)
	if !approx(grazing.X(), 1, 1e-6) {
		t.Errorf("grazing Fresnel = %v, want 1", grazing)
	}
}

func TestReinhardRange(t *testing.T) {
	for _, v := range []float32{0, 0.5, 1, 10, 1e6} {
		got := Reinhard(mgl32.Vec3{v, v, v}).X()
		if got < 0 || got >= 1 {
			t.Errorf("Reinhard(%v) = %v, want [0,1)", v, got)
		}
	}

	// Monotonic: brighter input stays brighter.
	prev := float32(-1)
	for _, v := range []float32{0, 0.1, 1, 5, 100} {
		got := Reinhard(mgl32.Vec3{v, v, v}).X()
		if got <= prev {
			t.Errorf("Reinhard not monotonic at %v: %v <= %v", v, got, prev)
		}
		prev = got
	}
}

func TestExposeIdentity(t *testing.T) {
	c := mgl32.Vec3{0.25, 0.5, 0.75}
	got := Expose(c, 1)
	if !approx(got.X(), c.X(), 1e-6) || !approx(got.Y(), c.Y(), 1e-6) || !approx(got.Z(), c.Z(), 1e-6) {
		t.Errorf("Expose(c, 1) = %v, want %v", got, c)
	}
}

// TestShadeWorkedExample pins the full pipeline math on a configuration
// where every dot product is exactly 1: camera, light and normal all on the
// +Y axis above a point at the origin.
//
//	radiance  = 25/25 = 1
//	D         = 1/(pi*0.0625)        (roughness 0.5, aligned)
//	G         = 1, F = 0.04
//	specular  = D*0.04/4.001         = 0.050917
//	diffuse   = 0.96*0.5/pi          = 0.152789
//	ambient   = 0.03*0.5             = 0.015
//	Reinhard(0.218706)               = 0.179458
func TestShadeWorkedExample(t *testing.T) {
	s := Surface{
		Position:  mgl32.Vec3{0, 0, 0},
		Normal:    mgl32.Vec3{0, 1, 0},
		Albedo:    mgl32.Vec3{0.5, 0.5, 0.5},
		Metallic:  0,
		Roughness: 0.5,
		AO:        1,
	}
	light := Light{Position: mgl32.Vec3{0, 5, 0}, Color: mgl32.Vec3{25, 25, 25}}
	view := View{CamPos: mgl32.Vec3{0, 3, 0}, Exposure: 1}

	got := Shade(s, []Light{light}, view)
	const want = 0.179458
	if !approx(got.R, want, 1e-4) || !approx(got.G, want, 1e-4) || !approx(got.B, want, 1e-4) {
		t.Errorf("Shade = (%v, %v, %v), want %v per channel", got.R, got.G, got.B, want)
	}
	if got.A != 1 {
		t.Errorf("Shade alpha = %v, want 1", got.A)
	}
}

func TestShadeNoLights(t *testing.T) {
	s := Surface{
		Normal:    mgl32.Vec3{0, 1, 0},
		Albedo:    mgl32.Vec3{0.5, 0.5, 0.5},
		Roughness: 0.5,
		AO:        1,
	}
	view := View{CamPos: mgl32.Vec3{0, 3, 0}, Exposure: 1}

	got := Shade(s, nil, view)
	const want = 0.015 / 1.015 // Reinhard of the ambient term
	if !approx(got.R, want, 1e-5) {
		t.Errorf("ambient-only Shade = %v, want %v", got.R, want)
	}
}

func TestShadeZeroNormal(t *testing.T) {
	// A zeroed G-buffer texel decodes to a zero normal; the light loop must
	// not run (normalize(0) would produce NaN).
	s := Surface{Albedo: mgl32.Vec3{0.5, 0.5, 0.5}, AO: 1}
	light := Light{Position: mgl32.Vec3{0, 5, 0}, Color: mgl32.Vec3{100, 100, 100}}
	view := View{CamPos: mgl32.Vec3{0, 3, 0}, Exposure: 1}

	got := Shade(s, []Light{light}, view)
	const want = 0.015 / 1.015
	if !approx(got.R, want, 1e-5) {
		t.Errorf("zero-normal Shade = %v, want ambient %v", got.R, want)
	}
	if math32.IsNaN(got.R) || math32.IsNaN(got.G) || math32.IsNaN(got.B) {
		t.Error("zero-normal Shade produced NaN")
	}
}

func TestShadeLightOnSurface(t *testing.T) {
	// A light exactly on the shading point has no defined direction and is
	// skipped rather than poisoning the frame with NaN.
	s := Surface{
		Normal:    mgl32.Vec3{0, 1, 0},
		Albedo:    mgl32.Vec3{0.5, 0.5, 0.5},
		Roughness: 0.5,
		AO:        1,
	}
	light := Light{Position: mgl32.Vec3{0, 0, 0}, Color: mgl32.Vec3{100, 100, 100}}
	view := View{CamPos: mgl32.Vec3{0, 3, 0}, Exposure: 1}

	got := Shade(s, []Light{light}, view)
	const want = 0.015 / 1.015
	if !approx(got.R, want, 1e-5) {
		t.Errorf("coincident-light Shade = %v, want ambient %v", got.R, want)
	}
}

func TestShadeCameraOnSurface(t *testing.T) {
	// A camera coincident with the shading point has no view direction;
	// direct lighting is skipped explicitly, same as a coincident light,
	// leaving the ambient term.
	s := Surface{
		Position:  mgl32.Vec3{0, 0, 0},
		Normal:    mgl32.Vec3{0, 1, 0},
		Albedo:    mgl32.Vec3{0.5, 0.5, 0.5},
		Roughness: 0.5,
		AO:        1,
	}
	light := Light{Position: mgl32.Vec3{0, 5, 0}, Color: mgl32.Vec3{25, 25, 25}}
	view := View{CamPos: mgl32.Vec3{0, 0, 0}, Exposure: 1}

	got := Shade(s, []Light{light}, view)
	const want = 0.015 / 1.015
	if !approx(got.R, want, 1e-5) {
		t.Errorf("coincident-camera Shade = %v, want ambient %v", got.R, want)
	}
	if math32.IsNaN(got.R) || math32.IsNaN(got.G) || math32.IsNaN(got.B) {
		t.Error("coincident-camera Shade produced NaN")
	}

	// Any offset restores a defined view direction and a diffuse-dominant
	// result brighter than ambient alone.
	view.CamPos = mgl32.Vec3{0, 2, 1}
	if lit := Shade(s, []Light{light}, view); lit.R <= want {
		t.Errorf("offset-camera Shade = %v, want brighter than ambient %v", lit.R, want)
	}
}

func TestShadeForwardMatchesShade(t *testing.T) {
	s := Surface{
		Position:  mgl32.Vec3{0.2, 0, -0.3},
		Normal:    mgl32.Vec3{0, 1, 0},
		Albedo:    mgl32.Vec3{0.95, 0.71, 0.29},
		Metallic:  1,
		Roughness: 0.38,
		AO:        0.2,
	}
	light := Light{Position: mgl32.Vec3{2, 2, 2}, Color: mgl32.Vec3{400, 400, 400}}
	view := View{CamPos: mgl32.Vec3{0, 2, 4}, Exposure: 2.2}

	fwd, err := ShadeForward(s, light, view)
	if err != nil {
		t.Fatalf("ShadeForward: %v", err)
	}
	def := Shade(s, []Light{light}, view)
	if fwd != def {
		t.Errorf("forward %v != single-light deferred %v", fwd, def)
	}
}

func TestShadeForwardRejectsBadExposure(t *testing.T) {
	_, err := ShadeForward(Surface{}, Light{}, View{Exposure: 0})
	if err == nil {
		t.Error("zero exposure accepted, want error")
	}
}

func TestShadeMetallicHasNoDiffuse(t *testing.T) {
	// Fully metallic surfaces take f0 from the albedo and contribute no
	// diffuse: with black albedo both terms vanish and the output is pure
	// black. A black dielectric still reflects through its fixed 4% f0.
	base := Surface{
		Normal:    mgl32.Vec3{0, 1, 0},
		Roughness: 0.5,
		AO:        0,
	}
	light := Light{Position: mgl32.Vec3{0, 5, 0}, Color: mgl32.Vec3{25, 25, 25}}
	view := View{CamPos: mgl32.Vec3{0, 3, 0}, Exposure: 1}

	metallic := base
	metallic.Metallic = 1
	dielectric := base
	dielectric.Metallic = 0

	if m := Shade(metallic, []Light{light}, view); m.R != 0 {
		t.Errorf("black metallic shades to %v, want 0", m.R)
	}
	if d := Shade(dielectric, []Light{light}, view); d.R <= 0 {
		t.Errorf("black dielectric shades to %v, want specular > 0", d.R)
	}
}
