package material

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestNewPBRValidation(t *testing.T) {
	albedo := mgl32.Vec3{0.5, 0.5, 0.5}

	if _, err := NewPBR(albedo, 0.5, 0.4, 1.0); err != nil {
		t.Errorf("valid parameters rejected: %v", err)
	}
	if _, err := NewPBR(albedo, 0.5, 0, 1.0); err == nil {
		t.Error("zero roughness accepted, want error")
	}
	if _, err := NewPBR(albedo, 0.5, -0.1, 1.0); err == nil {
		t.Error("negative roughness accepted, want error")
	}
	if _, err := NewPBR(albedo, 1.5, 0.4, 1.0); err == nil {
		t.Error("metallic > 1 accepted, want error")
	}
	if _, err := NewPBR(albedo, -0.1, 0.4, 1.0); err == nil {
		t.Error("negative metallic accepted, want error")
	}
	if _, err := NewPBR(albedo, 0.5, 0.4, 1.2); err == nil {
		t.Error("ao > 1 accepted, want error")
	}
}

func TestPBRSampleConstant(t *testing.T) {
	m := Gold()
	a := m.Sample(mgl32.Vec2{0, 0})
	b := m.Sample(mgl32.Vec2{0.73, 0.21})
	if a != b {
		t.Errorf("fixed material varies with uv: %v vs %v", a, b)
	}
	if a.Metallic != 1.0 || a.Roughness != 0.38 || a.AO != 0.2 {
		t.Errorf("gold response = %v/%v/%v, want 1/0.38/0.2", a.Metallic, a.Roughness, a.AO)
	}
}

func TestCheckerParity(t *testing.T) {
	c := NewChecker()
	c.CheckSize = 4 // cell width 0.25 in uv

	colour1 := mgl32.Vec3{c.Colour1.R, c.Colour1.G, c.Colour1.B}
	colour2 := mgl32.Vec3{c.Colour2.R, c.Colour2.G, c.Colour2.B}

	cases := []struct {
		uv   mgl32.Vec2
		want mgl32.Vec3
	}{
		{mgl32.Vec2{0.1, 0.1}, colour2},  // cell (0,0), even
		{mgl32.Vec2{0.3, 0.1}, colour1},  // cell (1,0), odd
		{mgl32.Vec2{0.1, 0.3}, colour1},  // cell (0,1), odd
		{mgl32.Vec2{0.3, 0.3}, colour2},  // cell (1,1), even
		{mgl32.Vec2{-0.1, 0.1}, colour1}, // cell (-1,0): floor, not truncate
	}
	for _, tc := range cases {
		got := c.Sample(tc.uv).Albedo
		if got != tc.want {
			t.Errorf("Sample(%v).Albedo = %v, want %v", tc.uv, got, tc.want)
		}
	}
}

func TestCheckerPeriodicity(t *testing.T) {
	c := NewChecker()
	period := 2 / c.CheckSize
	// Sample points sit well inside their cells so float rounding cannot
	// move them across a boundary.
	for _, uv := range []mgl32.Vec2{{0.013, 0.027}, {0.402, 0.906}, {0.98, 0.02}} {
		a := c.Sample(uv)
		b := c.Sample(mgl32.Vec2{uv.X() + period, uv.Y() + period})
		if a.Albedo != b.Albedo {
			t.Errorf("pattern not periodic at %v: %v vs %v", uv, a.Albedo, b.Albedo)
		}
	}
}

func TestCheckerTwoValued(t *testing.T) {
	c := NewChecker()
	colour1 := mgl32.Vec3{c.Colour1.R, c.Colour1.G, c.Colour1.B}
	colour2 := mgl32.Vec3{c.Colour2.R, c.Colour2.G, c.Colour2.B}

	for i := 0; i < 17; i++ {
		for j := 0; j < 17; j++ {
			uv := mgl32.Vec2{float32(i) * 0.061, float32(j) * 0.043}
			got := c.Sample(uv).Albedo
			if got != colour1 && got != colour2 {
				t.Fatalf("Sample(%v).Albedo = %v, not one of the two colours", uv, got)
			}
		}
	}
}

func TestCheckerDisabled(t *testing.T) {
	c := NewChecker()
	c.CheckOn = false
	colour1 := mgl32.Vec3{c.Colour1.R, c.Colour1.G, c.Colour1.B}

	for _, uv := range []mgl32.Vec2{{0.1, 0.1}, {0.3, 0.1}, {0.7, 0.9}} {
		if got := c.Sample(uv).Albedo; got != colour1 {
			t.Errorf("checkOn=false: Sample(%v).Albedo = %v, want colour1 %v", uv, got, colour1)
		}
	}
}

func TestCheckerSurfaceResponse(t *testing.T) {
	c := NewChecker()
	s := c.Sample(mgl32.Vec2{0.5, 0.5})
	if s.Metallic != 0 || s.Roughness != 0.6 || s.AO != 1 {
		t.Errorf("checker response = %v/%v/%v, want 0/0.6/1", s.Metallic, s.Roughness, s.AO)
	}
}
