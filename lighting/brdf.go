package lighting

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"deferred-engine/core"
)

// Surface is one decoded shading point: the exact set of attributes the
// G-buffer stores per pixel. The forward path fills it from interpolated
// vertex data instead, which is the only difference between the two paths.
type Surface struct {
	Position  mgl32.Vec3
	Normal    mgl32.Vec3
	Albedo    mgl32.Vec3
	Metallic  float32
	Roughness float32
	AO        float32
}

// specEpsilon keeps the specular denominator away from zero at grazing
// angles. The value is part of the pass contract; changing it changes the
// image.
const specEpsilon = 0.001

// DistributionGGX is the Trowbridge-Reitz normal distribution term.
// nDotH must already be clamped to >= 0.
func DistributionGGX(nDotH, roughness float32) float32 {
	a := roughness * roughness
	a2 := a * a
	d := nDotH*nDotH*(a2-1) + 1
	return a2 / (math32.Pi * d * d)
}

// GeometrySchlickGGX is the single-direction Schlick-GGX visibility term
// with the direct-lighting remapping k = (roughness+1)^2 / 8.
func GeometrySchlickGGX(nDotX, roughness float32) float32 {
	r := roughness + 1
	k := r * r / 8
	return nDotX / (nDotX*(1-k) + k)
}

// GeometrySmith is the Smith joint form: the product of the view and light
// direction terms.
func GeometrySmith(nDotV, nDotL, roughness float32) float32 {
	return GeometrySchlickGGX(nDotV, roughness) * GeometrySchlickGGX(nDotL, roughness)
}

// FresnelSchlick is the Schlick approximation of the Fresnel term.
// cosTheta must already be clamped to >= 0.
func FresnelSchlick(cosTheta float32, f0 mgl32.Vec3) mgl32.Vec3 {
	f := math32.Pow(1-cosTheta, 5)
	return f0.Add(mgl32.Vec3{1 - f0.X(), 1 - f0.Y(), 1 - f0.Z()}.Mul(f))
}

// Reinhard compresses each channel with c/(c+1), mapping any non-negative
// input into [0,1).
func Reinhard(c mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{
		c.X() / (c.X() + 1),
		c.Y() / (c.Y() + 1),
		c.Z() / (c.Z() + 1),
	}
}

// Expose applies the inverse-gamma exposure correction c^(1/exposure) per
// channel. Callers validate exposure > 0 before the frame starts.
func Expose(c mgl32.Vec3, exposure float32) mgl32.Vec3 {
	inv := 1 / exposure
	return mgl32.Vec3{
		math32.Pow(c.X(), inv),
		math32.Pow(c.Y(), inv),
		math32.Pow(c.Z(), inv),
	}
}

// Shade evaluates the full lighting model for one surface point: the
// Cook-Torrance loop over the active lights, the constant ambient term,
// Reinhard tone mapping and exposure correction. It is the single shading
// entry point for both the deferred resolver and the forward path, which is
// what makes the two paths agree.
//
// Inputs are assumed validated (light count, exposure, roughness floor);
// numeric edge cases inside the loop are masked by the fixed epsilons.
func Shade(s Surface, lights []Light, view View) core.Color {
	ambient := s.Albedo.Mul(0.03 * s.AO)

	var lo mgl32.Vec3
	nLenSq := s.Normal.Dot(s.Normal)
	toView := view.CamPos.Sub(s.Position)
	viewSq := toView.Dot(toView)
	// A camera coincident with the shading point has no view direction;
	// skip direct lighting like a coincident light is skipped below.
	if nLenSq > 0 && viewSq > 0 {
		// Stored normals may carry interpolation drift; renormalize.
		n := s.Normal.Mul(1 / math32.Sqrt(nLenSq))
		v := toView.Mul(1 / math32.Sqrt(viewSq))
		f0 := lerp3(mgl32.Vec3{0.04, 0.04, 0.04}, s.Albedo, s.Metallic)

		for _, light := range lights {
			toLight := light.Position.Sub(s.Position)
			distSq := toLight.Dot(toLight)
			if distSq == 0 {
				// Light exactly on the surface point: direction undefined.
				continue
			}
			l := toLight.Mul(1 / math32.Sqrt(distSq))
			h := v.Add(l).Normalize()
			radiance := light.Color.Mul(1 / distSq)

			nDotL := max32(n.Dot(l), 0)
			nDotV := max32(n.Dot(v), 0)
			nDotH := max32(n.Dot(h), 0)
			hDotV := max32(h.Dot(v), 0)

			d := DistributionGGX(nDotH, s.Roughness)
			g := GeometrySmith(nDotV, nDotL, s.Roughness)
			f := FresnelSchlick(hDotV, f0)

			specular := f.Mul(d * g / (4*nDotV*nDotL + specEpsilon))

			// Metallic surfaces contribute no diffuse.
			kD := mgl32.Vec3{1 - f.X(), 1 - f.Y(), 1 - f.Z()}.Mul(1 - s.Metallic)
			diffuse := mulElem(kD, s.Albedo).Mul(1 / math32.Pi)

			lo = lo.Add(mulElem(diffuse.Add(specular), radiance).Mul(nDotL))
		}
	}

	c := Expose(Reinhard(ambient.Add(lo)), view.Exposure)
	return core.Color{R: c.X(), G: c.Y(), B: c.Z(), A: 1}
}

func lerp3(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

func mulElem(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a.X() * b.X(), a.Y() * b.Y(), a.Z() * b.Z()}
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
