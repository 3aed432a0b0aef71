// Package deferred implements the two-pass pipeline: a geometry pass that
// rasterizes draw calls into the G-buffer, and a lighting pass that
// resolves the G-buffer to a final colour image. The passes run strictly
// in order with a full barrier between them; parallelism lives inside each
// pass, never across them.
package deferred

import (
	"runtime"
	"sync"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"deferred-engine/core"
	"deferred-engine/gbuffer"
	"deferred-engine/lighting"
	"deferred-engine/material"
)

// DrawCall binds one mesh, its per-draw transform uniforms, and the
// material evaluator for the surface.
//
// StaticWorld controls how the pass reconstructs world-space position: when
// false the vertex position is taken through the model matrix; when true
// the vertex positions are treated as already being world space (the
// ground-plane case, where the surface must not inherit the shared scene
// transform). The choice is explicit per surface because getting it wrong
// breaks lighting directionality without any runtime error.
type DrawCall struct {
	Mesh        core.MeshData
	Transform   core.TransformUniforms
	Material    material.Evaluator
	StaticWorld bool
}

// rasterVertex is one post-transform triangle corner. World position,
// normal and UV are pre-divided by clip w so the rasterizer can interpolate
// them linearly in screen space (perspective-correct interpolation).
type rasterVertex struct {
	sx, sy float32 // pixel coordinates
	z      float32 // NDC depth, screen-space linear
	invW   float32
	world  mgl32.Vec3
	normal mgl32.Vec3
	uv     mgl32.Vec2
}

type rasterTriangle struct {
	v    [3]rasterVertex
	mat  material.Evaluator
	minX, minY, maxX, maxY int
}

// GeometryPass rasterizes draw calls into a G-buffer.
type GeometryPass struct {
	gb *gbuffer.GBuffer
}

func NewGeometryPass(gb *gbuffer.GBuffer) *GeometryPass {
	return &GeometryPass{gb: gb}
}

// Render transforms and rasterizes every draw call into the G-buffer.
// Fragments targeting the same pixel are resolved by the depth test
// (closer wins). The caller clears the G-buffer; Render only accumulates.
func (p *GeometryPass) Render(calls []DrawCall) error {
	width, height := p.gb.Width(), p.gb.Height()

	var tris []rasterTriangle
	for i, call := range calls {
		if call.Material == nil {
			return errors.Errorf("deferred: draw call %d has no material", i)
		}
		tris = append(tris, transformCall(call, width, height)...)
	}
	if len(tris) == 0 {
		return nil
	}

	// Workers own disjoint row bands, so every G-buffer pixel has exactly
	// one writer and the depth test needs no locking.
	parallelRows(height, func(y0, y1 int) {
		for ti := range tris {
			p.rasterize(&tris[ti], y0, y1)
		}
	})
	return nil
}

// clipVertex is a triangle corner before perspective division: homogeneous
// clip position plus the attributes that must survive near-plane clipping.
type clipVertex struct {
	clip   mgl32.Vec4
	world  mgl32.Vec3
	normal mgl32.Vec3
	uv     mgl32.Vec2
}

// nearClipW is the eye-plane guard: vertices with clip w at or below it are
// clipped away before perspective division can blow up.
const nearClipW = 1e-5

// transformCall runs the per-vertex stage for one draw call: clip-space
// projection, normal-matrix transform, world-position reconstruction,
// near-plane clipping, then projection to screen space.
func transformCall(call DrawCall, width, height int) []rasterTriangle {
	mesh := call.Mesh
	fetch := func(i int) core.Vertex {
		if len(mesh.Indices) > 0 {
			return mesh.Vertices[mesh.Indices[i]]
		}
		return mesh.Vertices[i]
	}

	var out []rasterTriangle
	n := mesh.TriangleCount()
	for t := 0; t < n; t++ {
		var cv [3]clipVertex
		for c := 0; c < 3; c++ {
			vert := fetch(t*3 + c)

			world := vert.Position
			if !call.StaticWorld {
				world = call.Transform.Model.Mul4x1(vert.Position.Vec4(1)).Vec3()
			}
			cv[c] = clipVertex{
				clip:   call.Transform.MVP.Mul4x1(vert.Position.Vec4(1)),
				world:  world,
				normal: call.Transform.NormalMatrix.Mul4x1(vert.Normal.Vec4(0)).Vec3(),
				uv:     vert.UV,
			}
		}

		// Clipping can turn a triangle into a quad; fan-triangulate the
		// resulting polygon.
		poly := clipNear(cv)
		for k := 1; k+1 < len(poly); k++ {
			rv := [3]rasterVertex{
				projectVertex(poly[0], width, height),
				projectVertex(poly[k], width, height),
				projectVertex(poly[k+1], width, height),
			}
			tri := rasterTriangle{v: rv, mat: call.Material}
			tri.minX = clampInt(int(math32.Floor(min3(rv[0].sx, rv[1].sx, rv[2].sx))), 0, width-1)
			tri.maxX = clampInt(int(math32.Ceil(max3(rv[0].sx, rv[1].sx, rv[2].sx))), 0, width-1)
			tri.minY = clampInt(int(math32.Floor(min3(rv[0].sy, rv[1].sy, rv[2].sy))), 0, height-1)
			tri.maxY = clampInt(int(math32.Ceil(max3(rv[0].sy, rv[1].sy, rv[2].sy))), 0, height-1)
			out = append(out, tri)
		}
	}
	return out
}

// clipNear clips one triangle against the plane w > nearClipW
// (Sutherland-Hodgman). Returns 0, 3 or 4 vertices. Clip position and
// attributes are interpolated linearly, which is exact in homogeneous space.
func clipNear(tri [3]clipVertex) []clipVertex {
	out := make([]clipVertex, 0, 4)
	for i := 0; i < 3; i++ {
		cur, next := tri[i], tri[(i+1)%3]
		curIn := cur.clip.W() > nearClipW
		nextIn := next.clip.W() > nearClipW

		if curIn {
			out = append(out, cur)
		}
		if curIn != nextIn {
			t := (cur.clip.W() - nearClipW) / (cur.clip.W() - next.clip.W())
			out = append(out, clipVertex{
				clip:   cur.clip.Add(next.clip.Sub(cur.clip).Mul(t)),
				world:  cur.world.Add(next.world.Sub(cur.world).Mul(t)),
				normal: cur.normal.Add(next.normal.Sub(cur.normal).Mul(t)),
				uv:     cur.uv.Add(next.uv.Sub(cur.uv).Mul(t)),
			})
		}
	}
	return out
}

// projectVertex divides through by w and maps NDC to pixel coordinates,
// pre-dividing the attributes for perspective-correct interpolation. Callers
// guarantee w > nearClipW.
func projectVertex(v clipVertex, width, height int) rasterVertex {
	invW := 1 / v.clip.W()
	ndcX := v.clip.X() * invW
	ndcY := v.clip.Y() * invW
	ndcZ := v.clip.Z() * invW

	return rasterVertex{
		sx:     (ndcX*0.5 + 0.5) * float32(width),
		sy:     (1 - (ndcY*0.5 + 0.5)) * float32(height),
		z:      ndcZ,
		invW:   invW,
		world:  v.world.Mul(invW),
		normal: v.normal.Mul(invW),
		uv:     v.uv.Mul(invW),
	}
}

// rasterize scan-converts one triangle restricted to rows [y0, y1).
func (p *GeometryPass) rasterize(tri *rasterTriangle, y0, y1 int) {
	if tri.minY >= y1 || tri.maxY < y0 {
		return
	}
	v0, v1, v2 := tri.v[0], tri.v[1], tri.v[2]

	area := edge(v0.sx, v0.sy, v1.sx, v1.sy, v2.sx, v2.sy)
	if area == 0 {
		return
	}

	rowStart := tri.minY
	if rowStart < y0 {
		rowStart = y0
	}
	rowEnd := tri.maxY
	if rowEnd >= y1 {
		rowEnd = y1 - 1
	}

	invArea := 1 / area
	for y := rowStart; y <= rowEnd; y++ {
		py := float32(y) + 0.5
		for x := tri.minX; x <= tri.maxX; x++ {
			px := float32(x) + 0.5

			w0 := edge(v1.sx, v1.sy, v2.sx, v2.sy, px, py) * invArea
			w1 := edge(v2.sx, v2.sy, v0.sx, v0.sy, px, py) * invArea
			w2 := edge(v0.sx, v0.sy, v1.sx, v1.sy, px, py) * invArea
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}

			depth := w0*v0.z + w1*v1.z + w2*v2.z
			// Eye-plane clipping leaves fragments between the eye and the
			// near plane (NDC z < -1); discard them like the fixed depth
			// range on a GPU would.
			if depth < -1 || depth > 1 {
				continue
			}
			invW := w0*v0.invW + w1*v1.invW + w2*v2.invW
			if invW <= 0 {
				continue
			}
			restore := 1 / invW

			world := v0.world.Mul(w0).Add(v1.world.Mul(w1)).Add(v2.world.Mul(w2)).Mul(restore)
			normal := v0.normal.Mul(w0).Add(v1.normal.Mul(w1)).Add(v2.normal.Mul(w2)).Mul(restore)
			uv := v0.uv.Mul(w0).Add(v1.uv.Mul(w1)).Add(v2.uv.Mul(w2)).Mul(restore)

			nLen := normal.Len()
			if nLen > 0 {
				normal = normal.Mul(1 / nLen)
			}

			sample := tri.mat.Sample(uv)
			p.gb.Store(x, y, depth, gbuffer.Encode(lighting.Surface{
				Position:  world,
				Normal:    normal,
				Albedo:    sample.Albedo,
				Metallic:  sample.Metallic,
				Roughness: sample.Roughness,
				AO:        sample.AO,
			}))
		}
	}
}

// edge is the signed area of the parallelogram spanned by (b-a) and (p-a);
// positive on one side of ab, negative on the other.
func edge(ax, ay, bx, by, px, py float32) float32 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

// parallelRows splits [0, height) into one contiguous band per worker and
// blocks until all bands complete.
func parallelRows(height int, fn func(y0, y1 int)) {
	workers := runtime.NumCPU()
	if workers > height {
		workers = height
	}
	if workers <= 1 {
		fn(0, height)
		return
	}

	band := (height + workers - 1) / workers
	var wg sync.WaitGroup
	for y0 := 0; y0 < height; y0 += band {
		y1 := y0 + band
		if y1 > height {
			y1 = height
		}
		wg.Add(1)
		go func(a, b int) {
			defer wg.Done()
			fn(a, b)
		}(y0, y1)
	}
	wg.Wait()
}

func min3(a, b, c float32) float32 {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

func max3(a, b, c float32) float32 {
	if b > a {
		a = b
	}
	if c > a {
		a = c
	}
	return a
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
