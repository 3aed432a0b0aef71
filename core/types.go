package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

type Color struct {
	R, G, B, A float32
}

var (
	ColorWhite = Color{1, 1, 1, 1}
	ColorBlack = Color{0, 0, 0, 1}
	ColorRed   = Color{1, 0, 0, 1}
	ColorGreen = Color{0, 1, 0, 1}
	ColorBlue  = Color{0, 0, 1, 1}
)

// Vertex is the fixed per-vertex layout consumed by the geometry pass:
// position, normal, texture coordinate (the 8-float stride the mesh
// builders and loaders produce).
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
}

// MeshData is an immutable vertex/index stream for one draw call.
type MeshData struct {
	Vertices []Vertex
	Indices  []uint32
}

// TriangleCount returns the number of triangles the stream describes,
// indexed or not.
func (m MeshData) TriangleCount() int {
	if len(m.Indices) > 0 {
		return len(m.Indices) / 3
	}
	return len(m.Vertices) / 3
}

// TransformUniforms carries the per-draw matrices the geometry pass needs:
// the full MVP for clip-space projection, the inverse-transpose of the
// model matrix for normals, and the model matrix alone for world-space
// position reconstruction.
type TransformUniforms struct {
	MVP          mgl32.Mat4
	NormalMatrix mgl32.Mat4
	Model        mgl32.Mat4
}

// NewTransformUniforms derives the uniform set from separate model, view
// and projection matrices. The normal matrix is the inverse-transpose of
// the model matrix so normals stay correct under non-uniform scale.
func NewTransformUniforms(model, view, projection mgl32.Mat4) TransformUniforms {
	return TransformUniforms{
		MVP:          projection.Mul4(view).Mul4(model),
		NormalMatrix: model.Inv().Transpose(),
		Model:        model,
	}
}
