package core

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

func vecApprox(a, b mgl32.Vec4, eps float32) bool {
	for i := 0; i < 4; i++ {
		if math32.Abs(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}

func TestNewTransformUniformsComposition(t *testing.T) {
	model := mgl32.Translate3D(1, 2, 3)
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})
	proj := mgl32.Perspective(mgl32.DegToRad(45), 4.0/3.0, 0.1, 100)

	tu := NewTransformUniforms(model, view, proj)

	p := mgl32.Vec4{0.5, -0.5, 0, 1}
	want := proj.Mul4x1(view.Mul4x1(model.Mul4x1(p)))
	got := tu.MVP.Mul4x1(p)
	if !vecApprox(got, want, 1e-4) {
		t.Errorf("MVP*p = %v, want P*(V*(M*p)) = %v", got, want)
	}
}

func TestNormalMatrixNonUniformScale(t *testing.T) {
	// Under non-uniform scale the normal of a slanted surface must go
	// through the inverse-transpose, not the model matrix itself.
	model := mgl32.Scale3D(2, 1, 1)
	tu := NewTransformUniforms(model, mgl32.Ident4(), mgl32.Ident4())

	n := mgl32.Vec3{1, 1, 0}.Normalize()
	tn := tu.NormalMatrix.Mul4x1(n.Vec4(0)).Vec3().Normalize()

	// Surface direction (1,-1,0) maps to (2,-1,0); the transformed normal
	// must stay perpendicular to it.
	tangent := mgl32.Vec3{2, -1, 0}
	if dot := tn.Dot(tangent); math32.Abs(dot) > 1e-5 {
		t.Errorf("transformed normal not perpendicular to surface: dot = %v", dot)
	}
}

func TestMeshDataTriangleCount(t *testing.T) {
	verts := make([]Vertex, 6)
	if got := (MeshData{Vertices: verts}).TriangleCount(); got != 2 {
		t.Errorf("non-indexed TriangleCount = %d, want 2", got)
	}
	if got := (MeshData{Vertices: verts[:4], Indices: []uint32{0, 1, 2, 0, 2, 3, 1, 2, 3}}).TriangleCount(); got != 3 {
		t.Errorf("indexed TriangleCount = %d, want 3", got)
	}
}
