package scene

import (
	"deferred-engine/core"
)

// Mesh is a named vertex/index stream ready for the geometry pass.
type Mesh struct {
	Name string
	Data core.MeshData
}

// CreateMeshFromData wraps raw vertex data in a mesh.
func CreateMeshFromData(name string, vertices []core.Vertex, indices []uint32) *Mesh {
	return &Mesh{
		Name: name,
		Data: core.MeshData{Vertices: vertices, Indices: indices},
	}
}
