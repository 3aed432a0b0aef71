// Package config loads and validates YAML scene descriptions for the demo
// host. Validation here is the boundary where the spec's configuration
// errors (light count, exposure, roughness) are rejected before any pixel
// work starts.
package config

import (
	"os"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"deferred-engine/core"
	"deferred-engine/deferred"
	"deferred-engine/lighting"
	"deferred-engine/material"
	"deferred-engine/scene"
)

type Scene struct {
	Camera   CameraConfig    `yaml:"camera"`
	Exposure float32         `yaml:"exposure"`
	Lights   []LightConfig   `yaml:"lights"`
	Surfaces []SurfaceConfig `yaml:"surfaces"`
}

type CameraConfig struct {
	Position [3]float32 `yaml:"position"`
	LookAt   [3]float32 `yaml:"look_at"`
	FOV      float32    `yaml:"fov"` // vertical field of view, degrees
}

type LightConfig struct {
	Position [3]float32 `yaml:"position"`
	Color    [3]float32 `yaml:"color"`
}

type MaterialConfig struct {
	Type string `yaml:"type"` // "pbr" or "checker"

	// pbr
	Albedo    [3]float32 `yaml:"albedo"`
	Metallic  float32    `yaml:"metallic"`
	Roughness float32    `yaml:"roughness"`
	AO        float32    `yaml:"ao"`

	// checker
	Colour1   [4]float32 `yaml:"colour1"`
	Colour2   [4]float32 `yaml:"colour2"`
	CheckSize float32    `yaml:"check_size"`
	CheckOn   *bool      `yaml:"check_on"`
}

type SurfaceConfig struct {
	// Primitive is "sphere", "plane", "box", or a path ending in
	// .gltf/.glb (first primitive in the file is used).
	Primitive string         `yaml:"primitive"`
	Position  [3]float32     `yaml:"position"`
	Size      float32        `yaml:"size"` // primitive extent; 1 when omitted
	Static    bool           `yaml:"static"`
	Material  MaterialConfig `yaml:"material"`
}

// Load reads and validates a YAML scene file. Unknown fields are rejected
// so a typo fails loudly instead of silently falling back to a default.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "config: read %q", path)
	}
	var s Scene
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, errors.Wrapf(err, "config: parse %q", path)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate applies the configuration-error taxonomy: light count within
// capacity, positive exposure, valid materials.
func (s *Scene) Validate() error {
	if s.Exposure <= 0 {
		return errors.Errorf("config: exposure must be positive, got %v", s.Exposure)
	}
	if len(s.Lights) > lighting.MaxLights {
		return errors.Errorf("config: %d lights exceeds capacity %d", len(s.Lights), lighting.MaxLights)
	}
	if s.Camera.FOV <= 0 || s.Camera.FOV >= 180 {
		return errors.Errorf("config: camera fov must be in (0,180) degrees, got %v", s.Camera.FOV)
	}
	for i, sc := range s.Surfaces {
		if _, err := sc.Material.Build(); err != nil {
			return errors.Wrapf(err, "config: surface %d", i)
		}
	}
	return nil
}

// Build resolves a material config into an evaluator.
func (m MaterialConfig) Build() (material.Evaluator, error) {
	switch m.Type {
	case "pbr":
		return material.NewPBR(mgl32.Vec3{m.Albedo[0], m.Albedo[1], m.Albedo[2]}, m.Metallic, m.Roughness, m.AO)
	case "checker":
		c := material.NewChecker()
		if m.Colour1 != ([4]float32{}) {
			c.Colour1 = core.Color{R: m.Colour1[0], G: m.Colour1[1], B: m.Colour1[2], A: m.Colour1[3]}
		}
		if m.Colour2 != ([4]float32{}) {
			c.Colour2 = core.Color{R: m.Colour2[0], G: m.Colour2[1], B: m.Colour2[2], A: m.Colour2[3]}
		}
		if m.CheckSize != 0 {
			if m.CheckSize < 0 {
				return nil, errors.Errorf("config: check_size must be positive, got %v", m.CheckSize)
			}
			c.CheckSize = m.CheckSize
		}
		if m.CheckOn != nil {
			c.CheckOn = *m.CheckOn
		}
		return c, nil
	default:
		return nil, errors.Errorf("config: unknown material type %q", m.Type)
	}
}

// Build turns the scene description into draw calls, a light block and view
// parameters for one viewport.
//
// Static surfaces have their position baked into the vertex data so the
// geometry pass can take world position straight from the vertices — the
// per-surface world-matrix choice is made here, explicitly, not inferred.
func (s *Scene) Build(width, height int) ([]deferred.DrawCall, *lighting.LightBlock, lighting.View, error) {
	view := lighting.View{
		CamPos:   mgl32.Vec3{s.Camera.Position[0], s.Camera.Position[1], s.Camera.Position[2]},
		Exposure: s.Exposure,
	}
	if err := view.Validate(); err != nil {
		return nil, nil, view, err
	}

	var ls []lighting.Light
	for _, lc := range s.Lights {
		ls = append(ls, lighting.Light{
			Position: mgl32.Vec3{lc.Position[0], lc.Position[1], lc.Position[2]},
			Color:    mgl32.Vec3{lc.Color[0], lc.Color[1], lc.Color[2]},
		})
	}
	block, err := lighting.NewLightBlock(ls...)
	if err != nil {
		return nil, nil, view, err
	}

	cam := scene.NewCamera(mgl32.DegToRad(s.Camera.FOV), float32(width)/float32(height), 0.1, 350.0)
	cam.SetPosition(view.CamPos)
	cam.LookAt(mgl32.Vec3{s.Camera.LookAt[0], s.Camera.LookAt[1], s.Camera.LookAt[2]})
	viewMat := cam.GetViewMatrix()
	projMat := cam.GetProjectionMatrix()

	var calls []deferred.DrawCall
	for i, sc := range s.Surfaces {
		mesh, err := buildPrimitive(sc)
		if err != nil {
			return nil, nil, view, errors.Wrapf(err, "config: surface %d", i)
		}
		eval, err := sc.Material.Build()
		if err != nil {
			return nil, nil, view, errors.Wrapf(err, "config: surface %d", i)
		}

		offset := mgl32.Vec3{sc.Position[0], sc.Position[1], sc.Position[2]}
		model := mgl32.Translate3D(offset.X(), offset.Y(), offset.Z())
		data := mesh.Data
		if sc.Static {
			data = translateVertices(data, offset)
		}

		calls = append(calls, deferred.DrawCall{
			Mesh:        data,
			Transform:   core.NewTransformUniforms(modelFor(sc.Static, model), viewMat, projMat),
			Material:    eval,
			StaticWorld: sc.Static,
		})
	}
	return calls, block, view, nil
}

// modelFor keeps the MVP consistent with the world-position choice: static
// surfaces already carry their placement in the vertices, so their model
// matrix is identity.
func modelFor(static bool, model mgl32.Mat4) mgl32.Mat4 {
	if static {
		return mgl32.Ident4()
	}
	return model
}

func buildPrimitive(sc SurfaceConfig) (*scene.Mesh, error) {
	size := sc.Size
	if size == 0 {
		size = 1
	}
	switch {
	case sc.Primitive == "sphere":
		return scene.CreateSphere(size, 48, 32), nil
	case sc.Primitive == "plane":
		return scene.CreateTrianglePlane(size, size, 1, 1), nil
	case sc.Primitive == "box":
		return scene.CreateBox(size, size, size), nil
	case strings.HasSuffix(sc.Primitive, ".gltf") || strings.HasSuffix(sc.Primitive, ".glb"):
		meshes, err := scene.LoadGLTF(sc.Primitive)
		if err != nil {
			return nil, err
		}
		return meshes[0], nil
	default:
		return nil, errors.Errorf("unknown primitive %q", sc.Primitive)
	}
}

func translateVertices(data core.MeshData, offset mgl32.Vec3) core.MeshData {
	verts := make([]core.Vertex, len(data.Vertices))
	for i, v := range data.Vertices {
		v.Position = v.Position.Add(offset)
		verts[i] = v
	}
	return core.MeshData{Vertices: verts, Indices: data.Indices}
}

// DefaultScene is the deferred demo from the teaching material: a gold
// sphere over a checkered floor plane, one white and one red light.
func DefaultScene() *Scene {
	on := true
	return &Scene{
		Camera: CameraConfig{
			Position: [3]float32{0, 2, 4},
			LookAt:   [3]float32{0, 0, 0},
			FOV:      45,
		},
		Exposure: 2.2,
		Lights: []LightConfig{
			{Position: [3]float32{2, 2, 2}, Color: [3]float32{400, 400, 400}},
			{Position: [3]float32{-2, 2, -2}, Color: [3]float32{400, 0, 0}},
		},
		Surfaces: []SurfaceConfig{
			{
				Primitive: "sphere",
				Size:      0.75,
				Material: MaterialConfig{
					Type:      "pbr",
					Albedo:    [3]float32{0.950, 0.71, 0.29},
					Metallic:  1.0,
					Roughness: 0.38,
					AO:        0.2,
				},
			},
			{
				Primitive: "plane",
				Position:  [3]float32{0, -0.45, 0},
				Size:      20,
				Static:    true,
				Material: MaterialConfig{
					Type:      "checker",
					CheckSize: 60,
					CheckOn:   &on,
				},
			},
		},
	}
}
