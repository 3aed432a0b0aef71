package main

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"deferred-engine/config"
	"deferred-engine/core"
	"deferred-engine/internal/opengl"
	"deferred-engine/lighting"
	"deferred-engine/scene"
)

// runGL renders the scene interactively: same G-buffer layout and shading
// as the CPU path, executed on the GPU. Arrow keys orbit the camera,
// escape quits.
func runGL(scn *config.Scene, width, height int) error {
	window, err := core.NewWindow(core.WindowConfig{
		Width:     width,
		Height:    height,
		Title:     "Deferred Engine",
		Resizable: true,
		VSync:     true,
	})
	if err != nil {
		return err
	}
	defer window.Destroy()

	fbWidth, fbHeight := window.GetFramebufferSize()
	renderer, err := opengl.NewRenderer(fbWidth, fbHeight)
	if err != nil {
		return err
	}
	defer renderer.Destroy()

	calls, lights, view, err := scn.Build(fbWidth, fbHeight)
	if err != nil {
		return err
	}

	// Wrap each draw call's vertex data once so the renderer's upload cache
	// stays keyed to stable mesh pointers across frames.
	meshes := make([]*scene.Mesh, len(calls))
	for i, c := range calls {
		meshes[i] = scene.CreateMeshFromData(fmt.Sprintf("surface_%d", i), c.Mesh.Vertices, c.Mesh.Indices)
	}

	target := mgl32.Vec3{scn.Camera.LookAt[0], scn.Camera.LookAt[1], scn.Camera.LookAt[2]}
	offset := view.CamPos.Sub(target)
	cam := scene.NewOrbitCamera(target, offset.Len(),
		mgl32.DegToRad(scn.Camera.FOV), float32(fbWidth)/float32(fbHeight))
	if offset.Len() > 0 {
		cam.Pitch = math32.Asin(offset.Y() / offset.Len())
		cam.Yaw = math32.Atan2(offset.X(), offset.Z())
		cam.UpdatePosition()
	}

	fmt.Printf("OpenGL demo: %d surfaces, %d lights\n", len(calls), lights.Count())

	const orbitStep = 0.02
	for !window.ShouldClose() {
		window.PollEvents()
		if window.IsKeyPressed(core.KeyEscape) {
			break
		}
		if window.IsKeyPressed(core.KeyLeft) {
			cam.Orbit(-orbitStep, 0)
		}
		if window.IsKeyPressed(core.KeyRight) {
			cam.Orbit(orbitStep, 0)
		}
		if window.IsKeyPressed(core.KeyUp) {
			cam.Orbit(0, orbitStep)
		}
		if window.IsKeyPressed(core.KeyDown) {
			cam.Orbit(0, -orbitStep)
		}

		if w, h := window.GetFramebufferSize(); w != fbWidth || h != fbHeight {
			fbWidth, fbHeight = w, h
			if err := renderer.Resize(fbWidth, fbHeight); err != nil {
				return err
			}
			cam.UpdateAspectRatio(float32(fbWidth), float32(fbHeight))
		}

		viewMat := cam.GetViewMatrix()
		projMat := cam.GetProjectionMatrix()
		frameView := lighting.View{CamPos: cam.Position, Exposure: view.Exposure}

		draws := make([]opengl.DrawCall, len(calls))
		for i, c := range calls {
			t := core.NewTransformUniforms(c.Transform.Model, viewMat, projMat)
			draws[i] = opengl.DrawCall{
				Mesh:        meshes[i],
				MVP:         [16]float32(t.MVP),
				NormalMat:   [16]float32(t.NormalMatrix),
				Model:       [16]float32(t.Model),
				Material:    c.Material,
				StaticWorld: c.StaticWorld,
			}
		}

		if err := renderer.RenderFrame(draws, lights, frameView); err != nil {
			return err
		}
		window.SwapBuffers()
	}
	return nil
}
