// Package opengl is the GPU execution path of the deferred pipeline. It
// reproduces the CPU passes on an OpenGL 4.1 core context: geometry into a
// three-attachment G-buffer FBO, then a fullscreen lighting resolve into
// the default framebuffer.
package opengl

import (
	"strings"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/pkg/errors"

	"deferred-engine/lighting"
	"deferred-engine/material"
	"deferred-engine/scene"
)

// GPUMesh holds the OpenGL buffer objects for an uploaded mesh.
type GPUMesh struct {
	VAO        uint32
	VBO        uint32
	EBO        uint32
	IndexCount int32
	VertCount  int32
	HasIndices bool
}

// Renderer owns the two shader programs, the G-buffer FBO, and the
// uploaded meshes.
type Renderer struct {
	geomProg  uint32
	lightProg uint32

	// geometry pass uniforms
	mvpLoc          int32
	normalMatrixLoc int32
	modelLoc        int32
	staticWorldLoc  int32
	useCheckerLoc   int32
	matAlbedoLoc    int32
	colour1Loc      int32
	colour2Loc      int32
	checkSizeLoc    int32
	checkOnLoc      int32
	matMetallicLoc  int32
	matRoughnessLoc int32
	matAOLoc        int32

	// lighting pass uniforms
	positionTexLoc int32
	normalTexLoc   int32
	albedoTexLoc   int32
	numLightsLoc   int32
	lightPosLoc    int32
	lightColorLoc  int32
	camPosLoc      int32
	exposureLoc    int32

	gbuf    *GBufferFBO
	quadVAO uint32

	gpuMeshes map[*scene.Mesh]*GPUMesh
}

// DrawCall binds one uploaded mesh with its per-draw state, mirroring
// deferred.DrawCall but keyed for GPU upload.
type DrawCall struct {
	Mesh        *scene.Mesh
	MVP         [16]float32
	NormalMat   [16]float32
	Model       [16]float32
	Material    material.Evaluator
	StaticWorld bool
}

// NewRenderer initializes OpenGL, compiles both programs, and allocates
// the G-buffer at the given viewport size. Requires a current context.
func NewRenderer(width, height int) (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, errors.Wrap(err, "opengl init")
	}

	r := &Renderer{gpuMeshes: make(map[*scene.Mesh]*GPUMesh)}

	var err error
	if r.geomProg, err = newProgram(geomVertSrc, geomFragSrc); err != nil {
		return nil, errors.Wrap(err, "geometry program")
	}
	if r.lightProg, err = newProgram(lightVertSrc, lightFragSrc); err != nil {
		return nil, errors.Wrap(err, "lighting program")
	}

	r.mvpLoc = gl.GetUniformLocation(r.geomProg, gl.Str("mvp\x00"))
	r.normalMatrixLoc = gl.GetUniformLocation(r.geomProg, gl.Str("normalMatrix\x00"))
	r.modelLoc = gl.GetUniformLocation(r.geomProg, gl.Str("model\x00"))
	r.staticWorldLoc = gl.GetUniformLocation(r.geomProg, gl.Str("staticWorld\x00"))
	r.useCheckerLoc = gl.GetUniformLocation(r.geomProg, gl.Str("useChecker\x00"))
	r.matAlbedoLoc = gl.GetUniformLocation(r.geomProg, gl.Str("matAlbedo\x00"))
	r.colour1Loc = gl.GetUniformLocation(r.geomProg, gl.Str("colour1\x00"))
	r.colour2Loc = gl.GetUniformLocation(r.geomProg, gl.Str("colour2\x00"))
	r.checkSizeLoc = gl.GetUniformLocation(r.geomProg, gl.Str("checkSize\x00"))
	r.checkOnLoc = gl.GetUniformLocation(r.geomProg, gl.Str("checkOn\x00"))
	r.matMetallicLoc = gl.GetUniformLocation(r.geomProg, gl.Str("matMetallic\x00"))
	r.matRoughnessLoc = gl.GetUniformLocation(r.geomProg, gl.Str("matRoughness\x00"))
	r.matAOLoc = gl.GetUniformLocation(r.geomProg, gl.Str("matAO\x00"))

	r.positionTexLoc = gl.GetUniformLocation(r.lightProg, gl.Str("positionTex\x00"))
	r.normalTexLoc = gl.GetUniformLocation(r.lightProg, gl.Str("normalTex\x00"))
	r.albedoTexLoc = gl.GetUniformLocation(r.lightProg, gl.Str("albedoTex\x00"))
	r.numLightsLoc = gl.GetUniformLocation(r.lightProg, gl.Str("numLights\x00"))
	r.lightPosLoc = gl.GetUniformLocation(r.lightProg, gl.Str("lightPositions[0]\x00"))
	r.lightColorLoc = gl.GetUniformLocation(r.lightProg, gl.Str("lightColors[0]\x00"))
	r.camPosLoc = gl.GetUniformLocation(r.lightProg, gl.Str("camPos\x00"))
	r.exposureLoc = gl.GetUniformLocation(r.lightProg, gl.Str("exposure\x00"))

	if r.gbuf, err = NewGBufferFBO(width, height); err != nil {
		return nil, err
	}

	// Empty VAO for the fullscreen triangle; positions come from
	// gl_VertexID.
	gl.GenVertexArrays(1, &r.quadVAO)

	return r, nil
}

// Resize recreates the G-buffer for a new viewport. Failure is surfaced to
// the host, which owns the retry policy.
func (r *Renderer) Resize(width, height int) error {
	return r.gbuf.Resize(width, height)
}

// RenderFrame runs both passes for one frame: geometry into the G-buffer
// FBO, then the lighting resolve into the default framebuffer. The FBO
// unbind between the passes is the write-visibility barrier.
func (r *Renderer) RenderFrame(draws []DrawCall, lights *lighting.LightBlock, view lighting.View) error {
	if lights == nil {
		return errors.New("opengl: nil light block")
	}
	if err := view.Validate(); err != nil {
		return err
	}

	// ── Geometry pass ─────────────────────────────────────────────────────
	gl.BindFramebuffer(gl.FRAMEBUFFER, r.gbuf.FBO)
	gl.Viewport(0, 0, r.gbuf.Width, r.gbuf.Height)
	gl.ClearColor(0, 0, 0, 0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)

	gl.UseProgram(r.geomProg)
	for i := range draws {
		if err := r.drawGeometry(&draws[i]); err != nil {
			gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
			return err
		}
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	// ── Lighting pass ─────────────────────────────────────────────────────
	gl.Viewport(0, 0, r.gbuf.Width, r.gbuf.Height)
	gl.Disable(gl.DEPTH_TEST)
	gl.UseProgram(r.lightProg)

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.gbuf.PosTex)
	gl.Uniform1i(r.positionTexLoc, 0)
	gl.ActiveTexture(gl.TEXTURE1)
	gl.BindTexture(gl.TEXTURE_2D, r.gbuf.NormalTex)
	gl.Uniform1i(r.normalTexLoc, 1)
	gl.ActiveTexture(gl.TEXTURE2)
	gl.BindTexture(gl.TEXTURE_2D, r.gbuf.AlbedoTex)
	gl.Uniform1i(r.albedoTexLoc, 2)

	active := lights.Lights()
	positions := make([]float32, 0, len(active)*3)
	colors := make([]float32, 0, len(active)*3)
	for _, l := range active {
		positions = append(positions, l.Position.X(), l.Position.Y(), l.Position.Z())
		colors = append(colors, l.Color.X(), l.Color.Y(), l.Color.Z())
	}
	gl.Uniform1i(r.numLightsLoc, int32(len(active)))
	if len(active) > 0 {
		gl.Uniform3fv(r.lightPosLoc, int32(len(active)), &positions[0])
		gl.Uniform3fv(r.lightColorLoc, int32(len(active)), &colors[0])
	}
	gl.Uniform3f(r.camPosLoc, view.CamPos.X(), view.CamPos.Y(), view.CamPos.Z())
	gl.Uniform1f(r.exposureLoc, view.Exposure)

	gl.BindVertexArray(r.quadVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)
	gl.BindVertexArray(0)

	return nil
}

func (r *Renderer) drawGeometry(d *DrawCall) error {
	gpu := r.ensureUploaded(d.Mesh)

	gl.UniformMatrix4fv(r.mvpLoc, 1, false, &d.MVP[0])
	gl.UniformMatrix4fv(r.normalMatrixLoc, 1, false, &d.NormalMat[0])
	gl.UniformMatrix4fv(r.modelLoc, 1, false, &d.Model[0])
	gl.Uniform1i(r.staticWorldLoc, boolToInt32(d.StaticWorld))

	switch m := d.Material.(type) {
	case *material.PBR:
		gl.Uniform1i(r.useCheckerLoc, 0)
		gl.Uniform3f(r.matAlbedoLoc, m.Albedo.X(), m.Albedo.Y(), m.Albedo.Z())
		gl.Uniform1f(r.matMetallicLoc, m.Metallic)
		gl.Uniform1f(r.matRoughnessLoc, m.Roughness)
		gl.Uniform1f(r.matAOLoc, m.AO)
	case *material.Checker:
		gl.Uniform1i(r.useCheckerLoc, 1)
		gl.Uniform4f(r.colour1Loc, m.Colour1.R, m.Colour1.G, m.Colour1.B, m.Colour1.A)
		gl.Uniform4f(r.colour2Loc, m.Colour2.R, m.Colour2.G, m.Colour2.B, m.Colour2.A)
		gl.Uniform1f(r.checkSizeLoc, m.CheckSize)
		gl.Uniform1i(r.checkOnLoc, boolToInt32(m.CheckOn))
		gl.Uniform1f(r.matMetallicLoc, m.Metallic)
		gl.Uniform1f(r.matRoughnessLoc, m.Roughness)
		gl.Uniform1f(r.matAOLoc, m.AO)
	default:
		return errors.Errorf("opengl: unsupported material type %T", d.Material)
	}

	gl.BindVertexArray(gpu.VAO)
	if gpu.HasIndices {
		gl.DrawElements(gl.TRIANGLES, gpu.IndexCount, gl.UNSIGNED_INT, nil)
	} else {
		gl.DrawArrays(gl.TRIANGLES, 0, gpu.VertCount)
	}
	gl.BindVertexArray(0)
	return nil
}

// ensureUploaded lazily uploads a mesh as an interleaved 8-float stream:
// position, normal, uv.
func (r *Renderer) ensureUploaded(mesh *scene.Mesh) *GPUMesh {
	if gpu, ok := r.gpuMeshes[mesh]; ok {
		return gpu
	}

	data := mesh.Data
	buf := make([]float32, 0, len(data.Vertices)*8)
	for _, v := range data.Vertices {
		buf = append(buf,
			v.Position.X(), v.Position.Y(), v.Position.Z(),
			v.Normal.X(), v.Normal.Y(), v.Normal.Z(),
			v.UV.X(), v.UV.Y())
	}

	gpu := &GPUMesh{VertCount: int32(len(data.Vertices))}
	gl.GenVertexArrays(1, &gpu.VAO)
	gl.BindVertexArray(gpu.VAO)

	gl.GenBuffers(1, &gpu.VBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, gpu.VBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(buf)*4, gl.Ptr(buf), gl.STATIC_DRAW)

	stride := int32(8 * 4)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, uintptr(3*4))
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, stride, uintptr(6*4))

	if len(data.Indices) > 0 {
		gl.GenBuffers(1, &gpu.EBO)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gpu.EBO)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(data.Indices)*4, gl.Ptr(data.Indices), gl.STATIC_DRAW)
		gpu.IndexCount = int32(len(data.Indices))
		gpu.HasIndices = true
	}

	gl.BindVertexArray(0)
	r.gpuMeshes[mesh] = gpu
	return gpu
}

// ReleaseMesh frees the GPU buffers for a mesh.
func (r *Renderer) ReleaseMesh(mesh *scene.Mesh) {
	gpu, ok := r.gpuMeshes[mesh]
	if !ok {
		return
	}
	gl.DeleteBuffers(1, &gpu.VBO)
	if gpu.HasIndices {
		gl.DeleteBuffers(1, &gpu.EBO)
	}
	gl.DeleteVertexArrays(1, &gpu.VAO)
	delete(r.gpuMeshes, mesh)
}

// Destroy frees every GPU resource the renderer owns.
func (r *Renderer) Destroy() {
	for mesh := range r.gpuMeshes {
		r.ReleaseMesh(mesh)
	}
	if r.quadVAO != 0 {
		gl.DeleteVertexArrays(1, &r.quadVAO)
		r.quadVAO = 0
	}
	if r.geomProg != 0 {
		gl.DeleteProgram(r.geomProg)
		r.geomProg = 0
	}
	if r.lightProg != 0 {
		gl.DeleteProgram(r.lightProg)
		r.lightProg = 0
	}
	if r.gbuf != nil {
		r.gbuf.Destroy()
		r.gbuf = nil
	}
}

// ── Shader compilation ────────────────────────────────────────────────────────

func newProgram(vertSrc, fragSrc string) (uint32, error) {
	vert, err := compileShader(vertSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, errors.Wrap(err, "vertex shader")
	}
	frag, err := compileShader(fragSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vert)
		return 0, errors.Wrap(err, "fragment shader")
	}

	prog := gl.CreateProgram()
	gl.AttachShader(prog, vert)
	gl.AttachShader(prog, frag)
	gl.LinkProgram(prog)
	gl.DeleteShader(vert)
	gl.DeleteShader(frag)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
		gl.DeleteProgram(prog)
		return 0, errors.Errorf("link failed: %s", log)
	}
	return prog, nil
}

func compileShader(src string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(src)
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, errors.Errorf("compile failed: %s", log)
	}
	return shader, nil
}

func boolToInt32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
