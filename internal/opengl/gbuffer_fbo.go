package opengl

import (
	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/pkg/errors"
)

// GBufferFBO is the GPU-side G-buffer: three RGBA16F colour attachments
// (position+AO, normal+roughness, albedo+metallic) sharing one depth
// attachment. Mirrors the channel packing of the CPU gbuffer package —
// the two backends must stay texel-compatible.
type GBufferFBO struct {
	FBO       uint32
	PosTex    uint32
	NormalTex uint32
	AlbedoTex uint32
	DepthTex  uint32
	Width     int32
	Height    int32
}

// NewGBufferFBO allocates the attachment set at the given pixel size.
func NewGBufferFBO(width, height int) (*GBufferFBO, error) {
	g := &GBufferFBO{}
	if err := g.alloc(width, height); err != nil {
		g.Destroy()
		return nil, err
	}
	return g, nil
}

func (g *GBufferFBO) alloc(width, height int) error {
	if width <= 0 || height <= 0 {
		return errors.Errorf("gbuffer fbo: invalid dimensions %dx%d", width, height)
	}
	g.Width = int32(width)
	g.Height = int32(height)

	attach := func(tex *uint32) {
		gl.GenTextures(1, tex)
		gl.BindTexture(gl.TEXTURE_2D, *tex)
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA16F,
			g.Width, g.Height, 0, gl.RGBA, gl.HALF_FLOAT, nil)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	}
	attach(&g.PosTex)
	attach(&g.NormalTex)
	attach(&g.AlbedoTex)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	gl.GenTextures(1, &g.DepthTex)
	gl.BindTexture(gl.TEXTURE_2D, g.DepthTex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.DEPTH_COMPONENT24,
		g.Width, g.Height, 0, gl.DEPTH_COMPONENT, gl.UNSIGNED_INT, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	gl.GenFramebuffers(1, &g.FBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, g.FBO)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, g.PosTex, 0)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT1, gl.TEXTURE_2D, g.NormalTex, 0)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT2, gl.TEXTURE_2D, g.AlbedoTex, 0)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, g.DepthTex, 0)

	buffers := []uint32{gl.COLOR_ATTACHMENT0, gl.COLOR_ATTACHMENT1, gl.COLOR_ATTACHMENT2}
	gl.DrawBuffers(3, &buffers[0])

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		return errors.Errorf("gbuffer fbo: incomplete (0x%X)", status)
	}
	return nil
}

// Resize recreates every attachment at the new pixel dimensions.
func (g *GBufferFBO) Resize(width, height int) error {
	g.Destroy()
	return g.alloc(width, height)
}

// Destroy frees all GPU resources owned by this object.
func (g *GBufferFBO) Destroy() {
	if g.FBO != 0 {
		gl.DeleteFramebuffers(1, &g.FBO)
		g.FBO = 0
	}
	for _, tex := range []*uint32{&g.PosTex, &g.NormalTex, &g.AlbedoTex, &g.DepthTex} {
		if *tex != 0 {
			gl.DeleteTextures(1, tex)
			*tex = 0
		}
	}
}
