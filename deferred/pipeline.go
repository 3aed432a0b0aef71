package deferred

import (
	"github.com/pkg/errors"

	"deferred-engine/core"
	"deferred-engine/gbuffer"
	"deferred-engine/lighting"
)

// Pipeline owns the G-buffer and the colour output for one viewport and
// runs the two passes in order. A frame either completes both passes or
// returns an error and is discarded by the host; there is no mid-frame
// cancellation.
type Pipeline struct {
	gb       *gbuffer.GBuffer
	out      *core.Image
	geometry *GeometryPass
	resolve  *LightingPass
}

// NewPipeline allocates a pipeline for the given viewport.
func NewPipeline(width, height int) (*Pipeline, error) {
	gb, err := gbuffer.New(width, height)
	if err != nil {
		return nil, errors.Wrap(err, "deferred: G-buffer allocation")
	}
	out, err := core.NewImage(width, height)
	if err != nil {
		return nil, errors.Wrap(err, "deferred: output allocation")
	}
	return &Pipeline{
		gb:       gb,
		out:      out,
		geometry: NewGeometryPass(gb),
		resolve:  NewLightingPass(gb),
	}, nil
}

// Resize recreates the G-buffer and output at new viewport dimensions.
// On failure the pipeline keeps its previous buffers and the error is
// surfaced for the host's retry policy.
func (p *Pipeline) Resize(width, height int) error {
	out, err := core.NewImage(width, height)
	if err != nil {
		return errors.Wrap(err, "deferred: output allocation")
	}
	if err := p.gb.Resize(width, height); err != nil {
		return err
	}
	p.out = out
	return nil
}

// GBuffer exposes the intermediate buffer set, primarily for inspection in
// tests and debug views.
func (p *Pipeline) GBuffer() *gbuffer.GBuffer { return p.gb }

// RenderFrame runs the geometry pass, then the lighting resolve, and
// returns the finished colour image. The returned image is owned by the
// pipeline and overwritten on the next frame.
//
// All configuration errors (light count, exposure) surface before any
// pixel work happens.
func (p *Pipeline) RenderFrame(calls []DrawCall, lights *lighting.LightBlock, view lighting.View) (*core.Image, error) {
	if lights == nil {
		return nil, errors.New("deferred: nil light block")
	}
	if err := view.Validate(); err != nil {
		return nil, err
	}

	p.gb.Clear()
	if err := p.geometry.Render(calls); err != nil {
		return nil, err
	}
	// Geometry writes are complete here; the resolve may start reading.
	if err := p.resolve.Resolve(lights, view, p.out); err != nil {
		return nil, err
	}
	return p.out, nil
}
