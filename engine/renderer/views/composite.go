package views

import (
	"fmt"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/components"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

const (
	COMPOSITE_FIRST_SLOT  uint32 = 0
	COMPOSITE_SECOND_SLOT uint32 = 2
)

// SwapChainTargets returns the back buffer and its depth target.
type SwapChainTargets func() (colour metadata.View, depth metadata.View)

/**
 * @brief Blends two framebuffers with a full-screen quad. First is sampled
 * at slots 0 and 1, Second at slots 2 and 3. With a nil Target the result
 * goes to the back buffer, which is left bound for presentation.
 */
type CompositeView struct {
	name        string
	Target      *components.Framebuffer
	BackBuffer  SwapChainTargets
	ClearColour [4]float32
	First       *components.Framebuffer
	Second      *components.Framebuffer
	Quad        *components.Model
	Vertex      *components.VertexShader
	Pixel       *components.PixelShader
	Sampler     *components.Sampler
	Constants   *Constants
}

// NewRayCompositeView blends the ray traced and ray marched layers into target.
func NewRayCompositeView(target, rayTraced, rayMarched *components.Framebuffer, quad *components.Model, vs *components.VertexShader, ps *components.PixelShader, sampler *components.Sampler, constants *Constants) *CompositeView {
	return &CompositeView{
		name:      RENDER_VIEW_COMPOSITE_RAYS,
		Target:    target,
		First:     rayTraced,
		Second:    rayMarched,
		Quad:      quad,
		Vertex:    vs,
		Pixel:     ps,
		Sampler:   sampler,
		Constants: constants,
	}
}

// NewFinalCompositeView blends the ray layers and the object layer into the back buffer.
func NewFinalCompositeView(backBuffer SwapChainTargets, clearColour [4]float32, rays, objects *components.Framebuffer, quad *components.Model, vs *components.VertexShader, ps *components.PixelShader, sampler *components.Sampler, constants *Constants) *CompositeView {
	return &CompositeView{
		name:        RENDER_VIEW_COMPOSITE_FINAL,
		BackBuffer:  backBuffer,
		ClearColour: clearColour,
		First:       rays,
		Second:      objects,
		Quad:        quad,
		Vertex:      vs,
		Pixel:       ps,
		Sampler:     sampler,
		Constants:   constants,
	}
}

func (v *CompositeView) Name() string {
	return v.name
}

func (v *CompositeView) Render(ctx renderer.Context) error {
	s := beginScope(ctx, v.name)
	return s.end(v.render(ctx, s))
}

func (v *CompositeView) bindTarget(ctx renderer.Context, s *scope) error {
	if v.Target != nil {
		if err := v.Target.UseAsTarget(ctx); err != nil {
			return err
		}
		s.onEnd(func() error { return v.Target.ReleaseAsTarget(ctx) })
		return nil
	}
	if v.BackBuffer == nil {
		err := fmt.Errorf("%w: %s has neither a framebuffer nor the back buffer to draw into", core.ErrIncompletePipeline, v.name)
		core.LogError("%v", err)
		return err
	}
	colour, depth := v.BackBuffer()
	if err := ctx.ClearRenderTargetView(colour, v.ClearColour); err != nil {
		return err
	}
	if err := ctx.ClearDepthStencilView(depth, 1.0); err != nil {
		return err
	}
	return ctx.OMSetRenderTargets([]metadata.View{colour}, depth)
}

func (v *CompositeView) render(ctx renderer.Context, s *scope) error {
	if err := v.bindTarget(ctx, s); err != nil {
		return err
	}

	if err := v.Sampler.Use(ctx, metadata.SHADER_STAGE_PIXEL, 0); err != nil {
		return err
	}
	s.onEnd(func() error { return v.Sampler.Release(ctx, metadata.SHADER_STAGE_PIXEL, 0) })

	if err := v.First.UseAsTexture(ctx, COMPOSITE_FIRST_SLOT); err != nil {
		return err
	}
	s.onEnd(func() error { return v.First.ReleaseAsTexture(ctx, COMPOSITE_FIRST_SLOT) })

	if err := v.Second.UseAsTexture(ctx, COMPOSITE_SECOND_SLOT); err != nil {
		return err
	}
	s.onEnd(func() error { return v.Second.ReleaseAsTexture(ctx, COMPOSITE_SECOND_SLOT) })

	if err := v.Constants.Frame.Use(ctx, metadata.FRAME_CONSTANTS_SLOT, metadata.SHADER_STAGE_PIXEL); err != nil {
		return err
	}
	if err := v.Vertex.Use(ctx); err != nil {
		return err
	}
	if err := v.Pixel.Use(ctx); err != nil {
		return err
	}
	return v.Quad.Draw(ctx)
}
