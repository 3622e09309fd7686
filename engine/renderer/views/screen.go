package views

import (
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/components"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

/**
 * @brief A full-screen pass into an offscreen framebuffer. The ray tracing
 * and ray marching passes differ only in their pixel shader.
 */
type ScreenView struct {
	name      string
	Target    *components.Framebuffer
	Quad      *components.Model
	Vertex    *components.VertexShader
	Pixel     *components.PixelShader
	Constants *Constants
}

func NewRayTraceView(target *components.Framebuffer, quad *components.Model, vs *components.VertexShader, ps *components.PixelShader, constants *Constants) *ScreenView {
	return &ScreenView{name: RENDER_VIEW_RAY_TRACE, Target: target, Quad: quad, Vertex: vs, Pixel: ps, Constants: constants}
}

func NewRayMarchView(target *components.Framebuffer, quad *components.Model, vs *components.VertexShader, ps *components.PixelShader, constants *Constants) *ScreenView {
	return &ScreenView{name: RENDER_VIEW_RAY_MARCH, Target: target, Quad: quad, Vertex: vs, Pixel: ps, Constants: constants}
}

func (v *ScreenView) Name() string {
	return v.name
}

func (v *ScreenView) Render(ctx renderer.Context) error {
	s := beginScope(ctx, v.name)
	return s.end(v.render(ctx, s))
}

func (v *ScreenView) render(ctx renderer.Context, s *scope) error {
	if err := v.Target.UseAsTarget(ctx); err != nil {
		return err
	}
	s.onEnd(func() error { return v.Target.ReleaseAsTarget(ctx) })

	if err := v.Constants.Camera.Use(ctx, metadata.CAMERA_CONSTANTS_SLOT, metadata.SHADER_STAGE_VERTEX, metadata.SHADER_STAGE_PIXEL); err != nil {
		return err
	}
	if err := v.Constants.Frame.Use(ctx, metadata.FRAME_CONSTANTS_SLOT, metadata.SHADER_STAGE_PIXEL); err != nil {
		return err
	}
	if err := v.Constants.Ray.Use(ctx, metadata.RAY_CONSTANTS_SLOT, metadata.SHADER_STAGE_PIXEL); err != nil {
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
