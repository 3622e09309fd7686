package views

import (
	"fmt"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/components"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

type TextureBinding struct {
	Texture *components.Texture
	Stage   metadata.ShaderStage
	Slot    uint32
}

func (b TextureBinding) use(ctx renderer.Context) error {
	if b.Stage == metadata.SHADER_STAGE_DOMAIN {
		return b.Texture.UseDomainTexture(ctx, b.Slot)
	}
	return b.Texture.UseTexture(ctx, b.Slot)
}

func (b TextureBinding) release(ctx renderer.Context) error {
	if b.Stage == metadata.SHADER_STAGE_DOMAIN {
		return b.Texture.ReleaseDomainTexture(ctx, b.Slot)
	}
	return b.Texture.ReleaseTexture(ctx, b.Slot)
}

/**
 * @brief One object of the object pass: its geometry, world transform, the
 * shader stages it draws with and the textures it samples. Hull, Domain and
 * Geometry are optional.
 */
type ObjectDraw struct {
	Name     string
	Model    components.Drawable
	World    math.Mat4
	Vertex   *components.VertexShader
	Hull     *components.HullShader
	Domain   *components.DomainShader
	Geometry *components.GeometryShader
	Pixel    *components.PixelShader
	Textures []TextureBinding
	Raster   components.RasterMode
}

var objectStages = []metadata.ShaderStage{
	metadata.SHADER_STAGE_VERTEX,
	metadata.SHADER_STAGE_HULL,
	metadata.SHADER_STAGE_DOMAIN,
	metadata.SHADER_STAGE_GEOMETRY,
	metadata.SHADER_STAGE_PIXEL,
}

/**
 * @brief Draws the tessellated, billboarded and plain objects into one
 * framebuffer. Every object may switch the rasterizer; the default state is
 * restored after each of them.
 */
type ObjectsView struct {
	Target     *components.Framebuffer
	Rasterizer *components.RasterizerStates
	Sampler    *components.Sampler
	Constants  *Constants
	Draws      []ObjectDraw
	// Wireframe overrides the raster mode of every object.
	Wireframe bool
}

func NewObjectsView(target *components.Framebuffer, rasterizer *components.RasterizerStates, sampler *components.Sampler, constants *Constants) *ObjectsView {
	return &ObjectsView{
		Target:     target,
		Rasterizer: rasterizer,
		Sampler:    sampler,
		Constants:  constants,
	}
}

func (v *ObjectsView) Name() string {
	return RENDER_VIEW_OBJECTS
}

func (v *ObjectsView) Add(draw ObjectDraw) {
	v.Draws = append(v.Draws, draw)
}

func (v *ObjectsView) Render(ctx renderer.Context) error {
	s := beginScope(ctx, RENDER_VIEW_OBJECTS)
	return s.end(v.render(ctx, s))
}

func (v *ObjectsView) render(ctx renderer.Context, s *scope) error {
	if err := v.Target.UseAsTarget(ctx); err != nil {
		return err
	}
	s.onEnd(func() error { return v.Target.ReleaseAsTarget(ctx) })

	if err := v.Constants.Camera.Use(ctx, metadata.CAMERA_CONSTANTS_SLOT, objectStages...); err != nil {
		return err
	}
	if err := v.Constants.Light.Use(ctx, metadata.LIGHT_CONSTANTS_SLOT, metadata.SHADER_STAGE_PIXEL); err != nil {
		return err
	}
	if err := v.Constants.Tessellation.Use(ctx, metadata.TESSELLATION_CONSTANTS_SLOT, metadata.SHADER_STAGE_HULL, metadata.SHADER_STAGE_DOMAIN); err != nil {
		return err
	}
	if err := v.Constants.Frame.Use(ctx, metadata.FRAME_CONSTANTS_SLOT, objectStages...); err != nil {
		return err
	}
	for _, stage := range []metadata.ShaderStage{metadata.SHADER_STAGE_DOMAIN, metadata.SHADER_STAGE_PIXEL} {
		if err := v.Sampler.Use(ctx, stage, 0); err != nil {
			return err
		}
		stage := stage
		s.onEnd(func() error { return v.Sampler.Release(ctx, stage, 0) })
	}

	for i := range v.Draws {
		if err := v.drawObject(ctx, &v.Draws[i]); err != nil {
			return err
		}
	}
	return nil
}

func (v *ObjectsView) drawObject(ctx renderer.Context, d *ObjectDraw) error {
	if d.Model == nil || d.Vertex == nil || d.Pixel == nil {
		err := fmt.Errorf("%w: object %q needs a model, a vertex shader and a pixel shader", core.ErrIncompletePipeline, d.Name)
		core.LogError("%v", err)
		return err
	}
	// the object's bindings are undone before the next one starts
	s := beginScope(ctx, "")

	inverse, ok := d.World.Inverse()
	if !ok {
		core.LogWarn("world matrix of %q is singular, lighting will use identity", d.Name)
		inverse = math.NewMat4Identity()
	}
	object := metadata.ObjectConstants{
		World:        d.World.Transposed(),
		InverseWorld: inverse.Transposed(),
	}
	if err := v.Constants.Object.Update(ctx, &object); err != nil {
		return s.end(err)
	}
	if err := v.Constants.Object.Use(ctx, metadata.OBJECT_CONSTANTS_SLOT, objectStages...); err != nil {
		return s.end(err)
	}

	mode := d.Raster
	if v.Wireframe {
		mode = components.RASTER_MODE_WIREFRAME
	}
	if err := v.Rasterizer.Apply(ctx, mode); err != nil {
		return s.end(err)
	}
	s.onEnd(func() error { return v.Rasterizer.Restore(ctx) })

	programs := []components.ShaderProgram{d.Vertex}
	optional := []components.ShaderProgram{}
	if d.Hull != nil {
		optional = append(optional, d.Hull)
	}
	if d.Domain != nil {
		optional = append(optional, d.Domain)
	}
	if d.Geometry != nil {
		optional = append(optional, d.Geometry)
	}
	programs = append(programs, optional...)
	programs = append(programs, d.Pixel)
	for _, p := range programs {
		if err := p.Use(ctx); err != nil {
			return s.end(err)
		}
	}
	for _, p := range optional {
		p := p
		s.onEnd(func() error { return p.Release(ctx) })
	}

	for _, binding := range d.Textures {
		if err := binding.use(ctx); err != nil {
			return s.end(err)
		}
		binding := binding
		s.onEnd(func() error { return binding.release(ctx) })
	}

	return s.end(d.Model.Draw(ctx))
}
