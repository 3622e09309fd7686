package views

import (
	"errors"

	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/components"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

const (
	RENDER_VIEW_RAY_TRACE       = "raytrace"
	RENDER_VIEW_RAY_MARCH       = "raymarch"
	RENDER_VIEW_OBJECTS         = "objects"
	RENDER_VIEW_COMPOSITE_RAYS  = "composite-rays"
	RENDER_VIEW_COMPOSITE_FINAL = "composite-final"
)

/**
 * @brief One pass of the frame. Render binds what the pass needs, draws and
 * unbinds everything it bound except, for the last pass, the back buffer.
 */
type RenderView interface {
	Name() string
	Render(ctx renderer.Context) error
}

/**
 * @brief The constant buffers shared by every pass. Their contents are
 * written by the scene renderer before the passes run; passes only bind them,
 * except for the per-object buffer.
 */
type Constants struct {
	Camera       *components.ConstantBuffer[metadata.CameraConstants]
	Object       *components.ConstantBuffer[metadata.ObjectConstants]
	Light        *components.ConstantBuffer[metadata.LightConstants]
	Tessellation *components.ConstantBuffer[metadata.TessellationConstants]
	Frame        *components.ConstantBuffer[metadata.FrameConstants]
	Ray          *components.ConstantBuffer[metadata.RayConstants]
}

func NewConstants() *Constants {
	return &Constants{
		Camera:       components.NewConstantBuffer[metadata.CameraConstants]("camera"),
		Object:       components.NewConstantBuffer[metadata.ObjectConstants]("object"),
		Light:        components.NewConstantBuffer[metadata.LightConstants]("light"),
		Tessellation: components.NewConstantBuffer[metadata.TessellationConstants]("tessellation"),
		Frame:        components.NewConstantBuffer[metadata.FrameConstants]("frame"),
		Ray:          components.NewConstantBuffer[metadata.RayConstants]("ray"),
	}
}

func (c *Constants) Load(device renderer.Device) error {
	for _, load := range []func(renderer.Device) error{
		c.Camera.Load, c.Object.Load, c.Light.Load, c.Tessellation.Load, c.Frame.Load, c.Ray.Load,
	} {
		if err := load(device); err != nil {
			c.Reset()
			return err
		}
	}
	return nil
}

func (c *Constants) Reset() {
	c.Camera.Reset()
	c.Object.Reset()
	c.Light.Reset()
	c.Tessellation.Reset()
	c.Frame.Reset()
	c.Ray.Reset()
}

// scope collects the undo step of every binding made in a pass so they run
// in reverse order even when a later step fails.
type scope struct {
	ctx      renderer.Context
	name     string
	releases []func() error
}

func beginScope(ctx renderer.Context, name string) *scope {
	if a, ok := ctx.(renderer.Annotator); ok && name != "" {
		a.BeginEvent(name)
	}
	return &scope{ctx: ctx, name: name}
}

func (s *scope) onEnd(release func() error) {
	s.releases = append(s.releases, release)
}

func (s *scope) end(err error) error {
	for i := len(s.releases) - 1; i >= 0; i-- {
		err = errors.Join(err, s.releases[i]())
	}
	s.releases = nil
	if a, ok := s.ctx.(renderer.Annotator); ok && s.name != "" {
		a.EndEvent()
	}
	return err
}
