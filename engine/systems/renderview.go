package systems

import (
	"fmt"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/views"
)

/** @brief The configuration for the render view system. */
type RenderViewSystemConfig struct {
	/** @brief The maximum number of views that can be registered with the system. */
	MaxViewCount uint16
}

/**
 * @brief Holds the passes of a frame in registration order and runs them
 * in that order.
 */
type RenderViewSystem struct {
	Lookup          map[string]uint16
	MaxViewCount    uint32
	RegisteredViews []views.RenderView
}

func NewRenderViewSystem(config RenderViewSystemConfig) (*RenderViewSystem, error) {
	if config.MaxViewCount == 0 {
		err := fmt.Errorf("func NewRenderViewSystem - config.MaxViewCount must be > 0")
		return nil, err
	}
	return &RenderViewSystem{
		MaxViewCount:    uint32(config.MaxViewCount),
		Lookup:          make(map[string]uint16, config.MaxViewCount),
		RegisteredViews: make([]views.RenderView, 0, config.MaxViewCount),
	}, nil
}

func (rvs *RenderViewSystem) Create(view views.RenderView) error {
	if view.Name() == "" {
		err := fmt.Errorf("render_view_system_create: name is required")
		return err
	}
	// Make sure there is not already an entry with this name already registered.
	if _, ok := rvs.Lookup[view.Name()]; ok {
		err := fmt.Errorf("render_view_system_create - A view named '%s' already exists. A new one will not be created", view.Name())
		return err
	}
	if uint32(len(rvs.RegisteredViews)) >= rvs.MaxViewCount {
		err := fmt.Errorf("render_view_system_create - No available space for a new view. Change system config to account for more")
		return err
	}
	rvs.Lookup[view.Name()] = uint16(len(rvs.RegisteredViews))
	rvs.RegisteredViews = append(rvs.RegisteredViews, view)
	return nil
}

func (rvs *RenderViewSystem) Get(name string) (views.RenderView, bool) {
	id, ok := rvs.Lookup[name]
	if !ok {
		return nil, false
	}
	return rvs.RegisteredViews[id], true
}

// Names returns the view names in the order they render.
func (rvs *RenderViewSystem) Names() []string {
	names := make([]string, len(rvs.RegisteredViews))
	for i, v := range rvs.RegisteredViews {
		names[i] = v.Name()
	}
	return names
}

/**
 * @brief Renders every view in order. A failing view stops the frame; the
 * views after it are not run.
 */
func (rvs *RenderViewSystem) Render(ctx renderer.Context) error {
	for _, view := range rvs.RegisteredViews {
		if err := view.Render(ctx); err != nil {
			core.LogError("render view %s failed: %v", view.Name(), err)
			return fmt.Errorf("render view %s: %w", view.Name(), err)
		}
	}
	return nil
}

func (rvs *RenderViewSystem) Shutdown() error {
	rvs.Lookup = make(map[string]uint16, rvs.MaxViewCount)
	rvs.RegisteredViews = rvs.RegisteredViews[:0]
	return nil
}
