package components

import (
	"fmt"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

type RasterMode int

const (
	RASTER_MODE_DEFAULT RasterMode = iota
	RASTER_MODE_CULL_BACK
	RASTER_MODE_WIREFRAME
)

func (m RasterMode) String() string {
	switch m {
	case RASTER_MODE_CULL_BACK:
		return "cull-back"
	case RASTER_MODE_WIREFRAME:
		return "wireframe"
	default:
		return "default"
	}
}

/**
 * @brief RasterizerStates owns one state object per mode and remembers which
 * one is bound, so a pass that changes the mode can always put the default
 * back.
 */
type RasterizerStates struct {
	states  map[RasterMode]metadata.RasterizerState
	current RasterMode
}

func NewRasterizerStates() *RasterizerStates {
	return &RasterizerStates{current: RASTER_MODE_DEFAULT}
}

func rasterDesc(mode RasterMode) metadata.RasterizerDesc {
	desc := metadata.DefaultRasterizerDesc()
	switch mode {
	case RASTER_MODE_CULL_BACK:
		desc.CullMode = metadata.CULL_BACK
		desc.FrontCounterClockwise = true
	case RASTER_MODE_WIREFRAME:
		desc.FillMode = metadata.FILL_WIREFRAME
		desc.CullMode = metadata.CULL_NONE
	}
	return desc
}

func (rs *RasterizerStates) Load(device renderer.Device) error {
	rs.Reset()
	rs.states = make(map[RasterMode]metadata.RasterizerState)
	for _, mode := range []RasterMode{RASTER_MODE_DEFAULT, RASTER_MODE_CULL_BACK, RASTER_MODE_WIREFRAME} {
		state, err := device.CreateRasterizerState(rasterDesc(mode))
		if err != nil {
			rs.Reset()
			return fmt.Errorf("%s rasterizer state: %w", mode, err)
		}
		rs.states[mode] = state
	}
	return nil
}

// Current returns the mode last applied.
func (rs *RasterizerStates) Current() RasterMode {
	return rs.current
}

func (rs *RasterizerStates) Apply(ctx renderer.Context, mode RasterMode) error {
	state, ok := rs.states[mode]
	if !ok {
		err := fmt.Errorf("%w: rasterizer state %s is not loaded", core.ErrNotReady, mode)
		core.LogError("%v", err)
		return err
	}
	if err := ctx.RSSetState(state); err != nil {
		return err
	}
	rs.current = mode
	return nil
}

// Restore binds the default state again.
func (rs *RasterizerStates) Restore(ctx renderer.Context) error {
	return rs.Apply(ctx, RASTER_MODE_DEFAULT)
}

func (rs *RasterizerStates) Reset() {
	for _, state := range rs.states {
		state.Release()
	}
	rs.states = nil
	rs.current = RASTER_MODE_DEFAULT
}

/**
 * @brief A sampler state bound to one or more stages.
 */
type Sampler struct {
	desc  metadata.SamplerDesc
	state metadata.SamplerState
}

func NewSampler(desc metadata.SamplerDesc) *Sampler {
	return &Sampler{desc: desc}
}

func (s *Sampler) Load(device renderer.Device) error {
	s.Reset()
	state, err := device.CreateSamplerState(s.desc)
	if err != nil {
		return fmt.Errorf("sampler: %w", err)
	}
	s.state = state
	return nil
}

func (s *Sampler) Use(ctx renderer.Context, stage metadata.ShaderStage, slot uint32) error {
	if s.state == nil {
		return fmt.Errorf("%w: sampler used before load", core.ErrNotReady)
	}
	return ctx.SetSamplers(stage, slot, []metadata.SamplerState{s.state})
}

func (s *Sampler) Release(ctx renderer.Context, stage metadata.ShaderStage, slot uint32) error {
	return ctx.SetSamplers(stage, slot, []metadata.SamplerState{nil})
}

func (s *Sampler) Reset() {
	if s.state != nil {
		s.state.Release()
		s.state = nil
	}
}
