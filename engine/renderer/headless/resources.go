package headless

import (
	"fmt"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// handle is embedded by every resource the device hands out.
type handle struct {
	id       string
	released bool
	device   *Device
}

func (h *handle) ID() string {
	return h.id
}

func (h *handle) Release() {
	if h.released {
		return
	}
	h.released = true
	h.device.forget(h.id)
}

func (h *handle) Released() bool {
	return h.released
}

type buffer struct {
	handle
	desc metadata.BufferDesc
	data []byte
}

func (b *buffer) Desc() metadata.BufferDesc {
	return b.desc
}

// indices decodes the buffer as R32_UINT values.
func (b *buffer) indices() []uint32 {
	out := make([]uint32, len(b.data)/4)
	for i := range out {
		o := i * 4
		out[i] = uint32(b.data[o]) | uint32(b.data[o+1])<<8 | uint32(b.data[o+2])<<16 | uint32(b.data[o+3])<<24
	}
	return out
}

type texture struct {
	handle
	desc metadata.TextureDesc
}

func (t *texture) Desc() metadata.TextureDesc {
	return t.desc
}

type view struct {
	handle
	kind    metadata.ViewKind
	format  metadata.Format
	texture *texture
}

func (v *view) Kind() metadata.ViewKind {
	return v.kind
}

func (v *view) Format() metadata.Format {
	return v.format
}

func (v *view) Texture() metadata.Texture2D {
	return v.texture
}

type shader struct {
	handle
	stage metadata.ShaderStage
	name  string
}

func (s *shader) Stage() metadata.ShaderStage {
	return s.stage
}

type inputLayout struct {
	handle
	elements []metadata.InputElement
}

func (l *inputLayout) Elements() []metadata.InputElement {
	return l.elements
}

type rasterizerState struct {
	handle
	desc metadata.RasterizerDesc
}

func (r *rasterizerState) Desc() metadata.RasterizerDesc {
	return r.desc
}

type depthStencilState struct {
	handle
	desc metadata.DepthStencilDesc
}

func (d *depthStencilState) Desc() metadata.DepthStencilDesc {
	return d.desc
}

type samplerState struct {
	handle
	desc metadata.SamplerDesc
}

func (s *samplerState) Desc() metadata.SamplerDesc {
	return s.desc
}

// live fails for handles that were already released.
func live(h metadata.Handle) error {
	if h.Released() {
		err := fmt.Errorf("%w: %s", core.ErrReleasedHandle, h.ID())
		core.LogError("%v", err)
		return err
	}
	return nil
}
