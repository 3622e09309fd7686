package headless

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// FailurePredicate decides whether the next creation of the given resource
// kind fails. Used to exercise resource-creation error paths.
type FailurePredicate func(kind string) bool

/**
 * @brief Device is a software GPU device. It validates creation parameters,
 * keeps a copy of buffer contents and tracks every live handle. It is safe
 * for concurrent use.
 */
type Device struct {
	mu     sync.Mutex
	live   map[string]string
	failOn FailurePredicate
}

func NewDevice() *Device {
	return &Device{
		live: make(map[string]string),
	}
}

// InjectFailure installs p. A nil predicate disables injection.
func (d *Device) InjectFailure(p FailurePredicate) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failOn = p
}

// LiveResources returns the number of unreleased handles per kind.
func (d *Device) LiveResources() map[string]int {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[string]int)
	for _, kind := range d.live {
		out[kind]++
	}
	return out
}

// LiveCount returns the number of unreleased handles.
func (d *Device) LiveCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.live)
}

func (d *Device) newHandle(kind string) (handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failOn != nil && d.failOn(kind) {
		return handle{}, d.creationError(kind, "injected failure")
	}
	id := core.NewResourceID(kind)
	d.live[id] = kind
	return handle{id: id, device: d}, nil
}

func (d *Device) forget(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.live, id)
}

func (d *Device) creationError(kind, reason string) error {
	err := fmt.Errorf("%w: %s: %s", core.ErrResourceCreation, kind, reason)
	core.LogError("%v", err)
	return err
}

func (d *Device) CreateBuffer(desc metadata.BufferDesc, data []byte) (metadata.Buffer, error) {
	if desc.ByteWidth == 0 {
		return nil, d.creationError("buffer", "zero byte width")
	}
	if desc.BindFlags.Has(metadata.BIND_CONSTANT_BUFFER) && desc.ByteWidth%16 != 0 {
		return nil, d.creationError("buffer", fmt.Sprintf("constant buffer size %d is not a multiple of 16", desc.ByteWidth))
	}
	if desc.Usage == metadata.USAGE_IMMUTABLE && uint32(len(data)) != desc.ByteWidth {
		return nil, d.creationError("buffer", fmt.Sprintf("immutable buffer needs %d bytes of initial data, got %d", desc.ByteWidth, len(data)))
	}
	if data != nil && uint32(len(data)) > desc.ByteWidth {
		return nil, d.creationError("buffer", "initial data larger than the buffer")
	}
	h, err := d.newHandle("buffer")
	if err != nil {
		return nil, err
	}
	b := &buffer{handle: h, desc: desc, data: make([]byte, desc.ByteWidth)}
	copy(b.data, data)
	return b, nil
}

func (d *Device) CreateTexture2D(desc metadata.TextureDesc, data []byte) (metadata.Texture2D, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return nil, d.creationError("texture", fmt.Sprintf("invalid size %dx%d", desc.Width, desc.Height))
	}
	if desc.Format == metadata.FORMAT_UNKNOWN {
		return nil, d.creationError("texture", "unknown format")
	}
	if desc.Format.IsDepth() && desc.BindFlags.Has(metadata.BIND_RENDER_TARGET) {
		return nil, d.creationError("texture", "depth format bound as render target")
	}
	if desc.Usage == metadata.USAGE_IMMUTABLE && len(data) == 0 {
		return nil, d.creationError("texture", "immutable texture without initial data")
	}
	h, err := d.newHandle("texture")
	if err != nil {
		return nil, err
	}
	return &texture{handle: h, desc: desc}, nil
}

func (d *Device) createView(kind metadata.ViewKind, required metadata.BindFlags, tex metadata.Texture2D, format metadata.Format) (metadata.View, error) {
	t, ok := tex.(*texture)
	if !ok || t == nil {
		return nil, d.creationError(kind.String(), "texture was not created by this device")
	}
	if err := live(t); err != nil {
		return nil, err
	}
	if !t.desc.BindFlags.Has(required) {
		return nil, d.creationError(kind.String(), fmt.Sprintf("texture %s lacks bind flag %#x", t.id, required))
	}
	h, err := d.newHandle(kind.String())
	if err != nil {
		return nil, err
	}
	return &view{handle: h, kind: kind, format: format, texture: t}, nil
}

func (d *Device) CreateRenderTargetView(tex metadata.Texture2D, format metadata.Format) (metadata.View, error) {
	return d.createView(metadata.VIEW_RENDER_TARGET, metadata.BIND_RENDER_TARGET, tex, format)
}

func (d *Device) CreateDepthStencilView(tex metadata.Texture2D, format metadata.Format) (metadata.View, error) {
	if !format.IsDepth() {
		return nil, d.creationError("depth-stencil", fmt.Sprintf("format %s is not a depth format", format))
	}
	return d.createView(metadata.VIEW_DEPTH_STENCIL, metadata.BIND_DEPTH_STENCIL, tex, format)
}

func (d *Device) CreateShaderResourceView(tex metadata.Texture2D, format metadata.Format) (metadata.View, error) {
	return d.createView(metadata.VIEW_SHADER_RESOURCE, metadata.BIND_SHADER_RESOURCE, tex, format)
}

func (d *Device) CreateDepthStencilState(desc metadata.DepthStencilDesc) (metadata.DepthStencilState, error) {
	h, err := d.newHandle("depth-state")
	if err != nil {
		return nil, err
	}
	return &depthStencilState{handle: h, desc: desc}, nil
}

func (d *Device) CreateRasterizerState(desc metadata.RasterizerDesc) (metadata.RasterizerState, error) {
	h, err := d.newHandle("rasterizer-state")
	if err != nil {
		return nil, err
	}
	return &rasterizerState{handle: h, desc: desc}, nil
}

func (d *Device) CreateSamplerState(desc metadata.SamplerDesc) (metadata.SamplerState, error) {
	if desc.MaxAnisotropy > 16 {
		return nil, d.creationError("sampler", "anisotropy above 16")
	}
	h, err := d.newHandle("sampler")
	if err != nil {
		return nil, err
	}
	return &samplerState{handle: h, desc: desc}, nil
}

func (d *Device) CreateShader(stage metadata.ShaderStage, name string, bytecode []byte) (metadata.Shader, error) {
	if len(bytecode) == 0 {
		return nil, d.creationError("shader", fmt.Sprintf("%s shader %q has no bytecode", stage, name))
	}
	if stage < 0 || stage >= metadata.SHADER_STAGE_COUNT {
		return nil, d.creationError("shader", fmt.Sprintf("unknown stage %d", stage))
	}
	h, err := d.newHandle("shader")
	if err != nil {
		return nil, err
	}
	return &shader{handle: h, stage: stage, name: name}, nil
}

func (d *Device) CreateInputLayout(elements []metadata.InputElement, vertexShaderBytecode []byte) (metadata.InputLayout, error) {
	if len(elements) == 0 {
		return nil, d.creationError("input-layout", "no elements")
	}
	if len(vertexShaderBytecode) == 0 {
		return nil, d.creationError("input-layout", "no vertex shader bytecode to validate against")
	}
	seen := make(map[uint32]bool)
	for _, e := range elements {
		if e.InputSlot >= metadata.MAX_VERTEX_BUFFER_SLOTS {
			return nil, d.creationError("input-layout", fmt.Sprintf("element %s uses slot %d", e.SemanticName, e.InputSlot))
		}
		if e.Format.Size() == 0 || e.Format.IsBlockCompressed() || e.Format.IsDepth() {
			return nil, d.creationError("input-layout", fmt.Sprintf("element %s has unusable format %s", e.SemanticName, e.Format))
		}
		if seen[e.InputSlot] {
			return nil, d.creationError("input-layout", fmt.Sprintf("slot %d is used by more than one element", e.InputSlot))
		}
		seen[e.InputSlot] = true
	}
	h, err := d.newHandle("input-layout")
	if err != nil {
		return nil, err
	}
	return &inputLayout{handle: h, elements: append([]metadata.InputElement(nil), elements...)}, nil
}
