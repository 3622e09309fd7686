package components

import (
	"fmt"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

const (
	FRAMEBUFFER_COLOUR_FORMAT        = metadata.FORMAT_R32G32B32A32_FLOAT
	FRAMEBUFFER_DEPTH_FORMAT         = metadata.FORMAT_D32_FLOAT
	FRAMEBUFFER_DEPTH_TEXTURE_FORMAT = metadata.FORMAT_R32_FLOAT
)

type FramebufferState int

const (
	FRAMEBUFFER_STATE_UNLOADED FramebufferState = iota
	FRAMEBUFFER_STATE_READY
	FRAMEBUFFER_STATE_TARGET
	FRAMEBUFFER_STATE_TEXTURE
)

func (s FramebufferState) String() string {
	switch s {
	case FRAMEBUFFER_STATE_READY:
		return "ready"
	case FRAMEBUFFER_STATE_TARGET:
		return "target"
	case FRAMEBUFFER_STATE_TEXTURE:
		return "texture"
	default:
		return "unloaded"
	}
}

/**
 * @brief An offscreen colour and depth pair. It is either written as the
 * render target or read as two textures, never both at once.
 */
type Framebuffer struct {
	Name string

	width  uint32
	height uint32
	state  FramebufferState
	slot   uint32

	colourTexture metadata.Texture2D
	colourTarget  metadata.View
	colourView    metadata.View
	depthTexture  metadata.Texture2D
	depthTarget   metadata.View
	depthView     metadata.View
	depthState    metadata.DepthStencilState
}

func NewFramebuffer(name string) *Framebuffer {
	return &Framebuffer{Name: name}
}

func (fb *Framebuffer) State() FramebufferState {
	return fb.state
}

func (fb *Framebuffer) Size() (uint32, uint32) {
	return fb.width, fb.height
}

func (fb *Framebuffer) ColourTarget() metadata.View {
	return fb.colourTarget
}

func (fb *Framebuffer) ColourTexture() metadata.View {
	return fb.colourView
}

func (fb *Framebuffer) DepthTarget() metadata.View {
	return fb.depthTarget
}

func (fb *Framebuffer) DepthTexture() metadata.View {
	return fb.depthView
}

/**
 * @brief Allocates the colour and depth textures with their views for a
 * width x height target. Any failure releases what was created, leaves the
 * framebuffer unloaded and returns false.
 */
func (fb *Framebuffer) Load(device renderer.Device, width, height uint32) bool {
	fb.Reset()
	if err := fb.load(device, width, height); err != nil {
		core.LogError("framebuffer %s: %v", fb.Name, err)
		fb.Reset()
		return false
	}
	fb.width, fb.height = width, height
	fb.state = FRAMEBUFFER_STATE_READY
	return true
}

func (fb *Framebuffer) load(device renderer.Device, width, height uint32) (err error) {
	if fb.colourTexture, err = device.CreateTexture2D(metadata.TextureDesc{
		Width:     width,
		Height:    height,
		MipLevels: 1,
		ArraySize: 1,
		Format:    FRAMEBUFFER_COLOUR_FORMAT,
		Usage:     metadata.USAGE_DEFAULT,
		BindFlags: metadata.BIND_RENDER_TARGET | metadata.BIND_SHADER_RESOURCE,
	}, nil); err != nil {
		return err
	}
	if fb.colourTarget, err = device.CreateRenderTargetView(fb.colourTexture, FRAMEBUFFER_COLOUR_FORMAT); err != nil {
		return err
	}
	if fb.colourView, err = device.CreateShaderResourceView(fb.colourTexture, FRAMEBUFFER_COLOUR_FORMAT); err != nil {
		return err
	}

	if fb.depthTexture, err = device.CreateTexture2D(metadata.TextureDesc{
		Width:     width,
		Height:    height,
		MipLevels: 1,
		ArraySize: 1,
		Format:    FRAMEBUFFER_DEPTH_FORMAT,
		Usage:     metadata.USAGE_DEFAULT,
		BindFlags: metadata.BIND_DEPTH_STENCIL | metadata.BIND_SHADER_RESOURCE,
	}, nil); err != nil {
		return err
	}
	// offscreen passes are layered by draw order, so depth never rejects a fragment
	if fb.depthState, err = device.CreateDepthStencilState(metadata.DepthStencilDesc{
		DepthEnable: false,
		DepthWrite:  false,
		DepthFunc:   metadata.COMPARISON_ALWAYS,
	}); err != nil {
		return err
	}
	if fb.depthTarget, err = device.CreateDepthStencilView(fb.depthTexture, FRAMEBUFFER_DEPTH_FORMAT); err != nil {
		return err
	}
	if fb.depthView, err = device.CreateShaderResourceView(fb.depthTexture, FRAMEBUFFER_DEPTH_TEXTURE_FORMAT); err != nil {
		return err
	}
	return nil
}

func (fb *Framebuffer) requireState(want FramebufferState, action string) error {
	if fb.state == want {
		return nil
	}
	var err error
	switch fb.state {
	case FRAMEBUFFER_STATE_UNLOADED:
		err = core.ErrFramebufferNotReady
	case FRAMEBUFFER_STATE_TARGET:
		err = core.ErrBoundAsTarget
	case FRAMEBUFFER_STATE_TEXTURE:
		err = core.ErrBoundAsTexture
	default:
		err = core.ErrInvalidState
	}
	err = fmt.Errorf("%w: cannot %s framebuffer %s while it is %s", err, action, fb.Name, fb.state)
	core.LogError("%v", err)
	return err
}

// UseAsTarget clears both targets, disables depth testing and binds them.
func (fb *Framebuffer) UseAsTarget(ctx renderer.Context) error {
	if err := fb.requireState(FRAMEBUFFER_STATE_READY, "target"); err != nil {
		return err
	}
	if err := ctx.ClearRenderTargetView(fb.colourTarget, [4]float32{0, 0, 0, 0}); err != nil {
		return err
	}
	if err := ctx.ClearDepthStencilView(fb.depthTarget, 1.0); err != nil {
		return err
	}
	if err := ctx.OMSetDepthStencilState(fb.depthState); err != nil {
		return err
	}
	if err := ctx.OMSetRenderTargets([]metadata.View{fb.colourTarget}, fb.depthTarget); err != nil {
		return err
	}
	fb.state = FRAMEBUFFER_STATE_TARGET
	return nil
}

// ReleaseAsTarget unbinds every render target.
func (fb *Framebuffer) ReleaseAsTarget(ctx renderer.Context) error {
	if err := fb.requireState(FRAMEBUFFER_STATE_TARGET, "release target of"); err != nil {
		return err
	}
	if err := ctx.OMSetRenderTargets(nil, nil); err != nil {
		return err
	}
	fb.state = FRAMEBUFFER_STATE_READY
	return nil
}

// UseAsTexture binds the colour view at slot and the depth view at slot+1 of the pixel stage.
func (fb *Framebuffer) UseAsTexture(ctx renderer.Context, slot uint32) error {
	if err := fb.requireState(FRAMEBUFFER_STATE_READY, "sample"); err != nil {
		return err
	}
	if err := ctx.SetShaderResources(metadata.SHADER_STAGE_PIXEL, slot, []metadata.View{fb.colourView, fb.depthView}); err != nil {
		return err
	}
	fb.slot = slot
	fb.state = FRAMEBUFFER_STATE_TEXTURE
	return nil
}

// ReleaseAsTexture unbinds slot and slot+1 of the pixel stage.
func (fb *Framebuffer) ReleaseAsTexture(ctx renderer.Context, slot uint32) error {
	if err := fb.requireState(FRAMEBUFFER_STATE_TEXTURE, "release texture of"); err != nil {
		return err
	}
	if slot != fb.slot {
		err := fmt.Errorf("%w: framebuffer %s is bound at slot %d, not %d", core.ErrInvalidSlot, fb.Name, fb.slot, slot)
		core.LogError("%v", err)
		return err
	}
	if err := ctx.SetShaderResources(metadata.SHADER_STAGE_PIXEL, slot, []metadata.View{nil, nil}); err != nil {
		return err
	}
	fb.state = FRAMEBUFFER_STATE_READY
	return nil
}

// Reset releases every handle. The framebuffer must be loaded again before use.
func (fb *Framebuffer) Reset() {
	for _, h := range []metadata.Handle{
		fb.colourView, fb.colourTarget, fb.colourTexture,
		fb.depthView, fb.depthTarget, fb.depthState, fb.depthTexture,
	} {
		if h != nil {
			h.Release()
		}
	}
	fb.colourView, fb.colourTarget, fb.colourTexture = nil, nil, nil
	fb.depthView, fb.depthTarget, fb.depthTexture = nil, nil, nil
	fb.depthState = nil
	fb.state = FRAMEBUFFER_STATE_UNLOADED
}
