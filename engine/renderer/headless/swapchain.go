package headless

import (
	"fmt"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

const (
	BackBufferFormat   = metadata.FORMAT_R8G8B8A8_UNORM
	DepthStencilFormat = metadata.FORMAT_D32_FLOAT
)

/**
 * @brief DeviceResources is an offscreen swap chain over the software device.
 * Present validates the frame and rotates the context's frame record.
 */
type DeviceResources struct {
	device  *Device
	context *Context

	width  uint32
	height uint32

	backBuffer   metadata.Texture2D
	backTarget   metadata.View
	depthBuffer  metadata.Texture2D
	depthTarget  metadata.View
	orientation  math.Mat4
	presentCount uint64
}

func NewDeviceResources(width, height uint32) (*DeviceResources, error) {
	dr := &DeviceResources{
		device:      NewDevice(),
		context:     NewContext(),
		orientation: math.NewMat4Identity(),
	}
	if err := dr.createWindowSizeDependentResources(width, height); err != nil {
		return nil, err
	}
	return dr, nil
}

func (dr *DeviceResources) Device() renderer.Device {
	return dr.device
}

func (dr *DeviceResources) Context() renderer.Context {
	return dr.context
}

// SoftwareDevice exposes the concrete device for leak checks and fault injection.
func (dr *DeviceResources) SoftwareDevice() *Device {
	return dr.device
}

// SoftwareContext exposes the concrete context for inspecting recorded frames.
func (dr *DeviceResources) SoftwareContext() *Context {
	return dr.context
}

func (dr *DeviceResources) OutputSize() (uint32, uint32) {
	return dr.width, dr.height
}

func (dr *DeviceResources) BackBufferTarget() metadata.View {
	return dr.backTarget
}

func (dr *DeviceResources) DepthStencilTarget() metadata.View {
	return dr.depthTarget
}

func (dr *DeviceResources) OrientationTransform() math.Mat4 {
	return dr.orientation
}

func (dr *DeviceResources) PresentCount() uint64 {
	return dr.presentCount
}

func (dr *DeviceResources) releaseWindowSizeDependentResources() {
	for _, h := range []metadata.Handle{dr.backTarget, dr.backBuffer, dr.depthTarget, dr.depthBuffer} {
		if h != nil {
			h.Release()
		}
	}
	dr.backTarget, dr.backBuffer, dr.depthTarget, dr.depthBuffer = nil, nil, nil, nil
}

func (dr *DeviceResources) createWindowSizeDependentResources(width, height uint32) error {
	if width == 0 || height == 0 {
		return fmt.Errorf("%w: swap chain size %dx%d", core.ErrResourceCreation, width, height)
	}
	dr.releaseWindowSizeDependentResources()

	back, err := dr.device.CreateTexture2D(metadata.TextureDesc{
		Width:     width,
		Height:    height,
		MipLevels: 1,
		ArraySize: 1,
		Format:    BackBufferFormat,
		BindFlags: metadata.BIND_RENDER_TARGET,
	}, nil)
	if err != nil {
		return err
	}
	dr.backBuffer = back
	if dr.backTarget, err = dr.device.CreateRenderTargetView(back, BackBufferFormat); err != nil {
		dr.releaseWindowSizeDependentResources()
		return err
	}

	depth, err := dr.device.CreateTexture2D(metadata.TextureDesc{
		Width:     width,
		Height:    height,
		MipLevels: 1,
		ArraySize: 1,
		Format:    DepthStencilFormat,
		BindFlags: metadata.BIND_DEPTH_STENCIL,
	}, nil)
	if err != nil {
		dr.releaseWindowSizeDependentResources()
		return err
	}
	dr.depthBuffer = depth
	if dr.depthTarget, err = dr.device.CreateDepthStencilView(depth, DepthStencilFormat); err != nil {
		dr.releaseWindowSizeDependentResources()
		return err
	}

	dr.width, dr.height = width, height
	core.LogDebug("swap chain resized to %dx%d", width, height)
	return nil
}

// Resize recreates the back buffer and depth buffer. Views handed out before
// the call are released.
func (dr *DeviceResources) Resize(width, height uint32) error {
	if width == dr.width && height == dr.height && dr.backTarget != nil {
		return nil
	}
	// drop the old targets from the output merger before releasing them
	if err := dr.context.OMSetRenderTargets(nil, nil); err != nil {
		return err
	}
	return dr.createWindowSizeDependentResources(width, height)
}

// Present fails unless the back buffer is the first bound render target.
func (dr *DeviceResources) Present() error {
	targets := dr.context.RenderTargets()
	if len(targets) == 0 || dr.backTarget == nil || targets[0] != dr.backTarget.ID() {
		err := fmt.Errorf("%w: present without the back buffer bound", core.ErrIncompletePipeline)
		core.LogError("%v", err)
		return err
	}
	dr.context.endFrame()
	dr.presentCount++
	return nil
}

// Release frees the swap chain targets. The device reports anything left live.
func (dr *DeviceResources) Release() {
	_ = dr.context.OMSetRenderTargets(nil, nil)
	dr.releaseWindowSizeDependentResources()
}
