package renderer

import (
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

/**
 * @brief Device creates GPU objects. Every creation failure wraps
 * core.ErrResourceCreation.
 */
type Device interface {
	// CreateBuffer creates a buffer. data may be nil for USAGE_DEFAULT buffers.
	CreateBuffer(desc metadata.BufferDesc, data []byte) (metadata.Buffer, error)
	// CreateTexture2D creates a texture. data may be nil for render targets.
	CreateTexture2D(desc metadata.TextureDesc, data []byte) (metadata.Texture2D, error)
	CreateRenderTargetView(texture metadata.Texture2D, format metadata.Format) (metadata.View, error)
	CreateDepthStencilView(texture metadata.Texture2D, format metadata.Format) (metadata.View, error)
	CreateShaderResourceView(texture metadata.Texture2D, format metadata.Format) (metadata.View, error)
	CreateDepthStencilState(desc metadata.DepthStencilDesc) (metadata.DepthStencilState, error)
	CreateRasterizerState(desc metadata.RasterizerDesc) (metadata.RasterizerState, error)
	CreateSamplerState(desc metadata.SamplerDesc) (metadata.SamplerState, error)
	CreateShader(stage metadata.ShaderStage, name string, bytecode []byte) (metadata.Shader, error)
	CreateInputLayout(elements []metadata.InputElement, vertexShaderBytecode []byte) (metadata.InputLayout, error)
}

/**
 * @brief Context records pipeline state changes and draws, in the immediate
 * binding model: every Set call replaces what was bound at that slot. Passing
 * nil unbinds. A validating implementation rejects invalid state with an error
 * and leaves its state untouched.
 */
type Context interface {
	ClearRenderTargetView(view metadata.View, colour [4]float32) error
	ClearDepthStencilView(view metadata.View, depth float32) error
	OMSetRenderTargets(targets []metadata.View, depth metadata.View) error
	OMSetDepthStencilState(state metadata.DepthStencilState) error
	RSSetState(state metadata.RasterizerState) error
	SetShader(stage metadata.ShaderStage, shader metadata.Shader) error
	SetConstantBuffers(stage metadata.ShaderStage, startSlot uint32, buffers []metadata.Buffer) error
	SetShaderResources(stage metadata.ShaderStage, startSlot uint32, views []metadata.View) error
	SetSamplers(stage metadata.ShaderStage, startSlot uint32, samplers []metadata.SamplerState) error
	IASetInputLayout(layout metadata.InputLayout) error
	IASetVertexBuffers(startSlot uint32, buffers []metadata.Buffer, strides []uint32, offsets []uint32) error
	IASetIndexBuffer(buffer metadata.Buffer, format metadata.Format, offset uint32) error
	IASetPrimitiveTopology(topology metadata.PrimitiveTopology) error
	UpdateSubresource(buffer metadata.Buffer, data []byte) error
	DrawIndexed(indexCount, startIndex uint32, baseVertex int32) error
}

/**
 * @brief DeviceResources owns the device, its immediate context and the
 * swap chain targets. It is created by the platform layer.
 */
type DeviceResources interface {
	Device() Device
	Context() Context
	// OutputSize is the back buffer size in pixels.
	OutputSize() (width, height uint32)
	BackBufferTarget() metadata.View
	DepthStencilTarget() metadata.View
	// OrientationTransform rotates the projection for the display orientation.
	OrientationTransform() math.Mat4
	Resize(width, height uint32) error
	Present() error
}

/**
 * @brief Annotator is implemented by contexts that can group commands into
 * named regions for debugging tools and statistics.
 */
type Annotator interface {
	BeginEvent(name string)
	EndEvent()
}
