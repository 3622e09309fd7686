package metadata

/** @brief Determines how triangles are rasterized. */
type FillMode int

const (
	FILL_SOLID FillMode = iota
	FILL_WIREFRAME
)

/** @brief Determines face culling mode during rendering. */
type CullMode int

const (
	/** @brief No faces are culled. */
	CULL_NONE CullMode = iota
	/** @brief Only front faces are culled. */
	CULL_FRONT
	/** @brief Only back faces are culled. */
	CULL_BACK
)

type ComparisonFunc int

const (
	COMPARISON_NEVER ComparisonFunc = iota
	COMPARISON_LESS
	COMPARISON_LESS_EQUAL
	COMPARISON_ALWAYS
)

type Filter int

const (
	FILTER_MIN_MAG_MIP_POINT Filter = iota
	FILTER_MIN_MAG_MIP_LINEAR
)

type TextureAddressMode int

const (
	TEXTURE_ADDRESS_WRAP TextureAddressMode = iota
	TEXTURE_ADDRESS_CLAMP
)

/**
 * @brief Fixed-function rasterizer configuration.
 */
type RasterizerDesc struct {
	FillMode              FillMode
	CullMode              CullMode
	FrontCounterClockwise bool
	DepthClipEnable       bool
}

// DefaultRasterizerDesc is the state the pipeline starts in: solid fill,
// back-face culling, clockwise front faces.
func DefaultRasterizerDesc() RasterizerDesc {
	return RasterizerDesc{
		FillMode:        FILL_SOLID,
		CullMode:        CULL_BACK,
		DepthClipEnable: true,
	}
}

/**
 * @brief Depth test configuration. Stencil is never used.
 */
type DepthStencilDesc struct {
	DepthEnable bool
	DepthWrite  bool
	DepthFunc   ComparisonFunc
}

/**
 * @brief Texture sampling configuration.
 */
type SamplerDesc struct {
	Filter         Filter
	AddressU       TextureAddressMode
	AddressV       TextureAddressMode
	AddressW       TextureAddressMode
	MaxAnisotropy  uint32
	ComparisonFunc ComparisonFunc
	MinLOD         float32
	MaxLOD         float32
}

// LinearWrapSampler samples trilinearly with wrapped coordinates.
func LinearWrapSampler() SamplerDesc {
	return SamplerDesc{
		Filter:         FILTER_MIN_MAG_MIP_LINEAR,
		AddressU:       TEXTURE_ADDRESS_WRAP,
		AddressV:       TEXTURE_ADDRESS_WRAP,
		AddressW:       TEXTURE_ADDRESS_WRAP,
		MaxAnisotropy:  1,
		ComparisonFunc: COMPARISON_NEVER,
		MinLOD:         0,
		MaxLOD:         3.402823466e+38,
	}
}

/**
 * @brief Per-pipeline binding limits enforced by the context.
 */
const (
	MAX_CONSTANT_BUFFER_SLOTS uint32 = 14
	MAX_SHADER_RESOURCE_SLOTS uint32 = 128
	MAX_SAMPLER_SLOTS         uint32 = 16
	MAX_VERTEX_BUFFER_SLOTS   uint32 = 32
	MAX_RENDER_TARGETS        uint32 = 8
)
