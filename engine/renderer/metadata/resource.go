package metadata

type ResourceType int

/** @brief Pre-defined asset types. */
const (
	ResourceTypeNone ResourceType = iota
	/** @brief Compiled shader bytecode. */
	ResourceTypeShader
	/** @brief Image resource type. */
	ResourceTypeImage
	/** @brief Text mesh with per-vertex rows. */
	ResourceTypeMesh
	/** @brief Text curve made of four-point patches. */
	ResourceTypeCurve
	/** @brief TOML configuration. */
	ResourceTypeConfig
)

func (rt ResourceType) String() string {
	switch rt {
	case ResourceTypeShader:
		return "shader"
	case ResourceTypeImage:
		return "image"
	case ResourceTypeMesh:
		return "mesh"
	case ResourceTypeCurve:
		return "curve"
	case ResourceTypeConfig:
		return "config"
	default:
		return "none"
	}
}

/** @brief How the pipeline may bind a buffer or texture. */
type BindFlags uint32

const (
	BIND_VERTEX_BUFFER   BindFlags = 0x1
	BIND_INDEX_BUFFER    BindFlags = 0x2
	BIND_CONSTANT_BUFFER BindFlags = 0x4
	BIND_SHADER_RESOURCE BindFlags = 0x8
	BIND_RENDER_TARGET   BindFlags = 0x20
	BIND_DEPTH_STENCIL   BindFlags = 0x40
)

func (b BindFlags) Has(flag BindFlags) bool {
	return b&flag == flag
}

/** @brief Expected CPU/GPU access pattern of a resource. */
type Usage int

const (
	/** @brief GPU read/write, updated with UpdateSubresource. */
	USAGE_DEFAULT Usage = iota
	/** @brief Initialised at creation, never written again. */
	USAGE_IMMUTABLE
)

/**
 * @brief Describes a GPU buffer.
 */
type BufferDesc struct {
	/** @brief Size of the buffer in bytes. */
	ByteWidth uint32
	Usage     Usage
	BindFlags BindFlags
	/** @brief Size of one element; vertex buffers bind with this stride. */
	StructureByteStride uint32
}

/**
 * @brief Describes a 2D texture.
 */
type TextureDesc struct {
	Width     uint32
	Height    uint32
	MipLevels uint32
	ArraySize uint32
	Format    Format
	Usage     Usage
	BindFlags BindFlags
}
