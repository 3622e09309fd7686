package metadata

/**
 * @brief A GPU object owned by exactly one component. Release is idempotent;
 * a released handle must not be bound again.
 */
type Handle interface {
	ID() string
	Release()
	Released() bool
}

type Buffer interface {
	Handle
	Desc() BufferDesc
}

type Texture2D interface {
	Handle
	Desc() TextureDesc
}

type ViewKind int

const (
	VIEW_RENDER_TARGET ViewKind = iota
	VIEW_DEPTH_STENCIL
	VIEW_SHADER_RESOURCE
)

func (k ViewKind) String() string {
	switch k {
	case VIEW_RENDER_TARGET:
		return "render-target"
	case VIEW_DEPTH_STENCIL:
		return "depth-stencil"
	default:
		return "shader-resource"
	}
}

/**
 * @brief A typed view of a texture. Binding rules are expressed on the
 * texture, so two views of the same texture conflict with each other.
 */
type View interface {
	Handle
	Kind() ViewKind
	Format() Format
	Texture() Texture2D
}

type Shader interface {
	Handle
	Stage() ShaderStage
}

type InputLayout interface {
	Handle
	Elements() []InputElement
}

type RasterizerState interface {
	Handle
	Desc() RasterizerDesc
}

type DepthStencilState interface {
	Handle
	Desc() DepthStencilDesc
}

type SamplerState interface {
	Handle
	Desc() SamplerDesc
}
