package metadata

/** @brief A programmable pipeline stage. */
type ShaderStage int

const (
	SHADER_STAGE_VERTEX ShaderStage = iota
	SHADER_STAGE_HULL
	SHADER_STAGE_DOMAIN
	SHADER_STAGE_GEOMETRY
	SHADER_STAGE_PIXEL
	SHADER_STAGE_COUNT
)

func (s ShaderStage) String() string {
	switch s {
	case SHADER_STAGE_VERTEX:
		return "vertex"
	case SHADER_STAGE_HULL:
		return "hull"
	case SHADER_STAGE_DOMAIN:
		return "domain"
	case SHADER_STAGE_GEOMETRY:
		return "geometry"
	case SHADER_STAGE_PIXEL:
		return "pixel"
	default:
		return "unknown"
	}
}

// AllShaderStages lists every stage in pipeline order.
var AllShaderStages = []ShaderStage{
	SHADER_STAGE_VERTEX,
	SHADER_STAGE_HULL,
	SHADER_STAGE_DOMAIN,
	SHADER_STAGE_GEOMETRY,
	SHADER_STAGE_PIXEL,
}

type InputClassification int

const (
	INPUT_PER_VERTEX_DATA InputClassification = iota
	INPUT_PER_INSTANCE_DATA
)

/**
 * @brief One vertex attribute as declared by a vertex shader. Every attribute
 * reads from its own vertex buffer slot at offset zero.
 */
type InputElement struct {
	SemanticName      string
	SemanticIndex     uint32
	Format            Format
	InputSlot         uint32
	AlignedByteOffset uint32
	Classification    InputClassification
}
