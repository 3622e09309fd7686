package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// ErrUntranslatable is returned for descriptors with no Vulkan equivalent.
var ErrUntranslatable = fmt.Errorf("descriptor has no vulkan equivalent")

func Format(f metadata.Format) (vk.Format, error) {
	switch f {
	case metadata.FORMAT_R32G32B32A32_FLOAT:
		return vk.FormatR32g32b32a32Sfloat, nil
	case metadata.FORMAT_R32G32B32_FLOAT:
		return vk.FormatR32g32b32Sfloat, nil
	case metadata.FORMAT_R32G32_FLOAT:
		return vk.FormatR32g32Sfloat, nil
	case metadata.FORMAT_R32_FLOAT:
		return vk.FormatR32Sfloat, nil
	case metadata.FORMAT_R32_UINT:
		return vk.FormatR32Uint, nil
	case metadata.FORMAT_R8G8B8A8_UNORM:
		return vk.FormatR8g8b8a8Unorm, nil
	case metadata.FORMAT_D32_FLOAT:
		return vk.FormatD32Sfloat, nil
	case metadata.FORMAT_BC1_UNORM:
		return vk.FormatBc1RgbaUnormBlock, nil
	case metadata.FORMAT_BC2_UNORM:
		return vk.FormatBc2UnormBlock, nil
	case metadata.FORMAT_BC3_UNORM:
		return vk.FormatBc3UnormBlock, nil
	default:
		return vk.FormatUndefined, fmt.Errorf("%w: format %s", ErrUntranslatable, f)
	}
}

func Topology(t metadata.PrimitiveTopology) (vk.PrimitiveTopology, error) {
	switch t {
	case metadata.TOPOLOGY_POINT_LIST:
		return vk.PrimitiveTopologyPointList, nil
	case metadata.TOPOLOGY_TRIANGLE_LIST:
		return vk.PrimitiveTopologyTriangleList, nil
	case metadata.TOPOLOGY_3_CONTROL_POINT_PATCH_LIST, metadata.TOPOLOGY_4_CONTROL_POINT_PATCH_LIST:
		return vk.PrimitiveTopologyPatchList, nil
	default:
		return vk.PrimitiveTopologyPointList, fmt.Errorf("%w: topology %s", ErrUntranslatable, t)
	}
}

/**
 * @brief Maps a stage onto its Vulkan counterpart: hull becomes tessellation
 * control, domain becomes tessellation evaluation and pixel becomes fragment.
 */
func ShaderStage(s metadata.ShaderStage) (vk.ShaderStageFlagBits, error) {
	switch s {
	case metadata.SHADER_STAGE_VERTEX:
		return vk.ShaderStageVertexBit, nil
	case metadata.SHADER_STAGE_HULL:
		return vk.ShaderStageTessellationControlBit, nil
	case metadata.SHADER_STAGE_DOMAIN:
		return vk.ShaderStageTessellationEvaluationBit, nil
	case metadata.SHADER_STAGE_GEOMETRY:
		return vk.ShaderStageGeometryBit, nil
	case metadata.SHADER_STAGE_PIXEL:
		return vk.ShaderStageFragmentBit, nil
	default:
		return 0, fmt.Errorf("%w: stage %s", ErrUntranslatable, s)
	}
}

func CompareOp(c metadata.ComparisonFunc) vk.CompareOp {
	switch c {
	case metadata.COMPARISON_LESS:
		return vk.CompareOpLess
	case metadata.COMPARISON_LESS_EQUAL:
		return vk.CompareOpLessOrEqual
	case metadata.COMPARISON_ALWAYS:
		return vk.CompareOpAlways
	default:
		return vk.CompareOpNever
	}
}

func CullMode(c metadata.CullMode) vk.CullModeFlags {
	switch c {
	case metadata.CULL_FRONT:
		return vk.CullModeFlags(vk.CullModeFrontBit)
	case metadata.CULL_BACK:
		return vk.CullModeFlags(vk.CullModeBackBit)
	default:
		return vk.CullModeFlags(vk.CullModeNone)
	}
}

func PolygonMode(f metadata.FillMode) vk.PolygonMode {
	if f == metadata.FILL_WIREFRAME {
		return vk.PolygonModeLine
	}
	return vk.PolygonModeFill
}

func bool32(b bool) vk.Bool32 {
	if b {
		return vk.True
	}
	return vk.False
}
