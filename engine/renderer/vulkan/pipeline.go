package vulkan

import (
	"fmt"
	"sort"
	"strings"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// Entry point of every compiled stage.
const SHADER_ENTRY_POINT = "main"

/**
 * @brief The fixed-function and shader state of one graphics pipeline,
 * expressed as Vulkan create-info structs. Shader modules are left unset;
 * they are attached once the bytecode has been turned into modules.
 */
type PipelineDescription struct {
	Key string
	/** @brief Shader names in pipeline order, parallel to Stages. */
	ShaderNames   []string
	Stages        []vk.PipelineShaderStageCreateInfo
	VertexInput   vk.PipelineVertexInputStateCreateInfo
	InputAssembly vk.PipelineInputAssemblyStateCreateInfo
	/** @brief Set only for patch topologies. */
	Tessellation  *vk.PipelineTessellationStateCreateInfo
	Rasterization vk.PipelineRasterizationStateCreateInfo
	DepthStencil  vk.PipelineDepthStencilStateCreateInfo
	ColorFormats  []vk.Format
	DepthFormat   vk.Format
}

/**
 * @brief Translates a pipeline snapshot. Every vertex attribute reads from
 * its own binding, numbered after the input slot it was bound at.
 */
func DescribePipeline(snapshot metadata.PipelineSnapshot) (*PipelineDescription, error) {
	pd := &PipelineDescription{Key: snapshot.Key()}

	for _, stage := range metadata.AllShaderStages {
		name := snapshot.Shaders[stage]
		if name == "" {
			continue
		}
		flag, err := ShaderStage(stage)
		if err != nil {
			return nil, err
		}
		pd.ShaderNames = append(pd.ShaderNames, name)
		pd.Stages = append(pd.Stages, vk.PipelineShaderStageCreateInfo{
			SType: vk.StructureTypePipelineShaderStageCreateInfo,
			Stage: flag,
			PName: SHADER_ENTRY_POINT,
		})
	}
	if snapshot.Shaders[metadata.SHADER_STAGE_VERTEX] == "" {
		return nil, fmt.Errorf("pipeline %s has no vertex stage", pd.Key)
	}

	if len(snapshot.VertexStrides) != len(snapshot.InputElements) {
		return nil, fmt.Errorf("pipeline %s has %d strides for %d attributes", pd.Key, len(snapshot.VertexStrides), len(snapshot.InputElements))
	}
	var bindings []vk.VertexInputBindingDescription
	var attributes []vk.VertexInputAttributeDescription
	for location, element := range snapshot.InputElements {
		format, err := Format(element.Format)
		if err != nil {
			return nil, fmt.Errorf("attribute %s%d: %w", element.SemanticName, element.SemanticIndex, err)
		}
		rate := vk.VertexInputRateVertex
		if element.Classification == metadata.INPUT_PER_INSTANCE_DATA {
			rate = vk.VertexInputRateInstance
		}
		bindings = append(bindings, vk.VertexInputBindingDescription{
			Binding:   element.InputSlot,
			Stride:    snapshot.VertexStrides[location],
			InputRate: rate,
		})
		attributes = append(attributes, vk.VertexInputAttributeDescription{
			Location: uint32(location),
			Binding:  element.InputSlot,
			Format:   format,
			Offset:   element.AlignedByteOffset,
		})
	}
	pd.VertexInput = vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   uint32(len(bindings)),
		PVertexBindingDescriptions:      bindings,
		VertexAttributeDescriptionCount: uint32(len(attributes)),
		PVertexAttributeDescriptions:    attributes,
	}

	topology, err := Topology(snapshot.Topology)
	if err != nil {
		return nil, err
	}
	pd.InputAssembly = vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               topology,
		PrimitiveRestartEnable: vk.False,
	}
	if points := snapshot.Topology.ControlPoints(); points > 0 {
		pd.Tessellation = &vk.PipelineTessellationStateCreateInfo{
			SType:              vk.StructureTypePipelineTessellationStateCreateInfo,
			PatchControlPoints: points,
		}
	}

	frontFace := vk.FrontFaceClockwise
	if snapshot.Rasterizer.FrontCounterClockwise {
		frontFace = vk.FrontFaceCounterClockwise
	}
	pd.Rasterization = vk.PipelineRasterizationStateCreateInfo{
		SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
		DepthClampEnable:        bool32(!snapshot.Rasterizer.DepthClipEnable),
		RasterizerDiscardEnable: vk.False,
		PolygonMode:             PolygonMode(snapshot.Rasterizer.FillMode),
		CullMode:                CullMode(snapshot.Rasterizer.CullMode),
		FrontFace:               frontFace,
		DepthBiasEnable:         vk.False,
		LineWidth:               1.0,
	}

	pd.DepthStencil = vk.PipelineDepthStencilStateCreateInfo{
		SType:             vk.StructureTypePipelineDepthStencilStateCreateInfo,
		DepthTestEnable:   bool32(snapshot.DepthStencil.DepthEnable),
		DepthWriteEnable:  bool32(snapshot.DepthStencil.DepthWrite),
		DepthCompareOp:    CompareOp(snapshot.DepthStencil.DepthFunc),
		StencilTestEnable: vk.False,
	}

	for _, f := range snapshot.RenderTargetFormats {
		format, err := Format(f)
		if err != nil {
			return nil, fmt.Errorf("render target: %w", err)
		}
		pd.ColorFormats = append(pd.ColorFormats, format)
	}
	pd.DepthFormat = vk.FormatUndefined
	if snapshot.DepthFormat != metadata.FORMAT_UNKNOWN {
		if pd.DepthFormat, err = Format(snapshot.DepthFormat); err != nil {
			return nil, fmt.Errorf("depth target: %w", err)
		}
	}
	return pd, nil
}

/**
 * @brief Describes every distinct pipeline, ordered by key so repeated runs
 * produce the same listing.
 */
func DescribePipelines(snapshots []metadata.PipelineSnapshot) ([]*PipelineDescription, error) {
	seen := make(map[string]bool, len(snapshots))
	var out []*PipelineDescription
	for _, s := range snapshots {
		pd, err := DescribePipeline(s)
		if err != nil {
			return nil, err
		}
		if seen[pd.Key] {
			continue
		}
		seen[pd.Key] = true
		out = append(out, pd)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

/**
 * @brief Assembles the graphics pipeline create info. Viewport, scissor and
 * line width are dynamic; blending is disabled because every pass writes
 * opaque colour.
 */
func (pd *PipelineDescription) GraphicsPipelineCreateInfo(layout vk.PipelineLayout, renderPass vk.RenderPass) vk.GraphicsPipelineCreateInfo {
	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		ScissorCount:  1,
	}
	multisampling := vk.PipelineMultisampleStateCreateInfo{
		SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
		RasterizationSamples: vk.SampleCount1Bit,
		MinSampleShading:     1.0,
	}

	attachments := make([]vk.PipelineColorBlendAttachmentState, len(pd.ColorFormats))
	for i := range attachments {
		attachments[i] = vk.PipelineColorBlendAttachmentState{
			BlendEnable: vk.False,
			ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit) | vk.ColorComponentFlags(vk.ColorComponentGBit) |
				vk.ColorComponentFlags(vk.ColorComponentBBit) | vk.ColorComponentFlags(vk.ColorComponentABit),
		}
	}
	colorBlend := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   vk.False,
		LogicOp:         vk.LogicOpCopy,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
	}

	dynamicStates := []vk.DynamicState{
		vk.DynamicStateViewport,
		vk.DynamicStateScissor,
		vk.DynamicStateLineWidth,
	}
	dynamicState := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(dynamicStates)),
		PDynamicStates:    dynamicStates,
	}

	vertexInput := pd.VertexInput
	inputAssembly := pd.InputAssembly
	rasterization := pd.Rasterization
	depthStencil := pd.DepthStencil
	return vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(pd.Stages)),
		PStages:             pd.Stages,
		PVertexInputState:   &vertexInput,
		PInputAssemblyState: &inputAssembly,
		PTessellationState:  pd.Tessellation,
		PViewportState:      &viewportState,
		PRasterizationState: &rasterization,
		PMultisampleState:   &multisampling,
		PDepthStencilState:  &depthStencil,
		PColorBlendState:    &colorBlend,
		PDynamicState:       &dynamicState,
		Layout:              layout,
		RenderPass:          renderPass,
		Subpass:             0,
		BasePipelineIndex:   -1,
	}
}

// String summarises the pipeline on one line for logs.
func (pd *PipelineDescription) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "stages=[%s] attributes=%d topology=%d", strings.Join(pd.ShaderNames, ","), pd.VertexInput.VertexAttributeDescriptionCount, pd.InputAssembly.Topology)
	if pd.Tessellation != nil {
		fmt.Fprintf(&sb, " patch=%d", pd.Tessellation.PatchControlPoints)
	}
	fmt.Fprintf(&sb, " polygon=%d cull=%d depth-test=%t targets=%d", pd.Rasterization.PolygonMode, pd.Rasterization.CullMode, pd.DepthStencil.DepthTestEnable == vk.True, len(pd.ColorFormats))
	return sb.String()
}
