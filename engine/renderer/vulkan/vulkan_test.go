package vulkan

import (
	"errors"
	"testing"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

func tessSnapshot() metadata.PipelineSnapshot {
	var s metadata.PipelineSnapshot
	s.Shaders[metadata.SHADER_STAGE_VERTEX] = "TessVertexShader.cso"
	s.Shaders[metadata.SHADER_STAGE_HULL] = "TessIntegerHullShader.cso"
	s.Shaders[metadata.SHADER_STAGE_DOMAIN] = "TessDomainShader.cso"
	s.Shaders[metadata.SHADER_STAGE_PIXEL] = "TessPixelShader.cso"
	s.InputElements = []metadata.InputElement{
		{SemanticName: "POSITION", Format: metadata.FORMAT_R32G32B32_FLOAT, InputSlot: 0},
		{SemanticName: "TEXCOORD", Format: metadata.FORMAT_R32G32_FLOAT, InputSlot: 1},
	}
	s.VertexStrides = []uint32{12, 8}
	s.Topology = metadata.TOPOLOGY_3_CONTROL_POINT_PATCH_LIST
	s.Rasterizer = metadata.DefaultRasterizerDesc()
	s.RenderTargetFormats = []metadata.Format{metadata.FORMAT_R8G8B8A8_UNORM}
	return s
}

func TestDescribeTessellationPipeline(t *testing.T) {
	pd, err := DescribePipeline(tessSnapshot())
	if err != nil {
		t.Fatalf("DescribePipeline: %v", err)
	}
	wantStages := []vk.ShaderStageFlagBits{
		vk.ShaderStageVertexBit,
		vk.ShaderStageTessellationControlBit,
		vk.ShaderStageTessellationEvaluationBit,
		vk.ShaderStageFragmentBit,
	}
	if len(pd.Stages) != len(wantStages) {
		t.Fatalf("got %d stages", len(pd.Stages))
	}
	for i, want := range wantStages {
		if pd.Stages[i].Stage != want || pd.Stages[i].PName != SHADER_ENTRY_POINT {
			t.Errorf("stage %d: %v %q", i, pd.Stages[i].Stage, pd.Stages[i].PName)
		}
	}
	if pd.InputAssembly.Topology != vk.PrimitiveTopologyPatchList {
		t.Errorf("topology %v", pd.InputAssembly.Topology)
	}
	if pd.Tessellation == nil || pd.Tessellation.PatchControlPoints != 3 {
		t.Errorf("tessellation %+v", pd.Tessellation)
	}
	attrs := pd.VertexInput.PVertexAttributeDescriptions
	binds := pd.VertexInput.PVertexBindingDescriptions
	if len(attrs) != 2 || len(binds) != 2 {
		t.Fatalf("%d attributes, %d bindings", len(attrs), len(binds))
	}
	if attrs[1].Location != 1 || attrs[1].Binding != 1 || attrs[1].Format != vk.FormatR32g32Sfloat || binds[1].Stride != 8 {
		t.Errorf("texcoord attribute %+v binding %+v", attrs[1], binds[1])
	}
	if pd.Rasterization.PolygonMode != vk.PolygonModeFill || pd.Rasterization.CullMode != vk.CullModeFlags(vk.CullModeBackBit) {
		t.Errorf("rasterization %+v", pd.Rasterization)
	}
	if len(pd.ColorFormats) != 1 || pd.ColorFormats[0] != vk.FormatR8g8b8a8Unorm || pd.DepthFormat != vk.FormatUndefined {
		t.Errorf("targets %v depth %v", pd.ColorFormats, pd.DepthFormat)
	}

	info := pd.GraphicsPipelineCreateInfo(nil, nil)
	if info.StageCount != 4 || info.PTessellationState == nil || info.PColorBlendState.AttachmentCount != 1 {
		t.Errorf("create info %+v", info)
	}
}

func TestDescribePipelineTranslatesState(t *testing.T) {
	s := tessSnapshot()
	s.Shaders[metadata.SHADER_STAGE_HULL] = ""
	s.Shaders[metadata.SHADER_STAGE_DOMAIN] = ""
	s.Shaders[metadata.SHADER_STAGE_GEOMETRY] = "SoldierGeometryShader.cso"
	s.Topology = metadata.TOPOLOGY_POINT_LIST
	s.Rasterizer.FillMode = metadata.FILL_WIREFRAME
	s.Rasterizer.CullMode = metadata.CULL_NONE
	s.DepthStencil = metadata.DepthStencilDesc{DepthEnable: true, DepthWrite: true, DepthFunc: metadata.COMPARISON_LESS}
	s.DepthFormat = metadata.FORMAT_D32_FLOAT

	pd, err := DescribePipeline(s)
	if err != nil {
		t.Fatal(err)
	}
	if len(pd.Stages) != 3 || pd.Stages[1].Stage != vk.ShaderStageGeometryBit || pd.Tessellation != nil {
		t.Errorf("stages %+v tessellation %+v", pd.Stages, pd.Tessellation)
	}
	if pd.Rasterization.PolygonMode != vk.PolygonModeLine || pd.Rasterization.CullMode != vk.CullModeFlags(vk.CullModeNone) {
		t.Errorf("rasterization %+v", pd.Rasterization)
	}
	if pd.DepthStencil.DepthTestEnable != vk.True || pd.DepthStencil.DepthCompareOp != vk.CompareOpLess || pd.DepthFormat != vk.FormatD32Sfloat {
		t.Errorf("depth %+v format %v", pd.DepthStencil, pd.DepthFormat)
	}
}

func TestDescribePipelineRejectsIncompleteSnapshots(t *testing.T) {
	noVertex := tessSnapshot()
	noVertex.Shaders[metadata.SHADER_STAGE_VERTEX] = ""
	if _, err := DescribePipeline(noVertex); err == nil {
		t.Error("pipeline without a vertex stage accepted")
	}

	strides := tessSnapshot()
	strides.VertexStrides = strides.VertexStrides[:1]
	if _, err := DescribePipeline(strides); err == nil {
		t.Error("mismatched strides accepted")
	}

	format := tessSnapshot()
	format.InputElements[0].Format = metadata.FORMAT_UNKNOWN
	if _, err := DescribePipeline(format); !errors.Is(err, ErrUntranslatable) {
		t.Errorf("unknown format: %v", err)
	}
}

func TestDescribePipelinesDeduplicates(t *testing.T) {
	wire := tessSnapshot()
	wire.Rasterizer.FillMode = metadata.FILL_WIREFRAME
	out, err := DescribePipelines([]metadata.PipelineSnapshot{tessSnapshot(), wire, tessSnapshot()})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Errorf("got %d pipelines, want 2", len(out))
	}
	if out[0].String() == "" {
		t.Error("empty summary")
	}
}

func TestDescribeResources(t *testing.T) {
	img, err := DescribeTexture(metadata.TextureDesc{
		Width: 256, Height: 128, MipLevels: 9, Format: metadata.FORMAT_BC1_UNORM,
		Usage: metadata.USAGE_IMMUTABLE, BindFlags: metadata.BIND_SHADER_RESOURCE,
	})
	if err != nil {
		t.Fatal(err)
	}
	wantUsage := vk.ImageUsageFlags(vk.ImageUsageSampledBit) | vk.ImageUsageFlags(vk.ImageUsageTransferDstBit)
	if img.Format != vk.FormatBc1RgbaUnormBlock || img.MipLevels != 9 || img.ArrayLayers != 1 || img.Usage != wantUsage {
		t.Errorf("image %+v", img)
	}

	target, err := DescribeTexture(metadata.TextureDesc{
		Width: 64, Height: 64, Format: metadata.FORMAT_R8G8B8A8_UNORM,
		BindFlags: metadata.BIND_RENDER_TARGET | metadata.BIND_SHADER_RESOURCE,
	})
	if err != nil {
		t.Fatal(err)
	}
	if target.Usage&vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit) == 0 || target.MipLevels != 1 {
		t.Errorf("render target %+v", target)
	}

	buf, err := DescribeBuffer(metadata.BufferDesc{ByteWidth: 80, BindFlags: metadata.BIND_CONSTANT_BUFFER})
	if err != nil {
		t.Fatal(err)
	}
	if buf.Size != 80 || buf.Usage&vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit) == 0 {
		t.Errorf("buffer %+v", buf)
	}
	if _, err := DescribeBuffer(metadata.BufferDesc{}); !errors.Is(err, ErrUntranslatable) {
		t.Errorf("empty buffer: %v", err)
	}

	sampler := DescribeSampler(metadata.LinearWrapSampler())
	if sampler.MinFilter != vk.FilterLinear || sampler.MipmapMode != vk.SamplerMipmapModeLinear || sampler.AddressModeU != vk.SamplerAddressModeRepeat {
		t.Errorf("sampler %+v", sampler)
	}
}

func TestDescribeShaderModule(t *testing.T) {
	info, err := DescribeShaderModule("quad.spv", []byte{0x03, 0x02, 0x23, 0x07, 0, 0, 1, 0})
	if err != nil {
		t.Fatal(err)
	}
	if info.CodeSize != 8 || len(info.PCode) != 2 || info.PCode[0] != 0x07230203 {
		t.Errorf("module %+v", info)
	}
	if _, err := DescribeShaderModule("odd.spv", []byte{1, 2, 3}); !errors.Is(err, ErrUntranslatable) {
		t.Errorf("odd length: %v", err)
	}
}
