package metadata

import (
	"fmt"
	"strings"
)

/**
 * @brief The pipeline state in effect for a draw. Backends that build
 * pipeline objects up front key them on this.
 */
type PipelineSnapshot struct {
	/** @brief Shader names per stage; empty when the stage is unbound. */
	Shaders             [SHADER_STAGE_COUNT]string
	InputElements       []InputElement
	VertexStrides       []uint32
	Topology            PrimitiveTopology
	Rasterizer          RasterizerDesc
	DepthStencil        DepthStencilDesc
	RenderTargetFormats []Format
	DepthFormat         Format
}

// Key identifies snapshots that would compile to the same pipeline.
func (p PipelineSnapshot) Key() string {
	var sb strings.Builder
	for i, s := range p.Shaders {
		fmt.Fprintf(&sb, "%d=%s;", i, s)
	}
	for _, e := range p.InputElements {
		fmt.Fprintf(&sb, "%s%d:%d@%d;", e.SemanticName, e.SemanticIndex, e.Format, e.InputSlot)
	}
	fmt.Fprintf(&sb, "s%v;t%d;r%+v;d%+v;f%v;z%d", p.VertexStrides, p.Topology, p.Rasterizer, p.DepthStencil, p.RenderTargetFormats, p.DepthFormat)
	return sb.String()
}
