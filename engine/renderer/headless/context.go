package headless

import (
	"fmt"

	"github.com/spaghettifunk/prism/engine/containers"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

const historySize = 120

type vertexBinding struct {
	buffer *buffer
	stride uint32
	offset uint32
}

type stageState struct {
	shader          *shader
	constantBuffers [metadata.MAX_CONSTANT_BUFFER_SLOTS]*buffer
	resources       [metadata.MAX_SHADER_RESOURCE_SLOTS]*view
	samplers        [metadata.MAX_SAMPLER_SLOTS]*samplerState
}

/**
 * @brief Context is the validating immediate context. Every call is checked
 * against the current binding state; rejected calls return an error wrapping
 * one of the core pipeline errors and change nothing. Accepted calls are
 * appended to the current frame record. Not safe for concurrent use.
 */
type Context struct {
	targets     []*view
	depth       *view
	depthState  *depthStencilState
	rasterizer  *rasterizerState
	stages      [metadata.SHADER_STAGE_COUNT]stageState
	layout      *inputLayout
	vertices    [metadata.MAX_VERTEX_BUFFER_SLOTS]vertexBinding
	indexBuffer *buffer
	indexOffset uint32
	topology    metadata.PrimitiveTopology

	events  []string
	frame   *FrameRecord
	last    *FrameRecord
	history *containers.RingQueue[FrameStats]
}

func NewContext() *Context {
	return &Context{
		frame:   &FrameRecord{},
		history: containers.NewRingQueue[FrameStats](historySize),
	}
}

func (c *Context) reject(err error, format string, args ...interface{}) error {
	e := fmt.Errorf("%w: %s", err, fmt.Sprintf(format, args...))
	core.LogError("%v", e)
	return e
}

func (c *Context) pass() string {
	if len(c.events) == 0 {
		return ""
	}
	return c.events[len(c.events)-1]
}

func (c *Context) record(cmd Command) {
	cmd.Pass = c.pass()
	c.frame.Commands = append(c.frame.Commands, cmd)
}

func (c *Context) BeginEvent(name string) {
	c.events = append(c.events, name)
	c.record(Command{Kind: CMD_BEGIN_EVENT, Name: name})
	c.frame.passStats(name)
}

func (c *Context) EndEvent() {
	if len(c.events) == 0 {
		return
	}
	c.record(Command{Kind: CMD_END_EVENT, Name: c.pass()})
	c.events = c.events[:len(c.events)-1]
}

// Frame returns the commands recorded since the last present.
func (c *Context) Frame() *FrameRecord {
	return c.frame
}

// LastFrame returns the record of the most recently presented frame, or nil.
func (c *Context) LastFrame() *FrameRecord {
	return c.last
}

// History returns summaries of the most recent presented frames, oldest first.
func (c *Context) History() []FrameStats {
	return c.history.Items()
}

func (c *Context) endFrame() {
	c.record(Command{Kind: CMD_PRESENT})
	c.history.Push(FrameStats{
		Index:   c.frame.Index,
		Draws:   c.frame.Draws,
		Indices: c.frame.Indices,
		Passes:  append([]PassStats(nil), c.frame.Passes...),
	})
	c.last = c.frame
	c.frame = &FrameRecord{Index: c.last.Index + 1}
}

func asView(v metadata.View, kind metadata.ViewKind) (*view, error) {
	hv, ok := v.(*view)
	if !ok || hv == nil {
		return nil, fmt.Errorf("%w: view was not created by this device", core.ErrIncompletePipeline)
	}
	if err := live(hv); err != nil {
		return nil, err
	}
	if hv.kind != kind {
		return nil, fmt.Errorf("%w: expected a %s view, got %s", core.ErrIncompletePipeline, kind, hv.kind)
	}
	return hv, nil
}

func asBuffer(b metadata.Buffer, flag metadata.BindFlags) (*buffer, error) {
	hb, ok := b.(*buffer)
	if !ok || hb == nil {
		return nil, fmt.Errorf("%w: buffer was not created by this device", core.ErrIncompletePipeline)
	}
	if err := live(hb); err != nil {
		return nil, err
	}
	if !hb.desc.BindFlags.Has(flag) {
		return nil, fmt.Errorf("%w: buffer %s lacks bind flag %#x", core.ErrIncompletePipeline, hb.id, flag)
	}
	return hb, nil
}

func checkStage(stage metadata.ShaderStage) error {
	if stage < 0 || stage >= metadata.SHADER_STAGE_COUNT {
		return fmt.Errorf("%w: unknown shader stage %d", core.ErrInvalidSlot, stage)
	}
	return nil
}

func checkRange(start uint32, count int, limit uint32, what string) error {
	if uint64(start)+uint64(count) > uint64(limit) {
		return fmt.Errorf("%w: %s slots %d..%d exceed limit %d", core.ErrInvalidSlot, what, start, start+uint32(count)-1, limit)
	}
	return nil
}

// boundAsTarget reports whether tex is attached to the output merger.
func (c *Context) boundAsTarget(tex *texture) bool {
	for _, t := range c.targets {
		if t != nil && t.texture == tex {
			return true
		}
	}
	return c.depth != nil && c.depth.texture == tex
}

// boundAsResource returns the stage and slot where tex is bound as a shader resource.
func (c *Context) boundAsResource(tex *texture) (metadata.ShaderStage, uint32, bool) {
	for s := range c.stages {
		for slot, v := range c.stages[s].resources {
			if v != nil && v.texture == tex {
				return metadata.ShaderStage(s), uint32(slot), true
			}
		}
	}
	return 0, 0, false
}

func ids[T metadata.Handle](handles []T, isNil func(T) bool) []string {
	out := make([]string, len(handles))
	for i, h := range handles {
		if !isNil(h) {
			out[i] = h.ID()
		}
	}
	return out
}

func (c *Context) ClearRenderTargetView(v metadata.View, colour [4]float32) error {
	hv, err := asView(v, metadata.VIEW_RENDER_TARGET)
	if err != nil {
		return c.reject(err, "clear render target")
	}
	c.record(Command{Kind: CMD_CLEAR_RENDER_TARGET, Handles: []string{hv.id}})
	return nil
}

func (c *Context) ClearDepthStencilView(v metadata.View, depth float32) error {
	hv, err := asView(v, metadata.VIEW_DEPTH_STENCIL)
	if err != nil {
		return c.reject(err, "clear depth stencil")
	}
	if depth < 0 || depth > 1 {
		return c.reject(core.ErrIncompletePipeline, "clear depth %f outside [0,1]", depth)
	}
	c.record(Command{Kind: CMD_CLEAR_DEPTH_STENCIL, Handles: []string{hv.id}})
	return nil
}

func (c *Context) OMSetRenderTargets(targets []metadata.View, depth metadata.View) error {
	if len(targets) > int(metadata.MAX_RENDER_TARGETS) {
		return c.reject(core.ErrInvalidSlot, "%d render targets bound", len(targets))
	}
	bound := make([]*view, 0, len(targets))
	handles := make([]string, 0, len(targets)+1)
	for _, t := range targets {
		if t == nil {
			bound = append(bound, nil)
			handles = append(handles, "")
			continue
		}
		hv, err := asView(t, metadata.VIEW_RENDER_TARGET)
		if err != nil {
			return c.reject(err, "set render targets")
		}
		bound = append(bound, hv)
		handles = append(handles, hv.id)
	}
	var dv *view
	if depth != nil {
		hv, err := asView(depth, metadata.VIEW_DEPTH_STENCIL)
		if err != nil {
			return c.reject(err, "set depth target")
		}
		dv = hv
		handles = append(handles, hv.id)
	} else {
		handles = append(handles, "")
	}

	check := append([]*view{dv}, bound...)
	for _, v := range check {
		if v == nil {
			continue
		}
		if stage, slot, ok := c.boundAsResource(v.texture); ok {
			return c.reject(core.ErrBoundAsTexture, "texture %s is bound to %s slot %d", v.texture.id, stage, slot)
		}
	}

	c.targets = bound
	c.depth = dv
	c.record(Command{Kind: CMD_SET_RENDER_TARGETS, Handles: handles})
	return nil
}

func (c *Context) OMSetDepthStencilState(state metadata.DepthStencilState) error {
	var handles []string
	if state == nil {
		c.depthState = nil
		handles = []string{""}
	} else {
		ds, ok := state.(*depthStencilState)
		if !ok || ds == nil {
			return c.reject(core.ErrIncompletePipeline, "foreign depth stencil state")
		}
		if err := live(ds); err != nil {
			return c.reject(err, "set depth stencil state")
		}
		c.depthState = ds
		handles = []string{ds.id}
	}
	c.record(Command{Kind: CMD_SET_DEPTH_STENCIL_STATE, Handles: handles})
	return nil
}

func (c *Context) RSSetState(state metadata.RasterizerState) error {
	var handles []string
	if state == nil {
		c.rasterizer = nil
		handles = []string{""}
	} else {
		rs, ok := state.(*rasterizerState)
		if !ok || rs == nil {
			return c.reject(core.ErrIncompletePipeline, "foreign rasterizer state")
		}
		if err := live(rs); err != nil {
			return c.reject(err, "set rasterizer state")
		}
		c.rasterizer = rs
		handles = []string{rs.id}
	}
	c.record(Command{Kind: CMD_SET_RASTERIZER_STATE, Handles: handles})
	return nil
}

// RasterizerState returns the bound rasterizer description, or the default
// description and false when none is bound.
func (c *Context) RasterizerState() (metadata.RasterizerDesc, bool) {
	if c.rasterizer == nil {
		return metadata.DefaultRasterizerDesc(), false
	}
	return c.rasterizer.desc, true
}

func (c *Context) SetShader(stage metadata.ShaderStage, s metadata.Shader) error {
	if err := checkStage(stage); err != nil {
		return c.reject(err, "set shader")
	}
	if s == nil {
		c.stages[stage].shader = nil
		c.record(Command{Kind: CMD_SET_SHADER, Stage: stage, Handles: []string{""}})
		return nil
	}
	hs, ok := s.(*shader)
	if !ok || hs == nil {
		return c.reject(core.ErrIncompletePipeline, "foreign shader")
	}
	if err := live(hs); err != nil {
		return c.reject(err, "set shader")
	}
	if hs.stage != stage {
		return c.reject(core.ErrIncompletePipeline, "%s shader %q bound to the %s stage", hs.stage, hs.name, stage)
	}
	c.stages[stage].shader = hs
	c.record(Command{Kind: CMD_SET_SHADER, Stage: stage, Name: hs.name, Handles: []string{hs.id}})
	return nil
}

func (c *Context) SetConstantBuffers(stage metadata.ShaderStage, startSlot uint32, buffers []metadata.Buffer) error {
	if err := checkStage(stage); err != nil {
		return c.reject(err, "set constant buffers")
	}
	if err := checkRange(startSlot, len(buffers), metadata.MAX_CONSTANT_BUFFER_SLOTS, "constant buffer"); err != nil {
		return c.reject(err, "%s stage", stage)
	}
	resolved := make([]*buffer, len(buffers))
	for i, b := range buffers {
		if b == nil {
			continue
		}
		hb, err := asBuffer(b, metadata.BIND_CONSTANT_BUFFER)
		if err != nil {
			return c.reject(err, "set constant buffers")
		}
		resolved[i] = hb
	}
	for i, hb := range resolved {
		c.stages[stage].constantBuffers[startSlot+uint32(i)] = hb
	}
	c.record(Command{Kind: CMD_SET_CONSTANT_BUFFERS, Stage: stage, Slot: startSlot,
		Handles: ids(buffers, func(b metadata.Buffer) bool { return b == nil })})
	return nil
}

func (c *Context) SetShaderResources(stage metadata.ShaderStage, startSlot uint32, views []metadata.View) error {
	if err := checkStage(stage); err != nil {
		return c.reject(err, "set shader resources")
	}
	if err := checkRange(startSlot, len(views), metadata.MAX_SHADER_RESOURCE_SLOTS, "shader resource"); err != nil {
		return c.reject(err, "%s stage", stage)
	}
	resolved := make([]*view, len(views))
	for i, v := range views {
		if v == nil {
			continue
		}
		hv, err := asView(v, metadata.VIEW_SHADER_RESOURCE)
		if err != nil {
			return c.reject(err, "set shader resources")
		}
		if c.boundAsTarget(hv.texture) {
			return c.reject(core.ErrBoundAsTarget, "texture %s bound to %s slot %d while it is a render target", hv.texture.id, stage, startSlot+uint32(i))
		}
		resolved[i] = hv
	}
	for i, hv := range resolved {
		c.stages[stage].resources[startSlot+uint32(i)] = hv
	}
	c.record(Command{Kind: CMD_SET_SHADER_RESOURCES, Stage: stage, Slot: startSlot,
		Handles: ids(views, func(v metadata.View) bool { return v == nil })})
	return nil
}

func (c *Context) SetSamplers(stage metadata.ShaderStage, startSlot uint32, samplers []metadata.SamplerState) error {
	if err := checkStage(stage); err != nil {
		return c.reject(err, "set samplers")
	}
	if err := checkRange(startSlot, len(samplers), metadata.MAX_SAMPLER_SLOTS, "sampler"); err != nil {
		return c.reject(err, "%s stage", stage)
	}
	resolved := make([]*samplerState, len(samplers))
	for i, s := range samplers {
		if s == nil {
			continue
		}
		hs, ok := s.(*samplerState)
		if !ok || hs == nil {
			return c.reject(core.ErrIncompletePipeline, "foreign sampler")
		}
		if err := live(hs); err != nil {
			return c.reject(err, "set samplers")
		}
		resolved[i] = hs
	}
	for i, hs := range resolved {
		c.stages[stage].samplers[startSlot+uint32(i)] = hs
	}
	c.record(Command{Kind: CMD_SET_SAMPLERS, Stage: stage, Slot: startSlot,
		Handles: ids(samplers, func(s metadata.SamplerState) bool { return s == nil })})
	return nil
}

func (c *Context) IASetInputLayout(layout metadata.InputLayout) error {
	if layout == nil {
		c.layout = nil
		c.record(Command{Kind: CMD_SET_INPUT_LAYOUT, Handles: []string{""}})
		return nil
	}
	hl, ok := layout.(*inputLayout)
	if !ok || hl == nil {
		return c.reject(core.ErrIncompletePipeline, "foreign input layout")
	}
	if err := live(hl); err != nil {
		return c.reject(err, "set input layout")
	}
	c.layout = hl
	c.record(Command{Kind: CMD_SET_INPUT_LAYOUT, Handles: []string{hl.id}})
	return nil
}

func (c *Context) IASetVertexBuffers(startSlot uint32, buffers []metadata.Buffer, strides []uint32, offsets []uint32) error {
	if len(strides) != len(buffers) || len(offsets) != len(buffers) {
		return c.reject(core.ErrLayoutMismatch, "%d buffers with %d strides and %d offsets", len(buffers), len(strides), len(offsets))
	}
	if err := checkRange(startSlot, len(buffers), metadata.MAX_VERTEX_BUFFER_SLOTS, "vertex buffer"); err != nil {
		return c.reject(err, "set vertex buffers")
	}
	resolved := make([]vertexBinding, len(buffers))
	for i, b := range buffers {
		if b == nil {
			continue
		}
		hb, err := asBuffer(b, metadata.BIND_VERTEX_BUFFER)
		if err != nil {
			return c.reject(err, "set vertex buffers")
		}
		if strides[i] == 0 {
			return c.reject(core.ErrLayoutMismatch, "vertex buffer %s bound with zero stride", hb.id)
		}
		resolved[i] = vertexBinding{buffer: hb, stride: strides[i], offset: offsets[i]}
	}
	for i, vb := range resolved {
		c.vertices[startSlot+uint32(i)] = vb
	}
	c.record(Command{Kind: CMD_SET_VERTEX_BUFFERS, Slot: startSlot,
		Handles: ids(buffers, func(b metadata.Buffer) bool { return b == nil })})
	return nil
}

func (c *Context) IASetIndexBuffer(b metadata.Buffer, format metadata.Format, offset uint32) error {
	if b == nil {
		c.indexBuffer = nil
		c.record(Command{Kind: CMD_SET_INDEX_BUFFER, Handles: []string{""}})
		return nil
	}
	hb, err := asBuffer(b, metadata.BIND_INDEX_BUFFER)
	if err != nil {
		return c.reject(err, "set index buffer")
	}
	if format != metadata.FORMAT_R32_UINT {
		return c.reject(core.ErrLayoutMismatch, "index format %s, want R32_UINT", format)
	}
	if offset%4 != 0 {
		return c.reject(core.ErrLayoutMismatch, "index buffer offset %d is not 4-byte aligned", offset)
	}
	c.indexBuffer = hb
	c.indexOffset = offset
	c.record(Command{Kind: CMD_SET_INDEX_BUFFER, Handles: []string{hb.id}})
	return nil
}

func (c *Context) IASetPrimitiveTopology(topology metadata.PrimitiveTopology) error {
	if topology == metadata.TOPOLOGY_UNDEFINED {
		return c.reject(core.ErrIncompletePipeline, "undefined topology")
	}
	c.topology = topology
	c.record(Command{Kind: CMD_SET_TOPOLOGY, Topology: topology})
	return nil
}

func (c *Context) UpdateSubresource(b metadata.Buffer, data []byte) error {
	hb, ok := b.(*buffer)
	if !ok || hb == nil {
		return c.reject(core.ErrIncompletePipeline, "foreign buffer")
	}
	if err := live(hb); err != nil {
		return c.reject(err, "update subresource")
	}
	if hb.desc.Usage == metadata.USAGE_IMMUTABLE {
		return c.reject(core.ErrIncompletePipeline, "buffer %s is immutable", hb.id)
	}
	if hb.desc.BindFlags.Has(metadata.BIND_CONSTANT_BUFFER) && uint32(len(data)) != hb.desc.ByteWidth {
		return c.reject(core.ErrLayoutMismatch, "constant buffer %s is %d bytes, update has %d", hb.id, hb.desc.ByteWidth, len(data))
	}
	if uint32(len(data)) > hb.desc.ByteWidth {
		return c.reject(core.ErrLayoutMismatch, "update of %d bytes overflows buffer %s", len(data), hb.id)
	}
	copy(hb.data, data)
	c.record(Command{Kind: CMD_UPDATE_SUBRESOURCE, Handles: []string{hb.id}})
	return nil
}

// validateDraw checks that the bound state forms a complete pipeline that can
// read indexCount indices starting at startIndex.
func (c *Context) validateDraw(indexCount, startIndex uint32, baseVertex int32) error {
	hasTarget := c.depth != nil
	for _, t := range c.targets {
		if t != nil {
			hasTarget = true
		}
	}
	if !hasTarget {
		return fmt.Errorf("%w: no render target bound", core.ErrIncompletePipeline)
	}
	for _, stage := range []metadata.ShaderStage{metadata.SHADER_STAGE_VERTEX, metadata.SHADER_STAGE_PIXEL} {
		if s := c.stages[stage].shader; s == nil || s.released {
			return fmt.Errorf("%w: no %s shader bound", core.ErrIncompletePipeline, stage)
		}
	}
	hull := c.stages[metadata.SHADER_STAGE_HULL].shader != nil
	domain := c.stages[metadata.SHADER_STAGE_DOMAIN].shader != nil
	if hull != domain {
		return fmt.Errorf("%w: hull and domain shaders must be bound together", core.ErrIncompletePipeline)
	}
	if c.topology == metadata.TOPOLOGY_UNDEFINED {
		return fmt.Errorf("%w: no primitive topology", core.ErrIncompletePipeline)
	}
	if c.topology.IsPatch() != hull {
		return fmt.Errorf("%w: topology %s with tessellation bound=%t", core.ErrIncompletePipeline, c.topology, hull)
	}
	if per := c.topology.IndicesPerPrimitive(); per > 0 && indexCount%per != 0 {
		return fmt.Errorf("%w: %d indices do not form whole %s primitives", core.ErrIndexOutOfRange, indexCount, c.topology)
	}

	if c.layout == nil || c.layout.released {
		return fmt.Errorf("%w: no input layout bound", core.ErrLayoutMismatch)
	}
	vertexCount := int64(-1)
	for _, e := range c.layout.elements {
		vb := c.vertices[e.InputSlot]
		if vb.buffer == nil || vb.buffer.released {
			return fmt.Errorf("%w: element %s%d expects a buffer at slot %d", core.ErrLayoutMismatch, e.SemanticName, e.SemanticIndex, e.InputSlot)
		}
		if vb.stride != e.Format.Size() {
			return fmt.Errorf("%w: element %s%d is %d bytes, slot %d has stride %d", core.ErrLayoutMismatch, e.SemanticName, e.SemanticIndex, e.Format.Size(), e.InputSlot, vb.stride)
		}
		n := (int64(vb.buffer.desc.ByteWidth) - int64(vb.offset)) / int64(vb.stride)
		if vertexCount < 0 || n < vertexCount {
			vertexCount = n
		}
	}

	if c.indexBuffer == nil || c.indexBuffer.released {
		return fmt.Errorf("%w: no index buffer bound", core.ErrIncompletePipeline)
	}
	indices := c.indexBuffer.indices()
	first := int(c.indexOffset/4) + int(startIndex)
	if first+int(indexCount) > len(indices) {
		return fmt.Errorf("%w: drawing indices %d..%d of %d", core.ErrIndexOutOfRange, first, first+int(indexCount), len(indices))
	}
	for _, idx := range indices[first : first+int(indexCount)] {
		v := int64(idx) + int64(baseVertex)
		if v < 0 || v >= vertexCount {
			return fmt.Errorf("%w: index %d addresses vertex %d of %d", core.ErrIndexOutOfRange, idx, v, vertexCount)
		}
	}
	return nil
}

func (c *Context) snapshot() metadata.PipelineSnapshot {
	var p metadata.PipelineSnapshot
	for i, st := range c.stages {
		if st.shader != nil {
			p.Shaders[i] = st.shader.name
		}
	}
	p.InputElements = append(p.InputElements, c.layout.elements...)
	for _, e := range c.layout.elements {
		p.VertexStrides = append(p.VertexStrides, c.vertices[e.InputSlot].stride)
	}
	p.Topology = c.topology
	p.Rasterizer, _ = c.RasterizerState()
	if c.depthState != nil {
		p.DepthStencil = c.depthState.desc
	} else {
		p.DepthStencil = metadata.DepthStencilDesc{DepthEnable: true, DepthWrite: true, DepthFunc: metadata.COMPARISON_LESS}
	}
	for _, t := range c.targets {
		if t != nil {
			p.RenderTargetFormats = append(p.RenderTargetFormats, t.format)
		}
	}
	if c.depth != nil {
		p.DepthFormat = c.depth.format
	}
	return p
}

func (c *Context) DrawIndexed(indexCount, startIndex uint32, baseVertex int32) error {
	if err := c.validateDraw(indexCount, startIndex, baseVertex); err != nil {
		core.LogError("%v", err)
		return err
	}
	c.record(Command{
		Kind:       CMD_DRAW_INDEXED,
		Topology:   c.topology,
		IndexCount: indexCount,
		StartIndex: startIndex,
		BaseVertex: baseVertex,
	})
	c.frame.Draws++
	c.frame.Indices += uint64(indexCount)
	if name := c.pass(); name != "" {
		ps := c.frame.passStats(name)
		ps.Draws++
		ps.Indices += uint64(indexCount)
	}
	c.frame.addPipeline(c.snapshot())
	return nil
}

// RenderTargets returns the ids of the bound render target views.
func (c *Context) RenderTargets() []string {
	out := make([]string, 0, len(c.targets))
	for _, t := range c.targets {
		if t != nil {
			out = append(out, t.id)
		}
	}
	return out
}

// ShaderResource returns the id of the view bound at stage/slot, or "".
func (c *Context) ShaderResource(stage metadata.ShaderStage, slot uint32) string {
	if v := c.stages[stage].resources[slot]; v != nil {
		return v.id
	}
	return ""
}

// BoundShader returns the name of the shader bound at stage, or "".
func (c *Context) BoundShader(stage metadata.ShaderStage) string {
	if s := c.stages[stage].shader; s != nil {
		return s.name
	}
	return ""
}
