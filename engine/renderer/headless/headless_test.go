package headless

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

func u32bytes(values ...uint32) []byte {
	out := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(out[i*4:], v)
	}
	return out
}

type fixture struct {
	dr     *DeviceResources
	ctx    *Context
	vs, ps metadata.Shader
	layout metadata.InputLayout
	vb, ib metadata.Buffer
}

// newFixture builds a minimal triangle pipeline with three vertices.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	dr, err := NewDeviceResources(64, 32)
	if err != nil {
		t.Fatalf("NewDeviceResources: %v", err)
	}
	d := dr.device
	f := &fixture{dr: dr, ctx: dr.context}
	if f.vs, err = d.CreateShader(metadata.SHADER_STAGE_VERTEX, "vs", []byte{1}); err != nil {
		t.Fatal(err)
	}
	if f.ps, err = d.CreateShader(metadata.SHADER_STAGE_PIXEL, "ps", []byte{1}); err != nil {
		t.Fatal(err)
	}
	f.layout, err = d.CreateInputLayout([]metadata.InputElement{
		{SemanticName: "POSITION", Format: metadata.FORMAT_R32G32B32_FLOAT, InputSlot: 0},
	}, []byte{1})
	if err != nil {
		t.Fatal(err)
	}
	if f.vb, err = d.CreateBuffer(metadata.BufferDesc{ByteWidth: 36, Usage: metadata.USAGE_IMMUTABLE, BindFlags: metadata.BIND_VERTEX_BUFFER}, make([]byte, 36)); err != nil {
		t.Fatal(err)
	}
	if f.ib, err = d.CreateBuffer(metadata.BufferDesc{ByteWidth: 12, Usage: metadata.USAGE_IMMUTABLE, BindFlags: metadata.BIND_INDEX_BUFFER}, u32bytes(0, 1, 2)); err != nil {
		t.Fatal(err)
	}
	return f
}

func (f *fixture) bindAll(t *testing.T) {
	t.Helper()
	steps := []error{
		f.ctx.OMSetRenderTargets([]metadata.View{f.dr.BackBufferTarget()}, f.dr.DepthStencilTarget()),
		f.ctx.SetShader(metadata.SHADER_STAGE_VERTEX, f.vs),
		f.ctx.SetShader(metadata.SHADER_STAGE_PIXEL, f.ps),
		f.ctx.IASetInputLayout(f.layout),
		f.ctx.IASetVertexBuffers(0, []metadata.Buffer{f.vb}, []uint32{12}, []uint32{0}),
		f.ctx.IASetIndexBuffer(f.ib, metadata.FORMAT_R32_UINT, 0),
		f.ctx.IASetPrimitiveTopology(metadata.TOPOLOGY_TRIANGLE_LIST),
	}
	for i, err := range steps {
		if err != nil {
			t.Fatalf("binding step %d: %v", i, err)
		}
	}
}

func TestDrawIndexedRecordsCompletePipeline(t *testing.T) {
	f := newFixture(t)
	f.bindAll(t)

	f.ctx.BeginEvent("triangle")
	if err := f.ctx.DrawIndexed(3, 0, 0); err != nil {
		t.Fatalf("DrawIndexed: %v", err)
	}
	f.ctx.EndEvent()

	frame := f.ctx.Frame()
	draws := frame.Filter(CMD_DRAW_INDEXED, "triangle")
	if len(draws) != 1 || draws[0].IndexCount != 3 {
		t.Fatalf("unexpected draws %+v", draws)
	}
	if stats, ok := frame.Pass("triangle"); !ok || stats.Draws != 1 || stats.Indices != 3 {
		t.Fatalf("unexpected pass stats %+v", stats)
	}
	if len(frame.Pipelines) != 1 || frame.Pipelines[0].Shaders[metadata.SHADER_STAGE_VERTEX] != "vs" {
		t.Fatalf("unexpected pipelines %+v", frame.Pipelines)
	}
}

func TestDrawIndexedRejectsIncompleteState(t *testing.T) {
	f := newFixture(t)
	f.bindAll(t)

	if err := f.ctx.DrawIndexed(6, 0, 0); !errors.Is(err, core.ErrIndexOutOfRange) {
		t.Errorf("reading past the index buffer: got %v", err)
	}
	if err := f.ctx.DrawIndexed(2, 0, 0); !errors.Is(err, core.ErrIndexOutOfRange) {
		t.Errorf("partial triangle: got %v", err)
	}
	if err := f.ctx.DrawIndexed(3, 0, 1); !errors.Is(err, core.ErrIndexOutOfRange) {
		t.Errorf("base vertex past the vertex buffer: got %v", err)
	}

	if err := f.ctx.IASetVertexBuffers(0, []metadata.Buffer{f.vb}, []uint32{16}, []uint32{0}); err != nil {
		t.Fatal(err)
	}
	if err := f.ctx.DrawIndexed(3, 0, 0); !errors.Is(err, core.ErrLayoutMismatch) {
		t.Errorf("stride mismatch: got %v", err)
	}

	if err := f.ctx.IASetPrimitiveTopology(metadata.TOPOLOGY_3_CONTROL_POINT_PATCH_LIST); err != nil {
		t.Fatal(err)
	}
	if err := f.ctx.DrawIndexed(3, 0, 0); !errors.Is(err, core.ErrIncompletePipeline) {
		t.Errorf("patch list without tessellation: got %v", err)
	}

	if err := f.ctx.SetShader(metadata.SHADER_STAGE_VERTEX, nil); err != nil {
		t.Fatal(err)
	}
	if err := f.ctx.DrawIndexed(3, 0, 0); !errors.Is(err, core.ErrIncompletePipeline) {
		t.Errorf("no vertex shader: got %v", err)
	}
	if n := len(f.ctx.Frame().Filter(CMD_DRAW_INDEXED, "")); n != 0 {
		t.Fatalf("rejected draws were recorded: %d", n)
	}
}

func TestShaderBoundToWrongStage(t *testing.T) {
	f := newFixture(t)
	if err := f.ctx.SetShader(metadata.SHADER_STAGE_PIXEL, f.vs); !errors.Is(err, core.ErrIncompletePipeline) {
		t.Fatalf("got %v", err)
	}
}

func TestTargetAndTextureHazards(t *testing.T) {
	f := newFixture(t)
	d := f.dr.device
	tex, err := d.CreateTexture2D(metadata.TextureDesc{
		Width: 8, Height: 8, MipLevels: 1, ArraySize: 1,
		Format:    metadata.FORMAT_R32G32B32A32_FLOAT,
		BindFlags: metadata.BIND_RENDER_TARGET | metadata.BIND_SHADER_RESOURCE,
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	rtv, _ := d.CreateRenderTargetView(tex, metadata.FORMAT_R32G32B32A32_FLOAT)
	srv, _ := d.CreateShaderResourceView(tex, metadata.FORMAT_R32G32B32A32_FLOAT)

	if err := f.ctx.OMSetRenderTargets([]metadata.View{rtv}, nil); err != nil {
		t.Fatal(err)
	}
	if err := f.ctx.SetShaderResources(metadata.SHADER_STAGE_PIXEL, 0, []metadata.View{srv}); !errors.Is(err, core.ErrBoundAsTarget) {
		t.Fatalf("sampling a bound target: got %v", err)
	}

	if err := f.ctx.OMSetRenderTargets([]metadata.View{f.dr.BackBufferTarget()}, nil); err != nil {
		t.Fatal(err)
	}
	if err := f.ctx.SetShaderResources(metadata.SHADER_STAGE_PIXEL, 0, []metadata.View{srv}); err != nil {
		t.Fatal(err)
	}
	if err := f.ctx.OMSetRenderTargets([]metadata.View{rtv}, nil); !errors.Is(err, core.ErrBoundAsTexture) {
		t.Fatalf("targeting a bound texture: got %v", err)
	}
	if got := f.ctx.RenderTargets(); len(got) != 1 || got[0] != f.dr.BackBufferTarget().ID() {
		t.Fatalf("rejected call changed the targets: %v", got)
	}
}

func TestSlotLimits(t *testing.T) {
	f := newFixture(t)
	cb, err := f.dr.device.CreateBuffer(metadata.BufferDesc{ByteWidth: 16, BindFlags: metadata.BIND_CONSTANT_BUFFER}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.ctx.SetConstantBuffers(metadata.SHADER_STAGE_VERTEX, 13, []metadata.Buffer{cb}); err != nil {
		t.Errorf("last slot: %v", err)
	}
	if err := f.ctx.SetConstantBuffers(metadata.SHADER_STAGE_VERTEX, 14, []metadata.Buffer{cb}); !errors.Is(err, core.ErrInvalidSlot) {
		t.Errorf("slot 14: got %v", err)
	}
	if err := f.ctx.SetConstantBuffers(metadata.SHADER_STAGE_VERTEX, 0, []metadata.Buffer{f.vb}); !errors.Is(err, core.ErrIncompletePipeline) {
		t.Errorf("vertex buffer as constant buffer: got %v", err)
	}
	if err := f.ctx.UpdateSubresource(cb, make([]byte, 8)); !errors.Is(err, core.ErrLayoutMismatch) {
		t.Errorf("short constant update: got %v", err)
	}
	if err := f.ctx.UpdateSubresource(f.vb, make([]byte, 36)); !errors.Is(err, core.ErrIncompletePipeline) {
		t.Errorf("immutable update: got %v", err)
	}
}

func TestReleasedHandlesAreRejected(t *testing.T) {
	f := newFixture(t)
	before := f.dr.device.LiveCount()
	f.vs.Release()
	f.vs.Release()
	if got := f.dr.device.LiveCount(); got != before-1 {
		t.Fatalf("live count %d, want %d", got, before-1)
	}
	if err := f.ctx.SetShader(metadata.SHADER_STAGE_VERTEX, f.vs); !errors.Is(err, core.ErrReleasedHandle) {
		t.Fatalf("got %v", err)
	}
}

func TestDeviceCreationValidation(t *testing.T) {
	d := NewDevice()
	if _, err := d.CreateBuffer(metadata.BufferDesc{ByteWidth: 20, BindFlags: metadata.BIND_CONSTANT_BUFFER}, nil); !errors.Is(err, core.ErrResourceCreation) {
		t.Errorf("unaligned constant buffer: got %v", err)
	}
	if _, err := d.CreateTexture2D(metadata.TextureDesc{Width: 4, Height: 4, Format: metadata.FORMAT_D32_FLOAT, BindFlags: metadata.BIND_RENDER_TARGET}, nil); !errors.Is(err, core.ErrResourceCreation) {
		t.Errorf("depth render target: got %v", err)
	}
	if _, err := d.CreateShader(metadata.SHADER_STAGE_PIXEL, "empty", nil); !errors.Is(err, core.ErrResourceCreation) {
		t.Errorf("empty bytecode: got %v", err)
	}

	d.InjectFailure(func(kind string) bool { return kind == "sampler" })
	if _, err := d.CreateSamplerState(metadata.LinearWrapSampler()); !errors.Is(err, core.ErrResourceCreation) {
		t.Errorf("injected failure: got %v", err)
	}
	d.InjectFailure(nil)
	if _, err := d.CreateSamplerState(metadata.LinearWrapSampler()); err != nil {
		t.Errorf("after clearing injection: %v", err)
	}
	if live := d.LiveResources(); live["sampler"] != 1 || len(live) != 1 {
		t.Errorf("unexpected live resources %v", live)
	}
}

func TestPresentRequiresBackBuffer(t *testing.T) {
	f := newFixture(t)
	if err := f.dr.Present(); !errors.Is(err, core.ErrIncompletePipeline) {
		t.Fatalf("present with nothing bound: got %v", err)
	}
	f.bindAll(t)
	if err := f.ctx.DrawIndexed(3, 0, 0); err != nil {
		t.Fatal(err)
	}
	if err := f.dr.Present(); err != nil {
		t.Fatalf("Present: %v", err)
	}
	last := f.ctx.LastFrame()
	if last == nil || last.Draws != 1 || last.Index != 0 {
		t.Fatalf("unexpected last frame %+v", last)
	}
	if f.ctx.Frame().Index != 1 || len(f.ctx.Frame().Commands) != 0 {
		t.Fatalf("frame record was not rotated")
	}
	if h := f.ctx.History(); len(h) != 1 || h[0].Draws != 1 {
		t.Fatalf("unexpected history %+v", h)
	}
}

func TestResizeRecreatesTargets(t *testing.T) {
	f := newFixture(t)
	old := f.dr.BackBufferTarget()
	if err := f.dr.Resize(128, 64); err != nil {
		t.Fatal(err)
	}
	if !old.Released() {
		t.Error("old back buffer view was not released")
	}
	if w, h := f.dr.OutputSize(); w != 128 || h != 64 {
		t.Errorf("output size %dx%d", w, h)
	}
	if err := f.dr.Resize(0, 64); !errors.Is(err, core.ErrResourceCreation) {
		t.Errorf("zero width: got %v", err)
	}
}
