package views

import (
	"context"
	"errors"
	"testing"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/components"
	"github.com/spaghettifunk/prism/engine/renderer/headless"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

type anyBytecode struct{}

func (anyBytecode) LoadBytecode(_ context.Context, name string) ([]byte, error) {
	return []byte(name), nil
}

type harness struct {
	dr        *headless.DeviceResources
	constants *Constants
	quad      *components.Model
	vs        *components.VertexShader
	ps        *components.PixelShader
	sampler   *components.Sampler
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dr, err := headless.NewDeviceResources(128, 64)
	if err != nil {
		t.Fatalf("NewDeviceResources: %v", err)
	}
	h := &harness{
		dr:        dr,
		constants: NewConstants(),
		quad:      components.ScreenQuad(),
		vs:        components.NewVertexShader("quad.vs", components.PositionColourLayout),
		ps:        components.NewPixelShader("quad.ps"),
		sampler:   components.NewSampler(metadata.LinearWrapSampler()),
	}
	device := dr.Device()
	if err := h.constants.Load(device); err != nil {
		t.Fatal(err)
	}
	if err := h.quad.Load(device); err != nil {
		t.Fatal(err)
	}
	for _, s := range []components.ShaderProgram{h.vs, h.ps} {
		if err := s.Load(context.Background(), device, anyBytecode{}); err != nil {
			t.Fatal(err)
		}
	}
	if err := h.sampler.Load(device); err != nil {
		t.Fatal(err)
	}
	return h
}

func (h *harness) framebuffer(t *testing.T, name string) *components.Framebuffer {
	t.Helper()
	fb := components.NewFramebuffer(name)
	if !fb.Load(h.dr.Device(), 128, 64) {
		t.Fatalf("framebuffer %s failed to load", name)
	}
	return fb
}

func TestScreenViewDrawsIntoItsFramebuffer(t *testing.T) {
	h := newHarness(t)
	fb := h.framebuffer(t, "A")
	view := NewRayTraceView(fb, h.quad, h.vs, h.ps, h.constants)

	if err := view.Render(h.dr.Context()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	sw := h.dr.SoftwareContext()
	stats, ok := sw.Frame().Pass(RENDER_VIEW_RAY_TRACE)
	if !ok || stats.Draws != 1 || stats.Indices != 6 {
		t.Fatalf("pass stats %+v, found %v", stats, ok)
	}
	if targets := sw.RenderTargets(); len(targets) != 0 {
		t.Errorf("targets still bound: %v", targets)
	}
	if fb.State() != components.FRAMEBUFFER_STATE_READY {
		t.Errorf("framebuffer left in state %s", fb.State())
	}
	cbs := sw.Frame().Filter(headless.CMD_SET_CONSTANT_BUFFERS, RENDER_VIEW_RAY_TRACE)
	slots := map[uint32]bool{}
	for _, c := range cbs {
		if c.Stage == metadata.SHADER_STAGE_PIXEL {
			slots[c.Slot] = true
		}
	}
	for _, want := range []uint32{metadata.CAMERA_CONSTANTS_SLOT, metadata.FRAME_CONSTANTS_SLOT, metadata.RAY_CONSTANTS_SLOT} {
		if !slots[want] {
			t.Errorf("pixel constant slot %d not bound", want)
		}
	}
}

func TestScreenViewReleasesTargetWhenDrawFails(t *testing.T) {
	h := newHarness(t)
	fb := h.framebuffer(t, "B")
	unloaded := components.NewPixelShader("missing.ps")
	view := NewRayMarchView(fb, h.quad, h.vs, unloaded, h.constants)

	if err := view.Render(h.dr.Context()); !errors.Is(err, core.ErrShaderNotLoaded) {
		t.Fatalf("got %v", err)
	}
	if fb.State() != components.FRAMEBUFFER_STATE_READY {
		t.Errorf("framebuffer left in state %s", fb.State())
	}
}

func TestCompositeBindsBothInputsOnce(t *testing.T) {
	h := newHarness(t)
	a, b := h.framebuffer(t, "A"), h.framebuffer(t, "B")
	d := h.framebuffer(t, "D")
	view := NewRayCompositeView(d, a, b, h.quad, h.vs, h.ps, h.sampler, h.constants)

	if err := view.Render(h.dr.Context()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	var binds []headless.Command
	for _, c := range h.dr.SoftwareContext().Frame().Filter(headless.CMD_SET_SHADER_RESOURCES, RENDER_VIEW_COMPOSITE_RAYS) {
		if !c.Unbinds() {
			binds = append(binds, c)
		}
	}
	if len(binds) != 2 {
		t.Fatalf("expected two texture binds, got %d", len(binds))
	}
	if binds[0].Slot != COMPOSITE_FIRST_SLOT || binds[0].Handles[0] != a.ColourTexture().ID() {
		t.Errorf("first bind %+v", binds[0])
	}
	if binds[1].Slot != COMPOSITE_SECOND_SLOT || binds[1].Handles[0] != b.ColourTexture().ID() {
		t.Errorf("second bind %+v", binds[1])
	}
	for _, fb := range []*components.Framebuffer{a, b, d} {
		if fb.State() != components.FRAMEBUFFER_STATE_READY {
			t.Errorf("%s left in state %s", fb.Name, fb.State())
		}
	}
}

func TestFinalCompositeLeavesBackBufferBound(t *testing.T) {
	h := newHarness(t)
	d, c := h.framebuffer(t, "D"), h.framebuffer(t, "C")
	view := NewFinalCompositeView(func() (metadata.View, metadata.View) {
		return h.dr.BackBufferTarget(), h.dr.DepthStencilTarget()
	}, [4]float32{0, 0, 0, 1}, d, c, h.quad, h.vs, h.ps, h.sampler, h.constants)

	if err := view.Render(h.dr.Context()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	targets := h.dr.SoftwareContext().RenderTargets()
	if len(targets) != 1 || targets[0] != h.dr.BackBufferTarget().ID() {
		t.Fatalf("targets %v", targets)
	}
	if err := h.dr.Present(); err != nil {
		t.Fatalf("Present: %v", err)
	}
}

func TestCompositeWithoutTargetFails(t *testing.T) {
	h := newHarness(t)
	d, c := h.framebuffer(t, "D"), h.framebuffer(t, "C")
	view := NewFinalCompositeView(nil, [4]float32{}, d, c, h.quad, h.vs, h.ps, h.sampler, h.constants)
	if err := view.Render(h.dr.Context()); !errors.Is(err, core.ErrIncompletePipeline) {
		t.Fatalf("got %v", err)
	}
}

func tessTriangle() *metadata.MeshData {
	mesh := &metadata.MeshData{Name: "patch", Columns: components.TESS_MESH_COLUMNS, Indices: []uint32{0, 1, 2}}
	for i := 0; i < 3; i++ {
		mesh.Rows = append(mesh.Rows, make([]float32, components.TESS_MESH_COLUMNS))
	}
	return mesh
}

func TestObjectsViewRestoresStateAfterEachObject(t *testing.T) {
	h := newHarness(t)
	device := h.dr.Device()
	target := h.framebuffer(t, "C")
	raster := components.NewRasterizerStates()
	if err := raster.Load(device); err != nil {
		t.Fatal(err)
	}

	patch, err := components.NewTessModel(tessTriangle())
	if err != nil {
		t.Fatal(err)
	}
	if err := patch.Load(device); err != nil {
		t.Fatal(err)
	}
	tvs := components.NewVertexShader("tess.vs", components.TessellationLayout)
	hs := components.NewHullShader("tess.hs")
	ds := components.NewDomainShader("tess.ds")
	tps := components.NewPixelShader("tess.ps")
	for _, s := range []components.ShaderProgram{tvs, hs, ds, tps} {
		if err := s.Load(context.Background(), device, anyBytecode{}); err != nil {
			t.Fatal(err)
		}
	}

	view := NewObjectsView(target, raster, h.sampler, h.constants)
	view.Add(ObjectDraw{
		Name: "rock", Model: patch, World: math.NewMat4Translation(math.NewVec3(1, 0, 0)),
		Vertex: tvs, Hull: hs, Domain: ds, Pixel: tps, Raster: components.RASTER_MODE_WIREFRAME,
	})
	view.Add(ObjectDraw{Name: "quad", Model: h.quad, World: math.NewMat4Identity(), Vertex: h.vs, Pixel: h.ps})

	if err := view.Render(h.dr.Context()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	sw := h.dr.SoftwareContext()
	stats, _ := sw.Frame().Pass(RENDER_VIEW_OBJECTS)
	if stats.Draws != 2 || stats.Indices != 9 {
		t.Fatalf("pass stats %+v", stats)
	}
	if sw.BoundShader(metadata.SHADER_STAGE_HULL) != "" || sw.BoundShader(metadata.SHADER_STAGE_DOMAIN) != "" {
		t.Error("tessellation stages left bound")
	}
	if raster.Current() != components.RASTER_MODE_DEFAULT {
		t.Errorf("rasterizer left in %s", raster.Current())
	}
	desc, _ := sw.RasterizerState()
	if desc.FillMode != metadata.FILL_SOLID {
		t.Error("wireframe fill left bound")
	}
}

func TestObjectsViewRejectsIncompleteObject(t *testing.T) {
	h := newHarness(t)
	raster := components.NewRasterizerStates()
	if err := raster.Load(h.dr.Device()); err != nil {
		t.Fatal(err)
	}
	target := h.framebuffer(t, "C")
	view := NewObjectsView(target, raster, h.sampler, h.constants)
	view.Add(ObjectDraw{Name: "headless", Model: h.quad, World: math.NewMat4Identity(), Vertex: h.vs})

	if err := view.Render(h.dr.Context()); !errors.Is(err, core.ErrIncompletePipeline) {
		t.Fatalf("got %v", err)
	}
	if target.State() != components.FRAMEBUFFER_STATE_READY {
		t.Errorf("target left in state %s", target.State())
	}
}
