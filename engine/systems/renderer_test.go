package systems

import (
	"context"
	"errors"
	"fmt"
	gomath "math"
	"testing"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/components"
	"github.com/spaghettifunk/prism/engine/renderer/headless"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/spaghettifunk/prism/engine/renderer/views"
)

// sceneAssets serves minimal but valid content for every asset of the scene.
type sceneAssets struct {
	missing map[string]bool
}

func (a *sceneAssets) check(name string) error {
	if a.missing[name] {
		return fmt.Errorf("%w: %s", core.ErrAssetRead, name)
	}
	return nil
}

func (a *sceneAssets) LoadBytecode(_ context.Context, name string) ([]byte, error) {
	if err := a.check(name); err != nil {
		return nil, err
	}
	return []byte(name), nil
}

func (a *sceneAssets) LoadMesh(name string) (*metadata.MeshData, error) {
	if err := a.check(name); err != nil {
		return nil, err
	}
	columns := components.SCULPTURE_MESH_COLUMNS
	if name == MESH_ROCK {
		columns = components.TESS_MESH_COLUMNS
	}
	mesh := &metadata.MeshData{Name: name, Columns: columns, Indices: []uint32{0, 1, 2}}
	for i := 0; i < 3; i++ {
		mesh.Rows = append(mesh.Rows, make([]float32, columns))
	}
	return mesh, nil
}

func (a *sceneAssets) LoadCurve(name string) (*metadata.CurveData, error) {
	if err := a.check(name); err != nil {
		return nil, err
	}
	curve := &metadata.CurveData{Name: name, PatchCount: 1}
	for i := 0; i < 4; i++ {
		curve.Rows = append(curve.Rows, make([]float32, components.CURVE_COLUMNS))
	}
	return curve, nil
}

func (a *sceneAssets) LoadImage(name string) (*metadata.ImageData, error) {
	if err := a.check(name); err != nil {
		return nil, err
	}
	return &metadata.ImageData{
		Width: 2, Height: 2, Format: metadata.FORMAT_R8G8B8A8_UNORM,
		MipLevels: 1, RowPitch: 8, Pixels: make([]uint8, 16),
	}, nil
}

type scene struct {
	dr       *headless.DeviceResources
	sr       *SceneRenderer
	baseline int
}

func newScene(t *testing.T, width, height uint32, assets *sceneAssets) *scene {
	t.Helper()
	dr, err := headless.NewDeviceResources(width, height)
	if err != nil {
		t.Fatalf("NewDeviceResources: %v", err)
	}
	sr, err := NewSceneRenderer(dr, assets, DefaultRenderSettings())
	if err != nil {
		t.Fatalf("NewSceneRenderer: %v", err)
	}
	t.Cleanup(func() { _ = sr.Shutdown() })
	return &scene{dr: dr, sr: sr, baseline: dr.SoftwareDevice().LiveCount()}
}

func (s *scene) load(t *testing.T) {
	t.Helper()
	if err := s.sr.CreateSizeDependentResources(); err != nil {
		t.Fatalf("CreateSizeDependentResources: %v", err)
	}
	if err := s.sr.CreateDeviceResources(context.Background()); err != nil {
		t.Fatalf("CreateDeviceResources: %v", err)
	}
}

func TestRenderIsNoOpUntilReady(t *testing.T) {
	s := newScene(t, 320, 240, &sceneAssets{})
	if err := s.sr.Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if n := len(s.dr.SoftwareContext().Frame().Commands); n != 0 {
		t.Fatalf("render before load recorded %d commands", n)
	}
	if s.sr.Stage() != RendererStageUninitialized {
		t.Fatalf("stage %s", s.sr.Stage())
	}
}

func TestFullFrame(t *testing.T) {
	s := newScene(t, 320, 240, &sceneAssets{})
	s.load(t)
	if s.sr.Stage() != RendererStageReady {
		t.Fatalf("stage %s after load", s.sr.Stage())
	}

	timer := core.NewFixedStepTimer(1.0 / 60.0)
	sw := s.dr.SoftwareContext()
	for frame := 0; frame < 3; frame++ {
		timer.Tick()
		if err := s.sr.Update(timer); err != nil {
			t.Fatalf("Update: %v", err)
		}
		if err := s.sr.Render(); err != nil {
			t.Fatalf("frame %d: Render: %v", frame, err)
		}

		record := sw.Frame()
		var order []string
		for _, c := range record.Filter(headless.CMD_BEGIN_EVENT, "") {
			order = append(order, c.Name)
		}
		want := []string{views.RENDER_VIEW_RAY_TRACE, views.RENDER_VIEW_RAY_MARCH, views.RENDER_VIEW_OBJECTS,
			views.RENDER_VIEW_COMPOSITE_RAYS, views.RENDER_VIEW_COMPOSITE_FINAL}
		if fmt.Sprint(order) != fmt.Sprint(want) {
			t.Fatalf("pass order %v", order)
		}

		for _, pass := range []string{views.RENDER_VIEW_COMPOSITE_RAYS, views.RENDER_VIEW_COMPOSITE_FINAL} {
			slots := map[uint32]int{}
			for _, c := range record.Filter(headless.CMD_SET_SHADER_RESOURCES, pass) {
				if !c.Unbinds() {
					slots[c.Slot]++
				}
			}
			if len(slots) != 2 || slots[0] != 1 || slots[2] != 1 {
				t.Errorf("%s bound texture slots %v", pass, slots)
			}
		}

		targets := sw.RenderTargets()
		if len(targets) != 1 || targets[0] != s.dr.BackBufferTarget().ID() {
			t.Fatalf("back buffer not bound before present: %v", targets)
		}
		if err := s.dr.Present(); err != nil {
			t.Fatalf("Present: %v", err)
		}
	}

	last := sw.LastFrame()
	for pass, want := range map[string]uint64{
		views.RENDER_VIEW_RAY_TRACE:       6,
		views.RENDER_VIEW_RAY_MARCH:       6,
		views.RENDER_VIEW_OBJECTS:         3 + 3 + 4 + 24 + 2 + 3 + 3,
		views.RENDER_VIEW_COMPOSITE_RAYS:  6,
		views.RENDER_VIEW_COMPOSITE_FINAL: 6,
	} {
		stats, ok := last.Pass(pass)
		if !ok || stats.Indices != want {
			t.Errorf("%s: indices %d, want %d", pass, stats.Indices, want)
		}
	}
	if stats, _ := last.Pass(views.RENDER_VIEW_OBJECTS); stats.Draws != 7 {
		t.Errorf("objects pass drew %d objects", stats.Draws)
	}
	if s.sr.FrameCount() != 3 {
		t.Errorf("frame count %d", s.sr.FrameCount())
	}
}

func TestReleaseDeviceResourcesLeavesNothingAlive(t *testing.T) {
	s := newScene(t, 320, 240, &sceneAssets{})
	s.load(t)
	timer := core.NewFixedStepTimer(0.1)
	timer.Tick()
	if err := s.sr.Update(timer); err != nil {
		t.Fatal(err)
	}
	if err := s.sr.Render(); err != nil {
		t.Fatal(err)
	}

	s.sr.ReleaseDeviceResources()
	if s.sr.Stage() != RendererStageUninitialized {
		t.Fatalf("stage %s after release", s.sr.Stage())
	}
	if live := s.dr.SoftwareDevice().LiveCount(); live != s.baseline {
		t.Fatalf("%d resources alive after release, want %d: %v", live, s.baseline, s.dr.SoftwareDevice().LiveResources())
	}
	if err := s.sr.Render(); err != nil {
		t.Fatalf("Render after release: %v", err)
	}

	// the renderer can be loaded again
	s.load(t)
	if err := s.sr.Render(); err != nil {
		t.Fatalf("Render after reload: %v", err)
	}
}

func TestCreateDeviceResourcesFailsOnMissingShader(t *testing.T) {
	s := newScene(t, 320, 240, &sceneAssets{missing: map[string]bool{SHADER_TESS_DOMAIN: true}})
	if err := s.sr.CreateSizeDependentResources(); err != nil {
		t.Fatal(err)
	}
	err := s.sr.CreateDeviceResources(context.Background())
	if !errors.Is(err, core.ErrAssetRead) {
		t.Fatalf("got %v", err)
	}
	if s.sr.Stage() != RendererStageUninitialized {
		t.Fatalf("stage %s after failed load", s.sr.Stage())
	}
	if live := s.dr.SoftwareDevice().LiveCount(); live != s.baseline {
		t.Fatalf("%d resources alive after failed load, want %d", live, s.baseline)
	}
}

func TestCreateDeviceResourcesFailsOnMissingMesh(t *testing.T) {
	s := newScene(t, 320, 240, &sceneAssets{missing: map[string]bool{CURVE_VASE: true}})
	if err := s.sr.CreateDeviceResources(context.Background()); !errors.Is(err, core.ErrAssetRead) {
		t.Fatalf("got %v", err)
	}
	if live := s.dr.SoftwareDevice().LiveCount(); live != s.baseline {
		t.Fatalf("%d resources alive after failed load, want %d", live, s.baseline)
	}
}

func TestCreateDeviceResourcesTwiceIsRejected(t *testing.T) {
	s := newScene(t, 320, 240, &sceneAssets{})
	s.load(t)
	if err := s.sr.CreateDeviceResources(context.Background()); !errors.Is(err, core.ErrInvalidState) {
		t.Fatalf("got %v", err)
	}
	if s.sr.Stage() != RendererStageReady {
		t.Fatalf("stage %s", s.sr.Stage())
	}
}

func TestProjectionWidensFieldOfViewInPortrait(t *testing.T) {
	cot := func(degrees float64) float32 {
		r := degrees * gomath.Pi / 180
		return float32(gomath.Cos(r) / gomath.Sin(r))
	}
	tests := []struct {
		name          string
		width, height uint32
		wantH         float32
	}{
		{"landscape", 320, 240, cot(35)},
		{"portrait", 240, 320, cot(70)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newScene(t, tt.width, tt.height, &sceneAssets{})
			if err := s.sr.CreateSizeDependentResources(); err != nil {
				t.Fatal(err)
			}
			p := s.sr.CameraConstants().Projection
			if gomath.Abs(float64(p.Data[5]-tt.wantH)) > 1e-4 {
				t.Errorf("y scale %f, want %f", p.Data[5], tt.wantH)
			}
			aspect := float32(tt.width) / float32(tt.height)
			if gomath.Abs(float64(p.Data[0]-tt.wantH/aspect)) > 1e-4 {
				t.Errorf("x scale %f, want %f", p.Data[0], tt.wantH/aspect)
			}
			cam := s.sr.Camera()
			if cam == nil || !cam.Eye.Compare(math.NewVec3(0, 0, 5), 1e-6) {
				t.Errorf("camera not seeded at the default eye")
			}
		})
	}
}

func TestUpdateRotatesUnlessTracking(t *testing.T) {
	s := newScene(t, 320, 240, &sceneAssets{})
	if err := s.sr.CreateSizeDependentResources(); err != nil {
		t.Fatal(err)
	}
	timer := core.NewFixedStepTimer(0.5)
	timer.Tick()
	timer.Tick()

	s.sr.Camera().SetIntent(components.CAMERA_PAN_FORWARD, true)
	if err := s.sr.Update(timer); err != nil {
		t.Fatal(err)
	}
	// 45 degrees per second for one second
	model := s.sr.CameraConstants().Model
	want := float32(gomath.Cos(gomath.Pi / 4))
	if gomath.Abs(float64(model.Data[0]-want)) > 1e-5 {
		t.Errorf("model[0] %f, want %f", model.Data[0], want)
	}
	eye := s.sr.Camera().Eye
	if gomath.Abs(float64(eye.Z-4)) > 1e-5 {
		t.Errorf("camera did not move forward: %v", eye)
	}

	s.sr.StartTracking()
	if !s.sr.IsTracking() {
		t.Fatal("not tracking")
	}
	// a quarter of the width is half a turn
	s.sr.TrackingUpdate(80)
	if got := s.sr.CameraConstants().Model.Data[0]; gomath.Abs(float64(got+1)) > 1e-5 {
		t.Errorf("tracked model[0] %f, want -1", got)
	}
	timer.Tick()
	if err := s.sr.Update(timer); err != nil {
		t.Fatal(err)
	}
	if got := s.sr.Camera().Eye; !got.Compare(eye, 1e-6) {
		t.Errorf("camera moved while tracking: %v", got)
	}
	if got := s.sr.CameraConstants().Model.Data[0]; gomath.Abs(float64(got+1)) > 1e-5 {
		t.Errorf("update overrode the tracked rotation: %f", got)
	}

	s.sr.StopTracking()
	s.sr.TrackingUpdate(0)
	if got := s.sr.CameraConstants().Model.Data[0]; gomath.Abs(float64(got+1)) > 1e-5 {
		t.Errorf("tracking update applied after stop: %f", got)
	}
}

func TestWireframeSetting(t *testing.T) {
	s := newScene(t, 320, 240, &sceneAssets{})
	s.load(t)
	s.sr.ToggleWireframe()
	if !s.sr.Settings().Wireframe {
		t.Fatal("wireframe not enabled")
	}
	if err := s.sr.Render(); err != nil {
		t.Fatal(err)
	}
	desc, _ := s.dr.SoftwareContext().RasterizerState()
	if desc.FillMode != metadata.FILL_SOLID {
		t.Error("rasterizer not restored after the object pass")
	}
	var wire int
	for _, p := range s.dr.SoftwareContext().Frame().Pipelines {
		if p.Rasterizer.FillMode == metadata.FILL_WIREFRAME {
			wire++
		}
	}
	if wire == 0 {
		t.Error("no draw used the wireframe state")
	}
}

func TestResizeRecreatesFramebuffers(t *testing.T) {
	s := newScene(t, 320, 240, &sceneAssets{})
	s.load(t)
	if err := s.dr.Resize(640, 480); err != nil {
		t.Fatal(err)
	}
	if err := s.sr.CreateSizeDependentResources(); err != nil {
		t.Fatal(err)
	}
	if w, h := s.sr.objects.Size(); w != 640 || h != 480 {
		t.Fatalf("objects framebuffer is %dx%d", w, h)
	}
	if err := s.sr.Render(); err != nil {
		t.Fatal(err)
	}
	if err := s.dr.Present(); err != nil {
		t.Fatal(err)
	}
}
