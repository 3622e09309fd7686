package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spaghettifunk/prism/engine/config"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

type recordingGame struct {
	engine   *Engine
	updates  int
	renders  int
	resizes  [][2]uint32
	reloads  int
	skipDraw bool
	failOn   int
}

func newTestGame(t *testing.T, frames uint64) (*Game, *recordingGame) {
	t.Helper()
	cfg := config.Default()
	cfg.Window.Width, cfg.Window.Height = 64, 32
	cfg.Assets.Dir = t.TempDir()
	app := NewApplicationConfig(cfg, "")
	app.MaxFrames = frames
	app.FixedStep = true

	rg := &recordingGame{}
	g := &Game{
		ApplicationConfig: app,
		State:             rg,
		FnInitialize: func(e *Engine) error {
			rg.engine = e
			return nil
		},
		FnUpdate: func(timer core.Timer) error {
			rg.updates++
			return nil
		},
		FnRender: func() (bool, error) {
			rg.renders++
			if rg.failOn > 0 && rg.renders == rg.failOn {
				return false, core.ErrInvalidState
			}
			if rg.skipDraw {
				return false, nil
			}
			dr := rg.engine.DeviceResources()
			bb := dr.BackBufferTarget()
			if err := dr.Context().ClearRenderTargetView(bb, [4]float32{0, 0, 0, 1}); err != nil {
				return false, err
			}
			return true, dr.Context().OMSetRenderTargets([]metadata.View{bb}, nil)
		},
		FnOnResize: func(width, height uint32) error {
			rg.resizes = append(rg.resizes, [2]uint32{width, height})
			return nil
		},
		FnOnConfigChanged: func(cfg *config.Config) error {
			rg.reloads++
			return nil
		},
	}
	return g, rg
}

func startEngine(t *testing.T, g *Game) *Engine {
	t.Helper()
	e, err := New(g)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := e.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	t.Cleanup(func() { e.Shutdown() })
	return e
}

func TestEngineRunsUntilMaxFrames(t *testing.T) {
	g, rg := newTestGame(t, 5)
	e := startEngine(t, g)
	if e.Stage() != EngineStageInitialized {
		t.Fatalf("stage %d after Initialize", e.Stage())
	}
	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if e.FrameCount() != 5 || rg.updates != 5 || rg.renders != 5 {
		t.Errorf("frames %d updates %d renders %d, want 5 each", e.FrameCount(), rg.updates, rg.renders)
	}
	if got := e.DeviceResources().PresentCount(); got != 5 {
		t.Errorf("presented %d frames, want 5", got)
	}
	if len(rg.resizes) != 1 || rg.resizes[0] != [2]uint32{64, 32} {
		t.Errorf("initial resize calls %v", rg.resizes)
	}
	if err := e.Run(context.Background()); !errors.Is(err, core.ErrInvalidState) {
		t.Errorf("second Run: %v, want ErrInvalidState", err)
	}
}

func TestEngineStopsOnQuitAndCancel(t *testing.T) {
	g, rg := newTestGame(t, 0)
	e := startEngine(t, g)
	g.FnUpdate = func(timer core.Timer) error {
		rg.updates++
		if rg.updates == 3 {
			e.Input().ProcessKey(core.KEY_ESCAPE, true)
		}
		return nil
	}
	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if e.FrameCount() != 3 {
		t.Errorf("escape after frame 3 presented %d frames", e.FrameCount())
	}

	g2, _ := newTestGame(t, 0)
	e2 := startEngine(t, g2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := e2.Run(ctx); err != nil {
		t.Fatalf("Run with cancelled context: %v", err)
	}
	if e2.FrameCount() != 0 {
		t.Errorf("cancelled context presented %d frames", e2.FrameCount())
	}
}

func TestEngineSkipsPresentWithoutFrame(t *testing.T) {
	g, rg := newTestGame(t, 0)
	rg.skipDraw = true
	e := startEngine(t, g)
	g.FnUpdate = func(timer core.Timer) error {
		rg.updates++
		if rg.updates == 4 {
			e.Quit()
		}
		return nil
	}
	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rg.renders != 4 || e.DeviceResources().PresentCount() != 0 {
		t.Errorf("renders %d presents %d, want 4 and 0", rg.renders, e.DeviceResources().PresentCount())
	}
}

func TestEngineRenderErrorStopsLoop(t *testing.T) {
	g, rg := newTestGame(t, 10)
	rg.failOn = 2
	e := startEngine(t, g)
	if err := e.Run(context.Background()); !errors.Is(err, core.ErrInvalidState) {
		t.Fatalf("Run: %v, want the render error", err)
	}
	if e.FrameCount() != 1 {
		t.Errorf("presented %d frames before the failure", e.FrameCount())
	}
}

func TestEngineResize(t *testing.T) {
	g, rg := newTestGame(t, 0)
	e := startEngine(t, g)

	e.Resize(128, 96)
	if w, h := e.DeviceResources().OutputSize(); w != 128 || h != 96 {
		t.Fatalf("output %dx%d after resize", w, h)
	}
	if w, h := e.GetFramebufferSize(); w != 128 || h != 96 {
		t.Errorf("engine size %dx%d after resize", w, h)
	}
	e.Resize(128, 96)
	if len(rg.resizes) != 2 {
		t.Errorf("same size resize should be ignored, got calls %v", rg.resizes)
	}

	e.Resize(0, 0)
	if !e.isSuspended || len(rg.resizes) != 2 {
		t.Errorf("minimize: suspended %v, resize calls %v", e.isSuspended, rg.resizes)
	}
	e.Resize(100, 50)
	if e.isSuspended || rg.resizes[len(rg.resizes)-1] != [2]uint32{100, 50} {
		t.Errorf("restore: suspended %v, resize calls %v", e.isSuspended, rg.resizes)
	}
}

func TestEngineIdlesWhileMinimized(t *testing.T) {
	g, rg := newTestGame(t, 3)
	e := startEngine(t, g)
	e.Resize(0, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := e.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rg.updates != 0 || rg.renders != 0 || e.FrameCount() != 0 {
		t.Errorf("minimized engine ran frames: updates %d renders %d presented %d", rg.updates, rg.renders, e.FrameCount())
	}
}

func TestEngineAppliesReloadedConfig(t *testing.T) {
	g, rg := newTestGame(t, 1)
	e := startEngine(t, g)

	path := filepath.Join(t.TempDir(), "prism.toml")
	if err := os.WriteFile(path, []byte("[render]\nwireframe = true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	e.EventBus().Fire(core.EventContext{Type: core.EVENT_CODE_CONFIG_CHANGED, Data: path})
	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rg.reloads != 1 {
		t.Fatalf("reloads %d, want 1", rg.reloads)
	}
	if !g.ApplicationConfig.Config.Render.Wireframe {
		t.Error("reloaded configuration not stored on the application")
	}
}

func TestEngineRejectsBrokenReload(t *testing.T) {
	g, rg := newTestGame(t, 1)
	e := startEngine(t, g)

	path := filepath.Join(t.TempDir(), "prism.toml")
	if err := os.WriteFile(path, []byte("[render]\nfov_degrees = 500.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	e.EventBus().Fire(core.EventContext{Type: core.EVENT_CODE_CONFIG_CHANGED, Data: path})
	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rg.reloads != 0 {
		t.Errorf("invalid configuration was applied")
	}
}

func TestNewRequiresConfiguration(t *testing.T) {
	if _, err := New(&Game{}); !errors.Is(err, core.ErrInvalidState) {
		t.Errorf("New without config: %v", err)
	}
}
