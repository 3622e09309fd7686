package assets

import (
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spaghettifunk/prism/engine/config"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/systems"
)

var _ systems.AssetProvider = (*AssetManager)(nil)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func assetTree(t *testing.T, watch bool) *config.AssetsConfig {
	t.Helper()
	cfg := config.Default().Assets
	cfg.Dir = t.TempDir()
	cfg.Watch = watch

	writeFile(t, filepath.Join(cfg.Dir, cfg.ShaderDir, "Quad.cso"), []byte{0x44, 0x58, 0x42, 0x43})
	writeFile(t, filepath.Join(cfg.Dir, cfg.MeshDir, "pole.sim"), []byte("1\n0 0 0 0 0 0 0 1\n0\n"))
	writeFile(t, filepath.Join(cfg.Dir, cfg.MeshDir, "vase.cur"), []byte("1\n0 0 0 0 1 0\n0 1 0 0 1 0\n0 2 0 0 1 0\n0 3 0 0 1 0\n"))
	writeFile(t, filepath.Join(cfg.Dir, cfg.MeshDir, "notes.txt"), []byte("ignored"))

	if err := os.MkdirAll(filepath.Join(cfg.Dir, cfg.TextureDir), 0o755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(filepath.Join(cfg.Dir, cfg.TextureDir, "marble.png"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 4, 2))); err != nil {
		t.Fatal(err)
	}
	return &cfg
}

func TestAssetManagerLoadsEveryKind(t *testing.T) {
	cfg := assetTree(t, false)
	am := NewAssetManager(cfg, nil)
	if err := am.Initialize(""); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer am.Shutdown()

	if am.Count() != 4 {
		t.Errorf("indexed %d assets, want 4", am.Count())
	}

	code, err := am.LoadBytecode(context.Background(), "Quad.cso")
	if err != nil || len(code) != 4 {
		t.Errorf("LoadBytecode: %d bytes, %v", len(code), err)
	}
	mesh, err := am.LoadMesh("pole.sim")
	if err != nil {
		t.Fatalf("LoadMesh: %v", err)
	}
	if mesh.Columns != 8 || mesh.VertexCount() != 1 || len(mesh.Indices) != 0 {
		t.Errorf("mesh %d columns, %d vertices, %d indices", mesh.Columns, mesh.VertexCount(), len(mesh.Indices))
	}
	curve, err := am.LoadCurve("vase.cur")
	if err != nil {
		t.Fatalf("LoadCurve: %v", err)
	}
	if curve.PatchCount != 1 || len(curve.Rows) != 4 {
		t.Errorf("curve %d patches, %d rows", curve.PatchCount, len(curve.Rows))
	}
	img, err := am.LoadImage("marble.png")
	if err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	if img.Width != 4 || img.Height != 2 {
		t.Errorf("image %dx%d", img.Width, img.Height)
	}
}

func TestAssetManagerReportsMissingAssets(t *testing.T) {
	cfg := assetTree(t, false)
	am := NewAssetManager(cfg, nil)
	if err := am.Initialize(""); err != nil {
		t.Fatal(err)
	}
	defer am.Shutdown()

	if _, err := am.LoadBytecode(context.Background(), "Missing.cso"); !errors.Is(err, core.ErrAssetRead) {
		t.Errorf("missing shader: %v", err)
	}
	if _, err := am.LoadMesh("vase.cur"); !errors.Is(err, core.ErrAssetRead) {
		t.Errorf("curve loaded as mesh: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := am.LoadBytecode(ctx, "Quad.cso"); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled load: %v", err)
	}

	missing := config.Default().Assets
	missing.Dir = filepath.Join(t.TempDir(), "nope")
	if err := NewAssetManager(&missing, nil).Initialize(""); !errors.Is(err, core.ErrAssetRead) {
		t.Errorf("missing directory: %v", err)
	}
}

func TestAssetManagerIndexesFilesAddedLater(t *testing.T) {
	cfg := assetTree(t, false)
	am := NewAssetManager(cfg, nil)
	if err := am.Initialize(""); err != nil {
		t.Fatal(err)
	}
	defer am.Shutdown()

	writeFile(t, filepath.Join(cfg.Dir, cfg.ShaderDir, "Late.cso"), []byte{1, 2, 3, 4})
	if _, err := am.LoadBytecode(context.Background(), "Late.cso"); err != nil {
		t.Fatalf("LoadBytecode: %v", err)
	}
	if _, ok := am.Lookup(filepath.Join(cfg.Dir, cfg.ShaderDir, "Late.cso")); !ok {
		t.Error("late shader not indexed")
	}
}

func TestAssetManagerReportsConfigWrites(t *testing.T) {
	cfg := assetTree(t, true)
	configPath := filepath.Join(t.TempDir(), "prism.toml")
	writeFile(t, configPath, []byte("[render]\n"))

	bus := core.NewEventBus()
	changed := make(chan string, 8)
	bus.Register(core.EVENT_CODE_CONFIG_CHANGED, func(ctx core.EventContext) bool {
		select {
		case changed <- ctx.Data.(string):
		default:
		}
		return true
	})

	am := NewAssetManager(cfg, bus)
	if err := am.Initialize(configPath); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer am.Shutdown()

	writeFile(t, configPath, []byte("[render]\nwireframe = true\n"))
	select {
	case path := <-changed:
		abs, _ := filepath.Abs(configPath)
		if path != abs {
			t.Errorf("changed path %q, want %q", path, abs)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no configuration change reported")
	}

	shader := filepath.Join(cfg.Dir, cfg.ShaderDir, "Watched.cso")
	writeFile(t, shader, []byte{1, 2, 3, 4})
	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, ok := am.Lookup(shader); ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("watched shader never indexed")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
