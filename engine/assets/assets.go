package assets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/prism/engine/assets/loaders"
	"github.com/spaghettifunk/prism/engine/config"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/components"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

type AssetInfo struct {
	Path     string
	Type     metadata.ResourceType
	Modified time.Time
}

/**
 * @brief Indexes the asset tree and loads shaders, textures, meshes and
 * curves from it. When watching, files created, written or removed under the
 * tree keep the index current, and writes to the configuration file are
 * reported on the event bus as EVENT_CODE_CONFIG_CHANGED.
 */
type AssetManager struct {
	config *config.AssetsConfig
	bus    *core.EventBus

	assets map[string]AssetInfo
	mutex  sync.RWMutex

	shaders  *loaders.ShaderLoader
	textures *loaders.TextureLoader
	meshes   *loaders.MeshLoader

	configPath string
	fsnotify   *fsnotify.Watcher
	done       chan struct{}
	wg         sync.WaitGroup
	isClosed   bool
}

func NewAssetManager(cfg *config.AssetsConfig, bus *core.EventBus) *AssetManager {
	return &AssetManager{
		config:   cfg,
		bus:      bus,
		assets:   make(map[string]AssetInfo),
		shaders:  &loaders.ShaderLoader{},
		textures: &loaders.TextureLoader{},
		meshes: &loaders.MeshLoader{
			Layouts:      []int{components.TESS_MESH_COLUMNS, components.SCULPTURE_MESH_COLUMNS},
			CurveColumns: components.CURVE_COLUMNS,
		},
	}
}

/**
 * @brief Indexes every asset under the configured directory and, when
 * watching is enabled, starts the watcher. configPath may be empty.
 */
func (am *AssetManager) Initialize(configPath string) error {
	info, err := os.Stat(am.config.Dir)
	if err != nil {
		err = fmt.Errorf("%w: asset directory: %v", core.ErrAssetRead, err)
		core.LogError("%v", err)
		return err
	}
	if !info.IsDir() {
		err := fmt.Errorf("%w: %s is not a directory", core.ErrAssetRead, am.config.Dir)
		core.LogError("%v", err)
		return err
	}
	if configPath != "" {
		if am.configPath, err = filepath.Abs(configPath); err != nil {
			return err
		}
	}

	if am.config.Watch {
		if am.fsnotify, err = fsnotify.NewWatcher(); err != nil {
			return err
		}
		am.done = make(chan struct{})
		am.wg.Add(1)
		go am.start()
	}
	if err := am.watchRecursive(am.config.Dir); err != nil {
		am.Shutdown()
		return err
	}
	if am.fsnotify != nil && am.configPath != "" {
		// Editors replace files on save, so the directory is watched rather than the file.
		if err := am.fsnotify.Add(filepath.Dir(am.configPath)); err != nil {
			am.Shutdown()
			return err
		}
	}
	core.LogInfo("indexed %d assets under %s", am.Count(), am.config.Dir)
	return nil
}

func (am *AssetManager) Shutdown() error {
	if am.isClosed {
		return nil
	}
	am.isClosed = true
	if am.fsnotify == nil {
		return nil
	}
	close(am.done)
	am.wg.Wait()
	return nil
}

// Count returns the number of indexed assets.
func (am *AssetManager) Count() int {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	return len(am.assets)
}

// Lookup returns the index entry of the asset at path.
func (am *AssetManager) Lookup(path string) (AssetInfo, bool) {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	asset, ok := am.assets[filepath.Clean(path)]
	return asset, ok
}

func (am *AssetManager) resolve(subdir, name string, want metadata.ResourceType) (string, error) {
	path := filepath.Join(am.config.Dir, subdir, name)
	if asset, ok := am.Lookup(path); ok {
		if asset.Type != want {
			return "", fmt.Errorf("%w: %s is a %s asset, not %s", core.ErrAssetRead, path, asset.Type, want)
		}
		return path, nil
	}
	// Files added while not watching are still loadable; index them on first use.
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		am.handleFileEvent(path)
		return path, nil
	}
	err := fmt.Errorf("%w: %s asset not found: %s", core.ErrAssetRead, want, path)
	core.LogError("%v", err)
	return "", err
}

func (am *AssetManager) LoadBytecode(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := am.resolve(am.config.ShaderDir, name, metadata.ResourceTypeShader)
	if err != nil {
		return nil, err
	}
	return am.shaders.Load(path)
}

func (am *AssetManager) LoadMesh(name string) (*metadata.MeshData, error) {
	path, err := am.resolve(am.config.MeshDir, name, metadata.ResourceTypeMesh)
	if err != nil {
		return nil, err
	}
	return am.meshes.LoadMesh(path, name)
}

func (am *AssetManager) LoadCurve(name string) (*metadata.CurveData, error) {
	path, err := am.resolve(am.config.MeshDir, name, metadata.ResourceTypeCurve)
	if err != nil {
		return nil, err
	}
	return am.meshes.LoadCurve(path, name)
}

func (am *AssetManager) LoadImage(name string) (*metadata.ImageData, error) {
	path, err := am.resolve(am.config.TextureDir, name, metadata.ResourceTypeImage)
	if err != nil {
		return nil, err
	}
	return am.textures.Load(path)
}

func (am *AssetManager) start() {
	defer am.wg.Done()
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			am.handleWatchEvent(e)

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("asset watcher: %v", err)

		case <-am.done:
			am.fsnotify.Close()
			return
		}
	}
}

func (am *AssetManager) handleWatchEvent(e fsnotify.Event) {
	if am.isConfig(e.Name) {
		if e.Op&(fsnotify.Create|fsnotify.Write) != 0 && am.bus != nil {
			core.LogInfo("configuration %s changed", e.Name)
			am.bus.Fire(core.EventContext{Type: core.EVENT_CODE_CONFIG_CHANGED, Data: am.configPath})
		}
		return
	}
	s, err := os.Stat(e.Name)
	if err == nil && s != nil && s.IsDir() {
		if e.Op&fsnotify.Create != 0 {
			if err := am.watchRecursive(e.Name); err != nil {
				core.LogError("asset watcher: %v", err)
			}
		}
		return
	}
	if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
		am.handleFileEvent(e.Name)
	}
	// Removed directories cannot be told apart from files; unindexed paths are ignored.
	if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		am.removeAsset(e.Name)
	}
}

func (am *AssetManager) isConfig(path string) bool {
	if am.configPath == "" {
		return false
	}
	abs, err := filepath.Abs(path)
	return err == nil && abs == am.configPath
}

// watchRecursive indexes every file under path and watches its directories.
func (am *AssetManager) watchRecursive(path string) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if am.fsnotify != nil {
				return am.fsnotify.Add(walkPath)
			}
			return nil
		}
		am.handleFileEvent(walkPath)
		return nil
	})
}

// Handle the creation or modification of a file
func (am *AssetManager) handleFileEvent(path string) {
	assetType := determineAssetType(path)
	if assetType == metadata.ResourceTypeNone {
		return
	}
	modified := time.Now()
	if info, err := os.Stat(path); err == nil {
		modified = info.ModTime()
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()
	path = filepath.Clean(path)
	am.assets[path] = AssetInfo{
		Path:     path,
		Type:     assetType,
		Modified: modified,
	}
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	delete(am.assets, filepath.Clean(path))
}

func determineAssetType(path string) metadata.ResourceType {
	switch filepath.Ext(path) {
	case ".cso", ".spv":
		return metadata.ResourceTypeShader
	case ".dds", ".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff", ".webp":
		return metadata.ResourceTypeImage
	case ".sim":
		return metadata.ResourceTypeMesh
	case ".cur":
		return metadata.ResourceTypeCurve
	case ".toml":
		return metadata.ResourceTypeConfig
	default:
		return metadata.ResourceTypeNone
	}
}
