package systems

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/components"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

/** @brief The texture system configuration. */
type TextureSystemConfig struct {
	MaxTextureCount uint16
}

/**
 * @brief Owns the scene's textures, keyed by asset name. Images are decoded
 * on the job system and uploaded on the calling goroutine.
 */
type TextureSystem struct {
	Config *TextureSystemConfig
	Lookup map[string]*components.Texture
	jobs   *JobSystem
	assets AssetProvider
}

func NewTextureSystem(config *TextureSystemConfig, jobs *JobSystem, assets AssetProvider) (*TextureSystem, error) {
	if config.MaxTextureCount == 0 {
		err := fmt.Errorf("func NewTextureSystem - config.MaxTextureCount must be > 0")
		core.LogError("%v", err)
		return nil, err
	}
	return &TextureSystem{
		Config: config,
		Lookup: make(map[string]*components.Texture, config.MaxTextureCount),
		jobs:   jobs,
		assets: assets,
	}, nil
}

// Load decodes and uploads every named texture not loaded yet.
func (ts *TextureSystem) Load(device renderer.Device, names ...string) error {
	var mu sync.Mutex
	images := make(map[string]*metadata.ImageData, len(names))
	var jobs []metadata.JobTask
	for _, name := range names {
		if _, ok := ts.Lookup[name]; ok {
			continue
		}
		name := name
		jobs = append(jobs, metadata.JobTask{
			Name: "texture " + name,
			Run: func() error {
				image, err := ts.assets.LoadImage(name)
				if err != nil {
					return fmt.Errorf("texture %s: %w", name, err)
				}
				mu.Lock()
				images[name] = image
				mu.Unlock()
				return nil
			},
		})
	}
	if err := errors.Join(ts.jobs.RunAll(jobs...)...); err != nil {
		return err
	}

	for _, name := range names {
		image, ok := images[name]
		if !ok {
			continue
		}
		if len(ts.Lookup) >= int(ts.Config.MaxTextureCount) {
			err := fmt.Errorf("texture system is full (%d textures), adjust the configuration", ts.Config.MaxTextureCount)
			core.LogError("%v", err)
			return err
		}
		texture := components.NewTexture(name)
		if err := texture.Load(device, image); err != nil {
			return err
		}
		ts.Lookup[name] = texture
		delete(images, name)
	}
	return nil
}

func (ts *TextureSystem) Get(name string) (*components.Texture, error) {
	texture, ok := ts.Lookup[name]
	if !ok {
		err := fmt.Errorf("texture %s is not loaded", name)
		core.LogError("%v", err)
		return nil, err
	}
	return texture, nil
}

/**
 * @brief Shuts down the texture system, releasing every texture.
 */
func (ts *TextureSystem) Shutdown() error {
	for _, texture := range ts.Lookup {
		texture.Reset()
	}
	ts.Lookup = make(map[string]*components.Texture, ts.Config.MaxTextureCount)
	return nil
}
