package systems

import (
	"errors"
	"runtime"
)

type SystemManager struct {
	jobSystem        *JobSystem
	shaderSystem     *ShaderSystem
	geometrySystem   *GeometrySystem
	textureSystem    *TextureSystem
	renderViewSystem *RenderViewSystem
}

func NewSystemManager(assets AssetProvider) (*SystemManager, error) {
	js, err := NewJobSystem(runtime.NumCPU(), 64)
	if err != nil {
		return nil, err
	}
	ssys, err := NewShaderSystem(&ShaderSystemConfig{
		MaxShaderCount:     64,
		MaxConcurrentLoads: runtime.NumCPU(),
	}, assets)
	if err != nil {
		return nil, errors.Join(err, js.Shutdown())
	}
	gs, err := NewGeometrySystem(&GeometrySystemConfig{
		MaxGeometryCount: 64,
	}, js, assets)
	if err != nil {
		return nil, errors.Join(err, js.Shutdown())
	}
	ts, err := NewTextureSystem(&TextureSystemConfig{
		MaxTextureCount: 64,
	}, js, assets)
	if err != nil {
		return nil, errors.Join(err, js.Shutdown())
	}
	rvs, err := NewRenderViewSystem(RenderViewSystemConfig{
		MaxViewCount: 8,
	})
	if err != nil {
		return nil, errors.Join(err, js.Shutdown())
	}
	return &SystemManager{
		jobSystem:        js,
		shaderSystem:     ssys,
		geometrySystem:   gs,
		textureSystem:    ts,
		renderViewSystem: rvs,
	}, nil
}

// ReleaseResources drops every view and GPU object the systems own. The job
// system keeps running so the resources can be created again.
func (sm *SystemManager) ReleaseResources() error {
	return errors.Join(
		sm.renderViewSystem.Shutdown(),
		sm.geometrySystem.Shutdown(),
		sm.textureSystem.Shutdown(),
		sm.shaderSystem.Shutdown(),
	)
}

func (sm *SystemManager) Shutdown() error {
	if err := sm.ReleaseResources(); err != nil {
		return err
	}
	if err := sm.jobSystem.Shutdown(); err != nil {
		return err
	}
	return nil
}
