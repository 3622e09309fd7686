package systems

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/components"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

type GeometryKind int

const (
	GEOMETRY_KIND_TESSELLATED GeometryKind = iota
	GEOMETRY_KIND_SCULPTURE
	GEOMETRY_KIND_SPLINE
)

func (k GeometryKind) String() string {
	switch k {
	case GEOMETRY_KIND_TESSELLATED:
		return "tessellated"
	case GEOMETRY_KIND_SCULPTURE:
		return "sculpture"
	case GEOMETRY_KIND_SPLINE:
		return "spline"
	}
	return "unknown"
}

/** @brief A file-backed model to load: the asset it is parsed from and the variant it becomes. */
type GeometryRequest struct {
	Name  string
	Asset string
	Kind  GeometryKind
}

/** @brief The geometry system configuration. */
type GeometrySystemConfig struct {
	/**
	 * @brief NOTE: The maximum number of models that can be managed by
	 * the system.
	 */
	MaxGeometryCount uint16
}

/**
 * @brief Owns the scene's geometry buffers. File-backed models are parsed on
 * the job system; uploads happen on the calling goroutine.
 */
type GeometrySystem struct {
	Config *GeometrySystemConfig
	Lookup map[string]components.Drawable
	jobs   *JobSystem
	assets AssetProvider
}

func NewGeometrySystem(config *GeometrySystemConfig, jobs *JobSystem, assets AssetProvider) (*GeometrySystem, error) {
	if config.MaxGeometryCount == 0 {
		err := fmt.Errorf("func NewGeometrySystem - config.MaxGeometryCount must be > 0")
		core.LogError("%v", err)
		return nil, err
	}
	return &GeometrySystem{
		Config: config,
		Lookup: make(map[string]components.Drawable, config.MaxGeometryCount),
		jobs:   jobs,
		assets: assets,
	}, nil
}

func (gs *GeometrySystem) build(request GeometryRequest) (components.Drawable, error) {
	switch request.Kind {
	case GEOMETRY_KIND_TESSELLATED, GEOMETRY_KIND_SCULPTURE:
		mesh, err := gs.assets.LoadMesh(request.Asset)
		if err != nil {
			return nil, err
		}
		mesh.Name = request.Name
		if request.Kind == GEOMETRY_KIND_TESSELLATED {
			return components.NewTessModel(mesh)
		}
		return components.NewSculptureModel(mesh)
	case GEOMETRY_KIND_SPLINE:
		curve, err := gs.assets.LoadCurve(request.Asset)
		if err != nil {
			return nil, err
		}
		curve.Name = request.Name
		return components.NewSplineModel(curve)
	}
	return nil, fmt.Errorf("unknown geometry kind %d for %s", request.Kind, request.Name)
}

/**
 * @brief Parses every requested model in parallel, then uploads them. Nothing
 * is added to the system unless every model parses.
 */
func (gs *GeometrySystem) Load(device renderer.Device, requests ...GeometryRequest) error {
	var mu sync.Mutex
	built := make(map[string]components.Drawable, len(requests))
	jobs := make([]metadata.JobTask, 0, len(requests))
	for _, request := range requests {
		request := request
		jobs = append(jobs, metadata.JobTask{
			Name: "geometry " + request.Name,
			Run: func() error {
				model, err := gs.build(request)
				if err != nil {
					return fmt.Errorf("%s model %s: %w", request.Kind, request.Name, err)
				}
				mu.Lock()
				built[request.Name] = model
				mu.Unlock()
				return nil
			},
		})
	}
	if err := errors.Join(gs.jobs.RunAll(jobs...)...); err != nil {
		return err
	}

	for _, request := range requests {
		if err := gs.Add(device, built[request.Name]); err != nil {
			return err
		}
	}
	return nil
}

// Add uploads a model and registers it under its name.
func (gs *GeometrySystem) Add(device renderer.Device, model components.Drawable) error {
	if _, ok := gs.Lookup[model.Name()]; ok {
		err := fmt.Errorf("geometry %s is already loaded", model.Name())
		core.LogError("%v", err)
		return err
	}
	if len(gs.Lookup) >= int(gs.Config.MaxGeometryCount) {
		err := fmt.Errorf("geometry system is full (%d models), adjust the configuration", gs.Config.MaxGeometryCount)
		core.LogError("%v", err)
		return err
	}
	if err := model.Load(device); err != nil {
		return err
	}
	gs.Lookup[model.Name()] = model
	core.LogDebug("geometry %s: %d vertices, %d indices, %s", model.Name(), model.VertexCount(), model.IndexCount(), model.Topology())
	return nil
}

func (gs *GeometrySystem) Get(name string) (components.Drawable, error) {
	model, ok := gs.Lookup[name]
	if !ok {
		err := fmt.Errorf("geometry %s is not loaded", name)
		core.LogError("%v", err)
		return nil, err
	}
	return model, nil
}

func (gs *GeometrySystem) Names() []string {
	names := make([]string, 0, len(gs.Lookup))
	for name := range gs.Lookup {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

/**
 * @brief Shuts down the geometry system, releasing every buffer.
 */
func (gs *GeometrySystem) Shutdown() error {
	for _, model := range gs.Lookup {
		model.Reset()
	}
	gs.Lookup = make(map[string]components.Drawable, gs.Config.MaxGeometryCount)
	return nil
}
