package systems

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/components"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

/** @brief Configuration for the shader system. */
type ShaderSystemConfig struct {
	/** @brief The maximum number of shader stages held in the system. */
	MaxShaderCount uint16
	/** @brief The number of bytecode reads allowed in flight. 0 means unlimited. */
	MaxConcurrentLoads int
}

/**
 * @brief Owns every shader stage object of the scene. Stages are registered
 * by name and loaded together; LoadAll returns only once every stage is ready
 * or one has failed.
 */
type ShaderSystem struct {
	Config *ShaderSystemConfig
	// A lookup table for shader name->program
	Lookup map[string]components.ShaderProgram
	loader components.BytecodeLoader
}

func NewShaderSystem(config *ShaderSystemConfig, loader components.BytecodeLoader) (*ShaderSystem, error) {
	if config.MaxShaderCount == 0 {
		err := fmt.Errorf("NewShaderSystem - config.MaxShaderCount must be greater than 0")
		core.LogError("%v", err)
		return nil, err
	}
	return &ShaderSystem{
		Config: config,
		Lookup: make(map[string]components.ShaderProgram, config.MaxShaderCount),
		loader: loader,
	}, nil
}

/**
 * @brief Registers a stage under its file name. Registering the same name
 * twice returns the program already registered, so effects can share stages.
 */
func (ss *ShaderSystem) Register(program components.ShaderProgram) (components.ShaderProgram, error) {
	if existing, ok := ss.Lookup[program.Name()]; ok {
		if existing.Stage() != program.Stage() {
			err := fmt.Errorf("shader %s is already registered as a %s stage", program.Name(), existing.Stage())
			core.LogError("%v", err)
			return nil, err
		}
		return existing, nil
	}
	if len(ss.Lookup) >= int(ss.Config.MaxShaderCount) {
		err := fmt.Errorf("shader system is full (%d stages), adjust the configuration", ss.Config.MaxShaderCount)
		core.LogError("%v", err)
		return nil, err
	}
	ss.Lookup[program.Name()] = program
	return program, nil
}

func (ss *ShaderSystem) Vertex(name string, layout []metadata.InputElement) (*components.VertexShader, error) {
	p, err := ss.Register(components.NewVertexShader(name, layout))
	if err != nil {
		return nil, err
	}
	return p.(*components.VertexShader), nil
}

func (ss *ShaderSystem) Hull(name string) (*components.HullShader, error) {
	p, err := ss.Register(components.NewHullShader(name))
	if err != nil {
		return nil, err
	}
	return p.(*components.HullShader), nil
}

func (ss *ShaderSystem) Domain(name string) (*components.DomainShader, error) {
	p, err := ss.Register(components.NewDomainShader(name))
	if err != nil {
		return nil, err
	}
	return p.(*components.DomainShader), nil
}

func (ss *ShaderSystem) Geometry(name string) (*components.GeometryShader, error) {
	p, err := ss.Register(components.NewGeometryShader(name))
	if err != nil {
		return nil, err
	}
	return p.(*components.GeometryShader), nil
}

func (ss *ShaderSystem) Pixel(name string) (*components.PixelShader, error) {
	p, err := ss.Register(components.NewPixelShader(name))
	if err != nil {
		return nil, err
	}
	return p.(*components.PixelShader), nil
}

// Names returns the registered shader names in sorted order.
func (ss *ShaderSystem) Names() []string {
	names := make([]string, 0, len(ss.Lookup))
	for name := range ss.Lookup {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

/**
 * @brief Loads every registered stage concurrently and waits for all of them.
 * The first failure cancels the loads still reading bytecode and is returned.
 */
func (ss *ShaderSystem) LoadAll(ctx context.Context, device renderer.Device) error {
	g, gctx := errgroup.WithContext(ctx)
	if ss.Config.MaxConcurrentLoads > 0 {
		g.SetLimit(ss.Config.MaxConcurrentLoads)
	}
	for _, name := range ss.Names() {
		program := ss.Lookup[name]
		if program.IsReady() {
			continue
		}
		g.Go(func() error {
			return program.Load(gctx, device, ss.loader)
		})
	}
	if err := g.Wait(); err != nil {
		core.LogError("shader loading failed: %v", err)
		return err
	}
	core.LogInfo("loaded %d shader stages", len(ss.Lookup))
	return nil
}

// Ready reports whether every registered stage finished loading.
func (ss *ShaderSystem) Ready() bool {
	for _, program := range ss.Lookup {
		if !program.IsReady() {
			return false
		}
	}
	return true
}

// Reset releases the GPU objects of every stage. The stages stay registered.
func (ss *ShaderSystem) Reset() {
	for _, program := range ss.Lookup {
		program.Reset()
	}
}

/**
 * @brief Shuts down the shader system, releasing and forgetting every stage.
 */
func (ss *ShaderSystem) Shutdown() error {
	ss.Reset()
	ss.Lookup = make(map[string]components.ShaderProgram, ss.Config.MaxShaderCount)
	return nil
}
