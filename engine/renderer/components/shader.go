package components

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

/**
 * @brief Reads compiled shader bytecode by name.
 */
type BytecodeLoader interface {
	LoadBytecode(ctx context.Context, name string) ([]byte, error)
}

/**
 * @brief A compiled program bound to one pipeline stage. Load blocks until
 * the GPU object exists; Use fails with core.ErrShaderNotLoaded until then.
 */
type ShaderProgram interface {
	Name() string
	Stage() metadata.ShaderStage
	Load(ctx context.Context, device renderer.Device, loader BytecodeLoader) error
	IsReady() bool
	Use(c renderer.Context) error
	Release(c renderer.Context) error
	Reset()
}

// shaderProgram holds what every stage shares. The GPU object is written
// once by Load and published through ready.
type shaderProgram struct {
	name   string
	stage  metadata.ShaderStage
	mu     sync.Mutex
	shader metadata.Shader
	ready  atomic.Bool
}

func (sp *shaderProgram) Name() string {
	return sp.name
}

func (sp *shaderProgram) Stage() metadata.ShaderStage {
	return sp.stage
}

func (sp *shaderProgram) IsReady() bool {
	return sp.ready.Load()
}

func (sp *shaderProgram) readBytecode(ctx context.Context, loader BytecodeLoader) ([]byte, error) {
	bytecode, err := loader.LoadBytecode(ctx, sp.name)
	if err != nil {
		return nil, fmt.Errorf("%s shader %s: %w", sp.stage, sp.name, err)
	}
	return bytecode, nil
}

func (sp *shaderProgram) create(device renderer.Device, bytecode []byte) error {
	shader, err := device.CreateShader(sp.stage, sp.name, bytecode)
	if err != nil {
		return fmt.Errorf("%s shader %s: %w", sp.stage, sp.name, err)
	}
	sp.mu.Lock()
	sp.shader = shader
	sp.mu.Unlock()
	return nil
}

func (sp *shaderProgram) Load(ctx context.Context, device renderer.Device, loader BytecodeLoader) error {
	bytecode, err := sp.readBytecode(ctx, loader)
	if err != nil {
		return err
	}
	if err := sp.create(device, bytecode); err != nil {
		return err
	}
	sp.ready.Store(true)
	core.LogDebug("loaded %s shader %s", sp.stage, sp.name)
	return nil
}

func (sp *shaderProgram) notReady() error {
	err := fmt.Errorf("%w: %s shader %s", core.ErrShaderNotLoaded, sp.stage, sp.name)
	core.LogError("%v", err)
	return err
}

func (sp *shaderProgram) Use(c renderer.Context) error {
	if !sp.IsReady() {
		return sp.notReady()
	}
	return c.SetShader(sp.stage, sp.shader)
}

func (sp *shaderProgram) Release(c renderer.Context) error {
	return c.SetShader(sp.stage, nil)
}

func (sp *shaderProgram) Reset() {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	sp.ready.Store(false)
	if sp.shader != nil {
		sp.shader.Release()
		sp.shader = nil
	}
}

/**
 * @brief The vertex stage. It owns the input layout derived from its
 * bytecode and binds both together.
 */
type VertexShader struct {
	shaderProgram
	elements []metadata.InputElement
	layout   metadata.InputLayout
}

func NewVertexShader(name string, elements []metadata.InputElement) *VertexShader {
	return &VertexShader{
		shaderProgram: shaderProgram{name: name, stage: metadata.SHADER_STAGE_VERTEX},
		elements:      elements,
	}
}

func (vs *VertexShader) Elements() []metadata.InputElement {
	return vs.elements
}

func (vs *VertexShader) Load(ctx context.Context, device renderer.Device, loader BytecodeLoader) error {
	bytecode, err := vs.readBytecode(ctx, loader)
	if err != nil {
		return err
	}
	if err := vs.create(device, bytecode); err != nil {
		return err
	}
	layout, err := device.CreateInputLayout(vs.elements, bytecode)
	if err != nil {
		return fmt.Errorf("input layout of %s: %w", vs.name, err)
	}
	vs.mu.Lock()
	vs.layout = layout
	vs.mu.Unlock()
	vs.ready.Store(true)
	core.LogDebug("loaded vertex shader %s with %d input elements", vs.name, len(vs.elements))
	return nil
}

func (vs *VertexShader) Use(c renderer.Context) error {
	if !vs.IsReady() {
		return vs.notReady()
	}
	if err := c.IASetInputLayout(vs.layout); err != nil {
		return err
	}
	return c.SetShader(vs.stage, vs.shader)
}

func (vs *VertexShader) Release(c renderer.Context) error {
	if err := c.IASetInputLayout(nil); err != nil {
		return err
	}
	return c.SetShader(vs.stage, nil)
}

func (vs *VertexShader) Reset() {
	vs.shaderProgram.Reset()
	vs.mu.Lock()
	defer vs.mu.Unlock()
	if vs.layout != nil {
		vs.layout.Release()
		vs.layout = nil
	}
}

type HullShader struct {
	shaderProgram
}

func NewHullShader(name string) *HullShader {
	return &HullShader{shaderProgram{name: name, stage: metadata.SHADER_STAGE_HULL}}
}

type DomainShader struct {
	shaderProgram
}

func NewDomainShader(name string) *DomainShader {
	return &DomainShader{shaderProgram{name: name, stage: metadata.SHADER_STAGE_DOMAIN}}
}

type GeometryShader struct {
	shaderProgram
}

func NewGeometryShader(name string) *GeometryShader {
	return &GeometryShader{shaderProgram{name: name, stage: metadata.SHADER_STAGE_GEOMETRY}}
}

type PixelShader struct {
	shaderProgram
}

func NewPixelShader(name string) *PixelShader {
	return &PixelShader{shaderProgram{name: name, stage: metadata.SHADER_STAGE_PIXEL}}
}

/** @brief Input layouts of the vertex shaders used by the scene. */
var (
	// position and colour streams of Model and PointModel
	PositionColourLayout = []metadata.InputElement{
		{SemanticName: "POSITION", Format: metadata.FORMAT_R32G32B32_FLOAT, InputSlot: 0},
		{SemanticName: "COLOR", Format: metadata.FORMAT_R32G32B32_FLOAT, InputSlot: 1},
	}
	TessellationLayout = []metadata.InputElement{
		{SemanticName: "POSITION", Format: metadata.FORMAT_R32G32B32_FLOAT, InputSlot: 0},
		{SemanticName: "NORMAL", Format: metadata.FORMAT_R32G32B32_FLOAT, InputSlot: 1},
		{SemanticName: "TEXCOORD", Format: metadata.FORMAT_R32G32_FLOAT, InputSlot: 2},
		{SemanticName: "TANGENT", Format: metadata.FORMAT_R32G32B32_FLOAT, InputSlot: 3},
		{SemanticName: "BINORMAL", Format: metadata.FORMAT_R32G32B32_FLOAT, InputSlot: 4},
	}
	SculptureLayout = []metadata.InputElement{
		{SemanticName: "POSITION", Format: metadata.FORMAT_R32G32B32_FLOAT, InputSlot: 0},
		{SemanticName: "NORMAL", Format: metadata.FORMAT_R32G32B32_FLOAT, InputSlot: 1},
		{SemanticName: "TEXCOORD", Format: metadata.FORMAT_R32G32_FLOAT, InputSlot: 2},
	}
	SplineLayout = []metadata.InputElement{
		{SemanticName: "POSITION", Format: metadata.FORMAT_R32G32B32_FLOAT, InputSlot: 0},
		{SemanticName: "BINORMAL", Format: metadata.FORMAT_R32G32B32_FLOAT, InputSlot: 1},
	}
)
