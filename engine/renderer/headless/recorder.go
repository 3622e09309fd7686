package headless

import (
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

type CommandKind int

const (
	CMD_CLEAR_RENDER_TARGET CommandKind = iota
	CMD_CLEAR_DEPTH_STENCIL
	CMD_SET_RENDER_TARGETS
	CMD_SET_DEPTH_STENCIL_STATE
	CMD_SET_RASTERIZER_STATE
	CMD_SET_SHADER
	CMD_SET_CONSTANT_BUFFERS
	CMD_SET_SHADER_RESOURCES
	CMD_SET_SAMPLERS
	CMD_SET_INPUT_LAYOUT
	CMD_SET_VERTEX_BUFFERS
	CMD_SET_INDEX_BUFFER
	CMD_SET_TOPOLOGY
	CMD_UPDATE_SUBRESOURCE
	CMD_DRAW_INDEXED
	CMD_BEGIN_EVENT
	CMD_END_EVENT
	CMD_PRESENT
)

/**
 * @brief One accepted context call. Handles holds the ids of the bound
 * objects in slot order, with "" where a slot was unbound.
 */
type Command struct {
	Kind       CommandKind
	Pass       string
	Stage      metadata.ShaderStage
	Slot       uint32
	Handles    []string
	Name       string
	Topology   metadata.PrimitiveTopology
	IndexCount uint32
	StartIndex uint32
	BaseVertex int32
}

// Unbinds reports whether every handle in the command is empty.
func (c Command) Unbinds() bool {
	for _, h := range c.Handles {
		if h != "" {
			return false
		}
	}
	return true
}

type PassStats struct {
	Name    string
	Draws   int
	Indices uint64
}

/**
 * @brief Everything recorded between two presents.
 */
type FrameRecord struct {
	Index     uint64
	Commands  []Command
	Passes    []PassStats
	Pipelines []metadata.PipelineSnapshot
	Draws     int
	Indices   uint64
}

// Filter returns the commands of the given kind, optionally restricted to a pass.
func (f *FrameRecord) Filter(kind CommandKind, pass string) []Command {
	var out []Command
	for _, c := range f.Commands {
		if c.Kind != kind {
			continue
		}
		if pass != "" && c.Pass != pass {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Pass returns the statistics of the named pass.
func (f *FrameRecord) Pass(name string) (PassStats, bool) {
	for _, p := range f.Passes {
		if p.Name == name {
			return p, true
		}
	}
	return PassStats{}, false
}

func (f *FrameRecord) passStats(name string) *PassStats {
	for i := range f.Passes {
		if f.Passes[i].Name == name {
			return &f.Passes[i]
		}
	}
	f.Passes = append(f.Passes, PassStats{Name: name})
	return &f.Passes[len(f.Passes)-1]
}

func (f *FrameRecord) addPipeline(p metadata.PipelineSnapshot) {
	key := p.Key()
	for _, existing := range f.Pipelines {
		if existing.Key() == key {
			return
		}
	}
	f.Pipelines = append(f.Pipelines, p)
}

// FrameStats is the summary kept in the history ring.
type FrameStats struct {
	Index   uint64
	Draws   int
	Indices uint64
	Passes  []PassStats
}
