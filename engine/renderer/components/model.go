package components

import (
	"encoding/binary"
	"fmt"
	gomath "math"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

/**
 * @brief Geometry that can upload itself and issue a single indexed draw of
 * all of its indices.
 */
type Drawable interface {
	Name() string
	Load(device renderer.Device) error
	Draw(ctx renderer.Context) error
	IndexCount() uint32
	VertexCount() uint32
	Topology() metadata.PrimitiveTopology
	Reset()
}

// vertexStream is one attribute of every vertex, uploaded to its own buffer.
type vertexStream struct {
	format metadata.Format
	data   []float32
}

/**
 * @brief geometry owns one immutable vertex buffer per attribute stream and
 * one index buffer. Streams bind at consecutive slots starting at 0.
 */
type geometry struct {
	name     string
	topology metadata.PrimitiveTopology
	streams  []vertexStream
	indices  []uint32
	vertices uint32

	buffers     []metadata.Buffer
	strides     []uint32
	offsets     []uint32
	indexBuffer metadata.Buffer
}

func newGeometry(name string, topology metadata.PrimitiveTopology, vertexCount int, indices []uint32, streams ...vertexStream) geometry {
	return geometry{
		name:     name,
		topology: topology,
		streams:  streams,
		indices:  append([]uint32(nil), indices...),
		vertices: uint32(vertexCount),
	}
}

func (g *geometry) Name() string {
	return g.name
}

func (g *geometry) IndexCount() uint32 {
	return uint32(len(g.indices))
}

func (g *geometry) VertexCount() uint32 {
	return g.vertices
}

func (g *geometry) Topology() metadata.PrimitiveTopology {
	return g.topology
}

func (g *geometry) Indices() []uint32 {
	return g.indices
}

func floatBytes(values []float32) []byte {
	out := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(out[i*4:], gomath.Float32bits(v))
	}
	return out
}

func uintBytes(values []uint32) []byte {
	out := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(out[i*4:], v)
	}
	return out
}

func (g *geometry) validate() error {
	for i, s := range g.streams {
		components := s.format.Size() / 4
		if uint32(len(s.data)) != components*g.vertices {
			return fmt.Errorf("%w: %s stream %d holds %d floats for %d vertices", core.ErrLayoutMismatch, g.name, i, len(s.data), g.vertices)
		}
	}
	for _, idx := range g.indices {
		if idx >= g.vertices {
			return fmt.Errorf("%w: %s index %d with %d vertices", core.ErrIndexOutOfRange, g.name, idx, g.vertices)
		}
	}
	if per := g.topology.IndicesPerPrimitive(); per > 0 && uint32(len(g.indices))%per != 0 {
		return fmt.Errorf("%w: %s has %d indices for %s", core.ErrIndexOutOfRange, g.name, len(g.indices), g.topology)
	}
	return nil
}

/**
 * @brief Uploads every stream and the indices. Geometry without vertices or
 * indices loads without creating buffers and draws nothing.
 */
func (g *geometry) Load(device renderer.Device) error {
	if err := g.validate(); err != nil {
		core.LogError("%v", err)
		return err
	}
	g.Reset()
	if g.vertices == 0 || len(g.indices) == 0 {
		core.LogWarn("%s has %d vertices and %d indices, nothing to upload", g.name, g.vertices, len(g.indices))
		return nil
	}
	for i, s := range g.streams {
		stride := s.format.Size()
		buffer, err := device.CreateBuffer(metadata.BufferDesc{
			ByteWidth:           stride * g.vertices,
			Usage:               metadata.USAGE_IMMUTABLE,
			BindFlags:           metadata.BIND_VERTEX_BUFFER,
			StructureByteStride: stride,
		}, floatBytes(s.data))
		if err != nil {
			g.Reset()
			return fmt.Errorf("%s stream %d: %w", g.name, i, err)
		}
		g.buffers = append(g.buffers, buffer)
		g.strides = append(g.strides, stride)
		g.offsets = append(g.offsets, 0)
	}
	indexBuffer, err := device.CreateBuffer(metadata.BufferDesc{
		ByteWidth:           4 * uint32(len(g.indices)),
		Usage:               metadata.USAGE_IMMUTABLE,
		BindFlags:           metadata.BIND_INDEX_BUFFER,
		StructureByteStride: 4,
	}, uintBytes(g.indices))
	if err != nil {
		g.Reset()
		return fmt.Errorf("%s indices: %w", g.name, err)
	}
	g.indexBuffer = indexBuffer
	return nil
}

func (g *geometry) Draw(ctx renderer.Context) error {
	if len(g.indices) == 0 || g.vertices == 0 {
		return nil
	}
	if g.indexBuffer == nil {
		err := fmt.Errorf("%w: %s drawn before load", core.ErrNotReady, g.name)
		core.LogError("%v", err)
		return err
	}
	if err := ctx.IASetVertexBuffers(0, g.buffers, g.strides, g.offsets); err != nil {
		return err
	}
	if err := ctx.IASetIndexBuffer(g.indexBuffer, metadata.FORMAT_R32_UINT, 0); err != nil {
		return err
	}
	if err := ctx.IASetPrimitiveTopology(g.topology); err != nil {
		return err
	}
	return ctx.DrawIndexed(g.IndexCount(), 0, 0)
}

func (g *geometry) Reset() {
	for _, b := range g.buffers {
		b.Release()
	}
	if g.indexBuffer != nil {
		g.indexBuffer.Release()
	}
	g.buffers, g.strides, g.offsets, g.indexBuffer = nil, nil, nil, nil
}

func splitVertexColours(vertices []metadata.VertexPositionColor) (positions, colours []float32) {
	for _, v := range vertices {
		positions = append(positions, v.Position.X, v.Position.Y, v.Position.Z)
		colours = append(colours, v.Colour.X, v.Colour.Y, v.Colour.Z)
	}
	return positions, colours
}

/** @brief A coloured triangle list, used for the full-screen quad. */
type Model struct {
	geometry
}

func NewModel(name string, vertices []metadata.VertexPositionColor, indices []uint32) *Model {
	positions, colours := splitVertexColours(vertices)
	return &Model{newGeometry(name, metadata.TOPOLOGY_TRIANGLE_LIST, len(vertices), indices,
		vertexStream{metadata.FORMAT_R32G32B32_FLOAT, positions},
		vertexStream{metadata.FORMAT_R32G32B32_FLOAT, colours},
	)}
}

/** @brief Coloured points expanded into billboards by a geometry shader. */
type PointModel struct {
	geometry
}

func NewPointModel(name string, vertices []metadata.VertexPositionColor, indices []uint32) *PointModel {
	positions, colours := splitVertexColours(vertices)
	return &PointModel{newGeometry(name, metadata.TOPOLOGY_POINT_LIST, len(vertices), indices,
		vertexStream{metadata.FORMAT_R32G32B32_FLOAT, positions},
		vertexStream{metadata.FORMAT_R32G32B32_FLOAT, colours},
	)}
}

// column layout of a text mesh row
const (
	meshPosition  = 0
	meshTexCoord  = 3
	meshNormal    = 5
	meshTangent   = 8
	meshBitangent = 11

	SCULPTURE_MESH_COLUMNS = 8
	TESS_MESH_COLUMNS      = 14
	CURVE_COLUMNS          = 6
)

func columns(rows [][]float32, from, count int) []float32 {
	out := make([]float32, 0, len(rows)*count)
	for _, row := range rows {
		out = append(out, row[from:from+count]...)
	}
	return out
}

func checkColumns(name string, rows [][]float32, want int) error {
	for i, row := range rows {
		if len(row) != want {
			return fmt.Errorf("%w: %s row %d has %d columns, want %d", core.ErrMalformedAsset, name, i, len(row), want)
		}
	}
	return nil
}

/**
 * @brief A displacement-mapped mesh drawn as three-point patches. Streams are
 * position, normal, texcoord, tangent and bitangent.
 */
type TessModel struct {
	geometry
}

func NewTessModel(mesh *metadata.MeshData) (*TessModel, error) {
	if err := checkColumns(mesh.Name, mesh.Rows, TESS_MESH_COLUMNS); err != nil {
		return nil, err
	}
	return &TessModel{newGeometry(mesh.Name, metadata.TOPOLOGY_3_CONTROL_POINT_PATCH_LIST, mesh.VertexCount(), mesh.Indices,
		vertexStream{metadata.FORMAT_R32G32B32_FLOAT, columns(mesh.Rows, meshPosition, 3)},
		vertexStream{metadata.FORMAT_R32G32B32_FLOAT, columns(mesh.Rows, meshNormal, 3)},
		vertexStream{metadata.FORMAT_R32G32_FLOAT, columns(mesh.Rows, meshTexCoord, 2)},
		vertexStream{metadata.FORMAT_R32G32B32_FLOAT, columns(mesh.Rows, meshTangent, 3)},
		vertexStream{metadata.FORMAT_R32G32B32_FLOAT, columns(mesh.Rows, meshBitangent, 3)},
	)}, nil
}

/** @brief A textured triangle mesh with position, normal and texcoord streams. */
type SculptureModel struct {
	geometry
}

func NewSculptureModel(mesh *metadata.MeshData) (*SculptureModel, error) {
	if err := checkColumns(mesh.Name, mesh.Rows, SCULPTURE_MESH_COLUMNS); err != nil {
		return nil, err
	}
	return &SculptureModel{newGeometry(mesh.Name, metadata.TOPOLOGY_TRIANGLE_LIST, mesh.VertexCount(), mesh.Indices,
		vertexStream{metadata.FORMAT_R32G32B32_FLOAT, columns(mesh.Rows, meshPosition, 3)},
		vertexStream{metadata.FORMAT_R32G32B32_FLOAT, columns(mesh.Rows, meshNormal, 3)},
		vertexStream{metadata.FORMAT_R32G32_FLOAT, columns(mesh.Rows, meshTexCoord, 2)},
	)}, nil
}

/**
 * @brief A surface of revolution drawn as four-point patches. Every control
 * point is its own index.
 */
type SplineModel struct {
	geometry
}

func NewSplineModel(curve *metadata.CurveData) (*SplineModel, error) {
	if err := checkColumns(curve.Name, curve.Rows, CURVE_COLUMNS); err != nil {
		return nil, err
	}
	if len(curve.Rows) != curve.PatchCount*4 {
		return nil, fmt.Errorf("%w: %s has %d control points for %d patches", core.ErrMalformedAsset, curve.Name, len(curve.Rows), curve.PatchCount)
	}
	indices := make([]uint32, len(curve.Rows))
	for i := range indices {
		indices[i] = uint32(i)
	}
	return &SplineModel{newGeometry(curve.Name, metadata.TOPOLOGY_4_CONTROL_POINT_PATCH_LIST, len(curve.Rows), indices,
		vertexStream{metadata.FORMAT_R32G32B32_FLOAT, columns(curve.Rows, 0, 3)},
		vertexStream{metadata.FORMAT_R32G32B32_FLOAT, columns(curve.Rows, 3, 3)},
	)}, nil
}

// ScreenQuad is the two-triangle quad covering clip space used by the ray and composite passes.
func ScreenQuad() *Model {
	vertices := []metadata.VertexPositionColor{
		{Position: math.NewVec3(-1, -1, 0), Colour: math.NewVec3(0, 0, 0)},
		{Position: math.NewVec3(-1, 1, 0), Colour: math.NewVec3(0, 1, 0)},
		{Position: math.NewVec3(1, -1, 0), Colour: math.NewVec3(1, 0, 0)},
		{Position: math.NewVec3(1, 1, 0), Colour: math.NewVec3(1, 1, 0)},
	}
	return NewModel("screen-quad", vertices, []uint32{0, 1, 2, 1, 3, 2})
}
