package systems

import (
	"fmt"

	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/components"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/spaghettifunk/prism/engine/renderer/views"
)

// Compiled shader files.
const (
	SHADER_RAY_VERTEX           = "RayVertexShader.cso"
	SHADER_RAY_TRACING_PIXEL    = "RayTracingPixelShader.cso"
	SHADER_RAY_MARCHING_PIXEL   = "RayMarchingPixelShader.cso"
	SHADER_PING_PONG_VERTEX     = "PingPongVertexShader.cso"
	SHADER_PING_PONG_PIXEL      = "PingPongPixelShader.cso"
	SHADER_COMPOSITE_PIXEL      = "CompositePixelShader.cso"
	SHADER_TESS_VERTEX          = "TessVertexShader.cso"
	SHADER_TESS_INTEGER_HULL    = "TessIntegerHullShader.cso"
	SHADER_TESS_FRACTIONAL_HULL = "TessFractionalHullShader.cso"
	SHADER_TESS_DOMAIN          = "TessDomainShader.cso"
	SHADER_TESS_PIXEL           = "TessPixelShader.cso"
	SHADER_SPLINE_VERTEX        = "SplineVertexShader.cso"
	SHADER_SPLINE_HULL          = "SplineHullShader.cso"
	SHADER_SPLINE_DOMAIN        = "SplineDomainShader.cso"
	SHADER_SPLINE_PIXEL         = "SplinePixelShader.cso"
	SHADER_BILLBOARD_VERTEX     = "BillboardVertexShader.cso"
	SHADER_SOLDIER_GEOMETRY     = "SoldierGeometryShader.cso"
	SHADER_FLAG_GEOMETRY        = "FlagGeometryShader.cso"
	SHADER_BILLBOARD_PIXEL      = "BillboardPixelShader.cso"
	SHADER_SCULPTURE_VERTEX     = "SculptureVertexShader.cso"
	SHADER_SCULPTURE_GEOMETRY   = "SculptureGeometryShader.cso"
	SHADER_POLE_GEOMETRY        = "PoleGeometryShader.cso"
	SHADER_SCULPTURE_PIXEL      = "SculpturePixelShader.cso"
)

// Mesh, curve and texture files.
const (
	MESH_ROCK      = "rock.sim"
	MESH_SCULPTURE = "Sculpture.sim"
	MESH_CYLINDER  = "Cylinder.sim"
	CURVE_VASE     = "vase.cur"

	TEXTURE_ROCK_COLOUR       = "rock_colour.dds"
	TEXTURE_ROCK_NORMAL       = "rock_normal.dds"
	TEXTURE_ROCK_DISPLACEMENT = "rock_displacement.dds"
	TEXTURE_SOLDIER           = "soldier.png"
	TEXTURE_FLAG              = "flag.png"
	TEXTURE_MARBLE            = "marble.bmp"
)

// Scene geometry names.
const (
	GEOMETRY_SCREEN_QUAD = "screen-quad"
	GEOMETRY_ROCK        = "rock"
	GEOMETRY_VASE        = "vase"
	GEOMETRY_SCULPTURE   = "sculpture"
	GEOMETRY_POLE        = "pole"
	GEOMETRY_SOLDIERS    = "soldiers"
	GEOMETRY_FLAGS       = "flags"
)

// SceneShaders lists every shader file the scene loads.
func SceneShaders() []string {
	return []string{
		SHADER_RAY_VERTEX, SHADER_RAY_TRACING_PIXEL, SHADER_RAY_MARCHING_PIXEL,
		SHADER_PING_PONG_VERTEX, SHADER_PING_PONG_PIXEL, SHADER_COMPOSITE_PIXEL,
		SHADER_TESS_VERTEX, SHADER_TESS_INTEGER_HULL, SHADER_TESS_FRACTIONAL_HULL, SHADER_TESS_DOMAIN, SHADER_TESS_PIXEL,
		SHADER_SPLINE_VERTEX, SHADER_SPLINE_HULL, SHADER_SPLINE_DOMAIN, SHADER_SPLINE_PIXEL,
		SHADER_BILLBOARD_VERTEX, SHADER_SOLDIER_GEOMETRY, SHADER_FLAG_GEOMETRY, SHADER_BILLBOARD_PIXEL,
		SHADER_SCULPTURE_VERTEX, SHADER_SCULPTURE_GEOMETRY, SHADER_POLE_GEOMETRY, SHADER_SCULPTURE_PIXEL,
	}
}

// SceneGeometry lists the file-backed models of the object pass.
func SceneGeometry() []GeometryRequest {
	return []GeometryRequest{
		{Name: GEOMETRY_ROCK, Asset: MESH_ROCK, Kind: GEOMETRY_KIND_TESSELLATED},
		{Name: GEOMETRY_VASE, Asset: CURVE_VASE, Kind: GEOMETRY_KIND_SPLINE},
		{Name: GEOMETRY_SCULPTURE, Asset: MESH_SCULPTURE, Kind: GEOMETRY_KIND_SCULPTURE},
		{Name: GEOMETRY_POLE, Asset: MESH_CYLINDER, Kind: GEOMETRY_KIND_SCULPTURE},
	}
}

func SceneTextures() []string {
	return []string{
		TEXTURE_ROCK_COLOUR, TEXTURE_ROCK_NORMAL, TEXTURE_ROCK_DISPLACEMENT,
		TEXTURE_SOLDIER, TEXTURE_FLAG, TEXTURE_MARBLE,
	}
}

// soldierPoints places one billboard per cell of a rows x cols grid on the ground plane.
func soldierPoints(rows, cols int) *components.PointModel {
	vertices := make([]metadata.VertexPositionColor, 0, rows*cols)
	indices := make([]uint32, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			x := float32(c) - float32(cols-1)/2
			z := float32(r) - float32(rows-1)/2
			vertices = append(vertices, metadata.VertexPositionColor{
				Position: math.NewVec3(x*0.6, -1, z*0.6-2),
				Colour:   math.NewVec3(float32(c)/float32(cols), 0, float32(r)/float32(rows)),
			})
			indices = append(indices, uint32(len(indices)))
		}
	}
	return components.NewPointModel(GEOMETRY_SOLDIERS, vertices, indices)
}

func flagPoints() *components.PointModel {
	vertices := []metadata.VertexPositionColor{
		{Position: math.NewVec3(-2.5, 1.5, -3), Colour: math.NewVec3(1, 0, 0)},
		{Position: math.NewVec3(2.5, 1.5, -3), Colour: math.NewVec3(0, 0, 1)},
	}
	return components.NewPointModel(GEOMETRY_FLAGS, vertices, []uint32{0, 1})
}

/**
 * @brief The stages of every effect, resolved from the shader system. Effects
 * that share a file share the stage object.
 */
type sceneEffects struct {
	rayVertex, pingPongVertex                    *components.VertexShader
	rayTracing, rayMarching, pingPong, composite *components.PixelShader
	tessVertex                                   *components.VertexShader
	tessIntegerHull, tessFractionalHull          *components.HullShader
	tessDomain                                   *components.DomainShader
	tessPixel                                    *components.PixelShader
	splineVertex                                 *components.VertexShader
	splineHull                                   *components.HullShader
	splineDomain                                 *components.DomainShader
	splinePixel                                  *components.PixelShader
	billboardVertex                              *components.VertexShader
	soldierGeometry, flagGeometry                *components.GeometryShader
	billboardPixel                               *components.PixelShader
	sculptureVertex                              *components.VertexShader
	sculptureGeometry, poleGeometry              *components.GeometryShader
	sculpturePixel                               *components.PixelShader
}

func registerEffects(ss *ShaderSystem) (*sceneEffects, error) {
	fx := &sceneEffects{}
	var err error
	vertex := func(dst **components.VertexShader, name string, layout []metadata.InputElement) {
		if err == nil {
			*dst, err = ss.Vertex(name, layout)
		}
	}
	hull := func(dst **components.HullShader, name string) {
		if err == nil {
			*dst, err = ss.Hull(name)
		}
	}
	domain := func(dst **components.DomainShader, name string) {
		if err == nil {
			*dst, err = ss.Domain(name)
		}
	}
	geometry := func(dst **components.GeometryShader, name string) {
		if err == nil {
			*dst, err = ss.Geometry(name)
		}
	}
	pixel := func(dst **components.PixelShader, name string) {
		if err == nil {
			*dst, err = ss.Pixel(name)
		}
	}

	vertex(&fx.rayVertex, SHADER_RAY_VERTEX, components.PositionColourLayout)
	vertex(&fx.pingPongVertex, SHADER_PING_PONG_VERTEX, components.PositionColourLayout)
	pixel(&fx.rayTracing, SHADER_RAY_TRACING_PIXEL)
	pixel(&fx.rayMarching, SHADER_RAY_MARCHING_PIXEL)
	pixel(&fx.pingPong, SHADER_PING_PONG_PIXEL)
	pixel(&fx.composite, SHADER_COMPOSITE_PIXEL)

	vertex(&fx.tessVertex, SHADER_TESS_VERTEX, components.TessellationLayout)
	hull(&fx.tessIntegerHull, SHADER_TESS_INTEGER_HULL)
	hull(&fx.tessFractionalHull, SHADER_TESS_FRACTIONAL_HULL)
	domain(&fx.tessDomain, SHADER_TESS_DOMAIN)
	pixel(&fx.tessPixel, SHADER_TESS_PIXEL)

	vertex(&fx.splineVertex, SHADER_SPLINE_VERTEX, components.SplineLayout)
	hull(&fx.splineHull, SHADER_SPLINE_HULL)
	domain(&fx.splineDomain, SHADER_SPLINE_DOMAIN)
	pixel(&fx.splinePixel, SHADER_SPLINE_PIXEL)

	vertex(&fx.billboardVertex, SHADER_BILLBOARD_VERTEX, components.PositionColourLayout)
	geometry(&fx.soldierGeometry, SHADER_SOLDIER_GEOMETRY)
	geometry(&fx.flagGeometry, SHADER_FLAG_GEOMETRY)
	pixel(&fx.billboardPixel, SHADER_BILLBOARD_PIXEL)

	vertex(&fx.sculptureVertex, SHADER_SCULPTURE_VERTEX, components.SculptureLayout)
	geometry(&fx.sculptureGeometry, SHADER_SCULPTURE_GEOMETRY)
	geometry(&fx.poleGeometry, SHADER_POLE_GEOMETRY)
	pixel(&fx.sculpturePixel, SHADER_SCULPTURE_PIXEL)

	return fx, err
}

// objectDraws returns the object pass in draw order. Depth testing is off in
// offscreen passes, so later draws cover earlier ones.
func (sr *SceneRenderer) objectDraws(fx *sceneEffects) ([]views.ObjectDraw, error) {
	gs, ts := sr.systems.geometrySystem, sr.systems.textureSystem
	model := func(name string) components.Drawable {
		m, err := gs.Get(name)
		if err != nil {
			return nil
		}
		return m
	}
	texture := func(name string) *components.Texture {
		t, err := ts.Get(name)
		if err != nil {
			return nil
		}
		return t
	}

	rockTextures := []views.TextureBinding{
		{Texture: texture(TEXTURE_ROCK_COLOUR), Stage: metadata.SHADER_STAGE_PIXEL, Slot: 0},
		{Texture: texture(TEXTURE_ROCK_NORMAL), Stage: metadata.SHADER_STAGE_PIXEL, Slot: 1},
		{Texture: texture(TEXTURE_ROCK_DISPLACEMENT), Stage: metadata.SHADER_STAGE_DOMAIN, Slot: 0},
	}
	left := math.TransformFromPosition(math.NewVec3(-1.5, 0, 0))
	right := math.TransformFromPositionYawScale(math.NewVec3(1.5, 0, 0), math.K_PI, math.NewVec3One())
	vase := math.TransformFromPositionYawScale(math.NewVec3(0, -1, -1), 0, math.NewVec3(0.5, 0.5, 0.5))
	sculpture := math.TransformFromPosition(math.NewVec3(0, -1, 1))
	pole := math.TransformFromPositionYawScale(math.NewVec3(2.5, -1, -3), 0, math.NewVec3(0.1, 2.5, 0.1))

	draws := []views.ObjectDraw{
		{
			Name: "rock-integer", Model: model(GEOMETRY_ROCK), World: left.Local(),
			Vertex: fx.tessVertex, Hull: fx.tessIntegerHull, Domain: fx.tessDomain, Pixel: fx.tessPixel,
			Textures: rockTextures, Raster: components.RASTER_MODE_CULL_BACK,
		},
		{
			Name: "rock-fractional", Model: model(GEOMETRY_ROCK), World: right.Local(),
			Vertex: fx.tessVertex, Hull: fx.tessFractionalHull, Domain: fx.tessDomain, Pixel: fx.tessPixel,
			Textures: rockTextures, Raster: components.RASTER_MODE_CULL_BACK,
		},
		{
			Name: "vase", Model: model(GEOMETRY_VASE), World: vase.Local(),
			Vertex: fx.splineVertex, Hull: fx.splineHull, Domain: fx.splineDomain, Pixel: fx.splinePixel,
			Raster: components.RASTER_MODE_CULL_BACK,
		},
		{
			Name: "soldiers", Model: model(GEOMETRY_SOLDIERS), World: math.NewMat4Identity(),
			Vertex: fx.billboardVertex, Geometry: fx.soldierGeometry, Pixel: fx.billboardPixel,
			Textures: []views.TextureBinding{{Texture: texture(TEXTURE_SOLDIER), Stage: metadata.SHADER_STAGE_PIXEL, Slot: 0}},
		},
		{
			Name: "flags", Model: model(GEOMETRY_FLAGS), World: math.NewMat4Identity(),
			Vertex: fx.billboardVertex, Geometry: fx.flagGeometry, Pixel: fx.billboardPixel,
			Textures: []views.TextureBinding{{Texture: texture(TEXTURE_FLAG), Stage: metadata.SHADER_STAGE_PIXEL, Slot: 0}},
		},
		{
			Name: "sculpture", Model: model(GEOMETRY_SCULPTURE), World: sculpture.Local(),
			Vertex: fx.sculptureVertex, Geometry: fx.sculptureGeometry, Pixel: fx.sculpturePixel,
			Textures: []views.TextureBinding{{Texture: texture(TEXTURE_MARBLE), Stage: metadata.SHADER_STAGE_PIXEL, Slot: 0}},
		},
		{
			Name: "pole", Model: model(GEOMETRY_POLE), World: pole.Local(),
			Vertex: fx.sculptureVertex, Geometry: fx.poleGeometry, Pixel: fx.sculpturePixel,
		},
	}
	for _, d := range draws {
		if d.Model == nil {
			return nil, fmt.Errorf("object %s has no geometry", d.Name)
		}
		for _, b := range d.Textures {
			if b.Texture == nil {
				return nil, fmt.Errorf("object %s is missing a texture", d.Name)
			}
		}
	}
	return draws, nil
}
