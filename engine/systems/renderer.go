package systems

import (
	"context"
	"errors"
	"fmt"
	gomath "math"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/components"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/spaghettifunk/prism/engine/renderer/views"
)

type RendererStage uint8

const (
	// No device resources exist
	RendererStageUninitialized RendererStage = iota
	// Device resources are being created and shaders loaded
	RendererStageLoading
	// Every resource is loaded; frames can be rendered
	RendererStageReady
	// Per-frame state is being advanced
	RendererStageUpdating
	// The passes of a frame are being recorded
	RendererStageRendering
	// Device resources are being released
	RendererStageReleasingResources
)

func (s RendererStage) String() string {
	switch s {
	case RendererStageUninitialized:
		return "uninitialized"
	case RendererStageLoading:
		return "loading"
	case RendererStageReady:
		return "ready"
	case RendererStageUpdating:
		return "updating"
	case RendererStageRendering:
		return "rendering"
	case RendererStageReleasingResources:
		return "releasing"
	}
	return "unknown"
}

/**
 * @brief Everything the scene renderer reads that may change between frames.
 * It is passed in explicitly and replaced as a whole with SetSettings.
 */
type RenderSettings struct {
	TessellationFactor float32
	HeightScale        float32
	Wireframe          bool
	/** @brief Vertical field of view in degrees, doubled in portrait outputs. */
	FovDegrees       float32
	NearPlane        float32
	FarPlane         float32
	DegreesPerSecond float32
	ClearColour      [4]float32

	CameraEye           math.Vec3
	CameraTarget        math.Vec3
	CameraUp            math.Vec3
	CameraAngleSpeed    float32
	CameraMovementSpeed float32

	Light metadata.LightConstants
	Ray   metadata.RayConstants
}

func DefaultRenderSettings() RenderSettings {
	return RenderSettings{
		TessellationFactor:  8,
		HeightScale:         0.1,
		FovDegrees:          70,
		NearPlane:           0.01,
		FarPlane:            100,
		DegreesPerSecond:    45,
		ClearColour:         [4]float32{0, 0, 0, 1},
		CameraEye:           math.NewVec3(0, 0, 5),
		CameraTarget:        math.NewVec3Zero(),
		CameraUp:            math.NewVec3Up(),
		CameraAngleSpeed:    components.DEFAULT_CAMERA_ANGLE_SPEED,
		CameraMovementSpeed: components.DEFAULT_CAMERA_MOVEMENT_SPEED,
		Light: metadata.LightConstants{
			Position: math.NewVec4(0, 3, 3, 1),
			Colour:   math.NewVec4(1, 1, 1, 1),
			Ambient:  math.NewVec4(0.2, 0.2, 0.2, 1),
		},
		Ray: metadata.RayConstants{
			LightPosition:     math.NewVec4(2, 5, 5, 1),
			MaxSteps:          128,
			HitEpsilon:        0.001,
			MaxDistance:       100,
			ReflectionBounces: 3,
		},
	}
}

/**
 * @brief Owns every resource of the demo and records one frame per Render:
 * ray tracing into A, ray marching into B, the objects into C, A and B
 * blended into D, then D and C blended into the back buffer.
 */
type SceneRenderer struct {
	resources renderer.DeviceResources
	assets    AssetProvider
	settings  RenderSettings
	stage     RendererStage
	systems   *SystemManager

	constants    *views.Constants
	cameraData   metadata.CameraConstants
	frameData    metadata.FrameConstants
	camera       *components.Camera
	tracking     bool
	rasterizer   *components.RasterizerStates
	sampler      *components.Sampler
	rayTraced    *components.Framebuffer
	rayMarched   *components.Framebuffer
	objects      *components.Framebuffer
	rays         *components.Framebuffer
	objectsView  *views.ObjectsView
	frameCounter uint64
}

func NewSceneRenderer(resources renderer.DeviceResources, assets AssetProvider, settings RenderSettings) (*SceneRenderer, error) {
	sm, err := NewSystemManager(assets)
	if err != nil {
		return nil, err
	}
	return &SceneRenderer{
		resources:  resources,
		assets:     assets,
		settings:   settings,
		stage:      RendererStageUninitialized,
		systems:    sm,
		constants:  views.NewConstants(),
		rasterizer: components.NewRasterizerStates(),
		sampler:    components.NewSampler(metadata.LinearWrapSampler()),
		rayTraced:  components.NewFramebuffer("ray-traced"),
		rayMarched: components.NewFramebuffer("ray-marched"),
		objects:    components.NewFramebuffer("objects"),
		rays:       components.NewFramebuffer("rays"),
	}, nil
}

func (sr *SceneRenderer) Stage() RendererStage {
	return sr.stage
}

func (sr *SceneRenderer) Settings() RenderSettings {
	return sr.settings
}

/**
 * @brief Replaces the settings. Camera speeds apply to the current camera;
 * field of view and clip planes apply on the next CreateSizeDependentResources.
 */
func (sr *SceneRenderer) SetSettings(settings RenderSettings) {
	sr.settings = settings
	if sr.camera != nil {
		sr.camera.AngleSpeed = settings.CameraAngleSpeed
		sr.camera.MovementSpeed = settings.CameraMovementSpeed
	}
	if sr.objectsView != nil {
		sr.objectsView.Wireframe = settings.Wireframe
	}
}

// ToggleWireframe flips the wireframe override of the object pass.
func (sr *SceneRenderer) ToggleWireframe() {
	settings := sr.settings
	settings.Wireframe = !settings.Wireframe
	sr.SetSettings(settings)
	core.LogInfo("wireframe %v", settings.Wireframe)
}

// Camera returns the current camera, or nil before CreateSizeDependentResources.
func (sr *SceneRenderer) Camera() *components.Camera {
	return sr.camera
}

// CameraConstants returns the camera record uploaded on the next Render.
func (sr *SceneRenderer) CameraConstants() metadata.CameraConstants {
	return sr.cameraData
}

// Views returns the pass names in render order.
func (sr *SceneRenderer) Views() []string {
	return sr.systems.renderViewSystem.Names()
}

func (sr *SceneRenderer) framebuffers() []*components.Framebuffer {
	return []*components.Framebuffer{sr.rayTraced, sr.rayMarched, sr.objects, sr.rays}
}

func (sr *SceneRenderer) loadFramebuffers() error {
	width, height := sr.resources.OutputSize()
	device := sr.resources.Device()
	for _, fb := range sr.framebuffers() {
		if !fb.Load(device, width, height) {
			return fmt.Errorf("%w: framebuffer %s (%dx%d)", core.ErrResourceCreation, fb.Name, width, height)
		}
	}
	return nil
}

/**
 * @brief Creates every device resource. Shader stages load concurrently and
 * the call blocks until all of them are ready, so the renderer only becomes
 * Ready once nothing is left loading. On failure everything created so far is
 * released and the renderer returns to Uninitialized.
 */
func (sr *SceneRenderer) CreateDeviceResources(ctx context.Context) error {
	if sr.stage != RendererStageUninitialized {
		err := fmt.Errorf("%w: create device resources while %s", core.ErrInvalidState, sr.stage)
		core.LogError("%v", err)
		return err
	}
	sr.stage = RendererStageLoading

	if err := sr.createDeviceResources(ctx); err != nil {
		core.LogError("failed to create device resources: %v", err)
		sr.releaseAll()
		sr.stage = RendererStageUninitialized
		return err
	}
	sr.stage = RendererStageReady
	core.LogInfo("scene renderer ready: %d shader stages, %d models, %d textures",
		len(sr.systems.shaderSystem.Lookup), len(sr.systems.geometrySystem.Lookup), len(sr.systems.textureSystem.Lookup))
	return nil
}

func (sr *SceneRenderer) createDeviceResources(ctx context.Context) error {
	device := sr.resources.Device()

	fx, err := registerEffects(sr.systems.shaderSystem)
	if err != nil {
		return err
	}
	if err := sr.systems.shaderSystem.LoadAll(ctx, device); err != nil {
		return err
	}
	if err := sr.constants.Load(device); err != nil {
		return err
	}
	if err := sr.rasterizer.Load(device); err != nil {
		return err
	}
	if err := sr.sampler.Load(device); err != nil {
		return err
	}
	if err := sr.loadFramebuffers(); err != nil {
		return err
	}

	gs := sr.systems.geometrySystem
	quad := components.ScreenQuad()
	for _, model := range []components.Drawable{quad, soldierPoints(4, 6), flagPoints()} {
		if err := gs.Add(device, model); err != nil {
			return err
		}
	}
	if err := gs.Load(device, SceneGeometry()...); err != nil {
		return err
	}
	if err := sr.systems.textureSystem.Load(device, SceneTextures()...); err != nil {
		return err
	}

	return sr.createViews(fx, quad)
}

func (sr *SceneRenderer) createViews(fx *sceneEffects, quad *components.Model) error {
	draws, err := sr.objectDraws(fx)
	if err != nil {
		return err
	}
	sr.objectsView = views.NewObjectsView(sr.objects, sr.rasterizer, sr.sampler, sr.constants)
	sr.objectsView.Wireframe = sr.settings.Wireframe
	for _, d := range draws {
		sr.objectsView.Add(d)
	}

	backBuffer := func() (metadata.View, metadata.View) {
		return sr.resources.BackBufferTarget(), sr.resources.DepthStencilTarget()
	}
	rvs := sr.systems.renderViewSystem
	for _, view := range []views.RenderView{
		views.NewRayTraceView(sr.rayTraced, quad, fx.rayVertex, fx.rayTracing, sr.constants),
		views.NewRayMarchView(sr.rayMarched, quad, fx.rayVertex, fx.rayMarching, sr.constants),
		sr.objectsView,
		views.NewRayCompositeView(sr.rays, sr.rayTraced, sr.rayMarched, quad, fx.pingPongVertex, fx.pingPong, sr.sampler, sr.constants),
		views.NewFinalCompositeView(backBuffer, sr.settings.ClearColour, sr.rays, sr.objects, quad, fx.pingPongVertex, fx.composite, sr.sampler, sr.constants),
	} {
		if err := rvs.Create(view); err != nil {
			core.LogError("%v", err)
			return err
		}
	}
	return nil
}

/**
 * @brief Recomputes the projection for the current output size and places a
 * fresh camera at the configured eye. Framebuffers that are already loaded
 * are recreated at the new size.
 */
func (sr *SceneRenderer) CreateSizeDependentResources() error {
	width, height := sr.resources.OutputSize()
	if width == 0 || height == 0 {
		err := fmt.Errorf("%w: output size %dx%d", core.ErrInvalidState, width, height)
		core.LogError("%v", err)
		return err
	}
	aspectRatio := float32(width) / float32(height)
	fovAngleY := math.DegToRad(sr.settings.FovDegrees)
	if aspectRatio < 1.0 {
		fovAngleY *= 2.0
	}

	perspective := math.NewMat4PerspectiveFovRH(fovAngleY, aspectRatio, sr.settings.NearPlane, sr.settings.FarPlane)
	sr.cameraData.Projection = perspective.Mul(sr.resources.OrientationTransform()).Transposed()

	sr.camera = components.NewCamera(sr.settings.CameraEye, sr.settings.CameraUp, sr.settings.CameraTarget)
	sr.camera.AngleSpeed = sr.settings.CameraAngleSpeed
	sr.camera.MovementSpeed = sr.settings.CameraMovementSpeed
	sr.cameraData.View = sr.camera.GetView().Transposed()
	sr.cameraData.EyePosition = sr.settings.CameraEye.ToVec4(1)
	sr.rotate(0)

	if sr.stage == RendererStageReady && sr.rayTraced.State() != components.FRAMEBUFFER_STATE_UNLOADED {
		return sr.loadFramebuffers()
	}
	return nil
}

// rotate stores the model matrix, a rotation about +Y.
func (sr *SceneRenderer) rotate(radians float32) {
	sr.cameraData.Model = math.NewMat4RotationY(radians).Transposed()
}

/**
 * @brief Advances per-frame state. While the pointer is not tracking, the
 * model turns at the configured rate and the camera applies its intents.
 */
func (sr *SceneRenderer) Update(timer core.Timer) error {
	ready := sr.stage == RendererStageReady
	if ready {
		sr.stage = RendererStageUpdating
		defer func() { sr.stage = RendererStageReady }()
	}

	if !sr.tracking && sr.camera != nil {
		radiansPerSecond := float64(math.DegToRad(sr.settings.DegreesPerSecond))
		totalRotation := timer.TotalSeconds() * radiansPerSecond
		radians := float32(gomath.Mod(totalRotation, 2*gomath.Pi))

		sr.camera.Update(timer, &sr.cameraData)
		sr.rotate(radians)
	}

	width, height := sr.resources.OutputSize()
	sr.frameData = metadata.FrameConstants{
		TotalSeconds:   float32(timer.TotalSeconds()),
		ElapsedSeconds: float32(timer.ElapsedSeconds()),
		Width:          float32(width),
		Height:         float32(height),
	}
	return nil
}

func (sr *SceneRenderer) StartTracking() {
	sr.tracking = true
}

// TrackingUpdate turns the model two full turns per screen width of pointer travel.
func (sr *SceneRenderer) TrackingUpdate(positionX float32) {
	if !sr.tracking {
		return
	}
	width, _ := sr.resources.OutputSize()
	if width == 0 {
		return
	}
	radians := math.K_PI_2 * 2.0 * positionX / float32(width)
	sr.rotate(radians)
}

func (sr *SceneRenderer) StopTracking() {
	sr.tracking = false
}

func (sr *SceneRenderer) IsTracking() bool {
	return sr.tracking
}

func (sr *SceneRenderer) uploadConstants(ctx renderer.Context) error {
	tessellation := metadata.TessellationConstants{
		Factor:      sr.settings.TessellationFactor,
		HeightScale: sr.settings.HeightScale,
	}
	light := sr.settings.Light
	ray := sr.settings.Ray
	return errors.Join(
		sr.constants.Camera.Update(ctx, &sr.cameraData),
		sr.constants.Frame.Update(ctx, &sr.frameData),
		sr.constants.Light.Update(ctx, &light),
		sr.constants.Tessellation.Update(ctx, &tessellation),
		sr.constants.Ray.Update(ctx, &ray),
	)
}

/**
 * @brief Records one frame. Does nothing until the renderer is Ready. The
 * back buffer is left bound so the caller can present it.
 */
func (sr *SceneRenderer) Render() error {
	if sr.stage != RendererStageReady {
		return nil
	}
	sr.stage = RendererStageRendering
	defer func() { sr.stage = RendererStageReady }()

	ctx := sr.resources.Context()
	if err := sr.uploadConstants(ctx); err != nil {
		return err
	}
	if err := sr.systems.renderViewSystem.Render(ctx); err != nil {
		return err
	}
	sr.frameCounter++
	return nil
}

// FrameCount returns the number of frames rendered since the resources were created.
func (sr *SceneRenderer) FrameCount() uint64 {
	return sr.frameCounter
}

func (sr *SceneRenderer) releaseAll() {
	if err := sr.systems.ReleaseResources(); err != nil {
		core.LogWarn("releasing systems: %v", err)
	}
	for _, fb := range sr.framebuffers() {
		fb.Reset()
	}
	sr.constants.Reset()
	sr.rasterizer.Reset()
	sr.sampler.Reset()
	sr.objectsView = nil
	sr.frameCounter = 0
}

/**
 * @brief Releases every device resource. The renderer can be created again
 * with CreateDeviceResources afterwards.
 */
func (sr *SceneRenderer) ReleaseDeviceResources() {
	if sr.stage == RendererStageUninitialized {
		return
	}
	sr.stage = RendererStageReleasingResources
	sr.releaseAll()
	sr.stage = RendererStageUninitialized
	core.LogInfo("scene renderer released its device resources")
}

// Shutdown releases the device resources and stops the worker pool.
func (sr *SceneRenderer) Shutdown() error {
	sr.ReleaseDeviceResources()
	return sr.systems.Shutdown()
}
