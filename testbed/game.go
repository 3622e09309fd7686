package testbed

import (
	"context"
	"fmt"

	"github.com/spaghettifunk/prism/engine"
	"github.com/spaghettifunk/prism/engine/config"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/systems"
)

// The key that toggles the wireframe override of the object pass.
const WIREFRAME_KEY = core.KEY_F1

type TestGame struct {
	*engine.Game
}

type gameState struct {
	engine       *engine.Engine
	scene        *systems.SceneRenderer
	cameraSystem *systems.CameraSystem

	width  uint32
	height uint32
}

func NewTestGame(cfg *config.Config, configPath string) *TestGame {
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: engine.NewApplicationConfig(cfg, configPath),
			State:             &gameState{},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnOnResize = tg.OnResize
	tg.FnOnConfigChanged = tg.OnConfigChanged
	tg.FnShutdown = tg.Shutdown

	return tg
}

// SettingsFromConfig maps the configuration file onto the renderer settings.
func SettingsFromConfig(cfg *config.Config) systems.RenderSettings {
	settings := systems.DefaultRenderSettings()

	r := cfg.Render
	settings.TessellationFactor = r.TessellationFactor
	settings.HeightScale = r.HeightScale
	settings.Wireframe = r.Wireframe
	settings.FovDegrees = r.FovDegrees
	settings.NearPlane = r.NearPlane
	settings.FarPlane = r.FarPlane
	settings.DegreesPerSecond = r.DegreesPerSecond
	settings.ClearColour = r.ClearColor

	c := cfg.Camera
	settings.CameraEye = vec3(c.Eye)
	settings.CameraTarget = vec3(c.Target)
	settings.CameraUp = vec3(c.Up)
	settings.CameraAngleSpeed = c.AngleSpeed
	settings.CameraMovementSpeed = c.MovementSpeed

	settings.Light.Position = vec4(cfg.Light.Position)
	settings.Light.Colour = vec4(cfg.Light.Color)
	settings.Light.Ambient = vec4(cfg.Light.Ambient)

	// The shaders read every ray parameter as a float.
	settings.Ray.LightPosition = vec4(cfg.Ray.LightPosition)
	settings.Ray.MaxSteps = float32(cfg.Ray.MaxSteps)
	settings.Ray.HitEpsilon = cfg.Ray.HitEpsilon
	settings.Ray.MaxDistance = cfg.Ray.MaxDistance
	settings.Ray.ReflectionBounces = float32(cfg.Ray.ReflectionBounces)

	return settings
}

func vec3(v [3]float32) math.Vec3 {
	return math.NewVec3(v[0], v[1], v[2])
}

func vec4(v [4]float32) math.Vec4 {
	return math.NewVec4(v[0], v[1], v[2], v[3])
}

func (g *TestGame) state() *gameState {
	return g.State.(*gameState)
}

// Scene returns the scene renderer, or nil before Initialize.
func (g *TestGame) Scene() *systems.SceneRenderer {
	return g.state().scene
}

func (g *TestGame) Initialize(e *engine.Engine) error {
	core.LogDebug("TestGame Initialize fn....")
	state := g.state()
	state.engine = e

	scene, err := systems.NewSceneRenderer(e.DeviceResources(), e.Assets(), SettingsFromConfig(g.ApplicationConfig.Config))
	if err != nil {
		return err
	}
	state.scene = scene
	state.width, state.height = e.DeviceResources().OutputSize()

	if err := scene.CreateSizeDependentResources(); err != nil {
		return err
	}
	if err := scene.CreateDeviceResources(context.Background()); err != nil {
		return err
	}

	cs, err := systems.NewCameraSystem(&systems.CameraSystemConfig{
		Bindings:     systems.DefaultCameraBindings(),
		WireframeKey: WIREFRAME_KEY,
	}, e.EventBus(), scene.Camera, scene.ToggleWireframe)
	if err != nil {
		return err
	}
	state.cameraSystem = cs

	bus := e.EventBus()
	bus.Register(core.EVENT_CODE_BUTTON_PRESSED, g.gameOnMouse)
	bus.Register(core.EVENT_CODE_BUTTON_RELEASED, g.gameOnMouse)
	bus.Register(core.EVENT_CODE_MOUSE_MOVED, g.gameOnMouse)

	core.LogInfo("testbed ready with passes %v", scene.Views())
	return nil
}

func (g *TestGame) Update(timer core.Timer) error {
	return g.state().scene.Update(timer)
}

func (g *TestGame) Render() (bool, error) {
	scene := g.state().scene
	before := scene.FrameCount()
	if err := scene.Render(); err != nil {
		return false, err
	}
	return scene.FrameCount() > before, nil
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	state := g.state()
	if state.scene == nil {
		return fmt.Errorf("%w: resize before initialize", core.ErrNotReady)
	}
	if width == state.width && height == state.height && state.scene.Camera() != nil {
		return nil
	}
	state.width, state.height = width, height
	return state.scene.CreateSizeDependentResources()
}

/**
 * @brief Applies a reloaded configuration. Everything but the asset layout
 * and the output size takes effect; the camera is placed back at the new eye.
 */
func (g *TestGame) OnConfigChanged(cfg *config.Config) error {
	scene := g.state().scene
	scene.SetSettings(SettingsFromConfig(cfg))
	if err := scene.CreateSizeDependentResources(); err != nil {
		return err
	}
	core.LogInfo("configuration reloaded")
	return nil
}

func (g *TestGame) Shutdown() error {
	state := g.state()
	var err error
	if state.cameraSystem != nil {
		err = state.cameraSystem.Shutdown()
	}
	if state.scene != nil {
		if serr := state.scene.Shutdown(); serr != nil && err == nil {
			err = serr
		}
	}
	return err
}

// gameOnMouse turns the model with the pointer while the left button is held.
func (g *TestGame) gameOnMouse(context core.EventContext) bool {
	me, ok := context.Data.(*core.MouseEvent)
	if !ok {
		return false
	}
	scene := g.state().scene
	switch context.Type {
	case core.EVENT_CODE_BUTTON_PRESSED:
		if me.Button != core.BUTTON_LEFT {
			return false
		}
		scene.StartTracking()
		scene.TrackingUpdate(float32(me.PosX))
	case core.EVENT_CODE_BUTTON_RELEASED:
		if me.Button != core.BUTTON_LEFT {
			return false
		}
		scene.StopTracking()
	case core.EVENT_CODE_MOUSE_MOVED:
		if !scene.IsTracking() {
			return false
		}
		scene.TrackingUpdate(float32(me.PosX))
	}
	return true
}
