package systems

import (
	"fmt"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/components"
)

// DefaultCameraBindings maps the arrow keys to rotation, WASD to sideways and
// vertical pans and Q/E to forward/backward pans.
func DefaultCameraBindings() map[core.KeyCode]components.CameraIntent {
	return map[core.KeyCode]components.CameraIntent{
		core.KEY_LEFT:  components.CAMERA_ROTATE_LEFT,
		core.KEY_RIGHT: components.CAMERA_ROTATE_RIGHT,
		core.KEY_UP:    components.CAMERA_ROTATE_UP,
		core.KEY_DOWN:  components.CAMERA_ROTATE_DOWN,
		core.KEY_A:     components.CAMERA_PAN_LEFT,
		core.KEY_D:     components.CAMERA_PAN_RIGHT,
		core.KEY_W:     components.CAMERA_PAN_UP,
		core.KEY_S:     components.CAMERA_PAN_DOWN,
		core.KEY_Q:     components.CAMERA_PAN_FORWARD,
		core.KEY_E:     components.CAMERA_PAN_BACKWARD,
	}
}

/** @brief The camera system configuration. */
type CameraSystemConfig struct {
	Bindings map[core.KeyCode]components.CameraIntent
	/** @brief Toggles the wireframe override of the object pass. */
	WireframeKey core.KeyCode
}

/**
 * @brief Turns key events into camera intents. The camera is looked up on
 * every event because the scene renderer recreates it when the output size
 * changes. Events must be fired on the goroutine that updates the camera.
 */
type CameraSystem struct {
	Config      *CameraSystemConfig
	camera      func() *components.Camera
	onWireframe func()
}

func NewCameraSystem(config *CameraSystemConfig, bus *core.EventBus, camera func() *components.Camera, onWireframe func()) (*CameraSystem, error) {
	if len(config.Bindings) == 0 {
		err := fmt.Errorf("func NewCameraSystem - config.Bindings must not be empty")
		core.LogError("%v", err)
		return nil, err
	}
	cs := &CameraSystem{
		Config:      config,
		camera:      camera,
		onWireframe: onWireframe,
	}
	if bus != nil {
		bus.Register(core.EVENT_CODE_KEY_PRESSED, cs.onKey)
		bus.Register(core.EVENT_CODE_KEY_RELEASED, cs.onKey)
	}
	return cs, nil
}

func (cs *CameraSystem) onKey(context core.EventContext) bool {
	ev, ok := context.Data.(*core.KeyEvent)
	if !ok {
		return false
	}
	pressed := context.Type == core.EVENT_CODE_KEY_PRESSED
	if ev.KeyCode == cs.Config.WireframeKey {
		if pressed && cs.onWireframe != nil {
			cs.onWireframe()
		}
		return true
	}
	intent, ok := cs.Config.Bindings[ev.KeyCode]
	if !ok {
		return false
	}
	cam := cs.camera()
	if cam == nil {
		return false
	}
	cam.SetIntent(intent, pressed)
	return true
}

/**
 * @brief Shuts down the camera system.
 */
func (cs *CameraSystem) Shutdown() error {
	if cam := cs.camera(); cam != nil {
		cam.ClearIntents()
	}
	return nil
}
