package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spaghettifunk/prism/engine/assets"
	"github.com/spaghettifunk/prism/engine/config"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/headless"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently booting up
	EngineStageBooting
	// Engine completed boot process and is ready to be initialized
	EngineStageBootComplete
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

const TARGET_FRAME_SECONDS float64 = 1.0 / 60.0

type Engine struct {
	currentStage Stage
	gameInstance *Game
	isRunning    bool
	isSuspended  bool
	resources    *headless.DeviceResources
	assetManager *assets.AssetManager
	bus          *core.EventBus
	input        *core.Input
	timer        *core.StepTimer
	metrics      *core.Metrics
	width        uint32
	height       uint32
	frameCount   uint64

	// Written by the asset watcher, applied between frames.
	pendingMutex  sync.Mutex
	pendingConfig *config.Config
}

func New(g *Game) (*Engine, error) {
	app := g.ApplicationConfig
	if app == nil || app.Config == nil {
		err := fmt.Errorf("%w: game has no application configuration", core.ErrInvalidState)
		core.LogError(err.Error())
		return nil, err
	}
	e := &Engine{
		currentStage: EngineStageBooting,
		gameInstance: g,
		bus:          core.NewEventBus(),
		metrics:      core.NewMetrics(),
		isRunning:    true,
		width:        app.StartWidth,
		height:       app.StartHeight,
	}
	core.SetLogLevel(app.LogLevel)

	resources, err := headless.NewDeviceResources(app.StartWidth, app.StartHeight)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	e.resources = resources
	e.input = core.NewInput(e.bus)
	e.assetManager = assets.NewAssetManager(&app.Config.Assets, e.bus)
	if app.FixedStep {
		e.timer = core.NewFixedStepTimer(TARGET_FRAME_SECONDS)
	} else {
		e.timer = core.NewStepTimer()
	}
	e.currentStage = EngineStageBootComplete
	return e, nil
}

func (e *Engine) Initialize() error {
	if e.currentStage != EngineStageBootComplete {
		return fmt.Errorf("%w: engine initialized twice", core.ErrInvalidState)
	}
	e.currentStage = EngineStageInitializing

	e.bus.Register(core.EVENT_CODE_APPLICATION_QUIT, e.onEvent)
	e.bus.Register(core.EVENT_CODE_KEY_PRESSED, e.onKey)
	e.bus.Register(core.EVENT_CODE_RESIZED, e.onResized)
	e.bus.Register(core.EVENT_CODE_CONFIG_CHANGED, e.onConfigChanged)

	app := e.gameInstance.ApplicationConfig
	watched := ""
	if app.Config.Assets.Watch {
		watched = app.ConfigPath
	}
	if err := e.assetManager.Initialize(watched); err != nil {
		return err
	}

	if err := e.gameInstance.FnInitialize(e); err != nil {
		return err
	}
	if err := e.gameInstance.FnOnResize(e.width, e.height); err != nil {
		return err
	}
	e.currentStage = EngineStageInitialized
	core.LogInfo("%s initialized (%dx%d)", app.Name, e.width, e.height)
	return nil
}

/**
 * @brief Runs the frame loop until the context is cancelled, the application
 * quits or MaxFrames frames have been presented.
 */
func (e *Engine) Run(ctx context.Context) error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("%w: engine is not initialized", core.ErrInvalidState)
	}
	e.currentStage = EngineStageRunning
	app := e.gameInstance.ApplicationConfig

	for e.isRunning {
		if ctx.Err() != nil {
			core.LogInfo("context cancelled, shutting down")
			break
		}
		if err := e.applyPendingConfig(); err != nil {
			core.LogError("configuration reload failed, keeping the previous settings: %v", err)
		}
		if e.isSuspended {
			time.Sleep(time.Second / 60)
			continue
		}

		frameStartTime := time.Now()
		e.timer.Tick()

		if err := e.gameInstance.FnUpdate(e.timer); err != nil {
			core.LogError("game update failed, shutting down: %v", err)
			return err
		}
		recorded, err := e.gameInstance.FnRender()
		if err != nil {
			core.LogError("game render failed, shutting down: %v", err)
			return err
		}
		if recorded {
			if err := e.resources.Present(); err != nil {
				return err
			}
			e.frameCount++
		}

		frameElapsedTime := time.Since(frameStartTime).Seconds()
		if e.metrics.Update(frameElapsedTime) {
			core.LogDebug("%.0f fps, %.3f ms average frame", e.metrics.FPS(), e.metrics.FrameTime())
		}
		if !app.FixedStep {
			// If there is time left, give it back to the OS.
			if remaining := TARGET_FRAME_SECONDS - frameElapsedTime; remaining > 0 {
				time.Sleep(time.Duration(remaining * float64(time.Second)))
			}
		}

		// Input state is copied last so the next frame sees this frame's transitions.
		e.input.Update()

		if app.MaxFrames > 0 && e.frameCount >= app.MaxFrames {
			core.LogInfo("rendered %d frames, stopping", e.frameCount)
			e.isRunning = false
		}
	}
	return nil
}

func (e *Engine) Shutdown() error {
	if e.currentStage == EngineStageShuttingDown || e.currentStage == EngineStageUninitialized {
		return nil
	}
	e.currentStage = EngineStageShuttingDown

	var err error
	if e.gameInstance.FnShutdown != nil {
		err = e.gameInstance.FnShutdown()
	}
	if amErr := e.assetManager.Shutdown(); amErr != nil && err == nil {
		err = amErr
	}
	e.bus.Shutdown()
	e.resources.Release()
	if live := e.resources.SoftwareDevice().LiveCount(); live > 0 {
		core.LogWarn("%d device resources still alive at shutdown", live)
	}
	e.currentStage = EngineStageUninitialized
	return err
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

// GetFramebufferSize returns the width and height (in this order) of the output.
func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

func (e *Engine) DeviceResources() *headless.DeviceResources {
	return e.resources
}

func (e *Engine) Assets() *assets.AssetManager {
	return e.assetManager
}

func (e *Engine) EventBus() *core.EventBus {
	return e.bus
}

func (e *Engine) Input() *core.Input {
	return e.input
}

// FrameCount returns the number of frames presented.
func (e *Engine) FrameCount() uint64 {
	return e.frameCount
}

// Resize reports a new output size as if it came from the OS.
func (e *Engine) Resize(width, height uint32) {
	e.bus.Fire(core.EventContext{
		Type: core.EVENT_CODE_RESIZED,
		Data: &core.SystemEvent{WindowWidth: width, WindowHeight: height},
	})
}

// Quit stops the loop after the current frame.
func (e *Engine) Quit() {
	e.bus.Fire(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
}

func (e *Engine) onEvent(context core.EventContext) bool {
	switch context.Type {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.isRunning = false
		return true
	}
	return false
}

func (e *Engine) onKey(context core.EventContext) bool {
	ke, ok := context.Data.(*core.KeyEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}
	if ke.KeyCode == core.KEY_ESCAPE {
		// Technically firing an event to itself, but there may be other listeners.
		e.Quit()
		return true
	}
	return false
}

func (e *Engine) onResized(context core.EventContext) bool {
	se, ok := context.Data.(*core.SystemEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}
	width, height := se.WindowWidth, se.WindowHeight
	if width == e.width && height == e.height {
		return false
	}
	e.width, e.height = width, height
	core.LogDebug("output resize: %d, %d", width, height)

	// Handle minimization
	if width == 0 || height == 0 {
		core.LogInfo("output minimized, suspending application.")
		e.isSuspended = true
		return false
	}
	if e.isSuspended {
		core.LogInfo("output restored, resuming application.")
		e.isSuspended = false
	}
	if err := e.resources.Resize(width, height); err != nil {
		core.LogError(err.Error())
		return false
	}
	if err := e.gameInstance.FnOnResize(width, height); err != nil {
		core.LogError(err.Error())
	}
	return false
}

// onConfigChanged runs on the watcher goroutine; it only decodes the file.
func (e *Engine) onConfigChanged(context core.EventContext) bool {
	path, ok := context.Data.(string)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}
	cfg, err := config.Load(path)
	if err != nil {
		core.LogError("configuration reload: %v", err)
		return false
	}
	e.pendingMutex.Lock()
	e.pendingConfig = cfg
	e.pendingMutex.Unlock()
	return false
}

func (e *Engine) applyPendingConfig() error {
	e.pendingMutex.Lock()
	cfg := e.pendingConfig
	e.pendingConfig = nil
	e.pendingMutex.Unlock()
	if cfg == nil {
		return nil
	}
	core.SetLogLevel(cfg.Log.Level)
	e.gameInstance.ApplicationConfig.Config = cfg
	if e.gameInstance.FnOnConfigChanged == nil {
		return nil
	}
	return e.gameInstance.FnOnConfigChanged(cfg)
}
