package engine

import (
	"github.com/spaghettifunk/prism/engine/config"
	"github.com/spaghettifunk/prism/engine/core"
)

type Game struct {
	ApplicationConfig *ApplicationConfig
	State             interface{}
	FnInitialize      Initialize
	FnUpdate          Update
	FnRender          Render
	FnOnResize        OnResize
	FnOnConfigChanged OnConfigChanged
	FnShutdown        Shutdown
}

type Initialize func(e *Engine) error
type Update func(timer core.Timer) error
// Render records a frame and reports whether there is one to present.
type Render func() (bool, error)
type OnResize func(width uint32, height uint32) error
type OnConfigChanged func(cfg *config.Config) error
type Shutdown func() error
