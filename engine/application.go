package engine

import (
	"github.com/spaghettifunk/prism/engine/config"
	"github.com/spaghettifunk/prism/engine/core"
)

type ApplicationConfig struct {
	// Output starting width.
	StartWidth uint32
	// Output starting height.
	StartHeight uint32
	// The application name used in logs.
	Name     string
	LogLevel core.LogLevel
	// The decoded configuration file.
	Config *config.Config
	// Path of the configuration file. Reloaded on change when assets are watched.
	ConfigPath string
	// Stop after this many frames. Zero runs until quit.
	MaxFrames uint64
	// Advance time by a fixed 1/60 s per frame and never sleep.
	FixedStep bool
}

// NewApplicationConfig derives the application settings from a configuration.
func NewApplicationConfig(cfg *config.Config, configPath string) *ApplicationConfig {
	return &ApplicationConfig{
		StartWidth:  cfg.Window.Width,
		StartHeight: cfg.Window.Height,
		Name:        cfg.Window.Name,
		LogLevel:    cfg.Log.Level,
		Config:      cfg,
		ConfigPath:  configPath,
	}
}
