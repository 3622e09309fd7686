/*
Runs the multi-pass scene on the headless device. Every frame ray traces and
ray marches into two offscreen targets, draws the models into a third, then
composites the three into the back buffer.
*/
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/prism/engine"
	"github.com/spaghettifunk/prism/engine/config"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/vulkan"
	"github.com/spaghettifunk/prism/testbed"
)

func main() {
	configPath := flag.String("config", "prism.toml", "configuration file; defaults are used when it does not exist")
	frames := flag.Uint64("frames", 0, "stop after this many frames (0 runs until interrupted)")
	fixedStep := flag.Bool("fixed-step", false, "advance time by 1/60 s per frame without sleeping")
	dumpPipelines := flag.Bool("dump-pipelines", false, "log the Vulkan pipeline state of the last frame on exit")
	printConfig := flag.Bool("print-config", false, "print the effective configuration and exit")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		core.LogFatal("configuration: %v", err)
	}
	if *printConfig {
		if err := cfg.Encode(os.Stdout); err != nil {
			core.LogFatal("%v", err)
		}
		return
	}

	tg := testbed.NewTestGame(cfg, *configPath)
	tg.ApplicationConfig.MaxFrames = *frames
	tg.ApplicationConfig.FixedStep = *fixedStep

	e, err := engine.New(tg.Game)
	if err != nil {
		core.LogFatal("%v", err)
	}
	if err := e.Initialize(); err != nil {
		_ = e.Shutdown()
		core.LogFatal("%v", err)
	}

	// capture sigterm and other system calls here
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	runErr := e.Run(ctx)
	if *dumpPipelines {
		logPipelines(e)
	}
	if err := e.Shutdown(); err != nil {
		core.LogError("shutdown: %v", err)
	}
	if runErr != nil {
		core.LogFatal("%v", runErr)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		core.LogWarn("%s not found, using the default configuration", path)
		return config.Default(), nil
	}
	return config.Load(path)
}

// logPipelines translates the distinct pipelines of the last presented frame.
func logPipelines(e *engine.Engine) {
	last := e.DeviceResources().SoftwareContext().LastFrame()
	if last == nil {
		core.LogWarn("no frame was presented")
		return
	}
	descriptions, err := vulkan.DescribePipelines(last.Pipelines)
	if err != nil {
		core.LogError("pipeline translation: %v", err)
		return
	}
	for _, pd := range descriptions {
		core.LogInfo("%s", pd)
	}
}
