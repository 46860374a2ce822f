// Package game is the raylib host for the camera rig: it owns the window,
// the demo scene and the input backend, and drives the systems pipeline.
package game

import (
	"fmt"
	"log/slog"

	"github.com/mlange-42/ark/ecs"
	"github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/orbitcam/components"
	"github.com/pthm-cable/orbitcam/config"
	"github.com/pthm-cable/orbitcam/systems"
	"github.com/pthm-cable/orbitcam/telemetry"
)

// DT is the fixed tick length in seconds.
const DT = 1.0 / 60.0

// Options configures a Game.
type Options struct {
	ConfigPath string // watched for changes when set
	OutputDir  string // trace/perf CSV and config snapshot; empty disables
	Headless   bool
	LogPerf    bool
	Logger     *slog.Logger
}

// Game holds the viewer state.
type Game struct {
	cfg *config.Config
	log *slog.Logger

	world      *ecs.World
	settings   *systems.Settings
	pipeline   *systems.Pipeline
	transforms *ecs.Map[components.Transform]

	perf    *telemetry.PerfCollector
	output  *telemetry.OutputManager
	watcher *config.Watcher
	logPerf bool

	// Scene
	target      ecs.Entity
	cameras     []ecs.Entity
	activeIndex int
	noise       opensimplex.Noise
	elapsed     float64

	// Input
	input    *rlInput
	scripted *scriptedInput
	keys     viewerKeys

	// Rendering (nil in headless mode)
	views    []*view
	headless bool
	paused   bool

	screenWidth, screenHeight float32
}

// NewGame creates the world, the pipeline and the demo scene from the
// global config.
func NewGame(opts Options) (*Game, error) {
	cfg := config.Cfg()
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	settings, err := systems.NewSettings(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating settings: %w", err)
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := output.WriteConfig(cfg); err != nil {
		output.Close()
		return nil, err
	}

	perf := telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow)
	pipelineOpts := []systems.PipelineOption{
		systems.WithLogger(log),
		systems.WithPerf(perf),
	}
	if output != nil {
		pipelineOpts = append(pipelineOpts, systems.WithTrace(output, cfg.Telemetry.TraceEvery))
	}

	world := ecs.NewWorld()
	g := &Game{
		cfg:          cfg,
		log:          log,
		world:        world,
		settings:     settings,
		pipeline:     systems.NewPipeline(world, settings, pipelineOpts...),
		transforms:   ecs.NewMap[components.Transform](world),
		perf:         perf,
		output:       output,
		logPerf:      opts.LogPerf,
		noise:        opensimplex.New(cfg.Demo.NoiseSeed),
		headless:     opts.Headless,
		screenWidth:  float32(cfg.Screen.Width),
		screenHeight: float32(cfg.Screen.Height),
	}
	g.keys = newViewerKeys(cfg.Keys, log)

	if err := g.setupScene(); err != nil {
		g.Unload()
		return nil, err
	}

	if opts.ConfigPath != "" {
		w, err := config.NewWatcher(opts.ConfigPath)
		if err != nil {
			// Hot reload is a convenience; run without it.
			log.Warn("config watcher disabled", "path", opts.ConfigPath, "error", err)
		} else {
			g.watcher = w
		}
	}

	if g.headless {
		g.scripted = newScriptedInput(cfg.Keys)
	} else {
		g.input = newRLInput(settings, log)
		g.createViews()
	}

	log.Info("viewer started",
		"scene", cfg.Demo.Scene,
		"cameras", len(g.cameras),
		"damping_mode", settings.DampingMode,
		"headless", g.headless,
	)
	return g, nil
}

// Update handles viewer input and advances one tick.
func (g *Game) Update() {
	g.pollConfig()
	g.handleInput()
	if g.paused {
		return
	}
	g.step(DT, g.input)
}

// UpdateHeadless advances one tick with scripted input and no window.
func (g *Game) UpdateHeadless() {
	g.pollConfig()
	g.scripted.advance(g.pipeline.Tick())
	g.step(DT, g.scripted)
}

func (g *Game) step(dt float64, in systems.InputSource) {
	g.moveTarget(dt, in)
	g.pipeline.Step(dt, in)
	g.flushPerf()
}

// Tick returns the number of completed ticks.
func (g *Game) Tick() int64 {
	return g.pipeline.Tick()
}

// Unload releases GPU resources, stops background workers and closes output files.
func (g *Game) Unload() {
	for _, v := range g.views {
		v.unload()
	}
	g.views = nil
	if g.watcher != nil {
		g.watcher.Close()
	}
	g.pipeline.Close()
	if err := g.output.Close(); err != nil {
		g.log.Error("closing output", "error", err)
	}
}
