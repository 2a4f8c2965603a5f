package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/oikos/config"
	"github.com/pthm-cable/oikos/engine"
	"github.com/pthm-cable/oikos/viewer"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = use config, -1 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Simulation ticks per update call (higher = faster headless runs)")
	model := flag.String("model", "", "Behavioral model: classical, contextual or quantum (empty = use config)")
	agents := flag.Int("agents", 0, "Population size (0 = use config)")
	noAudio := flag.Bool("no-audio", false, "Run without the synthesized audio feed")
	bpm := flag.Float64("bpm", 120, "Tempo of the synthesized audio feed")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg().Clone()

	switch {
	case *seed > 0:
		cfg.Seed = *seed
	case *seed < 0:
		cfg.Seed = time.Now().UnixNano()
	}
	if *model != "" {
		cfg.Model.Kind = config.ModelKind(*model)
	}
	if *agents > 0 {
		cfg.Population.Count = *agents
	}

	opts := viewer.Options{
		Engine: engine.Options{
			LogStats:  *logStats,
			OutputDir: *outputDir,
		},
		Headless:       *headless,
		Audio:          !*noAudio,
		BPM:            *bpm,
		StepsPerUpdate: *stepsPerUpdate,
	}

	if *headless {
		v, err := viewer.New(cfg, opts)
		if err != nil {
			slog.Error("failed to start", "error", err)
			os.Exit(1)
		}
		defer v.Unload()

		slog.Info("starting headless simulation",
			"seed", cfg.Seed,
			"model", string(cfg.Model.Kind),
			"max_ticks", *maxTicks,
			"steps_per_update", *stepsPerUpdate,
		)

		for {
			v.UpdateHeadless()

			if *maxTicks > 0 && v.Frame() >= *maxTicks {
				slog.Info("max ticks reached", "tick", v.Frame())
				return
			}
		}
	}

	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Oikos")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	v, err := viewer.New(cfg, opts)
	if err != nil {
		slog.Error("failed to start", "error", err)
		return
	}
	defer v.Unload()

	for !rl.WindowShouldClose() {
		v.Update()
		v.Draw()

		if *maxTicks > 0 && v.Frame() >= *maxTicks {
			break
		}
	}
}
