// Command ebitenview runs the particle field in an Ebitengine window using
// vector paths instead of raylib.
package main

import (
	"flag"
	"image/color"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/pthm-cable/constellation/config"
	"github.com/pthm-cable/constellation/field"
	"github.com/pthm-cable/constellation/renderer/vecpath"
	"github.com/pthm-cable/constellation/telemetry"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxFrames := flag.Int("max-frames", 0, "Stop after N frames (0 = unlimited)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	bg := cfg.Screen.Background
	surface := vecpath.NewSurface(color.RGBA{R: bg[0], G: bg[1], B: bg[2], A: 255})
	g := vecpath.NewGame(surface, cfg.Screen.Width, cfg.Screen.Height)

	collector := telemetry.NewCollector(cfg.Telemetry.StatsWindow)
	r := field.New(g,
		field.WithRand(rand.New(rand.NewSource(rngSeed))),
		field.WithStats(collector),
	)

	var frames uint64
	g.OnFrame = func() bool {
		frames++
		if *logStats && collector.ShouldFlush(frames) {
			collector.Flush(frames).LogStats()
		}
		return *maxFrames <= 0 || frames < uint64(*maxFrames)
	}

	if err := r.Mount(surface, field.FromConfig(cfg)); err != nil {
		slog.Error("failed to mount field", "error", err)
		os.Exit(1)
	}
	defer r.Unmount()

	ebiten.SetWindowSize(cfg.Screen.Width, cfg.Screen.Height)
	ebiten.SetWindowTitle(cfg.Screen.Title + " (ebiten)")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(cfg.Screen.TargetFPS)

	if err := ebiten.RunGame(g); err != nil {
		slog.Error("ebiten exited", "error", err)
	}
}
