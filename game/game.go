// Package game runs the particle field in a raylib window or headless, and
// wires config, telemetry and UI around it.
package game

import (
	"fmt"
	"image/color"
	"log/slog"
	"math/rand"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/constellation/config"
	"github.com/pthm-cable/constellation/field"
	"github.com/pthm-cable/constellation/field/headless"
	"github.com/pthm-cable/constellation/renderer"
	"github.com/pthm-cable/constellation/telemetry"
	"github.com/pthm-cable/constellation/ui"
)

// Options configures a Game.
type Options struct {
	Seed      int64
	LogStats  bool
	OutputDir string
	Headless  bool
}

// Game holds the field and everything around it.
type Game struct {
	cfg  *config.Config
	rng  *rand.Rand
	opts Options

	field *field.Renderer

	// Exactly one host/surface pair is set
	window    *renderer.Window
	surface   *renderer.Surface
	sim       *headless.Host
	simCanvas *headless.Surface

	// Telemetry
	perf      *telemetry.PerfCollector
	collector *telemetry.Collector
	output    *telemetry.OutputManager

	// UI
	hud       *ui.HUD
	controls  *ui.ControlsPanel
	perfPanel *ui.PerfPanel
	showPerf  bool
	pending   ui.Action

	frames uint64
	paused bool
}

// NewGameWithOptions creates a game and mounts the field. In graphical mode
// the raylib window must already be open.
func NewGameWithOptions(cfg *config.Config, opts Options) (*Game, error) {
	g := &Game{
		cfg:       cfg,
		rng:       rand.New(rand.NewSource(opts.Seed)),
		opts:      opts,
		perf:      telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		collector: telemetry.NewCollector(cfg.Telemetry.StatsWindow),
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	g.output = output
	if err := g.output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	var host field.Host
	var surface field.Surface
	if opts.Headless {
		g.sim = headless.NewHost(cfg.Derived.ScreenW32, cfg.Derived.ScreenH32, 1)
		g.simCanvas = headless.NewSurface()
		host, surface = g.sim, g.simCanvas
	} else {
		bg := cfg.Screen.Background
		g.window = renderer.NewWindow()
		g.surface = renderer.NewSurface(color.RGBA{R: bg[0], G: bg[1], B: bg[2], A: 255})
		host, surface = g.window, g.surface

		g.hud = ui.NewHUD()
		g.controls = ui.NewControlsPanel(10, 100, 280)
		g.controls.Draft = ui.DraftFrom(cfg)
		g.perfPanel = ui.NewPerfPanel(10, 100, 280)
	}

	g.field = field.New(host,
		field.WithRand(g.rng),
		field.WithLogger(slog.Default()),
		field.WithPerf(g.perf),
		field.WithStats(g.collector),
	)
	if err := g.field.Mount(surface, field.FromConfig(cfg)); err != nil {
		g.output.Close()
		return nil, fmt.Errorf("mounting field: %w", err)
	}
	if !g.field.Mounted() {
		slog.Warn("field not mounted; drawing surface unavailable")
	}
	return g, nil
}

// Update advances one display refresh: input, resize, then the field frame.
func (g *Game) Update() {
	g.window.Poll()
	g.handleInput()
	g.handleAction()

	if !g.paused {
		g.frames += uint64(g.window.Frame())
	}
	g.flushTelemetry()
}

// UpdateHeadless advances one virtual frame without graphics.
func (g *Game) UpdateHeadless() {
	g.frames += uint64(g.sim.Tick())
	g.flushTelemetry()
}

// Draw presents the field and the UI.
func (g *Game) Draw() {
	w, h := float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight())

	rl.BeginDrawing()
	bg := g.cfg.Screen.Background
	rl.ClearBackground(rl.Color{R: bg[0], G: bg[1], B: bg[2], A: 255})

	g.surface.Present(w, h)

	fw, fh, dpr := g.field.Viewport()
	g.hud.Draw(ui.HUDData{
		Title:       g.cfg.Screen.Title,
		Particles:   g.field.Config().Count,
		Connections: len(g.field.Pairs()),
		Radius:      g.field.ConnectionRadius(),
		Width:       fw,
		Height:      fh,
		DPR:         dpr,
		Frame:       g.frames,
		FPS:         rl.GetFPS(),
		Paused:      g.paused,
	})

	if action := g.controls.Draw(g.controls.Draft.Differs(g.cfg)); action != ui.ActionNone {
		g.pending = action
	}
	if g.showPerf {
		g.perfPanel.SetPosition(int32(w)-290, 10)
		g.perfPanel.Draw(g.perf.Stats())
	}

	g.hud.DrawControls(int32(h), "[SPACE] pause  [C] controls  [P] perf  [R] reseed  [ESC] quit")

	rl.EndDrawing()
	g.perf.RecordPresent()
}

// remount re-derives the field from the current config.
func (g *Game) remount(reason string) {
	if err := g.field.Reconfigure(field.FromConfig(g.cfg)); err != nil {
		slog.Error("failed to reconfigure field", "reason", reason, "error", err)
		return
	}
	slog.Info("field_reconfigured",
		"reason", reason,
		"count", g.cfg.Field.Count,
		"speed_multiplier", g.cfg.Field.SpeedMultiplier,
		"distance_multiplier", g.cfg.Field.DistanceMultiplier,
	)
}

// Frames returns the number of field frames run.
func (g *Game) Frames() uint64 {
	return g.frames
}

// Field returns the mounted renderer.
func (g *Game) Field() *field.Renderer {
	return g.field
}

// Unload tears the field down, flushes output and releases GPU resources.
func (g *Game) Unload() {
	g.field.Unmount()
	if g.collector.ShouldFlush(g.frames) {
		g.flushTelemetry()
	}
	if err := g.output.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
	if g.surface != nil {
		g.surface.Unload()
	}
}
