package game

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/constellation/config"
)

func TestHeadlessRunWritesOutput(t *testing.T) {
	cfg := config.Default()
	cfg.Telemetry.StatsWindow = 30
	cfg.Telemetry.PerfCollectorWindow = 10
	dir := t.TempDir()

	g, err := NewGameWithOptions(cfg, Options{Seed: 1, Headless: true, OutputDir: dir})
	if err != nil {
		t.Fatalf("NewGameWithOptions: %v", err)
	}
	if !g.Field().Mounted() {
		t.Fatal("field not mounted in headless mode")
	}

	for i := 0; i < 95; i++ {
		g.UpdateHeadless()
	}
	if g.Frames() != 95 {
		t.Errorf("Frames() = %d, want 95", g.Frames())
	}
	g.Unload()

	if g.Field().Mounted() {
		t.Error("field still mounted after Unload")
	}

	data, err := os.ReadFile(filepath.Join(dir, "stats.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	// Header plus one row per full window
	if len(lines) != 4 {
		t.Errorf("stats.csv has %d lines, want 4:\n%s", len(lines), data)
	}
	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config.yaml not written: %v", err)
	}
}

func TestHeadlessRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Field.DistanceMultiplier = 0

	if _, err := NewGameWithOptions(cfg, Options{Headless: true}); err == nil {
		t.Fatal("expected an error for a zero distance multiplier")
	}
}
