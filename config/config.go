// Package config provides configuration loading and access for the particle field.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is returned (wrapped) when a loaded configuration fails validation.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all configuration parameters.
type Config struct {
	Screen      ScreenConfig    `yaml:"screen"`
	Field       FieldConfig     `yaml:"field"`
	Particles   ParticleStyle   `yaml:"particles"`
	Connections ConnectionStyle `yaml:"connections"`
	Telemetry   TelemetryConfig `yaml:"telemetry"`
	Tune        TuneConfig      `yaml:"tune"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width      int      `yaml:"width"`
	Height     int      `yaml:"height"`
	TargetFPS  int      `yaml:"target_fps"`
	Title      string   `yaml:"title"`
	Background [3]uint8 `yaml:"background"` // RGB behind the field
}

// FieldConfig holds the particle field parameters.
type FieldConfig struct {
	Count              int     `yaml:"count"`
	SpeedMultiplier    float64 `yaml:"speed_multiplier"`
	DistanceMultiplier float64 `yaml:"distance_multiplier"`

	BaseSpeed            float64 `yaml:"base_speed"`             // Velocity span per axis, px/frame
	BaseConnectionRadius float64 `yaml:"base_connection_radius"` // px before distance_multiplier
	MinRadius            float64 `yaml:"min_radius"`
	MaxRadius            float64 `yaml:"max_radius"`
	WrapMargin           float64 `yaml:"wrap_margin"`
	ResizeDebounceMS     int     `yaml:"resize_debounce_ms"`
}

// ParticleStyle holds the particle pass style.
type ParticleStyle struct {
	Color    [3]uint8 `yaml:"color"`
	Alpha    float64  `yaml:"alpha"`
	Glow     float64  `yaml:"glow"`     // Halo radius in logical px (0 = off)
	Additive bool     `yaml:"additive"` // Overlaps brighten instead of occlude
}

// ConnectionStyle holds the connection pass style.
type ConnectionStyle struct {
	Color [3]uint8 `yaml:"color"`
	Alpha float64  `yaml:"alpha"`
	Width float64  `yaml:"width"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         int `yaml:"stats_window"`          // Frames per stats window
	PerfCollectorWindow int `yaml:"perf_collector_window"` // Frames averaged by the perf collector
}

// TuneConfig holds defaults for the distance tuning tool.
type TuneConfig struct {
	TargetDegree float64 `yaml:"target_degree"` // Desired mean connections per particle
	PairBudget   int     `yaml:"pair_budget"`   // Soft cap on segments per frame
	Frames       int     `yaml:"frames"`        // Frames simulated per evaluation
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ConnectionRadius   float32       // BaseConnectionRadius * DistanceMultiplier
	ConnectionRadiusSq float32       // ConnectionRadius squared
	ResizeDebounce     time.Duration // ResizeDebounceMS as a duration
	ScreenW32          float32
	ScreenH32          float32
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are broken: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.ComputeDerived()

	return cfg, nil
}

// Validate checks value ranges. Everything downstream relies on these holding.
func (c *Config) Validate() error {
	f := c.Field
	switch {
	case f.Count < 0:
		return fmt.Errorf("field.count must be >= 0, got %d: %w", f.Count, ErrInvalid)
	case f.SpeedMultiplier <= 0:
		return fmt.Errorf("field.speed_multiplier must be > 0, got %v: %w", f.SpeedMultiplier, ErrInvalid)
	case f.DistanceMultiplier <= 0:
		return fmt.Errorf("field.distance_multiplier must be > 0, got %v: %w", f.DistanceMultiplier, ErrInvalid)
	case f.BaseConnectionRadius <= 0:
		return fmt.Errorf("field.base_connection_radius must be > 0, got %v: %w", f.BaseConnectionRadius, ErrInvalid)
	case f.BaseSpeed < 0:
		return fmt.Errorf("field.base_speed must be >= 0, got %v: %w", f.BaseSpeed, ErrInvalid)
	case f.MinRadius <= 0 || f.MaxRadius < f.MinRadius:
		return fmt.Errorf("field radius range [%v, %v) is empty: %w", f.MinRadius, f.MaxRadius, ErrInvalid)
	case f.WrapMargin < 0:
		return fmt.Errorf("field.wrap_margin must be >= 0, got %v: %w", f.WrapMargin, ErrInvalid)
	case f.ResizeDebounceMS < 0:
		return fmt.Errorf("field.resize_debounce_ms must be >= 0, got %d: %w", f.ResizeDebounceMS, ErrInvalid)
	}
	return nil
}

// ComputeDerived calculates values derived from loaded config.
// Call again after mutating Field (the UI does this on slider release).
func (c *Config) ComputeDerived() {
	r := float32(c.Field.BaseConnectionRadius * c.Field.DistanceMultiplier)
	c.Derived.ConnectionRadius = r
	c.Derived.ConnectionRadiusSq = r * r
	c.Derived.ResizeDebounce = time.Duration(c.Field.ResizeDebounceMS) * time.Millisecond
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
