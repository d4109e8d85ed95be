package field

import (
	"errors"
	"fmt"
	"image/color"
	"time"

	"github.com/pthm-cable/constellation/config"
)

// ErrInvalidConfig is returned (wrapped) by Mount and Reconfigure.
var ErrInvalidConfig = errors.New("invalid field config")

// Blend selects how a pass combines with what is already drawn.
type Blend uint8

const (
	BlendAlpha    Blend = iota // Normal source-over
	BlendAdditive              // Overlaps brighten ("lighter")
)

// ParticleStyle configures the particle pass.
type ParticleStyle struct {
	Color color.RGBA // Alpha channel is ignored; see Alpha
	Alpha float32
	Glow  float32 // Halo radius in logical px, 0 disables
	Blend Blend
}

// LineStyle configures the connection pass.
type LineStyle struct {
	Color color.RGBA // Alpha channel is ignored; see Alpha
	Alpha float32
	Width float32 // Logical px
}

// RGBA returns the style colour with Alpha applied.
func (s ParticleStyle) RGBA() color.RGBA {
	return withAlpha(s.Color, s.Alpha)
}

// RGBA returns the style colour with Alpha applied.
func (s LineStyle) RGBA() color.RGBA {
	return withAlpha(s.Color, s.Alpha)
}

func withAlpha(c color.RGBA, a float32) color.RGBA {
	if a < 0 {
		a = 0
	} else if a > 1 {
		a = 1
	}
	c.A = uint8(a*255 + 0.5)
	return c
}

// Config is supplied once per mount. Changing any value means a re-mount.
type Config struct {
	Count              int
	SpeedMultiplier    float32
	DistanceMultiplier float32

	BaseSpeed            float32 // Full velocity span per axis, px/frame
	BaseConnectionRadius float32
	MinRadius            float32
	MaxRadius            float32
	WrapMargin           float32
	ResizeDebounce       time.Duration

	Particles   ParticleStyle
	Connections LineStyle
}

// DefaultConfig returns the tuned defaults: 90 particles, 1.25x speed and
// 1.5x connection distance over the 0.4 px/frame and 190 px baselines.
func DefaultConfig() Config {
	return Config{
		Count:                90,
		SpeedMultiplier:      1.25,
		DistanceMultiplier:   1.5,
		BaseSpeed:            0.4,
		BaseConnectionRadius: 190,
		MinRadius:            1,
		MaxRadius:            3,
		WrapMargin:           10,
		ResizeDebounce:       120 * time.Millisecond,
		Particles: ParticleStyle{
			Color: color.RGBA{R: 0x5e, G: 0xe7, B: 0xff, A: 0xff},
			Alpha: 0.92,
			Glow:  8,
			Blend: BlendAdditive,
		},
		Connections: LineStyle{
			Color: color.RGBA{R: 125, G: 249, B: 255, A: 0xff},
			Alpha: 0.18,
			Width: 0.35,
		},
	}
}

// FromConfig builds a field Config from the loaded application config.
func FromConfig(c *config.Config) Config {
	f := c.Field
	blend := BlendAlpha
	if c.Particles.Additive {
		blend = BlendAdditive
	}
	return Config{
		Count:                f.Count,
		SpeedMultiplier:      float32(f.SpeedMultiplier),
		DistanceMultiplier:   float32(f.DistanceMultiplier),
		BaseSpeed:            float32(f.BaseSpeed),
		BaseConnectionRadius: float32(f.BaseConnectionRadius),
		MinRadius:            float32(f.MinRadius),
		MaxRadius:            float32(f.MaxRadius),
		WrapMargin:           float32(f.WrapMargin),
		ResizeDebounce:       c.Derived.ResizeDebounce,
		Particles: ParticleStyle{
			Color: rgb(c.Particles.Color),
			Alpha: float32(c.Particles.Alpha),
			Glow:  float32(c.Particles.Glow),
			Blend: blend,
		},
		Connections: LineStyle{
			Color: rgb(c.Connections.Color),
			Alpha: float32(c.Connections.Alpha),
			Width: float32(c.Connections.Width),
		},
	}
}

func rgb(c [3]uint8) color.RGBA {
	return color.RGBA{R: c[0], G: c[1], B: c[2], A: 0xff}
}

// Validate checks the values every frame relies on.
func (c Config) Validate() error {
	switch {
	case c.Count < 0:
		return fmt.Errorf("count %d is negative: %w", c.Count, ErrInvalidConfig)
	case !(c.SpeedMultiplier > 0):
		return fmt.Errorf("speed multiplier %v must be positive: %w", c.SpeedMultiplier, ErrInvalidConfig)
	case !(c.DistanceMultiplier > 0):
		return fmt.Errorf("distance multiplier %v must be positive: %w", c.DistanceMultiplier, ErrInvalidConfig)
	case !(c.BaseConnectionRadius > 0):
		return fmt.Errorf("base connection radius %v must be positive: %w", c.BaseConnectionRadius, ErrInvalidConfig)
	case c.BaseSpeed < 0:
		return fmt.Errorf("base speed %v is negative: %w", c.BaseSpeed, ErrInvalidConfig)
	case !(c.MinRadius > 0) || c.MaxRadius < c.MinRadius:
		return fmt.Errorf("radius range [%v, %v) is empty: %w", c.MinRadius, c.MaxRadius, ErrInvalidConfig)
	case c.WrapMargin < 0:
		return fmt.Errorf("wrap margin %v is negative: %w", c.WrapMargin, ErrInvalidConfig)
	case c.ResizeDebounce < 0:
		return fmt.Errorf("resize debounce %v is negative: %w", c.ResizeDebounce, ErrInvalidConfig)
	}
	return nil
}

// ConnectionRadius is the base radius scaled by the distance multiplier.
func (c Config) ConnectionRadius() float32 {
	return c.BaseConnectionRadius * c.DistanceMultiplier
}

// MaxSpeed is the velocity span per axis after the speed multiplier.
func (c Config) MaxSpeed() float32 {
	return c.BaseSpeed * c.SpeedMultiplier
}
