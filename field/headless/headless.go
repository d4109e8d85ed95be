// Package headless provides a virtual-clock Host and a recording Surface for
// running the field without a window.
package headless

import (
	"errors"
	"time"

	"github.com/pthm-cable/constellation/field"
)

// FrameInterval is the virtual time between ticks (60 Hz).
const FrameInterval = time.Second / 60

// Host is a field.Host driven by explicit Tick and Advance calls.
type Host struct {
	*field.Loop

	now           time.Time
	width, height float32
	dpr           float32

	nextListener int
	listeners    map[int]func()
}

// NewHost creates a host with the given viewport and a clock starting at
// the Unix epoch.
func NewHost(width, height, dpr float32) *Host {
	h := &Host{
		now:       time.Unix(0, 0),
		width:     width,
		height:    height,
		dpr:       dpr,
		listeners: make(map[int]func()),
	}
	h.Loop = field.NewLoop(func() time.Time { return h.now })
	return h
}

// Viewport implements field.Host.
func (h *Host) Viewport() (float32, float32) {
	return h.width, h.height
}

// DevicePixelRatio implements field.Host.
func (h *Host) DevicePixelRatio() float32 {
	return h.dpr
}

// OnResize implements field.Host.
func (h *Host) OnResize(fn func()) func() {
	id := h.nextListener
	h.nextListener++
	h.listeners[id] = fn
	return func() { delete(h.listeners, id) }
}

// Listeners returns the number of attached resize listeners.
func (h *Host) Listeners() int {
	return len(h.listeners)
}

// Resize changes the viewport and notifies every listener immediately,
// the way a window system delivers resize events.
func (h *Host) Resize(width, height, dpr float32) {
	h.width, h.height, h.dpr = width, height, dpr
	for _, fn := range h.listeners {
		fn()
	}
}

// Advance moves the virtual clock forward and fires any timers now due.
func (h *Host) Advance(d time.Duration) {
	h.now = h.now.Add(d)
	h.RunTimers()
}

// Tick advances the clock by one FrameInterval and runs a frame.
// Returns the number of frame callbacks run.
func (h *Host) Tick() int {
	h.now = h.now.Add(FrameInterval)
	return h.RunFrame()
}

// Run ticks n times and returns the total number of frame callbacks run.
func (h *Host) Run(n int) int {
	total := 0
	for i := 0; i < n; i++ {
		total += h.Tick()
	}
	return total
}

// ErrUnavailable is returned by Configure on a surface set to fail.
var ErrUnavailable = errors.New("headless: surface unavailable")

// Surface is a field.Surface that records draw calls instead of drawing.
type Surface struct {
	// Fail makes Configure return ErrUnavailable.
	Fail bool

	PixelWidth, PixelHeight int
	Scale                   float32
	Configures              int

	Clears  int
	Fills   int
	Strokes int

	Particles   field.ParticleStyle
	Connections field.LineStyle
	Circles     []field.Circle
	Segments    []field.Segment
}

// NewSurface returns an empty recording surface.
func NewSurface() *Surface {
	return &Surface{}
}

// Configure implements field.Surface.
func (s *Surface) Configure(pixelWidth, pixelHeight int, scale float32) error {
	if s.Fail {
		return ErrUnavailable
	}
	s.PixelWidth, s.PixelHeight, s.Scale = pixelWidth, pixelHeight, scale
	s.Configures++
	return nil
}

// Clear implements field.Surface.
func (s *Surface) Clear() {
	s.Clears++
}

// FillCircles implements field.Surface.
func (s *Surface) FillCircles(style field.ParticleStyle, circles []field.Circle) {
	s.Fills++
	s.Particles = style
	s.Circles = append(s.Circles[:0], circles...)
}

// StrokePath implements field.Surface.
func (s *Surface) StrokePath(style field.LineStyle, segments []field.Segment) {
	s.Strokes++
	s.Connections = style
	s.Segments = append(s.Segments[:0], segments...)
}

// DrawCalls returns the total number of Clear, FillCircles and StrokePath
// calls.
func (s *Surface) DrawCalls() int {
	return s.Clears + s.Fills + s.Strokes
}

// Reset zeroes the draw call counters.
func (s *Surface) Reset() {
	s.Clears, s.Fills, s.Strokes = 0, 0, 0
}

var (
	_ field.Host    = (*Host)(nil)
	_ field.Surface = (*Surface)(nil)
)
