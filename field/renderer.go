package field

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/constellation/components"
	"github.com/pthm-cable/constellation/systems"
	"github.com/pthm-cable/constellation/telemetry"
)

// Option configures a Renderer.
type Option func(*Renderer)

// WithRand sets the random source used to spawn particles.
func WithRand(src RandomSource) Option {
	return func(r *Renderer) {
		if src != nil {
			r.rng = src
		}
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.log = l
		}
	}
}

// WithPerf records per-phase frame timings.
func WithPerf(p *telemetry.PerfCollector) Option {
	return func(r *Renderer) { r.perf = p }
}

// WithStats records per-frame connection counts.
func WithStats(c *telemetry.Collector) Option {
	return func(r *Renderer) { r.stats = c }
}

// FrameStats describes one completed frame.
type FrameStats struct {
	Frame         uint64
	Particles     int
	Connections   int
	Cells         int
	OccupiedCells int
}

// Renderer owns a particle field mounted on a Surface. All methods must be
// called from the host's render goroutine.
type Renderer struct {
	host  Host
	rng   RandomSource
	log   *slog.Logger
	perf  *telemetry.PerfCollector
	stats *telemetry.Collector

	cfg     Config
	surface Surface
	mounted bool

	// Bumped on every unmount; frame and timer callbacks from an older
	// generation return without touching anything.
	generation uint64

	world  *ecs.World
	motion *systems.MotionSystem
	grid   *systems.SpatialGrid

	points   []systems.Point
	radii    []float32
	pairs    []systems.Pair
	circles  []Circle
	segments []Segment

	width, height float32
	dpr           float32
	radiusSq      float32

	frameID      FrameID
	framePending bool
	resizeTimer  Timer
	detachResize func()

	frame uint64
}

// New creates an unmounted renderer bound to host.
func New(host Host, opts ...Option) *Renderer {
	r := &Renderer{
		host: host,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
		log:  slog.Default(),
		cfg:  DefaultConfig(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Mount attaches the field to surface and starts the frame loop. Any
// previous mount is torn down first.
//
// An invalid cfg returns an error and leaves any current mount untouched.
// A nil surface, or one whose Configure fails, is not an error: the
// renderer ends up unmounted and nothing is scheduled.
func (r *Renderer) Mount(surface Surface, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("mount: %w", err)
	}
	r.Unmount()
	r.cfg = cfg

	if surface == nil {
		r.log.Debug("field_mount_skipped", "reason", "no surface")
		return nil
	}

	w, h, dpr := r.readViewport()
	if err := surface.Configure(pixelSize(w, dpr), pixelSize(h, dpr), dpr); err != nil {
		r.log.Debug("field_mount_skipped", "reason", "surface unavailable", "err", err)
		return nil
	}

	r.surface = surface
	r.width, r.height, r.dpr = w, h, dpr
	r.frame = 0

	radius := cfg.ConnectionRadius()
	r.radiusSq = radius * radius

	r.spawn(cfg, w, h)
	r.grid = systems.NewSpatialGrid(w, h, cfg.WrapMargin, radius)

	gen := r.generation
	r.detachResize = r.host.OnResize(func() { r.onResize(gen) })

	r.mounted = true
	r.stats.RecordMount()
	r.schedule()

	r.log.Info("field_mounted",
		"count", cfg.Count,
		"width", w,
		"height", h,
		"dpr", dpr,
		"connection_radius", radius,
	)
	return nil
}

// spawn discards any previous particles and creates cfg.Count new ones
// uniformly over the w x h rectangle.
func (r *Renderer) spawn(cfg Config, w, h float32) {
	r.world = ecs.NewWorld()
	mapper := ecs.NewMap4[components.Position, components.Velocity, components.Body, components.Slot](r.world)

	maxSpeed := cfg.MaxSpeed()
	for i := 0; i < cfg.Count; i++ {
		pos := components.Position{X: r.rng.Float32() * w, Y: r.rng.Float32() * h}
		vel := components.Velocity{
			X: (r.rng.Float32() - 0.5) * maxSpeed,
			Y: (r.rng.Float32() - 0.5) * maxSpeed,
		}
		body := components.Body{Radius: cfg.MinRadius + r.rng.Float32()*(cfg.MaxRadius-cfg.MinRadius)}
		slot := components.Slot{Index: i}
		mapper.NewEntity(&pos, &vel, &body, &slot)
	}

	r.motion = systems.NewMotionSystem(r.world, systems.Bounds{Width: w, Height: h}, cfg.WrapMargin)
	r.points = make([]systems.Point, cfg.Count)
	r.radii = make([]float32, cfg.Count)
	r.circles = make([]Circle, cfg.Count)
	r.pairs = r.pairs[:0]
	r.segments = r.segments[:0]
	r.motion.Snapshot(r.points, r.radii)
}

// Reconfigure replaces the configuration. A mounted renderer is re-mounted
// on the same surface with fresh particles; an unmounted one only stores cfg
// for the next Mount.
func (r *Renderer) Reconfigure(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("reconfigure: %w", err)
	}
	if !r.mounted {
		r.cfg = cfg
		return nil
	}
	return r.Mount(r.surface, cfg)
}

// Unmount cancels the pending frame and resize timer, detaches the resize
// listener and drops the surface. Safe to call any number of times.
func (r *Renderer) Unmount() {
	if r.framePending {
		r.host.CancelFrame(r.frameID)
		r.framePending = false
	}
	if r.resizeTimer != nil {
		r.resizeTimer.Stop()
		r.resizeTimer = nil
	}
	if r.detachResize != nil {
		r.detachResize()
		r.detachResize = nil
	}
	r.generation++

	if !r.mounted {
		return
	}
	r.mounted = false
	r.surface = nil
	r.log.Info("field_unmounted", "frames", r.frame)
}

func (r *Renderer) schedule() {
	gen := r.generation
	r.frameID = r.host.RequestFrame(func() { r.onFrame(gen) })
	r.framePending = true
}

func (r *Renderer) onFrame(gen uint64) {
	if gen != r.generation || !r.mounted {
		return
	}
	r.framePending = false
	r.Step()
	if gen == r.generation && r.mounted {
		r.schedule()
	}
}

// Step runs one frame synchronously: integrate and wrap, clear, draw the
// particle pass, rebuild the grid, collect connections and stroke them as
// one path. It does nothing when unmounted.
func (r *Renderer) Step() FrameStats {
	if !r.mounted {
		return FrameStats{}
	}

	r.perf.StartFrame()

	r.perf.StartPhase(telemetry.PhaseIntegrate)
	r.motion.Update(r.points, r.radii)

	r.perf.StartPhase(telemetry.PhaseClear)
	r.surface.Clear()

	r.perf.StartPhase(telemetry.PhaseParticles)
	for i, p := range r.points {
		r.circles[i] = Circle{X: p.X, Y: p.Y, R: r.radii[i]}
	}
	r.surface.FillCircles(r.cfg.Particles, r.circles)

	r.perf.StartPhase(telemetry.PhaseGrid)
	if dropped := r.grid.Rebuild(r.points); dropped > 0 {
		r.log.Debug("grid_points_dropped", "count", dropped)
	}

	r.perf.StartPhase(telemetry.PhaseConnections)
	r.pairs = r.grid.PairsWithin(r.pairs[:0], r.points, r.radiusSq)
	r.segments = r.segments[:0]
	for _, pr := range r.pairs {
		a, b := r.points[pr.I], r.points[pr.J]
		r.segments = append(r.segments, Segment{X1: a.X, Y1: a.Y, X2: b.X, Y2: b.Y})
	}

	r.perf.StartPhase(telemetry.PhaseStroke)
	r.surface.StrokePath(r.cfg.Connections, r.segments)

	r.perf.EndFrame()
	r.frame++

	rows, cols := r.grid.Dims()
	fs := FrameStats{
		Frame:         r.frame,
		Particles:     len(r.points),
		Connections:   len(r.pairs),
		Cells:         rows * cols,
		OccupiedCells: r.grid.OccupiedCells(),
	}
	r.stats.RecordFrame(telemetry.FrameSample{
		Frame:         fs.Frame,
		Particles:     fs.Particles,
		Connections:   fs.Connections,
		Cells:         fs.Cells,
		OccupiedCells: fs.OccupiedCells,
		Width:         r.width,
		Height:        r.height,
		Radius:        r.cfg.ConnectionRadius(),
	})
	return fs
}

// onResize restarts the debounce window; only the last event of a burst
// is applied.
func (r *Renderer) onResize(gen uint64) {
	if gen != r.generation || !r.mounted {
		return
	}
	if r.resizeTimer != nil {
		r.resizeTimer.Stop()
	}
	r.resizeTimer = r.host.AfterFunc(r.cfg.ResizeDebounce, func() {
		if gen != r.generation || !r.mounted {
			return
		}
		r.resizeTimer = nil
		r.applyResize()
	})
}

func (r *Renderer) applyResize() {
	w, h, dpr := r.readViewport()
	if err := r.surface.Configure(pixelSize(w, dpr), pixelSize(h, dpr), dpr); err != nil {
		r.log.Warn("field_resize_failed", "width", w, "height", h, "dpr", dpr, "err", err)
		return
	}
	r.width, r.height, r.dpr = w, h, dpr

	r.motion.SetBounds(systems.Bounds{Width: w, Height: h})
	r.motion.ClampAll()
	r.motion.Snapshot(r.points, r.radii)
	r.grid.Resize(w, h, r.cfg.WrapMargin)
	r.stats.RecordResize()

	r.log.Debug("field_resized", "width", w, "height", h, "dpr", dpr)
}

// readViewport returns the host viewport floored to whole logical pixels
// with a 1x1 minimum, and a device pixel ratio of at least 1.
func (r *Renderer) readViewport() (w, h, dpr float32) {
	w, h = r.host.Viewport()
	return logicalSize(w), logicalSize(h), pixelRatio(r.host.DevicePixelRatio())
}

func logicalSize(v float32) float32 {
	if !(v >= 1) || math.IsInf(float64(v), 0) {
		return 1
	}
	return float32(math.Floor(float64(v)))
}

func pixelRatio(dpr float32) float32 {
	if !(dpr >= 1) || math.IsInf(float64(dpr), 0) {
		return 1
	}
	return dpr
}

func pixelSize(logical, dpr float32) int {
	px := int(math.Floor(float64(logical * dpr)))
	if px < 1 {
		return 1
	}
	return px
}

// Mounted reports whether a frame loop is running.
func (r *Renderer) Mounted() bool {
	return r.mounted
}

// Config returns the active (or next) configuration.
func (r *Renderer) Config() Config {
	return r.cfg
}

// Viewport returns the logical size and device pixel ratio of the mounted
// surface.
func (r *Renderer) Viewport() (width, height, dpr float32) {
	return r.width, r.height, r.dpr
}

// ConnectionRadius returns the radius used for connections.
func (r *Renderer) ConnectionRadius() float32 {
	return r.cfg.ConnectionRadius()
}

// Frame returns the number of frames drawn since the last mount.
func (r *Renderer) Frame() uint64 {
	return r.frame
}

// Positions appends the current particle positions, indexed by slot, to dst.
func (r *Renderer) Positions(dst []systems.Point) []systems.Point {
	return append(dst, r.points...)
}

// SetPositions moves every particle. len(points) must equal the particle
// count; positions are used as given, without wrapping.
func (r *Renderer) SetPositions(points []systems.Point) error {
	if !r.mounted {
		return fmt.Errorf("set positions: renderer is not mounted")
	}
	if len(points) != len(r.points) {
		return fmt.Errorf("set positions: got %d points for %d particles", len(points), len(r.points))
	}
	r.motion.Place(points)
	r.motion.Snapshot(r.points, r.radii)
	return nil
}

// Pairs returns the connections found by the last frame. The slice is
// reused by the next frame.
func (r *Renderer) Pairs() []systems.Pair {
	return r.pairs
}
