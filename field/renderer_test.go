package field_test

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/pthm-cable/constellation/field"
	"github.com/pthm-cable/constellation/field/headless"
	"github.com/pthm-cable/constellation/systems"
	"github.com/pthm-cable/constellation/telemetry"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRenderer(host *headless.Host, seed int64, opts ...field.Option) *field.Renderer {
	opts = append([]field.Option{
		field.WithRand(rand.New(rand.NewSource(seed))),
		field.WithLogger(quietLogger()),
	}, opts...)
	return field.New(host, opts...)
}

// still returns a config with zero velocity so placed particles stay put.
func still(count int, radius float32) field.Config {
	cfg := field.DefaultConfig()
	cfg.Count = count
	cfg.BaseSpeed = 0
	cfg.BaseConnectionRadius = radius
	cfg.DistanceMultiplier = 1
	return cfg
}

func TestCountConstant(t *testing.T) {
	for _, count := range []int{0, 1, 2, 90, 250} {
		host := headless.NewHost(800, 600, 1)
		surface := headless.NewSurface()
		r := newRenderer(host, int64(count))

		cfg := field.DefaultConfig()
		cfg.Count = count
		if err := r.Mount(surface, cfg); err != nil {
			t.Fatalf("count %d: Mount: %v", count, err)
		}

		for i := 0; i < 100; i++ {
			host.Tick()
			if got := len(r.Positions(nil)); got != count {
				t.Fatalf("count %d: frame %d has %d particles", count, i, got)
			}
			if got := len(surface.Circles); got != count {
				t.Fatalf("count %d: frame %d drew %d circles", count, i, got)
			}
		}
		if r.Frame() != 100 {
			t.Errorf("count %d: Frame() = %d, want 100", count, r.Frame())
		}
	}
}

func TestPositionsStayWithinMargin(t *testing.T) {
	const w, h = 320, 200

	host := headless.NewHost(w, h, 1)
	r := newRenderer(host, 7)

	cfg := field.DefaultConfig()
	cfg.Count = 60
	cfg.BaseSpeed = 40 // up to 25 px/frame, well past the margin
	if err := r.Mount(headless.NewSurface(), cfg); err != nil {
		t.Fatal(err)
	}

	m := cfg.WrapMargin
	var pts []systems.Point
	for frame := 0; frame < 2000; frame++ {
		host.Tick()
		pts = r.Positions(pts[:0])
		for i, p := range pts {
			if p.X < -m || p.X > w+m || p.Y < -m || p.Y > h+m {
				t.Fatalf("frame %d: particle %d at %v outside the margin", frame, i, p)
			}
		}
	}
}

func TestTwoParticleScenario(t *testing.T) {
	host := headless.NewHost(400, 400, 1)
	surface := headless.NewSurface()
	r := newRenderer(host, 1)

	placed := []systems.Point{{X: 0, Y: 0}, {X: 10, Y: 0}}

	if err := r.Mount(surface, still(2, 20)); err != nil {
		t.Fatal(err)
	}
	if err := r.SetPositions(placed); err != nil {
		t.Fatal(err)
	}
	host.Tick()

	if len(surface.Segments) != 1 {
		t.Fatalf("radius 20: drew %d connections, want 1", len(surface.Segments))
	}
	want := field.Segment{X1: 0, Y1: 0, X2: 10, Y2: 0}
	if surface.Segments[0] != want {
		t.Errorf("segment = %+v, want %+v", surface.Segments[0], want)
	}
	if surface.Strokes != 1 {
		t.Errorf("Strokes = %d, want a single stroke per frame", surface.Strokes)
	}

	if err := r.Reconfigure(still(2, 5)); err != nil {
		t.Fatal(err)
	}
	if err := r.SetPositions(placed); err != nil {
		t.Fatal(err)
	}
	host.Tick()

	if len(surface.Segments) != 0 {
		t.Errorf("radius 5: drew %d connections, want 0", len(surface.Segments))
	}
}

func TestConnectionsMatchBruteForce(t *testing.T) {
	host := headless.NewHost(1024, 768, 1)
	r := newRenderer(host, 42)

	cfg := field.DefaultConfig()
	cfg.Count = 300
	cfg.BaseSpeed = 8
	if err := r.Mount(headless.NewSurface(), cfg); err != nil {
		t.Fatal(err)
	}

	radius := r.ConnectionRadius()
	var pts []systems.Point
	for frame := 0; frame < 50; frame++ {
		host.Tick()

		pts = r.Positions(pts[:0])
		got := append([]systems.Pair(nil), r.Pairs()...)
		want := systems.BruteForcePairs(nil, pts, radius*radius)
		systems.SortPairs(got)
		systems.SortPairs(want)

		if !reflect.DeepEqual(got, want) {
			t.Fatalf("frame %d: grid found %d pairs, brute force %d", frame, len(got), len(want))
		}
	}
}

func TestMeanDegreeConsistent(t *testing.T) {
	const runs = 10
	var degrees []float64

	for seed := int64(0); seed < runs; seed++ {
		host := headless.NewHost(1000, 1000, 1)
		r := newRenderer(host, seed)

		if err := r.Mount(headless.NewSurface(), still(100, 190)); err != nil {
			t.Fatal(err)
		}
		host.Tick()
		degrees = append(degrees, 2*float64(len(r.Pairs()))/100)
	}

	d := telemetry.Summarize(degrees)
	// Uniform 100 points over 1000x1000 with r=190 average ~9.5 neighbours
	if d.Mean < 6 || d.Mean > 13 {
		t.Errorf("mean degree %v outside the expected band", d.Mean)
	}
	if d.Std > 3 {
		t.Errorf("degree spread %v too wide across runs: %v", d.Std, degrees)
	}
}

func TestStylesPassedThrough(t *testing.T) {
	host := headless.NewHost(200, 200, 1)
	surface := headless.NewSurface()
	r := newRenderer(host, 3)

	cfg := field.DefaultConfig()
	if err := r.Mount(surface, cfg); err != nil {
		t.Fatal(err)
	}
	host.Tick()

	if surface.Particles != cfg.Particles {
		t.Errorf("particle style = %+v, want %+v", surface.Particles, cfg.Particles)
	}
	if surface.Connections != cfg.Connections {
		t.Errorf("connection style = %+v, want %+v", surface.Connections, cfg.Connections)
	}
	if surface.Clears != 1 || surface.Fills != 1 || surface.Strokes != 1 {
		t.Errorf("draw calls = %d/%d/%d, want one of each", surface.Clears, surface.Fills, surface.Strokes)
	}
}

func TestResizeScalesSurfaceAndClamps(t *testing.T) {
	host := headless.NewHost(800, 600, 1)
	surface := headless.NewSurface()
	r := newRenderer(host, 11)

	cfg := field.DefaultConfig()
	cfg.Count = 200
	if err := r.Mount(surface, cfg); err != nil {
		t.Fatal(err)
	}
	if surface.PixelWidth != 800 || surface.PixelHeight != 600 || surface.Scale != 1 {
		t.Fatalf("initial surface %dx%d@%v", surface.PixelWidth, surface.PixelHeight, surface.Scale)
	}
	host.Run(10)

	host.Resize(400, 300, 2)
	host.Advance(cfg.ResizeDebounce - time.Millisecond)
	if surface.PixelWidth != 800 {
		t.Fatal("resize applied before the debounce elapsed")
	}

	host.Advance(time.Millisecond)
	if surface.PixelWidth != 800 || surface.PixelHeight != 600 || surface.Scale != 2 {
		t.Fatalf("after resize surface is %dx%d@%v, want 800x600@2",
			surface.PixelWidth, surface.PixelHeight, surface.Scale)
	}
	if w, h, dpr := r.Viewport(); w != 400 || h != 300 || dpr != 2 {
		t.Errorf("Viewport() = %v x %v @ %v", w, h, dpr)
	}

	for i, p := range r.Positions(nil) {
		if p.X < 0 || p.X > 400 || p.Y < 0 || p.Y > 300 {
			t.Fatalf("particle %d at %v not clamped into 400x300", i, p)
		}
	}
}

func TestResizeDebounceCollapsesBurst(t *testing.T) {
	host := headless.NewHost(800, 600, 1)
	surface := headless.NewSurface()
	r := newRenderer(host, 5)

	if err := r.Mount(surface, field.DefaultConfig()); err != nil {
		t.Fatal(err)
	}
	before := surface.Configures

	sizes := [][2]float32{{700, 500}, {600, 450}, {500, 400}, {640, 480}}
	for _, s := range sizes {
		host.Resize(s[0], s[1], 1)
		host.Advance(50 * time.Millisecond)
		host.Tick()
	}
	if surface.Configures != before {
		t.Fatalf("surface reconfigured %d times mid-burst", surface.Configures-before)
	}

	host.Advance(time.Second)
	if surface.Configures != before+1 {
		t.Errorf("burst caused %d reconfigures, want 1", surface.Configures-before)
	}
	if surface.PixelWidth != 640 || surface.PixelHeight != 480 {
		t.Errorf("applied %dx%d, want the last size 640x480", surface.PixelWidth, surface.PixelHeight)
	}
}

func TestUnmountStopsDrawing(t *testing.T) {
	host := headless.NewHost(800, 600, 1)
	surface := headless.NewSurface()
	r := newRenderer(host, 9)

	if err := r.Mount(surface, field.DefaultConfig()); err != nil {
		t.Fatal(err)
	}
	host.Run(30)
	host.Resize(1024, 768, 2) // leaves a debounce timer pending

	r.Unmount()
	surface.Reset()
	configures := surface.Configures

	host.Run(1000)
	host.Advance(time.Minute)

	if n := surface.DrawCalls(); n != 0 {
		t.Errorf("%d draw calls after unmount", n)
	}
	if surface.Configures != configures {
		t.Error("pending resize was applied after unmount")
	}
	if host.PendingFrames() != 0 || host.PendingTimers() != 0 {
		t.Errorf("left %d frames and %d timers scheduled", host.PendingFrames(), host.PendingTimers())
	}
	if host.Listeners() != 0 {
		t.Errorf("%d resize listeners still attached", host.Listeners())
	}
	if r.Mounted() {
		t.Error("Mounted() = true after Unmount")
	}
	if fs := r.Step(); fs != (field.FrameStats{}) {
		t.Errorf("Step after unmount returned %+v", fs)
	}
}

func TestUnmountIdempotent(t *testing.T) {
	host := headless.NewHost(100, 100, 1)
	r := newRenderer(host, 1)

	r.Unmount() // never mounted

	if err := r.Mount(headless.NewSurface(), field.DefaultConfig()); err != nil {
		t.Fatal(err)
	}
	r.Unmount()
	r.Unmount()
	r.Unmount()

	if host.PendingFrames() != 0 {
		t.Errorf("PendingFrames = %d after repeated unmount", host.PendingFrames())
	}
}

func TestMountWithoutUsableSurface(t *testing.T) {
	tests := []struct {
		name    string
		surface field.Surface
	}{
		{"nil surface", nil},
		{"configure fails", &headless.Surface{Fail: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host := headless.NewHost(800, 600, 1)
			r := newRenderer(host, 1)

			if err := r.Mount(tt.surface, field.DefaultConfig()); err != nil {
				t.Fatalf("Mount returned %v, want a silent no-op", err)
			}
			if r.Mounted() {
				t.Error("renderer mounted without a usable surface")
			}
			if host.PendingFrames() != 0 || host.Listeners() != 0 {
				t.Errorf("scheduled %d frames and %d listeners", host.PendingFrames(), host.Listeners())
			}
			host.Run(10)
			r.Unmount()
		})
	}
}

func TestZeroViewport(t *testing.T) {
	host := headless.NewHost(0, 0, 0)
	surface := headless.NewSurface()
	r := newRenderer(host, 2)

	cfg := field.DefaultConfig()
	if err := r.Mount(surface, cfg); err != nil {
		t.Fatal(err)
	}
	if surface.PixelWidth != 1 || surface.PixelHeight != 1 || surface.Scale != 1 {
		t.Errorf("surface = %dx%d@%v, want 1x1@1", surface.PixelWidth, surface.PixelHeight, surface.Scale)
	}

	host.Run(20)
	host.Resize(0, float32(math.NaN()), -3)
	host.Advance(time.Second)
	host.Run(20)

	m := cfg.WrapMargin
	for i, p := range r.Positions(nil) {
		if p.X < -m || p.X > 1+m || p.Y < -m || p.Y > 1+m {
			t.Fatalf("particle %d at %v outside a 1x1 viewport margin", i, p)
		}
	}
	r.Unmount()
}

func TestFractionalViewportFloors(t *testing.T) {
	host := headless.NewHost(640.7, 480.2, 1.5)
	surface := headless.NewSurface()
	r := newRenderer(host, 2)

	if err := r.Mount(surface, field.DefaultConfig()); err != nil {
		t.Fatal(err)
	}
	if w, h, _ := r.Viewport(); w != 640 || h != 480 {
		t.Errorf("Viewport() = %v x %v, want 640 x 480", w, h)
	}
	if surface.PixelWidth != 960 || surface.PixelHeight != 720 {
		t.Errorf("surface = %dx%d, want 960x720", surface.PixelWidth, surface.PixelHeight)
	}
}

func TestInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*field.Config)
	}{
		{"negative count", func(c *field.Config) { c.Count = -1 }},
		{"zero speed multiplier", func(c *field.Config) { c.SpeedMultiplier = 0 }},
		{"negative distance multiplier", func(c *field.Config) { c.DistanceMultiplier = -1 }},
		{"NaN distance multiplier", func(c *field.Config) { c.DistanceMultiplier = float32(math.NaN()) }},
		{"zero connection radius", func(c *field.Config) { c.BaseConnectionRadius = 0 }},
		{"inverted radius range", func(c *field.Config) { c.MinRadius, c.MaxRadius = 3, 1 }},
		{"negative margin", func(c *field.Config) { c.WrapMargin = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host := headless.NewHost(800, 600, 1)
			r := newRenderer(host, 1)

			cfg := field.DefaultConfig()
			tt.modify(&cfg)

			err := r.Mount(headless.NewSurface(), cfg)
			if !errors.Is(err, field.ErrInvalidConfig) {
				t.Fatalf("Mount error = %v, want ErrInvalidConfig", err)
			}
			if r.Mounted() || host.PendingFrames() != 0 {
				t.Error("invalid config started a frame loop")
			}
		})
	}
}

func TestReconfigureRemounts(t *testing.T) {
	host := headless.NewHost(800, 600, 1)
	surface := headless.NewSurface()
	r := newRenderer(host, 4)

	cfg := field.DefaultConfig()
	cfg.Count = 10
	if err := r.Mount(surface, cfg); err != nil {
		t.Fatal(err)
	}
	host.Run(25)

	cfg.Count = 40
	cfg.DistanceMultiplier = 0.5
	if err := r.Reconfigure(cfg); err != nil {
		t.Fatal(err)
	}

	if !r.Mounted() {
		t.Fatal("Reconfigure unmounted the renderer")
	}
	if r.Frame() != 0 {
		t.Errorf("Frame() = %d after reconfigure, want 0", r.Frame())
	}
	if got := len(r.Positions(nil)); got != 40 {
		t.Errorf("%d particles after reconfigure, want 40", got)
	}
	if r.ConnectionRadius() != 95 {
		t.Errorf("ConnectionRadius() = %v, want 95", r.ConnectionRadius())
	}
	if host.PendingFrames() != 1 || host.Listeners() != 1 {
		t.Errorf("after reconfigure: %d frames, %d listeners; want 1 and 1",
			host.PendingFrames(), host.Listeners())
	}

	surface.Reset()
	host.Run(5)
	if surface.Clears != 5 {
		t.Errorf("%d clears over 5 ticks, want 5 (one loop)", surface.Clears)
	}

	bad := cfg
	bad.Count = -5
	if err := r.Reconfigure(bad); !errors.Is(err, field.ErrInvalidConfig) {
		t.Errorf("Reconfigure(bad) = %v, want ErrInvalidConfig", err)
	}
	if !r.Mounted() || len(r.Positions(nil)) != 40 {
		t.Error("a rejected reconfigure disturbed the running field")
	}
}

func TestReconfigureWhileUnmounted(t *testing.T) {
	host := headless.NewHost(800, 600, 1)
	r := newRenderer(host, 4)

	cfg := field.DefaultConfig()
	cfg.Count = 12
	if err := r.Reconfigure(cfg); err != nil {
		t.Fatal(err)
	}
	if r.Mounted() || host.PendingFrames() != 0 {
		t.Error("Reconfigure mounted an unmounted renderer")
	}
	if r.Config().Count != 12 {
		t.Errorf("Config().Count = %d, want 12", r.Config().Count)
	}
}

func TestSetPositionsLengthMismatch(t *testing.T) {
	host := headless.NewHost(800, 600, 1)
	r := newRenderer(host, 4)

	if err := r.SetPositions(nil); err == nil {
		t.Error("SetPositions on an unmounted renderer should fail")
	}
	if err := r.Mount(headless.NewSurface(), still(3, 50)); err != nil {
		t.Fatal(err)
	}
	if err := r.SetPositions(make([]systems.Point, 2)); err == nil {
		t.Error("SetPositions with 2 points for 3 particles should fail")
	}
}

func TestTelemetryHooks(t *testing.T) {
	host := headless.NewHost(800, 600, 1)
	perf := telemetry.NewPerfCollector(10)
	stats := telemetry.NewCollector(20)
	r := newRenderer(host, 8, field.WithPerf(perf), field.WithStats(stats))

	if err := r.Mount(headless.NewSurface(), field.DefaultConfig()); err != nil {
		t.Fatal(err)
	}
	host.Run(20)
	host.Resize(400, 400, 1)
	host.Advance(time.Second)

	if !stats.ShouldFlush(r.Frame()) {
		t.Fatalf("collector not ready at frame %d", r.Frame())
	}
	w := stats.Flush(r.Frame())
	if w.Frames != 20 || w.Particles != 90 || w.Mounts != 1 || w.Resizes != 1 {
		t.Errorf("window stats = %+v", w)
	}

	ps := perf.Stats()
	for _, phase := range telemetry.Phases {
		if _, ok := ps.PhaseAvg[phase]; !ok {
			t.Errorf("phase %q not timed", phase)
		}
	}
}

func TestInvalidConfigKeepsCurrentMount(t *testing.T) {
	host := headless.NewHost(800, 600, 1)
	r := newRenderer(host, 1)
	surface := headless.NewSurface()
	if err := r.Mount(surface, field.DefaultConfig()); err != nil {
		t.Fatal(err)
	}
	host.Run(3)

	bad := field.DefaultConfig()
	bad.Count = -1
	if err := r.Mount(surface, bad); !errors.Is(err, field.ErrInvalidConfig) {
		t.Fatalf("Mount error = %v, want ErrInvalidConfig", err)
	}
	if err := r.Reconfigure(bad); !errors.Is(err, field.ErrInvalidConfig) {
		t.Fatalf("Reconfigure error = %v, want ErrInvalidConfig", err)
	}

	if !r.Mounted() || r.Config().Count != 90 {
		t.Fatalf("mount changed by invalid config: mounted=%v count=%d", r.Mounted(), r.Config().Count)
	}
	host.Run(2)
	if r.Frame() != 5 {
		t.Errorf("Frame() = %d, want 5: the existing loop should keep running", r.Frame())
	}
}
