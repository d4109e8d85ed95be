package telemetry

// FrameSample is what one field frame reports to the Collector.
type FrameSample struct {
	Frame         uint64
	Particles     int
	Connections   int
	Cells         int
	OccupiedCells int
	Width         float32
	Height        float32
	Radius        float32
}

// Collector accumulates frame samples within windows and produces WindowStats.
// A nil *Collector is valid and records nothing.
type Collector struct {
	windowFrames uint64

	// Current window tracking
	windowStartFrame uint64
	last             FrameSample
	frames           int

	connections []float64
	occupied    []float64
	connMax     int

	// Event counters for current window
	resizes int
	mounts  int
}

// NewCollector creates a new stats collector flushing every windowFrames frames.
func NewCollector(windowFrames int) *Collector {
	if windowFrames < 1 {
		windowFrames = 1
	}
	return &Collector{
		windowFrames: uint64(windowFrames),
		connections:  make([]float64, 0, windowFrames),
		occupied:     make([]float64, 0, windowFrames),
	}
}

// RecordFrame records one rendered frame.
func (c *Collector) RecordFrame(s FrameSample) {
	if c == nil {
		return
	}
	c.last = s
	c.frames++
	c.connections = append(c.connections, float64(s.Connections))
	c.occupied = append(c.occupied, float64(s.OccupiedCells))
	if s.Connections > c.connMax {
		c.connMax = s.Connections
	}
}

// RecordResize records an applied (post-debounce) resize.
func (c *Collector) RecordResize() {
	if c == nil {
		return
	}
	c.resizes++
}

// RecordMount records a successful mount or reconfigure.
func (c *Collector) RecordMount() {
	if c == nil {
		return
	}
	c.mounts++
}

// ShouldFlush returns true if enough frames have passed to flush the window.
func (c *Collector) ShouldFlush(frame uint64) bool {
	if c == nil {
		return false
	}
	return frame-c.windowStartFrame >= c.windowFrames
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(frame uint64) WindowStats {
	if c == nil {
		return WindowStats{WindowEndFrame: frame}
	}

	conn := Summarize(c.connections)
	occ := Summarize(c.occupied)

	var degree float64
	if c.last.Particles > 0 {
		degree = 2 * conn.Mean / float64(c.last.Particles)
	}

	stats := WindowStats{
		WindowStartFrame: c.windowStartFrame,
		WindowEndFrame:   frame,
		Frames:           c.frames,

		Particles: c.last.Particles,
		Width:     c.last.Width,
		Height:    c.last.Height,
		Radius:    c.last.Radius,

		ConnMean: conn.Mean,
		ConnStd:  conn.Std,
		ConnP10:  conn.P10,
		ConnP50:  conn.P50,
		ConnP90:  conn.P90,
		ConnMax:  c.connMax,

		MeanDegree: degree,

		OccupiedCellsMean: occ.Mean,
		Cells:             c.last.Cells,

		Resizes: c.resizes,
		Mounts:  c.mounts,
	}

	// Reset for next window
	c.windowStartFrame = frame
	c.frames = 0
	c.connections = c.connections[:0]
	c.occupied = c.occupied[:0]
	c.connMax = 0
	c.resizes = 0
	c.mounts = 0

	return stats
}

// WindowFrames returns the number of frames per window.
func (c *Collector) WindowFrames() int {
	if c == nil {
		return 0
	}
	return int(c.windowFrames)
}
