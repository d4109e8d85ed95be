package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated field statistics for a window of frames.
type WindowStats struct {
	WindowStartFrame uint64 `csv:"-"`
	WindowEndFrame   uint64 `csv:"window_end"`
	Frames           int    `csv:"frames"`

	// Field shape at window end
	Particles int     `csv:"particles"`
	Width     float32 `csv:"width"`
	Height    float32 `csv:"height"`
	Radius    float32 `csv:"radius"`

	// Connections per frame
	ConnMean float64 `csv:"conn_mean"`
	ConnStd  float64 `csv:"conn_std"`
	ConnP10  float64 `csv:"conn_p10"`
	ConnP50  float64 `csv:"conn_p50"`
	ConnP90  float64 `csv:"conn_p90"`
	ConnMax  int     `csv:"conn_max"`

	// Mean connections per particle (2 * pairs / n)
	MeanDegree float64 `csv:"mean_degree"`

	// Grid occupancy
	OccupiedCellsMean float64 `csv:"occupied_cells_mean"`
	Cells             int     `csv:"cells"`

	// Lifecycle events during window
	Resizes int `csv:"resizes"`
	Mounts  int `csv:"mounts"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Distribution summarises a sample: mean, population standard deviation and
// the 10th, 50th and 90th percentiles.
type Distribution struct {
	Mean, Std     float64
	P10, P50, P90 float64
}

// Summarize computes a Distribution. values is not modified.
func Summarize(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}

	mean, variance := stat.PopMeanVariance(values, nil)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return Distribution{
		Mean: mean,
		Std:  math.Sqrt(variance),
		P10:  Percentile(sorted, 0.10),
		P50:  Percentile(sorted, 0.50),
		P90:  Percentile(sorted, 0.90),
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("window_start", s.WindowStartFrame),
		slog.Uint64("window_end", s.WindowEndFrame),
		slog.Int("frames", s.Frames),
		slog.Int("particles", s.Particles),
		slog.Float64("width", float64(s.Width)),
		slog.Float64("height", float64(s.Height)),
		slog.Float64("radius", float64(s.Radius)),
		slog.Float64("conn_mean", s.ConnMean),
		slog.Float64("conn_std", s.ConnStd),
		slog.Float64("conn_p10", s.ConnP10),
		slog.Float64("conn_p50", s.ConnP50),
		slog.Float64("conn_p90", s.ConnP90),
		slog.Int("conn_max", s.ConnMax),
		slog.Float64("mean_degree", s.MeanDegree),
		slog.Float64("occupied_cells_mean", s.OccupiedCellsMean),
		slog.Int("cells", s.Cells),
		slog.Int("resizes", s.Resizes),
		slog.Int("mounts", s.Mounts),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
