package telemetry

import (
	"math"
	"testing"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	values := []float64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}
	d := Summarize(values)

	if math.Abs(d.Mean-5.5) > 0.001 {
		t.Errorf("mean = %v, want 5.5", d.Mean)
	}
	// Population std of 1..10
	if math.Abs(d.Std-2.8723) > 0.001 {
		t.Errorf("std = %v, want ~2.872", d.Std)
	}
	if math.Abs(d.P10-1.9) > 0.001 || math.Abs(d.P50-5.5) > 0.001 || math.Abs(d.P90-9.1) > 0.001 {
		t.Errorf("percentiles = %v / %v / %v, want 1.9 / 5.5 / 9.1", d.P10, d.P50, d.P90)
	}
	if values[0] != 10 {
		t.Error("Summarize must not reorder its input")
	}
}

func TestSummarizeEmpty(t *testing.T) {
	if d := Summarize(nil); d != (Distribution{}) {
		t.Errorf("Summarize(nil) = %+v, want zero", d)
	}
}
