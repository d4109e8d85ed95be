package main

import "github.com/pthm-cable/constellation/config"

// Param is one tuned field value and its search bounds.
type Param struct {
	Name     string
	Min, Max float64
}

func (p Param) clamp(v float64) float64 {
	return min(max(v, p.Min), p.Max)
}

// Params are searched in this order; ApplyToConfig and ExtractFromConfig
// follow it.
var Params = []Param{
	{Name: "count", Min: 10, Max: 600},
	{Name: "distance_multiplier", Min: 0.2, Max: 3.0},
}

// Normalize maps raw values onto [0,1] per parameter, the scale CMA-ES
// searches on.
func Normalize(raw []float64) []float64 {
	x := make([]float64, len(Params))
	for i, p := range Params {
		x[i] = (raw[i] - p.Min) / (p.Max - p.Min)
	}
	return x
}

// Denormalize maps search coordinates back to raw values. CMA-ES samples
// outside [0,1], so results are clamped to the bounds.
func Denormalize(x []float64) []float64 {
	raw := make([]float64, len(Params))
	for i, p := range Params {
		raw[i] = p.clamp(p.Min + x[i]*(p.Max-p.Min))
	}
	return raw
}

// ApplyToConfig writes raw values into cfg, clamped to bounds, and
// refreshes derived values.
func ApplyToConfig(cfg *config.Config, raw []float64) {
	cfg.Field.Count = int(Params[0].clamp(raw[0]) + 0.5)
	cfg.Field.DistanceMultiplier = Params[1].clamp(raw[1])
	cfg.ComputeDerived()
}

// ExtractFromConfig reads the tuned values out of cfg.
func ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{float64(cfg.Field.Count), cfg.Field.DistanceMultiplier}
}
