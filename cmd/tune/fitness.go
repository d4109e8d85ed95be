package main

import (
	"io"
	"log/slog"
	"math"
	"math/rand"
	"sync"

	"github.com/pthm-cable/constellation/config"
	"github.com/pthm-cable/constellation/field"
	"github.com/pthm-cable/constellation/field/headless"
	"github.com/pthm-cable/constellation/telemetry"
)

// FitnessEvaluator runs headless fields and scores how close they land to
// the target density.
type FitnessEvaluator struct {
	seeds      []int64
	baseConfig *config.Config
	quiet      *slog.Logger

	mu         sync.Mutex
	lastDegree float64
	lastPairs  float64
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		seeds:      seeds,
		baseConfig: baseCfg,
		quiet:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// Last returns the mean degree and mean pairs per frame of the most recent
// evaluation.
func (fe *FitnessEvaluator) Last() (degree, pairs float64) {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastDegree, fe.lastPairs
}

// Evaluate computes fitness for raw parameter values (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.copyConfig()
	ApplyToConfig(cfg, x)

	results := make([]telemetry.WindowStats, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.run(cfg, s)
		}(i, seed)
	}
	wg.Wait()

	var degree, pairs float64
	for _, r := range results {
		degree += r.MeanDegree
		pairs += r.ConnMean
	}
	n := float64(len(results))
	degree /= n
	pairs /= n

	fe.mu.Lock()
	fe.lastDegree, fe.lastPairs = degree, pairs
	fe.mu.Unlock()

	return Score(degree, pairs, cfg.Tune.TargetDegree, float64(cfg.Tune.PairBudget))
}

// Score is the squared relative distance from the target degree, plus a
// steep penalty once mean pairs per frame exceed the budget.
func Score(degree, pairs, target, budget float64) float64 {
	d := (degree - target) / target
	score := d * d
	if budget > 0 && pairs > budget {
		over := (pairs - budget) / budget
		score += 10 * over * over
	}
	return score
}

// run mounts a field on a headless host and returns the stats for
// cfg.Tune.Frames frames.
func (fe *FitnessEvaluator) run(cfg *config.Config, seed int64) telemetry.WindowStats {
	host := headless.NewHost(cfg.Derived.ScreenW32, cfg.Derived.ScreenH32, 1)
	collector := telemetry.NewCollector(cfg.Tune.Frames)

	r := field.New(host,
		field.WithRand(rand.New(rand.NewSource(seed))),
		field.WithLogger(fe.quiet),
		field.WithStats(collector),
	)
	if err := r.Mount(headless.NewSurface(), field.FromConfig(cfg)); err != nil {
		return telemetry.WindowStats{MeanDegree: math.Inf(1), ConnMean: math.Inf(1)}
	}
	defer r.Unmount()

	host.Run(cfg.Tune.Frames)
	return collector.Flush(r.Frame())
}

func (fe *FitnessEvaluator) copyConfig() *config.Config {
	c := *fe.baseConfig
	return &c
}
