package game

import "log/slog"

// flushTelemetry closes the stats window once enough frames have run.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.frames) {
		return
	}

	stats := g.collector.Flush(g.frames)
	perfStats := g.perf.Stats()

	if g.opts.LogStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if g.output != nil {
		if err := g.output.WriteStats(stats); err != nil {
			slog.Error("failed to write stats", "error", err)
		}
		if err := g.output.WritePerf(perfStats, stats.WindowEndFrame); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}
