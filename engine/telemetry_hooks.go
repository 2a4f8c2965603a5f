package engine

import (
	"log/slog"
	"math"

	"github.com/pthm-cable/oikos/components"
	"github.com/pthm-cable/oikos/config"
	"github.com/pthm-cable/oikos/systems"
	"github.com/pthm-cable/oikos/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (e *Engine) flushTelemetry() {
	if !e.collector.ShouldFlush(e.frame) {
		return
	}

	stats := e.collector.Flush(e.frame, e.sample())
	perfStats := e.perf.Stats()
	e.lastStats = stats

	if e.opts.StatsCallback != nil {
		e.opts.StatsCallback(stats)
	}

	if e.opts.LogStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := e.output.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := e.output.WritePerf(perfStats, stats.WindowEndFrame); err != nil {
		slog.Error("failed to write perf", "error", err)
	}

	for _, bm := range e.bookmarkDetector.Check(stats) {
		if e.opts.LogStats {
			bm.LogBookmark()
		}
		if err := e.output.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
	}
}

// sample captures the field and agent state for a stats window.
func (e *Engine) sample() telemetry.Sample {
	s := telemetry.Sample{Model: string(e.strategy.Kind())}

	for ch := range s.Trails {
		src := e.field.Channel(ch)
		dst := make([]float64, len(src))
		for i, v := range src {
			dst[i] = float64(v)
		}
		s.Trails[ch] = dst
	}

	query := e.filter.Query()
	for query.Next() {
		_, mot, _ := query.Get()
		s.Headings = append(s.Headings, float64(mot.Angle))
	}
	s.Agents = len(s.Headings)

	ctxQuery := e.contextFilter.Query()
	for ctxQuery.Next() {
		ctx := ctxQuery.Get()
		s.ContextCount++
		if ctx.Mode == components.ModeExplore {
			s.ExploreCount++
		}
	}

	qQuery := e.quantumFilter.Query()
	for qQuery.Next() {
		st := qQuery.Get()
		amp := systems.Amplitudes(st.Amp)
		if dev := math.Abs(1 - amp.Norm2()); dev > s.AmpNormErr {
			s.AmpNormErr = dev
		}
	}

	for sp := 0; sp < config.NumSpecies; sp++ {
		s.SpeedMult[sp] = e.audio.ForSpecies(sp).MoveSpeed
	}
	return s
}
