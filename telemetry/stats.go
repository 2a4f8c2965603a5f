package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for one stats window.
// Per-species columns are flattened for CSV export.
type WindowStats struct {
	WindowStartFrame int    `csv:"-"`
	WindowEndFrame   int    `csv:"window_end"`
	Model            string `csv:"model"`
	Agents           int    `csv:"agents"`

	// Trail mass, peak and coverage per species channel
	Mass0     float64 `csv:"mass_0"`
	Mass1     float64 `csv:"mass_1"`
	Mass2     float64 `csv:"mass_2"`
	Peak0     float64 `csv:"peak_0"`
	Peak1     float64 `csv:"peak_1"`
	Peak2     float64 `csv:"peak_2"`
	Coverage0 float64 `csv:"coverage_0"`
	Coverage1 float64 `csv:"coverage_1"`
	Coverage2 float64 `csv:"coverage_2"`

	// Pattern structure of the summed field
	Structure float64 `csv:"structure"` // coefficient of variation
	TrailP50  float64 `csv:"trail_p50"` // over occupied cells
	TrailP90  float64 `csv:"trail_p90"`

	// Agent state
	HeadingOrder float64 `csv:"heading_order"` // 0 = isotropic, 1 = aligned
	ExploreFrac  float64 `csv:"explore_frac"`  // contextual model only
	AmpNormErr   float64 `csv:"amp_norm_err"`  // quantum model only, max |1-norm²|

	// Audio
	AudioFrames int     `csv:"audio_frames"`
	Beats       int     `csv:"beats"`
	SpeedMult0  float64 `csv:"speed_mult_0"`
	SpeedMult1  float64 `csv:"speed_mult_1"`
	SpeedMult2  float64 `csv:"speed_mult_2"`
}

// TotalMass returns the summed trail mass of all species.
func (s WindowStats) TotalMass() float64 {
	return s.Mass0 + s.Mass1 + s.Mass2
}

// ChannelStats summarizes one trail channel.
type ChannelStats struct {
	Mass     float64
	Peak     float64
	Coverage float64 // fraction of cells at or above the threshold
}

// ComputeChannelStats summarizes a channel. values must be non-empty to
// produce non-zero output.
func ComputeChannelStats(values []float64, threshold float64) ChannelStats {
	if len(values) == 0 {
		return ChannelStats{}
	}
	covered := 0
	for _, v := range values {
		if v >= threshold {
			covered++
		}
	}
	return ChannelStats{
		Mass:     floats.Sum(values),
		Peak:     floats.Max(values),
		Coverage: float64(covered) / float64(len(values)),
	}
}

// Structure returns the coefficient of variation of a field: 0 for a
// uniform field, growing as trails concentrate into networks.
func Structure(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean, std := stat.MeanStdDev(values, nil)
	if mean <= 0 {
		return 0
	}
	return std / mean
}

// OccupiedQuantiles returns the 50th and 90th percentiles of the strictly
// positive values.
func OccupiedQuantiles(values []float64) (p50, p90 float64) {
	occupied := make([]float64, 0, len(values)/4)
	for _, v := range values {
		if v > 0 {
			occupied = append(occupied, v)
		}
	}
	if len(occupied) == 0 {
		return 0, 0
	}
	sort.Float64s(occupied)
	return stat.Quantile(0.5, stat.Empirical, occupied, nil),
		stat.Quantile(0.9, stat.Empirical, occupied, nil)
}

// HeadingOrder returns the mean resultant length of a set of angles.
func HeadingOrder(angles []float64) float64 {
	if len(angles) == 0 {
		return 0
	}
	var sx, sy float64
	for _, a := range angles {
		sx += math.Cos(a)
		sy += math.Sin(a)
	}
	n := float64(len(angles))
	return math.Hypot(sx/n, sy/n)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", s.WindowStartFrame),
		slog.Int("window_end", s.WindowEndFrame),
		slog.String("model", s.Model),
		slog.Int("agents", s.Agents),
		slog.Float64("mass_0", s.Mass0),
		slog.Float64("mass_1", s.Mass1),
		slog.Float64("mass_2", s.Mass2),
		slog.Float64("coverage_0", s.Coverage0),
		slog.Float64("coverage_1", s.Coverage1),
		slog.Float64("coverage_2", s.Coverage2),
		slog.Float64("structure", s.Structure),
		slog.Float64("trail_p90", s.TrailP90),
		slog.Float64("heading_order", s.HeadingOrder),
		slog.Float64("explore_frac", s.ExploreFrac),
		slog.Float64("amp_norm_err", s.AmpNormErr),
		slog.Int("audio_frames", s.AudioFrames),
		slog.Int("beats", s.Beats),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
