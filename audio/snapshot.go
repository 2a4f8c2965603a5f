// Package audio turns analyzed music features into per-species behavior
// modulation, and provides a reference FFT analyzer and a synthetic source.
package audio

import "log/slog"

// Snapshot is one frame of analyzed audio features. Continuous features are
// normalized to [0, 1].
type Snapshot struct {
	Bass         float64
	Mid          float64
	High         float64
	Rhythm       float64 // beat regularity over the recent window
	Beat         bool    // onset detected this frame
	BeatStrength float64
	Stability    float64 // tonal stability, 1 = pure tone
	Tension      float64 // harmonic tension, 1 = harsh
	Loudness     float64
	Crescendo    bool // loudness is rising
}

// Feature names accepted in mapping configs.
const (
	FeatureBass         = "bass"
	FeatureMid          = "mid"
	FeatureHigh         = "high"
	FeatureRhythm       = "rhythm"
	FeatureBeat         = "beat"
	FeatureBeatStrength = "beat_strength"
	FeatureStability    = "stability"
	FeatureTension      = "tension"
	FeatureLoudness     = "loudness"
	FeatureCrescendo    = "crescendo"
)

// Feature returns the named feature value. Booleans map to 0 or 1.
// Unknown names report false.
func (s Snapshot) Feature(name string) (float64, bool) {
	switch name {
	case FeatureBass:
		return s.Bass, true
	case FeatureMid:
		return s.Mid, true
	case FeatureHigh:
		return s.High, true
	case FeatureRhythm:
		return s.Rhythm, true
	case FeatureBeat:
		return boolFeature(s.Beat), true
	case FeatureBeatStrength:
		return s.BeatStrength, true
	case FeatureStability:
		return s.Stability, true
	case FeatureTension:
		return s.Tension, true
	case FeatureLoudness:
		return s.Loudness, true
	case FeatureCrescendo:
		return boolFeature(s.Crescendo), true
	}
	return 0, false
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// LogValue implements slog.LogValuer.
func (s Snapshot) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("bass", s.Bass),
		slog.Float64("mid", s.Mid),
		slog.Float64("high", s.High),
		slog.Float64("rhythm", s.Rhythm),
		slog.Bool("beat", s.Beat),
		slog.Float64("stability", s.Stability),
		slog.Float64("tension", s.Tension),
		slog.Float64("loudness", s.Loudness),
	)
}
