package audio

import (
	"math"
	"math/rand"
)

// Chords the synth alternates between, in Hz.
var (
	consonantChord = [3]float64{220.00, 277.18, 329.63} // A major
	dissonantChord = [3]float64{220.00, 233.08, 311.13} // A, Bb, Eb
)

// Synth generates a deterministic mono test signal: a kick drum on every
// beat, noise hats on the off-beats, and a pad that swells over eight bars
// and turns dissonant every other four bars.
type Synth struct {
	SampleRate int
	BPM        float64

	seed int64
	rng  *rand.Rand
	t    int // samples generated so far
}

// NewSynth creates a synth. The seed only affects the hi-hat noise.
func NewSynth(sampleRate int, bpm float64, seed int64) *Synth {
	if sampleRate <= 0 {
		sampleRate = 44100
	}
	if bpm <= 0 {
		bpm = 120
	}
	return &Synth{SampleRate: sampleRate, BPM: bpm, seed: seed, rng: rand.New(rand.NewSource(seed))}
}

// Next returns the next n samples in [-1, 1].
func (s *Synth) Next(n int) []float64 {
	out := make([]float64, n)
	rate := float64(s.SampleRate)
	beatLen := 60 / s.BPM // seconds

	for i := range out {
		t := float64(s.t) / rate
		beat := t / beatLen
		sinceBeat := (beat - math.Floor(beat)) * beatLen
		bar := math.Floor(beat / 4)

		kick := 0.8 * math.Exp(-sinceBeat/0.05) * math.Sin(2*math.Pi*55*sinceBeat)

		var hat float64
		offBeat := sinceBeat - beatLen/2
		if offBeat >= 0 {
			hat = 0.1 * math.Exp(-offBeat/0.01) * (s.rng.Float64()*2 - 1)
		}

		chord := consonantChord
		if int(bar/4)%2 == 1 {
			chord = dissonantChord
		}
		swell := 0.5 - 0.5*math.Cos(2*math.Pi*bar/8)
		var pad float64
		for _, f := range chord {
			pad += math.Sin(2 * math.Pi * f * t)
		}
		pad *= 0.05 + 0.1*swell

		out[i] = math.Max(-1, math.Min(1, kick+hat+pad))
		s.t++
	}
	return out
}

// Reset rewinds the synth to time zero.
func (s *Synth) Reset() {
	s.t = 0
	s.rng = rand.New(rand.NewSource(s.seed))
}
