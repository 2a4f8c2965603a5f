package audio

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/oikos/config"
)

// Analyzer history sizes.
const (
	fluxHistory = 43 // ~1s of 1024-sample frames at 44.1kHz
	beatHistory = 8  // beat onsets kept for rhythm regularity
	minFluxHist = 8  // frames needed before beats can fire
	minBeatGap  = 4  // frames after a beat during which no beat fires
)

// onsetRatio is the minimum share of the current bass energy that must be
// new for a frame to count as an onset.
const onsetRatio = 0.3

// Analyzer converts mono PCM frames into feature snapshots: band energies
// from a real FFT, onset detection on bass flux, spectral flatness and
// centroid for stability and tension, and loudness trend.
type Analyzer struct {
	cfg config.AnalyzerConfig

	fft    *fourier.FFT
	window []float64
	frame  []float64
	coeffs []complex128
	power  []float64

	prevBass float64
	flux     []float64 // ring buffer
	fluxPos  int
	fluxN    int

	frameIdx  int
	beatAt    []int // frame indices of recent beats, oldest first
	loudFast  float64
	loudSlow  float64
	loudReady bool
}

// NewAnalyzer creates an analyzer for frames of cfg.FrameSize samples.
func NewAnalyzer(cfg config.AnalyzerConfig) *Analyzer {
	n := cfg.FrameSize
	if n < 16 {
		n = 16
	}
	cfg.FrameSize = n
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 44100
	}

	window := make([]float64, n)
	for i := range window {
		window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}

	return &Analyzer{
		cfg:    cfg,
		fft:    fourier.NewFFT(n),
		window: window,
		frame:  make([]float64, n),
		coeffs: make([]complex128, n/2+1),
		power:  make([]float64, n/2+1),
		flux:   make([]float64, fluxHistory),
	}
}

// FrameSize returns the number of samples consumed per Analyze call.
func (a *Analyzer) FrameSize() int { return a.cfg.FrameSize }

// Analyze processes one frame. Shorter input is zero padded and longer
// input truncated.
func (a *Analyzer) Analyze(samples []float64) Snapshot {
	n := a.cfg.FrameSize
	defer func() { a.frameIdx++ }()

	var sumSq float64
	for i := 0; i < n; i++ {
		var v float64
		if i < len(samples) {
			v = samples[i]
		}
		sumSq += v * v
		a.frame[i] = v * a.window[i]
	}
	loudness := clamp01(math.Sqrt(sumSq/float64(n)) * math.Sqrt2)

	a.coeffs = a.fft.Coefficients(a.coeffs, a.frame)
	for k, c := range a.coeffs {
		a.power[k] = real(c)*real(c) + imag(c)*imag(c)
	}
	a.power[0] = 0 // DC carries no musical information

	var bass, mid, high, weighted float64
	rate := float64(a.cfg.SampleRate)
	for k := 1; k < len(a.power); k++ {
		f := a.fft.Freq(k) * rate
		p := a.power[k]
		switch {
		case f < a.cfg.BassMaxHz:
			bass += p
		case f < a.cfg.MidMaxHz:
			mid += p
		default:
			high += p
		}
		weighted += f * p
	}
	total := floats.Sum(a.power)

	s := Snapshot{Loudness: loudness}
	if total > 0 {
		s.Bass = bass / total
		s.Mid = mid / total
		s.High = high / total
		centroid := weighted / total
		if a.cfg.MidMaxHz > 0 {
			s.Tension = clamp01(centroid / a.cfg.MidMaxHz)
		}
		s.Stability = 1 - flatness(a.power[1:])
	}

	a.detectBeat(bass, &s)
	a.trackLoudness(loudness, &s)
	return s
}

// detectBeat fires when bass flux exceeds mean + k*std of recent flux.
func (a *Analyzer) detectBeat(bass float64, s *Snapshot) {
	flux := math.Max(0, bass-a.prevBass)
	a.prevBass = bass

	if a.fluxN >= minFluxHist {
		hist := a.flux[:a.fluxN]
		mean, std := stat.MeanStdDev(hist, nil)
		threshold := mean + a.cfg.BeatK*std
		refractory := len(a.beatAt) > 0 && a.frameIdx-a.beatAt[len(a.beatAt)-1] < minBeatGap
		if flux > 0 && flux > threshold && flux > onsetRatio*bass && !refractory {
			s.Beat = true
			s.BeatStrength = clamp01((flux - threshold) / (threshold + 1e-12))
			a.beatAt = append(a.beatAt, a.frameIdx)
			if len(a.beatAt) > beatHistory {
				a.beatAt = a.beatAt[1:]
			}
		}
	}

	a.flux[a.fluxPos] = flux
	a.fluxPos = (a.fluxPos + 1) % len(a.flux)
	if a.fluxN < len(a.flux) {
		a.fluxN++
	}

	s.Rhythm = a.regularity()
}

// regularity is 1 minus the coefficient of variation of recent inter-beat
// intervals; 0 until three intervals are known.
func (a *Analyzer) regularity() float64 {
	if len(a.beatAt) < 4 {
		return 0
	}
	intervals := make([]float64, len(a.beatAt)-1)
	for i := range intervals {
		intervals[i] = float64(a.beatAt[i+1] - a.beatAt[i])
	}
	mean, std := stat.MeanStdDev(intervals, nil)
	if mean <= 0 {
		return 0
	}
	return clamp01(1 - std/mean)
}

// trackLoudness marks a crescendo while fast loudness runs ahead of slow.
func (a *Analyzer) trackLoudness(loudness float64, s *Snapshot) {
	if !a.loudReady {
		a.loudFast, a.loudSlow = loudness, loudness
		a.loudReady = true
		return
	}
	a.loudFast += (loudness - a.loudFast) * 0.3
	a.loudSlow += (loudness - a.loudSlow) * 0.05
	s.Crescendo = a.loudFast-a.loudSlow > 0.05
}

// flatness is the ratio of geometric to arithmetic mean power, in [0, 1].
// 1 is white noise, near 0 is a pure tone.
func flatness(power []float64) float64 {
	const eps = 1e-12
	var logSum, sum float64
	for _, p := range power {
		logSum += math.Log(p + eps)
		sum += p + eps
	}
	n := float64(len(power))
	if n == 0 || sum <= 0 {
		return 0
	}
	return clamp01(math.Exp(logSum/n) / (sum / n))
}
