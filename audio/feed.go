package audio

import "github.com/pthm-cable/oikos/config"

// Feed drives an Analyzer from a Synth at a fixed tick rate. Each Next call
// advances the synth by one tick's worth of samples and analyzes the most
// recent frame, so frames overlap when a tick is shorter than a frame.
type Feed struct {
	synth    *Synth
	analyzer *Analyzer
	hop      int
	window   []float64 // last FrameSize samples, oldest first
}

// NewFeed creates a feed producing one snapshot per tick at ticksPerSecond.
func NewFeed(cfg config.AnalyzerConfig, bpm float64, ticksPerSecond int, seed int64) *Feed {
	a := NewAnalyzer(cfg)
	s := NewSynth(a.cfg.SampleRate, bpm, seed)
	if ticksPerSecond <= 0 {
		ticksPerSecond = 60
	}
	hop := a.cfg.SampleRate / ticksPerSecond
	if hop < 1 {
		hop = 1
	}
	return &Feed{
		synth:    s,
		analyzer: a,
		hop:      hop,
		window:   make([]float64, a.FrameSize()),
	}
}

// Hop returns the number of synth samples consumed per tick.
func (f *Feed) Hop() int { return f.hop }

// Next advances one tick and returns its snapshot.
func (f *Feed) Next() Snapshot {
	fresh := f.synth.Next(f.hop)
	n := len(f.window)
	if len(fresh) >= n {
		copy(f.window, fresh[len(fresh)-n:])
	} else {
		copy(f.window, f.window[len(fresh):])
		copy(f.window[n-len(fresh):], fresh)
	}
	return f.analyzer.Analyze(f.window)
}

// Reset rewinds the synth and clears analyzer history.
func (f *Feed) Reset() {
	f.synth.Reset()
	f.analyzer = NewAnalyzer(f.analyzer.cfg)
	clear(f.window)
}
