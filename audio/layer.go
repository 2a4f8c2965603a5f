package audio

import "github.com/pthm-cable/oikos/config"

// Layer holds the auxiliary sub-modulator state and the per-species
// modulation computed from the most recent snapshot. Until a snapshot
// arrives every species gets Silent modulation. Between snapshots the last
// result is reused, so stale audio holds its last value.
type Layer struct {
	cfg     config.AudioConfig
	mapping [config.NumSpecies]config.AudioMapping

	beat       BeatTracker
	consonance Consonance
	smoother   Smoother

	last    Snapshot
	hasLast bool
	mods    [config.NumSpecies]Modulation
}

// NewLayer creates a layer for cfg.
func NewLayer(cfg *config.Config) *Layer {
	l := &Layer{}
	l.Configure(cfg)
	return l
}

// Configure swaps in new mapping parameters. Sub-modulator history is
// kept; modulation is recomputed from the last snapshot, if any.
func (l *Layer) Configure(cfg *config.Config) {
	l.cfg = cfg.Audio
	l.mapping = cfg.Derived.Mapping
	l.beat.Decay = cfg.Audio.Beat.Decay
	l.smoother.Micro = cfg.Audio.Smoother.Micro
	l.smoother.Meso = cfg.Audio.Smoother.Meso
	l.smoother.Macro = cfg.Audio.Smoother.Macro
	l.recompute()
}

// Advance feeds a new snapshot through the sub-modulators and recomputes
// every species' modulation. Call at most once per tick.
func (l *Layer) Advance(s Snapshot) {
	l.beat.Update(s)
	l.consonance.Update(s)
	l.smoother.Update(s)
	l.last = s
	l.hasLast = true
	l.recompute()
}

func (l *Layer) recompute() {
	if !l.hasLast {
		for i := range l.mods {
			l.mods[i] = Silent(&l.cfg)
		}
		return
	}
	extra := contribution(&l.cfg, &l.beat, &l.consonance, &l.smoother)
	for i := range l.mods {
		l.mods[i] = modulate(l.last, l.mapping[i], &l.cfg, extra)
	}
}

// ForSpecies returns the current modulation of species i.
func (l *Layer) ForSpecies(i int) Modulation {
	if i < 0 || i >= len(l.mods) {
		return Silent(&l.cfg)
	}
	return l.mods[i]
}

// Last returns the most recent snapshot and whether one has arrived.
func (l *Layer) Last() (Snapshot, bool) { return l.last, l.hasLast }

// BeatImpulse returns the beat tracker's current impulse.
func (l *Layer) BeatImpulse() float64 { return l.beat.Impulse() }

// Reset forgets the last snapshot and all sub-modulator history.
func (l *Layer) Reset() {
	l.beat.Reset()
	l.consonance = Consonance{}
	l.smoother.Reset()
	l.last = Snapshot{}
	l.hasLast = false
	l.recompute()
}
