package audio

import "github.com/pthm-cable/oikos/config"

// BeatTracker holds an impulse that jumps on each beat and decays
// exponentially between beats.
type BeatTracker struct {
	Decay   float64 // per-update retention in (0, 1)
	impulse float64
}

// Update feeds one snapshot and returns the current impulse in [0, 1].
func (b *BeatTracker) Update(s Snapshot) float64 {
	if s.Beat {
		strength := s.BeatStrength
		if strength <= 0 {
			strength = 1
		}
		b.impulse = max(b.impulse, min(strength, 1))
		return b.impulse
	}
	b.impulse *= b.Decay
	return b.impulse
}

// Impulse returns the current impulse without advancing.
func (b *BeatTracker) Impulse() float64 { return b.impulse }

// Reset clears the impulse.
func (b *BeatTracker) Reset() { b.impulse = 0 }

// Consonance estimates how consonant the current sound is from tonal
// stability and harmonic tension.
type Consonance struct {
	value float64
}

// Update feeds one snapshot and returns consonance in [0, 1].
func (c *Consonance) Update(s Snapshot) float64 {
	c.value = clamp01(s.Stability) * (1 - clamp01(s.Tension))
	return c.value
}

// Value returns the last estimate.
func (c *Consonance) Value() float64 { return c.value }

// Dissonance returns a signed signal in [-1, 1]: positive when the sound
// is more dissonant than consonant.
func (c *Consonance) Dissonance() float64 { return 1 - 2*c.value }

// Smoother tracks loudness over three time scales with exponential moving
// averages.
type Smoother struct {
	Micro, Meso, Macro float64 // EMA alphas, fastest first

	micro, meso, macro float64
	primed             bool
}

// Update feeds one snapshot.
func (sm *Smoother) Update(s Snapshot) {
	v := s.Loudness
	if !sm.primed {
		sm.micro, sm.meso, sm.macro = v, v, v
		sm.primed = true
		return
	}
	sm.micro += (v - sm.micro) * sm.Micro
	sm.meso += (v - sm.meso) * sm.Meso
	sm.macro += (v - sm.macro) * sm.Macro
}

// Levels returns the micro, meso and macro averages.
func (sm *Smoother) Levels() (micro, meso, macro float64) {
	return sm.micro, sm.meso, sm.macro
}

// Transient is short-term energy relative to the long-term level.
func (sm *Smoother) Transient() float64 { return sm.micro - sm.macro }

// Drift is mid-term energy relative to the long-term level.
func (sm *Smoother) Drift() float64 { return sm.meso - sm.macro }

// Reset forgets all history.
func (sm *Smoother) Reset() {
	sm.micro, sm.meso, sm.macro = 0, 0, 0
	sm.primed = false
}

// contribution combines enabled sub-modulators into additive input.
func contribution(cfg *config.AudioConfig, beat *BeatTracker, cons *Consonance, sm *Smoother) Contribution {
	var c Contribution
	if cfg.Beat.Enabled {
		imp := beat.Impulse()
		c.MoveSpeed += imp * cfg.Beat.SpeedWeight
		c.DepositRate += imp * cfg.Beat.DepositWeight
	}
	if cfg.Consonance.Enabled {
		d := cons.Dissonance()
		c.TurnRandomness += d * cfg.Consonance.RandomnessWeight
		c.SensorAngle += d * cfg.Consonance.SensorAngleWeight
	}
	if cfg.Smoother.Enabled {
		c.MoveSpeed += sm.Transient() * cfg.Smoother.SpeedWeight
		c.ExplorationBias += sm.Drift() * cfg.Smoother.ExplorationWeight
	}
	return c
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
