package systems

import "github.com/pthm-cable/oikos/config"

// Resonance converts trail values at a sensor cell into a single steering
// signal for one species. Own-species trail is scaled by the attraction
// strength; other species' trails are scaled by the repulsion strength or,
// when the matrix is enabled, by the ordered pair entry.
type Resonance struct {
	attraction [config.NumSpecies]float32
	// coef[self][other] multiplies another species' trail. coef[s][s]
	// multiplies own trail on top of attraction.
	coef  [config.NumSpecies][config.NumSpecies]float32
	cross [config.NumSpecies]bool
}

// NewResonance builds coupling coefficients from resolved species params.
func NewResonance(species [config.NumSpecies]config.SpeciesParams) *Resonance {
	r := &Resonance{}
	for s, sp := range species {
		rp := sp.Resonance
		r.attraction[s] = float32(rp.AttractionStrength)
		r.cross[s] = rp.CrossSpecies
		for o := 0; o < config.NumSpecies; o++ {
			switch {
			case rp.UseMatrix:
				r.coef[s][o] = float32(rp.Matrix[s][o])
			case o == s:
				r.coef[s][o] = 1
			default:
				r.coef[s][o] = float32(rp.RepulsionStrength)
			}
		}
	}
	return r
}

// Sense returns the resonance signal for species s at (x, y).
// attractionDelta is added to the species' attraction strength.
func (r *Resonance) Sense(tf *TrailField, s int, x, y, attractionDelta float32) float32 {
	i, ok := tf.index(x, y)
	if !ok || s < 0 || s >= config.NumSpecies || !tf.validSpecies(s) {
		return 0
	}
	front := tf.trail[tf.cur]

	v := front[s][i] * (r.attraction[s] + attractionDelta) * r.coef[s][s]
	if !r.cross[s] {
		return v
	}
	for o := 0; o < tf.species && o < config.NumSpecies; o++ {
		if o == s {
			continue
		}
		v += front[o][i] * r.coef[s][o]
	}
	return v
}

// SensePhase returns the resonance signal and own-species phase at (x, y).
func (r *Resonance) SensePhase(tf *TrailField, s int, x, y, attractionDelta float32) (float32, float32) {
	return r.Sense(tf, s, x, y, attractionDelta), tf.PhaseAt(s, x, y)
}
