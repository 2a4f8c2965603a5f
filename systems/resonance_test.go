package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/oikos/config"
)

func resonanceSpecies(mutate func(p *config.ResonanceParams)) [config.NumSpecies]config.SpeciesParams {
	var species [config.NumSpecies]config.SpeciesParams
	for i := range species {
		rp := config.ResonanceParams{
			AttractionStrength: 1,
			RepulsionStrength:  -0.5,
			CrossSpecies:       true,
			Matrix: [][]float64{
				{1, 0.25, -1},
				{0.5, 1, 0},
				{-2, 2, 1},
			},
		}
		if mutate != nil {
			mutate(&rp)
		}
		species[i].Resonance = rp
	}
	return species
}

func TestResonanceSense(t *testing.T) {
	tf := NewTrailField(8, 3, false)
	tf.Deposit(0, 2, 2, 10, 255)
	tf.Deposit(1, 2, 2, 4, 255)
	tf.Deposit(2, 2, 2, 2, 255)

	tests := []struct {
		name   string
		mutate func(p *config.ResonanceParams)
		s      int
		delta  float32
		want   float32
	}{
		{"own plus repulsion", nil, 0, 0, 10 - 0.5*4 - 0.5*2},
		{"attraction delta", nil, 0, 0.5, 15 - 0.5*4 - 0.5*2},
		{"cross species off", func(p *config.ResonanceParams) { p.CrossSpecies = false }, 0, 0, 10},
		{"matrix row 0", func(p *config.ResonanceParams) { p.UseMatrix = true }, 0, 0, 10 + 0.25*4 - 1*2},
		{"matrix row 2", func(p *config.ResonanceParams) { p.UseMatrix = true }, 2, 0, 2 - 2*10 + 2*4},
		{"negative attraction", func(p *config.ResonanceParams) {
			p.AttractionStrength = -1
			p.CrossSpecies = false
		}, 1, 0, -4},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := NewResonance(resonanceSpecies(tc.mutate))
			got := r.Sense(tf, tc.s, 2, 2, tc.delta)
			if !approx(float64(got), float64(tc.want), 1e-5) {
				t.Errorf("Sense: got %f, want %f", got, tc.want)
			}
		})
	}
}

func TestResonanceOutOfGrid(t *testing.T) {
	tf := NewTrailField(8, 3, true)
	tf.Deposit(0, 0, 0, 10, 255)
	r := NewResonance(resonanceSpecies(nil))

	for _, pos := range [][2]float32{{-1, 0}, {8, 0}, {0, 100}, {float32(math.NaN()), 0}} {
		v, ph := r.SensePhase(tf, 0, pos[0], pos[1], 0)
		if v != 0 || ph != 0 {
			t.Errorf("SensePhase(%v) = (%f, %f), want zeros", pos, v, ph)
		}
	}
}

func TestSensePhaseReadsOwnPhase(t *testing.T) {
	tf := NewTrailField(8, 3, true)
	tf.DepositPhase(1, 5, 5, 10, 255, 2)
	tf.DepositPhase(0, 5, 5, 10, 255, 1)
	r := NewResonance(resonanceSpecies(nil))

	_, ph := r.SensePhase(tf, 1, 5, 5, 0)
	if ph != 2 {
		t.Errorf("phase: got %f, want 2", ph)
	}
}
