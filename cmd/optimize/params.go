package main

import (
	"github.com/pthm-cable/oikos/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters. All of
// them live in the universal species group.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Physical
			{Name: "speed", Path: "universal.physical.speed", Min: 0.5, Max: 3.0, Default: 1.0},
			{Name: "turn_speed", Path: "universal.physical.turn_speed", Min: 0.05, Max: 1.0, Default: 0.3},
			{Name: "sensor_angle", Path: "universal.physical.sensor_angle", Min: 0.1, Max: 1.2, Default: 0.4},
			{Name: "sensor_distance", Path: "universal.physical.sensor_distance", Min: 3, Max: 25, Default: 9},
			// Semiotic
			{Name: "deposit", Path: "universal.semiotic.deposit", Min: 1, Max: 20, Default: 5},
			{Name: "decay_rate", Path: "universal.semiotic.decay_rate", Min: 0.5, Max: 0.99, Default: 0.9},
			// Resonance
			{Name: "attraction", Path: "universal.resonance.attraction_strength", Min: 0.2, Max: 2.0, Default: 1.0},
			{Name: "repulsion", Path: "universal.resonance.repulsion_strength", Min: -1.5, Max: 0, Default: -0.5},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := v[i]
		if val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig writes clamped values into the universal species group.
// Derived values are recomputed when the engine clones the config.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	v := pv.Clamp(values)
	u := &cfg.Universal

	// Order must match Specs order
	u.Physical.Speed = v[0]
	u.Physical.TurnSpeed = v[1]
	u.Physical.SensorAngle = v[2]
	u.Physical.SensorDistance = v[3]
	u.Semiotic.Deposit = v[4]
	u.Semiotic.DecayRate = v[5]
	u.Resonance.AttractionStrength = v[6]
	u.Resonance.RepulsionStrength = v[7]
}
