package audio

import (
	"log/slog"
	"math"

	"github.com/pthm-cable/oikos/config"
)

// Modulation scales one species' behavior for a tick. Every field is a
// multiplier except TrailAttraction, which is added to attraction strength.
type Modulation struct {
	MoveSpeed       float64
	TurnSpeed       float64
	TurnRandomness  float64
	SensorAngle     float64
	SensorDistance  float64
	DepositRate     float64
	TrailAttraction float64
	ExplorationBias float64
}

// Neutral returns the modulation that leaves behavior unchanged.
func Neutral() Modulation {
	return Modulation{
		MoveSpeed:       1,
		TurnSpeed:       1,
		TurnRandomness:  1,
		SensorAngle:     1,
		SensorDistance:  1,
		DepositRate:     1,
		TrailAttraction: 0,
		ExplorationBias: 1,
	}
}

// Silent returns the modulation used before any audio has arrived:
// neutral, passed through the same safe ranges as real modulation.
func Silent(cfg *config.AudioConfig) Modulation {
	return Neutral().clamp(cfg.Clamp)
}

// Contribution is additive input from the auxiliary sub-modulators,
// applied on top of the base mapping before the influence blend.
type Contribution struct {
	MoveSpeed       float64
	TurnRandomness  float64
	SensorAngle     float64
	DepositRate     float64
	ExplorationBias float64
}

// Modulate maps a snapshot to a modulation using only the base mapping.
func Modulate(s Snapshot, m config.AudioMapping, cfg *config.AudioConfig) Modulation {
	return modulate(s, m, cfg, Contribution{})
}

func modulate(s Snapshot, m config.AudioMapping, cfg *config.AudioConfig, extra Contribution) Modulation {
	raw := Neutral()
	raw.MoveSpeed += weighted(s, m.MoveSpeed) + extra.MoveSpeed
	raw.TurnSpeed += weighted(s, m.TurnSpeed)
	raw.TurnRandomness += weighted(s, m.TurnRandomness) + extra.TurnRandomness
	raw.SensorAngle += weighted(s, m.SensorAngle) + extra.SensorAngle
	raw.SensorDistance += weighted(s, m.SensorDistance)
	raw.DepositRate += weighted(s, m.DepositRate) + extra.DepositRate
	raw.TrailAttraction += weighted(s, m.TrailAttraction)
	raw.ExplorationBias += weighted(s, m.ExplorationBias) + extra.ExplorationBias

	return raw.blend(cfg.GlobalInfluence).clamp(cfg.Clamp)
}

// weighted sums curve-shaped feature contributions. Unknown features
// contribute nothing.
func weighted(s Snapshot, terms []config.FeatureWeight) float64 {
	var sum float64
	for _, t := range terms {
		v, ok := s.Feature(t.Feature)
		if !ok {
			continue
		}
		sum += t.Weight * shape(v, t.Curve)
	}
	return sum
}

// shape applies a power-law curve; curve <= 0 is linear.
func shape(v, curve float64) float64 {
	if curve <= 0 || curve == 1 {
		return v
	}
	if v <= 0 {
		return 0
	}
	return math.Pow(v, curve)
}

// blend pulls every output toward neutral: neutral + (raw-neutral)*influence.
func (m Modulation) blend(influence float64) Modulation {
	n := Neutral()
	mix := func(neutral, raw float64) float64 {
		if influence == 0 {
			return neutral
		}
		return neutral + (raw-neutral)*influence
	}
	return Modulation{
		MoveSpeed:       mix(n.MoveSpeed, m.MoveSpeed),
		TurnSpeed:       mix(n.TurnSpeed, m.TurnSpeed),
		TurnRandomness:  mix(n.TurnRandomness, m.TurnRandomness),
		SensorAngle:     mix(n.SensorAngle, m.SensorAngle),
		SensorDistance:  mix(n.SensorDistance, m.SensorDistance),
		DepositRate:     mix(n.DepositRate, m.DepositRate),
		TrailAttraction: mix(n.TrailAttraction, m.TrailAttraction),
		ExplorationBias: mix(n.ExplorationBias, m.ExplorationBias),
	}
}

// clamp limits every output to its safe range. NaN collapses to the
// lower bound.
func (m Modulation) clamp(c config.ModulationClamp) Modulation {
	lim := func(r config.Range, v float64) float64 {
		if math.IsNaN(v) {
			return r.Min
		}
		return r.Clamp(v)
	}
	return Modulation{
		MoveSpeed:       lim(c.MoveSpeed, m.MoveSpeed),
		TurnSpeed:       lim(c.TurnSpeed, m.TurnSpeed),
		TurnRandomness:  lim(c.TurnRandomness, m.TurnRandomness),
		SensorAngle:     lim(c.SensorAngle, m.SensorAngle),
		SensorDistance:  lim(c.SensorDistance, m.SensorDistance),
		DepositRate:     lim(c.DepositRate, m.DepositRate),
		TrailAttraction: lim(c.TrailAttraction, m.TrailAttraction),
		ExplorationBias: lim(c.ExplorationBias, m.ExplorationBias),
	}
}

// LogValue implements slog.LogValuer.
func (m Modulation) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("move_speed", m.MoveSpeed),
		slog.Float64("turn_speed", m.TurnSpeed),
		slog.Float64("turn_randomness", m.TurnRandomness),
		slog.Float64("sensor_angle", m.SensorAngle),
		slog.Float64("sensor_distance", m.SensorDistance),
		slog.Float64("deposit_rate", m.DepositRate),
		slog.Float64("trail_attraction", m.TrailAttraction),
		slog.Float64("exploration_bias", m.ExplorationBias),
	)
}
