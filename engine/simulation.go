package engine

import (
	"math"

	"github.com/pthm-cable/oikos/audio"
	"github.com/pthm-cable/oikos/config"
	"github.com/pthm-cable/oikos/systems"
	"github.com/pthm-cable/oikos/telemetry"
)

const twoPi = 2 * math.Pi

// Update advances the simulation by exactly one tick.
func (e *Engine) Update() {
	e.perf.StartTick()

	// 1. Audio: consume the latest snapshot, if any, and derive this
	// tick's per-species parameters. Without a new snapshot the previous
	// modulation holds.
	e.perf.StartPhase(telemetry.PhaseAudio)
	if e.hasPending {
		e.audio.Advance(e.pending)
		e.collector.RecordAudio(e.pending.Beat)
		e.hasPending = false
	}
	e.updateStepParams()

	// 2. Agents: sense, decide, move, deposit
	e.perf.StartPhase(telemetry.PhaseAgents)
	e.updateAgents()

	// 3. Field dynamics on their own cadence
	e.perf.StartPhase(telemetry.PhaseDiffusion)
	if e.frame%e.cfg.Grid.DiffusionFreq == 0 {
		e.diffuse()
	}

	e.frame++

	// 4. Telemetry window
	e.perf.StartPhase(telemetry.PhaseTelemetry)
	e.flushTelemetry()

	e.perf.EndTick()
}

// updateStepParams combines each species' resolved parameters with its
// current audio modulation.
func (e *Engine) updateStepParams() {
	for s := range e.params {
		e.params[s] = stepParams(&e.cfg.Derived.Species[s], e.audio.ForSpecies(s))
	}
}

// stepParams applies modulation m to species parameters sp.
func stepParams(sp *config.SpeciesParams, m audio.Modulation) systems.StepParams {
	return systems.StepParams{
		Speed:          float32(sp.Physical.Speed * m.MoveSpeed),
		TurnSpeed:      float32(sp.Physical.TurnSpeed * m.TurnSpeed),
		TurnRandomness: float32(m.TurnRandomness),
		SensorAngle:    float32(sp.Physical.SensorAngle * m.SensorAngle),
		SensorDistance: float32(sp.Physical.SensorDistance * m.SensorDistance),

		Deposit:    float32(sp.Semiotic.Deposit * m.DepositRate),
		Saturation: float32(sp.Semiotic.TrailSaturation),

		AttractionDelta: float32(m.TrailAttraction),
		ExplorationBias: float32(m.ExplorationBias),

		ChaosInterval: sp.Temporal.ChaosInterval,
		ChaosStrength: float32(sp.Temporal.ChaosStrength),
		OscAmplitude:  float32(sp.Temporal.OscillationAmplitude),
		OscRate:       float32(sp.Temporal.OscillationRate),
	}
}

// updateAgents steps every agent once. Agents read and deposit into the
// front trail buffer, which diffusion does not touch until all agents
// have moved.
func (e *Engine) updateAgents() {
	e.env.Frame = e.frame

	query := e.filter.Query()
	for query.Next() {
		pos, mot, sp := query.Get()
		a := systems.Agent{
			Entity:  query.Entity(),
			Pos:     pos,
			Motion:  mot,
			Species: int(sp.ID),
		}
		if a.Species >= config.NumSpecies {
			continue
		}
		e.stepper.Step(&e.env, &a, &e.params[a.Species])
	}
}

// diffuse runs one diffusion pass over every trail channel, and phase
// evolution when the active model tracks phase.
func (e *Engine) diffuse() {
	var diff [config.NumSpecies]systems.DiffusionParams
	for s := range diff {
		sem := &e.cfg.Derived.Species[s].Semiotic
		diff[s] = systems.DiffusionParams{
			DecayRate:    float32(sem.DecayRate),
			FadeStrength: float32(sem.FadeStrength),
		}
	}
	e.field.DiffuseAndDecay(diff[:], e.pool)

	if !e.field.HasPhase() {
		return
	}
	q := &e.cfg.Model.Quantum
	var phase [config.NumSpecies]systems.PhaseParams
	for s := range phase {
		phase[s] = systems.PhaseParams{
			RotationRate: float32(q.PhaseRotationRate),
			Noise:        float32(q.PhaseNoise) * e.params[s].ExplorationBias,
		}
	}
	e.field.DiffusePhase(phase[:], e.frame, uint32(e.cfg.Seed), e.pool)
}
