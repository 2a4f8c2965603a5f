package systems

import (
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/oikos/components"
	"github.com/pthm-cable/oikos/config"
)

// Classical is M1: pure sense, steer, move, deposit.
type Classical struct {
	mapper *ecs.Map3[components.Position, components.Motion, components.Species]
}

// NewClassical creates the M1 strategy on world w.
func NewClassical(w *ecs.World) *Classical {
	return &Classical{
		mapper: ecs.NewMap3[components.Position, components.Motion, components.Species](w),
	}
}

func (c *Classical) Kind() config.ModelKind { return config.ModelClassical }

func (c *Classical) Spawn(pos components.Position, mot components.Motion, sp components.Species, _ *rand.Rand) ecs.Entity {
	return c.mapper.NewEntity(&pos, &mot, &sp)
}

func (c *Classical) Decide(env *Env, a *Agent, p *StepParams) float32 {
	return steer(senseAll(env, a, p), p, env.Rng)
}

func (c *Classical) Deposit(env *Env, a *Agent, p *StepParams) {
	depositTrail(env, a, p)
}

// Contextual is M2: M1 with an explore/exploit mode driven by local
// same-species density. Explore mode adds uniform noise to every reading.
type Contextual struct {
	params   config.ContextualParams
	mapper   *ecs.Map4[components.Position, components.Motion, components.Species, components.Context]
	contexts *ecs.Map1[components.Context]
}

// NewContextual creates the M2 strategy on world w.
func NewContextual(w *ecs.World, params config.ContextualParams) *Contextual {
	return &Contextual{
		params:   params,
		mapper:   ecs.NewMap4[components.Position, components.Motion, components.Species, components.Context](w),
		contexts: ecs.NewMap1[components.Context](w),
	}
}

func (c *Contextual) Kind() config.ModelKind { return config.ModelContextual }

func (c *Contextual) Spawn(pos components.Position, mot components.Motion, sp components.Species, _ *rand.Rand) ecs.Entity {
	ctx := components.Context{Mode: components.ModeExplore}
	return c.mapper.NewEntity(&pos, &mot, &sp, &ctx)
}

func (c *Contextual) Decide(env *Env, a *Agent, p *StepParams) float32 {
	ctx := c.contexts.Get(a.Entity)
	local := env.Field.At(a.Species, a.Pos.X, a.Pos.Y)
	ctx.Mode = NextMode(ctx.Mode, float64(local), c.params.HighThreshold, c.params.LowThreshold)

	s := senseAll(env, a, p)
	if ctx.Mode == components.ModeExplore && c.params.ExplorationNoise != 0 {
		scale := float32(c.params.ExplorationNoise) * p.ExplorationBias
		for d := range s {
			s[d] += (env.Rng.Float32()*100 - 50) * scale
		}
	}
	return steer(s, p, env.Rng)
}

func (c *Contextual) Deposit(env *Env, a *Agent, p *StepParams) {
	depositTrail(env, a, p)
}

// NextMode applies the hysteresis rule: above high switches to exploit,
// below low switches to explore, anything between keeps the current mode.
func NextMode(cur components.ContextMode, density, high, low float64) components.ContextMode {
	switch {
	case density > high:
		return components.ModeExploit
	case density < low:
		return components.ModeExplore
	}
	return cur
}

// Quantum is M3: turn decisions come from measuring a three-direction
// amplitude vector that evolves with sensed signal and trail phase.
type Quantum struct {
	params config.QuantumParams
	mapper *ecs.Map4[components.Position, components.Motion, components.Species, components.Quantum]
	states *ecs.Map1[components.Quantum]
}

// NewQuantum creates the M3 strategy on world w.
func NewQuantum(w *ecs.World, params config.QuantumParams) *Quantum {
	return &Quantum{
		params: params,
		mapper: ecs.NewMap4[components.Position, components.Motion, components.Species, components.Quantum](w),
		states: ecs.NewMap1[components.Quantum](w),
	}
}

func (q *Quantum) Kind() config.ModelKind { return config.ModelQuantum }

func (q *Quantum) Spawn(pos components.Position, mot components.Motion, sp components.Species, rng *rand.Rand) ecs.Entity {
	var phases [components.NumDirections]float64
	for d := range phases {
		phases[d] = rng.Float64() * twoPi
	}
	st := components.Quantum{
		Amp:           EqualSuperposition(phases),
		InternalPhase: rng.Float64() * twoPi,
	}
	return q.mapper.NewEntity(&pos, &mot, &sp, &st)
}

func (q *Quantum) Decide(env *Env, a *Agent, p *StepParams) float32 {
	st := q.states.Get(a.Entity)
	n := env.Field.Size()

	// Trail age only matters where the agent is surrounded by enough of
	// its own species.
	local := env.Field.At(a.Species, a.Pos.X, a.Pos.Y)
	phaseAware := float64(local) >= q.params.ContextThreshold

	var signal, phase [components.NumDirections]float64
	for d := components.Direction(0); d < components.NumDirections; d++ {
		x, y := sensorPos(a, d, p, n)
		v, ph := env.Resonance.SensePhase(env.Field, a.Species, x, y, p.AttractionDelta)
		phase[d] = float64(ph)
		w := 1.0
		if phaseAware {
			w = 0.5 * (1 + math.Cos(phase[d]-st.InternalPhase))
		}
		signal[d] = float64(v) * w
	}

	amp := (*Amplitudes)(&st.Amp)
	amp.Evolve(signal, phase, q.params.AmplitudeCoupling)

	switch amp.Measure(env.Rng.Float64()) {
	case components.DirLeft:
		return -p.TurnSpeed
	case components.DirRight:
		return p.TurnSpeed
	}
	return 0
}

func (q *Quantum) Deposit(env *Env, a *Agent, p *StepParams) {
	st := q.states.Get(a.Entity)
	env.Field.DepositPhase(a.Species, a.Pos.X, a.Pos.Y, p.Deposit, p.Saturation, float32(st.InternalPhase))
	st.InternalPhase = WrapPhase(st.InternalPhase + q.params.PhaseRotationRate)
}
