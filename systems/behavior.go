package systems

import (
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/oikos/components"
	"github.com/pthm-cable/oikos/config"
)

// StepParams holds one species' effective parameters for the current tick,
// after audio modulation has been applied.
type StepParams struct {
	Speed          float32
	TurnSpeed      float32
	TurnRandomness float32 // scales the random turn when forward is weakest
	SensorAngle    float32
	SensorDistance float32

	Deposit    float32
	Saturation float32

	AttractionDelta float32 // added to own-trail attraction
	ExplorationBias float32 // scales M2 sensing noise and M3 phase noise

	ChaosInterval int
	ChaosStrength float32
	OscAmplitude  float32
	OscRate       float32
}

// Env is the shared state read and written by agents during a tick.
type Env struct {
	Field     *TrailField
	Resonance *Resonance
	Rng       *rand.Rand
	Frame     int
}

// Agent is a mutable view of one agent during a tick.
type Agent struct {
	Entity  ecs.Entity
	Pos     *components.Position
	Motion  *components.Motion
	Species int
}

// Sensed holds resonance readings indexed by components.Direction.
type Sensed [components.NumDirections]float32

// Strategy is the model-specific part of an agent update. Implementations
// own the archetype their agents are created with, so an agent always
// carries exactly the state its model needs.
type Strategy interface {
	Kind() config.ModelKind
	// Spawn creates one agent with this model's components.
	Spawn(pos components.Position, mot components.Motion, sp components.Species, rng *rand.Rand) ecs.Entity
	// Decide returns the heading change for this tick.
	Decide(env *Env, a *Agent, p *StepParams) float32
	// Deposit writes the agent's trace at its current cell.
	Deposit(env *Env, a *Agent, p *StepParams)
}

// NewStrategy creates the strategy for the configured model on world w.
func NewStrategy(w *ecs.World, m config.ModelConfig) Strategy {
	switch m.Kind {
	case config.ModelContextual:
		return NewContextual(w, m.Contextual)
	case config.ModelQuantum:
		return NewQuantum(w, m.Quantum)
	default:
		return NewClassical(w)
	}
}

// Stepper runs the update skeleton shared by every model:
// chaos, decide, oscillate, move, deposit.
type Stepper struct {
	Strategy    Strategy
	GlobalSpeed float32
}

// Step advances one agent by one tick.
func (st *Stepper) Step(env *Env, a *Agent, p *StepParams) {
	m := a.Motion
	n := env.Field.Size()

	if p.ChaosInterval > 0 && env.Frame%p.ChaosInterval == 0 {
		kick := (env.Rng.Float32()*2 - 1) * 0.5 * p.ChaosStrength * math.Pi
		m.RhythmPhase = normalizeHeading(m.RhythmPhase + kick)
	}

	m.Angle += st.Strategy.Decide(env, a, p)

	m.Angle += float32(math.Sin(float64(m.RhythmPhase))) * p.OscAmplitude
	m.RhythmPhase = normalizeHeading(m.RhythmPhase + p.OscRate)
	m.Angle = normalizeHeading(m.Angle)

	dist := p.Speed * st.GlobalSpeed
	a.Pos.X = wrapCoord(a.Pos.X+fastCos(m.Angle)*dist, n)
	a.Pos.Y = wrapCoord(a.Pos.Y+fastSin(m.Angle)*dist, n)

	st.Strategy.Deposit(env, a, p)
}

// sensorOffsets are the heading offsets of each direction in units of the
// sensor angle.
var sensorOffsets = [components.NumDirections]float32{-1, 0, 1}

// sensorPos returns the wrapped sensor position for direction d.
func sensorPos(a *Agent, d components.Direction, p *StepParams, n int) (float32, float32) {
	ang := a.Motion.Angle + sensorOffsets[d]*p.SensorAngle
	x := wrapCoord(a.Pos.X+fastCos(ang)*p.SensorDistance, n)
	y := wrapCoord(a.Pos.Y+fastSin(ang)*p.SensorDistance, n)
	return x, y
}

// senseAll reads the resonance signal at all three sensors.
func senseAll(env *Env, a *Agent, p *StepParams) Sensed {
	var s Sensed
	n := env.Field.Size()
	for d := components.Direction(0); d < components.NumDirections; d++ {
		x, y := sensorPos(a, d, p, n)
		s[d] = env.Resonance.Sense(env.Field, a.Species, x, y, p.AttractionDelta)
	}
	return s
}

// steer applies the classical rule: keep going when forward is strictly
// strongest, turn randomly when forward is strictly weakest, otherwise
// turn toward the stronger side. Equal sides do not turn.
func steer(s Sensed, p *StepParams, rng *rand.Rand) float32 {
	l, f, r := s[components.DirLeft], s[components.DirForward], s[components.DirRight]
	switch {
	case f > l && f > r:
		return 0
	case f < l && f < r:
		return (rng.Float32() - 0.5) * p.TurnSpeed * p.TurnRandomness
	case l > r:
		return -p.TurnSpeed
	case r > l:
		return p.TurnSpeed
	}
	return 0
}

// depositTrail writes the plain trail trace shared by M1 and M2.
func depositTrail(env *Env, a *Agent, p *StepParams) {
	env.Field.Deposit(a.Species, a.Pos.X, a.Pos.Y, p.Deposit, p.Saturation)
}
