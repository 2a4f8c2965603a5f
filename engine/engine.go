// Package engine runs the stigmergy simulation: agents sense and deposit
// into shared trail fields, the fields diffuse and decay, and optional audio
// features modulate behavior.
package engine

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/oikos/audio"
	"github.com/pthm-cable/oikos/components"
	"github.com/pthm-cable/oikos/config"
	"github.com/pthm-cable/oikos/systems"
	"github.com/pthm-cable/oikos/telemetry"
)

// Options holds engine construction options that are not part of the
// parameter bundle.
type Options struct {
	LogStats      bool                        // log window and perf stats via slog
	OutputDir     string                      // CSV + config output, empty disables
	StatsCallback func(telemetry.WindowStats) // called on every stats flush
}

// AgentView is the read-only public state of one agent.
type AgentView struct {
	X, Y    float32
	Angle   float32
	Species int
}

// Engine holds the complete simulation state.
type Engine struct {
	cfg *config.Config
	rng *rand.Rand

	world    *ecs.World
	strategy systems.Strategy
	stepper  systems.Stepper
	filter   *ecs.Filter3[components.Position, components.Motion, components.Species]

	// Model-specific views for telemetry. Each only matches agents of its model.
	contextFilter *ecs.Filter1[components.Context]
	quantumFilter *ecs.Filter1[components.Quantum]

	field     *systems.TrailField
	resonance *systems.Resonance
	pool      *systems.Pool
	env       systems.Env
	params    [config.NumSpecies]systems.StepParams

	audio      *audio.Layer
	pending    audio.Snapshot
	hasPending bool

	frame int

	// Telemetry
	opts             Options
	collector        *telemetry.Collector
	perf             *telemetry.PerfCollector
	output           *telemetry.OutputManager
	bookmarkDetector *telemetry.BookmarkDetector
	lastStats        telemetry.WindowStats

	agentBuf []AgentView
}

// New creates an engine for cfg and spawns cfg.Population.Count agents.
// The engine keeps its own copy of cfg.
func New(cfg *config.Config, opts Options) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	cfg = cfg.Clone()

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("creating output manager: %w", err)
	}
	if err := output.WriteConfig(cfg); err != nil {
		output.Close()
		return nil, fmt.Errorf("writing config: %w", err)
	}

	e := &Engine{
		cfg:              cfg,
		opts:             opts,
		resonance:        systems.NewResonance(cfg.Derived.Species),
		audio:            audio.NewLayer(cfg),
		collector:        telemetry.NewCollector(cfg.Telemetry.StatsWindow, cfg.Telemetry.CoverageThreshold),
		perf:             telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		output:           output,
		bookmarkDetector: telemetry.NewBookmarkDetector(10),
	}
	e.startPool()

	e.Reset()
	e.InitializeAgents(cfg.Population.Count)

	if output != nil {
		slog.Info("output enabled", "dir", output.Dir())
	}
	return e, nil
}

func (e *Engine) startPool() {
	e.pool = systems.NewPool(e.cfg.Grid.Workers)
	e.pool.Start()
}

// Reset discards all agents, reallocates the trail field and forgets audio
// history. The RNG is reseeded, so Reset followed by InitializeAgents
// reproduces a freshly constructed engine.
func (e *Engine) Reset() {
	e.rng = rand.New(rand.NewSource(e.cfg.Seed))
	e.newWorld()

	withPhase := e.cfg.Model.Kind == config.ModelQuantum
	n := e.cfg.Grid.Size
	if e.field == nil || e.field.Size() != n || e.field.HasPhase() != withPhase {
		e.field = systems.NewTrailField(n, config.NumSpecies, withPhase)
	} else {
		e.field.Clear()
	}

	e.env = systems.Env{Field: e.field, Resonance: e.resonance, Rng: e.rng}
	e.audio.Reset()
	e.hasPending = false
	e.frame = 0
	e.collector.Reset(0)
	e.bookmarkDetector.Reset()
	e.agentBuf = e.agentBuf[:0]

	slog.Info("reset", "model", string(e.cfg.Model.Kind), "grid", n)
}

// newWorld drops every agent by replacing the ECS world, and rebuilds the
// strategy and filters on it.
func (e *Engine) newWorld() {
	e.world = ecs.NewWorld()
	e.strategy = systems.NewStrategy(e.world, e.cfg.Model)
	e.stepper = systems.Stepper{Strategy: e.strategy, GlobalSpeed: float32(e.cfg.Simulation.Speed)}
	e.filter = ecs.NewFilter3[components.Position, components.Motion, components.Species](e.world)
	e.contextFilter = ecs.NewFilter1[components.Context](e.world)
	e.quantumFilter = ecs.NewFilter1[components.Quantum](e.world)
}

// InitializeAgents replaces the population with n agents of the active
// model, placed by the configured layout. Agent i belongs to species i%3.
func (e *Engine) InitializeAgents(n int) {
	if n < 0 {
		n = 0
	}
	e.newWorld()

	placements := systems.Spawn(e.cfg.Population.Layout, n, e.cfg.Grid.Size, e.rng)
	for i, p := range placements {
		pos := components.Position{X: p.X, Y: p.Y}
		mot := components.Motion{Angle: p.Angle, RhythmPhase: e.rng.Float32() * twoPi}
		sp := components.Species{ID: components.SpeciesID(i % config.NumSpecies)}
		e.strategy.Spawn(pos, mot, sp, e.rng)
	}

	slog.Info("agents initialized",
		"count", n,
		"model", string(e.strategy.Kind()),
		"layout", e.cfg.Population.Layout,
	)
}

// SetParameters replaces the parameter bundle. An invalid bundle is
// rejected and the running configuration is kept. Changing the model, the
// grid size or the population count reinitializes the population.
func (e *Engine) SetParameters(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("set parameters: %w", err)
	}
	next := cfg.Clone()
	prev := e.cfg

	modelChanged := next.Model.Kind != prev.Model.Kind
	reinit := modelChanged ||
		next.Grid.Size != prev.Grid.Size ||
		next.Population.Count != prev.Population.Count

	e.cfg = next
	e.resonance = systems.NewResonance(next.Derived.Species)
	e.env.Resonance = e.resonance
	e.audio.Configure(next)

	if next.Grid.Workers != prev.Grid.Workers {
		e.pool.Stop()
		e.startPool()
	}
	if next.Telemetry.StatsWindow != prev.Telemetry.StatsWindow ||
		next.Telemetry.CoverageThreshold != prev.Telemetry.CoverageThreshold {
		e.collector = telemetry.NewCollector(next.Telemetry.StatsWindow, next.Telemetry.CoverageThreshold)
		e.collector.Reset(e.frame)
	}
	if next.Telemetry.PerfWindow != prev.Telemetry.PerfWindow {
		e.perf = telemetry.NewPerfCollector(next.Telemetry.PerfWindow)
	}

	if reinit {
		if modelChanged {
			slog.Info("model switched", "from", string(prev.Model.Kind), "to", string(next.Model.Kind))
		}
		e.Reset()
		e.InitializeAgents(next.Population.Count)
		return nil
	}

	// Same archetype, new model parameters.
	e.strategy = systems.NewStrategy(e.world, next.Model)
	e.stepper = systems.Stepper{Strategy: e.strategy, GlobalSpeed: float32(next.Simulation.Speed)}
	return nil
}

// ApplyPatch merges a partial YAML parameter document onto the current
// parameters. Fields absent from the patch keep their values.
func (e *Engine) ApplyPatch(patch []byte) error {
	next, err := e.cfg.ApplyPatch(patch)
	if err != nil {
		slog.Warn("parameter patch rejected", "error", err)
		return fmt.Errorf("apply patch: %w", err)
	}
	return e.SetParameters(next)
}

// UpdateAudioAnalysis queues a snapshot for the next tick. Only the most
// recent snapshot queued before a tick is used.
func (e *Engine) UpdateAudioAnalysis(s audio.Snapshot) {
	e.pending = s
	e.hasPending = true
}

// Agents returns the public state of every agent. The slice is reused by
// the next call.
func (e *Engine) Agents() []AgentView {
	e.agentBuf = e.agentBuf[:0]
	query := e.filter.Query()
	for query.Next() {
		pos, mot, sp := query.Get()
		e.agentBuf = append(e.agentBuf, AgentView{
			X:       pos.X,
			Y:       pos.Y,
			Angle:   mot.Angle,
			Species: int(sp.ID),
		})
	}
	return e.agentBuf
}

// AgentCount returns the number of live agents.
func (e *Engine) AgentCount() int {
	n := 0
	query := e.filter.Query()
	for query.Next() {
		n++
	}
	return n
}

// Trails returns each species' trail channel, row-major N x N. The slices
// alias engine state and must not be modified.
func (e *Engine) Trails() [config.NumSpecies][]float32 {
	var out [config.NumSpecies][]float32
	for s := range out {
		out[s] = e.field.Channel(s)
	}
	return out
}

// Phases returns each species' phase channel, or ok=false when the active
// model does not track phase.
func (e *Engine) Phases() (phases [config.NumSpecies][]float32, ok bool) {
	if !e.field.HasPhase() {
		return phases, false
	}
	for s := range phases {
		phases[s] = e.field.Phases(s)
	}
	return phases, true
}

// FrameCount returns the number of completed ticks since the last reset.
func (e *Engine) FrameCount() int { return e.frame }

// GridSize returns the trail field edge length N.
func (e *Engine) GridSize() int { return e.field.Size() }

// Model returns the active behavioral model.
func (e *Engine) Model() config.ModelKind { return e.strategy.Kind() }

// Config returns the engine's parameter bundle. Callers must not modify it;
// use SetParameters or ApplyPatch.
func (e *Engine) Config() *config.Config { return e.cfg }

// Modulation returns the current audio modulation of species s.
func (e *Engine) Modulation(s int) audio.Modulation { return e.audio.ForSpecies(s) }

// Stats returns the most recently flushed window stats.
func (e *Engine) Stats() telemetry.WindowStats { return e.lastStats }

// Perf returns the rolling performance stats.
func (e *Engine) Perf() telemetry.PerfStats { return e.perf.Stats() }

// RecordFrame records viewer frame timing.
func (e *Engine) RecordFrame() { e.perf.RecordFrame() }

// Close stops the worker pool and closes output files.
func (e *Engine) Close() error {
	e.pool.Stop()
	return e.output.Close()
}
