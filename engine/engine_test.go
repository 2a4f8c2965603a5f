package engine

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pthm-cable/oikos/audio"
	"github.com/pthm-cable/oikos/config"
	"github.com/pthm-cable/oikos/telemetry"
)

// testConfig returns a small deterministic configuration.
func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Seed = 7
	cfg.Grid.Size = 64
	cfg.Grid.Workers = 2
	cfg.Population.Count = 90
	cfg.Population.Layout = "random"
	cfg.Telemetry.StatsWindow = 50
	return cfg
}

func newTestEngine(t *testing.T, cfg *config.Config) *Engine {
	t.Helper()
	e, err := New(cfg, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

func run(e *Engine, ticks int) {
	for i := 0; i < ticks; i++ {
		e.Update()
	}
}

func equalTrails(a, b [config.NumSpecies][]float32) bool {
	for s := range a {
		if len(a[s]) != len(b[s]) {
			return false
		}
		for i := range a[s] {
			if a[s][i] != b[s][i] {
				return false
			}
		}
	}
	return true
}

func copyTrails(tr [config.NumSpecies][]float32) [config.NumSpecies][]float32 {
	var out [config.NumSpecies][]float32
	for s := range tr {
		out[s] = append([]float32(nil), tr[s]...)
	}
	return out
}

func TestResetMatchesFreshEngine(t *testing.T) {
	for _, kind := range []config.ModelKind{config.ModelClassical, config.ModelContextual, config.ModelQuantum} {
		t.Run(string(kind), func(t *testing.T) {
			cfg := testConfig()
			cfg.Model.Kind = kind

			fresh := newTestEngine(t, cfg)
			run(fresh, 40)
			want := copyTrails(fresh.Trails())
			wantAgents := append([]AgentView(nil), fresh.Agents()...)

			reused := newTestEngine(t, cfg)
			run(reused, 25)
			reused.Reset()
			reused.InitializeAgents(cfg.Population.Count)
			if reused.FrameCount() != 0 {
				t.Fatalf("frame after reset = %d, want 0", reused.FrameCount())
			}
			run(reused, 40)

			if !equalTrails(want, reused.Trails()) {
				t.Error("trail fields differ after reset")
			}
			got := reused.Agents()
			if len(got) != len(wantAgents) {
				t.Fatalf("agent count = %d, want %d", len(got), len(wantAgents))
			}
			for i := range got {
				if got[i] != wantAgents[i] {
					t.Fatalf("agent %d = %+v, want %+v", i, got[i], wantAgents[i])
				}
			}
		})
	}
}

func TestDiffusionScenario(t *testing.T) {
	cfg := testConfig()
	cfg.Grid.Size = 400
	cfg.Grid.DiffusionFreq = 1
	cfg.Population.Count = 3
	cfg.Population.Layout = "center"
	cfg.Simulation.Speed = 0
	cfg.Universal.Semiotic.Deposit = 20
	cfg.Universal.Semiotic.DecayRate = 0.9

	e := newTestEngine(t, cfg)
	e.Update()

	want := 20.0 / 9.0 * 0.9
	idx := 200*400 + 200
	for s, ch := range e.Trails() {
		if got := float64(ch[idx]); math.Abs(got-want) > 1e-5 {
			t.Errorf("species %d center = %v, want %v", s, got, want)
		}
		// Corner neighbor gets the same share
		if got := float64(ch[idx+401]); math.Abs(got-want) > 1e-5 {
			t.Errorf("species %d diagonal = %v, want %v", s, got, want)
		}
		if got := ch[idx+2]; got != 0 {
			t.Errorf("species %d two cells away = %v, want 0", s, got)
		}
	}
}

func TestDiffusionFrequency(t *testing.T) {
	cfg := testConfig()
	cfg.Grid.DiffusionFreq = 3
	cfg.Population.Count = 3
	cfg.Population.Layout = "center"
	cfg.Simulation.Speed = 0
	cfg.Universal.Semiotic.Deposit = 9
	cfg.Universal.Semiotic.DecayRate = 1

	e := newTestEngine(t, cfg)
	run(e, 2) // diffuses at frame 0 only

	center := 32*64 + 32
	// frame 0: 9 diffused to 1; frame 1: +9 undiffused
	if got := e.Trails()[0][center]; math.Abs(float64(got)-10) > 1e-5 {
		t.Errorf("center after two ticks = %v, want 10", got)
	}
}

func TestAgentsStayOnTorus(t *testing.T) {
	cfg := testConfig()
	cfg.Universal.Physical.Speed = 3
	cfg.Universal.Temporal.ChaosInterval = 7

	e := newTestEngine(t, cfg)
	run(e, 200)

	n := float32(e.GridSize())
	for i, a := range e.Agents() {
		if a.X < 0 || a.X >= n || a.Y < 0 || a.Y >= n {
			t.Fatalf("agent %d at (%v, %v) outside [0, %v)", i, a.X, a.Y, n)
		}
		if a.Angle < 0 || a.Angle >= twoPi {
			t.Fatalf("agent %d heading %v not normalized", i, a.Angle)
		}
	}
}

func TestTrailsStayClamped(t *testing.T) {
	cfg := testConfig()
	cfg.Universal.Semiotic.Deposit = 50
	cfg.Universal.Semiotic.TrailSaturation = 120
	cfg.Universal.Semiotic.DecayRate = 1
	cfg.Grid.DiffusionFreq = 5

	e := newTestEngine(t, cfg)
	for tick := 0; tick < 60; tick++ {
		e.Update()
		for s, ch := range e.Trails() {
			for i, v := range ch {
				if v < 0 || v > 120 {
					t.Fatalf("tick %d species %d cell %d = %v outside [0, 120]", tick, s, i, v)
				}
			}
		}
	}
}

func TestModelSwitchReinitializes(t *testing.T) {
	cfg := testConfig()
	e := newTestEngine(t, cfg)
	run(e, 10)

	if _, ok := e.Phases(); ok {
		t.Fatal("classical model should not track phase")
	}

	if err := e.ApplyPatch([]byte("model:\n  kind: quantum\n")); err != nil {
		t.Fatalf("ApplyPatch: %v", err)
	}

	if e.Model() != config.ModelQuantum {
		t.Fatalf("model = %s, want quantum", e.Model())
	}
	if e.FrameCount() != 0 {
		t.Errorf("frame = %d, want 0 after model switch", e.FrameCount())
	}
	if got := e.AgentCount(); got != cfg.Population.Count {
		t.Errorf("agents = %d, want %d", got, cfg.Population.Count)
	}
	if _, ok := e.Phases(); !ok {
		t.Error("quantum model should track phase")
	}

	// Every agent carries quantum state and none carries context state
	quantum := 0
	q := e.quantumFilter.Query()
	for q.Next() {
		quantum++
	}
	contextual := 0
	c := e.contextFilter.Query()
	for c.Next() {
		contextual++
	}
	if quantum != cfg.Population.Count || contextual != 0 {
		t.Errorf("quantum/context agents = %d/%d, want %d/0", quantum, contextual, cfg.Population.Count)
	}

	run(e, 10)
}

func TestInvalidParametersRejected(t *testing.T) {
	e := newTestEngine(t, testConfig())
	run(e, 5)

	tests := []struct {
		name  string
		patch string
	}{
		{"unknown model", "model:\n  kind: bogus\n"},
		{"unknown layout", "population:\n  layout: spiral\n"},
		{"malformed yaml", "grid: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := e.ApplyPatch([]byte(tt.patch)); err == nil {
				t.Fatal("expected error")
			}
			if e.Model() != config.ModelClassical {
				t.Errorf("model changed to %s", e.Model())
			}
			if e.FrameCount() != 5 {
				t.Errorf("frame = %d, engine should not have reset", e.FrameCount())
			}
		})
	}
}

func TestParameterPatchKeepsPopulation(t *testing.T) {
	e := newTestEngine(t, testConfig())
	run(e, 5)

	patch := "universal:\n  physical:\n    turn_speed: 0.6\nmodel:\n  contextual:\n    high_threshold: 80\n"
	if err := e.ApplyPatch([]byte(patch)); err != nil {
		t.Fatalf("ApplyPatch: %v", err)
	}
	if e.FrameCount() != 5 {
		t.Errorf("frame = %d, want 5", e.FrameCount())
	}
	if got := e.Config().Derived.Species[1].Physical.TurnSpeed; got != 0.6 {
		t.Errorf("turn speed = %v, want 0.6", got)
	}
	// Untouched fields keep their values
	if got := e.Config().Derived.Species[1].Physical.SensorDistance; got != 9 {
		t.Errorf("sensor distance = %v, want 9", got)
	}
	run(e, 5)
}

func TestExtremePatchDoesNotStall(t *testing.T) {
	tests := []struct {
		name  string
		patch string
	}{
		{"quantum turn speed", "model: {kind: quantum}\nuniversal: {physical: {turn_speed: 1.0e9}}\n"},
		{"oscillation rate", "universal: {temporal: {oscillation_rate: 1.0e9, oscillation_amplitude: 1.0e9}}\n"},
		{"chaos", "universal: {temporal: {chaos_interval: 1, chaos_strength: .inf}}\n"},
		{"speeds", "simulation: {speed: .inf}\nuniversal: {physical: {speed: 1.0e30, sensor_angle: .nan, sensor_distance: -.inf}}\n"},
		{"modulation range", "audio: {clamp: {move_speed: {min: -.inf, max: .inf}}}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Population.Count = 30
			e := newTestEngine(t, cfg)
			if err := e.ApplyPatch([]byte(tt.patch)); err != nil {
				t.Fatalf("ApplyPatch: %v", err)
			}

			done := make(chan struct{})
			go func() {
				defer close(done)
				for i := 0; i < 5; i++ {
					e.UpdateAudioAnalysis(loudSnapshot(i))
					e.Update()
				}
			}()
			select {
			case <-done:
			case <-time.After(5 * time.Second):
				t.Fatal("Update did not return within 5s")
			}

			n := float32(e.GridSize())
			for _, a := range e.Agents() {
				if !(a.X >= 0 && a.X < n && a.Y >= 0 && a.Y < n) {
					t.Fatalf("agent left the torus: (%v, %v)", a.X, a.Y)
				}
			}
			sp := e.Config().Derived.Species[0]
			if math.IsNaN(sp.Physical.SensorAngle) || math.IsInf(sp.Physical.SensorDistance, 0) || sp.Physical.TurnSpeed > 2*math.Pi {
				t.Errorf("physical params not clamped: %+v", sp.Physical)
			}
		})
	}
}

func TestPopulationChangeReinitializes(t *testing.T) {
	e := newTestEngine(t, testConfig())
	if err := e.ApplyPatch([]byte("population:\n  count: 30\n")); err != nil {
		t.Fatalf("ApplyPatch: %v", err)
	}
	if got := e.AgentCount(); got != 30 {
		t.Errorf("agents = %d, want 30", got)
	}
}

func loudSnapshot(i int) audio.Snapshot {
	return audio.Snapshot{
		Bass:         1,
		Mid:          0.8,
		High:         0.9,
		Rhythm:       1,
		Beat:         i%4 == 0,
		BeatStrength: 1,
		Stability:    0.1,
		Tension:      1,
		Loudness:     1,
	}
}

func TestZeroInfluenceMatchesNoAudio(t *testing.T) {
	cfg := testConfig()
	cfg.Audio.GlobalInfluence = 0

	silent := newTestEngine(t, cfg)
	fed := newTestEngine(t, cfg)
	for i := 0; i < 60; i++ {
		fed.UpdateAudioAnalysis(loudSnapshot(i))
		silent.Update()
		fed.Update()
	}

	a, b := silent.Agents(), fed.Agents()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("agent %d diverged: %+v vs %+v", i, a[i], b[i])
		}
	}
	if !equalTrails(silent.Trails(), fed.Trails()) {
		t.Error("trail fields diverged")
	}
}

func TestAudioChangesBehavior(t *testing.T) {
	cfg := testConfig()
	silent := newTestEngine(t, cfg)
	fed := newTestEngine(t, cfg)
	for i := 0; i < 30; i++ {
		fed.UpdateAudioAnalysis(loudSnapshot(i))
		silent.Update()
		fed.Update()
	}
	if equalTrails(silent.Trails(), fed.Trails()) {
		t.Error("full influence audio had no effect")
	}
}

func TestStaleAudioHoldsModulation(t *testing.T) {
	e := newTestEngine(t, testConfig())

	if got := e.Modulation(0); got != audio.Silent(&e.Config().Audio) {
		t.Errorf("modulation before audio = %+v, want silent", got)
	}

	e.UpdateAudioAnalysis(loudSnapshot(1))
	e.Update()
	held := e.Modulation(0)
	if held.MoveSpeed <= 1 {
		t.Fatalf("loud bass should raise speed, got %v", held.MoveSpeed)
	}

	run(e, 20)
	if got := e.Modulation(0); got != held {
		t.Errorf("modulation changed without new audio: %+v vs %+v", got, held)
	}
}

func TestQuantumStaysNormalized(t *testing.T) {
	cfg := testConfig()
	cfg.Model.Kind = config.ModelQuantum
	e := newTestEngine(t, cfg)

	run(e, 100)
	stats := e.Stats()
	if stats.WindowEndFrame != 100 {
		t.Fatalf("last window ends at %d, want 100", stats.WindowEndFrame)
	}
	if stats.AmpNormErr > 1e-4 {
		t.Errorf("max amplitude norm error = %v", stats.AmpNormErr)
	}
	if stats.Model != string(config.ModelQuantum) {
		t.Errorf("stats model = %q", stats.Model)
	}
}

func TestContextualStats(t *testing.T) {
	cfg := testConfig()
	cfg.Model.Kind = config.ModelContextual
	e := newTestEngine(t, cfg)

	run(e, 50)
	stats := e.Stats()
	if stats.ExploreFrac < 0 || stats.ExploreFrac > 1 {
		t.Errorf("explore fraction = %v", stats.ExploreFrac)
	}
	if stats.Agents != cfg.Population.Count {
		t.Errorf("agents = %d, want %d", stats.Agents, cfg.Population.Count)
	}
	if stats.TotalMass() <= 0 {
		t.Error("expected trail mass after 50 ticks")
	}
}

func TestTelemetryOutput(t *testing.T) {
	cfg := testConfig()
	cfg.Telemetry.StatsWindow = 10
	dir := t.TempDir()

	var windows []telemetry.WindowStats
	e, err := New(cfg, Options{
		OutputDir:     dir,
		StatsCallback: func(s telemetry.WindowStats) { windows = append(windows, s) },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	run(e, 25)
	if err := e.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if len(windows) != 2 {
		t.Fatalf("got %d windows, want 2", len(windows))
	}
	if windows[1].WindowStartFrame != 10 || windows[1].WindowEndFrame != 20 {
		t.Errorf("second window = [%d, %d]", windows[1].WindowStartFrame, windows[1].WindowEndFrame)
	}
	for _, name := range []string{"config.yaml", "telemetry.csv", "perf.csv", "bookmarks.csv"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}

func BenchmarkUpdate(b *testing.B) {
	cfg := config.Default()
	cfg.Seed = 1
	e, err := New(cfg, Options{})
	if err != nil {
		b.Fatal(err)
	}
	defer e.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Update()
	}
}
