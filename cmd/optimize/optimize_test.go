package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/oikos/config"
	"github.com/pthm-cable/oikos/telemetry"
)

func TestParamVectorRoundtrip(t *testing.T) {
	pv := NewParamVector()
	def := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(def))
	for i := range def {
		if math.Abs(back[i]-def[i]) > 1e-12 {
			t.Errorf("%s: %v -> %v", pv.Specs[i].Name, def[i], back[i])
		}
	}
}

func TestDefaultsMatchConfig(t *testing.T) {
	pv := NewParamVector()
	cfg := config.Default()
	pv.ApplyToConfig(cfg, pv.DefaultVector())

	def := config.Default()
	if cfg.Universal.Physical != def.Universal.Physical {
		t.Errorf("physical defaults differ: %+v vs %+v", cfg.Universal.Physical, def.Universal.Physical)
	}
	if cfg.Universal.Semiotic != def.Universal.Semiotic {
		t.Errorf("semiotic defaults differ: %+v vs %+v", cfg.Universal.Semiotic, def.Universal.Semiotic)
	}
}

func TestApplyClamps(t *testing.T) {
	pv := NewParamVector()
	cfg := config.Default()
	vals := pv.DefaultVector()
	vals[3] = 1000 // sensor_distance

	pv.ApplyToConfig(cfg, vals)
	if cfg.Universal.Physical.SensorDistance != 25 {
		t.Errorf("sensor distance = %v, want clamped to 25", cfg.Universal.Physical.SensorDistance)
	}
}

func TestBalance(t *testing.T) {
	if got := balance(5, 5, 5); math.Abs(got-1) > 1e-9 {
		t.Errorf("even masses: %v, want 1", got)
	}
	if got := balance(9, 0, 0); math.Abs(got) > 1e-9 {
		t.Errorf("one species: %v, want 0", got)
	}
}

func TestFitnessCollapsed(t *testing.T) {
	r := &runResult{collapsed: true, windows: make([]telemetry.WindowStats, 10)}
	if f := computeFitness(r); f != 0 {
		t.Errorf("collapsed fitness = %v, want 0", f)
	}
}

func TestFitnessPrefersStructure(t *testing.T) {
	flat := &runResult{}
	rich := &runResult{}
	for i := 0; i < 6; i++ {
		flat.windows = append(flat.windows, telemetry.WindowStats{Structure: 0.2, Mass0: 1, Mass1: 1, Mass2: 1})
		rich.windows = append(rich.windows, telemetry.WindowStats{Structure: 2.0, Mass0: 1, Mass1: 1, Mass2: 1})
	}
	if computeFitness(rich) >= computeFitness(flat) {
		t.Error("higher structure should give lower fitness")
	}
}

func TestEvaluateRuns(t *testing.T) {
	if testing.Short() {
		t.Skip("runs simulations")
	}
	cfg := config.Default()
	cfg.Grid.Size = 48
	cfg.Grid.Workers = 1
	cfg.Population.Count = 150
	cfg.Telemetry.StatsWindow = 20

	pv := NewParamVector()
	fe := NewFitnessEvaluator(pv, 120, []int64{1, 2}, cfg, 0)
	f := fe.Evaluate(pv.DefaultVector())
	if f >= 0 {
		t.Errorf("default parameters should form structure, fitness = %v", f)
	}
	if q := fe.LastQuality(); q < 0 || q > 1 {
		t.Errorf("quality %v outside [0, 1]", q)
	}
}
