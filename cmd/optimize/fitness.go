package main

import (
	"log/slog"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/oikos/audio"
	"github.com/pthm-cable/oikos/config"
	"github.com/pthm-cable/oikos/engine"
	"github.com/pthm-cable/oikos/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	ticks      int
	seeds      []int64
	baseConfig *config.Config
	bpm        float64 // 0 runs without audio

	mu          sync.Mutex
	lastQuality float64
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, ticks int, seeds []int64, baseCfg *config.Config, bpm float64) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		ticks:      ticks,
		seeds:      seeds,
		baseConfig: baseCfg,
		bpm:        bpm,
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// runResult holds the results from a single simulation run.
type runResult struct {
	windows   []telemetry.WindowStats
	collapsed bool // trail mass vanished by the end of the run
}

type seedResult struct {
	fitness float64
	quality float64
}

// Evaluate computes fitness for a parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			r := fe.runSimulation(x, s)
			results[idx] = seedResult{
				fitness: computeFitness(r),
				quality: computeQuality(r.windows),
			}
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality float64
	for _, r := range results {
		totalFitness += r.fitness
		totalQuality += r.quality
	}
	n := float64(len(fe.seeds))

	fe.mu.Lock()
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return totalFitness / n
}

// runSimulation executes a single headless run of fe.ticks ticks.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) *runResult {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)
	cfg.Seed = seed

	result := &runResult{}
	eng, err := engine.New(cfg, engine.Options{
		StatsCallback: func(stats telemetry.WindowStats) {
			result.windows = append(result.windows, stats)
		},
	})
	if err != nil {
		slog.Error("engine rejected parameters", "error", err)
		result.collapsed = true
		return result
	}
	defer eng.Close()

	var feed *audio.Feed
	if fe.bpm > 0 {
		feed = audio.NewFeed(cfg.Audio.Analyzer, fe.bpm, cfg.Screen.TargetFPS, seed)
	}

	for eng.FrameCount() < fe.ticks {
		if feed != nil {
			eng.UpdateAudioAnalysis(feed.Next())
		}
		eng.Update()
	}

	var mass float64
	for _, ch := range eng.Trails() {
		for _, v := range ch {
			mass += float64(v)
		}
	}
	result.collapsed = mass < collapseMass
	return result
}

const (
	collapseMass = 1e-3

	qualityWarmupWindows = 2 // skip the first windows while trails form

	qualityWeightStability = 0.4
	qualityWeightCoverage  = 0.3
	qualityWeightBalance   = 0.3

	targetCoverage = 0.3 // fraction of cells carrying trail
)

// computeFitness calculates the scalar fitness (lower = better).
// Formula: -(structure × (1 + 0.2 × quality)), zero when the field collapsed.
// Structure dominates; quality separates configs with similar structure.
func computeFitness(r *runResult) float64 {
	if r.collapsed {
		return 0
	}
	windows := settled(r.windows)
	if len(windows) == 0 {
		return 0
	}
	structure := make([]float64, len(windows))
	for i, w := range windows {
		structure[i] = w.Structure
	}
	return -(stat.Mean(structure, nil) * (1 + 0.2*computeQuality(r.windows)))
}

// computeQuality scores a run in [0, 1] on how steady its structure is, how
// close its coverage sits to the target and how evenly species share mass.
func computeQuality(all []telemetry.WindowStats) float64 {
	windows := settled(all)
	if len(windows) == 0 {
		return 0
	}

	structure := make([]float64, len(windows))
	var coverageSum, balanceSum float64
	for i, w := range windows {
		structure[i] = w.Structure

		cov := (w.Coverage0 + w.Coverage1 + w.Coverage2) / 3
		d := (cov - targetCoverage) / targetCoverage
		coverageSum += math.Exp(-d * d)

		balanceSum += balance(w.Mass0, w.Mass1, w.Mass2)
	}
	n := float64(len(windows))

	stabilityScore := 0.0
	if len(structure) >= 2 {
		c := cv(structure)
		stabilityScore = math.Exp(-c * c)
	}

	quality := qualityWeightStability*stabilityScore +
		qualityWeightCoverage*coverageSum/n +
		qualityWeightBalance*balanceSum/n
	return clamp01(quality)
}

func settled(windows []telemetry.WindowStats) []telemetry.WindowStats {
	if len(windows) <= qualityWarmupWindows {
		return nil
	}
	return windows[qualityWarmupWindows:]
}

// balance is 1 when all species carry equal mass and 0 when one species
// carries everything.
func balance(masses ...float64) float64 {
	if len(masses) < 2 {
		return 1
	}
	c := cv(masses)
	// population CV of a one-hot vector of length k is sqrt(k-1)
	return clamp01(1 - c/math.Sqrt(float64(len(masses)-1)))
}

// cv computes the population coefficient of variation (std/mean).
func cv(values []float64) float64 {
	mean, variance := stat.PopMeanVariance(values, nil)
	if mean == 0 {
		return 0
	}
	return math.Sqrt(variance) / mean
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
