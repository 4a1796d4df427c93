package main

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/boids/config"
	"github.com/pthm-cable/boids/game"
	"github.com/pthm-cable/boids/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	ticks       int64
	seeds       []int64
	baseConfig  *config.Config
	statsWindow int

	// Best run tracking
	mu           sync.Mutex
	bestFitness  float64
	bestSnapshot *telemetry.Snapshot
	lastQuality  float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, ticks int64, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		ticks:       ticks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: 100,
		bestFitness: math.Inf(1),
	}
}

// BestSnapshot returns the final state of the best seed of the best evaluation.
func (fe *FitnessEvaluator) BestSnapshot() *telemetry.Snapshot {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestSnapshot
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// runResult holds the results from a single simulation run.
type runResult struct {
	windowStats []telemetry.WindowStats // collected via StatsCallback each window
	snapshot    *telemetry.Snapshot
	err         error
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is negative flock quality averaged over seeds.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	// Run all seeds in parallel
	results := make([]runResult, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runSimulation(cfg, s)
		}(i, seed)
	}
	wg.Wait()

	var totalQuality float64
	bestSeedQuality := math.Inf(-1)
	var bestSeedSnapshot *telemetry.Snapshot
	for _, r := range results {
		q := 0.0
		if r.err == nil {
			q = computeQuality(r.windowStats)
		}
		totalQuality += q
		if q > bestSeedQuality {
			bestSeedQuality = q
			bestSeedSnapshot = r.snapshot
		}
	}

	quality := totalQuality / float64(len(fe.seeds))
	fitness := -quality

	fe.mu.Lock()
	if fitness < fe.bestFitness {
		fe.bestFitness = fitness
		fe.bestSnapshot = bestSeedSnapshot
	}
	fe.lastQuality = quality
	fe.mu.Unlock()

	return fitness
}

// runSimulation executes a single headless simulation run of fe.ticks frames.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) runResult {
	var result runResult

	g, err := game.NewGameWithOptions(game.Options{
		Config:         cfg,
		Seed:           seed,
		Headless:       true,
		StatsWindow:    fe.statsWindow,
		StepsPerUpdate: 1,
		StatsCallback: func(stats telemetry.WindowStats) {
			result.windowStats = append(result.windowStats, stats)
		},
	})
	if err != nil {
		result.err = err
		return result
	}
	defer g.Unload()

	for g.Tick() < fe.ticks {
		g.UpdateHeadless()
	}

	result.snapshot = g.Snapshot()
	return result
}

// copyConfig copies the base config. Seeds run concurrently, so each run
// stays on the serial path instead of starting its own worker pool.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	cfg.Flocking.ParallelThreshold = -1
	return &cfg
}

// Quality component weights.
const (
	qualityWeightPolarization = 0.35
	qualityWeightNeighbors    = 0.25
	qualityWeightContainment  = 0.25
	qualityWeightStability    = 0.15

	qualityWarmupWindows = 3   // skip first N windows (warmup)
	targetNeighbors      = 7.0 // neighbors per bird that count as fully flocking
	repairPenalty        = 0.5 // quality multiplier when any state was repaired
)

// computeQuality scores a run in [0, 1]: aligned, well-connected flocks that
// stay inside the boundary with a steady spread score highest.
func computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}
	valid := windows[qualityWarmupWindows:]

	var polSum, nbSum, containSum float64
	var repairs, count int
	spreads := make([]float64, 0, len(valid))

	for _, w := range valid {
		if w.Population == 0 {
			continue
		}
		polSum += w.Polarization
		nbSum += 1 - math.Exp(-w.MeanNeighbors/targetNeighbors)
		containSum += 1 - float64(w.PastWall)/float64(w.Population)
		spreads = append(spreads, w.Spread)
		repairs += w.Repairs
		count++
	}
	if count == 0 {
		return 0
	}
	n := float64(count)

	stability := 0.0
	if len(spreads) >= 2 {
		c := cv(spreads)
		stability = math.Exp(-c * c)
	}

	quality := qualityWeightPolarization*polSum/n +
		qualityWeightNeighbors*nbSum/n +
		qualityWeightContainment*containSum/n +
		qualityWeightStability*stability

	if repairs > 0 {
		quality *= repairPenalty
	}
	return clamp01(quality)
}

// cv computes the coefficient of variation (std/mean) for a slice of values.
func cv(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean, std := stat.PopMeanStdDev(values, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	return min(max(x, 0), 1)
}
