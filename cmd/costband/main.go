// Command costband sweeps the cost-band marks (CostMarkLow,
// CostMarkHigh) with CMA-ES, searching for the pair that minimizes
// average per-round wall-clock time over a fixed synthetic particle
// distribution. Adapted from the teacher's parameter-search tool: same
// gonum/optimize CMA-ES driver and CSV evaluation log, applied to the
// tree's own two-parameter cost band instead of a whole ecology
// config.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gonum.org/v1/gonum/optimize"

	"github.com/pinebai/sphlatch/config"
	"github.com/pinebai/sphlatch/particle"
	"github.com/pinebai/sphlatch/spatial"
	"github.com/pinebai/sphlatch/tree"
)

func main() {
	configPath := flag.String("config", "", "base config YAML file (empty = use defaults)")
	particles := flag.Int("particles", 2000, "number of particles in the synthetic distribution")
	rounds := flag.Int("rounds", 10, "Update rounds per evaluation")
	maxEvals := flag.Int("max-evals", 60, "maximum number of CMA-ES evaluations")
	outputDir := flag.String("output", "", "output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("creating output directory: %v", err)
	}

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("loading config: %v", err)
	}
	baseCfg := config.Cfg()

	evaluator := &evaluator{baseCfg: baseCfg, numParticles: *particles, rounds: *rounds}

	// x[0] -> costMarkLow in (0.1, 0.95), x[1] -> costMarkHigh in (1.05, 3.0)
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			low := clamp(x[0], 0.1, 0.95)
			high := clamp(x[1], 1.05, 3.0)
			return evaluator.evaluate(low, high)
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0,
	}
	method := &optimize.CmaEsChol{InitStepSize: 0.3, Population: 8}

	logPath := filepath.Join(*outputDir, "costband_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		log.Fatalf("creating log file: %v", err)
	}
	defer logFile.Close()
	logWriter := csv.NewWriter(logFile)
	defer logWriter.Flush()
	logWriter.Write([]string{"eval", "avg_round_us", "cost_mark_low", "cost_mark_high"})

	evalCount := 0
	bestAvg := 1e18
	var bestLow, bestHigh float64
	startTime := time.Now()

	originalFunc := problem.Func
	problem.Func = func(x []float64) float64 {
		avg := originalFunc(x)
		evalCount++

		low := clamp(x[0], 0.1, 0.95)
		high := clamp(x[1], 1.05, 3.0)
		if avg < bestAvg {
			bestAvg = avg
			bestLow, bestHigh = low, high
		}

		logWriter.Write([]string{
			strconv.Itoa(evalCount),
			fmt.Sprintf("%.1f", avg),
			fmt.Sprintf("%.4f", low),
			fmt.Sprintf("%.4f", high),
		})
		logWriter.Flush()

		fmt.Printf("eval %d/%d: avg_round=%.1fus low=%.4f high=%.4f (best=%.1fus)\n",
			evalCount, *maxEvals, avg, low, high, bestAvg)
		return avg
	}

	fmt.Printf("Searching cost band over %d particles, %d rounds/eval, %d max evals\n",
		*particles, *rounds, *maxEvals)

	result, err := optimize.Minimize(problem, []float64{0.8, 1.2}, settings, method)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}
	if bestLow == 0 {
		bestLow, bestHigh = clamp(result.X[0], 0.1, 0.95), clamp(result.X[1], 1.05, 3.0)
	}

	fmt.Printf("\nBest cost band: low=%.4f high=%.4f (avg round %.1fus) after %d evals in %s\n",
		bestLow, bestHigh, bestAvg, evalCount, time.Since(startTime).Round(time.Millisecond))

	bestCfg, _ := config.Load(*configPath)
	bestCfg.Tree.CostMarkLow = bestLow
	bestCfg.Tree.CostMarkHigh = bestHigh
	outPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(outPath); err != nil {
		log.Printf("writing best config: %v", err)
	} else {
		fmt.Printf("Best config saved to: %s\n", outPath)
	}
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

type evaluator struct {
	baseCfg      *config.Config
	numParticles int
	rounds       int
}

// evaluate builds a fresh tree and particle distribution, runs `rounds`
// Update calls with the given cost-band marks, and returns the average
// round duration in microseconds.
func (e *evaluator) evaluate(costMarkLow, costMarkHigh float64) float64 {
	cfg := e.baseCfg
	t := tree.New(tree.Options{
		RootCenter:     spatial.Vec3{X: cfg.Tree.RootCenter[0], Y: cfg.Tree.RootCenter[1], Z: cfg.Tree.RootCenter[2]},
		RootSize:       cfg.Tree.RootSize,
		ThreadCount:    cfg.Tree.ThreadCount,
		CellsPerThread: cfg.Tree.CellsPerThread,
	})

	rng := rand.New(rand.NewSource(42))
	center := spatial.Vec3{X: cfg.Tree.RootCenter[0], Y: cfg.Tree.RootCenter[1], Z: cfg.Tree.RootCenter[2]}
	spread := cfg.Tree.RootSize * 0.3
	var parts []*particle.Particle
	for i := 0; i < e.numParticles; i++ {
		pos := spatial.Vec3{
			X: center.X + spread*(rng.Float64()-0.5),
			Y: center.Y + spread*(rng.Float64()-0.5),
			Z: center.Z + spread*(rng.Float64()-0.5),
		}
		p := particle.New(uint64(i+1), pos, 1.0)
		if err := t.Insert(p); err != nil {
			return 1e18
		}
		parts = append(parts, p)
	}

	var total time.Duration
	for r := 0; r < e.rounds; r++ {
		start := time.Now()
		if _, err := t.Update(costMarkLow, costMarkHigh); err != nil {
			return 1e18
		}
		total += time.Since(start)

		for _, p := range parts {
			p.Pos.X += 0.001 * (rng.Float64() - 0.5)
			p.Pos.Y += 0.001 * (rng.Float64() - 0.5)
			p.Pos.Z += 0.001 * (rng.Float64() - 0.5)
		}
	}

	return float64(total.Microseconds()) / float64(e.rounds)
}
