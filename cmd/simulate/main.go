// Command simulate drives the costzone tree the way the reference
// engine's own simulation loop does: particles live as ark-ECS
// entities in a simparticles.Registry rather than as plain structs, so
// the tree only ever sees them through the simparticles.View adapter
// that satisfies tree.Particle.
package main

import (
	"flag"
	"log"
	"log/slog"
	"math/rand"
	"os"

	"github.com/pinebai/sphlatch/config"
	"github.com/pinebai/sphlatch/simparticles"
	"github.com/pinebai/sphlatch/spatial"
	"github.com/pinebai/sphlatch/telemetry"
	"github.com/pinebai/sphlatch/tree"
)

func softeningFromConfig(s string) tree.Softening {
	switch s {
	case "plummer":
		return tree.SoftenPlummer
	case "spline":
		return tree.SoftenSpline
	default:
		return tree.SoftenNone
	}
}

func multipoleOrderFromConfig(s string) tree.MultipoleOrder {
	switch s {
	case "quadrupole":
		return tree.OrderQuadrupole
	case "octupole":
		return tree.OrderOctupole
	default:
		return tree.OrderMonopole
	}
}

func main() {
	configPath := flag.String("config", "", "config YAML file (empty = embedded defaults)")
	numParticles := flag.Int("particles", 2000, "number of particles to seed")
	rounds := flag.Int("rounds", 20, "number of Update rounds to run")
	seed := flag.Int64("seed", 1, "random seed for the initial particle distribution")
	outputDir := flag.String("output", "", "telemetry output directory (empty = disabled)")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("loading config: %v", err)
	}
	cfg := config.Cfg()

	out, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		log.Fatalf("creating output manager: %v", err)
	}
	defer out.Close()
	if err := out.WriteConfig(cfg); err != nil {
		log.Fatalf("writing config snapshot: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	t := tree.New(tree.Options{
		RootCenter:     spatial.Vec3{X: cfg.Tree.RootCenter[0], Y: cfg.Tree.RootCenter[1], Z: cfg.Tree.RootCenter[2]},
		RootSize:       cfg.Tree.RootSize,
		ThreadCount:    cfg.Tree.ThreadCount,
		CellsPerThread: cfg.Tree.CellsPerThread,
		Logger:         logger,
	})

	rng := rand.New(rand.NewSource(*seed))
	reg, views := seedRegistry(t, rng, *numParticles, cfg)

	perf := telemetry.NewPerfCollector(cfg.Telemetry.WindowTicks)

	gravOpts := tree.GravityOptions{
		Theta:     cfg.Gravity.Theta,
		GravConst: cfg.Gravity.GravConst,
		Eps:       cfg.Gravity.Epsilon,
		Softening: softeningFromConfig(cfg.Gravity.Softening),
		Order:     multipoleOrderFromConfig(cfg.Gravity.MultipoleOrder),
	}
	neighborRadius := 2 * cfg.Tree.RootSize * 0.05

	for round := 0; round < *rounds; round++ {
		perf.StartRound()
		report, err := t.Update(cfg.Tree.CostMarkLow, cfg.Tree.CostMarkHigh)
		if err != nil {
			log.Fatalf("update round %d: %v", round, err)
		}
		perf.RecordPhases(report.PhaseDurations)

		perf.StartPhase(telemetry.PhaseGravity)
		for _, v := range views {
			if _, err := t.Gravity(v, gravOpts); err != nil {
				log.Fatalf("round %d gravity for particle %d: %v", round, v.ParticleID(), err)
			}
		}

		perf.StartPhase(telemetry.PhaseNeighbors)
		for _, v := range views {
			neighbors, err := t.Neighbors(v, neighborRadius, cfg.Neighbors.MaxResults)
			if err != nil {
				if _, overflow := err.(*tree.TooManyNeighborsError); !overflow {
					log.Fatalf("round %d neighbors for particle %d: %v", round, v.ParticleID(), err)
				}
			}
			v.SetCost(float64(len(neighbors) + 1))
		}

		perf.EndRound()

		if err := out.WriteRound(telemetry.RoundStats{
			Round:            report.Round,
			NumParticles:     reg.Len(),
			NumCZBottom:      report.NumCZBottom,
			NumCZBottomLocal: report.NumCZBottomLocal,
			CostMin:          report.CostMin,
			CostMax:          report.CostMax,
			NumSplits:        report.NumSplits,
			NumMerges:        report.NumMerges,
		}); err != nil {
			log.Fatalf("writing round stats: %v", err)
		}

		if err := out.WritePerf(perf.Stats(), int32(round)); err != nil {
			log.Fatalf("writing perf stats: %v", err)
		}

		logger.Info("round complete",
			"round", report.Round,
			"cz_bottom", report.NumCZBottom,
			"splits", report.NumSplits,
			"merges", report.NumMerges,
		)

		driftParticles(views, rng)
	}

	perf.Stats().LogStats()
}

// seedRegistry spawns n particles into a fresh simparticles.Registry,
// inserts each into t, and returns the registry alongside the slice of
// Views used to drive Gravity/Neighbors every round. Cost starts at the
// registry's default (1) and is refreshed from each round's neighbor
// count, exercising simparticles.View.SetCost the way a density/weight
// update would in a full SPH loop.
func seedRegistry(t *tree.Tree, rng *rand.Rand, n int, cfg *config.Config) (*simparticles.Registry, []simparticles.View) {
	reg := simparticles.NewRegistry()
	views := make([]simparticles.View, 0, n)
	center := spatial.Vec3{X: cfg.Tree.RootCenter[0], Y: cfg.Tree.RootCenter[1], Z: cfg.Tree.RootCenter[2]}
	spread := cfg.Tree.RootSize * 0.3

	for i := 0; i < n; i++ {
		pos := spatial.Vec3{
			X: center.X + spread*(rng.Float64()-0.5),
			Y: center.Y + spread*(rng.Float64()-0.5),
			Z: center.Z + spread*(rng.Float64()-0.5),
		}
		v := reg.Spawn(pos, 1.0)
		if err := t.Insert(v); err != nil {
			log.Fatalf("seeding particle %d: %v", i, err)
		}
		views = append(views, v)
	}
	return reg, views
}

// driftParticles perturbs every particle's position slightly, standing
// in for an external integrator's velocity-driven position update
// between rounds.
func driftParticles(views []simparticles.View, rng *rand.Rand) {
	const step = 0.001
	for _, v := range views {
		pos := v.Position()
		pos.X += step * (rng.Float64() - 0.5)
		pos.Y += step * (rng.Float64() - 0.5)
		pos.Z += step * (rng.Float64() - 0.5)
		v.SetPosition(pos)
	}
}
