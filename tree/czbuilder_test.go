package tree

import (
	"math/rand"
	"testing"

	"github.com/pinebai/sphlatch/spatial"
)

// TestRebalanceSplitsUnderHighCost inserts far more particles than the
// configured cost band allows in a single CZ-bottom cell and checks
// that rebalancing produces more than one CZ-bottom cell afterward.
func TestRebalanceSplitsUnderHighCost(t *testing.T) {
	tr := New(Options{
		RootCenter:     spatial.Vec3{X: 0.5, Y: 0.5, Z: 0.5},
		RootSize:       1.0,
		ThreadCount:    2,
		CellsPerThread: 2,
	})
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 200; i++ {
		p := &testParticle{
			id:   uint64(i + 1),
			pos:  spatial.Vec3{X: rng.Float64(), Y: rng.Float64(), Z: rng.Float64()},
			mass: 1,
			cost: 1,
		}
		if err := tr.Insert(p); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	report, err := tr.Update(0.8, 1.2)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if report.NumCZBottom <= 1 {
		t.Fatalf("expected rebalance to split the root into multiple CZ-bottom cells, got %d", report.NumCZBottom)
	}
	if report.NumSplits == 0 {
		t.Fatal("expected at least one split to be recorded")
	}

	// Every CZ-bottom cell's accounted cost should respect the
	// configured band (modulo the single-particle degenerate case,
	// which cannot be split further).
	for _, cz := range tr.czBottom {
		n := tr.arena.get(cz)
		if n.absCost > report.CostMax && !n.isParticle() && n.getNoChld() > 1 {
			t.Fatalf("CZ-bottom cell cost %v exceeds costMax %v after rebalance", n.absCost, report.CostMax)
		}
	}
}

// TestRebalanceStaysSingleUnderLowCost checks that a handful of cheap
// particles, whose combined cost sits well under costMax, never
// triggers a split.
func TestRebalanceStaysSingleUnderLowCost(t *testing.T) {
	tr := New(Options{
		RootCenter:     spatial.Vec3{X: 0.5, Y: 0.5, Z: 0.5},
		RootSize:       1.0,
		ThreadCount:    4,
		CellsPerThread: 8,
	})
	var parts []*testParticle
	for i := 0; i < 4; i++ {
		p := &testParticle{id: uint64(i + 1), pos: spatial.Vec3{X: 0.1 + 0.2*float64(i), Y: 0.5, Z: 0.5}, mass: 1, cost: 0.001}
		parts = append(parts, p)
		if err := tr.Insert(p); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	report, err := tr.Update(0.8, 1.2)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if report.NumCZBottom != 1 {
		t.Fatalf("expected a single CZ-bottom cell for a low-cost distribution, got %d", report.NumCZBottom)
	}
}
