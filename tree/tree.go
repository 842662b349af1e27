// Package tree implements the Barnes–Hut/Costzone adaptive spatial index
// at the core of the SPH engine: a single octree that simultaneously
// serves load balancing (cost-zone decomposition), gravity evaluation
// (multipole-accepted cell-particle interactions), and SPH neighbor
// enumeration.
package tree

import (
	"log/slog"
	"time"

	"github.com/pinebai/sphlatch/spatial"
)

// Tree is the costzone octree. It owns an arena of nodes
// (the only thing it owns — external particle records are borrowed
// through the Particle interface) and the bookkeeping the update
// pipeline needs between rounds.
type Tree struct {
	arena *arena
	root  NodeHandle

	round int

	// czBottom is the globally unique partition of atBottom CZ cells.
	// czBottomLoc is the subset that actually owns a non-empty subtree
	// after the last rebalance.
	czBottom    []NodeHandle
	czBottomLoc []NodeHandle

	// orphans holds particle-proxy handles detached by moveAll, pending
	// reinsertion by pushDownOrphans. Transient across a single Update.
	orphans []NodeHandle

	threadCount    int
	cellsPerThread int

	logger *slog.Logger
}

// Options configures a new Tree.
type Options struct {
	RootCenter     spatial.Vec3
	RootSize       float64
	ThreadCount    int
	CellsPerThread int
	Logger         *slog.Logger
}

// New constructs a Tree with an empty root cell. ThreadCount and
// CellsPerThread must be positive; their product is the target number of
// CZ-bottom cells the rebalancer aims for.
func New(opts Options) *Tree {
	if opts.ThreadCount <= 0 {
		opts.ThreadCount = 1
	}
	if opts.CellsPerThread <= 0 {
		opts.CellsPerThread = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	t := &Tree{
		arena:          newArena(),
		threadCount:    opts.ThreadCount,
		cellsPerThread: opts.CellsPerThread,
		logger:         logger,
	}

	rootSize := opts.RootSize
	if rootSize <= 0 {
		rootSize = 1
	}
	t.root = t.arena.alloc()
	rootNode := t.arena.get(t.root)
	rootNode.k = kindCell
	rootNode.isCZ = true
	rootNode.atBottom = true
	rootNode.depth = 0
	rootNode.cube = spatial.Cube{Center: opts.RootCenter, HalfSize: rootSize / 2}

	t.czBottom = []NodeHandle{t.root}
	t.czBottomLoc = []NodeHandle{t.root}

	return t
}

// SetExtent overrides the root cell's bounding box. Must be called
// before the first Insert.
func (t *Tree) SetExtent(center spatial.Vec3, size float64) {
	root := t.arena.get(t.root)
	root.cube = spatial.Cube{Center: center, HalfSize: size / 2}
}

// Round returns the number of completed Update rounds.
func (t *Tree) Round() int { return t.round }

// NumCZBottom returns the current number of CZ-bottom cells.
func (t *Tree) NumCZBottom() int { return len(t.czBottom) }

// UpdateReport summarizes one Update() round for telemetry purposes.
type UpdateReport struct {
	Round            int
	NumCZBottom      int
	NumCZBottomLocal int
	CostMin          float64
	CostMax          float64
	NumSplits        int
	NumMerges        int
	PhaseDurations   map[string]time.Duration
}

// Update runs the per-step pipeline: re-seat moved particles into their
// CZ-bottom cells, rebalance the cost-zone decomposition, push orphans
// down into private subtrees, housekeep each CZ-bottom subtree in
// parallel (pruning, multipoles), then, on a single thread, stitch the
// next/skip pointers across the whole tree and fold the CZ-top
// multipoles. Must be called once per simulation
// step before any Gravity/Neighbors walk.
func (t *Tree) Update(cmarkLow, cmarkHigh float64) (UpdateReport, error) {
	report := UpdateReport{PhaseDurations: make(map[string]time.Duration)}

	normCellCost := 1.0 / float64(t.threadCount*t.cellsPerThread)
	costMin := normCellCost * cmarkLow
	costMax := normCellCost * cmarkHigh
	if cmarkLow <= 0 || cmarkHigh <= 0 || cmarkLow >= cmarkHigh {
		return report, ErrBadCostBand
	}

	phase := func(name string, fn func() error) error {
		start := time.Now()
		err := fn()
		report.PhaseDurations[name] = time.Since(start)
		return err
	}

	// Phase 1: re-seat every particle currently held by a CZ-bottom cell.
	if err := phase(PhaseMoveAll, func() error {
		return t.moveAll()
	}); err != nil {
		return report, err
	}

	// Phase 2: rebalance the CZ decomposition to meet the cost band.
	builder := newCZBuilder(t)
	if err := phase(PhaseRebalance, func() error {
		return builder.rebalance(costMin, costMax)
	}); err != nil {
		return report, err
	}
	report.NumSplits = builder.splits
	report.NumMerges = builder.merges

	// Phase 3: push orphans down into private subtrees.
	if err := phase(PhasePushDown, func() error {
		for _, cz := range t.czBottom {
			if err := t.pushDownOrphans(cz); err != nil {
				return err
			}
		}
		// Orphans no CZ-bottom cube contains: a position outside the
		// root is fatal; any other is seated by a descent from the root.
		rootCube := t.arena.get(t.root).cube
		for _, oh := range t.orphans {
			if !rootCube.Contains(t.arena.get(oh).owner.Position()) {
				return ErrPartOutsideRoot
			}
			if err := t.insertProxy(t.root, oh); err != nil {
				return err
			}
		}
		t.orphans = t.orphans[:0]
		return nil
	}); err != nil {
		return report, err
	}

	// Phase 4: housekeep + fold multipoles per CZ-bottom subtree, in
	// parallel across CZ-bottom cells.
	if err := phase(PhaseHousekeepBottom, func() error {
		return t.housekeepBottomParallel()
	}); err != nil {
		return report, err
	}

	// Phase 5: housekeep the CZ top on a single thread after the
	// barrier — cross-CZ next/skip pointers and the top-level
	// multipole fold.
	if err := phase(PhaseHousekeepTop, func() error {
		hk := newHousekeeper(t)
		hk.setNextCZ()
		hk.setSkip()
		mp := newMultipoleWorker(t)
		mp.calcMultipolesCZ()
		return nil
	}); err != nil {
		return report, err
	}

	t.round++
	t.recomputeCZBottomLoc()

	report.Round = t.round
	report.NumCZBottom = len(t.czBottom)
	report.NumCZBottomLocal = len(t.czBottomLoc)
	report.CostMin = costMin
	report.CostMax = costMax
	return report, nil
}

// RedoMultipoles is the fast path that reuses the existing topology and
// only recomputes moments, for when particle masses change but
// positions do not.
func (t *Tree) RedoMultipoles() {
	mp := newMultipoleWorker(t)
	for _, cz := range t.czBottom {
		mp.calcMultipoles(cz)
	}
	mp.calcMultipolesCZ()
}

// Clear destroys the entire tree and resets it to an empty root.
func (t *Tree) Clear() {
	root := t.arena.get(t.root)
	center, size := root.cube.Center, root.cube.HalfSize*2

	clearSubtreeChildren(t, t.root)

	t.arena = newArena()
	t.root = t.arena.alloc()
	rootNode := t.arena.get(t.root)
	rootNode.k = kindCell
	rootNode.isCZ = true
	rootNode.atBottom = true
	rootNode.cube = spatial.Cube{Center: center, HalfSize: size / 2}

	t.czBottom = []NodeHandle{t.root}
	t.czBottomLoc = []NodeHandle{t.root}
	t.round = 0
}

// recomputeCZBottomLoc rebuilds the subset of CZ-bottom cells that
// actually own a non-empty subtree.
func (t *Tree) recomputeCZBottomLoc() {
	loc := t.czBottomLoc[:0]
	for _, cz := range t.czBottom {
		n := t.arena.get(cz)
		nonEmpty := false
		for i := 0; i < 8; i++ {
			if !n.child[i].IsNil() {
				nonEmpty = true
				break
			}
		}
		if nonEmpty {
			loc = append(loc, cz)
		}
	}
	t.czBottomLoc = loc
}

// Phase name constants used both by UpdateReport and by telemetry's
// phase-percentage breakdown, mirroring the reference engine's
// PhaseXxx constants in telemetry/perf.go.
const (
	PhaseMoveAll         = "move_all"
	PhaseRebalance       = "rebalance"
	PhasePushDown        = "push_down_orphans"
	PhaseHousekeepBottom = "housekeep_bottom"
	PhaseHousekeepTop    = "housekeep_top"
	PhaseGravity         = "gravity"
	PhaseNeighbors       = "neighbors"
)
