package tree

import (
	"testing"

	"github.com/pinebai/sphlatch/spatial"
)

// TestMinTreeCollapsesChain builds a deliberately nested chain of
// singleton cells (two particles placed so close together that every
// level of subdivision above their separation holds a single child
// cell) and checks that minTree removes every intermediate singleton
// cell without losing the leaves. This is the scenario the reference
// engine's minTree gets stuck on (see minTree's doc comment).
func TestMinTreeCollapsesChain(t *testing.T) {
	tr := newTestTree()
	a := &testParticle{id: 1, pos: spatial.Vec3{X: 0.50001, Y: 0.50001, Z: 0.50001}, mass: 1, cost: 1}
	b := &testParticle{id: 2, pos: spatial.Vec3{X: 0.50002, Y: 0.50002, Z: 0.50002}, mass: 1, cost: 1}
	mustInsert(t, tr, a, b)

	hk := newHousekeeper(tr)
	hk.minTree(tr.root)

	// After collapsing, walking down from root should reach a cell
	// with two distinct particle children within only a couple of
	// levels, not a long chain of single-child cells.
	cur := tr.root
	depth := 0
	for {
		n := tr.arena.get(cur)
		if n.isParticle() {
			break
		}
		if n.getNoChld() >= 2 {
			break
		}
		var next NodeHandle
		for i := 0; i < 8; i++ {
			if !n.child[i].IsNil() {
				next = n.child[i]
				break
			}
		}
		if next.IsNil() {
			t.Fatal("reached a cell with no children")
		}
		cur = next
		depth++
		if depth > 4 {
			t.Fatal("minTree failed to collapse the singleton chain within a few levels")
		}
	}
}

func TestSetNextCZVisitsEveryNode(t *testing.T) {
	tr := newTestTree()
	var parts []*testParticle
	for i := 0; i < 20; i++ {
		p := &testParticle{id: uint64(i + 1), pos: spatial.Vec3{X: float64(i%4) / 4, Y: float64((i / 4) % 4) / 4, Z: float64(i/16) / 4}, mass: 1, cost: 1}
		parts = append(parts, p)
		mustInsert(t, tr, p)
	}

	hk := newHousekeeper(tr)
	hk.minTree(tr.root)
	hk.setNextCZ()
	hk.setSkip()

	visited := 0
	cur := tr.root
	for !cur.IsNil() {
		visited++
		n := tr.arena.get(cur)
		cur = n.next
		if visited > 10000 {
			t.Fatal("next-pointer walk did not terminate")
		}
	}
	if visited < len(parts) {
		t.Fatalf("expected the preorder walk to visit at least %d nodes, got %d", len(parts), visited)
	}
}
