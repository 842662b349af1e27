package simparticles

import (
	"testing"

	"github.com/pinebai/sphlatch/spatial"
	"github.com/pinebai/sphlatch/tree"
)

func TestSpawnAndView(t *testing.T) {
	reg := NewRegistry()
	v := reg.Spawn(spatial.Vec3{X: 1, Y: 2, Z: 3}, 5)

	if got := v.Position(); got.X != 1 || got.Y != 2 || got.Z != 3 {
		t.Fatalf("unexpected position: %+v", got)
	}
	if v.Mass() != 5 {
		t.Fatalf("expected mass 5, got %v", v.Mass())
	}
	if v.Cost() != 1 {
		t.Fatalf("expected default cost 1, got %v", v.Cost())
	}
	if !v.TreeNode().IsNil() {
		t.Fatal("expected fresh particle to have a nil tree handle")
	}
}

func TestViewSatisfiesTreeParticle(t *testing.T) {
	var _ tree.Particle = View{}
}

func TestSetTreeNodeRoundTrips(t *testing.T) {
	reg := NewRegistry()
	v := reg.Spawn(spatial.Vec3{}, 1)

	h := tree.HandleFromParts(7, 3)
	v.SetTreeNode(h)
	got := v.TreeNode()
	slot, gen := tree.PartsFromHandle(got)
	if slot != 7 || gen != 3 {
		t.Fatalf("expected handle to round-trip (7,3), got (%d,%d)", slot, gen)
	}
}

func TestEachVisitsEverySpawnedParticle(t *testing.T) {
	reg := NewRegistry()
	want := map[uint64]bool{}
	for i := 0; i < 5; i++ {
		v := reg.Spawn(spatial.Vec3{X: float64(i)}, 1)
		want[v.ParticleID()] = true
	}

	got := map[uint64]bool{}
	reg.Each(func(v View) { got[v.ParticleID()] = true })

	if len(got) != len(want) {
		t.Fatalf("expected %d particles, got %d", len(want), len(got))
	}
	for id := range want {
		if !got[id] {
			t.Fatalf("missing particle %d from Each", id)
		}
	}
}
