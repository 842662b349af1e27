package tree

import (
	"sync"
	"time"

	"github.com/pinebai/sphlatch/spatial"
)

// kind discriminates the tagged-variant node record. Per the design
// notes, a single struct with a discriminator is used instead of
// pointer-based polymorphism: every node occupies one arena slot
// regardless of variant, and unused fields for a given kind are simply
// left at their zero value.
type kind uint8

const (
	kindParticle kind = iota
	kindCell
)

// NodeHandle is a weak reference into a Tree's node arena. The zero value
// is the NULL handle, matching an external particle's freshly-created
// treeNode back-pointer. Handles are only valid against the
// Tree that produced them, and only until the referenced slot is freed
// (the embedded generation guards against stale reuse).
type NodeHandle struct {
	slot uint32 // 1-based; 0 means nil
	gen  uint32
}

// IsNil reports whether h is the NULL handle.
func (h NodeHandle) IsNil() bool { return h.slot == 0 }

func handleFor(idx int, gen uint32) NodeHandle {
	return NodeHandle{slot: uint32(idx) + 1, gen: gen}
}

func (h NodeHandle) index() int { return int(h.slot) - 1 }

// HandleFromParts reconstructs a NodeHandle from its raw slot/generation
// parts, for external storage (e.g. an ECS component) that cannot hold
// an unexported struct directly.
func HandleFromParts(slot, gen uint32) NodeHandle {
	return NodeHandle{slot: slot, gen: gen}
}

// PartsFromHandle decomposes a NodeHandle into its raw slot/generation
// parts.
func PartsFromHandle(h NodeHandle) (slot, gen uint32) {
	return h.slot, h.gen
}

// quadrupole holds the six independent entries of the symmetric,
// trace-free quadrupole tensor about a cell's center of mass.
type quadrupole struct {
	q11, q22, q33 float64
	q12, q13, q23 float64
}

// octupole holds the rank-3 moment tensor terms used by calcGravCell's
// octupole correction (grounded on bhtree_octupoles.h). gonum has no
// rank-3 tensor type, so this is a hand-rolled struct of the ten
// independent symmetric entries — the one piece of tensor math in this
// module not delegated to gonum/mat, documented in DESIGN.md.
type octupole struct {
	s11, s22, s33     float64
	s12, s13, s23     float64
	s21, s31, s32     float64
	s123              float64
}

// node is a tagged variant carrying the union of every field a
// particle-proxy, generic cell, or cost-zone cell can need.
// atBottom/isCZ/isSettled are plain bools rather than packed bitfields
// — Go has no bitfield packing worth hand-rolling for three flags.
type node struct {
	gen    uint32 // slot generation, bumped on free (stale-handle guard)
	used   bool
	k      kind
	parent NodeHandle
	next   NodeHandle
	skip   NodeHandle // first node after this node's subtree in preorder (set on every node)

	id    uint64
	depth int
	cube  spatial.Cube

	isCZ      bool
	atBottom  bool
	isSettled bool
	hidden    bool // not read or set: Gravity skips the target particle by ID

	// particle-proxy fields
	owner Particle

	// shared mass/COM fields: for a particle these are the particle's
	// own mass/position (invariant 3), as read at the last multipole
	// fold; for a cell they are the folded multipole monopole.
	mass float64
	com  spatial.Vec3

	// cell-only fields
	child [8]NodeHandle
	quad  quadrupole
	oct   octupole

	// cost-zone cell fields
	absCost  float64
	relCost  float64
	compTime time.Duration
	noParts  int

	orphFrst, orphLast NodeHandle // orphan list head/tail (particle handles)
	orphNext           NodeHandle // next-orphan link, valid only while held as an orphan

	chldFrst, chldLast NodeHandle // first/last node in this CZ's preorder linearization
}

// arena owns every node in a Tree. Handles are weak indices into nodes;
// freed slots are recycled via freeList and protected from stale reuse
// by bumping gen on free.
type arena struct {
	mu       sync.Mutex
	nodes    []node
	freeList []int
}

func newArena() *arena {
	return &arena{nodes: make([]node, 0, 1024)}
}

// alloc and free take the arena's mutex: the CZ-bottom parallel
// housekeeping pass (parallel.go) runs one goroutine per disjoint
// subtree, but every goroutine still shares the one underlying node
// slice and free list.
func (a *arena) alloc() NodeHandle {
	a.mu.Lock()
	defer a.mu.Unlock()
	if n := len(a.freeList); n > 0 {
		idx := a.freeList[n-1]
		a.freeList = a.freeList[:n-1]
		nd := &a.nodes[idx]
		*nd = node{gen: nd.gen, used: true}
		return handleFor(idx, nd.gen)
	}
	a.nodes = append(a.nodes, node{used: true})
	return handleFor(len(a.nodes)-1, 0)
}

func (a *arena) free(h NodeHandle) {
	a.mu.Lock()
	defer a.mu.Unlock()
	idx := h.index()
	nd := &a.nodes[idx]
	nd.used = false
	nd.gen++
	a.freeList = append(a.freeList, idx)
}

// get returns a pointer to the node referenced by h. Callers must not
// retain the pointer across any call that may grow the arena (alloc can
// reallocate the backing slice); re-fetch via get after allocating.
func (a *arena) get(h NodeHandle) *node {
	return &a.nodes[h.index()]
}

func (n *node) isParticle() bool { return n.k == kindParticle }

// getNoChld returns the number of non-nil children of an interior cell,
// used by the housekeeper's pruning pass (minTree).
func (n *node) getNoChld() int {
	c := 0
	for i := 0; i < 8; i++ {
		if !n.child[i].IsNil() {
			c++
		}
	}
	return c
}
