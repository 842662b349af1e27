package tree

import "github.com/pinebai/sphlatch/spatial"

// walker is the cursor-based worker base: it borrows the tree for the
// duration of one traversal and never owns nodes. Insertion uses it for
// partToCell; rebalance, housekeeping, multipole folding, gravity and
// neighbor search are separate worker types that borrow the tree the
// same way.
type walker struct {
	t   *Tree
	cur NodeHandle
}

func newWalker(t *Tree) walker { return walker{t: t, cur: t.root} }

// node returns the node currently under the cursor.
func (w *walker) node() *node { return w.t.arena.get(w.cur) }

// goRoot resets the cursor to the tree's root.
func (w *walker) goRoot() { w.cur = w.t.root }

// goChild moves the cursor to child i of the current cell. The caller
// must ensure child i is non-nil.
func (w *walker) goChild(i int) { w.cur = w.node().child[i] }

// goUp moves the cursor to the current node's parent.
func (w *walker) goUp() { w.cur = w.node().parent }

// goNext follows the preorder next pointer.
func (w *walker) goNext() { w.cur = w.node().next }

// getOctant returns the octant of p relative to the cursor's cell.
func (w *walker) getOctant(p spatial.Vec3) int {
	return w.node().cube.Octant(p)
}

// pointInsideCell reports whether p lies within the cursor's cube.
func (w *walker) pointInsideCell(p spatial.Vec3) bool {
	return w.node().cube.Contains(p)
}

// childSlotOf returns the octant slot index of h within its parent, or 8
// if h is not currently wired as a child of any cell (e.g. a freshly
// allocated orphan still parented to root but not yet settled into a
// slot). Mirrors the original's getChildNo sentinel.
func (w *walker) childSlotOf(h NodeHandle) int {
	n := w.t.arena.get(h)
	if n.parent.IsNil() {
		return 8
	}
	parent := w.t.arena.get(n.parent)
	for i := 0; i < 8; i++ {
		if parent.child[i] == h {
			return i
		}
	}
	return 8
}

// partToCell promotes the particle-leaf occupying octant `oct` of cell
// `cellH` into an interior cell, re-inserting the displaced particle into
// the correct octant of the new cell. Returns the handle
// of the newly allocated cell. Fails with ErrTooDeep if the new cell
// would exceed MaxDepth.
func (w *walker) partToCell(cellH NodeHandle, oct int) (NodeHandle, error) {
	cell := w.t.arena.get(cellH)
	if cell.depth+1 > MaxDepth {
		return NodeHandle{}, ErrTooDeep
	}
	displaced := cell.child[oct]
	childCube := cell.cube.Child(oct)
	depth := cell.depth + 1

	newCellH := w.t.arena.alloc()
	// cell may have moved after alloc; re-fetch both.
	cell = w.t.arena.get(cellH)
	newCell := w.t.arena.get(newCellH)
	newCell.k = kindCell
	newCell.parent = cellH
	newCell.depth = depth
	newCell.cube = childCube
	newCell.isCZ = cell.isCZ
	cell.child[oct] = newCellH

	// re-seat the displaced particle into the new cell.
	dp := w.t.arena.get(displaced)
	dp.parent = newCellH
	dp.depth = depth
	newOct := childCube.Octant(dp.com)
	newCell2 := w.t.arena.get(newCellH)
	newCell2.child[newOct] = displaced

	return newCellH, nil
}
