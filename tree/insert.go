package tree

import "github.com/pinebai/sphlatch/spatial"

// Insert places a brand-new particle into the tree, descending from the
// root and promoting particle-leaves to cells as needed.
// p must not already be attached to this or any other tree.
func (t *Tree) Insert(p Particle) error {
	pos := p.Position()
	root := t.arena.get(t.root)
	if !root.cube.Contains(pos) {
		return ErrPartOutsideRoot
	}

	return t.descendAndPlace(t.root, pos, func(cube spatial.Cube, parent NodeHandle, depth int) (NodeHandle, error) {
		h := t.arena.alloc()
		n := t.arena.get(h)
		n.k = kindParticle
		n.parent = parent
		n.depth = depth
		n.cube = cube
		n.owner = p
		n.mass = p.Mass()
		n.com = pos
		n.id = p.ParticleID()
		p.SetTreeNode(h)
		return h, nil
	})
}

// descendAndPlace walks down from startH following the octant of pos,
// promoting any particle-leaf it meets along the way via partToCell,
// until it reaches an empty child slot, then calls place to obtain the
// handle to wire into that slot. Shared by Insert (which allocates a
// fresh proxy) and pushDownOrphans (which re-seats an existing one).
func (t *Tree) descendAndPlace(startH NodeHandle, pos spatial.Vec3, place func(cube spatial.Cube, parent NodeHandle, depth int) (NodeHandle, error)) error {
	cur := startH
	w := walker{t: t}
	rootSize := t.arena.get(t.root).cube.HalfSize * 2

	for {
		n := t.arena.get(cur)
		oct := n.cube.Octant(pos)
		childH := n.child[oct]

		if childH.IsNil() {
			leafH, err := place(n.cube.Child(oct), cur, n.depth+1)
			if err != nil {
				return err
			}
			n = t.arena.get(cur) // place may have grown the arena
			n.child[oct] = leafH
			return nil
		}

		cn := t.arena.get(childH)
		if !cn.isParticle() {
			cur = childH
			continue
		}

		if n.depth+1 >= MaxDepth {
			return ErrTooDeep
		}
		if coincident(pos, cn.com, rootSize) {
			return ErrPartsTooClose
		}

		newCellH, err := w.partToCell(cur, oct)
		if err != nil {
			return err
		}
		cur = newCellH
	}
}

func coincident(a, b spatial.Vec3, rootSize float64) bool {
	tol := MinSeparation * rootSize
	return absf(a.X-b.X) < tol && absf(a.Y-b.Y) < tol && absf(a.Z-b.Z) < tol
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// moveAll re-seats every particle whose position has drifted outside the
// cell it currently occupies: it detaches such particles into t.orphans
// without yet reinserting them, so the CZ rebalance (which depends on
// stable cost accounting of the still-attached particles) runs against a
// consistent tree. Grounded on bhtree.cpp's update() orphan-collection
// pass.
func (t *Tree) moveAll() error {
	t.orphans = t.orphans[:0]
	for _, cz := range t.czBottom {
		t.collectMoved(cz)
	}
	return nil
}

func (t *Tree) collectMoved(h NodeHandle) {
	n := t.arena.get(h)
	if n.isParticle() {
		return
	}
	for i := 0; i < 8; i++ {
		ch := n.child[i]
		if ch.IsNil() {
			continue
		}
		cn := t.arena.get(ch)
		if cn.isParticle() {
			if !n.cube.Child(i).Contains(cn.owner.Position()) {
				t.detach(h, i)
			}
			continue
		}
		t.collectMoved(ch)
	}
}

func (t *Tree) detach(parentH NodeHandle, octant int) {
	parent := t.arena.get(parentH)
	ch := parent.child[octant]
	parent.child[octant] = NodeHandle{}
	cn := t.arena.get(ch)
	cn.parent = NodeHandle{}
	t.orphans = append(t.orphans, ch)
}

// pushDownOrphans re-inserts every pending orphan whose current position
// falls within cz's cube back into cz's subtree, via the same
// promote-on-conflict walk Insert uses. Orphans whose position lies
// outside cz's cube stay in t.orphans; Update returns ErrPartOutsideRoot
// for any left over outside the root and seats the rest from the root.
func (t *Tree) pushDownOrphans(cz NodeHandle) error {
	czCube := t.arena.get(cz).cube
	remaining := t.orphans[:0]
	for _, oh := range t.orphans {
		on := t.arena.get(oh)
		pos := on.owner.Position()
		if !czCube.Contains(pos) {
			remaining = append(remaining, oh)
			continue
		}
		if err := t.insertProxy(cz, oh); err != nil {
			return err
		}
	}
	t.orphans = remaining
	return nil
}

// insertProxy re-seats an existing particle-proxy node (already carrying
// its owner) into the subtree rooted at startH.
func (t *Tree) insertProxy(startH, oh NodeHandle) error {
	pos := t.arena.get(oh).owner.Position()
	return t.descendAndPlace(startH, pos, func(cube spatial.Cube, parent NodeHandle, depth int) (NodeHandle, error) {
		n := t.arena.get(oh)
		n.parent = parent
		n.depth = depth
		n.cube = cube
		n.com = pos
		return oh, nil
	})
}
