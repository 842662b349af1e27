package tree

// clearSubtreeChildren frees every descendant of h (but not h itself),
// detaching any particle's owner from its proxy on the way so external
// callers can tell the particle is no longer tracked by a tree.
func clearSubtreeChildren(t *Tree, h NodeHandle) {
	n := t.arena.get(h)
	for i := 0; i < 8; i++ {
		ch := n.child[i]
		if ch.IsNil() {
			continue
		}
		n.child[i] = NodeHandle{}
		freeSubtree(t, ch)
		n = t.arena.get(h)
	}
}

func freeSubtree(t *Tree, h NodeHandle) {
	n := t.arena.get(h)
	if n.isParticle() {
		if n.owner != nil {
			n.owner.SetTreeNode(NodeHandle{})
		}
		t.arena.free(h)
		return
	}
	for i := 0; i < 8; i++ {
		ch := n.child[i]
		if ch.IsNil() {
			continue
		}
		freeSubtree(t, ch)
		n = t.arena.get(h)
	}
	t.arena.free(h)
}
