package tree

import "github.com/pinebai/sphlatch/spatial"

// NeighborResult is one hit from Tree.Neighbors.
type NeighborResult struct {
	ParticleID uint64
	Particle   Particle
	Dist2      float64
}

// Neighbors enumerates every other particle within radius of p,
// pruning whole cells the search sphere cannot reach,
// grounded on bhtree_generic.h's findNeighbours/cellTotOutsideSphere
// and shaped after a radius-query walk over a pruned spatial index. Returns
// a *TooManyNeighborsError (unwrapped, so a type assertion works) if
// more than maxResults particles fall within radius; the result slice
// returned alongside that error holds the first maxResults hits found.
func (t *Tree) Neighbors(p Particle, radius float64, maxResults int) ([]NeighborResult, error) {
	nw := neighborWalker{t: t, pos: p.Position(), selfID: p.ParticleID(), radius2: radius * radius, radius: radius, max: maxResults}
	return nw.run()
}

type neighborWalker struct {
	t       *Tree
	pos     spatial.Vec3
	selfID  uint64
	radius  float64
	radius2 float64
	max     int
}

func (nw *neighborWalker) run() ([]NeighborResult, error) {
	var results []NeighborResult
	cur := nw.t.root
	for !cur.IsNil() {
		n := nw.t.arena.get(cur)

		if n.isParticle() {
			if n.owner != nil && n.owner.ParticleID() != nw.selfID {
				d2 := spatial.Norm2(spatial.Sub(n.com, nw.pos))
				if d2 <= nw.radius2 {
					if len(results) >= nw.max {
						return results, &TooManyNeighborsError{ParticleID: nw.selfID, Found: len(results) + 1, Max: nw.max}
					}
					results = append(results, NeighborResult{ParticleID: n.owner.ParticleID(), Particle: n.owner, Dist2: d2})
				}
			}
			cur = n.next
			continue
		}

		if nw.cellTotOutsideSphere(n) {
			cur = n.skip
			continue
		}
		cur = n.next
	}
	return results, nil
}

// cellTotOutsideSphere reports whether the query sphere cannot reach
// any part of n's cube: the distance from the query point to the
// cell's center, minus the cell's half-diagonal (the farthest any
// corner could extend toward the query point), already exceeds radius.
func (nw *neighborWalker) cellTotOutsideSphere(n *node) bool {
	dist := spatial.Norm(spatial.Sub(n.cube.Center, nw.pos))
	return dist-n.cube.HalfDiagonal() > nw.radius
}
