package tree

import (
	"gonum.org/v1/gonum/mat"

	"github.com/pinebai/sphlatch/spatial"
)

// multipoleWorker folds particle mass up into cell multipole moments
// (monopole, quadrupole, octupole), postorder, grounded on
// bhtree_monopoles.h and bhtree_octupoles.h. The quadrupole's symmetric
// 3x3 tensor is accumulated with gonum's mat.SymDense rather than by
// hand; gonum has no rank-3 equivalent, so the octupole (node.go's
// hand-rolled ten-entry struct) is folded directly.
type multipoleWorker struct {
	t *Tree
}

func newMultipoleWorker(t *Tree) *multipoleWorker {
	return &multipoleWorker{t: t}
}

// calcMultipoles recomputes every moment in the subtree rooted at h,
// recursing all the way to the particle leaves, whose mass and position
// are first re-read from their owners. Used for the parallel
// per-CZ-bottom pass, where each goroutine owns a disjoint subtree.
func (mp *multipoleWorker) calcMultipoles(h NodeHandle) {
	n := mp.t.arena.get(h)
	if n.isParticle() {
		if n.owner != nil {
			n.mass = n.owner.Mass()
			n.com = n.owner.Position()
		}
		return
	}
	for i := 0; i < 8; i++ {
		ch := n.child[i]
		if ch.IsNil() {
			continue
		}
		mp.calcMultipoles(ch)
		n = mp.t.arena.get(h)
	}
	mp.foldNode(h)
}

// calcMultipolesCZ finalizes the CZ-top cells above the CZ-bottom
// boundary, after the parallel per-bottom pass has already produced
// correct moments for every CZ-bottom subtree. It treats atBottom cells
// as already-folded leaves rather than redescending into them.
func (mp *multipoleWorker) calcMultipolesCZ() {
	mp.foldCZTop(mp.t.root)
}

func (mp *multipoleWorker) foldCZTop(h NodeHandle) {
	n := mp.t.arena.get(h)
	if n.atBottom || n.isParticle() {
		return
	}
	for i := 0; i < 8; i++ {
		ch := n.child[i]
		if ch.IsNil() {
			continue
		}
		mp.foldCZTop(ch)
		n = mp.t.arena.get(h)
	}
	mp.foldNode(h)
}

// foldNode aggregates a cell's moments from its direct children,
// assuming every child's own moments are already current.
func (mp *multipoleWorker) foldNode(h NodeHandle) {
	n := mp.t.arena.get(h)

	var totalMass float64
	var com spatial.Vec3
	for i := 0; i < 8; i++ {
		ch := n.child[i]
		if ch.IsNil() {
			continue
		}
		cn := mp.t.arena.get(ch)
		totalMass += cn.mass
		com = spatial.Add(com, spatial.Scale(cn.mass, cn.com))
	}
	if totalMass > 0 {
		com = spatial.Scale(1/totalMass, com)
	}
	n.mass = totalMass
	n.com = com

	q := mat.NewSymDense(3, nil)
	var oct octupole
	for i := 0; i < 8; i++ {
		ch := n.child[i]
		if ch.IsNil() {
			continue
		}
		cn := mp.t.arena.get(ch)
		d := spatial.Sub(cn.com, com)
		r2 := spatial.Dot(d, d)
		childQ := quadToSym(cn.quad)
		for a := 0; a < 3; a++ {
			for b := a; b < 3; b++ {
				delta := 0.0
				if a == b {
					delta = 1
				}
				shifted := childQ.At(a, b) + cn.mass*(3*axis(d, a)*axis(d, b)-delta*r2)
				q.SetSym(a, b, q.At(a, b)+shifted)
			}
		}

		m := cn.mass
		oct.s11 += cn.oct.s11 + m*d.X*d.X*d.X
		oct.s22 += cn.oct.s22 + m*d.Y*d.Y*d.Y
		oct.s33 += cn.oct.s33 + m*d.Z*d.Z*d.Z
		oct.s12 += cn.oct.s12 + m*d.X*d.X*d.Y
		oct.s13 += cn.oct.s13 + m*d.X*d.X*d.Z
		oct.s23 += cn.oct.s23 + m*d.Y*d.Y*d.Z
		oct.s21 += cn.oct.s21 + m*d.Y*d.Y*d.X
		oct.s31 += cn.oct.s31 + m*d.Z*d.Z*d.X
		oct.s32 += cn.oct.s32 + m*d.Z*d.Z*d.Y
		oct.s123 += cn.oct.s123 + m*d.X*d.Y*d.Z
	}

	n.quad = symToQuad(q)
	n.oct = oct
}

func axis(v spatial.Vec3, i int) float64 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

func quadToSym(q quadrupole) *mat.SymDense {
	m := mat.NewSymDense(3, nil)
	m.SetSym(0, 0, q.q11)
	m.SetSym(1, 1, q.q22)
	m.SetSym(2, 2, q.q33)
	m.SetSym(0, 1, q.q12)
	m.SetSym(0, 2, q.q13)
	m.SetSym(1, 2, q.q23)
	return m
}

func symToQuad(m *mat.SymDense) quadrupole {
	return quadrupole{
		q11: m.At(0, 0), q22: m.At(1, 1), q33: m.At(2, 2),
		q12: m.At(0, 1), q13: m.At(0, 2), q23: m.At(1, 2),
	}
}
