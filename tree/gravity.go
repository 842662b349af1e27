package tree

import (
	"math"

	"github.com/pinebai/sphlatch/spatial"
)

// Softening selects the gravitational softening kernel applied to the
// direct particle-particle and monopole cell terms, grounded on
// bhtree_monopoles.h.
type Softening int

const (
	// SoftenNone applies no softening: 1/r^2, singular at r=0.
	SoftenNone Softening = iota
	// SoftenPlummer applies Plummer softening: 1/(r^2+eps^2)^(3/2).
	SoftenPlummer
	// SoftenSpline applies the Hernquist & Katz (1989) cubic-spline
	// kernel, grounded on splineOSmoR3.
	SoftenSpline
)

// MultipoleOrder selects how many moments of a cell's multipole
// expansion are evaluated in an accepted cell-particle interaction,
// grounded on bhtree_octupoles.h::calcGravCell.
type MultipoleOrder int

const (
	OrderMonopole MultipoleOrder = iota
	OrderQuadrupole
	OrderOctupole
)

// GravityOptions configures one Gravity walk. GravConst and Eps are
// simulation units supplied by the caller. The zero value of Softening
// is SoftenNone and of Order is OrderMonopole; use NewGravityOptions
// for the reference engine's defaults (Plummer softening, full
// octupole expansion).
type GravityOptions struct {
	Theta     float64
	GravConst float64
	Eps       float64
	Softening Softening
	Order     MultipoleOrder
}

// NewGravityOptions returns GravityOptions with the reference engine's
// defaults (Plummer softening, full octupole expansion) and the given
// theta/gravConst/eps.
func NewGravityOptions(theta, gravConst, eps float64) GravityOptions {
	return GravityOptions{Theta: theta, GravConst: gravConst, Eps: eps, Softening: SoftenPlummer, Order: OrderOctupole}
}

// Gravity evaluates the total acceleration on p from every other
// particle currently in the tree, accepting a cell's multipole
// expansion in place of direct summation whenever the MAC is satisfied
//. theta is the opening-angle parameter: smaller theta
// forces deeper descent and higher accuracy. Self-interaction is
// skipped by identity, mirroring the reference engine's "hidden"
// self-avoidance trick without needing to mutate the tree for the
// duration of the walk.
//
// theta > 1 is unusual but not rejected: it is logged as a warning,
// matching bhtree_generic.h's constructor rather than silently clamped.
func (t *Tree) Gravity(p Particle, opts GravityOptions) (spatial.Vec3, error) {
	if opts.Theta < 0 {
		return spatial.Vec3{}, ErrNegativeTheta
	}
	if opts.Theta > 1 && t.logger != nil {
		t.logger.Warn("gravity: theta exceeds 1, multipole acceptance will be very permissive", "theta", opts.Theta)
	}
	gw := gravityWalker{
		t: t, pos: p.Position(), selfID: p.ParticleID(),
		theta: opts.Theta, g: opts.GravConst, eps: opts.Eps,
		softening: opts.Softening, order: opts.Order,
	}
	return gw.run()
}

type gravityWalker struct {
	t      *Tree
	pos    spatial.Vec3
	selfID uint64
	theta  float64
	g      float64
	eps    float64

	softening Softening
	order     MultipoleOrder
}

func (gw *gravityWalker) run() (spatial.Vec3, error) {
	var accel spatial.Vec3
	cur := gw.t.root
	for !cur.IsNil() {
		n := gw.t.arena.get(cur)

		if n.isParticle() {
			if n.owner == nil || n.owner.ParticleID() != gw.selfID {
				accel = spatial.Add(accel, gw.directForce(n.com, n.mass))
			}
			cur = n.next
			continue
		}

		if n.mass == 0 {
			cur = n.skip
			continue
		}

		d := spatial.Sub(gw.pos, n.com)
		r := spatial.Norm(d)
		cellSize := n.cube.HalfSize * 2
		if r > 0 && cellSize/r < gw.theta {
			accel = spatial.Add(accel, gw.cellForce(n, d, r))
			cur = n.skip
			continue
		}
		cur = n.next
	}
	return accel, nil
}

// directForce is the particle-particle pair force, using the active
// softening kernel (softenedInvR3). cellForce computes a cell's
// monopole term separately.
func (gw *gravityWalker) directForce(com spatial.Vec3, mass float64) spatial.Vec3 {
	d := spatial.Sub(gw.pos, com)
	r2 := spatial.Dot(d, d)
	if r2 == 0 {
		return spatial.Vec3{}
	}
	invR3 := gw.softenedInvR3(r2)
	return spatial.Scale(-gw.g*mass*invR3, d)
}

// softenedInvR3 returns the softened 1/r^3 factor for the active
// kernel: unsoftened 1/r^3, Plummer 1/(r^2+eps^2)^(3/2) (grounded on
// bhtree_generic.h's direct-force path), or the Hernquist & Katz
// cubic-spline kernel, grounded on bhtree_monopoles.h::splineOSmoR3.
func (gw *gravityWalker) softenedInvR3(r2 float64) float64 {
	switch gw.softening {
	case SoftenPlummer:
		return 1 / math.Pow(r2+gw.eps*gw.eps, 1.5)
	case SoftenSpline:
		return gw.splineInvR3(r2)
	default:
		if r2 == 0 {
			return 0
		}
		return 1 / math.Pow(r2, 1.5)
	}
}

// splineInvR3 implements the Hernquist & Katz (1989) cubic-spline
// softening kernel as an effective 1/r^3 multiplier, following
// splineOSmoR3's two-branch piecewise form over u = r/eps.
func (gw *gravityWalker) splineInvR3(r2 float64) float64 {
	if gw.eps <= 0 {
		if r2 == 0 {
			return 0
		}
		return 1 / math.Pow(r2, 1.5)
	}
	r := math.Sqrt(r2)
	u := r / gw.eps
	eps3 := gw.eps * gw.eps * gw.eps
	var wr3 float64
	switch {
	case u < 1:
		wr3 = (4.0/3.0 - 6.0/5.0*u*u + 0.5*u*u*u) / eps3
	case u < 2:
		wr3 = (8.0/3.0 - 3*u + 6.0/5.0*u*u - 1.0/6.0*u*u*u - 1.0/15.0/(u*u*u)) / eps3
	default:
		if r == 0 {
			return 0
		}
		return 1 / (r2 * r)
	}
	return wr3
}

// cellForce is the accepted-cell multipole expansion: monopole term,
// optionally followed by quadrupole and octupole corrections according
// to gw.order, grounded on bhtree_octupoles.h's calcGravCell.
func (gw *gravityWalker) cellForce(n *node, d spatial.Vec3, r float64) spatial.Vec3 {
	r2 := r * r
	invR3 := gw.softenedInvR3(r2)
	accel := spatial.Scale(-gw.g*n.mass*invR3, d)

	if gw.order == OrderMonopole {
		return accel
	}

	r5 := r2 * r2 * r
	r7 := r5 * r2
	if r5 == 0 {
		return accel
	}

	qd := quadVec(n.quad, d)
	dQd := spatial.Dot(d, qd)
	quadAccel := spatial.Sub(
		spatial.Scale(gw.g/r5, qd),
		spatial.Scale(gw.g*2.5*dQd/r7, d),
	)
	accel = spatial.Add(accel, quadAccel)

	if gw.order == OrderQuadrupole {
		return accel
	}

	r9 := r7 * r2
	if r9 > 0 {
		octContraction := octScalar(n.oct, d)
		octAccel := spatial.Scale(-gw.g*3.5*octContraction/r9, d)
		accel = spatial.Add(accel, octAccel)
	}

	return accel
}

// quadVec computes Q*d for the symmetric quadrupole tensor Q.
func quadVec(q quadrupole, d spatial.Vec3) spatial.Vec3 {
	return spatial.Vec3{
		X: q.q11*d.X + q.q12*d.Y + q.q13*d.Z,
		Y: q.q12*d.X + q.q22*d.Y + q.q23*d.Z,
		Z: q.q13*d.X + q.q23*d.Y + q.q33*d.Z,
	}
}

// octScalar contracts the rank-3 octupole tensor with d three times:
// sum_ijk S_ijk d_i d_j d_k.
func octScalar(o octupole, d spatial.Vec3) float64 {
	sum := o.s11*d.X*d.X*d.X + o.s22*d.Y*d.Y*d.Y + o.s33*d.Z*d.Z*d.Z
	sum += 3 * (o.s12*d.X*d.X*d.Y + o.s13*d.X*d.X*d.Z + o.s23*d.Y*d.Y*d.Z +
		o.s21*d.Y*d.Y*d.X + o.s31*d.Z*d.Z*d.X + o.s32*d.Z*d.Z*d.Y)
	sum += 6 * o.s123 * d.X * d.Y * d.Z
	return sum
}
