// Package spatial provides the geometry primitives the costzone tree is
// built on: 3D vectors, cubic axis-aligned bounding boxes, and octant
// arithmetic. Vector arithmetic is delegated to gonum's r3 package rather
// than hand-rolled, matching the rest of this module's reliance on gonum
// for numerical primitives.
package spatial

import "gonum.org/v1/gonum/spatial/r3"

// Vec3 is a point or displacement in 3-space.
type Vec3 = r3.Vec

// Add, Sub, Scale are re-exported for call sites that prefer the spatial
// package's vocabulary over importing r3 directly.
func Add(a, b Vec3) Vec3     { return r3.Add(a, b) }
func Sub(a, b Vec3) Vec3     { return r3.Sub(a, b) }
func Scale(f float64, v Vec3) Vec3 { return r3.Scale(f, v) }
func Dot(a, b Vec3) float64  { return r3.Dot(a, b) }
func Norm(v Vec3) float64 { return r3.Norm(v) }

// Norm2 returns the squared Euclidean length of v, avoiding the sqrt in
// hot paths that only need a comparison (MAC tests, sphere exclusion).
func Norm2(v Vec3) float64 { return r3.Dot(v, v) }

// Cube is a cubic axis-aligned bounding box: the natural cell shape of an
// octree, described by its center and half-side length.
type Cube struct {
	Center   Vec3
	HalfSize float64
}

// Octant returns the 3-bit octant index of p relative to c: bit 0 is set
// when p.X >= c.Center.X, bit 1 for Y, bit 2 for Z.
func (c Cube) Octant(p Vec3) int {
	oct := 0
	if p.X >= c.Center.X {
		oct |= 1
	}
	if p.Y >= c.Center.Y {
		oct |= 2
	}
	if p.Z >= c.Center.Z {
		oct |= 4
	}
	return oct
}

// Child returns the AABB of the i'th octant child of c.
func (c Cube) Child(i int) Cube {
	half := c.HalfSize / 2
	shift := Vec3{X: half, Y: half, Z: half}
	if i&1 == 0 {
		shift.X = -half
	}
	if i&2 == 0 {
		shift.Y = -half
	}
	if i&4 == 0 {
		shift.Z = -half
	}
	return Cube{Center: Add(c.Center, shift), HalfSize: half}
}

// Contains returns true iff p lies within c's cube, using the Chebyshev
// (L-infinity) norm: |p - c|∞ <= s.
func (c Cube) Contains(p Vec3) bool {
	d := Sub(p, c.Center)
	return absf(d.X) <= c.HalfSize && absf(d.Y) <= c.HalfSize && absf(d.Z) <= c.HalfSize
}

// HalfDiagonal returns HalfSize*sqrt(3), the distance from the cube's center
// to any of its corners — used by the neighbor walker's sphere-exclusion
// test. Each axis component of the corner offset is HalfSize, so the
// diagonal is sqrt(3*HalfSize^2) = HalfSize*sqrt(3).
func (c Cube) HalfDiagonal() float64 {
	const sqrt3 = 1.7320508075688772
	return c.HalfSize * sqrt3
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
