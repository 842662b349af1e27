// Package simparticles is an ark-ECS-backed Particle registry: it lets
// the tree package's tree.Particle contract be satisfied by entities
// living in a github.com/mlange-42/ark world, instead of the plain
// struct in the particle package. The tree package never imports ark
// directly — this package is the adapter layer between the two.
package simparticles

// Position is an entity's world position.
type Position struct {
	X, Y, Z float64
}

// Mass is an entity's mass, constant for the lifetime of the entity in
// the gravity-only case, but tracked as a component (rather than baked
// into Position) so future accretion/merger logic can mutate it.
type Mass struct {
	Value float64
}

// Cost is the compute-cost estimate tree.Particle.Cost reports to the
// rebalancer, refreshed from the previous round's measured work (e.g.
// neighbor count).
type Cost struct {
	Value float64
}

// TreeHandle mirrors a particle's current tree.NodeHandle so the tree
// package's weak back-reference survives outside of any particular
// tree.Particle implementation's own memory layout.
type TreeHandle struct {
	Slot uint32
	Gen  uint32
}

// Velocity is an entity's velocity, used by the SPH integrator outside
// this package's scope but tracked here since it lives on the same
// particle record.
type Velocity struct {
	X, Y, Z float64
}

// SmoothingLength is the SPH kernel radius h; Neighbors is usually
// called with radius = 2*SmoothingLength.
type SmoothingLength struct {
	Value float64
}

// Density is the SPH-estimated local density, computed from the
// neighbor list by a system outside this package.
type Density struct {
	Value float64
}

// InternalEnergy is the SPH specific internal energy (per unit mass).
type InternalEnergy struct {
	Value float64
}

// ClumpID tags which gravitationally bound clump (if any) a particle
// has been assigned to by an external clump finder.
type ClumpID struct {
	Value int64
}
