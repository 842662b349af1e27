package tree

import "github.com/pinebai/sphlatch/spatial"

// Particle is the external particle contract The tree
// never owns particle records — it borrows them through this interface
// and stores only a weak NodeHandle back-reference. Concrete particle
// storage (plain structs, or an ECS-backed registry) lives outside this
// package; see the particle and simparticles packages.
type Particle interface {
	// ParticleID returns the particle's stable external identifier.
	ParticleID() uint64

	// Position returns the particle's current world position.
	Position() spatial.Vec3

	// Mass returns the particle's mass.
	Mass() float64

	// Cost returns the particle's compute-cost estimate, proportional to
	// expected work (e.g. last round's neighbor count). The external
	// driver may update this between rounds.
	Cost() float64

	// TreeNode returns the particle's current proxy handle, or the NULL
	// handle if it has not yet been inserted.
	TreeNode() NodeHandle

	// SetTreeNode records the particle's proxy handle.
	SetTreeNode(NodeHandle)
}
