// Package particle provides a minimal in-memory Particle implementation
// for tests, examples, and tools that do not need a full ECS-backed
// registry (see the simparticles package for that).
package particle

import (
	"github.com/pinebai/sphlatch/spatial"
	"github.com/pinebai/sphlatch/tree"
)

// Particle is a plain struct satisfying tree.Particle.
type Particle struct {
	ID   uint64
	Pos  spatial.Vec3
	M    float64
	C    float64
	node tree.NodeHandle
}

// New constructs a Particle with the given id, position, and mass. Cost
// starts at 1 and is expected to be updated by the caller between
// rounds (e.g. from the previous round's neighbor count).
func New(id uint64, pos spatial.Vec3, mass float64) *Particle {
	return &Particle{ID: id, Pos: pos, M: mass, C: 1}
}

func (p *Particle) ParticleID() uint64           { return p.ID }
func (p *Particle) Position() spatial.Vec3       { return p.Pos }
func (p *Particle) Mass() float64                { return p.M }
func (p *Particle) Cost() float64                { return p.C }
func (p *Particle) TreeNode() tree.NodeHandle     { return p.node }
func (p *Particle) SetTreeNode(h tree.NodeHandle) { p.node = h }
