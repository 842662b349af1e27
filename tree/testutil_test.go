package tree

import "github.com/pinebai/sphlatch/spatial"

// testParticle is the minimal Particle implementation used across this
// package's tests.
type testParticle struct {
	id   uint64
	pos  spatial.Vec3
	mass float64
	cost float64
	node NodeHandle
}

func (p *testParticle) ParticleID() uint64       { return p.id }
func (p *testParticle) Position() spatial.Vec3   { return p.pos }
func (p *testParticle) Mass() float64            { return p.mass }
func (p *testParticle) Cost() float64            { return p.cost }
func (p *testParticle) TreeNode() NodeHandle     { return p.node }
func (p *testParticle) SetTreeNode(h NodeHandle) { p.node = h }

func newTestTree() *Tree {
	return New(Options{
		RootCenter:     spatial.Vec3{X: 0.5, Y: 0.5, Z: 0.5},
		RootSize:       1.0,
		ThreadCount:    2,
		CellsPerThread: 4,
	})
}
