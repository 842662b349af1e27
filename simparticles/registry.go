package simparticles

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pinebai/sphlatch/spatial"
	"github.com/pinebai/sphlatch/tree"
)

// Registry is an ark-ECS-backed store of SPH particles. It owns the
// world and every component map; callers get at individual particles
// through View, which implements tree.Particle against a live entity.
type Registry struct {
	world *ecs.World

	core *ecs.Map4[Position, Mass, Cost, TreeHandle]
	filt *ecs.Filter4[Position, Mass, Cost, TreeHandle]

	posMap    *ecs.Map1[Position]
	massMap   *ecs.Map1[Mass]
	costMap   *ecs.Map1[Cost]
	handleMap *ecs.Map1[TreeHandle]
	velMap    *ecs.Map1[Velocity]
	hMap      *ecs.Map1[SmoothingLength]
	rhoMap    *ecs.Map1[Density]
	uMap      *ecs.Map1[InternalEnergy]
	clumpMap  *ecs.Map1[ClumpID]
}

// NewRegistry creates an empty particle registry.
func NewRegistry() *Registry {
	world := ecs.NewWorld()
	return &Registry{
		world: world,

		core: ecs.NewMap4[Position, Mass, Cost, TreeHandle](world),
		filt: ecs.NewFilter4[Position, Mass, Cost, TreeHandle](world),

		posMap:    ecs.NewMap1[Position](world),
		massMap:   ecs.NewMap1[Mass](world),
		costMap:   ecs.NewMap1[Cost](world),
		handleMap: ecs.NewMap1[TreeHandle](world),
		velMap:    ecs.NewMap1[Velocity](world),
		hMap:      ecs.NewMap1[SmoothingLength](world),
		rhoMap:    ecs.NewMap1[Density](world),
		uMap:      ecs.NewMap1[InternalEnergy](world),
		clumpMap:  ecs.NewMap1[ClumpID](world),
	}
}

// Spawn creates a new particle entity and returns a View bound to it.
func (r *Registry) Spawn(pos spatial.Vec3, mass float64) View {
	p := Position{X: pos.X, Y: pos.Y, Z: pos.Z}
	m := Mass{Value: mass}
	c := Cost{Value: 1}
	h := TreeHandle{}
	entity := r.core.NewEntity(&p, &m, &c, &h)
	return View{reg: r, entity: entity}
}

// Remove destroys a particle entity.
func (r *Registry) Remove(v View) {
	r.core.Remove(v.entity)
}

// Each calls fn for every particle currently registered.
func (r *Registry) Each(fn func(View)) {
	query := r.filt.Query()
	for query.Next() {
		fn(View{reg: r, entity: query.Entity()})
	}
}

// Len returns the number of registered particles.
func (r *Registry) Len() int {
	n := 0
	r.Each(func(View) { n++ })
	return n
}

// View is a handle to one particle entity, implementing tree.Particle
// directly against the registry's component maps so the tree package
// never has to know ark exists.
type View struct {
	reg    *Registry
	entity ecs.Entity
}

func (v View) ParticleID() uint64 { return uint64(v.entity.ID()) }

func (v View) Position() spatial.Vec3 {
	p := v.reg.posMap.Get(v.entity)
	return spatial.Vec3{X: p.X, Y: p.Y, Z: p.Z}
}

func (v View) SetPosition(pos spatial.Vec3) {
	p := v.reg.posMap.Get(v.entity)
	p.X, p.Y, p.Z = pos.X, pos.Y, pos.Z
}

func (v View) Mass() float64 { return v.reg.massMap.Get(v.entity).Value }

func (v View) Cost() float64 { return v.reg.costMap.Get(v.entity).Value }

func (v View) SetCost(c float64) { v.reg.costMap.Get(v.entity).Value = c }

func (v View) TreeNode() tree.NodeHandle {
	h := v.reg.handleMap.Get(v.entity)
	return tree.HandleFromParts(h.Slot, h.Gen)
}

func (v View) SetTreeNode(h tree.NodeHandle) {
	slot, gen := tree.PartsFromHandle(h)
	th := v.reg.handleMap.Get(v.entity)
	th.Slot, th.Gen = slot, gen
}

func (v View) Velocity() spatial.Vec3 {
	vel := v.reg.velMap.Get(v.entity)
	return spatial.Vec3{X: vel.X, Y: vel.Y, Z: vel.Z}
}

func (v View) SetVelocity(vel spatial.Vec3) {
	c := v.reg.velMap.Get(v.entity)
	c.X, c.Y, c.Z = vel.X, vel.Y, vel.Z
}

func (v View) SmoothingLength() float64 { return v.reg.hMap.Get(v.entity).Value }

func (v View) SetSmoothingLength(h float64) { v.reg.hMap.Get(v.entity).Value = h }

func (v View) Density() float64 { return v.reg.rhoMap.Get(v.entity).Value }

func (v View) SetDensity(rho float64) { v.reg.rhoMap.Get(v.entity).Value = rho }

func (v View) InternalEnergy() float64 { return v.reg.uMap.Get(v.entity).Value }

func (v View) SetInternalEnergy(u float64) { v.reg.uMap.Get(v.entity).Value = u }

func (v View) ClumpID() int64 { return v.reg.clumpMap.Get(v.entity).Value }

func (v View) SetClumpID(id int64) { v.reg.clumpMap.Get(v.entity).Value = id }
