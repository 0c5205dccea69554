package particles

import (
	"math/rand"

	"github.com/goki/mat32"
)

// Node is an emission node: the exclusive owner of one contiguous range of
// the particle pool, anchored at a point in space. One node is created per
// neuron when a dataset is set up.
type Node struct {
	ID       uint32
	Range    Range
	Position mat32.Vec3
	Color    mat32.Vec4
	Size     float32

	// Still nodes emit particles that never move.
	Still bool
	// Inactive nodes let their particles die on the next update.
	Active bool
	// ParticlesLife is the life fraction used by the DirectValued policy.
	ParticlesLife float32

	// MaxEmissionCycles bounds EmitAll calls; 0 means unlimited.
	MaxEmissionCycles int
	EmissionCycles    int
}

func NewNode(id uint32, r Range, pos mat32.Vec3, color mat32.Vec4) *Node {
	return &Node{
		ID:       id,
		Range:    r,
		Position: pos,
		Color:    color,
		Active:   true,
	}
}

// Emit (re)initializes the particle at idx when it is dead or override is
// set. It reports whether the particle was emitted.
func (n *Node) Emit(pool *Pool, idx int, proto *Prototype, policy UpdatePolicy, rng *rand.Rand, override bool) bool {
	if !n.Range.Contains(idx) {
		return false
	}
	p := pool.At(idx)
	if p.Alive && !override {
		return false
	}

	p.Life = proto.DrawLife(rng)
	p.Alive = true
	p.Newborn = policy.NewbornOnEmit()
	p.Position = n.Position
	p.Velocity = n.direction(rng)
	p.VelocityModule = proto.Velocity.Evaluate(0)
	p.Color = clampColor(proto.Combine(n.Color, proto.Color.Evaluate(0)))
	p.Size = mat32.Max(proto.Size.Evaluate(0)+n.Size, 0)
	return true
}

// EmitAll runs one emission cycle over the node's whole range and returns
// the number of particles emitted.
func (n *Node) EmitAll(pool *Pool, proto *Prototype, policy UpdatePolicy, rng *rand.Rand, override bool) int {
	if n.MaxEmissionCycles > 0 && n.EmissionCycles >= n.MaxEmissionCycles {
		return 0
	}
	n.EmissionCycles++

	emitted := 0
	for i := n.Range.Start; i < n.Range.End; i++ {
		if n.Emit(pool, i, proto, policy, rng, override) {
			emitted++
		}
	}
	return emitted
}

// KillParticles zeroes the life of every particle the node owns. With
// changeState the particles are also marked dead; without it they stay
// alive at zero life and fade out on the next update.
func (n *Node) KillParticles(pool *Pool, changeState bool) {
	for i := n.Range.Start; i < n.Range.End; i++ {
		p := pool.At(i)
		p.Life = 0
		if changeState {
			p.Alive = false
		}
	}
}

func (n *Node) ResetCycles() { n.EmissionCycles = 0 }

// direction draws a uniformly distributed unit vector.
func (n *Node) direction(rng *rand.Rand) mat32.Vec3 {
	if n.Still {
		return mat32.Vec3{}
	}
	v := mat32.Vec3{
		X: float32(rng.NormFloat64()),
		Y: float32(rng.NormFloat64()),
		Z: float32(rng.NormFloat64()),
	}
	l := mat32.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
	if l == 0 {
		return mat32.Vec3{Y: 1}
	}
	return v.MulScalar(1 / l)
}
