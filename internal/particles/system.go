package particles

import (
	"math/rand"

	"github.com/goki/mat32"
)

// nodesPerChunk is the smallest batch of nodes handed to one goroutine.
const nodesPerChunk = 256

// Stats summarizes the pool after an update.
type Stats struct {
	Alive   int
	Newborn int
	Total   int
}

// System owns the pool, its nodes and the single prototype/policy pair that
// every particle is updated with.
type System struct {
	pool       *Pool
	nodes      []*Node
	byID       map[uint32]*Node
	proto      *Prototype
	policy     UpdatePolicy
	invMaxLife float32
	rng        *rand.Rand
}

func NewSystem(pool *Pool, proto *Prototype, policy UpdatePolicy, seed int64) *System {
	s := &System{
		pool:   pool,
		nodes:  make([]*Node, 0),
		byID:   make(map[uint32]*Node),
		proto:  proto,
		policy: policy,
		rng:    rand.New(rand.NewSource(seed)),
	}
	if ml := proto.MaxLife(); ml > 0 {
		s.invMaxLife = 1 / ml
	}
	return s
}

// CreateNode allocates n particles and registers a node owning them.
func (s *System) CreateNode(id uint32, n int, pos mat32.Vec3, color mat32.Vec4) (*Node, error) {
	r, err := s.pool.Allocate(n)
	if err != nil {
		return nil, err
	}
	node := NewNode(id, r, pos, color)
	s.nodes = append(s.nodes, node)
	s.byID[id] = node
	return node, nil
}

func (s *System) Node(id uint32) (*Node, bool) {
	n, ok := s.byID[id]
	return n, ok
}

func (s *System) Nodes() []*Node         { return s.nodes }
func (s *System) Pool() *Pool            { return s.pool }
func (s *System) Prototype() *Prototype  { return s.proto }
func (s *System) Policy() UpdatePolicy   { return s.policy }
func (s *System) Rand() *rand.Rand       { return s.rng }
func (s *System) SetRand(rng *rand.Rand) { s.rng = rng }
func (s *System) InvMaxLife() float32    { return s.invMaxLife }

// Emit runs one emission cycle on node, overriding live particles when
// override is set.
func (s *System) Emit(node *Node, override bool) int {
	return node.EmitAll(s.pool, s.proto, s.policy, s.rng, override)
}

// Fire replaces a node's particles with freshly emitted ones.
func (s *System) Fire(node *Node) int {
	node.KillParticles(s.pool, true)
	return s.Emit(node, true)
}

// AdvanceNodes lets the update policy advance every node's activity by dt.
func (s *System) AdvanceNodes(dt float32) {
	for _, n := range s.nodes {
		s.policy.AdvanceNode(n, dt, s.invMaxLife)
	}
}

// KillAll zeroes every node's particles; see Node.KillParticles.
func (s *System) KillAll(changeState bool) {
	for _, n := range s.nodes {
		n.KillParticles(s.pool, changeState)
		n.ResetCycles()
	}
}

// Update advances every particle by dt. It never fails; out-of-range values
// are clamped.
func (s *System) Update(dt float32) {
	if dt < 0 {
		dt = 0
	}
	ParallelFor(len(s.nodes), nodesPerChunk, func(start, end int) {
		for _, n := range s.nodes[start:end] {
			s.updateNode(n, dt)
		}
	})
}

func (s *System) updateNode(n *Node, dt float32) {
	for i := n.Range.Start; i < n.Range.End; i++ {
		s.updateParticle(s.pool.At(i), n, dt)
	}
}

func (s *System) updateParticle(p *Particle, n *Node, dt float32) {
	p.Life = mat32.Max(p.Life-dt, 0)
	p.Alive = (p.Life > 0 || p.Alive) && n.Active

	if p.Alive && !p.Newborn {
		frac := s.policy.LifeFraction(p, n, s.invMaxLife)

		p.VelocityModule = s.proto.Velocity.Evaluate(frac)
		if !n.Still {
			p.Position = p.Position.Add(p.Velocity.MulScalar(p.VelocityModule * dt))
		}
		p.Color = clampColor(s.proto.Combine(n.Color, s.proto.Color.Evaluate(frac)))
		p.Size = mat32.Max(s.proto.Size.Evaluate(frac)+n.Size, 0)
	}

	p.Newborn = false
}

func (s *System) Stats() Stats {
	st := Stats{Total: s.pool.Allocated()}
	for _, p := range s.pool.Particles()[:st.Total] {
		if p.Alive {
			st.Alive++
		}
		if p.Newborn {
			st.Newborn++
		}
	}
	return st
}
