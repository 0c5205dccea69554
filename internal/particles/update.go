package particles

// UpdatePolicy decides how a live particle's life fraction is obtained and
// whether freshly emitted particles skip their first update. AdvanceNode is
// called once per node and tick before the particles are updated.
type UpdatePolicy interface {
	Name() string
	NewbornOnEmit() bool
	AdvanceNode(n *Node, dt, invMaxLife float32)
	LifeFraction(p *Particle, n *Node, invMaxLife float32) float32
}

// Composite derives the life fraction from the particle's remaining life.
// New particles are held at their emission state for one frame.
type Composite struct{}

func (Composite) Name() string        { return "composite" }
func (Composite) NewbornOnEmit() bool { return true }

func (Composite) AdvanceNode(*Node, float32, float32) {}

func (Composite) LifeFraction(p *Particle, _ *Node, invMaxLife float32) float32 {
	return 1 - clamp01(p.Life*invMaxLife)
}

// DirectValued reads the life fraction from the owning node, so an external
// activity value drives every particle of the node directly.
type DirectValued struct{}

func (DirectValued) Name() string        { return "direct" }
func (DirectValued) NewbornOnEmit() bool { return false }

// AdvanceNode moves the node's activity toward 1 over one maximum lifetime.
// Firing resets it to 0.
func (DirectValued) AdvanceNode(n *Node, dt, invMaxLife float32) {
	n.ParticlesLife = clamp01(n.ParticlesLife + dt*invMaxLife)
}

func (DirectValued) LifeFraction(_ *Particle, n *Node, _ float32) float32 {
	return clamp01(n.ParticlesLife)
}
