package particles

import (
	"fmt"

	"github.com/goki/mat32"
)

type Particle struct {
	Life           float32
	Alive          bool
	Newborn        bool
	Position       mat32.Vec3
	Velocity       mat32.Vec3
	VelocityModule float32
	Color          mat32.Vec4
	Size           float32
}

// Range is a half-open slice [Start, End) of pool indices.
type Range struct {
	Start, End int
}

func (r Range) Len() int { return r.End - r.Start }

func (r Range) Contains(i int) bool { return i >= r.Start && i < r.End }

// Pool is a fixed-capacity particle store. Allocations are contiguous,
// disjoint and permanent for the lifetime of the pool.
type Pool struct {
	particles []Particle
	next      int
}

func NewPool(capacity int) *Pool {
	if capacity < 0 {
		capacity = 0
	}
	return &Pool{particles: make([]Particle, capacity)}
}

// Allocate reserves the next n slots.
func (p *Pool) Allocate(n int) (Range, error) {
	if n < 0 {
		return Range{}, fmt.Errorf("allocate %d particles: negative count", n)
	}
	if p.next+n > len(p.particles) {
		return Range{}, fmt.Errorf("allocate %d particles (%d/%d used): %w", n, p.next, len(p.particles), ErrPoolExhausted)
	}
	r := Range{Start: p.next, End: p.next + n}
	p.next += n
	return r, nil
}

func (p *Pool) Cap() int       { return len(p.particles) }
func (p *Pool) Allocated() int { return p.next }

func (p *Pool) At(i int) *Particle { return &p.particles[i] }

// Particles exposes the backing array to renderers. Callers must not keep it
// across frames while the pool is being updated.
func (p *Pool) Particles() []Particle { return p.particles }

// Reset returns every particle to its zero state without releasing ranges.
func (p *Pool) Reset() {
	for i := range p.particles {
		p.particles[i] = Particle{}
	}
}
