// Package particles implements the fixed-capacity particle pool and the
// per-frame particle lifecycle.
//
// The package defines:
//
//   - [Pool]: fixed array of [Particle] records handed out in contiguous ranges
//   - [Node]: an emission node owning one range of the pool (one per neuron)
//   - [Prototype]: color, size and velocity curves plus a lifetime range
//   - [UpdatePolicy]: how a particle's life fraction is derived each frame
//   - [System]: runs the per-frame update over every node
//
// Particles are never deallocated. A dead particle is one with Alive == false
// and Life == 0; its index stays owned by the same node for the whole session.
//
// # Thread Safety
//
// A System is driven from a single goroutine. Update may split the work across
// goroutines internally since no particle reads another particle's state.
package particles
