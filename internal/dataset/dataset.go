// Package dataset provides the spike and neuron-position data consumed by
// the playback engine.
//
// A [Dataset] is an immutable snapshot: sources build it completely, and only
// then hand it to the engine. Sources:
//
//   - [CSVSource]: "time,gid" spike files and optional "gid,x,y,z" positions
//   - [SQLiteSource]: datasets imported with [SQLiteStore.SaveDataset]
//   - [SyntheticSource]: Poisson spike trains on a 3D grid
//
// [Loader] runs a source on a worker goroutine with a monotonic progress
// counter and hard cancellation.
package dataset

import (
	"errors"
	"sort"

	"github.com/goki/mat32"
	"github.com/san-kum/spikeviz/internal/spikes"
)

var (
	ErrUnsupportedSource = errors.New("dataset: unsupported source type")
	ErrMalformedRecord   = errors.New("dataset: malformed record")
	ErrMissingPath       = errors.New("dataset: source path is required")
)

type Dataset struct {
	Name      string
	Spikes    spikes.Sequence
	Positions map[uint32]mat32.Vec3
	Start     float64
	End       float64
}

// New builds a dataset, sorting the spikes and deriving the time span from
// them. Neurons without positions are laid out on a grid.
func New(name string, events []spikes.Event, positions map[uint32]mat32.Vec3) *Dataset {
	seq := spikes.NewSequence(events)
	if positions == nil {
		positions = make(map[uint32]mat32.Vec3)
	}

	var missing []uint32
	for _, id := range seq.GIDs() {
		if _, ok := positions[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		for id, p := range GridLayout(missing, 1) {
			positions[id] = p
		}
	}

	start, end := seq.Span()
	return &Dataset{
		Name:      name,
		Spikes:    seq,
		Positions: positions,
		Start:     start,
		End:       end,
	}
}

// GIDs returns the neuron ids with a position, ascending.
func (d *Dataset) GIDs() []uint32 {
	ids := make([]uint32, 0, len(d.Positions))
	for id := range d.Positions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (d *Dataset) NumNeurons() int { return len(d.Positions) }

// Bounds returns the axis-aligned box around every neuron position.
func (d *Dataset) Bounds() (mat32.Vec3, mat32.Vec3) {
	if len(d.Positions) == 0 {
		return mat32.Vec3{}, mat32.Vec3{}
	}
	lo := mat32.NewVec3Scalar(mat32.Infinity)
	hi := mat32.NewVec3Scalar(-mat32.Infinity)
	for _, p := range d.Positions {
		lo = mat32.Vec3{X: mat32.Min(lo.X, p.X), Y: mat32.Min(lo.Y, p.Y), Z: mat32.Min(lo.Z, p.Z)}
		hi = mat32.Vec3{X: mat32.Max(hi.X, p.X), Y: mat32.Max(hi.Y, p.Y), Z: mat32.Max(hi.Z, p.Z)}
	}
	return lo, hi
}

// GridLayout places ids on a cube grid centered at the origin.
func GridLayout(ids []uint32, spacing float32) map[uint32]mat32.Vec3 {
	out := make(map[uint32]mat32.Vec3, len(ids))
	if len(ids) == 0 {
		return out
	}
	side := 1
	for side*side*side < len(ids) {
		side++
	}
	offset := float32(side-1) * spacing / 2
	for i, id := range ids {
		x := i % side
		y := (i / side) % side
		z := i / (side * side)
		out[id] = mat32.Vec3{
			X: float32(x)*spacing - offset,
			Y: float32(y)*spacing - offset,
			Z: float32(z)*spacing - offset,
		}
	}
	return out
}
