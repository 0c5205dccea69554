package metrics

import "github.com/san-kum/spikeviz/internal/engine"

type Metric interface {
	Name() string
	Observe(f engine.Frame)
	Value() float64
	Reset()
}

// Set fans frames out to its metrics. It is an engine.FrameObserver.
type Set struct {
	metrics []Metric
}

func NewSet(ms ...Metric) *Set {
	return &Set{metrics: ms}
}

// Default returns the metrics recorded by headless runs.
func Default() *Set {
	return NewSet(
		NewSpikeRate(),
		NewLiveFraction(),
		NewPeakNewborn(),
		NewUnknownSpikes(),
	)
}

func (s *Set) Add(m Metric) { s.metrics = append(s.metrics, m) }

func (s *Set) OnFrame(f engine.Frame) {
	for _, m := range s.metrics {
		m.Observe(f)
	}
}

func (s *Set) Reset() {
	for _, m := range s.metrics {
		m.Reset()
	}
}

func (s *Set) Values() map[string]float64 {
	out := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}
