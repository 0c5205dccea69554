package metrics

import "github.com/san-kum/spikeviz/internal/engine"

// SpikeRate is the number of spikes per second of simulated time.
// Frames that did not advance the clock are ignored.
type SpikeRate struct {
	name    string
	spikes  int
	elapsed float64
}

func NewSpikeRate() *SpikeRate {
	return &SpikeRate{name: "spike_rate"}
}

func (s *SpikeRate) Name() string { return s.name }

func (s *SpikeRate) Observe(f engine.Frame) {
	if !f.Advanced {
		return
	}
	s.spikes += f.Spikes
	s.elapsed += f.Time - f.Previous
}

func (s *SpikeRate) Value() float64 {
	if s.elapsed == 0 {
		return 0
	}
	return float64(s.spikes) / s.elapsed
}

func (s *SpikeRate) Reset() {
	s.spikes = 0
	s.elapsed = 0
}
