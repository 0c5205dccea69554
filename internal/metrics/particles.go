package metrics

import (
	"math"

	"github.com/san-kum/spikeviz/internal/engine"
)

// LiveFraction is the mean share of the pool alive after each frame.
type LiveFraction struct {
	name    string
	sum     float64
	samples int
}

func NewLiveFraction() *LiveFraction {
	return &LiveFraction{name: "live_fraction"}
}

func (l *LiveFraction) Name() string { return l.name }

func (l *LiveFraction) Observe(f engine.Frame) {
	if f.Total == 0 {
		return
	}
	l.sum += float64(f.Alive) / float64(f.Total)
	l.samples++
}

func (l *LiveFraction) Value() float64 {
	if l.samples == 0 {
		return 0
	}
	return l.sum / float64(l.samples)
}

func (l *LiveFraction) Reset() {
	l.sum = 0
	l.samples = 0
}

type PeakNewborn struct {
	name string
	peak float64
}

func NewPeakNewborn() *PeakNewborn {
	return &PeakNewborn{name: "peak_newborn"}
}

func (p *PeakNewborn) Name() string { return p.name }

func (p *PeakNewborn) Observe(f engine.Frame) {
	p.peak = math.Max(p.peak, float64(f.Newborn))
}

func (p *PeakNewborn) Value() float64 { return p.peak }

func (p *PeakNewborn) Reset() { p.peak = 0 }

type UnknownSpikes struct {
	name  string
	count int
}

func NewUnknownSpikes() *UnknownSpikes {
	return &UnknownSpikes{name: "unknown_spikes"}
}

func (u *UnknownSpikes) Name() string { return u.name }

func (u *UnknownSpikes) Observe(f engine.Frame) { u.count += f.Unknown }

func (u *UnknownSpikes) Value() float64 { return float64(u.count) }

func (u *UnknownSpikes) Reset() { u.count = 0 }
