package dataset

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"

	"github.com/san-kum/spikeviz/internal/spikes"
)

// SyntheticSource generates independent Poisson spike trains for Neurons
// cells laid out on a grid. Bursts, when set, adds population-wide volleys
// every BurstPeriod seconds so the spectrum has a visible rhythm.
type SyntheticSource struct {
	Neurons     int
	Rate        float64 // mean firing rate per neuron, Hz
	Duration    float64 // seconds
	Spacing     float32
	BurstPeriod float64
	Seed        int64
}

func (s *SyntheticSource) Name() string {
	return fmt.Sprintf("synthetic_%dn_%.0fhz", s.Neurons, s.Rate)
}

func (s *SyntheticSource) Load(ctx context.Context, progress *atomic.Int64) (*Dataset, error) {
	if s.Neurons <= 0 {
		return nil, fmt.Errorf("synthetic source: neurons must be positive, got %d", s.Neurons)
	}
	if s.Rate < 0 || s.Duration <= 0 {
		return nil, fmt.Errorf("synthetic source: rate=%g duration=%g out of range", s.Rate, s.Duration)
	}
	spacing := s.Spacing
	if spacing <= 0 {
		spacing = 1
	}

	rng := rand.New(rand.NewSource(s.Seed))
	ids := make([]uint32, s.Neurons)
	events := make([]spikes.Event, 0, int(float64(s.Neurons)*s.Rate*s.Duration)+1)

	for i := 0; i < s.Neurons; i++ {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		gid := uint32(i)
		ids[i] = gid

		if s.Rate > 0 {
			for t := rng.ExpFloat64() / s.Rate; t < s.Duration; t += rng.ExpFloat64() / s.Rate {
				events = append(events, spikes.Event{Time: t, GID: gid})
			}
		}
		if s.BurstPeriod > 0 {
			for t := s.BurstPeriod; t < s.Duration; t += s.BurstPeriod {
				if rng.Float64() < 0.5 {
					jitter := rng.NormFloat64() * s.BurstPeriod * 0.02
					events = append(events, spikes.Event{Time: clampTime(t+jitter, s.Duration), GID: gid})
				}
			}
		}
		if progress != nil {
			progress.Add(1)
		}
	}

	return New(s.Name(), events, GridLayout(ids, spacing)), nil
}

func clampTime(t, duration float64) float64 {
	if t < 0 {
		return 0
	}
	if t >= duration {
		return duration
	}
	return t
}
