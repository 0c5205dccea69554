package analysis

import (
	"math"

	"github.com/san-kum/spikeviz/internal/spikes"
)

// FiringRate bins the spikes of seq in [start, end] and returns the
// population rate of each bin in spikes per second. Spikes at end fall into
// the last bin.
func FiringRate(seq spikes.Sequence, start, end, binWidth float64) []float64 {
	if binWidth <= 0 || end <= start {
		return nil
	}
	n := int(math.Ceil((end - start) / binWidth))
	rates := make([]float64, n)

	lo, hi := seq.LowerBound(start), seq.UpperBound(end)
	for _, ev := range seq[lo:hi] {
		bin := int((ev.Time - start) / binWidth)
		if bin >= n {
			bin = n - 1
		}
		rates[bin]++
	}
	for i := range rates {
		rates[i] /= binWidth
	}
	return rates
}

// NeuronRates returns each neuron's mean rate over duration seconds.
func NeuronRates(seq spikes.Sequence, duration float64) map[uint32]float64 {
	out := make(map[uint32]float64)
	if duration <= 0 {
		return out
	}
	for _, ev := range seq {
		out[ev.GID]++
	}
	for id := range out {
		out[id] /= duration
	}
	return out
}

// MeanStd returns the mean and population standard deviation of data.
func MeanStd(data []float64) (float64, float64) {
	if len(data) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range data {
		sum += v
	}
	mean := sum / float64(len(data))

	var sq float64
	for _, v := range data {
		sq += (v - mean) * (v - mean)
	}
	return mean, math.Sqrt(sq / float64(len(data)))
}
