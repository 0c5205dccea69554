package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/san-kum/spikeviz/internal/dataset"
	"github.com/san-kum/spikeviz/internal/spikes"
)

func TestFiringRate(t *testing.T) {
	seq := spikes.NewSequence([]spikes.Event{
		{Time: 0.05, GID: 1},
		{Time: 0.15, GID: 2},
		{Time: 0.16, GID: 1},
		{Time: 0.35, GID: 3},
		{Time: 0.40, GID: 3}, // end is inclusive
		{Time: 0.41, GID: 1},
	})

	rates := FiringRate(seq, 0, 0.4, 0.1)
	want := []float64{10, 20, 0, 20}
	if len(rates) != len(want) {
		t.Fatalf("expected %d bins, got %d", len(want), len(rates))
	}
	for i := range want {
		if math.Abs(rates[i]-want[i]) > 1e-9 {
			t.Errorf("bin %d: expected %v, got %v", i, want[i], rates[i])
		}
	}

	if FiringRate(seq, 1, 0, 0.1) != nil {
		t.Error("expected nil for empty range")
	}
}

func TestDatasetSpanKeepsLastSpike(t *testing.T) {
	ds := dataset.New("pair", []spikes.Event{{Time: 0, GID: 1}, {Time: 1, GID: 2}}, nil)

	var total float64
	for _, r := range FiringRate(ds.Spikes, ds.Start, ds.End, 0.5) {
		total += r * 0.5
	}
	if math.Abs(total-2) > 1e-9 {
		t.Errorf("expected 2 spikes in the histogram, got %v", total)
	}

	raster := RasterToASCII(ds.Spikes, ds.Start, ds.End, 10, 2)
	if n := strings.Count(raster, "│"); n != 2 {
		t.Errorf("expected 2 raster marks, got %d:\n%s", n, raster)
	}
}

func TestNeuronRates(t *testing.T) {
	seq := spikes.NewSequence([]spikes.Event{{Time: 0.1, GID: 1}, {Time: 0.2, GID: 1}, {Time: 0.3, GID: 2}})
	rates := NeuronRates(seq, 2)
	if rates[1] != 1 || rates[2] != 0.5 {
		t.Errorf("unexpected rates %v", rates)
	}
}

func TestMeanStd(t *testing.T) {
	mean, std := MeanStd([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if mean != 5 || std != 2 {
		t.Errorf("expected 5/2, got %v/%v", mean, std)
	}
}

func TestDominantFrequency(t *testing.T) {
	const dt = 0.01
	data := make([]float64, 400)
	for i := range data {
		data[i] = 5 + math.Sin(2*math.Pi*4*float64(i)*dt)
	}

	freq, mag := DominantFrequency(data, dt)
	if math.Abs(freq-4) > 1e-9 {
		t.Errorf("expected 4 Hz, got %v", freq)
	}
	if mag <= 0 {
		t.Errorf("expected positive magnitude, got %v", mag)
	}
}

func TestPowerSpectrumRemovesMean(t *testing.T) {
	ps := PowerSpectrum([]float64{3, 3, 3, 3, 3})
	for i, v := range ps {
		if v > 1e-9 {
			t.Errorf("bin %d: expected 0 for a constant signal, got %v", i, v)
		}
	}
	if PowerSpectrum([]float64{1}) != nil {
		t.Error("expected nil for a single sample")
	}
}

func TestRasterToASCII(t *testing.T) {
	seq := spikes.NewSequence([]spikes.Event{{Time: 0, GID: 1}, {Time: 0.99, GID: 2}})
	out := RasterToASCII(seq, 0, 1, 10, 2)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(lines))
	}
	if []rune(lines[0])[0] != '│' {
		t.Errorf("expected first spike at column 0, got %q", lines[0])
	}
	if []rune(lines[1])[9] != '│' {
		t.Errorf("expected second spike at column 9, got %q", lines[1])
	}
	if RasterToASCII(nil, 0, 1, 10, 2) != "" {
		t.Error("expected empty raster")
	}
}
