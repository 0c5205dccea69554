// Package analysis summarizes spike data for the stats and plot commands.
//
//   - [FiringRate]: population rate histogram over fixed bins
//   - [NeuronRates]: mean rate of every neuron
//   - [PowerSpectrum] and [DominantFrequency]: rhythm of the population rate
//   - [RasterToASCII]: time/neuron raster for terminals
//
// A rhythmic dataset shows up as a peak in the spectrum of its rate:
//
//	rates := analysis.FiringRate(seq, start, end, 0.01)
//	freq, _ := analysis.DominantFrequency(rates, 0.01)
package analysis
