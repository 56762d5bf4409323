package classify

import (
	"math"

	"github.com/wavescribe/WaveScribe/internal/dsp"
)

// rolloffFraction is the spectral-energy fraction defining the rolloff
// frequency.
const rolloffFraction = 0.85

// featureVector summarizes a mono signal as the FeatureDim-length vector the
// centroid models consume: per-frame [rms, zero-crossing rate, spectral
// centroid, bandwidth, rolloff, flatness] averaged over all frames. The
// spectral features are normalized by the Nyquist frequency so every
// component stays in [0,1] regardless of sample rate.
func featureVector(samples []float64, sampleRate, frameSize, hopSize int) []float64 {
	frames := dsp.NumFrames(len(samples), frameSize, hopSize)
	spectra := dsp.STFT(samples, frameSize, hopSize)
	nyquist := float64(sampleRate) / 2

	sums := make([]float64, FeatureDim)
	frame := make([]float64, frameSize)
	for i := 0; i < frames; i++ {
		dsp.Frame(samples, i, hopSize, frame)

		var energy float64
		var crossings int
		for j, s := range frame {
			energy += s * s
			if j > 0 && (frame[j-1] >= 0) != (s >= 0) {
				crossings++
			}
		}
		sums[0] += math.Sqrt(energy / float64(frameSize))
		sums[1] += float64(crossings) / float64(frameSize)

		centroid, bandwidth, rolloff, flatness := spectralShape(spectra[i], frameSize, sampleRate)
		sums[2] += centroid / nyquist
		sums[3] += bandwidth / nyquist
		sums[4] += rolloff / nyquist
		sums[5] += flatness
	}

	features := make([]float64, FeatureDim)
	for i := range features {
		features[i] = sums[i] / float64(frames)
	}
	return features
}

// spectralShape computes centroid, bandwidth, rolloff (in Hz), and flatness
// of one magnitude spectrum.
func spectralShape(mag []float64, frameSize, sampleRate int) (centroid, bandwidth, rolloff, flatness float64) {
	var total float64
	for _, m := range mag {
		total += m
	}
	if total == 0 {
		return 0, 0, 0, 0
	}

	for k, m := range mag {
		centroid += dsp.BinFrequency(k, frameSize, sampleRate) * m
	}
	centroid /= total

	for k, m := range mag {
		diff := dsp.BinFrequency(k, frameSize, sampleRate) - centroid
		bandwidth += diff * diff * m
	}
	bandwidth = math.Sqrt(bandwidth / total)

	var cum float64
	for k, m := range mag {
		cum += m
		if cum >= rolloffFraction*total {
			rolloff = dsp.BinFrequency(k, frameSize, sampleRate)
			break
		}
	}

	// Flatness: geometric over arithmetic mean of the power spectrum.
	var logSum, powSum float64
	for _, m := range mag {
		p := m*m + 1e-12
		logSum += math.Log(p)
		powSum += p
	}
	n := float64(len(mag))
	flatness = math.Exp(logSum/n) / (powSum / n)
	return centroid, bandwidth, rolloff, flatness
}
