// Package dsp provides the windowing, spectrum, and cepstral primitives the
// analysis pipeline is built on.
package dsp

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// HannWindow returns a Hann window of the given size.
func HannWindow(size int) []float64 {
	w := make([]float64, size)
	if size == 1 {
		w[0] = 1
		return w
	}
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(size-1)))
	}
	return w
}

// NumFrames returns how many analysis frames a signal of n samples yields
// with the given frame and hop sizes. A signal shorter than one frame still
// yields a single zero-padded frame.
func NumFrames(n, frameSize, hopSize int) int {
	if n <= frameSize {
		return 1
	}
	return (n-frameSize+hopSize-1)/hopSize + 1
}

// Frame copies the idx-th frame of samples into dst, zero-padding past the
// end of the signal. len(dst) is the frame size.
func Frame(samples []float64, idx, hopSize int, dst []float64) {
	start := idx * hopSize
	for i := range dst {
		j := start + i
		if j < len(samples) {
			dst[i] = samples[j]
		} else {
			dst[i] = 0
		}
	}
}

// MagnitudeSpectrum computes the magnitude of the first size/2+1 FFT bins of
// a (windowed) frame.
func MagnitudeSpectrum(frame []float64) []float64 {
	spectrum := fft.FFTReal(frame)
	mag := make([]float64, len(frame)/2+1)
	for i := range mag {
		mag[i] = cmplx.Abs(spectrum[i])
	}
	return mag
}

// STFT computes the magnitude spectrogram of samples: one magnitude spectrum
// per frame, Hann-windowed. Rows are frames, columns are frequency bins.
func STFT(samples []float64, frameSize, hopSize int) [][]float64 {
	window := HannWindow(frameSize)
	frames := NumFrames(len(samples), frameSize, hopSize)

	spectra := make([][]float64, frames)
	frame := make([]float64, frameSize)
	windowed := make([]float64, frameSize)
	for i := 0; i < frames; i++ {
		Frame(samples, i, hopSize, frame)
		for j := range frame {
			windowed[j] = frame[j] * window[j]
		}
		spectra[i] = MagnitudeSpectrum(windowed)
	}
	return spectra
}

// BinFrequency returns the center frequency of FFT bin k for the given frame
// size and sample rate.
func BinFrequency(k, frameSize, sampleRate int) float64 {
	return float64(k) * float64(sampleRate) / float64(frameSize)
}
