package analysis

import (
	"sort"

	"github.com/wavescribe/WaveScribe/internal/dsp"
)

// onsetEnvelope combines two onset detection functions — high-frequency-content
// flux and spectral flux — into a single normalized strength envelope with one
// value per analysis frame.
func onsetEnvelope(samples []float64, frameSize, hopSize int) []float64 {
	spectra := dsp.STFT(samples, frameSize, hopSize)
	n := len(spectra)

	hfc := make([]float64, n)
	for i, mag := range spectra {
		var sum float64
		for k, m := range mag {
			sum += float64(k) * m * m
		}
		hfc[i] = sum
	}

	hfcFlux := make([]float64, n)
	specFlux := make([]float64, n)
	for i := 1; i < n; i++ {
		if d := hfc[i] - hfc[i-1]; d > 0 {
			hfcFlux[i] = d
		}
		var flux float64
		for k := range spectra[i] {
			if d := spectra[i][k] - spectra[i-1][k]; d > 0 {
				flux += d
			}
		}
		specFlux[i] = flux
	}

	normalizeToPeak(hfcFlux)
	normalizeToPeak(specFlux)

	env := make([]float64, n)
	for i := range env {
		env[i] = 0.5 * (hfcFlux[i] + specFlux[i])
	}
	return env
}

func normalizeToPeak(v []float64) {
	var peak float64
	for _, x := range v {
		if x > peak {
			peak = x
		}
	}
	if peak <= 0 {
		return
	}
	for i := range v {
		v[i] /= peak
	}
}

// pickOnsets selects local envelope maxima above threshold, enforcing a
// minimum gap between consecutive onsets.
func pickOnsets(env []float64, fps, threshold, minGapSec float64) []float64 {
	var onsets []float64
	last := -2 * minGapSec
	for i := 1; i < len(env)-1; i++ {
		if env[i] < threshold || env[i] < env[i-1] || env[i] < env[i+1] {
			continue
		}
		t := float64(i) / fps
		if t-last < minGapSec {
			continue
		}
		onsets = append(onsets, t)
		last = t
	}
	return onsets
}

// ascending sorts timestamps and drops duplicates so the result is strictly
// increasing.
func ascending(ts []float64) []float64 {
	if len(ts) < 2 {
		return ts
	}
	sort.Float64s(ts)
	out := ts[:1]
	for _, t := range ts[1:] {
		if t > out[len(out)-1] {
			out = append(out, t)
		}
	}
	return out
}
