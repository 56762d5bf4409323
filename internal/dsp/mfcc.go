package dsp

import "math"

const logEps = 1e-10

// MFCCConfig controls mel-frequency cepstral coefficient extraction.
type MFCCConfig struct {
	SampleRate int
	FrameSize  int
	HopSize    int
	NumCoeffs  int
	NumFilters int
}

func hzToMel(hz float64) float64 {
	return 2595 * math.Log10(1+hz/700)
}

func melToHz(mel float64) float64 {
	return 700 * (math.Pow(10, mel/2595) - 1)
}

// melFilterbank builds triangular mel filters over the magnitude spectrum
// bins. Each filter is a slice of per-bin weights.
func melFilterbank(numFilters, frameSize, sampleRate int) [][]float64 {
	numBins := frameSize/2 + 1
	lowMel := hzToMel(0)
	highMel := hzToMel(float64(sampleRate) / 2)

	// numFilters+2 equally spaced mel points define the triangle edges.
	points := make([]float64, numFilters+2)
	for i := range points {
		mel := lowMel + (highMel-lowMel)*float64(i)/float64(numFilters+1)
		points[i] = melToHz(mel) * float64(frameSize) / float64(sampleRate)
	}

	filters := make([][]float64, numFilters)
	for f := 0; f < numFilters; f++ {
		filters[f] = make([]float64, numBins)
		left, center, right := points[f], points[f+1], points[f+2]
		for k := 0; k < numBins; k++ {
			bin := float64(k)
			switch {
			case bin > left && bin < center:
				filters[f][k] = (bin - left) / (center - left)
			case bin >= center && bin < right:
				filters[f][k] = (right - bin) / (right - center)
			}
		}
	}
	return filters
}

// dctII computes the first numCoeffs coefficients of the DCT-II of in.
func dctII(in []float64, numCoeffs int) []float64 {
	n := len(in)
	out := make([]float64, numCoeffs)
	for k := 0; k < numCoeffs; k++ {
		var sum float64
		for i := 0; i < n; i++ {
			sum += in[i] * math.Cos(math.Pi*float64(k)*(float64(i)+0.5)/float64(n))
		}
		out[k] = sum
	}
	return out
}

// MFCC computes one MFCC vector per frame of samples. Rows are frames,
// columns are cepstral coefficients.
func MFCC(samples []float64, cfg MFCCConfig) [][]float64 {
	filters := melFilterbank(cfg.NumFilters, cfg.FrameSize, cfg.SampleRate)
	spectra := STFT(samples, cfg.FrameSize, cfg.HopSize)

	coeffs := make([][]float64, len(spectra))
	logEnergies := make([]float64, cfg.NumFilters)
	for i, mag := range spectra {
		for f, filter := range filters {
			var energy float64
			for k, w := range filter {
				if w != 0 {
					energy += w * mag[k] * mag[k]
				}
			}
			logEnergies[f] = math.Log(energy + logEps)
		}
		coeffs[i] = dctII(logEnergies, cfg.NumCoeffs)
	}
	return coeffs
}
