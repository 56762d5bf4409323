package analysis

import (
	"math"

	"github.com/wavescribe/WaveScribe/internal/audio"
	"github.com/wavescribe/WaveScribe/internal/dsp"
)

// Krumhansl-Kessler key profiles: relative pitch-class weight for a major and
// a minor key, tonic first.
var (
	majorProfile = [12]float64{6.35, 2.23, 3.48, 2.33, 4.38, 4.09, 2.52, 5.19, 2.39, 3.66, 2.29, 2.88}
	minorProfile = [12]float64{6.33, 2.68, 3.52, 5.38, 2.60, 3.53, 2.54, 4.75, 3.98, 2.69, 3.34, 3.17}
)

var pitchClasses = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// TonalConfig controls the chroma extraction behind key estimation.
type TonalConfig struct {
	FrameSize int
	HopSize   int
	MinFreq   float64
	MaxFreq   float64
}

func DefaultTonalConfig() TonalConfig {
	return TonalConfig{
		FrameSize: 4096,
		HopSize:   2048,
		MinFreq:   27.5,
		MaxFreq:   5000,
	}
}

// TonalResult is the estimated key, scale, and correlation strength. An
// indeterminate key is a low-strength result, never an error.
type TonalResult struct {
	Key      string  `json:"key"`
	Scale    string  `json:"scale"`
	Strength float64 `json:"strength"`
}

// AnalyzeTonality estimates key and scale by correlating the signal's
// pitch-class profile against the Krumhansl profiles over all 12 rotations.
func AnalyzeTonality(sig *audio.Signal, cfg TonalConfig) (*TonalResult, error) {
	if err := sig.Validate(); err != nil {
		return nil, err
	}

	chroma := chromaProfile(sig.Samples, sig.SampleRate, cfg)

	var total float64
	for _, v := range chroma {
		total += v
	}
	if total == 0 {
		// No harmonic content. C major at zero strength is the
		// representable "no clear key" value.
		return &TonalResult{Key: "C", Scale: "major", Strength: 0}, nil
	}

	bestKey, bestScale, bestCorr := 0, "major", math.Inf(-1)
	for tonic := 0; tonic < 12; tonic++ {
		var rotated [12]float64
		for i := 0; i < 12; i++ {
			rotated[i] = chroma[(tonic+i)%12]
		}
		if corr := correlation(rotated, majorProfile); corr > bestCorr {
			bestKey, bestScale, bestCorr = tonic, "major", corr
		}
		if corr := correlation(rotated, minorProfile); corr > bestCorr {
			bestKey, bestScale, bestCorr = tonic, "minor", corr
		}
	}

	strength := bestCorr
	if strength < 0 {
		strength = 0
	}
	if strength > 1 {
		strength = 1
	}
	return &TonalResult{Key: pitchClasses[bestKey], Scale: bestScale, Strength: strength}, nil
}

// chromaProfile accumulates magnitude-spectrum energy into the 12 pitch
// classes across the whole signal.
func chromaProfile(samples []float64, sampleRate int, cfg TonalConfig) [12]float64 {
	var chroma [12]float64

	spectra := dsp.STFT(samples, cfg.FrameSize, cfg.HopSize)
	for _, mag := range spectra {
		for k := 1; k < len(mag); k++ {
			freq := dsp.BinFrequency(k, cfg.FrameSize, sampleRate)
			if freq < cfg.MinFreq || freq > cfg.MaxFreq {
				continue
			}
			// MIDI note number; 69 = A4 = 440 Hz, note 60 (C4) ≡ pitch class 0.
			midi := 69 + 12*math.Log2(freq/440)
			pc := ((int(math.Round(midi)) % 12) + 12) % 12
			chroma[pc] += mag[k] * mag[k]
		}
	}
	return chroma
}

// correlation is the Pearson correlation between two pitch-class vectors.
func correlation(a, b [12]float64) float64 {
	var meanA, meanB float64
	for i := 0; i < 12; i++ {
		meanA += a[i]
		meanB += b[i]
	}
	meanA /= 12
	meanB /= 12

	var num, denA, denB float64
	for i := 0; i < 12; i++ {
		da, db := a[i]-meanA, b[i]-meanB
		num += da * db
		denA += da * da
		denB += db * db
	}
	if denA == 0 || denB == 0 {
		return 0
	}
	return num / math.Sqrt(denA*denB)
}
