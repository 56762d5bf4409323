package analysis

import (
	"math"

	"github.com/wavescribe/WaveScribe/internal/audio"
)

// Test-signal builders shared by the package tests.

func makeSilence(seconds float64) *audio.Signal {
	return &audio.Signal{
		Samples:    make([]float64, int(float64(audio.AnalysisRate)*seconds)),
		SampleRate: audio.AnalysisRate,
	}
}

func makeTone(freq, seconds float64) *audio.Signal {
	n := int(float64(audio.AnalysisRate) * seconds)
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(audio.AnalysisRate))
	}
	return &audio.Signal{Samples: samples, SampleRate: audio.AnalysisRate}
}

// makeClicks returns a click track at the given tempo: short decaying bursts
// at every beat over a quiet noise floor of zeros.
func makeClicks(bpm, seconds float64) *audio.Signal {
	rate := audio.AnalysisRate
	n := int(float64(rate) * seconds)
	samples := make([]float64, n)

	period := int(float64(rate) * 60 / bpm)
	for start := 0; start < n; start += period {
		for j := 0; j < 512 && start+j < n; j++ {
			decay := 1 - float64(j)/512
			samples[start+j] = 0.9 * decay * math.Sin(2*math.Pi*1000*float64(j)/float64(rate))
		}
	}
	return &audio.Signal{Samples: samples, SampleRate: rate}
}

// makeTwoToneTrack concatenates a low tone and a bright tone of equal length,
// giving the segmenter one sharp timbre change at the midpoint.
func makeTwoToneTrack(seconds float64) *audio.Signal {
	rate := audio.AnalysisRate
	n := int(float64(rate) * seconds)
	half := n / 2
	samples := make([]float64, n)
	for i := 0; i < half; i++ {
		samples[i] = 0.5 * math.Sin(2*math.Pi*220*float64(i)/float64(rate))
	}
	for i := half; i < n; i++ {
		samples[i] = 0.5*math.Sin(2*math.Pi*2800*float64(i)/float64(rate)) +
			0.3*math.Sin(2*math.Pi*4200*float64(i)/float64(rate))
	}
	return &audio.Signal{Samples: samples, SampleRate: rate}
}
