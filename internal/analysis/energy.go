// Package analysis implements the music feature-extraction pipeline: energy
// profile, rhythm and beat tracking, structural segmentation with section
// labeling, tonal key estimation, and the aggregator tying them together.
package analysis

import (
	"math"

	"github.com/wavescribe/WaveScribe/internal/audio"
	"github.com/wavescribe/WaveScribe/internal/dsp"
)

// EnergyConfig controls the frame-wise RMS energy curve.
type EnergyConfig struct {
	FrameSize int
	HopSize   int
}

func DefaultEnergyConfig() EnergyConfig {
	return EnergyConfig{FrameSize: 1024, HopSize: 512}
}

// EnergyCurve is the normalized frame-wise loudness profile of a signal.
// Values are min-max scaled to [0,1]; an all-silent signal yields all zeros.
type EnergyCurve struct {
	Values     []float64 `json:"curve"`
	Mean       float64   `json:"mean"`
	Std        float64   `json:"std"`
	FrameSize  int       `json:"frame_size"`
	HopSize    int       `json:"hop_size"`
	SampleRate int       `json:"-"`
}

// ExtractEnergy computes the RMS energy curve of a signal. A signal shorter
// than one frame yields a single zero-padded frame; an empty signal is a
// fatal input error.
func ExtractEnergy(sig *audio.Signal, cfg EnergyConfig) (*EnergyCurve, error) {
	if err := sig.Validate(); err != nil {
		return nil, err
	}

	frames := dsp.NumFrames(len(sig.Samples), cfg.FrameSize, cfg.HopSize)
	values := make([]float64, frames)
	frame := make([]float64, cfg.FrameSize)
	for i := 0; i < frames; i++ {
		dsp.Frame(sig.Samples, i, cfg.HopSize, frame)
		var sum float64
		for _, s := range frame {
			sum += s * s
		}
		values[i] = math.Sqrt(sum / float64(cfg.FrameSize))
	}

	minV, maxV := values[0], values[0]
	for _, v := range values[1:] {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	if maxV > minV {
		for i := range values {
			values[i] = (values[i] - minV) / (maxV - minV)
		}
	} else {
		for i := range values {
			values[i] = 0
		}
	}

	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	var variance float64
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values))

	return &EnergyCurve{
		Values:     values,
		Mean:       mean,
		Std:        math.Sqrt(variance),
		FrameSize:  cfg.FrameSize,
		HopSize:    cfg.HopSize,
		SampleRate: sig.SampleRate,
	}, nil
}

// MeanOver returns the mean energy over the time span [startSec, endSec),
// clamped to the curve's extent.
func (c *EnergyCurve) MeanOver(startSec, endSec float64) float64 {
	if c == nil || len(c.Values) == 0 || c.SampleRate <= 0 {
		return 0
	}

	fps := float64(c.SampleRate) / float64(c.HopSize)
	start := int(startSec * fps)
	end := int(endSec * fps)
	if start < 0 {
		start = 0
	}
	if start >= len(c.Values) {
		start = len(c.Values) - 1
	}
	if end <= start {
		end = start + 1
	}
	if end > len(c.Values) {
		end = len(c.Values)
	}

	var sum float64
	for _, v := range c.Values[start:end] {
		sum += v
	}
	return sum / float64(end-start)
}
