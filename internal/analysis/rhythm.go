package analysis

import (
	"github.com/wavescribe/WaveScribe/internal/audio"
)

// RhythmConfig controls tempo estimation, beat tracking, and onset picking.
type RhythmConfig struct {
	FrameSize      int
	HopSize        int
	MinBPM         float64
	MaxBPM         float64
	OnsetThreshold float64 // minimum normalized envelope value for an onset
	MinOnsetGapSec float64 // minimum spacing between reported onsets
}

func DefaultRhythmConfig() RhythmConfig {
	return RhythmConfig{
		FrameSize:      1024,
		HopSize:        512,
		MinBPM:         60,
		MaxBPM:         200,
		OnsetThreshold: 0.1,
		MinOnsetGapSec: 0.05,
	}
}

// RhythmResult carries tempo, beat grid, onsets, and the shared energy curve.
// Absence of rhythmic content is a valid result: bpm=0, beats=[], confidence=0.
type RhythmResult struct {
	BPM        float64      `json:"bpm"`
	Beats      []float64    `json:"beats"`
	Confidence float64      `json:"confidence"`
	Onsets     []float64    `json:"onsets"`
	Duration   float64      `json:"duration"`
	Energy     *EnergyCurve `json:"energy"`
}

// ExtractRhythm estimates tempo and the beat grid from the onset-strength
// envelope and picks onsets with a finer-grained detector pass.
func ExtractRhythm(sig *audio.Signal, energy *EnergyCurve, cfg RhythmConfig) (*RhythmResult, error) {
	if err := sig.Validate(); err != nil {
		return nil, err
	}

	duration := sig.Duration()
	fps := float64(sig.SampleRate) / float64(cfg.HopSize)
	env := onsetEnvelope(sig.Samples, cfg.FrameSize, cfg.HopSize)

	onsets := pickOnsets(env, fps, cfg.OnsetThreshold, cfg.MinOnsetGapSec)
	bpm, confidence, period := estimateTempo(env, fps, cfg.MinBPM, cfg.MaxBPM)

	var beats []float64
	if bpm > 0 {
		beats = beatGrid(env, period, fps, duration)
	}

	// Empty sequences serialize as [] rather than null.
	if beats == nil {
		beats = []float64{}
	}
	if onsets == nil {
		onsets = []float64{}
	}

	return &RhythmResult{
		BPM:        bpm,
		Beats:      ascending(beats),
		Confidence: confidence,
		Onsets:     ascending(onsets),
		Duration:   duration,
		Energy:     energy,
	}, nil
}

// estimateTempo autocorrelates the onset-strength envelope over the lag range
// corresponding to [minBPM, maxBPM] and returns the winning BPM, a confidence
// in [0,1], and the winning lag in frames. A flat envelope yields all zeros.
func estimateTempo(env []float64, fps, minBPM, maxBPM float64) (bpm, confidence float64, lag int) {
	var total float64
	for _, v := range env {
		total += v * v
	}
	if total == 0 {
		return 0, 0, 0
	}

	minLag := int(fps * 60 / maxBPM)
	maxLag := int(fps * 60 / minBPM)
	if minLag < 1 {
		minLag = 1
	}
	if maxLag >= len(env) {
		maxLag = len(env) - 1
	}
	if minLag > maxLag {
		return 0, 0, 0
	}

	best, bestVal := 0, 0.0
	for l := minLag; l <= maxLag; l++ {
		var acf float64
		for i := 0; i+l < len(env); i++ {
			acf += env[i] * env[i+l]
		}
		if acf > bestVal {
			best, bestVal = l, acf
		}
	}
	if best == 0 {
		return 0, 0, 0
	}

	confidence = bestVal / total
	if confidence > 1 {
		confidence = 1
	}
	return 60 * fps / float64(best), confidence, best
}

// beatGrid lays a fixed-period grid at the phase offset capturing the most
// onset-envelope mass.
func beatGrid(env []float64, period int, fps, duration float64) []float64 {
	if period <= 0 {
		return nil
	}

	bestPhase, bestMass := 0, -1.0
	for p := 0; p < period && p < len(env); p++ {
		var mass float64
		for i := p; i < len(env); i += period {
			mass += env[i]
		}
		if mass > bestMass {
			bestPhase, bestMass = p, mass
		}
	}

	var beats []float64
	for i := bestPhase; i < len(env); i += period {
		t := float64(i) / fps
		if t > duration {
			break
		}
		beats = append(beats, t)
	}
	return beats
}
