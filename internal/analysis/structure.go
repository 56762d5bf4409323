package analysis

import (
	"math"
	"sort"

	"github.com/wavescribe/WaveScribe/internal/audio"
	"github.com/wavescribe/WaveScribe/internal/dsp"
)

// SegmenterConfig controls timbral feature extraction and change-point
// detection for structural segmentation.
type SegmenterConfig struct {
	FrameSize        int
	HopSize          int
	NumCoeffs        int
	NumFilters       int
	WindowFrames     int     // half-window (feature frames) around each split candidate
	MinSegmentFrames int     // minimum spacing between boundaries, feature frames
	Penalty          float64 // complexity penalty weight; higher = fewer boundaries
}

func DefaultSegmenterConfig() SegmenterConfig {
	return SegmenterConfig{
		FrameSize:        2048,
		HopSize:          1024,
		NumCoeffs:        13,
		NumFilters:       26,
		WindowFrames:     100,
		MinSegmentFrames: 100,
		Penalty:          1.0,
	}
}

// LabelConfig is the section-labeling policy. The quantile thresholds apply
// to the track's section-energy distribution, evaluated once per track.
type LabelConfig struct {
	// ChorusQuantile: sections with mean energy at or above this nearest-rank
	// quantile are labeled chorus. Checked before VerseQuantile, so a section
	// qualifying for both buckets (degenerate distribution) is a chorus.
	ChorusQuantile float64
	// VerseQuantile: sections at or below this quantile are labeled verse.
	VerseQuantile float64
	// MidLabel is assigned to sections between the two quantiles.
	MidLabel string
	// MinSectionSec: a single-section track shorter than this is labeled
	// intro; at or above it the quantile rule applies degenerately.
	MinSectionSec float64
}

func DefaultLabelConfig() LabelConfig {
	return LabelConfig{
		ChorusQuantile: 0.75,
		VerseQuantile:  0.25,
		MidLabel:       "bridge",
		MinSectionSec:  10,
	}
}

// Section is one labeled structural span of the track.
type Section struct {
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Label    string  `json:"label"`
	Duration float64 `json:"duration"`
	Energy   float64 `json:"energy"`
}

// StructureResult is an ordered, contiguous partition of [0, duration].
type StructureResult struct {
	Sections   []Section `json:"sections"`
	Boundaries []float64 `json:"boundaries"`
	Duration   float64   `json:"duration"`
}

// Segment detects timbre-change boundaries over MFCC features and labels the
// resulting sections with the energy-quartile heuristic. At least one section
// always exists.
func Segment(sig *audio.Signal, energy *EnergyCurve, cfg SegmenterConfig, labels LabelConfig) (*StructureResult, error) {
	if err := sig.Validate(); err != nil {
		return nil, err
	}
	duration := sig.Duration()

	features := dsp.MFCC(sig.Samples, dsp.MFCCConfig{
		SampleRate: sig.SampleRate,
		FrameSize:  cfg.FrameSize,
		HopSize:    cfg.HopSize,
		NumCoeffs:  cfg.NumCoeffs,
		NumFilters: cfg.NumFilters,
	})

	fps := float64(sig.SampleRate) / float64(cfg.HopSize)
	boundaries := []float64{0, duration}
	for _, idx := range detectChangePoints(features, cfg.WindowFrames, cfg.MinSegmentFrames, cfg.Penalty) {
		t := float64(idx) / fps
		if t > 0 && t < duration {
			boundaries = append(boundaries, t)
		}
	}
	boundaries = ascending(boundaries)

	sections := make([]Section, 0, len(boundaries)-1)
	for i := 0; i+1 < len(boundaries); i++ {
		start, end := boundaries[i], boundaries[i+1]
		sections = append(sections, Section{
			Start:    start,
			End:      end,
			Duration: end - start,
			Energy:   energy.MeanOver(start, end),
		})
	}

	labelSections(sections, labels)
	return &StructureResult{Sections: sections, Boundaries: boundaries, Duration: duration}, nil
}

// labelSections applies the per-track labeling heuristic: first and last
// sections become intro and outro, the rest are bucketed by where their mean
// energy falls in the track's section-energy distribution.
func labelSections(sections []Section, cfg LabelConfig) {
	if len(sections) == 0 {
		return
	}

	energies := make([]float64, len(sections))
	for i, s := range sections {
		energies[i] = s.Energy
	}
	sort.Float64s(energies)
	hi := quantileNearestRank(energies, cfg.ChorusQuantile)
	lo := quantileNearestRank(energies, cfg.VerseQuantile)

	byEnergy := func(e float64) string {
		switch {
		case e >= hi:
			return "chorus"
		case e <= lo:
			return "verse"
		default:
			return cfg.MidLabel
		}
	}

	if len(sections) == 1 {
		if sections[0].Duration < cfg.MinSectionSec {
			sections[0].Label = "intro"
		} else {
			sections[0].Label = byEnergy(sections[0].Energy)
		}
		return
	}

	for i := range sections {
		switch i {
		case 0:
			sections[i].Label = "intro"
		case len(sections) - 1:
			sections[i].Label = "outro"
		default:
			sections[i].Label = byEnergy(sections[i].Energy)
		}
	}
}

// quantileNearestRank returns the nearest-rank q-th quantile of sorted values.
func quantileNearestRank(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := int(math.Ceil(q * float64(len(sorted))))
	if rank < 1 {
		rank = 1
	}
	if rank > len(sorted) {
		rank = len(sorted)
	}
	return sorted[rank-1]
}
