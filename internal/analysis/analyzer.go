package analysis

import (
	"context"

	"github.com/wavescribe/WaveScribe/internal/audio"
	"github.com/wavescribe/WaveScribe/internal/classify"
	"github.com/wavescribe/WaveScribe/pkg/logger"
)

// Request selects which analysis components to run.
type Request struct {
	Rhythm         bool
	Structure      bool
	Classification bool
	Tonal          bool
}

// FullRequest selects every component.
func FullRequest() Request {
	return Request{Rhythm: true, Structure: true, Classification: true, Tonal: true}
}

// ComponentStatus records whether one requested component succeeded.
type ComponentStatus struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// FullAnalysisResult aggregates the requested component results. Every
// requested component appears in Components, populated or failed — the
// aggregator never silently drops one.
type FullAnalysisResult struct {
	Duration       float64                    `json:"duration"`
	Rhythm         *RhythmResult              `json:"rhythm,omitempty"`
	Structure      *StructureResult           `json:"structure,omitempty"`
	Classification *classify.Result           `json:"classification,omitempty"`
	Tonal          *TonalResult               `json:"tonal,omitempty"`
	Components     map[string]ComponentStatus `json:"components"`
}

// Config bundles the per-component configuration.
type Config struct {
	Energy    EnergyConfig
	Rhythm    RhythmConfig
	Segmenter SegmenterConfig
	Labels    LabelConfig
	Tonal     TonalConfig
}

func DefaultConfig() Config {
	return Config{
		Energy:    DefaultEnergyConfig(),
		Rhythm:    DefaultRhythmConfig(),
		Segmenter: DefaultSegmenterConfig(),
		Labels:    DefaultLabelConfig(),
		Tonal:     DefaultTonalConfig(),
	}
}

// Analyzer fans one decoded signal out to the requested extractors and
// collects their results with per-component failure isolation.
type Analyzer struct {
	cfg    Config
	engine *classify.Engine
	log    *logger.Logger
}

// NewAnalyzer builds an Analyzer. engine may be nil; classification requests
// are then reported as failed without affecting other components.
func NewAnalyzer(cfg Config, engine *classify.Engine) *Analyzer {
	return &Analyzer{
		cfg:    cfg,
		engine: engine,
		log:    logger.GetLogger(),
	}
}

// Analyze runs the requested components over one signal. An invalid signal
// aborts the whole call; any per-component failure is recorded against that
// component only. The energy curve is computed once and shared between the
// rhythm and structure extractors.
func (a *Analyzer) Analyze(ctx context.Context, sig *audio.Signal, req Request) (*FullAnalysisResult, error) {
	if err := sig.Validate(); err != nil {
		return nil, err
	}

	result := &FullAnalysisResult{
		Duration:   sig.Duration(),
		Components: make(map[string]ComponentStatus),
	}

	var energy *EnergyCurve
	if req.Rhythm || req.Structure {
		var err error
		energy, err = ExtractEnergy(sig, a.cfg.Energy)
		if err != nil {
			return nil, err
		}
	}

	if req.Rhythm {
		rhythm, err := ExtractRhythm(sig, energy, a.cfg.Rhythm)
		result.Components["rhythm"] = statusFor(err)
		if err != nil {
			a.log.Warnf("rhythm extraction failed: %v", err)
		} else {
			result.Rhythm = rhythm
		}
	}

	if req.Structure {
		structure, err := Segment(sig, energy, a.cfg.Segmenter, a.cfg.Labels)
		result.Components["structure"] = statusFor(err)
		if err != nil {
			a.log.Warnf("structural segmentation failed: %v", err)
		} else {
			result.Structure = structure
		}
	}

	if req.Classification {
		if a.engine == nil {
			result.Components["classification"] = ComponentStatus{OK: false, Error: "classification engine not configured"}
		} else {
			classification, err := a.engine.Classify(ctx, sig)
			result.Components["classification"] = statusFor(err)
			if err != nil {
				a.log.Warnf("classification failed: %v", err)
			} else {
				result.Classification = classification
			}
		}
	}

	if req.Tonal {
		tonal, err := AnalyzeTonality(sig, a.cfg.Tonal)
		result.Components["tonal"] = statusFor(err)
		if err != nil {
			a.log.Warnf("tonal analysis failed: %v", err)
		} else {
			result.Tonal = tonal
		}
	}

	return result, nil
}

func statusFor(err error) ComponentStatus {
	if err != nil {
		return ComponentStatus{OK: false, Error: err.Error()}
	}
	return ComponentStatus{OK: true}
}
