package classify

import (
	"context"
	"errors"

	"github.com/wavescribe/WaveScribe/internal/audio"
	"github.com/wavescribe/WaveScribe/pkg/logger"
)

// EngineConfig controls classification inference.
type EngineConfig struct {
	ModelDir    string
	SampleRate  int     // internal inference rate, independent of analysis rate
	FrameSize   int
	HopSize     int
	Temperature float64 // softmax temperature for distribution models
}

func DefaultEngineConfig(modelDir string) EngineConfig {
	return EngineConfig{
		ModelDir:    modelDir,
		SampleRate:  16000,
		FrameSize:   1024,
		HopSize:     512,
		Temperature: 0.25,
	}
}

// Distribution is the outcome of one classification dimension. Available is
// the explicit sentinel distinguishing a missing model from an empty score
// map.
type Distribution struct {
	Available  bool               `json:"available"`
	Label      string             `json:"label,omitempty"`
	Confidence float64            `json:"confidence,omitempty"`
	Scores     map[string]float64 `json:"all_scores,omitempty"`
}

// Result holds the three classification dimensions.
type Result struct {
	Genre Distribution `json:"genre"`
	Mood  Distribution `json:"mood"`
	Tags  Distribution `json:"tags"`
}

// Engine runs genre/mood/tag inference over a resampled copy of the signal.
// Models load lazily through the cache; inference is serialized through a
// capacity-1 admission gate so concurrent requests queue rather than compete
// for the accelerator.
type Engine struct {
	cfg   EngineConfig
	cache *Cache
	gate  chan struct{}
	log   *logger.Logger
}

func NewEngine(cfg EngineConfig) *Engine {
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 16000
	}
	if cfg.FrameSize == 0 {
		cfg.FrameSize = 1024
	}
	if cfg.HopSize == 0 {
		cfg.HopSize = 512
	}
	return &Engine{
		cfg:   cfg,
		cache: NewCache(cfg.ModelDir),
		gate:  make(chan struct{}, 1),
		log:   logger.GetLogger(),
	}
}

// Cache exposes the model cache, mainly so tests can Reset it.
func (e *Engine) Cache() *Cache {
	return e.cache
}

// Classify scores the signal on every dimension. A missing model marks that
// dimension unavailable and the others proceed. The only call-level failures
// are an invalid signal and context cancellation while waiting for the gate;
// a request already running inference is not cancellable.
func (e *Engine) Classify(ctx context.Context, sig *audio.Signal) (*Result, error) {
	if err := sig.Validate(); err != nil {
		return nil, err
	}

	samples := sig.Samples
	if sig.SampleRate != e.cfg.SampleRate {
		samples = audio.Resample(samples, sig.SampleRate, e.cfg.SampleRate)
	}
	features := featureVector(samples, e.cfg.SampleRate, e.cfg.FrameSize, e.cfg.HopSize)

	select {
	case e.gate <- struct{}{}:
		defer func() { <-e.gate }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return &Result{
		Genre: e.inferDimension(DimensionGenre, features),
		Mood:  e.inferDimension(DimensionMood, features),
		Tags:  e.inferDimension(DimensionTags, features),
	}, nil
}

func (e *Engine) inferDimension(dimension string, features []float64) Distribution {
	model, err := e.cache.Get(dimension)
	if err != nil {
		if errors.Is(err, ErrModelUnavailable) {
			e.log.Debugf("%s model unavailable: %v", dimension, err)
		} else {
			e.log.Warnf("%s model load failed: %v", dimension, err)
		}
		return Distribution{Available: false}
	}

	scores := model.Infer(features, e.cfg.Temperature)

	var top string
	var best float64
	for label, score := range scores {
		if top == "" || score > best || (score == best && label < top) {
			top, best = label, score
		}
	}

	return Distribution{
		Available:  true,
		Label:      top,
		Confidence: best,
		Scores:     scores,
	}
}
