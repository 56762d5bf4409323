package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/wavescribe/WaveScribe/internal/audio"
	"github.com/wavescribe/WaveScribe/internal/classify"
)

func TestAnalyzeEmptySignalFatal(t *testing.T) {
	analyzer := NewAnalyzer(DefaultConfig(), nil)
	_, err := analyzer.Analyze(context.Background(), &audio.Signal{SampleRate: audio.AnalysisRate}, FullRequest())
	if !errors.Is(err, audio.ErrEmptySignal) {
		t.Errorf("Analyze error = %v, want ErrEmptySignal", err)
	}
}

func TestAnalyzeReportsEveryRequestedComponent(t *testing.T) {
	engine := classify.NewEngine(classify.DefaultEngineConfig(t.TempDir()))
	analyzer := NewAnalyzer(DefaultConfig(), engine)

	result, err := analyzer.Analyze(context.Background(), makeClicks(120, 8), FullRequest())
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	for _, name := range []string{"rhythm", "structure", "classification", "tonal"} {
		if _, ok := result.Components[name]; !ok {
			t.Errorf("component %q missing from the result", name)
		}
	}
	if result.Rhythm == nil || result.Structure == nil || result.Tonal == nil {
		t.Error("expected rhythm, structure, and tonal results to be populated")
	}

	// No model artifacts exist, so every dimension degrades but the
	// classification call itself succeeds.
	if !result.Components["classification"].OK {
		t.Errorf("classification status = %+v, want OK with unavailable dimensions", result.Components["classification"])
	}
	if result.Classification == nil {
		t.Fatal("classification result missing")
	}
	if result.Classification.Genre.Available {
		t.Error("genre should be unavailable without a model artifact")
	}
}

func TestAnalyzeSubsetRequest(t *testing.T) {
	analyzer := NewAnalyzer(DefaultConfig(), nil)

	result, err := analyzer.Analyze(context.Background(), makeTone(440, 3), Request{Tonal: true})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if len(result.Components) != 1 {
		t.Errorf("components = %v, want only tonal", result.Components)
	}
	if result.Rhythm != nil || result.Structure != nil || result.Classification != nil {
		t.Error("unrequested components should be absent")
	}
	if result.Tonal == nil {
		t.Error("requested tonal result missing")
	}
}

func TestAnalyzeNilEngineLocalizedFailure(t *testing.T) {
	analyzer := NewAnalyzer(DefaultConfig(), nil)

	result, err := analyzer.Analyze(context.Background(), makeTone(440, 3), Request{Classification: true, Tonal: true})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	status := result.Components["classification"]
	if status.OK || status.Error == "" {
		t.Errorf("classification status = %+v, want a recorded failure", status)
	}
	if !result.Components["tonal"].OK {
		t.Error("tonal should succeed despite the classification failure")
	}
}

func TestAnalyzeIdempotent(t *testing.T) {
	analyzer := NewAnalyzer(DefaultConfig(), nil)
	sig := makeClicks(100, 10)

	first, err := analyzer.Analyze(context.Background(), sig, Request{Rhythm: true, Structure: true, Tonal: true})
	if err != nil {
		t.Fatalf("first Analyze failed: %v", err)
	}
	second, err := analyzer.Analyze(context.Background(), sig, Request{Rhythm: true, Structure: true, Tonal: true})
	if err != nil {
		t.Fatalf("second Analyze failed: %v", err)
	}

	a, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshaling first result: %v", err)
	}
	b, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("marshaling second result: %v", err)
	}
	if string(a) != string(b) {
		t.Error("pipeline is not deterministic across runs on the same signal")
	}
}
