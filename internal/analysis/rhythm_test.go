package analysis

import (
	"math"
	"testing"
)

func TestExtractRhythmSilence(t *testing.T) {
	// A 180 s silent signal is a valid degenerate result, not a failure.
	sig := makeSilence(180)
	energy, err := ExtractEnergy(sig, DefaultEnergyConfig())
	if err != nil {
		t.Fatalf("ExtractEnergy failed: %v", err)
	}

	rhythm, err := ExtractRhythm(sig, energy, DefaultRhythmConfig())
	if err != nil {
		t.Fatalf("ExtractRhythm failed: %v", err)
	}

	if rhythm.BPM != 0 {
		t.Errorf("bpm = %v, want 0", rhythm.BPM)
	}
	if rhythm.Confidence != 0 {
		t.Errorf("confidence = %v, want 0", rhythm.Confidence)
	}
	if len(rhythm.Beats) != 0 {
		t.Errorf("beats = %v, want none", rhythm.Beats)
	}
	if len(rhythm.Onsets) != 0 {
		t.Errorf("onsets = %v, want none", rhythm.Onsets)
	}
	if math.Abs(rhythm.Duration-180) > 1e-6 {
		t.Errorf("duration = %v, want 180", rhythm.Duration)
	}
	if rhythm.Energy.Mean != 0 || rhythm.Energy.Std != 0 {
		t.Errorf("energy mean/std = %v/%v, want 0/0", rhythm.Energy.Mean, rhythm.Energy.Std)
	}
}

func TestExtractRhythmClickTrack(t *testing.T) {
	sig := makeClicks(120, 15)
	energy, err := ExtractEnergy(sig, DefaultEnergyConfig())
	if err != nil {
		t.Fatalf("ExtractEnergy failed: %v", err)
	}

	rhythm, err := ExtractRhythm(sig, energy, DefaultRhythmConfig())
	if err != nil {
		t.Fatalf("ExtractRhythm failed: %v", err)
	}

	if rhythm.BPM < 110 || rhythm.BPM > 130 {
		t.Errorf("bpm = %v, want ~120", rhythm.BPM)
	}
	if rhythm.Confidence <= 0 || rhythm.Confidence > 1 {
		t.Errorf("confidence = %v, want within (0,1]", rhythm.Confidence)
	}
	if len(rhythm.Beats) == 0 {
		t.Error("expected a non-empty beat grid")
	}
	if len(rhythm.Onsets) == 0 {
		t.Error("expected detected onsets")
	}
}

func TestRhythmOrderingInvariants(t *testing.T) {
	sig := makeClicks(96, 10)
	energy, err := ExtractEnergy(sig, DefaultEnergyConfig())
	if err != nil {
		t.Fatalf("ExtractEnergy failed: %v", err)
	}
	rhythm, err := ExtractRhythm(sig, energy, DefaultRhythmConfig())
	if err != nil {
		t.Fatalf("ExtractRhythm failed: %v", err)
	}

	assertStrictlyIncreasing(t, "beats", rhythm.Beats)
	assertStrictlyIncreasing(t, "onsets", rhythm.Onsets)

	for _, b := range rhythm.Beats {
		if b < 0 || b > rhythm.Duration {
			t.Errorf("beat %v outside [0, %v]", b, rhythm.Duration)
		}
	}
}

func assertStrictlyIncreasing(t *testing.T, name string, ts []float64) {
	t.Helper()
	for i := 1; i < len(ts); i++ {
		if ts[i] <= ts[i-1] {
			t.Fatalf("%s not strictly increasing at %d: %v <= %v", name, i, ts[i], ts[i-1])
		}
	}
}

func TestAscending(t *testing.T) {
	got := ascending([]float64{3, 1, 2, 2, 1})
	want := []float64{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("ascending = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ascending = %v, want %v", got, want)
		}
	}
}

func TestEstimateTempoFlatEnvelope(t *testing.T) {
	bpm, conf, lag := estimateTempo(make([]float64, 1000), 86.13, 60, 200)
	if bpm != 0 || conf != 0 || lag != 0 {
		t.Errorf("flat envelope tempo = (%v, %v, %v), want zeros", bpm, conf, lag)
	}
}
