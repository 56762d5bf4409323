package audio

import (
	"math"
	"testing"
)

func TestResampleSameRate(t *testing.T) {
	in := []float64{0.1, 0.2, 0.3}
	out := Resample(in, 44100, 44100)
	if len(out) != len(in) {
		t.Fatalf("expected unchanged length %d, got %d", len(in), len(out))
	}
}

func TestResampleLength(t *testing.T) {
	in := make([]float64, 44100)
	out := Resample(in, 44100, 16000)
	if got, want := len(out), 16000; got != want {
		t.Errorf("resampled length = %d, want %d", got, want)
	}

	out = Resample(in, 44100, 88200)
	if got, want := len(out), 88200; got != want {
		t.Errorf("upsampled length = %d, want %d", got, want)
	}
}

func TestResamplePreservesConstant(t *testing.T) {
	in := make([]float64, 4410)
	for i := range in {
		in[i] = 0.5
	}

	out := Resample(in, 44100, 16000)
	for i, v := range out {
		if math.Abs(v-0.5) > 1e-9 {
			t.Fatalf("sample %d = %v, want 0.5", i, v)
		}
	}
}

func TestResamplePreservesSine(t *testing.T) {
	// A 440 Hz tone downsampled to 22050 Hz should stay close to the
	// analytic waveform away from the edges.
	const freq = 440.0
	in := make([]float64, 44100)
	for i := range in {
		in[i] = math.Sin(2 * math.Pi * freq * float64(i) / 44100)
	}

	out := Resample(in, 44100, 22050)
	for i := 10; i < len(out)-10; i++ {
		want := math.Sin(2 * math.Pi * freq * float64(i) / 22050)
		if math.Abs(out[i]-want) > 0.01 {
			t.Fatalf("sample %d = %v, want %v", i, out[i], want)
		}
	}
}
