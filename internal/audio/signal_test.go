package audio

import (
	"errors"
	"math"
	"testing"
)

func TestSignalDuration(t *testing.T) {
	sig := &Signal{Samples: make([]float64, 44100*2), SampleRate: 44100}
	if got := sig.Duration(); math.Abs(got-2.0) > 1e-9 {
		t.Errorf("Duration() = %v, want 2.0", got)
	}

	var nilSig *Signal
	if got := nilSig.Duration(); got != 0 {
		t.Errorf("nil signal Duration() = %v, want 0", got)
	}
}

func TestSignalValidate(t *testing.T) {
	tests := []struct {
		name    string
		sig     *Signal
		wantErr error
	}{
		{"valid", &Signal{Samples: []float64{0.1, 0.2}, SampleRate: 44100}, nil},
		{"empty samples", &Signal{Samples: nil, SampleRate: 44100}, ErrEmptySignal},
		{"nil signal", nil, ErrEmptySignal},
		{"zero rate", &Signal{Samples: []float64{0.1}, SampleRate: 0}, ErrInvalidSampleRate},
		{"negative rate", &Signal{Samples: []float64{0.1}, SampleRate: -1}, ErrInvalidSampleRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sig.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
