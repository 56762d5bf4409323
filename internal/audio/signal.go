package audio

import "errors"

var (
	// ErrEmptySignal is returned when a decoded signal carries no samples.
	// An empty signal is a fatal input error: there is nothing to analyze.
	ErrEmptySignal = errors.New("audio signal is empty")

	// ErrInvalidSampleRate is returned for a zero or negative sample rate.
	ErrInvalidSampleRate = errors.New("invalid sample rate")

	// ErrUnsupportedFormat is returned when no native decoder handles the
	// file extension; callers may fall back to ffmpeg conversion.
	ErrUnsupportedFormat = errors.New("unsupported audio format")
)

// AnalysisRate is the sample rate the analysis pipeline expects.
// Natively decoded audio at any other rate is resampled to it.
const AnalysisRate = 44100

// Signal is a decoded mono waveform. It is immutable once decoded and
// owned by the single analysis invocation that produced it.
type Signal struct {
	Samples    []float64
	SampleRate int
}

// Duration returns the signal length in seconds.
func (s *Signal) Duration() float64 {
	if s == nil || s.SampleRate <= 0 {
		return 0
	}
	return float64(len(s.Samples)) / float64(s.SampleRate)
}

// Validate reports whether the signal can be analyzed at all.
func (s *Signal) Validate() error {
	if s == nil || len(s.Samples) == 0 {
		return ErrEmptySignal
	}
	if s.SampleRate <= 0 {
		return ErrInvalidSampleRate
	}
	return nil
}
