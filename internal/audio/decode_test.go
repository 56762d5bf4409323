package audio

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// writeTestWAV writes a 16-bit mono WAV containing a sine tone and returns
// its path.
func writeTestWAV(t *testing.T, dir string, rate int, freq float64, seconds float64) string {
	t.Helper()

	path := filepath.Join(dir, "tone.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create test WAV: %v", err)
	}
	defer f.Close()

	n := int(float64(rate) * seconds)
	data := make([]int, n)
	for i := range data {
		data[i] = int(0.5 * 32767 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
	}

	enc := wav.NewEncoder(f, rate, 16, 1, 1)
	buf := &goaudio.IntBuffer{
		Data:           data,
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: rate},
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("failed to write WAV data: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("failed to finalize WAV: %v", err)
	}
	return path
}

func TestDecodeFileWAV(t *testing.T) {
	path := writeTestWAV(t, t.TempDir(), AnalysisRate, 440, 1.0)

	sig, err := DecodeFile(path)
	if err != nil {
		t.Fatalf("DecodeFile failed: %v", err)
	}
	if sig.SampleRate != AnalysisRate {
		t.Errorf("sample rate = %d, want %d", sig.SampleRate, AnalysisRate)
	}
	if got := len(sig.Samples); got != AnalysisRate {
		t.Errorf("sample count = %d, want %d", got, AnalysisRate)
	}
	if math.Abs(sig.Duration()-1.0) > 0.01 {
		t.Errorf("duration = %v, want ~1.0", sig.Duration())
	}

	var peak float64
	for _, s := range sig.Samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	if peak < 0.4 || peak > 0.6 {
		t.Errorf("peak amplitude = %v, want ~0.5", peak)
	}
}

func TestDecodeFileResamples(t *testing.T) {
	path := writeTestWAV(t, t.TempDir(), 22050, 440, 1.0)

	sig, err := DecodeFile(path)
	if err != nil {
		t.Fatalf("DecodeFile failed: %v", err)
	}
	if sig.SampleRate != AnalysisRate {
		t.Errorf("sample rate = %d, want %d after resampling", sig.SampleRate, AnalysisRate)
	}
	if math.Abs(sig.Duration()-1.0) > 0.01 {
		t.Errorf("duration = %v, want ~1.0 after resampling", sig.Duration())
	}
}

func TestDecodeFileUnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "audio.flac")
	if err := os.WriteFile(path, []byte("not audio"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	_, err := DecodeFile(path)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("DecodeFile error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestDecodeFileMissing(t *testing.T) {
	if _, err := DecodeFile(filepath.Join(t.TempDir(), "nope.wav")); err == nil {
		t.Error("expected error for missing file")
	}
}
