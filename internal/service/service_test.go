package service

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/wavescribe/WaveScribe/internal/analysis"
	"github.com/wavescribe/WaveScribe/internal/storage"
)

func setupService(t *testing.T) *AnalysisService {
	t.Helper()

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "service_test.sqlite3")

	oldPath := os.Getenv("WAVESCRIBE_DB_PATH")
	os.Setenv("WAVESCRIBE_DB_PATH", dbPath)
	t.Cleanup(func() {
		if oldPath == "" {
			os.Unsetenv("WAVESCRIBE_DB_PATH")
		} else {
			os.Setenv("WAVESCRIBE_DB_PATH", oldPath)
		}
	})

	svc, err := NewAnalysisService(Options{
		ModelDir: filepath.Join(tmpDir, "models"),
		TempDir:  tmpDir,
	})
	if err != nil {
		t.Fatalf("Failed to create service: %v", err)
	}
	t.Cleanup(func() { svc.Close() })
	return svc
}

// writeToneWAV writes a short 16-bit mono WAV with a 440 Hz tone.
func writeToneWAV(t *testing.T, dir string, seconds float64) string {
	t.Helper()

	path := filepath.Join(dir, "tone.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating test WAV: %v", err)
	}
	defer f.Close()

	const rate = 44100
	n := int(rate * seconds)
	data := make([]int, n)
	for i := range data {
		data[i] = int(0.5 * 32767 * math.Sin(2*math.Pi*440*float64(i)/rate))
	}

	enc := wav.NewEncoder(f, rate, 16, 1, 1)
	buf := &goaudio.IntBuffer{
		Data:           data,
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: rate},
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("writing WAV data: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("finalizing WAV: %v", err)
	}
	return path
}

func TestAnalyzeFilePersistsResult(t *testing.T) {
	svc := setupService(t)
	path := writeToneWAV(t, t.TempDir(), 3)

	id, result, err := svc.AnalyzeFile(context.Background(), path, analysis.FullRequest())
	if err != nil {
		t.Fatalf("AnalyzeFile failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected a stored analysis ID")
	}
	if result == nil || result.Duration < 2.9 || result.Duration > 3.1 {
		t.Fatalf("unexpected result: %+v", result)
	}

	record, stored, err := svc.GetAnalysis(id)
	if err != nil {
		t.Fatalf("GetAnalysis failed: %v", err)
	}
	if record.Filename != "tone.wav" {
		t.Errorf("stored filename = %q, want tone.wav", record.Filename)
	}
	if record.Source != "upload" {
		t.Errorf("stored source = %q, want upload", record.Source)
	}
	if stored.Tonal == nil {
		t.Error("stored result lost the tonal component")
	}
	if record.Key != stored.Tonal.Key {
		t.Errorf("summary key %q does not match stored result key %q", record.Key, stored.Tonal.Key)
	}

	// No model artifacts were provisioned: classification degrades but is
	// still recorded.
	if stored.Classification == nil || stored.Classification.Genre.Available {
		t.Error("expected an unavailable genre dimension in the stored result")
	}
}

func TestAnalyzeFileMissing(t *testing.T) {
	svc := setupService(t)

	_, _, err := svc.AnalyzeFile(context.Background(), filepath.Join(t.TempDir(), "nope.wav"), analysis.FullRequest())
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestListAndDeleteAnalyses(t *testing.T) {
	svc := setupService(t)
	path := writeToneWAV(t, t.TempDir(), 2)

	id, _, err := svc.AnalyzeFile(context.Background(), path, analysis.Request{Rhythm: true, Tonal: true})
	if err != nil {
		t.Fatalf("AnalyzeFile failed: %v", err)
	}

	records, err := svc.ListAnalyses(0)
	if err != nil {
		t.Fatalf("ListAnalyses failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("listed %d analyses, want 1", len(records))
	}

	if err := svc.DeleteAnalysis(id); err != nil {
		t.Fatalf("DeleteAnalysis failed: %v", err)
	}
	if _, _, err := svc.GetAnalysis(id); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetAnalysis after delete = %v, want ErrNotFound", err)
	}
}
