// Package service ties decoding, analysis, and persistence into the
// operations the HTTP handlers and CLI expose.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wavescribe/WaveScribe/internal/analysis"
	"github.com/wavescribe/WaveScribe/internal/audio"
	"github.com/wavescribe/WaveScribe/internal/classify"
	"github.com/wavescribe/WaveScribe/internal/storage"
	"github.com/wavescribe/WaveScribe/pkg/logger"
	"github.com/wavescribe/WaveScribe/pkg/utils"
)

type AnalysisService struct {
	db       *storage.DBClient
	analyzer *analysis.Analyzer
	log      *logger.Logger
	tempDir  string
}

// Options configures service construction. Zero values fall back to the
// defaults: database path from WAVESCRIBE_DB_PATH, models from
// WAVESCRIBE_MODEL_DIR, temp files under the OS temp directory.
type Options struct {
	DBPath   string
	ModelDir string
	TempDir  string
}

func NewAnalysisService(opts Options) (*AnalysisService, error) {
	var db *storage.DBClient
	var err error
	if opts.DBPath != "" {
		db, err = storage.NewDBClientWithPath(opts.DBPath)
	} else {
		db, err = storage.NewDBClient()
	}
	if err != nil {
		return nil, err
	}

	if opts.ModelDir == "" {
		opts.ModelDir = os.Getenv("WAVESCRIBE_MODEL_DIR")
	}
	if opts.TempDir == "" {
		opts.TempDir = filepath.Join(os.TempDir(), "wavescribe")
	}

	engine := classify.NewEngine(classify.DefaultEngineConfig(opts.ModelDir))

	return &AnalysisService{
		db:       db,
		analyzer: analysis.NewAnalyzer(analysis.DefaultConfig(), engine),
		log:      logger.GetLogger(),
		tempDir:  opts.TempDir,
	}, nil
}

func (s *AnalysisService) Close() error {
	return s.db.Close()
}

// AnalyzeFile decodes, analyzes, and persists one audio file. Formats the
// native decoders cover are read in-process; anything else goes through an
// ffmpeg conversion to mono WAV first.
func (s *AnalysisService) AnalyzeFile(ctx context.Context, path string, req analysis.Request) (string, *analysis.FullAnalysisResult, error) {
	s.log.Infof("Analyzing file: %s", path)

	sig, err := s.decode(ctx, path)
	if err != nil {
		return "", nil, err
	}

	result, err := s.analyzer.Analyze(ctx, sig, req)
	if err != nil {
		return "", nil, fmt.Errorf("analysis failed: %w", err)
	}

	id, err := s.persist(filepath.Base(path), "upload", result)
	if err != nil {
		// The analysis itself succeeded; surface it even if persistence
		// did not.
		s.log.Warnf("Failed to persist analysis: %v", err)
		return "", result, nil
	}

	s.log.Infof("Analysis complete: id=%s duration=%.1fs", id, result.Duration)
	return id, result, nil
}

// AnalyzeYouTube downloads a video's audio track, converts it, and runs the
// requested analysis set.
func (s *AnalysisService) AnalyzeYouTube(ctx context.Context, url string, req analysis.Request) (string, *analysis.FullAnalysisResult, error) {
	s.log.Infof("Analyzing YouTube source: %s", url)

	downloaded, meta, err := audio.DownloadYouTubeAudio(ctx, url, s.tempDir)
	if err != nil {
		return "", nil, fmt.Errorf("youtube download failed: %w", err)
	}
	defer utils.DeleteFile(downloaded)

	sig, err := s.decode(ctx, downloaded)
	if err != nil {
		return "", nil, err
	}

	result, err := s.analyzer.Analyze(ctx, sig, req)
	if err != nil {
		return "", nil, fmt.Errorf("analysis failed: %w", err)
	}

	name := meta.Title
	if name == "" {
		name = meta.ID
	}
	id, err := s.persist(name, "youtube", result)
	if err != nil {
		s.log.Warnf("Failed to persist analysis: %v", err)
		return "", result, nil
	}

	s.log.Infof("Analysis complete: id=%s title=%q", id, meta.Title)
	return id, result, nil
}

// decode reads a file into a mono signal at the analysis rate, falling back
// to ffmpeg for formats without a native decoder.
func (s *AnalysisService) decode(ctx context.Context, path string) (*audio.Signal, error) {
	sig, err := audio.DecodeFile(path)
	if err == nil {
		return sig, nil
	}
	if !errors.Is(err, audio.ErrUnsupportedFormat) {
		return nil, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}

	s.log.Debugf("No native decoder for %s, converting with ffmpeg", filepath.Ext(path))
	wavPath, err := audio.ConvertToMonoWAV(ctx, path, s.tempDir, audio.ConvertWAVConfig{
		SampleRate: audio.AnalysisRate,
	})
	if err != nil {
		return nil, fmt.Errorf("audio conversion failed: %w", err)
	}
	defer utils.DeleteFile(wavPath)

	return audio.DecodeFile(wavPath)
}

// persist stores a completed analysis, summarizing the headline fields into
// queryable columns.
func (s *AnalysisService) persist(filename, source string, result *analysis.FullAnalysisResult) (string, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("serializing result: %w", err)
	}

	record := &storage.Analysis{
		Filename:    filename,
		Source:      source,
		DurationSec: result.Duration,
		Result:      string(payload),
	}
	if result.Rhythm != nil {
		record.BPM = result.Rhythm.BPM
	}
	if result.Tonal != nil {
		record.Key = result.Tonal.Key
		record.Scale = result.Tonal.Scale
	}
	if result.Structure != nil {
		record.SectionCount = len(result.Structure.Sections)
	}

	return s.db.SaveAnalysis(record)
}

// ListAnalyses returns stored analyses, newest first.
func (s *AnalysisService) ListAnalyses(limit int) ([]storage.Analysis, error) {
	return s.db.ListAnalyses(limit)
}

// GetAnalysis returns one stored analysis with its full result re-parsed.
func (s *AnalysisService) GetAnalysis(id string) (*storage.Analysis, *analysis.FullAnalysisResult, error) {
	record, err := s.db.GetAnalysis(id)
	if err != nil {
		return nil, nil, err
	}

	var result analysis.FullAnalysisResult
	if err := json.Unmarshal([]byte(record.Result), &result); err != nil {
		return nil, nil, fmt.Errorf("parsing stored result: %w", err)
	}
	return record, &result, nil
}

// DeleteAnalysis removes one stored analysis.
func (s *AnalysisService) DeleteAnalysis(id string) error {
	return s.db.DeleteAnalysis(id)
}
