package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wavescribe/WaveScribe/internal/audio"
	"github.com/wavescribe/WaveScribe/internal/service"
	"github.com/wavescribe/WaveScribe/internal/storage"
	"github.com/wavescribe/WaveScribe/pkg/logger"
)

// Server encapsulates the HTTP server and its dependencies
type Server struct {
	service *service.AnalysisService
	config  *ServerConfig
	log     *logger.Logger
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	DBPath         string
	TempDir        string
	ModelDir       string
	AllowedOrigins []string
	APIKeys        []string
}

// NewServer creates a new server instance
func NewServer(svc *service.AnalysisService, config *ServerConfig) *Server {
	return &Server{
		service: svc,
		config:  config,
		log:     logger.GetLogger(),
	}
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Errorf("Failed to encode JSON response: %v", err)
	}
}

// respondError writes an error response
func (s *Server) respondError(w http.ResponseWriter, statusCode int, message string) {
	s.respondJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	})
}

// handleRoot handles GET /
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"service": "WaveScribe API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"health":          "GET /health",
			"analyzeRhythm":   "POST /api/analyze/rhythm",
			"analyzeStruct":   "POST /api/analyze/structure",
			"analyzeClassify": "POST /api/analyze/classification",
			"analyzeTonal":    "POST /api/analyze/tonal",
			"analyzeFull":     "POST /api/analyze/full",
			"analyzeYouTube":  "POST /api/analyze/youtube",
			"listAnalyses":    "GET /api/analyses",
			"getAnalysis":     "GET /api/analyses/{id}",
			"deleteAnalysis":  "DELETE /api/analyses/{id}",
		},
	})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handleAnalyze handles POST /api/analyze/{component} (multipart file upload)
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Only POST is supported")
		return
	}

	component := strings.TrimPrefix(r.URL.Path, "/api/analyze/")
	req, ok := requestForComponent(component)
	if !ok {
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("Unknown analysis component %q", component))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		s.log.Errorf("Failed to parse form: %v", err)
		s.respondError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	tempFile := filepath.Join(s.config.TempDir, fmt.Sprintf("upload_%d_%s", time.Now().UnixNano(), filepath.Base(header.Filename)))
	if err := os.MkdirAll(s.config.TempDir, 0o755); err != nil {
		s.log.Errorf("Failed to create temp dir: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to process upload")
		return
	}
	out, err := os.Create(tempFile)
	if err != nil {
		s.log.Errorf("Failed to create temp file: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to process upload")
		return
	}
	defer out.Close()
	defer os.Remove(tempFile)

	if _, err := io.Copy(out, file); err != nil {
		s.log.Errorf("Failed to save file: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to save uploaded file")
		return
	}
	out.Close()

	id, result, err := s.service.AnalyzeFile(ctx, tempFile, req)
	if err != nil {
		s.respondAnalysisError(w, header.Filename, err)
		return
	}

	s.respondJSON(w, http.StatusOK, AnalyzeResponse{
		ID:       id,
		Filename: header.Filename,
		Result:   result,
	})
}

// handleAnalyzeYouTube handles POST /api/analyze/youtube
func (s *Server) handleAnalyzeYouTube(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Only POST is supported")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	var req AnalyzeYouTubeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, result, err := s.service.AnalyzeYouTube(ctx, req.YouTubeURL, req.Request())
	if err != nil {
		s.respondAnalysisError(w, req.YouTubeURL, err)
		return
	}

	s.respondJSON(w, http.StatusOK, AnalyzeResponse{
		ID:     id,
		Result: result,
	})
}

// respondAnalysisError maps pipeline failures to status codes: bad input is
// the client's fault, everything else is ours.
func (s *Server) respondAnalysisError(w http.ResponseWriter, source string, err error) {
	s.log.Errorf("Analysis of %s failed: %v", source, err)
	switch {
	case errors.Is(err, audio.ErrEmptySignal),
		errors.Is(err, audio.ErrUnsupportedFormat),
		errors.Is(err, audio.ErrInvalidSampleRate):
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("Could not decode audio: %v", err))
	default:
		s.respondError(w, http.StatusInternalServerError, fmt.Sprintf("Analysis failed: %v", err))
	}
}

// handleListAnalyses handles GET /api/analyses
func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Only GET is supported")
		return
	}

	records, err := s.service.ListAnalyses(0)
	if err != nil {
		s.log.Errorf("Failed to list analyses: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to retrieve analyses")
		return
	}

	dtos := make([]AnalysisSummaryDTO, len(records))
	for i, rec := range records {
		dtos[i] = summaryDTO(rec)
	}
	s.respondJSON(w, http.StatusOK, ListAnalysesResponse{Analyses: dtos, Count: len(dtos)})
}

// handleAnalysis handles GET and DELETE /api/analyses/{id}
func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/analyses/")
	if id == "" || strings.Contains(id, "/") {
		s.respondError(w, http.StatusNotFound, "Invalid analysis ID")
		return
	}

	switch r.Method {
	case http.MethodGet:
		record, result, err := s.service.GetAnalysis(id)
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, fmt.Sprintf("Analysis %s not found", id))
			return
		}
		if err != nil {
			s.log.Errorf("Failed to get analysis %s: %v", id, err)
			s.respondError(w, http.StatusInternalServerError, "Failed to retrieve analysis")
			return
		}
		s.respondJSON(w, http.StatusOK, GetAnalysisResponse{
			AnalysisSummaryDTO: summaryDTO(*record),
			Result:             result,
		})

	case http.MethodDelete:
		err := s.service.DeleteAnalysis(id)
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, fmt.Sprintf("Analysis %s not found", id))
			return
		}
		if err != nil {
			s.log.Errorf("Failed to delete analysis %s: %v", id, err)
			s.respondError(w, http.StatusInternalServerError, "Failed to delete analysis")
			return
		}
		s.respondJSON(w, http.StatusOK, DeleteAnalysisResponse{
			Message: "Analysis deleted successfully",
			ID:      id,
		})

	default:
		s.respondError(w, http.StatusMethodNotAllowed, "Only GET and DELETE are supported")
	}
}

func summaryDTO(rec storage.Analysis) AnalysisSummaryDTO {
	return AnalysisSummaryDTO{
		ID:           rec.ID,
		Filename:     rec.Filename,
		Source:       rec.Source,
		DurationSec:  rec.DurationSec,
		BPM:          rec.BPM,
		Key:          rec.Key,
		Scale:        rec.Scale,
		SectionCount: rec.SectionCount,
		CreatedAt:    rec.CreatedAt,
	}
}
