package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/wavescribe/WaveScribe/internal/analysis"
)

// MaxUploadBytes caps multipart uploads (about 25 minutes of 320 kbps MP3).
const MaxUploadBytes = 100 << 20

// AnalyzeYouTubeRequest is the request body for POST /api/analyze/youtube
type AnalyzeYouTubeRequest struct {
	// YouTubeURL is the full YouTube video URL (required)
	YouTubeURL string `json:"youtube_url"`

	// Components selects the analyses to run; empty means all of them.
	Components []string `json:"components,omitempty"`
}

// Validate checks if the request is valid
func (r *AnalyzeYouTubeRequest) Validate() error {
	if r.YouTubeURL == "" {
		return fmt.Errorf("youtube_url is required")
	}
	if !strings.Contains(r.YouTubeURL, "youtube.com/") && !strings.Contains(r.YouTubeURL, "youtu.be/") {
		return fmt.Errorf("youtube_url does not look like a YouTube URL")
	}
	for _, c := range r.Components {
		if _, ok := requestForComponent(c); !ok {
			return fmt.Errorf("unknown component %q", c)
		}
	}
	return nil
}

// Request resolves the selected components into an analysis request.
func (r *AnalyzeYouTubeRequest) Request() analysis.Request {
	if len(r.Components) == 0 {
		return analysis.FullRequest()
	}
	var req analysis.Request
	for _, c := range r.Components {
		one, _ := requestForComponent(c)
		req.Rhythm = req.Rhythm || one.Rhythm
		req.Structure = req.Structure || one.Structure
		req.Classification = req.Classification || one.Classification
		req.Tonal = req.Tonal || one.Tonal
	}
	return req
}

// requestForComponent maps an endpoint/component name to an analysis request.
func requestForComponent(name string) (analysis.Request, bool) {
	switch name {
	case "rhythm":
		return analysis.Request{Rhythm: true}, true
	case "structure":
		return analysis.Request{Structure: true}, true
	case "classification":
		return analysis.Request{Classification: true}, true
	case "tonal":
		return analysis.Request{Tonal: true}, true
	case "full":
		return analysis.FullRequest(), true
	default:
		return analysis.Request{}, false
	}
}

// AnalyzeResponse is the response for a completed analysis.
type AnalyzeResponse struct {
	ID       string                       `json:"id,omitempty"`
	Filename string                       `json:"filename"`
	Result   *analysis.FullAnalysisResult `json:"result"`
}

// AnalysisSummaryDTO is one stored analysis in list responses.
type AnalysisSummaryDTO struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	Source       string    `json:"source"`
	DurationSec  float64   `json:"duration_sec"`
	BPM          float64   `json:"bpm"`
	Key          string    `json:"key"`
	Scale        string    `json:"scale"`
	SectionCount int       `json:"section_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// ListAnalysesResponse is the response for GET /api/analyses
type ListAnalysesResponse struct {
	Analyses []AnalysisSummaryDTO `json:"analyses"`
	Count    int                  `json:"count"`
}

// GetAnalysisResponse is the response for GET /api/analyses/{id}
type GetAnalysisResponse struct {
	AnalysisSummaryDTO
	Result *analysis.FullAnalysisResult `json:"result"`
}

// DeleteAnalysisResponse is the response for DELETE /api/analyses/{id}
type DeleteAnalysisResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}
