package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aristath/fundnav/internal/clients/gemini"
	"github.com/rs/zerolog"
)

// Analyzer answers free-form prompts
type Analyzer interface {
	Analyze(ctx context.Context, prompt string) (string, error)
}

// AnalyzeHandler handles prompt passthrough requests
type AnalyzeHandler struct {
	analyzer Analyzer
	log      zerolog.Logger
}

// NewAnalyzeHandler creates a new analyze handler
func NewAnalyzeHandler(analyzer Analyzer, log zerolog.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		analyzer: analyzer,
		log:      log.With().Str("handler", "analyze").Logger(),
	}
}

type analyzeRequest struct {
	Prompt string `json:"prompt"`
}

// HandleAnalyze handles POST /api/analyze
// Body: {"prompt": "..."}; response: {"text": "..."}
func (h *AnalyzeHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"}, h.log)
		return
	}

	text, err := h.analyzer.Analyze(r.Context(), req.Prompt)
	switch {
	case errors.Is(err, gemini.ErrEmptyPrompt):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "prompt is required"}, h.log)
		return
	case errors.Is(err, gemini.ErrNotConfigured):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "GEMINI_API_KEY is not set"}, h.log)
		return
	case err != nil:
		h.log.Error().Err(err).Msg("Analyze failed")
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "model unavailable"}, h.log)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"text": text}, h.log)
}
