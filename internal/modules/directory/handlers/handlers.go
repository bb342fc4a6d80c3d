// Package handlers provides HTTP handlers for fund search.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/aristath/fundnav/internal/domain"
	"github.com/rs/zerolog"
)

// Searcher finds funds by code, name or pinyin
type Searcher interface {
	Search(ctx context.Context, key string) ([]domain.FundInfo, error)
}

// Handler handles fund search HTTP requests
type Handler struct {
	searcher Searcher
	log      zerolog.Logger
}

// NewHandler creates a new search handler
func NewHandler(searcher Searcher, log zerolog.Logger) *Handler {
	return &Handler{
		searcher: searcher,
		log:      log.With().Str("handler", "directory").Logger(),
	}
}

// HandleSearch handles GET /api/search?key=
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(r.URL.Query().Get("key"))
	if key == "" {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "key is required"})
		return
	}

	results, err := h.searcher.Search(r.Context(), key)
	if err != nil {
		h.log.Warn().Err(err).Str("key", key).Msg("Search failed")
		results = []domain.FundInfo{}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": results,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
			"count":     len(results),
		},
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
