// Package handlers provides HTTP handlers for fund holdings.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/aristath/fundnav/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles holdings HTTP requests
type Handler struct {
	provider domain.HoldingsProvider
	log      zerolog.Logger
}

// NewHandler creates a new holdings handler
func NewHandler(provider domain.HoldingsProvider, log zerolog.Logger) *Handler {
	return &Handler{
		provider: provider,
		log:      log.With().Str("handler", "holdings").Logger(),
	}
}

// HandleGetFund handles GET /api/fund/{code}
// Returns the latest disclosed top holdings. An unavailable upstream yields an empty list.
func (h *Handler) HandleGetFund(w http.ResponseWriter, r *http.Request) {
	code, err := domain.ParseFundID(chi.URLParam(r, "code"))
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	snapshot, err := h.provider.Get(r.Context(), code)
	if err != nil {
		h.log.Debug().Err(err).Str("fund", string(code)).Msg("Holdings unavailable")
		snapshot = &domain.HoldingsSnapshot{FundID: code}
	}
	if snapshot.Entries == nil {
		snapshot.Entries = []domain.HoldingEntry{}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"code":     code,
			"period":   snapshot.Period,
			"holdings": snapshot.Entries,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
			"available": err == nil,
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
