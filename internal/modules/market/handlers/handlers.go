// Package handlers provides HTTP handlers for the market overview.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/aristath/fundnav/internal/modules/market"
	"github.com/rs/zerolog"
)

// Handler handles market overview HTTP requests
type Handler struct {
	service *market.Service
	log     zerolog.Logger
}

// NewHandler creates a new market overview handler
func NewHandler(service *market.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "market").Logger(),
	}
}

// HandleGetMarket handles GET /api/market?codes=1.000001,0.399001
func (h *Handler) HandleGetMarket(w http.ResponseWriter, r *http.Request) {
	overview := h.service.Overview(r.Context(), market.ParseCodes(r.URL.Query().Get("codes")))

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": overview,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
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
