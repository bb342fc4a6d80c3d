// Package handlers provides HTTP handlers for market session operations.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/aristath/fundnav/internal/modules/market_hours"
	"github.com/rs/zerolog"
)

// Handler handles market session HTTP requests
type Handler struct {
	clock *market_hours.MarketClock
	now   func() time.Time
	log   zerolog.Logger
}

// NewHandler creates a new market session handler
func NewHandler(
	clock *market_hours.MarketClock,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		clock: clock,
		now:   time.Now,
		log:   log.With().Str("handler", "market_hours").Logger(),
	}
}

// HandleGetStatus handles GET /api/market-hours/status
// Returns the current session phase of the exchange
func (h *Handler) HandleGetStatus(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	status := h.clock.Status(now)

	response := map[string]interface{}{
		"data": status,
		"metadata": map[string]interface{}{
			"timestamp":       now.Format(time.RFC3339),
			"session_started": status.Phase.SessionStarted(),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
