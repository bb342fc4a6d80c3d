// Package handlers provides HTTP handlers for NAV history.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/aristath/fundnav/internal/domain"
	"github.com/aristath/fundnav/internal/modules/history"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// chartPoints is how many trailing points the chart endpoint returns
const chartPoints = 365

// Handler handles NAV history HTTP requests
type Handler struct {
	provider domain.HistoryProvider
	log      zerolog.Logger
}

// NewHandler creates a new history handler
func NewHandler(provider domain.HistoryProvider, log zerolog.Logger) *Handler {
	return &Handler{
		provider: provider,
		log:      log.With().Str("handler", "history").Logger(),
	}
}

type point struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// HandleGetHistory handles GET /api/history/{code}
func (h *Handler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	code, err := domain.ParseFundID(chi.URLParam(r, "code"))
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	points := []point{}
	series, err := h.provider.Series(r.Context(), code)
	if err != nil {
		h.log.Debug().Err(err).Str("fund", string(code)).Msg("History unavailable")
	}
	for _, p := range history.Tail(series, chartPoints) {
		points = append(points, point{Date: p.Date, Value: p.NAV.InexactFloat64()})
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": points,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
			"code":      code,
			"count":     len(points),
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
