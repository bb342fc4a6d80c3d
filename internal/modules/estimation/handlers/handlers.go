// Package handlers provides HTTP handlers for fund estimates.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/aristath/fundnav/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// MaxBatchSize caps the codes accepted by one batch request
const MaxBatchSize = 200

// Estimator produces one snapshot
type Estimator interface {
	Estimate(ctx context.Context, id domain.FundID) domain.EstimateSnapshot
}

// Batcher produces snapshots for many funds in request order
type Batcher interface {
	Run(ctx context.Context, ids []domain.FundID) []domain.EstimateSnapshot
}

// Handler handles estimate HTTP requests
type Handler struct {
	estimator Estimator
	batcher   Batcher
	log       zerolog.Logger
}

// NewHandler creates a new estimate handler
func NewHandler(estimator Estimator, batcher Batcher, log zerolog.Logger) *Handler {
	return &Handler{
		estimator: estimator,
		batcher:   batcher,
		log:       log.With().Str("handler", "estimation").Logger(),
	}
}

type batchRequest struct {
	Codes []string `json:"codes"`
}

// HandleBatch handles POST /api/estimate/batch
// Body: {"codes": ["161725", "110011"]}. Response order matches request order.
func (h *Handler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if len(req.Codes) > MaxBatchSize {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "too many codes"})
		return
	}

	ids := make([]domain.FundID, 0, len(req.Codes))
	for _, c := range req.Codes {
		if strings.TrimSpace(c) == "" {
			continue
		}
		id, err := domain.ParseFundID(c)
		if err != nil {
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		ids = append(ids, id)
	}

	start := time.Now()
	results := h.batcher.Run(r.Context(), ids)

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": results,
		"metadata": map[string]interface{}{
			"timestamp":  time.Now().Format(time.RFC3339),
			"count":      len(results),
			"elapsed_ms": time.Since(start).Milliseconds(),
		},
	})
}

// HandleGetEstimate handles GET /api/estimate/{code}
func (h *Handler) HandleGetEstimate(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseFundID(chi.URLParam(r, "code"))
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	snapshot := h.estimator.Estimate(r.Context(), id)

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": snapshot,
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
