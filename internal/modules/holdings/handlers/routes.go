package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all holdings routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/fund/{code}", h.HandleGetFund)
}
