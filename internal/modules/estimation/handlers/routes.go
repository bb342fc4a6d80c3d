package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all estimate routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/estimate", func(r chi.Router) {
		r.Post("/batch", h.HandleBatch)
		r.Get("/{code}", h.HandleGetEstimate)
	})
}
