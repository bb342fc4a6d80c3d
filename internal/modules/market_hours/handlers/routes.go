package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all market session routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/market-hours", func(r chi.Router) {
		r.Get("/status", h.HandleGetStatus)
	})
}
