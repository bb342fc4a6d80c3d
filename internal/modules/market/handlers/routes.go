package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all market overview routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/market", h.HandleGetMarket)
}
