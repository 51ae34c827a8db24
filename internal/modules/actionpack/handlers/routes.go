package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers insight and action pack routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/insights", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Get("/top", h.HandleTop)
		r.Post("/filter", h.HandleFilter)
		r.Post("/action-pack", h.HandleBuild)
	})
}
