package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers What-If routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/whatif", func(r chi.Router) {
		r.Get("/metrics", h.HandleGetMetrics)
		r.Post("/", h.HandleSimulate)
	})
}
