package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers experiment routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/experiment", func(r chi.Router) {
		r.Get("/", h.HandleGetState)
		r.Delete("/", h.HandleReset)
		r.Post("/start", h.HandleStart)
		r.Get("/result", h.HandleGetResult)
	})
}
