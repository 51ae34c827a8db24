package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers profile routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/profiles", func(r chi.Router) {
		r.Get("/", h.HandleGetProfiles)
		r.Post("/", h.HandleCreateProfile)
		r.Put("/active", h.HandleSetActive)
	})

	r.Route("/profile", func(r chi.Router) {
		r.Get("/permissions", h.HandleGetPermissions)
		r.Put("/permissions", h.HandleUpdatePermissions)
		r.Get("/goals", h.HandleGetGoals)
		r.Put("/goals", h.HandleUpdateGoals)
		r.Get("/settings", h.HandleGetSettings)
		r.Put("/settings", h.HandleUpdateSettings)
		r.Get("/simulator", h.HandleGetSimulator)
		r.Put("/simulator", h.HandleUpdateSimulator)
		r.Post("/purge", h.HandlePurge)
	})
}
