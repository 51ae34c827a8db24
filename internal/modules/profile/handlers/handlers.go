// Package handlers provides HTTP handlers for profiles and per-profile preferences.
package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/aristath/wellness/internal/domain"
	"github.com/aristath/wellness/internal/events"
	"github.com/aristath/wellness/internal/modules/profile"
	"github.com/aristath/wellness/internal/utils"
)

// Handler provides HTTP handlers for profile endpoints
type Handler struct {
	store        *profile.Store
	eventManager *events.Manager
	log          zerolog.Logger
}

// NewHandler creates a new profile handler
func NewHandler(store *profile.Store, eventManager *events.Manager, log zerolog.Logger) *Handler {
	return &Handler{
		store:        store,
		eventManager: eventManager,
		log:          log.With().Str("handler", "profile").Logger(),
	}
}

type profilesResponse struct {
	Profiles []profile.Profile `json:"profiles"`
	ActiveID string            `json:"activeId"`
}

type createProfileRequest struct {
	Name string `json:"name"`
}

type setActiveRequest struct {
	ID string `json:"id"`
}

type purgeResponse struct {
	ProfileID   string `json:"profileId"`
	KeysRemoved int    `json:"keysRemoved"`
}

func (h *Handler) activeID(w http.ResponseWriter) (string, bool) {
	pid, err := h.store.ActiveProfileID()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to resolve active profile")
		http.Error(w, "Failed to resolve active profile", http.StatusInternalServerError)
		return "", false
	}
	return pid, true
}

func (h *Handler) emit(eventType events.EventType, profileID string) {
	h.eventManager.Emit(eventType, "profile", map[string]interface{}{
		"profile_id": profileID,
	})
}

// getter serves a per-profile document for the active profile.
func getter[T any](h *Handler, load func(string) T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pid, ok := h.activeID(w)
		if !ok {
			return
		}
		utils.WriteJSON(w, h.log, http.StatusOK, load(pid))
	}
}

// putter decodes the body over base, saves it for the active profile and
// echoes the stored value.
func putter[T any](h *Handler, what string, eventType events.EventType, base, load func(string) T, save func(string, T) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pid, ok := h.activeID(w)
		if !ok {
			return
		}

		v := base(pid)
		if err := utils.DecodeJSON(w, r, &v); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := save(pid, v); err != nil {
			h.log.Error().Err(err).Str("profile_id", pid).Msgf("Failed to save %s", what)
			http.Error(w, "Failed to save "+what, http.StatusInternalServerError)
			return
		}

		if eventType != "" {
			h.emit(eventType, pid)
		}
		h.log.Info().Str("profile_id", pid).Msgf("Updated %s", what)
		utils.WriteJSON(w, h.log, http.StatusOK, load(pid))
	}
}

// HandleGetProfiles handles GET /api/profiles
func (h *Handler) HandleGetProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.store.Profiles()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load profiles")
		http.Error(w, "Failed to load profiles", http.StatusInternalServerError)
		return
	}
	pid, ok := h.activeID(w)
	if !ok {
		return
	}
	utils.WriteJSON(w, h.log, http.StatusOK, profilesResponse{Profiles: profiles, ActiveID: pid})
}

// HandleCreateProfile handles POST /api/profiles
func (h *Handler) HandleCreateProfile(w http.ResponseWriter, r *http.Request) {
	var req createProfileRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	p, err := h.store.CreateProfile(req.Name)
	if err != nil {
		if errors.Is(err, profile.ErrEmptyName) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.log.Error().Err(err).Msg("Failed to create profile")
		http.Error(w, "Failed to create profile", http.StatusInternalServerError)
		return
	}

	h.eventManager.EmitTyped("profile", &events.ProfileChangedData{ProfileID: p.ID})
	utils.WriteJSON(w, h.log, http.StatusCreated, p)
}

// HandleSetActive handles PUT /api/profiles/active
func (h *Handler) HandleSetActive(w http.ResponseWriter, r *http.Request) {
	var req setActiveRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.store.SetActiveProfile(req.ID); err != nil {
		if errors.Is(err, profile.ErrUnknownProfile) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.log.Error().Err(err).Msg("Failed to switch profile")
		http.Error(w, "Failed to switch profile", http.StatusInternalServerError)
		return
	}

	h.eventManager.EmitTyped("profile", &events.ProfileChangedData{ProfileID: req.ID})
	utils.WriteJSON(w, h.log, http.StatusOK, setActiveRequest{ID: req.ID})
}

// HandlePurge handles POST /api/profile/purge
func (h *Handler) HandlePurge(w http.ResponseWriter, r *http.Request) {
	pid, ok := h.activeID(w)
	if !ok {
		return
	}

	removed, err := h.store.Purge(pid)
	if err != nil {
		h.log.Error().Err(err).Str("profile_id", pid).Msg("Failed to purge profile data")
		http.Error(w, "Failed to purge profile data", http.StatusInternalServerError)
		return
	}

	h.eventManager.EmitTyped("profile", &events.ProfilePurgedData{ProfileID: pid, KeysRemoved: removed})
	utils.WriteJSON(w, h.log, http.StatusOK, purgeResponse{ProfileID: pid, KeysRemoved: removed})
}

// HandleGetPermissions handles GET /api/profile/permissions
func (h *Handler) HandleGetPermissions(w http.ResponseWriter, r *http.Request) {
	getter[domain.Permissions](h, h.store.Permissions)(w, r)
}

// HandleUpdatePermissions handles PUT /api/profile/permissions
func (h *Handler) HandleUpdatePermissions(w http.ResponseWriter, r *http.Request) {
	putter(h, "permissions", events.PermissionsChanged, h.store.Permissions, h.store.Permissions, h.store.SavePermissions)(w, r)
}

// HandleGetGoals handles GET /api/profile/goals
func (h *Handler) HandleGetGoals(w http.ResponseWriter, r *http.Request) {
	getter[domain.Goals](h, h.store.Goals)(w, r)
}

// HandleUpdateGoals handles PUT /api/profile/goals. Goals are replaced
// wholesale so an omitted target clears it.
func (h *Handler) HandleUpdateGoals(w http.ResponseWriter, r *http.Request) {
	empty := func(string) domain.Goals { return domain.Goals{} }
	putter(h, "goals", events.GoalsChanged, empty, h.store.Goals, h.store.SaveGoals)(w, r)
}

// HandleGetSettings handles GET /api/profile/settings
func (h *Handler) HandleGetSettings(w http.ResponseWriter, r *http.Request) {
	getter[profile.Settings](h, h.store.Settings)(w, r)
}

// HandleUpdateSettings handles PUT /api/profile/settings
func (h *Handler) HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	putter(h, "settings", events.SettingsChanged, h.store.Settings, h.store.Settings, h.store.SaveSettings)(w, r)
}

// HandleGetSimulator handles GET /api/profile/simulator
func (h *Handler) HandleGetSimulator(w http.ResponseWriter, r *http.Request) {
	getter[profile.SimulatorPrefs](h, h.store.SimulatorPrefs)(w, r)
}

// HandleUpdateSimulator handles PUT /api/profile/simulator
func (h *Handler) HandleUpdateSimulator(w http.ResponseWriter, r *http.Request) {
	putter(h, "simulator preferences", "", h.store.SimulatorPrefs, h.store.SimulatorPrefs, h.store.SaveSimulatorPrefs)(w, r)
}
