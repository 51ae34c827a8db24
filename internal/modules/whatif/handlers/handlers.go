// Package handlers provides HTTP handlers for the What-If simulator.
package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/aristath/wellness/internal/domain"
	"github.com/aristath/wellness/internal/modules/profile"
	"github.com/aristath/wellness/internal/modules/whatif"
	"github.com/aristath/wellness/internal/utils"
)

// ProfileProvider resolves the active profile, its permissions and its
// remembered simulator configuration.
type ProfileProvider interface {
	ActiveProfileID() (string, error)
	Permissions(profileID string) domain.Permissions
	SimulatorPrefs(profileID string) profile.SimulatorPrefs
	SaveSimulatorPrefs(profileID string, prefs profile.SimulatorPrefs) error
}

// Handler provides HTTP handlers for What-If endpoints
type Handler struct {
	service   *whatif.Service
	source    domain.Source
	profiles  ProfileProvider
	rangeDays int
	log       zerolog.Logger
}

// NewHandler creates a new What-If handler
func NewHandler(service *whatif.Service, source domain.Source, profiles ProfileProvider, rangeDays int, log zerolog.Logger) *Handler {
	return &Handler{
		service:   service,
		source:    source,
		profiles:  profiles,
		rangeDays: rangeDays,
		log:       log.With().Str("handler", "whatif").Logger(),
	}
}

// SimulateRequest is the body of POST /api/whatif. Omitted fields fall back
// to the profile's last configuration.
type SimulateRequest struct {
	X            *domain.MetricKey `json:"x,omitempty"`
	Y            *domain.MetricKey `json:"y,omitempty"`
	LagDays      *int              `json:"lagDays,omitempty"`
	Scenario     *float64          `json:"scenario,omitempty"`
	BaselineDays *int              `json:"baselineDays,omitempty"`
}

// SimulateResponse echoes the resolved request next to the result.
type SimulateResponse struct {
	Request whatif.Request `json:"request"`
	Result  whatif.Result  `json:"result"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (r SimulateRequest) merge(prefs profile.SimulatorPrefs) whatif.Request {
	req := whatif.Request{
		X:            prefs.X,
		Y:            prefs.Y,
		LagDays:      prefs.Lag,
		Scenario:     prefs.Scenario,
		BaselineDays: prefs.BaselineDays,
	}
	if r.X != nil {
		req.X = *r.X
	}
	if r.Y != nil {
		req.Y = *r.Y
	}
	if r.LagDays != nil {
		req.LagDays = *r.LagDays
	}
	if r.Scenario != nil {
		req.Scenario = *r.Scenario
	}
	if r.BaselineDays != nil {
		req.BaselineDays = *r.BaselineDays
	}
	return req
}

// HandleGetMetrics handles GET /api/whatif/metrics
func (h *Handler) HandleGetMetrics(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, h.log, http.StatusOK, map[string]interface{}{
		"metrics": whatif.Catalog,
	})
}

// HandleSimulate handles POST /api/whatif
func (h *Handler) HandleSimulate(w http.ResponseWriter, r *http.Request) {
	var body SimulateRequest
	if err := utils.DecodeJSON(w, r, &body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	pid, err := h.profiles.ActiveProfileID()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to resolve active profile")
		http.Error(w, "Failed to resolve active profile", http.StatusInternalServerError)
		return
	}
	req := body.merge(h.profiles.SimulatorPrefs(pid))

	rangeDays := h.rangeDays
	if req.BaselineDays > rangeDays {
		rangeDays = min(req.BaselineDays+1, utils.MaxRangeDays)
	}
	series, err := h.source.TimeSeries(r.Context(), rangeDays)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to fetch time series")
		http.Error(w, "Failed to fetch time series", http.StatusBadGateway)
		return
	}

	res, err := h.service.Simulate(series, h.profiles.Permissions(pid), req)
	if err != nil {
		if errors.Is(err, whatif.ErrUnknownMetric) {
			utils.WriteJSON(w, h.log, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		h.log.Error().Err(err).Msg("Failed to run simulation")
		http.Error(w, "Failed to run simulation", http.StatusInternalServerError)
		return
	}

	prefs := profile.SimulatorPrefs{
		X:            req.X,
		Y:            req.Y,
		Lag:          req.LagDays,
		Scenario:     req.Scenario,
		BaselineDays: req.BaselineDays,
	}
	if err := h.profiles.SaveSimulatorPrefs(pid, prefs); err != nil {
		h.log.Warn().Err(err).Str("profile_id", pid).Msg("Failed to save simulator preferences")
	}

	utils.WriteJSON(w, h.log, http.StatusOK, SimulateResponse{Request: req, Result: res})
}
