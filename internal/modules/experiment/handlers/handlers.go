// Package handlers provides HTTP handlers for the experiment lifecycle.
package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/aristath/wellness/internal/domain"
	"github.com/aristath/wellness/internal/modules/actionpack"
	"github.com/aristath/wellness/internal/modules/experiment"
	"github.com/aristath/wellness/internal/utils"
)

// ProfileProvider resolves the active profile and its gates.
type ProfileProvider interface {
	ActiveProfileID() (string, error)
	Permissions(profileID string) domain.Permissions
	Goals(profileID string) domain.Goals
}

// State names for GET /api/experiment
const (
	StateSuggested = "suggested"
	StateActive    = "active"
)

// Handler provides HTTP handlers for experiment endpoints
type Handler struct {
	service   *experiment.Service
	synth     *actionpack.Synthesizer
	source    domain.Source
	profiles  ProfileProvider
	rangeDays int
	log       zerolog.Logger
}

// NewHandler creates a new experiment handler
func NewHandler(service *experiment.Service, synth *actionpack.Synthesizer, source domain.Source, profiles ProfileProvider, rangeDays int, log zerolog.Logger) *Handler {
	return &Handler{
		service:   service,
		synth:     synth,
		source:    source,
		profiles:  profiles,
		rangeDays: rangeDays,
		log:       log.With().Str("handler", "experiment").Logger(),
	}
}

// StateResponse describes the profile's experiment state.
type StateResponse struct {
	State      string                       `json:"state"`
	Experiment *experiment.ActiveExperiment `json:"experiment,omitempty"`
	Suggestion *Suggestion                  `json:"suggestion,omitempty"`
}

// Suggestion is the experiment that would start from the current top action pack.
type Suggestion struct {
	Kind         experiment.Kind        `json:"kind"`
	Label        string                 `json:"label"`
	DurationDays int                    `json:"durationDays"`
	ActionPack   *actionpack.ActionPack `json:"actionPack"`
}

// StartRequest is the body of POST /api/experiment/start
type StartRequest struct {
	BaselineDays int                    `json:"baselineDays"`
	ActionPack   *actionpack.ActionPack `json:"actionPack,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// seriesRange covers the experiment's baseline plus its duration.
func (h *Handler) seriesRange(baselineDays, durationDays int) int {
	n := baselineDays + durationDays
	if n < h.rangeDays {
		n = h.rangeDays
	}
	if n > utils.MaxRangeDays {
		n = utils.MaxRangeDays
	}
	return n
}

func (h *Handler) profileID(w http.ResponseWriter) (string, bool) {
	pid, err := h.profiles.ActiveProfileID()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to resolve active profile")
		http.Error(w, "Failed to resolve active profile", http.StatusInternalServerError)
		return "", false
	}
	return pid, true
}

// topPack builds the pack for the current top insight, nil when none survive the filter.
func (h *Handler) topPack(r *http.Request, perms domain.Permissions) (*actionpack.ActionPack, error) {
	insights, err := h.source.Insights(r.Context(), h.rangeDays)
	if err != nil {
		return nil, err
	}
	_, pack := h.synth.Top(insights, perms)
	return pack, nil
}

// HandleGetState handles GET /api/experiment
func (h *Handler) HandleGetState(w http.ResponseWriter, r *http.Request) {
	pid, ok := h.profileID(w)
	if !ok {
		return
	}

	if exp := h.service.Active(pid); exp != nil {
		utils.WriteJSON(w, h.log, http.StatusOK, StateResponse{State: StateActive, Experiment: exp})
		return
	}

	pack, err := h.topPack(r, h.profiles.Permissions(pid))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to fetch insights")
		http.Error(w, "Failed to fetch insights", http.StatusBadGateway)
		return
	}

	kind := experiment.InferKind(pack)
	duration := experiment.DurationOptions[0]
	if pack != nil {
		duration = experiment.ParseTryDays(pack.TimeWindowLabel)
	}
	utils.WriteJSON(w, h.log, http.StatusOK, StateResponse{
		State: StateSuggested,
		Suggestion: &Suggestion{
			Kind:         kind,
			Label:        experiment.LabelForKind(kind),
			DurationDays: duration,
			ActionPack:   pack,
		},
	})
}

// HandleStart handles POST /api/experiment/start
func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.BaselineDays == 0 {
		req.BaselineDays = experiment.BaselineOptions[0]
	}
	if !experiment.ValidBaseline(req.BaselineDays) {
		utils.WriteJSON(w, h.log, http.StatusBadRequest, errorResponse{Error: experiment.ErrInvalidBaseline.Error()})
		return
	}

	pid, ok := h.profileID(w)
	if !ok {
		return
	}

	pack := req.ActionPack
	if pack == nil {
		var err error
		if pack, err = h.topPack(r, h.profiles.Permissions(pid)); err != nil {
			h.log.Error().Err(err).Msg("Failed to fetch insights")
			http.Error(w, "Failed to fetch insights", http.StatusBadGateway)
			return
		}
	}

	series, err := h.source.TimeSeries(r.Context(), h.seriesRange(req.BaselineDays, experiment.DurationOptions[len(experiment.DurationOptions)-1]))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to fetch time series")
		http.Error(w, "Failed to fetch time series", http.StatusBadGateway)
		return
	}

	exp, err := h.service.Start(pid, series, pack, req.BaselineDays)
	if err != nil {
		if errors.Is(err, experiment.ErrEmptySeries) || errors.Is(err, experiment.ErrInvalidBaseline) {
			utils.WriteJSON(w, h.log, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		h.log.Error().Err(err).Msg("Failed to start experiment")
		http.Error(w, "Failed to start experiment", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, h.log, http.StatusCreated, StateResponse{State: StateActive, Experiment: exp})
}

// HandleReset handles DELETE /api/experiment
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	pid, ok := h.profileID(w)
	if !ok {
		return
	}
	if err := h.service.Reset(pid); err != nil {
		h.log.Error().Err(err).Msg("Failed to reset experiment")
		http.Error(w, "Failed to reset experiment", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleGetResult handles GET /api/experiment/result
func (h *Handler) HandleGetResult(w http.ResponseWriter, r *http.Request) {
	pid, ok := h.profileID(w)
	if !ok {
		return
	}

	exp := h.service.Active(pid)
	if exp == nil {
		utils.WriteJSON(w, h.log, http.StatusConflict, errorResponse{Error: experiment.ErrNoActiveExperiment.Error()})
		return
	}

	series, err := h.source.TimeSeries(r.Context(), h.seriesRange(exp.BaselineDays, exp.DurationDays))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to fetch time series")
		http.Error(w, "Failed to fetch time series", http.StatusBadGateway)
		return
	}

	eval, err := h.service.Evaluate(pid, series, h.profiles.Permissions(pid), h.profiles.Goals(pid))
	if err != nil {
		if errors.Is(err, experiment.ErrNoActiveExperiment) {
			utils.WriteJSON(w, h.log, http.StatusConflict, errorResponse{Error: err.Error()})
			return
		}
		h.log.Error().Err(err).Msg("Failed to evaluate experiment")
		http.Error(w, "Failed to evaluate experiment", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, h.log, http.StatusOK, eval)
}
