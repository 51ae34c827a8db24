// Package handlers provides HTTP handlers for action pack synthesis.
package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/aristath/wellness/internal/domain"
	"github.com/aristath/wellness/internal/metrics"
	"github.com/aristath/wellness/internal/modules/actionpack"
	"github.com/aristath/wellness/internal/utils"
)

// PermissionsProvider resolves the active profile's permissions.
type PermissionsProvider interface {
	ActiveProfileID() (string, error)
	Permissions(profileID string) domain.Permissions
}

// Handler provides HTTP handlers for insight and action pack endpoints
type Handler struct {
	synth     *actionpack.Synthesizer
	source    domain.Source
	profiles  PermissionsProvider
	metrics   *metrics.Metrics
	rangeDays int
	log       zerolog.Logger
}

// NewHandler creates a new action pack handler
func NewHandler(synth *actionpack.Synthesizer, source domain.Source, profiles PermissionsProvider, m *metrics.Metrics, rangeDays int, log zerolog.Logger) *Handler {
	return &Handler{
		synth:     synth,
		source:    source,
		profiles:  profiles,
		metrics:   m,
		rangeDays: rangeDays,
		log:       log.With().Str("handler", "actionpack").Logger(),
	}
}

type topResponse struct {
	Insight    *domain.Insight        `json:"insight"`
	ActionPack *actionpack.ActionPack `json:"actionPack"`
}

type insightsRequest struct {
	Insights []domain.Insight `json:"insights"`
}

func (h *Handler) permissions() (domain.Permissions, error) {
	pid, err := h.profiles.ActiveProfileID()
	if err != nil {
		return domain.Permissions{}, err
	}
	return h.profiles.Permissions(pid), nil
}

func (h *Handler) record(pack actionpack.ActionPack) {
	tag := "none"
	if len(pack.Tags) > 0 {
		tag = pack.Tags[0]
	}
	h.metrics.ActionPacksBuilt.WithLabelValues(tag).Inc()
}

// HandleBuild handles POST /api/insights/action-pack
func (h *Handler) HandleBuild(w http.ResponseWriter, r *http.Request) {
	var insight domain.Insight
	if err := utils.DecodeJSON(w, r, &insight); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	pack := h.synth.Build(insight)
	h.record(pack)
	utils.WriteJSON(w, h.log, http.StatusOK, pack)
}

// HandleFilter handles POST /api/insights/filter
func (h *Handler) HandleFilter(w http.ResponseWriter, r *http.Request) {
	var req insightsRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	perms, err := h.permissions()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to resolve active profile")
		http.Error(w, "Failed to resolve active profile", http.StatusInternalServerError)
		return
	}

	filtered := h.synth.FilterByPermissions(req.Insights, perms)
	utils.WriteJSON(w, h.log, http.StatusOK, insightsRequest{Insights: nonNil(filtered)})
}

// HandleList handles GET /api/insights, returning upstream insights the
// active profile may see.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	insights, perms, ok := h.load(w, r)
	if !ok {
		return
	}
	filtered := h.synth.FilterByPermissions(insights, perms)
	utils.WriteJSON(w, h.log, http.StatusOK, insightsRequest{Insights: nonNil(filtered)})
}

// HandleTop handles GET /api/insights/top
func (h *Handler) HandleTop(w http.ResponseWriter, r *http.Request) {
	insights, perms, ok := h.load(w, r)
	if !ok {
		return
	}

	insight, pack := h.synth.Top(insights, perms)
	if pack != nil {
		h.record(*pack)
	}
	utils.WriteJSON(w, h.log, http.StatusOK, topResponse{Insight: insight, ActionPack: pack})
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) ([]domain.Insight, domain.Permissions, bool) {
	rangeDays, err := utils.RangeDays(r, h.rangeDays)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, domain.Permissions{}, false
	}
	perms, err := h.permissions()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to resolve active profile")
		http.Error(w, "Failed to resolve active profile", http.StatusInternalServerError)
		return nil, domain.Permissions{}, false
	}
	insights, err := h.source.Insights(r.Context(), rangeDays)
	if err != nil {
		h.log.Error().Err(err).Int("range_days", rangeDays).Msg("Failed to fetch insights")
		http.Error(w, "Failed to fetch insights", http.StatusBadGateway)
		return nil, domain.Permissions{}, false
	}
	return insights, perms, true
}

func nonNil(in []domain.Insight) []domain.Insight {
	if in == nil {
		return []domain.Insight{}
	}
	return in
}
