package experiment

import (
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/wellness/internal/domain"
	"github.com/aristath/wellness/internal/events"
	"github.com/aristath/wellness/internal/metrics"
	"github.com/aristath/wellness/internal/modules/actionpack"
)

// Repository persists one active experiment per profile.
type Repository interface {
	LoadActiveExperiment(profileID string) *ActiveExperiment
	SaveActiveExperiment(profileID string, exp ActiveExperiment) error
	ClearActiveExperiment(profileID string) error
}

// Evaluation bundles an experiment with its current result and interpretation.
type Evaluation struct {
	Experiment     ActiveExperiment `json:"experiment"`
	Result         Result           `json:"result"`
	Interpretation Interpretation   `json:"interpretation"`
}

// Service drives the Suggested → Active → Suggested lifecycle.
type Service struct {
	repo    Repository
	events  *events.Manager
	metrics *metrics.Metrics
	now     func() time.Time
	log     zerolog.Logger
}

// NewService creates an experiment service
func NewService(repo Repository, em *events.Manager, m *metrics.Metrics, log zerolog.Logger) *Service {
	return &Service{
		repo:    repo,
		events:  em,
		metrics: m,
		now:     time.Now,
		log:     log.With().Str("service", "experiment").Logger(),
	}
}

// Active returns the profile's active experiment, nil when in the Suggested state.
func (s *Service) Active(profileID string) *ActiveExperiment {
	return s.repo.LoadActiveExperiment(profileID)
}

// Start creates an experiment from pack and makes it the profile's active
// experiment, superseding any previous one.
func (s *Service) Start(profileID string, series domain.TimeSeries, pack *actionpack.ActionPack, baselineDays int) (*ActiveExperiment, error) {
	exp, err := New(series, pack, baselineDays, s.now())
	if err != nil {
		return nil, err
	}
	if prev := s.repo.LoadActiveExperiment(profileID); prev != nil {
		s.log.Info().Str("profile_id", profileID).Str("experiment_id", prev.ID).Msg("Superseding active experiment")
	}
	if err := s.repo.SaveActiveExperiment(profileID, *exp); err != nil {
		return nil, fmt.Errorf("failed to save experiment: %w", err)
	}

	s.metrics.ExperimentsStarted.WithLabelValues(string(exp.Kind)).Inc()
	s.events.EmitTyped("experiment", &events.ExperimentData{
		Type:         events.ExperimentStarted,
		ProfileID:    profileID,
		ExperimentID: exp.ID,
		Kind:         string(exp.Kind),
	})
	s.log.Info().
		Str("profile_id", profileID).
		Str("experiment_id", exp.ID).
		Str("kind", string(exp.Kind)).
		Str("start_date", exp.StartDate).
		Int("duration_days", exp.DurationDays).
		Int("baseline_days", exp.BaselineDays).
		Msg("Experiment started")
	return exp, nil
}

// Reset clears the profile's experiment. Resetting with nothing active is a no-op.
func (s *Service) Reset(profileID string) error {
	prev := s.repo.LoadActiveExperiment(profileID)
	if err := s.repo.ClearActiveExperiment(profileID); err != nil {
		return fmt.Errorf("failed to clear experiment: %w", err)
	}
	if prev == nil {
		return nil
	}

	s.metrics.ExperimentsReset.Inc()
	s.events.EmitTyped("experiment", &events.ExperimentData{
		Type:         events.ExperimentReset,
		ProfileID:    profileID,
		ExperimentID: prev.ID,
		Kind:         string(prev.Kind),
	})
	s.log.Info().Str("profile_id", profileID).Str("experiment_id", prev.ID).Msg("Experiment reset")
	return nil
}

// Evaluate computes the active experiment's result and interpretation.
// It returns ErrNoActiveExperiment in the Suggested state.
func (s *Service) Evaluate(profileID string, series domain.TimeSeries, perms domain.Permissions, goals domain.Goals) (*Evaluation, error) {
	exp := s.repo.LoadActiveExperiment(profileID)
	if exp == nil {
		return nil, ErrNoActiveExperiment
	}

	res := ComputeResult(series, *exp, perms)
	s.metrics.ExperimentEvaluations.WithLabelValues(strconv.FormatBool(res.Ready)).Inc()
	if !res.Ready {
		s.log.Debug().
			Str("experiment_id", exp.ID).
			Int("done_days", res.DoneDays).
			Str("rubric", res.RubricSentence).
			Msg("Experiment not ready")
	}

	return &Evaluation{
		Experiment:     *exp,
		Result:         res,
		Interpretation: Interpret(series, *exp, perms, goals),
	}, nil
}
