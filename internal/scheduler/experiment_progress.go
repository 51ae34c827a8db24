package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/wellness/internal/domain"
	"github.com/aristath/wellness/internal/events"
	"github.com/aristath/wellness/internal/metrics"
	"github.com/aristath/wellness/internal/modules/experiment"
	"github.com/aristath/wellness/internal/modules/profile"
)

// ProfileLister enumerates profiles and their permissions.
type ProfileLister interface {
	Profiles() ([]profile.Profile, error)
	Permissions(profileID string) domain.Permissions
}

// ActiveExperiments looks up a profile's running experiment.
type ActiveExperiments interface {
	Active(profileID string) *experiment.ActiveExperiment
}

// ExperimentProgressJob evaluates every profile's active experiment and
// announces completion once per experiment.
type ExperimentProgressJob struct {
	profiles     ProfileLister
	experiments  ActiveExperiments
	source       domain.Source
	eventManager *events.Manager
	metrics      *metrics.Metrics
	rangeDays    int
	timeout      time.Duration
	log          zerolog.Logger

	mu        sync.Mutex
	announced map[string]bool
}

// NewExperimentProgressJob creates a new ExperimentProgressJob
func NewExperimentProgressJob(
	profiles ProfileLister,
	experiments ActiveExperiments,
	source domain.Source,
	eventManager *events.Manager,
	m *metrics.Metrics,
	rangeDays int,
	log zerolog.Logger,
) *ExperimentProgressJob {
	return &ExperimentProgressJob{
		profiles:     profiles,
		experiments:  experiments,
		source:       source,
		eventManager: eventManager,
		metrics:      m,
		rangeDays:    rangeDays,
		timeout:      30 * time.Second,
		log:          log.With().Str("job", "experiment_progress").Logger(),
		announced:    make(map[string]bool),
	}
}

type pendingExperiment struct {
	profileID string
	exp       experiment.ActiveExperiment
}

// Name returns the job name
func (j *ExperimentProgressJob) Name() string {
	return "experiment_progress"
}

// Run executes the experiment progress job
func (j *ExperimentProgressJob) Run() error {
	profiles, err := j.profiles.Profiles()
	if err != nil {
		return fmt.Errorf("failed to list profiles: %w", err)
	}

	var active []pendingExperiment
	for _, p := range profiles {
		exp := j.experiments.Active(p.ID)
		if exp == nil || j.isAnnounced(exp.ID) {
			continue
		}
		active = append(active, pendingExperiment{profileID: p.ID, exp: *exp})
	}
	if len(active) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	series, err := j.source.TimeSeries(ctx, j.rangeDays)
	if err != nil {
		return fmt.Errorf("failed to fetch time series: %w", err)
	}

	completed := 0
	for _, a := range active {
		res := experiment.ComputeResult(series, a.exp, j.profiles.Permissions(a.profileID))
		if !res.IsComplete {
			j.log.Debug().
				Str("profile_id", a.profileID).
				Str("experiment_id", a.exp.ID).
				Str("progress", res.ProgressLabel).
				Msg("Experiment in progress")
			continue
		}

		j.markAnnounced(a.exp.ID)
		completed++
		j.metrics.ExperimentsCompleted.Inc()
		j.eventManager.EmitTyped("scheduler", &events.ExperimentData{
			Type:         events.ExperimentCompleted,
			ProfileID:    a.profileID,
			ExperimentID: a.exp.ID,
			Kind:         string(a.exp.Kind),
			DoneDays:     res.DoneDays,
		})
		j.log.Info().
			Str("profile_id", a.profileID).
			Str("experiment_id", a.exp.ID).
			Str("rubric", res.RubricSentence).
			Msg("Experiment completed")
	}

	j.log.Debug().Int("checked", len(active)).Int("completed", completed).Msg("Experiment progress checked")
	return nil
}

func (j *ExperimentProgressJob) isAnnounced(id string) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.announced[id]
}

func (j *ExperimentProgressJob) markAnnounced(id string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.announced[id] = true
}
