package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/wellness/internal/config"
	"github.com/aristath/wellness/internal/scheduler"
)

// RegisterJobs creates the background jobs and schedules the ones enabled in cfg
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	if container == nil {
		return nil, fmt.Errorf("container cannot be nil")
	}

	instances := &JobInstances{
		ExperimentProgress: scheduler.NewExperimentProgressJob(
			container.Profiles,
			container.Experiments,
			container.Source,
			container.EventManager,
			container.Metrics,
			cfg.RangeDays,
			log,
		),
		WALCheckpoint: scheduler.NewWALCheckpointJob(container.DB, log),
	}

	container.Scheduler = scheduler.New(log)
	if cfg.ProgressSchedule != "" {
		if err := container.Scheduler.AddJob(cfg.ProgressSchedule, instances.ExperimentProgress); err != nil {
			return nil, fmt.Errorf("failed to schedule experiment progress job: %w", err)
		}
	}
	if cfg.WALSchedule != "" {
		if err := container.Scheduler.AddJob(cfg.WALSchedule, instances.WALCheckpoint); err != nil {
			return nil, fmt.Errorf("failed to schedule WAL checkpoint job: %w", err)
		}
	}

	return instances, nil
}
