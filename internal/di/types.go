// Package di wires the application's dependencies into a Container.
package di

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aristath/wellness/internal/clients/dashboard"
	"github.com/aristath/wellness/internal/database"
	"github.com/aristath/wellness/internal/domain"
	"github.com/aristath/wellness/internal/events"
	"github.com/aristath/wellness/internal/metrics"
	"github.com/aristath/wellness/internal/modules/actionpack"
	"github.com/aristath/wellness/internal/modules/experiment"
	"github.com/aristath/wellness/internal/modules/profile"
	"github.com/aristath/wellness/internal/modules/whatif"
	"github.com/aristath/wellness/internal/scheduler"
	"github.com/aristath/wellness/internal/storage"
)

// Container holds every long-lived dependency
type Container struct {
	// Persistence
	DB    *database.DB
	Store storage.Store

	// Events and observability
	EventBus     *events.Bus
	EventManager *events.Manager
	Registry     *prometheus.Registry
	Metrics      *metrics.Metrics

	// Data source. Dashboard is nil unless an upstream URL is configured.
	Dashboard *dashboard.Client
	Source    domain.Source

	// Domain services
	Profiles    *profile.Store
	Synthesizer *actionpack.Synthesizer
	Experiments *experiment.Service
	WhatIf      *whatif.Service

	Scheduler *scheduler.Scheduler
}

// JobInstances holds the background jobs for manual triggering
type JobInstances struct {
	ExperimentProgress *scheduler.ExperimentProgressJob
	WALCheckpoint      *scheduler.WALCheckpointJob
}

// All returns the jobs keyed by name.
func (j *JobInstances) All() map[string]scheduler.Job {
	return map[string]scheduler.Job{
		j.ExperimentProgress.Name(): j.ExperimentProgress,
		j.WALCheckpoint.Name():      j.WALCheckpoint,
	}
}

// Close releases the container's resources.
func (c *Container) Close() error {
	if c.Scheduler != nil {
		c.Scheduler.Stop()
	}
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
