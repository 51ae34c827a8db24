package di

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/aristath/wellness/internal/config"
	"github.com/aristath/wellness/internal/events"
	"github.com/aristath/wellness/internal/lexicon"
	"github.com/aristath/wellness/internal/metrics"
	"github.com/aristath/wellness/internal/modules/actionpack"
	"github.com/aristath/wellness/internal/modules/experiment"
	"github.com/aristath/wellness/internal/modules/profile"
	"github.com/aristath/wellness/internal/modules/whatif"
	"github.com/aristath/wellness/internal/storage"
)

// InitializeServices builds the event bus, metrics, storage and domain services
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil || container.DB == nil {
		return fmt.Errorf("container database must be initialized first")
	}

	container.EventBus = events.NewBus()
	container.EventManager = events.NewManager(container.EventBus, log)

	container.Registry = prometheus.NewRegistry()
	container.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	container.Metrics = metrics.New(container.Registry)

	container.Store = storage.NewNotifyingStore(
		storage.NewSQLiteStore(container.DB.Conn(), log),
		container.EventManager,
	)
	container.Profiles = profile.NewStore(container.Store, log)

	if err := InitializeSource(container, cfg, log); err != nil {
		return err
	}

	container.Synthesizer = actionpack.NewSynthesizer(lexicon.Default())
	container.Experiments = experiment.NewService(container.Profiles, container.EventManager, container.Metrics, log)

	whatIf, err := whatif.NewService(cfg.CacheSize, container.Metrics, log)
	if err != nil {
		return fmt.Errorf("failed to create what-if service: %w", err)
	}
	container.WhatIf = whatIf

	// Purged profiles leave no cached projections behind.
	container.EventBus.Subscribe(events.ProfilePurged, func(*events.Event) {
		container.WhatIf.Purge()
	})

	return nil
}
