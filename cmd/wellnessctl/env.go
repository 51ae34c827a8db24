package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/aristath/wellness/internal/database"
	"github.com/aristath/wellness/internal/events"
	"github.com/aristath/wellness/internal/lexicon"
	"github.com/aristath/wellness/internal/metrics"
	"github.com/aristath/wellness/internal/modules/actionpack"
	"github.com/aristath/wellness/internal/modules/experiment"
	"github.com/aristath/wellness/internal/modules/profile"
	"github.com/aristath/wellness/internal/modules/whatif"
	"github.com/aristath/wellness/internal/seriesfile"
	"github.com/aristath/wellness/internal/storage"
)

// env is the set of services one command invocation works with.
type env struct {
	doc         *seriesfile.Document
	db          *database.DB
	profiles    *profile.Store
	synthesizer *actionpack.Synthesizer
	experiments *experiment.Service
	whatIf      *whatif.Service
	profileID   string
}

// openEnv loads the series file and opens the profile store. Without a
// database path the store is in-memory and nothing outlives the command.
func openEnv(opts *rootOptions, log zerolog.Logger) (*env, error) {
	if opts.file == "" {
		return nil, fmt.Errorf("--file is required")
	}
	doc, err := seriesfile.Load(opts.file)
	if err != nil {
		return nil, err
	}

	e := &env{doc: doc}

	var kv storage.Store = storage.NewMemoryStore()
	if opts.dbPath != "" {
		db, err := database.New(database.Config{Path: opts.dbPath, Name: "wellnessctl"})
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(); err != nil {
			_ = db.Close()
			return nil, err
		}
		e.db = db
		kv = storage.NewSQLiteStore(db.Conn(), log)
	}

	m := metrics.New(prometheus.NewRegistry())
	em := events.NewManager(events.NewBus(), log)

	e.profiles = profile.NewStore(kv, log)
	e.synthesizer = actionpack.NewSynthesizer(lexicon.Default())
	e.experiments = experiment.NewService(e.profiles, em, m, log)
	e.whatIf, err = whatif.NewService(0, m, log)
	if err != nil {
		e.close()
		return nil, err
	}

	e.profileID, err = e.profiles.ActiveProfileID()
	if err != nil {
		e.close()
		return nil, fmt.Errorf("failed to resolve active profile: %w", err)
	}
	return e, nil
}

func (e *env) close() {
	if e.db != nil {
		_ = e.db.Close()
	}
}
