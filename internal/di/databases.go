package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/wellness/internal/config"
	"github.com/aristath/wellness/internal/database"
)

// InitializeDatabase opens and migrates the key/value database
func InitializeDatabase(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	db, err := database.New(database.Config{
		Path: cfg.DatabasePath(),
		Name: "wellness",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize wellness database: %w", err)
	}

	if err := db.Migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate wellness database: %w", err)
	}

	log.Info().Str("path", db.Path()).Msg("Database initialized")
	return &Container{DB: db}, nil
}
