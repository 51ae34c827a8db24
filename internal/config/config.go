// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/aristath/wellness/internal/utils"
)

// Config holds application configuration
type Config struct {
	DataDir  string // Directory holding the SQLite database (always absolute)
	LogLevel string
	Port     int
	DevMode  bool

	UpstreamURL     string // Base URL of the dashboard/insight service; empty disables fetching
	UpstreamTimeout time.Duration
	UpstreamRPS     float64
	SeriesFile      string // Local JSON/YAML series served when UpstreamURL is empty

	RangeDays        int    // Default range_days for upstream fetches
	ProgressSchedule string // Cron schedule for the experiment progress job; empty disables it
	WALSchedule      string // Cron schedule for WAL checkpoints; empty disables it

	CORSOrigins []string
	CacheSize   int     // What-If result cache entries; 0 disables caching
	APIRPS      float64 // Per-client request rate for /api; 0 disables limiting
}

// DatabasePath returns the SQLite file inside DataDir.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "wellness.db")
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("WELLNESS_DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:          absDataDir,
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		Port:             getEnvAsInt("WELLNESS_PORT", 8080),
		DevMode:          getEnvAsBool("DEV_MODE", false),
		UpstreamURL:      getEnv("WELLNESS_UPSTREAM_URL", ""),
		UpstreamTimeout:  getEnvAsDuration("WELLNESS_UPSTREAM_TIMEOUT", 10*time.Second),
		UpstreamRPS:      getEnvAsFloat("WELLNESS_UPSTREAM_RPS", 5),
		SeriesFile:       getEnv("WELLNESS_SERIES_FILE", ""),
		RangeDays:        getEnvAsInt("WELLNESS_RANGE_DAYS", 90),
		ProgressSchedule: getEnvAllowEmpty("WELLNESS_PROGRESS_SCHEDULE", "@every 1h"),
		WALSchedule:      getEnvAllowEmpty("WELLNESS_WAL_SCHEDULE", "0 0 3 * * *"),
		CORSOrigins:      utils.ParseCSV(getEnv("WELLNESS_CORS_ORIGINS", "*")),
		CacheSize:        getEnvAsInt("WELLNESS_CACHE_SIZE", 256),
		APIRPS:           getEnvAsFloat("WELLNESS_API_RPS", 20),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.RangeDays < utils.MinRangeDays || c.RangeDays > utils.MaxRangeDays {
		return fmt.Errorf("range days must be between %d and %d, got %d", utils.MinRangeDays, utils.MaxRangeDays, c.RangeDays)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache size must not be negative, got %d", c.CacheSize)
	}
	if c.UpstreamRPS < 0 || c.APIRPS < 0 {
		return fmt.Errorf("request rates must not be negative")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAllowEmpty distinguishes an unset variable from one set to "".
func getEnvAllowEmpty(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
