package di

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/wellness/internal/clients/dashboard"
	"github.com/aristath/wellness/internal/config"
	"github.com/aristath/wellness/internal/domain"
	"github.com/aristath/wellness/internal/seriesfile"
)

// ErrNoSource is returned by the data source when neither an upstream URL
// nor a series file is configured.
var ErrNoSource = errors.New("no data source configured")

type noSource struct{}

func (noSource) TimeSeries(context.Context, int) (domain.TimeSeries, error) {
	return domain.TimeSeries{}, ErrNoSource
}

func (noSource) Insights(context.Context, int) ([]domain.Insight, error) {
	return nil, ErrNoSource
}

// InitializeSource picks the data source: the upstream dashboard when a URL is
// set, otherwise a local series file, otherwise a source that always fails.
func InitializeSource(container *Container, cfg *config.Config, log zerolog.Logger) error {
	switch {
	case cfg.UpstreamURL != "":
		container.Dashboard = dashboard.NewClient(dashboard.Config{
			BaseURL:       cfg.UpstreamURL,
			Timeout:       cfg.UpstreamTimeout,
			RatePerSecond: cfg.UpstreamRPS,
		}, container.Metrics, log)
		container.Source = container.Dashboard
		log.Info().Str("url", cfg.UpstreamURL).Msg("Using upstream dashboard")
	case cfg.SeriesFile != "":
		doc, err := seriesfile.Load(cfg.SeriesFile)
		if err != nil {
			return fmt.Errorf("failed to load series file: %w", err)
		}
		container.Source = seriesfile.NewSource(doc)
		log.Info().Str("file", cfg.SeriesFile).Int("days", doc.Series.Len()).Msg("Using local series file")
	default:
		container.Source = noSource{}
		log.Warn().Msg("No upstream URL or series file configured; data endpoints will fail")
	}
	return nil
}
