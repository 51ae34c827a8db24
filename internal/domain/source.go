package domain

import "context"

// Source supplies the aggregated series and the insights detected upstream.
type Source interface {
	TimeSeries(ctx context.Context, rangeDays int) (TimeSeries, error)
	Insights(ctx context.Context, rangeDays int) ([]Insight, error)
}
