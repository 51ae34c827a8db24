package testing

import (
	"context"

	"github.com/aristath/wellness/internal/domain"
)

// FakeSource serves a fixed series and insight list, or Err when set.
type FakeSource struct {
	Series      domain.TimeSeries
	InsightList []domain.Insight
	Err         error

	Calls     int
	LastRange int
}

// TimeSeries returns the fixed series.
func (f *FakeSource) TimeSeries(_ context.Context, rangeDays int) (domain.TimeSeries, error) {
	f.Calls++
	f.LastRange = rangeDays
	if f.Err != nil {
		return domain.TimeSeries{}, f.Err
	}
	return f.Series, nil
}

// Insights returns the fixed insight list.
func (f *FakeSource) Insights(_ context.Context, rangeDays int) ([]domain.Insight, error) {
	f.Calls++
	f.LastRange = rangeDays
	if f.Err != nil {
		return nil, f.Err
	}
	return f.InsightList, nil
}
