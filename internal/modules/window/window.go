// Package window resolves the baseline and experiment index ranges used by the
// experiment engine and the what-if simulator. All ranges are half-open and
// clamped to the series bounds, so callers can slice without further checks.
package window

import (
	"github.com/aristath/wellness/internal/domain"
	"github.com/aristath/wellness/pkg/formulas"
)

// Window is the half-open index range [Start, End).
type Window struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of indices covered.
func (w Window) Len() int {
	return w.End - w.Start
}

// Baseline returns [max(0, end-baselineDays), end) with end clamped into the series.
func Baseline(series domain.TimeSeries, endExclusive, baselineDays int) Window {
	end := formulas.ClampInt(endExclusive, 0, series.Len())
	start := formulas.ClampInt(end-baselineDays, 0, end)
	return Window{Start: start, End: end}
}

// Experiment returns [start, start+durationDays) with start clamped into [0, len].
func Experiment(series domain.TimeSeries, startIdx, durationDays int) Window {
	n := series.Len()
	start := formulas.ClampInt(startIdx, 0, n)
	end := formulas.ClampInt(start+durationDays, start, n)
	return Window{Start: start, End: end}
}

// LaggedOutcome shifts w by lagDays and clamps it into [0, arrLen], keeping Start <= End.
// It models an outcome measured lagDays after the lever changed.
func LaggedOutcome(arrLen int, w Window, lagDays int) Window {
	start := formulas.ClampInt(w.Start+lagDays, 0, arrLen)
	end := formulas.ClampInt(w.End+lagDays, start, arrLen)
	return Window{Start: start, End: end}
}

// Progress counts the days elapsed since windowStart, capped at durationDays.
func Progress(series domain.TimeSeries, windowStart, durationDays int) (doneDays int, complete bool) {
	elapsed := series.LastIndex() - windowStart + 1
	if elapsed < 0 {
		elapsed = 0
	}
	doneDays = formulas.ClampInt(elapsed, 0, durationDays)
	return doneDays, doneDays >= durationDays
}

// Slice returns arr restricted to w, tolerating arrays shorter than the series.
func Slice(arr []float64, w Window) []float64 {
	start := formulas.ClampInt(w.Start, 0, len(arr))
	end := formulas.ClampInt(w.End, start, len(arr))
	return arr[start:end]
}

// Mean averages the finite values of arr inside w, 0 if none.
func Mean(arr []float64, w Window) float64 {
	return formulas.Mean(Slice(arr, w))
}

// LaggedMean averages arr over w shifted by lagDays.
func LaggedMean(arr []float64, w Window, lagDays int) float64 {
	return Mean(arr, LaggedOutcome(len(arr), w, lagDays))
}
