// Package whatif projects how a change in one metric would move another,
// using an ordinary least squares slope fitted on the user's own history.
package whatif

import (
	"errors"

	"github.com/aristath/wellness/internal/domain"
)

// ErrUnknownMetric is returned for metric keys outside the catalog.
var ErrUnknownMetric = errors.New("unknown metric")

// Metric describes one selectable input or outcome.
type Metric struct {
	Key    domain.MetricKey `json:"key"`
	Label  string           `json:"label"`
	Unit   string           `json:"unit"`
	Domain domain.Domain    `json:"domain"`
	Min    float64          `json:"min"`
	Max    float64          `json:"max"`
	Step   float64          `json:"step"`
}

// Catalog lists every metric in display order.
var Catalog = []Metric{
	{Key: domain.SleepHours, Label: "Sleep", Unit: "h", Domain: domain.DomainSleep, Min: 0, Max: 12, Step: 0.1},
	{Key: domain.Steps, Label: "Steps", Unit: "", Domain: domain.DomainActivity, Min: 0, Max: 50000, Step: 100},
	{Key: domain.ActiveMinutes, Label: "Active minutes", Unit: "min", Domain: domain.DomainActivity, Min: 0, Max: 600, Step: 5},
	{Key: domain.Calories, Label: "Calories", Unit: "kcal", Domain: domain.DomainNutrition, Min: 0, Max: 6000, Step: 50},
	{Key: domain.SugarG, Label: "Sugar", Unit: "g", Domain: domain.DomainNutrition, Min: 0, Max: 400, Step: 5},
	{Key: domain.RestingHR, Label: "Resting HR", Unit: "bpm", Domain: domain.DomainVitals, Min: 30, Max: 130, Step: 1},
}

// Lookup returns the catalog entry for key.
func Lookup(key domain.MetricKey) (Metric, bool) {
	for _, m := range Catalog {
		if m.Key == key {
			return m, true
		}
	}
	return Metric{}, false
}

// Clamp limits v to the metric's valid range.
func (m Metric) Clamp(v float64) float64 {
	if v < m.Min {
		return m.Min
	}
	if v > m.Max {
		return m.Max
	}
	return v
}
