// Package actionpack turns one detected pattern into a concrete, testable
// recommendation.
package actionpack

// DefaultDays is the trial length every recommendation proposes.
const DefaultDays = 3

// Tag labels attached to action packs. Experiment kind inference reads them.
const (
	TagSleep       = "Sleep"
	TagNutrition   = "Nutrition"
	TagActivity    = "Activity"
	TagVitals      = "Vitals"
	TagRecovery    = "Recovery"
	TagAnomaly     = "Anomaly"
	TagConsistency = "Consistency"
)

// ActionPack is a stateless recommendation derived from an insight.
type ActionPack struct {
	Action          string   `json:"action"`
	Because         string   `json:"because"`
	HowToTest       []string `json:"howToTest"`
	TimeWindowLabel string   `json:"timeWindowLabel"`
	Tags            []string `json:"tags"`
}

// HasTag reports whether the pack carries tag (exact match).
func (p ActionPack) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
