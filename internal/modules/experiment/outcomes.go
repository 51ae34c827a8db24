package experiment

import (
	"github.com/aristath/wellness/internal/domain"
)

// outcome describes what a kind measures and which permissions it needs.
type outcome struct {
	metric         domain.MetricKey
	rubricLabel    string
	displayLabel   string
	higherIsBetter bool
	needs          domain.Domain
	gateMessage    string
	lagDays        int
	label          string
}

var outcomes = map[Kind]outcome{
	KindSleepToSugar: {
		metric:       domain.SugarG,
		rubricLabel:  "sugar",
		displayLabel: "Sugar",
		needs:        domain.DomainNutrition,
		gateMessage:  "Enable Sleep + Nutrition in Settings to run this experiment.",
		lagDays:      1,
		label:        "Sleep → Sugar (next day)",
	},
	KindSleepToSteps: {
		metric:         domain.Steps,
		rubricLabel:    "steps",
		displayLabel:   "Steps",
		higherIsBetter: true,
		needs:          domain.DomainActivity,
		gateMessage:    "Enable Sleep + Activity in Settings to run this experiment.",
		lagDays:        1,
		label:          "Sleep → Steps (next day)",
	},
	KindSleepToHR: {
		metric:       domain.RestingHR,
		rubricLabel:  "resting HR",
		displayLabel: "Resting HR",
		needs:        domain.DomainVitals,
		gateMessage:  "Enable Sleep + Vitals in Settings to run this experiment.",
		lagDays:      1,
		label:        "Sleep → Resting HR (next day)",
	},
	KindGeneric: {
		metric:         domain.SleepHours,
		rubricLabel:    "sleep",
		displayLabel:   "Sleep",
		higherIsBetter: true,
		needs:          domain.DomainSleep,
		label:          "Sleep stability check",
	},
}

// normalize maps kinds this version does not know (for example from an
// older persisted experiment) to the generic kind.
func (k Kind) normalize() Kind {
	if _, ok := outcomes[k]; ok {
		return k
	}
	return KindGeneric
}

func outcomeFor(kind Kind) outcome {
	if o, ok := outcomes[kind]; ok {
		return o
	}
	return outcomes[KindGeneric]
}

// HigherIsBetter is the polarity of each outcome metric.
func HigherIsBetter(metric domain.MetricKey) bool {
	switch metric {
	case domain.Steps, domain.SleepHours, domain.ActiveMinutes:
		return true
	}
	return false
}

// LabelForKind returns the display label of a kind.
func LabelForKind(kind Kind) string {
	return outcomeFor(kind).label
}

// OutcomeMetric returns the metric an experiment kind measures.
func OutcomeMetric(kind Kind) domain.MetricKey {
	return outcomeFor(kind).metric
}

// permissionGate returns the instructional sentence when the kind's
// sleep+outcome pair is not fully enabled. The generic kind is never gated.
func permissionGate(kind Kind, perms domain.Permissions) (string, bool) {
	if kind.normalize() == KindGeneric {
		return "", false
	}
	o := outcomeFor(kind)
	if !perms.Sleep || !perms.Allows(o.needs) {
		return o.gateMessage, true
	}
	return "", false
}
