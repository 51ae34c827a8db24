// Package experiment runs one baseline-versus-experiment comparison per profile:
// it turns a recommendation into an active experiment, evaluates it against the
// current series on every call, and interprets the outcome against goals.
package experiment

import "errors"

// Kind selects the lever/outcome pair an experiment measures.
type Kind string

const (
	KindSleepToSugar Kind = "sleep_to_sugar"
	KindSleepToSteps Kind = "sleep_to_steps"
	KindSleepToHR    Kind = "sleep_to_hr"
	KindGeneric      Kind = "generic"
)

// Allowed baseline window lengths, in days.
var BaselineOptions = []int{30, 60, 90}

// Allowed experiment durations, in days.
var DurationOptions = []int{3, 5, 7}

// Thresholds used by evaluation and interpretation.
const (
	SleepThresholdHours = 6
	MinReadyDays        = 2
	NeutralBandPct      = 2.0
	MaxDeltaPct         = 200.0
)

var (
	// ErrEmptySeries is returned when starting an experiment without data.
	ErrEmptySeries = errors.New("cannot start an experiment on an empty series")
	// ErrInvalidBaseline is returned for baselines outside BaselineOptions.
	ErrInvalidBaseline = errors.New("baseline days must be 30, 60 or 90")
	// ErrNoActiveExperiment is returned when an operation needs an active experiment.
	ErrNoActiveExperiment = errors.New("no active experiment")
)

// ActiveExperiment is the persisted state of the profile's running experiment.
// JSON field names match the stored layout.
type ActiveExperiment struct {
	ID           string `json:"id"`
	Kind         Kind   `json:"kind"`
	StartedAtISO string `json:"startedAtISO"`
	StartDate    string `json:"startDate"`
	BaselineDays int    `json:"baselineDays"`
	DurationDays int    `json:"durationDays"`
	Label        string `json:"label"`
}

// Details carries the numbers behind a rubric sentence.
type Details struct {
	BaselineLabel        string   `json:"baselineLabel"`
	BaselineValue        float64  `json:"baselineValue"`
	ExperimentValue      float64  `json:"experimentValue"`
	ChangePct            float64  `json:"changePct"`
	AvgSleepInExperiment *float64 `json:"avgSleepInExperiment,omitempty"`
	LagDays              *int     `json:"lagDays,omitempty"`
}

// Result is derived on every evaluation and never persisted.
type Result struct {
	Ready          bool    `json:"ready"`
	DoneDays       int     `json:"doneDays"`
	IsComplete     bool    `json:"isComplete"`
	ProgressLabel  string  `json:"progressLabel"`
	RubricSentence string  `json:"rubricSentence"`
	Details        Details `json:"details"`
}

// Verdict is the post-hoc classification of an experiment.
type Verdict string

const (
	VerdictHelped        Verdict = "Helped"
	VerdictHurt          Verdict = "Hurt"
	VerdictNeutral       Verdict = "Neutral"
	VerdictNotEnoughData Verdict = "Not enough data"
)

// GoalStatus is the outcome of comparing the experiment average with a goal.
type GoalStatus string

const (
	GoalOnTrack  GoalStatus = "On track"
	GoalOffTrack GoalStatus = "Off track"
	GoalNotSet   GoalStatus = "No goal set"
)

// GoalAlignment compares the experiment-window average with the relevant goal.
type GoalAlignment struct {
	Status GoalStatus `json:"status"`
	Label  string     `json:"label,omitempty"`
	Hint   string     `json:"hint,omitempty"`
}

// Interpretation explains an experiment's outcome for display.
type Interpretation struct {
	Blocked        bool           `json:"blocked"`
	Note           string         `json:"note,omitempty"`
	OutcomeLabel   string         `json:"outcomeLabel"`
	HigherIsBetter bool           `json:"higherIsBetter"`
	BaselineAvg    *float64       `json:"baselineAvg,omitempty"`
	ExperimentAvg  *float64       `json:"experimentAvg,omitempty"`
	DeltaPct       *float64       `json:"deltaPct,omitempty"`
	ProgressDays   int            `json:"progressDays"`
	TotalDays      int            `json:"totalDays"`
	Verdict        Verdict        `json:"verdict,omitempty"`
	VerdictHint    string         `json:"verdictHint,omitempty"`
	NextStep       string         `json:"nextStep,omitempty"`
	Goal           *GoalAlignment `json:"goal,omitempty"`
}
