package experiment

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aristath/wellness/internal/domain"
	"github.com/aristath/wellness/internal/modules/actionpack"
	"github.com/aristath/wellness/internal/modules/window"
	"github.com/aristath/wellness/pkg/formulas"
)

var tryDaysRe = regexp.MustCompile(`(?i)(\d+)\s*days?`)

// NewID returns a fresh experiment identifier.
func NewID() string {
	return "exp_" + uuid.NewString()
}

// InferKind maps an action pack's tags to an experiment kind.
// A nil pack yields the generic kind.
func InferKind(pack *actionpack.ActionPack) Kind {
	if pack == nil {
		return KindGeneric
	}
	tags := strings.ToLower(strings.Join(pack.Tags, " "))
	if !strings.Contains(tags, "sleep") {
		return KindGeneric
	}
	has := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(tags, w) {
				return true
			}
		}
		return false
	}
	switch {
	case has("nutrition", "sugar"):
		return KindSleepToSugar
	case has("activity", "steps"):
		return KindSleepToSteps
	case has("vitals", "recovery", "hr"):
		return KindSleepToHR
	}
	return KindGeneric
}

// ParseTryDays extracts a day count from a time-window label and snaps
// it to 7, 5 or 3. Anything without a number defaults to 3.
func ParseTryDays(text string) int {
	m := tryDaysRe.FindStringSubmatch(text)
	if m == nil {
		return 3
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 3
	}
	switch {
	case n >= 7:
		return 7
	case n >= 5:
		return 5
	}
	return 3
}

// ValidBaseline reports whether days is one of BaselineOptions.
func ValidBaseline(days int) bool {
	for _, d := range BaselineOptions {
		if d == days {
			return true
		}
	}
	return false
}

// New creates an experiment that starts on the last date of series and
// measures what pack proposes. The label is the kind's label.
func New(series domain.TimeSeries, pack *actionpack.ActionPack, baselineDays int, now time.Time) (*ActiveExperiment, error) {
	if series.Empty() {
		return nil, ErrEmptySeries
	}
	if !ValidBaseline(baselineDays) {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBaseline, baselineDays)
	}

	startDate, _ := series.LastDate()
	kind := InferKind(pack)
	duration := 3
	if pack != nil {
		duration = ParseTryDays(pack.TimeWindowLabel)
	}

	return &ActiveExperiment{
		ID:           NewID(),
		Kind:         kind,
		StartedAtISO: now.UTC().Format(time.RFC3339),
		StartDate:    startDate,
		BaselineDays: baselineDays,
		DurationDays: duration,
		Label:        LabelForKind(kind),
	}, nil
}

// startIndex resolves the experiment start: an exact date match, otherwise
// the last DurationDays days of the series.
func startIndex(series domain.TimeSeries, exp ActiveExperiment) int {
	if i := series.IndexOf(exp.StartDate); i >= 0 {
		return i
	}
	return max(0, series.Len()-exp.DurationDays)
}

func baselineLabel(days int) string {
	return fmt.Sprintf("%dd baseline", days)
}

func progressLabel(done, duration int) string {
	return fmt.Sprintf("%d/%d days", done, duration)
}

// ComputeResult evaluates exp against series. It is pure: the same inputs
// always produce the same result.
func ComputeResult(series domain.TimeSeries, exp ActiveExperiment, perms domain.Permissions) Result {
	exp.Kind = exp.Kind.normalize()
	start := startIndex(series, exp)
	expWin := window.Experiment(series, start, exp.DurationDays)
	baseWin := window.Baseline(series, expWin.Start, exp.BaselineDays)
	done, complete := window.Progress(series, expWin.Start, exp.DurationDays)
	label := baselineLabel(exp.BaselineDays)

	res := Result{
		DoneDays:      done,
		IsComplete:    complete,
		ProgressLabel: progressLabel(done, exp.DurationDays),
		Details:       Details{BaselineLabel: label},
	}

	if msg, blocked := permissionGate(exp.Kind, perms); blocked {
		res.RubricSentence = msg
		return res
	}
	res.Ready = done >= MinReadyDays

	o := outcomeFor(exp.Kind)
	if exp.Kind == KindGeneric {
		sleep := series.SleepHours
		base := window.Mean(sleep, baseWin)
		cur := window.Mean(sleep, expWin)
		pct := formulas.PctChange(base, cur)
		res.RubricSentence = fmt.Sprintf("Sleep change → %s sleep vs %s", signedPct(pct), label)
		res.Details.BaselineValue = base
		res.Details.ExperimentValue = cur
		res.Details.ChangePct = pct
		res.Details.AvgSleepInExperiment = &cur
		lag := 0
		res.Details.LagDays = &lag
		return res
	}

	// The outcome is read lagDays after the sleep it follows, in both windows.
	outcome := series.Column(o.metric)
	base := window.LaggedMean(outcome, baseWin, o.lagDays)
	cur := window.LaggedMean(outcome, expWin, o.lagDays)
	pct := formulas.PctChange(base, cur)
	avgSleep := window.Mean(series.SleepHours, expWin)
	lag := o.lagDays

	bucket := "≥6h sleep"
	if avgSleep < SleepThresholdHours {
		bucket = "<6h sleep"
	}
	res.RubricSentence = fmt.Sprintf("%s → %s %s next day (vs %s)", bucket, signedPct(pct), o.rubricLabel, label)
	res.Details.BaselineValue = base
	res.Details.ExperimentValue = cur
	res.Details.ChangePct = pct
	res.Details.AvgSleepInExperiment = &avgSleep
	res.Details.LagDays = &lag
	return res
}

func signedPct(pct float64) string {
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		pct = 0
	}
	return formulas.SignedPercent(pct)
}
