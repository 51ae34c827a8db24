package experiment

import (
	"fmt"
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/aristath/wellness/internal/domain"
	"github.com/aristath/wellness/internal/modules/window"
	"github.com/aristath/wellness/pkg/formulas"
)

var printer = message.NewPrinter(language.English)

// Classify maps a percent change to a verdict. deltaPct is clamped to
// ±MaxDeltaPct and compared with the ±NeutralBandPct band, inverted when
// lower values are better.
func Classify(deltaPct float64, higherIsBetter bool) Verdict {
	if !formulas.IsFinite(deltaPct) {
		return VerdictNotEnoughData
	}
	d := formulas.Clamp(deltaPct, -MaxDeltaPct, MaxDeltaPct)
	if !higherIsBetter {
		d = -d
	}
	switch {
	case d >= NeutralBandPct:
		return VerdictHelped
	case d <= -NeutralBandPct:
		return VerdictHurt
	}
	return VerdictNeutral
}

// Interpret explains exp's outcome on the same-day averages of its outcome
// metric and aligns the experiment average with the matching goal.
func Interpret(series domain.TimeSeries, exp ActiveExperiment, perms domain.Permissions, goals domain.Goals) Interpretation {
	o := outcomeFor(exp.Kind)
	in := Interpretation{
		OutcomeLabel:   o.displayLabel,
		HigherIsBetter: HigherIsBetter(o.metric),
		TotalDays:      exp.DurationDays,
	}

	if !perms.Allows(o.needs) {
		in.Blocked = true
		in.Note = fmt.Sprintf("Enable %s permission to interpret this experiment’s outcome.", o.needs)
		return in
	}

	start := startIndex(series, exp)
	expWin := window.Experiment(series, start, exp.DurationDays)
	baseWin := window.Baseline(series, expWin.Start, exp.BaselineDays)
	arr := series.Column(o.metric)

	in.ProgressDays = expWin.Len()
	done := in.ProgressDays >= exp.DurationDays

	base, baseOK := formulas.FiniteMean(window.Slice(arr, baseWin))
	cur, curOK := formulas.FiniteMean(window.Slice(arr, expWin))
	if baseOK {
		in.BaselineAvg = &base
	}
	if curOK {
		in.ExperimentAvg = &cur
	}

	in.Goal = alignGoal(o.metric, goals, in.ExperimentAvg)
	in.NextStep = "Keep going until the experiment window completes."

	if !baseOK || !curOK {
		in.Verdict = VerdictNotEnoughData
		in.VerdictHint = "Need more days to compare against baseline."
		in.NextStep = "Keep tracking for a few more days, then re-check the result."
		return in
	}
	if base == 0 {
		in.Verdict = VerdictNotEnoughData
		in.VerdictHint = "Couldn’t compute a stable percent change yet."
		return in
	}

	delta := formulas.Clamp(formulas.PctChange(base, cur), -MaxDeltaPct, MaxDeltaPct)
	in.DeltaPct = &delta
	in.Verdict = Classify(delta, in.HigherIsBetter)

	direction := "increased"
	if delta < 0 {
		direction = "decreased"
	}
	in.VerdictHint = fmt.Sprintf("%s %s by %d%% vs baseline (baseline avg %.1f, experiment avg %.1f).",
		o.displayLabel, direction, int(formulas.RoundHalfUp(math.Abs(delta))), base, cur)

	if done {
		switch in.Verdict {
		case VerdictHelped:
			in.NextStep = "Keep this habit for another 7 days to see if it stays consistent."
		case VerdictNeutral:
			in.NextStep = "Try extending to 7 days or switch to a different lever from another insight."
		case VerdictHurt:
			in.NextStep = "Stop this change and pick a safer, smaller adjustment (or focus on recovery)."
		}
	}
	return in
}

// alignGoal compares the experiment average with the goal relevant to metric.
// Metrics without a goal, or an unset goal, report GoalNotSet.
func alignGoal(metric domain.MetricKey, goals domain.Goals, avg *float64) *GoalAlignment {
	var (
		target *float64
		label  string
		hint   string
		atMost bool
	)
	switch metric {
	case domain.Steps:
		target = goals.StepsTarget
		if target != nil {
			label = "Goal ≥ " + groupNumber(*target)
			hint = "vs goal " + groupNumber(*target)
		}
	case domain.SugarG:
		target = goals.SugarMaxG
		atMost = true
		if target != nil {
			label = "Goal ≤ " + formatNumber(*target) + "g"
			hint = "vs goal " + formatNumber(*target) + "g"
		}
	case domain.SleepHours:
		target = goals.SleepTargetHours
		if target != nil {
			label = "Goal ≥ " + formatNumber(*target) + "h"
			hint = "vs goal " + formatNumber(*target) + "h"
		}
	}
	if target == nil {
		return &GoalAlignment{Status: GoalNotSet}
	}

	g := &GoalAlignment{Status: GoalNotSet, Label: label, Hint: hint}
	if avg == nil {
		return g
	}
	onTrack := *avg >= *target
	if atMost {
		onTrack = *avg <= *target
	}
	g.Status = GoalOffTrack
	if onTrack {
		g.Status = GoalOnTrack
	}
	return g
}

// groupNumber renders v with thousands separators, e.g. 8,000.
func groupNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return printer.Sprintf("%d", int64(v))
	}
	return printer.Sprintf("%v", v)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
