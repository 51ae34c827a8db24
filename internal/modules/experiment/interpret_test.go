package experiment

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/wellness/internal/domain"
	"github.com/aristath/wellness/internal/modules/actionpack"
	testingpkg "github.com/aristath/wellness/internal/testing"
)

func fptr(v float64) *float64 { return &v }

func TestClassify(t *testing.T) {
	tests := []struct {
		name           string
		delta          float64
		higherIsBetter bool
		want           Verdict
	}{
		{"higher better up", 2, true, VerdictHelped},
		{"higher better down", -2, true, VerdictHurt},
		{"higher better inside band", 1.99, true, VerdictNeutral},
		{"lower better down", -2, false, VerdictHelped},
		{"lower better up", 5, false, VerdictHurt},
		{"lower better inside band", -1.5, false, VerdictNeutral},
		{"clamped huge gain", 5000, true, VerdictHelped},
		{"nan", math.NaN(), true, VerdictNotEnoughData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.delta, tt.higherIsBetter))
		})
	}
}

func TestHigherIsBetter(t *testing.T) {
	assert.True(t, HigherIsBetter(domain.Steps))
	assert.True(t, HigherIsBetter(domain.SleepHours))
	assert.False(t, HigherIsBetter(domain.SugarG))
	assert.False(t, HigherIsBetter(domain.RestingHR))
}

func completedSugarExperiment(t *testing.T) (domain.TimeSeries, ActiveExperiment) {
	t.Helper()
	series := testingpkg.SleepSugarSeries("2026-01-01", 90)
	exp, err := New(series, &actionpack.ActionPack{
		TimeWindowLabel: "Try for 3 days",
		Tags:            []string{actionpack.TagSleep, actionpack.TagNutrition},
	}, 30, time.Now())
	require.NoError(t, err)

	rested := testingpkg.TypicalDay()
	rested.SleepHours = 7.5
	rested.SugarG = 50
	return testingpkg.AppendDays(series, rested, rested, rested), *exp
}

func TestInterpret_Helped(t *testing.T) {
	series, exp := completedSugarExperiment(t)

	in := Interpret(series, exp, domain.DefaultPermissions(), domain.Goals{SugarMaxG: fptr(40)})

	assert.False(t, in.Blocked)
	assert.Equal(t, "Sugar", in.OutcomeLabel)
	assert.False(t, in.HigherIsBetter)
	assert.Equal(t, 3, in.ProgressDays)
	assert.Equal(t, 3, in.TotalDays)
	require.NotNil(t, in.BaselineAvg)
	require.NotNil(t, in.ExperimentAvg)
	assert.InDelta(t, 55, *in.BaselineAvg, 1e-9)
	assert.InDelta(t, 160.0/3, *in.ExperimentAvg, 1e-9)
	require.NotNil(t, in.DeltaPct)
	assert.Less(t, *in.DeltaPct, -2.0)

	assert.Equal(t, VerdictHelped, in.Verdict)
	assert.Equal(t, "Sugar decreased by 3% vs baseline (baseline avg 55.0, experiment avg 53.3).", in.VerdictHint)
	assert.Equal(t, "Keep this habit for another 7 days to see if it stays consistent.", in.NextStep)

	require.NotNil(t, in.Goal)
	assert.Equal(t, GoalOffTrack, in.Goal.Status)
	assert.Equal(t, "Goal ≤ 40g", in.Goal.Label)
	assert.Equal(t, "vs goal 40g", in.Goal.Hint)
}

func TestInterpret_InProgress(t *testing.T) {
	series := testingpkg.SeriesOf("2026-01-01", 40, func(i int) testingpkg.Day {
		d := testingpkg.TypicalDay()
		if i >= 39 {
			d.Steps = 10000
		}
		return d
	})
	exp := ActiveExperiment{Kind: KindSleepToSteps, StartDate: series.Date[39], BaselineDays: 30, DurationDays: 5}

	in := Interpret(series, exp, domain.DefaultPermissions(), domain.Goals{StepsTarget: fptr(8000)})

	assert.Equal(t, VerdictHelped, in.Verdict)
	assert.Equal(t, "Steps increased by 25% vs baseline (baseline avg 8000.0, experiment avg 10000.0).", in.VerdictHint)
	assert.Equal(t, "Keep going until the experiment window completes.", in.NextStep)
	assert.Equal(t, 1, in.ProgressDays)
	require.NotNil(t, in.Goal)
	assert.Equal(t, GoalOnTrack, in.Goal.Status)
	assert.Equal(t, "Goal ≥ 8,000", in.Goal.Label)
	assert.Equal(t, "vs goal 8,000", in.Goal.Hint)
}

func TestInterpret_NextSteps(t *testing.T) {
	tests := []struct {
		name     string
		hr       float64
		verdict  Verdict
		nextStep string
	}{
		{"hurt", 66, VerdictHurt, "Stop this change and pick a safer, smaller adjustment (or focus on recovery)."},
		{"neutral", 60.5, VerdictNeutral, "Try extending to 7 days or switch to a different lever from another insight."},
		{"helped", 55, VerdictHelped, "Keep this habit for another 7 days to see if it stays consistent."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series := testingpkg.SeriesOf("2026-01-01", 40, func(i int) testingpkg.Day {
				d := testingpkg.TypicalDay()
				if i >= 37 {
					d.RestingHR = tt.hr
				}
				return d
			})
			exp := ActiveExperiment{Kind: KindSleepToHR, StartDate: series.Date[37], BaselineDays: 30, DurationDays: 3}

			in := Interpret(series, exp, domain.DefaultPermissions(), domain.Goals{})
			assert.Equal(t, tt.verdict, in.Verdict)
			assert.Equal(t, tt.nextStep, in.NextStep)
			require.NotNil(t, in.Goal)
			assert.Equal(t, GoalNotSet, in.Goal.Status)
		})
	}
}

func TestInterpret_Blocked(t *testing.T) {
	series, exp := completedSugarExperiment(t)
	perms := domain.DefaultPermissions()
	perms.Nutrition = false

	in := Interpret(series, exp, perms, domain.Goals{})
	assert.True(t, in.Blocked)
	assert.Equal(t, "Enable nutrition permission to interpret this experiment’s outcome.", in.Note)
	assert.Empty(t, in.Verdict)
}

func TestInterpret_NotEnoughData(t *testing.T) {
	series := testingpkg.SeriesOf("2026-01-01", 5, func(int) testingpkg.Day { return testingpkg.TypicalDay() })
	exp := ActiveExperiment{Kind: KindSleepToSugar, StartDate: series.Date[0], BaselineDays: 30, DurationDays: 3}

	in := Interpret(series, exp, domain.DefaultPermissions(), domain.Goals{})
	assert.Equal(t, VerdictNotEnoughData, in.Verdict)
	assert.Equal(t, "Need more days to compare against baseline.", in.VerdictHint)
	assert.Equal(t, "Keep tracking for a few more days, then re-check the result.", in.NextStep)
	assert.Nil(t, in.DeltaPct)
	assert.Nil(t, in.BaselineAvg)
}

func TestInterpret_ZeroBaseline(t *testing.T) {
	series := testingpkg.SeriesOf("2026-01-01", 10, func(i int) testingpkg.Day {
		d := testingpkg.TypicalDay()
		d.SugarG = 0
		if i >= 8 {
			d.SugarG = 30
		}
		return d
	})
	exp := ActiveExperiment{Kind: KindSleepToSugar, StartDate: series.Date[8], BaselineDays: 30, DurationDays: 3}

	in := Interpret(series, exp, domain.DefaultPermissions(), domain.Goals{})
	assert.Equal(t, VerdictNotEnoughData, in.Verdict)
	assert.Equal(t, "Couldn’t compute a stable percent change yet.", in.VerdictHint)
	assert.Nil(t, in.DeltaPct)
}

func TestInterpret_GoalNeverBlocks(t *testing.T) {
	series := testingpkg.SeriesOf("2026-01-01", 40, func(i int) testingpkg.Day {
		d := testingpkg.TypicalDay()
		if i >= 37 {
			d.SleepHours = 8
		}
		return d
	})
	exp := ActiveExperiment{Kind: KindGeneric, StartDate: series.Date[37], BaselineDays: 30, DurationDays: 3}

	in := Interpret(series, exp, domain.Permissions{Sleep: true}, domain.Goals{SleepTargetHours: fptr(7.5)})
	assert.Equal(t, VerdictHelped, in.Verdict)
	require.NotNil(t, in.Goal)
	assert.Equal(t, GoalOnTrack, in.Goal.Status)
	assert.Equal(t, "Goal ≥ 7.5h", in.Goal.Label)
	assert.Equal(t, "vs goal 7.5h", in.Goal.Hint)
}
