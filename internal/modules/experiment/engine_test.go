package experiment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/wellness/internal/domain"
	"github.com/aristath/wellness/internal/modules/actionpack"
	testingpkg "github.com/aristath/wellness/internal/testing"
)

func pack(window string, tags ...string) *actionpack.ActionPack {
	return &actionpack.ActionPack{TimeWindowLabel: window, Tags: tags}
}

func TestInferKind(t *testing.T) {
	tests := []struct {
		name string
		pack *actionpack.ActionPack
		want Kind
	}{
		{"nil pack", nil, KindGeneric},
		{"sleep and nutrition", pack("", "Sleep", "Nutrition"), KindSleepToSugar},
		{"sleep and sugar", pack("", "sleep", "sugar"), KindSleepToSugar},
		{"sleep and activity", pack("", "Sleep", "Activity"), KindSleepToSteps},
		{"sleep and vitals", pack("", "Sleep", "Vitals", "Recovery"), KindSleepToHR},
		{"sleep and recovery", pack("", "Sleep", "Recovery"), KindSleepToHR},
		{"no sleep tag", pack("", "Nutrition", "Anomaly"), KindGeneric},
		{"sleep only", pack("", "Sleep", "Anomaly"), KindGeneric},
		{"nutrition wins over activity", pack("", "Sleep", "Activity", "Nutrition"), KindSleepToSugar},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferKind(tt.pack))
		})
	}
}

func TestParseTryDays(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"Try for 3 days", 3},
		{"Try for 5 days", 5},
		{"Try for 6 days", 5},
		{"Try for 7 days", 7},
		{"Try for 14 days", 7},
		{"1 day", 3},
		{"TRY FOR 5 DAYS", 5},
		{"a week", 3},
		{"", 3},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTryDays(tt.in))
		})
	}
}

func TestNew(t *testing.T) {
	series := testingpkg.SleepSugarSeries("2026-01-01", 90)
	now := time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC)

	exp, err := New(series, pack("Try for 5 days", "Sleep", "Nutrition"), 60, now)
	require.NoError(t, err)

	assert.Regexp(t, `^exp_[0-9a-f-]{36}$`, exp.ID)
	assert.Equal(t, KindSleepToSugar, exp.Kind)
	assert.Equal(t, "2026-03-31", exp.StartDate)
	assert.Equal(t, "2026-04-01T09:30:00Z", exp.StartedAtISO)
	assert.Equal(t, 60, exp.BaselineDays)
	assert.Equal(t, 5, exp.DurationDays)
	assert.Equal(t, "Sleep → Sugar (next day)", exp.Label)
}

func TestNew_Errors(t *testing.T) {
	series := testingpkg.SleepSugarSeries("2026-01-01", 10)

	_, err := New(domain.TimeSeries{}, nil, 30, time.Now())
	assert.ErrorIs(t, err, ErrEmptySeries)

	_, err = New(series, nil, 45, time.Now())
	assert.ErrorIs(t, err, ErrInvalidBaseline)
}

func TestNew_NilPackIsGeneric(t *testing.T) {
	series := testingpkg.SleepSugarSeries("2026-01-01", 10)
	exp, err := New(series, nil, 30, time.Now())
	require.NoError(t, err)
	assert.Equal(t, KindGeneric, exp.Kind)
	assert.Equal(t, 3, exp.DurationDays)
	assert.Equal(t, "Sleep stability check", exp.Label)
}

func sugarExperiment(start string) ActiveExperiment {
	return ActiveExperiment{
		ID:           "exp_test",
		Kind:         KindSleepToSugar,
		StartDate:    start,
		BaselineDays: 30,
		DurationDays: 3,
		Label:        LabelForKind(KindSleepToSugar),
	}
}

func TestComputeResult_PermissionGate(t *testing.T) {
	series := testingpkg.SleepSugarSeries("2026-01-01", 92)
	exp := sugarExperiment(series.Date[89])

	perms := domain.DefaultPermissions()
	perms.Nutrition = false

	res := ComputeResult(series, exp, perms)

	assert.False(t, res.Ready)
	assert.Equal(t, "Enable Sleep + Nutrition in Settings to run this experiment.", res.RubricSentence)
	assert.Equal(t, "3/3 days", res.ProgressLabel)
	assert.Equal(t, 3, res.DoneDays)
	assert.True(t, res.IsComplete)
	assert.Equal(t, "30d baseline", res.Details.BaselineLabel)
	assert.Zero(t, res.Details.ChangePct)
	assert.Nil(t, res.Details.LagDays)
}

func TestComputeResult_GateMessages(t *testing.T) {
	series := testingpkg.SleepSugarSeries("2026-01-01", 40)
	tests := []struct {
		kind  Kind
		perms domain.Permissions
		want  string
	}{
		{KindSleepToSteps, domain.Permissions{Sleep: true, Nutrition: true, Vitals: true}, "Enable Sleep + Activity in Settings to run this experiment."},
		{KindSleepToHR, domain.Permissions{Sleep: true, Activity: true, Nutrition: true}, "Enable Sleep + Vitals in Settings to run this experiment."},
		{KindSleepToSugar, domain.Permissions{Activity: true, Nutrition: true, Vitals: true}, "Enable Sleep + Nutrition in Settings to run this experiment."},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			exp := ActiveExperiment{Kind: tt.kind, StartDate: series.Date[39], BaselineDays: 30, DurationDays: 3}
			res := ComputeResult(series, exp, tt.perms)
			assert.Equal(t, tt.want, res.RubricSentence)
			assert.False(t, res.Ready)
			assert.Equal(t, "1/3 days", res.ProgressLabel)
		})
	}
}

func TestComputeResult_Idempotent(t *testing.T) {
	series := testingpkg.SleepSugarSeries("2026-01-01", 92)
	exp := sugarExperiment(series.Date[89])
	perms := domain.DefaultPermissions()

	first := ComputeResult(series, exp, perms)
	second := ComputeResult(series, exp, perms)
	assert.Equal(t, first, second)
}

func TestComputeResult_EndToEnd(t *testing.T) {
	series := testingpkg.SleepSugarSeries("2026-01-01", 90)
	exp, err := New(series, pack("Try for 3 days", actionpack.TagSleep, actionpack.TagNutrition), 30, time.Now())
	require.NoError(t, err)

	perms := domain.DefaultPermissions()

	day0 := ComputeResult(series, *exp, perms)
	assert.Equal(t, 1, day0.DoneDays)
	assert.False(t, day0.Ready)
	assert.False(t, day0.IsComplete)

	rested := testingpkg.TypicalDay()
	rested.SleepHours = 7.5
	rested.SugarG = 50
	series = testingpkg.AppendDays(series, rested, rested, rested)

	res := ComputeResult(series, *exp, perms)
	assert.True(t, res.IsComplete)
	assert.True(t, res.Ready)
	assert.Equal(t, 3, res.DoneDays)
	assert.Equal(t, "3/3 days", res.ProgressLabel)
	assert.Equal(t, "≥6h sleep → -9% sugar next day (vs 30d baseline)", res.RubricSentence)
	assert.InDelta(t, 55, res.Details.BaselineValue, 1e-9)
	assert.InDelta(t, 50, res.Details.ExperimentValue, 1e-9)
	assert.Less(t, res.Details.ChangePct, 0.0)
	require.NotNil(t, res.Details.AvgSleepInExperiment)
	assert.InDelta(t, 7.5, *res.Details.AvgSleepInExperiment, 1e-9)
	require.NotNil(t, res.Details.LagDays)
	assert.Equal(t, 1, *res.Details.LagDays)
}

func TestComputeResult_ShortSleepBucket(t *testing.T) {
	series := testingpkg.SeriesOf("2026-01-01", 40, func(i int) testingpkg.Day {
		d := testingpkg.TypicalDay()
		if i >= 37 {
			d.SleepHours = 5
			d.Steps = 6000
		}
		return d
	})
	exp := ActiveExperiment{Kind: KindSleepToSteps, StartDate: series.Date[37], BaselineDays: 30, DurationDays: 3}

	res := ComputeResult(series, exp, domain.DefaultPermissions())
	// Lagged experiment window [38,40) averages 6000; the lagged baseline
	// [8,38) includes the 6000 on day 37 and averages 7933.
	assert.Equal(t, "<6h sleep → -24% steps next day (vs 30d baseline)", res.RubricSentence)
	assert.True(t, res.IsComplete)
}

func TestComputeResult_Generic(t *testing.T) {
	series := testingpkg.SeriesOf("2026-01-01", 40, func(i int) testingpkg.Day {
		d := testingpkg.TypicalDay()
		d.SleepHours = 6
		if i >= 38 {
			d.SleepHours = 7.5
		}
		return d
	})
	exp := ActiveExperiment{Kind: KindGeneric, StartDate: series.Date[38], BaselineDays: 30, DurationDays: 3}

	perms := domain.Permissions{Sleep: true}
	res := ComputeResult(series, exp, perms)

	assert.Equal(t, "Sleep change → +25% sleep vs 30d baseline", res.RubricSentence)
	assert.Equal(t, 2, res.DoneDays)
	assert.True(t, res.Ready)
	assert.False(t, res.IsComplete)
	require.NotNil(t, res.Details.LagDays)
	assert.Equal(t, 0, *res.Details.LagDays)
	require.NotNil(t, res.Details.AvgSleepInExperiment)
	assert.InDelta(t, 7.5, *res.Details.AvgSleepInExperiment, 1e-9)
}

func TestComputeResult_UnknownStartDateFallsBack(t *testing.T) {
	series := testingpkg.SleepSugarSeries("2026-01-01", 40)
	exp := sugarExperiment("1999-01-01")

	res := ComputeResult(series, exp, domain.DefaultPermissions())
	assert.Equal(t, 3, res.DoneDays)
	assert.True(t, res.IsComplete)
}

func TestComputeResult_BaselineIsLagged(t *testing.T) {
	// A spike on day 1 sits inside the same-day baseline [1,11) but outside
	// the next-day baseline [2,12).
	series := testingpkg.SeriesOf("2026-01-01", 14, func(i int) testingpkg.Day {
		d := testingpkg.TypicalDay()
		if i == 1 {
			d.SugarG = 150
		}
		return d
	})
	exp := ActiveExperiment{Kind: KindSleepToSugar, StartDate: series.Date[11], BaselineDays: 10, DurationDays: 3}

	res := ComputeResult(series, exp, domain.DefaultPermissions())

	assert.InDelta(t, 50, res.Details.BaselineValue, 1e-9)
	assert.InDelta(t, 50, res.Details.ExperimentValue, 1e-9)
	assert.Equal(t, "≥6h sleep → +0% sugar next day (vs 10d baseline)", res.RubricSentence)
}

func TestComputeResult_Readiness(t *testing.T) {
	series := testingpkg.SleepSugarSeries("2026-01-01", 92)
	noNutrition := domain.DefaultPermissions()
	noNutrition.Nutrition = false
	noSleep := domain.DefaultPermissions()
	noSleep.Sleep = false

	tests := []struct {
		name     string
		kind     Kind
		startIdx int
		perms    domain.Permissions
		done     int
		ready    bool
	}{
		{"one day elapsed", KindSleepToSugar, 91, domain.DefaultPermissions(), 1, false},
		{"two days elapsed", KindSleepToSugar, 90, domain.DefaultPermissions(), 2, true},
		{"gated after two days", KindSleepToSugar, 90, noNutrition, 2, false},
		{"gated after completion", KindSleepToSugar, 89, noNutrition, 3, false},
		{"gated without sleep", KindSleepToHR, 89, noSleep, 3, false},
		{"generic without nutrition", KindGeneric, 89, noNutrition, 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp := ActiveExperiment{Kind: tt.kind, StartDate: series.Date[tt.startIdx], BaselineDays: 30, DurationDays: 3}
			res := ComputeResult(series, exp, tt.perms)
			assert.Equal(t, tt.done, res.DoneDays)
			assert.Equal(t, tt.ready, res.Ready)
		})
	}
}

func TestComputeResult_UnknownKindIsGeneric(t *testing.T) {
	series := testingpkg.SleepSugarSeries("2026-01-01", 40)
	exp := ActiveExperiment{Kind: "sleep_to_mood", StartDate: series.Date[37], BaselineDays: 30, DurationDays: 3}
	generic := exp
	generic.Kind = KindGeneric

	tests := []struct {
		name  string
		perms domain.Permissions
	}{
		{"all enabled", domain.DefaultPermissions()},
		{"sleep disabled", domain.Permissions{Activity: true, Nutrition: true, Vitals: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ComputeResult(series, exp, tt.perms)
			assert.Equal(t, ComputeResult(series, generic, tt.perms), res)
			assert.Contains(t, res.RubricSentence, "Sleep change →")
		})
	}
}
