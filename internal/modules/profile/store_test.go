package profile

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/wellness/internal/domain"
	"github.com/aristath/wellness/internal/modules/experiment"
	"github.com/aristath/wellness/internal/storage"
	testingpkg "github.com/aristath/wellness/internal/testing"
)

func newStore(t *testing.T) (*Store, storage.Store) {
	t.Helper()
	kv := storage.NewSQLiteStore(testingpkg.NewTestDB(t).Conn(), zerolog.Nop())
	return NewStore(kv, zerolog.Nop()), kv
}

func TestProfiles_CreatesDefault(t *testing.T) {
	s, kv := newStore(t)

	profiles, err := s.Profiles()
	require.NoError(t, err)
	assert.Equal(t, []Profile{{ID: "default", Name: "Default"}}, profiles)

	active, ok, err := kv.Get(ActiveProfileKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "default", active)
}

func TestCreateProfile(t *testing.T) {
	s, _ := newStore(t)

	p, err := s.CreateProfile("  Alex ")
	require.NoError(t, err)
	assert.Regexp(t, `^p_[0-9a-f-]{36}$`, p.ID)
	assert.Equal(t, "Alex", p.Name)

	profiles, err := s.Profiles()
	require.NoError(t, err)
	assert.Len(t, profiles, 2)

	active, err := s.ActiveProfileID()
	require.NoError(t, err)
	assert.Equal(t, p.ID, active)

	_, err = s.CreateProfile(" ")
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestActiveProfileID_FallsBackToFirst(t *testing.T) {
	s, kv := newStore(t)
	require.NoError(t, kv.Set(ActiveProfileKey, "gone"))

	active, err := s.ActiveProfileID()
	require.NoError(t, err)
	assert.Equal(t, "default", active)

	assert.ErrorIs(t, s.SetActiveProfile("gone"), ErrUnknownProfile)
}

func TestPermissions_MergeAndFallback(t *testing.T) {
	tests := []struct {
		name   string
		stored map[string]string
		want   domain.Permissions
	}{
		{
			name: "defaults when nothing stored",
			want: domain.DefaultPermissions(),
		},
		{
			name:   "partial scoped merged over defaults",
			stored: map[string]string{"wellness_permissions_v1:default": `{"vitals":false}`},
			want:   domain.Permissions{Sleep: true, Activity: true, Nutrition: true},
		},
		{
			name:   "legacy fallback",
			stored: map[string]string{"wellness_permissions_v1": `{"nutrition":false}`},
			want:   domain.Permissions{Sleep: true, Activity: true, Vitals: true},
		},
		{
			name: "corrupt scoped falls through to legacy",
			stored: map[string]string{
				"wellness_permissions_v1:default": `{not json`,
				"wellness_permissions_v1":         `{"sleep":false}`,
			},
			want: domain.Permissions{Activity: true, Nutrition: true, Vitals: true},
		},
		{
			name:   "corrupt everywhere gives defaults",
			stored: map[string]string{"wellness_permissions_v1": `[`},
			want:   domain.DefaultPermissions(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, kv := newStore(t)
			for k, v := range tt.stored {
				require.NoError(t, kv.Set(k, v))
			}
			assert.Equal(t, tt.want, s.Permissions("default"))
		})
	}
}

func TestSavePermissions_Mirrors(t *testing.T) {
	s, kv := newStore(t)
	p := domain.Permissions{Sleep: true}
	require.NoError(t, s.SavePermissions("p_1", p))

	assert.Equal(t, p, s.Permissions("p_1"))

	legacy, ok, err := kv.Get(PermissionsKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"sleep":true,"activity":false,"nutrition":false,"vitals":false}`, legacy)
}

func TestSettings_Defaults(t *testing.T) {
	s, kv := newStore(t)
	assert.Equal(t, DefaultSettings(), s.Settings("default"))

	require.NoError(t, kv.Set("wellness_settings_v1:default", `{"highContrast":true}`))
	got := s.Settings("default")
	assert.True(t, got.HighContrast)
	assert.True(t, got.LocalOnly)
	assert.Equal(t, "balanced", got.InsightSensitivity)
}

func TestGoals_RoundTrip(t *testing.T) {
	s, _ := newStore(t)
	assert.False(t, s.Goals("default").HasAny())

	steps := 8000.0
	require.NoError(t, s.SaveGoals("default", domain.Goals{StepsTarget: &steps}))

	g := s.Goals("default")
	require.NotNil(t, g.StepsTarget)
	assert.Equal(t, 8000.0, *g.StepsTarget)
	assert.Nil(t, g.SugarMaxG)
}

func TestSimulatorPrefs(t *testing.T) {
	s, kv := newStore(t)
	assert.Equal(t, DefaultSimulatorPrefs(), s.SimulatorPrefs("default"))

	require.NoError(t, kv.Set("wellness_simulator_v1:default", `{"x":"steps","scenario":10000}`))
	prefs := s.SimulatorPrefs("default")
	assert.Equal(t, domain.Steps, prefs.X)
	assert.Equal(t, domain.SugarG, prefs.Y)
	assert.Equal(t, 10000.0, prefs.Scenario)
	assert.Equal(t, 1, prefs.Lag)
}

func TestActiveExperiment_Lifecycle(t *testing.T) {
	s, kv := newStore(t)
	assert.Nil(t, s.LoadActiveExperiment("default"))

	exp := experiment.ActiveExperiment{
		ID:           "exp_1",
		Kind:         experiment.KindSleepToSteps,
		StartedAtISO: "2026-03-31T08:00:00Z",
		StartDate:    "2026-03-31",
		BaselineDays: 30,
		DurationDays: 3,
		Label:        "Sleep → Steps (next day)",
	}
	require.NoError(t, s.SaveActiveExperiment("default", exp))

	got := s.LoadActiveExperiment("default")
	require.NotNil(t, got)
	assert.Equal(t, exp, *got)

	// Another profile without its own experiment sees the legacy mirror.
	legacy := s.LoadActiveExperiment("p_other")
	require.NotNil(t, legacy)
	assert.Equal(t, "exp_1", legacy.ID)

	require.NoError(t, s.ClearActiveExperiment("default"))
	assert.Nil(t, s.LoadActiveExperiment("default"))
	_, ok, err := kv.Get(ExperimentKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPurge(t *testing.T) {
	s, kv := newStore(t)
	require.NoError(t, s.SaveSettings("default", DefaultSettings()))
	require.NoError(t, s.SavePermissions("default", domain.DefaultPermissions()))
	require.NoError(t, s.SaveSimulatorPrefs("default", DefaultSimulatorPrefs()))

	removed, err := s.Purge("default")
	require.NoError(t, err)
	assert.Equal(t, 4, removed)

	keys, err := kv.Keys("wellness_")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"wellness_simulator_v1:default"}, keys)
}
