// Package profile persists everything scoped to a user profile: the profile
// list, the active profile, permissions, goals, settings, What-If simulator
// preferences and the active experiment.
package profile

import (
	"errors"

	"github.com/aristath/wellness/internal/domain"
)

// Storage keys. Per-profile keys append ":" + profile id; the bare key is the
// legacy unscoped location read as a fallback and mirrored on save.
const (
	ProfilesKey      = "wellness_profiles_v1"
	ActiveProfileKey = "wellness_active_profile_v1"

	SettingsKey    = "wellness_settings_v1"
	PermissionsKey = "wellness_permissions_v1"
	GoalsKey       = "wellness_goals_v1"
	SimulatorKey   = "wellness_simulator_v1"
	ExperimentKey  = "wellness_experiment_v1"
)

// DefaultProfileID is the profile created on first use.
const DefaultProfileID = "default"

// ErrUnknownProfile is returned when activating a profile that does not exist.
var ErrUnknownProfile = errors.New("unknown profile")

// ErrEmptyName is returned when creating a profile without a name.
var ErrEmptyName = errors.New("profile name is required")

// Scoped returns the per-profile key for base.
func Scoped(base, profileID string) string {
	return base + ":" + profileID
}

// Profile is one entry of the profile list.
type Profile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Settings holds privacy, insight and accessibility preferences.
type Settings struct {
	LocalOnly          bool   `json:"localOnly"`
	PersistDemoData    bool   `json:"persistDemoData"`
	InsightSensitivity string `json:"insightSensitivity"`
	ShowExplanations   bool   `json:"showExplanations"`
	HighContrast       bool   `json:"highContrast"`
	ReduceMotion       bool   `json:"reduceMotion"`
}

// DefaultSettings returns the settings of a fresh profile.
func DefaultSettings() Settings {
	return Settings{
		LocalOnly:          true,
		InsightSensitivity: "balanced",
		ShowExplanations:   true,
	}
}

// SimulatorPrefs is the last What-If configuration used by a profile.
type SimulatorPrefs struct {
	X            domain.MetricKey `json:"x"`
	Y            domain.MetricKey `json:"y"`
	Lag          int              `json:"lag"`
	Scenario     float64          `json:"scenario"`
	BaselineDays int              `json:"baselineDays"`
}

// DefaultSimulatorPrefs asks what 6h of sleep does to next-day sugar.
func DefaultSimulatorPrefs() SimulatorPrefs {
	return SimulatorPrefs{
		X:            domain.SleepHours,
		Y:            domain.SugarG,
		Lag:          1,
		Scenario:     6,
		BaselineDays: 30,
	}
}
