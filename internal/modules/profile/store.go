package profile

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/wellness/internal/domain"
	"github.com/aristath/wellness/internal/modules/experiment"
	"github.com/aristath/wellness/internal/storage"
)

// Store reads and writes profile-scoped JSON documents. Reads never fail:
// missing or corrupt documents fall back to defaults and are logged.
type Store struct {
	kv  storage.Store
	log zerolog.Logger
}

// NewStore creates a profile store over kv.
func NewStore(kv storage.Store, log zerolog.Logger) *Store {
	return &Store{
		kv:  kv,
		log: log.With().Str("repository", "profile").Logger(),
	}
}

// decode unmarshals the document at key into v, which already holds the
// defaults, so absent fields keep their default value.
func (s *Store) decode(key string, v any) bool {
	raw, ok, err := s.kv.Get(key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Failed to read key")
		return false
	}
	if !ok || raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Ignoring corrupt stored value")
		return false
	}
	return true
}

// decodeScoped tries the profile key, then the legacy key.
func decodeScoped[T any](s *Store, base, profileID string, defaults T) T {
	v := defaults
	if s.decode(Scoped(base, profileID), &v) {
		return v
	}
	v = defaults
	if s.decode(base, &v) {
		return v
	}
	return defaults
}

func (s *Store) encode(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.kv.Set(key, string(raw))
}

// saveMirrored writes the profile key and the legacy key.
func (s *Store) saveMirrored(base, profileID string, v any) error {
	if err := s.encode(Scoped(base, profileID), v); err != nil {
		return err
	}
	return s.encode(base, v)
}

// Profiles returns the profile list, creating the default profile on first use.
func (s *Store) Profiles() ([]Profile, error) {
	var profiles []Profile
	if s.decode(ProfilesKey, &profiles) && len(profiles) > 0 {
		return profiles, nil
	}

	profiles = []Profile{{ID: DefaultProfileID, Name: "Default"}}
	if err := s.encode(ProfilesKey, profiles); err != nil {
		return nil, err
	}
	if err := s.kv.Set(ActiveProfileKey, DefaultProfileID); err != nil {
		return nil, err
	}
	return profiles, nil
}

// CreateProfile appends a profile with a fresh id and makes it active.
func (s *Store) CreateProfile(name string) (Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Profile{}, ErrEmptyName
	}
	profiles, err := s.Profiles()
	if err != nil {
		return Profile{}, err
	}

	p := Profile{ID: "p_" + uuid.NewString(), Name: name}
	if err := s.encode(ProfilesKey, append(profiles, p)); err != nil {
		return Profile{}, err
	}
	if err := s.kv.Set(ActiveProfileKey, p.ID); err != nil {
		return Profile{}, err
	}
	s.log.Info().Str("profile_id", p.ID).Msg("Profile created")
	return p, nil
}

// ActiveProfileID returns the stored active profile if it still exists,
// otherwise the first profile.
func (s *Store) ActiveProfileID() (string, error) {
	profiles, err := s.Profiles()
	if err != nil {
		return "", err
	}
	active, ok, err := s.kv.Get(ActiveProfileKey)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to read active profile")
	}
	if ok {
		for _, p := range profiles {
			if p.ID == active {
				return active, nil
			}
		}
	}

	fallback := profiles[0].ID
	if err := s.kv.Set(ActiveProfileKey, fallback); err != nil {
		return "", err
	}
	return fallback, nil
}

// SetActiveProfile switches the active profile.
func (s *Store) SetActiveProfile(id string) error {
	profiles, err := s.Profiles()
	if err != nil {
		return err
	}
	for _, p := range profiles {
		if p.ID == id {
			return s.kv.Set(ActiveProfileKey, id)
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownProfile, id)
}

// Permissions returns the profile's permissions merged over the defaults.
func (s *Store) Permissions(profileID string) domain.Permissions {
	return decodeScoped(s, PermissionsKey, profileID, domain.DefaultPermissions())
}

// SavePermissions stores p for the profile.
func (s *Store) SavePermissions(profileID string, p domain.Permissions) error {
	return s.saveMirrored(PermissionsKey, profileID, p)
}

// Goals returns the profile's goals; unset goals stay nil.
func (s *Store) Goals(profileID string) domain.Goals {
	return decodeScoped(s, GoalsKey, profileID, domain.Goals{})
}

// SaveGoals stores g for the profile.
func (s *Store) SaveGoals(profileID string, g domain.Goals) error {
	return s.saveMirrored(GoalsKey, profileID, g)
}

// Settings returns the profile's settings merged over the defaults.
func (s *Store) Settings(profileID string) Settings {
	return decodeScoped(s, SettingsKey, profileID, DefaultSettings())
}

// SaveSettings stores st for the profile.
func (s *Store) SaveSettings(profileID string, st Settings) error {
	return s.saveMirrored(SettingsKey, profileID, st)
}

// SimulatorPrefs returns the profile's What-If preferences. They have no
// legacy location.
func (s *Store) SimulatorPrefs(profileID string) SimulatorPrefs {
	prefs := DefaultSimulatorPrefs()
	if s.decode(Scoped(SimulatorKey, profileID), &prefs) {
		return prefs
	}
	return DefaultSimulatorPrefs()
}

// SaveSimulatorPrefs stores prefs for the profile.
func (s *Store) SaveSimulatorPrefs(profileID string, prefs SimulatorPrefs) error {
	return s.encode(Scoped(SimulatorKey, profileID), prefs)
}

// LoadActiveExperiment returns the profile's experiment, nil if there is none.
func (s *Store) LoadActiveExperiment(profileID string) *experiment.ActiveExperiment {
	for _, key := range []string{Scoped(ExperimentKey, profileID), ExperimentKey} {
		var exp experiment.ActiveExperiment
		if s.decode(key, &exp) && exp.ID != "" {
			return &exp
		}
	}
	return nil
}

// SaveActiveExperiment replaces the profile's experiment.
func (s *Store) SaveActiveExperiment(profileID string, exp experiment.ActiveExperiment) error {
	return s.saveMirrored(ExperimentKey, profileID, exp)
}

// ClearActiveExperiment removes the profile's experiment and the legacy copy.
func (s *Store) ClearActiveExperiment(profileID string) error {
	if err := s.kv.Delete(Scoped(ExperimentKey, profileID)); err != nil {
		return err
	}
	return s.kv.Delete(ExperimentKey)
}

// Purge removes the profile's settings, permissions and goals together with
// their legacy copies, and returns how many keys existed.
func (s *Store) Purge(profileID string) (int, error) {
	var keys []string
	for _, base := range []string{SettingsKey, PermissionsKey, GoalsKey} {
		keys = append(keys, Scoped(base, profileID), base)
	}

	removed := 0
	for _, key := range keys {
		if _, ok, err := s.kv.Get(key); err == nil && ok {
			removed++
		}
		if err := s.kv.Delete(key); err != nil {
			return removed, fmt.Errorf("failed to purge %s: %w", key, err)
		}
	}
	s.log.Info().Str("profile_id", profileID).Int("keys_removed", removed).Msg("Profile data purged")
	return removed, nil
}
