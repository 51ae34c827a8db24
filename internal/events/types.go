// Package events provides in-process event publication for state changes.
package events

// EventType represents different event types
type EventType string

const (
	// Storage
	StorageChanged EventType = "STORAGE_CHANGED"

	// Profiles and per-profile state
	ProfileChanged     EventType = "PROFILE_CHANGED"
	ProfilePurged      EventType = "PROFILE_PURGED"
	PermissionsChanged EventType = "PERMISSIONS_CHANGED"
	GoalsChanged       EventType = "GOALS_CHANGED"
	SettingsChanged    EventType = "SETTINGS_CHANGED"

	// Experiment lifecycle
	ExperimentStarted   EventType = "EXPERIMENT_STARTED"
	ExperimentReset     EventType = "EXPERIMENT_RESET"
	ExperimentCompleted EventType = "EXPERIMENT_COMPLETED"

	ErrorOccurred EventType = "ERROR_OCCURRED"
)
