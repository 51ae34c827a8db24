package events

import "encoding/json"

// EventData is implemented by every typed event payload.
type EventData interface {
	EventType() EventType
}

// StorageChangedData names the key that was written or removed.
type StorageChangedData struct {
	Key     string `json:"key"`
	Deleted bool   `json:"deleted,omitempty"`
}

// EventType returns the event type for StorageChangedData
func (d *StorageChangedData) EventType() EventType {
	return StorageChanged
}

// ProfileChangedData carries the newly active profile.
type ProfileChangedData struct {
	ProfileID string `json:"profile_id"`
}

// EventType returns the event type for ProfileChangedData
func (d *ProfileChangedData) EventType() EventType {
	return ProfileChanged
}

// ProfilePurgedData carries the profile whose keys were removed.
type ProfilePurgedData struct {
	ProfileID   string `json:"profile_id"`
	KeysRemoved int    `json:"keys_removed"`
}

// EventType returns the event type for ProfilePurgedData
func (d *ProfilePurgedData) EventType() EventType {
	return ProfilePurged
}

// ExperimentData describes an experiment lifecycle transition.
type ExperimentData struct {
	Type         EventType `json:"-"`
	ProfileID    string    `json:"profile_id"`
	ExperimentID string    `json:"experiment_id"`
	Kind         string    `json:"kind,omitempty"`
	DoneDays     int       `json:"done_days,omitempty"`
}

// EventType returns the lifecycle event this payload belongs to.
func (d *ExperimentData) EventType() EventType {
	return d.Type
}

// ErrorEventData contains data for ErrorOccurred events
type ErrorEventData struct {
	Error   string                 `json:"error"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// EventType returns the event type for ErrorEventData
func (d *ErrorEventData) EventType() EventType {
	return ErrorOccurred
}

// convertEventDataToMap converts typed EventData to the map carried on the bus.
func convertEventDataToMap(data EventData) map[string]interface{} {
	if data == nil {
		return nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

// convertMapToStruct decodes an event map into a typed payload.
func convertMapToStruct(m map[string]interface{}, v interface{}) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}
