package storage

import (
	"github.com/aristath/wellness/internal/events"
)

// NotifyingStore emits StorageChanged after every successful write so other
// in-process readers can refresh.
type NotifyingStore struct {
	Store
	events *events.Manager
}

// NewNotifyingStore wraps inner.
func NewNotifyingStore(inner Store, em *events.Manager) *NotifyingStore {
	return &NotifyingStore{Store: inner, events: em}
}

func (n *NotifyingStore) Set(key, value string) error {
	if err := n.Store.Set(key, value); err != nil {
		return err
	}
	n.events.EmitTyped("storage", &events.StorageChangedData{Key: key})
	return nil
}

func (n *NotifyingStore) Delete(key string) error {
	if err := n.Store.Delete(key); err != nil {
		return err
	}
	n.events.EmitTyped("storage", &events.StorageChangedData{Key: key, Deleted: true})
	return nil
}
