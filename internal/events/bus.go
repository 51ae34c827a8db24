package events

import (
	"sync"
	"time"
)

// Event represents a published event
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
	Module    string                 `json:"module"`
}

// GetTypedData converts Data back into its typed payload, nil if unknown.
func (e *Event) GetTypedData() EventData {
	if e.Data == nil {
		return nil
	}

	switch e.Type {
	case StorageChanged:
		var data StorageChangedData
		if err := convertMapToStruct(e.Data, &data); err == nil {
			return &data
		}
	case ProfileChanged:
		var data ProfileChangedData
		if err := convertMapToStruct(e.Data, &data); err == nil {
			return &data
		}
	case ProfilePurged:
		var data ProfilePurgedData
		if err := convertMapToStruct(e.Data, &data); err == nil {
			return &data
		}
	case ExperimentStarted, ExperimentReset, ExperimentCompleted:
		data := ExperimentData{Type: e.Type}
		if err := convertMapToStruct(e.Data, &data); err == nil {
			return &data
		}
	case ErrorOccurred:
		var data ErrorEventData
		if err := convertMapToStruct(e.Data, &data); err == nil {
			return &data
		}
	}
	return nil
}

// Handler receives published events.
type Handler func(*Event)

type subscription struct {
	id      uint64
	handler Handler
}

// Bus delivers events synchronously, in subscription order, on the
// publishing goroutine. Handlers must not block.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[EventType][]subscription
	now    func() time.Time
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{
		subs: make(map[EventType][]subscription),
		now:  time.Now,
	}
}

// Subscribe registers handler for eventType and returns an id for Unsubscribe.
func (b *Bus) Subscribe(eventType EventType, handler Handler) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.subs[eventType] = append(b.subs[eventType], subscription{id: b.nextID, handler: handler})
	return b.nextID
}

// Unsubscribe removes the subscription with id. Unknown ids are ignored.
func (b *Bus) Unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for t, list := range b.subs {
		for i, s := range list {
			if s.id == id {
				b.subs[t] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	}
}

// Emit publishes an event to the handlers subscribed to eventType.
func (b *Bus) Emit(eventType EventType, module string, data map[string]interface{}) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[eventType]))
	for _, s := range b.subs[eventType] {
		handlers = append(handlers, s.handler)
	}
	b.mu.RUnlock()

	event := &Event{
		Type:      eventType,
		Timestamp: b.now(),
		Data:      data,
		Module:    module,
	}
	for _, h := range handlers {
		h(event)
	}
}
