package coordinator

import (
	"sync"

	"tgnvoda/internal/scrapers/tgnvoda"
)

const EventHistory = "tgn_voda_history"

type Event interface {
	Type() string
}

// HistoryEvent carries the result of a history request.
type HistoryEvent struct {
	EntryID string                 `json:"entry_id"`
	Items   []tgnvoda.HistoryEntry `json:"items"`
}

func (HistoryEvent) Type() string {
	return EventHistory
}

// EventBus delivers events synchronously to every subscriber of their type.
type EventBus struct {
	mutex       sync.RWMutex
	subscribers map[string][]func(Event)
}

func NewEventBus() *EventBus {
	return &EventBus{subscribers: map[string][]func(Event){}}
}

func (b *EventBus) Subscribe(eventType string, handler func(Event)) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

func (b *EventBus) Publish(event Event) {
	b.mutex.RLock()
	handlers := b.subscribers[event.Type()]
	b.mutex.RUnlock()

	for _, handle := range handlers {
		handle(event)
	}
}
