package events

import (
	"sync"

	"github.com/jscyril/musicvfs/api"
)

// allEvents lists the event types SubscribeAll registers for
var allEvents = []api.EventType{
	api.EventJumped,
	api.EventQueueToggled,
	api.EventCloseOnJumpToggled,
	api.EventCancelled,
}

// EventBus handles event distribution using channels
type EventBus struct {
	subscribers map[api.EventType][]chan api.SessionEvent
	closed      bool
	mu          sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[api.EventType][]chan api.SessionEvent),
	}
}

// Subscribe returns a channel for receiving events of the specified type
func (b *EventBus) Subscribe(eventType api.EventType) <-chan api.SessionEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan api.SessionEvent, 10)
	if b.closed {
		close(ch)
		return ch
	}
	b.subscribers[eventType] = append(b.subscribers[eventType], ch)
	return ch
}

// SubscribeAll returns a channel for receiving all event types
func (b *EventBus) SubscribeAll() <-chan api.SessionEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan api.SessionEvent, 20)
	if b.closed {
		close(ch)
		return ch
	}
	for _, eventType := range allEvents {
		b.subscribers[eventType] = append(b.subscribers[eventType], ch)
	}
	return ch
}

// Publish broadcasts an event to all subscribers of that event type.
// Subscribers whose buffer is full miss the event.
func (b *EventBus) Publish(event api.SessionEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers[event.Type] {
		select {
		case ch <- event:
		default:
		}
	}
}

// Unsubscribe removes a subscriber channel and closes it
func (b *EventBus) Unsubscribe(ch <-chan api.SessionEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var found chan api.SessionEvent
	for eventType, subs := range b.subscribers {
		for i, sub := range subs {
			if sub == ch {
				found = sub
				b.subscribers[eventType] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
	}
	if found != nil {
		close(found)
	}
}

// Close closes all subscriber channels
func (b *EventBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	// A SubscribeAll channel appears under every type
	closed := make(map[chan api.SessionEvent]bool)
	for _, subs := range b.subscribers {
		for _, ch := range subs {
			if !closed[ch] {
				close(ch)
				closed[ch] = true
			}
		}
	}
	b.subscribers = make(map[api.EventType][]chan api.SessionEvent)
	b.closed = true
}
