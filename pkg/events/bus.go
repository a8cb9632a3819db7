package events

import (
	"sync"

	"github.com/jscyril/golang_lipsync_avatar/api"
)

// EventBus handles transport event distribution using channels.
//
// Position updates are best effort and dropped when a subscriber is behind.
// Lifecycle events (ready, playing, paused, seeked, ended, error) are always
// delivered unless the bus is closed, because missing one would leave the
// animation driver in the wrong state.
type EventBus struct {
	subscribers map[api.EventType][]chan api.TransportEvent
	mu          sync.RWMutex
	done        chan struct{}
	closeOnce   sync.Once
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[api.EventType][]chan api.TransportEvent),
		done:        make(chan struct{}),
	}
}

// Subscribe returns a channel for receiving events of the specified types
func (b *EventBus) Subscribe(eventTypes ...api.EventType) <-chan api.TransportEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan api.TransportEvent, 32)
	for _, eventType := range eventTypes {
		b.subscribers[eventType] = append(b.subscribers[eventType], ch)
	}
	return ch
}

// SubscribeAll returns a channel for receiving all event types
func (b *EventBus) SubscribeAll() <-chan api.TransportEvent {
	return b.Subscribe(api.AllEventTypes...)
}

// Publish broadcasts an event to all subscribers of that event type
func (b *EventBus) Publish(event api.TransportEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers[event.Type] {
		if event.Type == api.EventPositionUpdate {
			select {
			case ch <- event:
			default:
				// Subscriber behind, the next update supersedes this one
			}
			continue
		}
		select {
		case ch <- event:
		case <-b.done:
			return
		}
	}
}

// Unsubscribe removes a subscriber channel
func (b *EventBus) Unsubscribe(ch <-chan api.TransportEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for eventType, subs := range b.subscribers {
		for i, sub := range subs {
			if sub == ch {
				b.subscribers[eventType] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
	}
}

// Close closes all subscriber channels
func (b *EventBus) Close() {
	b.closeOnce.Do(func() { close(b.done) })

	b.mu.Lock()
	defer b.mu.Unlock()

	// Track closed channels to avoid closing the same channel twice
	closed := make(map[chan api.TransportEvent]bool)

	for _, subs := range b.subscribers {
		for _, ch := range subs {
			if !closed[ch] {
				close(ch)
				closed[ch] = true
			}
		}
	}
	b.subscribers = make(map[api.EventType][]chan api.TransportEvent)
}
