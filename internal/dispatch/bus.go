// Package dispatch delivers persisted events to subscribers: an in-process
// bus for single-process wiring and a JetStream publisher for fan-out to
// other services.
package dispatch

import (
	"context"
	"sync"

	"github.com/teamdo/engine/internal/es"
)

// Handler consumes one published event. Handlers must tolerate at-least-once
// delivery.
type Handler func(ctx context.Context, event es.Event) error

type subscriber struct {
	id      int
	handler Handler
}

// Bus is a synchronous in-process dispatcher routing events by their
// concrete type name. Events published by a single save arrive at each
// subscriber in the order they were raised.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string][]subscriber
}

func NewBus() *Bus {
	return &Bus{subs: map[string][]subscriber{}}
}

// Subscribe registers a handler for one event type. The returned
// Subscription stops further delivery when unsubscribed.
func (b *Bus) Subscribe(eventType string, handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.subs[eventType] = append(b.subs[eventType], subscriber{id: id, handler: handler})
	return &Subscription{bus: b, eventType: eventType, id: id}
}

func (b *Bus) Publish(ctx context.Context, event es.Event) error {
	b.mu.RLock()
	subs := make([]subscriber, len(b.subs[event.EventType()]))
	copy(subs, b.subs[event.EventType()])
	b.mu.RUnlock()

	var firstErr error
	for _, s := range subs {
		if err := s.handler(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Subscription is the disposable token returned by Subscribe.
type Subscription struct {
	bus       *Bus
	eventType string
	id        int
	once      sync.Once
}

func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		defer s.bus.mu.Unlock()
		subs := s.bus.subs[s.eventType]
		for i, sub := range subs {
			if sub.id == s.id {
				s.bus.subs[s.eventType] = append(subs[:i], subs[i+1:]...)
				return
			}
		}
	})
}

var _ es.Dispatcher = (*Bus)(nil)
