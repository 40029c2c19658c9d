package es

import (
	"strings"
	"time"
)

// Aggregate is an event-sourced entity whose state changes only through
// events it has raised or replayed.
type Aggregate interface {
	ID() string
	Version() int
	Replay(events []Event) error
	UncommittedEvents() []Event
	ClearUncommittedEvents()
}

// Applier mutates the concrete aggregate's state in response to one event.
// It must be a pure state transition: no I/O and no raising of new events.
type Applier func(Event)

// Root is the embeddable base for concrete aggregates. It tracks identity,
// version and the buffer of not-yet-persisted events. A Root instance is not
// safe for concurrent use; callers must not share one across goroutines.
type Root struct {
	// Now returns the timestamp stamped onto raised events. Tests override it.
	Now func() time.Time

	id      string
	version int
	pending []Event
	apply   Applier
}

// Init wires the concrete type's applier into the base. Concrete
// constructors call it before raising or replaying anything.
func (r *Root) Init(id string, apply Applier) {
	r.id = id
	r.apply = apply
	if r.Now == nil {
		r.Now = func() time.Time { return time.Now().UTC() }
	}
}

func (r *Root) ID() string   { return r.id }
func (r *Root) Version() int { return r.version }

// Replay rebuilds state from historic events. It is permitted only once, on
// a fresh instance: version equals the count of events ever applied, so a
// non-zero version means the instance is already hydrated or mutated.
func (r *Root) Replay(events []Event) error {
	if r.version > 0 {
		return ErrReplayOnDirtyAggregate
	}
	for _, event := range events {
		r.apply(event)
		r.version++
	}
	return nil
}

// Raise stamps the event with the aggregate's id, the current version and
// the current time, applies it immediately, and buffers it for persistence.
func (r *Root) Raise(event Event) {
	event.stamp(r.id, r.version, r.Now())
	r.apply(event)
	r.version++
	r.pending = append(r.pending, event)
}

func (r *Root) UncommittedEvents() []Event { return r.pending }

func (r *Root) ClearUncommittedEvents() { r.pending = nil }

// SameEntity reports whether two aggregates are the same logical entity.
// Identity is the id alone, compared case-insensitively.
func SameEntity(a, b Aggregate) bool {
	if a == nil || b == nil {
		return false
	}
	return strings.EqualFold(a.ID(), b.ID())
}
