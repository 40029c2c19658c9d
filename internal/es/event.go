package es

import "time"

// Event is an immutable fact about one entity. It carries the entity's
// identifier, the entity's version before the event was applied, and the
// time the event was raised. Concrete events embed EventModel for these
// shared fields and add their own payload on top.
type Event interface {
	EntityID() string
	OriginalVersion() int
	OccurredAt() time.Time
	EventType() string

	stamp(entityID string, originalVersion int, occurredAt time.Time)
}

// EventModel is the embeddable base for concrete events. The stamp method is
// unexported so only types embedding EventModel satisfy Event, which keeps
// event construction under the aggregate's control.
type EventModel struct {
	ID      string    `json:"entity_id"`
	Version int       `json:"original_version"`
	At      time.Time `json:"occurred_at"`
}

func (m *EventModel) EntityID() string      { return m.ID }
func (m *EventModel) OriginalVersion() int  { return m.Version }
func (m *EventModel) OccurredAt() time.Time { return m.At }

func (m *EventModel) stamp(entityID string, originalVersion int, occurredAt time.Time) {
	m.ID = entityID
	m.Version = originalVersion
	m.At = occurredAt
}
