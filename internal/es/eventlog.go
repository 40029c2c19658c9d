package es

import "context"

// EventLog is append-only storage keyed by entity id. Each event is stored
// under (entityID, originalVersion); a version collision on append is the
// optimistic-concurrency conflict signal.
type EventLog interface {
	// Append durably stores the events for the entity as one all-or-nothing
	// operation. The first event's row key is expectedVersion; a collision on
	// any row fails the whole call with a ConflictError.
	Append(ctx context.Context, entityID string, expectedVersion int, events []Event) error

	// ReadAll returns every event for the entity ordered by version
	// ascending. An unknown entity yields an empty slice, not an error.
	ReadAll(ctx context.Context, entityID string) ([]Event, error)

	// Delete removes every stored event for the entity. Used for hard
	// deletion, not part of normal command flow.
	Delete(ctx context.Context, entityID string) error
}
