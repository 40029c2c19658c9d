package es

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument marks command input that fails validation before
	// any event is created.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound is returned when an entity has no events in the log.
	ErrNotFound = errors.New("entity not found")

	// ErrReplayOnDirtyAggregate is a programming error: Replay was called on
	// an instance that already has applied events.
	ErrReplayOnDirtyAggregate = errors.New("replay on dirty aggregate")
)

// ConflictError is the optimistic-concurrency signal raised by an event log
// when an appended event's version already exists for the entity.
type ConflictError struct {
	EntityID string
	Version  int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("concurrency conflict: version %d already exists for entity %q", e.Version, e.EntityID)
}

// IsConflict reports whether err is (or wraps) a ConflictError.
func IsConflict(err error) bool {
	var conflict *ConflictError
	return errors.As(err, &conflict)
}
