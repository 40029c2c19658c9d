package es

import (
	"context"
	"fmt"
)

// Repository orchestrates load-by-replay and persist-then-publish for one
// concrete aggregate type.
type Repository[T interface {
	Aggregate
	comparable
}] struct {
	Log EventLog
	Bus Dispatcher
	New func(id string) T
}

func NewRepository[T interface {
	Aggregate
	comparable
}](log EventLog, bus Dispatcher, factory func(id string) T) *Repository[T] {
	return &Repository[T]{Log: log, Bus: bus, New: factory}
}

// GetByID replays the entity's full history onto a fresh instance. An entity
// with no events is ErrNotFound rather than an empty aggregate.
func (r *Repository[T]) GetByID(ctx context.Context, id string) (T, error) {
	var zero T
	events, err := r.Log.ReadAll(ctx, id)
	if err != nil {
		return zero, err
	}
	if len(events) == 0 {
		return zero, ErrNotFound
	}
	aggregate := r.New(id)
	if err := aggregate.Replay(events); err != nil {
		return zero, err
	}
	return aggregate, nil
}

// Save appends the aggregate's uncommitted events under an optimistic
// concurrency check, publishes them in order, then clears the buffer. On a
// concurrency conflict the buffer is left intact and the error propagates
// unchanged so the caller can reload and retry.
func (r *Repository[T]) Save(ctx context.Context, aggregate T) error {
	var zero T
	if aggregate == zero {
		return fmt.Errorf("%w: aggregate is nil", ErrInvalidArgument)
	}

	pending := aggregate.UncommittedEvents()
	if len(pending) == 0 {
		return nil
	}

	expectedVersion := pending[0].OriginalVersion()
	if err := r.Log.Append(ctx, aggregate.ID(), expectedVersion, pending); err != nil {
		return err
	}

	// The events are durable from here on: publish failures are reported but
	// must not resurrect the buffer, or a retry would append duplicates.
	var publishErr error
	if r.Bus != nil {
		for _, event := range pending {
			if err := r.Bus.Publish(ctx, event); err != nil && publishErr == nil {
				publishErr = err
			}
		}
	}
	aggregate.ClearUncommittedEvents()
	return publishErr
}
