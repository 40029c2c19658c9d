// Package memory provides an in-memory event log for tests and
// single-process runs.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/teamdo/engine/internal/es"
)

// Log stores events per entity, keyed by each event's own version, the same
// contract the Postgres log enforces with its primary key. Unlike aggregates,
// the log is shared across callers and therefore locks internally.
type Log struct {
	mu      sync.Mutex
	streams map[string]map[int]es.Event
}

func NewLog() *Log {
	return &Log{streams: map[string]map[int]es.Event{}}
}

func (l *Log) Append(ctx context.Context, entityID string, expectedVersion int, events []es.Event) error {
	if len(events) == 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	stream := l.streams[entityID]
	// A version collision on any row fails the whole batch before anything
	// is stored, which keeps the append all-or-nothing.
	for _, event := range events {
		if _, taken := stream[event.OriginalVersion()]; taken {
			return &es.ConflictError{EntityID: entityID, Version: event.OriginalVersion()}
		}
	}
	if stream == nil {
		stream = map[int]es.Event{}
		l.streams[entityID] = stream
	}
	for _, event := range events {
		stream[event.OriginalVersion()] = event
	}
	return nil
}

func (l *Log) ReadAll(ctx context.Context, entityID string) ([]es.Event, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	stream := l.streams[entityID]
	out := make([]es.Event, 0, len(stream))
	for _, event := range stream {
		out = append(out, event)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].OriginalVersion() < out[j].OriginalVersion()
	})
	return out, nil
}

func (l *Log) Delete(ctx context.Context, entityID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.streams, entityID)
	return nil
}

var _ es.EventLog = (*Log)(nil)
