package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamdo/engine/internal/domain/todo"
	"github.com/teamdo/engine/internal/es"
)

func history(t *testing.T) []es.Event {
	t.Helper()
	item, err := todo.Add("todo-1", "team-1", "conv-1", "abc123", "buy milk")
	require.NoError(t, err)
	require.NoError(t, item.Claim("user-1", false))
	return item.UncommittedEvents()
}

func TestAppendAndReadAll(t *testing.T) {
	ctx := context.Background()
	log := NewLog()
	events := history(t)

	require.NoError(t, log.Append(ctx, "todo-1", 0, events))

	stored, err := log.ReadAll(ctx, "todo-1")
	require.NoError(t, err)
	require.Len(t, stored, len(events))
	for i, event := range stored {
		assert.Equal(t, i, event.OriginalVersion())
		assert.Equal(t, events[i].EventType(), event.EventType())
	}
}

func TestReadAll_UnknownEntityIsEmpty(t *testing.T) {
	log := NewLog()
	stored, err := log.ReadAll(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestAppend_VersionCollision(t *testing.T) {
	ctx := context.Background()
	log := NewLog()
	events := history(t)

	require.NoError(t, log.Append(ctx, "todo-1", 0, events))

	err := log.Append(ctx, "todo-1", events[0].OriginalVersion(), events)
	require.Error(t, err)
	assert.True(t, es.IsConflict(err))

	var conflict *es.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "todo-1", conflict.EntityID)
	assert.Equal(t, 0, conflict.Version)

	// The failed batch must not have been partially applied.
	stored, err := log.ReadAll(ctx, "todo-1")
	require.NoError(t, err)
	assert.Len(t, stored, len(events))
}

func TestAppend_KeysByEventVersion(t *testing.T) {
	ctx := context.Background()
	log := NewLog()
	events := history(t)

	// The events' own stamped versions decide where rows land, not the
	// caller's expectedVersion.
	require.NoError(t, log.Append(ctx, "todo-1", 5, events))

	stored, err := log.ReadAll(ctx, "todo-1")
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, 0, stored[0].OriginalVersion())
	assert.Equal(t, 1, stored[1].OriginalVersion())

	// Reusing an occupied version conflicts even when the caller claims a
	// fresh expectedVersion.
	err = log.Append(ctx, "todo-1", 2, history(t)[1:])
	require.Error(t, err)
	var conflict *es.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, 1, conflict.Version)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	log := NewLog()
	require.NoError(t, log.Append(ctx, "todo-1", 0, history(t)))

	require.NoError(t, log.Delete(ctx, "todo-1"))

	stored, err := log.ReadAll(ctx, "todo-1")
	require.NoError(t, err)
	assert.Empty(t, stored)
}
