package todosink

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamdo/engine/internal/domain"
	"github.com/teamdo/engine/internal/domain/todo"
	"github.com/teamdo/engine/internal/es"
)

type fakeProjection struct {
	applied []es.Event
	err     error
}

func (p *fakeProjection) Apply(_ context.Context, event es.Event) error {
	if p.err != nil {
		return p.err
	}
	p.applied = append(p.applied, event)
	return nil
}

func TestHandle_AppliesDecodedEvent(t *testing.T) {
	codec := domain.NewCodec()
	projection := &fakeProjection{}
	svc := NewService(projection, codec)

	added := &todo.Added{
		TeamID:         "team-1",
		ConversationID: "conv-1",
		ShortCode:      "abc123",
		Text:           "buy milk",
	}
	added.ID = "todo-1"
	added.Version = 1
	payload, err := codec.Pack(added)
	require.NoError(t, err)

	require.NoError(t, svc.Handle(context.Background(), payload))

	require.Len(t, projection.applied, 1)
	got, ok := projection.applied[0].(*todo.Added)
	require.True(t, ok)
	assert.Equal(t, "todo-1", got.EntityID())
	assert.Equal(t, "buy milk", got.Text)
}

func TestHandle_UnknownEventType(t *testing.T) {
	projection := &fakeProjection{}
	svc := NewService(projection, domain.NewCodec())

	err := svc.Handle(context.Background(), []byte(`{"event_type":"mystery.event","data":{}}`))
	assert.ErrorIs(t, err, es.ErrUnknownEventType)
	assert.Empty(t, projection.applied)
}

func TestHandle_MalformedPayload(t *testing.T) {
	projection := &fakeProjection{}
	svc := NewService(projection, domain.NewCodec())

	err := svc.Handle(context.Background(), []byte(`not json`))
	assert.ErrorIs(t, err, ErrInvalidEventPayload)
	assert.Empty(t, projection.applied)
}

func TestHandle_ProjectionErrorPropagates(t *testing.T) {
	boom := errors.New("db down")
	projection := &fakeProjection{err: boom}
	svc := NewService(projection, domain.NewCodec())

	added := &todo.Added{TeamID: "team-1", ConversationID: "conv-1", ShortCode: "abc123", Text: "x"}
	added.ID = "todo-1"
	payload, err := domain.NewCodec().Pack(added)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Handle(context.Background(), payload), boom)
}
