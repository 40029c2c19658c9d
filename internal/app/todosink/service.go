package todosink

import (
	"context"
	"errors"

	"github.com/teamdo/engine/internal/es"
	"github.com/teamdo/engine/internal/platform/metrics"
)

var ErrInvalidEventPayload = errors.New("invalid event payload")

var eventsProcessed = metrics.NewCounterVec(metrics.Opts{
	Name: "sink_events_processed_total",
	Help: "Events consumed from the stream, by type and result.",
}, []string{"event_type", "result"})

func init() {
	metrics.Default.MustRegister(eventsProcessed)
}

// Applier is the projection the sink feeds decoded events into.
type Applier interface {
	Apply(ctx context.Context, event es.Event) error
}

// Service decodes event envelopes off the stream and applies them to the
// projection.
type Service struct {
	Projection Applier
	Codec      *es.Codec
}

func NewService(projection Applier, codec *es.Codec) *Service {
	return &Service{Projection: projection, Codec: codec}
}

func (s *Service) Handle(ctx context.Context, payload []byte) error {
	event, err := s.Codec.Unpack(payload)
	if err != nil {
		eventsProcessed.WithLabelValues("unknown", "decode_error").Inc()
		if errors.Is(err, es.ErrUnknownEventType) {
			return err
		}
		return ErrInvalidEventPayload
	}
	if err := s.Projection.Apply(ctx, event); err != nil {
		eventsProcessed.WithLabelValues(event.EventType(), "error").Inc()
		return err
	}
	eventsProcessed.WithLabelValues(event.EventType(), "ok").Inc()
	return nil
}
