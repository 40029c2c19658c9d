package dispatch

import (
	"context"

	"github.com/teamdo/engine/internal/es"
	"github.com/teamdo/engine/internal/sharding"
)

// PublishFunc sends a raw payload to a subject. In production it is backed
// by a JetStream context; tests inject a recorder.
type PublishFunc func(subject string, payload []byte) error

// JetStream publishes committed events onto sharded NATS subjects, framed by
// the codec so consumers can decode them without knowing the concrete types
// up front.
type JetStream struct {
	Send  PublishFunc
	Codec *es.Codec
}

func NewJetStream(send PublishFunc, codec *es.Codec) *JetStream {
	return &JetStream{Send: send, Codec: codec}
}

func (d *JetStream) Publish(ctx context.Context, event es.Event) error {
	payload, err := d.Codec.Pack(event)
	if err != nil {
		return err
	}
	return d.Send(sharding.EventSubject(event.EntityID()), payload)
}

var _ es.Dispatcher = (*JetStream)(nil)
