package es

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownEventType is returned when decoding an event type that was never
// registered with the codec.
var ErrUnknownEventType = errors.New("unknown event type")

// Envelope is the transport/storage framing for a serialized event. The
// event type travels next to the payload so adapters can route and decode
// without peeking into the payload itself.
type Envelope struct {
	EventType string          `json:"event_type"`
	Data      json.RawMessage `json:"data"`
}

// Codec maps event-type names to factories and (de)serializes events as
// JSON. Serialization is an adapter concern; the log and transport adapters
// share one codec so they agree on the wire shape.
type Codec struct {
	factories map[string]func() Event
}

func NewCodec() *Codec {
	return &Codec{factories: map[string]func() Event{}}
}

// Register wires an event-type name to a factory producing a blank instance
// of the concrete event. Registering the same name twice is a wiring bug.
func (c *Codec) Register(eventType string, factory func() Event) {
	if _, exists := c.factories[eventType]; exists {
		panic("event type already registered: " + eventType)
	}
	c.factories[eventType] = factory
}

func (c *Codec) Marshal(event Event) ([]byte, error) {
	return json.Marshal(event)
}

func (c *Codec) Unmarshal(eventType string, data []byte) (Event, error) {
	factory, ok := c.factories[eventType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEventType, eventType)
	}
	event := factory()
	if err := json.Unmarshal(data, event); err != nil {
		return nil, err
	}
	return event, nil
}

// Pack frames the event into an Envelope for transport.
func (c *Codec) Pack(event Event) ([]byte, error) {
	data, err := c.Marshal(event)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{EventType: event.EventType(), Data: data})
}

// Unpack decodes an Envelope produced by Pack.
func (c *Codec) Unpack(payload []byte) (Event, error) {
	var envelope Envelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, err
	}
	return c.Unmarshal(envelope.EventType, envelope.Data)
}
