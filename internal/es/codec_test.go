package es

import (
	"errors"
	"testing"
	"time"
)

func newTestCodec() *Codec {
	c := NewCodec()
	c.Register("lamp.switched_on", func() Event { return &switchedOn{} })
	c.Register("lamp.switched_off", func() Event { return &switchedOff{} })
	return c
}

func TestCodec_PackUnpackRoundtrip(t *testing.T) {
	c := newTestCodec()

	l := newLamp("lamp-7")
	l.Now = func() time.Time { return time.Date(2026, 2, 9, 22, 0, 0, 0, time.UTC) }
	l.SwitchOn()
	original := l.UncommittedEvents()[0]

	payload, err := c.Pack(original)
	if err != nil {
		t.Fatalf("Pack returned error: %v", err)
	}
	decoded, err := c.Unpack(payload)
	if err != nil {
		t.Fatalf("Unpack returned error: %v", err)
	}

	if decoded.EventType() != original.EventType() {
		t.Fatalf("event type %q, want %q", decoded.EventType(), original.EventType())
	}
	if decoded.EntityID() != "lamp-7" || decoded.OriginalVersion() != 0 {
		t.Fatalf("unexpected decoded identity: %+v", decoded)
	}
	if !decoded.OccurredAt().Equal(original.OccurredAt()) {
		t.Fatalf("timestamp %v, want %v", decoded.OccurredAt(), original.OccurredAt())
	}
}

func TestCodec_UnknownEventType(t *testing.T) {
	c := newTestCodec()
	if _, err := c.Unmarshal("lamp.exploded", []byte(`{}`)); !errors.Is(err, ErrUnknownEventType) {
		t.Fatalf("expected ErrUnknownEventType, got %v", err)
	}
}

func TestCodec_DuplicateRegistrationPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate registration")
		}
	}()
	c := newTestCodec()
	c.Register("lamp.switched_on", func() Event { return &switchedOn{} })
}
