package es

import (
	"errors"
	"testing"
	"time"
)

// lamp is a minimal aggregate used to exercise the base behavior.
type lamp struct {
	Root
	on    bool
	flips int
}

type switchedOn struct {
	EventModel
}

func (*switchedOn) EventType() string { return "lamp.switched_on" }

type switchedOff struct {
	EventModel
}

func (*switchedOff) EventType() string { return "lamp.switched_off" }

func newLamp(id string) *lamp {
	l := &lamp{}
	l.Init(id, l.applyEvent)
	return l
}

func (l *lamp) applyEvent(event Event) {
	switch event.(type) {
	case *switchedOn:
		l.on = true
		l.flips++
	case *switchedOff:
		l.on = false
		l.flips++
	}
}

func (l *lamp) SwitchOn() {
	if l.on {
		return
	}
	l.Raise(&switchedOn{})
}

func (l *lamp) SwitchOff() {
	if !l.on {
		return
	}
	l.Raise(&switchedOff{})
}

func TestRaise_StampsAndBuffers(t *testing.T) {
	now := time.Date(2026, 2, 9, 22, 0, 0, 0, time.UTC)
	l := newLamp("lamp-1")
	l.Now = func() time.Time { return now }

	l.SwitchOn()
	l.SwitchOff()

	if l.Version() != 2 {
		t.Fatalf("expected version 2, got %d", l.Version())
	}
	pending := l.UncommittedEvents()
	if len(pending) != 2 {
		t.Fatalf("expected 2 uncommitted events, got %d", len(pending))
	}
	for i, event := range pending {
		if event.EntityID() != "lamp-1" {
			t.Fatalf("event %d entity id = %q", i, event.EntityID())
		}
		if event.OriginalVersion() != i {
			t.Fatalf("event %d original version = %d, want %d", i, event.OriginalVersion(), i)
		}
		if !event.OccurredAt().Equal(now) {
			t.Fatalf("event %d occurred at %v, want %v", i, event.OccurredAt(), now)
		}
	}
}

func TestRaise_AppliesImmediately(t *testing.T) {
	l := newLamp("lamp-1")
	l.SwitchOn()
	if !l.on {
		t.Fatal("expected lamp to be on right after raising")
	}
}

func TestVersionMonotonicity(t *testing.T) {
	l := newLamp("lamp-1")
	for i := 0; i < 5; i++ {
		l.Raise(&switchedOn{})
	}
	if l.Version() != 5 {
		t.Fatalf("expected version 5 after 5 raises, got %d", l.Version())
	}
}

func TestReplay_RebuildsIdenticalState(t *testing.T) {
	source := newLamp("lamp-1")
	source.SwitchOn()
	source.SwitchOff()
	source.SwitchOn()
	history := source.UncommittedEvents()

	first := newLamp("lamp-1")
	if err := first.Replay(history); err != nil {
		t.Fatalf("Replay returned error: %v", err)
	}
	second := newLamp("lamp-1")
	if err := second.Replay(history); err != nil {
		t.Fatalf("Replay returned error: %v", err)
	}

	if first.on != source.on || first.flips != source.flips {
		t.Fatalf("replayed state %+v differs from source %+v", first, source)
	}
	if first.on != second.on || first.flips != second.flips || first.Version() != second.Version() {
		t.Fatal("two replays of the same history diverged")
	}
	if len(first.UncommittedEvents()) != 0 {
		t.Fatal("replay must not buffer events")
	}
}

func TestReplay_OnDirtyAggregate(t *testing.T) {
	history := []Event{&switchedOn{}}

	replayed := newLamp("lamp-1")
	if err := replayed.Replay(history); err != nil {
		t.Fatalf("first replay failed: %v", err)
	}
	if err := replayed.Replay(history); !errors.Is(err, ErrReplayOnDirtyAggregate) {
		t.Fatalf("expected ErrReplayOnDirtyAggregate, got %v", err)
	}

	mutated := newLamp("lamp-2")
	mutated.SwitchOn()
	if err := mutated.Replay(history); !errors.Is(err, ErrReplayOnDirtyAggregate) {
		t.Fatalf("expected ErrReplayOnDirtyAggregate on mutated instance, got %v", err)
	}
}

func TestClearUncommittedEvents(t *testing.T) {
	l := newLamp("lamp-1")
	l.SwitchOn()
	l.ClearUncommittedEvents()
	if len(l.UncommittedEvents()) != 0 {
		t.Fatal("expected empty buffer after clear")
	}
	if l.Version() != 1 {
		t.Fatalf("clearing the buffer must not touch the version, got %d", l.Version())
	}
}

func TestSameEntity(t *testing.T) {
	a := newLamp("Lamp-1")
	b := newLamp("lamp-1")
	c := newLamp("lamp-2")
	a.SwitchOn()

	if !SameEntity(a, b) {
		t.Fatal("ids differing only in case must compare equal")
	}
	if SameEntity(a, c) {
		t.Fatal("distinct ids must not compare equal")
	}
	if SameEntity(a, nil) {
		t.Fatal("nil is never the same entity")
	}
}
