package user

import "github.com/teamdo/engine/internal/es"

const (
	EventCreated   = "user.created"
	EventActivated = "user.activated"
)

// Created records a new user identity. APIToken is whatever credential the
// caller chooses to store; the command layer stores a bcrypt hash.
type Created struct {
	es.EventModel
	TeamID   string `json:"team_id"`
	Name     string `json:"name"`
	APIToken string `json:"api_token"`
}

func (*Created) EventType() string { return EventCreated }

// Activated follows Created immediately; users activate unconditionally.
type Activated struct {
	es.EventModel
}

func (*Activated) EventType() string { return EventActivated }

// RegisterEvents wires this package's event types into a codec.
func RegisterEvents(c *es.Codec) {
	c.Register(EventCreated, func() es.Event { return &Created{} })
	c.Register(EventActivated, func() es.Event { return &Activated{} })
}
