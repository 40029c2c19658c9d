package account

import "github.com/teamdo/engine/internal/es"

const (
	EventCreated       = "account.created"
	EventRenamed       = "account.renamed"
	EventWebhookURLSet = "account.webhook_url_set"
	EventTokenSet      = "account.token_set"
	EventActivated     = "account.activated"
	EventDeactivated   = "account.deactivated"
)

// Created records a new team configuration.
type Created struct {
	es.EventModel
	TeamID string `json:"team_id"`
	Name   string `json:"name"`
}

func (*Created) EventType() string { return EventCreated }

type Renamed struct {
	es.EventModel
	Name string `json:"name"`
}

func (*Renamed) EventType() string { return EventRenamed }

// WebhookURLSet changes the webhook target. An empty URL clears the field.
type WebhookURLSet struct {
	es.EventModel
	URL string `json:"url"`
}

func (*WebhookURLSet) EventType() string { return EventWebhookURLSet }

// TokenSet changes the shared-secret token. An empty token clears the field.
type TokenSet struct {
	es.EventModel
	Token string `json:"token"`
}

func (*TokenSet) EventType() string { return EventTokenSet }

// Activated is raised when both webhook URL and token become present.
type Activated struct {
	es.EventModel
}

func (*Activated) EventType() string { return EventActivated }

// Deactivated is raised when a required field is cleared while active.
type Deactivated struct {
	es.EventModel
}

func (*Deactivated) EventType() string { return EventDeactivated }

// RegisterEvents wires this package's event types into a codec.
func RegisterEvents(c *es.Codec) {
	c.Register(EventCreated, func() es.Event { return &Created{} })
	c.Register(EventRenamed, func() es.Event { return &Renamed{} })
	c.Register(EventWebhookURLSet, func() es.Event { return &WebhookURLSet{} })
	c.Register(EventTokenSet, func() es.Event { return &TokenSet{} })
	c.Register(EventActivated, func() es.Event { return &Activated{} })
	c.Register(EventDeactivated, func() es.Event { return &Deactivated{} })
}
