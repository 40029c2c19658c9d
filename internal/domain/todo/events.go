package todo

import "github.com/teamdo/engine/internal/es"

const (
	EventAdded    = "todo.added"
	EventClaimed  = "todo.claimed"
	EventFreed    = "todo.freed"
	EventTicked   = "todo.ticked"
	EventUnticked = "todo.unticked"
	EventRemoved  = "todo.removed"
)

// Added records the creation of a to-do item.
type Added struct {
	es.EventModel
	TeamID         string `json:"team_id"`
	ConversationID string `json:"conversation_id"`
	ShortCode      string `json:"short_code"`
	Text           string `json:"text"`
}

func (*Added) EventType() string { return EventAdded }

// Claimed assigns ownership of the item to a user.
type Claimed struct {
	es.EventModel
	UserID string `json:"user_id"`
}

func (*Claimed) EventType() string { return EventClaimed }

// Freed releases the item's ownership.
type Freed struct {
	es.EventModel
	UserID string `json:"user_id"`
}

func (*Freed) EventType() string { return EventFreed }

// Ticked marks the item done.
type Ticked struct {
	es.EventModel
	UserID string `json:"user_id"`
}

func (*Ticked) EventType() string { return EventTicked }

// Unticked reverts a done item back to pending.
type Unticked struct {
	es.EventModel
	UserID string `json:"user_id"`
}

func (*Unticked) EventType() string { return EventUnticked }

// Removed retires the item. Removal is terminal for mutation purposes; the
// item stays loadable from its log.
type Removed struct {
	es.EventModel
	UserID string `json:"user_id"`
}

func (*Removed) EventType() string { return EventRemoved }

// RegisterEvents wires this package's event types into a codec.
func RegisterEvents(c *es.Codec) {
	c.Register(EventAdded, func() es.Event { return &Added{} })
	c.Register(EventClaimed, func() es.Event { return &Claimed{} })
	c.Register(EventFreed, func() es.Event { return &Freed{} })
	c.Register(EventTicked, func() es.Event { return &Ticked{} })
	c.Register(EventUnticked, func() es.Event { return &Unticked{} })
	c.Register(EventRemoved, func() es.Event { return &Removed{} })
}
