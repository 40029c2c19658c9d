// Package domain wires the concrete aggregates' event types together.
package domain

import (
	"github.com/teamdo/engine/internal/domain/account"
	"github.com/teamdo/engine/internal/domain/todo"
	"github.com/teamdo/engine/internal/domain/user"
	"github.com/teamdo/engine/internal/es"
)

// NewCodec returns a codec with every aggregate's events registered, shared
// by the event-log and transport adapters so they agree on the wire shape.
func NewCodec() *es.Codec {
	c := es.NewCodec()
	todo.RegisterEvents(c)
	account.RegisterEvents(c)
	user.RegisterEvents(c)
	return c
}
