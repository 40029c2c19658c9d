package todo

import (
	"fmt"
	"strings"

	"github.com/teamdo/engine/internal/es"
)

var (
	ErrMissingID           = fmt.Errorf("%w: id is required", es.ErrInvalidArgument)
	ErrMissingText         = fmt.Errorf("%w: text is required", es.ErrInvalidArgument)
	ErrMissingConversation = fmt.Errorf("%w: conversation_id is required", es.ErrInvalidArgument)
	ErrMissingShortCode    = fmt.Errorf("%w: short_code is required", es.ErrInvalidArgument)
	ErrMissingUser         = fmt.Errorf("%w: user_id is required", es.ErrInvalidArgument)
)

// ClaimedByOtherError is the ownership guard's rejection: the command was
// attempted by a non-owner without force. It carries the current owner so
// the caller can report who holds the item.
type ClaimedByOtherError struct {
	ClaimedByUserID string
}

func (e *ClaimedByOtherError) Error() string {
	return fmt.Sprintf("todo is claimed by user %q", e.ClaimedByUserID)
}

// Todo is a single to-do item inside one conversation. Ownership, done and
// removed are tracked through events only.
type Todo struct {
	es.Root

	TeamID          string
	ConversationID  string
	ShortCode       string
	Text            string
	ClaimedByUserID string

	done    bool
	removed bool
}

// New returns a blank instance ready for replay. Command flow uses Add.
func New(id string) *Todo {
	t := &Todo{}
	t.Init(id, t.applyEvent)
	return t
}

// Add creates a to-do item. Text is trimmed before being stored.
func Add(id, teamID, conversationID, shortCode, text string) (*Todo, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrMissingID
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrMissingText
	}
	if strings.TrimSpace(conversationID) == "" {
		return nil, ErrMissingConversation
	}
	if strings.TrimSpace(shortCode) == "" {
		return nil, ErrMissingShortCode
	}

	t := New(id)
	t.Raise(&Added{
		TeamID:         teamID,
		ConversationID: conversationID,
		ShortCode:      shortCode,
		Text:           text,
	})
	return t, nil
}

func (t *Todo) Done() bool    { return t.done }
func (t *Todo) Removed() bool { return t.removed }

// Claim assigns the item to the acting user. Claiming an item the user
// already owns is a no-op; claiming an item owned by someone else requires
// force, which re-assigns ownership.
func (t *Todo) Claim(userID string, force bool) error {
	if strings.TrimSpace(userID) == "" {
		return ErrMissingUser
	}
	if t.removed {
		return nil
	}
	if t.ClaimedByUserID == userID {
		return nil
	}
	if t.ClaimedByUserID != "" && !force {
		return &ClaimedByOtherError{ClaimedByUserID: t.ClaimedByUserID}
	}
	t.Raise(&Claimed{UserID: userID})
	return nil
}

// Free releases ownership. Guarded: only the owner may free without force.
func (t *Todo) Free(userID string, force bool) error {
	if strings.TrimSpace(userID) == "" {
		return ErrMissingUser
	}
	if t.removed {
		return nil
	}
	if t.ClaimedByUserID == "" {
		return nil
	}
	if t.ClaimedByUserID != userID && !force {
		return &ClaimedByOtherError{ClaimedByUserID: t.ClaimedByUserID}
	}
	t.Raise(&Freed{UserID: userID})
	return nil
}

// Tick marks the item done and drops any claim. Guarded while claimed.
func (t *Todo) Tick(userID string, force bool) error {
	if strings.TrimSpace(userID) == "" {
		return ErrMissingUser
	}
	if t.removed {
		return nil
	}
	if t.done {
		return nil
	}
	if t.ClaimedByUserID != "" && t.ClaimedByUserID != userID && !force {
		return &ClaimedByOtherError{ClaimedByUserID: t.ClaimedByUserID}
	}
	t.Raise(&Ticked{UserID: userID})
	return nil
}

// Untick reverts a done item back to pending. Done items carry no claim, so
// untick is not ownership-guarded.
func (t *Todo) Untick(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrMissingUser
	}
	if t.removed {
		return nil
	}
	if !t.done {
		return nil
	}
	t.Raise(&Unticked{UserID: userID})
	return nil
}

// Remove retires the item. Guarded while claimed; terminal afterwards.
func (t *Todo) Remove(userID string, force bool) error {
	if strings.TrimSpace(userID) == "" {
		return ErrMissingUser
	}
	if t.removed {
		return nil
	}
	if t.ClaimedByUserID != "" && t.ClaimedByUserID != userID && !force {
		return &ClaimedByOtherError{ClaimedByUserID: t.ClaimedByUserID}
	}
	t.Raise(&Removed{UserID: userID})
	return nil
}

func (t *Todo) applyEvent(event es.Event) {
	switch e := event.(type) {
	case *Added:
		t.TeamID = e.TeamID
		t.ConversationID = e.ConversationID
		t.ShortCode = e.ShortCode
		t.Text = e.Text
	case *Claimed:
		t.ClaimedByUserID = e.UserID
	case *Freed:
		t.ClaimedByUserID = ""
	case *Ticked:
		t.done = true
		t.ClaimedByUserID = ""
	case *Unticked:
		t.done = false
	case *Removed:
		t.removed = true
	}
}
