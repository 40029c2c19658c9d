package user

import (
	"fmt"
	"strings"

	"github.com/teamdo/engine/internal/es"
)

var (
	ErrMissingID    = fmt.Errorf("%w: id is required", es.ErrInvalidArgument)
	ErrMissingTeam  = fmt.Errorf("%w: team_id is required", es.ErrInvalidArgument)
	ErrMissingName  = fmt.Errorf("%w: name is required", es.ErrInvalidArgument)
	ErrMissingToken = fmt.Errorf("%w: api token is required", es.ErrInvalidArgument)
)

// User is a user identity belonging to one team. Unlike Account, a user is
// activated unconditionally at creation and never re-evaluated.
type User struct {
	es.Root

	TeamID   string
	Name     string
	APIToken string

	active bool
}

// New returns a blank instance ready for replay. Command flow uses Create.
func New(id string) *User {
	u := &User{}
	u.Init(id, u.applyEvent)
	return u
}

// Create registers a user and activates it immediately.
func Create(id, teamID, name, apiToken string) (*User, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrMissingID
	}
	if strings.TrimSpace(teamID) == "" {
		return nil, ErrMissingTeam
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrMissingName
	}
	if strings.TrimSpace(apiToken) == "" {
		return nil, ErrMissingToken
	}

	u := New(id)
	u.Raise(&Created{TeamID: teamID, Name: name, APIToken: apiToken})
	u.Raise(&Activated{})
	return u, nil
}

func (u *User) Active() bool { return u.active }

func (u *User) applyEvent(event es.Event) {
	switch e := event.(type) {
	case *Created:
		u.TeamID = e.TeamID
		u.Name = e.Name
		u.APIToken = e.APIToken
	case *Activated:
		u.active = true
	}
}
