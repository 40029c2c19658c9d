package account

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/teamdo/engine/internal/es"
)

var (
	ErrMissingID         = fmt.Errorf("%w: id is required", es.ErrInvalidArgument)
	ErrMissingTeam       = fmt.Errorf("%w: team_id is required", es.ErrInvalidArgument)
	ErrMissingName       = fmt.Errorf("%w: name is required", es.ErrInvalidArgument)
	ErrInvalidWebhookURL = fmt.Errorf("%w: webhook url must be an absolute http(s) url", es.ErrInvalidArgument)
)

// Account is one team's integration configuration. It is Active only while
// both the webhook URL and the shared-secret token are present; the
// transition is driven by that derived guard, not by an explicit command.
type Account struct {
	es.Root

	TeamID     string
	Name       string
	WebhookURL string
	Token      string

	active bool
}

// New returns a blank instance ready for replay. Command flow uses Create.
func New(id string) *Account {
	a := &Account{}
	a.Init(id, a.applyEvent)
	return a
}

// Create registers a team configuration. A fresh account is not active.
func Create(id, teamID, name string) (*Account, error) {
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

	a := New(id)
	a.Raise(&Created{TeamID: teamID, Name: name})
	return a, nil
}

func (a *Account) Active() bool { return a.active }

func (a *Account) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrMissingName
	}
	if name == a.Name {
		return nil
	}
	a.Raise(&Renamed{Name: name})
	return nil
}

// SetWebhookURL updates the webhook target and re-evaluates activation.
// An empty URL clears the field; a non-empty URL must be absolute http(s).
func (a *Account) SetWebhookURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw != "" {
		parsed, err := url.Parse(raw)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			return ErrInvalidWebhookURL
		}
	}
	if raw == a.WebhookURL {
		return nil
	}
	a.Raise(&WebhookURLSet{URL: raw})
	a.evaluateActivation()
	return nil
}

// SetToken updates the shared-secret token and re-evaluates activation.
// An empty token clears the field.
func (a *Account) SetToken(token string) error {
	token = strings.TrimSpace(token)
	if token == a.Token {
		return nil
	}
	a.Raise(&TokenSet{Token: token})
	a.evaluateActivation()
	return nil
}

// evaluateActivation raises Activated or Deactivated only when the derived
// "fully configured" guard flips the current state.
func (a *Account) evaluateActivation() {
	configured := a.WebhookURL != "" && a.Token != ""
	if configured == a.active {
		return
	}
	if configured {
		a.Raise(&Activated{})
	} else {
		a.Raise(&Deactivated{})
	}
}

func (a *Account) applyEvent(event es.Event) {
	switch e := event.(type) {
	case *Created:
		a.TeamID = e.TeamID
		a.Name = e.Name
	case *Renamed:
		a.Name = e.Name
	case *WebhookURLSet:
		a.WebhookURL = e.URL
	case *TokenSet:
		a.Token = e.Token
	case *Activated:
		a.active = true
	case *Deactivated:
		a.active = false
	}
}
