package commandapi

import (
	"context"
	"errors"
	"strings"

	"github.com/nats-io/nuid"
	"github.com/teamdo/engine/internal/domain/account"
	"github.com/teamdo/engine/internal/domain/todo"
	"github.com/teamdo/engine/internal/domain/user"
	"github.com/teamdo/engine/internal/es"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// shortCodeLength is the size of the human-readable code shown next to a
// to-do inside its conversation.
const shortCodeLength = 6

// Service is the command layer: it loads aggregates through their
// repositories, invokes behavior, and saves the resulting events.
type Service struct {
	Todos    *es.Repository[*todo.Todo]
	Accounts *es.Repository[*account.Account]
	Users    *es.Repository[*user.User]
	Log      es.EventLog
	NewID    func() string
}

func NewService(
	todos *es.Repository[*todo.Todo],
	accounts *es.Repository[*account.Account],
	users *es.Repository[*user.User],
	log es.EventLog,
) *Service {
	return &Service{
		Todos:    todos,
		Accounts: accounts,
		Users:    users,
		Log:      log,
		NewID:    nuid.Next,
	}
}

// Actor is the acting user's context, supplied by the caller on every
// command. The core never derives it from ambient state.
type Actor struct {
	UserID string
	TeamID string
}

type AccountResponse struct {
	ID         string `json:"id"`
	TeamID     string `json:"team_id"`
	Name       string `json:"name"`
	WebhookURL string `json:"webhook_url"`
	Active     bool   `json:"active"`
}

type UserResponse struct {
	ID     string `json:"id"`
	TeamID string `json:"team_id"`
	Name   string `json:"name"`
	// APIToken is returned exactly once, at creation. Only its bcrypt hash
	// is stored.
	APIToken string `json:"api_token,omitempty"`
}

type TodoResponse struct {
	ID              string `json:"id"`
	ConversationID  string `json:"conversation_id"`
	ShortCode       string `json:"short_code"`
	Text            string `json:"text"`
	ClaimedByUserID string `json:"claimed_by_user_id,omitempty"`
	Done            bool   `json:"done"`
	Removed         bool   `json:"removed"`
}

func accountView(a *account.Account) AccountResponse {
	return AccountResponse{
		ID:         a.ID(),
		TeamID:     a.TeamID,
		Name:       a.Name,
		WebhookURL: a.WebhookURL,
		Active:     a.Active(),
	}
}

func todoView(t *todo.Todo) TodoResponse {
	return TodoResponse{
		ID:              t.ID(),
		ConversationID:  t.ConversationID,
		ShortCode:       t.ShortCode,
		Text:            t.Text,
		ClaimedByUserID: t.ClaimedByUserID,
		Done:            t.Done(),
		Removed:         t.Removed(),
	}
}

func (s *Service) CreateAccount(ctx context.Context, teamID, name string) (AccountResponse, error) {
	a, err := account.Create(s.NewID(), teamID, name)
	if err != nil {
		return AccountResponse{}, err
	}
	if err := s.Accounts.Save(ctx, a); err != nil {
		return AccountResponse{}, err
	}
	return accountView(a), nil
}

func (s *Service) RenameAccount(ctx context.Context, accountID, name string) (AccountResponse, error) {
	return s.updateAccount(ctx, accountID, func(a *account.Account) error {
		return a.Rename(name)
	})
}

func (s *Service) SetAccountWebhookURL(ctx context.Context, accountID, rawURL string) (AccountResponse, error) {
	return s.updateAccount(ctx, accountID, func(a *account.Account) error {
		return a.SetWebhookURL(rawURL)
	})
}

func (s *Service) SetAccountToken(ctx context.Context, accountID, token string) (AccountResponse, error) {
	return s.updateAccount(ctx, accountID, func(a *account.Account) error {
		return a.SetToken(token)
	})
}

func (s *Service) updateAccount(ctx context.Context, accountID string, mutate func(*account.Account) error) (AccountResponse, error) {
	a, err := s.Accounts.GetByID(ctx, accountID)
	if err != nil {
		return AccountResponse{}, err
	}
	if err := mutate(a); err != nil {
		return AccountResponse{}, err
	}
	if err := s.Accounts.Save(ctx, a); err != nil {
		return AccountResponse{}, err
	}
	return accountView(a), nil
}

// CreateUser registers a user and issues its API token. The plaintext token
// is returned once; the Created event carries only the bcrypt hash.
func (s *Service) CreateUser(ctx context.Context, teamID, name string) (UserResponse, error) {
	token := s.NewID() + "." + s.NewID()
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return UserResponse{}, err
	}

	u, err := user.Create(s.NewID(), teamID, name, string(hash))
	if err != nil {
		return UserResponse{}, err
	}
	if err := s.Users.Save(ctx, u); err != nil {
		return UserResponse{}, err
	}
	return UserResponse{ID: u.ID(), TeamID: u.TeamID, Name: u.Name, APIToken: token}, nil
}

// Authenticate resolves the acting user from an id and API token.
func (s *Service) Authenticate(ctx context.Context, userID, token string) (Actor, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(token) == "" {
		return Actor{}, ErrInvalidCredentials
	}
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, es.ErrNotFound) {
			return Actor{}, ErrInvalidCredentials
		}
		return Actor{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.APIToken), []byte(token)); err != nil {
		return Actor{}, ErrInvalidCredentials
	}
	return Actor{UserID: u.ID(), TeamID: u.TeamID}, nil
}

// AddTodo creates a to-do item with a generated id and short code. Short
// codes rely on the single-writer creation path for uniqueness within a
// conversation; the projection carries a unique index as a backstop.
func (s *Service) AddTodo(ctx context.Context, actor Actor, conversationID, text string) (TodoResponse, error) {
	t, err := todo.Add(s.NewID(), actor.TeamID, conversationID, s.newShortCode(), text)
	if err != nil {
		return TodoResponse{}, err
	}
	if err := s.Todos.Save(ctx, t); err != nil {
		return TodoResponse{}, err
	}
	return todoView(t), nil
}

func (s *Service) ClaimTodo(ctx context.Context, actor Actor, todoID string, force bool) (TodoResponse, error) {
	return s.updateTodo(ctx, todoID, func(t *todo.Todo) error {
		return t.Claim(actor.UserID, force)
	})
}

func (s *Service) FreeTodo(ctx context.Context, actor Actor, todoID string, force bool) (TodoResponse, error) {
	return s.updateTodo(ctx, todoID, func(t *todo.Todo) error {
		return t.Free(actor.UserID, force)
	})
}

func (s *Service) TickTodo(ctx context.Context, actor Actor, todoID string, force bool) (TodoResponse, error) {
	return s.updateTodo(ctx, todoID, func(t *todo.Todo) error {
		return t.Tick(actor.UserID, force)
	})
}

func (s *Service) UntickTodo(ctx context.Context, actor Actor, todoID string) (TodoResponse, error) {
	return s.updateTodo(ctx, todoID, func(t *todo.Todo) error {
		return t.Untick(actor.UserID)
	})
}

func (s *Service) RemoveTodo(ctx context.Context, actor Actor, todoID string, force bool) (TodoResponse, error) {
	return s.updateTodo(ctx, todoID, func(t *todo.Todo) error {
		return t.Remove(actor.UserID, force)
	})
}

// DeleteTodo erases the item's event log entirely. This is the hard-delete
// escape hatch, not part of normal command flow. A claimed item is only
// deletable by its owner unless forced, same as Remove.
func (s *Service) DeleteTodo(ctx context.Context, actor Actor, todoID string, force bool) error {
	t, err := s.Todos.GetByID(ctx, todoID)
	if err != nil {
		return err
	}
	if t.ClaimedByUserID != "" && t.ClaimedByUserID != actor.UserID && !force {
		return &todo.ClaimedByOtherError{ClaimedByUserID: t.ClaimedByUserID}
	}
	return s.Log.Delete(ctx, todoID)
}

func (s *Service) updateTodo(ctx context.Context, todoID string, mutate func(*todo.Todo) error) (TodoResponse, error) {
	t, err := s.Todos.GetByID(ctx, todoID)
	if err != nil {
		return TodoResponse{}, err
	}
	if err := mutate(t); err != nil {
		return TodoResponse{}, err
	}
	if err := s.Todos.Save(ctx, t); err != nil {
		return TodoResponse{}, err
	}
	return todoView(t), nil
}

// newShortCode derives the code from the tail of an id. A nuid's leading
// characters are a per-process prefix that stays constant between rotations;
// only the tail changes per call.
func (s *Service) newShortCode() string {
	id := s.NewID()
	if len(id) > shortCodeLength {
		id = id[len(id)-shortCodeLength:]
	}
	return id
}
