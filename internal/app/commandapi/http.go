package commandapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/teamdo/engine/internal/domain/todo"
	"github.com/teamdo/engine/internal/es"
)

type Handler struct {
	Service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Post("/api/v1/accounts", h.handleCreateAccount)
	r.Post("/api/v1/users", h.handleCreateUser)

	r.Group(func(authR chi.Router) {
		authR.Use(h.authMiddleware)
		authR.Patch("/api/v1/accounts/{accountID}/name", h.handleRenameAccount)
		authR.Put("/api/v1/accounts/{accountID}/webhook-url", h.handleSetWebhookURL)
		authR.Put("/api/v1/accounts/{accountID}/token", h.handleSetToken)

		authR.Post("/api/v1/todos", h.handleAddTodo)
		authR.Post("/api/v1/todos/{todoID}/claim", h.handleTodoCommand(h.Service.ClaimTodo))
		authR.Post("/api/v1/todos/{todoID}/free", h.handleTodoCommand(h.Service.FreeTodo))
		authR.Post("/api/v1/todos/{todoID}/tick", h.handleTodoCommand(h.Service.TickTodo))
		authR.Post("/api/v1/todos/{todoID}/untick", h.handleUntickTodo)
		authR.Post("/api/v1/todos/{todoID}/remove", h.handleTodoCommand(h.Service.RemoveTodo))
		authR.Delete("/api/v1/todos/{todoID}", h.handleDeleteTodo)
	})

	return r
}

type createAccountRequest struct {
	TeamID string `json:"team_id"`
	Name   string `json:"name"`
}

type renameAccountRequest struct {
	Name string `json:"name"`
}

type webhookURLRequest struct {
	URL string `json:"url"`
}

type tokenRequest struct {
	Token string `json:"token"`
}

type createUserRequest struct {
	TeamID string `json:"team_id"`
	Name   string `json:"name"`
}

type addTodoRequest struct {
	ConversationID string `json:"conversation_id"`
	Text           string `json:"text"`
}

type todoCommandRequest struct {
	Force bool `json:"force"`
}

func (h *Handler) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	resp, err := h.Service.CreateAccount(r.Context(), req.TeamID, req.Name)
	if err != nil {
		h.writeCommandError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	resp, err := h.Service.CreateUser(r.Context(), req.TeamID, req.Name)
	if err != nil {
		h.writeCommandError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) handleRenameAccount(w http.ResponseWriter, r *http.Request) {
	var req renameAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	resp, err := h.Service.RenameAccount(r.Context(), chi.URLParam(r, "accountID"), req.Name)
	if err != nil {
		h.writeCommandError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleSetWebhookURL(w http.ResponseWriter, r *http.Request) {
	var req webhookURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	resp, err := h.Service.SetAccountWebhookURL(r.Context(), chi.URLParam(r, "accountID"), req.URL)
	if err != nil {
		h.writeCommandError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleSetToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	resp, err := h.Service.SetAccountToken(r.Context(), chi.URLParam(r, "accountID"), req.Token)
	if err != nil {
		h.writeCommandError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleAddTodo(w http.ResponseWriter, r *http.Request) {
	var req addTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	actor := actorFromContext(r.Context())
	resp, err := h.Service.AddTodo(r.Context(), actor, req.ConversationID, req.Text)
	if err != nil {
		h.writeCommandError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, resp)
}

type todoCommand func(ctx context.Context, actor Actor, todoID string, force bool) (TodoResponse, error)

func (h *Handler) handleTodoCommand(command todoCommand) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req todoCommandRequest
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				h.writeError(w, http.StatusBadRequest, "invalid JSON payload")
				return
			}
		}
		actor := actorFromContext(r.Context())
		resp, err := command(r.Context(), actor, chi.URLParam(r, "todoID"), req.Force)
		if err != nil {
			h.writeCommandError(w, err)
			return
		}
		h.writeJSON(w, http.StatusOK, resp)
	}
}

func (h *Handler) handleUntickTodo(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	resp, err := h.Service.UntickTodo(r.Context(), actor, chi.URLParam(r, "todoID"))
	if err != nil {
		h.writeCommandError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleDeleteTodo(w http.ResponseWriter, r *http.Request) {
	var req todoCommandRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid JSON payload")
			return
		}
	}
	actor := actorFromContext(r.Context())
	if err := h.Service.DeleteTodo(r.Context(), actor, chi.URLParam(r, "todoID"), req.Force); err != nil {
		h.writeCommandError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeCommandError maps core/domain errors onto HTTP statuses. Ownership
// and version conflicts both surface as 409 so callers know to retry or
// force deliberately.
func (h *Handler) writeCommandError(w http.ResponseWriter, err error) {
	var claimed *todo.ClaimedByOtherError
	switch {
	case errors.As(err, &claimed):
		h.writeJSON(w, http.StatusConflict, map[string]string{
			"error":              err.Error(),
			"claimed_by_user_id": claimed.ClaimedByUserID,
		})
	case es.IsConflict(err):
		h.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, es.ErrInvalidArgument):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, es.ErrNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	default:
		h.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

type actorContextKey struct{}

func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		userID := strings.TrimSpace(r.Header.Get("X-User-ID"))
		if token == "" || userID == "" {
			h.writeError(w, http.StatusUnauthorized, "missing credentials")
			return
		}
		actor, err := h.Service.Authenticate(r.Context(), userID, token)
		if err != nil {
			if errors.Is(err, ErrInvalidCredentials) {
				h.writeError(w, http.StatusUnauthorized, err.Error())
				return
			}
			h.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		next.ServeHTTP(w, r.WithContext(contextWithActor(r.Context(), actor)))
	})
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

func contextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func actorFromContext(ctx context.Context) Actor {
	actor, _ := ctx.Value(actorContextKey{}).(Actor)
	return actor
}
