package todosink

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler exposes the read model over HTTP.
type Handler struct {
	Repository *Repository
}

func NewHandler(repository *Repository) *Handler {
	return &Handler{Repository: repository}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/api/v1/conversations/{conversationID}/todos", h.handleListTodos)
	return r
}

func (h *Handler) handleListTodos(w http.ResponseWriter, r *http.Request) {
	views, err := h.Repository.ListByConversation(r.Context(), chi.URLParam(r, "conversationID"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if views == nil {
		views = []TodoView{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(views)
}
