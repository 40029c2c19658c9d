package todosink

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/teamdo/engine/internal/domain/todo"
	"github.com/teamdo/engine/internal/es"
)

const createAppliedEventsTableSQL = `
CREATE TABLE IF NOT EXISTS applied_events (
  entity_id text NOT NULL,
  version integer NOT NULL,
  applied_at timestamptz NOT NULL DEFAULT now(),
  PRIMARY KEY (entity_id, version)
)`

const createTodosTableSQL = `
CREATE TABLE IF NOT EXISTS todos (
  todo_id text PRIMARY KEY,
  team_id text NOT NULL,
  conversation_id text NOT NULL,
  short_code text NOT NULL,
  text text NOT NULL,
  claimed_by_user_id text NOT NULL DEFAULT '',
  done boolean NOT NULL DEFAULT false,
  removed boolean NOT NULL DEFAULT false,
  created_at timestamptz NOT NULL,
  updated_at timestamptz NOT NULL
)`

// Short codes are only unique among live items of one conversation. The
// index is the detection backstop for the single-writer creation assumption.
const createShortCodeIndexSQL = `
CREATE UNIQUE INDEX IF NOT EXISTS todos_conversation_short_code
ON todos (conversation_id, short_code)
WHERE NOT removed`

const markAppliedSQL = `
INSERT INTO applied_events (entity_id, version)
VALUES ($1, $2)
ON CONFLICT (entity_id, version) DO NOTHING
`

const insertTodoSQL = `
INSERT INTO todos (
  todo_id, team_id, conversation_id, short_code, text, created_at, updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $6)
ON CONFLICT (todo_id) DO NOTHING
`

const setClaimSQL = `
UPDATE todos SET claimed_by_user_id = $2, updated_at = $3 WHERE todo_id = $1
`

const setDoneSQL = `
UPDATE todos SET done = $2, claimed_by_user_id = '', updated_at = $3 WHERE todo_id = $1
`

const setUndoneSQL = `
UPDATE todos SET done = false, updated_at = $2 WHERE todo_id = $1
`

const setRemovedSQL = `
UPDATE todos SET removed = true, updated_at = $2 WHERE todo_id = $1
`

const listByConversationSQL = `
SELECT todo_id, team_id, conversation_id, short_code, text, claimed_by_user_id, done
FROM todos
WHERE conversation_id = $1 AND NOT removed
ORDER BY created_at ASC
`

// TodoView is one row of the read model.
type TodoView struct {
	TodoID          string `json:"todo_id"`
	TeamID          string `json:"team_id"`
	ConversationID  string `json:"conversation_id"`
	ShortCode       string `json:"short_code"`
	Text            string `json:"text"`
	ClaimedByUserID string `json:"claimed_by_user_id,omitempty"`
	Done            bool   `json:"done"`
}

type Repository struct {
	Pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{Pool: pool}
}

func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.Pool.Exec(ctx, createAppliedEventsTableSQL); err != nil {
		return err
	}
	if _, err := r.Pool.Exec(ctx, createTodosTableSQL); err != nil {
		return err
	}
	if _, err := r.Pool.Exec(ctx, createShortCodeIndexSQL); err != nil {
		return err
	}
	return nil
}

// Apply folds one event into the projection. The applied_events marker makes
// redelivered events a no-op, so at-least-once transports are safe.
func (r *Repository) Apply(ctx context.Context, event es.Event) error {
	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, markAppliedSQL, event.EntityID(), event.OriginalVersion())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Already applied on a previous delivery.
		return tx.Commit(ctx)
	}

	switch e := event.(type) {
	case *todo.Added:
		_, err = tx.Exec(ctx, insertTodoSQL,
			e.EntityID(), e.TeamID, e.ConversationID, e.ShortCode, e.Text, e.OccurredAt())
	case *todo.Claimed:
		_, err = tx.Exec(ctx, setClaimSQL, e.EntityID(), e.UserID, e.OccurredAt())
	case *todo.Freed:
		_, err = tx.Exec(ctx, setClaimSQL, e.EntityID(), "", e.OccurredAt())
	case *todo.Ticked:
		_, err = tx.Exec(ctx, setDoneSQL, e.EntityID(), true, e.OccurredAt())
	case *todo.Unticked:
		_, err = tx.Exec(ctx, setUndoneSQL, e.EntityID(), e.OccurredAt())
	case *todo.Removed:
		_, err = tx.Exec(ctx, setRemovedSQL, e.EntityID(), e.OccurredAt())
	default:
		// Events of other aggregates flow on the same stream; nothing to
		// project for them here.
	}
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *Repository) ListByConversation(ctx context.Context, conversationID string) ([]TodoView, error) {
	rows, err := r.Pool.Query(ctx, listByConversationSQL, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []TodoView
	for rows.Next() {
		var v TodoView
		if err := rows.Scan(&v.TodoID, &v.TeamID, &v.ConversationID, &v.ShortCode, &v.Text, &v.ClaimedByUserID, &v.Done); err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}
