// Package postgres implements the event log on PostgreSQL. Events are rows
// keyed by (entity_id, version); the primary key is the optimistic
// concurrency check.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/teamdo/engine/internal/es"
)

const createEventsTableSQL = `
CREATE TABLE IF NOT EXISTS entity_events (
  entity_id text NOT NULL,
  version integer NOT NULL,
  event_type text NOT NULL,
  payload jsonb NOT NULL,
  occurred_at timestamptz NOT NULL,
  inserted_at timestamptz NOT NULL DEFAULT now(),
  PRIMARY KEY (entity_id, version)
)`

const insertEventSQL = `
INSERT INTO entity_events (entity_id, version, event_type, payload, occurred_at)
VALUES ($1, $2, $3, $4, $5)
`

const readAllSQL = `
SELECT event_type, payload
FROM entity_events
WHERE entity_id = $1
ORDER BY version ASC
`

const deleteAllSQL = `
DELETE FROM entity_events WHERE entity_id = $1
`

// uniqueViolation is the PostgreSQL SQLSTATE for a primary-key collision.
const uniqueViolation = "23505"

// maxBatchInserts bounds one pgx batch round-trip. The surrounding
// transaction keeps the whole logical append atomic regardless of how many
// batches it takes.
const maxBatchInserts = 100

type Log struct {
	Pool  *pgxpool.Pool
	Codec *es.Codec
}

func NewLog(pool *pgxpool.Pool, codec *es.Codec) *Log {
	return &Log{Pool: pool, Codec: codec}
}

func (l *Log) EnsureSchema(ctx context.Context) error {
	_, err := l.Pool.Exec(ctx, createEventsTableSQL)
	return err
}

func (l *Log) Append(ctx context.Context, entityID string, expectedVersion int, events []es.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := l.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for start := 0; start < len(events); start += maxBatchInserts {
		end := start + maxBatchInserts
		if end > len(events) {
			end = len(events)
		}

		batch := &pgx.Batch{}
		for _, event := range events[start:end] {
			payload, err := l.Codec.Marshal(event)
			if err != nil {
				return err
			}
			batch.Queue(insertEventSQL,
				entityID,
				event.OriginalVersion(),
				event.EventType(),
				payload,
				event.OccurredAt(),
			)
		}

		if err := l.execBatch(ctx, tx, batch, entityID, events[start:end]); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (l *Log) execBatch(ctx context.Context, tx pgx.Tx, batch *pgx.Batch, entityID string, events []es.Event) error {
	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for _, event := range events {
		if _, err := results.Exec(); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return &es.ConflictError{EntityID: entityID, Version: event.OriginalVersion()}
			}
			return err
		}
	}
	return nil
}

func (l *Log) ReadAll(ctx context.Context, entityID string) ([]es.Event, error) {
	rows, err := l.Pool.Query(ctx, readAllSQL, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []es.Event
	for rows.Next() {
		var eventType string
		var payload []byte
		if err := rows.Scan(&eventType, &payload); err != nil {
			return nil, err
		}
		event, err := l.Codec.Unmarshal(eventType, payload)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func (l *Log) Delete(ctx context.Context, entityID string) error {
	_, err := l.Pool.Exec(ctx, deleteAllSQL, entityID)
	return err
}

var _ es.EventLog = (*Log)(nil)
