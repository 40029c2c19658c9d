package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/teamdo/engine/internal/app/todosink"
	"github.com/teamdo/engine/internal/domain"
	"github.com/teamdo/engine/internal/es"
	"github.com/teamdo/engine/internal/platform/dbpool"
	"github.com/teamdo/engine/internal/platform/env"
	"github.com/teamdo/engine/internal/platform/metrics"
	"github.com/teamdo/engine/internal/platform/natsutil"
)

func main() {
	ctx := context.Background()

	natsURL := env.String("NATS_URL", env.DefaultNATSURL)
	pgURL := env.String("DATABASE_URL", env.DefaultDatabaseURL)
	sinkAddr := env.String("TODO_SINK_ADDR", ":9091")

	pool, err := dbpool.New(ctx, pgURL)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	repository := todosink.NewRepository(pool)
	if err := waitForPostgres(ctx, repository, 30*time.Second); err != nil {
		log.Fatal(err)
	}
	service := todosink.NewService(repository, domain.NewCodec())

	client, err := natsutil.ConnectJetStreamWithRetry(natsURL, 20*time.Second)
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()

	sub, err := client.JS.QueueSubscribe("app.event.>", "todo-sink", func(msg *nats.Msg) {
		applyCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := service.Handle(applyCtx, msg.Data); err != nil {
			if errors.Is(err, todosink.ErrInvalidEventPayload) || errors.Is(err, es.ErrUnknownEventType) {
				log.Printf("discarding undecodable event payload: %v", err)
				_ = msg.Term()
				return
			}
			log.Printf("projection update failed: %v", err)
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	}, nats.ManualAck())
	if err != nil {
		log.Fatal(err)
	}

	log.Println("Todo Sink listening on subject:", sub.Subject)

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.DefaultHandler())
	mux.Handle("/", todosink.NewHandler(repository).Router())
	log.Fatal(http.ListenAndServe(sinkAddr, mux))
}

func waitForPostgres(ctx context.Context, repository *todosink.Repository, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		attemptCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		lastErr = repository.Pool.Ping(attemptCtx)
		if lastErr == nil {
			lastErr = repository.EnsureSchema(attemptCtx)
		}
		cancel()

		if lastErr == nil {
			return nil
		}
		log.Printf("waiting for postgres readiness: %v", lastErr)
		time.Sleep(500 * time.Millisecond)
	}
	return lastErr
}
