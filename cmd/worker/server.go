package main

import (
	"context"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"storefront-backend/internal/config"
	"storefront-backend/internal/shared"
)

// asynqServer wraps asynq.Server for graceful shutdown.
type asynqServer struct {
	*asynq.Server
}

func setupAsynqServer(cfg *config.Config, handlers *HandlerRegistry) *asynqServer {
	mux := asynq.NewServeMux()
	handlers.RegisterHandlers(mux)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Host,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Queues: map[string]int{
				shared.QueueProduct: 10,
				shared.QueueDefault: 10,
				shared.QueueCart:    5,
				shared.QueueCoupon:  5,
			},
			Concurrency: 10,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Printf("[Asynq] Task failed - Type: %s, Error: %v", task.Type(), err)
			}),
		},
	)

	go func() {
		log.Println("[Worker] Starting...")
		if err := srv.Run(mux); err != nil {
			log.Fatalf("[Worker] Failed: %v", err)
		}
	}()

	return &asynqServer{Server: srv}
}

// Shutdown waits for in-flight tasks, up to 30s.
func (s *asynqServer) Shutdown() {
	done := make(chan struct{})
	go func() {
		s.Server.Shutdown()
		close(done)
	}()

	select {
	case <-done:
		log.Println("[Worker] Gracefully stopped")
	case <-time.After(30 * time.Second):
		log.Println("[Worker] Shutdown timeout exceeded")
	}
}
