package main

import (
	"log"

	"storefront-backend/internal/config"
	"storefront-backend/internal/infrastructure/queue"
)

// asynqScheduler wraps queue.Scheduler for graceful shutdown.
type asynqScheduler struct {
	*queue.Scheduler
}

func setupScheduler(cfg *config.Config) *asynqScheduler {
	scheduler := queue.NewScheduler(cfg.Redis)

	if err := scheduler.RegisterCleanupJobs(); err != nil {
		log.Fatalf("[Scheduler] Failed to register: %v", err)
	}

	go func() {
		log.Println("[Scheduler] Starting...")
		if err := scheduler.Start(); err != nil {
			log.Fatalf("[Scheduler] Failed: %v", err)
		}
	}()

	return &asynqScheduler{Scheduler: scheduler}
}

func (s *asynqScheduler) Shutdown() {
	log.Println("[Scheduler] Shutting down...")
	s.Scheduler.Shutdown()
	log.Println("[Scheduler] Stopped")
}
