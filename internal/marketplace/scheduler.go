package marketplace

import (
	"context"
	"log"
	"time"
)

// Scheduler runs periodic maintenance for the marketplace.
type Scheduler struct {
	service  Service
	interval time.Duration
}

func NewScheduler(service Service, interval time.Duration) *Scheduler {
	return &Scheduler{service: service, interval: interval}
}

// Start refreshes regional demand once, then every interval until ctx ends.
func (s *Scheduler) Start(ctx context.Context) {
	if err := s.service.RefreshDemand(ctx); err != nil {
		log.Printf("Initial demand refresh failed: %v", err)
	}
	go s.runEvery(ctx, s.interval, s.service.RefreshDemand)
}

func (s *Scheduler) runEvery(ctx context.Context, interval time.Duration, task func(context.Context) error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := task(ctx); err != nil {
				log.Printf("Scheduled task failed: %v", err)
			}
		case <-ctx.Done():
			return
		}
	}
}
