package auction

import (
	"context"
	"log/slog"
	"time"

	"github.com/openlot/openlot/openlot/database/repositories"
)

const sweepInterval = 15 * time.Second

// Scheduler drives the periodic expiry sweep. The manager does the actual
// settling; the scheduler only keeps time. It also piggybacks session
// cleanup on the same ticker.
type Scheduler struct {
	manager  *Manager
	users    repositories.UserRepository
	ticker   *time.Ticker
	shutdown chan struct{}
}

func NewScheduler(manager *Manager, users repositories.UserRepository) *Scheduler {
	return &Scheduler{
		manager:  manager,
		users:    users,
		ticker:   time.NewTicker(sweepInterval),
		shutdown: make(chan struct{}),
	}
}

func (s *Scheduler) Start() {
	go s.run()
	slog.Info("Auction scheduler started",
		slog.Duration("sweep_interval", sweepInterval))
}

func (s *Scheduler) run() {
	defer s.ticker.Stop()

	for {
		select {
		case <-s.ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

			if err := s.manager.FinalizeExpired(ctx); err != nil {
				slog.Error("Failed to finalize expired auctions",
					slog.Any("error", err))
			}

			if _, err := s.users.DeleteExpiredSessions(ctx); err != nil {
				slog.Error("Failed to delete expired sessions",
					slog.Any("error", err))
			}

			cancel()
		case <-s.shutdown:
			return
		}
	}
}

// Shutdown stops the sweep loop. Safe to call once.
func (s *Scheduler) Shutdown() {
	close(s.shutdown)
	s.ticker.Stop()
	slog.Info("Auction scheduler shutdown completed")
}
