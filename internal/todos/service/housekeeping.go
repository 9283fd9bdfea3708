package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/AD0791/graphql-todos-backend/internal/todos/store"
)

// HousekeepingService periodically drops refresh tokens that are revoked or
// past their expiry so the table does not grow without bound.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// NewHousekeepingService defaults a non-positive interval to one hour.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}

	return &HousekeepingService{
		Store:    st,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the worker. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until an in-flight sweep has finished. It must follow Start;
// later calls are no-ops.
func (s *HousekeepingService) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		<-s.doneCh
		s.Logger.Info("housekeeping service stopped")
	})
}

// Done is closed once the worker has exited.
func (s *HousekeepingService) Done() <-chan struct{} {
	return s.doneCh
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Sweep(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Sweep(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Sweep runs one cleanup pass and returns the number of rows removed.
func (s *HousekeepingService) Sweep(ctx context.Context) int64 {
	n, err := s.Store.RefreshTokens().DeleteStaleRefreshTokens(ctx, time.Now())
	if err != nil {
		s.Logger.Error("failed to delete stale refresh tokens", "error", err)
		return 0
	}
	s.Logger.Debug("housekeeping sweep completed", "refresh_tokens_deleted", n)
	return n
}
