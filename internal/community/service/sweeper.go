package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/mioNacs/SITCoders-sub000/internal/community/store"
	"github.com/mioNacs/SITCoders-sub000/pkg/clockx"
)

// Sweeper periodically purges abandoned signups: accounts that never
// verified their email within the grace period, together with their codes,
// plus any expired codes and expired bounded suspensions. It is pure
// background maintenance with no caller-facing contract.
type Sweeper struct {
	Store       store.Store
	Suspensions *SuspensionService
	Logger      *slog.Logger
	Clock       clockx.Clock
	Interval    time.Duration
	GracePeriod time.Duration

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewSweeper creates a sweeper. Zero interval or grace period fall back to
// five minutes each.
func NewSweeper(st store.Store, suspensions *SuspensionService, logger *slog.Logger, clock clockx.Clock, interval, gracePeriod time.Duration) *Sweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if gracePeriod <= 0 {
		gracePeriod = 5 * time.Minute
	}

	return &Sweeper{
		Store:       st,
		Suspensions: suspensions,
		Logger:      logger,
		Clock:       clock,
		Interval:    interval,
		GracePeriod: gracePeriod,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// Start begins the background worker. Non-blocking; call Stop to shut down.
func (s *Sweeper) Start() {
	go s.run()
	s.Logger.Info("stale account sweeper started",
		"interval", s.Interval,
		"grace_period", s.GracePeriod,
	)
}

// Stop gracefully shuts down the worker, blocking until any in-progress
// sweep finishes. The single worker goroutine guarantees sweeps never
// overlap.
func (s *Sweeper) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("stale account sweeper stopped")
}

func (s *Sweeper) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Sweep immediately on startup
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

// Sweep performs one pass. Each step is independent; failures are logged
// and never stop the others or crash the process. Exported so tests can run
// a sweep synchronously instead of waiting on the ticker.
func (s *Sweeper) Sweep(ctx context.Context) {
	now := s.Clock.Now()
	s.Logger.Debug("starting sweep")

	cutoff := now.Add(-s.GracePeriod)
	if n, err := s.Store.Accounts().DeleteUnverifiedCreatedBefore(ctx, cutoff); err != nil {
		s.Logger.Error("failed to delete stale unverified accounts", "error", err)
	} else if n > 0 {
		s.Logger.Info("deleted stale unverified accounts", "count", n)
	}

	if n, err := s.Store.Codes().DeleteExpiredCodes(ctx, now); err != nil {
		s.Logger.Error("failed to delete expired codes", "error", err)
	} else if n > 0 {
		s.Logger.Debug("deleted expired codes", "count", n)
	}

	if n, err := s.Suspensions.SweepExpired(ctx); err != nil {
		s.Logger.Error("failed to clear expired suspensions", "error", err)
	} else if n > 0 {
		s.Logger.Info("cleared expired suspensions", "count", n)
	}

	s.Logger.Debug("sweep completed")
}
