package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"roombooking/internal/repository"
	"roombooking/internal/sweepgate"
)

// Sweeper cancels reserved bookings whose grace window has passed. It is
// driven by incoming requests through MaybeSweep and optionally by cron.
type Sweeper struct {
	Repo    repository.BookingStore
	Gate    sweepgate.Gate
	Arbiter *SlotArbiter
	logger  *zap.Logger
}

func NewSweeper(repo repository.BookingStore, gate sweepgate.Gate, arbiter *SlotArbiter, logger *zap.Logger) *Sweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweeper{Repo: repo, Gate: gate, Arbiter: arbiter, logger: logger}
}

// MaybeSweep runs a sweep when the gate says one is due and reports whether
// it ran.
func (s *Sweeper) MaybeSweep(ctx context.Context) (bool, error) {
	now := s.Arbiter.Clock.Now()
	due, err := s.Gate.Acquire(ctx, now)
	if err != nil {
		return false, fmt.Errorf("sweep gate: %w", err)
	}
	if !due {
		return false, nil
	}
	if _, err := s.Sweep(ctx, now); err != nil {
		return true, err
	}
	return true, nil
}

// Sweep cancels every reserved booking that was last updated outside the
// grace window at now.
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.Repo.CancelStaleReservations(ctx, s.Arbiter.StaleBefore(now), now.Unix())
	if err != nil {
		return 0, fmt.Errorf("sweep: failed to cancel stale reservations: %w", err)
	}
	if n > 0 {
		s.logger.Info("sweep cancelled stale reservations", zap.Int64("count", n))
	} else {
		s.logger.Debug("sweep found no stale reservations")
	}
	return n, nil
}
