// Package worker runs the periodic removal of expired verification codes,
// either as an in-process ticker or through an asynq scheduler.
package worker

import (
	"context"
	"log/slog"
	"time"
)

const DefaultInterval = time.Hour

// Cleaner deletes expired verification codes and reports how many went.
type Cleaner interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

type Sweeper struct {
	cleaner  Cleaner
	interval time.Duration
}

func NewSweeper(cleaner Cleaner, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Sweeper{cleaner: cleaner, interval: interval}
}

// Run sweeps once immediately and then on every tick until ctx is done.
// A failed sweep is logged and left for the next tick.
func (s *Sweeper) Run(ctx context.Context) {
	slog.Info("verification cleanup started", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			slog.Info("verification cleanup stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs a single cleanup pass.
func (s *Sweeper) Sweep(ctx context.Context) {
	n, err := s.cleaner.CleanupExpired(ctx)
	if err != nil {
		slog.Error("failed to clean up expired verification codes", "error", err)
		return
	}
	slog.Info("expired verification codes removed", "count", n)
}
