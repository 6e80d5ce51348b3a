// Package reaper runs the periodic sweep that removes expired refresh tokens.
// The sweep is an optimization only: expired tokens are already rejected on
// presentation, the reaper just keeps the table from growing.
package reaper

import (
	"context"
	"time"

	"github.com/sweetshop/backend/internal/logging"
)

// Cleaner deletes expired refresh tokens and reports how many were removed.
type Cleaner interface {
	CleanupExpiredTokens(ctx context.Context) (int64, error)
}

// Reaper periodically invokes a Cleaner until its context is cancelled.
type Reaper struct {
	cleaner  Cleaner
	interval time.Duration
	logger   logging.Logger
}

// defaultInterval is used when the configured interval is not positive, which
// time.NewTicker would refuse.
const defaultInterval = time.Hour

// New constructs a Reaper sweeping at the given interval. A non-positive
// interval falls back to defaultInterval.
func New(cleaner Cleaner, interval time.Duration, logger logging.Logger) *Reaper {
	if interval <= 0 {
		logger.Warn(context.Background(), "invalid reaper interval, using default",
			"interval", interval, "default", defaultInterval)
		interval = defaultInterval
	}
	return &Reaper{cleaner: cleaner, interval: interval, logger: logger}
}

// Run blocks, sweeping once per interval, until ctx is cancelled. A failed
// sweep is logged and retried at the next tick; it never stops the loop.
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := r.cleaner.CleanupExpiredTokens(ctx)
			if err != nil {
				r.logger.Error(ctx, "expired token sweep failed", "error", err)
				continue
			}
			if n > 0 {
				r.logger.Info(ctx, "expired refresh tokens removed", "count", n)
			}
		}
	}
}
