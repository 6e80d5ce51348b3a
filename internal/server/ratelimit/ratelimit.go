// Package ratelimit provides fixed-window counters used to throttle login
// attempts. Two implementations exist: an in-process map for single-instance
// deployments and a Redis-backed one that is shared across replicas.
package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter counts events per key in fixed windows. Allow consumes one attempt
// and reports whether the caller is still within the limit.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (Decision, error)
}
