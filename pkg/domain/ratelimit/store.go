package ratelimit

import (
	"context"
	"time"
)

// HitResult is the outcome of one atomic increment-or-reject step.
type HitResult struct {
	Entry    Entry
	Admitted bool
}

type CounterStore interface {
	// Hit admits one request for key if the live window has room, starting a
	// new window when none is live. The step is atomic per key.
	Hit(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (HitResult, error)
	// Sweep removes entries whose window ended at or before now.
	Sweep(ctx context.Context, now time.Time) (int64, error)
}
