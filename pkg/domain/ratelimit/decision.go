package ratelimit

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"
)

var ErrBackendUnavailable = errors.New("rate limit backend unavailable")

type DeniedError struct {
	Key        string
	RetryAfter time.Duration
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s, retry after %s", e.Key, e.RetryAfter)
}

func IsDenied(err error) bool {
	var de *DeniedError
	return errors.As(err, &de)
}

type Decision struct {
	Key        string        `json:"key"`
	Allowed    bool          `json:"allowed"`
	Limit      int           `json:"limit"`
	Remaining  int           `json:"remaining"`
	ResetAt    time.Time     `json:"reset_at"`
	RetryAfter time.Duration `json:"-"`
	// Degraded is set when the counter store failed and the request was let through.
	Degraded bool `json:"degraded,omitempty"`
}

// RetryAfterSeconds rounds up so clients never retry early.
func (d Decision) RetryAfterSeconds() int {
	return int(math.Ceil(d.RetryAfter.Seconds()))
}

// MarshalJSON reports the retry delay in whole seconds, matching the
// Retry-After header.
func (d Decision) MarshalJSON() ([]byte, error) {
	type decision Decision
	return json.Marshal(struct {
		decision
		RetryAfterSeconds int `json:"retry_after_seconds,omitempty"`
	}{
		decision:          decision(d),
		RetryAfterSeconds: d.RetryAfterSeconds(),
	})
}

// Err returns a *DeniedError for a denied decision and nil otherwise.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return &DeniedError{Key: d.Key, RetryAfter: d.RetryAfter}
}

// FromHit converts a store result into a decision at instant now.
func FromHit(key string, limit int, hit HitResult, now time.Time) Decision {
	d := Decision{
		Key:     key,
		Allowed: hit.Admitted,
		Limit:   limit,
		ResetAt: hit.Entry.ExpiresAt,
	}
	if hit.Admitted {
		d.Remaining = max(limit-hit.Entry.Count, 0)
		return d
	}
	d.RetryAfter = max(d.ResetAt.Sub(now), 0)
	return d
}
