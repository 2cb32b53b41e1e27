package notification

import "time"

const (
	DefaultBaseDelay = time.Minute
	maxBackoffShift  = 20
)

// Backoff computes retry delays as 2^attempts * Base.
type Backoff struct {
	Base time.Duration
}

func (b Backoff) Delay(attempts int) time.Duration {
	base := b.Base
	if base <= 0 {
		base = DefaultBaseDelay
	}
	shift := min(max(attempts, 0), maxBackoffShift)
	return base * time.Duration(1<<shift)
}
