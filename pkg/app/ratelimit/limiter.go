package ratelimit

import (
	"context"
	"sync/atomic"
	"time"

	domain "github.com/bazaarly/backbone/pkg/domain/ratelimit"
	"github.com/sirupsen/logrus"
)

const DefaultStoreTimeout = 250 * time.Millisecond

// Recorder observes every decision, including degraded ones.
type Recorder interface {
	RecordDecision(endpoint string, backend domain.Backend, d domain.Decision)
}

type Limiter interface {
	// Check counts one request against the durable counter store.
	Check(ctx context.Context, identifier string, limit int, window time.Duration, endpoint string) domain.Decision
	// CheckPolicy counts one request using the policy's limit, window and backend.
	CheckPolicy(ctx context.Context, identifier string, policy domain.Policy) domain.Decision
}

type limiter struct {
	logger        *logrus.Logger
	stores        map[domain.Backend]domain.CounterStore
	storeTimeout  time.Duration
	sweepInterval time.Duration
	lastSweep     map[domain.Backend]*atomic.Int64
	now           func() time.Time
	recorder      Recorder
}

type Option func(*limiter)

// WithStoreTimeout bounds each store round trip; a timeout fails open.
func WithStoreTimeout(d time.Duration) Option {
	return func(l *limiter) {
		if d > 0 {
			l.storeTimeout = d
		}
	}
}

// WithSweepInterval limits the opportunistic sweep to once per interval per
// backend. Zero sweeps on every check.
func WithSweepInterval(d time.Duration) Option {
	return func(l *limiter) {
		l.sweepInterval = d
	}
}

func WithClock(now func() time.Time) Option {
	return func(l *limiter) {
		l.now = now
	}
}

func WithRecorder(r Recorder) Option {
	return func(l *limiter) {
		l.recorder = r
	}
}

func NewLimiter(logger *logrus.Logger, durable, memory domain.CounterStore, opts ...Option) Limiter {
	l := &limiter{
		logger: logger,
		stores: map[domain.Backend]domain.CounterStore{
			domain.BackendDurable: durable,
			domain.BackendMemory:  memory,
		},
		storeTimeout: DefaultStoreTimeout,
		lastSweep: map[domain.Backend]*atomic.Int64{
			domain.BackendDurable: {},
			domain.BackendMemory:  {},
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *limiter) Check(
	ctx context.Context,
	identifier string,
	limit int,
	window time.Duration,
	endpoint string,
) domain.Decision {
	return l.check(ctx, domain.BackendDurable, identifier, limit, window, endpoint)
}

func (l *limiter) CheckPolicy(ctx context.Context, identifier string, policy domain.Policy) domain.Decision {
	backend := policy.Backend
	if backend == "" {
		backend = domain.BackendDurable
	}
	return l.check(ctx, backend, identifier, policy.Limit, policy.Window, policy.Name)
}

func (l *limiter) check(
	ctx context.Context,
	backend domain.Backend,
	identifier string,
	limit int,
	window time.Duration,
	endpoint string,
) domain.Decision {
	now := l.now()
	key := domain.Key(endpoint, identifier)

	var decision domain.Decision
	switch {
	case limit <= 0:
		decision = domain.Decision{Key: key, Limit: limit, ResetAt: now.Add(window), RetryAfter: max(window, 0)}
	case window <= 0:
		l.logger.WithFields(logrus.Fields{"key": key, "window": window}).Error("rate limit window must be positive, failing open")
		decision = l.failOpen(key, limit, window, now)
	default:
		decision = l.hit(ctx, backend, key, limit, window, now)
	}

	if l.recorder != nil {
		l.recorder.RecordDecision(endpoint, backend, decision)
	}
	return decision
}

func (l *limiter) hit(
	ctx context.Context,
	backend domain.Backend,
	key string,
	limit int,
	window time.Duration,
	now time.Time,
) domain.Decision {
	store, ok := l.stores[backend]
	if !ok || store == nil {
		l.logger.WithFields(logrus.Fields{"key": key, "backend": backend}).Warn("no counter store for backend, failing open")
		return l.failOpen(key, limit, window, now)
	}

	ctx, cancel := context.WithTimeout(ctx, l.storeTimeout)
	defer cancel()

	l.maybeSweep(ctx, backend, store, now)

	res, err := store.Hit(ctx, key, limit, window, now)
	if err != nil {
		l.logger.WithError(err).WithFields(logrus.Fields{
			"key":     key,
			"backend": backend,
		}).Warn("rate limit store unavailable, failing open")
		return l.failOpen(key, limit, window, now)
	}
	return domain.FromHit(key, limit, res, now)
}

func (l *limiter) maybeSweep(ctx context.Context, backend domain.Backend, store domain.CounterStore, now time.Time) {
	last := l.lastSweep[backend]
	if l.sweepInterval > 0 {
		prev := last.Load()
		if now.UnixNano()-prev < l.sweepInterval.Nanoseconds() {
			return
		}
		if !last.CompareAndSwap(prev, now.UnixNano()) {
			return
		}
	}
	deleted, err := store.Sweep(ctx, now)
	if err != nil {
		l.logger.WithError(err).WithField("backend", backend).Debug("rate limit sweep failed")
		return
	}
	if deleted > 0 {
		l.logger.WithFields(logrus.Fields{"backend": backend, "deleted": deleted}).Debug("swept expired rate limit entries")
	}
}

func (l *limiter) failOpen(key string, limit int, window time.Duration, now time.Time) domain.Decision {
	return domain.Decision{
		Key:       key,
		Allowed:   true,
		Limit:     limit,
		Remaining: max(limit-1, 0),
		ResetAt:   now.Add(max(window, 0)),
		Degraded:  true,
	}
}
