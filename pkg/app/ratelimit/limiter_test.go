package ratelimit

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	domain "github.com/bazaarly/backbone/pkg/domain/ratelimit"
	storeMocks "github.com/bazaarly/backbone/pkg/domain/ratelimit/mocks"
	"github.com/bazaarly/backbone/pkg/infra/cache"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// blockingStore waits for the context to end, like a hung database.
type blockingStore struct{}

func (blockingStore) Hit(ctx context.Context, _ string, _ int, _ time.Duration, _ time.Time) (domain.HitResult, error) {
	<-ctx.Done()
	return domain.HitResult{}, ctx.Err()
}

func (blockingStore) Sweep(context.Context, time.Time) (int64, error) {
	return 0, nil
}

type recorderStub struct {
	mu        sync.Mutex
	decisions []domain.Decision
}

func (r *recorderStub) RecordDecision(_ string, _ domain.Backend, d domain.Decision) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decisions = append(r.decisions, d)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func TestLimiter_Check_CountsDownThenDenies(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	l := NewLimiter(testLogger(), cache.NewMemoryCounterCache(), cache.NewMemoryCounterCache(), WithClock(clock.Now))
	ctx := context.Background()

	for i := 1; i <= 10; i++ {
		d := l.Check(ctx, "ip:10.0.0.1", 10, time.Minute, "order_create")
		require.True(t, d.Allowed, "call %d", i)
		assert.Equal(t, 10-i, d.Remaining, "call %d", i)
		assert.Equal(t, "order_create:ip:10.0.0.1", d.Key)
		assert.False(t, d.Degraded)
		clock.Advance(time.Second)
	}

	d := l.Check(ctx, "ip:10.0.0.1", 10, time.Minute, "order_create")
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
	assert.Greater(t, d.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, d.RetryAfter, time.Minute)
	assert.True(t, domain.IsDenied(d.Err()))
}

func TestLimiter_Check_NewWindowAfterExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	l := NewLimiter(testLogger(), cache.NewMemoryCounterCache(), nil, WithClock(clock.Now))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		l.Check(ctx, "user:a", 3, time.Minute, "login")
	}
	assert.False(t, l.Check(ctx, "user:a", 3, time.Minute, "login").Allowed)

	clock.Advance(time.Minute)
	d := l.Check(ctx, "user:a", 3, time.Minute, "login")
	assert.True(t, d.Allowed)
	assert.Equal(t, 2, d.Remaining)
	assert.Equal(t, clock.Now().Add(time.Minute), d.ResetAt)
}

func TestLimiter_Check_IdentifiersAndEndpointsAreIndependent(t *testing.T) {
	l := NewLimiter(testLogger(), cache.NewMemoryCounterCache(), nil)
	ctx := context.Background()

	assert.True(t, l.Check(ctx, "a", 1, time.Minute, "login").Allowed)
	assert.False(t, l.Check(ctx, "a", 1, time.Minute, "login").Allowed)
	assert.True(t, l.Check(ctx, "b", 1, time.Minute, "login").Allowed)
	assert.True(t, l.Check(ctx, "a", 1, time.Minute, "webhook").Allowed)
}

func TestLimiter_Check_ConcurrentCallersNeverExceedLimit(t *testing.T) {
	l := NewLimiter(testLogger(), cache.NewMemoryCounterCache(), nil)
	ctx := context.Background()

	var admitted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Check(ctx, "svc:worker", 10, time.Minute, "webhook").Allowed {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(10), admitted.Load())
}

func TestLimiter_Check_FailsOpenOnStoreError(t *testing.T) {
	store := new(storeMocks.MockCounterStore)
	store.On("Sweep", mock.Anything, mock.Anything).Return(int64(0), nil)
	store.On("Hit", mock.Anything, "login:ip:1.2.3.4", 5, 15*time.Minute, mock.Anything).
		Return(domain.HitResult{}, errors.New("connection refused"))

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := &recorderStub{}
	l := NewLimiter(testLogger(), store, nil, WithClock(func() time.Time { return now }), WithRecorder(rec))

	d := l.Check(context.Background(), "ip:1.2.3.4", 5, 15*time.Minute, "login")
	assert.True(t, d.Allowed)
	assert.True(t, d.Degraded)
	assert.Equal(t, 4, d.Remaining)
	assert.Equal(t, now.Add(15*time.Minute), d.ResetAt)
	require.Len(t, rec.decisions, 1)
	assert.True(t, rec.decisions[0].Degraded)
	store.AssertExpectations(t)
}

func TestLimiter_Check_FailsOpenOnStoreTimeout(t *testing.T) {
	l := NewLimiter(testLogger(), blockingStore{}, nil, WithStoreTimeout(20*time.Millisecond))

	start := time.Now()
	d := l.Check(context.Background(), "ip:1.2.3.4", 5, time.Minute, "login")
	assert.True(t, d.Allowed)
	assert.True(t, d.Degraded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestLimiter_Check_SweepErrorDoesNotBlockCheck(t *testing.T) {
	store := new(storeMocks.MockCounterStore)
	store.On("Sweep", mock.Anything, mock.Anything).Return(int64(0), errors.New("deadlock detected"))
	store.On("Hit", mock.Anything, mock.Anything, 2, time.Minute, mock.Anything).
		Return(domain.HitResult{Admitted: true, Entry: domain.Entry{Count: 1}}, nil)

	l := NewLimiter(testLogger(), store, nil)
	d := l.Check(context.Background(), "x", 2, time.Minute, "webhook")
	assert.True(t, d.Allowed)
	assert.False(t, d.Degraded)
	assert.Equal(t, 1, d.Remaining)
}

func TestLimiter_Check_SweepInterval(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	store := new(storeMocks.MockCounterStore)
	store.On("Sweep", mock.Anything, mock.Anything).Return(int64(0), nil)
	store.On("Hit", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(domain.HitResult{Admitted: true, Entry: domain.Entry{Count: 1}}, nil)

	l := NewLimiter(testLogger(), store, nil, WithClock(clock.Now), WithSweepInterval(time.Second))
	ctx := context.Background()

	l.Check(ctx, "x", 5, time.Minute, "webhook")
	l.Check(ctx, "x", 5, time.Minute, "webhook")
	clock.Advance(2 * time.Second)
	l.Check(ctx, "x", 5, time.Minute, "webhook")

	store.AssertNumberOfCalls(t, "Sweep", 2)
	store.AssertNumberOfCalls(t, "Hit", 3)
}

func TestLimiter_Check_InvalidParameters(t *testing.T) {
	store := new(storeMocks.MockCounterStore)
	l := NewLimiter(testLogger(), store, nil)
	ctx := context.Background()

	d := l.Check(ctx, "x", 0, time.Minute, "login")
	assert.False(t, d.Allowed)

	d = l.Check(ctx, "x", 5, 0, "login")
	assert.True(t, d.Allowed)
	assert.True(t, d.Degraded)

	store.AssertNotCalled(t, "Hit", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLimiter_CheckPolicy_RoutesByBackend(t *testing.T) {
	durable := new(storeMocks.MockCounterStore)
	memory := cache.NewMemoryCounterCache()
	l := NewLimiter(testLogger(), durable, memory)

	table, err := NewPolicyTable()
	require.NoError(t, err)
	probe := table.MustGet(PolicyHealthProbe)

	d := l.CheckPolicy(context.Background(), "ip:127.0.0.1", probe)
	assert.True(t, d.Allowed)
	assert.Equal(t, 59, d.Remaining)
	assert.Equal(t, 1, memory.Len())
	durable.AssertNotCalled(t, "Hit", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLimiter_CheckPolicy_MissingBackendFailsOpen(t *testing.T) {
	l := NewLimiter(testLogger(), cache.NewMemoryCounterCache(), nil)
	d := l.CheckPolicy(context.Background(), "ip:127.0.0.1", domain.Policy{
		Name: "health_probe", Limit: 1, Window: time.Minute, Backend: domain.BackendMemory,
	})
	assert.True(t, d.Allowed)
	assert.True(t, d.Degraded)
}
