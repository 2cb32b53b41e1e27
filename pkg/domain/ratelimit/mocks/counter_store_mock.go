package mocks

import (
	"context"
	"time"

	domain "github.com/bazaarly/backbone/pkg/domain/ratelimit"
	"github.com/stretchr/testify/mock"
)

type MockCounterStore struct {
	mock.Mock
}

func (m *MockCounterStore) Hit(
	ctx context.Context,
	key string,
	limit int,
	window time.Duration,
	now time.Time,
) (domain.HitResult, error) {
	args := m.Called(ctx, key, limit, window, now)
	return args.Get(0).(domain.HitResult), args.Error(1)
}

func (m *MockCounterStore) Sweep(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}
