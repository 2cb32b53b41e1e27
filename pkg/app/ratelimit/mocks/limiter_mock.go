package mocks

import (
	"context"
	"time"

	domain "github.com/bazaarly/backbone/pkg/domain/ratelimit"
	"github.com/stretchr/testify/mock"
)

type MockLimiter struct {
	mock.Mock
}

func (m *MockLimiter) Check(ctx context.Context, identifier string, limit int, window time.Duration, endpoint string) domain.Decision {
	args := m.Called(ctx, identifier, limit, window, endpoint)
	return args.Get(0).(domain.Decision)
}

func (m *MockLimiter) CheckPolicy(ctx context.Context, identifier string, policy domain.Policy) domain.Decision {
	args := m.Called(ctx, identifier, policy)
	return args.Get(0).(domain.Decision)
}
