package mocks

import (
	"context"
	"time"

	"github.com/bazaarly/backbone/pkg/domain/notification"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockJobStore struct {
	mock.Mock
}

func (m *MockJobStore) Create(ctx context.Context, job *notification.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockJobStore) GetByID(ctx context.Context, id uuid.UUID) (*notification.Job, error) {
	args := m.Called(ctx, id)
	job, _ := args.Get(0).(*notification.Job)
	return job, args.Error(1)
}

func (m *MockJobStore) ClaimDue(ctx context.Context, now time.Time, limit int) ([]notification.Job, error) {
	args := m.Called(ctx, now, limit)
	jobs, _ := args.Get(0).([]notification.Job)
	return jobs, args.Error(1)
}

func (m *MockJobStore) Complete(ctx context.Context, job *notification.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockJobStore) RequeueStale(ctx context.Context, claimedBefore time.Time) (int64, error) {
	args := m.Called(ctx, claimedBefore)
	return args.Get(0).(int64), args.Error(1)
}
