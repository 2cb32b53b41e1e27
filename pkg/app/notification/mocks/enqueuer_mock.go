package mocks

import (
	"context"

	appNotification "github.com/bazaarly/backbone/pkg/app/notification"
	"github.com/bazaarly/backbone/pkg/domain/notification"
	"github.com/stretchr/testify/mock"
)

type MockEnqueuer struct {
	mock.Mock
}

func (m *MockEnqueuer) Enqueue(ctx context.Context, cmd appNotification.EnqueueCommand) (*notification.Job, error) {
	args := m.Called(ctx, cmd)
	job, _ := args.Get(0).(*notification.Job)
	return job, args.Error(1)
}
