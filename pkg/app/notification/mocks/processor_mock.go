package mocks

import (
	"context"

	appNotification "github.com/bazaarly/backbone/pkg/app/notification"
	"github.com/stretchr/testify/mock"
)

type MockProcessor struct {
	mock.Mock
}

func (m *MockProcessor) Run(ctx context.Context, batchSize int) (appNotification.RunResult, error) {
	args := m.Called(ctx, batchSize)
	return args.Get(0).(appNotification.RunResult), args.Error(1)
}
