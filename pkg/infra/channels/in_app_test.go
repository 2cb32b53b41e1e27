package channels

import (
	"context"
	"errors"
	"testing"

	domain "github.com/bazaarly/backbone/pkg/domain/notification"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockInAppRepository struct {
	mock.Mock
}

func (m *mockInAppRepository) Create(ctx context.Context, n *domain.InAppNotification) error {
	args := m.Called(ctx, n)
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return args.Error(0)
}

func TestInAppDispatcher_Dispatch(t *testing.T) {
	repo := new(mockInAppRepository)
	userID := uuid.New()
	jobID := uuid.New()
	repo.On("Create", mock.Anything, mock.MatchedBy(func(n *domain.InAppNotification) bool {
		return n.UserID == userID && n.JobID == jobID && n.Title == "Booking confirmed" && n.Body == "See you at 8"
	})).Return(nil).Once()

	d := NewInAppDispatcher(repo)
	res := d.Dispatch(context.Background(), domain.Message{
		JobID:       jobID,
		UserID:      &userID,
		Destination: userID.String(),
		Subject:     "Booking confirmed",
		Body:        "See you at 8",
	})

	require.True(t, res.Success)
	_, err := uuid.Parse(res.ExternalID)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestInAppDispatcher_Dispatch_UsesDestinationWhenNoUser(t *testing.T) {
	repo := new(mockInAppRepository)
	userID := uuid.New()
	repo.On("Create", mock.Anything, mock.MatchedBy(func(n *domain.InAppNotification) bool {
		return n.UserID == userID
	})).Return(nil)

	res := NewInAppDispatcher(repo).Dispatch(context.Background(), domain.Message{Destination: userID.String(), Body: "x"})
	assert.True(t, res.Success)
}

func TestInAppDispatcher_Dispatch_Failures(t *testing.T) {
	repo := new(mockInAppRepository)
	d := NewInAppDispatcher(repo)

	res := d.Dispatch(context.Background(), domain.Message{Destination: "ana@example.com", Body: "x"})
	require.False(t, res.Success)
	assert.Equal(t, domain.DestinationUnresolved, res.Err.Kind)

	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("relation does not exist"))
	userID := uuid.New()
	res = d.Dispatch(context.Background(), domain.Message{UserID: &userID, Body: "x"})
	require.False(t, res.Success)
	assert.Equal(t, domain.ProviderRejected, res.Err.Kind)
}
