package channels

import (
	"context"

	domain "github.com/bazaarly/backbone/pkg/domain/notification"
	"github.com/google/uuid"
)

// InAppDispatcher stores the message in the user's inbox.
type InAppDispatcher struct {
	repo domain.InAppRepository
}

func NewInAppDispatcher(repo domain.InAppRepository) *InAppDispatcher {
	return &InAppDispatcher{repo: repo}
}

func (d *InAppDispatcher) Channel() domain.Channel {
	return domain.ChannelInApp
}

func (d *InAppDispatcher) Dispatch(ctx context.Context, msg domain.Message) domain.Result {
	var userID uuid.UUID
	if msg.UserID != nil {
		userID = *msg.UserID
	} else {
		parsed, err := uuid.Parse(msg.Destination)
		if err != nil {
			return domain.Failed(domain.NewDestinationUnresolved("in-app destination %q is not a user id", msg.Destination))
		}
		userID = parsed
	}

	n := &domain.InAppNotification{
		UserID: userID,
		JobID:  msg.JobID,
		Title:  msg.Subject,
		Body:   msg.Body,
	}
	if err := d.repo.Create(ctx, n); err != nil {
		return domain.Failed(domain.NewProviderRejected("failed to store in-app notification: %v", err))
	}
	return domain.Delivered(n.ID.String())
}
