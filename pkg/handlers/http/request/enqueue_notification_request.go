package request

import (
	"fmt"
	"strings"
	"time"

	appNotification "github.com/bazaarly/backbone/pkg/app/notification"
	domainErrors "github.com/bazaarly/backbone/pkg/domain/errors"
	"github.com/bazaarly/backbone/pkg/domain/notification"
	"github.com/google/uuid"
)

const maxTags = 16

type EnqueueNotificationRequest struct {
	UserID       *uuid.UUID        `json:"user_id"`
	Address      string            `json:"address"`
	Channel      string            `json:"channel"` // @required
	Subject      string            `json:"subject"`
	Body         string            `json:"body"` // @required
	Data         notification.Data `json:"data"`
	ScheduledFor *time.Time        `json:"scheduled_for"`
	Priority     *int              `json:"priority"`
	MaxAttempts  int               `json:"max_attempts"`
	Tags         []string          `json:"tags"`
}

func (r *EnqueueNotificationRequest) Validate() error {
	if strings.TrimSpace(r.Channel) == "" {
		return domainErrors.NewValidationError("channel", "channel is required")
	}
	if len(r.Tags) > maxTags {
		return domainErrors.NewValidationError("tags", fmt.Sprintf("at most %d tags are allowed", maxTags))
	}
	for i, tag := range r.Tags {
		if strings.TrimSpace(tag) == "" {
			return domainErrors.NewValidationError("tags", fmt.Sprintf("tag %d is empty", i))
		}
	}
	return nil
}

func (r *EnqueueNotificationRequest) ToCommand() appNotification.EnqueueCommand {
	return appNotification.EnqueueCommand{
		UserID:       r.UserID,
		Address:      r.Address,
		Channel:      strings.TrimSpace(r.Channel),
		Subject:      r.Subject,
		Body:         r.Body,
		Data:         r.Data,
		ScheduledFor: r.ScheduledFor,
		Priority:     r.Priority,
		MaxAttempts:  r.MaxAttempts,
		Tags:         r.Tags,
	}
}
