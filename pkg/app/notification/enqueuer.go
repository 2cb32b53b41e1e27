package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	domainErrors "github.com/bazaarly/backbone/pkg/domain/errors"
	domain "github.com/bazaarly/backbone/pkg/domain/notification"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type EnqueueCommand struct {
	UserID       *uuid.UUID
	Address      string
	Channel      string
	Subject      string
	Body         string
	Data         domain.Data
	ScheduledFor *time.Time
	Priority     *int
	MaxAttempts  int
	Tags         []string
}

type Enqueuer interface {
	Enqueue(ctx context.Context, cmd EnqueueCommand) (*domain.Job, error)
}

type enqueuer struct {
	logger *logrus.Logger
	store  domain.JobStore
	now    func() time.Time
}

func NewEnqueuer(logger *logrus.Logger, store domain.JobStore) Enqueuer {
	return &enqueuer{
		logger: logger,
		store:  store,
		now:    time.Now,
	}
}

func (e *enqueuer) Enqueue(ctx context.Context, cmd EnqueueCommand) (*domain.Job, error) {
	job, err := e.build(cmd)
	if err != nil {
		return nil, err
	}
	if err := e.store.Create(ctx, job); err != nil {
		e.logger.WithError(err).WithField("channel", job.Channel).Error("failed to enqueue notification")
		return nil, fmt.Errorf("failed to enqueue notification: %w", err)
	}
	e.logger.WithFields(logrus.Fields{
		"job_id":        job.ID,
		"channel":       job.Channel,
		"scheduled_for": job.ScheduledFor,
	}).Debug("notification enqueued")
	return job, nil
}

func (e *enqueuer) build(cmd EnqueueCommand) (*domain.Job, error) {
	channel, err := domain.ParseChannel(cmd.Channel)
	if err != nil {
		return nil, domainErrors.NewValidationError("channel", err.Error())
	}

	recipient := domain.Recipient{UserID: cmd.UserID, Address: strings.TrimSpace(cmd.Address)}
	if recipient.UserID != nil && *recipient.UserID == uuid.Nil {
		recipient.UserID = nil
	}
	if recipient.Empty() {
		return nil, domainErrors.NewValidationError("recipient", "a user_id or an address is required")
	}
	if strings.TrimSpace(cmd.Body) == "" {
		return nil, domainErrors.NewValidationError("body", "body is required")
	}

	maxAttempts := cmd.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = domain.DefaultMaxAttempts
	}
	if maxAttempts < 1 || maxAttempts > domain.MaxAttemptsCeiling {
		return nil, domainErrors.NewValidationError(
			"max_attempts",
			fmt.Sprintf("must be between 1 and %d", domain.MaxAttemptsCeiling),
		)
	}

	priority := domain.DefaultPriority
	if cmd.Priority != nil {
		priority = *cmd.Priority
	}
	if priority < 0 {
		return nil, domainErrors.NewValidationError("priority", "must not be negative")
	}

	now := e.now()
	scheduledFor := now
	if cmd.ScheduledFor != nil && !cmd.ScheduledFor.IsZero() {
		scheduledFor = *cmd.ScheduledFor
	}

	data := cmd.Data
	if data == nil {
		data = domain.Data{}
	}

	return &domain.Job{
		ID:           uuid.New(),
		Recipient:    recipient,
		Channel:      channel,
		Subject:      cmd.Subject,
		Body:         cmd.Body,
		Data:         data,
		Tags:         cmd.Tags,
		ScheduledFor: scheduledFor,
		Priority:     priority,
		Status:       domain.StatusPending,
		MaxAttempts:  maxAttempts,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}
