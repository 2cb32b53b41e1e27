package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	domain "github.com/bazaarly/backbone/pkg/domain/errors"
	"github.com/bazaarly/backbone/pkg/domain/notification"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const claimDueSQL = `
UPDATE notification_jobs AS j
SET status = 'processing',
	attempts = j.attempts + 1,
	last_attempt_at = @now,
	updated_at = @now
FROM (
	SELECT id FROM notification_jobs
	WHERE status = 'pending'
		AND scheduled_for <= @now
		AND (next_retry_at IS NULL OR next_retry_at <= @now)
		AND attempts < max_attempts
	ORDER BY priority ASC, scheduled_for ASC
	LIMIT @limit
	FOR UPDATE SKIP LOCKED
) AS due
WHERE j.id = due.id
RETURNING j.*`

const requeueStaleSQL = `
UPDATE notification_jobs
SET status = CASE WHEN attempts < max_attempts THEN 'pending' ELSE 'failed' END,
	error_message = CASE
		WHEN attempts < max_attempts THEN error_message
		ELSE 'claim expired after final attempt'
	END,
	next_retry_at = NULL,
	updated_at = @now
WHERE status = 'processing' AND last_attempt_at < @before`

type notificationJobRepository struct {
	db *gorm.DB
}

func NewNotificationJobRepository(db *gorm.DB) notification.JobStore {
	return &notificationJobRepository{db: db}
}

func (r *notificationJobRepository) Create(ctx context.Context, job *notification.Job) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *notificationJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*notification.Job, error) {
	var job notification.Job
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("notification_job", id)
		}
		return nil, err
	}
	return &job, nil
}

func (r *notificationJobRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]notification.Job, error) {
	var jobs []notification.Job
	err := r.db.WithContext(ctx).Raw(claimDueSQL, map[string]interface{}{
		"now":   now,
		"limit": limit,
	}).Scan(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("claim due jobs: %w", err)
	}
	// RETURNING does not preserve the subquery order.
	sort.SliceStable(jobs, func(i, j int) bool {
		if jobs[i].Priority != jobs[j].Priority {
			return jobs[i].Priority < jobs[j].Priority
		}
		return jobs[i].ScheduledFor.Before(jobs[j].ScheduledFor)
	})
	return jobs, nil
}

func (r *notificationJobRepository) Complete(ctx context.Context, job *notification.Job) error {
	res := r.db.WithContext(ctx).
		Model(&notification.Job{}).
		Where("id = ? AND status = ? AND attempts = ?", job.ID, string(notification.StatusProcessing), job.Attempts).
		Updates(map[string]interface{}{
			"status":        string(job.Status),
			"next_retry_at": job.NextRetryAt,
			"sent_at":       job.SentAt,
			"external_id":   job.ExternalID,
			"error_message": job.ErrorMessage,
			"updated_at":    time.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("complete job %s: %w", job.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", notification.ErrClaimLost, job.ID)
	}
	return nil
}

func (r *notificationJobRepository) RequeueStale(ctx context.Context, claimedBefore time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Exec(requeueStaleSQL, map[string]interface{}{
		"now":    time.Now(),
		"before": claimedBefore,
	})
	if res.Error != nil {
		return 0, fmt.Errorf("requeue stale jobs: %w", res.Error)
	}
	return res.RowsAffected, nil
}
