package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type JobStore interface {
	Create(ctx context.Context, job *Job) error
	GetByID(ctx context.Context, id uuid.UUID) (*Job, error)
	// ClaimDue atomically moves up to limit due jobs to processing, recording
	// the attempt, and returns them ordered by priority then scheduled_for.
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]Job, error)
	// Complete persists the outcome of a claimed job. It returns ErrClaimLost
	// if the job is no longer held by the claim that produced it.
	Complete(ctx context.Context, job *Job) error
	// RequeueStale releases processing jobs claimed before claimedBefore.
	// Jobs with attempts left go back to pending, the rest are failed.
	RequeueStale(ctx context.Context, claimedBefore time.Time) (int64, error)
}
