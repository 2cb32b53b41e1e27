package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OutcomeEvent is emitted when a job reaches a terminal status.
type OutcomeEvent struct {
	JobID      uuid.UUID `json:"job_id"`
	Channel    Channel   `json:"channel"`
	Status     Status    `json:"status"`
	Attempts   int       `json:"attempts"`
	ExternalID string    `json:"external_id,omitempty"`
	Error      string    `json:"error,omitempty"`
	Tags       []string  `json:"tags,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewOutcomeEvent(job *Job, at time.Time) OutcomeEvent {
	return OutcomeEvent{
		JobID:      job.ID,
		Channel:    job.Channel,
		Status:     job.Status,
		Attempts:   job.Attempts,
		ExternalID: job.ExternalID,
		Error:      job.ErrorMessage,
		Tags:       job.Tags,
		OccurredAt: at,
	}
}

type OutcomeExporter interface {
	Export(ctx context.Context, evt OutcomeEvent) error
	Close()
}
