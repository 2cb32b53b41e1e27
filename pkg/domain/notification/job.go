package notification

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const (
	DefaultMaxAttempts = 3
	MaxAttemptsCeiling = 10
	DefaultPriority    = 5
)

type Job struct {
	ID            uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Recipient     Recipient      `json:"recipient" gorm:"embedded;embeddedPrefix:recipient_"`
	Channel       Channel        `json:"channel" gorm:"type:text;not null"`
	Subject       string         `json:"subject"`
	Body          string         `json:"body" gorm:"not null"`
	Data          Data           `json:"data" gorm:"type:jsonb"`
	Tags          pq.StringArray `json:"tags,omitempty" gorm:"type:text[]"`
	ScheduledFor  time.Time      `json:"scheduled_for" gorm:"not null"`
	Priority      int            `json:"priority" gorm:"not null"`
	Status        Status         `json:"status" gorm:"type:text;not null"`
	Attempts      int            `json:"attempts" gorm:"not null"`
	MaxAttempts   int            `json:"max_attempts" gorm:"not null"`
	NextRetryAt   *time.Time     `json:"next_retry_at,omitempty"`
	LastAttemptAt *time.Time     `json:"last_attempt_at,omitempty"`
	SentAt        *time.Time     `json:"sent_at,omitempty"`
	ExternalID    string         `json:"external_id,omitempty" gorm:"not null;default:''"`
	ErrorMessage  string         `json:"error_message,omitempty" gorm:"not null;default:''"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func (Job) TableName() string {
	return "notification_jobs"
}

func (j *Job) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	if j.Status == "" {
		j.Status = StatusPending
	}
	now := time.Now()
	if j.CreatedAt.IsZero() {
		j.CreatedAt = now
	}
	j.UpdatedAt = now
	return nil
}

func (j *Job) BeforeUpdate(tx *gorm.DB) error {
	j.UpdatedAt = time.Now()
	return nil
}

// Due reports whether a pending job may be claimed at now.
func (j *Job) Due(now time.Time) bool {
	if j.Status != StatusPending || j.ScheduledFor.After(now) {
		return false
	}
	return j.NextRetryAt == nil || !j.NextRetryAt.After(now)
}

func (j *Job) Exhausted() bool {
	return j.Attempts >= j.MaxAttempts
}

func (j *Job) TransitionTo(next Status) error {
	if !j.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, j.Status, next)
	}
	j.Status = next
	return nil
}

// Claim moves a pending job to processing and records the attempt.
func (j *Job) Claim(now time.Time) error {
	if j.Exhausted() {
		return ErrAttemptsExhausted
	}
	if err := j.TransitionTo(StatusProcessing); err != nil {
		return err
	}
	j.Attempts++
	j.LastAttemptAt = &now
	return nil
}

func (j *Job) MarkSent(now time.Time, externalID string) error {
	if err := j.TransitionTo(StatusSent); err != nil {
		return err
	}
	j.SentAt = &now
	j.ExternalID = externalID
	j.ErrorMessage = ""
	j.NextRetryAt = nil
	return nil
}

// MarkRetry returns a failed attempt to pending, due again at retryAt.
func (j *Job) MarkRetry(retryAt time.Time, reason string) error {
	if j.Exhausted() {
		return ErrAttemptsExhausted
	}
	if err := j.TransitionTo(StatusPending); err != nil {
		return err
	}
	j.NextRetryAt = &retryAt
	j.ErrorMessage = reason
	return nil
}

func (j *Job) MarkFailed(reason string) error {
	if err := j.TransitionTo(StatusFailed); err != nil {
		return err
	}
	j.NextRetryAt = nil
	j.ErrorMessage = reason
	return nil
}
