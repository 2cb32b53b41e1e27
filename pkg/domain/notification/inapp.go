package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InAppNotification is a message shown inside the product UI.
type InAppNotification struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	JobID     uuid.UUID  `json:"job_id" gorm:"type:uuid;not null"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func (InAppNotification) TableName() string {
	return "in_app_notifications"
}

func (n *InAppNotification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	return nil
}

type InAppRepository interface {
	Create(ctx context.Context, n *InAppNotification) error
}
