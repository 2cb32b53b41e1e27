package repository

import (
	"context"

	"github.com/bazaarly/backbone/pkg/domain/notification"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type inAppNotificationRepository struct {
	db *gorm.DB
}

func NewInAppNotificationRepository(db *gorm.DB) notification.InAppRepository {
	return &inAppNotificationRepository{db: db}
}

// Create inserts the inbox row once per job. A redelivered job keeps the
// original row and n.ID is set to it.
func (r *inAppNotificationRepository) Create(ctx context.Context, n *notification.InAppNotification) error {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "job_id"}}, DoNothing: true}).
		Create(n)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	var existing notification.InAppNotification
	if err := r.db.WithContext(ctx).Where("job_id = ?", n.JobID).First(&existing).Error; err != nil {
		return err
	}
	n.ID = existing.ID
	return nil
}
