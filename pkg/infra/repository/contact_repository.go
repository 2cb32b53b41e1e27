package repository

import (
	"context"
	"errors"

	domain "github.com/bazaarly/backbone/pkg/domain/errors"
	"github.com/bazaarly/backbone/pkg/domain/notification"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type contactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) notification.ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) Resolve(ctx context.Context, userID uuid.UUID) (*notification.Contact, error) {
	var contact notification.Contact
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&contact).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("user_contact", userID)
		}
		return nil, err
	}
	return &contact, nil
}

func (r *contactRepository) Save(ctx context.Context, contact *notification.Contact) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "phone", "push_token", "whatsapp", "updated_at"}),
	}).Create(contact).Error
}
