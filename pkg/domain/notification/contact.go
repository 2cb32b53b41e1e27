package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Contact is the stored contact information of a user.
type Contact struct {
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;primaryKey"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	PushToken string    `json:"push_token,omitempty"`
	WhatsApp  string    `json:"whatsapp,omitempty" gorm:"column:whatsapp"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Contact) TableName() string {
	return "user_contacts"
}

// AddressFor returns the destination stored for channel, or "" if none.
// In-app delivery targets the user id itself.
func (c *Contact) AddressFor(channel Channel) string {
	switch channel {
	case ChannelEmail:
		return c.Email
	case ChannelSMS:
		return c.Phone
	case ChannelPush:
		return c.PushToken
	case ChannelWhatsApp:
		return c.WhatsApp
	case ChannelInApp:
		return c.UserID.String()
	default:
		return ""
	}
}

type ContactResolver interface {
	Resolve(ctx context.Context, userID uuid.UUID) (*Contact, error)
}

type ContactRepository interface {
	ContactResolver
	Save(ctx context.Context, contact *Contact) error
}
