package notification

import (
	"strings"

	"github.com/google/uuid"
)

// Recipient is either a user reference resolved at dispatch time or a direct address.
type Recipient struct {
	UserID  *uuid.UUID `json:"user_id,omitempty" gorm:"type:uuid"`
	Address string     `json:"address,omitempty" gorm:"type:text;not null;default:''"`
}

func (r Recipient) HasAddress() bool {
	return strings.TrimSpace(r.Address) != ""
}

func (r Recipient) Empty() bool {
	return r.UserID == nil && !r.HasAddress()
}
