package ratelimit

import "time"

// Entry is the fixed-window counter for one key.
type Entry struct {
	Key         string    `json:"key" gorm:"column:key;primaryKey"`
	WindowStart time.Time `json:"window_start" gorm:"column:window_start;not null"`
	ExpiresAt   time.Time `json:"expires_at" gorm:"column:expires_at;not null;index"`
	Count       int       `json:"count" gorm:"column:count;not null"`
	LastRequest time.Time `json:"last_request" gorm:"column:last_request;not null"`
}

func (Entry) TableName() string {
	return "rate_limit_entries"
}

// Live reports whether the entry still counts at now.
func (e *Entry) Live(now time.Time) bool {
	return now.Before(e.ExpiresAt)
}

// Key composes the counter key for an endpoint and caller identifier.
func Key(endpoint, identifier string) string {
	return endpoint + ":" + identifier
}
