package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bazaarly/backbone/pkg/domain/ratelimit"
	"gorm.io/gorm"
)

// hitSQL admits one request in a single statement. A missing or expired row
// starts a new window with count 1; a live row is incremented only while
// count < limit. A denied hit matches no row and returns nothing.
const hitSQL = `
INSERT INTO rate_limit_entries AS e (key, window_start, expires_at, count, last_request)
VALUES (@key, @now, @expires_at, 1, @now)
ON CONFLICT (key) DO UPDATE SET
	window_start = CASE WHEN e.expires_at <= @now THEN EXCLUDED.window_start ELSE e.window_start END,
	expires_at   = CASE WHEN e.expires_at <= @now THEN EXCLUDED.expires_at ELSE e.expires_at END,
	count        = CASE WHEN e.expires_at <= @now THEN 1 ELSE e.count + 1 END,
	last_request = EXCLUDED.last_request
WHERE e.expires_at <= @now OR e.count < @limit
RETURNING e.key, e.window_start, e.expires_at, e.count, e.last_request`

type rateLimitEntryRepository struct {
	db *gorm.DB
}

func NewRateLimitEntryRepository(db *gorm.DB) ratelimit.CounterStore {
	return &rateLimitEntryRepository{db: db}
}

func (r *rateLimitEntryRepository) Hit(
	ctx context.Context,
	key string,
	limit int,
	window time.Duration,
	now time.Time,
) (ratelimit.HitResult, error) {
	// The second pass covers a row swept between the denied upsert and the read.
	for range 2 {
		var rows []ratelimit.Entry
		err := r.db.WithContext(ctx).Raw(hitSQL, map[string]interface{}{
			"key":        key,
			"now":        now,
			"expires_at": now.Add(window),
			"limit":      limit,
		}).Scan(&rows).Error
		if err != nil {
			return ratelimit.HitResult{}, fmt.Errorf("%w: %w", ratelimit.ErrBackendUnavailable, err)
		}
		if len(rows) == 1 {
			return ratelimit.HitResult{Entry: rows[0], Admitted: true}, nil
		}

		var current ratelimit.Entry
		err = r.db.WithContext(ctx).Where("key = ?", key).First(&current).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return ratelimit.HitResult{}, fmt.Errorf("%w: %w", ratelimit.ErrBackendUnavailable, err)
		}
		return ratelimit.HitResult{Entry: current, Admitted: false}, nil
	}
	return ratelimit.HitResult{}, fmt.Errorf("%w: counter for %s vanished during hit", ratelimit.ErrBackendUnavailable, key)
}

func (r *rateLimitEntryRepository) Sweep(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&ratelimit.Entry{})
	if res.Error != nil {
		return 0, fmt.Errorf("%w: %w", ratelimit.ErrBackendUnavailable, res.Error)
	}
	return res.RowsAffected, nil
}
