package migrations

import (
	"github.com/bazaarly/backbone/pkg/infra/database"
	"gorm.io/gorm"
)

func init() {
	database.RegisterMigration(database.Migration{
		ID:   "20260101_create_rate_limit_entries",
		Name: "Create rate_limit_entries fixed-window counter table",

		Up: func(db *gorm.DB) error {
			if err := db.Exec(`
				CREATE TABLE IF NOT EXISTS rate_limit_entries (
					key           TEXT PRIMARY KEY,
					window_start  TIMESTAMPTZ NOT NULL,
					expires_at    TIMESTAMPTZ NOT NULL,
					count         INTEGER NOT NULL CHECK (count >= 0),
					last_request  TIMESTAMPTZ NOT NULL
				);
			`).Error; err != nil {
				return err
			}
			return db.Exec(`
				CREATE INDEX IF NOT EXISTS idx_rate_limit_entries_expires_at
				ON rate_limit_entries (expires_at);
			`).Error
		},

		Down: func(db *gorm.DB) error {
			return db.Exec(`DROP TABLE IF EXISTS rate_limit_entries;`).Error
		},
	})
}
