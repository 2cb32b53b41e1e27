package migrations

import (
	"github.com/bazaarly/backbone/pkg/infra/database"
	"gorm.io/gorm"
)

func init() {
	database.RegisterMigration(database.Migration{
		ID:   "20260104_create_in_app_notifications",
		Name: "Create in_app_notifications inbox table",

		Up: func(db *gorm.DB) error {
			if err := db.Exec(`
				CREATE TABLE IF NOT EXISTS in_app_notifications (
					id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					user_id     UUID NOT NULL,
					job_id      UUID NOT NULL UNIQUE,
					title       TEXT NOT NULL DEFAULT '',
					body        TEXT NOT NULL DEFAULT '',
					read_at     TIMESTAMPTZ,
					created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
			`).Error; err != nil {
				return err
			}
			return db.Exec(`
				CREATE INDEX IF NOT EXISTS idx_in_app_notifications_user
				ON in_app_notifications (user_id, created_at DESC);
			`).Error
		},

		Down: func(db *gorm.DB) error {
			return db.Exec(`DROP TABLE IF EXISTS in_app_notifications;`).Error
		},
	})
}
