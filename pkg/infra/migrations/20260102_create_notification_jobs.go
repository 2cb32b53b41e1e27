package migrations

import (
	"github.com/bazaarly/backbone/pkg/infra/database"
	"gorm.io/gorm"
)

func init() {
	database.RegisterMigration(database.Migration{
		ID:   "20260102_create_notification_jobs",
		Name: "Create notification_jobs delivery queue table",

		Up: func(db *gorm.DB) error {
			if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
				return err
			}

			if err := db.Exec(`
				CREATE TABLE IF NOT EXISTS notification_jobs (
					id                 UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					recipient_user_id  UUID,
					recipient_address  TEXT NOT NULL DEFAULT '',
					channel            TEXT NOT NULL,
					subject            TEXT NOT NULL DEFAULT '',
					body               TEXT NOT NULL,
					data               JSONB NOT NULL DEFAULT '{}'::jsonb,
					tags               TEXT[],
					scheduled_for      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					priority           INTEGER NOT NULL DEFAULT 5,
					status             TEXT NOT NULL DEFAULT 'pending',
					attempts           INTEGER NOT NULL DEFAULT 0,
					max_attempts       INTEGER NOT NULL DEFAULT 3,
					next_retry_at      TIMESTAMPTZ,
					last_attempt_at    TIMESTAMPTZ,
					sent_at            TIMESTAMPTZ,
					external_id        TEXT NOT NULL DEFAULT '',
					error_message      TEXT NOT NULL DEFAULT '',
					created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					CONSTRAINT chk_notification_jobs_status
						CHECK (status IN ('pending', 'processing', 'sent', 'failed')),
					CONSTRAINT chk_notification_jobs_attempts
						CHECK (attempts >= 0 AND attempts <= max_attempts)
				);
			`).Error; err != nil {
				return err
			}

			if err := db.Exec(`
				CREATE INDEX IF NOT EXISTS idx_notification_jobs_status_scheduled
				ON notification_jobs (status, scheduled_for);
			`).Error; err != nil {
				return err
			}

			return db.Exec(`
				CREATE INDEX IF NOT EXISTS idx_notification_jobs_priority
				ON notification_jobs (priority);
			`).Error
		},

		Down: func(db *gorm.DB) error {
			return db.Exec(`DROP TABLE IF EXISTS notification_jobs;`).Error
		},
	})
}
