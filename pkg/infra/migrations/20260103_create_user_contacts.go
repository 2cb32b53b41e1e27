package migrations

import (
	"github.com/bazaarly/backbone/pkg/infra/database"
	"gorm.io/gorm"
)

func init() {
	database.RegisterMigration(database.Migration{
		ID:   "20260103_create_user_contacts",
		Name: "Create user_contacts table used for destination resolution",

		Up: func(db *gorm.DB) error {
			return db.Exec(`
				CREATE TABLE IF NOT EXISTS user_contacts (
					user_id     UUID PRIMARY KEY,
					email       TEXT NOT NULL DEFAULT '',
					phone       TEXT NOT NULL DEFAULT '',
					push_token  TEXT NOT NULL DEFAULT '',
					whatsapp    TEXT NOT NULL DEFAULT '',
					updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
			`).Error
		},

		Down: func(db *gorm.DB) error {
			return db.Exec(`DROP TABLE IF EXISTS user_contacts;`).Error
		},
	})
}
