// SPDX-License-Identifier: GPL-3.0-only

package migrations

import (
	"fmt"
	"usercred-server/models"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

func List() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		{
			ID: "001_create_users",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.User{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("users")
			},
		},
		{
			ID: "002_create_sessions",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.Session{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("sessions")
			},
		},
		{
			ID: "003_create_event_logs",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.EventLog{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("event_logs")
			},
		},
		{
			ID: "004_normalize_emails",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.Exec("UPDATE users SET email = LOWER(TRIM(email))").Error; err != nil {
					return fmt.Errorf("failed to normalize user emails: %w", err)
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error { return nil },
		},
		{
			ID: "005_clear_half_set_resets",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.Session(&gorm.Session{SkipHooks: true}).Model(&models.User{}).
					Where("password_reset_token IS NULL OR password_reset_expires IS NULL").
					Updates(map[string]any{
						"password_reset_token":   nil,
						"password_reset_expires": nil,
					}).Error; err != nil {
					return fmt.Errorf("failed to clear partial password resets: %w", err)
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error { return nil },
		},
	}
}
