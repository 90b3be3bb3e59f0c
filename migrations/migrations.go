package migrations

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/rotzmediagroup/storypixie-admin/models"
	"github.com/rotzmediagroup/storypixie-admin/utils"
)

// RunMigrations brings the schema up to date.
func RunMigrations(db *gorm.DB) error {
	logrus.Info("Running migrations...")

	if err := db.AutoMigrate(&models.AdminUser{}); err != nil {
		return fmt.Errorf("failed to migrate AdminUser: %w", err)
	}

	if err := db.AutoMigrate(&models.MfaCredential{}); err != nil {
		return fmt.Errorf("failed to migrate MfaCredential: %w", err)
	}

	if err := db.AutoMigrate(&models.EndUser{}); err != nil {
		return fmt.Errorf("failed to migrate EndUser: %w", err)
	}

	if err := db.AutoMigrate(&models.Story{}); err != nil {
		return fmt.Errorf("failed to migrate Story: %w", err)
	}

	if err := db.AutoMigrate(&models.AIModel{}); err != nil {
		return fmt.Errorf("failed to migrate AIModel: %w", err)
	}

	if err := db.AutoMigrate(&models.ActivityLog{}); err != nil {
		return fmt.Errorf("failed to migrate ActivityLog: %w", err)
	}

	logrus.Info("Migrations completed successfully!")
	return nil
}

// MigrateLegacyTwoFactor moves secrets out of the old two_fa_* columns on
// admin_users into mfa_credentials, sealing them at rest. Safe to run on
// every boot: admins with no legacy secret, or with a credential row already
// present, are skipped, and the legacy columns are cleared once moved.
func MigrateLegacyTwoFactor(db *gorm.DB, encryptionKey []byte) error {
	var legacy []models.AdminUser
	err := db.Where("two_fa_secret <> ''").Find(&legacy).Error
	if err != nil {
		return fmt.Errorf("failed to scan legacy two-factor columns: %w", err)
	}

	for _, user := range legacy {
		if err := migrateLegacyUser(db, encryptionKey, user); err != nil {
			return err
		}
	}

	if len(legacy) > 0 {
		logrus.WithFields(logrus.Fields{
			"migrated": len(legacy),
		}).Info("Legacy two-factor secrets migrated")
	}
	return nil
}

func migrateLegacyUser(db *gorm.DB, key []byte, user models.AdminUser) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var existing int64
		err := tx.Model(&models.MfaCredential{}).
			Where("user_id = ?", user.ID).
			Count(&existing).Error
		if err != nil {
			return fmt.Errorf("failed to check credential for admin %d: %w", user.ID, err)
		}

		// The new table wins when both locations hold a secret.
		if existing == 0 && user.LegacyTwoFAEnabled {
			sealed, err := utils.SealSecret(user.LegacyTwoFASecret, key)
			if err != nil {
				return fmt.Errorf("failed to seal legacy secret for admin %d: %w", user.ID, err)
			}

			now := time.Now()
			cred := models.MfaCredential{
				UserID:          user.ID,
				EncryptedSecret: sealed,
				Enabled:         true,
				VerifiedAt:      &now,
			}
			if err := tx.Create(&cred).Error; err != nil {
				return fmt.Errorf("failed to migrate credential for admin %d: %w", user.ID, err)
			}
		}

		err = tx.Model(&models.AdminUser{}).
			Where("id = ?", user.ID).
			Updates(map[string]interface{}{
				"two_fa_secret":  "",
				"two_fa_enabled": false,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to clear legacy columns for admin %d: %w", user.ID, err)
		}
		return nil
	})
}
