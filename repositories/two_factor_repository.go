package repositories

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rotzmediagroup/storypixie-admin/models"
	"github.com/rotzmediagroup/storypixie-admin/utils"
)

// ErrNoCredential means no secret is stored for the user, pending or enabled.
var ErrNoCredential = errors.New("no two-factor credential stored")

// TwoFactorRepository persists per-admin TOTP credentials in the single
// authoritative mfa_credentials table. Every call hits the backing store;
// nothing is cached.
type TwoFactorRepository interface {
	// SavePendingSecret stores a fresh unverified secret, replacing any
	// earlier pending one for the same user.
	SavePendingSecret(userID uint, secret string) error
	// GetSecret returns the stored secret, pending or enabled. Internal use
	// only; the secret is never re-exposed through a user-facing read.
	GetSecret(userID uint) (string, error)
	// SetEnabled flips the enabled flag. Disabling also erases the secret,
	// atomically, and is a no-op when nothing is stored.
	SetEnabled(userID uint, enabled bool) error
	// IsEnabled reports enrollment status. A missing credential means "not
	// enabled", never an error.
	IsEnabled(userID uint) (bool, error)
}

type twoFactorRepositoryImpl struct {
	db  *gorm.DB
	key []byte
}

// NewTwoFactorRepository builds the gorm-backed credential store. Secrets are
// sealed with encryptionKey (32 bytes, AES-256-GCM) before they touch the
// database.
func NewTwoFactorRepository(db *gorm.DB, encryptionKey []byte) TwoFactorRepository {
	return &twoFactorRepositoryImpl{db: db, key: encryptionKey}
}

func (r *twoFactorRepositoryImpl) SavePendingSecret(userID uint, secret string) error {
	sealed, err := utils.SealSecret(secret, r.key)
	if err != nil {
		return fmt.Errorf("failed to seal two-factor secret: %w", err)
	}

	cred := models.MfaCredential{
		UserID:          userID,
		EncryptedSecret: sealed,
		Enabled:         false,
	}

	// Restarting setup overwrites any earlier unverified secret; the last
	// writer wins.
	err = r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"encrypted_secret", "enabled", "verified_at", "updated_at"}),
	}).Create(&cred).Error
	if err != nil {
		return fmt.Errorf("failed to store pending two-factor secret: %w", err)
	}
	return nil
}

func (r *twoFactorRepositoryImpl) GetSecret(userID uint) (string, error) {
	var cred models.MfaCredential
	err := r.db.Where("user_id = ?", userID).First(&cred).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNoCredential
	}
	if err != nil {
		return "", fmt.Errorf("failed to load two-factor credential: %w", err)
	}

	secret, err := utils.OpenSecret(cred.EncryptedSecret, r.key)
	if err != nil {
		return "", fmt.Errorf("failed to open two-factor secret: %w", err)
	}
	return secret, nil
}

func (r *twoFactorRepositoryImpl) SetEnabled(userID uint, enabled bool) error {
	if !enabled {
		// Deleting the row clears flag and secret in one write; a second
		// disable finds nothing and affects zero rows.
		err := r.db.Unscoped().Where("user_id = ?", userID).Delete(&models.MfaCredential{}).Error
		if err != nil {
			return fmt.Errorf("failed to disable two-factor credential: %w", err)
		}
		return nil
	}

	res := r.db.Model(&models.MfaCredential{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"enabled":     true,
			"verified_at": gorm.Expr("COALESCE(verified_at, ?)", time.Now()),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to enable two-factor credential: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNoCredential
	}
	return nil
}

func (r *twoFactorRepositoryImpl) IsEnabled(userID uint) (bool, error) {
	var cred models.MfaCredential
	err := r.db.Select("enabled").Where("user_id = ?", userID).First(&cred).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check two-factor status: %w", err)
	}
	return cred.Enabled, nil
}
