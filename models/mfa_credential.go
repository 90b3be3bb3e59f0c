package models

import (
	"time"

	"gorm.io/gorm"
)

// MfaCredential holds one admin's TOTP secret and enablement flag. The secret
// is AES-256-GCM sealed before it reaches this struct. A row with
// Enabled=false is a pending, not-yet-verified setup; disabling deletes the
// row entirely so the flag and the secret can never disagree.
type MfaCredential struct {
	gorm.Model
	UserID          uint `gorm:"uniqueIndex;not null"`
	EncryptedSecret []byte
	Enabled         bool
	VerifiedAt      *time.Time
}
