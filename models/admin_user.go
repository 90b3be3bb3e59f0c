package models

import (
	"time"

	"gorm.io/gorm"
)

type AdminRole string

const (
	RoleOwner     AdminRole = "owner"
	RoleAdmin     AdminRole = "admin"
	RoleModerator AdminRole = "moderator"
)

var roleRank = map[AdminRole]int{
	RoleModerator: 1,
	RoleAdmin:     2,
	RoleOwner:     3,
}

// AtLeast reports whether the role grants everything `other` grants.
func (r AdminRole) AtLeast(other AdminRole) bool {
	return roleRank[r] >= roleRank[other]
}

func (r AdminRole) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

type AdminUser struct {
	gorm.Model
	Email        string     `json:"email" gorm:"unique;not null"`
	Name         string     `json:"name"`
	PasswordHash string     `json:"-"`
	Role         AdminRole  `json:"role" gorm:"default:moderator"`
	Provider     string     `json:"provider"`
	Suspended    bool       `json:"suspended"`
	LastLoginAt  *time.Time `json:"last_login_at"`

	// Legacy columns from the first admin panel release, read only by the
	// one-time migration into mfa_credentials.
	LegacyTwoFASecret  string `json:"-" gorm:"column:two_fa_secret"`
	LegacyTwoFAEnabled bool   `json:"-" gorm:"column:two_fa_enabled"`
}
