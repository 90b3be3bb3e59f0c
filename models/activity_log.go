package models

import "time"

// ActivityLog records an admin action for the audit trail shown on the
// dashboard. Rows are append-only and pruned by the retention job.
type ActivityLog struct {
	ID        uint `gorm:"primaryKey"`
	AdminID   uint `gorm:"index"`
	Action    string
	Target    string
	Detail    string
	CreatedAt time.Time `gorm:"index"`
}

const (
	ActionLogin             = "login"
	ActionTwoFactorEnabled  = "two_factor_enabled"
	ActionTwoFactorDisabled = "two_factor_disabled"
	ActionStoryApproved     = "story_approved"
	ActionStoryRejected     = "story_rejected"
	ActionStoryDeleted      = "story_deleted"
	ActionUserUpdated       = "user_updated"
	ActionModelUpdated      = "model_updated"
	ActionAdminUpdated      = "admin_updated"
	ActionStoriesExported   = "stories_exported"
)
