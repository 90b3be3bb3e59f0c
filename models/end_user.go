package models

import "gorm.io/gorm"

const (
	EndUserActive    = "active"
	EndUserSuspended = "suspended"
)

// EndUser is a reader account of the Story Pixie app, managed (not created)
// through this panel.
type EndUser struct {
	gorm.Model
	Email        string `json:"email" gorm:"unique;not null"`
	DisplayName  string `json:"display_name"`
	Status       string `json:"status" gorm:"default:active"`
	StoryCredits int    `json:"story_credits"`
}
