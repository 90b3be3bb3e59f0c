package models

import (
	"time"

	"gorm.io/gorm"
)

type StoryStatus string

const (
	StoryPending  StoryStatus = "pending"
	StoryFlagged  StoryStatus = "flagged"
	StoryApproved StoryStatus = "approved"
	StoryRejected StoryStatus = "rejected"
)

// Story is a generated story awaiting or past moderation. Content is the full
// generated text; CoverKey points at the cover image in asset storage.
type Story struct {
	gorm.Model
	UserID     uint        `json:"user_id"`
	ModelID    uint        `json:"model_id"`
	Title      string      `json:"title"`
	Summary    string      `json:"summary"`
	Content    string      `json:"content" gorm:"type:text"`
	CoverKey   string      `json:"cover_key"`
	Status     StoryStatus `json:"status" gorm:"default:pending;index"`
	ReviewedBy *uint       `json:"reviewed_by"`
	ReviewNote string      `json:"review_note"`
	ReviewedAt *time.Time  `json:"reviewed_at"`
}
