package models

import "gorm.io/gorm"

const (
	ModelPurposeStory        = "story"
	ModelPurposeIllustration = "illustration"
)

// AIModel is a generation backend configuration. At most one model per
// purpose is active at a time.
type AIModel struct {
	gorm.Model
	Name        string  `json:"name" gorm:"not null"`
	Provider    string  `json:"provider"`
	ModelID     string  `json:"model_id"`
	Purpose     string  `json:"purpose" gorm:"default:story"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	Active      bool    `json:"active"`
}
