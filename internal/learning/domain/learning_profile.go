package domain

import "time"

// StyleRule is one accumulated tone/style observation with a confidence
// score in [0,1].
type StyleRule struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// LearningProfile holds the per-mailbox style rules evolved from operator
// edits of AI drafts. Created lazily on the first learning event.
type LearningProfile struct {
	ID            string      `json:"id" gorm:"primaryKey"`
	WorkspaceID   string      `json:"workspace_id" gorm:"index;not null"`
	MailAccountID string      `json:"mail_account_id" gorm:"uniqueIndex;not null"`
	Enabled       bool        `json:"enabled"`
	Rules         []StyleRule `json:"rules" gorm:"serializer:json"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

func (LearningProfile) TableName() string {
	return "learning_profiles"
}
