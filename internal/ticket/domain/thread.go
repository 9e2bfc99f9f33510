package domain

import "time"

const (
	ThreadStatusNew     = "new"
	ThreadStatusOpen    = "open"
	ThreadStatusWaiting = "waiting"
	ThreadStatusSolved  = "solved"
)

// Thread is a conversation grouping messages from one mailbox.
type Thread struct {
	ID            string `json:"id" gorm:"primaryKey"`
	WorkspaceID   string `json:"workspace_id" gorm:"index;not null"`
	MailAccountID string `json:"mail_account_id" gorm:"index;not null"`

	// ProviderThreadID is the provider-native conversation id used for
	// reply-chaining (Gmail threadId, Graph conversationId).
	ProviderThreadID string `json:"provider_thread_id"`

	Subject    string `json:"subject"`
	Snippet    string `json:"snippet"`
	Status     string `json:"status"`
	AssigneeID string `json:"assignee_id,omitempty"`
	Priority   string `json:"priority,omitempty"`

	Tags []string `json:"tags" gorm:"serializer:json"`

	LastMessageAt time.Time `json:"last_message_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Thread) TableName() string {
	return "threads"
}
