package domain

import "time"

// Message is one email on a thread: inbound, outbound, or a pending draft.
// An outbound send either converts an existing draft row in place or inserts
// a new row, never both.
type Message struct {
	ID            string `json:"id" gorm:"primaryKey"`
	ThreadID      string `json:"thread_id" gorm:"index;not null"`
	MailAccountID string `json:"mail_account_id" gorm:"index"`
	WorkspaceID   string `json:"workspace_id" gorm:"index;not null"`

	ProviderMessageID string `json:"provider_message_id"`

	FromMe  bool `json:"from_me"`
	IsDraft bool `json:"is_draft"`

	Subject  string `json:"subject"`
	Snippet  string `json:"snippet"`
	BodyText string `json:"body_text" gorm:"type:text"`
	BodyHTML string `json:"body_html" gorm:"type:text"`

	FromEmail string   `json:"from_email"`
	FromName  string   `json:"from_name"`
	To        []string `json:"to" gorm:"serializer:json"`
	Cc        []string `json:"cc" gorm:"serializer:json"`
	Bcc       []string `json:"bcc" gorm:"serializer:json"`

	// AIDraftText is the AI-proposed reply attached to this message. It is
	// cleared on every message of the thread once a real send completes.
	AIDraftText string `json:"ai_draft_text,omitempty" gorm:"column:ai_draft_text;type:text"`

	SentAt     *time.Time `json:"sent_at,omitempty"`
	ReceivedAt *time.Time `json:"received_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (Message) TableName() string {
	return "messages"
}
