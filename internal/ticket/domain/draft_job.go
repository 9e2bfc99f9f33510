package domain

import "time"

const (
	DraftJobPending = "pending"
	DraftJobDone    = "done"
	DraftJobFailed  = "failed"
)

// DraftJob tracks an AI draft generation request for a thread. Pending jobs
// for a thread+provider pair are deleted once a real reply goes out.
type DraftJob struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	WorkspaceID   string    `json:"workspace_id" gorm:"index;not null"`
	ThreadID      string    `json:"thread_id" gorm:"index;not null"`
	MailAccountID string    `json:"mail_account_id"`
	Provider      string    `json:"provider"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (DraftJob) TableName() string {
	return "draft_jobs"
}
