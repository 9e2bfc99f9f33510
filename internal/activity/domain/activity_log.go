package domain

import "time"

const (
	ActivitySendFailed = "send_failed"
	ActivityRelaySend  = "relay_send"
)

// ActivityLog is a diagnostic record consumed by the operator-facing
// activity timeline. Writes are best-effort and never fail a send.
type ActivityLog struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	WorkspaceID string    `json:"workspace_id" gorm:"index;not null"`
	ThreadID    string    `json:"thread_id" gorm:"index"`
	Provider    string    `json:"provider"`
	Kind        string    `json:"kind"`
	Detail      string    `json:"detail" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
}

func (ActivityLog) TableName() string {
	return "activity_logs"
}
