package repository

import (
	activitydomain "replyhub-backend/internal/activity/domain"

	"gorm.io/gorm"
)

// ActivityLogRepository defines the interface for activity log persistence
type ActivityLogRepository interface {
	Create(entry *activitydomain.ActivityLog) error
	ListByThread(workspaceID, threadID string, limit int) ([]*activitydomain.ActivityLog, error)
}

type activityLogRepository struct {
	db *gorm.DB
}

// NewActivityLogRepository creates a new instance of activityLogRepository
func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepository{
		db: db,
	}
}

func (r *activityLogRepository) Create(entry *activitydomain.ActivityLog) error {
	return r.db.Create(entry).Error
}

func (r *activityLogRepository) ListByThread(workspaceID, threadID string, limit int) ([]*activitydomain.ActivityLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []*activitydomain.ActivityLog
	err := r.db.Where("workspace_id = ? AND thread_id = ?", workspaceID, threadID).
		Order("created_at DESC").Limit(limit).Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
