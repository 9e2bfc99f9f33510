package repository

import (
	"time"

	ticketdomain "replyhub-backend/internal/ticket/domain"

	"gorm.io/gorm"
)

// DraftJobRepository defines the interface for AI draft job persistence
type DraftJobRepository interface {
	Create(job *ticketdomain.DraftJob) error
	SetStatus(id, status string) error
	ListPendingByThread(threadID string) ([]*ticketdomain.DraftJob, error)
	// DeletePending removes pending jobs for the thread+provider pair.
	DeletePending(threadID, provider string) error
}

type draftJobRepository struct {
	db *gorm.DB
}

// NewDraftJobRepository creates a new instance of draftJobRepository
func NewDraftJobRepository(db *gorm.DB) DraftJobRepository {
	return &draftJobRepository{
		db: db,
	}
}

func (r *draftJobRepository) Create(job *ticketdomain.DraftJob) error {
	return r.db.Create(job).Error
}

func (r *draftJobRepository) SetStatus(id, status string) error {
	return r.db.Model(&ticketdomain.DraftJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()}).Error
}

func (r *draftJobRepository) ListPendingByThread(threadID string) ([]*ticketdomain.DraftJob, error) {
	var jobs []*ticketdomain.DraftJob
	err := r.db.Where("thread_id = ? AND status = ?", threadID, ticketdomain.DraftJobPending).Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *draftJobRepository) DeletePending(threadID, provider string) error {
	return r.db.Where("thread_id = ? AND provider = ? AND status = ?", threadID, provider, ticketdomain.DraftJobPending).
		Delete(&ticketdomain.DraftJob{}).Error
}
