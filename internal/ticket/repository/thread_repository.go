package repository

import (
	"time"

	ticketdomain "replyhub-backend/internal/ticket/domain"

	"gorm.io/gorm"
)

// ThreadRepository defines the interface for thread persistence
type ThreadRepository interface {
	FindByID(workspaceID, id string) (*ticketdomain.Thread, error)
	ListByWorkspace(workspaceID, status string, limit, offset int) ([]*ticketdomain.Thread, int64, error)
	Create(thread *ticketdomain.Thread) error
	Update(thread *ticketdomain.Thread) error
}

type threadRepository struct {
	db *gorm.DB
}

// NewThreadRepository creates a new instance of threadRepository
func NewThreadRepository(db *gorm.DB) ThreadRepository {
	return &threadRepository{
		db: db,
	}
}

func (r *threadRepository) FindByID(workspaceID, id string) (*ticketdomain.Thread, error) {
	var thread ticketdomain.Thread
	err := r.db.Where("workspace_id = ? AND id = ?", workspaceID, id).First(&thread).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &thread, nil
}

func (r *threadRepository) ListByWorkspace(workspaceID, status string, limit, offset int) ([]*ticketdomain.Thread, int64, error) {
	query := r.db.Model(&ticketdomain.Thread{}).Where("workspace_id = ?", workspaceID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var threads []*ticketdomain.Thread
	err := query.Order("last_message_at DESC").Limit(limit).Offset(offset).Find(&threads).Error
	if err != nil {
		return nil, 0, err
	}
	return threads, total, nil
}

func (r *threadRepository) Create(thread *ticketdomain.Thread) error {
	return r.db.Create(thread).Error
}

func (r *threadRepository) Update(thread *ticketdomain.Thread) error {
	thread.UpdatedAt = time.Now()
	return r.db.Save(thread).Error
}
