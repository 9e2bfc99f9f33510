package repository

import (
	"time"

	ticketdomain "replyhub-backend/internal/ticket/domain"

	"gorm.io/gorm"
)

// MessageRepository defines the interface for message persistence
type MessageRepository interface {
	FindByID(workspaceID, id string) (*ticketdomain.Message, error)
	ListByThread(threadID string) ([]*ticketdomain.Message, error)
	// LatestInbound returns the most recent message not sent by us, or nil.
	LatestInbound(threadID string) (*ticketdomain.Message, error)
	// RecentInboundProviderIDs returns provider-native ids of the most
	// recent inbound messages, newest first.
	RecentInboundProviderIDs(threadID string, limit int) ([]string, error)
	// LatestAIDraftText returns the newest non-empty AI draft on the thread.
	LatestAIDraftText(threadID string) (string, error)
	// ClearAIDrafts blanks ai_draft_text on every message of the thread.
	ClearAIDrafts(threadID string) error
	Create(message *ticketdomain.Message) error
	Update(message *ticketdomain.Message) error
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new instance of messageRepository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{
		db: db,
	}
}

func (r *messageRepository) FindByID(workspaceID, id string) (*ticketdomain.Message, error) {
	var message ticketdomain.Message
	err := r.db.Where("workspace_id = ? AND id = ?", workspaceID, id).First(&message).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &message, nil
}

func (r *messageRepository) ListByThread(threadID string) ([]*ticketdomain.Message, error) {
	var messages []*ticketdomain.Message
	err := r.db.Where("thread_id = ?", threadID).Order("created_at ASC").Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *messageRepository) LatestInbound(threadID string) (*ticketdomain.Message, error) {
	var message ticketdomain.Message
	err := r.db.Where("thread_id = ? AND from_me = ? AND is_draft = ?", threadID, false, false).
		Order("received_at DESC").First(&message).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &message, nil
}

func (r *messageRepository) RecentInboundProviderIDs(threadID string, limit int) ([]string, error) {
	var messages []*ticketdomain.Message
	err := r.db.Select("provider_message_id").
		Where("thread_id = ? AND from_me = ? AND is_draft = ? AND provider_message_id <> ''", threadID, false, false).
		Order("received_at DESC").Limit(limit).Find(&messages).Error
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(messages))
	for _, m := range messages {
		ids = append(ids, m.ProviderMessageID)
	}
	return ids, nil
}

func (r *messageRepository) LatestAIDraftText(threadID string) (string, error) {
	var message ticketdomain.Message
	err := r.db.Where("thread_id = ? AND ai_draft_text <> ''", threadID).
		Order("created_at DESC").First(&message).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", nil
		}
		return "", err
	}
	return message.AIDraftText, nil
}

func (r *messageRepository) ClearAIDrafts(threadID string) error {
	return r.db.Model(&ticketdomain.Message{}).
		Where("thread_id = ?", threadID).
		Update("ai_draft_text", "").Error
}

func (r *messageRepository) Create(message *ticketdomain.Message) error {
	return r.db.Create(message).Error
}

func (r *messageRepository) Update(message *ticketdomain.Message) error {
	message.UpdatedAt = time.Now()
	return r.db.Save(message).Error
}
