package repository

import (
	"time"

	learningdomain "replyhub-backend/internal/learning/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LearningProfileRepository defines the interface for learning profile persistence
type LearningProfileRepository interface {
	FindByAccount(mailAccountID string) (*learningdomain.LearningProfile, error)
	// FindOrCreate returns the profile for the mailbox, creating it lazily
	// on the first learning event.
	FindOrCreate(workspaceID, mailAccountID string) (*learningdomain.LearningProfile, error)
	Save(profile *learningdomain.LearningProfile) error
}

type learningProfileRepository struct {
	db *gorm.DB
}

// NewLearningProfileRepository creates a new instance of learningProfileRepository
func NewLearningProfileRepository(db *gorm.DB) LearningProfileRepository {
	return &learningProfileRepository{
		db: db,
	}
}

func (r *learningProfileRepository) FindByAccount(mailAccountID string) (*learningdomain.LearningProfile, error) {
	var profile learningdomain.LearningProfile
	err := r.db.Where("mail_account_id = ?", mailAccountID).First(&profile).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *learningProfileRepository) FindOrCreate(workspaceID, mailAccountID string) (*learningdomain.LearningProfile, error) {
	profile, err := r.FindByAccount(mailAccountID)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		return profile, nil
	}

	profile = &learningdomain.LearningProfile{
		ID:            uuid.New().String(),
		WorkspaceID:   workspaceID,
		MailAccountID: mailAccountID,
		Enabled:       true,
		Rules:         []learningdomain.StyleRule{},
		CreatedAt:     time.Now(),
	}
	if err := r.db.Create(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

func (r *learningProfileRepository) Save(profile *learningdomain.LearningProfile) error {
	profile.UpdatedAt = time.Now()
	return r.db.Save(profile).Error
}
