package repository

import (
	"time"

	mailboxdomain "replyhub-backend/internal/mailbox/domain"

	"gorm.io/gorm"
)

// MailAccountRepository defines the interface for mail account persistence
type MailAccountRepository interface {
	FindByID(workspaceID, id string) (*mailboxdomain.MailAccount, error)
	FindByProviderEmail(workspaceID string, provider mailboxdomain.ProviderKind, email string) (*mailboxdomain.MailAccount, error)
	ListByWorkspace(workspaceID string) ([]*mailboxdomain.MailAccount, error)
	Create(account *mailboxdomain.MailAccount) error
	Update(account *mailboxdomain.MailAccount) error
}

type mailAccountRepository struct {
	db *gorm.DB
}

// NewMailAccountRepository creates a new instance of mailAccountRepository
func NewMailAccountRepository(db *gorm.DB) MailAccountRepository {
	return &mailAccountRepository{
		db: db,
	}
}

func (r *mailAccountRepository) FindByID(workspaceID, id string) (*mailboxdomain.MailAccount, error) {
	var account mailboxdomain.MailAccount
	err := r.db.Where("workspace_id = ? AND id = ?", workspaceID, id).First(&account).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *mailAccountRepository) FindByProviderEmail(workspaceID string, provider mailboxdomain.ProviderKind, email string) (*mailboxdomain.MailAccount, error) {
	var account mailboxdomain.MailAccount
	err := r.db.Where("workspace_id = ? AND provider = ? AND email = ?", workspaceID, provider, email).First(&account).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *mailAccountRepository) ListByWorkspace(workspaceID string) ([]*mailboxdomain.MailAccount, error) {
	var accounts []*mailboxdomain.MailAccount
	err := r.db.Where("workspace_id = ?", workspaceID).Order("created_at ASC").Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *mailAccountRepository) Create(account *mailboxdomain.MailAccount) error {
	return r.db.Create(account).Error
}

// Update writes the whole row. Token refresh relies on this being an
// unconditional last-write-wins save scoped by primary key.
func (r *mailAccountRepository) Update(account *mailboxdomain.MailAccount) error {
	account.UpdatedAt = time.Now()
	return r.db.Save(account).Error
}
