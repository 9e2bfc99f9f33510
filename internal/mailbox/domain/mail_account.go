package domain

import (
	"errors"
	"time"
)

// ProviderKind identifies the channel a mailbox sends through.
type ProviderKind string

const (
	ProviderGoogle  ProviderKind = "google"
	ProviderOutlook ProviderKind = "outlook"
	ProviderRelay   ProviderKind = "relay"
)

const (
	AccountConnected    = "connected"
	AccountDisconnected = "disconnected"
)

const (
	SendingShared = "shared"
	SendingCustom = "custom"
)

const (
	DomainPending  = "pending"
	DomainVerified = "verified"
)

const (
	RelayUnverified = "unverified"
	RelayHealthy    = "healthy"
	RelayFailing    = "failing"
)

// ErrAuthExpired means the stored refresh token is absent or was rejected by
// the provider. The caller should prompt for reconnection, not retry.
var ErrAuthExpired = errors.New("mailbox authorization expired, reconnect required")

// MailAccount is one connected mailbox. OAuth fields are populated for the
// google/outlook providers, relay fields only for provider "relay". Token and
// relay credential fields hold vault envelopes, never plaintext.
type MailAccount struct {
	ID          string       `json:"id" gorm:"primaryKey"`
	WorkspaceID string       `json:"workspace_id" gorm:"index;not null"`
	UserID      string       `json:"user_id" gorm:"index"`
	Provider    ProviderKind `json:"provider" gorm:"not null"`
	Email       string       `json:"email"`
	Status      string       `json:"status"` // "connected" or "disconnected"

	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	TokenExpiry  time.Time `json:"token_expiry"`

	RelayHost     string `json:"relay_host,omitempty"`
	RelayPort     int    `json:"relay_port,omitempty"`
	RelayTLS      bool   `json:"relay_tls,omitempty"`
	RelayUsername string `json:"-"`
	RelayPassword string `json:"-"`
	RelayStatus   string `json:"relay_status,omitempty"`

	SendingType         string `json:"sending_type"` // "shared" or "custom"
	SendingDomain       string `json:"sending_domain,omitempty"`
	SendingDomainStatus string `json:"sending_domain_status,omitempty"`
	DomainVerifyToken   string `json:"-"`

	FromName  string `json:"from_name,omitempty"`
	FromEmail string `json:"from_email,omitempty"`

	LearningEnabled bool `json:"learning_enabled"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (MailAccount) TableName() string {
	return "mail_accounts"
}

// IsOAuth reports whether the account authenticates through a mailbox API.
func (a *MailAccount) IsOAuth() bool {
	return a.Provider == ProviderGoogle || a.Provider == ProviderOutlook
}
