package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strings"
	"time"

	mailboxdomain "replyhub-backend/internal/mailbox/domain"
	"replyhub-backend/internal/mailbox/repository"
	"replyhub-backend/pkg/config"
	"replyhub-backend/pkg/crypto"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const domainVerifyPrefix = "replyhub-verify="

// ProfileFetcher resolves the mailbox email address behind an access token.
type ProfileFetcher interface {
	Profile(ctx context.Context, accessToken string) (string, error)
}

// RelayVerifier checks relay SMTP credentials without sending mail.
type RelayVerifier interface {
	VerifyCredentials(host string, port int, useTLS bool, username, password string) error
}

type ConnectRelayRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Host     string `json:"host" binding:"required"`
	Port     int    `json:"port" binding:"required"`
	TLS      bool   `json:"tls"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type SendingIdentityRequest struct {
	SendingType string `json:"sending_type" binding:"required,oneof=shared custom"`
	FromName    string `json:"from_name"`
	FromEmail   string `json:"from_email"`
}

// MailboxUsecase manages connected mailboxes: OAuth connect flows, relay
// accounts, sending-domain verification, and account settings.
type MailboxUsecase interface {
	ConnectURL(provider mailboxdomain.ProviderKind, state string) (string, error)
	HandleOAuthCallback(ctx context.Context, workspaceID, userID string, provider mailboxdomain.ProviderKind, code string) (*mailboxdomain.MailAccount, error)
	ConnectRelay(workspaceID, userID string, req *ConnectRelayRequest) (*mailboxdomain.MailAccount, error)
	VerifyRelay(workspaceID, accountID string) (string, error)
	RequestDomainVerification(workspaceID, accountID, domain string) (string, error)
	VerifyDomain(ctx context.Context, workspaceID, accountID string) (bool, error)
	UpdateSendingIdentity(workspaceID, accountID string, req *SendingIdentityRequest) error
	SetLearningEnabled(workspaceID, accountID string, enabled bool) error
	List(workspaceID string) ([]*mailboxdomain.MailAccount, error)
	Get(workspaceID, accountID string) (*mailboxdomain.MailAccount, error)
	Disconnect(workspaceID, accountID string) error
}

type mailboxUsecase struct {
	accounts       repository.MailAccountRepository
	tokens         *TokenManager
	config         *config.Config
	profileFetcher map[mailboxdomain.ProviderKind]ProfileFetcher
	relayVerifier  RelayVerifier
	lookupTXT      func(ctx context.Context, domain string) ([]string, error)
}

func NewMailboxUsecase(accounts repository.MailAccountRepository, tokens *TokenManager, cfg *config.Config,
	gmailProfiles, outlookProfiles ProfileFetcher, relayVerifier RelayVerifier) MailboxUsecase {
	resolver := &net.Resolver{}
	return &mailboxUsecase{
		accounts: accounts,
		tokens:   tokens,
		config:   cfg,
		profileFetcher: map[mailboxdomain.ProviderKind]ProfileFetcher{
			mailboxdomain.ProviderGoogle:  gmailProfiles,
			mailboxdomain.ProviderOutlook: outlookProfiles,
		},
		relayVerifier: relayVerifier,
		lookupTXT:     resolver.LookupTXT,
	}
}

func (u *mailboxUsecase) ConnectURL(provider mailboxdomain.ProviderKind, state string) (string, error) {
	conf := u.tokens.OAuthConfig(provider)
	if conf == nil {
		return "", fmt.Errorf("provider %s does not support OAuth connect", provider)
	}
	return conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce), nil
}

func (u *mailboxUsecase) HandleOAuthCallback(ctx context.Context, workspaceID, userID string, provider mailboxdomain.ProviderKind, code string) (*mailboxdomain.MailAccount, error) {
	conf := u.tokens.OAuthConfig(provider)
	if conf == nil {
		return nil, fmt.Errorf("provider %s does not support OAuth connect", provider)
	}

	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange failed: %w", err)
	}

	fetcher := u.profileFetcher[provider]
	if fetcher == nil {
		return nil, fmt.Errorf("no profile fetcher for provider %s", provider)
	}
	email, err := fetcher.Profile(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}

	encryptedAccess, err := crypto.Encrypt(token.AccessToken, u.config.EncryptionKey)
	if err != nil {
		return nil, err
	}
	encryptedRefresh := ""
	if token.RefreshToken != "" {
		encryptedRefresh, err = crypto.Encrypt(token.RefreshToken, u.config.EncryptionKey)
		if err != nil {
			return nil, err
		}
	}

	// Reconnecting an already known mailbox replaces its tokens in place.
	account, err := u.accounts.FindByProviderEmail(workspaceID, provider, email)
	if err != nil {
		return nil, err
	}
	if account != nil {
		account.AccessToken = encryptedAccess
		if encryptedRefresh != "" {
			account.RefreshToken = encryptedRefresh
		}
		account.TokenExpiry = token.Expiry
		account.Status = mailboxdomain.AccountConnected
		if err := u.accounts.Update(account); err != nil {
			return nil, err
		}
		return account, nil
	}

	account = &mailboxdomain.MailAccount{
		ID:           uuid.New().String(),
		WorkspaceID:  workspaceID,
		UserID:       userID,
		Provider:     provider,
		Email:        email,
		Status:       mailboxdomain.AccountConnected,
		AccessToken:  encryptedAccess,
		RefreshToken: encryptedRefresh,
		TokenExpiry:  token.Expiry,
		SendingType:  mailboxdomain.SendingShared,
		CreatedAt:    time.Now(),
	}
	if err := u.accounts.Create(account); err != nil {
		return nil, err
	}
	return account, nil
}

func (u *mailboxUsecase) ConnectRelay(workspaceID, userID string, req *ConnectRelayRequest) (*mailboxdomain.MailAccount, error) {
	encryptedUser, err := crypto.Encrypt(req.Username, u.config.EncryptionKey)
	if err != nil {
		return nil, err
	}
	encryptedPass, err := crypto.Encrypt(req.Password, u.config.EncryptionKey)
	if err != nil {
		return nil, err
	}

	account := &mailboxdomain.MailAccount{
		ID:            uuid.New().String(),
		WorkspaceID:   workspaceID,
		UserID:        userID,
		Provider:      mailboxdomain.ProviderRelay,
		Email:         req.Email,
		Status:        mailboxdomain.AccountConnected,
		RelayHost:     req.Host,
		RelayPort:     req.Port,
		RelayTLS:      req.TLS,
		RelayUsername: encryptedUser,
		RelayPassword: encryptedPass,
		RelayStatus:   mailboxdomain.RelayUnverified,
		SendingType:   mailboxdomain.SendingShared,
		CreatedAt:     time.Now(),
	}
	if err := u.accounts.Create(account); err != nil {
		return nil, err
	}
	return account, nil
}

// VerifyRelay probes the account's SMTP relay and records the result.
func (u *mailboxUsecase) VerifyRelay(workspaceID, accountID string) (string, error) {
	account, err := u.requireRelayAccount(workspaceID, accountID)
	if err != nil {
		return "", err
	}

	username := crypto.Decrypt(account.RelayUsername, u.config.EncryptionKey)
	password := crypto.Decrypt(account.RelayPassword, u.config.EncryptionKey)
	if username == "" || password == "" {
		account.RelayStatus = mailboxdomain.RelayFailing
		_ = u.accounts.Update(account)
		return account.RelayStatus, errors.New("stored relay credentials are unreadable")
	}

	if err := u.relayVerifier.VerifyCredentials(account.RelayHost, account.RelayPort, account.RelayTLS, username, password); err != nil {
		log.Printf("[Mailbox] Relay verification failed for %s: %v", account.Email, err)
		account.RelayStatus = mailboxdomain.RelayFailing
		_ = u.accounts.Update(account)
		return account.RelayStatus, err
	}

	account.RelayStatus = mailboxdomain.RelayHealthy
	if err := u.accounts.Update(account); err != nil {
		return "", err
	}
	return account.RelayStatus, nil
}

func (u *mailboxUsecase) RequestDomainVerification(workspaceID, accountID, domain string) (string, error) {
	account, err := u.requireRelayAccount(workspaceID, accountID)
	if err != nil {
		return "", err
	}

	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" || strings.ContainsAny(domain, "@ ") {
		return "", errors.New("invalid sending domain")
	}

	account.SendingDomain = domain
	account.SendingDomainStatus = mailboxdomain.DomainPending
	account.DomainVerifyToken = uuid.New().String()
	if err := u.accounts.Update(account); err != nil {
		return "", err
	}

	return domainVerifyPrefix + account.DomainVerifyToken, nil
}

// VerifyDomain looks for the expected TXT record on the claimed domain and
// marks it verified when found.
func (u *mailboxUsecase) VerifyDomain(ctx context.Context, workspaceID, accountID string) (bool, error) {
	account, err := u.requireRelayAccount(workspaceID, accountID)
	if err != nil {
		return false, err
	}
	if account.SendingDomain == "" || account.DomainVerifyToken == "" {
		return false, errors.New("no domain verification in progress")
	}

	records, err := u.lookupTXT(ctx, account.SendingDomain)
	if err != nil {
		return false, fmt.Errorf("TXT lookup for %s failed: %w", account.SendingDomain, err)
	}

	expected := domainVerifyPrefix + account.DomainVerifyToken
	for _, record := range records {
		if strings.TrimSpace(record) == expected {
			account.SendingDomainStatus = mailboxdomain.DomainVerified
			if err := u.accounts.Update(account); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

func (u *mailboxUsecase) UpdateSendingIdentity(workspaceID, accountID string, req *SendingIdentityRequest) error {
	account, err := u.requireAccount(workspaceID, accountID)
	if err != nil {
		return err
	}

	if req.SendingType == mailboxdomain.SendingCustom {
		if account.Provider != mailboxdomain.ProviderRelay {
			return errors.New("custom sending identities are only available on relay mailboxes")
		}
		if req.FromEmail == "" {
			return errors.New("custom sending requires a from_email")
		}
	}

	account.SendingType = req.SendingType
	account.FromName = req.FromName
	account.FromEmail = strings.TrimSpace(req.FromEmail)
	return u.accounts.Update(account)
}

func (u *mailboxUsecase) SetLearningEnabled(workspaceID, accountID string, enabled bool) error {
	account, err := u.requireAccount(workspaceID, accountID)
	if err != nil {
		return err
	}
	account.LearningEnabled = enabled
	return u.accounts.Update(account)
}

func (u *mailboxUsecase) List(workspaceID string) ([]*mailboxdomain.MailAccount, error) {
	return u.accounts.ListByWorkspace(workspaceID)
}

func (u *mailboxUsecase) Get(workspaceID, accountID string) (*mailboxdomain.MailAccount, error) {
	return u.accounts.FindByID(workspaceID, accountID)
}

// Disconnect soft-disables the account. Rows referenced by threads are never
// hard-deleted.
func (u *mailboxUsecase) Disconnect(workspaceID, accountID string) error {
	account, err := u.requireAccount(workspaceID, accountID)
	if err != nil {
		return err
	}
	account.Status = mailboxdomain.AccountDisconnected
	account.AccessToken = ""
	account.RefreshToken = ""
	return u.accounts.Update(account)
}

func (u *mailboxUsecase) requireAccount(workspaceID, accountID string) (*mailboxdomain.MailAccount, error) {
	account, err := u.accounts.FindByID(workspaceID, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, errors.New("mailbox not found")
	}
	return account, nil
}

func (u *mailboxUsecase) requireRelayAccount(workspaceID, accountID string) (*mailboxdomain.MailAccount, error) {
	account, err := u.requireAccount(workspaceID, accountID)
	if err != nil {
		return nil, err
	}
	if account.Provider != mailboxdomain.ProviderRelay {
		return nil, errors.New("operation only available on relay mailboxes")
	}
	return account, nil
}
