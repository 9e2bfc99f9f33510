package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	mailboxdomain "replyhub-backend/internal/mailbox/domain"
	"replyhub-backend/internal/mailbox/repository"
	"replyhub-backend/pkg/config"
	"replyhub-backend/pkg/crypto"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/microsoft"
)

// expiryLeeway is how close to expiry a stored access token may get before
// it is refreshed rather than used.
const expiryLeeway = 60 * time.Second

var googleScopes = []string{
	"https://www.googleapis.com/auth/gmail.send",
	"https://www.googleapis.com/auth/gmail.readonly",
}

var microsoftScopes = []string{
	"offline_access",
	"https://graph.microsoft.com/Mail.ReadWrite",
	"https://graph.microsoft.com/Mail.Send",
}

// TokenManager owns the OAuth token lifecycle for connected mailboxes. It
// decrypts stored tokens, refreshes the ones about to expire, and persists
// the re-encrypted result. Two concurrent refreshes for the same mailbox are
// allowed: the later write wins, which is safe because every request
// re-reads and re-decrypts at the top instead of caching tokens.
type TokenManager struct {
	accounts repository.MailAccountRepository
	config   *config.Config

	// endpointOverride points the refresh exchange at a test server.
	endpointOverride *oauth2.Endpoint
}

func NewTokenManager(accounts repository.MailAccountRepository, cfg *config.Config) *TokenManager {
	return &TokenManager{
		accounts: accounts,
		config:   cfg,
	}
}

// AccessToken returns a usable bearer token for the account, refreshing it
// against the provider's token endpoint when absent or expiring within the
// leeway. An unreadable stored credential is treated as missing.
func (m *TokenManager) AccessToken(ctx context.Context, account *mailboxdomain.MailAccount) (string, error) {
	if !account.IsOAuth() {
		return "", fmt.Errorf("provider %s does not use OAuth tokens", account.Provider)
	}

	access := crypto.Decrypt(account.AccessToken, m.config.EncryptionKey)
	if access != "" && time.Until(account.TokenExpiry) > expiryLeeway {
		return access, nil
	}

	refresh := crypto.Decrypt(account.RefreshToken, m.config.EncryptionKey)
	if refresh == "" {
		return "", mailboxdomain.ErrAuthExpired
	}

	conf := m.OAuthConfig(account.Provider)
	if conf == nil {
		return "", fmt.Errorf("no OAuth configuration for provider %s", account.Provider)
	}

	token, err := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refresh}).Token()
	if err != nil {
		// The provider rejected the refresh token; only a reconnect helps.
		return "", fmt.Errorf("refresh rejected for %s: %w", account.Email, mailboxdomain.ErrAuthExpired)
	}

	if err := m.persistToken(account, token); err != nil {
		// The fresh token is still usable for this request.
		log.Printf("[TokenManager] Failed to persist refreshed token for %s: %v", account.Email, err)
	}

	return token.AccessToken, nil
}

func (m *TokenManager) persistToken(account *mailboxdomain.MailAccount, token *oauth2.Token) error {
	encrypted, err := crypto.Encrypt(token.AccessToken, m.config.EncryptionKey)
	if err != nil {
		return err
	}
	account.AccessToken = encrypted

	if token.RefreshToken != "" {
		encryptedRefresh, err := crypto.Encrypt(token.RefreshToken, m.config.EncryptionKey)
		if err != nil {
			return err
		}
		account.RefreshToken = encryptedRefresh
	}

	account.TokenExpiry = token.Expiry
	return m.accounts.Update(account)
}

// OAuthConfig builds the oauth2 configuration for a provider kind.
func (m *TokenManager) OAuthConfig(provider mailboxdomain.ProviderKind) *oauth2.Config {
	var conf *oauth2.Config
	switch provider {
	case mailboxdomain.ProviderGoogle:
		conf = &oauth2.Config{
			ClientID:     m.config.GoogleClientID,
			ClientSecret: m.config.GoogleClientSecret,
			RedirectURL:  m.config.GoogleRedirectURI,
			Endpoint:     google.Endpoint,
			Scopes:       googleScopes,
		}
	case mailboxdomain.ProviderOutlook:
		conf = &oauth2.Config{
			ClientID:     m.config.MicrosoftClientID,
			ClientSecret: m.config.MicrosoftClientSecret,
			RedirectURL:  m.config.MicrosoftRedirectURI,
			Endpoint:     microsoft.AzureADEndpoint("common"),
			Scopes:       microsoftScopes,
		}
	default:
		return nil
	}

	if m.endpointOverride != nil {
		conf.Endpoint = *m.endpointOverride
	}
	return conf
}
