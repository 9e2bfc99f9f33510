package usecase

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mailboxdomain "replyhub-backend/internal/mailbox/domain"
	"replyhub-backend/pkg/config"
	"replyhub-backend/pkg/crypto"

	"golang.org/x/oauth2"
)

const testPassphrase = "unit-test-passphrase"

type fakeAccountRepo struct {
	accounts map[string]*mailboxdomain.MailAccount
	updates  int
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[string]*mailboxdomain.MailAccount)}
}

func (r *fakeAccountRepo) FindByID(workspaceID, id string) (*mailboxdomain.MailAccount, error) {
	return r.accounts[id], nil
}

func (r *fakeAccountRepo) FindByProviderEmail(workspaceID string, provider mailboxdomain.ProviderKind, email string) (*mailboxdomain.MailAccount, error) {
	for _, a := range r.accounts {
		if a.Provider == provider && a.Email == email {
			return a, nil
		}
	}
	return nil, nil
}

func (r *fakeAccountRepo) ListByWorkspace(workspaceID string) ([]*mailboxdomain.MailAccount, error) {
	var out []*mailboxdomain.MailAccount
	for _, a := range r.accounts {
		out = append(out, a)
	}
	return out, nil
}

func (r *fakeAccountRepo) Create(account *mailboxdomain.MailAccount) error {
	r.accounts[account.ID] = account
	return nil
}

func (r *fakeAccountRepo) Update(account *mailboxdomain.MailAccount) error {
	r.updates++
	r.accounts[account.ID] = account
	return nil
}

func encryptOrDie(t *testing.T, plaintext string) string {
	t.Helper()
	out, err := crypto.Encrypt(plaintext, testPassphrase)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	return out
}

func testTokenManager(t *testing.T, repo *fakeAccountRepo, tokenURL string) *TokenManager {
	t.Helper()
	cfg := &config.Config{
		EncryptionKey:      testPassphrase,
		GoogleClientID:     "client-id",
		GoogleClientSecret: "client-secret",
		GoogleRedirectURI:  "http://localhost/callback",
	}
	m := NewTokenManager(repo, cfg)
	if tokenURL != "" {
		m.endpointOverride = &oauth2.Endpoint{TokenURL: tokenURL, AuthURL: tokenURL}
	}
	return m
}

func TestAccessTokenFreshTokenSkipsRefresh(t *testing.T) {
	refreshCalls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		refreshCalls++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"should-not-be-used","token_type":"Bearer","expires_in":3600}`))
	}))
	defer server.Close()

	repo := newFakeAccountRepo()
	account := &mailboxdomain.MailAccount{
		ID:           "acc-1",
		Provider:     mailboxdomain.ProviderGoogle,
		Email:        "agent@example.com",
		AccessToken:  encryptOrDie(t, "live-access-token"),
		RefreshToken: encryptOrDie(t, "refresh-token"),
		TokenExpiry:  time.Now().Add(30 * time.Minute),
	}
	repo.Create(account)

	m := testTokenManager(t, repo, server.URL)
	got, err := m.AccessToken(context.Background(), account)
	if err != nil {
		t.Fatalf("AccessToken: %v", err)
	}
	if got != "live-access-token" {
		t.Errorf("expected stored token, got %q", got)
	}
	if refreshCalls != 0 {
		t.Errorf("fresh token must not hit the token endpoint, got %d calls", refreshCalls)
	}
}

func TestAccessTokenRefreshesExpiring(t *testing.T) {
	refreshCalls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		refreshCalls++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"refreshed-token","token_type":"Bearer","expires_in":3600,"refresh_token":"rotated-refresh"}`))
	}))
	defer server.Close()

	repo := newFakeAccountRepo()
	account := &mailboxdomain.MailAccount{
		ID:           "acc-1",
		Provider:     mailboxdomain.ProviderGoogle,
		Email:        "agent@example.com",
		AccessToken:  encryptOrDie(t, "stale-token"),
		RefreshToken: encryptOrDie(t, "refresh-token"),
		// Inside the leeway window: must refresh.
		TokenExpiry: time.Now().Add(10 * time.Second),
	}
	repo.Create(account)

	m := testTokenManager(t, repo, server.URL)
	got, err := m.AccessToken(context.Background(), account)
	if err != nil {
		t.Fatalf("AccessToken: %v", err)
	}
	if got != "refreshed-token" {
		t.Errorf("expected refreshed token, got %q", got)
	}
	if refreshCalls != 1 {
		t.Errorf("expected exactly one refresh call, got %d", refreshCalls)
	}
	if repo.updates != 1 {
		t.Errorf("refreshed token should be persisted once, got %d updates", repo.updates)
	}

	stored := repo.accounts["acc-1"]
	if crypto.Decrypt(stored.AccessToken, testPassphrase) != "refreshed-token" {
		t.Error("persisted access token does not round-trip")
	}
	if crypto.Decrypt(stored.RefreshToken, testPassphrase) != "rotated-refresh" {
		t.Error("rotated refresh token was not persisted")
	}
	if !stored.TokenExpiry.After(time.Now().Add(30 * time.Minute)) {
		t.Error("persisted expiry was not advanced")
	}
}

func TestAccessTokenMissingRefreshToken(t *testing.T) {
	repo := newFakeAccountRepo()
	account := &mailboxdomain.MailAccount{
		ID:          "acc-1",
		Provider:    mailboxdomain.ProviderOutlook,
		Email:       "agent@example.com",
		AccessToken: encryptOrDie(t, "stale-token"),
		TokenExpiry: time.Now().Add(-time.Minute),
	}
	repo.Create(account)

	m := testTokenManager(t, repo, "")
	_, err := m.AccessToken(context.Background(), account)
	if !errors.Is(err, mailboxdomain.ErrAuthExpired) {
		t.Fatalf("expected ErrAuthExpired, got %v", err)
	}
}

func TestAccessTokenRefreshRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer server.Close()

	repo := newFakeAccountRepo()
	account := &mailboxdomain.MailAccount{
		ID:           "acc-1",
		Provider:     mailboxdomain.ProviderGoogle,
		Email:        "agent@example.com",
		AccessToken:  encryptOrDie(t, "stale-token"),
		RefreshToken: encryptOrDie(t, "revoked-refresh"),
		TokenExpiry:  time.Now().Add(-time.Minute),
	}
	repo.Create(account)

	m := testTokenManager(t, repo, server.URL)
	_, err := m.AccessToken(context.Background(), account)
	if !errors.Is(err, mailboxdomain.ErrAuthExpired) {
		t.Fatalf("rejected refresh should surface as ErrAuthExpired, got %v", err)
	}
}

func TestAccessTokenNonOAuthProvider(t *testing.T) {
	repo := newFakeAccountRepo()
	account := &mailboxdomain.MailAccount{ID: "acc-1", Provider: mailboxdomain.ProviderRelay}
	repo.Create(account)

	m := testTokenManager(t, repo, "")
	if _, err := m.AccessToken(context.Background(), account); err == nil {
		t.Fatal("expected error for relay provider")
	}
}

func TestOAuthConfigProviders(t *testing.T) {
	m := testTokenManager(t, newFakeAccountRepo(), "")

	if conf := m.OAuthConfig(mailboxdomain.ProviderGoogle); conf == nil || conf.ClientID != "client-id" {
		t.Error("google config missing or misconfigured")
	}
	if conf := m.OAuthConfig(mailboxdomain.ProviderOutlook); conf == nil {
		t.Error("outlook config missing")
	}
	if conf := m.OAuthConfig(mailboxdomain.ProviderRelay); conf != nil {
		t.Error("relay must not get an OAuth config")
	}
}
