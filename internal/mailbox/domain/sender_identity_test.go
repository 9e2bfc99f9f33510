package domain

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

const (
	sharedEmail = "support@mail.replyhub.io"
	sharedName  = "ReplyHub Support"
)

func relayAccount() *MailAccount {
	return &MailAccount{
		ID:                  "acc-1",
		Provider:            ProviderRelay,
		Email:               "ops@acme.com",
		SendingType:         SendingCustom,
		SendingDomain:       "acme.com",
		SendingDomainStatus: DomainVerified,
		FromEmail:           "help@acme.com",
		FromName:            "Acme Help",
	}
}

func TestResolveSenderIdentityCustom(t *testing.T) {
	identity := ResolveSenderIdentity(relayAccount(), "", sharedEmail, sharedName)

	if identity.Mode != IdentityModeCustom {
		t.Fatalf("expected custom mode, got %s", identity.Mode)
	}
	if identity.Email != "help@acme.com" {
		t.Errorf("expected custom from email, got %s", identity.Email)
	}
	if identity.Name != "Acme Help" {
		t.Errorf("expected custom from name, got %s", identity.Name)
	}
	if !strings.Contains(identity.Display, "help@acme.com") {
		t.Errorf("display should carry the address: %s", identity.Display)
	}
}

func TestResolveSenderIdentityDomainCaseInsensitive(t *testing.T) {
	account := relayAccount()
	account.FromEmail = "help@ACME.com"

	identity := ResolveSenderIdentity(account, "", sharedEmail, sharedName)
	if identity.Mode != IdentityModeCustom {
		t.Fatalf("domain match must be case-insensitive, got mode %s", identity.Mode)
	}
}

func TestResolveSenderIdentitySharedFallbacks(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*MailAccount)
	}{
		{"oauth provider", func(a *MailAccount) { a.Provider = ProviderGoogle }},
		{"shared sending type", func(a *MailAccount) { a.SendingType = SendingShared }},
		{"domain still pending", func(a *MailAccount) { a.SendingDomainStatus = DomainPending }},
		{"no custom from email", func(a *MailAccount) { a.FromEmail = "" }},
		{"from email outside domain", func(a *MailAccount) { a.FromEmail = "help@other.com" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account := relayAccount()
			tt.mutate(account)

			identity := ResolveSenderIdentity(account, "", sharedEmail, sharedName)
			if identity.Mode != IdentityModeShared {
				t.Fatalf("expected shared fallback, got %s", identity.Mode)
			}
			if identity.Email != sharedEmail {
				t.Errorf("expected shared email, got %s", identity.Email)
			}
		})
	}
}

func TestResolveSenderIdentityDisplayNameOverride(t *testing.T) {
	identity := ResolveSenderIdentity(relayAccount(), "Dana", sharedEmail, sharedName)
	if identity.Name != "Dana" {
		t.Errorf("display name override ignored, got %s", identity.Name)
	}

	shared := relayAccount()
	shared.SendingType = SendingShared
	identity = ResolveSenderIdentity(shared, "Dana", sharedEmail, sharedName)
	if identity.Name != "Dana" {
		t.Errorf("display name override ignored on shared identity, got %s", identity.Name)
	}
}

func TestEmailDomain(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{"help@acme.com", "acme.com"},
		{"HELP@ACME.COM", "acme.com"},
		{"weird@local@acme.com", "acme.com"},
		{"no-at-sign", ""},
		{"trailing@", ""},
	}
	for _, tt := range tests {
		if got := EmailDomain(tt.email); got != tt.want {
			t.Errorf("EmailDomain(%q) = %q, want %q", tt.email, got, tt.want)
		}
	}
}

// Custom mode requires every precondition at once; flipping any one of them
// must fall back to the shared identity.
func TestResolveSenderIdentityProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	providers := gen.OneConstOf(ProviderGoogle, ProviderOutlook, ProviderRelay)
	sendingTypes := gen.OneConstOf(SendingShared, SendingCustom)
	domainStatuses := gen.OneConstOf("", DomainPending, DomainVerified)
	fromEmails := gen.OneConstOf("", "help@acme.com", "help@other.com", "help@ACME.com")

	properties.Property("custom mode iff all preconditions hold", prop.ForAll(
		func(provider ProviderKind, sendingType, domainStatus, fromEmail string) bool {
			account := &MailAccount{
				Provider:            provider,
				SendingType:         sendingType,
				SendingDomain:       "acme.com",
				SendingDomainStatus: domainStatus,
				FromEmail:           fromEmail,
			}
			identity := ResolveSenderIdentity(account, "", sharedEmail, sharedName)

			eligible := provider == ProviderRelay &&
				sendingType == SendingCustom &&
				domainStatus == DomainVerified &&
				fromEmail != "" &&
				EmailDomain(fromEmail) == "acme.com"

			if eligible {
				return identity.Mode == IdentityModeCustom && strings.EqualFold(identity.Email, fromEmail)
			}
			return identity.Mode == IdentityModeShared && identity.Email == sharedEmail
		},
		providers, sendingTypes, domainStatuses, fromEmails,
	))

	properties.TestingRun(t)
}
