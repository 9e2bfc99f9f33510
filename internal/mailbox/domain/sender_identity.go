package domain

import (
	"strings"

	"github.com/emersion/go-message/mail"
)

const (
	IdentityModeCustom = "custom"
	IdentityModeShared = "shared"
)

// SenderIdentity is the From identity a send goes out under.
type SenderIdentity struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Display string `json:"display"` // "Name <email>" form
	Mode    string `json:"mode"`    // "custom" or "shared"
}

// ResolveSenderIdentity decides the From identity for an outgoing reply.
// A custom identity is used only when the account is relay-based, opted into
// custom sending, the sending domain is verified, and the custom From address
// actually belongs to that verified domain. Everything else falls back to the
// platform's shared sender so mail is never sent as an unproven domain.
func ResolveSenderIdentity(account *MailAccount, displayName, sharedEmail, sharedName string) SenderIdentity {
	if account.Provider == ProviderRelay &&
		account.SendingType == SendingCustom &&
		account.SendingDomainStatus == DomainVerified &&
		account.FromEmail != "" &&
		strings.EqualFold(EmailDomain(account.FromEmail), account.SendingDomain) {

		name := account.FromName
		if displayName != "" {
			name = displayName
		}
		return SenderIdentity{
			Email:   account.FromEmail,
			Name:    name,
			Display: formatAddress(name, account.FromEmail),
			Mode:    IdentityModeCustom,
		}
	}

	name := sharedName
	if displayName != "" {
		name = displayName
	}
	return SenderIdentity{
		Email:   sharedEmail,
		Name:    name,
		Display: formatAddress(name, sharedEmail),
		Mode:    IdentityModeShared,
	}
}

// EmailDomain returns the part after the last "@", lowercased.
func EmailDomain(email string) string {
	idx := strings.LastIndex(email, "@")
	if idx < 0 || idx == len(email)-1 {
		return ""
	}
	return strings.ToLower(email[idx+1:])
}

func formatAddress(name, email string) string {
	if name == "" {
		return email
	}
	addr := mail.Address{Name: name, Address: email}
	return addr.String()
}
