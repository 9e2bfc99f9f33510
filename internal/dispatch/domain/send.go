package domain

import (
	"context"
	"strings"

	mailboxdomain "replyhub-backend/internal/mailbox/domain"
)

// SendRequest carries everything a provider needs to deliver one reply.
// The dispatcher resolves identity and access token up front so providers
// never touch the vault or the token lifecycle themselves.
type SendRequest struct {
	Account  *mailboxdomain.MailAccount
	Identity mailboxdomain.SenderIdentity

	// AccessToken is a decrypted, refreshed bearer token. Empty for relay.
	AccessToken string

	// ProviderThreadID groups the message into the provider-native
	// conversation (Gmail threadId).
	ProviderThreadID string

	// ReplyToMessageID is the provider-native id of the inbound message
	// being answered, when one exists.
	ReplyToMessageID string

	// InReplyTo and References are RFC 5322 message ids in angle-bracket
	// form, newest inbound first.
	InReplyTo  string
	References []string

	// ExplicitRecipients is true when the caller supplied the recipient
	// lists instead of defaulting to the inbound sender.
	ExplicitRecipients bool

	Subject  string
	BodyText string
	BodyHTML string

	To  []string
	Cc  []string
	Bcc []string
}

// SendOutcome is the normalized result of a provider delivery.
type SendOutcome struct {
	ProviderMessageID string
	Provider          mailboxdomain.ProviderKind
}

// ProviderSender is implemented once per provider kind. The dispatcher
// selects the variant once, by the account's provider, and never branches
// on provider again downstream.
type ProviderSender interface {
	Send(ctx context.Context, req *SendRequest) (*SendOutcome, error)
}

// NormalizeReplySubject prefixes the subject with "Re: " unless a reply
// prefix is already present.
func NormalizeReplySubject(subject string) string {
	trimmed := strings.TrimSpace(subject)
	if trimmed == "" {
		return "Re:"
	}
	if strings.HasPrefix(strings.ToLower(trimmed), "re:") {
		return trimmed
	}
	return "Re: " + trimmed
}

// NormalizeMessageID wraps a raw message id in angle brackets if needed.
func NormalizeMessageID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}
	if strings.HasPrefix(id, "<") && strings.HasSuffix(id, ">") {
		return id
	}
	return "<" + strings.Trim(id, "<>") + ">"
}
