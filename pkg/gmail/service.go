package gmail

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	dispatchdomain "replyhub-backend/internal/dispatch/domain"
	mailboxdomain "replyhub-backend/internal/mailbox/domain"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Service sends replies through the Gmail API. Tokens arrive already
// refreshed; this client never performs an OAuth exchange itself.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

func (s *Service) gmailService(ctx context.Context, accessToken string) (*gmail.Service, error) {
	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	srv, err := gmail.NewService(ctx, option.WithTokenSource(source))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %v", err)
	}
	return srv, nil
}

// Send builds a raw RFC 5322 message, base64url-encodes it, and submits it
// tagged with the provider-native thread id so Gmail groups it into the
// conversation. No separate reply or draft step is needed.
func (s *Service) Send(ctx context.Context, req *dispatchdomain.SendRequest) (*dispatchdomain.SendOutcome, error) {
	srv, err := s.gmailService(ctx, req.AccessToken)
	if err != nil {
		return nil, err
	}

	raw := BuildRawMessage(req)

	msg := &gmail.Message{
		Raw:      base64.URLEncoding.EncodeToString(raw),
		ThreadId: req.ProviderThreadID,
	}

	resp, err := srv.Users.Messages.Send("me", msg).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to send message: %v", err)
	}

	return &dispatchdomain.SendOutcome{
		ProviderMessageID: resp.Id,
		Provider:          mailboxdomain.ProviderGoogle,
	}, nil
}

// Profile returns the email address of the authorized mailbox.
func (s *Service) Profile(ctx context.Context, accessToken string) (string, error) {
	srv, err := s.gmailService(ctx, accessToken)
	if err != nil {
		return "", err
	}

	profile, err := srv.Users.GetProfile("me").Do()
	if err != nil {
		return "", fmt.Errorf("unable to fetch Gmail profile: %v", err)
	}
	return profile.EmailAddress, nil
}

// BuildRawMessage assembles the RFC 5322 bytes for one outgoing reply.
func BuildRawMessage(req *dispatchdomain.SendRequest) []byte {
	var emailMsg bytes.Buffer
	boundary := "foo_bar_baz"

	fromEmail := req.Account.Email
	fromName := req.Identity.Name
	if fromName != "" {
		encodedName := fmt.Sprintf("=?utf-8?B?%s?=", base64.StdEncoding.EncodeToString([]byte(fromName)))
		emailMsg.WriteString(fmt.Sprintf("From: %s <%s>\r\n", encodedName, fromEmail))
	} else {
		emailMsg.WriteString(fmt.Sprintf("From: %s\r\n", fromEmail))
	}

	emailMsg.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(req.To, ", ")))
	if len(req.Cc) > 0 {
		emailMsg.WriteString(fmt.Sprintf("Cc: %s\r\n", strings.Join(req.Cc, ", ")))
	}
	if len(req.Bcc) > 0 {
		emailMsg.WriteString(fmt.Sprintf("Bcc: %s\r\n", strings.Join(req.Bcc, ", ")))
	}

	// Encode subject to handle non-ASCII characters (RFC 2047)
	encodedSubject := fmt.Sprintf("=?utf-8?B?%s?=", base64.StdEncoding.EncodeToString([]byte(req.Subject)))
	emailMsg.WriteString(fmt.Sprintf("Subject: %s\r\n", encodedSubject))

	if req.InReplyTo != "" {
		emailMsg.WriteString(fmt.Sprintf("In-Reply-To: %s\r\n", req.InReplyTo))
	}
	if len(req.References) > 0 {
		emailMsg.WriteString(fmt.Sprintf("References: %s\r\n", strings.Join(req.References, " ")))
	}

	emailMsg.WriteString("MIME-Version: 1.0\r\n")

	switch {
	case req.BodyText != "" && req.BodyHTML != "":
		emailMsg.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n\r\n", boundary))
		emailMsg.WriteString(fmt.Sprintf("--%s\r\n", boundary))
		emailMsg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
		emailMsg.WriteString(req.BodyText)
		emailMsg.WriteString("\r\n")
		emailMsg.WriteString(fmt.Sprintf("--%s\r\n", boundary))
		emailMsg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
		emailMsg.WriteString(req.BodyHTML)
		emailMsg.WriteString("\r\n")
		emailMsg.WriteString(fmt.Sprintf("--%s--", boundary))
	case req.BodyHTML != "":
		emailMsg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
		emailMsg.WriteString(req.BodyHTML)
	default:
		emailMsg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
		emailMsg.WriteString(req.BodyText)
	}

	return emailMsg.Bytes()
}
