package outlook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	dispatchdomain "replyhub-backend/internal/dispatch/domain"
	mailboxdomain "replyhub-backend/internal/mailbox/domain"
)

// Service sends replies through the Microsoft Graph API. Graph does not
// accept full message construction in a single reply call, so replying is a
// create-reply-draft, patch, send sequence.
type Service struct {
	// BaseURL is overridable for tests.
	BaseURL    string
	httpClient *http.Client
}

func NewService() *Service {
	return &Service{
		BaseURL:    "https://graph.microsoft.com/v1.0",
		httpClient: &http.Client{},
	}
}

type graphRecipient struct {
	EmailAddress struct {
		Address string `json:"address"`
	} `json:"emailAddress"`
}

type graphBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type graphMessage struct {
	ID            string           `json:"id,omitempty"`
	Subject       string           `json:"subject,omitempty"`
	Body          *graphBody       `json:"body,omitempty"`
	ToRecipients  []graphRecipient `json:"toRecipients,omitempty"`
	CcRecipients  []graphRecipient `json:"ccRecipients,omitempty"`
	BccRecipients []graphRecipient `json:"bccRecipients,omitempty"`
}

func toRecipients(addrs []string) []graphRecipient {
	recipients := make([]graphRecipient, 0, len(addrs))
	for _, addr := range addrs {
		var r graphRecipient
		r.EmailAddress.Address = addr
		recipients = append(recipients, r)
	}
	return recipients
}

func messageBody(req *dispatchdomain.SendRequest) *graphBody {
	if req.BodyHTML != "" {
		return &graphBody{ContentType: "html", Content: req.BodyHTML}
	}
	return &graphBody{ContentType: "text", Content: req.BodyText}
}

// Send delivers one reply. With an inbound message to answer and no explicit
// recipient override it creates a reply draft, patches body and recipients,
// then sends the draft. Otherwise it creates a new message and sends that.
func (s *Service) Send(ctx context.Context, req *dispatchdomain.SendRequest) (*dispatchdomain.SendOutcome, error) {
	var messageID string
	var err error

	if req.ReplyToMessageID != "" && !req.ExplicitRecipients {
		messageID, err = s.sendAsReplyDraft(ctx, req)
	} else {
		messageID, err = s.sendAsNewMessage(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	return &dispatchdomain.SendOutcome{
		ProviderMessageID: messageID,
		Provider:          mailboxdomain.ProviderOutlook,
	}, nil
}

func (s *Service) sendAsReplyDraft(ctx context.Context, req *dispatchdomain.SendRequest) (string, error) {
	// createReply pre-populates recipients and threading headers from the
	// inbound message; the body and any caller-supplied recipients are
	// patched in on top.
	var draft graphMessage
	url := fmt.Sprintf("%s/me/messages/%s/createReply", s.BaseURL, req.ReplyToMessageID)
	if err := s.do(ctx, req.AccessToken, http.MethodPost, url, struct{}{}, &draft); err != nil {
		return "", fmt.Errorf("unable to create reply draft: %w", err)
	}
	if draft.ID == "" {
		return "", fmt.Errorf("reply draft created without an id")
	}

	patch := graphMessage{Body: messageBody(req)}
	if len(req.To) > 0 {
		patch.ToRecipients = toRecipients(req.To)
	}
	if len(req.Cc) > 0 {
		patch.CcRecipients = toRecipients(req.Cc)
	}
	if len(req.Bcc) > 0 {
		patch.BccRecipients = toRecipients(req.Bcc)
	}
	url = fmt.Sprintf("%s/me/messages/%s", s.BaseURL, draft.ID)
	if err := s.do(ctx, req.AccessToken, http.MethodPatch, url, patch, nil); err != nil {
		return "", fmt.Errorf("unable to patch reply draft: %w", err)
	}

	url = fmt.Sprintf("%s/me/messages/%s/send", s.BaseURL, draft.ID)
	if err := s.do(ctx, req.AccessToken, http.MethodPost, url, nil, nil); err != nil {
		return "", fmt.Errorf("unable to send reply draft: %w", err)
	}

	return draft.ID, nil
}

func (s *Service) sendAsNewMessage(ctx context.Context, req *dispatchdomain.SendRequest) (string, error) {
	create := graphMessage{
		Subject:       req.Subject,
		Body:          messageBody(req),
		ToRecipients:  toRecipients(req.To),
		CcRecipients:  toRecipients(req.Cc),
		BccRecipients: toRecipients(req.Bcc),
	}

	var draft graphMessage
	url := fmt.Sprintf("%s/me/messages", s.BaseURL)
	if err := s.do(ctx, req.AccessToken, http.MethodPost, url, create, &draft); err != nil {
		return "", fmt.Errorf("unable to create message: %w", err)
	}
	if draft.ID == "" {
		return "", fmt.Errorf("message created without an id")
	}

	url = fmt.Sprintf("%s/me/messages/%s/send", s.BaseURL, draft.ID)
	if err := s.do(ctx, req.AccessToken, http.MethodPost, url, nil, nil); err != nil {
		return "", fmt.Errorf("unable to send message: %w", err)
	}

	return draft.ID, nil
}

// Profile returns the email address of the authorized mailbox.
func (s *Service) Profile(ctx context.Context, accessToken string) (string, error) {
	var me struct {
		Mail              string `json:"mail"`
		UserPrincipalName string `json:"userPrincipalName"`
	}
	if err := s.do(ctx, accessToken, http.MethodGet, s.BaseURL+"/me", nil, &me); err != nil {
		return "", fmt.Errorf("unable to fetch Graph profile: %w", err)
	}
	if me.Mail != "" {
		return me.Mail, nil
	}
	return me.UserPrincipalName, nil
}

func (s *Service) do(ctx context.Context, accessToken, method, url string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewBuffer(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("Graph API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return err
		}
	}
	return nil
}
