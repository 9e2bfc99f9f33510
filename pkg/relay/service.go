package relay

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	dispatchdomain "replyhub-backend/internal/dispatch/domain"
	mailboxdomain "replyhub-backend/internal/mailbox/domain"
	"replyhub-backend/pkg/config"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
)

// Service sends replies through the transactional relay's HTTP API. Unlike
// the mailbox providers the relay does not own the recipient's inbox, so
// threading headers have to be set explicitly and recipients are never
// defaulted.
type Service struct {
	// BaseURL is overridable for tests.
	BaseURL        string
	serverToken    string
	stream         string
	fallbackStream string
	httpClient     *http.Client
}

func NewService(cfg *config.Config) *Service {
	return &Service{
		BaseURL:        cfg.RelayAPIURL,
		serverToken:    cfg.RelayServerToken,
		stream:         cfg.RelayMessageStream,
		fallbackStream: cfg.RelayFallbackStream,
		httpClient:     &http.Client{},
	}
}

type relayHeader struct {
	Name  string `json:"Name"`
	Value string `json:"Value"`
}

type relayPayload struct {
	From          string        `json:"From"`
	To            string        `json:"To"`
	Cc            string        `json:"Cc,omitempty"`
	Bcc           string        `json:"Bcc,omitempty"`
	Subject       string        `json:"Subject"`
	TextBody      string        `json:"TextBody,omitempty"`
	HtmlBody      string        `json:"HtmlBody,omitempty"`
	Headers       []relayHeader `json:"Headers,omitempty"`
	MessageStream string        `json:"MessageStream"`
}

type relayResponse struct {
	MessageID string `json:"MessageID"`
	ErrorCode int    `json:"ErrorCode"`
	Message   string `json:"Message"`
}

// Send delivers one reply through the relay. A stream rejection is retried
// once against the fallback delivery stream; every other error is final.
func (s *Service) Send(ctx context.Context, req *dispatchdomain.SendRequest) (*dispatchdomain.SendOutcome, error) {
	payload := s.buildPayload(req, s.stream)

	messageID, err := s.submit(ctx, payload)
	if err != nil && isStreamRejection(err) && s.fallbackStream != "" && s.fallbackStream != s.stream {
		payload.MessageStream = s.fallbackStream
		messageID, err = s.submit(ctx, payload)
	}
	if err != nil {
		if isDomainPending(err) {
			return nil, &dispatchdomain.DomainPendingError{
				FromDomain:       mailboxdomain.EmailDomain(req.Identity.Email),
				RecipientDomains: dispatchdomain.RecipientDomainsOf(req.To),
			}
		}
		return nil, err
	}

	return &dispatchdomain.SendOutcome{
		ProviderMessageID: messageID,
		Provider:          mailboxdomain.ProviderRelay,
	}, nil
}

func (s *Service) buildPayload(req *dispatchdomain.SendRequest, stream string) *relayPayload {
	payload := &relayPayload{
		From:          req.Identity.Display,
		To:            strings.Join(req.To, ","),
		Cc:            strings.Join(req.Cc, ","),
		Bcc:           strings.Join(req.Bcc, ","),
		Subject:       req.Subject,
		TextBody:      req.BodyText,
		HtmlBody:      req.BodyHTML,
		MessageStream: stream,
	}

	if req.InReplyTo != "" {
		payload.Headers = append(payload.Headers, relayHeader{Name: "In-Reply-To", Value: req.InReplyTo})
	}
	if len(req.References) > 0 {
		payload.Headers = append(payload.Headers, relayHeader{Name: "References", Value: strings.Join(req.References, " ")})
	}

	return payload
}

func (s *Service) submit(ctx context.Context, payload *relayPayload) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+"/email", bytes.NewBuffer(raw))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Postmark-Server-Token", s.serverToken)

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	var parsed relayResponse
	_ = json.Unmarshal(respBody, &parsed)

	if resp.StatusCode != http.StatusOK {
		if parsed.Message != "" {
			return "", fmt.Errorf("relay error %d: %s", parsed.ErrorCode, parsed.Message)
		}
		return "", fmt.Errorf("relay error: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	return parsed.MessageID, nil
}

func isStreamRejection(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "stream")
}

func isDomainPending(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "pending approval") && strings.Contains(msg, "domain")
}

// VerifyCredentials dials the account's own SMTP relay, authenticates, and
// disconnects. Used to keep the relay health status honest without sending.
func (s *Service) VerifyCredentials(host string, port int, useTLS bool, username, password string) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	tlsConfig := &tls.Config{ServerName: host}

	var client *smtp.Client
	var err error
	if useTLS {
		client, err = smtp.DialTLS(addr, tlsConfig)
	} else {
		client, err = smtp.DialStartTLS(addr, tlsConfig)
	}
	if err != nil {
		return fmt.Errorf("unable to reach relay %s: %w", addr, err)
	}
	defer client.Close()

	if err := client.Auth(sasl.NewPlainClient("", username, password)); err != nil {
		return fmt.Errorf("relay rejected credentials: %w", err)
	}
	if err := client.Noop(); err != nil {
		return fmt.Errorf("relay connection unhealthy: %w", err)
	}
	return client.Quit()
}
