package relay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	dispatchdomain "replyhub-backend/internal/dispatch/domain"
	mailboxdomain "replyhub-backend/internal/mailbox/domain"
	"replyhub-backend/pkg/config"
)

func testService(serverURL string) *Service {
	return NewService(&config.Config{
		RelayAPIURL:         serverURL,
		RelayServerToken:    "server-token",
		RelayMessageStream:  "outbound",
		RelayFallbackStream: "support-transactional",
	})
}

func testRequest() *dispatchdomain.SendRequest {
	return &dispatchdomain.SendRequest{
		Identity: mailboxdomain.SenderIdentity{
			Email:   "support@mail.replyhub.io",
			Name:    "ReplyHub Support",
			Display: `"ReplyHub Support" <support@mail.replyhub.io>`,
		},
		Subject:    "Re: Refund request",
		BodyText:   "On its way.",
		To:         []string{"customer@acme.com"},
		InReplyTo:  "<msg-1@mail.acme.com>",
		References: []string{"<msg-1@mail.acme.com>"},
	}
}

func TestSendSuccess(t *testing.T) {
	var received relayPayload
	var gotToken string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Postmark-Server-Token")
		if r.URL.Path != "/email" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&received)
		json.NewEncoder(w).Encode(relayResponse{MessageID: "relay-id-1"})
	}))
	defer server.Close()

	outcome, err := testService(server.URL).Send(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if outcome.ProviderMessageID != "relay-id-1" {
		t.Errorf("message id = %q", outcome.ProviderMessageID)
	}
	if outcome.Provider != mailboxdomain.ProviderRelay {
		t.Errorf("provider = %q", outcome.Provider)
	}
	if gotToken != "server-token" {
		t.Errorf("server token header = %q", gotToken)
	}
	if received.MessageStream != "outbound" {
		t.Errorf("stream = %q", received.MessageStream)
	}
	if received.From != `"ReplyHub Support" <support@mail.replyhub.io>` {
		t.Errorf("from = %q", received.From)
	}
	if len(received.Headers) != 2 {
		t.Errorf("threading headers missing: %+v", received.Headers)
	}
}

func TestSendStreamFallback(t *testing.T) {
	var streams []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload relayPayload
		json.NewDecoder(r.Body).Decode(&payload)
		streams = append(streams, payload.MessageStream)

		if payload.MessageStream == "outbound" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			json.NewEncoder(w).Encode(relayResponse{
				ErrorCode: 1234,
				Message:   "The stream 'outbound' does not exist on this server",
			})
			return
		}
		json.NewEncoder(w).Encode(relayResponse{MessageID: "relay-id-2"})
	}))
	defer server.Close()

	outcome, err := testService(server.URL).Send(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if outcome.ProviderMessageID != "relay-id-2" {
		t.Errorf("message id = %q", outcome.ProviderMessageID)
	}
	if len(streams) != 2 || streams[0] != "outbound" || streams[1] != "support-transactional" {
		t.Errorf("expected one retry on the fallback stream, got %v", streams)
	}
}

func TestSendDomainPending(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(relayResponse{
			ErrorCode: 412,
			Message:   "Your sender domain is pending approval",
		})
	}))
	defer server.Close()

	req := testRequest()
	req.To = []string{"a@customer.org", "b@customer.org", "c@other.net"}

	_, err := testService(server.URL).Send(context.Background(), req)

	var pending *dispatchdomain.DomainPendingError
	if !errors.As(err, &pending) {
		t.Fatalf("expected DomainPendingError, got %v", err)
	}
	if pending.FromDomain != "mail.replyhub.io" {
		t.Errorf("from domain = %q", pending.FromDomain)
	}
	want := []string{"customer.org", "other.net"}
	if len(pending.RecipientDomains) != len(want) {
		t.Fatalf("recipient domains = %v, want %v", pending.RecipientDomains, want)
	}
	for i := range want {
		if pending.RecipientDomains[i] != want[i] {
			t.Errorf("recipient domain[%d] = %q, want %q", i, pending.RecipientDomains[i], want[i])
		}
	}
}

func TestSendGenericError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(relayResponse{ErrorCode: 10, Message: "Bad or missing server token"})
	}))
	defer server.Close()

	_, err := testService(server.URL).Send(context.Background(), testRequest())
	if err == nil {
		t.Fatal("expected error")
	}
	var pending *dispatchdomain.DomainPendingError
	if errors.As(err, &pending) {
		t.Error("token errors must not be mistaken for domain approval")
	}
}
