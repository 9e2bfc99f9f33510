package gmail

import (
	"encoding/base64"
	"strings"
	"testing"

	dispatchdomain "replyhub-backend/internal/dispatch/domain"
	mailboxdomain "replyhub-backend/internal/mailbox/domain"
)

func rawRequest() *dispatchdomain.SendRequest {
	return &dispatchdomain.SendRequest{
		Account: &mailboxdomain.MailAccount{Email: "agent@example.com"},
		Identity: mailboxdomain.SenderIdentity{
			Email: "agent@example.com",
			Name:  "Agent",
		},
		Subject:    "Re: Refund request",
		BodyText:   "Your refund is on the way.",
		To:         []string{"customer@acme.com"},
		Cc:         []string{"lead@acme.com"},
		InReplyTo:  "<msg-1@mail.acme.com>",
		References: []string{"<msg-0@mail.acme.com>", "<msg-1@mail.acme.com>"},
	}
}

func TestBuildRawMessageHeaders(t *testing.T) {
	raw := string(BuildRawMessage(rawRequest()))

	wantLines := []string{
		"To: customer@acme.com\r\n",
		"Cc: lead@acme.com\r\n",
		"In-Reply-To: <msg-1@mail.acme.com>\r\n",
		"References: <msg-0@mail.acme.com> <msg-1@mail.acme.com>\r\n",
		"MIME-Version: 1.0\r\n",
	}
	for _, line := range wantLines {
		if !strings.Contains(raw, line) {
			t.Errorf("raw message missing %q", line)
		}
	}

	if !strings.Contains(raw, "From: =?utf-8?B?") || !strings.Contains(raw, "<agent@example.com>") {
		t.Errorf("display name not RFC 2047 encoded in From: %s", raw)
	}

	encodedSubject := base64.StdEncoding.EncodeToString([]byte("Re: Refund request"))
	if !strings.Contains(raw, "Subject: =?utf-8?B?"+encodedSubject+"?=") {
		t.Errorf("subject not RFC 2047 encoded: %s", raw)
	}
}

func TestBuildRawMessagePlainTextOnly(t *testing.T) {
	req := rawRequest()
	req.BodyHTML = ""
	raw := string(BuildRawMessage(req))

	if !strings.Contains(raw, `Content-Type: text/plain; charset="UTF-8"`) {
		t.Error("plain text body missing content type")
	}
	if strings.Contains(raw, "multipart/alternative") {
		t.Error("single-part message must not be multipart")
	}
	if !strings.HasSuffix(raw, "Your refund is on the way.") {
		t.Errorf("body not at end of message: %q", raw)
	}
}

func TestBuildRawMessageMultipart(t *testing.T) {
	req := rawRequest()
	req.BodyHTML = "<p>Your refund is on the way.</p>"
	raw := string(BuildRawMessage(req))

	if !strings.Contains(raw, `Content-Type: multipart/alternative; boundary="foo_bar_baz"`) {
		t.Error("multipart content type missing")
	}
	if !strings.Contains(raw, `Content-Type: text/plain; charset="UTF-8"`) ||
		!strings.Contains(raw, `Content-Type: text/html; charset="UTF-8"`) {
		t.Error("multipart message must carry both alternatives")
	}
	if !strings.HasSuffix(raw, "--foo_bar_baz--") {
		t.Error("multipart message must end with the closing boundary")
	}
}

func TestBuildRawMessageNoDisplayName(t *testing.T) {
	req := rawRequest()
	req.Identity.Name = ""
	raw := string(BuildRawMessage(req))

	if !strings.Contains(raw, "From: agent@example.com\r\n") {
		t.Errorf("bare address expected without display name: %s", raw)
	}
}

func TestBuildRawMessageHTMLOnly(t *testing.T) {
	req := rawRequest()
	req.BodyText = ""
	req.BodyHTML = "<p>hi</p>"
	raw := string(BuildRawMessage(req))

	if !strings.Contains(raw, `Content-Type: text/html; charset="UTF-8"`) {
		t.Error("html body missing content type")
	}
	if strings.Contains(raw, "multipart/alternative") {
		t.Error("html-only message must not be multipart")
	}
}
