package domain

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestNormalizeReplySubject(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Refund request", "Re: Refund request"},
		{"Re: Refund request", "Re: Refund request"},
		{"RE: Refund request", "RE: Refund request"},
		{"re: already lowered", "re: already lowered"},
		{"  padded  ", "Re: padded"},
		{"", "Re:"},
	}
	for _, tt := range tests {
		if got := NormalizeReplySubject(tt.in); got != tt.want {
			t.Errorf("NormalizeReplySubject(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeMessageID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"msg-1@mail.acme.com", "<msg-1@mail.acme.com>"},
		{"<msg-1@mail.acme.com>", "<msg-1@mail.acme.com>"},
		{" msg-1@mail.acme.com ", "<msg-1@mail.acme.com>"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeMessageID(tt.in); got != tt.want {
			t.Errorf("NormalizeMessageID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRecipientDomainsOf(t *testing.T) {
	got := RecipientDomainsOf([]string{
		"a@Customer.ORG",
		"b@customer.org",
		"c@other.net",
		"broken-address",
		"trailing@",
	})
	want := []string{"customer.org", "other.net"}
	if len(got) != len(want) {
		t.Fatalf("domains = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("domains[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

// Normalizing twice never changes the result.
func TestNormalizeIdempotent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("subject normalization is idempotent", prop.ForAll(
		func(s string) bool {
			once := NormalizeReplySubject(s)
			return NormalizeReplySubject(once) == once
		},
		gen.AnyString(),
	))

	properties.Property("message id normalization is idempotent", prop.ForAll(
		func(s string) bool {
			once := NormalizeMessageID(s)
			return NormalizeMessageID(once) == once
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
