package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrRecipientMissing means the caller supplied no recipients and none could
// be defaulted from the thread.
var ErrRecipientMissing = errors.New("no usable recipient for this reply")

// DomainPendingError is returned when the relay refuses a send because the
// sender domain is still pending approval. It carries enough structure for
// the caller to explain the restriction instead of a generic failure.
type DomainPendingError struct {
	FromDomain       string
	RecipientDomains []string
}

func (e *DomainPendingError) Error() string {
	return fmt.Sprintf("sending domain %s is pending approval for recipients on: %s",
		e.FromDomain, strings.Join(e.RecipientDomains, ", "))
}

// RecipientDomainsOf extracts the unique, lowercased domains of a recipient
// list, preserving first-seen order.
func RecipientDomainsOf(recipients []string) []string {
	seen := make(map[string]bool)
	var domains []string
	for _, addr := range recipients {
		idx := strings.LastIndex(addr, "@")
		if idx < 0 || idx == len(addr)-1 {
			continue
		}
		d := strings.ToLower(addr[idx+1:])
		if !seen[d] {
			seen[d] = true
			domains = append(domains, d)
		}
	}
	return domains
}
