package ai

import (
	"fmt"
	"strings"
)

// buildDraftPrompt renders the shared drafting prompt used by every
// provider, so drafts stay comparable when the provider is switched.
func buildDraftPrompt(draft DraftContext) string {
	var prompt strings.Builder
	prompt.WriteString("You are a customer support agent writing a reply email.\n\n")
	prompt.WriteString("RULES:\n")
	prompt.WriteString("- Answer the customer's message directly and helpfully\n")
	prompt.WriteString("- Plain text only, no subject line, no signature block\n")
	for _, rule := range draft.StyleRules {
		prompt.WriteString("- " + rule + "\n")
	}
	if draft.CustomerName != "" {
		prompt.WriteString(fmt.Sprintf("\nCUSTOMER NAME: %s\n", draft.CustomerName))
	}
	if draft.Subject != "" {
		prompt.WriteString(fmt.Sprintf("\nSUBJECT: %s\n", draft.Subject))
	}
	prompt.WriteString(fmt.Sprintf("\nCUSTOMER MESSAGE:\n%s\n\nREPLY:", draft.InboundText))
	return prompt.String()
}
