package dto

// SendReplyRequest is the operator-facing payload for replying on a thread.
// Recipients are optional: when absent they default to the sender of the
// latest inbound message, except on relay mailboxes where an explicit
// recipient is required.
type SendReplyRequest struct {
	BodyText string `json:"body_text"`
	BodyHTML string `json:"body_html"`

	// Subject overrides the thread's reply subject when set.
	Subject string `json:"subject"`

	// DisplayName overrides the resolved sender's display name when set.
	DisplayName string `json:"display_name"`

	// DraftMessageID points at a local draft row to convert on success.
	DraftMessageID string `json:"draft_message_id"`

	To  []string `json:"to"`
	Cc  []string `json:"cc"`
	Bcc []string `json:"bcc"`
}

type SendReplyResponse struct {
	Success           bool   `json:"success"`
	MessageID         string `json:"message_id"`
	ProviderMessageID string `json:"provider_message_id"`
	Provider          string `json:"provider"`
}
