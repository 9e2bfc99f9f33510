package ai

import (
	"context"
)

// DraftContext is everything the model gets to see when proposing a reply:
// the inbound message being answered plus the mailbox's accumulated style
// rules, already filtered by confidence.
type DraftContext struct {
	Subject      string
	CustomerName string
	InboundText  string
	StyleRules   []string
}

// DraftService is the interface for AI reply drafting.
// Implement this interface to add new AI providers (Gemini, Ollama, OpenAI, etc.)
type DraftService interface {
	DraftReply(ctx context.Context, draft DraftContext) (string, error)
}

// ProviderType represents the AI provider type
type ProviderType string

const (
	ProviderGemini ProviderType = "gemini"
	ProviderOllama ProviderType = "ollama"
	ProviderAuto   ProviderType = "auto"
)
