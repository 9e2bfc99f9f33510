package ai

import (
	"context"
	"fmt"

	"replyhub-backend/pkg/gemini"
)

// Config holds AI provider configuration
type Config struct {
	Provider ProviderType // "gemini", "ollama", or "auto"

	// Gemini config
	GeminiAPIKey string
	GeminiModel  string

	// Ollama config
	OllamaBaseURL string // e.g., "http://localhost:11434"
	OllamaModel   string // e.g., "llama3", "mistral"
}

// geminiDraftService adapts the raw Gemini client to DraftService.
type geminiDraftService struct {
	client *gemini.GeminiService
}

func (s *geminiDraftService) DraftReply(ctx context.Context, draft DraftContext) (string, error) {
	return s.client.Generate(ctx, buildDraftPrompt(draft))
}

// DynamicConfig is Config with runtime-updatable Ollama settings.
type DynamicConfig struct {
	Provider ProviderType

	GeminiAPIKey string
	GeminiModel  string

	GetOllamaBaseURL func() string
	GetOllamaModel   func() string
}

// NewDraftServiceWithDynamicConfig builds a DraftService whose Ollama
// settings are read through getters on every request, so they can be
// changed through the settings API without a restart.
func NewDraftServiceWithDynamicConfig(cfg DynamicConfig) (DraftService, error) {
	ollama := NewOllamaServiceWithGetters(cfg.GetOllamaBaseURL, cfg.GetOllamaModel)

	switch cfg.Provider {
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for Gemini provider")
		}
		return &geminiDraftService{client: gemini.NewGeminiService(cfg.GeminiAPIKey, cfg.GeminiModel)}, nil

	case ProviderOllama:
		return ollama, nil

	default:
		if cfg.GeminiAPIKey != "" {
			g := &geminiDraftService{client: gemini.NewGeminiService(cfg.GeminiAPIKey, cfg.GeminiModel)}
			return NewFallbackService(g, ollama), nil
		}
		return ollama, nil
	}
}

// NewDraftService creates a DraftService based on the config
// This is the factory function - switch AI provider by changing config.Provider
func NewDraftService(cfg Config) (DraftService, error) {
	switch cfg.Provider {
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for Gemini provider")
		}
		return &geminiDraftService{client: gemini.NewGeminiService(cfg.GeminiAPIKey, cfg.GeminiModel)}, nil

	case ProviderOllama:
		return NewOllamaService(cfg.OllamaBaseURL, cfg.OllamaModel), nil

	default:
		// "auto" routes through both providers with fallback when possible
		if cfg.GeminiAPIKey != "" {
			g := &geminiDraftService{client: gemini.NewGeminiService(cfg.GeminiAPIKey, cfg.GeminiModel)}
			if cfg.OllamaBaseURL != "" {
				return NewFallbackService(g, NewOllamaService(cfg.OllamaBaseURL, cfg.OllamaModel)), nil
			}
			return g, nil
		}
		return NewOllamaService(cfg.OllamaBaseURL, cfg.OllamaModel), nil
	}
}
