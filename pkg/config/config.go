package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             string
	DatabaseURL      string
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// EncryptionKey is the server-held passphrase for the credential vault.
	EncryptionKey string

	// Gmail OAuth app
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string

	// Microsoft Graph OAuth app
	MicrosoftClientID     string
	MicrosoftClientSecret string
	MicrosoftRedirectURI  string

	// Transactional relay
	RelayAPIURL         string
	RelayServerToken    string
	RelayFromAddress    string
	RelayFromName       string
	RelayMessageStream  string
	RelayFallbackStream string

	// AI draft generation
	AIProvider    string
	GeminiApiKey  string
	GeminiModel   string
	OllamaBaseURL string
	OllamaModel   string
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	accessExpiry := 15 * time.Minute
	if exp := os.Getenv("JWT_ACCESS_EXPIRY"); exp != "" {
		if parsed, err := time.ParseDuration(exp); err == nil {
			accessExpiry = parsed
		}
	}

	refreshExpiry := 168 * time.Hour // 7 days
	if exp := os.Getenv("JWT_REFRESH_EXPIRY"); exp != "" {
		if parsed, err := time.ParseDuration(exp); err == nil {
			refreshExpiry = parsed
		}
	}

	return &Config{
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      getEnv("DATABASE_URL", "host=localhost user=replyhub password=replyhub dbname=replyhub port=5432 sslmode=disable"),
		JWTSecret:        getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTAccessExpiry:  accessExpiry,
		JWTRefreshExpiry: refreshExpiry,

		EncryptionKey: getEnv("ENCRYPTION_KEY", ""),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURI:  getEnv("GOOGLE_REDIRECT_URI", "http://localhost:8080/api/mailboxes/callback/google"),

		MicrosoftClientID:     getEnv("MICROSOFT_CLIENT_ID", ""),
		MicrosoftClientSecret: getEnv("MICROSOFT_CLIENT_SECRET", ""),
		MicrosoftRedirectURI:  getEnv("MICROSOFT_REDIRECT_URI", "http://localhost:8080/api/mailboxes/callback/outlook"),

		RelayAPIURL:         getEnv("RELAY_API_URL", "https://api.postmarkapp.com"),
		RelayServerToken:    getEnv("RELAY_SERVER_TOKEN", ""),
		RelayFromAddress:    getEnv("RELAY_FROM_ADDRESS", "support@mail.replyhub.io"),
		RelayFromName:       getEnv("RELAY_FROM_NAME", "ReplyHub Support"),
		RelayMessageStream:  getEnv("RELAY_MESSAGE_STREAM", "outbound"),
		RelayFallbackStream: getEnv("RELAY_FALLBACK_STREAM", "support-transactional"),

		AIProvider:    getEnv("AI_PROVIDER", "auto"),
		GeminiApiKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		OllamaBaseURL: getEnv("OLLAMA_BASE_URL", ""),
		OllamaModel:   getEnv("OLLAMA_MODEL", "llama3"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
