package api

import (
	"log"

	authUsecase "replyhub-backend/internal/auth/usecase"
	dispatchDelivery "replyhub-backend/internal/dispatch/delivery"
	mailboxDelivery "replyhub-backend/internal/mailbox/delivery"
	ticketDelivery "replyhub-backend/internal/ticket/delivery"
	"replyhub-backend/pkg/ai"
	"replyhub-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	authUsecase     authUsecase.AuthUsecase
	config          *config.Config
	mailboxHandler  *mailboxDelivery.MailboxHandler
	ticketHandler   *ticketDelivery.TicketHandler
	dispatchHandler *dispatchDelivery.DispatchHandler
}

func NewHandler(authUc authUsecase.AuthUsecase, cfg *config.Config,
	mailboxHandler *mailboxDelivery.MailboxHandler,
	ticketHandler *ticketDelivery.TicketHandler,
	dispatchHandler *dispatchDelivery.DispatchHandler) *Handler {
	return &Handler{
		authUsecase:     authUc,
		config:          cfg,
		mailboxHandler:  mailboxHandler,
		ticketHandler:   ticketHandler,
		dispatchHandler: dispatchHandler,
	}
}

// NewDraftService builds the AI drafting service with runtime-updatable
// Ollama settings backed by the settings API.
func NewDraftService(cfg *config.Config) ai.DraftService {
	InitRuntimeConfig(cfg.OllamaBaseURL, cfg.OllamaModel)

	aiCfg := ai.DynamicConfig{
		Provider:         ai.ProviderType(cfg.AIProvider),
		GeminiAPIKey:     cfg.GeminiApiKey,
		GeminiModel:      cfg.GeminiModel,
		GetOllamaBaseURL: GetRuntimeOllamaBaseURL,
		GetOllamaModel:   GetRuntimeOllamaModel,
	}
	draftService, err := ai.NewDraftServiceWithDynamicConfig(aiCfg)
	if err != nil {
		log.Printf("Warning: Failed to initialize AI service: %v", err)
		return nil
	}
	log.Printf("AI service initialized with provider: %s (dynamic config enabled)", cfg.AIProvider)
	return draftService
}

func (h *Handler) Start(addr string) error {
	r := gin.Default()
	gin.SetMode(gin.ReleaseMode)

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Setup routes
	SetupRoutes(r, h.authUsecase, h.mailboxHandler, h.ticketHandler, h.dispatchHandler)

	return r.Run(addr)
}
