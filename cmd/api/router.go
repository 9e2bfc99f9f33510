package api

import (
	"net/http"

	"replyhub-backend/internal/auth/delivery"
	authUsecase "replyhub-backend/internal/auth/usecase"
	dispatchDelivery "replyhub-backend/internal/dispatch/delivery"
	mailboxDelivery "replyhub-backend/internal/mailbox/delivery"
	ticketDelivery "replyhub-backend/internal/ticket/delivery"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, authUsecase authUsecase.AuthUsecase,
	mailboxHandler *mailboxDelivery.MailboxHandler,
	ticketHandler *ticketDelivery.TicketHandler,
	dispatchHandler *dispatchDelivery.DispatchHandler) {
	authHandler := delivery.NewAuthHandler(authUsecase)

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/register", authHandler.Register)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", delivery.AuthMiddleware(authUsecase), authHandler.Me)
			auth.POST("/logout", authHandler.Logout)
		}

		// Mailbox routes: the OAuth callback comes from the provider redirect
		// and carries its auth in the state parameter instead of a header.
		api.GET("/mailboxes/callback/:provider", mailboxHandler.Callback)

		mailboxes := api.Group("/mailboxes")
		mailboxes.Use(delivery.AuthMiddleware(authUsecase))
		{
			mailboxes.GET("", mailboxHandler.List)
			mailboxes.GET("/:id", mailboxHandler.Get)
			mailboxes.GET("/connect/:provider", mailboxHandler.Connect)
			mailboxes.POST("/relay", mailboxHandler.ConnectRelay)
			mailboxes.POST("/:id/relay/verify", mailboxHandler.VerifyRelay)
			mailboxes.POST("/:id/domain", mailboxHandler.RequestDomainVerification)
			mailboxes.POST("/:id/domain/verify", mailboxHandler.VerifyDomain)
			mailboxes.PUT("/:id/identity", mailboxHandler.UpdateSendingIdentity)
			mailboxes.PUT("/:id/learning", mailboxHandler.SetLearningEnabled)
			mailboxes.DELETE("/:id", mailboxHandler.Disconnect)
		}

		// Thread routes (protected)
		threads := api.Group("/threads")
		threads.Use(delivery.AuthMiddleware(authUsecase))
		{
			threads.GET("", ticketHandler.ListThreads)
			threads.GET("/:id", ticketHandler.GetThread)
			threads.GET("/:id/activity", ticketHandler.ListActivity)
			threads.POST("/:id/draft", ticketHandler.GenerateDraft)
			threads.POST("/:id/reply", dispatchHandler.SendReply)
		}

		// Settings routes (public) - Runtime configuration
		settings := api.Group("/settings")
		{
			settings.GET("/ollama", GetOllamaSettings)
			settings.PUT("/ollama", UpdateOllamaSettings)
			settings.POST("/ollama/test", TestOllamaConnection)
		}
	}
}
