package main

import (
	"log"
	"os"

	api "replyhub-backend/cmd/api"
	activitydomain "replyhub-backend/internal/activity/domain"
	activityRepo "replyhub-backend/internal/activity/repository"
	authdomain "replyhub-backend/internal/auth/domain"
	authRepo "replyhub-backend/internal/auth/repository"
	authUsecase "replyhub-backend/internal/auth/usecase"
	dispatchDelivery "replyhub-backend/internal/dispatch/delivery"
	dispatchdomain "replyhub-backend/internal/dispatch/domain"
	dispatchUsecase "replyhub-backend/internal/dispatch/usecase"
	learningdomain "replyhub-backend/internal/learning/domain"
	learningRepo "replyhub-backend/internal/learning/repository"
	learningUsecase "replyhub-backend/internal/learning/usecase"
	mailboxDelivery "replyhub-backend/internal/mailbox/delivery"
	mailboxdomain "replyhub-backend/internal/mailbox/domain"
	mailboxRepo "replyhub-backend/internal/mailbox/repository"
	mailboxUsecase "replyhub-backend/internal/mailbox/usecase"
	ticketDelivery "replyhub-backend/internal/ticket/delivery"
	ticketdomain "replyhub-backend/internal/ticket/domain"
	ticketRepo "replyhub-backend/internal/ticket/repository"
	ticketUsecase "replyhub-backend/internal/ticket/usecase"
	"replyhub-backend/pkg/config"
	"replyhub-backend/pkg/database"
	"replyhub-backend/pkg/gmail"
	"replyhub-backend/pkg/outlook"
	"replyhub-backend/pkg/relay"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(
		&authdomain.User{}, &authdomain.Workspace{}, &authdomain.RefreshToken{},
		&mailboxdomain.MailAccount{},
		&ticketdomain.Thread{}, &ticketdomain.Message{}, &ticketdomain.DraftJob{},
		&learningdomain.LearningProfile{},
		&activitydomain.ActivityLog{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	userRepo := authRepo.NewUserRepository(db)
	accountRepo := mailboxRepo.NewMailAccountRepository(db)
	threadRepo := ticketRepo.NewThreadRepository(db)
	messageRepo := ticketRepo.NewMessageRepository(db)
	draftJobRepo := ticketRepo.NewDraftJobRepository(db)
	profileRepo := learningRepo.NewLearningProfileRepository(db)
	activityLogRepo := activityRepo.NewActivityLogRepository(db)

	// Provider clients
	gmailService := gmail.NewService()
	outlookService := outlook.NewService()
	relayService := relay.NewService(cfg)

	senders := map[mailboxdomain.ProviderKind]dispatchdomain.ProviderSender{
		mailboxdomain.ProviderGoogle:  gmailService,
		mailboxdomain.ProviderOutlook: outlookService,
		mailboxdomain.ProviderRelay:   relayService,
	}

	// AI drafting service (runtime-configurable through the settings API)
	draftService := api.NewDraftService(cfg)

	// Initialize use cases (dependency injection)
	authUsecaseInstance := authUsecase.NewAuthUsecase(userRepo, cfg)
	tokenManager := mailboxUsecase.NewTokenManager(accountRepo, cfg)
	learningInstance := learningUsecase.NewLearningUsecase(profileRepo)
	ticketInstance := ticketUsecase.NewTicketUsecase(threadRepo, messageRepo, draftJobRepo, accountRepo, draftService, learningInstance)
	mailboxInstance := mailboxUsecase.NewMailboxUsecase(accountRepo, tokenManager, cfg, gmailService, outlookService, relayService)
	dispatchInstance := dispatchUsecase.NewDispatchUsecase(
		threadRepo, messageRepo, accountRepo, activityLogRepo,
		ticketInstance, learningInstance, tokenManager, senders, cfg)

	// Initialize HTTP handlers
	mailboxHandler := mailboxDelivery.NewMailboxHandler(mailboxInstance)
	ticketHandler := ticketDelivery.NewTicketHandler(ticketInstance, activityLogRepo)
	dispatchHandler := dispatchDelivery.NewDispatchHandler(dispatchInstance)

	handler := api.NewHandler(authUsecaseInstance, cfg, mailboxHandler, ticketHandler, dispatchHandler)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	log.Printf("Server starting on port %s", port)
	if err := handler.Start(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
