package bootstrap

import (
	"context"
	"log"

	"councellorx-be/internal/config"
	"councellorx-be/internal/controller"
	"councellorx-be/internal/handler"
	"councellorx-be/internal/pkg/logger"
	"councellorx-be/internal/pkg/mailer"
	"councellorx-be/internal/repository/memory"
	"councellorx-be/internal/repository/unitofwork"
	"councellorx-be/internal/service"
	"councellorx-be/internal/websocket"
	"councellorx-be/pkg/llm/factory"
	"councellorx-be/pkg/transcribe"

	pktNats "councellorx-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AnalysisController controller.IAnalysisController
	AuthController     controller.IAuthController
	OAuthController    controller.IOAuthController
	UserController     controller.IUserController
	ChatController     controller.IChatController
	IntakeController   controller.IIntakeController

	// Background services, started by main
	PersistRetryService service.IPersistRetryService
	AuditService        *service.AuditService

	// Realtime feed
	FeedHandler  *handler.FeedHandler
	WebSocketHub *websocket.Hub

	Logger logger.ILogger
}

func NewContainer(ctx context.Context, db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
		cfg.App.FrontendURL,
	)

	// 2. In-process bus for persistence retries
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewStdLogger(false, false),
	)

	// 3. Model providers
	llmProvider, err := factory.NewLLMProvider(ctx, factory.ProviderConfig{
		Provider:      cfg.Ai.LLMProvider,
		Model:         cfg.Ai.LLMModel,
		GeminiAPIKey:  cfg.Ai.GeminiAPIKey,
		OpenAIAPIKey:  cfg.Ai.OpenAIAPIKey,
		HFAPIKey:      cfg.Ai.HuggingFaceKey,
		HFBaseURL:     cfg.Ai.HuggingFaceURL,
		OllamaBaseURL: cfg.Ai.OllamaBaseURL,
	})
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	var transcriber transcribe.Transcriber
	if cfg.Ai.OpenAIAPIKey != "" {
		transcriber = transcribe.NewOpenAITranscriber(cfg.Ai.OpenAIAPIKey, cfg.Ai.TranscribeModel)
	} else {
		log.Printf("[WARN] OPENAI_API_KEY not set, /transcribe is disabled")
	}

	// 4. Infrastructure
	// NATS. A failed connection leaves the interfaces nil so services skip publishing.
	var publisher service.EventPublisher
	var subscriber service.EventSubscriber
	if natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL); err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		publisher = natsPub
	}
	if natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL); err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	} else {
		subscriber = natsSub
	}

	// Redis fans feed frames out to the other instances.
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis, feed runs single-instance: %v", err)
		rdb.Close()
		rdb = nil
	}

	feedLogger := logger.NewIsolatedLogger(cfg.App.FeedLogFilePath)
	wsHub := websocket.NewHub(rdb, feedLogger)

	// In-memory stores
	intakeRepo := memory.NewIntakeRepository(cfg.Intake.StateTTL)
	outbox := memory.NewOutboxRepository()

	// 5. Services
	retryService := service.NewPersistRetryService(
		pubSub,
		uowFactory,
		outbox,
		wsHub,
		publisher,
		sysLogger,
		cfg.Intake.PersistRetryAttempts,
		cfg.Intake.PersistRetryBaseDelay,
	)
	chatService := service.NewChatService(uowFactory, outbox, intakeRepo, retryService, wsHub, publisher, sysLogger)
	documentService := service.NewDocumentService(publisher, sysLogger)
	analysisService := service.NewAnalysisService(llmProvider, publisher, sysLogger, cfg.Ai.LLMTimeout)
	transcriptionService := service.NewTranscriptionService(transcriber, publisher, sysLogger)
	intakeService := service.NewIntakeService(
		intakeRepo,
		chatService,
		analysisService,
		documentService,
		wsHub,
		sysLogger,
		cfg.Intake.PanelDelay,
	)

	authService := service.NewAuthService(uowFactory, emailService, publisher, sysLogger, cfg.Auth)
	oauthService := service.NewOAuthService(uowFactory, cfg.OAuth, cfg.Auth, publisher, sysLogger)
	userService := service.NewUserService(uowFactory)

	var auditService *service.AuditService
	if subscriber != nil {
		auditService = service.NewAuditService(subscriber, logger.NewIsolatedLogger(cfg.App.AuditLogFilePath), sysLogger)
	}

	// 6. Controllers
	return &Container{
		AnalysisController: controller.NewAnalysisController(analysisService, documentService, transcriptionService, sysLogger),
		AuthController:     controller.NewAuthController(authService),
		OAuthController:    controller.NewOAuthController(oauthService, cfg.App.FrontendURL, sysLogger),
		UserController:     controller.NewUserController(userService, cfg.Auth.JWTSecret),
		ChatController:     controller.NewChatController(chatService, cfg.Auth.JWTSecret),
		IntakeController:   controller.NewIntakeController(intakeService, cfg.Auth.JWTSecret),

		PersistRetryService: retryService,
		AuditService:        auditService,

		FeedHandler:  handler.NewFeedHandler(wsHub, cfg.Auth.JWTSecret, feedLogger),
		WebSocketHub: wsHub,

		Logger: sysLogger,
	}
}
