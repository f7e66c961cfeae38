package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Freeeeeet/streamer_booking/internal/app"
	"github.com/Freeeeeet/streamer_booking/internal/config"
	"github.com/Freeeeeet/streamer_booking/internal/controller"
	"github.com/Freeeeeet/streamer_booking/internal/controller/handlers"
	"github.com/Freeeeeet/streamer_booking/internal/formatting"
	"github.com/Freeeeeet/streamer_booking/internal/gateway"
	"github.com/Freeeeeet/streamer_booking/internal/push"
	"github.com/Freeeeeet/streamer_booking/internal/realtime"
	"github.com/Freeeeeet/streamer_booking/internal/repository"
	"github.com/Freeeeeet/streamer_booking/internal/repository/base"
	"github.com/Freeeeeet/streamer_booking/internal/service"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := app.NewLogger(cfg, "api")
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Server stopped with error", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("Starting livestream booking API",
		zap.String("environment", cfg.Environment),
		zap.String("addr", cfg.HTTPAddr),
	)

	if err := formatting.SetLocation(cfg.Timezone); err != nil {
		return err
	}

	policy, err := service.LoadPolicy(cfg.PolicyFile)
	if err != nil {
		return err
	}

	// Хранилища
	pool, err := app.NewPostgresPool(ctx, cfg.DBDSN, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	migrator, err := app.NewMigrator(pool, cfg.MigrationsDir, logger)
	if err != nil {
		return err
	}
	if err := migrator.Run(ctx); err != nil {
		_ = migrator.Close()
		return err
	}
	_ = migrator.Close()

	rdb, err := app.NewRedisClient(ctx, cfg.RedisURL, logger)
	if err != nil {
		return err
	}
	defer rdb.Close()

	// Внешние каналы доставки
	publisher, err := realtime.New(realtime.Options{
		Driver:       cfg.RealtimeDriver,
		Redis:        rdb,
		AMQPURL:      cfg.AMQPURL,
		AMQPExchange: cfg.AMQPExchange,
	}, logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	telegramBot, err := app.NewTelegramBot(cfg.TelegramToken, cfg.TelegramWebhookSecret, logger)
	if err != nil {
		return err
	}

	// Репозитории
	txManager := base.NewTxManager(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)
	voucherRepo := repository.NewVoucherRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)
	conversationRepo := repository.NewConversationRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	availabilityRepo := repository.NewAvailabilityRepository(pool)
	ratingRepo := repository.NewRatingRepository(pool)

	// Сервисы
	notificationService := service.NewNotificationService(
		notificationRepo,
		userRepo,
		publisher,
		push.NewTelegram(telegramBot, logger),
		logger,
	)
	notificationService.SetBaseURL(cfg.AppBaseURL)

	voucherService := service.NewVoucherService(voucherRepo, logger)

	var verifier service.SignatureVerifier
	if cfg.MidtransServerKey != "" {
		verifier = gateway.NewSignatureVerifier(cfg.MidtransServerKey)
	} else {
		logger.Warn("MIDTRANS_SERVER_KEY not set, webhook signatures are not verified")
	}

	paymentService := service.NewPaymentService(
		txManager,
		bookingRepo,
		paymentRepo,
		userRepo,
		voucherService,
		notificationService,
		gateway.NewMidtrans(cfg.MidtransServerKey, cfg.MidtransEnv, logger),
		gateway.NewIntentStore(rdb),
		verifier,
		cfg.IntentTTL,
		logger,
	)

	bookingService := service.NewBookingService(
		txManager,
		bookingRepo,
		paymentRepo,
		userRepo,
		availabilityRepo,
		ratingRepo,
		voucherService,
		notificationService,
		policy,
		logger,
	)

	messagingService := service.NewMessagingService(conversationRepo, userRepo, notificationService, logger)
	linkService := service.NewTelegramLinkService(userRepo, push.NewLinkCodeStore(rdb), cfg.TelegramBotUsername, logger)

	// HTTP
	httpHandlers := handlers.NewHandlers(
		bookingService,
		paymentService,
		voucherService,
		notificationService,
		messagingService,
		linkService,
		[]handlers.HealthCheck{
			{Name: "postgres", Check: pool.Ping},
			{Name: "redis", Check: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }},
		},
		logger,
	)

	var botController *controller.BotController
	if telegramBot != nil {
		botController = controller.NewBotController(telegramBot, handlers.NewBotHandlers(linkService, logger), logger)
		if err := botController.RegisterHandlers(ctx); err != nil {
			logger.Warn("Failed to register bot commands", zap.Error(err))
		}
		go botController.Start(ctx)
	}

	router := controller.NewRouter(controller.RouterConfig{
		JWTSecret:      []byte(cfg.JWTSecret),
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Production:     cfg.IsProduction(),
	}, httpHandlers, botController, logger)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("Server stopped")
	return nil
}
