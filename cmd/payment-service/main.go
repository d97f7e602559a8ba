package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/clublaunch/payments-service/internal/api/rest"
	"github.com/clublaunch/payments-service/internal/api/rest/handlers"
	"github.com/clublaunch/payments-service/internal/config"
	"github.com/clublaunch/payments-service/internal/kafka"
	"github.com/clublaunch/payments-service/internal/kafka/producer"
	"github.com/clublaunch/payments-service/internal/metrics"
	"github.com/clublaunch/payments-service/internal/repository"
	"github.com/clublaunch/payments-service/internal/repository/postgres"
	"github.com/clublaunch/payments-service/internal/service"
	"github.com/clublaunch/payments-service/migrations"
	"github.com/clublaunch/payments-service/pkg/logger"

	stripeint "github.com/clublaunch/payments-service/internal/integration/stripe"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Инициализируем логгер
	log := logger.New(logger.ParseLevel(cfg.App.LogLevel))
	log.Infow("Payments service starting up...", "env", cfg.App.Env)

	if cfg.Stripe.SecretKey == "" {
		log.Warnw("Stripe secret key is not set")
	}
	if cfg.Stripe.WebhookSecret == "" || cfg.Stripe.ConnectWebhookSecret == "" {
		log.Warnw("One or both Stripe webhook secrets are not set, signature verification will reject events")
	}

	// Устанавливаем режим Gin в зависимости от окружения
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Применяем миграции схемы
	if err := runMigrations(cfg.Database.GetDSN(), log); err != nil {
		log.Fatalw("Failed to run database migrations", "error", err)
	}

	// Подключаемся к базе данных
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := postgres.NewConnection(ctx, cfg.Database.GetDSN(), log)
	if err != nil {
		log.Fatalw("Failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Infow("Database connection established")

	// Инициализируем Redis кеш
	redisCache, err := repository.NewRedisCacheRepository(
		cfg.Redis.Addr,
		cfg.Redis.Password,
		cfg.Redis.DB,
		log,
	)
	if err != nil {
		// Не фатально, но предупреждаем
		log.Warnw("Failed to initialize Redis cache, continuing without caching", "error", err)
	} else {
		log.Infow("Redis cache initialized successfully")
		defer func() {
			if err := redisCache.Close(); err != nil {
				log.Errorw("Error closing Redis connection", "error", err)
			}
		}()
	}

	// Инициализируем репозитории
	baseClubRepo := postgres.NewPostgresClubRepository(pool, log)

	var clubRepo repository.ClubRepository
	if redisCache != nil {
		clubRepo = repository.NewCachedClubRepository(baseClubRepo, redisCache, log)
		log.Infow("Using cached club repository")
	} else {
		clubRepo = baseClubRepo
		log.Infow("Using non-cached club repository")
	}

	userRepo := postgres.NewPostgresUserRepository(pool, log)
	memberRepo := postgres.NewPostgresMemberRepository(pool, log)
	paymentRepo := postgres.NewPostgresPaymentRepository(pool, log)
	subscriptionRepo := postgres.NewPostgresSubscriptionRepository(pool, log)
	bookingServiceRepo := postgres.NewPostgresBookingServiceRepository(pool, log)

	// Инициализируем клиент Stripe
	stripeClient := stripeint.NewClient(stripeint.Config{
		APIKey:          cfg.Stripe.SecretKey,
		ConnectClientID: cfg.Stripe.ConnectClientID,
		RedirectURI:     cfg.Stripe.ConnectRedirectURI,
	}, log)

	// Инициализируем Kafka producer
	kafkaProducer, err := kafka.NewSyncProducer(kafka.NewConfig(cfg.Kafka.Brokers), log)
	if err != nil {
		log.Fatalw("Failed to initialize Kafka producer", "error", err)
	}
	events := producer.NewKafkaEventProducer(kafkaProducer, log)
	defer func() {
		if err := events.Close(); err != nil {
			log.Errorw("Error closing Kafka producer", "error", err)
		}
	}()
	log.Infow("Kafka producer initialized", "brokers", cfg.Kafka.Brokers)

	// Инициализируем метрики
	registry := prometheus.NewRegistry()
	paymentMetrics := metrics.NewPaymentMetrics(registry, log)
	systemMetrics := metrics.NewSystemMetrics(registry, log)
	systemMetrics.StartRecording(15 * time.Second)
	defer systemMetrics.Stop()

	// Инициализируем service layer
	accountService := service.NewAccountService(stripeClient, userRepo, clubRepo, service.AccountURLs{
		OnboardingRefreshURL: cfg.Stripe.OnboardingRefreshURL,
		OnboardingReturnURL:  cfg.Stripe.OnboardingReturnURL,
	}, log)

	checkoutService := service.NewCheckoutService(stripeClient, clubRepo, bookingServiceRepo, service.CheckoutConfig{
		SuccessURL:      cfg.Stripe.CheckoutSuccessURL,
		CancelURL:       cfg.Stripe.CheckoutCancelURL,
		CommissionRate:  cfg.Platform.CommissionRate,
		DefaultCurrency: cfg.Platform.DefaultCurrency,
		SiteName:        cfg.Platform.SiteName,
	}, log)

	webhookService := service.NewWebhookService(
		clubRepo,
		userRepo,
		memberRepo,
		paymentRepo,
		subscriptionRepo,
		events,
		paymentMetrics,
		service.WebhookSecrets{
			Platform: cfg.Stripe.WebhookSecret,
			Connect:  cfg.Stripe.ConnectWebhookSecret,
		},
		log,
	)

	clubService := service.NewClubService(clubRepo, memberRepo, bookingServiceRepo, paymentRepo, log)

	// Настраиваем маршруты и HTTP сервер
	router := rest.SetupRouter(log, registry, rest.Handlers{
		Connect:  handlers.NewConnectHandler(accountService, log),
		Checkout: handlers.NewCheckoutHandler(checkoutService, log),
		Webhook:  handlers.NewWebhookHandler(webhookService, log),
		Club:     handlers.NewClubHandler(clubService, log),
	})

	server := rest.NewServer(router, cfg, log)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalw("Failed to start HTTP server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Infow("Shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("HTTP server shutdown error", "error", err)
	} else {
		log.Infow("HTTP server gracefully stopped")
	}

	log.Infow("Cleanup finished. Goodbye!")
}

// runMigrations применяет goose-миграции из встроенной файловой системы
func runMigrations(dsn string, log *logger.Logger) error {
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(goose.NopLogger())

	sqlDB, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			log.Errorw("Error closing migration connection", "error", err)
		}
	}()

	if err := goose.Up(sqlDB, "."); err != nil {
		return err
	}

	log.Infow("Database migrations applied")
	return nil
}
