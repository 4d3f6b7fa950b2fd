package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/time/rate"

	"tool-market/internal/cache"
	"tool-market/internal/config"
	"tool-market/internal/db"
	"tool-market/internal/handlers"
	"tool-market/internal/logger"
	"tool-market/internal/payment"
	"tool-market/internal/repository"
	"tool-market/internal/router"
	"tool-market/internal/services"
)

type stores struct {
	tools   services.ToolStore
	orders  services.OrderStore
	reviews services.ReviewStore
	users   services.UserStore
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("Invalid configuration")
	}

	log := logger.InitLogger(cfg.LogLevel)
	log.Info().Str("policy", cfg.AccessPolicy).Msg("Application starting")

	ctx := context.Background()
	checks := map[string]handlers.Pinger{}

	var st stores
	var mongoClient *mongo.Client
	if cfg.DBUrl == "" {
		log.Warn().Msg("DB_URL not set, using in-memory store")
		st = stores{
			tools:   repository.NewMemoryToolRepository(),
			orders:  repository.NewMemoryOrderRepository(),
			reviews: repository.NewMemoryReviewRepository(),
			users:   repository.NewMemoryUserRepository(),
		}
	} else {
		mongoClient, err = db.InitDB(ctx, cfg.DBUrl, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Database connection failed")
		}
		database := mongoClient.Database(cfg.DBName)
		if err := db.RunMigrations(ctx, database, log); err != nil {
			log.Fatal().Err(err).Msg("Migrations failed")
		}
		st = stores{
			tools:   repository.NewMongoToolRepository(database),
			orders:  repository.NewMongoOrderRepository(database),
			reviews: repository.NewMongoReviewRepository(database),
			users:   repository.NewMongoUserRepository(database),
		}
		checks["mongo"] = handlers.PingFunc(func(ctx context.Context) error {
			return mongoClient.Ping(ctx, nil)
		})
	}

	var idempotency services.IdempotencyCache
	var redisCache *cache.RedisCache
	if cfg.RedisURL != "" {
		redisCache, err = cache.NewRedisCache(ctx, cfg.RedisURL, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Redis connection failed")
		}
		idempotency = redisCache
		checks["redis"] = redisCache
	} else {
		log.Warn().Msg("REDIS_URL not set, payment intents are not cached per idempotency key")
	}

	var processor services.PaymentProcessor = payment.Unconfigured{}
	if cfg.StripeSecretKey != "" {
		stripeProcessor, err := payment.NewStripeProcessor(cfg.StripeSecretKey, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Stripe configuration invalid")
		}
		processor = stripeProcessor
	} else {
		log.Warn().Msg("STRIPE_SECRET_KEY not set, payment endpoints will fail")
	}

	secret, usedDefault := cfg.TokenSecret()
	if usedDefault {
		log.Warn().Msg("ACCESS_TOKEN_SECRET not set, using default key")
	}

	authService := services.NewAuthService(secret, cfg.TokenTTL, log)
	paymentService := services.NewPaymentService(processor, idempotency, cfg.IdempotencyTTL, cfg.PaymentCurrency, log)

	var verifier services.ChargeVerifier
	if cfg.VerifyPayments {
		verifier = paymentService
	} else {
		log.Warn().Msg("VERIFY_PAYMENTS disabled, orders are marked paid on the caller's word")
	}

	deps := router.Deps{
		Auth:     authService,
		Users:    services.NewUserService(st.users, authService, log),
		Tools:    services.NewToolService(st.tools, log),
		Orders:   services.NewOrderService(st.orders, verifier, log),
		Reviews:  services.NewReviewService(st.reviews, log),
		Payments: paymentService,
		Checks:   checks,
	}

	r := router.SetupRouter(deps, router.Options{
		Strict:         cfg.Strict(),
		RateLimit:      rate.Limit(cfg.RateLimitRPS),
		RateLimitBurst: cfg.RateLimitBurst,
	}, log)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Info().Msgf("Server listening on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
	if redisCache != nil {
		if err := redisCache.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing Redis")
		}
	}
	if mongoClient != nil {
		if err := mongoClient.Disconnect(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Error disconnecting MongoDB")
		}
	}

	log.Info().Msg("Server stopped")
}
