package app

import (
	"context"
	"fmt"
	"time"

	"databank/internal/config"
	"databank/internal/handlers"
	"databank/internal/i18n"
	"databank/internal/logging"
	"databank/internal/middleware"
	"databank/internal/repositories"
	"databank/internal/routes"
	"databank/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "databank/docs"
)

func Run() {
	cfg := config.LoadConfig()

	logger := logging.New(cfg.Log.Level, cfg.Log.Environment)
	defer func() { _ = logger.Sync() }()

	// === DB ===
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := repositories.Open(ctx, cfg.Database.DSN)
	if err != nil {
		cancel()
		logger.Fatal("[app] database connection failed", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn("[app] database close failed", zap.Error(err))
		}
	}()
	if err := repositories.Migrate(ctx, db); err != nil {
		cancel()
		logger.Fatal("[app] migrations failed", zap.Error(err))
	}
	cancel()

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	setupRepo := repositories.NewSetupRepository(db)
	projectRepo := repositories.NewProjectRepository(db)

	// === Services ===
	settings, err := services.NewVerificationSettings(cfg.Verification.Timeout(), cfg.Verification.MaxAttempts)
	if err != nil {
		logger.Fatal("[app] invalid verification settings", zap.Error(err))
	}
	defaultPolicy, err := cfg.Verification.Policy()
	if err != nil {
		logger.Fatal("[app] invalid default verification policy", zap.Error(err))
	}

	limiter := services.NewNoopResendLimiter()
	if cfg.Resend.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Resend.RedisAddr, Password: cfg.Resend.RedisPassword})
		defer func() { _ = rdb.Close() }()
		limiter = services.NewRedisResendLimiter(rdb, cfg.Resend.Window, cfg.Resend.MaxSends)
		logger.Info("[app] resend limiter enabled", zap.String("redis", cfg.Resend.RedisAddr))
	}

	translator := i18n.New()
	hasher := services.NewBcryptHasher(0)
	tokenService := services.NewTokenService(cfg.JWT.Secret, cfg.JWT.AccessTTL)
	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
		cfg.Email.DryRun,
		logging.WithComponent(logger, "mail"),
	)

	confirmService := services.NewConfirmEmailService(userRepo, emailService, translator, settings, logging.WithComponent(logger, "confirm-email"))
	setupService := services.NewSetupService(setupRepo, hasher, defaultPolicy, logging.WithComponent(logger, "setup"))
	userService := services.NewUserService(userRepo, logging.WithComponent(logger, "users"))
	projectService := services.NewProjectService(projectRepo, logging.WithComponent(logger, "projects"))
	authService, err := services.NewAuthService(userRepo, hasher, tokenService, confirmService, setupService, limiter, logging.WithComponent(logger, "auth"))
	if err != nil {
		logger.Fatal("[app] auth service init failed", zap.Error(err))
	}

	// === Handlers ===
	httpLog := logging.WithComponent(logger, "http")
	authHandler := handlers.NewAuthHandler(authService, translator, httpLog)
	setupHandler := handlers.NewSetupHandler(setupService, httpLog)
	userHandler := handlers.NewUserHandler(userService, httpLog)
	projectHandler := handlers.NewProjectHandler(projectService, httpLog)
	healthHandler := handlers.NewHealthHandler(db)

	// === Gin ===
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()
	router.Use(middleware.RequestLogger(httpLog))
	router.Use(gin.Recovery())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.CORSMiddleware())

	routes.SetupRoutes(router, tokenService, authHandler, setupHandler, userHandler, projectHandler, healthHandler)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("[app] server listening", zap.String("addr", listenAddr))
	if err := router.Run(listenAddr); err != nil {
		logger.Fatal("[app] server stopped", zap.Error(err))
	}
}
