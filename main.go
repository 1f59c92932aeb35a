package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/aidoctor-pro/internal/advisory"
	"github.com/vcscsvcscs/aidoctor-pro/internal/audit"
	"github.com/vcscsvcscs/aidoctor-pro/internal/auth"
	"github.com/vcscsvcscs/aidoctor-pro/internal/config"
	"github.com/vcscsvcscs/aidoctor-pro/internal/controller"
	"github.com/vcscsvcscs/aidoctor-pro/internal/handler"
	"github.com/vcscsvcscs/aidoctor-pro/internal/llm"
	"github.com/vcscsvcscs/aidoctor-pro/internal/middleware"
	"github.com/vcscsvcscs/aidoctor-pro/internal/pdf"
	"github.com/vcscsvcscs/aidoctor-pro/internal/repository"
	"github.com/vcscsvcscs/aidoctor-pro/internal/security"
	"github.com/vcscsvcscs/aidoctor-pro/internal/store"
	"go.uber.org/zap"
)

var (
	logger *zap.Logger
	cfg    *config.Config
)

func main() {
	// Load configuration
	var err error
	cfg, err = config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize Zap logger
	logger, err = newLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("Configuration loaded successfully",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.String("store_backend", cfg.Store.Backend),
		zap.String("provider", cfg.Provider.Name),
	)

	// Open the key-value store
	storeOpts := store.Options{
		Backend:         cfg.Store.Backend,
		PostgresURL:     cfg.Store.PostgresURL,
		SQLitePath:      cfg.Store.SQLitePath,
		RedisURL:        cfg.Store.RedisURL,
		MongoURI:        cfg.Store.MongoURI,
		MongoDatabase:   cfg.Store.MongoDatabase,
		MongoCollection: cfg.Store.MongoCollection,
		Blob: store.BlobOptions{
			ConnectionString: cfg.Store.Blob.ConnectionString,
			AccountName:      cfg.Store.Blob.AccountName,
			AccountKey:       cfg.Store.Blob.AccountKey,
			ContainerName:    cfg.Store.Blob.Container,
		},
	}
	if cfg.Store.EncryptionKey != "" {
		encryptor, err := security.NewEncryptorFromBase64(cfg.Store.EncryptionKey)
		if err != nil {
			logger.Fatal("Failed to initialize store encryption", zap.Error(err))
		}
		storeOpts.Cipher = encryptor
	}

	kv, err := store.Open(context.Background(), storeOpts, logger)
	if err != nil {
		logger.Fatal("Failed to open store", zap.Error(err))
	}
	defer kv.Close()

	if err := kv.Ping(context.Background()); err != nil {
		logger.Fatal("Failed to ping store", zap.Error(err))
	}
	logger.Info("Successfully connected to store")

	// Initialize the advisory provider. Without a key the service still runs
	// and every analysis reports the provider as unavailable.
	var provider llm.Provider
	openAIClient, err := llm.NewOpenAIClient(llm.Config{
		Provider:        cfg.Provider.Name,
		APIKey:          cfg.Provider.APIKey,
		BaseURL:         cfg.Provider.BaseURL,
		Endpoint:        cfg.Provider.Endpoint,
		APIVersion:      cfg.Provider.APIVersion,
		Model:           cfg.Provider.Model,
		Timeout:         cfg.Provider.Timeout,
		BreakerFailures: cfg.Provider.BreakerFailures,
		BreakerCooldown: cfg.Provider.BreakerCooldown,
	}, logger)
	switch {
	case errors.Is(err, llm.ErrMissingCredential):
		logger.Warn("No provider API key configured; analyses will be unavailable")
	case err != nil:
		logger.Fatal("Failed to initialize advisory provider", zap.Error(err))
	default:
		provider = openAIClient
	}
	advisoryClient := advisory.NewClient(provider, logger)

	// Initialize repositories and services
	userDataRepo := repository.NewUserDataRepository(kv, cfg.Store.Namespace, cfg.Session.MaxConsultations, logger)
	auditLogger := audit.NewLogger(kv, cfg.Store.Namespace, logger)

	jwtSecret := cfg.Auth.JWTSecret
	if jwtSecret == "" {
		jwtSecret = ephemeralSecret()
		logger.Warn("JWT_SECRET not set; using an ephemeral secret, sessions will not survive a restart")
	}
	tokens, err := auth.NewTokenIssuer(jwtSecret, cfg.Auth.TokenTTL)
	if err != nil {
		logger.Fatal("Failed to initialize token issuer", zap.Error(err))
	}

	authService := auth.NewService(
		kv,
		userDataRepo,
		security.DefaultPasswordHasher(),
		tokens,
		auditLogger,
		auth.Options{
			Namespace:         cfg.Store.Namespace,
			MinPasswordLength: cfg.Auth.MinPasswordLength,
		},
		logger,
	)

	registry := controller.NewRegistry(userDataRepo, advisoryClient, cfg.Session.MaxClients, cfg.Session.IdleTTL, logger)

	// Initialize PDF generator
	pdfGenerator := pdf.NewPDFGenerator(logger)

	// Initialize handlers
	secureCookies := cfg.IsProduction()
	handlers := handler.Handlers{
		Auth:          handler.NewAuthHandler(authService, registry, secureCookies, logger),
		Session:       handler.NewSessionHandler(registry, logger),
		Analysis:      handler.NewAnalysisHandler(registry, logger),
		Consultations: handler.NewConsultationHandler(registry, userDataRepo, pdfGenerator, logger),
		GDPR:          handler.NewGDPRHandler(userDataRepo, auditLogger, logger),
		Health:        handler.NewHealthHandler(kv, advisoryClient.Available(), logger),
	}

	// Set Gin mode
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize Gin router
	r := gin.New()

	// Add recovery middleware (must be first)
	r.Use(middleware.RecoveryMiddleware(logger))

	// Add CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID", middleware.ClientHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID", middleware.ClientHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Add request ID middleware
	r.Use(middleware.RequestIDMiddleware())

	// Identify the client and resolve its account
	r.Use(middleware.ClientMiddleware(secureCookies, cfg.Session.IdleTTL))
	r.Use(middleware.AuthMiddleware(authService))

	// Add request logging middleware
	r.Use(middleware.RequestLoggingMiddleware(logger))

	// Add error logging middleware
	r.Use(middleware.ErrorLoggingMiddleware(logger))

	// Per-client rate limiting
	limiter := middleware.NewRateLimiter(cfg.Session.RateLimit, cfg.Session.RateBurst, cfg.Session.MaxClients, cfg.Session.IdleTTL)
	r.Use(middleware.RateLimitMiddleware(limiter, logger))

	handler.RegisterRoutes(r, handlers)

	// Start server with graceful shutdown
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// newLogger builds the production or development logger with the configured level and encoding
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zapCfg := zap.NewDevelopmentConfig()
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	}

	if cfg.Logging.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Logging.Level)
		if err != nil {
			return nil, err
		}
		zapCfg.Level = level
	}
	if cfg.Logging.Format != "" {
		zapCfg.Encoding = cfg.Logging.Format
	}

	return zapCfg.Build()
}

func ephemeralSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}
