package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	httpapi "bliss-balance-backend/internal/api/http"
	"bliss-balance-backend/internal/config"
	"bliss-balance-backend/internal/identity"
	"bliss-balance-backend/internal/logger"
	"bliss-balance-backend/internal/repository/postgres"
	"bliss-balance-backend/internal/security"
	"bliss-balance-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Local overrides from .env, ignored when absent
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting BLISS Balance Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Identity Provider
	var idp identity.Provider
	switch cfg.Identity.Type {
	case "firebase":
		firebaseIDP, err := identity.NewFirebaseProvider(context.Background(), cfg.Identity.CredentialsFile, cfg.Identity.WebAPIKey)
		if err != nil {
			logger.Error("Failed to initialize Firebase identity provider", "error", err)
			log.Fatalf("Failed to initialize Firebase identity provider: %v", err)
		}
		idp = firebaseIDP
		logger.Info("Using Firebase identity provider")
	default:
		idp = identity.NewLocalProvider(db)
		logger.Info("Using local identity provider")
	}

	// Initialize Security
	tokenManager := security.NewTokenManager(
		cfg.JWT.Secret,
		time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute,
		time.Duration(cfg.JWT.RefreshTokenExpiry)*time.Minute,
	)

	// Initialize Email Service
	emailSvc := service.NewEmailService(
		cfg.Email.APIKey,
		cfg.Email.FromEmail,
		cfg.Email.FromName,
		cfg.Email.AdminEmail,
	)

	// Initialize Services
	ledgerEngine := service.NewLedgerEngine(
		store.AccountRepository,
		store.LedgerRepository,
		store.SettingsRepository,
		emailSvc,
		cfg.Ledger.DefaultCommissionPercent,
		cfg.Ledger.RetryAttempts,
		time.Duration(cfg.Ledger.RetryBackoffMillis)*time.Millisecond,
	)
	directory := service.NewAccountDirectory(store.AccountRepository, store.LedgerRepository, emailSvc)
	provisioning := service.NewProvisioningService(store.AccountRepository, store.LedgerRepository, idp, cfg.Ledger.EmailDomain)
	authSvc := service.NewAuthService(store.AccountRepository, idp, tokenManager)

	// Build HTTP router
	router := httpapi.NewRouter(httpapi.RouterDeps{
		Tokens:       tokenManager,
		Directory:    directory,
		Ledger:       ledgerEngine,
		Provisioning: provisioning,
		Auth:         authSvc,
		Idempotency:  store.IdempotencyRepository,
	})

	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
	if err := server.ListenAndServe(); err != nil {
		logger.Error("Failed to serve HTTP", "error", err)
		log.Fatalf("Failed to serve: %v", err)
	}
}
