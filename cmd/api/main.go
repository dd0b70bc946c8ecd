package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"bandhub/internal/config"
	"bandhub/internal/database"
	"bandhub/internal/logger"
	"bandhub/internal/mailer"
	"bandhub/internal/middleware"
	"bandhub/internal/router"
	"bandhub/internal/services"
	"bandhub/internal/storage"
	"bandhub/internal/validator"
)

// @title           Bandhub API
// @version         1.0
// @description     Band website backend: signup and approval, band ledger, shared files, mailing list and email campaigns.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	validator.Register()

	// Create database manager
	dbManager, err := database.NewManager(database.NewConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnw("failed to close database", "error", err)
		}
	}()

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	disk, err := storage.NewDisk(cfg.UploadDir)
	if err != nil {
		return fmt.Errorf("failed to prepare upload directory: %w", err)
	}
	composer := mailer.NewComposer(cfg.FromName, cfg.AppURL)
	sender := mailer.New(cfg)
	inbox := cfg.ContactEmail
	if inbox == "" {
		inbox = cfg.FromEmail
	}

	// Initialize services
	db := dbManager.DB()
	engine := router.New(router.Deps{
		Sessions:       middleware.NewSessionManager(cfg.JWTSecret, cfg.JWTExpirationDur, cfg.CookieSecure),
		Users:          services.NewUserService(db, disk, mailer.Counted(sender, "welcome"), composer),
		PasswordResets: services.NewPasswordResetService(db, mailer.Counted(sender, "password_reset"), composer),
		Transactions:   services.NewTransactionService(db),
		Files:          services.NewFileService(db, disk),
		MailingList:    services.NewMailingListService(db),
		Campaigns:      services.NewCampaignService(db, mailer.Counted(sender, "campaign"), composer, cfg.CampaignConcurrency),
		Contact:        services.NewContactService(mailer.Counted(sender, "contact"), composer, inbox),
		Audit:          services.NewAuditService(db),
		CORSOrigin:     cfg.CORSOrigin,
		MetricsAPIKey:  cfg.MetricsAPIKey,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting bandhub server on port %s", cfg.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
