// Copyright (c) 2026 FamVault. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the FamVault HTTP server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from the environment (and a local .env file).
//  3. Connect to PostgreSQL, Redis and the S3 bucket.
//  4. Run database migrations (idempotent).
//  5. Wire services and HTTP handlers.
//  6. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/taibuivan/famvault/internal/api"
	"github.com/taibuivan/famvault/internal/platform/config"
	"github.com/taibuivan/famvault/internal/platform/constants"
	"github.com/taibuivan/famvault/internal/platform/mail"
	"github.com/taibuivan/famvault/internal/platform/middleware"
	"github.com/taibuivan/famvault/internal/platform/migration"
	pgstore "github.com/taibuivan/famvault/internal/platform/postgres"
	redisstore "github.com/taibuivan/famvault/internal/platform/redis"
	"github.com/taibuivan/famvault/internal/platform/sec"
	"github.com/taibuivan/famvault/internal/platform/storage"
	"github.com/taibuivan/famvault/internal/users/account"
	"github.com/taibuivan/famvault/internal/users/auth"
	"github.com/taibuivan/famvault/internal/vault/contact"
	"github.com/taibuivan/famvault/internal/vault/document"
	"github.com/taibuivan/famvault/internal/vault/folder"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("[FamVault] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		must(log, err, "load .env file")
	}

	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.Bool("mail_enabled", cfg.MailEnabled()),
	)

	// Root context for background workers; cancelled on shutdown.
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// Startup deadline so misconfiguration is caught quickly rather than
	// hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(rootCtx, 30*time.Second)
	defer startupCancel()

	// ── 3. Infrastructure ─────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	blobs, err := storage.NewS3Store(startupCtx, storage.S3Config{
		Bucket:    cfg.S3Bucket,
		Region:    cfg.S3Region,
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
	})
	must(log, err, "configure object storage")

	var mailer mail.Sender = mail.NewLogSender(log).WithBody(cfg.MailLogBody)
	if cfg.MailLogBody && !cfg.MailEnabled() {
		log.Warn("mail_bodies_logged", slog.String("reason", "MAIL_LOG_BODY is set and SMTP_HOST is empty"))
	}
	if cfg.MailEnabled() {
		mailer = mail.NewSMTPSender(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			Timeout:  cfg.MailTimeout,
		})
	}

	// ── 4. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 5. Security Primitives ────────────────────────────────────────────
	hasher := sec.NewHasher(cfg.BcryptCost)
	codes := sec.NewOTPIssuer(hasher, cfg.OTPTTL)
	tokens, err := sec.NewTokenService([]byte(cfg.SessionSecret), constants.AuthIssuer, cfg.SessionTTL)
	must(log, err, "initialize session tokens")

	// ── 6. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) },
		CheckCache:    func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) },
		CheckStorage:  blobs.Ping,
	}, log)

	// ── 7. Domain Wiring ──────────────────────────────────────────────────
	userRepository := auth.NewUserRepository(pool)
	codeThrottle := auth.NewCodeThrottle(rdb, cfg.OTPResendCooldown)
	authService := auth.NewService(userRepository, codeThrottle, hasher, codes, tokens, mailer)

	folderService := folder.NewService(folder.NewPostgresRepository(pool))
	contactService := contact.NewService(contact.NewPostgresRepository(pool))
	documentService := document.NewService(document.NewPostgresRepository(pool), blobs, folderService)
	accountService := account.NewService(account.NewPostgresRepository(pool), userRepository, contactService, documentService)

	// ── 8. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService, cfg.CookieSecure),
		Account:   account.NewHandler(accountService, cfg.CookieSecure),
		Document:  document.NewHandler(documentService, cfg.MaxUploadBytes),
		Folder:    folder.NewHandler(folderService),
		Contact:   contact.NewHandler(contactService),
	}

	limiter := middleware.NewRateLimiter(constants.DefaultRateLimitRPS, constants.DefaultRateLimitBurst)
	go limiter.Run(rootCtx)

	server := api.NewServer(cfg, log, limiter, authService, handlers)

	// ── 9. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	rootCancel()

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// newLogger builds the JSON root logger tagged with the app name.
func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String(constants.FieldApp, constants.AppName))
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
