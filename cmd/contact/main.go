package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/formgate-io/contact-gate/internal/config"
	"github.com/formgate-io/contact-gate/internal/handlers"
	"github.com/formgate-io/contact-gate/internal/logging"
	"github.com/formgate-io/contact-gate/internal/notification"
	"github.com/formgate-io/contact-gate/internal/ratelimit"
	"github.com/formgate-io/contact-gate/internal/repository"
	"github.com/formgate-io/contact-gate/internal/server"
	"github.com/formgate-io/contact-gate/internal/service"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize structured logging
	logger := logging.New(
		logging.ParseLevel(cfg.Logging.Level),
		cfg.Logging.Format,
	).With(logging.Service("contact"))
	logging.SetDefault(logger)

	slog.Info("Starting contact service",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Logging.Level),
		slog.String("log_format", cfg.Logging.Format),
	)
	if *configPath != "" {
		slog.Info("Loaded configuration", slog.String("config_path", *configPath))
	}

	// Run database migrations
	if cfg.Database.URL != "" && cfg.Database.RunMigrations {
		m, err := migrate.New("file://"+cfg.Database.MigrationsPath, cfg.Database.URL)
		if err != nil {
			slog.Error("Failed to initialize migrations", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			slog.Error("Failed to run migrations", slog.String("error", err.Error()))
			os.Exit(1)
		}
		slog.Info("Database migrations completed")
	}

	// Initialize repository
	var repo repository.Repository
	if cfg.Database.URL != "" {
		pgRepo, err := repository.NewPostgresRepository(context.Background(), cfg.Database.URL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		repo = pgRepo
	} else {
		slog.Warn("No database URL configured, using in-memory store; submission history will not survive restarts")
		repo = repository.NewInMemoryRepository()
	}
	defer repo.Close()

	// Initialize request throttle
	var throttle ratelimit.Throttle
	switch {
	case !cfg.Throttle.Enabled:
		slog.Info("Request throttling disabled in configuration")
		throttle = ratelimit.NoOpThrottle{}
	case cfg.Redis.Enabled:
		t, err := ratelimit.NewRedisThrottle(cfg.Redis.URL, cfg.Throttle.Requests, cfg.Throttle.Window)
		if err != nil {
			slog.Warn("Failed to initialize Redis throttle, falling back to local throttle",
				slog.String("error", err.Error()))
			throttle = ratelimit.NewLocalThrottle(cfg.Throttle.Requests, cfg.Throttle.Window)
		} else {
			slog.Info("Redis request throttle enabled",
				slog.Int("requests", cfg.Throttle.Requests),
				slog.String("window", cfg.Throttle.Window.String()))
			throttle = t
		}
	default:
		slog.Info("Local request throttle enabled (Redis disabled)",
			slog.Int("requests", cfg.Throttle.Requests),
			slog.String("window", cfg.Throttle.Window.String()))
		throttle = ratelimit.NewLocalThrottle(cfg.Throttle.Requests, cfg.Throttle.Window)
	}
	defer throttle.Close()

	// Initialize notification channels
	var channels []notification.Channel
	if cfg.Notification.Email.Enabled {
		channels = append(channels, notification.NewEmailRelayChannel(
			cfg.Notification.Email.URL,
			cfg.Notification.Email.To,
			cfg.Notification.Email.From,
			cfg.Notification.Email.Timeout,
		))
		slog.Info("Email notification channel enabled", slog.String("to", cfg.Notification.Email.To))
	}
	if cfg.Notification.NATS.Enabled {
		natsChannel, err := notification.NewNATSChannel(cfg.Notification.NATS.URL, cfg.Notification.NATS.Subject)
		if err != nil {
			slog.Warn("Failed to connect NATS notification channel",
				slog.String("error", err.Error()))
		} else {
			channels = append(channels, natsChannel)
			defer natsChannel.Close()
			slog.Info("NATS notification channel enabled",
				slog.String("subject", cfg.Notification.NATS.Subject))
		}
	}
	if len(channels) == 0 {
		channels = append(channels, notification.NewLogChannel(log.Printf))
		slog.Info("No notification channels configured, logging accepted submissions only")
	}
	notifier := notification.NewMultiChannel(channels...)

	// Initialize the submission pipeline
	limits := ratelimit.NewChecker(repo, cfg.Limits.Window, cfg.Limits.PerSource, cfg.Limits.PerEmail)
	submissionService := service.NewSubmissionService(repo, limits, notifier, cfg.Dedup.Window, logger)

	// Initialize HTTP handlers
	handler := handlers.NewContactHandler(submissionService, repo, logger)
	router := server.NewRouter(handler, throttle)

	// Create server with config values
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Contact service listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
