package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"tabungan/internal/amqp"
	"tabungan/internal/backend"
	"tabungan/internal/cache"
	"tabungan/internal/config"
	"tabungan/internal/core"
	apphttp "tabungan/internal/http"
	"tabungan/internal/i18n"
	applog "tabungan/internal/log"
	"tabungan/internal/notify"
	"tabungan/internal/services"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()
	logger, flush := applog.Setup(applog.Config{
		Development: cfg.IsDevelopment(),
		SentryDSN:   cfg.SentryDSN,
	})
	defer flush()

	if err := run(cfg, logger); err != nil {
		logger.Error("tabungan stopped", applog.FieldError, err.Error())
		flush()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *applog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := i18n.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	be, err := backend.NewFactory(logger.WithComponent(applog.ComponentBackend)).CreateBackend(ctx, backendCfg)
	if err != nil {
		return err
	}
	defer be.Cleanup()

	notifier := notify.Delivery(cfg.ResendAPIKey, cfg.EmailFrom)
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, delivering notifications in process", applog.FieldError, err.Error())
		} else {
			defer client.Close()
			notifier = client
			logger.Info("notifications published to AMQP", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	zone := core.LoadZone(cfg.ReminderTimezone)
	prefs := services.NewPreferenceService(be.Store)
	tracker := services.NewMilestoneTracker(cfg.SessionCacheSize, cfg.SessionTTL)

	caches := cache.NewManager()
	caches.Register(tracker.Cleaner())
	caches.StartCleanup(10 * time.Minute)
	defer caches.Stop()

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Services{
		Auth:    services.NewAuthService(be.Store, cfg.JWTSecret, cfg.JWTExpiry),
		Ledger:  services.NewLedgerService(be.Store, tracker, prefs, notifier, services.WithZone(zone)),
		Reports: services.NewReportService(be.Store, prefs, zone),
		Prefs:   prefs,
		Store:   be.Store,
	}, apphttp.Options{
		AuthRateLimit:  cfg.AuthRateLimit,
		AdminUsernames: cfg.AdminUsernames,
		Logger:         logger,
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting tabungan server", "port", cfg.Port, "backend", cfg.DataBackend, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}
