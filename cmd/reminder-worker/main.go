package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"tabungan/internal/amqp"
	"tabungan/internal/backend"
	"tabungan/internal/config"
	"tabungan/internal/core"
	"tabungan/internal/i18n"
	applog "tabungan/internal/log"
	"tabungan/internal/notify"
	"tabungan/internal/reminder"
	"tabungan/internal/services"
	"tabungan/internal/worker"
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

	logger.Info("Starting reminder-worker", "timezone", cfg.ReminderTimezone)
	if err := run(cfg, logger); err != nil {
		logger.Error("reminder-worker stopped", applog.FieldError, err.Error())
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

	// Reminders are published to the notify-worker when AMQP is configured.
	// A failed publish fails the pass, which is then retried.
	notifier := notify.Delivery(cfg.ResendAPIKey, cfg.EmailFrom)
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			return err
		}
		defer client.Close()
		notifier = client
	}

	w := worker.NewReminderWorker(
		be.Store,
		services.NewPreferenceService(be.Store),
		reminder.New(be.Store, notifier),
		worker.Config{
			Zone:          core.LoadZone(cfg.ReminderTimezone),
			RetryInterval: cfg.ReminderRetryInterval,
			Concurrency:   cfg.ReminderConcurrency,
		},
	)
	if err := w.Run(ctx); err != nil {
		return err
	}
	logger.Info("Worker shutdown complete")
	return nil
}
