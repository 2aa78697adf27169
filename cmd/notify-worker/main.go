package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"tabungan/internal/amqp"
	"tabungan/internal/config"
	applog "tabungan/internal/log"
	"tabungan/internal/notify"
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

	logger.Info("Starting notify-worker")
	if err := run(cfg, logger); err != nil {
		logger.Error("notify-worker stopped", applog.FieldError, err.Error())
		flush()
		os.Exit(1)
	}
}

// run drains the notification queue into email, or the log when no Resend
// key is configured.
func run(cfg *config.Config, logger *applog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.AMQPURL == "" {
		return errors.New("AMQP_URL is required for the notify-worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return err
	}
	defer client.Close()

	delivery := notify.Delivery(cfg.ResendAPIKey, cfg.EmailFrom)
	if cfg.ResendAPIKey == "" {
		logger.Warn("RESEND_API_KEY not set, notifications are only logged")
	}

	err = client.Consume(ctx, delivery.Notify)
	if errors.Is(err, context.Canceled) {
		logger.Info("Worker shutdown complete")
		return nil
	}
	return err
}
