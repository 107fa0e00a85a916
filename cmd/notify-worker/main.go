package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gradepulse/internal/config"
	"gradepulse/internal/logger"
	"gradepulse/internal/notify"
	"gradepulse/internal/queue"
	"gradepulse/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.Get()

	log.Info().Str("version", cfg.App.Version).Msg("Starting notify worker")

	// Initialize Redis client
	redisClient, err := queue.NewRedisClient(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	// The worker delivers directly; a queue driver here would loop jobs back onto the queue.
	var sender notify.Notifier = notify.NewWhatsAppClient(cfg.WhatsApp)
	if cfg.Notifications.Driver == "log" {
		sender = notify.NewLogNotifier()
	}

	notifyWorker := worker.NewNotificationWorker(
		queue.NewConsumer(redisClient, cfg),
		queue.NewProducer(redisClient, cfg),
		sender,
		cfg.Workers.Notify.Count,
		cfg.Notifications.MaxAttempts,
	)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start worker
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := notifyWorker.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Fatal().Err(err).Msg("Notify worker failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down notify worker...")

	// Cancel context to stop consuming, then drain in-flight deliveries
	cancel()
	<-done
	notifyWorker.Stop()

	log.Info().Msg("Notify worker exited")
}
