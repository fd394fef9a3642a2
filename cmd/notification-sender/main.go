package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/leafcare-backend/internal/config"
	"github.com/magabrotheeeer/leafcare-backend/internal/lib/sl"
	"github.com/magabrotheeeer/leafcare-backend/internal/lib/smtp"
	"github.com/magabrotheeeer/leafcare-backend/internal/rabbitmq"
	"github.com/magabrotheeeer/leafcare-backend/internal/services/sender"
)

func main() {
	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger.Info("starting notification-sender", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := rabbitmq.Connect(cfg.RabbitURL, cfg.RabbitMaxRetries, cfg.RabbitRetryDelay)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", sl.Err(err))
		os.Exit(1)
	}
	logger.Info("connected to RabbitMQ", slog.String("url", cfg.RabbitURL))
	defer func() {
		_ = conn.Close()
	}()

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		logger.Error("failed to setup RabbitMQ channel", sl.Err(err))
		os.Exit(1)
	}
	defer func() {
		_ = ch.Close()
	}()

	transport := smtp.NewTransport(cfg, logger)
	senderService := sender.New(transport, logger)

	if err := rabbitmq.ConsumeNotifications(ctx, ch, rabbitmq.ExpiryQueueName, senderService.SendSubscriptionExpiryEmail); err != nil {
		logger.Error("failed to start consumer", sl.Err(err))
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("notification-sender shutting down gracefully")
}
