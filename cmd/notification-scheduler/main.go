package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/magabrotheeeer/leafcare-backend/internal/config"
	"github.com/magabrotheeeer/leafcare-backend/internal/lib/sl"
	"github.com/magabrotheeeer/leafcare-backend/internal/rabbitmq"
	"github.com/magabrotheeeer/leafcare-backend/internal/services/scheduler"
	"github.com/magabrotheeeer/leafcare-backend/internal/storage/repository"
)

func waitForDB(ctx context.Context, db *repository.Storage) error {
	for range 10 {
		if err := db.CheckDatabaseReady(ctx); err == nil {
			return nil
		}
		time.Sleep(3 * time.Second)
	}
	return fmt.Errorf("database not ready after retries")
}

func main() {
	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger.Info("starting notification-scheduler", slog.String("env", cfg.Env))

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

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		logger.Error("failed to connect to storage", sl.Err(err))
		os.Exit(1)
	}
	defer func() {
		_ = db.DB.Close()
	}()
	if err := waitForDB(ctx, db); err != nil {
		logger.Error("database is not ready", sl.Err(err))
		os.Exit(1)
	}

	schedulerService := scheduler.New(db, logger)

	go schedulerService.PublishExpiringSubscriptions(ctx, ch)
	go schedulerService.ExpireOverdueRecords(ctx)

	<-ctx.Done()
	logger.Info("notification-scheduler shutting down gracefully")
}
