package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/training-platform/internal/config"
	"github.com/magabrotheeeer/training-platform/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/training-platform/internal/lib/sl"
	"github.com/magabrotheeeer/training-platform/internal/lib/smtp"
	services "github.com/magabrotheeeer/training-platform/internal/services/sender"
	"github.com/magabrotheeeer/training-platform/internal/storage/repository"
)

func main() {
	ctx := context.Background()
	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger.Info("starting notification-sender", slog.String("env", cfg.Env))

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		logger.Error("failed to connect to storage", sl.Err(err))
		os.Exit(1)
	}
	defer func() {
		_ = db.DB.Close()
	}()

	conn, err := rabbitmq.Connect(cfg.RabbitConnectionString, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", sl.Err(err))
		os.Exit(1)
	}
	logger.Info("success to connect to RabbitMQ", slog.String("URL", cfg.RabbitConnectionString))
	defer func() {
		_ = conn.Close()
	}()

	queues := rabbitmq.GetNotificationQueues()
	ch, err := rabbitmq.SetupChannel(conn, queues)
	if err != nil {
		logger.Error("failed to setup RabbitMQ channel", sl.Err(err))
		os.Exit(1)
	}
	logger.Info("success to setup RabbitMQ channel")
	defer func() {
		_ = ch.Close()
	}()

	newTransport := smtp.NewTransport(cfg, logger)

	senderService := services.NewSenderService(db, newTransport, logger)

	for _, queue := range queues {
		if err := rabbitmq.ConsumerMessage(ctx, ch, queue.QueueName, senderService.HandleEvent); err != nil {
			logger.Error("failed to start consumer", slog.String("queue", queue.QueueName), sl.Err(err))
			os.Exit(1)
		}
	}

	sigterm := make(chan os.Signal, 1)
	signal.Notify(sigterm, syscall.SIGINT, syscall.SIGTERM)
	<-sigterm

	logger.Info("notification sender shutting down gracefully")
}
