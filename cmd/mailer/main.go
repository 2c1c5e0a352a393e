package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"hotelops/pkg/config"
	"hotelops/pkg/kafka"
	kafka_config "hotelops/pkg/kafka/config"
	kafka_middleware "hotelops/pkg/kafka/middleware"
	"hotelops/pkg/notify"
)

const ServiceName = "mailer"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load(ServiceName)

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	mailer, err := notify.NewSMTPMailer(notify.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	}, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create SMTP mailer", "error", err)
	}

	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		kafkaCfg.NotificationsTopic,
		kafkaCfg.MailerGroupID,
		kafkaCfg.NotificationsDLQTopic,
		mailer.HandleMessage,
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create kafka consumer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
	}

	cfg.Log.Info("Mailer consuming notifications", "topic", kafkaCfg.NotificationsTopic, "group_id", kafkaCfg.MailerGroupID)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Kafka consumer stopped", "error", err)
	}

	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close kafka consumer", "error", err)
	}
	cfg.Log.Info("Mailer stopped")
}
