package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"go-leaveflow/internal/messaging/kafka"
	"go-leaveflow/internal/messaging/kafka/producer"
	"go-leaveflow/internal/shared/config"
	"go-leaveflow/internal/shared/connection"

	"go.uber.org/zap"
)

func RunWorker(cfg config.Config) error {
	logger := zap.L().Named("app.worker")

	gormDB, err := connection.ConnectGORMWithRetry(cfg.DB, cfg.ConnectMaxRetries)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if cfg.Kafka.Broker == "" {
		return errors.New("KAFKA_BROKER is required")
	}

	kafkaWriter, err := connection.ConnectKafkaWithRetry(cfg.Kafka.Broker, cfg.ConnectMaxRetries)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	outboxRepo := kafka.NewOutboxRepository(sqlDB)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		producer.ProcessOutboxEvents(ctx, outboxRepo, kafkaWriter, logger, producer.WorkerConfig{
			PollInterval: cfg.OutboxPollInterval,
			BatchSize:    cfg.OutboxBatchSize,
		})
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("worker shutting down")
	cancel()
	<-done

	return nil
}
