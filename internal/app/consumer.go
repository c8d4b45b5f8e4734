package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"go-leaveflow/internal/events"
	"go-leaveflow/internal/history"
	"go-leaveflow/internal/messaging/kafka/consumer"
	"go-leaveflow/internal/shared/config"
	"go-leaveflow/internal/shared/connection"

	"go.uber.org/zap"
)

func RunConsumer(cfg config.Config) error {
	logger := zap.L().Named("app.consumer")

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

	historyRepo := history.NewRepository(gormDB)
	historyService := history.NewService(historyRepo, logger)

	reader := connection.ReaderFor(cfg.Kafka, events.LeaveLifecycleTopic)
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		consumer.ConsumeLeaveLifecycle(ctx, reader, historyService, logger)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()
	<-done

	return nil
}
