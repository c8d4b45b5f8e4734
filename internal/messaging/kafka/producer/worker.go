package producer

import (
	"context"
	"time"

	"go-leaveflow/internal/messaging/kafka"

	"go.uber.org/zap"
)

const defaultBatchSize = 50

type WorkerConfig struct {
	PollInterval time.Duration
	BatchSize    int
}

func ProcessOutboxEvents(
	ctx context.Context,
	repo kafka.OutboxRepository,
	writer MessageWriter,
	logger *zap.Logger,
	cfg WorkerConfig,
) {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 3 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}

	log := logger.Named("kafka.producer.worker")
	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()

	log.Info("outbox worker started",
		zap.Duration("poll_interval", cfg.PollInterval),
		zap.Int("batch_size", cfg.BatchSize),
	)

	for {
		select {
		case <-ctx.Done():
			log.Info("outbox worker stopped")
			return
		case <-ticker.C:
			if _, err := processPendingEvents(ctx, repo, writer, log, cfg.BatchSize); err != nil {
				log.Error("process outbox events failed", zap.Error(err))
			}
		}
	}
}

// processPendingEvents publishes one batch and returns how many rows were marked sent.
func processPendingEvents(
	ctx context.Context,
	repo kafka.OutboxRepository,
	writer MessageWriter,
	logger *zap.Logger,
	batchSize int,
) (int, error) {
	events, err := repo.ClaimPending(ctx, batchSize)
	if err != nil {
		return 0, err
	}

	if len(events) == 0 {
		return 0, nil
	}

	logger.Info("processing pending outbox events", zap.Int("count", len(events)))

	sent := 0
	for _, event := range events {
		if err := publishEvent(ctx, writer, event); err != nil {
			logger.Error("publish outbox event failed",
				zap.String("outbox_id", event.ID),
				zap.String("event_type", event.EventType),
				zap.String("topic", event.Topic),
				zap.Int("retry_count", event.RetryCount),
				zap.Error(err),
			)
			if markErr := repo.MarkFailed(ctx, event.ID, err.Error()); markErr != nil {
				logger.Error("mark outbox failed failed",
					zap.String("outbox_id", event.ID),
					zap.Error(markErr),
				)
			}
			continue
		}

		if err := repo.MarkSent(ctx, event.ID); err != nil {
			logger.Error("mark outbox sent failed",
				zap.String("outbox_id", event.ID),
				zap.Error(err),
			)
			continue
		}

		sent++
		logger.Info("outbox event sent",
			zap.String("outbox_id", event.ID),
			zap.String("request_id", event.RequestID),
			zap.String("event_type", event.EventType),
			zap.String("topic", event.Topic),
		)
	}

	return sent, nil
}
