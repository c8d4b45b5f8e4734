package consumer

import (
	"context"
	"errors"
	"time"

	"go-leaveflow/internal/events"
	"go-leaveflow/internal/history"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the part of *kafkago.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// retryBackoff is the first wait between Record attempts for the same
// message; it doubles up to maxRetryBackoff.
var (
	retryBackoff    = 2 * time.Second
	maxRetryBackoff = time.Minute
)

func ConsumeLeaveLifecycle(
	ctx context.Context,
	reader MessageReader,
	historyService history.Service,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.leave_lifecycle")
	log.Info("leave lifecycle consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("leave lifecycle consumer stopped")
				return
			}
			log.Error("fetch leave lifecycle message failed", zap.Error(err))
			continue
		}

		if !handleMessage(ctx, reader, historyService, log, msg) {
			log.Info("leave lifecycle consumer stopped")
			return
		}
	}
}

// handleMessage records one message and commits it. A storage failure is
// retried on the same message; the next offset is never fetched before this
// one is stored or skipped as poison. It returns false only when ctx ends
// first, leaving the message uncommitted.
func handleMessage(
	ctx context.Context,
	reader MessageReader,
	historyService history.Service,
	log *zap.Logger,
	msg kafkago.Message,
) bool {
	event, err := events.DecodeLeaveLifecycleEvent(msg.Value)
	if err != nil {
		log.Error("decode leave lifecycle event failed",
			zap.Int64("offset", msg.Offset),
			zap.Error(err),
		)
		commit(ctx, reader, log, msg)
		return true
	}

	backoff := retryBackoff
	for attempt := 1; ; attempt++ {
		err = historyService.Record(ctx, event)
		switch {
		case err == nil:
			log.Info("stage history appended from leave lifecycle event",
				zap.String("event_id", event.EventID),
				zap.String("leave_id", event.LeaveID),
				zap.String("event_type", event.EventType),
			)
		case errors.Is(err, history.ErrDuplicateEvent):
			log.Warn("leave lifecycle event already recorded, skipping",
				zap.String("event_id", event.EventID),
				zap.String("leave_id", event.LeaveID),
			)
		case !events.IsKnownLeaveEvent(event.EventType) || event.EventID == "" || event.LeaveID == "":
			log.Error("leave lifecycle event rejected, skipping",
				zap.String("event_id", event.EventID),
				zap.String("event_type", event.EventType),
				zap.Error(err),
			)
		default:
			log.Error("record stage history failed, retrying",
				zap.String("event_id", event.EventID),
				zap.String("leave_id", event.LeaveID),
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
				zap.Error(err),
			)
			select {
			case <-ctx.Done():
				return false
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, maxRetryBackoff)
			continue
		}

		commit(ctx, reader, log, msg)
		return true
	}
}

func commit(ctx context.Context, reader MessageReader, log *zap.Logger, msg kafkago.Message) {
	if err := reader.CommitMessages(ctx, msg); err != nil {
		log.Error("commit leave lifecycle message failed",
			zap.Int64("offset", msg.Offset),
			zap.Error(err),
		)
	}
}
