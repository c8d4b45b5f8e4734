package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-leaveflow/internal/events"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

//go:generate mockgen -source=history_service.go -destination=mock/history_service_mock.go -package=mock
type Service interface {
	Record(ctx context.Context, evt events.LeaveLifecycleEvent) error
	ListByLeave(ctx context.Context, leaveID string) ([]HistoryResponse, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("history.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("history.service")
	}
	return &service{repo: repo, logger: l}
}

// Record appends evt to the stage history. A redelivered event returns
// ErrDuplicateEvent and leaves the table untouched.
func (s *service) Record(ctx context.Context, evt events.LeaveLifecycleEvent) error {
	eventID, err := uuid.Parse(evt.EventID)
	if err != nil {
		return fmt.Errorf("invalid event id %q: %w", evt.EventID, err)
	}
	leaveID, err := uuid.Parse(evt.LeaveID)
	if err != nil {
		return fmt.Errorf("invalid leave id %q: %w", evt.LeaveID, err)
	}
	if !events.IsKnownLeaveEvent(evt.EventType) {
		return fmt.Errorf("unknown leave event type %q", evt.EventType)
	}

	payload, err := evt.Marshal()
	if err != nil {
		return err
	}

	row := &StageHistory{
		ID:         uuid.New(),
		EventID:    eventID,
		LeaveID:    leaveID,
		EventType:  evt.EventType,
		ActorID:    evt.ActorID,
		FromStage:  evt.FromStage,
		ToStage:    evt.ToStage,
		Comment:    evt.Comment,
		Payload:    datatypes.JSON(payload),
		OccurredAt: evt.OccurredAt,
	}

	if err := s.repo.Create(ctx, row); err != nil {
		if errors.Is(err, ErrDuplicateEvent) {
			s.logger.Warn("stage history event already recorded",
				zap.String("event_id", evt.EventID),
				zap.String("leave_id", evt.LeaveID),
			)
		} else {
			s.logger.Error("record stage history failed",
				zap.String("event_id", evt.EventID),
				zap.Error(err),
			)
		}
		return err
	}

	s.logger.Info("stage history recorded",
		zap.String("event_id", evt.EventID),
		zap.String("leave_id", evt.LeaveID),
		zap.String("event_type", evt.EventType),
		zap.String("to_stage", evt.ToStage),
	)
	return nil
}

func (s *service) ListByLeave(ctx context.Context, leaveID string) ([]HistoryResponse, error) {
	rows, err := s.repo.FindByLeaveID(ctx, leaveID)
	if err != nil {
		s.logger.Error("list stage history failed", zap.String("leave_id", leaveID), zap.Error(err))
		return nil, err
	}

	out := make([]HistoryResponse, 0, len(rows))
	for _, h := range rows {
		out = append(out, HistoryResponse{
			ID:         h.ID.String(),
			EventType:  h.EventType,
			ActorID:    h.ActorID,
			FromStage:  h.FromStage,
			ToStage:    h.ToStage,
			Comment:    h.Comment,
			OccurredAt: h.OccurredAt.UTC().Format(time.RFC3339),
		})
	}
	return out, nil
}
