package history

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const uniqueEventConstraint = "uq_leave_stage_history_event"

var ErrDuplicateEvent = errors.New("stage history event already recorded")

//go:generate mockgen -source=history_repo.go -destination=mock/history_repo_mock.go -package=mock
type Repository interface {
	Create(ctx context.Context, h *StageHistory) error
	FindByLeaveID(ctx context.Context, leaveID string) ([]StageHistory, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, h *StageHistory) error {
	err := r.db.WithContext(ctx).Create(h).Error
	if isUniqueEventViolation(err) {
		return ErrDuplicateEvent
	}
	return err
}

func (r *repository) FindByLeaveID(ctx context.Context, leaveID string) ([]StageHistory, error) {
	var rows []StageHistory
	err := r.db.WithContext(ctx).
		Where("leave_id = ?", leaveID).
		Order("occurred_at ASC").
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func isUniqueEventViolation(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == uniqueEventConstraint
	}

	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, uniqueEventConstraint)
}
