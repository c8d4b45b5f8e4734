package leave

import (
	"context"
	"database/sql"
	"time"

	"go-leaveflow/internal/visibility"
	"go-leaveflow/internal/workflow"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ListFilter struct {
	Stage    string
	Page     int
	PageSize int // 0 means no limit
}

// StageChange is the review outcome written by UpdateStage. A nil Comment
// leaves the stored comment untouched.
type StageChange struct {
	To         workflow.Stage
	Comment    *string
	ReviewedBy uuid.UUID
	ReviewedAt time.Time
}

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *Leave) error
	FindAll(ctx context.Context, scope workflow.Scope, filter ListFilter) ([]Leave, int64, error)
	FindByID(ctx context.Context, id string) (*Leave, error)
	CountByStage(ctx context.Context, scope workflow.Scope) (map[string]int64, error)
	// The conditional writes below only apply while the row is still in
	// expected; they report false when another writer got there first.
	UpdateDetails(ctx context.Context, l *Leave, expected workflow.Stage) (bool, error)
	UpdateStage(ctx context.Context, id string, expected workflow.Stage, change StageChange) (bool, error)
	Delete(ctx context.Context, id string, expected workflow.Stage) (bool, error)
	HasOverlappingPeriod(ctx context.Context, requesterID string, startDate, endDate time.Time, excludeID *string) (bool, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

// conn runs statements on the bound transaction when there is one.
func (r *repository) conn(ctx context.Context) *gorm.DB {
	db := r.db.WithContext(ctx)
	if r.tx != nil {
		db.Statement.ConnPool = r.tx
	}
	return db
}

func (r *repository) Create(ctx context.Context, l *Leave) error {
	return r.conn(ctx).Create(l).Error
}

func (r *repository) FindAll(ctx context.Context, scope workflow.Scope, filter ListFilter) ([]Leave, int64, error) {
	base := r.conn(ctx).Model(&Leave{}).Scopes(visibility.Scope(scope))
	if filter.Stage != "" {
		base = base.Where("stage = ?", filter.Stage)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := base.Session(&gorm.Session{}).Order("created_at DESC").Order("id DESC")
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		q = q.Limit(filter.PageSize).Offset((page - 1) * filter.PageSize)
	}

	var leaves []Leave
	err := q.Find(&leaves).Error
	return leaves, total, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Leave, error) {
	var l Leave
	err := r.conn(ctx).First(&l, "id = ?", id).Error
	return &l, err
}

func (r *repository) CountByStage(ctx context.Context, scope workflow.Scope) (map[string]int64, error) {
	var rows []struct {
		Stage string
		Total int64
	}
	err := r.conn(ctx).
		Model(&Leave{}).
		Scopes(visibility.Scope(scope)).
		Select("stage, COUNT(*) AS total").
		Group("stage").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Stage] = row.Total
	}
	return out, nil
}

func (r *repository) UpdateDetails(ctx context.Context, l *Leave, expected workflow.Stage) (bool, error) {
	res := r.conn(ctx).
		Model(&Leave{}).
		Where("id = ? AND stage = ?", l.ID, string(expected)).
		Updates(map[string]any{
			"leave_type": l.LeaveType,
			"start_date": l.StartDate,
			"end_date":   l.EndDate,
			"total_days": l.TotalDays,
			"reason":     l.Reason,
			"attachment": l.Attachment,
		})
	return res.RowsAffected == 1, res.Error
}

func (r *repository) UpdateStage(ctx context.Context, id string, expected workflow.Stage, change StageChange) (bool, error) {
	values := map[string]any{
		"stage":            string(change.To),
		"last_reviewed_by": change.ReviewedBy,
		"last_reviewed_at": change.ReviewedAt,
	}
	if change.Comment != nil {
		values["comment"] = *change.Comment
	}

	res := r.conn(ctx).
		Model(&Leave{}).
		Where("id = ? AND stage = ?", id, string(expected)).
		Updates(values)
	return res.RowsAffected == 1, res.Error
}

func (r *repository) Delete(ctx context.Context, id string, expected workflow.Stage) (bool, error) {
	res := r.conn(ctx).
		Where("id = ? AND stage = ?", id, string(expected)).
		Delete(&Leave{})
	return res.RowsAffected == 1, res.Error
}

// HasOverlappingPeriod ignores rejected requests; they no longer hold the dates.
func (r *repository) HasOverlappingPeriod(ctx context.Context, requesterID string, startDate, endDate time.Time, excludeID *string) (bool, error) {
	rejected := make([]string, 0, 4)
	for _, s := range workflow.RejectedStages() {
		rejected = append(rejected, string(s))
	}

	db := r.conn(ctx).
		Model(&Leave{}).
		Where("requester_id = ?", requesterID).
		Where("stage NOT IN ?", rejected).
		Where("NOT (end_date < ? OR start_date > ?)", startDate, endDate)

	if excludeID != nil && *excludeID != "" {
		db = db.Where("id <> ?", *excludeID)
	}

	var count int64
	err := db.Count(&count).Error
	return count > 0, err
}
