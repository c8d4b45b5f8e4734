package leave

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"go-leaveflow/internal/events"
	"go-leaveflow/internal/history"
	leaveerrors "go-leaveflow/internal/leave/errors"
	"go-leaveflow/internal/messaging/kafka"
	"go-leaveflow/internal/shared/apperror"
	"go-leaveflow/internal/shared/contextutil"
	"go-leaveflow/internal/visibility"
	"go-leaveflow/internal/workflow"
	workflowerrors "go-leaveflow/internal/workflow/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// SummaryCacheKey is a hash with one field per visibility scope.
const SummaryCacheKey = "leaves:summary"

const defaultSummaryTTL = 5 * time.Minute

var (
	errStageChanged = errors.New("stage changed concurrently")
	errRowChanged   = errors.New("leave changed concurrently")
)

type Service interface {
	Create(ctx context.Context, p Principal, req CreateLeaveRequest) (LeaveResponse, error)
	GetAll(ctx context.Context, p Principal, q ListLeavesQuery) ([]LeaveResponse, int64, error)
	GetByID(ctx context.Context, p Principal, id string) (LeaveResponse, error)
	Summary(ctx context.Context, p Principal) (SummaryResponse, error)
	Export(ctx context.Context, p Principal) ([]byte, error)
	History(ctx context.Context, p Principal, id string) ([]history.HistoryResponse, error)
	Update(ctx context.Context, p Principal, id string, req UpdateLeaveRequest) (LeaveResponse, error)
	Approve(ctx context.Context, p Principal, id string, req ApproveLeaveRequest) (LeaveResponse, error)
	Reject(ctx context.Context, p Principal, id string, req RejectLeaveRequest) (LeaveResponse, error)
	Delete(ctx context.Context, p Principal, id string) error
}

type ServiceConfig struct {
	SummaryTTL time.Duration
	// Now overrides the clock used for date checks and review timestamps.
	Now func() time.Time
}

type service struct {
	db        *sql.DB
	repo      Repository
	outbox    kafka.OutboxRepository
	histories history.Service
	rdb       *redis.Client
	sf        *singleflight.Group
	engine    workflow.Engine
	cfg       ServiceConfig
	logger    *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	outboxRepo kafka.OutboxRepository,
	histories history.Service,
	rdb *redis.Client,
	cfg ServiceConfig,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	if cfg.SummaryTTL <= 0 {
		cfg.SummaryTTL = defaultSummaryTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &service{
		db:        db,
		repo:      repo,
		outbox:    outboxRepo,
		histories: histories,
		rdb:       rdb,
		sf:        &singleflight.Group{},
		engine:    workflow.Engine{Now: cfg.Now},
		cfg:       cfg,
		logger:    l,
	}
}

func (s *service) Create(ctx context.Context, p Principal, req CreateLeaveRequest) (LeaveResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create leave requested",
		zap.String("request_id", rid),
		zap.String("actor_id", p.UserID),
		zap.Strings("roles", p.Roles.Strings()),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	requesterID, err := uuid.Parse(p.UserID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidActorID
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return LeaveResponse{}, err
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return LeaveResponse{}, err
	}

	submitted, err := s.engine.Submit(p.Actor(), workflow.Draft{
		StartDate:  startDate,
		EndDate:    endDate,
		LeaveType:  req.LeaveType,
		Reason:     req.Reason,
		Attachment: req.Attachment,
	})
	if err != nil {
		s.logger.Warn("create leave validation failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create leave begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	overlap, err := qtx.HasOverlappingPeriod(ctx, p.UserID, submitted.StartDate, submitted.EndDate, nil)
	if err != nil {
		s.logger.Error("create leave overlap check failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if overlap {
		s.logger.Warn("create leave overlap detected",
			zap.String("requester_id", p.UserID),
			zap.String("start_date", req.StartDate),
			zap.String("end_date", req.EndDate),
		)
		return LeaveResponse{}, leaveerrors.ErrLeaveOverlap
	}

	l := &Leave{
		ID:                    uuid.New(),
		RequesterID:           requesterID,
		RequesterWorkSiteID:   p.WorkSiteID,
		RequesterDepartmentID: p.DepartmentID,
		LeaveType:             submitted.LeaveType,
		StartDate:             submitted.StartDate,
		EndDate:               submitted.EndDate,
		TotalDays:             totalDays(submitted.StartDate, submitted.EndDate),
		Reason:                submitted.Reason,
		Attachment:            submitted.Attachment,
		Stage:                 string(submitted.Stage),
	}

	if err := qtx.Create(ctx, l); err != nil {
		s.logger.Error("create leave persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := s.enqueue(ctx, tx, events.LeaveSubmitted, l, p.UserID, "", nil); err != nil {
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create leave commit failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveResponse{}, err
	}
	s.invalidateSummary(ctx)

	s.logger.Info("create leave success",
		zap.String("request_id", rid),
		zap.String("leave_id", l.ID.String()),
		zap.String("requester_id", p.UserID),
		zap.String("stage", l.Stage),
	)
	return mapToResponse(*l), nil
}

func (s *service) GetAll(ctx context.Context, p Principal, q ListLeavesQuery) ([]LeaveResponse, int64, error) {
	scope := p.Scope()
	s.logger.Debug("get all leaves requested",
		zap.String("actor_id", p.UserID),
		zap.String("scope", scope.Kind.String()),
		zap.String("stage", q.Stage),
	)

	if q.Stage != "" {
		if _, ok := workflow.ParseStage(q.Stage); !ok {
			return nil, 0, leaveerrors.ErrInvalidStageFilter
		}
	}
	if scope.IsEmpty() {
		return []LeaveResponse{}, 0, nil
	}

	leaves, total, err := s.repo.FindAll(ctx, scope, ListFilter{Stage: q.Stage, Page: q.Page, PageSize: q.PageSize})
	if err != nil {
		s.logger.Error("get all leaves failed", zap.Error(err))
		return nil, 0, err
	}
	return mapToListResponse(leaves), total, nil
}

func (s *service) GetByID(ctx context.Context, p Principal, id string) (LeaveResponse, error) {
	l, err := s.findVisible(ctx, p, id)
	if err != nil {
		return LeaveResponse{}, err
	}
	return mapToResponse(*l), nil
}

func (s *service) History(ctx context.Context, p Principal, id string) ([]history.HistoryResponse, error) {
	if _, err := s.findVisible(ctx, p, id); err != nil {
		return nil, err
	}
	return s.histories.ListByLeave(ctx, id)
}

// findVisible loads a leave and hides it as not found when it is outside the
// caller's visibility scope.
func (s *service) findVisible(ctx context.Context, p Principal, id string) (*Leave, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, leaveerrors.ErrInvalidLeaveID
	}

	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	if !p.Scope().Allows(l.owner()) {
		s.logger.Warn("leave outside visibility scope",
			zap.String("leave_id", id),
			zap.String("actor_id", p.UserID),
		)
		return nil, leaveerrors.ErrLeaveNotFound
	}
	return l, nil
}

func (s *service) Summary(ctx context.Context, p Principal) (SummaryResponse, error) {
	scope := p.Scope()
	if scope.IsEmpty() {
		return newSummary(nil), nil
	}
	field := visibility.CacheKey(scope)

	// 1. Cek Redis
	if s.rdb != nil {
		if cached, err := s.rdb.HGet(ctx, SummaryCacheKey, field).Result(); err == nil {
			var resp SummaryResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	// 2. Singleflight supaya dashboard yang dibuka bersamaan cuma query sekali
	v, err, _ := s.sf.Do(field, func() (any, error) {
		counts, err := s.repo.CountByStage(ctx, scope)
		if err != nil {
			return nil, err
		}
		resp := newSummary(counts)

		if s.rdb != nil {
			if data, err := json.Marshal(resp); err == nil {
				pipe := s.rdb.TxPipeline()
				pipe.HSet(ctx, SummaryCacheKey, field, data)
				pipe.Expire(ctx, SummaryCacheKey, s.cfg.SummaryTTL)
				if _, err := pipe.Exec(ctx); err != nil {
					s.logger.Warn("cache leave summary failed", zap.String("field", field), zap.Error(err))
				}
			}
		}
		return resp, nil
	})
	if err != nil {
		s.logger.Error("leave summary failed", zap.Error(err))
		return SummaryResponse{}, err
	}
	return v.(SummaryResponse), nil
}

func (s *service) Export(ctx context.Context, p Principal) ([]byte, error) {
	scope := p.Scope()
	var leaves []Leave
	if !scope.IsEmpty() {
		var err error
		leaves, _, err = s.repo.FindAll(ctx, scope, ListFilter{})
		if err != nil {
			s.logger.Error("export leaves query failed", zap.Error(err))
			return nil, err
		}
	}

	data, err := buildWorkbook(mapToListResponse(leaves))
	if err != nil {
		s.logger.Error("export leaves build failed", zap.Error(err))
		return nil, leaveerrors.ErrExportFailed.WithCause(err)
	}

	s.logger.Info("export leaves success",
		zap.String("actor_id", p.UserID),
		zap.Int("rows", len(leaves)),
	)
	return data, nil
}

func (s *service) Update(ctx context.Context, p Principal, id string, req UpdateLeaveRequest) (LeaveResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("update leave requested",
		zap.String("request_id", rid),
		zap.String("leave_id", id),
		zap.String("actor_id", p.UserID),
	)

	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}
	patch, err := toPatch(req)
	if err != nil {
		return LeaveResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByID(ctx, id)
	if err != nil {
		return LeaveResponse{}, mapRepositoryError(err)
	}

	updated, err := s.engine.Edit(l.toRequest(), p.Actor(), patch)
	if err != nil {
		s.logger.Warn("update leave rejected",
			zap.String("leave_id", id),
			zap.String("stage", l.Stage),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}

	overlap, err := qtx.HasOverlappingPeriod(ctx, l.RequesterID.String(), updated.StartDate, updated.EndDate, &id)
	if err != nil {
		s.logger.Error("update leave overlap check failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if overlap {
		return LeaveResponse{}, leaveerrors.ErrLeaveOverlap
	}

	l.LeaveType = updated.LeaveType
	l.StartDate = updated.StartDate
	l.EndDate = updated.EndDate
	l.TotalDays = totalDays(updated.StartDate, updated.EndDate)
	l.Reason = updated.Reason
	l.Attachment = updated.Attachment

	ok, err := qtx.UpdateDetails(ctx, l, workflow.Stage(l.Stage))
	if err != nil {
		s.logger.Error("update leave persist failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}
	if !ok {
		return LeaveResponse{}, workflowerrors.ErrInvalidState.WithCause(errRowChanged)
	}

	if err := s.enqueue(ctx, tx, events.LeaveUpdated, l, p.UserID, l.Stage, nil); err != nil {
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("update leave commit failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}
	s.invalidateSummary(ctx)

	s.logger.Info("update leave success", zap.String("request_id", rid), zap.String("leave_id", id))
	return mapToResponse(*l), nil
}

func (s *service) Approve(ctx context.Context, p Principal, id string, req ApproveLeaveRequest) (LeaveResponse, error) {
	return s.review(ctx, p, id, workflow.ActionApprove, req.Comment)
}

func (s *service) Reject(ctx context.Context, p Principal, id string, req RejectLeaveRequest) (LeaveResponse, error) {
	return s.review(ctx, p, id, workflow.ActionReject, req.Reason)
}

func (s *service) review(ctx context.Context, p Principal, id string, action workflow.Action, comment string) (LeaveResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("review leave requested",
		zap.String("request_id", rid),
		zap.String("leave_id", id),
		zap.String("actor_id", p.UserID),
		zap.String("action", string(action)),
		zap.Strings("roles", p.Roles.Strings()),
	)

	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}
	reviewerID, err := uuid.Parse(p.UserID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidActorID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("review leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByID(ctx, id)
	if err != nil {
		return LeaveResponse{}, mapRepositoryError(err)
	}

	decision, err := s.engine.Transition(workflow.Stage(l.Stage), p.Roles, action, l.LeaveType, comment)
	if err != nil {
		s.logger.Warn("review leave rejected",
			zap.String("leave_id", id),
			zap.String("stage", l.Stage),
			zap.String("action", string(action)),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}

	now := s.cfg.Now().UTC()
	ok, err := qtx.UpdateStage(ctx, id, decision.From, StageChange{
		To:         decision.To,
		Comment:    decision.Comment,
		ReviewedBy: reviewerID,
		ReviewedAt: now,
	})
	if err != nil {
		s.logger.Error("review leave persist failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}
	if !ok {
		s.logger.Warn("review leave lost race", zap.String("leave_id", id), zap.String("from_stage", string(decision.From)))
		return LeaveResponse{}, workflowerrors.ErrInvalidTransition.WithCause(errStageChanged)
	}

	reviewed := decision.Apply(l.toRequest())
	l.Stage = string(reviewed.Stage)
	l.Comment = reviewed.Comment
	l.LastReviewedBy = &reviewerID
	l.LastReviewedAt = &now

	eventType := events.LeaveApproved
	if action == workflow.ActionReject {
		eventType = events.LeaveRejected
	}
	if err := s.enqueue(ctx, tx, eventType, l, p.UserID, string(decision.From), decision.Comment); err != nil {
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("review leave commit failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}
	s.invalidateSummary(ctx)

	s.logger.Info("review leave success",
		zap.String("request_id", rid),
		zap.String("leave_id", id),
		zap.String("rule", decision.Rule),
		zap.String("from_stage", string(decision.From)),
		zap.String("to_stage", string(decision.To)),
	)
	return mapToResponse(*l), nil
}

func (s *service) Delete(ctx context.Context, p Principal, id string) error {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("delete leave requested",
		zap.String("request_id", rid),
		zap.String("leave_id", id),
		zap.String("actor_id", p.UserID),
	)

	if _, err := uuid.Parse(id); err != nil {
		return leaveerrors.ErrInvalidLeaveID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("delete leave begin tx failed", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByID(ctx, id)
	if err != nil {
		return mapRepositoryError(err)
	}

	if err := s.engine.Delete(l.toRequest(), p.Actor()); err != nil {
		s.logger.Warn("delete leave rejected",
			zap.String("leave_id", id),
			zap.String("stage", l.Stage),
			zap.Error(err),
		)
		return err
	}

	ok, err := qtx.Delete(ctx, id, workflow.Stage(l.Stage))
	if err != nil {
		s.logger.Error("delete leave failed", zap.String("leave_id", id), zap.Error(err))
		return err
	}
	if !ok {
		return workflowerrors.ErrInvalidState.WithCause(errRowChanged)
	}

	if err := s.enqueue(ctx, tx, events.LeaveDeleted, l, p.UserID, l.Stage, nil); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("delete leave commit failed", zap.String("leave_id", id), zap.Error(err))
		return err
	}
	s.invalidateSummary(ctx)

	s.logger.Info("delete leave success", zap.String("request_id", rid), zap.String("leave_id", id))
	return nil
}

// enqueue writes a lifecycle event to the outbox inside tx.
func (s *service) enqueue(ctx context.Context, tx *sql.Tx, eventType string, l *Leave, actorID, from string, comment *string) error {
	if s.outbox == nil {
		return nil
	}

	rid := contextutil.GetRequestID(ctx)
	evt := events.NewLeaveLifecycleEvent(eventType, l.ID.String(), l.RequesterID.String(), actorID, from, l.Stage, comment, s.cfg.Now())
	row, err := kafka.NewLeaveOutboxEvent(rid, evt)
	if err != nil {
		s.logger.Error("marshal leave event failed", zap.String("request_id", rid), zap.Error(err))
		return err
	}

	if err := s.outbox.WithTx(tx).Create(ctx, row); err != nil {
		s.logger.Error("leave outbox persist failed",
			zap.String("leave_id", l.ID.String()),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *service) invalidateSummary(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, SummaryCacheKey).Err(); err != nil {
		s.logger.Error("failed to invalidate leave summary cache",
			zap.Error(err),
			zap.String("key", SummaryCacheKey),
		)
	}
}

func toPatch(req UpdateLeaveRequest) (workflow.Patch, error) {
	patch := workflow.Patch{
		LeaveType:  req.LeaveType,
		Reason:     req.Reason,
		Attachment: req.Attachment,
	}
	if req.StartDate != nil {
		d, err := parseDate(*req.StartDate)
		if err != nil {
			return workflow.Patch{}, err
		}
		patch.StartDate = &d
	}
	if req.EndDate != nil {
		d, err := parseDate(*req.EndDate)
		if err != nil {
			return workflow.Patch{}, err
		}
		patch.EndDate = &d
	}
	return patch, nil
}

func mapRepositoryError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return leaveerrors.ErrLeaveNotFound
	}
	return err
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse(apperror.DateLayout, v)
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func mapToResponse(l Leave) LeaveResponse {
	resp := LeaveResponse{
		ID:           l.ID.String(),
		RequesterID:  l.RequesterID.String(),
		WorkSiteID:   l.RequesterWorkSiteID,
		DepartmentID: l.RequesterDepartmentID,
		LeaveType:    l.LeaveType,
		StartDate:    l.StartDate.Format(apperror.DateLayout),
		EndDate:      l.EndDate.Format(apperror.DateLayout),
		TotalDays:    l.TotalDays,
		Reason:       l.Reason,
		Attachment:   l.Attachment,
		Stage:        l.Stage,
		Phase:        workflow.Stage(l.Stage).Phase().String(),
		Comment:      l.Comment,
		CreatedAt:    l.CreatedAt.UTC().Format(time.RFC3339),
	}
	if l.LastReviewedBy != nil {
		v := l.LastReviewedBy.String()
		resp.LastReviewedBy = &v
	}
	if l.LastReviewedAt != nil {
		v := l.LastReviewedAt.UTC().Format(time.RFC3339)
		resp.LastReviewedAt = &v
	}
	return resp
}

func mapToListResponse(leaves []Leave) []LeaveResponse {
	resp := make([]LeaveResponse, len(leaves))
	for i, l := range leaves {
		resp[i] = mapToResponse(l)
	}
	return resp
}
