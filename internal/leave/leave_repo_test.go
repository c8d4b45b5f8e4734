package leave

import (
	"context"
	"regexp"
	"testing"
	"time"

	"go-leaveflow/internal/workflow"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newGormMock(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	assert.NoError(t, err)
	return db, mock
}

func TestRepository_UpdateStage(t *testing.T) {
	ctx := context.Background()
	id := uuid.NewString()
	comment := "ok"
	change := StageChange{
		To:         workflow.StageApprovedBySchoolHead,
		Comment:    &comment,
		ReviewedBy: uuid.New(),
		ReviewedAt: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
	}

	t.Run("success", func(t *testing.T) {
		db, mock := newGormMock(t)
		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "leaves" SET`)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		ok, err := repo.UpdateStage(ctx, id, workflow.StageAwaitingSchoolHead, change)
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stage already moved", func(t *testing.T) {
		db, mock := newGormMock(t)
		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "leaves" SET`)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		ok, err := repo.UpdateStage(ctx, id, workflow.StageAwaitingSchoolHead, change)
		assert.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestRepository_DeleteWithTx(t *testing.T) {
	ctx := context.Background()
	db, mock := newGormMock(t)
	sqlDB, err := db.DB()
	assert.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "leaves" SET "deleted_at"=`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := sqlDB.BeginTx(ctx, nil)
	assert.NoError(t, err)

	ok, err := NewRepository(db).WithTx(tx).Delete(ctx, uuid.NewString(), workflow.StageAwaitingSchoolHead)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_HasOverlappingPeriod(t *testing.T) {
	ctx := context.Background()
	db, mock := newGormMock(t)
	repo := NewRepository(db)
	exclude := uuid.NewString()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "leaves"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	overlap, err := repo.HasOverlappingPeriod(ctx, uuid.NewString(),
		time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
		&exclude,
	)
	assert.NoError(t, err)
	assert.True(t, overlap)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindAll(t *testing.T) {
	ctx := context.Background()
	db, mock := newGormMock(t)
	repo := NewRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "leaves"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "leaves"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "requester_id", "stage"}).
			AddRow(uuid.NewString(), uuid.NewString(), "awaiting_school_head"))

	scope := workflow.Scope{Kind: workflow.ScopeDepartment, DepartmentID: "dept-1"}
	leaves, total, err := repo.FindAll(ctx, scope, ListFilter{Page: 2, PageSize: 2})

	assert.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, leaves, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
