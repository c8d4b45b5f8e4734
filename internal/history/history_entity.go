package history

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// StageHistory is one committed lifecycle event of a leave request.
type StageHistory struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey"`
	EventID    uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:uq_leave_stage_history_event"`
	LeaveID    uuid.UUID      `gorm:"type:uuid;not null;index"`
	EventType  string         `gorm:"not null"`
	ActorID    string         `gorm:"not null"`
	FromStage  string         `gorm:"column:from_stage"`
	ToStage    string         `gorm:"column:to_stage;not null"`
	Comment    *string        `gorm:"type:text"`
	Payload    datatypes.JSON `gorm:"type:jsonb;not null"`
	OccurredAt time.Time      `gorm:"not null"`
	CreatedAt  time.Time
}

func (StageHistory) TableName() string {
	return "leave_stage_histories"
}
