package kafka

import (
	"time"

	"github.com/google/uuid"
)

// OutboxRecord describes the outbox_events table for migrations. Reads and
// writes go through OutboxRepository with plain SQL.
type OutboxRecord struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	RequestID     *string   `gorm:"type:varchar(64)"`
	AggregateType string    `gorm:"type:varchar(50);not null"`
	AggregateID   uuid.UUID `gorm:"type:uuid;not null;index:idx_outbox_aggregate"`
	EventType     string    `gorm:"type:varchar(100);not null"`
	Topic         string    `gorm:"type:varchar(100);not null"`
	Payload       []byte    `gorm:"type:jsonb;not null"`
	Status        string    `gorm:"type:varchar(20);not null;default:pending;index:idx_outbox_status_created"`
	RetryCount    int       `gorm:"not null;default:0"`
	NextRetryAt   *time.Time
	ErrorMessage  *string `gorm:"type:varchar(500)"`
	ProcessedAt   *time.Time
	CreatedAt     time.Time `gorm:"not null;default:now();index:idx_outbox_status_created"`
	UpdatedAt     time.Time `gorm:"not null;default:now()"`
}

func (OutboxRecord) TableName() string {
	return "outbox_events"
}
