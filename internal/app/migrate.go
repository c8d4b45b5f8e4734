package app

import (
	"go-leaveflow/internal/history"
	"go-leaveflow/internal/leave"
	"go-leaveflow/internal/messaging/kafka"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Migrate creates or updates the tables owned by this service.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&leave.Leave{},
		&history.StageHistory{},
		&kafka.OutboxRecord{},
	); err != nil {
		return err
	}
	zap.L().Named("app.migrate").Info("schema migrated")
	return nil
}
