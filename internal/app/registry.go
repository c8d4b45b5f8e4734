package app

import (
	"database/sql"

	"go-leaveflow/internal/history"
	"go-leaveflow/internal/leave"
	"go-leaveflow/internal/messaging/kafka"
	"go-leaveflow/internal/rbac"
	"go-leaveflow/internal/rbac/infra"
	"go-leaveflow/internal/shared/config"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
	cfg config.Config,
) error {
	logger := zap.L()

	// --- Repositories ---
	leaveRepo := leave.NewRepository(gormDB)
	historyRepo := history.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService, err := rbac.NewService(enforcer, logger)
	if err != nil {
		return err
	}

	// --- Services ---
	historyService := history.NewService(historyRepo, logger)
	leaveService := leave.NewService(db, leaveRepo, outboxRepo, historyService, rdb,
		leave.ServiceConfig{SummaryTTL: cfg.SummaryCacheTTL},
		logger,
	)

	// --- Handlers ---
	leaveHandler := leave.NewHandler(leaveService, logger)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		leave.RegisterRoutes(api, leaveHandler, rbacService, rdb, logger, leave.RouteConfig{
			JWTSecret:          cfg.JWTSecret,
			RateLimitPerSecond: cfg.RateLimitPerSecond,
			RateLimitBurst:     cfg.RateLimitBurst,
		})
	}

	return nil
}
