package app

import (
	"go-leaveflow/internal/middleware"
	"go-leaveflow/internal/shared/config"
	"go-leaveflow/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func BuildApp(router *gin.Engine, cfg config.Config) error {
	logger := zap.L().Named("app")

	// 1. Setup Infrastructure
	gormDB, err := connection.ConnectGORMWithRetry(cfg.DB, cfg.ConnectMaxRetries)
	if err != nil {
		return err
	}
	logger.Info("database connection established")

	if err := Migrate(gormDB); err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}

	redisClient, err := connection.ConnectRedisWithRetry(cfg.Redis.Addr, cfg.ConnectMaxRetries)
	if err != nil {
		return err
	}
	logger.Info("redis connection established")

	// 2. Global middleware
	router.Use(
		middleware.RequestID(),
		middleware.RateLimitByIP(rate.Limit(cfg.IPRateLimitPerSecond), cfg.IPRateLimitBurst),
	)

	// 3. Register Modules & Routes
	return registerModules(router, sqlDB, gormDB, redisClient, cfg)
}
