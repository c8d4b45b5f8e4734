package main

import (
	"go-leaveflow/internal/app"
	"go-leaveflow/internal/bootstrap"
	"go-leaveflow/internal/shared/apperror"
	"go-leaveflow/internal/shared/config"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config failed", zap.Error(err))
	}
	if cfg.JWTSecret == "" {
		logger.Fatal("JWT_SECRET is required")
	}

	apperror.Init()
	r := gin.Default()

	// build dependency + routes
	if err := app.BuildApp(r, cfg); err != nil {
		logger.Fatal("build app failed", zap.Error(err))
	}

	bootstrap.StartHTTPServer(
		r,
		bootstrap.ServerConfigFrom(cfg),
		bootstrap.NewStdoutAuditLogger(logger),
	)
}
