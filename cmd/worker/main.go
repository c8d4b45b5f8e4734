package main

import (
	"go-leaveflow/internal/app"
	"go-leaveflow/internal/shared/apperror"
	"go-leaveflow/internal/shared/config"

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

	apperror.Init()

	if err := app.RunWorker(cfg); err != nil {
		logger.Fatal("run worker failed", zap.Error(err))
	}
}
