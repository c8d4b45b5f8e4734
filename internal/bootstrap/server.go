package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go-leaveflow/internal/shared/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

func ServerConfigFrom(cfg config.Config) ServerConfig {
	return ServerConfig{
		Port:            cfg.Port,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		IdleTimeout:     cfg.IdleTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}
}

// StartHTTPServer menjalankan Gin server dengan graceful shutdown
func StartHTTPServer(
	router *gin.Engine,
	cfg ServerConfig,
	auditLogger AuditLogger,
) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := Serve(ctx, router, cfg, auditLogger); err != nil {
		zap.L().Fatal("http server failed", zap.Error(err))
	}
}

// Serve runs the server until ctx is done, writes a shutdown audit entry and
// drains in-flight requests for at most cfg.ShutdownTimeout.
func Serve(ctx context.Context, handler http.Handler, cfg ServerConfig, auditLogger AuditLogger) error {
	log := zap.L().Named("bootstrap.server")
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server running", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	cause := context.Cause(ctx)
	log.Info("shutdown signal received", zap.Error(cause))

	// Audit log sebelum shutdown
	auditLogger.Log(context.Background(), AuditLog{
		Action:  "SERVER_SHUTDOWN",
		Message: "Server is shutting down",
		Meta: map[string]any{
			"cause": cause.Error(),
		},
	})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
		return err
	}
	log.Info("server exited gracefully")
	return nil
}
