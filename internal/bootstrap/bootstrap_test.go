package bootstrap

import (
	"context"
	"net/http"
	"testing"
	"time"

	"go-leaveflow/internal/shared/config"
	"go-leaveflow/internal/shared/contextutil"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestStdoutAuditLogger_Log(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := NewStdoutAuditLogger(zap.New(core))

	ctx := contextutil.WithRequestID(context.Background(), "rid-1")
	l.Log(ctx, AuditLog{
		Action:  "SERVER_SHUTDOWN",
		Message: "Server is shutting down",
		Meta:    map[string]any{"signal": "terminated"},
	})

	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "audit", entries[0].LoggerName)
	fields := entries[0].ContextMap()
	assert.Equal(t, "SERVER_SHUTDOWN", fields["action"])
	assert.Equal(t, "rid-1", fields["request_id"])
}

func TestServerConfigFrom(t *testing.T) {
	got := ServerConfigFrom(config.Config{
		Port:         "8080",
		ReadTimeout:  time.Second,
		WriteTimeout: 2 * time.Second,
		IdleTimeout:  3 * time.Second,
	})

	assert.Equal(t, ServerConfig{
		Port:         "8080",
		ReadTimeout:  time.Second,
		WriteTimeout: 2 * time.Second,
		IdleTimeout:  3 * time.Second,
	}, got)
}

type recordingAuditLogger struct {
	entries []AuditLog
}

func (r *recordingAuditLogger) Log(_ context.Context, entry AuditLog) {
	r.entries = append(r.entries, entry)
}

func TestServe_ShutdownWritesAudit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	audit := &recordingAuditLogger{}

	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, http.NotFoundHandler(), ServerConfig{Port: "0", ShutdownTimeout: time.Second}, audit)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.Len(t, audit.entries, 1)
	assert.Equal(t, "SERVER_SHUTDOWN", audit.entries[0].Action)
	assert.Equal(t, context.Canceled.Error(), audit.entries[0].Meta["cause"])
}
