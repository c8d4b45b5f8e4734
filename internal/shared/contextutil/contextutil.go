package contextutil

import (
	"context"

	"go.uber.org/zap"
)

// contextKey adalah tipe privat agar tidak terjadi tabrakan key dengan library lain
type contextKey string

const (
	requestIDKey contextKey = "request_id"
	userIDKey    contextKey = "user_id"
	loggerKey    contextKey = "logger"
)

func value[T any](ctx context.Context, key contextKey) (T, bool) {
	var zero T
	if ctx == nil {
		return zero, false
	}
	v, ok := ctx.Value(key).(T)
	return v, ok
}

func WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, requestIDKey, rid)
}

func GetRequestID(ctx context.Context) string {
	rid, _ := value[string](ctx, requestIDKey)
	return rid
}

func WithUserID(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, userIDKey, uid)
}

func GetUserID(ctx context.Context) string {
	uid, _ := value[string](ctx, userIDKey)
	return uid
}

// WithLogger stores a request-scoped logger, usually one already carrying
// request_id and user_id fields.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// GetLogger returns the request logger, then fallback, then a no-op logger.
func GetLogger(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if l, ok := value[*zap.Logger](ctx, loggerKey); ok && l != nil {
		return l
	}
	if fallback != nil {
		return fallback
	}
	return zap.NewNop()
}

// Metadata is the tracing info attached to audit entries.
type Metadata struct {
	RequestID string
	UserID    string
}

func ExtractMetadata(ctx context.Context) Metadata {
	return Metadata{
		RequestID: GetRequestID(ctx),
		UserID:    GetUserID(ctx),
	}
}
