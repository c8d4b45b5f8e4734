package middleware

import (
	"go-leaveflow/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ContextLogger runs after AuthMiddleware and attaches a request-scoped logger.
func ContextLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		// Request ID biasanya sudah di-set oleh RequestID()
		rid := contextutil.GetRequestID(ctx)
		if rid == "" {
			rid = c.GetHeader("X-Request-ID")
		}
		if rid == "" {
			rid = uuid.New().String()
			c.Header("X-Request-ID", rid)
		}

		uid := c.GetString(ContextUserID)

		// Logger ini yang akan digunakan di sepanjang request ini
		reqLogger := logger.With(
			zap.String("request_id", rid),
			zap.String("user_id", uid),
			zap.Strings("roles", CurrentRoles(c).Strings()),
		)

		// Agar layer Service/Repo bisa ambil via contextutil tanpa tahu Gin
		ctx = contextutil.WithRequestID(ctx, rid)
		ctx = contextutil.WithUserID(ctx, uid)
		ctx = contextutil.WithLogger(ctx, reqLogger)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
