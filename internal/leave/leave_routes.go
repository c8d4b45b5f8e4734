package leave

import (
	"go-leaveflow/internal/middleware"
	"go-leaveflow/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type RouteConfig struct {
	JWTSecret          string
	RateLimitPerSecond float64
	RateLimitBurst     int
}

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	rdb *redis.Client,
	logger *zap.Logger,
	cfg RouteConfig,
) {
	can := func(action string) gin.HandlerFunc {
		return middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, action)
	}

	leaves := r.Group("/leaves")
	leaves.Use(middleware.AuthMiddleware(cfg.JWTSecret), middleware.ContextLogger(logger))
	{
		leaves.GET("", can(rbac.ActionRead), handler.GetAll)
		leaves.GET("/summary", can(rbac.ActionRead), handler.Summary)
		leaves.GET("/export", can(rbac.ActionReport), handler.Export)
		leaves.GET("/:id", can(rbac.ActionRead), handler.GetByID)
		leaves.GET("/:id/history", can(rbac.ActionRead), handler.History)
		leaves.POST("",
			can(rbac.ActionCreate),
			middleware.RateLimitByUser(rate.Limit(cfg.RateLimitPerSecond), cfg.RateLimitBurst),
			middleware.Idempotency(rdb, logger),
			handler.Create,
		)
		leaves.PUT("/:id", can(rbac.ActionCreate), handler.Update)
		leaves.DELETE("/:id", can(rbac.ActionCreate), handler.Delete)
		leaves.POST("/:id/approve", can(rbac.ActionReview), handler.Approve)
		leaves.POST("/:id/reject", can(rbac.ActionReview), handler.Reject)
	}
}
