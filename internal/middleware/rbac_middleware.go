package middleware

import (
	"net/http"

	"go-leaveflow/internal/domain"
	"go-leaveflow/internal/shared/apperror"
	"go-leaveflow/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// RBACService adalah interface lokal.
// Apapun package yang punya method Enforce(domain.EnforceRequest) bisa masuk ke sini.
type RBACService interface {
	Enforce(req domain.EnforceRequest) (bool, error)
}

func RBACAuthorize(service RBACService, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextUserID) == "" {
			abortWith(c, apperror.ErrUnauthorized)
			return
		}

		req := domain.EnforceRequest{
			Roles:    CurrentRoles(c).Strings(),
			Resource: resource,
			Action:   action,
		}

		allowed, err := service.Enforce(req)
		if err != nil {
			abortWith(c, apperror.ErrInternal)
			return
		}

		if !allowed {
			response.Error(c, http.StatusForbidden, apperror.CodeForbidden, apperror.ErrForbidden.Message, gin.H{
				"required": resource + ":" + action,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
