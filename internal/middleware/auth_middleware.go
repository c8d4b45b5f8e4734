package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go-leaveflow/internal/shared/apperror"
	"go-leaveflow/internal/shared/response"
	"go-leaveflow/internal/workflow"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Gin context keys populated by AuthMiddleware.
const (
	ContextUserID       = "user_id"
	ContextRoles        = "roles"
	ContextWorkSiteID   = "work_site_id"
	ContextDepartmentID = "department_id"
)

var (
	ErrTokenNotFound = apperror.New(apperror.CodeUnauthorized, "Token not found", http.StatusUnauthorized)
	ErrInvalidToken  = apperror.New(apperror.CodeUnauthorized, "Invalid token", http.StatusUnauthorized)
	ErrTokenExpired  = apperror.New(apperror.CodeUnauthorized, "Token expired", http.StatusUnauthorized)
	ErrMissingUserID = apperror.New(apperror.CodeUnauthorized, "User ID not found in token", http.StatusUnauthorized)
)

// Claims carries the identity of a leave-system user. Org attributes are
// optional; scoped reviewer roles without them see nothing.
type Claims struct {
	UserID       string   `json:"user_id"`
	Roles        []string `json:"roles"`
	WorkSiteID   string   `json:"work_site_id,omitempty"`
	DepartmentID string   `json:"department_id,omitempty"`
	jwt.RegisteredClaims
}

func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found {
			tokenString = ""
		}

		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			abortWith(c, ErrTokenNotFound)
			return
		}

		claims, err := ParseToken(secret, tokenString)
		if err != nil {
			var appErr *apperror.AppError
			if !errors.As(err, &appErr) {
				appErr = ErrInvalidToken
			}
			abortWith(c, appErr)
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRoles, workflow.ParseRoleSet(claims.Roles))
		c.Set(ContextWorkSiteID, claims.WorkSiteID)
		c.Set(ContextDepartmentID, claims.DepartmentID)

		c.Next()
	}
}

// ParseToken verifies an HS256 token and returns its claims.
func ParseToken(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken.WithCause(err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == "" {
		return nil, ErrMissingUserID
	}
	return claims, nil
}

// IssueToken signs claims with HS256. ttl of zero leaves the token without expiry.
func IssueToken(secret string, claims Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	if ttl != 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// CurrentRoles returns the role set stored by AuthMiddleware.
func CurrentRoles(c *gin.Context) workflow.RoleSet {
	if v, ok := c.Get(ContextRoles); ok {
		if roles, ok := v.(workflow.RoleSet); ok {
			return roles
		}
	}
	return 0
}

func abortWith(c *gin.Context, err *apperror.AppError) {
	response.Abort(c, err.HTTPStatus, err.Code, err.Message)
}
