package middleware

import (
	"sync"

	"go-leaveflow/internal/shared/apperror"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type KeyedRateLimiter struct {
	keys map[string]*rate.Limiter
	mu   *sync.Mutex
	r    rate.Limit // jumlah request per detik
	b    int        // burst (kapasitas kantong)
}

func NewKeyedRateLimiter(r rate.Limit, b int) *KeyedRateLimiter {
	return &KeyedRateLimiter{
		keys: make(map[string]*rate.Limiter),
		mu:   &sync.Mutex{},
		r:    r,
		b:    b,
	}
}

func (l *KeyedRateLimiter) GetLimiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, exists := l.keys[key]
	if !exists {
		limiter = rate.NewLimiter(l.r, l.b)
		l.keys[key] = limiter
	}

	return limiter
}

func RateLimitByIP(r rate.Limit, b int) gin.HandlerFunc {
	limiter := NewKeyedRateLimiter(r, b)
	return func(c *gin.Context) {
		if !limiter.GetLimiter(c.ClientIP()).Allow() {
			abortWith(c, apperror.ErrTooManyRequests)
			return
		}
		c.Next()
	}
}

// RateLimitByUser: r = request per detik, b = burst
func RateLimitByUser(r rate.Limit, b int) gin.HandlerFunc {
	limiter := NewKeyedRateLimiter(r, b)
	return func(c *gin.Context) {
		userID := c.GetString(ContextUserID)
		if userID == "" {
			c.Next() // Jika belum login, skip ke middleware berikutnya
			return
		}
		if !limiter.GetLimiter(userID).Allow() {
			abortWith(c, apperror.ErrTooManyRequests)
			return
		}
		c.Next()
	}
}
