package mw

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// CallerRateLimiter stores a rate limiter per caller. Callers are keyed
// by the authenticated user id when present, else by client IP.
type CallerRateLimiter struct {
	callers map[string]*rate.Limiter
	mu      *sync.RWMutex
	r       rate.Limit
	b       int
}

// NewCallerRateLimiter creates a new CallerRateLimiter.
func NewCallerRateLimiter(r rate.Limit, b int) *CallerRateLimiter {
	return &CallerRateLimiter{
		callers: make(map[string]*rate.Limiter),
		mu:      &sync.RWMutex{},
		r:       r,
		b:       b,
	}
}

// AddCaller creates a new rate limiter for a caller key.
func (l *CallerRateLimiter) AddCaller(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter := rate.NewLimiter(l.r, l.b)
	l.callers[key] = limiter
	return limiter
}

// GetLimiter returns the rate limiter for a caller key.
func (l *CallerRateLimiter) GetLimiter(key string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.callers[key]
	l.mu.RUnlock()

	if !exists {
		return l.AddCaller(key)
	}
	return limiter
}

// RateLimiter is a middleware for per-caller rate limiting.
func RateLimiter(r rate.Limit, b int) gin.HandlerFunc {
	limiter := NewCallerRateLimiter(r, b)
	return func(c *gin.Context) {
		key := c.GetHeader("X-User-Id")
		if key == "" {
			key = c.ClientIP()
		}
		if !limiter.GetLimiter(key).Allow() {
			c.AbortWithStatus(http.StatusTooManyRequests)
			return
		}
		c.Next()
	}
}
