package middleware

import (
	"sync"
	"time"

	"wagyu_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// RateLimiter is a sliding-window per-key limiter. Used on the auth
// endpoints so repeated signup/login attempts get a friendly error instead
// of a raw provider message.
type RateLimiter struct {
	mu        sync.Mutex
	attempts  map[string][]time.Time
	limit     int
	window    time.Duration
	lastSweep time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		attempts:  make(map[string][]time.Time),
		limit:     limit,
		window:    window,
		lastSweep: time.Now(),
	}
}

// Allow records an attempt and reports whether the key is under the limit.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	rl.sweepLocked(now)

	var valid []time.Time
	for _, t := range rl.attempts[key] {
		if now.Sub(t) < rl.window {
			valid = append(valid, t)
		}
	}

	if len(valid) >= rl.limit {
		rl.attempts[key] = valid
		return false
	}

	rl.attempts[key] = append(valid, now)
	return true
}

// sweepLocked drops keys whose attempts have all aged out. Without it a key
// is only pruned when that same key comes back, so one-off client IPs pile
// up for the life of the process. Runs at most once per window.
func (rl *RateLimiter) sweepLocked(now time.Time) {
	if now.Sub(rl.lastSweep) < rl.window {
		return
	}
	rl.lastSweep = now

	for key, times := range rl.attempts {
		live := false
		for _, t := range times {
			if now.Sub(t) < rl.window {
				live = true
				break
			}
		}
		if !live {
			delete(rl.attempts, key)
		}
	}
}

// RateLimitMiddleware limits by client IP.
func RateLimitMiddleware(limit int, window time.Duration) gin.HandlerFunc {
	rl := NewRateLimiter(limit, window)

	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			err := apperrors.ErrTooManyAttempts
			c.AbortWithStatusJSON(err.HTTPCode, apperrors.ErrorResponse{Error: err})
			return
		}
		c.Next()
	}
}
