package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("10.0.0.1"), "attempt %d should pass", i+1)
	}
	assert.False(t, rl.Allow("10.0.0.1"), "fourth attempt inside the window must be rejected")

	// Another key has its own budget.
	assert.True(t, rl.Allow("10.0.0.2"))
}

func TestRateLimiter_WindowExpiry(t *testing.T) {
	rl := NewRateLimiter(2, 50*time.Millisecond)

	assert.True(t, rl.Allow("k"))
	assert.True(t, rl.Allow("k"))
	assert.False(t, rl.Allow("k"))

	time.Sleep(60 * time.Millisecond)

	assert.True(t, rl.Allow("k"), "attempts outside the window no longer count")
}

func TestRateLimiter_SweepsStaleKeys(t *testing.T) {
	rl := NewRateLimiter(5, 50*time.Millisecond)

	// One-off clients that never come back.
	rl.Allow("198.51.100.1")
	rl.Allow("198.51.100.2")
	rl.Allow("198.51.100.3")

	time.Sleep(60 * time.Millisecond)

	// Any later attempt triggers the sweep once the window has passed.
	rl.Allow("198.51.100.4")

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Len(t, rl.attempts, 1, "stale one-off keys must be dropped")
	assert.Contains(t, rl.attempts, "198.51.100.4")
}
