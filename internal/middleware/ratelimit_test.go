package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterAllowsUpToMax(t *testing.T) {
	rl := newRateLimiter(3, time.Minute)
	assert.True(t, rl.allow("k"))
	assert.True(t, rl.allow("k"))
	assert.True(t, rl.allow("k"))
	assert.False(t, rl.allow("k"))

	// Independent key has its own budget.
	assert.True(t, rl.allow("other"))
}

func TestRateLimiterWindowExpiry(t *testing.T) {
	rl := newRateLimiter(1, 10*time.Millisecond)
	assert.True(t, rl.allow("k"))
	assert.False(t, rl.allow("k"))
	time.Sleep(15 * time.Millisecond)
	assert.True(t, rl.allow("k"))
}
