package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginCodeLifecycle(t *testing.T) {
	ctx := context.Background()
	c := New()

	code, err := c.GetLoginCode(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Empty(t, code)

	require.NoError(t, c.SetLoginCode(ctx, "a@example.com", "123456"))

	code, err = c.GetLoginCode(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "123456", code)

	ttl, err := c.GetLoginCodeTTL(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Greater(t, ttl, 290*time.Second)
	assert.LessOrEqual(t, ttl, 300*time.Second)

	require.NoError(t, c.DeleteLoginCode(ctx, "a@example.com"))
	code, err = c.GetLoginCode(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Empty(t, code)
}

func TestExpiredCodeNotReturned(t *testing.T) {
	ctx := context.Background()
	c := New()

	c.codes["b@example.com"] = item{val: "654321", exp: time.Now().Add(-time.Second)}

	code, err := c.GetLoginCode(ctx, "b@example.com")
	require.NoError(t, err)
	assert.Empty(t, code)

	ttl, err := c.GetLoginCodeTTL(ctx, "b@example.com")
	require.NoError(t, err)
	assert.Zero(t, ttl)
}

func TestRateLimit(t *testing.T) {
	ctx := context.Background()
	c := New()

	for i := 0; i < codeRateLimitMax; i++ {
		ok, err := c.CheckRateLimit(ctx, "c@example.com")
		require.NoError(t, err)
		assert.True(t, ok, "attempt %d should pass", i+1)
	}
	ok, err := c.CheckRateLimit(ctx, "c@example.com")
	require.NoError(t, err)
	assert.False(t, ok)

	// Other keys are unaffected.
	ok, err = c.CheckRateLimit(ctx, "d@example.com")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSessionCache(t *testing.T) {
	ctx := context.Background()
	c := New()

	userID, err := c.GetCachedSession(ctx, "hash-1")
	require.NoError(t, err)
	assert.Empty(t, userID)

	require.NoError(t, c.CacheSession(ctx, "hash-1", "user-1"))
	userID, err = c.GetCachedSession(ctx, "hash-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	require.NoError(t, c.DropCachedSession(ctx, "hash-1"))
	userID, err = c.GetCachedSession(ctx, "hash-1")
	require.NoError(t, err)
	assert.Empty(t, userID)
}
