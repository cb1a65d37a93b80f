package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Login code TTL 5 minutes (time to type the code in);
// rate limit 10 requests / 10 minutes per email.
const (
	CodeTTL             = 300
	CodeRateLimitWindow = 600 // 10 minutes
	CodeRateLimitMax    = 10  // code requests per window
	SessionCacheTTL     = 24 * 3600
)

type Client struct {
	cli *redis.Client
}

func New(ctx context.Context, url string) (*Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis parse url: %w", err)
	}
	cli := redis.NewClient(opts)
	if err := cli.Ping(ctx).Err(); err != nil {
		if closeErr := cli.Close(); closeErr != nil {
			return nil, fmt.Errorf("redis ping: %w (close: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Client{cli: cli}, nil
}

func (c *Client) Close() error {
	return c.cli.Close()
}

// SetLoginCode stores the 6-digit code under login_code:{email}, TTL 5 min.
// The code is stored as is so verification is exact.
func (c *Client) SetLoginCode(ctx context.Context, email, code string) error {
	return c.cli.Set(ctx, "login_code:"+email, code, CodeTTL*time.Second).Err()
}

// GetLoginCode returns the code for the email. The key is not deleted here,
// only after a successful verification.
func (c *Client) GetLoginCode(ctx context.Context, email string) (string, error) {
	val, err := c.cli.Get(ctx, "login_code:"+email).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

// GetLoginCodeTTL returns the remaining TTL of the code key, 0 if absent.
func (c *Client) GetLoginCodeTTL(ctx context.Context, email string) (time.Duration, error) {
	d, err := c.cli.TTL(ctx, "login_code:"+email).Result()
	if err != nil || d < 0 {
		return 0, err
	}
	return d, nil
}

// DeleteLoginCode removes the code after a successful verification
// (codes are single use).
func (c *Client) DeleteLoginCode(ctx context.Context, email string) error {
	return c.cli.Del(ctx, "login_code:"+email).Err()
}

// CheckRateLimit counts login_limit:{email}: at most CodeRateLimitMax
// requests per window. Callers answer HTTP 429 when exceeded.
func (c *Client) CheckRateLimit(ctx context.Context, email string) (allowed bool, err error) {
	key := "login_limit:" + email
	n, err := c.cli.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		c.cli.Expire(ctx, key, CodeRateLimitWindow*time.Second)
	}
	return n <= int64(CodeRateLimitMax), nil
}

// CacheSession maps a token hash to its user id so the auth middleware can
// skip the Postgres lookup on hot paths. Sessions outlive the cache entry;
// a miss falls back to the sessions table.
func (c *Client) CacheSession(ctx context.Context, tokenHash, userID string) error {
	return c.cli.Set(ctx, "session:"+tokenHash, userID, SessionCacheTTL*time.Second).Err()
}

func (c *Client) GetCachedSession(ctx context.Context, tokenHash string) (string, error) {
	val, err := c.cli.Get(ctx, "session:"+tokenHash).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

// DropCachedSession evicts the cache entry on logout so a revoked token
// stops authenticating immediately.
func (c *Client) DropCachedSession(ctx context.Context, tokenHash string) error {
	return c.cli.Del(ctx, "session:"+tokenHash).Err()
}

// FlushDB clears the current Redis DB (resets codes, rate limits and the
// session cache on test runs or restarts).
func (c *Client) FlushDB(ctx context.Context) error {
	return c.cli.FlushDB(ctx).Err()
}
