package memory

import (
	"context"
	"sync"
	"time"
)

const (
	codeTTL             = 300 * time.Second
	codeRateLimitWindow = 600 * time.Second
	codeRateLimitMax    = 10
	sessionCacheTTL     = 24 * time.Hour
)

type item struct {
	val string
	exp time.Time
}

type Client struct {
	mu       sync.RWMutex
	codes    map[string]item
	limit    map[string][]time.Time
	sessions map[string]item
}

func New() *Client {
	return &Client{
		codes:    make(map[string]item),
		limit:    make(map[string][]time.Time),
		sessions: make(map[string]item),
	}
}

func (c *Client) Close() error { return nil }

func (c *Client) SetLoginCode(ctx context.Context, email, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.codes[email] = item{val: code, exp: time.Now().Add(codeTTL)}
	return nil
}

func (c *Client) GetLoginCode(ctx context.Context, email string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.codes[email]
	if !ok || time.Now().After(v.exp) {
		return "", nil
	}
	return v.val, nil
}

func (c *Client) GetLoginCodeTTL(ctx context.Context, email string) (time.Duration, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.codes[email]
	if !ok || time.Now().After(v.exp) {
		return 0, nil
	}
	d := time.Until(v.exp)
	if d < 0 {
		return 0, nil
	}
	return d, nil
}

func (c *Client) DeleteLoginCode(ctx context.Context, email string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.codes, email)
	return nil
}

func (c *Client) CheckRateLimit(ctx context.Context, email string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	cut := now.Add(-codeRateLimitWindow)
	slice := c.limit[email]
	var kept []time.Time
	for _, t := range slice {
		if t.After(cut) {
			kept = append(kept, t)
		}
	}
	if len(kept) >= codeRateLimitMax {
		return false, nil
	}
	kept = append(kept, now)
	c.limit[email] = kept
	return true, nil
}

func (c *Client) CacheSession(ctx context.Context, tokenHash, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[tokenHash] = item{val: userID, exp: time.Now().Add(sessionCacheTTL)}
	return nil
}

func (c *Client) GetCachedSession(ctx context.Context, tokenHash string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.sessions[tokenHash]
	if !ok || time.Now().After(v.exp) {
		return "", nil
	}
	return v.val, nil
}

func (c *Client) DropCachedSession(ctx context.Context, tokenHash string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, tokenHash)
	return nil
}
