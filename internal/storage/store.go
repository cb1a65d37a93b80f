package storage

import (
	"context"
	"time"
)

// CodeStore keeps login codes, their rate limits and the session lookup
// cache. Implementations: redis.Client, memory.Client (for -dev without Redis).
type CodeStore interface {
	SetLoginCode(ctx context.Context, email, code string) error
	GetLoginCode(ctx context.Context, email string) (string, error)
	GetLoginCodeTTL(ctx context.Context, email string) (time.Duration, error)
	DeleteLoginCode(ctx context.Context, email string) error
	CheckRateLimit(ctx context.Context, email string) (allowed bool, err error)
	CacheSession(ctx context.Context, tokenHash, userID string) error
	GetCachedSession(ctx context.Context, tokenHash string) (string, error)
	DropCachedSession(ctx context.Context, tokenHash string) error
	Close() error
}
