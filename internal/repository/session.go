package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jobboard/internal/logger"
	"github.com/jobboard/internal/model"
)

type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

func (r *SessionRepository) Create(ctx context.Context, s *model.Session) error {
	defer logger.DeferLogDuration("session.Create", time.Now())()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO sessions (id, user_id, device_name, token_hash, last_seen_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		s.ID, s.UserID, s.DeviceName, s.TokenHash, s.LastSeenAt, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sessionRepo.Create: %w", err)
	}
	return nil
}

// GetByTokenHash looks up a live (not revoked) session by its token hash.
func (r *SessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*model.Session, error) {
	defer logger.DeferLogDuration("session.GetByTokenHash", time.Now())()
	s := &model.Session{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, COALESCE(device_name,''), token_hash, last_seen_at, created_at, revoked_at
		 FROM sessions
		 WHERE token_hash = $1 AND revoked_at IS NULL`, tokenHash,
	).Scan(&s.ID, &s.UserID, &s.DeviceName, &s.TokenHash, &s.LastSeenAt, &s.CreatedAt, &s.RevokedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sessionRepo.GetByTokenHash: %w", err)
	}
	return s, nil
}

// TouchLastSeen bumps last_seen_at. Authenticate calls it only when the
// session cache misses, so the write load stays low.
func (r *SessionRepository) TouchLastSeen(ctx context.Context, id string, at time.Time) error {
	defer logger.DeferLogDuration("session.TouchLastSeen", time.Now())()
	_, err := r.pool.Exec(ctx,
		`UPDATE sessions SET last_seen_at = $2 WHERE id = $1`, id, at,
	)
	if err != nil {
		return fmt.Errorf("sessionRepo.TouchLastSeen: %w", err)
	}
	return nil
}

// Revoke ends a session. The token stops authenticating once the cache entry
// is dropped as well.
func (r *SessionRepository) Revoke(ctx context.Context, id string, at time.Time) error {
	defer logger.DeferLogDuration("session.Revoke", time.Now())()
	tag, err := r.pool.Exec(ctx,
		`UPDATE sessions SET revoked_at = $2 WHERE id = $1 AND revoked_at IS NULL`, id, at,
	)
	if err != nil {
		return fmt.Errorf("sessionRepo.Revoke: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
