package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jobboard/internal/logger"
)

// FavoriteRepository stores each user's saved-job set, keyed by job id.
type FavoriteRepository struct {
	pool *pgxpool.Pool
}

func NewFavoriteRepository(pool *pgxpool.Pool) *FavoriteRepository {
	return &FavoriteRepository{pool: pool}
}

// Add saves a job for a user. Saving twice is a no-op.
func (r *FavoriteRepository) Add(ctx context.Context, userID, jobID string, now time.Time) error {
	defer logger.DeferLogDuration("favorite.Add", time.Now())()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO user_favorite_jobs (user_id, job_id, created_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, job_id) DO NOTHING`,
		userID, jobID, now,
	)
	if err != nil {
		return fmt.Errorf("favoriteRepo.Add: %w", err)
	}
	return nil
}

func (r *FavoriteRepository) Remove(ctx context.Context, userID, jobID string) error {
	defer logger.DeferLogDuration("favorite.Remove", time.Now())()
	_, err := r.pool.Exec(ctx,
		`DELETE FROM user_favorite_jobs WHERE user_id = $1 AND job_id = $2`,
		userID, jobID,
	)
	if err != nil {
		return fmt.Errorf("favoriteRepo.Remove: %w", err)
	}
	return nil
}

// ListJobIDs returns the user's saved job ids, most recently saved first.
func (r *FavoriteRepository) ListJobIDs(ctx context.Context, userID string) ([]string, error) {
	defer logger.DeferLogDuration("favorite.ListJobIDs", time.Now())()
	rows, err := r.pool.Query(ctx,
		`SELECT job_id FROM user_favorite_jobs WHERE user_id = $1 ORDER BY created_at DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("favoriteRepo.ListJobIDs query: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("favoriteRepo.ListJobIDs scan: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("favoriteRepo.ListJobIDs rows: %w", err)
	}
	return ids, nil
}
