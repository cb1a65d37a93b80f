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

type VideoCallRepository struct {
	pool *pgxpool.Pool
}

func NewVideoCallRepository(pool *pgxpool.Pool) *VideoCallRepository {
	return &VideoCallRepository{pool: pool}
}

func (r *VideoCallRepository) Create(ctx context.Context, c *model.VideoCall) error {
	defer logger.DeferLogDuration("call.Create", time.Now())()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO video_calls (id, room_id, host_id, guest_id, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.RoomID, c.HostID, c.GuestID, c.Status, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("callRepo.Create: %w", err)
	}
	return nil
}

func (r *VideoCallRepository) GetByID(ctx context.Context, id string) (*model.VideoCall, error) {
	defer logger.DeferLogDuration("call.GetByID", time.Now())()
	c := &model.VideoCall{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, room_id, host_id, guest_id, status, started_at, ended_at, created_at
		 FROM video_calls WHERE id = $1`, id,
	).Scan(&c.ID, &c.RoomID, &c.HostID, &c.GuestID, &c.Status, &c.StartedAt, &c.EndedAt, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("callRepo.GetByID: %w", err)
	}
	return c, nil
}

// SetActive moves a scheduled call to active and stamps started_at.
func (r *VideoCallRepository) SetActive(ctx context.Context, id string, startedAt time.Time) error {
	defer logger.DeferLogDuration("call.SetActive", time.Now())()
	tag, err := r.pool.Exec(ctx,
		`UPDATE video_calls SET status = 'active', started_at = $2 WHERE id = $1`,
		id, startedAt,
	)
	if err != nil {
		return fmt.Errorf("callRepo.SetActive: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetEnded moves a call to ended and stamps ended_at.
func (r *VideoCallRepository) SetEnded(ctx context.Context, id string, endedAt time.Time) error {
	defer logger.DeferLogDuration("call.SetEnded", time.Now())()
	tag, err := r.pool.Exec(ctx,
		`UPDATE video_calls SET status = 'ended', ended_at = $2 WHERE id = $1`,
		id, endedAt,
	)
	if err != nil {
		return fmt.Errorf("callRepo.SetEnded: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
