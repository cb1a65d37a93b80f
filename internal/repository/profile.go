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

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
)

const profileCols = `id, COALESCE(full_name,''), email, role, COALESCE(avatar_url,''), COALESCE(experience_level,''), created_at`

type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

func (r *ProfileRepository) Create(ctx context.Context, p *model.Profile) error {
	defer logger.DeferLogDuration("profile.Create", time.Now())()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO profiles (id, full_name, email, role, avatar_url, experience_level, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.FullName, p.Email, p.Role, p.AvatarURL, p.ExperienceLevel, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("profileRepo.Create: %w", err)
	}
	return nil
}

func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*model.Profile, error) {
	defer logger.DeferLogDuration("profile.GetByID", time.Now())()
	p := &model.Profile{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+profileCols+` FROM profiles WHERE id = $1`, id,
	).Scan(&p.ID, &p.FullName, &p.Email, &p.Role, &p.AvatarURL, &p.ExperienceLevel, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("profileRepo.GetByID: %w", err)
	}
	return p, nil
}

func (r *ProfileRepository) GetByEmail(ctx context.Context, email string) (*model.Profile, error) {
	defer logger.DeferLogDuration("profile.GetByEmail", time.Now())()
	p := &model.Profile{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+profileCols+` FROM profiles WHERE LOWER(email) = LOWER($1)`, email,
	).Scan(&p.ID, &p.FullName, &p.Email, &p.Role, &p.AvatarURL, &p.ExperienceLevel, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("profileRepo.GetByEmail: %w", err)
	}
	return p, nil
}

// Update rewrites the editable profile fields. Email and role are fixed at
// signup and never change here.
func (r *ProfileRepository) Update(ctx context.Context, p *model.Profile) error {
	defer logger.DeferLogDuration("profile.Update", time.Now())()
	tag, err := r.pool.Exec(ctx,
		`UPDATE profiles SET full_name = $1, avatar_url = $2, experience_level = $3 WHERE id = $4`,
		p.FullName, p.AvatarURL, p.ExperienceLevel, p.ID,
	)
	if err != nil {
		return fmt.Errorf("profileRepo.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
