package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jobboard/internal/logger"
	"github.com/jobboard/internal/model"
)

type ApplicationRepository struct {
	pool *pgxpool.Pool
}

func NewApplicationRepository(pool *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{pool: pool}
}

// Create inserts an application. A second application to the same job by the
// same candidate trips the unique constraint and comes back as ErrDuplicate.
func (r *ApplicationRepository) Create(ctx context.Context, a *model.Application) error {
	defer logger.DeferLogDuration("app.Create", time.Now())()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO applications (id, job_id, candidate_id, cover_letter, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, a.JobID, a.CandidateID, a.CoverLetter, a.Status, a.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicate
		}
		return fmt.Errorf("appRepo.Create: %w", err)
	}
	return nil
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (*model.Application, error) {
	defer logger.DeferLogDuration("app.GetByID", time.Now())()
	a := &model.Application{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, job_id, candidate_id, COALESCE(cover_letter,''), status, created_at
		 FROM applications WHERE id = $1`, id,
	).Scan(&a.ID, &a.JobID, &a.CandidateID, &a.CoverLetter, &a.Status, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("appRepo.GetByID: %w", err)
	}
	return a, nil
}

// ListByJob returns a job's applications, newest first, with the candidate's
// profile embedded for the review screen.
func (r *ApplicationRepository) ListByJob(ctx context.Context, jobID string) ([]model.Application, error) {
	defer logger.DeferLogDuration("app.ListByJob", time.Now())()
	rows, err := r.pool.Query(ctx,
		`SELECT a.id, a.job_id, a.candidate_id, COALESCE(a.cover_letter,''), a.status, a.created_at,
		        p.id, COALESCE(p.full_name,''), p.email, COALESCE(p.avatar_url,''), COALESCE(p.experience_level,'')
		 FROM applications a
		 JOIN profiles p ON p.id = a.candidate_id
		 WHERE a.job_id = $1
		 ORDER BY a.created_at DESC`, jobID,
	)
	if err != nil {
		return nil, fmt.Errorf("appRepo.ListByJob query: %w", err)
	}
	defer rows.Close()

	var apps []model.Application
	for rows.Next() {
		var a model.Application
		candidate := &model.ProfilePublic{}
		if err := rows.Scan(&a.ID, &a.JobID, &a.CandidateID, &a.CoverLetter, &a.Status, &a.CreatedAt,
			&candidate.ID, &candidate.FullName, &candidate.Email, &candidate.AvatarURL, &candidate.ExperienceLevel); err != nil {
			return nil, fmt.Errorf("appRepo.ListByJob scan: %w", err)
		}
		a.Candidate = candidate
		apps = append(apps, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appRepo.ListByJob rows: %w", err)
	}
	return apps, nil
}

// ListByCandidate returns a candidate's applications, newest first, with the
// job and its company embedded.
func (r *ApplicationRepository) ListByCandidate(ctx context.Context, candidateID string) ([]model.Application, error) {
	defer logger.DeferLogDuration("app.ListByCandidate", time.Now())()
	rows, err := r.pool.Query(ctx,
		`SELECT a.id, a.job_id, a.candidate_id, COALESCE(a.cover_letter,''), a.status, a.created_at,
		        j.id, j.company_id, j.title, COALESCE(j.location,''), j.status, j.created_at,
		        c.id, c.profile_id, c.company_name, COALESCE(c.logo_url,''), c.created_at
		 FROM applications a
		 JOIN jobs j ON j.id = a.job_id
		 JOIN companies c ON c.id = j.company_id
		 WHERE a.candidate_id = $1
		 ORDER BY a.created_at DESC`, candidateID,
	)
	if err != nil {
		return nil, fmt.Errorf("appRepo.ListByCandidate query: %w", err)
	}
	defer rows.Close()

	var apps []model.Application
	for rows.Next() {
		var a model.Application
		job := &model.Job{}
		company := &model.Company{}
		if err := rows.Scan(&a.ID, &a.JobID, &a.CandidateID, &a.CoverLetter, &a.Status, &a.CreatedAt,
			&job.ID, &job.CompanyID, &job.Title, &job.Location, &job.Status, &job.CreatedAt,
			&company.ID, &company.ProfileID, &company.CompanyName, &company.LogoURL, &company.CreatedAt); err != nil {
			return nil, fmt.Errorf("appRepo.ListByCandidate scan: %w", err)
		}
		job.Company = company
		a.Job = job
		apps = append(apps, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appRepo.ListByCandidate rows: %w", err)
	}
	return apps, nil
}

// UpdateStatus sets the application status. Any valid status can replace any
// other; ordering is not enforced at this level.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id string, status model.ApplicationStatus) error {
	defer logger.DeferLogDuration("app.UpdateStatus", time.Now())()
	tag, err := r.pool.Exec(ctx,
		`UPDATE applications SET status = $1 WHERE id = $2`, status, id,
	)
	if err != nil {
		return fmt.Errorf("appRepo.UpdateStatus: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetContext returns the job title, company name and the company's owning
// profile id for an application. Used for review notifications and access
// checks.
func (r *ApplicationRepository) GetContext(ctx context.Context, id string) (jobTitle, companyName, companyProfileID string, err error) {
	defer logger.DeferLogDuration("app.GetContext", time.Now())()
	err = r.pool.QueryRow(ctx,
		`SELECT j.title, c.company_name, c.profile_id
		 FROM applications a
		 JOIN jobs j ON j.id = a.job_id
		 JOIN companies c ON c.id = j.company_id
		 WHERE a.id = $1`, id,
	).Scan(&jobTitle, &companyName, &companyProfileID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", "", "", ErrNotFound
	}
	if err != nil {
		return "", "", "", fmt.Errorf("appRepo.GetContext: %w", err)
	}
	return jobTitle, companyName, companyProfileID, nil
}
