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

const jobCols = `j.id, j.company_id, j.title, j.description, COALESCE(j.requirements,''),
	        COALESCE(j.location,''), COALESCE(j.employment_type,''), COALESCE(j.experience_level,''),
	        j.salary_min, j.salary_max, j.remote_allowed, j.status, j.created_at`

type JobRepository struct {
	pool *pgxpool.Pool
}

func NewJobRepository(pool *pgxpool.Pool) *JobRepository {
	return &JobRepository{pool: pool}
}

// GetOrCreateCompany returns the company owned by the profile, creating it
// with the given name on first use. A later posting with a different name
// does not rename the company.
func (r *JobRepository) GetOrCreateCompany(ctx context.Context, profileID, companyName, newID string, now time.Time) (*model.Company, error) {
	defer logger.DeferLogDuration("job.GetOrCreateCompany", time.Now())()
	c := &model.Company{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, profile_id, company_name, COALESCE(logo_url,''), created_at
		 FROM companies WHERE profile_id = $1`, profileID,
	).Scan(&c.ID, &c.ProfileID, &c.CompanyName, &c.LogoURL, &c.CreatedAt)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("jobRepo.GetOrCreateCompany select: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO companies (id, profile_id, company_name, created_at) VALUES ($1, $2, $3, $4)`,
		newID, profileID, companyName, now,
	)
	if err != nil {
		return nil, fmt.Errorf("jobRepo.GetOrCreateCompany insert: %w", err)
	}
	return &model.Company{ID: newID, ProfileID: profileID, CompanyName: companyName, CreatedAt: now}, nil
}

func (r *JobRepository) Create(ctx context.Context, j *model.Job) error {
	defer logger.DeferLogDuration("job.Create", time.Now())()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO jobs (id, company_id, title, description, requirements, location, employment_type, experience_level, salary_min, salary_max, remote_allowed, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		j.ID, j.CompanyID, j.Title, j.Description, j.Requirements, j.Location, j.EmploymentType, j.ExperienceLevel,
		j.SalaryMin, j.SalaryMax, j.RemoteAllowed, j.Status, j.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("jobRepo.Create: %w", err)
	}
	return nil
}

// AddSkill attaches a skill requirement to a job.
func (r *JobRepository) AddSkill(ctx context.Context, js *model.JobSkill) error {
	defer logger.DeferLogDuration("job.AddSkill", time.Now())()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO job_skills (job_id, skill_id, required_level, is_required)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (job_id, skill_id) DO UPDATE SET required_level = $3, is_required = $4`,
		js.JobID, js.SkillID, js.RequiredLevel, js.IsRequired,
	)
	if err != nil {
		return fmt.Errorf("jobRepo.AddSkill: %w", err)
	}
	return nil
}

func (r *JobRepository) GetByID(ctx context.Context, id string) (*model.Job, error) {
	defer logger.DeferLogDuration("job.GetByID", time.Now())()
	j := &model.Job{}
	company := &model.Company{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+jobCols+`,
		        c.id, c.profile_id, c.company_name, COALESCE(c.logo_url,''), c.created_at
		 FROM jobs j
		 JOIN companies c ON c.id = j.company_id
		 WHERE j.id = $1`, id,
	).Scan(&j.ID, &j.CompanyID, &j.Title, &j.Description, &j.Requirements,
		&j.Location, &j.EmploymentType, &j.ExperienceLevel,
		&j.SalaryMin, &j.SalaryMax, &j.RemoteAllowed, &j.Status, &j.CreatedAt,
		&company.ID, &company.ProfileID, &company.CompanyName, &company.LogoURL, &company.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("jobRepo.GetByID: %w", err)
	}
	j.Company = company
	skills, err := r.loadSkills(ctx, []string{j.ID})
	if err != nil {
		return nil, err
	}
	j.Skills = skills[j.ID]
	return j, nil
}

// ListActive returns a page of open jobs, newest first, with company and
// skill requirements embedded. This backs the public job feed.
func (r *JobRepository) ListActive(ctx context.Context, limit, offset int) ([]model.Job, error) {
	defer logger.DeferLogDuration("job.ListActive", time.Now())()
	rows, err := r.pool.Query(ctx,
		`SELECT `+jobCols+`,
		        c.id, c.profile_id, c.company_name, COALESCE(c.logo_url,''), c.created_at
		 FROM jobs j
		 JOIN companies c ON c.id = j.company_id
		 WHERE j.status = 'active'
		 ORDER BY j.created_at DESC
		 LIMIT $1 OFFSET $2`, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("jobRepo.ListActive query: %w", err)
	}
	defer rows.Close()

	var jobs []model.Job
	var ids []string
	for rows.Next() {
		var j model.Job
		company := &model.Company{}
		if err := rows.Scan(&j.ID, &j.CompanyID, &j.Title, &j.Description, &j.Requirements,
			&j.Location, &j.EmploymentType, &j.ExperienceLevel,
			&j.SalaryMin, &j.SalaryMax, &j.RemoteAllowed, &j.Status, &j.CreatedAt,
			&company.ID, &company.ProfileID, &company.CompanyName, &company.LogoURL, &company.CreatedAt); err != nil {
			return nil, fmt.Errorf("jobRepo.ListActive scan: %w", err)
		}
		j.Company = company
		jobs = append(jobs, j)
		ids = append(ids, j.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("jobRepo.ListActive rows: %w", err)
	}

	skills, err := r.loadSkills(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range jobs {
		jobs[i].Skills = skills[jobs[i].ID]
	}
	return jobs, nil
}

// loadSkills fetches skill requirements for a batch of jobs in one query.
func (r *JobRepository) loadSkills(ctx context.Context, jobIDs []string) (map[string][]model.JobSkill, error) {
	out := make(map[string][]model.JobSkill, len(jobIDs))
	if len(jobIDs) == 0 {
		return out, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT js.job_id, js.skill_id, js.required_level, js.is_required,
		        s.id, s.name, COALESCE(s.category,'')
		 FROM job_skills js
		 JOIN skills s ON s.id = js.skill_id
		 WHERE js.job_id = ANY($1)`, jobIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("jobRepo.loadSkills query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var js model.JobSkill
		skill := &model.Skill{}
		if err := rows.Scan(&js.JobID, &js.SkillID, &js.RequiredLevel, &js.IsRequired,
			&skill.ID, &skill.Name, &skill.Category); err != nil {
			return nil, fmt.Errorf("jobRepo.loadSkills scan: %w", err)
		}
		js.Skill = skill
		out[js.JobID] = append(out[js.JobID], js)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("jobRepo.loadSkills rows: %w", err)
	}
	return out, nil
}

// UpdateStatus opens or closes a job posting.
func (r *JobRepository) UpdateStatus(ctx context.Context, id string, status model.JobStatus) error {
	defer logger.DeferLogDuration("job.UpdateStatus", time.Now())()
	tag, err := r.pool.Exec(ctx,
		`UPDATE jobs SET status = $1 WHERE id = $2`, status, id,
	)
	if err != nil {
		return fmt.Errorf("jobRepo.UpdateStatus: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
