package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jobboard/internal/logger"
	"github.com/jobboard/internal/model"
)

type CandidateRepository struct {
	pool *pgxpool.Pool
}

func NewCandidateRepository(pool *pgxpool.Pool) *CandidateRepository {
	return &CandidateRepository{pool: pool}
}

// Ensure creates the candidate row for a profile if it does not exist yet.
// Candidates are materialized lazily, on the first application.
func (r *CandidateRepository) Ensure(ctx context.Context, profileID string, now time.Time) error {
	defer logger.DeferLogDuration("candidate.Ensure", time.Now())()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO candidates (id, availability_status, created_at)
		 VALUES ($1, 'open', $2)
		 ON CONFLICT (id) DO NOTHING`,
		profileID, now,
	)
	if err != nil {
		return fmt.Errorf("candidateRepo.Ensure: %w", err)
	}
	return nil
}

// ListSkills returns a candidate's skills with the skill rows embedded.
func (r *CandidateRepository) ListSkills(ctx context.Context, candidateID string) ([]model.CandidateSkill, error) {
	defer logger.DeferLogDuration("candidate.ListSkills", time.Now())()
	rows, err := r.pool.Query(ctx,
		`SELECT cs.candidate_id, cs.skill_id, cs.proficiency_level,
		        s.id, s.name, COALESCE(s.category,'')
		 FROM candidate_skills cs
		 JOIN skills s ON s.id = cs.skill_id
		 WHERE cs.candidate_id = $1
		 ORDER BY s.name`, candidateID,
	)
	if err != nil {
		return nil, fmt.Errorf("candidateRepo.ListSkills query: %w", err)
	}
	defer rows.Close()

	var skills []model.CandidateSkill
	for rows.Next() {
		var cs model.CandidateSkill
		skill := &model.Skill{}
		if err := rows.Scan(&cs.CandidateID, &cs.SkillID, &cs.ProficiencyLevel,
			&skill.ID, &skill.Name, &skill.Category); err != nil {
			return nil, fmt.Errorf("candidateRepo.ListSkills scan: %w", err)
		}
		cs.Skill = skill
		skills = append(skills, cs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("candidateRepo.ListSkills rows: %w", err)
	}
	return skills, nil
}

// SetSkill attaches or updates one skill on a candidate.
func (r *CandidateRepository) SetSkill(ctx context.Context, candidateID, skillID string, proficiency int) error {
	defer logger.DeferLogDuration("candidate.SetSkill", time.Now())()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO candidate_skills (candidate_id, skill_id, proficiency_level)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (candidate_id, skill_id) DO UPDATE SET proficiency_level = $3`,
		candidateID, skillID, proficiency,
	)
	if err != nil {
		return fmt.Errorf("candidateRepo.SetSkill: %w", err)
	}
	return nil
}

func (r *CandidateRepository) RemoveSkill(ctx context.Context, candidateID, skillID string) error {
	defer logger.DeferLogDuration("candidate.RemoveSkill", time.Now())()
	_, err := r.pool.Exec(ctx,
		`DELETE FROM candidate_skills WHERE candidate_id = $1 AND skill_id = $2`,
		candidateID, skillID,
	)
	if err != nil {
		return fmt.Errorf("candidateRepo.RemoveSkill: %w", err)
	}
	return nil
}

// ListAllSkills returns the skill catalog, grouped by category for pickers.
func (r *CandidateRepository) ListAllSkills(ctx context.Context) ([]model.Skill, error) {
	defer logger.DeferLogDuration("candidate.ListAllSkills", time.Now())()
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, COALESCE(category,'') FROM skills ORDER BY category, name`,
	)
	if err != nil {
		return nil, fmt.Errorf("candidateRepo.ListAllSkills query: %w", err)
	}
	defer rows.Close()

	var skills []model.Skill
	for rows.Next() {
		var s model.Skill
		if err := rows.Scan(&s.ID, &s.Name, &s.Category); err != nil {
			return nil, fmt.Errorf("candidateRepo.ListAllSkills scan: %w", err)
		}
		skills = append(skills, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("candidateRepo.ListAllSkills rows: %w", err)
	}
	return skills, nil
}
