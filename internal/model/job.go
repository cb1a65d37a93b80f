package model

import "time"

type Company struct {
	ID          string    `json:"id"`
	ProfileID   string    `json:"profile_id"`
	CompanyName string    `json:"company_name"`
	LogoURL     string    `json:"logo_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type JobStatus string

const (
	JobStatusActive JobStatus = "active"
	JobStatusClosed JobStatus = "closed"
)

type Job struct {
	ID              string     `json:"id"`
	CompanyID       string     `json:"company_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Requirements    string     `json:"requirements,omitempty"`
	Location        string     `json:"location,omitempty"`
	EmploymentType  string     `json:"employment_type,omitempty"`
	ExperienceLevel string     `json:"experience_level,omitempty"`
	SalaryMin       *int       `json:"salary_min,omitempty"`
	SalaryMax       *int       `json:"salary_max,omitempty"`
	RemoteAllowed   bool       `json:"remote_allowed"`
	Status          JobStatus  `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	Company         *Company   `json:"company,omitempty"`
	Skills          []JobSkill `json:"job_skills,omitempty"`
}

// JobSkill ties a job to one required skill.
type JobSkill struct {
	JobID         string `json:"-"`
	SkillID       string `json:"-"`
	RequiredLevel int    `json:"required_level"`
	IsRequired    bool   `json:"is_required"`
	Skill         *Skill `json:"skill,omitempty"`
}
