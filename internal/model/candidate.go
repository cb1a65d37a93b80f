package model

import "time"

type AvailabilityStatus string

const (
	AvailabilityOpen         AvailabilityStatus = "open"
	AvailabilityNotLooking   AvailabilityStatus = "not_looking"
	AvailabilityInterviewing AvailabilityStatus = "interviewing"
)

// Candidate extends a profile with job-seeking attributes. The id is the
// profile id; the row is created lazily on first application.
type Candidate struct {
	ID                 string             `json:"id"`
	ExperienceYears    int                `json:"experience_years"`
	AvailabilityStatus AvailabilityStatus `json:"availability_status"`
	CreatedAt          time.Time          `json:"created_at"`
}

type Skill struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

type CandidateSkill struct {
	CandidateID      string `json:"candidate_id"`
	SkillID          string `json:"skill_id"`
	ProficiencyLevel int    `json:"proficiency_level"`
	Skill            *Skill `json:"skill,omitempty"`
}
