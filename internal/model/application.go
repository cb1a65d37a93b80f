package model

import "time"

type ApplicationStatus string

const (
	ApplicationStatusPending     ApplicationStatus = "pending"
	ApplicationStatusReviewed    ApplicationStatus = "reviewed"
	ApplicationStatusInterviewed ApplicationStatus = "interviewed"
	ApplicationStatusRejected    ApplicationStatus = "rejected"
)

// ValidApplicationStatus reports whether s is a known status value.
// Transitions between statuses are deliberately not restricted: any status
// may be set from any other (matching the product's permissive review flow).
func ValidApplicationStatus(s ApplicationStatus) bool {
	switch s {
	case ApplicationStatusPending, ApplicationStatusReviewed,
		ApplicationStatusInterviewed, ApplicationStatusRejected:
		return true
	}
	return false
}

type Application struct {
	ID          string            `json:"id"`
	JobID       string            `json:"job_id"`
	CandidateID string            `json:"candidate_id"`
	CoverLetter string            `json:"cover_letter"`
	Status      ApplicationStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	Candidate   *ProfilePublic    `json:"candidate,omitempty"`
	Job         *Job              `json:"job,omitempty"`
}
