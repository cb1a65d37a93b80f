package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jobboard/internal/model"
	"github.com/jobboard/internal/repository"
	"github.com/jobboard/internal/ws"
)

var (
	ErrAlreadyApplied = errors.New("already applied")
	ErrInvalidStatus  = errors.New("invalid status")
	ErrJobClosed      = errors.New("job is not active")
	ErrForbidden      = errors.New("forbidden")
)

// ApplicationService handles applying to jobs and moving applications
// through review.
type ApplicationService struct {
	appRepo       *repository.ApplicationRepository
	candidateRepo *repository.CandidateRepository
	jobRepo       *repository.JobRepository
	profileRepo   *repository.ProfileRepository
	events        EventSender
	push          PushNotifier
}

func NewApplicationService(
	appRepo *repository.ApplicationRepository,
	candidateRepo *repository.CandidateRepository,
	jobRepo *repository.JobRepository,
	profileRepo *repository.ProfileRepository,
	events EventSender,
	push PushNotifier,
) *ApplicationService {
	return &ApplicationService{
		appRepo: appRepo, candidateRepo: candidateRepo, jobRepo: jobRepo,
		profileRepo: profileRepo, events: events, push: push,
	}
}

// online reports whether the user has a live socket; push is skipped for
// them since the socket event already arrived.
func (s *ApplicationService) online(userID string) bool {
	return s.events != nil && s.events.IsOnline(userID)
}

// Apply submits a candidate's application. The candidate row is created on
// first use. A repeat application to the same job surfaces as
// ErrAlreadyApplied, driven by the unique (job_id, candidate_id) constraint
// rather than a pre-check, so concurrent submits cannot slip through.
func (s *ApplicationService) Apply(ctx context.Context, candidateID, jobID, coverLetter string) (*model.Application, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != model.JobStatusActive {
		return nil, ErrJobClosed
	}
	now := time.Now().UTC()
	if err := s.candidateRepo.Ensure(ctx, candidateID, now); err != nil {
		return nil, err
	}
	a := &model.Application{
		ID:          uuid.New().String(),
		JobID:       jobID,
		CandidateID: candidateID,
		CoverLetter: coverLetter,
		Status:      model.ApplicationStatusPending,
		CreatedAt:   now,
	}
	if err := s.appRepo.Create(ctx, a); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyApplied
		}
		return nil, err
	}

	if job.Company != nil {
		candidateName := ""
		if p, err := s.profileRepo.GetByID(ctx, candidateID); err == nil {
			pub := p.ToPublic()
			candidateName = pub.DisplayName()
			a.Candidate = &pub
		}
		payload := ws.NewApplicationPayload{
			ApplicationID: a.ID,
			JobID:         jobID,
			JobTitle:      job.Title,
			CandidateName: candidateName,
		}
		if s.events != nil {
			s.events.SendToUser(job.Company.ProfileID, ws.OutgoingMessage{Type: ws.EventNewApplication, Payload: payload})
		}
		if s.push != nil && !s.online(job.Company.ProfileID) {
			go s.push.Notify(context.Background(), job.Company.ProfileID,
				"New application", candidateName+" applied for "+job.Title,
				map[string]string{"application_id": a.ID, "job_id": jobID})
		}
	}
	return a, nil
}

// UpdateStatus moves an application to any valid status. Only the company
// that owns the job may review; the candidate is told about every change.
// Statuses are not ordered: a reviewer may reject a pending application
// outright or send one back to pending.
func (s *ApplicationService) UpdateStatus(ctx context.Context, actorID, appID string, status model.ApplicationStatus) (*model.Application, error) {
	if !model.ValidApplicationStatus(status) {
		return nil, ErrInvalidStatus
	}
	a, err := s.appRepo.GetByID(ctx, appID)
	if err != nil {
		return nil, err
	}
	jobTitle, companyName, companyProfileID, err := s.appRepo.GetContext(ctx, appID)
	if err != nil {
		return nil, err
	}
	if actorID != companyProfileID {
		return nil, ErrForbidden
	}
	if err := s.appRepo.UpdateStatus(ctx, appID, status); err != nil {
		return nil, err
	}
	a.Status = status

	payload := ws.ApplicationStatusPayload{
		ApplicationID: appID,
		Status:        string(status),
		JobTitle:      jobTitle,
		CompanyName:   companyName,
	}
	if s.events != nil {
		s.events.SendToUser(a.CandidateID, ws.OutgoingMessage{Type: ws.EventApplicationStatus, Payload: payload})
	}
	if s.push != nil && !s.online(a.CandidateID) {
		go s.push.Notify(context.Background(), a.CandidateID,
			companyName, "Your application for "+jobTitle+" is now "+string(status),
			map[string]string{"application_id": appID})
	}
	return a, nil
}
