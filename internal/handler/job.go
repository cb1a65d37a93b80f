package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jobboard/internal/middleware"
	"github.com/jobboard/internal/model"
	"github.com/jobboard/internal/repository"
)

type JobHandler struct {
	jobRepo     *repository.JobRepository
	profileRepo *repository.ProfileRepository
}

func NewJobHandler(jobRepo *repository.JobRepository, profileRepo *repository.ProfileRepository) *JobHandler {
	return &JobHandler{jobRepo: jobRepo, profileRepo: profileRepo}
}

// ListJobs returns the public feed: active postings, newest first, with the
// company and skill requirements embedded.
func (h *JobHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)
	if limit < 1 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	jobs, err := h.jobRepo.ListActive(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get jobs")
		return
	}
	if jobs == nil {
		jobs = []model.Job{}
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.jobRepo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "job not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get job")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

type createJobRequest struct {
	CompanyName     string `json:"company_name"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Requirements    string `json:"requirements"`
	Location        string `json:"location"`
	EmploymentType  string `json:"employment_type"`
	ExperienceLevel string `json:"experience_level"`
	SalaryMin       *int   `json:"salary_min"`
	SalaryMax       *int   `json:"salary_max"`
	RemoteAllowed   bool   `json:"remote_allowed"`
	Skills          []struct {
		SkillID       string `json:"skill_id"`
		RequiredLevel int    `json:"required_level"`
		IsRequired    bool   `json:"is_required"`
	} `json:"skills"`
}

// CreateJob posts a job. Company accounts only; the company row is created
// from company_name on the first posting.
func (h *JobHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	profile, err := h.profileRepo.GetByID(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}
	if profile.Role != model.RoleCompany {
		writeError(w, http.StatusForbidden, "company account required")
		return
	}

	var req createJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	req.CompanyName = strings.TrimSpace(req.CompanyName)
	if req.Title == "" || req.Description == "" || req.CompanyName == "" {
		writeError(w, http.StatusBadRequest, "company_name, title and description required")
		return
	}

	now := time.Now().UTC()
	company, err := h.jobRepo.GetOrCreateCompany(r.Context(), userID, req.CompanyName, uuid.New().String(), now)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to resolve company")
		return
	}

	job := &model.Job{
		ID:              uuid.New().String(),
		CompanyID:       company.ID,
		Title:           req.Title,
		Description:     req.Description,
		Requirements:    req.Requirements,
		Location:        req.Location,
		EmploymentType:  req.EmploymentType,
		ExperienceLevel: req.ExperienceLevel,
		SalaryMin:       req.SalaryMin,
		SalaryMax:       req.SalaryMax,
		RemoteAllowed:   req.RemoteAllowed,
		Status:          model.JobStatusActive,
		CreatedAt:       now,
	}
	if err := h.jobRepo.Create(r.Context(), job); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create job")
		return
	}
	for _, s := range req.Skills {
		if s.SkillID == "" {
			continue
		}
		js := &model.JobSkill{JobID: job.ID, SkillID: s.SkillID, RequiredLevel: s.RequiredLevel, IsRequired: s.IsRequired}
		if err := h.jobRepo.AddSkill(r.Context(), js); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to attach skills")
			return
		}
	}

	created, err := h.jobRepo.GetByID(r.Context(), job.ID)
	if err != nil {
		writeJSON(w, http.StatusCreated, job)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// CloseJob takes a posting off the feed. Only the owning company can close.
func (h *JobHandler) CloseJob(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	job, err := h.jobRepo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "job not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get job")
		return
	}
	if job.Company == nil || job.Company.ProfileID != userID {
		writeError(w, http.StatusForbidden, "not your posting")
		return
	}
	if err := h.jobRepo.UpdateStatus(r.Context(), job.ID, model.JobStatusClosed); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to close job")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "closed"})
}
