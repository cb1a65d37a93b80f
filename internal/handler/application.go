package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jobboard/internal/middleware"
	"github.com/jobboard/internal/model"
	"github.com/jobboard/internal/repository"
	"github.com/jobboard/internal/service"
)

type ApplicationHandler struct {
	applications *service.ApplicationService
	appRepo      *repository.ApplicationRepository
	jobRepo      *repository.JobRepository
}

func NewApplicationHandler(
	applications *service.ApplicationService,
	appRepo *repository.ApplicationRepository,
	jobRepo *repository.JobRepository,
) *ApplicationHandler {
	return &ApplicationHandler{applications: applications, appRepo: appRepo, jobRepo: jobRepo}
}

// Apply submits an application to a job. A duplicate application answers
// 409 so the client can show "Already applied" instead of a generic error.
func (h *ApplicationHandler) Apply(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	jobID := chi.URLParam(r, "id")
	var req struct {
		CoverLetter string `json:"cover_letter"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid body")
			return
		}
	}
	a, err := h.applications.Apply(r.Context(), userID, jobID, req.CoverLetter)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyApplied):
			writeError(w, http.StatusConflict, "already applied")
		case errors.Is(err, service.ErrJobClosed):
			writeError(w, http.StatusConflict, "job is not active")
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "job not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to apply")
		}
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// ListByJob returns a job's applications for the owning company.
func (h *ApplicationHandler) ListByJob(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	jobID := chi.URLParam(r, "id")
	job, err := h.jobRepo.GetByID(r.Context(), jobID)
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
	apps, err := h.appRepo.ListByJob(r.Context(), jobID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get applications")
		return
	}
	if apps == nil {
		apps = []model.Application{}
	}
	writeJSON(w, http.StatusOK, apps)
}

// ListMine returns the caller's applications with job and company embedded.
func (h *ApplicationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	apps, err := h.appRepo.ListByCandidate(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get applications")
		return
	}
	if apps == nil {
		apps = []model.Application{}
	}
	writeJSON(w, http.StatusOK, apps)
}

// UpdateStatus sets an application's review status. Any known status value
// is accepted from any current one.
func (h *ApplicationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	appID := chi.URLParam(r, "id")
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	a, err := h.applications.UpdateStatus(r.Context(), userID, appID, model.ApplicationStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStatus):
			writeError(w, http.StatusBadRequest, "invalid status")
		case errors.Is(err, service.ErrForbidden):
			writeError(w, http.StatusForbidden, "not your posting")
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "application not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to update status")
		}
		return
	}
	writeJSON(w, http.StatusOK, a)
}
