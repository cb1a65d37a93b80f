package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jobboard/internal/middleware"
	"github.com/jobboard/internal/model"
	"github.com/jobboard/internal/repository"
)

type UserHandler struct {
	profileRepo   *repository.ProfileRepository
	candidateRepo *repository.CandidateRepository
	favoriteRepo  *repository.FavoriteRepository
	jobRepo       *repository.JobRepository
}

func NewUserHandler(
	profileRepo *repository.ProfileRepository,
	candidateRepo *repository.CandidateRepository,
	favoriteRepo *repository.FavoriteRepository,
	jobRepo *repository.JobRepository,
) *UserHandler {
	return &UserHandler{
		profileRepo: profileRepo, candidateRepo: candidateRepo,
		favoriteRepo: favoriteRepo, jobRepo: jobRepo,
	}
}

func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	profile, err := h.profileRepo.GetByID(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	var req struct {
		FullName        string `json:"full_name"`
		AvatarURL       string `json:"avatar_url"`
		ExperienceLevel string `json:"experience_level"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	profile, err := h.profileRepo.GetByID(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}
	profile.FullName = strings.TrimSpace(req.FullName)
	profile.AvatarURL = strings.TrimSpace(req.AvatarURL)
	profile.ExperienceLevel = strings.TrimSpace(req.ExperienceLevel)
	if err := h.profileRepo.Update(r.Context(), profile); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// GetProfile returns another user's public profile (for chat headers).
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profileRepo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}
	writeJSON(w, http.StatusOK, profile.ToPublic())
}

// ListFavorites returns the caller's saved job ids.
func (h *UserHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	ids, err := h.favoriteRepo.ListJobIDs(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get favorites")
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"job_ids": ids})
}

func (h *UserHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	var req struct {
		JobID string `json:"job_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.JobID == "" {
		writeError(w, http.StatusBadRequest, "job_id required")
		return
	}
	if _, err := h.jobRepo.GetByID(r.Context(), req.JobID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "job not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to check job")
		return
	}
	if err := h.favoriteRepo.Add(r.Context(), userID, req.JobID, time.Now().UTC()); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save favorite")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "saved"})
}

func (h *UserHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	jobID := chi.URLParam(r, "jobId")
	if err := h.favoriteRepo.Remove(r.Context(), userID, jobID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to remove favorite")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// ListSkills returns the skill catalog for pickers.
func (h *UserHandler) ListSkills(w http.ResponseWriter, r *http.Request) {
	skills, err := h.candidateRepo.ListAllSkills(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get skills")
		return
	}
	if skills == nil {
		skills = []model.Skill{}
	}
	writeJSON(w, http.StatusOK, skills)
}

// ListMySkills returns the caller's skills.
func (h *UserHandler) ListMySkills(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	skills, err := h.candidateRepo.ListSkills(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get skills")
		return
	}
	if skills == nil {
		skills = []model.CandidateSkill{}
	}
	writeJSON(w, http.StatusOK, skills)
}

// SetMySkill attaches or updates one skill on the caller's candidate record.
func (h *UserHandler) SetMySkill(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	var req struct {
		SkillID          string `json:"skill_id"`
		ProficiencyLevel int    `json:"proficiency_level"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SkillID == "" {
		writeError(w, http.StatusBadRequest, "skill_id required")
		return
	}
	if req.ProficiencyLevel < 1 || req.ProficiencyLevel > 5 {
		writeError(w, http.StatusBadRequest, "proficiency_level must be 1-5")
		return
	}
	if err := h.candidateRepo.Ensure(r.Context(), userID, time.Now().UTC()); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save skill")
		return
	}
	if err := h.candidateRepo.SetSkill(r.Context(), userID, req.SkillID, req.ProficiencyLevel); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save skill")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *UserHandler) RemoveMySkill(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	skillID := chi.URLParam(r, "skillId")
	if err := h.candidateRepo.RemoveSkill(r.Context(), userID, skillID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to remove skill")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}
