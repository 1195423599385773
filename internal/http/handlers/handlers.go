package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/peermatch/backend/internal/db"
	"github.com/peermatch/backend/internal/engine"
	"github.com/peermatch/backend/internal/models"
)

type Handler struct {
	Store     *db.Store
	Validator *validator.Validate
	Logger    zerolog.Logger
	AdminKey  string
	Engine    engine.Config
}

func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) ReviewersList(c *gin.Context) {
	status := strings.ToUpper(strings.TrimSpace(c.Query("status")))
	expertise := strings.TrimSpace(c.Query("expertise"))
	language := strings.ToUpper(strings.TrimSpace(c.Query("language")))

	items, err := h.Store.ListReviewers(c.Request.Context(), status, expertise, language)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list reviewers", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) ReviewerDetails(c *gin.Context) {
	id := c.Param("id")
	reviewer, err := h.Store.GetReviewer(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "Reviewer not found", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to get reviewer", err.Error())
		return
	}
	c.JSON(http.StatusOK, reviewer)
}

func (h *Handler) OrganizationsList(c *gin.Context) {
	items, err := h.Store.ListOrganizations(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list organizations", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// @Summary Match reviewers
// @Description Score every active reviewer against the criteria and return the ranked list
// @Tags matching
// @Accept json
// @Produce json
// @Param criteria body models.MatchingCriteria true "Matching criteria"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/match [post]
func (h *Handler) Match(c *gin.Context) {
	criteria, ok := h.bindCriteria(c)
	if !ok {
		return
	}

	candidates, err := h.Store.LoadReviewerSnapshots(c.Request.Context(), true)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load reviewer snapshots", err.Error())
		return
	}

	results, err := engine.FindMatchingReviewers(c.Request.Context(), criteria, candidates, h.Engine)
	if err != nil {
		h.writeEngineError(c, err)
		return
	}

	eligible := 0
	for _, r := range results {
		if r.IsEligible {
			eligible++
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"results": results,
		"counts": gin.H{
			"total":      len(results),
			"eligible":   eligible,
			"ineligible": len(results) - eligible,
		},
	})
}

// @Summary Build review team
// @Description Score the candidate pool and greedily assemble the best team for the criteria
// @Tags matching
// @Accept json
// @Produce json
// @Param criteria body models.MatchingCriteria true "Matching criteria"
// @Success 200 {object} models.TeamBuildResult
// @Failure 400 {object} map[string]any
// @Router /api/team [post]
func (h *Handler) BuildTeam(c *gin.Context) {
	criteria, ok := h.bindCriteria(c)
	if !ok {
		return
	}

	candidates, err := h.Store.LoadReviewerSnapshots(c.Request.Context(), true)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load reviewer snapshots", err.Error())
		return
	}

	pool, err := engine.FindMatchingReviewers(c.Request.Context(), criteria, candidates, h.Engine)
	if err != nil {
		h.writeEngineError(c, err)
		return
	}

	result := engine.BuildOptimalTeam(criteria, pool, h.Engine)
	c.JSON(http.StatusOK, gin.H{
		"team":            result.Team,
		"coverage_report": result.Coverage,
		"requested_size":  criteria.TeamSize,
		"actual_size":     len(result.Team),
	})
}

type availabilityRequest struct {
	Slots []models.AvailabilitySlot `json:"slots"`
	Start time.Time                 `json:"start" binding:"required"`
	End   time.Time                 `json:"end" binding:"required"`
}

// @Summary Summarize availability
// @Tags availability
// @Accept json
// @Produce json
// @Success 200 {object} engine.AvailabilitySummary
// @Failure 400 {object} map[string]any
// @Router /api/availability/summary [post]
func (h *Handler) AvailabilitySummary(c *gin.Context) {
	var req availabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid availability request", err.Error())
		return
	}

	summary, err := engine.SummarizeAvailability(req.Slots, req.Start, req.End)
	if err != nil {
		h.writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// @Summary Check conflict of interest
// @Tags coi
// @Produce json
// @Param id path string true "Reviewer ID"
// @Param organization_id query string true "Target organization ID"
// @Success 200 {object} models.COIStatus
// @Router /api/reviewers/{id}/coi [get]
func (h *Handler) COICheck(c *gin.Context) {
	organizationID := strings.TrimSpace(c.Query("organization_id"))
	if organizationID == "" {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "organization_id is required", nil)
		return
	}

	reviewer, err := h.Store.GetReviewer(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "Reviewer not found", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to get reviewer", err.Error())
		return
	}

	status, err := engine.EvaluateCOI(reviewer, organizationID, time.Now().UTC())
	if err != nil {
		h.writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// @Summary Verify conflict of interest
// @Description Record an admin CONFIRM/WAIVE/REJECT decision on a conflict
// @Tags coi
// @Accept json
// @Produce json
// @Router /api/reviewers/{id}/coi/{coiID}/verify [post]
func (h *Handler) VerifyCOI(c *gin.Context) {
	var req models.VerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid verification request", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid verification request", err.Error())
		return
	}
	if err := engine.ValidateVerification(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	if err := h.Store.ApplyVerification(c.Request.Context(), c.Param("id"), c.Param("coiID"), req); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "Conflict record not found", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to record decision", err.Error())
		return
	}
	h.Logger.Info().
		Str("reviewer_id", c.Param("id")).
		Str("coi_id", c.Param("coiID")).
		Str("decision", string(req.Decision)).
		Msg("conflict verification recorded")
	c.JSON(http.StatusOK, gin.H{"status": "recorded"})
}

type statusRequest struct {
	Status models.SelectionStatus `json:"status" validate:"required,oneof=AVAILABLE SELECTED INACTIVE"`
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid status request", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid status", err.Error())
		return
	}

	if err := h.Store.UpdateSelectionStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "Reviewer not found", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to update status", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// @Summary Debug score
// @Description Full per-factor score breakdown for one reviewer against ad-hoc criteria
// @Tags debug
// @Produce json
// @Param reviewer_id query string true "Reviewer ID"
// @Param target_organization_id query string true "Target organization ID"
// @Success 200 {object} models.MatchResult
// @Router /api/debug/score [get]
func (h *Handler) DebugScore(c *gin.Context) {
	reviewerID := strings.TrimSpace(c.Query("reviewer_id"))
	if reviewerID == "" {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "reviewer_id is required", nil)
		return
	}
	criteria, ok := h.criteriaFromQuery(c)
	if !ok {
		return
	}

	reviewer, err := h.Store.GetReviewer(c.Request.Context(), reviewerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "Reviewer not found", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to get reviewer", err.Error())
		return
	}

	result, err := engine.Score(reviewer, criteria, h.Engine)
	if err != nil {
		h.writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) bindCriteria(c *gin.Context) (models.MatchingCriteria, bool) {
	var criteria models.MatchingCriteria
	if err := c.ShouldBindJSON(&criteria); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid matching criteria", err.Error())
		return criteria, false
	}
	if err := h.Validator.Struct(criteria); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid matching criteria", err.Error())
		return criteria, false
	}
	if criteria.ReviewEndDate.Before(criteria.ReviewStartDate) {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "review_end_date precedes review_start_date", nil)
		return criteria, false
	}
	return criteria, true
}

func (h *Handler) criteriaFromQuery(c *gin.Context) (models.MatchingCriteria, bool) {
	criteria := models.MatchingCriteria{
		TargetOrganizationID: strings.TrimSpace(c.Query("target_organization_id")),
		RequiredExpertise:    splitList(c.Query("required_expertise")),
		PreferredExpertise:   splitList(c.Query("preferred_expertise")),
		RequiredLanguages:    splitList(c.Query("required_languages")),
	}
	if criteria.TargetOrganizationID == "" {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "target_organization_id is required", nil)
		return criteria, false
	}

	start, err := time.Parse("2006-01-02", c.Query("start"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "start must be YYYY-MM-DD", nil)
		return criteria, false
	}
	end, err := time.Parse("2006-01-02", c.Query("end"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "end must be YYYY-MM-DD", nil)
		return criteria, false
	}
	if end.Before(start) {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "end precedes start", nil)
		return criteria, false
	}
	criteria.ReviewStartDate = start
	criteria.ReviewEndDate = end

	size, _ := strconv.Atoi(c.DefaultQuery("team_size", "1"))
	criteria.TeamSize = size
	return criteria, true
}

// writeEngineError maps engine failures onto the response envelope:
// contract violations are caller bugs (400), data faults in stored
// snapshots are 422.
func (h *Handler) writeEngineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, engine.ErrInvalidDateRange):
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
	case errors.Is(err, engine.ErrMissingHomeOrganization):
		writeError(c, http.StatusUnprocessableEntity, "INVALID_STATE", err.Error(), nil)
	default:
		h.Logger.Error().Err(err).Msg("engine failure")
		writeError(c, http.StatusInternalServerError, "ENGINE_ERROR", "Evaluation failed", err.Error())
	}
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
