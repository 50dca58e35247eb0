package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/studydrops/backend/internal/logger"
	"github.com/studydrops/backend/internal/services"
	"github.com/studydrops/backend/internal/types"
)

type TrailHandler struct {
	log      *logger.Logger
	trailSvc services.TrailService
}

func NewTrailHandler(log *logger.Logger, trailSvc services.TrailService) *TrailHandler {
	return &TrailHandler{
		log:      log.With("handler", "TrailHandler"),
		trailSvc: trailSvc,
	}
}

type generateTrailRequest struct {
	BudgetMinutes int     `json:"budget_minutes"`
	ExamDate      *string `json:"exam_date,omitempty"` // RFC 3339 date
}

// POST /api/users/:userId/trails
// Generate (or regenerate) today's trail.
func (h *TrailHandler) GenerateTrail(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_user_id", err)
		return
	}
	var req generateTrailRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	var examDate *time.Time
	if req.ExamDate != nil {
		parsed, err := time.Parse("2006-01-02", *req.ExamDate)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_exam_date", err)
			return
		}
		examDate = &parsed
	}

	result, err := h.trailSvc.GenerateTrail(c.Request.Context(), services.GenerateTrailInput{
		UserID:        userID,
		BudgetMinutes: req.BudgetMinutes,
		ExamDate:      examDate,
	})
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "generation_failed", err)
		return
	}
	RespondCreated(c, result)
}

// GET /api/users/:userId/trails/today
func (h *TrailHandler) GetTodayTrail(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_user_id", err)
		return
	}
	trail, err := h.trailSvc.GetTrail(c.Request.Context(), userID, time.Now().UTC())
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "lookup_failed", err)
		return
	}
	if trail == nil {
		RespondError(c, http.StatusNotFound, "trail_not_found", nil)
		return
	}
	RespondOK(c, trail)
}

type updateTrailItemRequest struct {
	Status          string `json:"status,omitempty"`
	DurationMinutes *int   `json:"duration_minutes,omitempty"`
}

// PATCH /api/users/:userId/trail-items/:itemId
func (h *TrailHandler) UpdateTrailItem(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_user_id", err)
		return
	}
	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_item_id", err)
		return
	}
	var req updateTrailItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	item, err := h.trailSvc.UpdateTrailItem(c.Request.Context(), userID, services.TrailItemUpdate{
		ItemID:          itemID,
		Status:          types.TrailItemStatus(req.Status),
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		RespondError(c, http.StatusBadRequest, "update_failed", err)
		return
	}
	RespondOK(c, item)
}
