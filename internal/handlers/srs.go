package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/studydrops/backend/internal/logger"
	"github.com/studydrops/backend/internal/services"
	"github.com/studydrops/backend/internal/types"
)

type SrsHandler struct {
	log    *logger.Logger
	srsSvc services.SrsService
}

func NewSrsHandler(log *logger.Logger, srsSvc services.SrsService) *SrsHandler {
	return &SrsHandler{
		log:    log.With("handler", "SrsHandler"),
		srsSvc: srsSvc,
	}
}

type submitReviewRequest struct {
	CardID string `json:"card_id" binding:"required"`
	Grade  int    `json:"grade"`
}

// POST /api/users/:userId/srs/reviews
func (h *SrsHandler) SubmitReview(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_user_id", err)
		return
	}
	var req submitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	cardID, err := uuid.Parse(req.CardID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_card_id", err)
		return
	}

	outcome, err := h.srsSvc.SubmitReview(c.Request.Context(), userID, cardID, req.Grade)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "review_failed", err)
		return
	}
	RespondOK(c, outcome)
}

// GET /api/users/:userId/srs/queue?mode=today|overdue|upcoming|all
func (h *SrsHandler) GetQueue(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_user_id", err)
		return
	}
	mode := types.SrsQueueMode(c.DefaultQuery("mode", string(types.SrsQueueToday)))
	queue, err := h.srsSvc.Queue(c.Request.Context(), userID, mode)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "queue_failed", err)
		return
	}
	RespondOK(c, queue)
}

// GET /api/users/:userId/srs/summary
func (h *SrsHandler) GetSummary(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_user_id", err)
		return
	}
	summary, err := h.srsSvc.Summary(c.Request.Context(), userID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "summary_failed", err)
		return
	}
	RespondOK(c, summary)
}

type srsSettingsRequest struct {
	MemoryStrength   string `json:"memory_strength"`
	LearningStyle    string `json:"learning_style"`
	MaxNewCards      int    `json:"max_new_cards_per_day"`
	BaseIntervalDays int    `json:"base_interval_days"`
}

// PUT /api/users/:userId/srs/settings
func (h *SrsHandler) UpdateSettings(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_user_id", err)
		return
	}
	var req srsSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	switch types.MemoryStrength(req.MemoryStrength) {
	case "", types.MemoryWeak, types.MemoryNormal, types.MemoryStrong:
	default:
		RespondError(c, http.StatusBadRequest, "invalid_memory_strength", fmt.Errorf("unknown memory strength %q", req.MemoryStrength))
		return
	}
	switch types.LearningStyle(req.LearningStyle) {
	case "", types.StyleVisual, types.StyleAuditory, types.StyleKinesthetic, types.StyleMixed:
	default:
		RespondError(c, http.StatusBadRequest, "invalid_learning_style", fmt.Errorf("unknown learning style %q", req.LearningStyle))
		return
	}
	if req.MaxNewCards < 0 || req.BaseIntervalDays < 0 {
		RespondError(c, http.StatusBadRequest, "invalid_body", fmt.Errorf("limits must not be negative"))
		return
	}

	settings := types.DefaultSrsSettings(userID)
	if req.MemoryStrength != "" {
		settings.MemoryStrength = types.MemoryStrength(req.MemoryStrength)
	}
	if req.LearningStyle != "" {
		settings.LearningStyle = types.LearningStyle(req.LearningStyle)
	}
	if req.MaxNewCards > 0 {
		settings.MaxNewCardsPerDay = req.MaxNewCards
	}
	if req.BaseIntervalDays > 0 {
		settings.BaseIntervalDays = req.BaseIntervalDays
	}

	if err := h.srsSvc.UpdateSettings(c.Request.Context(), settings); err != nil {
		RespondError(c, http.StatusBadRequest, "settings_failed", err)
		return
	}
	RespondOK(c, settings)
}

type srsIntervalRequest struct {
	Subtopic           string  `json:"subtopic" binding:"required"`
	IntervalMultiplier float64 `json:"interval_multiplier"`
	EaseMultiplier     float64 `json:"ease_multiplier"`
}

// PUT /api/users/:userId/srs/intervals
func (h *SrsHandler) UpdateInterval(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_user_id", err)
		return
	}
	var req srsIntervalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if req.IntervalMultiplier <= 0 || req.EaseMultiplier <= 0 {
		RespondError(c, http.StatusBadRequest, "invalid_multiplier", fmt.Errorf("multipliers must be > 0"))
		return
	}

	row, err := h.srsSvc.UpdateInterval(c.Request.Context(), userID, req.Subtopic, req.IntervalMultiplier, req.EaseMultiplier)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "interval_failed", err)
		return
	}
	RespondOK(c, row)
}

// GET /api/users/:userId/srs/intervals
func (h *SrsHandler) ListIntervals(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_user_id", err)
		return
	}
	rows, err := h.srsSvc.ListIntervals(c.Request.Context(), userID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "intervals_failed", err)
		return
	}
	RespondOK(c, rows)
}
