package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/studydrops/backend/internal/logger"
	"github.com/studydrops/backend/internal/services"
	"github.com/studydrops/backend/internal/types"
)

type TelemetryHandler struct {
	log          *logger.Logger
	telemetrySvc services.TelemetryService
	inferenceSvc services.InferenceService
}

func NewTelemetryHandler(log *logger.Logger, telemetrySvc services.TelemetryService, inferenceSvc services.InferenceService) *TelemetryHandler {
	return &TelemetryHandler{
		log:          log.With("handler", "TelemetryHandler"),
		telemetrySvc: telemetrySvc,
		inferenceSvc: inferenceSvc,
	}
}

// POST /api/users/:userId/telemetry/cognitive
func (h *TelemetryHandler) RecordCognitive(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_user_id", err)
		return
	}
	var sample types.CognitiveSample
	if err := c.ShouldBindJSON(&sample); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	sample.UserID = userID
	if err := h.telemetrySvc.RecordCognitive(c.Request.Context(), &sample); err != nil {
		RespondError(c, http.StatusBadRequest, "record_failed", err)
		return
	}
	RespondCreated(c, sample)
}

// POST /api/users/:userId/telemetry/emotional
func (h *TelemetryHandler) RecordEmotional(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_user_id", err)
		return
	}
	var sample types.EmotionalSample
	if err := c.ShouldBindJSON(&sample); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	sample.UserID = userID
	if err := h.telemetrySvc.RecordEmotional(c.Request.Context(), &sample); err != nil {
		RespondError(c, http.StatusBadRequest, "record_failed", err)
		return
	}
	RespondCreated(c, sample)
}

// GET /api/users/:userId/state
// Compute and return a fresh state snapshot.
func (h *TelemetryHandler) GetState(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_user_id", err)
		return
	}
	snapshot, err := h.inferenceSvc.InferState(c.Request.Context(), userID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "inference_failed", err)
		return
	}
	RespondOK(c, snapshot)
}
