package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/studydrops/backend/internal/logger"
	"github.com/studydrops/backend/internal/services"
)

type ExamHandler struct {
	log     *logger.Logger
	examSvc services.ExamService
}

func NewExamHandler(log *logger.Logger, examSvc services.ExamService) *ExamHandler {
	return &ExamHandler{
		log:     log.With("handler", "ExamHandler"),
		examSvc: examSvc,
	}
}

type startExamRequest struct {
	Discipline    string `json:"discipline"`
	ExamBoard     string `json:"exam_board"`
	QuestionCount int    `json:"question_count" binding:"required"`
}

// POST /api/users/:userId/exams
func (h *ExamHandler) StartExam(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_user_id", err)
		return
	}
	var req startExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	execution, err := h.examSvc.StartExam(c.Request.Context(), services.StartExamInput{
		UserID:        userID,
		Discipline:    req.Discipline,
		ExamBoard:     req.ExamBoard,
		QuestionCount: req.QuestionCount,
	})
	if err != nil {
		RespondError(c, http.StatusBadRequest, "start_failed", err)
		return
	}
	RespondCreated(c, execution)
}

// GET /api/exams/:executionId/next-question
func (h *ExamHandler) NextQuestion(c *gin.Context) {
	executionID, err := uuid.Parse(c.Param("executionId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_execution_id", err)
		return
	}
	question, err := h.examSvc.NextQuestion(c.Request.Context(), executionID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "selection_failed", err)
		return
	}
	RespondOK(c, question)
}

type answerRequest struct {
	QuestionID string  `json:"question_id" binding:"required"`
	Correct    bool    `json:"correct"`
	TimeSpent  float64 `json:"time_spent"`
}

// POST /api/exams/:executionId/answers
func (h *ExamHandler) ProcessAnswer(c *gin.Context) {
	executionID, err := uuid.Parse(c.Param("executionId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_execution_id", err)
		return
	}
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	questionID, err := uuid.Parse(req.QuestionID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_question_id", err)
		return
	}

	result, err := h.examSvc.ProcessAnswer(c.Request.Context(), services.AnswerInput{
		ExecutionID: executionID,
		QuestionID:  questionID,
		Correct:     req.Correct,
		TimeSpent:   req.TimeSpent,
	})
	if err != nil {
		RespondError(c, http.StatusBadRequest, "answer_failed", err)
		return
	}
	RespondOK(c, result)
}

// POST /api/exams/:executionId/finish
func (h *ExamHandler) FinishExam(c *gin.Context) {
	executionID, err := uuid.Parse(c.Param("executionId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_execution_id", err)
		return
	}
	report, err := h.examSvc.FinishExam(c.Request.Context(), executionID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "finish_failed", err)
		return
	}
	RespondOK(c, report)
}

// GET /api/exams/:executionId/report
func (h *ExamHandler) GetReport(c *gin.Context) {
	executionID, err := uuid.Parse(c.Param("executionId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_execution_id", err)
		return
	}
	report, err := h.examSvc.Report(c.Request.Context(), executionID)
	if err != nil {
		RespondError(c, http.StatusNotFound, "report_failed", err)
		return
	}
	RespondOK(c, report)
}
