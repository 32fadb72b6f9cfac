package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/roadready/permitprep-backend/internal/config"
	"github.com/roadready/permitprep-backend/internal/exam"
	"github.com/roadready/permitprep-backend/internal/middleware"
	"github.com/roadready/permitprep-backend/internal/response"
	"github.com/roadready/permitprep-backend/internal/service"
	"github.com/roadready/permitprep-backend/internal/store"
	"github.com/roadready/permitprep-backend/internal/validator"
)

// ExamHandler handles the exam lifecycle endpoints.
type ExamHandler struct {
	examService *service.ExamService
	cfg         *config.Config
	log         zerolog.Logger
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(examService *service.ExamService, cfg *config.Config, log zerolog.Logger) *ExamHandler {
	return &ExamHandler{
		examService: examService,
		cfg:         cfg,
		log:         log.With().Str("component", "exam_handler").Logger(),
	}
}

// startCustomRequest is the payload for starting an exam over a generated
// pool.
type startCustomRequest struct {
	PoolID string `json:"pool_id" binding:"required,uuid"`
}

// submitAnswerRequest is the payload for answering the current question.
type submitAnswerRequest struct {
	Option string `json:"option" binding:"required"`
}

// StartExam godoc
// POST /api/v1/exams
// Composes a fresh standard exam and issues a session cookie.
func (h *ExamHandler) StartExam(c *gin.Context) {
	sessionID, total, err := h.examService.StartStandard(c.Request.Context())
	if err != nil {
		if errors.Is(err, exam.ErrComposition) {
			h.log.Error().Err(err).Msg("Exam composition failed")
			response.Fail(c, http.StatusServiceUnavailable, response.ErrExamUnavailable)
			return
		}
		h.log.Error().Err(err).Msg("Failed to start exam")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	middleware.SetSessionCookie(c, sessionID, int(h.cfg.SessionTTL.Seconds()))
	response.Success(c, http.StatusCreated, gin.H{
		"session_id": sessionID,
		"total":      total,
	})
}

// StartCustomExam godoc
// POST /api/v1/exams/custom
// Starts an exam over a previously generated question pool.
func (h *ExamHandler) StartCustomExam(c *gin.Context) {
	var req startCustomRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sessionID, total, err := h.examService.StartCustom(c.Request.Context(), req.PoolID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrPoolNotFound)
			return
		}
		h.log.Error().Err(err).Str("pool_id", req.PoolID).Msg("Failed to start custom exam")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	middleware.SetSessionCookie(c, sessionID, int(h.cfg.SessionTTL.Seconds()))
	response.Success(c, http.StatusCreated, gin.H{
		"session_id": sessionID,
		"total":      total,
	})
}

// CurrentQuestion godoc
// GET /api/v1/exams/current
// Returns the pending question for the caller's session. Repeated calls
// return the same question until an answer is submitted.
func (h *ExamHandler) CurrentQuestion(c *gin.Context) {
	sessionID := middleware.SessionID(c)

	view, err := h.examService.CurrentQuestion(c.Request.Context(), sessionID)
	if err != nil {
		h.failExamError(c, sessionID, err, "Failed to fetch current question")
		return
	}

	response.Success(c, http.StatusOK, view)
}

// SubmitAnswer godoc
// POST /api/v1/exams/answers
// Grades the submitted option against the pending question and advances
// the session.
func (h *ExamHandler) SubmitAnswer(c *gin.Context) {
	var req submitAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sessionID := middleware.SessionID(c)
	outcome, err := h.examService.SubmitAnswer(c.Request.Context(), sessionID, req.Option)
	if err != nil {
		h.failExamError(c, sessionID, err, "Failed to submit answer")
		return
	}

	response.Success(c, http.StatusOK, outcome)
}

// GetResult godoc
// GET /api/v1/exams/result
// Returns the scored report with the per-mistake review. Only available
// once the exam has terminated.
func (h *ExamHandler) GetResult(c *gin.Context) {
	sessionID := middleware.SessionID(c)

	result, err := h.examService.Result(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, exam.ErrNotTerminated) {
			response.Fail(c, http.StatusConflict, response.ErrResultNotReady)
			return
		}
		h.failExamError(c, sessionID, err, "Failed to compile result")
		return
	}

	response.Success(c, http.StatusOK, result)
}

// failExamError maps the service error set shared by the mid-exam
// endpoints onto HTTP responses.
func (h *ExamHandler) failExamError(c *gin.Context, sessionID string, err error, msg string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
	case errors.Is(err, service.ErrExamFinished):
		response.Fail(c, http.StatusConflict, response.ErrExamFinished)
	case errors.Is(err, exam.ErrInvalidState):
		response.Fail(c, http.StatusConflict, response.ErrExamFinished)
	default:
		h.log.Error().Err(err).Str("session_id", sessionID).Msg(msg)
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
