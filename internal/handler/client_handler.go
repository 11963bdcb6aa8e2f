package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/skillcheck-backend/internal/model"
	"github.com/stemsi/skillcheck-backend/internal/response"
	"github.com/stemsi/skillcheck-backend/internal/service"
	"github.com/stemsi/skillcheck-backend/internal/validator"
)

// ClientHandler serves the unauthenticated examinee surface: admission,
// answering, and finishing. The examinee identifier in each payload is the
// only identity involved.
type ClientHandler struct {
	sessionService *service.SessionService
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(sessionService *service.SessionService) *ClientHandler {
	return &ClientHandler{sessionService: sessionService}
}

// StartSession godoc
// POST /api/v1/client/assessments/:assessment_id/session
func (h *ClientHandler) StartSession(c *gin.Context) {
	assessmentID, err := strconv.ParseInt(c.Param("assessment_id"), 10, 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.StartSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	res, err := h.sessionService.StartOrResume(c.Request.Context(), assessmentID, &req)
	if err != nil {
		failSessionError(c, err)
		return
	}

	status := http.StatusOK
	if res.Status == service.StatusCreated {
		status = http.StatusCreated
	}
	response.Success(c, status, res)
}

// SubmitAnswer godoc
// POST /api/v1/client/sessions/:session_id/answer
func (h *ClientHandler) SubmitAnswer(c *gin.Context) {
	sessionID, err := strconv.ParseInt(c.Param("session_id"), 10, 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SubmitAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	res, err := h.sessionService.SubmitAnswer(c.Request.Context(), sessionID, &req)
	if err != nil {
		failSessionError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

// FinishSession godoc
// POST /api/v1/client/sessions/:session_id/finish
func (h *ClientHandler) FinishSession(c *gin.Context) {
	sessionID, err := strconv.ParseInt(c.Param("session_id"), 10, 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.FinishSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	res, err := h.sessionService.Finish(c.Request.Context(), sessionID, &req)
	if err != nil {
		failSessionError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

// failSessionError maps session-flow domain errors to HTTP responses.
func failSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAssessmentNotFound),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrQuestionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrAssessmentNotStarted):
		response.Fail(c, http.StatusForbidden, response.ErrAssessmentNotStarted)
	case errors.Is(err, service.ErrAssessmentEnded):
		response.Fail(c, http.StatusForbidden, response.ErrAssessmentEnded)
	case errors.Is(err, service.ErrAlreadyCompleted):
		response.Fail(c, http.StatusForbidden, response.ErrAssessmentCompleted)
	case errors.Is(err, service.ErrIdentityMismatch):
		response.Fail(c, http.StatusForbidden, response.ErrIdentityMismatch)
	case errors.Is(err, service.ErrSessionFinished):
		response.Fail(c, http.StatusConflict, response.ErrSessionFinished)
	case errors.Is(err, service.ErrDuplicateAnswer):
		response.Fail(c, http.StatusConflict, response.ErrDuplicateAnswer)
	case errors.Is(err, service.ErrInvalidOption):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidOption)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
