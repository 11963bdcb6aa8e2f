package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/skillcheck-backend/internal/repository"
	"github.com/stemsi/skillcheck-backend/internal/response"
	"github.com/stemsi/skillcheck-backend/internal/service"
)

// ResultHandler serves stored session results to the admin surface.
type ResultHandler struct {
	resultService *service.ResultService
}

func NewResultHandler(resultService *service.ResultService) *ResultHandler {
	return &ResultHandler{resultService: resultService}
}

// ListByAssessment godoc
// GET /api/v1/admin/assessments/:id/results
func (h *ResultHandler) ListByAssessment(c *gin.Context) {
	assessmentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	page, perPage := parsePagination(c)

	results, total, err := h.resultService.ListByAssessment(c.Request.Context(), assessmentID, page, perPage)
	if err != nil {
		failAdminError(c, err)
		return
	}

	if results == nil {
		results = []repository.SessionResult{}
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"results": results}, buildPagination(page, perPage, total))
}

// GetSession godoc
// GET /api/v1/admin/sessions/:id
func (h *ResultHandler) GetSession(c *gin.Context) {
	sessionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	result, err := h.resultService.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		failAdminError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": result})
}
