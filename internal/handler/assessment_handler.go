package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/skillcheck-backend/internal/model"
	"github.com/stemsi/skillcheck-backend/internal/response"
	"github.com/stemsi/skillcheck-backend/internal/service"
	"github.com/stemsi/skillcheck-backend/internal/validator"
)

type AssessmentHandler struct {
	assessmentService *service.AssessmentService
}

func NewAssessmentHandler(assessmentService *service.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{assessmentService: assessmentService}
}

// GetAll godoc
// GET /api/v1/admin/assessments
func (h *AssessmentHandler) GetAll(c *gin.Context) {
	page, perPage := parsePagination(c)

	assessments, total, err := h.assessmentService.List(c.Request.Context(), page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if assessments == nil {
		assessments = []model.Assessment{}
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"assessments": assessments}, buildPagination(page, perPage, total))
}

// Get godoc
// GET /api/v1/admin/assessments/:id
func (h *AssessmentHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	assessment, err := h.assessmentService.Get(c.Request.Context(), id)
	if err != nil {
		failAdminError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"assessment": assessment})
}

// Create godoc
// POST /api/v1/admin/assessments
func (h *AssessmentHandler) Create(c *gin.Context) {
	var req model.CreateAssessmentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	assessment, err := h.assessmentService.Create(c.Request.Context(), &req)
	if err != nil {
		failAdminError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"assessment": assessment})
}

// Update godoc
// PUT /api/v1/admin/assessments/:id
func (h *AssessmentHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateAssessmentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	assessment, err := h.assessmentService.Update(c.Request.Context(), id, &req)
	if err != nil {
		failAdminError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"assessment": assessment})
}

// Delete godoc
// DELETE /api/v1/admin/assessments/:id
func (h *AssessmentHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.assessmentService.Delete(c.Request.Context(), id); err != nil {
		failAdminError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "assessment deleted successfully"})
}

func parsePagination(c *gin.Context) (page, perPage int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return page, perPage
}

func buildPagination(page, perPage int, total int64) *response.Pagination {
	totalPages := int(total) / perPage
	if int(total)%perPage != 0 {
		totalPages++
	}
	return &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: int(total),
		TotalPages: totalPages,
	}
}
