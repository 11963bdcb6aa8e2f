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

type PlatformHandler struct {
	platformService *service.PlatformService
}

func NewPlatformHandler(platformService *service.PlatformService) *PlatformHandler {
	return &PlatformHandler{platformService: platformService}
}

// GetAll godoc
// GET /api/v1/admin/platforms
func (h *PlatformHandler) GetAll(c *gin.Context) {
	platforms, err := h.platformService.List(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if platforms == nil {
		platforms = []model.Platform{}
	}
	response.Success(c, http.StatusOK, gin.H{"platforms": platforms})
}

// Get godoc
// GET /api/v1/admin/platforms/:id
func (h *PlatformHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	platform, err := h.platformService.Get(c.Request.Context(), id)
	if err != nil {
		failAdminError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"platform": platform})
}

// Create godoc
// POST /api/v1/admin/platforms
func (h *PlatformHandler) Create(c *gin.Context) {
	var req model.CreatePlatformRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	platform, err := h.platformService.Create(c.Request.Context(), &req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"platform": platform})
}

// Update godoc
// PUT /api/v1/admin/platforms/:id
func (h *PlatformHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdatePlatformRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	platform, err := h.platformService.Update(c.Request.Context(), id, &req)
	if err != nil {
		failAdminError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"platform": platform})
}

// Delete godoc
// DELETE /api/v1/admin/platforms/:id
func (h *PlatformHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.platformService.Delete(c.Request.Context(), id); err != nil {
		failAdminError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "platform deleted successfully"})
}

// failAdminError maps admin-surface domain errors to HTTP responses.
func failAdminError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPlatformNotFound),
		errors.Is(err, service.ErrBankNotFound),
		errors.Is(err, service.ErrProcedureNotFound),
		errors.Is(err, service.ErrQuestionNotFound),
		errors.Is(err, service.ErrAssessmentNotFound),
		errors.Is(err, service.ErrSessionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrInvalidWindow):
		response.Fail(c, http.StatusBadRequest, response.ErrValidation)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
