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

// QuestionHandler serves the admin content surface: question banks,
// procedures, questions, and options.
type QuestionHandler struct {
	questionService *service.QuestionService
}

func NewQuestionHandler(questionService *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// ListBanks godoc
// GET /api/v1/admin/platforms/:id/question-banks
func (h *QuestionHandler) ListBanks(c *gin.Context) {
	platformID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	banks, err := h.questionService.ListBanks(c.Request.Context(), platformID)
	if err != nil {
		failAdminError(c, err)
		return
	}

	if banks == nil {
		banks = []model.QuestionBank{}
	}
	response.Success(c, http.StatusOK, gin.H{"question_banks": banks})
}

// CreateBank godoc
// POST /api/v1/admin/question-banks
func (h *QuestionHandler) CreateBank(c *gin.Context) {
	var req model.CreateQuestionBankRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	bank, err := h.questionService.CreateBank(c.Request.Context(), &req)
	if err != nil {
		failAdminError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"question_bank": bank})
}

// GetBankTree godoc
// GET /api/v1/admin/question-banks/:id
// Returns the full content tree, correctness flags included.
func (h *QuestionHandler) GetBankTree(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	bank, err := h.questionService.GetBank(c.Request.Context(), id)
	if err != nil {
		failAdminError(c, err)
		return
	}
	tree, err := h.questionService.GetBankTree(c.Request.Context(), id)
	if err != nil {
		failAdminError(c, err)
		return
	}

	if tree == nil {
		tree = []model.Procedure{}
	}
	response.Success(c, http.StatusOK, gin.H{
		"question_bank": bank,
		"procedures":    tree,
	})
}

// RenameBank godoc
// PUT /api/v1/admin/question-banks/:id
func (h *QuestionHandler) RenameBank(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateQuestionBankRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	bank, err := h.questionService.RenameBank(c.Request.Context(), id, &req)
	if err != nil {
		failAdminError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"question_bank": bank})
}

// DeleteBank godoc
// DELETE /api/v1/admin/question-banks/:id
func (h *QuestionHandler) DeleteBank(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.questionService.DeleteBank(c.Request.Context(), id); err != nil {
		failAdminError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "question bank deleted successfully"})
}

// RefreshBankCache godoc
// POST /api/v1/admin/question-banks/:id/refresh-cache
func (h *QuestionHandler) RefreshBankCache(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.questionService.RefreshBankCache(c.Request.Context(), id); err != nil {
		failAdminError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "blueprint cache refreshed"})
}

// CreateProcedure godoc
// POST /api/v1/admin/question-banks/:id/procedures
func (h *QuestionHandler) CreateProcedure(c *gin.Context) {
	bankID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.CreateProcedureRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	procedure, err := h.questionService.CreateProcedure(c.Request.Context(), bankID, &req)
	if err != nil {
		failAdminError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"procedure": procedure})
}

// DeleteProcedure godoc
// DELETE /api/v1/admin/procedures/:id
func (h *QuestionHandler) DeleteProcedure(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.questionService.DeleteProcedure(c.Request.Context(), id); err != nil {
		failAdminError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "procedure deleted successfully"})
}

// CreateQuestion godoc
// POST /api/v1/admin/procedures/:id/questions
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	procedureID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.CreateQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	question, err := h.questionService.CreateQuestion(c.Request.Context(), procedureID, &req)
	if err != nil {
		failAdminError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"question": question})
}

// GetQuestion godoc
// GET /api/v1/admin/questions/:id
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	question, err := h.questionService.GetQuestion(c.Request.Context(), id)
	if err != nil {
		failAdminError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"question": question})
}

// DeleteQuestion godoc
// DELETE /api/v1/admin/questions/:id
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.questionService.DeleteQuestion(c.Request.Context(), id); err != nil {
		failAdminError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "question deleted successfully"})
}
