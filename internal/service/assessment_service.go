package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/stemsi/skillcheck-backend/internal/model"
	"github.com/stemsi/skillcheck-backend/internal/repository"
)

// AssessmentService handles admin assessment CRUD.
type AssessmentService struct {
	assessmentRepo *repository.AssessmentRepository
	bankRepo       *repository.QuestionBankRepository
}

// NewAssessmentService creates a new AssessmentService.
func NewAssessmentService(assessmentRepo *repository.AssessmentRepository, bankRepo *repository.QuestionBankRepository) *AssessmentService {
	return &AssessmentService{assessmentRepo: assessmentRepo, bankRepo: bankRepo}
}

// Get retrieves one assessment.
func (s *AssessmentService) Get(ctx context.Context, id int64) (*model.Assessment, error) {
	a, err := s.assessmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("load assessment: %w", err)
	}
	return a, nil
}

// List retrieves assessments, newest window first.
func (s *AssessmentService) List(ctx context.Context, page, perPage int) ([]model.Assessment, int64, error) {
	return s.assessmentRepo.List(ctx, perPage, (page-1)*perPage)
}

// Create schedules a new assessment over an existing question bank.
func (s *AssessmentService) Create(ctx context.Context, req *model.CreateAssessmentRequest) (*model.Assessment, error) {
	if _, err := s.bankRepo.GetByID(ctx, req.QuestionBankID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBankNotFound
		}
		return nil, fmt.Errorf("load question bank: %w", err)
	}

	a := &model.Assessment{
		Title:          req.Title,
		QuestionBankID: req.QuestionBankID,
		StartTime:      req.StartTime.UTC(),
		EndTime:        req.EndTime.UTC(),
	}
	if err := s.assessmentRepo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create assessment: %w", err)
	}
	return a, nil
}

// Update applies the provided fields to an assessment. Omitted fields
// keep their stored values; the resulting window must still be valid.
func (s *AssessmentService) Update(ctx context.Context, id int64, req *model.UpdateAssessmentRequest) (*model.Assessment, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := applyAssessmentUpdate(a, req); err != nil {
		return nil, err
	}
	if err := s.assessmentRepo.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("update assessment: %w", err)
	}
	return a, nil
}

// applyAssessmentUpdate merges the non-empty request fields into a and
// re-validates the admission window, since either boundary may have moved.
func applyAssessmentUpdate(a *model.Assessment, req *model.UpdateAssessmentRequest) error {
	if req.Title != "" {
		a.Title = req.Title
	}
	if req.StartTime != nil {
		a.StartTime = req.StartTime.UTC()
	}
	if req.EndTime != nil {
		a.EndTime = req.EndTime.UTC()
	}
	if !a.EndTime.After(a.StartTime) {
		return ErrInvalidWindow
	}
	return nil
}

// Delete removes an assessment.
func (s *AssessmentService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.assessmentRepo.Delete(ctx, id)
}
