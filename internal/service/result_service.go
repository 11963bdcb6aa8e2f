package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/stemsi/skillcheck-backend/internal/repository"
)

// ResultService exposes stored session results to the admin surface.
// Results are read straight from the session and answer-log tables; the
// total score is maintained transactionally at submit time, never
// recomputed here.
type ResultService struct {
	assessmentRepo *repository.AssessmentRepository
	sessionRepo    *repository.SessionRepository
}

// NewResultService creates a new ResultService.
func NewResultService(assessmentRepo *repository.AssessmentRepository, sessionRepo *repository.SessionRepository) *ResultService {
	return &ResultService{assessmentRepo: assessmentRepo, sessionRepo: sessionRepo}
}

// ListByAssessment retrieves the sessions of an assessment with examinee
// identifiers, paginated.
func (s *ResultService) ListByAssessment(ctx context.Context, assessmentID int64, page, perPage int) ([]repository.SessionResult, int64, error) {
	if _, err := s.assessmentRepo.GetByID(ctx, assessmentID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, ErrAssessmentNotFound
		}
		return nil, 0, fmt.Errorf("load assessment: %w", err)
	}
	return s.sessionRepo.ListByAssessment(ctx, assessmentID, perPage, (page-1)*perPage)
}

// GetSession retrieves one session with its full answer log.
func (s *ResultService) GetSession(ctx context.Context, sessionID int64) (*repository.SessionResult, error) {
	sr, err := s.sessionRepo.GetDetail(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	return sr, nil
}
