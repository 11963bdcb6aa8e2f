package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/stemsi/skillcheck-backend/internal/model"
	"github.com/stemsi/skillcheck-backend/internal/repository"
)

// QuestionService handles admin CRUD for question banks, procedures,
// questions, and options. Every content mutation invalidates the owning
// bank's cached blueprint so the next admission sees fresh content;
// sessions already in flight keep the blueprint they were admitted with.
type QuestionService struct {
	bankRepo     *repository.QuestionBankRepository
	questionRepo *repository.QuestionRepository
	platformRepo *repository.PlatformRepository
	blueprints   *BlueprintService
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(
	bankRepo *repository.QuestionBankRepository,
	questionRepo *repository.QuestionRepository,
	platformRepo *repository.PlatformRepository,
	blueprints *BlueprintService,
) *QuestionService {
	return &QuestionService{
		bankRepo:     bankRepo,
		questionRepo: questionRepo,
		platformRepo: platformRepo,
		blueprints:   blueprints,
	}
}

// GetBank retrieves one question bank.
func (s *QuestionService) GetBank(ctx context.Context, id int64) (*model.QuestionBank, error) {
	b, err := s.bankRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBankNotFound
		}
		return nil, fmt.Errorf("load question bank: %w", err)
	}
	return b, nil
}

// GetBankTree retrieves a bank's full content tree, correctness flags
// included. Admin surface only.
func (s *QuestionService) GetBankTree(ctx context.Context, id int64) ([]model.Procedure, error) {
	if _, err := s.GetBank(ctx, id); err != nil {
		return nil, err
	}
	return s.bankRepo.GetTree(ctx, id)
}

// ListBanks retrieves the banks of a platform.
func (s *QuestionService) ListBanks(ctx context.Context, platformID int64) ([]model.QuestionBank, error) {
	if _, err := s.platformRepo.GetByID(ctx, platformID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlatformNotFound
		}
		return nil, fmt.Errorf("load platform: %w", err)
	}
	return s.bankRepo.ListByPlatform(ctx, platformID)
}

// CreateBank adds a question bank to a platform.
func (s *QuestionService) CreateBank(ctx context.Context, req *model.CreateQuestionBankRequest) (*model.QuestionBank, error) {
	if _, err := s.platformRepo.GetByID(ctx, req.PlatformID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlatformNotFound
		}
		return nil, fmt.Errorf("load platform: %w", err)
	}

	b := &model.QuestionBank{PlatformID: req.PlatformID, Name: req.Name}
	if err := s.bankRepo.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("create question bank: %w", err)
	}
	return b, nil
}

// RenameBank renames a bank. Renaming does not change blueprint content,
// so no invalidation is needed.
func (s *QuestionService) RenameBank(ctx context.Context, id int64, req *model.UpdateQuestionBankRequest) (*model.QuestionBank, error) {
	b, err := s.GetBank(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.bankRepo.Rename(ctx, id, req.Name); err != nil {
		return nil, fmt.Errorf("rename question bank: %w", err)
	}
	b.Name = req.Name
	return b, nil
}

// DeleteBank removes a bank and everything under it.
func (s *QuestionService) DeleteBank(ctx context.Context, id int64) error {
	if _, err := s.GetBank(ctx, id); err != nil {
		return err
	}
	if err := s.bankRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete question bank: %w", err)
	}
	s.blueprints.Invalidate(ctx, id)
	return nil
}

// RefreshBankCache drops a bank's cached blueprint so the next admission
// rebuilds it from the database. Mutations invalidate implicitly; this is
// the explicit hook for when an operator wants the cache gone now.
func (s *QuestionService) RefreshBankCache(ctx context.Context, bankID int64) error {
	if _, err := s.GetBank(ctx, bankID); err != nil {
		return err
	}
	s.blueprints.Invalidate(ctx, bankID)
	return nil
}

// CreateProcedure adds a procedure to a bank.
func (s *QuestionService) CreateProcedure(ctx context.Context, bankID int64, req *model.CreateProcedureRequest) (*model.Procedure, error) {
	if _, err := s.GetBank(ctx, bankID); err != nil {
		return nil, err
	}

	p := &model.Procedure{QuestionBankID: bankID, Name: req.Name}
	if err := s.bankRepo.CreateProcedure(ctx, p); err != nil {
		return nil, fmt.Errorf("create procedure: %w", err)
	}
	s.blueprints.Invalidate(ctx, bankID)
	return p, nil
}

// DeleteProcedure removes a procedure and its questions.
func (s *QuestionService) DeleteProcedure(ctx context.Context, procedureID int64) error {
	p, err := s.bankRepo.GetProcedure(ctx, procedureID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrProcedureNotFound
		}
		return fmt.Errorf("load procedure: %w", err)
	}

	if err := s.bankRepo.DeleteProcedure(ctx, procedureID); err != nil {
		return fmt.Errorf("delete procedure: %w", err)
	}
	s.blueprints.Invalidate(ctx, p.QuestionBankID)
	return nil
}

// CreateQuestion adds a question with its options to a procedure.
func (s *QuestionService) CreateQuestion(ctx context.Context, procedureID int64, req *model.CreateQuestionRequest) (*model.Question, error) {
	p, err := s.bankRepo.GetProcedure(ctx, procedureID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProcedureNotFound
		}
		return nil, fmt.Errorf("load procedure: %w", err)
	}

	q := &model.Question{
		ProcedureID:     procedureID,
		Prompt:          req.Prompt,
		ImageURL:        req.ImageURL,
		QuestionType:    model.QuestionType(req.QuestionType),
		SceneIdentifier: req.SceneIdentifier,
		Score:           req.Score,
	}
	for _, o := range req.Options {
		q.Options = append(q.Options, model.Option{OptionText: o.OptionText, IsCorrect: o.IsCorrect})
	}

	if err := s.questionRepo.CreateWithOptions(ctx, q); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}
	s.blueprints.Invalidate(ctx, p.QuestionBankID)
	return q, nil
}

// GetQuestion retrieves one question with options.
func (s *QuestionService) GetQuestion(ctx context.Context, id int64) (*model.Question, error) {
	q, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("load question: %w", err)
	}
	return q, nil
}

// DeleteQuestion removes a question and its options.
func (s *QuestionService) DeleteQuestion(ctx context.Context, id int64) error {
	bankID, err := s.questionRepo.ResolveBankID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("resolve question bank: %w", err)
	}

	if err := s.questionRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	s.blueprints.Invalidate(ctx, bankID)
	return nil
}
