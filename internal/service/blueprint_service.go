package service

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/stemsi/skillcheck-backend/internal/cache"
	"github.com/stemsi/skillcheck-backend/internal/model"
	"github.com/stemsi/skillcheck-backend/internal/repository"
)

// BlueprintService renders question banks into client-safe blueprints and
// caches the result. A blueprint is the full procedure/question/option tree
// of a bank with every correctness flag stripped, ordered by ascending id
// at every level so two renders of the same content are identical.
type BlueprintService struct {
	bankRepo *repository.QuestionBankRepository
	cache    *cache.BlueprintCache
}

// NewBlueprintService creates a new BlueprintService.
func NewBlueprintService(bankRepo *repository.QuestionBankRepository, c *cache.BlueprintCache) *BlueprintService {
	return &BlueprintService{bankRepo: bankRepo, cache: c}
}

// GetBlueprint returns the blueprint for a bank, from cache when possible.
// An absent or empty bank yields an empty slice, never an error.
func (s *BlueprintService) GetBlueprint(ctx context.Context, bankID int64) ([]model.BlueprintProcedure, error) {
	if bp, ok := s.cache.Get(ctx, bankID); ok {
		return bp, nil
	}

	tree, err := s.bankRepo.GetTree(ctx, bankID)
	if err != nil {
		return nil, err
	}

	bp := render(tree)
	s.cache.Set(ctx, bankID, bp)
	log.Debug().Int64("bank_id", bankID).Int("procedures", len(bp)).Msg("blueprint rebuilt")
	return bp, nil
}

// Invalidate drops a bank's cached blueprint. Called by the admin services
// after every mutation of the bank's content.
func (s *BlueprintService) Invalidate(ctx context.Context, bankID int64) {
	s.cache.Invalidate(ctx, bankID)
}

func render(tree []model.Procedure) []model.BlueprintProcedure {
	bp := make([]model.BlueprintProcedure, 0, len(tree))
	for _, p := range tree {
		proc := model.BlueprintProcedure{
			ID:        p.ID,
			Name:      p.Name,
			Questions: make([]model.BlueprintQuestion, 0, len(p.Questions)),
		}
		for _, q := range p.Questions {
			bq := model.BlueprintQuestion{
				ID:              q.ID,
				SceneIdentifier: q.SceneIdentifier,
				Prompt:          q.Prompt,
				QuestionType:    q.QuestionType,
				Score:           q.Score,
				ImageURL:        q.ImageURL,
				Options:         make([]model.BlueprintOption, 0, len(q.Options)),
			}
			for _, o := range q.Options {
				bq.Options = append(bq.Options, model.BlueprintOption{
					ID:         o.ID,
					OptionText: o.OptionText,
				})
			}
			proc.Questions = append(proc.Questions, bq)
		}
		bp = append(bp, proc)
	}
	return bp
}
