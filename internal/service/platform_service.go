package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/stemsi/skillcheck-backend/internal/model"
	"github.com/stemsi/skillcheck-backend/internal/repository"
)

// PlatformService handles admin platform CRUD.
type PlatformService struct {
	platformRepo *repository.PlatformRepository
}

// NewPlatformService creates a new PlatformService.
func NewPlatformService(platformRepo *repository.PlatformRepository) *PlatformService {
	return &PlatformService{platformRepo: platformRepo}
}

// Get retrieves one platform.
func (s *PlatformService) Get(ctx context.Context, id int64) (*model.Platform, error) {
	p, err := s.platformRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlatformNotFound
		}
		return nil, fmt.Errorf("load platform: %w", err)
	}
	return p, nil
}

// List retrieves all platforms.
func (s *PlatformService) List(ctx context.Context) ([]model.Platform, error) {
	return s.platformRepo.List(ctx)
}

// Create registers a new training platform.
func (s *PlatformService) Create(ctx context.Context, req *model.CreatePlatformRequest) (*model.Platform, error) {
	p := &model.Platform{Name: req.Name, Description: req.Description}
	if err := s.platformRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create platform: %w", err)
	}
	return p, nil
}

// Update rewrites a platform's name and description.
func (s *PlatformService) Update(ctx context.Context, id int64, req *model.UpdatePlatformRequest) (*model.Platform, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	p.Name = req.Name
	p.Description = req.Description
	if err := s.platformRepo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update platform: %w", err)
	}
	return p, nil
}

// Delete removes a platform and cascades to its question banks.
func (s *PlatformService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.platformRepo.Delete(ctx, id)
}
