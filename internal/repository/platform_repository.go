package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/skillcheck-backend/internal/model"
)

// PlatformRepository handles platform data access.
type PlatformRepository struct {
	pool *pgxpool.Pool
}

// NewPlatformRepository creates a new PlatformRepository.
func NewPlatformRepository(pool *pgxpool.Pool) *PlatformRepository {
	return &PlatformRepository{pool: pool}
}

// GetByID retrieves a platform by id.
func (r *PlatformRepository) GetByID(ctx context.Context, id int64) (*model.Platform, error) {
	p := &model.Platform{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, description, created_at, updated_at
		 FROM platforms WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts a new platform.
func (r *PlatformRepository) Create(ctx context.Context, p *model.Platform) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO platforms (name, description)
		 VALUES ($1, $2)
		 RETURNING id, created_at, updated_at`,
		p.Name, p.Description,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

// Update rewrites a platform's mutable fields.
func (r *PlatformRepository) Update(ctx context.Context, p *model.Platform) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE platforms SET name = $1, description = $2, updated_at = NOW() WHERE id = $3`,
		p.Name, p.Description, p.ID)
	return err
}

// Delete removes a platform and, through cascades, its question banks.
func (r *PlatformRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM platforms WHERE id = $1`, id)
	return err
}

// List retrieves all platforms ordered by id.
func (r *PlatformRepository) List(ctx context.Context) ([]model.Platform, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, description, created_at, updated_at
		 FROM platforms ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var platforms []model.Platform
	for rows.Next() {
		var p model.Platform
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		platforms = append(platforms, p)
	}
	return platforms, rows.Err()
}
