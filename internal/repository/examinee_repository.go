package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/skillcheck-backend/internal/model"
)

// ExamineeRepository handles examinee data access.
type ExamineeRepository struct {
	pool *pgxpool.Pool
}

// NewExamineeRepository creates a new ExamineeRepository.
func NewExamineeRepository(pool *pgxpool.Pool) *ExamineeRepository {
	return &ExamineeRepository{pool: pool}
}

// GetOrCreate resolves an examinee by identifier, creating the row on first
// contact. A duplicate-key race on creation is resolved by reading the
// winner — it is never surfaced as an error.
func (r *ExamineeRepository) GetOrCreate(ctx context.Context, identifier string) (*model.Examinee, error) {
	e := &model.Examinee{Identifier: identifier}
	err := r.pool.QueryRow(ctx,
		`SELECT id FROM examinees WHERE identifier = $1`, identifier,
	).Scan(&e.ID)
	if err == nil {
		return e, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	err = r.pool.QueryRow(ctx,
		`INSERT INTO examinees (identifier)
		 VALUES ($1)
		 ON CONFLICT (identifier) DO NOTHING
		 RETURNING id`, identifier,
	).Scan(&e.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		// Concurrent first contact: another request inserted the row
		// between our SELECT and INSERT. Read the winner.
		err = r.pool.QueryRow(ctx,
			`SELECT id FROM examinees WHERE identifier = $1`, identifier,
		).Scan(&e.ID)
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// GetByID retrieves an examinee by primary key.
func (r *ExamineeRepository) GetByID(ctx context.Context, id int64) (*model.Examinee, error) {
	e := &model.Examinee{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, identifier FROM examinees WHERE id = $1`, id,
	).Scan(&e.ID, &e.Identifier)
	if err != nil {
		return nil, err
	}
	return e, nil
}
