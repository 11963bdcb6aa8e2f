package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/skillcheck-backend/internal/model"
)

// AssessmentRepository handles assessment data access.
type AssessmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssessmentRepository creates a new AssessmentRepository.
func NewAssessmentRepository(pool *pgxpool.Pool) *AssessmentRepository {
	return &AssessmentRepository{pool: pool}
}

// GetByID retrieves an assessment by its id.
func (r *AssessmentRepository) GetByID(ctx context.Context, id int64) (*model.Assessment, error) {
	a := &model.Assessment{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, question_bank_id, start_time, end_time, created_at, updated_at
		 FROM assessments WHERE id = $1`, id,
	).Scan(&a.ID, &a.Title, &a.QuestionBankID, &a.StartTime, &a.EndTime, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Create inserts a new assessment.
func (r *AssessmentRepository) Create(ctx context.Context, a *model.Assessment) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO assessments (title, question_bank_id, start_time, end_time)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		a.Title, a.QuestionBankID, a.StartTime, a.EndTime,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

// Update rewrites the mutable fields of an assessment.
func (r *AssessmentRepository) Update(ctx context.Context, a *model.Assessment) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE assessments
		 SET title = $1, start_time = $2, end_time = $3, updated_at = NOW()
		 WHERE id = $4`,
		a.Title, a.StartTime, a.EndTime, a.ID)
	return err
}

// Delete removes an assessment.
func (r *AssessmentRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM assessments WHERE id = $1`, id)
	return err
}

// List retrieves assessments with pagination, newest window first.
func (r *AssessmentRepository) List(ctx context.Context, limit, offset int) ([]model.Assessment, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM assessments`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, title, question_bank_id, start_time, end_time, created_at, updated_at
		 FROM assessments
		 ORDER BY start_time DESC
		 LIMIT $1 OFFSET $2`, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var assessments []model.Assessment
	for rows.Next() {
		var a model.Assessment
		if err := rows.Scan(&a.ID, &a.Title, &a.QuestionBankID, &a.StartTime, &a.EndTime, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, 0, err
		}
		assessments = append(assessments, a)
	}
	return assessments, total, rows.Err()
}
