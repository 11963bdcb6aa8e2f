package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/skillcheck-backend/internal/model"
)

// QuestionBankRepository handles question bank and procedure data access.
type QuestionBankRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionBankRepository creates a new QuestionBankRepository.
func NewQuestionBankRepository(pool *pgxpool.Pool) *QuestionBankRepository {
	return &QuestionBankRepository{pool: pool}
}

// GetByID retrieves a question bank by id.
func (r *QuestionBankRepository) GetByID(ctx context.Context, id int64) (*model.QuestionBank, error) {
	b := &model.QuestionBank{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, platform_id, name, created_at, updated_at
		 FROM question_banks WHERE id = $1`, id,
	).Scan(&b.ID, &b.PlatformID, &b.Name, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Create inserts a new question bank.
func (r *QuestionBankRepository) Create(ctx context.Context, b *model.QuestionBank) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO question_banks (platform_id, name)
		 VALUES ($1, $2)
		 RETURNING id, created_at, updated_at`,
		b.PlatformID, b.Name,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

// Rename updates a bank's name.
func (r *QuestionBankRepository) Rename(ctx context.Context, id int64, name string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE question_banks SET name = $1, updated_at = NOW() WHERE id = $2`, name, id)
	return err
}

// Delete removes a bank and, through cascades, its procedures and questions.
func (r *QuestionBankRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM question_banks WHERE id = $1`, id)
	return err
}

// ListByPlatform retrieves all banks of a platform.
func (r *QuestionBankRepository) ListByPlatform(ctx context.Context, platformID int64) ([]model.QuestionBank, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, platform_id, name, created_at, updated_at
		 FROM question_banks
		 WHERE platform_id = $1
		 ORDER BY id`, platformID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var banks []model.QuestionBank
	for rows.Next() {
		var b model.QuestionBank
		if err := rows.Scan(&b.ID, &b.PlatformID, &b.Name, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		banks = append(banks, b)
	}
	return banks, rows.Err()
}

// CreateProcedure inserts a new procedure under a bank.
func (r *QuestionBankRepository) CreateProcedure(ctx context.Context, p *model.Procedure) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO procedures (question_bank_id, name)
		 VALUES ($1, $2)
		 RETURNING id`,
		p.QuestionBankID, p.Name,
	).Scan(&p.ID)
}

// GetProcedure retrieves a procedure by id.
func (r *QuestionBankRepository) GetProcedure(ctx context.Context, id int64) (*model.Procedure, error) {
	p := &model.Procedure{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, question_bank_id, name FROM procedures WHERE id = $1`, id,
	).Scan(&p.ID, &p.QuestionBankID, &p.Name)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// DeleteProcedure removes a procedure and its questions.
func (r *QuestionBankRepository) DeleteProcedure(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM procedures WHERE id = $1`, id)
	return err
}

// GetTree loads the full procedure → question → option hierarchy of a bank
// in one pass, everything ordered by ascending id so rebuilds are
// byte-for-byte reproducible. An absent bank yields an empty slice.
func (r *QuestionBankRepository) GetTree(ctx context.Context, bankID int64) ([]model.Procedure, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT p.id, p.name,
		        q.id, q.prompt, q.image_url, q.question_type, q.scene_identifier, q.score,
		        o.id, o.option_text, o.is_correct
		 FROM procedures p
		 LEFT JOIN questions q ON q.procedure_id = p.id
		 LEFT JOIN options o ON o.question_id = q.id
		 WHERE p.question_bank_id = $1
		 ORDER BY p.id, q.id, o.id`, bankID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		procedures []model.Procedure
		curProc    *model.Procedure
		curQ       *model.Question
	)

	for rows.Next() {
		var (
			procID   int64
			procName string
			qID      *int64
			prompt   *string
			imageURL *string
			qType    *string
			sceneID  *string
			score    *int
			optID    *int64
			optText  *string
			correct  *bool
		)
		if err := rows.Scan(&procID, &procName, &qID, &prompt, &imageURL, &qType, &sceneID, &score, &optID, &optText, &correct); err != nil {
			return nil, err
		}

		if curProc == nil || curProc.ID != procID {
			procedures = append(procedures, model.Procedure{
				ID:             procID,
				QuestionBankID: bankID,
				Name:           procName,
			})
			curProc = &procedures[len(procedures)-1]
			curQ = nil
		}

		if qID == nil {
			continue // procedure without questions
		}
		if curQ == nil || curQ.ID != *qID {
			curProc.Questions = append(curProc.Questions, model.Question{
				ID:              *qID,
				ProcedureID:     procID,
				Prompt:          *prompt,
				ImageURL:        imageURL,
				QuestionType:    model.QuestionType(*qType),
				SceneIdentifier: *sceneID,
				Score:           *score,
			})
			curQ = &curProc.Questions[len(curProc.Questions)-1]
		}

		if optID != nil {
			curQ.Options = append(curQ.Options, model.Option{
				ID:         *optID,
				QuestionID: *qID,
				OptionText: *optText,
				IsCorrect:  *correct,
			})
		}
	}
	return procedures, rows.Err()
}
