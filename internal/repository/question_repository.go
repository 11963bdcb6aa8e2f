package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/skillcheck-backend/internal/model"
)

// QuestionRepository handles question and option data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// CreateWithOptions inserts a question together with its options in one
// transaction. The question never exists without its options.
func (r *QuestionRepository) CreateWithOptions(ctx context.Context, q *model.Question) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO questions (procedure_id, prompt, image_url, question_type, scene_identifier, score)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		q.ProcedureID, q.Prompt, q.ImageURL, q.QuestionType, q.SceneIdentifier, q.Score,
	).Scan(&q.ID)
	if err != nil {
		return fmt.Errorf("insert question: %w", err)
	}

	for i := range q.Options {
		opt := &q.Options[i]
		opt.QuestionID = q.ID
		err = tx.QueryRow(ctx,
			`INSERT INTO options (question_id, option_text, is_correct)
			 VALUES ($1, $2, $3)
			 RETURNING id`,
			opt.QuestionID, opt.OptionText, opt.IsCorrect,
		).Scan(&opt.ID)
		if err != nil {
			return fmt.Errorf("insert option: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// GetByID retrieves a question with its options.
func (r *QuestionRepository) GetByID(ctx context.Context, id int64) (*model.Question, error) {
	q := &model.Question{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, procedure_id, prompt, image_url, question_type, scene_identifier, score
		 FROM questions WHERE id = $1`, id,
	).Scan(&q.ID, &q.ProcedureID, &q.Prompt, &q.ImageURL, &q.QuestionType, &q.SceneIdentifier, &q.Score)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, question_id, option_text, is_correct
		 FROM options WHERE question_id = $1 ORDER BY id`, id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var o model.Option
		if err := rows.Scan(&o.ID, &o.QuestionID, &o.OptionText, &o.IsCorrect); err != nil {
			return nil, err
		}
		q.Options = append(q.Options, o)
	}
	return q, rows.Err()
}

// Delete removes a question and its options.
func (r *QuestionRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	return err
}

// ResolveBankID walks from a question up to its owning question bank.
// Needed so mutations can invalidate the right blueprint cache entry.
func (r *QuestionRepository) ResolveBankID(ctx context.Context, questionID int64) (int64, error) {
	var bankID int64
	err := r.pool.QueryRow(ctx,
		`SELECT p.question_bank_id
		 FROM questions q
		 JOIN procedures p ON q.procedure_id = p.id
		 WHERE q.id = $1`, questionID,
	).Scan(&bankID)
	return bankID, err
}

// GetAnswerInfo loads the scoring-relevant snapshot of one question in a
// single query: its type, full score, owning procedure, and the complete
// and correct option id sets. Returns pgx.ErrNoRows when the question does
// not exist under the given bank, which also covers questions that were
// deleted after the blueprint was cached.
func (r *QuestionRepository) GetAnswerInfo(ctx context.Context, bankID, procedureID, questionID int64) (*model.AnsweredQuestionInfo, error) {
	info := &model.AnsweredQuestionInfo{QuestionID: questionID, ProcedureID: procedureID}
	var qType string
	err := r.pool.QueryRow(ctx,
		`SELECT q.question_type, q.score,
		        COALESCE(array_agg(o.id ORDER BY o.id) FILTER (WHERE o.id IS NOT NULL), '{}'),
		        COALESCE(array_agg(o.id ORDER BY o.id) FILTER (WHERE o.is_correct), '{}')
		 FROM questions q
		 JOIN procedures p ON q.procedure_id = p.id
		 LEFT JOIN options o ON o.question_id = q.id
		 WHERE q.id = $1 AND q.procedure_id = $2 AND p.question_bank_id = $3
		 GROUP BY q.id`, questionID, procedureID, bankID,
	).Scan(&qType, &info.Score, &info.OptionIDs, &info.CorrectOptionIDs)
	if err != nil {
		return nil, err
	}
	info.QuestionType = model.QuestionType(qType)
	return info, nil
}
