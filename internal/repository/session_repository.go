package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/skillcheck-backend/internal/model"
)

// ErrDuplicateAnswer is returned when an answer log already exists for the
// (session, question) pair. The unique index is the arbiter under
// concurrency.
var ErrDuplicateAnswer = errors.New("question already answered in this session")

// SessionResult combines a session row with its examinee for result listings.
type SessionResult struct {
	model.AssessmentSession
	ExamineeIdentifier string            `json:"examinee_identifier"`
	AnswerLogs         []model.AnswerLog `json:"answer_logs,omitempty"`
}

// SessionRepository handles assessment session and answer log data access.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// GetByID retrieves a session by its id.
func (r *SessionRepository) GetByID(ctx context.Context, id int64) (*model.AssessmentSession, error) {
	s := &model.AssessmentSession{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, assessment_id, examinee_id, total_score, start_time, end_time
		 FROM assessment_sessions WHERE id = $1`, id,
	).Scan(&s.ID, &s.AssessmentID, &s.ExamineeID, &s.TotalScore, &s.StartTime, &s.EndTime)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetActive retrieves the open session for an (assessment, examinee) pair,
// or pgx.ErrNoRows when none exists.
func (r *SessionRepository) GetActive(ctx context.Context, assessmentID, examineeID int64) (*model.AssessmentSession, error) {
	s := &model.AssessmentSession{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, assessment_id, examinee_id, total_score, start_time, end_time
		 FROM assessment_sessions
		 WHERE assessment_id = $1 AND examinee_id = $2 AND end_time IS NULL`,
		assessmentID, examineeID,
	).Scan(&s.ID, &s.AssessmentID, &s.ExamineeID, &s.TotalScore, &s.StartTime, &s.EndTime)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// HasFinished reports whether a finished session already exists for the
// (assessment, examinee) pair — i.e. the attempt was completed.
func (r *SessionRepository) HasFinished(ctx context.Context, assessmentID, examineeID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM assessment_sessions
		   WHERE assessment_id = $1 AND examinee_id = $2 AND end_time IS NOT NULL
		 )`, assessmentID, examineeID,
	).Scan(&exists)
	return exists, err
}

// Create inserts a new active session. The partial unique index on
// (assessment_id, examinee_id) WHERE end_time IS NULL makes concurrent
// first contacts collapse to one row: the loser sees pgx.ErrNoRows and
// should re-read the winner via GetActive.
func (r *SessionRepository) Create(ctx context.Context, s *model.AssessmentSession) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO assessment_sessions (assessment_id, examinee_id, total_score, start_time)
		 VALUES ($1, $2, 0, $3)
		 ON CONFLICT (assessment_id, examinee_id) WHERE end_time IS NULL DO NOTHING
		 RETURNING id`,
		s.AssessmentID, s.ExamineeID, s.StartTime,
	).Scan(&s.ID)
}

// Finish closes a session if it is still active. Returns false when the
// session was already finished, which makes both the explicit finish and
// the scheduler's forced finish idempotent.
func (r *SessionRepository) Finish(ctx context.Context, id int64, endTime time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE assessment_sessions
		 SET end_time = $1
		 WHERE id = $2 AND end_time IS NULL`, endTime, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ListExpiredActive returns the ids of sessions still open past their
// assessment's end boundary. This is the authoritative scan for forced
// finishing: it finds expired sessions whether or not a deadline job was
// ever recorded for them.
func (r *SessionRepository) ListExpiredActive(ctx context.Context, now time.Time) ([]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT s.id
		 FROM assessment_sessions s
		 JOIN assessments a ON s.assessment_id = a.id
		 WHERE s.end_time IS NULL AND a.end_time <= $1
		 ORDER BY s.id`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListAnswerLogs retrieves all answer logs of a session, oldest first.
func (r *SessionRepository) ListAnswerLogs(ctx context.Context, sessionID int64) ([]model.AnswerLog, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, session_id, question_id, selected_option_ids, score_awarded, answered_at
		 FROM answer_logs
		 WHERE session_id = $1
		 ORDER BY answered_at, id`, sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []model.AnswerLog
	for rows.Next() {
		var l model.AnswerLog
		if err := rows.Scan(&l.ID, &l.SessionID, &l.QuestionID, &l.SelectedOptionIDs, &l.ScoreAwarded, &l.AnsweredAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// HasAnswer reports whether the session already holds a log for the question.
func (r *SessionRepository) HasAnswer(ctx context.Context, sessionID, questionID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM answer_logs WHERE session_id = $1 AND question_id = $2
		 )`, sessionID, questionID,
	).Scan(&exists)
	return exists, err
}

// AppendAnswer persists an answer log and folds its score into the
// session's running total in one transaction. A log is never written
// without the total reflecting it, and vice versa. A unique-index
// violation on (session_id, question_id) is reported as
// ErrDuplicateAnswer; the UPDATE's end_time guard re-validates that the
// session is still active at write time.
func (r *SessionRepository) AppendAnswer(ctx context.Context, log *model.AnswerLog) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO answer_logs (session_id, question_id, selected_option_ids, score_awarded, answered_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		log.SessionID, log.QuestionID, log.SelectedOptionIDs, log.ScoreAwarded, log.AnsweredAt,
	).Scan(&log.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateAnswer
		}
		return fmt.Errorf("insert answer log: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`UPDATE assessment_sessions
		 SET total_score = total_score + $1
		 WHERE id = $2 AND end_time IS NULL`,
		log.ScoreAwarded, log.SessionID)
	if err != nil {
		return fmt.Errorf("update total score: %w", err)
	}
	if tag.RowsAffected() != 1 {
		// Session was finished between the gate check and the write.
		// Rolling back also discards the log insert.
		return pgx.ErrNoRows
	}

	return tx.Commit(ctx)
}

// ListByAssessment retrieves all session results for an assessment with
// examinee identifiers, paginated.
func (r *SessionRepository) ListByAssessment(ctx context.Context, assessmentID int64, limit, offset int) ([]SessionResult, int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM assessment_sessions WHERE assessment_id = $1`, assessmentID,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT s.id, s.assessment_id, s.examinee_id, s.total_score, s.start_time, s.end_time, e.identifier
		 FROM assessment_sessions s
		 JOIN examinees e ON s.examinee_id = e.id
		 WHERE s.assessment_id = $1
		 ORDER BY s.id
		 LIMIT $2 OFFSET $3`, assessmentID, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var results []SessionResult
	for rows.Next() {
		var sr SessionResult
		if err := rows.Scan(&sr.ID, &sr.AssessmentID, &sr.ExamineeID, &sr.TotalScore, &sr.StartTime, &sr.EndTime, &sr.ExamineeIdentifier); err != nil {
			return nil, 0, err
		}
		results = append(results, sr)
	}
	return results, total, rows.Err()
}

// GetDetail retrieves one session with its examinee identifier and logs.
func (r *SessionRepository) GetDetail(ctx context.Context, sessionID int64) (*SessionResult, error) {
	sr := &SessionResult{}
	err := r.pool.QueryRow(ctx,
		`SELECT s.id, s.assessment_id, s.examinee_id, s.total_score, s.start_time, s.end_time, e.identifier
		 FROM assessment_sessions s
		 JOIN examinees e ON s.examinee_id = e.id
		 WHERE s.id = $1`, sessionID,
	).Scan(&sr.ID, &sr.AssessmentID, &sr.ExamineeID, &sr.TotalScore, &sr.StartTime, &sr.EndTime, &sr.ExamineeIdentifier)
	if err != nil {
		return nil, err
	}

	logs, err := r.ListAnswerLogs(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	sr.AnswerLogs = logs
	return sr, nil
}
