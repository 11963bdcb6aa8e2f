package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AutoSubmitJob is one durable auto-submit deadline. Jobs survive process
// restarts; timers are rebuilt from these rows on startup.
type AutoSubmitJob struct {
	SessionID int64     `json:"session_id"`
	DueAt     time.Time `json:"due_at"`
}

// AutoSubmitJobRepository persists auto-submit deadlines.
type AutoSubmitJobRepository struct {
	pool *pgxpool.Pool
}

// NewAutoSubmitJobRepository creates a new AutoSubmitJobRepository.
func NewAutoSubmitJobRepository(pool *pgxpool.Pool) *AutoSubmitJobRepository {
	return &AutoSubmitJobRepository{pool: pool}
}

// Upsert records (or moves) the deadline for a session. One job per
// session, keyed by session id.
func (r *AutoSubmitJobRepository) Upsert(ctx context.Context, sessionID int64, dueAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO auto_submit_jobs (session_id, due_at)
		 VALUES ($1, $2)
		 ON CONFLICT (session_id) DO UPDATE SET due_at = EXCLUDED.due_at`,
		sessionID, dueAt)
	return err
}

// Delete removes a session's job once the session is finished.
func (r *AutoSubmitJobRepository) Delete(ctx context.Context, sessionID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM auto_submit_jobs WHERE session_id = $1`, sessionID)
	return err
}

// ListDue returns jobs whose deadline has passed.
func (r *AutoSubmitJobRepository) ListDue(ctx context.Context, now time.Time) ([]AutoSubmitJob, error) {
	return r.list(ctx, `SELECT session_id, due_at FROM auto_submit_jobs WHERE due_at <= $1 ORDER BY due_at`, now)
}

// ListAll returns every pending job, used to re-arm timers on startup.
func (r *AutoSubmitJobRepository) ListAll(ctx context.Context) ([]AutoSubmitJob, error) {
	return r.list(ctx, `SELECT session_id, due_at FROM auto_submit_jobs ORDER BY due_at`)
}

func (r *AutoSubmitJobRepository) list(ctx context.Context, query string, args ...any) ([]AutoSubmitJob, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []AutoSubmitJob
	for rows.Next() {
		var j AutoSubmitJob
		if err := rows.Scan(&j.SessionID, &j.DueAt); err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}
