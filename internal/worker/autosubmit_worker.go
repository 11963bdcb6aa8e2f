package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/skillcheck-backend/internal/model"
	"github.com/stemsi/skillcheck-backend/internal/repository"
	"github.com/stemsi/skillcheck-backend/internal/service"
)

// JobStore persists auto-submit deadlines across restarts.
type JobStore interface {
	Upsert(ctx context.Context, sessionID int64, dueAt time.Time) error
	Delete(ctx context.Context, sessionID int64) error
	ListDue(ctx context.Context, now time.Time) ([]repository.AutoSubmitJob, error)
	ListAll(ctx context.Context) ([]repository.AutoSubmitJob, error)
}

// SessionFinisher force-finishes sessions. Satisfied by SessionRepository.
type SessionFinisher interface {
	GetByID(ctx context.Context, id int64) (*model.AssessmentSession, error)
	Finish(ctx context.Context, id int64, endTime time.Time) (bool, error)
	ListExpiredActive(ctx context.Context, now time.Time) ([]int64, error)
}

// AutoSubmitWorker force-finishes sessions whose assessment window closed.
// Each armed session gets an in-process timer; a periodic sweep over all
// active sessions past their deadline is the correctness backstop for
// timers lost to crashes or arms that never happened. Finishing is
// idempotent at the storage layer, so a timer and the sweep racing each
// other is harmless.
type AutoSubmitWorker struct {
	jobs     JobStore
	sessions SessionFinisher
	monitor  *service.MonitorService
	interval time.Duration
	log      zerolog.Logger

	// sem bounds how many forced finishes run at once.
	sem chan struct{}

	mu     sync.Mutex
	timers map[int64]*time.Timer
	runCtx context.Context
	cancel context.CancelFunc

	wg sync.WaitGroup
}

// NewAutoSubmitWorker creates the worker. workers bounds concurrent
// forced finishes; sweepInterval is the backstop period.
func NewAutoSubmitWorker(jobs JobStore, sessions SessionFinisher, monitor *service.MonitorService, workers int, sweepInterval time.Duration, log zerolog.Logger) *AutoSubmitWorker {
	if workers < 1 {
		workers = 1
	}
	return &AutoSubmitWorker{
		jobs:     jobs,
		sessions: sessions,
		monitor:  monitor,
		interval: sweepInterval,
		log:      log.With().Str("component", "autosubmit_worker").Logger(),
		sem:      make(chan struct{}, workers),
		timers:   make(map[int64]*time.Timer),
	}
}

// Arm records a durable deadline for the session and sets an in-process
// timer. The job row is written first: if the process dies before the
// timer fires, the sweep picks the job up after restart.
func (w *AutoSubmitWorker) Arm(ctx context.Context, sessionID int64, dueAt time.Time) error {
	if err := w.jobs.Upsert(ctx, sessionID, dueAt); err != nil {
		return err
	}
	w.setTimer(sessionID, dueAt)
	return nil
}

// Cancel drops the session's job and timer after a voluntary finish.
func (w *AutoSubmitWorker) Cancel(ctx context.Context, sessionID int64) error {
	w.mu.Lock()
	if t, ok := w.timers[sessionID]; ok {
		t.Stop()
		delete(w.timers, sessionID)
	}
	w.mu.Unlock()

	return w.jobs.Delete(ctx, sessionID)
}

// Start re-arms timers for jobs that survived a restart, fires anything
// already overdue, and runs the sweep loop until ctx is cancelled.
func (w *AutoSubmitWorker) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	w.mu.Lock()
	w.runCtx, w.cancel = runCtx, cancel
	w.mu.Unlock()
	w.log.Info().Dur("sweep_interval", w.interval).Msg("AutoSubmitWorker started")

	jobs, err := w.jobs.ListAll(runCtx)
	if err != nil {
		w.log.Error().Err(err).Msg("loading pending jobs failed, relying on sweep")
	} else {
		for _, j := range jobs {
			w.setTimer(j.SessionID, j.DueAt)
		}
		if len(jobs) > 0 {
			w.log.Info().Int("jobs", len(jobs)).Msg("re-armed pending auto-submit jobs")
		}
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-runCtx.Done():
			w.log.Info().Msg("Shutdown requested. Waiting for in-flight finishes...")
			w.stopTimers()
			w.wg.Wait()
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

// Stop cancels the run loop. Safe to call before Start returns.
func (w *AutoSubmitWorker) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// runContext returns the run loop's context, or nil before Start.
func (w *AutoSubmitWorker) runContext() context.Context {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.runCtx
}

func (w *AutoSubmitWorker) setTimer(sessionID int64, dueAt time.Time) {
	delay := time.Until(dueAt)
	if delay < 0 {
		delay = 0
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[sessionID]; ok {
		t.Stop()
	}
	w.timers[sessionID] = time.AfterFunc(delay, func() {
		w.mu.Lock()
		delete(w.timers, sessionID)
		w.mu.Unlock()
		w.dispatch(sessionID)
	})
}

func (w *AutoSubmitWorker) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for id, t := range w.timers {
		t.Stop()
		delete(w.timers, id)
	}
}

// sweep force-finishes every session still open past its assessment
// deadline. The scan goes over the sessions themselves, not the job
// table, so it catches sessions that were never armed at all: a failed
// Upsert, a crash between admission and arming, clock jumps. Overdue job
// rows are swept as well so stale rows get cleaned up even when their
// session already finished.
func (w *AutoSubmitWorker) sweep() {
	ctx := w.runContext()
	now := time.Now().UTC()

	expired, err := w.sessions.ListExpiredActive(ctx, now)
	if err != nil {
		w.log.Error().Err(err).Msg("expired session scan failed")
	} else {
		for _, id := range expired {
			w.dispatch(id)
		}
	}

	due, err := w.jobs.ListDue(ctx, now)
	if err != nil {
		w.log.Error().Err(err).Msg("due job scan failed")
		return
	}
	for _, j := range due {
		w.dispatch(j.SessionID)
	}
}

// dispatch runs one forced finish on the bounded pool.
func (w *AutoSubmitWorker) dispatch(sessionID int64) {
	ctx := w.runContext()
	if ctx == nil || ctx.Err() != nil {
		return
	}

	w.wg.Add(1)
	select {
	case w.sem <- struct{}{}:
	case <-ctx.Done():
		w.wg.Done()
		return
	}

	go func() {
		defer func() {
			<-w.sem
			w.wg.Done()
		}()
		w.forceFinish(ctx, sessionID)
	}()
}

// forceFinish closes the session if it is still active and removes the
// job either way. The Finish UPDATE only touches active sessions, so a
// session that finished voluntarily in the meantime is left untouched.
func (w *AutoSubmitWorker) forceFinish(ctx context.Context, sessionID int64) {
	closed, err := w.sessions.Finish(ctx, sessionID, time.Now().UTC())
	if err != nil {
		// Keep the job; the next sweep retries.
		w.log.Error().Err(err).Int64("session_id", sessionID).Msg("forced finish failed")
		return
	}

	if err := w.jobs.Delete(ctx, sessionID); err != nil {
		w.log.Warn().Err(err).Int64("session_id", sessionID).Msg("job cleanup failed")
	}

	if closed {
		w.log.Info().Int64("session_id", sessionID).Msg("session auto-submitted")
		if w.monitor != nil {
			if s, err := w.sessions.GetByID(ctx, sessionID); err == nil {
				w.monitor.Publish(ctx, service.MonitorEvent{
					Type:         service.EventSessionFinished,
					SessionID:    sessionID,
					AssessmentID: s.AssessmentID,
					TotalScore:   s.TotalScore,
				})
			}
		}
	}
}
