package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/skillcheck-backend/internal/model"
	"github.com/stemsi/skillcheck-backend/internal/repository"
)

type fakeJobStore struct {
	mu   sync.Mutex
	jobs map[int64]time.Time
}

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{jobs: map[int64]time.Time{}}
}

func (f *fakeJobStore) Upsert(_ context.Context, sessionID int64, dueAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs[sessionID] = dueAt
	return nil
}

func (f *fakeJobStore) Delete(_ context.Context, sessionID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.jobs, sessionID)
	return nil
}

func (f *fakeJobStore) ListDue(_ context.Context, now time.Time) ([]repository.AutoSubmitJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var due []repository.AutoSubmitJob
	for id, at := range f.jobs {
		if !at.After(now) {
			due = append(due, repository.AutoSubmitJob{SessionID: id, DueAt: at})
		}
	}
	return due, nil
}

func (f *fakeJobStore) ListAll(_ context.Context) ([]repository.AutoSubmitJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []repository.AutoSubmitJob
	for id, at := range f.jobs {
		all = append(all, repository.AutoSubmitJob{SessionID: id, DueAt: at})
	}
	return all, nil
}

func (f *fakeJobStore) has(sessionID int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.jobs[sessionID]
	return ok
}

type fakeFinisher struct {
	mu        sync.Mutex
	active    map[int64]bool
	deadlines map[int64]time.Time
	finished  []int64
}

func newFakeFinisher(active ...int64) *fakeFinisher {
	f := &fakeFinisher{active: map[int64]bool{}, deadlines: map[int64]time.Time{}}
	for _, id := range active {
		f.active[id] = true
	}
	return f
}

func (f *fakeFinisher) setDeadline(id int64, at time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deadlines[id] = at
}

func (f *fakeFinisher) ListExpiredActive(_ context.Context, now time.Time) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []int64
	for id, at := range f.deadlines {
		if f.active[id] && !at.After(now) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (f *fakeFinisher) GetByID(_ context.Context, id int64) (*model.AssessmentSession, error) {
	return &model.AssessmentSession{ID: id, AssessmentID: 1}, nil
}

func (f *fakeFinisher) Finish(_ context.Context, id int64, _ time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.active[id] {
		return false, nil
	}
	f.active[id] = false
	f.finished = append(f.finished, id)
	return true, nil
}

func (f *fakeFinisher) finishedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.finished)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestArmTimerForcesFinish(t *testing.T) {
	jobs := newFakeJobStore()
	sessions := newFakeFinisher(1)
	w := NewAutoSubmitWorker(jobs, sessions, nil, 2, time.Hour, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	if err := w.Arm(ctx, 1, time.Now().Add(50*time.Millisecond)); err != nil {
		t.Fatalf("Arm: %v", err)
	}

	waitFor(t, func() bool { return sessions.finishedCount() == 1 })
	waitFor(t, func() bool { return !jobs.has(1) })
}

func TestSweepCatchesOverdueJobWithoutTimer(t *testing.T) {
	jobs := newFakeJobStore()
	sessions := newFakeFinisher(7)

	// Job written by a previous process; no timer exists for it.
	_ = jobs.Upsert(context.Background(), 7, time.Now().Add(-time.Minute))

	w := NewAutoSubmitWorker(jobs, sessions, nil, 2, 20*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	waitFor(t, func() bool { return sessions.finishedCount() == 1 })
}

func TestCancelStopsForcedFinish(t *testing.T) {
	jobs := newFakeJobStore()
	sessions := newFakeFinisher(1)
	w := NewAutoSubmitWorker(jobs, sessions, nil, 2, time.Hour, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	if err := w.Arm(ctx, 1, time.Now().Add(50*time.Millisecond)); err != nil {
		t.Fatalf("Arm: %v", err)
	}
	if err := w.Cancel(ctx, 1); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	time.Sleep(150 * time.Millisecond)
	if n := sessions.finishedCount(); n != 0 {
		t.Errorf("finished %d sessions after cancel, want 0", n)
	}
	if jobs.has(1) {
		t.Error("job row survived cancel")
	}
}

func TestForcedFinishIsIdempotent(t *testing.T) {
	jobs := newFakeJobStore()
	sessions := newFakeFinisher() // session already finished voluntarily

	_ = jobs.Upsert(context.Background(), 3, time.Now().Add(-time.Second))

	w := NewAutoSubmitWorker(jobs, sessions, nil, 2, 20*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	// The stale job is cleaned up without touching the session.
	waitFor(t, func() bool { return !jobs.has(3) })
	if n := sessions.finishedCount(); n != 0 {
		t.Errorf("finished %d sessions, want 0", n)
	}
}

func TestSweepFinishesExpiredSessionNeverArmed(t *testing.T) {
	jobs := newFakeJobStore()
	sessions := newFakeFinisher(9)

	// The session's deadline passed but arming never happened: no job row,
	// no timer. Only the expired-session scan can catch it.
	sessions.setDeadline(9, time.Now().Add(-time.Minute))

	w := NewAutoSubmitWorker(jobs, sessions, nil, 2, 20*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	waitFor(t, func() bool { return sessions.finishedCount() == 1 })
}

func TestStartRearmsPersistedJobs(t *testing.T) {
	jobs := newFakeJobStore()
	sessions := newFakeFinisher(5)

	// Deadline in the near future, persisted before "restart".
	_ = jobs.Upsert(context.Background(), 5, time.Now().Add(30*time.Millisecond))

	w := NewAutoSubmitWorker(jobs, sessions, nil, 2, time.Hour, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	waitFor(t, func() bool { return sessions.finishedCount() == 1 })
}
