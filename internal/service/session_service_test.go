package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stemsi/skillcheck-backend/internal/model"
	"github.com/stemsi/skillcheck-backend/internal/repository"
	"github.com/stemsi/skillcheck-backend/internal/scoring"
)

// ─── Fakes ──────────────────────────────────────────────────────────────

type fakeAssessments struct {
	byID map[int64]*model.Assessment
}

func (f *fakeAssessments) GetByID(_ context.Context, id int64) (*model.Assessment, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *a
	return &cp, nil
}

type fakeExaminees struct {
	byIdentifier map[string]int64
	nextID       int64
}

func (f *fakeExaminees) GetOrCreate(_ context.Context, identifier string) (*model.Examinee, error) {
	if id, ok := f.byIdentifier[identifier]; ok {
		return &model.Examinee{ID: id, Identifier: identifier}, nil
	}
	f.nextID++
	f.byIdentifier[identifier] = f.nextID
	return &model.Examinee{ID: f.nextID, Identifier: identifier}, nil
}

func (f *fakeExaminees) GetByID(_ context.Context, id int64) (*model.Examinee, error) {
	for ident, eid := range f.byIdentifier {
		if eid == id {
			return &model.Examinee{ID: id, Identifier: ident}, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeSessions struct {
	byID        map[int64]*model.AssessmentSession
	logs        map[int64][]model.AnswerLog
	nextID      int64
	createErr   error
	appendErr   error
	finishCalls int
}

func (f *fakeSessions) GetByID(_ context.Context, id int64) (*model.AssessmentSession, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessions) GetActive(_ context.Context, assessmentID, examineeID int64) (*model.AssessmentSession, error) {
	for _, s := range f.byID {
		if s.AssessmentID == assessmentID && s.ExamineeID == examineeID && s.EndTime == nil {
			cp := *s
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeSessions) HasFinished(_ context.Context, assessmentID, examineeID int64) (bool, error) {
	for _, s := range f.byID {
		if s.AssessmentID == assessmentID && s.ExamineeID == examineeID && s.EndTime != nil {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSessions) Create(_ context.Context, s *model.AssessmentSession) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	s.ID = f.nextID
	cp := *s
	f.byID[s.ID] = &cp
	return nil
}

func (f *fakeSessions) Finish(_ context.Context, id int64, endTime time.Time) (bool, error) {
	f.finishCalls++
	s, ok := f.byID[id]
	if !ok || s.EndTime != nil {
		return false, nil
	}
	s.EndTime = &endTime
	return true, nil
}

func (f *fakeSessions) ListAnswerLogs(_ context.Context, sessionID int64) ([]model.AnswerLog, error) {
	return f.logs[sessionID], nil
}

func (f *fakeSessions) HasAnswer(_ context.Context, sessionID, questionID int64) (bool, error) {
	for _, l := range f.logs[sessionID] {
		if l.QuestionID == questionID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSessions) AppendAnswer(_ context.Context, log *model.AnswerLog) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	for _, l := range f.logs[log.SessionID] {
		if l.QuestionID == log.QuestionID {
			return repository.ErrDuplicateAnswer
		}
	}
	s, ok := f.byID[log.SessionID]
	if !ok || s.EndTime != nil {
		return pgx.ErrNoRows
	}
	f.logs[log.SessionID] = append(f.logs[log.SessionID], *log)
	s.TotalScore += log.ScoreAwarded
	return nil
}

type fakeQuestions struct {
	byID map[int64]*model.AnsweredQuestionInfo
}

func (f *fakeQuestions) GetAnswerInfo(_ context.Context, _, _, questionID int64) (*model.AnsweredQuestionInfo, error) {
	info, ok := f.byID[questionID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return info, nil
}

type fakeBlueprints struct {
	blueprint []model.BlueprintProcedure
}

func (f *fakeBlueprints) GetBlueprint(_ context.Context, _ int64) ([]model.BlueprintProcedure, error) {
	// Deep-ish copy so callers can annotate freely, like the real cache.
	bp := make([]model.BlueprintProcedure, len(f.blueprint))
	for i, p := range f.blueprint {
		bp[i] = p
		bp[i].Questions = append([]model.BlueprintQuestion(nil), p.Questions...)
	}
	return bp, nil
}

type fakeScheduler struct {
	armed     map[int64]time.Time
	cancelled []int64
}

func (f *fakeScheduler) Arm(_ context.Context, sessionID int64, dueAt time.Time) error {
	f.armed[sessionID] = dueAt
	return nil
}

func (f *fakeScheduler) Cancel(_ context.Context, sessionID int64) error {
	f.cancelled = append(f.cancelled, sessionID)
	return nil
}

type fakeMonitor struct {
	events []MonitorEvent
}

func (f *fakeMonitor) Publish(_ context.Context, ev MonitorEvent) {
	f.events = append(f.events, ev)
}

// ─── Fixture ────────────────────────────────────────────────────────────

type fixture struct {
	svc         *SessionService
	assessments *fakeAssessments
	examinees   *fakeExaminees
	sessions    *fakeSessions
	questions   *fakeQuestions
	scheduler   *fakeScheduler
	monitor     *fakeMonitor
	now         time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	f := &fixture{
		assessments: &fakeAssessments{byID: map[int64]*model.Assessment{
			1: {
				ID:             1,
				Title:          "Lathe Basics",
				QuestionBankID: 10,
				StartTime:      now.Add(-time.Hour),
				EndTime:        now.Add(time.Hour),
			},
		}},
		examinees: &fakeExaminees{byIdentifier: map[string]int64{}},
		sessions:  &fakeSessions{byID: map[int64]*model.AssessmentSession{}, logs: map[int64][]model.AnswerLog{}},
		questions: &fakeQuestions{byID: map[int64]*model.AnsweredQuestionInfo{
			100: {
				QuestionID:       100,
				ProcedureID:      20,
				QuestionType:     model.QuestionTypeSingleChoice,
				Score:            10,
				OptionIDs:        []int64{1, 2, 3},
				CorrectOptionIDs: []int64{2},
			},
			101: {
				QuestionID:       101,
				ProcedureID:      20,
				QuestionType:     model.QuestionTypeMultipleChoice,
				Score:            10,
				OptionIDs:        []int64{4, 5, 6},
				CorrectOptionIDs: []int64{4, 5},
			},
		}},
		scheduler: &fakeScheduler{armed: map[int64]time.Time{}},
		monitor:   &fakeMonitor{},
		now:       now,
	}

	blueprints := &fakeBlueprints{blueprint: []model.BlueprintProcedure{
		{
			ID:   20,
			Name: "Station A",
			Questions: []model.BlueprintQuestion{
				{ID: 100, QuestionType: model.QuestionTypeSingleChoice, Score: 10},
				{ID: 101, QuestionType: model.QuestionTypeMultipleChoice, Score: 10},
			},
		},
		{
			ID:   21,
			Name: "Station B",
			Questions: []model.BlueprintQuestion{
				{ID: 102, QuestionType: model.QuestionTypeSingleChoice, Score: 5},
			},
		},
	}}

	f.svc = NewSessionService(f.assessments, f.examinees, f.sessions, f.questions, blueprints, scoring.NewEngine(nil), f.scheduler, f.monitor)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f *fixture) start(t *testing.T, identifier string) *StartSessionResponse {
	t.Helper()
	res, err := f.svc.StartOrResume(context.Background(), 1, &model.StartSessionRequest{ExamineeIdentifier: identifier})
	if err != nil {
		t.Fatalf("StartOrResume: %v", err)
	}
	return res
}

// ─── Admission ──────────────────────────────────────────────────────────

func TestStartSessionCreates(t *testing.T) {
	f := newFixture(t)

	res := f.start(t, "seat-1")
	if res.Status != StatusCreated {
		t.Fatalf("Status = %q, want %q", res.Status, StatusCreated)
	}
	if len(res.Blueprint) != 2 {
		t.Fatalf("Blueprint has %d procedures, want 2", len(res.Blueprint))
	}
	if _, ok := f.scheduler.armed[res.SessionID]; !ok {
		t.Error("scheduler was not armed for the new session")
	}
	if len(f.monitor.events) != 1 || f.monitor.events[0].Type != EventSessionStarted {
		t.Errorf("monitor events = %+v, want one session_started", f.monitor.events)
	}
}

func TestStartSessionWindowGates(t *testing.T) {
	f := newFixture(t)

	f.now = time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC) // before start
	_, err := f.svc.StartOrResume(context.Background(), 1, &model.StartSessionRequest{ExamineeIdentifier: "x"})
	if !errors.Is(err, ErrAssessmentNotStarted) {
		t.Errorf("before window: err = %v, want ErrAssessmentNotStarted", err)
	}

	f.now = time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC) // after end
	_, err = f.svc.StartOrResume(context.Background(), 1, &model.StartSessionRequest{ExamineeIdentifier: "x"})
	if !errors.Is(err, ErrAssessmentEnded) {
		t.Errorf("after window: err = %v, want ErrAssessmentEnded", err)
	}
}

func TestStartSessionBoundaryInstantsAdmit(t *testing.T) {
	f := newFixture(t)
	a := f.assessments.byID[1]

	f.now = a.StartTime
	if _, err := f.svc.StartOrResume(context.Background(), 1, &model.StartSessionRequest{ExamineeIdentifier: "edge-start"}); err != nil {
		t.Errorf("at start instant: %v", err)
	}

	f.now = a.EndTime
	if _, err := f.svc.StartOrResume(context.Background(), 1, &model.StartSessionRequest{ExamineeIdentifier: "edge-end"}); err != nil {
		t.Errorf("at end instant: %v", err)
	}
}

func TestStartSessionUnknownAssessment(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.StartOrResume(context.Background(), 99, &model.StartSessionRequest{ExamineeIdentifier: "x"})
	if !errors.Is(err, ErrAssessmentNotFound) {
		t.Errorf("err = %v, want ErrAssessmentNotFound", err)
	}
}

func TestStartSessionCompletedAttemptBlocks(t *testing.T) {
	f := newFixture(t)

	res := f.start(t, "seat-1")
	if _, err := f.svc.Finish(context.Background(), res.SessionID, &model.FinishSessionRequest{ExamineeIdentifier: "seat-1"}); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	_, err := f.svc.StartOrResume(context.Background(), 1, &model.StartSessionRequest{ExamineeIdentifier: "seat-1"})
	if !errors.Is(err, ErrAlreadyCompleted) {
		t.Errorf("err = %v, want ErrAlreadyCompleted", err)
	}
}

func TestStartSessionResumesActive(t *testing.T) {
	f := newFixture(t)

	created := f.start(t, "seat-1")
	armsBefore := len(f.scheduler.armed)

	resumed := f.start(t, "seat-1")
	if resumed.Status != StatusResumed {
		t.Fatalf("Status = %q, want %q", resumed.Status, StatusResumed)
	}
	if resumed.SessionID != created.SessionID {
		t.Errorf("resumed session %d, want %d", resumed.SessionID, created.SessionID)
	}
	if len(f.scheduler.armed) != armsBefore {
		t.Error("resume must not re-arm the scheduler")
	}
}

func TestResumeAnnotatesAndFiltersBlueprint(t *testing.T) {
	f := newFixture(t)
	created := f.start(t, "seat-1")

	// Answer one of two questions in procedure 20 and the only question
	// in procedure 21.
	submit := func(qid int64, opts []int64) {
		t.Helper()
		if _, err := f.svc.SubmitAnswer(context.Background(), created.SessionID, &model.SubmitAnswerRequest{
			ExamineeIdentifier: "seat-1",
			ProcedureID:        20,
			QuestionID:         qid,
			SelectedOptionIDs:  opts,
		}); err != nil {
			t.Fatalf("SubmitAnswer(%d): %v", qid, err)
		}
	}
	submit(100, []int64{2})

	f.questions.byID[102] = &model.AnsweredQuestionInfo{
		QuestionID: 102, ProcedureID: 21,
		QuestionType: model.QuestionTypeSingleChoice, Score: 5,
		OptionIDs: []int64{7, 8}, CorrectOptionIDs: []int64{7},
	}
	if _, err := f.svc.SubmitAnswer(context.Background(), created.SessionID, &model.SubmitAnswerRequest{
		ExamineeIdentifier: "seat-1",
		ProcedureID:        21,
		QuestionID:         102,
		SelectedOptionIDs:  []int64{8},
	}); err != nil {
		t.Fatalf("SubmitAnswer(102): %v", err)
	}

	resumed := f.start(t, "seat-1")

	// Procedure 21 is fully answered and must be omitted.
	if len(resumed.Blueprint) != 1 || resumed.Blueprint[0].ID != 20 {
		t.Fatalf("Blueprint = %+v, want only procedure 20", resumed.Blueprint)
	}

	q := resumed.Blueprint[0].Questions[0]
	if q.ID != 100 {
		t.Fatalf("first question = %d, want 100", q.ID)
	}
	if len(q.SelectedOptionIDs) != 1 || q.SelectedOptionIDs[0] != 2 {
		t.Errorf("SelectedOptionIDs = %v, want [2]", q.SelectedOptionIDs)
	}
	if q.ScoreAwarded == nil || *q.ScoreAwarded != 10 {
		t.Errorf("ScoreAwarded = %v, want 10", q.ScoreAwarded)
	}
	if unanswered := resumed.Blueprint[0].Questions[1]; unanswered.ScoreAwarded != nil {
		t.Errorf("unanswered question carries ScoreAwarded %v", *unanswered.ScoreAwarded)
	}
	if resumed.TotalScore != 10 {
		t.Errorf("TotalScore = %d, want 10", resumed.TotalScore)
	}
}

func TestStartSessionRaceLoserResumesWinner(t *testing.T) {
	f := newFixture(t)

	// Pre-existing active session plus a Create that reports a lost race.
	winner := f.start(t, "seat-1")
	f.sessions.createErr = pgx.ErrNoRows

	res := f.start(t, "seat-1")
	if res.Status != StatusResumed || res.SessionID != winner.SessionID {
		t.Errorf("got (%q, %d), want resume of session %d", res.Status, res.SessionID, winner.SessionID)
	}
}

// ─── Answer submission ──────────────────────────────────────────────────

func TestSubmitAnswerScoresAndAccumulates(t *testing.T) {
	f := newFixture(t)
	created := f.start(t, "seat-1")

	res, err := f.svc.SubmitAnswer(context.Background(), created.SessionID, &model.SubmitAnswerRequest{
		ExamineeIdentifier: "seat-1",
		ProcedureID:        20,
		QuestionID:         101,
		SelectedOptionIDs:  []int64{4},
	})
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if res.ScoreAwarded != 5 || res.IsCorrect {
		t.Errorf("got (%d, %t), want partial credit (5, false)", res.ScoreAwarded, res.IsCorrect)
	}

	s, _ := f.sessions.GetByID(context.Background(), created.SessionID)
	if s.TotalScore != 5 {
		t.Errorf("TotalScore = %d, want 5", s.TotalScore)
	}
}

func TestSubmitAnswerDuplicateRejected(t *testing.T) {
	f := newFixture(t)
	created := f.start(t, "seat-1")

	req := &model.SubmitAnswerRequest{
		ExamineeIdentifier: "seat-1",
		ProcedureID:        20,
		QuestionID:         100,
		SelectedOptionIDs:  []int64{2},
	}
	if _, err := f.svc.SubmitAnswer(context.Background(), created.SessionID, req); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	_, err := f.svc.SubmitAnswer(context.Background(), created.SessionID, req)
	if !errors.Is(err, ErrDuplicateAnswer) {
		t.Errorf("err = %v, want ErrDuplicateAnswer", err)
	}

	s, _ := f.sessions.GetByID(context.Background(), created.SessionID)
	if s.TotalScore != 10 {
		t.Errorf("TotalScore = %d, duplicate must not double-count", s.TotalScore)
	}
}

func TestSubmitAnswerLostRaceMapsToDuplicate(t *testing.T) {
	f := newFixture(t)
	created := f.start(t, "seat-1")
	f.sessions.appendErr = repository.ErrDuplicateAnswer

	_, err := f.svc.SubmitAnswer(context.Background(), created.SessionID, &model.SubmitAnswerRequest{
		ExamineeIdentifier: "seat-1",
		ProcedureID:        20,
		QuestionID:         100,
		SelectedOptionIDs:  []int64{2},
	})
	if !errors.Is(err, ErrDuplicateAnswer) {
		t.Errorf("err = %v, want ErrDuplicateAnswer", err)
	}
}

func TestSubmitAnswerIdentityMismatch(t *testing.T) {
	f := newFixture(t)
	created := f.start(t, "seat-1")

	_, err := f.svc.SubmitAnswer(context.Background(), created.SessionID, &model.SubmitAnswerRequest{
		ExamineeIdentifier: "seat-2",
		ProcedureID:        20,
		QuestionID:         100,
		SelectedOptionIDs:  []int64{2},
	})
	if !errors.Is(err, ErrIdentityMismatch) {
		t.Errorf("err = %v, want ErrIdentityMismatch", err)
	}
}

func TestSubmitAnswerInvalidOption(t *testing.T) {
	f := newFixture(t)
	created := f.start(t, "seat-1")

	_, err := f.svc.SubmitAnswer(context.Background(), created.SessionID, &model.SubmitAnswerRequest{
		ExamineeIdentifier: "seat-1",
		ProcedureID:        20,
		QuestionID:         100,
		SelectedOptionIDs:  []int64{99},
	})
	if !errors.Is(err, ErrInvalidOption) {
		t.Errorf("err = %v, want ErrInvalidOption", err)
	}
}

func TestSubmitAnswerFinishedSessionRejected(t *testing.T) {
	f := newFixture(t)
	created := f.start(t, "seat-1")
	if _, err := f.svc.Finish(context.Background(), created.SessionID, &model.FinishSessionRequest{ExamineeIdentifier: "seat-1"}); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	_, err := f.svc.SubmitAnswer(context.Background(), created.SessionID, &model.SubmitAnswerRequest{
		ExamineeIdentifier: "seat-1",
		ProcedureID:        20,
		QuestionID:         100,
		SelectedOptionIDs:  []int64{2},
	})
	if !errors.Is(err, ErrSessionFinished) {
		t.Errorf("err = %v, want ErrSessionFinished", err)
	}
}

func TestSubmitAnswerUnknownQuestion(t *testing.T) {
	f := newFixture(t)
	created := f.start(t, "seat-1")

	_, err := f.svc.SubmitAnswer(context.Background(), created.SessionID, &model.SubmitAnswerRequest{
		ExamineeIdentifier: "seat-1",
		ProcedureID:        20,
		QuestionID:         999,
		SelectedOptionIDs:  []int64{1},
	})
	if !errors.Is(err, ErrQuestionNotFound) {
		t.Errorf("err = %v, want ErrQuestionNotFound", err)
	}
}

// ─── Finishing ──────────────────────────────────────────────────────────

func TestFinishSession(t *testing.T) {
	f := newFixture(t)
	created := f.start(t, "seat-1")

	res, err := f.svc.Finish(context.Background(), created.SessionID, &model.FinishSessionRequest{ExamineeIdentifier: "seat-1"})
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if res.Status != StatusFinished {
		t.Errorf("Status = %q, want %q", res.Status, StatusFinished)
	}
	if res.EndTime == nil {
		t.Error("EndTime not set")
	}
	if len(f.scheduler.cancelled) != 1 || f.scheduler.cancelled[0] != created.SessionID {
		t.Errorf("scheduler.cancelled = %v, want [%d]", f.scheduler.cancelled, created.SessionID)
	}
}

func TestFinishSessionIdempotent(t *testing.T) {
	f := newFixture(t)
	created := f.start(t, "seat-1")

	if _, err := f.svc.Finish(context.Background(), created.SessionID, &model.FinishSessionRequest{ExamineeIdentifier: "seat-1"}); err != nil {
		t.Fatalf("first Finish: %v", err)
	}

	res, err := f.svc.Finish(context.Background(), created.SessionID, &model.FinishSessionRequest{ExamineeIdentifier: "seat-1"})
	if err != nil {
		t.Fatalf("second Finish: %v", err)
	}
	if res.Status != StatusAlreadyFinished {
		t.Errorf("Status = %q, want %q", res.Status, StatusAlreadyFinished)
	}
}

func TestFinishSessionUnknown(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Finish(context.Background(), 404, &model.FinishSessionRequest{ExamineeIdentifier: "x"})
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}
