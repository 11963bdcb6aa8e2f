package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
	"github.com/stemsi/skillcheck-backend/internal/model"
	"github.com/stemsi/skillcheck-backend/internal/repository"
	"github.com/stemsi/skillcheck-backend/internal/scoring"
)

// Session statuses returned to the client.
const (
	StatusCreated         = "created"
	StatusResumed         = "resumed"
	StatusFinished        = "finished"
	StatusAlreadyFinished = "already_finished"
)

// AutoSubmitScheduler arms and cancels forced-finish deadlines. Implemented
// by the worker package; the indirection keeps the service testable.
type AutoSubmitScheduler interface {
	Arm(ctx context.Context, sessionID int64, dueAt time.Time) error
	Cancel(ctx context.Context, sessionID int64) error
}

// Narrow store views of the repositories the session flow touches.
// Satisfied by the concrete repository types; tests substitute fakes.

type assessmentReader interface {
	GetByID(ctx context.Context, id int64) (*model.Assessment, error)
}

type examineeStore interface {
	GetOrCreate(ctx context.Context, identifier string) (*model.Examinee, error)
	GetByID(ctx context.Context, id int64) (*model.Examinee, error)
}

type sessionStore interface {
	GetByID(ctx context.Context, id int64) (*model.AssessmentSession, error)
	GetActive(ctx context.Context, assessmentID, examineeID int64) (*model.AssessmentSession, error)
	HasFinished(ctx context.Context, assessmentID, examineeID int64) (bool, error)
	Create(ctx context.Context, s *model.AssessmentSession) error
	Finish(ctx context.Context, id int64, endTime time.Time) (bool, error)
	ListAnswerLogs(ctx context.Context, sessionID int64) ([]model.AnswerLog, error)
	HasAnswer(ctx context.Context, sessionID, questionID int64) (bool, error)
	AppendAnswer(ctx context.Context, log *model.AnswerLog) error
}

type answerInfoReader interface {
	GetAnswerInfo(ctx context.Context, bankID, procedureID, questionID int64) (*model.AnsweredQuestionInfo, error)
}

type blueprintProvider interface {
	GetBlueprint(ctx context.Context, bankID int64) ([]model.BlueprintProcedure, error)
}

type monitorPublisher interface {
	Publish(ctx context.Context, ev MonitorEvent)
}

// StartSessionResponse is the admission result: the session plus the
// blueprint the client renders. On resume the blueprint carries the
// examinee's previous answers and omits fully answered procedures.
type StartSessionResponse struct {
	SessionID    int64                      `json:"session_id"`
	AssessmentID int64                      `json:"assessment_id"`
	Status       string                     `json:"status"`
	TotalScore   int                        `json:"total_score"`
	StartTime    time.Time                  `json:"start_time"`
	Deadline     time.Time                  `json:"deadline"`
	Blueprint    []model.BlueprintProcedure `json:"blueprint"`
}

// SubmitAnswerResponse is the outcome of scoring one submission.
type SubmitAnswerResponse struct {
	QuestionID   int64 `json:"question_id"`
	ScoreAwarded int   `json:"score_awarded"`
	IsCorrect    bool  `json:"is_correct"`
}

// FinishSessionResponse closes the loop on a session.
type FinishSessionResponse struct {
	SessionID  int64      `json:"session_id"`
	Status     string     `json:"status"`
	TotalScore int        `json:"total_score"`
	EndTime    *time.Time `json:"end_time"`
}

// SessionService orchestrates the examinee-facing session lifecycle:
// admission (start or resume), answer scoring, and finishing.
type SessionService struct {
	assessmentRepo assessmentReader
	examineeRepo   examineeStore
	sessionRepo    sessionStore
	questionRepo   answerInfoReader
	blueprints     blueprintProvider
	engine         *scoring.Engine
	scheduler      AutoSubmitScheduler
	monitor        monitorPublisher
	now            func() time.Time
}

// NewSessionService creates a new SessionService.
func NewSessionService(
	assessmentRepo assessmentReader,
	examineeRepo examineeStore,
	sessionRepo sessionStore,
	questionRepo answerInfoReader,
	blueprints blueprintProvider,
	engine *scoring.Engine,
	scheduler AutoSubmitScheduler,
	monitor monitorPublisher,
) *SessionService {
	return &SessionService{
		assessmentRepo: assessmentRepo,
		examineeRepo:   examineeRepo,
		sessionRepo:    sessionRepo,
		questionRepo:   questionRepo,
		blueprints:     blueprints,
		engine:         engine,
		scheduler:      scheduler,
		monitor:        monitor,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// StartOrResume admits an examinee into an assessment. The identifier is
// resolved (created on first contact), the availability window is checked
// with inclusive bounds, a completed attempt blocks re-entry, and an active
// session is resumed instead of duplicated. Only a genuinely new session
// arms the auto-submit deadline.
func (s *SessionService) StartOrResume(ctx context.Context, assessmentID int64, req *model.StartSessionRequest) (*StartSessionResponse, error) {
	assessment, err := s.assessmentRepo.GetByID(ctx, assessmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("load assessment: %w", err)
	}

	now := s.now()
	if now.Before(assessment.StartTime) {
		return nil, ErrAssessmentNotStarted
	}
	if now.After(assessment.EndTime) {
		return nil, ErrAssessmentEnded
	}

	blueprint, err := s.blueprints.GetBlueprint(ctx, assessment.QuestionBankID)
	if err != nil {
		return nil, fmt.Errorf("build blueprint: %w", err)
	}
	if len(blueprint) == 0 {
		// A bank with no content is not sittable.
		return nil, ErrAssessmentNotFound
	}

	examinee, err := s.examineeRepo.GetOrCreate(ctx, req.ExamineeIdentifier)
	if err != nil {
		return nil, fmt.Errorf("resolve examinee: %w", err)
	}

	finished, err := s.sessionRepo.HasFinished(ctx, assessmentID, examinee.ID)
	if err != nil {
		return nil, fmt.Errorf("check completed attempt: %w", err)
	}
	if finished {
		return nil, ErrAlreadyCompleted
	}

	session, err := s.sessionRepo.GetActive(ctx, assessmentID, examinee.ID)
	if err == nil {
		return s.resume(ctx, session, blueprint)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("load active session: %w", err)
	}

	session = &model.AssessmentSession{
		AssessmentID: assessmentID,
		ExamineeID:   examinee.ID,
		StartTime:    now,
	}
	err = s.sessionRepo.Create(ctx, session)
	if errors.Is(err, pgx.ErrNoRows) {
		// Lost the admission race: a concurrent request created the
		// session first. Resume the winner's.
		session, err = s.sessionRepo.GetActive(ctx, assessmentID, examinee.ID)
		if err != nil {
			return nil, fmt.Errorf("load racing session: %w", err)
		}
		return s.resume(ctx, session, blueprint)
	}
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	if err := s.scheduler.Arm(ctx, session.ID, assessment.EndTime); err != nil {
		// The minute sweep will still force-finish at the deadline.
		log.Error().Err(err).Int64("session_id", session.ID).Msg("arming auto-submit failed")
	}

	s.monitor.Publish(ctx, MonitorEvent{
		Type:               EventSessionStarted,
		SessionID:          session.ID,
		AssessmentID:       assessmentID,
		ExamineeIdentifier: examinee.Identifier,
	})

	log.Info().
		Int64("session_id", session.ID).
		Int64("assessment_id", assessmentID).
		Str("examinee", examinee.Identifier).
		Msg("session created")

	return &StartSessionResponse{
		SessionID:    session.ID,
		AssessmentID: assessmentID,
		Status:       StatusCreated,
		StartTime:    session.StartTime,
		Deadline:     assessment.EndTime,
		Blueprint:    blueprint,
	}, nil
}

// resume annotates the blueprint with the session's answer logs and drops
// procedures whose every question is already answered, so the client only
// renders remaining work.
func (s *SessionService) resume(ctx context.Context, session *model.AssessmentSession, blueprint []model.BlueprintProcedure) (*StartSessionResponse, error) {
	assessment, err := s.assessmentRepo.GetByID(ctx, session.AssessmentID)
	if err != nil {
		return nil, fmt.Errorf("load assessment: %w", err)
	}

	logs, err := s.sessionRepo.ListAnswerLogs(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("load answer logs: %w", err)
	}

	answered := make(map[int64]*model.AnswerLog, len(logs))
	for i := range logs {
		answered[logs[i].QuestionID] = &logs[i]
	}

	remaining := make([]model.BlueprintProcedure, 0, len(blueprint))
	for _, proc := range blueprint {
		done := 0
		for i := range proc.Questions {
			q := &proc.Questions[i]
			if l, ok := answered[q.ID]; ok {
				q.SelectedOptionIDs = l.SelectedOptionIDs
				score := l.ScoreAwarded
				q.ScoreAwarded = &score
				done++
			}
		}
		if len(proc.Questions) > 0 && done == len(proc.Questions) {
			continue
		}
		remaining = append(remaining, proc)
	}

	log.Info().
		Int64("session_id", session.ID).
		Int("answered", len(logs)).
		Msg("session resumed")

	return &StartSessionResponse{
		SessionID:    session.ID,
		AssessmentID: session.AssessmentID,
		Status:       StatusResumed,
		TotalScore:   session.TotalScore,
		StartTime:    session.StartTime,
		Deadline:     assessment.EndTime,
		Blueprint:    remaining,
	}, nil
}

// SubmitAnswer scores one submission and persists it atomically with the
// session's running total. Each question is scored exactly once; the
// unique index on (session, question) is the arbiter under concurrency.
func (s *SessionService) SubmitAnswer(ctx context.Context, sessionID int64, req *model.SubmitAnswerRequest) (*SubmitAnswerResponse, error) {
	session, assessment, err := s.loadOwnedSession(ctx, sessionID, req.ExamineeIdentifier)
	if err != nil {
		return nil, err
	}
	if session.Finished() {
		return nil, ErrSessionFinished
	}
	if s.now().After(assessment.EndTime) {
		return nil, ErrAssessmentEnded
	}

	// Fast path; the unique index still backstops a lost race.
	dup, err := s.sessionRepo.HasAnswer(ctx, sessionID, req.QuestionID)
	if err != nil {
		return nil, fmt.Errorf("check duplicate: %w", err)
	}
	if dup {
		return nil, ErrDuplicateAnswer
	}

	info, err := s.questionRepo.GetAnswerInfo(ctx, assessment.QuestionBankID, req.ProcedureID, req.QuestionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("load question: %w", err)
	}

	valid := make(map[int64]struct{}, len(info.OptionIDs))
	for _, id := range info.OptionIDs {
		valid[id] = struct{}{}
	}
	for _, id := range req.SelectedOptionIDs {
		if _, ok := valid[id]; !ok {
			return nil, ErrInvalidOption
		}
	}

	result, err := s.engine.Score(info.QuestionType, info.Score, info.CorrectOptionIDs, req.SelectedOptionIDs)
	if err != nil {
		return nil, fmt.Errorf("score answer: %w", err)
	}

	entry := &model.AnswerLog{
		SessionID:         sessionID,
		QuestionID:        req.QuestionID,
		SelectedOptionIDs: req.SelectedOptionIDs,
		ScoreAwarded:      result.ScoreAwarded,
		AnsweredAt:        s.now(),
	}
	err = s.sessionRepo.AppendAnswer(ctx, entry)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateAnswer) {
			return nil, ErrDuplicateAnswer
		}
		if errors.Is(err, pgx.ErrNoRows) {
			// Session was force-finished between the gate and the write.
			return nil, ErrSessionFinished
		}
		return nil, fmt.Errorf("append answer: %w", err)
	}

	s.monitor.Publish(ctx, MonitorEvent{
		Type:         EventAnswerSubmitted,
		SessionID:    sessionID,
		AssessmentID: session.AssessmentID,
		QuestionID:   req.QuestionID,
		TotalScore:   session.TotalScore + result.ScoreAwarded,
	})

	return &SubmitAnswerResponse{
		QuestionID:   req.QuestionID,
		ScoreAwarded: result.ScoreAwarded,
		IsCorrect:    result.IsCorrect,
	}, nil
}

// Finish closes a session. Finishing an already finished session is not an
// error: the response reports already_finished and the stored result.
func (s *SessionService) Finish(ctx context.Context, sessionID int64, req *model.FinishSessionRequest) (*FinishSessionResponse, error) {
	session, _, err := s.loadOwnedSession(ctx, sessionID, req.ExamineeIdentifier)
	if err != nil {
		return nil, err
	}

	closed, err := s.sessionRepo.Finish(ctx, sessionID, s.now())
	if err != nil {
		return nil, fmt.Errorf("finish session: %w", err)
	}
	if !closed {
		return &FinishSessionResponse{
			SessionID:  sessionID,
			Status:     StatusAlreadyFinished,
			TotalScore: session.TotalScore,
			EndTime:    session.EndTime,
		}, nil
	}

	if err := s.scheduler.Cancel(ctx, sessionID); err != nil {
		log.Warn().Err(err).Int64("session_id", sessionID).Msg("cancelling auto-submit failed")
	}

	session, err = s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("reload session: %w", err)
	}

	s.monitor.Publish(ctx, MonitorEvent{
		Type:         EventSessionFinished,
		SessionID:    sessionID,
		AssessmentID: session.AssessmentID,
		TotalScore:   session.TotalScore,
	})

	log.Info().
		Int64("session_id", sessionID).
		Int("total_score", session.TotalScore).
		Msg("session finished")

	return &FinishSessionResponse{
		SessionID:  sessionID,
		Status:     StatusFinished,
		TotalScore: session.TotalScore,
		EndTime:    session.EndTime,
	}, nil
}

// loadOwnedSession loads a session and its assessment, verifying the
// caller's identifier matches the session owner.
func (s *SessionService) loadOwnedSession(ctx context.Context, sessionID int64, identifier string) (*model.AssessmentSession, *model.Assessment, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrSessionNotFound
		}
		return nil, nil, fmt.Errorf("load session: %w", err)
	}

	examinee, err := s.examineeRepo.GetByID(ctx, session.ExamineeID)
	if err != nil {
		return nil, nil, fmt.Errorf("load examinee: %w", err)
	}
	if examinee.Identifier != identifier {
		return nil, nil, ErrIdentityMismatch
	}

	assessment, err := s.assessmentRepo.GetByID(ctx, session.AssessmentID)
	if err != nil {
		return nil, nil, fmt.Errorf("load assessment: %w", err)
	}
	return session, assessment, nil
}
