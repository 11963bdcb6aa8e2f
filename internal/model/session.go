package model

import "time"

// AssessmentSession is one examinee's attempt at one assessment. A session
// is ACTIVE while EndTime is nil and FINISHED once it is set; finished
// sessions are never mutated again. At most one active session may exist
// per (assessment, examinee) pair, enforced by a partial unique index.
type AssessmentSession struct {
	ID           int64      `json:"id"`
	AssessmentID int64      `json:"assessment_id"`
	ExamineeID   int64      `json:"examinee_id"`
	TotalScore   int        `json:"total_score"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      *time.Time `json:"end_time,omitempty"`
}

// Finished reports whether the session reached its terminal state.
func (s *AssessmentSession) Finished() bool {
	return s.EndTime != nil
}

// AnswerLog is the immutable record of one scored submission. At most one
// log may exist per (session, question) pair.
type AnswerLog struct {
	ID                int64     `json:"id"`
	SessionID         int64     `json:"session_id"`
	QuestionID        int64     `json:"question_id"`
	SelectedOptionIDs []int64   `json:"selected_option_ids"`
	ScoreAwarded      int       `json:"score_awarded"`
	AnsweredAt        time.Time `json:"answered_at"`
}

// StartSessionRequest is the walk-up payload for starting or resuming a
// session. The identifier is the station/seat token, not a login.
type StartSessionRequest struct {
	ExamineeIdentifier string `json:"examinee_identifier" binding:"required,min=1,max=100"`
}

// SubmitAnswerRequest is the payload for answering one question.
type SubmitAnswerRequest struct {
	ExamineeIdentifier string  `json:"examinee_identifier" binding:"required,min=1,max=100"`
	ProcedureID        int64   `json:"procedure_id" binding:"required"`
	QuestionID         int64   `json:"question_id" binding:"required"`
	SelectedOptionIDs  []int64 `json:"selected_option_ids" binding:"required,min=1"`
}

// FinishSessionRequest is the payload for closing a session.
type FinishSessionRequest struct {
	ExamineeIdentifier string `json:"examinee_identifier" binding:"required,min=1,max=100"`
}
