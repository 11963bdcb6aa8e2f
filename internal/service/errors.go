package service

import "errors"

// Domain errors. Handlers map these to HTTP statuses and response codes;
// services never touch HTTP.
var (
	ErrAssessmentNotFound   = errors.New("assessment not found")
	ErrSessionNotFound      = errors.New("session not found")
	ErrQuestionNotFound     = errors.New("question not found")
	ErrBankNotFound         = errors.New("question bank not found")
	ErrPlatformNotFound     = errors.New("platform not found")
	ErrProcedureNotFound    = errors.New("procedure not found")
	ErrAssessmentNotStarted = errors.New("assessment has not started yet")
	ErrAssessmentEnded      = errors.New("assessment has already ended")
	ErrAlreadyCompleted     = errors.New("examinee already completed this assessment")
	ErrIdentityMismatch     = errors.New("examinee identifier does not match session owner")
	ErrSessionFinished      = errors.New("session is already finished")
	ErrDuplicateAnswer      = errors.New("question already answered in this session")
	ErrInvalidOption        = errors.New("selected options do not belong to the question")
	ErrInvalidWindow        = errors.New("assessment end time must be after start time")
	ErrInvalidCredentials   = errors.New("invalid credentials")
)
