package model

import "time"

// Assessment is one scheduled exam instance: a question bank plus an
// admission window. Boundaries are stored and compared in UTC.
type Assessment struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	QuestionBankID int64     `json:"question_bank_id"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CreateAssessmentRequest is the payload for scheduling an assessment.
type CreateAssessmentRequest struct {
	Title          string    `json:"title" binding:"required,min=1,max=255"`
	QuestionBankID int64     `json:"question_bank_id" binding:"required"`
	StartTime      time.Time `json:"start_time" binding:"required"`
	EndTime        time.Time `json:"end_time" binding:"required,gtfield=StartTime"`
}

// UpdateAssessmentRequest is the payload for rescheduling an assessment.
type UpdateAssessmentRequest struct {
	Title     string     `json:"title" binding:"omitempty,min=1,max=255"`
	StartTime *time.Time `json:"start_time" binding:"omitempty"`
	EndTime   *time.Time `json:"end_time" binding:"omitempty"`
}
