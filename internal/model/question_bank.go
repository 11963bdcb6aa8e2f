package model

import "time"

// QuestionBank is a hierarchical bank of procedures and questions owned by
// one platform. Assessments reference exactly one bank.
type QuestionBank struct {
	ID         int64     `json:"id"`
	PlatformID int64     `json:"platform_id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Procedure is a work step / station inside a question bank, e.g. "lathe
// station A". Each procedure groups an ordered set of questions.
type Procedure struct {
	ID             int64      `json:"id"`
	QuestionBankID int64      `json:"question_bank_id"`
	Name           string     `json:"name"`
	Questions      []Question `json:"questions,omitempty"`
}

// QuestionType is the closed set of supported question kinds. Scoring is
// dispatched by exhaustive switch, so adding a type is a compile-time change.
type QuestionType string

const (
	QuestionTypeSingleChoice          QuestionType = "single_choice"
	QuestionTypeMultipleChoice        QuestionType = "multiple_choice"
	QuestionTypeDeductionSingleChoice QuestionType = "deduction_single_choice"
)

// Valid reports whether t is a known question type.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionTypeSingleChoice, QuestionTypeMultipleChoice, QuestionTypeDeductionSingleChoice:
		return true
	}
	return false
}

// Question belongs to a procedure. SceneIdentifier is the unique hook the
// 3D client uses to attach the question to an object in the scene.
type Question struct {
	ID              int64        `json:"id"`
	ProcedureID     int64        `json:"procedure_id"`
	Prompt          string       `json:"prompt"`
	ImageURL        *string      `json:"image_url,omitempty"`
	QuestionType    QuestionType `json:"question_type"`
	SceneIdentifier string       `json:"scene_identifier"`
	Score           int          `json:"score"`
	Options         []Option     `json:"options,omitempty"`
}

// Option is one selectable answer. IsCorrect never leaves the admin surface.
type Option struct {
	ID         int64  `json:"id"`
	QuestionID int64  `json:"question_id"`
	OptionText string `json:"option_text"`
	IsCorrect  bool   `json:"is_correct"`
}

// CreateQuestionBankRequest is the payload for creating a question bank.
type CreateQuestionBankRequest struct {
	Name       string `json:"name" binding:"required,min=1,max=255"`
	PlatformID int64  `json:"platform_id" binding:"required"`
}

// UpdateQuestionBankRequest is the payload for renaming a question bank.
type UpdateQuestionBankRequest struct {
	Name string `json:"name" binding:"required,min=1,max=255"`
}

// CreateProcedureRequest is the payload for adding a procedure to a bank.
type CreateProcedureRequest struct {
	Name string `json:"name" binding:"required,min=1,max=255"`
}

// OptionInput is one option in a question create/replace payload.
type OptionInput struct {
	OptionText string `json:"option_text" binding:"required,min=1"`
	IsCorrect  bool   `json:"is_correct"`
}

// CreateQuestionRequest is the payload for adding a question to a procedure.
type CreateQuestionRequest struct {
	Prompt          string        `json:"prompt" binding:"required,min=1"`
	ImageURL        *string       `json:"image_url" binding:"omitempty,max=512"`
	QuestionType    string        `json:"question_type" binding:"required,oneof=single_choice multiple_choice deduction_single_choice"`
	SceneIdentifier string        `json:"scene_identifier" binding:"required,min=1,max=100"`
	Score           int           `json:"score" binding:"required,min=1"`
	Options         []OptionInput `json:"options" binding:"required,min=2,dive"`
}
