package model

// BlueprintOption is a client-safe option: id and text, no correctness flag.
type BlueprintOption struct {
	ID         int64  `json:"id"`
	OptionText string `json:"option_text"`
}

// BlueprintQuestion is a client-safe question. SelectedOptionIDs and
// ScoreAwarded are nil on a fresh session and populated on resume for
// questions the examinee already answered.
type BlueprintQuestion struct {
	ID                int64             `json:"id"`
	SceneIdentifier   string            `json:"scene_identifier"`
	Prompt            string            `json:"prompt"`
	QuestionType      QuestionType      `json:"question_type"`
	Score             int               `json:"score"`
	ImageURL          *string           `json:"image_url,omitempty"`
	Options           []BlueprintOption `json:"options"`
	SelectedOptionIDs []int64           `json:"selected_option_ids,omitempty"`
	ScoreAwarded      *int              `json:"score_awarded,omitempty"`
}

// BlueprintProcedure is one ordered procedure of the rendered blueprint.
type BlueprintProcedure struct {
	ID        int64               `json:"id"`
	Name      string              `json:"name"`
	Questions []BlueprintQuestion `json:"questions"`
}

// AnsweredQuestionInfo is the typed snapshot of everything the scoring
// engine needs about one question, read transactionally close to the
// scoring moment. OptionIDs is the full option id set for the question;
// CorrectOptionIDs the subset flagged correct.
type AnsweredQuestionInfo struct {
	QuestionID       int64
	ProcedureID      int64
	QuestionType     QuestionType
	Score            int
	OptionIDs        []int64
	CorrectOptionIDs []int64
}
