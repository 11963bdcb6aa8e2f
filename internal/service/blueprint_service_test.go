package service

import (
	"testing"

	"github.com/stemsi/skillcheck-backend/internal/model"
)

func strPtr(s string) *string { return &s }

func TestRenderStripsCorrectnessFlags(t *testing.T) {
	tree := []model.Procedure{
		{
			ID:   1,
			Name: "Station A",
			Questions: []model.Question{
				{
					ID:              10,
					Prompt:          "Which guard?",
					ImageURL:        strPtr("https://cdn.example/guard.png"),
					QuestionType:    model.QuestionTypeSingleChoice,
					SceneIdentifier: "guard_panel",
					Score:           10,
					Options: []model.Option{
						{ID: 100, OptionText: "Left", IsCorrect: false},
						{ID: 101, OptionText: "Right", IsCorrect: true},
					},
				},
			},
		},
	}

	bp := render(tree)
	if len(bp) != 1 || len(bp[0].Questions) != 1 {
		t.Fatalf("unexpected shape: %+v", bp)
	}

	q := bp[0].Questions[0]
	if q.SceneIdentifier != "guard_panel" || q.Score != 10 || q.ImageURL == nil {
		t.Errorf("question fields lost: %+v", q)
	}
	if len(q.Options) != 2 {
		t.Fatalf("options = %d, want 2", len(q.Options))
	}
	for _, o := range q.Options {
		if o.OptionText == "" || o.ID == 0 {
			t.Errorf("option fields lost: %+v", o)
		}
	}
	if q.SelectedOptionIDs != nil || q.ScoreAwarded != nil {
		t.Error("fresh blueprint must not carry answer annotations")
	}
}

func TestRenderPreservesOrderAndEmptyNodes(t *testing.T) {
	tree := []model.Procedure{
		{ID: 1, Name: "First"},
		{ID: 2, Name: "Second", Questions: []model.Question{
			{ID: 20, QuestionType: model.QuestionTypeMultipleChoice, Score: 5},
		}},
	}

	bp := render(tree)
	if len(bp) != 2 {
		t.Fatalf("procedures = %d, want 2", len(bp))
	}
	if bp[0].ID != 1 || bp[1].ID != 2 {
		t.Errorf("order not preserved: %d, %d", bp[0].ID, bp[1].ID)
	}
	if bp[0].Questions == nil || len(bp[0].Questions) != 0 {
		t.Errorf("empty procedure should render an empty question list, got %v", bp[0].Questions)
	}
}

func TestRenderEmptyTree(t *testing.T) {
	bp := render(nil)
	if bp == nil || len(bp) != 0 {
		t.Errorf("render(nil) = %v, want empty non-nil slice", bp)
	}
}
