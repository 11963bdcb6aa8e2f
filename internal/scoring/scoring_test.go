package scoring

import (
	"testing"

	"github.com/stemsi/skillcheck-backend/internal/model"
)

func TestScoreSingleChoice(t *testing.T) {
	e := NewEngine(nil)

	tests := []struct {
		name      string
		correct   []int64
		submitted []int64
		wantScore int
		wantOK    bool
	}{
		{"exact match", []int64{3}, []int64{3}, 10, true},
		{"wrong option", []int64{3}, []int64{4}, 0, false},
		{"extra option voids", []int64{3}, []int64{3, 4}, 0, false},
		{"empty submission", []int64{3}, nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Score(model.QuestionTypeSingleChoice, 10, tt.correct, tt.submitted)
			if err != nil {
				t.Fatalf("Score: %v", err)
			}
			if got.ScoreAwarded != tt.wantScore || got.IsCorrect != tt.wantOK {
				t.Errorf("got (%d, %t), want (%d, %t)", got.ScoreAwarded, got.IsCorrect, tt.wantScore, tt.wantOK)
			}
		})
	}
}

func TestScoreMultipleChoice(t *testing.T) {
	e := NewEngine(nil)

	tests := []struct {
		name      string
		fullScore int
		correct   []int64
		submitted []int64
		wantScore int
		wantOK    bool
	}{
		{"exact match", 10, []int64{2, 3}, []int64{2, 3}, 10, true},
		{"exact match different order", 10, []int64{2, 3}, []int64{3, 2}, 10, true},
		{"proper subset half", 10, []int64{2, 3}, []int64{2}, 5, false},
		{"proper subset rounds up", 10, []int64{1, 2, 3}, []int64{1, 2}, 7, false},
		{"proper subset rounds down", 10, []int64{1, 2, 3}, []int64{1}, 3, false},
		{"wrong pick voids", 10, []int64{2, 3}, []int64{2, 4}, 0, false},
		{"all wrong", 10, []int64{2, 3}, []int64{4, 5}, 0, false},
		{"superset voids", 10, []int64{2, 3}, []int64{2, 3, 4}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Score(model.QuestionTypeMultipleChoice, tt.fullScore, tt.correct, tt.submitted)
			if err != nil {
				t.Fatalf("Score: %v", err)
			}
			if got.ScoreAwarded != tt.wantScore || got.IsCorrect != tt.wantOK {
				t.Errorf("got (%d, %t), want (%d, %t)", got.ScoreAwarded, got.IsCorrect, tt.wantScore, tt.wantOK)
			}
		})
	}
}

func TestScoreDeductionSingleChoice(t *testing.T) {
	e := NewEngine(nil)

	t.Run("correct costs nothing", func(t *testing.T) {
		got, err := e.Score(model.QuestionTypeDeductionSingleChoice, 5, []int64{7}, []int64{7})
		if err != nil {
			t.Fatalf("Score: %v", err)
		}
		if got.ScoreAwarded != 0 || !got.IsCorrect {
			t.Errorf("got (%d, %t), want (0, true)", got.ScoreAwarded, got.IsCorrect)
		}
	})

	t.Run("wrong deducts full value", func(t *testing.T) {
		got, err := e.Score(model.QuestionTypeDeductionSingleChoice, 5, []int64{7}, []int64{8})
		if err != nil {
			t.Fatalf("Score: %v", err)
		}
		if got.ScoreAwarded != -5 || got.IsCorrect {
			t.Errorf("got (%d, %t), want (-5, false)", got.ScoreAwarded, got.IsCorrect)
		}
	})
}

func TestScoreUnknownType(t *testing.T) {
	e := NewEngine(nil)
	if _, err := e.Score(model.QuestionType("essay"), 10, []int64{1}, []int64{1}); err == nil {
		t.Fatal("expected error for unknown question type")
	}
}

type fixedPolicy struct{ value int }

func (p fixedPolicy) Partial(fullScore, submitted, correct int) int { return p.value }

func TestScoreCustomPartialPolicy(t *testing.T) {
	e := NewEngine(fixedPolicy{value: 1})

	got, err := e.Score(model.QuestionTypeMultipleChoice, 10, []int64{2, 3}, []int64{2})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if got.ScoreAwarded != 1 {
		t.Errorf("ScoreAwarded = %d, want policy value 1", got.ScoreAwarded)
	}
}
