package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stemsi/skillcheck-backend/internal/model"
)

func storedAssessment() *model.Assessment {
	return &model.Assessment{
		ID:             1,
		Title:          "Lathe Basics",
		QuestionBankID: 2,
		StartTime:      time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC),
		EndTime:        time.Date(2026, 3, 10, 17, 0, 0, 0, time.UTC),
	}
}

func TestApplyAssessmentUpdateTitleOnly(t *testing.T) {
	a := storedAssessment()

	if err := applyAssessmentUpdate(a, &model.UpdateAssessmentRequest{Title: "Lathe Advanced"}); err != nil {
		t.Fatalf("applyAssessmentUpdate: %v", err)
	}
	if a.Title != "Lathe Advanced" {
		t.Errorf("title = %q, want Lathe Advanced", a.Title)
	}
	if !a.StartTime.Equal(storedAssessment().StartTime) || !a.EndTime.Equal(storedAssessment().EndTime) {
		t.Error("omitted timestamps were not preserved")
	}
}

func TestApplyAssessmentUpdateKeepsOmittedTitle(t *testing.T) {
	a := storedAssessment()
	newEnd := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)

	if err := applyAssessmentUpdate(a, &model.UpdateAssessmentRequest{EndTime: &newEnd}); err != nil {
		t.Fatalf("applyAssessmentUpdate: %v", err)
	}
	if a.Title != "Lathe Basics" {
		t.Errorf("omitted title was blanked to %q", a.Title)
	}
	if !a.EndTime.Equal(newEnd) {
		t.Errorf("end time = %v, want %v", a.EndTime, newEnd)
	}
}

func TestApplyAssessmentUpdateNormalizesToUTC(t *testing.T) {
	a := storedAssessment()
	loc := time.FixedZone("UTC+7", 7*3600)
	newStart := time.Date(2026, 3, 10, 15, 0, 0, 0, loc)

	if err := applyAssessmentUpdate(a, &model.UpdateAssessmentRequest{StartTime: &newStart}); err != nil {
		t.Fatalf("applyAssessmentUpdate: %v", err)
	}
	if a.StartTime.Location() != time.UTC {
		t.Errorf("start time location = %v, want UTC", a.StartTime.Location())
	}
}

func TestApplyAssessmentUpdateRejectsInvertedWindow(t *testing.T) {
	a := storedAssessment()
	badStart := a.EndTime.Add(time.Hour)

	err := applyAssessmentUpdate(a, &model.UpdateAssessmentRequest{StartTime: &badStart})
	if !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("err = %v, want ErrInvalidWindow", err)
	}

	// Moving only the end before the stored start must fail the same way.
	a = storedAssessment()
	badEnd := a.StartTime.Add(-time.Minute)
	err = applyAssessmentUpdate(a, &model.UpdateAssessmentRequest{EndTime: &badEnd})
	if !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("err = %v, want ErrInvalidWindow", err)
	}
}
