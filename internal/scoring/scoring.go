package scoring

import (
	"fmt"
	"math"

	"github.com/stemsi/skillcheck-backend/internal/model"
)

// PartialCreditPolicy decides the score for an under-selected but not
// incorrect multiple-choice submission. It is a business policy, not a law
// of scoring, so it is injected rather than hard-coded.
type PartialCreditPolicy interface {
	// Partial returns the awarded score given the question's full score and
	// the sizes of the submitted and correct option sets. Only called when
	// the submitted set is a proper subset of the correct set.
	Partial(fullScore, submitted, correct int) int
}

// RoundedProportional awards round(fullScore × submitted ⁄ correct),
// half-up. This is the default policy.
type RoundedProportional struct{}

func (RoundedProportional) Partial(fullScore, submitted, correct int) int {
	return int(math.Round(float64(fullScore) * float64(submitted) / float64(correct)))
}

// Result is the outcome of scoring one submission. IsCorrect is true only
// for exact full-credit matches; partial credit is never "correct".
type Result struct {
	ScoreAwarded int
	IsCorrect    bool
}

// Engine scores submissions. It is a pure function of its inputs: it holds
// no state beyond the partial-credit policy.
type Engine struct {
	partial PartialCreditPolicy
}

// NewEngine creates a scoring engine. A nil policy selects
// RoundedProportional.
func NewEngine(policy PartialCreditPolicy) *Engine {
	if policy == nil {
		policy = RoundedProportional{}
	}
	return &Engine{partial: policy}
}

// Score computes the awarded score for one submission.
//
//   - single_choice: full score iff the submitted set equals the correct
//     set, else 0.
//   - multiple_choice: any wrong pick voids the question (0); exact match
//     earns the full score; a proper subset of the correct set earns
//     partial credit per the policy.
//   - deduction_single_choice: a correct answer costs nothing (0 awarded);
//     an incorrect answer deducts the question's full point value.
func (e *Engine) Score(qt model.QuestionType, fullScore int, correctIDs, submittedIDs []int64) (Result, error) {
	correct := toSet(correctIDs)
	submitted := toSet(submittedIDs)

	switch qt {
	case model.QuestionTypeSingleChoice:
		if setsEqual(submitted, correct) {
			return Result{ScoreAwarded: fullScore, IsCorrect: true}, nil
		}
		return Result{}, nil

	case model.QuestionTypeMultipleChoice:
		if !isSubset(submitted, correct) {
			return Result{}, nil
		}
		if setsEqual(submitted, correct) {
			return Result{ScoreAwarded: fullScore, IsCorrect: true}, nil
		}
		return Result{ScoreAwarded: e.partial.Partial(fullScore, len(submitted), len(correct))}, nil

	case model.QuestionTypeDeductionSingleChoice:
		if setsEqual(submitted, correct) {
			return Result{IsCorrect: true}, nil
		}
		return Result{ScoreAwarded: -fullScore}, nil
	}

	return Result{}, fmt.Errorf("unknown question type %q", qt)
}

func toSet(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func setsEqual(a, b map[int64]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	return isSubset(a, b)
}

// isSubset reports whether every element of a is in b.
func isSubset(a, b map[int64]struct{}) bool {
	for id := range a {
		if _, ok := b[id]; !ok {
			return false
		}
	}
	return true
}
