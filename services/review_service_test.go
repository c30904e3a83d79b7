package services

import (
	"errors"
	"strconv"
	"testing"

	"testlab/models"
	"testlab/store"
)

// submitMixedAttempt seeds a test with 2 multiple-choice questions (the first
// answered correctly, the second wrong) and 1 text question, submits it and
// returns the store, the test and the attempt. Initial score: 50.
func submitMixedAttempt(t *testing.T, userID uint) (*store.MemoryStore, *models.Test, *models.Attempt) {
	t.Helper()
	st := store.NewMemoryStore()
	svc := NewAttemptService(st, nil)

	test := seedTest(t, st,
		mcQuestion(1, 0, "A", "B"),
		mcQuestion(2, 0, "C", "D"),
		textQuestion(3),
	)

	attempt, err := svc.Submit(userID, test.ID, map[uint]string{
		questionID(t, test, 1): strconv.FormatUint(uint64(optionID(t, test, 1, 1)), 10), // correct
		questionID(t, test, 2): strconv.FormatUint(uint64(optionID(t, test, 2, 2)), 10), // wrong
		questionID(t, test, 3): "packets are routed hop by hop",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if attempt.Score == nil || *attempt.Score != 50 {
		t.Fatalf("initial score = %v, want 50", fmtScore(attempt.Score))
	}
	return st, test, attempt
}

func findAnswer(t *testing.T, st *store.MemoryStore, attemptID, questionID uint) models.Answer {
	t.Helper()
	answers, err := st.ListAnswersForAttempt(attemptID)
	if err != nil {
		t.Fatalf("ListAnswersForAttempt: %v", err)
	}
	for _, a := range answers {
		if a.QuestionID == questionID {
			return a
		}
	}
	t.Fatalf("no answer for question %d", questionID)
	return models.Answer{}
}

func TestOverrideAnswer_TextStaysOutsideScoreFormula(t *testing.T) {
	st, test, attempt := submitMixedAttempt(t, 7)
	svc := NewReviewService(st)

	textAnswer := findAnswer(t, st, attempt.ID, questionID(t, test, 3))
	if textAnswer.IsCorrect != nil {
		t.Fatalf("text answer graded before review")
	}

	score, err := svc.OverrideAnswer(attempt.ID, textAnswer.ID, true)
	if err != nil {
		t.Fatalf("OverrideAnswer: %v", err)
	}

	// The flag is stored for the review screen, but text questions never
	// enter the multiple-choice score formula: still 1 of 2.
	if score == nil || *score != 50 {
		t.Fatalf("score after text override = %v, want 50", fmtScore(score))
	}

	updated := findAnswer(t, st, attempt.ID, questionID(t, test, 3))
	if updated.IsCorrect == nil || !*updated.IsCorrect {
		t.Errorf("text answer flag not persisted")
	}
	stored, _ := st.FindAttempt(7, test.ID)
	if stored.Score == nil || *stored.Score != 50 {
		t.Errorf("persisted score = %v, want 50", fmtScore(stored.Score))
	}
}

func TestOverrideAnswer_ReflagMultipleChoice(t *testing.T) {
	st, test, attempt := submitMixedAttempt(t, 7)
	svc := NewReviewService(st)

	wrong := findAnswer(t, st, attempt.ID, questionID(t, test, 2))
	score, err := svc.OverrideAnswer(attempt.ID, wrong.ID, true)
	if err != nil {
		t.Fatalf("OverrideAnswer: %v", err)
	}
	if score == nil || *score != 100 {
		t.Fatalf("score after re-flag = %v, want 100", fmtScore(score))
	}

	// And back down again.
	correct := findAnswer(t, st, attempt.ID, questionID(t, test, 1))
	score, err = svc.OverrideAnswer(attempt.ID, correct.ID, false)
	if err != nil {
		t.Fatalf("OverrideAnswer: %v", err)
	}
	if score == nil || *score != 50 {
		t.Fatalf("score after unflag = %v, want 50", fmtScore(score))
	}
}

func TestOverrideAnswer_TextOnlyTestKeepsNilScore(t *testing.T) {
	st := store.NewMemoryStore()
	attempts := NewAttemptService(st, nil)
	reviews := NewReviewService(st)

	test := seedTest(t, st, textQuestion(1))
	attempt, err := attempts.Submit(7, test.ID, map[uint]string{
		questionID(t, test, 1): "a thorough essay",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	answer := findAnswer(t, st, attempt.ID, questionID(t, test, 1))
	score, err := reviews.OverrideAnswer(attempt.ID, answer.ID, true)
	if err != nil {
		t.Fatalf("OverrideAnswer: %v", err)
	}
	if score != nil {
		t.Fatalf("score = %d, want nil: text questions have no automatic score", *score)
	}
}

func TestOverrideAnswer_AnswerNotFound(t *testing.T) {
	st, test, attempt := submitMixedAttempt(t, 7)
	svc := NewReviewService(st)

	// Nonexistent answer id.
	if _, err := svc.OverrideAnswer(attempt.ID, 9999, true); !errors.Is(err, store.ErrAnswerNotFound) {
		t.Fatalf("error = %v, want ErrAnswerNotFound", err)
	}

	// An answer that exists but belongs to another student's attempt.
	other, err := NewAttemptService(st, nil).Submit(8, test.ID, map[uint]string{})
	if err != nil {
		t.Fatalf("Submit for second user: %v", err)
	}
	foreign := findAnswer(t, st, other.ID, questionID(t, test, 1))

	if _, err := svc.OverrideAnswer(attempt.ID, foreign.ID, true); !errors.Is(err, store.ErrAnswerNotFound) {
		t.Fatalf("error = %v, want ErrAnswerNotFound for foreign answer", err)
	}

	// The foreign answer is untouched.
	unchanged := findAnswer(t, st, other.ID, questionID(t, test, 1))
	if unchanged.IsCorrect == nil || *unchanged.IsCorrect {
		t.Errorf("foreign answer was modified by the rejected override")
	}
}

func TestOverrideAnswer_AttemptNotFound(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewReviewService(st)

	if _, err := svc.OverrideAnswer(42, 1, true); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}
