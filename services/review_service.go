package services

import (
	"testlab/models"
	"testlab/store"
)

type ReviewService struct {
	store store.Store
}

func NewReviewService(st store.Store) *ReviewService {
	return &ReviewService{store: st}
}

func (s *ReviewService) ListResults() ([]models.Attempt, error) {
	return s.store.ListAttempts()
}

// GetAttemptDetail loads an attempt with its user, the test's full question
// set (correct options included) and all recorded answers, for the admin
// review screen.
func (s *ReviewService) GetAttemptDetail(attemptID uint) (*models.Attempt, error) {
	return s.store.FindAttemptDetail(attemptID)
}

// OverrideAnswer flips an answer's correctness flag and recomputes the
// attempt score from the stored flags. Meant for grading text answers, but
// multiple-choice answers can be re-flagged the same way. The answer must
// belong to the stated attempt.
func (s *ReviewService) OverrideAnswer(attemptID, answerID uint, isCorrect bool) (*int, error) {
	attempt, err := s.store.FindAttemptDetail(attemptID)
	if err != nil {
		return nil, err
	}

	owned := false
	for _, a := range attempt.Answers {
		if a.ID == answerID {
			owned = true
			break
		}
	}
	if !owned {
		return nil, store.ErrAnswerNotFound
	}

	if err := s.store.UpdateAnswerCorrect(answerID, isCorrect); err != nil {
		return nil, err
	}

	answers, err := s.store.ListAnswersForAttempt(attemptID)
	if err != nil {
		return nil, err
	}
	test, err := s.store.FindTestWithQuestions(attempt.TestID)
	if err != nil {
		return nil, err
	}

	// The score formula covers multiple-choice questions only. Manually
	// graded text answers keep their flag for the review screen but stay
	// outside both the numerator and the denominator.
	multipleChoice := make(map[uint]bool, len(test.Questions))
	multipleChoiceCount := 0
	for _, q := range test.Questions {
		if q.Type == models.QuestionMultipleChoice {
			multipleChoice[q.ID] = true
			multipleChoiceCount++
		}
	}

	mcAnswers := make([]models.Answer, 0, len(answers))
	for _, a := range answers {
		if multipleChoice[a.QuestionID] {
			mcAnswers = append(mcAnswers, a)
		}
	}

	score := ComputeScore(mcAnswers, multipleChoiceCount)
	if err := s.store.UpdateAttemptScore(attemptID, score); err != nil {
		return nil, err
	}

	return score, nil
}
