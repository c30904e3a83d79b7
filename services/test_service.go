package services

import (
	"errors"
	"fmt"

	"testlab/models"
	"testlab/store"
)

type TestService struct {
	store store.Store
}

func NewTestService(st store.Store) *TestService {
	return &TestService{store: st}
}

type CreateTestRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
	TimeLimit   *int   `json:"time_limit" binding:"omitempty,min=1"`
}

type UpdateTestRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
	TimeLimit   *int   `json:"time_limit" binding:"omitempty,min=1"`
}

type SaveQuestionRequest struct {
	Type    string              `json:"type" binding:"required,oneof=MULTIPLE_CHOICE TEXT"`
	Text    string              `json:"text" binding:"required"`
	Order   int                 `json:"order" binding:"required"`
	Options []SaveOptionRequest `json:"options" binding:"omitempty,max=6,dive"`
}

type SaveOptionRequest struct {
	Text      string `json:"text" binding:"required"`
	IsCorrect bool   `json:"is_correct"`
	Order     int    `json:"order" binding:"required"`
}

func (s *TestService) CreateTest(req *CreateTestRequest) (*models.Test, error) {
	test := &models.Test{
		Title:       req.Title,
		Description: req.Description,
		IsActive:    true,
		TimeLimit:   req.TimeLimit,
	}
	if req.IsActive != nil {
		test.IsActive = *req.IsActive
	}

	if err := s.store.CreateTest(test); err != nil {
		return nil, err
	}
	return test, nil
}

func (s *TestService) ListTests() ([]models.Test, error) {
	return s.store.ListTests()
}

func (s *TestService) GetTest(testID uint) (*models.Test, error) {
	return s.store.FindTestWithQuestions(testID)
}

func (s *TestService) UpdateTest(testID uint, req *UpdateTestRequest) (*models.Test, error) {
	test, err := s.store.FindTestWithQuestions(testID)
	if err != nil {
		return nil, err
	}

	if req.Title != "" {
		test.Title = req.Title
	}
	if req.Description != "" {
		test.Description = req.Description
	}
	if req.IsActive != nil {
		test.IsActive = *req.IsActive
	}
	if req.TimeLimit != nil {
		test.TimeLimit = req.TimeLimit
	}

	if err := s.store.SaveTest(test); err != nil {
		return nil, err
	}
	return s.store.FindTestWithQuestions(testID)
}

// DeleteTest removes the test and, irreversibly, everything that references
// it: questions, options, attempts and their answers.
func (s *TestService) DeleteTest(testID uint) error {
	return s.store.DeleteTestCascade(testID)
}

// ReplaceQuestions swaps the test's entire question set in one transaction.
// Multiple-choice questions need at least two options and at most one
// flagged correct; text questions carry no options.
func (s *TestService) ReplaceQuestions(testID uint, reqs []SaveQuestionRequest) error {
	questions := make([]models.Question, 0, len(reqs))
	for _, qReq := range reqs {
		question := models.Question{
			Type:  qReq.Type,
			Text:  qReq.Text,
			Order: qReq.Order,
		}

		if qReq.Type == models.QuestionMultipleChoice {
			if len(qReq.Options) < 2 {
				return fmt.Errorf("question %d: multiple choice questions need at least two options", qReq.Order)
			}
			correctCount := 0
			for _, optReq := range qReq.Options {
				if optReq.IsCorrect {
					correctCount++
				}
			}
			if correctCount > 1 {
				return fmt.Errorf("question %d: at most one option may be flagged correct", qReq.Order)
			}
			for _, optReq := range qReq.Options {
				question.Options = append(question.Options, models.Option{
					Text:      optReq.Text,
					IsCorrect: optReq.IsCorrect,
					Order:     optReq.Order,
				})
			}
		} else if len(qReq.Options) > 0 {
			return errors.New("text questions cannot have options")
		}

		questions = append(questions, question)
	}

	return s.store.ReplaceQuestions(testID, questions)
}

// AvailableTests is the student catalog: active tests the user has not
// attempted yet, newest first.
func (s *TestService) AvailableTests(userID uint) ([]models.Test, error) {
	return s.store.ListActiveTestsNotAttempted(userID)
}
