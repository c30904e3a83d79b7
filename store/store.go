package store

import (
	"errors"

	"testlab/models"
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrTestNotFound     = errors.New("test not found")
	ErrAnswerNotFound   = errors.New("answer not found")
	ErrDuplicateAttempt = errors.New("attempt already recorded for this user and test")
	ErrEmailTaken       = errors.New("email already registered")
)

// Store is the record store the engine runs against. The production
// implementation is backed by Postgres through gorm; tests use the in-memory
// implementation. CreateAttemptWithAnswers is the one write whose atomicity
// and uniqueness behavior the attempt engine depends on.
type Store interface {
	// Users
	CreateUser(user *models.User) error
	FindUserByEmail(email string) (*models.User, error)
	FindUserByID(id uint) (*models.User, error)

	// Tests, questions, options
	CreateTest(test *models.Test) error
	SaveTest(test *models.Test) error
	FindTestWithQuestions(testID uint) (*models.Test, error)
	ListTests() ([]models.Test, error)
	ListActiveTestsNotAttempted(userID uint) ([]models.Test, error)
	ReplaceQuestions(testID uint, questions []models.Question) error
	DeleteTestCascade(testID uint) error

	// Attempts and answers
	FindAttempt(userID, testID uint) (*models.Attempt, error)
	FindAttemptDetail(attemptID uint) (*models.Attempt, error)
	ListAttempts() ([]models.Attempt, error)
	ListAttemptsForUser(userID uint) ([]models.Attempt, error)
	CreateAttemptWithAnswers(attempt *models.Attempt, answers []models.Answer) error
	ListAnswersForAttempt(attemptID uint) ([]models.Answer, error)
	UpdateAnswerCorrect(answerID uint, isCorrect bool) error
	UpdateAttemptScore(attemptID uint, score *int) error
}
