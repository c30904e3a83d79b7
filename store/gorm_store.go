package store

import (
	"errors"

	"testlab/models"

	"gorm.io/gorm"
)

type gormStore struct {
	db *gorm.DB
}

// NewGormStore wraps a gorm connection opened with TranslateError enabled so
// unique-index violations surface as gorm.ErrDuplicatedKey.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) CreateUser(user *models.User) error {
	if err := s.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (s *gormStore) FindUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *gormStore) FindUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *gormStore) CreateTest(test *models.Test) error {
	return s.db.Create(test).Error
}

func (s *gormStore) SaveTest(test *models.Test) error {
	return s.db.Save(test).Error
}

func (s *gormStore) FindTestWithQuestions(testID uint) (*models.Test, error) {
	var test models.Test
	err := s.db.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.order")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("options.order")
		}).
		First(&test, testID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTestNotFound
		}
		return nil, err
	}
	return &test, nil
}

func (s *gormStore) ListTests() ([]models.Test, error) {
	var tests []models.Test
	err := s.db.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.order")
		}).
		Order("created_at DESC").
		Find(&tests).Error
	return tests, err
}

func (s *gormStore) ListActiveTestsNotAttempted(userID uint) ([]models.Test, error) {
	attempted := s.db.Model(&models.Attempt{}).Select("test_id").Where("user_id = ?", userID)

	var tests []models.Test
	err := s.db.
		Where("is_active = ?", true).
		Where("id NOT IN (?)", attempted).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.order")
		}).
		Order("created_at DESC").
		Find(&tests).Error
	return tests, err
}

func (s *gormStore) ReplaceQuestions(testID uint, questions []models.Question) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var test models.Test
		if err := tx.First(&test, testID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTestNotFound
			}
			return err
		}

		questionIDs := tx.Model(&models.Question{}).Select("id").Where("test_id = ?", testID)
		if err := tx.Where("question_id IN (?)", questionIDs).Delete(&models.Option{}).Error; err != nil {
			return err
		}
		if err := tx.Where("test_id = ?", testID).Delete(&models.Question{}).Error; err != nil {
			return err
		}

		for i := range questions {
			questions[i].TestID = testID
			if err := tx.Create(&questions[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteTestCascade removes a test together with everything hanging off it:
// answers, attempts, options, questions, then the test row itself. The
// deletion is a hard delete and cannot be undone.
func (s *gormStore) DeleteTestCascade(testID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var test models.Test
		if err := tx.First(&test, testID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTestNotFound
			}
			return err
		}

		attemptIDs := tx.Model(&models.Attempt{}).Select("id").Where("test_id = ?", testID)
		if err := tx.Where("attempt_id IN (?)", attemptIDs).Delete(&models.Answer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("test_id = ?", testID).Delete(&models.Attempt{}).Error; err != nil {
			return err
		}

		questionIDs := tx.Model(&models.Question{}).Select("id").Where("test_id = ?", testID)
		if err := tx.Where("question_id IN (?)", questionIDs).Delete(&models.Option{}).Error; err != nil {
			return err
		}
		if err := tx.Where("test_id = ?", testID).Delete(&models.Question{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Test{}, testID).Error
	})
}

func (s *gormStore) FindAttempt(userID, testID uint) (*models.Attempt, error) {
	var attempt models.Attempt
	err := s.db.Where("user_id = ? AND test_id = ?", userID, testID).First(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &attempt, nil
}

func (s *gormStore) FindAttemptDetail(attemptID uint) (*models.Attempt, error) {
	var attempt models.Attempt
	err := s.db.
		Preload("User").
		Preload("Test.Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.order")
		}).
		Preload("Test.Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("options.order")
		}).
		Preload("Answers").
		First(&attempt, attemptID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &attempt, nil
}

func (s *gormStore) ListAttempts() ([]models.Attempt, error) {
	var attempts []models.Attempt
	err := s.db.
		Preload("User").
		Preload("Test").
		Order("completed_at DESC").
		Find(&attempts).Error
	return attempts, err
}

func (s *gormStore) ListAttemptsForUser(userID uint) ([]models.Attempt, error) {
	var attempts []models.Attempt
	err := s.db.
		Where("user_id = ?", userID).
		Preload("Test").
		Order("completed_at DESC").
		Find(&attempts).Error
	return attempts, err
}

// CreateAttemptWithAnswers writes the attempt and its full answer set in one
// transaction. A concurrent submission for the same (user, test) pair loses
// the race on the unique index and gets ErrDuplicateAttempt back; nothing
// from the losing transaction is persisted.
func (s *gormStore) CreateAttemptWithAnswers(attempt *models.Attempt, answers []models.Answer) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(attempt).Error; err != nil {
			return err
		}
		for i := range answers {
			answers[i].AttemptID = attempt.ID
		}
		if len(answers) > 0 {
			if err := tx.Create(&answers).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateAttempt
	}
	return err
}

func (s *gormStore) ListAnswersForAttempt(attemptID uint) ([]models.Answer, error) {
	var answers []models.Answer
	err := s.db.Where("attempt_id = ?", attemptID).Order("id").Find(&answers).Error
	return answers, err
}

func (s *gormStore) UpdateAnswerCorrect(answerID uint, isCorrect bool) error {
	res := s.db.Model(&models.Answer{}).Where("id = ?", answerID).Update("is_correct", isCorrect)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAnswerNotFound
	}
	return nil
}

func (s *gormStore) UpdateAttemptScore(attemptID uint, score *int) error {
	res := s.db.Model(&models.Attempt{}).Where("id = ?", attemptID).Update("score", score)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
