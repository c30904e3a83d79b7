package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"testlab/models"
	"testlab/store"

	"github.com/redis/go-redis/v9"
)

type AttemptService struct {
	store store.Store
	redis *redis.Client
}

func NewAttemptService(st store.Store, redisClient *redis.Client) *AttemptService {
	return &AttemptService{
		store: st,
		redis: redisClient,
	}
}

type SubmitRequest struct {
	// questionID -> raw answer: an option id for multiple choice questions,
	// free text for text questions. Missing questions count as unanswered.
	Answers map[uint]string `json:"answers"`
}

type TestView struct {
	ID          uint           `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	TimeLimit   *int           `json:"time_limit"`          // minutes
	TimeLeft    *int           `json:"time_left,omitempty"` // seconds until auto-submit
	Questions   []QuestionView `json:"questions"`
}

type QuestionView struct {
	ID      uint         `json:"id"`
	Type    string       `json:"type"`
	Text    string       `json:"text"`
	Order   int          `json:"order"`
	Options []OptionView `json:"options"`
}

type OptionView struct {
	ID    uint   `json:"id"`
	Text  string `json:"text"`
	Order int    `json:"order"`
	// IsCorrect is intentionally omitted while a test is being taken
}

// TestSession marks when a student opened a timed test. Kept in Redis with a
// TTL so abandoned sessions clean themselves up.
type TestSession struct {
	UserID    uint      `json:"user_id"`
	TestID    uint      `json:"test_id"`
	StartedAt time.Time `json:"started_at"`
	Deadline  time.Time `json:"deadline"`
}

// HasAttempt reports whether the user already has a recorded attempt for the
// test. Side-effect-free; gates both the catalog and the test-taking flow.
func (s *AttemptService) HasAttempt(userID, testID uint) (bool, error) {
	_, err := s.store.FindAttempt(userID, testID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetTestForTaking returns the student view of an active test: questions and
// options without correctness flags. Opening a timed test starts its session
// clock; reopening does not reset it.
func (s *AttemptService) GetTestForTaking(userID, testID uint) (*TestView, error) {
	test, err := s.store.FindTestWithQuestions(testID)
	if err != nil {
		return nil, err
	}
	if !test.IsActive {
		return nil, store.ErrTestNotFound
	}

	view := &TestView{
		ID:          test.ID,
		Title:       test.Title,
		Description: test.Description,
		TimeLimit:   test.TimeLimit,
		Questions:   make([]QuestionView, len(test.Questions)),
	}
	for i, q := range test.Questions {
		qv := QuestionView{
			ID:      q.ID,
			Type:    q.Type,
			Text:    q.Text,
			Order:   q.Order,
			Options: make([]OptionView, len(q.Options)),
		}
		for j, o := range q.Options {
			qv.Options[j] = OptionView{ID: o.ID, Text: o.Text, Order: o.Order}
		}
		view.Questions[i] = qv
	}

	if session := s.startSession(userID, test); session != nil {
		left := int(time.Until(session.Deadline).Seconds())
		if left < 0 {
			left = 0
		}
		view.TimeLeft = &left
	}

	return view, nil
}

// Submit grades and records a student's single attempt at a test.
//
// Every question of the test gets exactly one Answer row: multiple-choice
// answers are graded against the option flagged correct (unanswered or
// non-matching submissions are simply incorrect), text answers are stored
// ungraded for manual review. The attempt and its answers are written in one
// atomic operation; if a concurrent submission for the same (user, test)
// pair wins the race, the storage-level uniqueness constraint rejects this
// one and nothing is persisted.
func (s *AttemptService) Submit(userID, testID uint, answers map[uint]string) (*models.Attempt, error) {
	// Cheap precheck; the create below is the authoritative guard.
	if _, err := s.store.FindAttempt(userID, testID); err == nil {
		return nil, store.ErrDuplicateAttempt
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	test, err := s.store.FindTestWithQuestions(testID)
	if err != nil {
		return nil, err
	}

	records := make([]models.Answer, 0, len(test.Questions))
	multipleChoiceCount := 0

	for _, question := range test.Questions {
		raw, answered := answers[question.ID]

		if question.Type == models.QuestionMultipleChoice {
			multipleChoiceCount++

			var selected *uint
			if answered {
				if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
					v := uint(id)
					selected = &v
				}
			}

			var correctOption *models.Option
			for i := range question.Options {
				if question.Options[i].IsCorrect {
					correctOption = &question.Options[i]
					break
				}
			}

			// A question with no option flagged correct can never be
			// answered correctly, but submission still goes through.
			isCorrect := selected != nil && correctOption != nil && *selected == correctOption.ID

			records = append(records, models.Answer{
				QuestionID:       question.ID,
				SelectedOptionID: selected,
				IsCorrect:        &isCorrect,
			})
		} else {
			var text *string
			if answered {
				v := raw
				text = &v
			}
			records = append(records, models.Answer{
				QuestionID: question.ID,
				TextAnswer: text,
				IsCorrect:  nil, // graded manually via admin review
			})
		}
	}

	attempt := &models.Attempt{
		UserID:      userID,
		TestID:      testID,
		Score:       ComputeScore(records, multipleChoiceCount),
		CompletedAt: time.Now(),
	}

	if err := s.store.CreateAttemptWithAnswers(attempt, records); err != nil {
		return nil, err
	}

	s.clearSession(userID, testID)

	return attempt, nil
}

// MyResults returns the student's recorded attempts, newest first.
func (s *AttemptService) MyResults(userID uint) ([]models.Attempt, error) {
	return s.store.ListAttemptsForUser(userID)
}

func sessionKey(userID, testID uint) string {
	return fmt.Sprintf("session:%d:%d", userID, testID)
}

// startSession records the start of a timed test in Redis, once. Returns nil
// for untimed tests or when Redis is unavailable; the session is purely
// informational and never blocks a submission.
func (s *AttemptService) startSession(userID uint, test *models.Test) *TestSession {
	if s.redis == nil || test.TimeLimit == nil {
		return nil
	}

	ctx := context.Background()
	key := sessionKey(userID, test.ID)
	now := time.Now()
	session := TestSession{
		UserID:    userID,
		TestID:    test.ID,
		StartedAt: now,
		Deadline:  now.Add(time.Duration(*test.TimeLimit) * time.Minute),
	}

	data, err := json.Marshal(session)
	if err != nil {
		log.Printf("Failed to marshal test session: %v", err)
		return nil
	}

	// SetNX keeps the original clock when the student reopens the test.
	ttl := time.Duration(*test.TimeLimit)*time.Minute + 5*time.Minute
	if err := s.redis.SetNX(ctx, key, data, ttl).Err(); err != nil {
		log.Printf("Failed to store test session in Redis: %v", err)
		return nil
	}

	stored, err := s.redis.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("Redis error reading test session %s: %v", key, err)
		}
		return &session
	}

	var existing TestSession
	if err := json.Unmarshal([]byte(stored), &existing); err != nil {
		log.Printf("Failed to unmarshal test session %s: %v", key, err)
		return &session
	}
	return &existing
}

func (s *AttemptService) clearSession(userID, testID uint) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(context.Background(), sessionKey(userID, testID)).Err(); err != nil {
		log.Printf("Failed to clear test session for user %d test %d: %v", userID, testID, err)
	}
}
