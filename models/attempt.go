package models

import (
	"time"
)

// Attempt records a student's single pass over a test. The composite unique
// index on (user_id, test_id) is the storage-level guarantor that a user can
// never hold two attempts for the same test.
type Attempt struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_attempts_user_test"`
	TestID      uint      `json:"test_id" gorm:"not null;uniqueIndex:idx_attempts_user_test"`
	Score       *int      `json:"score"` // percentage 0-100, nil until gradable
	CompletedAt time.Time `json:"completed_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relationships
	User    User     `json:"user,omitempty"`
	Test    Test     `json:"test,omitempty"`
	Answers []Answer `json:"answers,omitempty" gorm:"foreignKey:AttemptID"`
}
