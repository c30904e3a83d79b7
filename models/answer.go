package models

import (
	"time"
)

// Answer is created in a batch alongside its Attempt. IsCorrect is nil for
// TEXT answers until an admin grades them manually.
type Answer struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	AttemptID        uint      `json:"attempt_id" gorm:"not null;index"`
	QuestionID       uint      `json:"question_id" gorm:"not null"`
	SelectedOptionID *uint     `json:"selected_option_id"` // set only for MULTIPLE_CHOICE
	TextAnswer       *string   `json:"text_answer"`        // set only for TEXT
	IsCorrect        *bool     `json:"is_correct"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	// Relationships
	Question Question `json:"question,omitempty"`
}
