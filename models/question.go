package models

import (
	"time"
)

const (
	QuestionMultipleChoice = "MULTIPLE_CHOICE"
	QuestionText           = "TEXT"
)

type Question struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	TestID    uint      `json:"test_id" gorm:"not null;index"`
	Type      string    `json:"type" gorm:"not null"` // MULTIPLE_CHOICE, TEXT
	Text      string    `json:"text" gorm:"not null"` // markdown
	Order     int       `json:"order" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Test    Test     `json:"test,omitempty"`
	Options []Option `json:"options,omitempty" gorm:"foreignKey:QuestionID"`
}
