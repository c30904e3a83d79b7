package models

import (
	"time"
)

type Test struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active" gorm:"not null;default:true"`
	TimeLimit   *int      `json:"time_limit"` // minutes, nil means untimed
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relationships
	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:TestID"`
	Attempts  []Attempt  `json:"attempts,omitempty" gorm:"foreignKey:TestID"`
}
