package models

import (
	"time"
)

const (
	RoleAdmin   = "ADMIN"
	RoleStudent = "STUDENT"
)

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Role         string    `json:"role" gorm:"not null;default:'STUDENT'"` // ADMIN, STUDENT
	FullName     string    `json:"full_name" gorm:"not null"`
	Phone        string    `json:"phone"`
	Age          int       `json:"age"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relationships
	Attempts []Attempt `json:"attempts,omitempty" gorm:"foreignKey:UserID"`
}
