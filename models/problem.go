// models/problem.go
package models

import (
	"time"
)

// Problem difficulties
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Problem is a coding problem put up for auction. Created and deleted by the
// admin, immutable otherwise.
type Problem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"not null;size:200" json:"title"`
	Description string    `gorm:"not null;type:text" json:"description"`
	Difficulty  string    `gorm:"default:'medium';size:20;index" json:"difficulty"`
	TestCases   string    `gorm:"type:text" json:"test_cases"`
	Solution    string    `gorm:"type:text" json:"solution,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Problem) TableName() string {
	return "problems"
}

func ValidDifficulty(d string) bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}
