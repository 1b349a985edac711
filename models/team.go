// models/team.go
package models

import (
	"time"
)

type Team struct {
	ID                 uint    `gorm:"primaryKey" json:"id"`
	Name               string  `gorm:"uniqueIndex;not null" json:"name"`
	FullName           string  `json:"full_name"`
	RegistrationNumber *string `gorm:"uniqueIndex" json:"registration_number,omitempty"`
	Branch             string  `json:"branch"`
	Email              *string `json:"email,omitempty"`
	Phone              string  `json:"phone"`
	YearOfStudy        *int    `json:"year_of_study,omitempty"`

	// Coin balance is advisory: bids are validated against it but coins are
	// never debited when a bid is accepted or an auction concludes.
	Coins int `gorm:"default:1000" json:"coins"`

	// Optional bcrypt hash; empty means the team logs in by name alone.
	PasscodeHash string `json:"-"`

	IsAdmin   bool      `gorm:"default:false" json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Team) TableName() string {
	return "teams"
}

// TeamInfo is the public shape returned by the auth endpoints.
type TeamInfo struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Coins   int    `json:"coins"`
	IsAdmin bool   `json:"isAdmin"`
}

func (t *Team) Info() TeamInfo {
	return TeamInfo{
		ID:      t.ID,
		Name:    t.Name,
		Coins:   t.Coins,
		IsAdmin: t.IsAdmin,
	}
}
