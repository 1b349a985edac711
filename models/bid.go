// models/bid.go
package models

import (
	"time"
)

// Bid is one submitted bid. Rows are append-only: never updated or deleted,
// and retained even if the team disconnects.
type Bid struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EventID   uint      `gorm:"not null;index" json:"event_id"`
	TeamID    uint      `gorm:"not null;index" json:"team_id"`
	Team      *Team     `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	Amount    int       `gorm:"not null" json:"amount"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (Bid) TableName() string {
	return "bids"
}
