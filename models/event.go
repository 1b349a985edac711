// models/event.go
package models

import (
	"time"
)

// Event phases, in order of progression. Reset returns to WAITING from any
// phase.
const (
	PhaseWaiting   = "WAITING"
	PhaseAuction   = "AUCTION"
	PhaseCompleted = "COMPLETED"
	PhaseCoding    = "CODING"
	PhaseFinished  = "FINISHED"
)

// Event is the singleton-per-run record for one auction event. Exactly one
// logically current event exists at a time; the highest-bid fields are a
// cached projection over the bid history.
type Event struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	State            string     `gorm:"default:'WAITING';size:20" json:"state"`
	CurrentProblemID *uint      `gorm:"index" json:"current_problem_id"`
	HighestBid       int        `gorm:"default:0" json:"highest_bid"`
	HighestBidderID  *uint      `gorm:"index" json:"highest_bidder_id"`
	AuctionStartTime *time.Time `json:"auction_start_time"`
	CodingStartTime  *time.Time `json:"coding_start_time"`
	CodingEndTime    *time.Time `json:"coding_end_time"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (Event) TableName() string {
	return "events"
}

// ProblemSummary is the problem shape embedded in event snapshots. Reference
// solutions are never included.
type ProblemSummary struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Difficulty  string `json:"difficulty"`
	TestCases   string `json:"testCases,omitempty"`
}

// EventSnapshot is the full event state served by GET /event/state and
// broadcast as STATE_CHANGED.
type EventSnapshot struct {
	State             string          `json:"state"`
	CurrentProblem    *ProblemSummary `json:"currentProblem"`
	HighestBid        int             `json:"highestBid"`
	HighestTeamID     *uint           `json:"highestTeamId"`
	HighestBidderName *string         `json:"highestBidderName"`
	AuctionStartTime  *time.Time      `json:"auctionStartTime"`
	CodingStartTime   *time.Time      `json:"codingStartTime"`
	CodingEndTime     *time.Time      `json:"codingEndTime"`
}
