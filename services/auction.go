// services/auction.go - Bid validation and the event state machine
package services

import (
	"log"
	"sync"
	"time"

	"codebid/models"
)

// Broadcast message types shared with the WebSocket layer.
const (
	MsgBidUpdated   = "BID_UPDATED"
	MsgStateChanged = "STATE_CHANGED"
)

// Broadcaster fans out auction events to connected clients. Implementations
// must never block: delivery is fire-and-forget per connection.
type Broadcaster interface {
	Broadcast(msgType string, payload interface{})
}

type noopBroadcaster struct{}

func (noopBroadcaster) Broadcast(string, interface{}) {}

// BidUpdate is the payload broadcast as BID_UPDATED after a bid commits.
type BidUpdate struct {
	Amount    int       `json:"amount"`
	TeamID    uint      `json:"teamId"`
	TeamName  string    `json:"teamName"`
	Timestamp time.Time `json:"timestamp"`
}

// AuctionService owns the single current event. Every bid submission and
// every phase transition runs under one mutex, so the check-then-commit
// sequence is serialized: no two bids can validate against the same stale
// highest bid, and no bid can commit against a phase that has just been
// transitioned out of.
type AuctionService struct {
	mu          sync.Mutex
	store       Store
	broadcaster Broadcaster
}

func NewAuctionService(store Store) *AuctionService {
	return &AuctionService{
		store:       store,
		broadcaster: noopBroadcaster{},
	}
}

// SetBroadcaster wires the live-channel hub in. Called once at startup.
func (s *AuctionService) SetBroadcaster(b Broadcaster) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broadcaster = b
}

// PlaceBid validates and commits a bid for the calling team.
//
// Preconditions, checked in order: the event phase must be AUCTION, the
// amount must exceed the current highest bid, and the amount must not exceed
// the team's coin balance. Coins are checked but never debited; the balance
// is advisory. Rejection has no side effects beyond the returned error.
func (s *AuctionService) PlaceBid(teamID uint, amount int) (*BidUpdate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, err := s.store.CurrentEvent()
	if err != nil {
		return nil, err
	}

	if event.State != models.PhaseAuction {
		return nil, ErrNoActiveAuction
	}

	if amount <= event.HighestBid {
		return nil, ErrBidTooLow
	}

	team, err := s.store.TeamByID(teamID)
	if err != nil {
		return nil, err
	}

	if amount > team.Coins {
		return nil, ErrInsufficientFunds
	}

	bid, err := s.store.CommitBid(event.ID, teamID, amount)
	if err != nil {
		return nil, err
	}

	update := &BidUpdate{
		Amount:    bid.Amount,
		TeamID:    team.ID,
		TeamName:  team.Name,
		Timestamp: bid.CreatedAt,
	}

	log.Printf("💰 Bid accepted: %s bid %d on event %d", team.Name, amount, event.ID)
	s.broadcaster.Broadcast(MsgBidUpdated, update)

	return update, nil
}

// StartAuction moves the event into the AUCTION phase. Allowed from WAITING
// or COMPLETED. When problemID is nil a random problem of the target
// difficulty is selected (medium by default, any difficulty as fallback).
// The highest bid resets to zero.
func (s *AuctionService) StartAuction(problemID *uint, difficulty string) (*models.EventSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, err := s.store.CurrentEvent()
	if err != nil {
		return nil, err
	}

	if event.State != models.PhaseWaiting && event.State != models.PhaseCompleted {
		return nil, ErrInvalidTransition
	}

	var problem *models.Problem
	if problemID != nil {
		problem, err = s.store.ProblemByID(*problemID)
	} else {
		if difficulty == "" {
			difficulty = models.DifficultyMedium
		}
		problem, err = s.store.RandomProblemByDifficulty(difficulty)
	}
	if err != nil {
		return nil, err
	}

	now := time.Now()
	event.State = models.PhaseAuction
	event.CurrentProblemID = &problem.ID
	event.HighestBid = 0
	event.HighestBidderID = nil
	event.AuctionStartTime = &now
	event.CodingStartTime = nil
	event.CodingEndTime = nil

	if err := s.store.SaveEvent(event); err != nil {
		return nil, err
	}

	log.Printf("🔨 Auction started on problem %d (%s)", problem.ID, problem.Title)
	return s.publishStateLocked(event)
}

// CompleteAuction closes the bidding phase. Allowed from AUCTION only.
func (s *AuctionService) CompleteAuction() (*models.EventSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, err := s.store.CurrentEvent()
	if err != nil {
		return nil, err
	}

	if event.State != models.PhaseAuction {
		return nil, ErrInvalidTransition
	}

	event.State = models.PhaseCompleted
	if err := s.store.SaveEvent(event); err != nil {
		return nil, err
	}

	log.Printf("🔔 Auction completed at highest bid %d", event.HighestBid)
	return s.publishStateLocked(event)
}

// StartCoding moves the event into the CODING phase. Allowed from COMPLETED
// only.
func (s *AuctionService) StartCoding() (*models.EventSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, err := s.store.CurrentEvent()
	if err != nil {
		return nil, err
	}

	if event.State != models.PhaseCompleted {
		return nil, ErrInvalidTransition
	}

	now := time.Now()
	event.State = models.PhaseCoding
	event.CodingStartTime = &now

	if err := s.store.SaveEvent(event); err != nil {
		return nil, err
	}

	log.Println("⌨️  Coding phase started")
	return s.publishStateLocked(event)
}

// FinishEvent ends the run. Allowed from CODING only.
func (s *AuctionService) FinishEvent() (*models.EventSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, err := s.store.CurrentEvent()
	if err != nil {
		return nil, err
	}

	if event.State != models.PhaseCoding {
		return nil, ErrInvalidTransition
	}

	now := time.Now()
	event.State = models.PhaseFinished
	event.CodingEndTime = &now

	if err := s.store.SaveEvent(event); err != nil {
		return nil, err
	}

	log.Println("🏁 Event finished")
	return s.publishStateLocked(event)
}

// Reset returns the event to WAITING from any phase, clearing the current
// problem and highest bid. Admin-only at the HTTP layer.
func (s *AuctionService) Reset() (*models.EventSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, err := s.store.CurrentEvent()
	if err != nil {
		return nil, err
	}

	event.State = models.PhaseWaiting
	event.CurrentProblemID = nil
	event.HighestBid = 0
	event.HighestBidderID = nil
	event.AuctionStartTime = nil
	event.CodingStartTime = nil
	event.CodingEndTime = nil

	if err := s.store.SaveEvent(event); err != nil {
		return nil, err
	}

	log.Println("🔄 Event reset to WAITING")
	return s.publishStateLocked(event)
}

// CurrentState returns the full snapshot of the current event.
func (s *AuctionService) CurrentState() (*models.EventSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, err := s.store.CurrentEvent()
	if err != nil {
		return nil, err
	}
	return s.snapshotLocked(event)
}

// publishStateLocked builds the snapshot and broadcasts STATE_CHANGED.
// Callers hold s.mu.
func (s *AuctionService) publishStateLocked(event *models.Event) (*models.EventSnapshot, error) {
	snapshot, err := s.snapshotLocked(event)
	if err != nil {
		return nil, err
	}
	s.broadcaster.Broadcast(MsgStateChanged, snapshot)
	return snapshot, nil
}

func (s *AuctionService) snapshotLocked(event *models.Event) (*models.EventSnapshot, error) {
	snapshot := &models.EventSnapshot{
		State:            event.State,
		HighestBid:       event.HighestBid,
		HighestTeamID:    event.HighestBidderID,
		AuctionStartTime: event.AuctionStartTime,
		CodingStartTime:  event.CodingStartTime,
		CodingEndTime:    event.CodingEndTime,
	}

	if event.CurrentProblemID != nil {
		problem, err := s.store.ProblemByID(*event.CurrentProblemID)
		if err == nil {
			snapshot.CurrentProblem = &models.ProblemSummary{
				ID:          problem.ID,
				Title:       problem.Title,
				Description: problem.Description,
				Difficulty:  problem.Difficulty,
				TestCases:   problem.TestCases,
			}
		} else if err != ErrProblemNotFound {
			return nil, err
		}
	}

	if event.HighestBidderID != nil {
		team, err := s.store.TeamByID(*event.HighestBidderID)
		if err == nil {
			snapshot.HighestBidderName = &team.Name
		} else if err != ErrTeamNotFound {
			return nil, err
		}
	}

	return snapshot, nil
}
