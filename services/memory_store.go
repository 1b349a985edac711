// services/memory_store.go - In-memory Store (fallback when PostgreSQL is
// not available) and the backing store for the test suite.
package services

import (
	mathrand "math/rand"
	"sort"
	"sync"
	"time"

	"codebid/models"
)

type MemoryStore struct {
	mu       sync.RWMutex
	teams    map[uint]*models.Team
	problems map[uint]*models.Problem
	events   map[uint]*models.Event
	bids     []*models.Bid

	teamSeq    uint
	problemSeq uint
	eventSeq   uint
	bidSeq     uint
}

// NewMemoryStore returns a store seeded the same way the database migration
// seeds Postgres: the admin team, a few sample problems, and the single
// WAITING event.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		teams:    make(map[uint]*models.Team),
		problems: make(map[uint]*models.Problem),
		events:   make(map[uint]*models.Event),
	}

	now := time.Now()

	s.teamSeq++
	s.teams[s.teamSeq] = &models.Team{
		ID:        s.teamSeq,
		Name:      "admin",
		FullName:  "admin",
		Coins:     10000,
		IsAdmin:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	samples := []models.Problem{
		{
			Title:       "Two Sum",
			Description: "Given an array of integers nums and an integer target, return indices of the two numbers such that they add up to target.",
			Difficulty:  models.DifficultyEasy,
		},
		{
			Title:       "Reverse String",
			Description: "Write a function that reverses a string.",
			Difficulty:  models.DifficultyEasy,
		},
		{
			Title:       "Valid Parentheses",
			Description: "Given a string s containing just the characters '(', ')', '{', '}', '[' and ']', determine if the input string is valid.",
			Difficulty:  models.DifficultyMedium,
		},
	}
	for i := range samples {
		s.problemSeq++
		p := samples[i]
		p.ID = s.problemSeq
		p.CreatedAt = now
		s.problems[p.ID] = &p
	}

	s.eventSeq++
	s.events[s.eventSeq] = &models.Event{
		ID:        s.eventSeq,
		State:     models.PhaseWaiting,
		CreatedAt: now,
		UpdatedAt: now,
	}

	return s
}

// ================== TEAMS ==================

func (s *MemoryStore) CreateTeam(team *models.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.teams {
		if t.Name == team.Name {
			return ErrNameTaken
		}
		if team.RegistrationNumber != nil && t.RegistrationNumber != nil &&
			*t.RegistrationNumber == *team.RegistrationNumber {
			return ErrRegistrationTaken
		}
	}

	s.teamSeq++
	team.ID = s.teamSeq
	now := time.Now()
	team.CreatedAt = now
	team.UpdatedAt = now

	copied := *team
	s.teams[team.ID] = &copied
	return nil
}

func (s *MemoryStore) TeamByID(id uint) (*models.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	team, ok := s.teams[id]
	if !ok {
		return nil, ErrTeamNotFound
	}
	copied := *team
	return &copied, nil
}

func (s *MemoryStore) TeamByName(name string) (*models.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, team := range s.teams {
		if team.Name == name {
			copied := *team
			return &copied, nil
		}
	}
	return nil, ErrTeamNotFound
}

func (s *MemoryStore) TeamByRegistrationNumber(regNo string) (*models.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, team := range s.teams {
		if team.RegistrationNumber != nil && *team.RegistrationNumber == regNo {
			copied := *team
			return &copied, nil
		}
	}
	return nil, ErrTeamNotFound
}

func (s *MemoryStore) AllTeams() ([]models.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	teams := make([]models.Team, 0, len(s.teams))
	for _, team := range s.teams {
		teams = append(teams, *team)
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].ID < teams[j].ID })
	return teams, nil
}

func (s *MemoryStore) Leaderboard() ([]models.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	teams := make([]models.Team, 0, len(s.teams))
	for _, team := range s.teams {
		if team.IsAdmin {
			continue
		}
		teams = append(teams, *team)
	}
	sort.Slice(teams, func(i, j int) bool {
		if teams[i].Coins != teams[j].Coins {
			return teams[i].Coins > teams[j].Coins
		}
		return teams[i].Name < teams[j].Name
	})
	return teams, nil
}

// ================== PROBLEMS ==================

func (s *MemoryStore) CreateProblem(problem *models.Problem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.problemSeq++
	problem.ID = s.problemSeq
	problem.CreatedAt = time.Now()

	copied := *problem
	s.problems[problem.ID] = &copied
	return nil
}

func (s *MemoryStore) DeleteProblem(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.problems, id)
	return nil
}

func (s *MemoryStore) ProblemByID(id uint) (*models.Problem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	problem, ok := s.problems[id]
	if !ok {
		return nil, ErrProblemNotFound
	}
	copied := *problem
	return &copied, nil
}

func (s *MemoryStore) AllProblems() ([]models.Problem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	problems := make([]models.Problem, 0, len(s.problems))
	for _, problem := range s.problems {
		problems = append(problems, *problem)
	}
	sort.Slice(problems, func(i, j int) bool {
		if problems[i].Difficulty != problems[j].Difficulty {
			return problems[i].Difficulty < problems[j].Difficulty
		}
		return problems[i].ID < problems[j].ID
	})
	return problems, nil
}

func (s *MemoryStore) RandomProblemByDifficulty(difficulty string) (*models.Problem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matching := make([]*models.Problem, 0)
	all := make([]*models.Problem, 0, len(s.problems))
	for _, problem := range s.problems {
		all = append(all, problem)
		if problem.Difficulty == difficulty {
			matching = append(matching, problem)
		}
	}
	if len(matching) == 0 {
		matching = all
	}
	if len(matching) == 0 {
		return nil, ErrNoProblemsAvailable
	}

	copied := *matching[mathrand.Intn(len(matching))]
	return &copied, nil
}

// ================== EVENT ==================

func (s *MemoryStore) CurrentEvent() (*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *models.Event
	for _, event := range s.events {
		if latest == nil || event.ID > latest.ID {
			latest = event
		}
	}
	if latest == nil {
		return nil, ErrEventNotFound
	}
	copied := *latest
	return &copied, nil
}

func (s *MemoryStore) SaveEvent(event *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[event.ID]; !ok {
		return ErrEventNotFound
	}
	event.UpdatedAt = time.Now()
	copied := *event
	s.events[event.ID] = &copied
	return nil
}

// ================== BIDS ==================

func (s *MemoryStore) CommitBid(eventID, teamID uint, amount int) (*models.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.events[eventID]
	if !ok {
		return nil, ErrEventNotFound
	}
	if amount <= event.HighestBid {
		return nil, ErrBidTooLow
	}

	s.bidSeq++
	bid := &models.Bid{
		ID:        s.bidSeq,
		EventID:   eventID,
		TeamID:    teamID,
		Amount:    amount,
		CreatedAt: time.Now(),
	}
	s.bids = append(s.bids, bid)

	bidder := teamID
	event.HighestBid = amount
	event.HighestBidderID = &bidder
	event.UpdatedAt = time.Now()

	copied := *bid
	return &copied, nil
}

func (s *MemoryStore) BidsByEvent(eventID uint) ([]models.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bids := make([]models.Bid, 0)
	for _, bid := range s.bids {
		if bid.EventID == eventID {
			bids = append(bids, *bid)
		}
	}
	sort.Slice(bids, func(i, j int) bool { return bids[i].CreatedAt.After(bids[j].CreatedAt) })
	return bids, nil
}

func (s *MemoryStore) HighestBid(eventID uint) (*models.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *models.Bid
	for _, bid := range s.bids {
		if bid.EventID != eventID {
			continue
		}
		if best == nil ||
			bid.Amount > best.Amount ||
			(bid.Amount == best.Amount && bid.CreatedAt.Before(best.CreatedAt)) {
			best = bid
		}
	}
	if best == nil {
		return nil, nil
	}
	copied := *best
	return &copied, nil
}
