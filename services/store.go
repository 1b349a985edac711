// services/store.go - Persistence gateway contract
package services

import (
	"errors"

	"codebid/models"
)

// Bid rejection reasons and domain errors. Anything else returned by a Store
// is a storage failure and is surfaced to callers as a generic error.
var (
	ErrNoActiveAuction     = errors.New("no active auction")
	ErrBidTooLow           = errors.New("bid must be higher than current highest bid")
	ErrInsufficientFunds   = errors.New("insufficient coins")
	ErrInvalidTransition   = errors.New("invalid phase transition")
	ErrNoProblemsAvailable = errors.New("no problems available")
	ErrTeamNotFound        = errors.New("team not found")
	ErrProblemNotFound     = errors.New("problem not found")
	ErrEventNotFound       = errors.New("no active event found")
	ErrNameTaken           = errors.New("team name already exists")
	ErrRegistrationTaken   = errors.New("registration number already exists")
)

// Store is the persistence gateway for teams, problems, the current event,
// and the append-only bid history. Implementations must make CommitBid
// atomic: the bid row and the event's cached highest-bid fields change
// together or not at all.
type Store interface {
	// Teams
	CreateTeam(team *models.Team) error
	TeamByID(id uint) (*models.Team, error)
	TeamByName(name string) (*models.Team, error)
	TeamByRegistrationNumber(regNo string) (*models.Team, error)
	AllTeams() ([]models.Team, error)
	Leaderboard() ([]models.Team, error)

	// Problems
	CreateProblem(problem *models.Problem) error
	DeleteProblem(id uint) error
	ProblemByID(id uint) (*models.Problem, error)
	AllProblems() ([]models.Problem, error)
	RandomProblemByDifficulty(difficulty string) (*models.Problem, error)

	// Event: exactly one current event exists; CurrentEvent returns the most
	// recently created row and SaveEvent updates it in place.
	CurrentEvent() (*models.Event, error)
	SaveEvent(event *models.Event) error

	// Bids
	CommitBid(eventID, teamID uint, amount int) (*models.Bid, error)
	BidsByEvent(eventID uint) ([]models.Bid, error)
	HighestBid(eventID uint) (*models.Bid, error)
}
