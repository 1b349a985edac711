// services/gorm_store.go - PostgreSQL-backed Store
package services

import (
	"errors"
	"time"

	"codebid/models"

	"gorm.io/gorm"
)

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// ================== TEAMS ==================

func (s *GormStore) CreateTeam(team *models.Team) error {
	return s.db.Create(team).Error
}

func (s *GormStore) TeamByID(id uint) (*models.Team, error) {
	var team models.Team
	if err := s.db.First(&team, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return &team, nil
}

func (s *GormStore) TeamByName(name string) (*models.Team, error) {
	var team models.Team
	if err := s.db.Where("name = ?", name).First(&team).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return &team, nil
}

func (s *GormStore) TeamByRegistrationNumber(regNo string) (*models.Team, error) {
	var team models.Team
	if err := s.db.Where("registration_number = ?", regNo).First(&team).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return &team, nil
}

func (s *GormStore) AllTeams() ([]models.Team, error) {
	var teams []models.Team
	if err := s.db.Order("created_at ASC").Find(&teams).Error; err != nil {
		return nil, err
	}
	return teams, nil
}

func (s *GormStore) Leaderboard() ([]models.Team, error) {
	var teams []models.Team
	if err := s.db.Where("is_admin = ?", false).Order("coins DESC, name ASC").Find(&teams).Error; err != nil {
		return nil, err
	}
	return teams, nil
}

// ================== PROBLEMS ==================

func (s *GormStore) CreateProblem(problem *models.Problem) error {
	return s.db.Create(problem).Error
}

func (s *GormStore) DeleteProblem(id uint) error {
	return s.db.Delete(&models.Problem{}, id).Error
}

func (s *GormStore) ProblemByID(id uint) (*models.Problem, error) {
	var problem models.Problem
	if err := s.db.First(&problem, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProblemNotFound
		}
		return nil, err
	}
	return &problem, nil
}

func (s *GormStore) AllProblems() ([]models.Problem, error) {
	var problems []models.Problem
	if err := s.db.Order("difficulty, created_at").Find(&problems).Error; err != nil {
		return nil, err
	}
	return problems, nil
}

// RandomProblemByDifficulty picks a random problem of the target difficulty,
// falling back to any problem when that difficulty has none.
func (s *GormStore) RandomProblemByDifficulty(difficulty string) (*models.Problem, error) {
	var problem models.Problem
	err := s.db.Where("difficulty = ?", difficulty).Order("RANDOM()").First(&problem).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = s.db.Order("RANDOM()").First(&problem).Error
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoProblemsAvailable
		}
		return nil, err
	}
	return &problem, nil
}

// ================== EVENT ==================

func (s *GormStore) CurrentEvent() (*models.Event, error) {
	var event models.Event
	if err := s.db.Order("created_at DESC").First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

func (s *GormStore) SaveEvent(event *models.Event) error {
	event.UpdatedAt = time.Now()
	return s.db.Save(event).Error
}

// ================== BIDS ==================

// CommitBid appends the bid row and advances the event's cached highest-bid
// fields in one transaction. The conditional update is the storage-level
// guard: even if two accepted bids race to this point, only the one that
// still exceeds the stored highest bid commits.
func (s *GormStore) CommitBid(eventID, teamID uint, amount int) (*models.Bid, error) {
	bid := &models.Bid{
		EventID: eventID,
		TeamID:  teamID,
		Amount:  amount,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Event{}).
			Where("id = ? AND highest_bid < ?", eventID, amount).
			Updates(map[string]interface{}{
				"highest_bid":       amount,
				"highest_bidder_id": teamID,
				"updated_at":        time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrBidTooLow
		}

		return tx.Create(bid).Error
	})

	if err != nil {
		return nil, err
	}
	return bid, nil
}

func (s *GormStore) BidsByEvent(eventID uint) ([]models.Bid, error) {
	var bids []models.Bid
	err := s.db.Where("event_id = ?", eventID).
		Preload("Team").
		Order("created_at DESC").
		Find(&bids).Error
	if err != nil {
		return nil, err
	}
	return bids, nil
}

// HighestBid returns the winning bid for an event: highest amount, earliest
// timestamp on ties.
func (s *GormStore) HighestBid(eventID uint) (*models.Bid, error) {
	var bid models.Bid
	err := s.db.Where("event_id = ?", eventID).
		Preload("Team").
		Order("amount DESC, created_at ASC").
		First(&bid).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &bid, nil
}
