// handlers/admin.go - Admin operations: phase transitions, teams, problems
package handlers

import (
	"errors"
	"log"

	"codebid/models"
	"codebid/services"

	"github.com/gofiber/fiber/v2"
)

type StartAuctionRequest struct {
	ProblemID  *uint  `json:"problemId,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
}

type CreateProblemRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Difficulty  string `json:"difficulty,omitempty"`
	TestCases   string `json:"testCases,omitempty"`
	Solution    string `json:"solution,omitempty"`
}

// StartAuction opens bidding on a problem (chosen explicitly or at random).
func StartAuction(c *fiber.Ctx) error {
	var req StartAuctionRequest
	_ = c.BodyParser(&req)

	if req.Difficulty != "" && !models.ValidDifficulty(req.Difficulty) {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid difficulty"})
	}

	snapshot, err := auction.StartAuction(req.ProblemID, req.Difficulty)
	if err != nil {
		return transitionError(c, err, "Start auction")
	}

	return c.JSON(fiber.Map{"ok": true, "event": snapshot})
}

// CompleteAuction closes bidding on the current problem.
func CompleteAuction(c *fiber.Ctx) error {
	snapshot, err := auction.CompleteAuction()
	if err != nil {
		return transitionError(c, err, "Complete auction")
	}

	return c.JSON(fiber.Map{"ok": true, "event": snapshot})
}

// StartCoding begins the coding phase for the winning team.
func StartCoding(c *fiber.Ctx) error {
	snapshot, err := auction.StartCoding()
	if err != nil {
		return transitionError(c, err, "Start coding")
	}

	return c.JSON(fiber.Map{"ok": true, "event": snapshot})
}

// FinishEvent ends the run and freezes the leaderboard.
func FinishEvent(c *fiber.Ctx) error {
	snapshot, err := auction.FinishEvent()
	if err != nil {
		return transitionError(c, err, "Finish event")
	}

	return c.JSON(fiber.Map{"ok": true, "event": snapshot})
}

// ResetEvent returns the event to WAITING from any phase.
func ResetEvent(c *fiber.Ctx) error {
	snapshot, err := auction.Reset()
	if err != nil {
		return transitionError(c, err, "Reset event")
	}

	return c.JSON(fiber.Map{"ok": true, "event": snapshot})
}

// GetLeaderboard lists non-admin teams by coin balance.
func GetLeaderboard(c *fiber.Ctx) error {
	teams, err := store.Leaderboard()
	if err != nil {
		log.Printf("❌ Get leaderboard error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "Internal server error"})
	}
	return c.JSON(teams)
}

// GetTeams lists all registered teams with full details.
func GetTeams(c *fiber.Ctx) error {
	teams, err := store.AllTeams()
	if err != nil {
		log.Printf("❌ Get teams error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "Internal server error"})
	}
	return c.JSON(teams)
}

// GetAllProblems lists problems including reference solutions.
func GetAllProblems(c *fiber.Ctx) error {
	problems, err := store.AllProblems()
	if err != nil {
		log.Printf("❌ Get problems error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "Internal server error"})
	}
	return c.JSON(problems)
}

// CreateProblem adds a new problem to the pool.
func CreateProblem(c *fiber.Ctx) error {
	var req CreateProblemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if req.Title == "" || req.Description == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Title and description are required"})
	}

	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = models.DifficultyMedium
	}
	if !models.ValidDifficulty(difficulty) {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid difficulty"})
	}

	problem := &models.Problem{
		Title:       req.Title,
		Description: req.Description,
		Difficulty:  difficulty,
		TestCases:   req.TestCases,
		Solution:    req.Solution,
	}

	if err := store.CreateProblem(problem); err != nil {
		log.Printf("❌ Create problem error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "Internal server error"})
	}

	return c.JSON(problem)
}

// DeleteProblem removes a problem from the pool.
func DeleteProblem(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid problem ID"})
	}

	if err := store.DeleteProblem(uint(id)); err != nil {
		log.Printf("❌ Delete problem error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "Internal server error"})
	}

	return c.JSON(fiber.Map{"ok": true})
}

func transitionError(c *fiber.Ctx, err error, op string) error {
	switch {
	case errors.Is(err, services.ErrInvalidTransition):
		return c.Status(409).JSON(fiber.Map{"error": "Invalid phase transition"})
	case errors.Is(err, services.ErrNoProblemsAvailable):
		return c.Status(400).JSON(fiber.Map{"error": "No problems available"})
	case errors.Is(err, services.ErrProblemNotFound):
		return c.Status(404).JSON(fiber.Map{"error": "Problem not found"})
	case errors.Is(err, services.ErrEventNotFound):
		return c.Status(404).JSON(fiber.Map{"error": "No active event found"})
	default:
		log.Printf("❌ %s error: %v", op, err)
		return c.Status(500).JSON(fiber.Map{"error": "Internal server error"})
	}
}
