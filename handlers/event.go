// handlers/event.go - Public event state and problem listing
package handlers

import (
	"errors"
	"log"

	"codebid/services"

	"github.com/gofiber/fiber/v2"
)

// GetState serves the full event snapshot. Reconnecting clients call this to
// rehydrate instead of relying on buffered broadcast history.
func GetState(c *fiber.Ctx) error {
	snapshot, err := auction.CurrentState()
	if errors.Is(err, services.ErrEventNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "No active event found"})
	}
	if err != nil {
		log.Printf("❌ Get state error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "Internal server error"})
	}

	return c.JSON(snapshot)
}

// GetProblems lists all problems. Reference solutions stay admin-only.
func GetProblems(c *fiber.Ctx) error {
	problems, err := store.AllProblems()
	if err != nil {
		log.Printf("❌ Get problems error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "Internal server error"})
	}

	for i := range problems {
		problems[i].Solution = ""
	}

	return c.JSON(problems)
}
