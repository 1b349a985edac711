// handlers/auth.go
package handlers

import (
	"errors"
	"log"
	"strings"
	"time"

	"codebid/middleware"
	"codebid/models"
	"codebid/services"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type LoginRequest struct {
	Name     string `json:"name"`
	Passcode string `json:"passcode,omitempty"`
}

type SignupRequest struct {
	TeamName           string `json:"teamName"`
	FullName           string `json:"fullName"`
	RegistrationNumber string `json:"registrationNumber"`
	Branch             string `json:"branch"`
	Email              string `json:"email,omitempty"`
	Phone              string `json:"phone,omitempty"`
	YearOfStudy        int    `json:"yearOfStudy,omitempty"`
	Passcode           string `json:"passcode,omitempty"`
}

type AuthResponse struct {
	Token string          `json:"token"`
	Team  models.TeamInfo `json:"team"`
}

// Login authenticates a team by name, creating it on first login. The
// literal name "admin" gets the admin flag. Teams that registered a passcode
// must present it; everyone else logs in by name alone.
func Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	teamName := strings.TrimSpace(req.Name)
	if teamName == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Team name is required"})
	}

	team, err := store.TeamByName(teamName)
	if errors.Is(err, services.ErrTeamNotFound) {
		team, err = createTeamOnLogin(teamName, req.Passcode)
		if err != nil {
			log.Printf("❌ Login create-team error: %v", err)
			return c.Status(500).JSON(fiber.Map{"error": "Internal server error"})
		}
	} else if err != nil {
		log.Printf("❌ Login error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "Internal server error"})
	} else if team.PasscodeHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(team.PasscodeHash), []byte(req.Passcode)); err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid credentials"})
		}
	}

	token, err := generateToken(team)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to generate token"})
	}

	return c.JSON(AuthResponse{Token: token, Team: team.Info()})
}

// Signup registers a team with full details. Team name and registration
// number must be unique.
func Signup(c *fiber.Ctx) error {
	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	teamName := strings.TrimSpace(req.TeamName)
	fullName := strings.TrimSpace(req.FullName)
	regNo := strings.TrimSpace(req.RegistrationNumber)
	branch := strings.TrimSpace(req.Branch)

	if teamName == "" || fullName == "" || regNo == "" || branch == "" {
		return c.Status(400).JSON(fiber.Map{
			"error": "Team name, full name, registration number, and branch are required",
		})
	}

	if _, err := store.TeamByName(teamName); err == nil {
		return c.Status(400).JSON(fiber.Map{"error": "Team name already exists"})
	}
	if _, err := store.TeamByRegistrationNumber(regNo); err == nil {
		return c.Status(400).JSON(fiber.Map{"error": "Registration number already exists"})
	}

	team := &models.Team{
		Name:               teamName,
		FullName:           fullName,
		RegistrationNumber: &regNo,
		Branch:             branch,
		Phone:              strings.TrimSpace(req.Phone),
		Coins:              1000,
	}
	if email := strings.TrimSpace(req.Email); email != "" {
		team.Email = &email
	}
	if req.YearOfStudy > 0 {
		year := req.YearOfStudy
		team.YearOfStudy = &year
	}
	if req.Passcode != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Passcode), bcrypt.DefaultCost)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Failed to hash passcode"})
		}
		team.PasscodeHash = string(hash)
	}

	if err := store.CreateTeam(team); err != nil {
		if errors.Is(err, services.ErrNameTaken) {
			return c.Status(400).JSON(fiber.Map{"error": "Team name already exists"})
		}
		if errors.Is(err, services.ErrRegistrationTaken) {
			return c.Status(400).JSON(fiber.Map{"error": "Registration number already exists"})
		}
		log.Printf("❌ Signup error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "Internal server error"})
	}

	token, err := generateToken(team)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to generate token"})
	}

	return c.JSON(AuthResponse{Token: token, Team: team.Info()})
}

// Me returns the authenticated team.
func Me(c *fiber.Ctx) error {
	teamID, err := middleware.GetTeamID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	team, err := store.TeamByID(teamID)
	if errors.Is(err, services.ErrTeamNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "Team not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal server error"})
	}

	return c.JSON(fiber.Map{"team": team.Info()})
}

func createTeamOnLogin(teamName, passcode string) (*models.Team, error) {
	isAdmin := strings.EqualFold(teamName, "admin")
	coins := 1000
	if isAdmin {
		coins = 10000
	}

	team := &models.Team{
		Name:     teamName,
		FullName: teamName,
		Coins:    coins,
		IsAdmin:  isAdmin,
	}
	if passcode != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(passcode), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		team.PasscodeHash = string(hash)
	}

	if err := store.CreateTeam(team); err != nil {
		return nil, err
	}
	return team, nil
}

func generateToken(team *models.Team) (string, error) {
	claims := jwt.MapClaims{
		"team_id":   team.ID,
		"team_name": team.Name,
		"is_admin":  team.IsAdmin,
		"exp":       time.Now().Add(7 * 24 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(middleware.JWTSecret())
}
