// middleware/auth.go
package middleware

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// TeamClaims is the identity carried by every bearer token: which team the
// connection speaks for, and whether it may drive the event state machine.
type TeamClaims struct {
	TeamID   uint
	TeamName string
	IsAdmin  bool
}

func JWTSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "codebid-secret-change-in-production"
	}
	return []byte(secret)
}

// ParseTeamToken validates a bearer token string and extracts the team
// identity. Used by the HTTP middleware and by the WebSocket handshake.
func ParseTeamToken(tokenString string) (*TeamClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return JWTSecret(), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	exp, ok := claims["exp"].(float64)
	if !ok || time.Unix(int64(exp), 0).Before(time.Now()) {
		return nil, errors.New("token expired")
	}

	teamID, ok := claims["team_id"].(float64)
	if !ok {
		return nil, errors.New("invalid team ID in token")
	}

	teamName, _ := claims["team_name"].(string)
	isAdmin, _ := claims["is_admin"].(bool)

	return &TeamClaims{
		TeamID:   uint(teamID),
		TeamName: teamName,
		IsAdmin:  isAdmin,
	}, nil
}

func bearerToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("missing authorization header")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", errors.New("invalid authorization header format")
	}
	return parts[1], nil
}

// AuthMiddleware resolves the calling team from the Authorization header.
func AuthMiddleware(c *fiber.Ctx) error {
	tokenString, err := bearerToken(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	claims, err := ParseTeamToken(tokenString)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	c.Locals("teamId", claims.TeamID)
	c.Locals("teamName", claims.TeamName)
	c.Locals("isAdmin", claims.IsAdmin)

	return c.Next()
}

// AdminAuthMiddleware additionally requires the admin flag.
func AdminAuthMiddleware(c *fiber.Ctx) error {
	tokenString, err := bearerToken(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	claims, err := ParseTeamToken(tokenString)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	if !claims.IsAdmin {
		return c.Status(403).JSON(fiber.Map{"error": "Forbidden: Admin access required"})
	}

	c.Locals("teamId", claims.TeamID)
	c.Locals("teamName", claims.TeamName)
	c.Locals("isAdmin", true)

	return c.Next()
}

func GetTeamID(c *fiber.Ctx) (uint, error) {
	teamID := c.Locals("teamId")
	if teamID == nil {
		return 0, fiber.NewError(401, "Team not authenticated")
	}

	if id, ok := teamID.(uint); ok {
		return id, nil
	}

	return 0, fiber.NewError(401, "Invalid team ID format")
}

func GetTeamName(c *fiber.Ctx) (string, error) {
	teamName := c.Locals("teamName")
	if teamName == nil {
		return "", fiber.NewError(401, "Team not authenticated")
	}

	if name, ok := teamName.(string); ok {
		return name, nil
	}

	return "", fiber.NewError(401, "Invalid team name format")
}

func IsAdmin(c *fiber.Ctx) bool {
	isAdmin := c.Locals("isAdmin")
	if isAdmin == nil {
		return false
	}

	if admin, ok := isAdmin.(bool); ok {
		return admin
	}

	return false
}
