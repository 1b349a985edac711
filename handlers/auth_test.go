package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"codebid/middleware"
	"codebid/services"

	"github.com/gofiber/fiber/v2"
)

// newTestApp wires a fresh in-memory store behind the real route table.
func newTestApp(t *testing.T) (*fiber.App, *services.MemoryStore) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret-that-is-long-enough-0123456789")
	t.Setenv("RATE_LIMIT_ENABLED", "false")

	memStore := services.NewMemoryStore()
	svc := services.NewAuctionService(memStore)
	Init(memStore, svc)

	app := fiber.New()

	app.Post("/auth/login", Login)
	app.Post("/auth/signup", Signup)
	app.Get("/auth/me", middleware.AuthMiddleware, Me)

	app.Get("/event/state", GetState)
	app.Get("/event/problems", GetProblems)

	admin := app.Group("/admin", middleware.AdminAuthMiddleware)
	admin.Post("/start-auction", StartAuction)
	admin.Post("/complete-auction", CompleteAuction)
	admin.Post("/start-coding", StartCoding)
	admin.Post("/finish-event", FinishEvent)
	admin.Post("/reset-event", ResetEvent)
	admin.Get("/leaderboard", GetLeaderboard)
	admin.Get("/teams", GetTeams)
	admin.Get("/problems", GetAllProblems)

	return app, memStore
}

func postJSON(t *testing.T, app *fiber.App, path, token string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest("POST", path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request %s: %v", path, err)
	}
	return resp
}

func getJSON(t *testing.T, app *fiber.App, path, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request %s: %v", path, err)
	}
	return resp
}

func decodeAuth(t *testing.T, resp *http.Response) AuthResponse {
	t.Helper()
	defer resp.Body.Close()
	var out AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode auth response: %v", err)
	}
	return out
}

func login(t *testing.T, app *fiber.App, name string) AuthResponse {
	t.Helper()
	resp := postJSON(t, app, "/auth/login", "", LoginRequest{Name: name})
	if resp.StatusCode != 200 {
		t.Fatalf("login %s: status %d", name, resp.StatusCode)
	}
	return decodeAuth(t, resp)
}

func TestLoginCreatesTeam(t *testing.T) {
	app, memStore := newTestApp(t)

	auth := login(t, app, "rocket")
	if auth.Token == "" {
		t.Fatal("expected a token")
	}
	if auth.Team.Name != "rocket" || auth.Team.Coins != 1000 || auth.Team.IsAdmin {
		t.Errorf("team = %+v, want rocket/1000/non-admin", auth.Team)
	}

	// Second login returns the same team, not a duplicate.
	again := login(t, app, "rocket")
	if again.Team.ID != auth.Team.ID {
		t.Errorf("second login team ID = %d, want %d", again.Team.ID, auth.Team.ID)
	}

	stored, err := memStore.TeamByName("rocket")
	if err != nil {
		t.Fatalf("team not persisted: %v", err)
	}
	if stored.Coins != 1000 {
		t.Errorf("stored coins = %d, want 1000", stored.Coins)
	}
}

func TestLoginAdmin(t *testing.T) {
	app, _ := newTestApp(t)

	auth := login(t, app, "admin")
	if !auth.Team.IsAdmin {
		t.Error("admin login should carry the admin flag")
	}
	if auth.Team.Coins != 10000 {
		t.Errorf("admin coins = %d, want 10000", auth.Team.Coins)
	}
}

func TestLoginValidation(t *testing.T) {
	app, _ := newTestApp(t)

	resp := postJSON(t, app, "/auth/login", "", LoginRequest{Name: "   "})
	if resp.StatusCode != 400 {
		t.Errorf("blank name status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestLoginWithPasscode(t *testing.T) {
	app, _ := newTestApp(t)

	// First login registers the passcode.
	resp := postJSON(t, app, "/auth/login", "", LoginRequest{Name: "secure", Passcode: "hunter2"})
	if resp.StatusCode != 200 {
		t.Fatalf("first login status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Wrong passcode is rejected.
	resp = postJSON(t, app, "/auth/login", "", LoginRequest{Name: "secure", Passcode: "wrong"})
	if resp.StatusCode != 401 {
		t.Errorf("wrong passcode status = %d, want 401", resp.StatusCode)
	}
	resp.Body.Close()

	// Correct passcode succeeds.
	resp = postJSON(t, app, "/auth/login", "", LoginRequest{Name: "secure", Passcode: "hunter2"})
	if resp.StatusCode != 200 {
		t.Errorf("correct passcode status = %d, want 200", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestSignupAndDuplicates(t *testing.T) {
	app, _ := newTestApp(t)

	req := SignupRequest{
		TeamName:           "builders",
		FullName:           "The Builders",
		RegistrationNumber: "22BCE0001",
		Branch:             "CSE",
		YearOfStudy:        3,
	}
	resp := postJSON(t, app, "/auth/signup", "", req)
	if resp.StatusCode != 200 {
		t.Fatalf("signup status = %d", resp.StatusCode)
	}
	auth := decodeAuth(t, resp)
	if auth.Team.Coins != 1000 || auth.Team.IsAdmin {
		t.Errorf("team = %+v, want 1000 coins, non-admin", auth.Team)
	}

	// Duplicate team name.
	dup := req
	dup.RegistrationNumber = "22BCE0002"
	resp = postJSON(t, app, "/auth/signup", "", dup)
	if resp.StatusCode != 400 {
		t.Errorf("duplicate name status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()

	// Duplicate registration number.
	dup = req
	dup.TeamName = "builders-2"
	resp = postJSON(t, app, "/auth/signup", "", dup)
	if resp.StatusCode != 400 {
		t.Errorf("duplicate registration status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()

	// Missing required fields.
	resp = postJSON(t, app, "/auth/signup", "", SignupRequest{TeamName: "incomplete"})
	if resp.StatusCode != 400 {
		t.Errorf("missing fields status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestMeRoundTrip(t *testing.T) {
	app, _ := newTestApp(t)
	auth := login(t, app, "rocket")

	resp := getJSON(t, app, "/auth/me", auth.Token)
	if resp.StatusCode != 200 {
		t.Fatalf("me status = %d", resp.StatusCode)
	}
	defer resp.Body.Close()

	var out struct {
		Team struct {
			ID   uint   `json:"id"`
			Name string `json:"name"`
		} `json:"team"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Team.Name != "rocket" || out.Team.ID != auth.Team.ID {
		t.Errorf("me = %+v, want rocket/%d", out.Team, auth.Team.ID)
	}

	// No token at all.
	resp = getJSON(t, app, "/auth/me", "")
	if resp.StatusCode != 401 {
		t.Errorf("unauthenticated status = %d, want 401", resp.StatusCode)
	}
	resp.Body.Close()
}
