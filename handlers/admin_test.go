package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"codebid/models"
)

func TestAdminRoutesRequireAdmin(t *testing.T) {
	app, _ := newTestApp(t)
	team := login(t, app, "mortal")

	resp := postJSON(t, app, "/admin/start-auction", team.Token, nil)
	if resp.StatusCode != 403 {
		t.Errorf("non-admin start-auction status = %d, want 403", resp.StatusCode)
	}
	resp.Body.Close()

	resp = postJSON(t, app, "/admin/start-auction", "", nil)
	if resp.StatusCode != 401 {
		t.Errorf("anonymous start-auction status = %d, want 401", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestPhaseTransitionsOverHTTP(t *testing.T) {
	app, _ := newTestApp(t)
	admin := login(t, app, "admin")

	assertState := func(want string) {
		t.Helper()
		resp := getJSON(t, app, "/event/state", "")
		if resp.StatusCode != 200 {
			t.Fatalf("state status = %d", resp.StatusCode)
		}
		defer resp.Body.Close()
		var snapshot models.EventSnapshot
		if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
			t.Fatalf("decode snapshot: %v", err)
		}
		if snapshot.State != want {
			t.Fatalf("state = %s, want %s", snapshot.State, want)
		}
	}

	assertState(models.PhaseWaiting)

	steps := []struct {
		path string
		want string
	}{
		{"/admin/start-auction", models.PhaseAuction},
		{"/admin/complete-auction", models.PhaseCompleted},
		{"/admin/start-coding", models.PhaseCoding},
		{"/admin/finish-event", models.PhaseFinished},
		{"/admin/reset-event", models.PhaseWaiting},
	}
	for _, step := range steps {
		resp := postJSON(t, app, step.path, admin.Token, nil)
		if resp.StatusCode != 200 {
			t.Fatalf("%s status = %d", step.path, resp.StatusCode)
		}
		resp.Body.Close()
		assertState(step.want)
	}
}

func TestInvalidTransitionOverHTTP(t *testing.T) {
	app, _ := newTestApp(t)
	admin := login(t, app, "admin")

	// start-coding straight from WAITING conflicts with the phase machine.
	resp := postJSON(t, app, "/admin/start-coding", admin.Token, nil)
	if resp.StatusCode != 409 {
		t.Errorf("start-coding from WAITING status = %d, want 409", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestStartAuctionNoProblemsOverHTTP(t *testing.T) {
	app, memStore := newTestApp(t)
	admin := login(t, app, "admin")

	problems, _ := memStore.AllProblems()
	for _, p := range problems {
		memStore.DeleteProblem(p.ID)
	}

	resp := postJSON(t, app, "/admin/start-auction", admin.Token, nil)
	if resp.StatusCode != 400 {
		t.Errorf("empty-pool start-auction status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestStartAuctionUnknownProblem(t *testing.T) {
	app, _ := newTestApp(t)
	admin := login(t, app, "admin")

	unknown := uint(999)
	resp := postJSON(t, app, "/admin/start-auction", admin.Token, StartAuctionRequest{ProblemID: &unknown})
	if resp.StatusCode != 404 {
		t.Errorf("unknown problem status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestProblemListingHidesSolutions(t *testing.T) {
	app, memStore := newTestApp(t)
	admin := login(t, app, "admin")

	if err := memStore.CreateProblem(&models.Problem{
		Title:       "Secret",
		Description: "d",
		Difficulty:  models.DifficultyMedium,
		Solution:    "the answer",
	}); err != nil {
		t.Fatalf("create problem: %v", err)
	}

	decode := func(resp *http.Response) []models.Problem {
		t.Helper()
		defer resp.Body.Close()
		var problems []models.Problem
		if err := json.NewDecoder(resp.Body).Decode(&problems); err != nil {
			t.Fatalf("decode problems: %v", err)
		}
		return problems
	}

	// Public listing strips solutions.
	for _, p := range decode(getJSON(t, app, "/event/problems", "")) {
		if p.Solution != "" {
			t.Errorf("public listing leaked solution for %q", p.Title)
		}
	}

	// Admin listing keeps them.
	leaked := false
	for _, p := range decode(getJSON(t, app, "/admin/problems", admin.Token)) {
		if p.Solution == "the answer" {
			leaked = true
		}
	}
	if !leaked {
		t.Error("admin listing should include reference solutions")
	}
}

func TestLeaderboardOverHTTP(t *testing.T) {
	app, _ := newTestApp(t)
	admin := login(t, app, "admin")
	login(t, app, "rocket")
	login(t, app, "comet")

	resp := getJSON(t, app, "/admin/leaderboard", admin.Token)
	if resp.StatusCode != 200 {
		t.Fatalf("leaderboard status = %d", resp.StatusCode)
	}
	defer resp.Body.Close()

	var teams []models.Team
	if err := json.NewDecoder(resp.Body).Decode(&teams); err != nil {
		t.Fatalf("decode teams: %v", err)
	}
	if len(teams) != 2 {
		t.Fatalf("leaderboard size = %d, want 2 (admin excluded)", len(teams))
	}
	for _, team := range teams {
		if team.IsAdmin {
			t.Errorf("leaderboard contains admin team %s", team.Name)
		}
	}
}
