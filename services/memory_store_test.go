package services

import (
	"errors"
	"testing"

	"codebid/models"
)

func TestMemoryStoreSeed(t *testing.T) {
	store := NewMemoryStore()

	admin, err := store.TeamByName("admin")
	if err != nil {
		t.Fatalf("seeded admin missing: %v", err)
	}
	if !admin.IsAdmin || admin.Coins != 10000 {
		t.Errorf("admin = isAdmin:%v coins:%d, want true/10000", admin.IsAdmin, admin.Coins)
	}

	problems, _ := store.AllProblems()
	if len(problems) == 0 {
		t.Error("expected seeded sample problems")
	}

	event, err := store.CurrentEvent()
	if err != nil {
		t.Fatalf("seeded event missing: %v", err)
	}
	if event.State != models.PhaseWaiting {
		t.Errorf("event state = %s, want WAITING", event.State)
	}
}

func TestMemoryStoreTeamUniqueness(t *testing.T) {
	store := NewMemoryStore()
	regNo := "22BCE1234"

	first := &models.Team{Name: "dupes", FullName: "dupes", RegistrationNumber: &regNo, Coins: 1000}
	if err := store.CreateTeam(first); err != nil {
		t.Fatalf("first create: %v", err)
	}

	if err := store.CreateTeam(&models.Team{Name: "dupes", FullName: "x", Coins: 1000}); !errors.Is(err, ErrNameTaken) {
		t.Errorf("duplicate name error = %v, want ErrNameTaken", err)
	}
	if err := store.CreateTeam(&models.Team{Name: "other", FullName: "x", RegistrationNumber: &regNo, Coins: 1000}); !errors.Is(err, ErrRegistrationTaken) {
		t.Errorf("duplicate registration error = %v, want ErrRegistrationTaken", err)
	}

	if _, err := store.TeamByRegistrationNumber(regNo); err != nil {
		t.Errorf("lookup by registration number: %v", err)
	}
}

func TestMemoryStoreCommitBidGuard(t *testing.T) {
	store := NewMemoryStore()
	event, _ := store.CurrentEvent()

	if _, err := store.CommitBid(event.ID, 1, 100); err != nil {
		t.Fatalf("first commit: %v", err)
	}

	// Equal or lower amounts are rejected atomically: no row, no projection
	// change.
	for _, amount := range []int{100, 99, 0} {
		if _, err := store.CommitBid(event.ID, 2, amount); !errors.Is(err, ErrBidTooLow) {
			t.Errorf("CommitBid(%d) error = %v, want ErrBidTooLow", amount, err)
		}
	}

	bids, _ := store.BidsByEvent(event.ID)
	if len(bids) != 1 {
		t.Errorf("bid rows = %d, want 1", len(bids))
	}
	event, _ = store.CurrentEvent()
	if event.HighestBid != 100 || event.HighestBidderID == nil || *event.HighestBidderID != 1 {
		t.Errorf("projection = %d/%v, want 100/team 1", event.HighestBid, event.HighestBidderID)
	}

	if _, err := store.CommitBid(999, 1, 500); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("unknown event error = %v, want ErrEventNotFound", err)
	}
}

func TestMemoryStoreLeaderboard(t *testing.T) {
	store := NewMemoryStore()
	for _, team := range []struct {
		name  string
		coins int
	}{
		{"bravo", 500},
		{"alpha", 900},
		{"charlie", 900},
	} {
		if err := store.CreateTeam(&models.Team{Name: team.name, FullName: team.name, Coins: team.coins}); err != nil {
			t.Fatalf("create %s: %v", team.name, err)
		}
	}

	teams, err := store.Leaderboard()
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}

	// Admins are excluded; ordering is coins descending, name ascending on
	// ties.
	got := make([]string, len(teams))
	for i, team := range teams {
		if team.IsAdmin {
			t.Errorf("leaderboard contains admin team %s", team.Name)
		}
		got[i] = team.Name
	}
	want := []string{"alpha", "charlie", "bravo"}
	if len(got) != len(want) {
		t.Fatalf("leaderboard = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("leaderboard[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestMemoryStoreRandomProblemFallback(t *testing.T) {
	store := NewMemoryStore()

	// Seeded pool has no hard problems; any difficulty is acceptable as a
	// fallback.
	problem, err := store.RandomProblemByDifficulty(models.DifficultyHard)
	if err != nil {
		t.Fatalf("random problem: %v", err)
	}
	if problem == nil {
		t.Fatal("expected a problem from the fallback pool")
	}

	problems, _ := store.AllProblems()
	for _, p := range problems {
		store.DeleteProblem(p.ID)
	}
	if _, err := store.RandomProblemByDifficulty(""); !errors.Is(err, ErrNoProblemsAvailable) {
		t.Errorf("empty pool error = %v, want ErrNoProblemsAvailable", err)
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	store := NewMemoryStore()

	event, _ := store.CurrentEvent()
	event.State = models.PhaseCoding // mutate the copy only

	fresh, _ := store.CurrentEvent()
	if fresh.State != models.PhaseWaiting {
		t.Errorf("store state = %s after external mutation, want WAITING", fresh.State)
	}
}
