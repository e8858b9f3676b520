package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hosteldesk/messvote/models"
	"github.com/hosteldesk/messvote/testutil"
)

func finalizeRequest(t *testing.T, handler *WeekHandler, weekID, userID, role string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest("POST", "/menu/weeks/"+weekID+"/finalize", nil)
	req.SetPathValue("id", weekID)
	setIdentity(req, getTestConfig(), userID, role)
	w := httptest.NewRecorder()

	handler.FinalizeWeek(w, req)
	return w
}

func TestFinalizeWeek_WinnerByVoteCount(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()

	weeks := NewWeekHandler(conn, getTestConfig())
	voting := NewVotingHandler(conn, getTestConfig())

	weekID := testutil.CreateTestWeek(t, conn, "2025-06-02", models.StatusVoting)
	testutil.AddTestOption(t, conn, weekID, 0, models.MealBreakfast, "Idli")
	dosa := testutil.AddTestOption(t, conn, weekID, 0, models.MealBreakfast, "Dosa")

	if w := castVoteRequest(t, voting, "s-1", dosa); w.Code != http.StatusCreated {
		t.Fatalf("Vote failed: %d", w.Code)
	}

	w := finalizeRequest(t, weeks, weekID, "w-1", models.RoleWarden)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d. Body: %s", w.Code, w.Body.String())
	}

	var resp models.FinalizeWeekResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}

	if resp.Week.Status != models.StatusFinalized {
		t.Errorf("Expected FINALIZED, got %s", resp.Week.Status)
	}
	if len(resp.Entries) != 1 {
		t.Fatalf("Expected one final entry, got %d", len(resp.Entries))
	}
	entry := resp.Entries[0]
	if entry.FoodName != "Dosa" || entry.VoteCount != 1 {
		t.Errorf("Expected Dosa with 1 vote, got %s with %d", entry.FoodName, entry.VoteCount)
	}
}

func TestFinalizeWeek_Idempotent(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()

	weeks := NewWeekHandler(conn, getTestConfig())

	weekID := testutil.CreateTestWeek(t, conn, "2025-06-02", models.StatusVoting)
	idli := testutil.AddTestOption(t, conn, weekID, 0, models.MealBreakfast, "Idli")
	if _, err := conn.Exec(`UPDATE meal_option SET vote_count = 3 WHERE id = $1`, idli); err != nil {
		t.Fatal(err)
	}

	first := finalizeRequest(t, weeks, weekID, "c-1", models.RoleCaretaker)
	if first.Code != http.StatusOK {
		t.Fatalf("First finalize: expected 200, got %d", first.Code)
	}

	// A later vote-count change must not alter the frozen menu
	if _, err := conn.Exec(`UPDATE meal_option SET vote_count = 99 WHERE id = $1`, idli); err != nil {
		t.Fatal(err)
	}

	second := finalizeRequest(t, weeks, weekID, "c-1", models.RoleCaretaker)
	if second.Code != http.StatusOK {
		t.Fatalf("Second finalize: expected 200, got %d", second.Code)
	}

	var resp models.FinalizeWeekResponse
	if err := json.NewDecoder(second.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Entries) != 1 {
		t.Fatalf("Expected one final entry, got %d", len(resp.Entries))
	}
	if resp.Entries[0].VoteCount != 3 {
		t.Errorf("Expected the frozen count 3, got %d", resp.Entries[0].VoteCount)
	}
}

func TestFinalizeWeek_SlotsWithoutOptionsGetNoEntry(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()

	weeks := NewWeekHandler(conn, getTestConfig())

	weekID := testutil.CreateTestWeek(t, conn, "2025-06-02", models.StatusVoting)
	testutil.AddTestOption(t, conn, weekID, 0, models.MealBreakfast, "Idli")
	testutil.AddTestOption(t, conn, weekID, 3, models.MealDinner, "Biryani")

	w := finalizeRequest(t, weeks, weekID, "w-1", models.RoleWarden)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var resp models.FinalizeWeekResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}

	if len(resp.Entries) != 2 {
		t.Errorf("Expected 2 final entries (19 slots empty), got %d", len(resp.Entries))
	}
}

func TestFinalizeWeek_NotFound(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()

	weeks := NewWeekHandler(conn, getTestConfig())

	w := finalizeRequest(t, weeks, "no-such-week", "w-1", models.RoleWarden)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestFinalizeWeek_StudentForbidden(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()

	weeks := NewWeekHandler(conn, getTestConfig())

	weekID := testutil.CreateTestWeek(t, conn, "2025-06-02", models.StatusVoting)

	w := finalizeRequest(t, weeks, weekID, "s-1", models.RoleStudent)
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403, got %d", w.Code)
	}

	var status string
	if err := conn.QueryRow(`SELECT status FROM menu_week WHERE id = $1`, weekID).Scan(&status); err != nil {
		t.Fatal(err)
	}
	if status != models.StatusVoting {
		t.Errorf("Week must stay VOTING after a forbidden finalize, got %s", status)
	}
}

func TestPickWinners(t *testing.T) {
	early := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	late := time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC)

	opt := func(id string, day int, meal, food string, votes int, created time.Time) models.MealOption {
		return models.MealOption{
			ID: id, WeekID: "wk", Day: day, MealType: meal,
			FoodName: food, VoteCount: votes, CreatedAt: created,
		}
	}

	tests := []struct {
		name     string
		options  []models.MealOption
		expected map[string]string // slot key -> winning food
	}{
		{
			name: "highest count wins",
			options: []models.MealOption{
				opt("a", 0, models.MealBreakfast, "Idli", 2, early),
				opt("b", 0, models.MealBreakfast, "Dosa", 5, late),
			},
			expected: map[string]string{"0-breakfast": "Dosa"},
		},
		{
			name: "tie broken by earliest creation",
			options: []models.MealOption{
				opt("a", 0, models.MealBreakfast, "Idli", 3, late),
				opt("b", 0, models.MealBreakfast, "Dosa", 3, early),
			},
			expected: map[string]string{"0-breakfast": "Dosa"},
		},
		{
			name: "identical timestamps fall back to id order",
			options: []models.MealOption{
				opt("z", 0, models.MealBreakfast, "Idli", 0, early),
				opt("a", 0, models.MealBreakfast, "Dosa", 0, early),
			},
			expected: map[string]string{"0-breakfast": "Dosa"},
		},
		{
			name: "one winner per slot",
			options: []models.MealOption{
				opt("a", 0, models.MealBreakfast, "Idli", 1, early),
				opt("b", 0, models.MealLunch, "Rice", 0, early),
				opt("c", 4, models.MealDinner, "Biryani", 7, early),
				opt("d", 4, models.MealDinner, "Khichdi", 2, early),
			},
			expected: map[string]string{
				"0-breakfast": "Idli",
				"0-lunch":     "Rice",
				"4-dinner":    "Biryani",
			},
		},
		{
			name:     "no options no entries",
			options:  nil,
			expected: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := pickWinners(tt.options)
			if len(entries) != len(tt.expected) {
				t.Fatalf("Expected %d entries, got %d", len(tt.expected), len(entries))
			}
			for _, e := range entries {
				key := slotKey(e.Day, e.MealType)
				want, ok := tt.expected[key]
				if !ok {
					t.Errorf("Unexpected entry for slot %s", key)
					continue
				}
				if e.FoodName != want {
					t.Errorf("Slot %s: expected %s, got %s", key, want, e.FoodName)
				}
			}
		})
	}
}

func TestPickWinners_InputOrderIrrelevant(t *testing.T) {
	created := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	options := []models.MealOption{
		{ID: "a", WeekID: "wk", Day: 0, MealType: models.MealBreakfast, FoodName: "Idli", VoteCount: 2, CreatedAt: created},
		{ID: "b", WeekID: "wk", Day: 0, MealType: models.MealBreakfast, FoodName: "Dosa", VoteCount: 2, CreatedAt: created},
		{ID: "c", WeekID: "wk", Day: 1, MealType: models.MealLunch, FoodName: "Rice", VoteCount: 0, CreatedAt: created},
	}
	reversed := []models.MealOption{options[2], options[1], options[0]}

	forward := pickWinners(options)
	backward := pickWinners(reversed)

	if len(forward) != len(backward) {
		t.Fatalf("Entry counts differ: %d vs %d", len(forward), len(backward))
	}
	for i := range forward {
		if forward[i] != backward[i] {
			t.Errorf("Entry %d differs: %+v vs %+v", i, forward[i], backward[i])
		}
	}
}
