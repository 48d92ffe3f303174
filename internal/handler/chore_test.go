package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dukerupert/chorebot/internal/database"
	"github.com/dukerupert/chorebot/internal/model"
	"github.com/dukerupert/chorebot/internal/recurrence"
	"github.com/dukerupert/chorebot/internal/store"
)

var (
	alice = model.User{ID: "U1", Name: "alice"}
	now   = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
)

func setupHandlerTest(t *testing.T) (*store.Store, http.Handler) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	st := store.New(db, time.UTC)
	logger := slog.Default()
	ch := NewChoreHandler(st, func() time.Time { return now }, logger)
	uh := NewUserHandler(st, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/chores", ch.List)
	mux.HandleFunc("GET /api/chores/{name}", ch.Get)
	mux.HandleFunc("GET /api/chores/{name}/completions", ch.Completions)
	mux.HandleFunc("GET /api/users", uh.List)
	return st, mux
}

func get(t *testing.T, h http.Handler, path string, v any) int {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if v != nil && rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return rec.Code
}

func TestChoreListEmpty(t *testing.T) {
	_, h := setupHandlerTest(t)

	var views []choreView
	if code := get(t, h, "/api/chores", &views); code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if views == nil || len(views) != 0 {
		t.Errorf("views = %v, want empty array", views)
	}
}

func TestChoreListStatus(t *testing.T) {
	st, h := setupHandlerTest(t)
	if err := st.AddUser(alice); err != nil {
		t.Fatalf("add user: %v", err)
	}
	daily := recurrence.Daily{At: recurrence.Clock{Hour: 9}}
	for _, c := range []model.Chore{
		{Name: "dishes", Recurrence: daily},
		{Name: "vacuum", Recurrence: daily, Assigned: &alice},
		{Name: "mow", Recurrence: daily},
	} {
		if err := st.AddChore(c); err != nil {
			t.Fatalf("add chore: %v", err)
		}
	}
	if err := st.CompleteChore("mow", alice, now.Add(-time.Hour)); err != nil {
		t.Fatalf("complete: %v", err)
	}

	var views []choreView
	if code := get(t, h, "/api/chores", &views); code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if len(views) != 3 {
		t.Fatalf("got %d chores, want 3", len(views))
	}

	byName := make(map[string]choreView)
	for _, v := range views {
		byName[v.Name] = v
	}
	if v := byName["dishes"]; v.Status != "overdue" || !v.Overdue {
		t.Errorf("dishes = %+v, want overdue", v)
	}
	if v := byName["vacuum"]; v.Status != "assigned" || v.AssignedTo == nil || v.AssignedTo.ID != alice.ID {
		t.Errorf("vacuum = %+v, want assigned to alice", v)
	}
	mow := byName["mow"]
	if mow.Status != "pending" || mow.Overdue {
		t.Errorf("mow = %+v, want pending", mow)
	}
	wantDue := time.Date(2026, 10, 20, 9, 0, 0, 0, time.UTC)
	if mow.DueAt == nil || !mow.DueAt.Equal(wantDue) {
		t.Errorf("mow due = %v, want %v", mow.DueAt, wantDue)
	}
	if mow.Frequency != "daily @ 9:00 AM" {
		t.Errorf("mow frequency = %q", mow.Frequency)
	}
}

func TestChoreGet(t *testing.T) {
	st, h := setupHandlerTest(t)
	if err := st.AddChore(model.Chore{Name: "dishes", Recurrence: recurrence.Weekly{Day: time.Friday}}); err != nil {
		t.Fatalf("add chore: %v", err)
	}

	var v choreView
	if code := get(t, h, "/api/chores/Dishes", &v); code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if v.Name != "dishes" || v.Recurrence != "FREQ=WEEKLY;BYDAY=FR" {
		t.Errorf("got %+v", v)
	}

	if code := get(t, h, "/api/chores/ghost", nil); code != http.StatusNotFound {
		t.Errorf("missing chore status = %d, want 404", code)
	}
}

func TestChoreCompletions(t *testing.T) {
	st, h := setupHandlerTest(t)
	if err := st.AddUser(alice); err != nil {
		t.Fatalf("add user: %v", err)
	}
	if err := st.AddChore(model.Chore{Name: "dishes", Recurrence: recurrence.Daily{}}); err != nil {
		t.Fatalf("add chore: %v", err)
	}
	if err := st.CompleteChore("dishes", alice, now.Add(-2*time.Hour)); err != nil {
		t.Fatalf("complete: %v", err)
	}

	var completions []model.ChoreCompletion
	if code := get(t, h, "/api/chores/dishes/completions", &completions); code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if len(completions) != 1 || completions[0].By.ID != alice.ID {
		t.Errorf("completions = %+v, want one by alice", completions)
	}
}

func TestUserList(t *testing.T) {
	st, h := setupHandlerTest(t)
	if err := st.AddUser(alice); err != nil {
		t.Fatalf("add user: %v", err)
	}

	var users []model.User
	if code := get(t, h, "/api/users", &users); code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if len(users) != 1 || users[0] != alice {
		t.Errorf("users = %v, want [alice]", users)
	}
}
