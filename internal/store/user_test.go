package store

import (
	"errors"
	"testing"
	"time"

	"github.com/dukerupert/chorebot/internal/model"
)

func TestUserCreateAndGet(t *testing.T) {
	_, us := setupChoreTestDB(t)

	if err := us.Create(alice); err != nil {
		t.Fatalf("create user: %v", err)
	}
	got, err := us.GetByID(alice.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got == nil || *got != alice {
		t.Errorf("got %v, want %v", got, alice)
	}

	missing, err := us.GetByID("nobody")
	if err != nil {
		t.Fatalf("get missing user: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing user, got %v", missing)
	}
}

func TestUserCreateRefreshesName(t *testing.T) {
	_, us := setupChoreTestDB(t)

	if err := us.Create(alice); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := us.Create(model.User{ID: alice.ID, Name: "ally"}); err != nil {
		t.Fatalf("create again: %v", err)
	}
	users, err := us.List()
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 1 || users[0].Name != "ally" {
		t.Errorf("users = %v, want one user named ally", users)
	}
}

func TestUserDelete(t *testing.T) {
	cs, us := setupChoreTestDB(t)
	for _, u := range []model.User{alice, bob} {
		if err := us.Create(u); err != nil {
			t.Fatalf("create user: %v", err)
		}
	}
	if err := cs.Create(model.Chore{
		Name:       "dishes",
		Recurrence: daily(9),
		Assigned:   &alice,
	}); err != nil {
		t.Fatalf("create chore: %v", err)
	}
	if err := cs.Create(model.Chore{
		Name:       "vacuum",
		Recurrence: daily(9),
		SkippedBy:  []model.User{alice, bob},
	}); err != nil {
		t.Fatalf("create chore: %v", err)
	}

	if err := us.Delete(alice.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	got, _ := us.GetByID(alice.ID)
	if got != nil {
		t.Errorf("expected nil after delete, got %v", got)
	}
	dishes, _ := cs.GetByName("dishes")
	if dishes.Assigned != nil {
		t.Errorf("dishes assigned = %v, want nil", dishes.Assigned)
	}
	vacuum, _ := cs.GetByName("vacuum")
	if len(vacuum.SkippedBy) != 1 || vacuum.SkippedBy[0].ID != bob.ID {
		t.Errorf("vacuum skipped by = %v, want [bob]", vacuum.SkippedBy)
	}

	if err := us.Delete(alice.ID); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("second delete err = %v, want ErrUserNotFound", err)
	}

	// Joining again reactivates the user.
	if err := us.Create(alice); err != nil {
		t.Fatalf("re-create user: %v", err)
	}
	got, _ = us.GetByID(alice.ID)
	if got == nil {
		t.Error("expected user after rejoining")
	}
}

func TestUserListAssignable(t *testing.T) {
	cs, us := setupChoreTestDB(t)
	carol := model.User{ID: "U3", Name: "carol"}
	dave := model.User{ID: "U4", Name: "dave"}
	for _, u := range []model.User{alice, bob, carol, dave} {
		if err := us.Create(u); err != nil {
			t.Fatalf("create user: %v", err)
		}
	}
	for _, c := range []model.Chore{
		{Name: "dishes", Recurrence: daily(9)},
		{Name: "vacuum", Recurrence: daily(9)},
		{Name: "laundry", Recurrence: daily(9), Assigned: &dave},
	} {
		if err := cs.Create(c); err != nil {
			t.Fatalf("create chore: %v", err)
		}
	}

	// bob completed long ago, alice recently, carol never.
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	if err := cs.Complete("dishes", bob.ID, base); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if err := cs.Complete("vacuum", alice.ID, base.AddDate(0, 0, 10)); err != nil {
		t.Fatalf("complete: %v", err)
	}

	users, err := us.ListAssignable()
	if err != nil {
		t.Fatalf("list assignable: %v", err)
	}
	want := []string{"carol", "bob", "alice"}
	if len(users) != len(want) {
		t.Fatalf("got %d users, want %d: %v", len(users), len(want), users)
	}
	for i, name := range want {
		if users[i].Name != name {
			t.Errorf("user[%d] = %q, want %q", i, users[i].Name, name)
		}
	}
}
