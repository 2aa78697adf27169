package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"tabungan/internal/core"
	"tabungan/internal/storage"
)

func TestUsernameUnique(t *testing.T) {
	s := New()
	ctx := context.Background()
	if err := s.CreateUser(ctx, core.User{ID: "u1", Username: "alice"}); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateUser(ctx, core.User{ID: "u2", Username: "alice"}); !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestEntryOwnership(t *testing.T) {
	s := New()
	ctx := context.Background()
	e := core.MoneyEntry{ID: "e1", UserID: "u1", Type: core.Income, Amount: 10, CreatedAt: time.Now()}
	if err := s.CreateEntry(ctx, e); err != nil {
		t.Fatal(err)
	}

	if _, err := s.GetEntry(ctx, "u2", "e1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("foreign read: %v", err)
	}
	e.UserID = "u2"
	if err := s.UpdateEntry(ctx, e); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("foreign update: %v", err)
	}
	if err := s.DeleteEntry(ctx, "u2", "e1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("foreign delete: %v", err)
	}

	e.UserID = "u1"
	e.Type = core.Expense
	e.Amount = 99
	if err := s.UpdateEntry(ctx, e); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetEntry(ctx, "u1", "e1")
	if got.Amount != 99 || got.Type != core.Income {
		t.Fatalf("update must change amount but keep type: %+v", got)
	}
}

func TestGoalsOrderedByCreation(t *testing.T) {
	s := New()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	_ = s.CreateGoal(ctx, core.Goal{ID: "b", UserID: "u1", CreatedAt: base.Add(time.Second)})
	_ = s.CreateGoal(ctx, core.Goal{ID: "a", UserID: "u1", CreatedAt: base})
	_ = s.CreateGoal(ctx, core.Goal{ID: "c", UserID: "u2", CreatedAt: base})

	goals, _ := s.ListGoals(ctx, "u1")
	if len(goals) != 2 || goals[0].ID != "a" || goals[1].ID != "b" {
		t.Fatalf("unexpected goals %+v", goals)
	}
}
