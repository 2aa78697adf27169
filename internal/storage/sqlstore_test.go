package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"tabungan/internal/core"
)

func openTestStore(t *testing.T) *SQLStore {
	t.Helper()
	store, err := Open(context.Background(), DriverSQLite, filepath.Join(t.TempDir(), "db", "tabungan.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func seedUser(t *testing.T, s *SQLStore, id, username string, created time.Time) core.User {
	t.Helper()
	u := core.User{ID: id, Name: "Name " + id, Username: username, PasswordHash: "hash", CreatedAt: created}
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tabungan.db")
	for i := 0; i < 2; i++ {
		s, err := Open(context.Background(), DriverSQLite, path)
		if err != nil {
			t.Fatalf("open #%d: %v", i, err)
		}
		if err := s.Ping(context.Background()); err != nil {
			t.Fatalf("ping: %v", err)
		}
		s.Close()
	}
}

func TestUsers(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	seedUser(t, s, "u1", "alice", base)
	seedUser(t, s, "u2", "bob", base.Add(time.Hour))

	if err := s.CreateUser(ctx, core.User{ID: "u3", Username: "alice", CreatedAt: base}); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate username: expected ErrConflict, got %v", err)
	}

	got, err := s.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if got.ID != "u1" || got.PasswordHash != "hash" || !got.CreatedAt.Equal(base) {
		t.Fatalf("unexpected user %+v", got)
	}

	got.Name, got.Country, got.Bio = "Alice", "ID", "saver"
	got.Username = "ignored"
	if err := s.UpdateUser(ctx, got); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	reloaded, err := s.GetUser(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Name != "Alice" || reloaded.Country != "ID" || reloaded.Username != "alice" {
		t.Fatalf("profile update not applied as expected: %+v", reloaded)
	}

	users, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 2 || users[0].ID != "u2" {
		t.Fatalf("users must be listed newest first: %+v", users)
	}

	if _, err := s.GetUser(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.UpdateUser(ctx, core.User{ID: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}
}

func TestEntriesAreScopedToUser(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	seedUser(t, s, "u1", "alice", now)
	seedUser(t, s, "u2", "bob", now)

	entry := core.MoneyEntry{
		ID: "e1", UserID: "u1", Type: core.Income, Amount: 150000, Date: "2026-03-01",
		CreatedAt: now, Category: "Gaji", SourceMethod: "Transfer", ChannelBank: "BCA",
	}
	if err := s.CreateEntry(ctx, entry); err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}
	if err := s.CreateEntry(ctx, core.MoneyEntry{ID: "e2", UserID: "u1", Type: core.Expense, Amount: 5000, CreatedAt: now.Add(time.Minute), Category: "Makan"}); err != nil {
		t.Fatal(err)
	}

	list, err := s.ListEntries(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != "e2" || list[1].Type != core.Income {
		t.Fatalf("unexpected entries %+v", list)
	}
	if other, _ := s.ListEntries(ctx, "u2"); len(other) != 0 {
		t.Fatalf("entries leaked across users: %+v", other)
	}

	entry.Amount = 175000
	entry.Note = "bonus"
	if err := s.UpdateEntry(ctx, entry); err != nil {
		t.Fatalf("UpdateEntry: %v", err)
	}
	got, err := s.GetEntry(ctx, "u1", "e1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Amount != 175000 || got.Note != "bonus" || got.ChannelBank != "BCA" {
		t.Fatalf("update not persisted: %+v", got)
	}

	foreign := entry
	foreign.UserID = "u2"
	if err := s.UpdateEntry(ctx, foreign); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign update: expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteEntry(ctx, "u2", "e1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign delete: expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteEntry(ctx, "u1", "e1"); err != nil {
		t.Fatalf("DeleteEntry: %v", err)
	}
	if _, err := s.GetEntry(ctx, "u1", "e1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted entry still present: %v", err)
	}
}

func TestGoals(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	seedUser(t, s, "u1", "alice", now)

	g1 := core.Goal{ID: "g1", UserID: "u1", Title: "Laptop", Target: 10_000_000, Deadline: "2026-12-31", Source: core.SourceIncome, CreatedAt: now}
	g2 := core.Goal{ID: "g2", UserID: "u1", Title: "Budget", Target: 2_000_000, Source: core.SourceExpense, CreatedAt: now.Add(time.Second)}
	for _, g := range []core.Goal{g2, g1} {
		if err := s.CreateGoal(ctx, g); err != nil {
			t.Fatalf("CreateGoal: %v", err)
		}
	}

	goals, err := s.ListGoals(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(goals) != 2 || goals[0].ID != "g1" || goals[1].Source != core.SourceExpense {
		t.Fatalf("goals must come back in creation order: %+v", goals)
	}

	g1.Source = core.SourceBalance
	g1.Target = 0
	if err := s.UpdateGoal(ctx, g1); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetGoal(ctx, "u1", "g1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Source != core.SourceBalance || got.Target != 0 {
		t.Fatalf("goal update not persisted: %+v", got)
	}

	if err := s.DeleteGoal(ctx, "u1", "g1"); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteGoal(ctx, "u1", "g1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestFlags(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, ok, err := s.GetFlag(ctx, "missing"); err != nil || ok {
		t.Fatalf("missing flag: ok=%v err=%v", ok, err)
	}
	if err := s.SetFlag(ctx, "k", "2026-01-01"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetFlag(ctx, "k", "2026-01-02"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	v, ok, err := s.GetFlag(ctx, "k")
	if err != nil || !ok || v != "2026-01-02" {
		t.Fatalf("GetFlag = %q %v %v", v, ok, err)
	}
	if err := s.DeleteFlag(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.GetFlag(ctx, "k"); ok {
		t.Fatalf("flag survived delete")
	}
}
