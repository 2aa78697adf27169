// Package memory is an in-process Store for development and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"tabungan/internal/core"
	"tabungan/internal/storage"
)

type Store struct {
	mu      sync.RWMutex
	users   map[string]core.User
	entries map[string]core.MoneyEntry
	goals   map[string]core.Goal
	flags   map[string]string
}

func New() *Store {
	return &Store{
		users:   make(map[string]core.User),
		entries: make(map[string]core.MoneyEntry),
		goals:   make(map[string]core.Goal),
		flags:   make(map[string]string),
	}
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func (s *Store) CreateUser(_ context.Context, u core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; ok {
		return fmt.Errorf("create user %s: %w", u.ID, storage.ErrConflict)
	}
	for _, existing := range s.users {
		if existing.Username == u.Username {
			return fmt.Errorf("create user %s: %w", u.Username, storage.ErrConflict)
		}
	}
	s.users[u.ID] = u
	return nil
}

func (s *Store) GetUser(_ context.Context, id string) (core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return core.User{}, fmt.Errorf("user: %w", storage.ErrNotFound)
	}
	return u, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return core.User{}, fmt.Errorf("user: %w", storage.ErrNotFound)
}

func (s *Store) UpdateUser(_ context.Context, u core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.users[u.ID]
	if !ok {
		return fmt.Errorf("user: %w", storage.ErrNotFound)
	}
	existing.Name = u.Name
	existing.Email = u.Email
	existing.Country = u.Country
	existing.Bio = u.Bio
	existing.Birthdate = u.Birthdate
	s.users[u.ID] = existing
	return nil
}

func (s *Store) ListUsers(context.Context) ([]core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) ListEntries(_ context.Context, userID string) ([]core.MoneyEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []core.MoneyEntry{}
	for _, e := range s.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) GetEntry(_ context.Context, userID, id string) (core.MoneyEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok || e.UserID != userID {
		return core.MoneyEntry{}, fmt.Errorf("entry: %w", storage.ErrNotFound)
	}
	return e, nil
}

func (s *Store) CreateEntry(_ context.Context, e core.MoneyEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[e.ID]; ok {
		return fmt.Errorf("create entry %s: %w", e.ID, storage.ErrConflict)
	}
	s.entries[e.ID] = e
	return nil
}

func (s *Store) UpdateEntry(_ context.Context, e core.MoneyEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.entries[e.ID]
	if !ok || existing.UserID != e.UserID {
		return fmt.Errorf("entry: %w", storage.ErrNotFound)
	}
	existing.Amount = e.Amount
	existing.Date = e.Date
	existing.Category = e.Category
	existing.Note = e.Note
	existing.SourceMethod = e.SourceMethod
	existing.ChannelBank = e.ChannelBank
	s.entries[e.ID] = existing
	return nil
}

func (s *Store) DeleteEntry(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok || e.UserID != userID {
		return fmt.Errorf("entry: %w", storage.ErrNotFound)
	}
	delete(s.entries, id)
	return nil
}

func (s *Store) ListGoals(_ context.Context, userID string) ([]core.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []core.Goal{}
	for _, g := range s.goals {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) GetGoal(_ context.Context, userID, id string) (core.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.goals[id]
	if !ok || g.UserID != userID {
		return core.Goal{}, fmt.Errorf("goal: %w", storage.ErrNotFound)
	}
	return g, nil
}

func (s *Store) CreateGoal(_ context.Context, g core.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.goals[g.ID]; ok {
		return fmt.Errorf("create goal %s: %w", g.ID, storage.ErrConflict)
	}
	s.goals[g.ID] = g
	return nil
}

func (s *Store) UpdateGoal(_ context.Context, g core.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.goals[g.ID]
	if !ok || existing.UserID != g.UserID {
		return fmt.Errorf("goal: %w", storage.ErrNotFound)
	}
	g.CreatedAt = existing.CreatedAt
	s.goals[g.ID] = g
	return nil
}

func (s *Store) DeleteGoal(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[id]
	if !ok || g.UserID != userID {
		return fmt.Errorf("goal: %w", storage.ErrNotFound)
	}
	delete(s.goals, id)
	return nil
}

func (s *Store) GetFlag(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.flags[key]
	return v, ok, nil
}

func (s *Store) SetFlag(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags[key] = value
	return nil
}

func (s *Store) DeleteFlag(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.flags, key)
	return nil
}

var _ storage.Store = (*Store)(nil)
