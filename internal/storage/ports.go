package storage

import (
	"context"
	"errors"

	"tabungan/internal/core"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrConflict reports a unique constraint violation, e.g. a taken username.
	ErrConflict = errors.New("conflict")
)

type UserStore interface {
	CreateUser(ctx context.Context, u core.User) error
	GetUser(ctx context.Context, id string) (core.User, error)
	GetUserByUsername(ctx context.Context, username string) (core.User, error)
	// UpdateUser writes the profile fields; username, password and
	// created_at are left alone.
	UpdateUser(ctx context.Context, u core.User) error
	// ListUsers returns every user, newest first.
	ListUsers(ctx context.Context) ([]core.User, error)
}

// EntryStore scopes every operation to one user; an id owned by another
// user is reported as ErrNotFound.
type EntryStore interface {
	ListEntries(ctx context.Context, userID string) ([]core.MoneyEntry, error)
	GetEntry(ctx context.Context, userID, id string) (core.MoneyEntry, error)
	CreateEntry(ctx context.Context, e core.MoneyEntry) error
	UpdateEntry(ctx context.Context, e core.MoneyEntry) error
	DeleteEntry(ctx context.Context, userID, id string) error
}

type GoalStore interface {
	ListGoals(ctx context.Context, userID string) ([]core.Goal, error)
	GetGoal(ctx context.Context, userID, id string) (core.Goal, error)
	CreateGoal(ctx context.Context, g core.Goal) error
	UpdateGoal(ctx context.Context, g core.Goal) error
	DeleteGoal(ctx context.Context, userID, id string) error
}

// FlagStore is a string key-value table for markers and preferences.
type FlagStore interface {
	GetFlag(ctx context.Context, key string) (value string, ok bool, err error)
	SetFlag(ctx context.Context, key, value string) error
	DeleteFlag(ctx context.Context, key string) error
}

type Store interface {
	UserStore
	EntryStore
	GoalStore
	FlagStore
	Ping(ctx context.Context) error
	Close() error
}
