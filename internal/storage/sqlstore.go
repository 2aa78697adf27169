package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"tabungan/internal/core"
	applog "tabungan/internal/log"
)

// database/sql driver names
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// SQLStore implements Store on SQLite or PostgreSQL through sqlx. Queries
// are written with ? placeholders and rebound for the driver.
type SQLStore struct {
	db     *sqlx.DB
	logger *applog.Logger
	now    func() time.Time
}

// Open connects, pings and migrates the database.
func Open(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	if driver == DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}

	if driver == DriverSQLite {
		// one writer at a time avoids SQLITE_BUSY under concurrent requests
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := RunMigrations(db.DB, driver); err != nil {
		db.Close()
		return nil, err
	}

	logger := applog.WithComponent(applog.ComponentStorage)
	logger.Info("database ready", "driver", driver)
	return &SQLStore{db: db, logger: logger, now: time.Now}, nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLStore) q(query string) string {
	return s.db.Rebind(query)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("get %s: %w", what, err)
}

func affectedOne(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}

const userColumns = "id, name, email, country, bio, birthdate, created_at, username, password"

func (s *SQLStore) CreateUser(ctx context.Context, u core.User) error {
	_, err := s.db.ExecContext(ctx, s.q(`INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		u.ID, u.Name, u.Email, u.Country, u.Bio, u.Birthdate, u.CreatedAt.UTC(), u.Username, u.PasswordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create user %s: %w", u.Username, ErrConflict)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *SQLStore) GetUser(ctx context.Context, id string) (core.User, error) {
	var u core.User
	err := s.db.GetContext(ctx, &u, s.q(`SELECT `+userColumns+` FROM users WHERE id = ?`), id)
	if err != nil {
		return core.User{}, notFound(err, "user")
	}
	return u, nil
}

func (s *SQLStore) GetUserByUsername(ctx context.Context, username string) (core.User, error) {
	var u core.User
	err := s.db.GetContext(ctx, &u, s.q(`SELECT `+userColumns+` FROM users WHERE username = ?`), username)
	if err != nil {
		return core.User{}, notFound(err, "user")
	}
	return u, nil
}

func (s *SQLStore) UpdateUser(ctx context.Context, u core.User) error {
	res, err := s.db.ExecContext(ctx, s.q(`UPDATE users
		SET name = ?, email = ?, country = ?, bio = ?, birthdate = ?
		WHERE id = ?`),
		u.Name, u.Email, u.Country, u.Bio, u.Birthdate, u.ID)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return affectedOne(res, "user")
}

func (s *SQLStore) ListUsers(ctx context.Context) ([]core.User, error) {
	users := []core.User{}
	if err := s.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id`); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

const entryColumns = "id, user_id, type, amount, date, created_at, category, note, source_method, channel_bank"

func (s *SQLStore) ListEntries(ctx context.Context, userID string) ([]core.MoneyEntry, error) {
	entries := []core.MoneyEntry{}
	err := s.db.SelectContext(ctx, &entries, s.q(`SELECT `+entryColumns+` FROM money_entries
		WHERE user_id = ? ORDER BY created_at DESC, id`), userID)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}

func (s *SQLStore) GetEntry(ctx context.Context, userID, id string) (core.MoneyEntry, error) {
	var e core.MoneyEntry
	err := s.db.GetContext(ctx, &e, s.q(`SELECT `+entryColumns+` FROM money_entries
		WHERE user_id = ? AND id = ?`), userID, id)
	if err != nil {
		return core.MoneyEntry{}, notFound(err, "entry")
	}
	return e, nil
}

func (s *SQLStore) CreateEntry(ctx context.Context, e core.MoneyEntry) error {
	_, err := s.db.ExecContext(ctx, s.q(`INSERT INTO money_entries (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		e.ID, e.UserID, string(e.Type), e.Amount, e.Date, e.CreatedAt.UTC(), e.Category, e.Note, e.SourceMethod, e.ChannelBank)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create entry %s: %w", e.ID, ErrConflict)
		}
		return fmt.Errorf("create entry: %w", err)
	}
	return nil
}

// UpdateEntry rewrites the editable columns; type and created_at stay.
func (s *SQLStore) UpdateEntry(ctx context.Context, e core.MoneyEntry) error {
	res, err := s.db.ExecContext(ctx, s.q(`UPDATE money_entries
		SET amount = ?, date = ?, category = ?, note = ?, source_method = ?, channel_bank = ?
		WHERE user_id = ? AND id = ?`),
		e.Amount, e.Date, e.Category, e.Note, e.SourceMethod, e.ChannelBank, e.UserID, e.ID)
	if err != nil {
		return fmt.Errorf("update entry: %w", err)
	}
	return affectedOne(res, "entry")
}

func (s *SQLStore) DeleteEntry(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM money_entries WHERE user_id = ? AND id = ?`), userID, id)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return affectedOne(res, "entry")
}

const goalColumns = "id, user_id, title, target, current, deadline, note, source_type, created_at"

func (s *SQLStore) ListGoals(ctx context.Context, userID string) ([]core.Goal, error) {
	goals := []core.Goal{}
	err := s.db.SelectContext(ctx, &goals, s.q(`SELECT `+goalColumns+` FROM dream_entries
		WHERE user_id = ? ORDER BY created_at, id`), userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	return goals, nil
}

func (s *SQLStore) GetGoal(ctx context.Context, userID, id string) (core.Goal, error) {
	var g core.Goal
	err := s.db.GetContext(ctx, &g, s.q(`SELECT `+goalColumns+` FROM dream_entries
		WHERE user_id = ? AND id = ?`), userID, id)
	if err != nil {
		return core.Goal{}, notFound(err, "goal")
	}
	return g, nil
}

func (s *SQLStore) CreateGoal(ctx context.Context, g core.Goal) error {
	_, err := s.db.ExecContext(ctx, s.q(`INSERT INTO dream_entries (`+goalColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		g.ID, g.UserID, g.Title, g.Target, g.Current, g.Deadline, g.Note, string(g.Source), g.CreatedAt.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create goal %s: %w", g.ID, ErrConflict)
		}
		return fmt.Errorf("create goal: %w", err)
	}
	return nil
}

func (s *SQLStore) UpdateGoal(ctx context.Context, g core.Goal) error {
	res, err := s.db.ExecContext(ctx, s.q(`UPDATE dream_entries
		SET title = ?, target = ?, current = ?, deadline = ?, note = ?, source_type = ?
		WHERE user_id = ? AND id = ?`),
		g.Title, g.Target, g.Current, g.Deadline, g.Note, string(g.Source), g.UserID, g.ID)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	return affectedOne(res, "goal")
}

func (s *SQLStore) DeleteGoal(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM dream_entries WHERE user_id = ? AND id = ?`), userID, id)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return affectedOne(res, "goal")
}

func (s *SQLStore) GetFlag(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.GetContext(ctx, &value, s.q(`SELECT value FROM local_flags WHERE key = ?`), key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get flag %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLStore) SetFlag(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, s.q(`INSERT INTO local_flags (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`),
		key, value, s.now().UTC())
	if err != nil {
		return fmt.Errorf("set flag %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) DeleteFlag(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, s.q(`DELETE FROM local_flags WHERE key = ?`), key); err != nil {
		return fmt.Errorf("delete flag %s: %w", key, err)
	}
	return nil
}

var _ Store = (*SQLStore)(nil)
