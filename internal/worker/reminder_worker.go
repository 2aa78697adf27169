// Package worker runs the daily goal deadline reminder pass.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"tabungan/internal/core"
	applog "tabungan/internal/log"
	"tabungan/internal/reminder"
	"tabungan/internal/services"
	"tabungan/internal/storage"
)

// Store is what a pass reads.
type Store interface {
	ListUsers(ctx context.Context) ([]core.User, error)
	ListEntries(ctx context.Context, userID string) ([]core.MoneyEntry, error)
	ListGoals(ctx context.Context, userID string) ([]core.Goal, error)
}

var _ Store = (storage.Store)(nil)

type Config struct {
	Zone          *time.Location
	RetryInterval time.Duration
	Concurrency   int
}

// PassResult summarizes one pass over all users.
type PassResult struct {
	Users    int
	Disabled int
	reminder.Outcome
}

type ReminderWorker struct {
	store    Store
	prefs    *services.PreferenceService
	reminder *reminder.Reminder
	cfg      Config
	logger   *applog.Logger
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
}

func NewReminderWorker(store Store, prefs *services.PreferenceService, r *reminder.Reminder, cfg Config) *ReminderWorker {
	if cfg.Zone == nil {
		cfg.Zone = core.LoadZone(core.DefaultZoneName)
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 15 * time.Minute
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &ReminderWorker{
		store:    store,
		prefs:    prefs,
		reminder: r,
		cfg:      cfg,
		logger:   applog.WithComponent(applog.ComponentWorker),
		now:      time.Now,
		sleep:    sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// NextRun returns the next midnight after now in the reference zone.
func (w *ReminderWorker) NextRun(now time.Time) time.Time {
	y, m, d := now.In(w.cfg.Zone).Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, w.cfg.Zone)
}

// RunPass reminds every user once for today's date. Users are processed
// concurrently; the first error cancels the rest of the pass.
func (w *ReminderWorker) RunPass(ctx context.Context) (PassResult, error) {
	today := core.Today(w.now(), w.cfg.Zone)

	users, err := w.store.ListUsers(ctx)
	if err != nil {
		return PassResult{}, fmt.Errorf("list users: %w", err)
	}

	var (
		mu  sync.Mutex
		res = PassResult{Users: len(users)}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.cfg.Concurrency)

	for _, u := range users {
		g.Go(func() error {
			out, disabled, err := w.remindUser(gctx, u, today)
			if err != nil {
				return fmt.Errorf("user %s: %w", u.ID, err)
			}
			mu.Lock()
			defer mu.Unlock()
			if disabled {
				res.Disabled++
			}
			res.Sent += out.Sent
			res.Skipped += out.Skipped
			res.Denied += out.Denied
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}

	w.logger.InfoContext(ctx, "reminder pass complete",
		applog.FieldUsers, res.Users,
		applog.FieldSent, res.Sent,
		"skipped", res.Skipped,
		"denied", res.Denied,
		"disabled", res.Disabled,
	)
	return res, nil
}

func (w *ReminderWorker) remindUser(ctx context.Context, u core.User, today time.Time) (reminder.Outcome, bool, error) {
	enabled, err := w.prefs.NotificationsEnabled(ctx, u.ID)
	if err != nil {
		return reminder.Outcome{}, false, err
	}
	if !enabled {
		return reminder.Outcome{}, true, nil
	}

	entries, err := w.store.ListEntries(ctx, u.ID)
	if err != nil {
		return reminder.Outcome{}, false, fmt.Errorf("list entries: %w", err)
	}
	goals, err := w.store.ListGoals(ctx, u.ID)
	if err != nil {
		return reminder.Outcome{}, false, fmt.Errorf("list goals: %w", err)
	}
	income, _ := core.SplitByType(entries)

	out, err := w.reminder.Remind(ctx, reminder.Subject{
		User:     u,
		Language: w.prefs.Language(ctx, u.ID),
		Income:   income,
		Goals:    goals,
	}, today)
	return out, false, err
}

// Run does a pass right away and then one after every local midnight. A
// failed pass is retried after the retry interval. Run returns when ctx is
// cancelled.
func (w *ReminderWorker) Run(ctx context.Context) error {
	for {
		now := w.now()
		next := w.NextRun(now)

		if _, err := w.RunPass(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			retry := now.Add(w.cfg.RetryInterval)
			if retry.Before(next) {
				next = retry
			}
			w.logger.ErrorContext(ctx, "reminder pass failed",
				applog.FieldError, err.Error(),
				applog.FieldNextRun, next.Format(time.RFC3339),
			)
		}

		if err := w.sleep(ctx, next.Sub(w.now())); err != nil {
			w.logger.InfoContext(ctx, "reminder worker stopping", "reason", err.Error())
			return nil
		}
	}
}
