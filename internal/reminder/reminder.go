// Package reminder implements the daily goal deadline scan.
//
// A reminder is sent at most once per (user, goal, days left) per calendar
// date. The dedup marker is written after the notification has been handed
// off, so a crash in between can repeat a reminder but never lose one.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"tabungan/internal/core"
	"tabungan/internal/i18n"
	applog "tabungan/internal/log"
	"tabungan/internal/notify"
)

// NotifyDays are the days-before-deadline that trigger a reminder.
var NotifyDays = []int{30, 7, 1, 0}

// MarkerStore persists dedup markers.
type MarkerStore interface {
	GetFlag(ctx context.Context, key string) (value string, ok bool, err error)
	SetFlag(ctx context.Context, key, value string) error
}

// MarkerKey names the marker for one reminder slot.
func MarkerKey(userID, goalID string, daysLeft int) string {
	return fmt.Sprintf("goal_deadline_notified_%s_%s_%d", userID, goalID, daysLeft)
}

// Subject is everything the scan needs about one user.
type Subject struct {
	User     core.User
	Language i18n.Language
	Income   []core.MoneyEntry
	Goals    []core.Goal
}

// Outcome summarizes a scan of one user.
type Outcome struct {
	Sent    int
	Skipped int
	Denied  int
}

type Reminder struct {
	markers  MarkerStore
	notifier notify.Notifier
	logger   *applog.Logger
	now      func() time.Time
}

func New(markers MarkerStore, notifier notify.Notifier) *Reminder {
	return &Reminder{
		markers:  markers,
		notifier: notifier,
		logger:   applog.WithComponent(applog.ComponentReminder),
		now:      time.Now,
	}
}

func shouldNotify(daysLeft int) bool {
	for _, d := range NotifyDays {
		if d == daysLeft {
			return true
		}
	}
	return false
}

// Remind scans the subject's goals against today, a calendar date in the
// reference timezone. Store and delivery errors abort the scan.
func (r *Reminder) Remind(ctx context.Context, s Subject, today time.Time) (Outcome, error) {
	var out Outcome
	today = core.CalendarDate(today)
	todayISO := today.Format(core.ISODate)
	totalIncome := core.Sum(s.Income)
	cat := i18n.For(s.Language)

	for _, g := range s.Goals {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		if !g.Active() {
			continue
		}
		deadline, ok := core.ParseDate(g.Deadline)
		if !ok {
			continue
		}
		daysLeft := core.DaysBetween(today, deadline)
		if !shouldNotify(daysLeft) {
			continue
		}

		key := MarkerKey(s.User.ID, g.ID, daysLeft)
		last, found, err := r.markers.GetFlag(ctx, key)
		if err != nil {
			return out, fmt.Errorf("read marker %s: %w", key, err)
		}
		if found && last == todayISO {
			out.Skipped++
			continue
		}

		n := r.render(cat, s.User, g, totalIncome, daysLeft)
		switch err := r.notifier.Notify(ctx, n); {
		case errors.Is(err, notify.ErrPermissionDenied):
			out.Denied++
		case err != nil:
			return out, fmt.Errorf("notify goal %s: %w", g.ID, err)
		default:
			out.Sent++
		}

		if err := r.markers.SetFlag(ctx, key, todayISO); err != nil {
			return out, fmt.Errorf("write marker %s: %w", key, err)
		}
		r.logger.DebugContext(ctx, "deadline reminder handled",
			applog.FieldUserID, s.User.ID,
			applog.FieldGoalID, g.ID,
			applog.FieldDaysLeft, daysLeft,
		)
	}
	return out, nil
}

func (r *Reminder) render(cat i18n.Catalog, user core.User, g core.Goal, totalIncome int64, daysLeft int) notify.Notification {
	clamped := min(max(totalIncome, 0), g.Target)

	days := cat.Text(i18n.DeadlineToday)
	if daysLeft > 0 {
		days = "H-" + strconv.Itoa(daysLeft)
	}

	title := g.Title
	if strings.TrimSpace(title) == "" {
		title = cat.Text(i18n.LabelGoal)
	}

	return notify.Notification{
		ID:       notify.IDFor(g.ID),
		UserID:   user.ID,
		Category: notify.CategoryGoalDeadline,
		Title:    cat.Text(i18n.GoalDeadlineTitle),
		Body: cat.Format(i18n.GoalDeadlineBody, map[string]string{
			"title":   title,
			"days":    days,
			"current": core.FormatRupiah(clamped),
			"target":  core.FormatRupiah(g.Target),
			"percent": strconv.Itoa(core.Percent(clamped, g.Target)),
		}),
		Email:     user.Email,
		CreatedAt: r.now().UTC(),
	}
}
