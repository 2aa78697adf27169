package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"tabungan/internal/core"
	"tabungan/internal/i18n"
	applog "tabungan/internal/log"
	"tabungan/internal/milestone"
	"tabungan/internal/notify"
	"tabungan/internal/storage"
)

// LedgerStore is the storage LedgerService works against.
type LedgerStore interface {
	storage.UserStore
	storage.EntryStore
	storage.GoalStore
}

type EntryInput struct {
	Type         string `json:"type"`
	Amount       int64  `json:"amount"`
	Date         string `json:"date"`
	Category     string `json:"category"`
	Note         string `json:"note"`
	SourceMethod string `json:"source_method"`
	ChannelBank  string `json:"channel_bank"`
}

type GoalInput struct {
	Title    string `json:"title"`
	Target   int64  `json:"target"`
	Current  int64  `json:"current"`
	Deadline string `json:"deadline"`
	Note     string `json:"note"`
	Source   string `json:"source_type"`
}

// Mutation is the result of a ledger or goal write, including any goals
// that crossed their target because of it.
type Mutation struct {
	Entry   *core.MoneyEntry `json:"entry,omitempty"`
	Goal    *core.Goal       `json:"goal,omitempty"`
	Events  milestone.Events `json:"events"`
	Message string           `json:"message,omitempty"`
}

// Ledger is a user's full ledger and goal list.
type Ledger struct {
	Entries []core.MoneyEntry `json:"entries"`
	Goals   []core.Goal       `json:"goals"`
}

// LedgerService orchestrates entry and goal writes, milestone evaluation and
// goal reached notifications.
type LedgerService struct {
	store    LedgerStore
	tracker  *MilestoneTracker
	prefs    *PreferenceService
	notifier notify.Notifier
	logger   *applog.Logger
	zone     *time.Location
	now      func() time.Time
	newID    func() string
}

type LedgerOption func(*LedgerService)

// WithZone sets the zone used to default an entry date to today.
func WithZone(loc *time.Location) LedgerOption {
	return func(s *LedgerService) { s.zone = loc }
}

func WithClock(now func() time.Time) LedgerOption {
	return func(s *LedgerService) { s.now = now }
}

func WithIDGenerator(fn func() string) LedgerOption {
	return func(s *LedgerService) { s.newID = fn }
}

// NewLedgerService wires the service. Notifications go through a guard that
// drops them for users who turned notifications off.
func NewLedgerService(store LedgerStore, tracker *MilestoneTracker, prefs *PreferenceService, notifier notify.Notifier, opts ...LedgerOption) *LedgerService {
	s := &LedgerService{
		store:   store,
		tracker: tracker,
		prefs:   prefs,
		notifier: notify.Guard(notifier, func(ctx context.Context, n notify.Notification) (bool, error) {
			return prefs.NotificationsEnabled(ctx, n.UserID)
		}),
		logger: applog.WithComponent(applog.ComponentLedger),
		zone:   time.Local,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reloads the user's ledger and refreshes the tracked state without
// reporting anything. It is what a login does.
func (s *LedgerService) Load(ctx context.Context, userID string) (Ledger, error) {
	var ledger Ledger
	err := s.tracker.Do(userID, func(sess *Session) error {
		var err error
		ledger, _, err = s.evaluate(ctx, userID, sess, false)
		return err
	})
	return ledger, err
}

// EndSession drops the tracked state, e.g. on logout.
func (s *LedgerService) EndSession(userID string) {
	s.tracker.End(userID)
}

// TakeHighlight returns the goal to highlight once, then forgets it.
func (s *LedgerService) TakeHighlight(userID string) *milestone.Highlight {
	return s.tracker.TakeHighlight(userID)
}

// Entries lists the user's entries, newest first. typ filters by entry type
// when it is not empty.
func (s *LedgerService) Entries(ctx context.Context, userID, typ string) ([]core.MoneyEntry, error) {
	entries, err := s.store.ListEntries(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	if strings.TrimSpace(typ) == "" {
		return entries, nil
	}
	t, err := core.ParseEntryType(typ)
	if err != nil {
		return nil, err
	}
	filtered := entries[:0:0]
	for _, e := range entries {
		if e.Type == t {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

func (s *LedgerService) AddEntry(ctx context.Context, userID string, in EntryInput) (Mutation, error) {
	t, err := core.ParseEntryType(in.Type)
	if err != nil {
		return Mutation{}, err
	}
	e := core.MoneyEntry{
		ID:        s.newID(),
		UserID:    userID,
		Type:      t,
		CreatedAt: s.now().UTC(),
	}
	s.applyEntry(&e, in)
	if err := e.Validate(); err != nil {
		return Mutation{}, err
	}

	m, err := s.mutate(ctx, userID, func() error {
		if err := s.store.CreateEntry(ctx, e); err != nil {
			return fmt.Errorf("create entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return Mutation{}, err
	}
	s.logger.InfoContext(ctx, "entry created",
		applog.FieldUserID, userID,
		applog.FieldEntryID, e.ID,
		applog.FieldEntryType, string(e.Type),
		applog.FieldAmount, e.Amount,
	)
	m.Entry = &e
	return m, nil
}

// UpdateEntry rewrites the editable fields. The entry type and creation time
// never change.
func (s *LedgerService) UpdateEntry(ctx context.Context, userID, id string, in EntryInput) (Mutation, error) {
	e, err := s.store.GetEntry(ctx, userID, id)
	if err != nil {
		return Mutation{}, fmt.Errorf("get entry: %w", err)
	}
	s.applyEntry(&e, in)
	if err := e.Validate(); err != nil {
		return Mutation{}, err
	}

	m, err := s.mutate(ctx, userID, func() error {
		if err := s.store.UpdateEntry(ctx, e); err != nil {
			return fmt.Errorf("update entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return Mutation{}, err
	}
	m.Entry = &e
	return m, nil
}

func (s *LedgerService) DeleteEntry(ctx context.Context, userID, id string) (Mutation, error) {
	return s.mutate(ctx, userID, func() error {
		if err := s.store.DeleteEntry(ctx, userID, id); err != nil {
			return fmt.Errorf("delete entry: %w", err)
		}
		return nil
	})
}

func (s *LedgerService) applyEntry(e *core.MoneyEntry, in EntryInput) {
	e.Amount = in.Amount
	e.Date = core.NormalizeDate(in.Date)
	if e.Date == "" {
		e.Date = core.Today(s.now(), s.zone).Format(core.ISODate)
	}
	e.Category = strings.TrimSpace(in.Category)
	e.Note = strings.TrimSpace(in.Note)
	e.SourceMethod = strings.TrimSpace(in.SourceMethod)
	e.ChannelBank = strings.TrimSpace(in.ChannelBank)
}

// Goals lists the user's goals in creation order.
func (s *LedgerService) Goals(ctx context.Context, userID string) ([]core.Goal, error) {
	goals, err := s.store.ListGoals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	return goals, nil
}

func (s *LedgerService) AddGoal(ctx context.Context, userID string, in GoalInput) (Mutation, error) {
	g := core.Goal{
		ID:        s.newID(),
		UserID:    userID,
		CreatedAt: s.now().UTC(),
	}
	if err := applyGoal(&g, in); err != nil {
		return Mutation{}, err
	}

	m, err := s.mutate(ctx, userID, func() error {
		if err := s.store.CreateGoal(ctx, g); err != nil {
			return fmt.Errorf("create goal: %w", err)
		}
		return nil
	})
	if err != nil {
		return Mutation{}, err
	}
	s.logger.InfoContext(ctx, "goal created",
		applog.FieldUserID, userID,
		applog.FieldGoalID, g.ID,
		applog.FieldAmount, g.Target,
	)
	m.Goal = &g
	return m, nil
}

func (s *LedgerService) UpdateGoal(ctx context.Context, userID, id string, in GoalInput) (Mutation, error) {
	g, err := s.store.GetGoal(ctx, userID, id)
	if err != nil {
		return Mutation{}, fmt.Errorf("get goal: %w", err)
	}
	if err := applyGoal(&g, in); err != nil {
		return Mutation{}, err
	}

	m, err := s.mutate(ctx, userID, func() error {
		if err := s.store.UpdateGoal(ctx, g); err != nil {
			return fmt.Errorf("update goal: %w", err)
		}
		return nil
	})
	if err != nil {
		return Mutation{}, err
	}
	m.Goal = &g
	return m, nil
}

func (s *LedgerService) DeleteGoal(ctx context.Context, userID, id string) (Mutation, error) {
	return s.mutate(ctx, userID, func() error {
		if err := s.store.DeleteGoal(ctx, userID, id); err != nil {
			return fmt.Errorf("delete goal: %w", err)
		}
		return nil
	})
}

func applyGoal(g *core.Goal, in GoalInput) error {
	src, err := core.ParseProgressSource(in.Source)
	if err != nil {
		return err
	}
	g.Title = strings.TrimSpace(in.Title)
	g.Target = in.Target
	g.Current = in.Current
	g.Deadline = strings.TrimSpace(in.Deadline)
	g.Note = strings.TrimSpace(in.Note)
	g.Source = src
	return g.Validate()
}

// mutate performs write with the user's session locked, then reloads and
// evaluates with notifications on. A failed write leaves the tracked state
// as it was.
func (s *LedgerService) mutate(ctx context.Context, userID string, write func() error) (Mutation, error) {
	var events milestone.Events
	err := s.tracker.Do(userID, func(sess *Session) error {
		if !sess.Loaded {
			if _, _, err := s.evaluate(ctx, userID, sess, false); err != nil {
				return err
			}
		}
		if err := write(); err != nil {
			return err
		}
		var err error
		_, events, err = s.evaluate(ctx, userID, sess, true)
		return err
	})
	if err != nil {
		return Mutation{}, err
	}

	m := Mutation{Events: events}
	if events.Empty() {
		return m, nil
	}
	cat := i18n.For(s.prefs.Language(ctx, userID))
	m.Message = toastMessage(cat, events.Toast)
	s.publishReached(ctx, userID, cat, events.Reached)
	return m, nil
}

func (s *LedgerService) evaluate(ctx context.Context, userID string, sess *Session, notifyOn bool) (Ledger, milestone.Events, error) {
	entries, err := s.store.ListEntries(ctx, userID)
	if err != nil {
		return Ledger{}, milestone.Events{}, fmt.Errorf("reload entries: %w", err)
	}
	goals, err := s.store.ListGoals(ctx, userID)
	if err != nil {
		return Ledger{}, milestone.Events{}, fmt.Errorf("reload goals: %w", err)
	}

	income, expense := core.SplitByType(entries)
	res := milestone.Evaluate(sess.State, milestone.Input{
		Income:  income,
		Expense: expense,
		Goals:   goals,
		Notify:  notifyOn,
	})
	sess.State = res.State
	sess.Loaded = true
	if h := res.Events.Highlight; h != nil {
		highlight := *h
		sess.Highlight = &highlight
	}
	if !res.Events.Empty() {
		s.logger.InfoContext(ctx, "goals reached",
			applog.FieldUserID, userID,
			applog.FieldReached, len(res.Events.Reached),
		)
	}
	return Ledger{Entries: entries, Goals: goals}, res.Events, nil
}

// publishReached sends one notification per reached goal. Delivery problems
// are logged; the write they follow has already succeeded.
func (s *LedgerService) publishReached(ctx context.Context, userID string, cat i18n.Catalog, reached []core.Goal) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		s.logger.WarnContext(ctx, "user lookup for notification failed",
			applog.FieldUserID, userID,
			applog.FieldError, err.Error(),
		)
		user = core.User{ID: userID}
	}
	for _, g := range reached {
		n := reachedNotification(cat, user, g, s.now())
		if err := s.notifier.Notify(ctx, n); err != nil {
			level := slog.LevelWarn
			if errors.Is(err, notify.ErrPermissionDenied) {
				level = slog.LevelDebug
			}
			s.logger.Log(ctx, level, "goal reached notification not sent",
				applog.FieldUserID, userID,
				applog.FieldGoalID, g.ID,
				applog.FieldError, err.Error(),
			)
		}
	}
}

func goalTitle(cat i18n.Catalog, title string) string {
	if strings.TrimSpace(title) == "" {
		return cat.Text(i18n.LabelGoal)
	}
	return title
}

func toastMessage(cat i18n.Catalog, t *milestone.Toast) string {
	if t == nil {
		return ""
	}
	if t.Count == 1 {
		return cat.Format(i18n.GoalReachedSingle, map[string]string{"title": goalTitle(cat, t.Title)})
	}
	return cat.Format(i18n.GoalReachedMulti, map[string]string{"count": strconv.Itoa(t.Count)})
}

func reachedNotification(cat i18n.Catalog, user core.User, g core.Goal, now time.Time) notify.Notification {
	message := cat.Text(i18n.GoalReachedPopupIncomeBalance)
	if g.Source.Normalize() == core.SourceExpense {
		message = cat.Text(i18n.GoalReachedPopupExpense)
	}
	return notify.Notification{
		ID:       notify.IDFor(g.ID),
		UserID:   user.ID,
		Category: notify.CategoryGoalReached,
		Title:    cat.Text(i18n.GoalReachedNotificationTitle),
		Body: cat.Format(i18n.GoalReachedNotificationBody, map[string]string{
			"title":   goalTitle(cat, g.Title),
			"message": message,
		}),
		Email:     user.Email,
		CreatedAt: now.UTC(),
	}
}
