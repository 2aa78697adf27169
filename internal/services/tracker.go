package services

import (
	"sync"
	"time"

	"tabungan/internal/cache"
	"tabungan/internal/milestone"
)

// Session is one user's milestone bookkeeping between requests.
type Session struct {
	State milestone.State
	// Loaded is false until the first silent evaluation. Until then every
	// goal already above target would look newly reached.
	Loaded    bool
	Highlight *milestone.Highlight
}

type trackedSession struct {
	mu sync.Mutex
	Session
}

// MilestoneTracker keeps sessions in a TTL cache and serializes the
// read-evaluate-write cycle of each user.
type MilestoneTracker struct {
	mu       sync.Mutex
	sessions *cache.LRUCache[*trackedSession]
}

func NewMilestoneTracker(size int, ttl time.Duration) *MilestoneTracker {
	return &MilestoneTracker{sessions: cache.NewLRUCache[*trackedSession](size, ttl)}
}

// Cleaner exposes the session cache to a cache.Manager.
func (t *MilestoneTracker) Cleaner() cache.Cleaner {
	return t.sessions
}

func (t *MilestoneTracker) acquire(userID string) *trackedSession {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.sessions.Get(userID); ok {
		return s
	}
	s := &trackedSession{}
	t.sessions.Set(userID, s)
	return s
}

// Do runs fn with the user's session locked. Changes fn makes to the
// session are kept even when it returns an error.
func (t *MilestoneTracker) Do(userID string, fn func(s *Session) error) error {
	s := t.acquire(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&s.Session)
}

// Snapshot returns a copy of the session, if one is tracked.
func (t *MilestoneTracker) Snapshot(userID string) (Session, bool) {
	t.mu.Lock()
	s, ok := t.sessions.Get(userID)
	t.mu.Unlock()
	if !ok {
		return Session{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Session, true
}

// TakeHighlight returns the pending highlight and clears it.
func (t *MilestoneTracker) TakeHighlight(userID string) *milestone.Highlight {
	var h *milestone.Highlight
	_ = t.Do(userID, func(s *Session) error {
		h, s.Highlight = s.Highlight, nil
		return nil
	})
	return h
}

// End forgets the user's session.
func (t *MilestoneTracker) End(userID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessions.Delete(userID)
}
