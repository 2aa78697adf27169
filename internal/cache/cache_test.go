package cache

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestLRUExpiresAfterIdleTTL(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[int](10, time.Minute, WithClock[int](clock.now))

	c.Set("a", 1)
	clock.advance(50 * time.Second)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("entry should still be present")
	}

	// the read above renewed the TTL
	clock.advance(50 * time.Second)
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("read should have renewed the TTL")
	}

	clock.advance(61 * time.Second)
	if _, ok := c.Get("a"); ok {
		t.Fatalf("entry should have expired")
	}
	if c.Size() != 0 {
		t.Fatalf("expired entry should be removed on read")
	}
}

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	var evicted []string
	c := NewLRUCache[string](2, time.Hour, WithEvictHook(func(key string, _ string) {
		evicted = append(evicted, key)
	}))

	c.Set("a", "A")
	c.Set("b", "B")
	c.Get("a")
	c.Set("c", "C")

	if _, ok := c.Get("b"); ok {
		t.Fatalf("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("a was used recently and must survive")
	}
	if len(evicted) != 1 || evicted[0] != "b" {
		t.Fatalf("unexpected evictions %v", evicted)
	}

	c.Delete("a")
	if len(evicted) != 1 {
		t.Fatalf("Delete must not call the evict hook")
	}
}

func TestManagerCleansExpired(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[int](10, time.Minute, WithClock[int](clock.now))
	c.Set("a", 1)
	c.Set("b", 2)
	clock.advance(2 * time.Minute)
	c.Set("c", 3)

	m := NewManager()
	m.Register(c)
	if n := m.CleanNow(); n != 2 {
		t.Fatalf("expected 2 expired entries, got %d", n)
	}
	if c.Size() != 1 {
		t.Fatalf("only the fresh entry should remain")
	}

	m.StartCleanup(time.Hour)
	m.Stop()
	m.Stop()
}
