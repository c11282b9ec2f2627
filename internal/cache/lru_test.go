package cache

import (
	"sync"
	"testing"
	"time"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestCache(size int, ttl time.Duration) (*LRUCache[string], *clock, *[]string) {
	clk := &clock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	var evicted []string
	c := NewLRUCache[string](size, ttl).OnEvict(func(key, _ string) {
		evicted = append(evicted, key)
	})
	c.now = clk.now
	return c, clk, &evicted
}

func TestLRUGetSet(t *testing.T) {
	c, _, _ := newTestCache(2, time.Minute)

	if _, ok := c.Get("a"); ok {
		t.Fatal("expected miss on empty cache")
	}
	c.Set("a", "1")
	if v, ok := c.Get("a"); !ok || v != "1" {
		t.Fatalf("expected hit, got %q %v", v, ok)
	}
	if c.Size() != 1 {
		t.Fatalf("size = %d", c.Size())
	}
}

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c, _, evicted := newTestCache(2, time.Minute)

	c.Set("a", "1")
	c.Set("b", "2")
	c.Get("a")
	c.Set("c", "3")

	if _, ok := c.Get("b"); ok {
		t.Fatal("expected b to be evicted")
	}
	if len(*evicted) != 1 || (*evicted)[0] != "b" {
		t.Fatalf("unexpected evictions: %v", *evicted)
	}
}

func TestLRUExpiry(t *testing.T) {
	c, clk, evicted := newTestCache(10, time.Minute)

	c.Set("a", "1")
	c.Set("b", "2")
	clk.advance(2 * time.Minute)
	c.Set("c", "3")

	if n := c.CleanExpired(); n != 2 {
		t.Fatalf("CleanExpired = %d, want 2", n)
	}
	if c.Size() != 1 {
		t.Fatalf("size = %d", c.Size())
	}
	if len(*evicted) != 2 {
		t.Fatalf("unexpected evictions: %v", *evicted)
	}

	clk.advance(2 * time.Minute)
	if _, ok := c.Get("c"); ok {
		t.Fatal("expected expired entry to miss")
	}
	if len(*evicted) != 3 {
		t.Fatalf("expected expired Get to evict, got %v", *evicted)
	}
}

func TestLRUReplaceAndDeleteNotify(t *testing.T) {
	c, _, evicted := newTestCache(10, time.Minute)

	c.Set("a", "1")
	c.Set("a", "2")
	c.Delete("a")
	c.Delete("missing")

	if len(*evicted) != 2 {
		t.Fatalf("unexpected evictions: %v", *evicted)
	}
}

func TestLRUPurge(t *testing.T) {
	c, _, evicted := newTestCache(10, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")

	if n := c.Purge(); n != 2 {
		t.Fatalf("Purge = %d", n)
	}
	if c.Size() != 0 || len(*evicted) != 2 {
		t.Fatalf("size=%d evicted=%v", c.Size(), *evicted)
	}
}

func TestManagerSweepAndStop(t *testing.T) {
	c, clk, _ := newTestCache(10, time.Minute)
	c.Set("a", "1")
	clk.advance(time.Hour)

	var cleaned int
	m := NewManager(func(n int) { cleaned += n })
	m.Register(c)

	if n := m.Sweep(); n != 1 || cleaned != 1 {
		t.Fatalf("Sweep = %d, cleaned = %d", n, cleaned)
	}

	m.StartCleanup(time.Hour)
	m.Stop()
	m.Stop()

	idle := NewManager(nil)
	idle.Stop()
}
