package cache

import (
	"testing"
	"time"
)

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU[string, int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a should be present")
	}
	c.Set("c", 3) // evicts b, a was touched

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %v, %v", v, ok)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

func TestLRUExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRU[int, string](4, time.Minute)
	c.now = func() time.Time { return now }

	c.Set(2026, "x")
	now = now.Add(30 * time.Second)
	if _, ok := c.Get(2026); !ok {
		t.Fatal("entry expired too early")
	}
	now = now.Add(31 * time.Second)
	if _, ok := c.Get(2026); ok {
		t.Fatal("entry should have expired")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry not removed, Len() = %d", c.Len())
	}
}

func TestLRUUpdateAndDelete(t *testing.T) {
	c := NewLRU[string, map[string]bool](4, time.Minute)
	if c.Update("missing", func(m map[string]bool) map[string]bool { return m }) {
		t.Fatal("Update on a missing key should report false")
	}

	c.Set("2026", map[string]bool{"2026-01-15": true})
	ok := c.Update("2026", func(m map[string]bool) map[string]bool {
		m["2026-02-15"] = true
		return m
	})
	if !ok {
		t.Fatal("Update should find the key")
	}
	got, _ := c.Get("2026")
	if !got["2026-02-15"] || !got["2026-01-15"] {
		t.Errorf("Update lost data: %v", got)
	}

	c.Delete("2026")
	if _, ok := c.Get("2026"); ok {
		t.Error("Delete did not remove the key")
	}
}
