package cache

import (
	"testing"
	"time"
)

func TestLRUBasics(t *testing.T) {
	c := NewLRU[string](2, time.Minute)

	if _, ok := c.Get("a"); ok {
		t.Fatalf("empty cache returned a value")
	}
	c.Set("a", "1")
	c.Set("b", "2")
	if v, ok := c.Get("a"); !ok || v != "1" {
		t.Fatalf("get a = %q, %v", v, ok)
	}

	// "a" was just touched, so adding "c" evicts "b".
	c.Set("c", "3")
	if _, ok := c.Get("b"); ok {
		t.Fatalf("lru entry not evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("recently used entry evicted")
	}

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Fatalf("deleted entry still present")
	}
}

func TestLRUExpiry(t *testing.T) {
	c := NewLRU[int](10, 10*time.Millisecond)
	c.Set("k", 42)
	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Fatalf("expired entry returned")
	}
	c.Set("x", 1)
	c.Set("y", 2)
	time.Sleep(20 * time.Millisecond)
	if n := c.CleanExpired(); n != 2 {
		t.Fatalf("CleanExpired = %d, want 2", n)
	}
	if c.Size() != 0 {
		t.Fatalf("size after clean = %d", c.Size())
	}
}
