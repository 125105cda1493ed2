package cache

import (
	"sync"
	"testing"
)

func TestGetSetDelete(t *testing.T) {
	c := New()
	if _, ok := c.Get("k"); ok {
		t.Fatalf("unexpected entry")
	}
	c.Set("k", 1)
	if v, ok := c.Get("k"); !ok || v != 1 {
		t.Fatalf("want 1, got %v %v", v, ok)
	}
	c.Set("k", 2)
	if v, _ := c.Get("k"); v != 2 {
		t.Fatalf("overwrite failed: %v", v)
	}
	c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Fatalf("delete failed")
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Set("shared", n)
				c.Get("shared")
			}
		}(i)
	}
	wg.Wait()
	if _, ok := c.Get("shared"); !ok {
		t.Fatalf("entry lost")
	}
}
