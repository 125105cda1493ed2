package debounce

import (
	"sync"
	"testing"
	"time"
)

type capture struct {
	mu     sync.Mutex
	keys   []string
	values []interface{}
}

func (c *capture) flush(key string, value interface{}) {
	c.mu.Lock()
	c.keys = append(c.keys, key)
	c.values = append(c.values, value)
	c.mu.Unlock()
}

func (c *capture) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.keys)
}

func (c *capture) last() interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.values) == 0 {
		return nil
	}
	return c.values[len(c.values)-1]
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("condition not met in time")
}

func TestCoalescesToLastValue(t *testing.T) {
	c := &capture{}
	s := New(c.flush)
	for i := 1; i <= 5; i++ {
		s.Schedule("k", i, 30*time.Millisecond)
		time.Sleep(2 * time.Millisecond)
	}
	waitFor(t, func() bool { return c.count() == 1 })
	if c.last() != 5 {
		t.Fatalf("want last value 5, got %v", c.last())
	}
	// No second firing afterwards.
	time.Sleep(60 * time.Millisecond)
	if c.count() != 1 {
		t.Fatalf("fired %d times, want 1", c.count())
	}
}

func TestScheduleRestartsTimer(t *testing.T) {
	c := &capture{}
	s := New(c.flush)
	s.Schedule("k", 1, 40*time.Millisecond)
	time.Sleep(25 * time.Millisecond)
	s.Schedule("k", 2, 40*time.Millisecond)
	time.Sleep(25 * time.Millisecond)
	// 50ms elapsed but the gap never reached 40ms.
	if c.count() != 0 {
		t.Fatalf("fired before quiescence")
	}
	waitFor(t, func() bool { return c.count() == 1 })
	if c.last() != 2 {
		t.Fatalf("want 2, got %v", c.last())
	}
}

func TestKeysAreIndependent(t *testing.T) {
	c := &capture{}
	s := New(c.flush)
	s.Schedule("a", "va", 10*time.Millisecond)
	s.Schedule("b", "vb", 10*time.Millisecond)
	waitFor(t, func() bool { return c.count() == 2 })
}

func TestFlushFiresImmediately(t *testing.T) {
	c := &capture{}
	s := New(c.flush)
	s.Schedule("k", 7, time.Hour)
	if !s.Pending("k") {
		t.Fatalf("expected pending entry")
	}
	s.Flush("k")
	if c.count() != 1 || c.last() != 7 {
		t.Fatalf("flush did not fire: count=%d last=%v", c.count(), c.last())
	}
	if s.Pending("k") {
		t.Fatalf("entry should be cleared")
	}
	// Flushing with nothing pending is a no-op.
	s.Flush("k")
	if c.count() != 1 {
		t.Fatalf("no-op flush fired")
	}
}

func TestCancelDropsPending(t *testing.T) {
	c := &capture{}
	s := New(c.flush)
	s.Schedule("k", 1, 20*time.Millisecond)
	s.Cancel("k")
	time.Sleep(50 * time.Millisecond)
	if c.count() != 0 {
		t.Fatalf("canceled entry fired")
	}
}

func TestFlushAll(t *testing.T) {
	c := &capture{}
	s := New(c.flush)
	s.Schedule("a", 1, time.Hour)
	s.Schedule("b", 2, time.Hour)
	s.FlushAll()
	if c.count() != 2 {
		t.Fatalf("want 2 flushes, got %d", c.count())
	}
}
