package debounce

import (
	"sync"
	"time"
)

// FlushFunc receives the surviving value for a key once its debounce
// window elapses with no further schedules.
type FlushFunc func(key string, value interface{})

// Scheduler coalesces bursts of updates into one trailing write per
// key. Schedule restarts the key's timer and replaces its pending
// value; the flush callback fires only after a gap of at least the
// configured delay with no further calls, carrying the last value seen.
type Scheduler struct {
	mu      sync.Mutex
	pending map[string]*pending
	flush   FlushFunc
}

type pending struct {
	value interface{}
	gen   uint64
	timer *time.Timer
}

// New returns a Scheduler delivering coalesced values to flush.
func New(flush FlushFunc) *Scheduler {
	return &Scheduler{pending: map[string]*pending{}, flush: flush}
}

// Schedule records value as the latest pending write for key and
// restarts the key's timer with delay.
func (s *Scheduler) Schedule(key string, value interface{}, delay time.Duration) {
	s.mu.Lock()
	p := s.pending[key]
	if p != nil {
		p.timer.Stop()
		p.value = value
		p.gen++
	} else {
		p = &pending{value: value}
		s.pending[key] = p
	}
	gen := p.gen
	// A fresh timer per schedule; the generation check in fire discards
	// stale firings that raced a reschedule.
	p.timer = time.AfterFunc(delay, func() { s.fire(key, gen) })
	s.mu.Unlock()
}

func (s *Scheduler) fire(key string, gen uint64) {
	s.mu.Lock()
	p := s.pending[key]
	if p == nil || p.gen != gen {
		s.mu.Unlock()
		return
	}
	delete(s.pending, key)
	value := p.value
	s.mu.Unlock()
	s.flush(key, value)
}

// Flush fires the pending entry for key immediately, if any.
func (s *Scheduler) Flush(key string) {
	s.mu.Lock()
	p := s.pending[key]
	if p == nil {
		s.mu.Unlock()
		return
	}
	p.timer.Stop()
	delete(s.pending, key)
	value := p.value
	s.mu.Unlock()
	s.flush(key, value)
}

// Cancel drops the pending entry for key without firing it. Used when
// the key is being removed so a coalesced write cannot resurrect it.
func (s *Scheduler) Cancel(key string) {
	s.mu.Lock()
	if p := s.pending[key]; p != nil {
		p.timer.Stop()
		delete(s.pending, key)
	}
	s.mu.Unlock()
}

// FlushAll fires every pending entry immediately. Used on shutdown so
// coalesced writes are not lost.
func (s *Scheduler) FlushAll() {
	s.mu.Lock()
	keys := make([]string, 0, len(s.pending))
	for k := range s.pending {
		keys = append(keys, k)
	}
	s.mu.Unlock()
	for _, k := range keys {
		s.Flush(k)
	}
}

// Pending reports whether key has an unfired entry.
func (s *Scheduler) Pending(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending[key] != nil
}
