package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rzbill/keysync/internal/namespace"
	"github.com/rzbill/keysync/internal/storage"
	"github.com/rzbill/keysync/internal/subscription"
	logpkg "github.com/rzbill/keysync/pkg/log"
)

// State is a session's lifecycle position.
type State int32

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return "uninitialized"
	}
}

// Session is one consumer's live binding to a key. Reads are served
// from local state synchronously; writes apply locally at once and
// persist asynchronously through the engine's debounce window and the
// key's write queue. Changes confirmed by other sessions arrive via
// OnChange.
type Session struct {
	engine   *Engine
	id       string
	key      string
	ns       namespace.Namespace
	entryKey string
	col      storage.Collection
	def      interface{}
	debounce time.Duration
	onChange func(interface{})
	handle   subscription.Handle
	logger   logpkg.Logger

	mu      sync.Mutex
	state   State
	local   interface{}
	dirty   bool
	syncing bool
	closed  bool
	ready   chan struct{}
}

// ID returns the session's unique identifier, used in log fields.
func (s *Session) ID() string { return s.id }

// Key returns the key this session is bound to.
func (s *Session) Key() string { return s.key }

// Namespace returns the session's namespace.
func (s *Session) Namespace() namespace.Namespace { return s.ns }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Ready returns a channel closed once the initial durable load has
// settled, successfully or not.
func (s *Session) Ready() <-chan struct{} { return s.ready }

// Value returns the current local value. Before the load settles this
// is the cached value (if a sibling materialized the entry) or the
// session's default.
func (s *Session) Value() interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.local
}

// Set replaces the session's value. The value applies locally and to
// the shared cache immediately; persistence is scheduled through the
// debounce window. Setting a value deep-equal to the current one is a
// no-op. Values must be JSON-serializable.
func (s *Session) Set(value interface{}) error {
	return s.write(func(interface{}) interface{} { return value })
}

// Update replaces the value with fn(current). fn runs under the
// session lock and must not call back into the session.
func (s *Session) Update(fn func(prev interface{}) interface{}) error {
	return s.write(fn)
}

func (s *Session) write(fn func(interface{}) interface{}) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	next, err := Normalize(fn(s.local))
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if Equal(s.local, next) {
		s.mu.Unlock()
		return nil
	}
	s.local = next
	if s.state != StateReady {
		// Local writes during LOADING win over the load result.
		s.dirty = true
	}
	s.engine.cache.Set(s.entryKey, next)
	// A write issued from inside OnChange is the applied notification
	// value itself; scheduling it again would ping-pong.
	schedule := !s.syncing
	s.mu.Unlock()

	if schedule {
		s.engine.scheduleWrite(s.entryKey, s.col, s.key, next, s.debounce)
	}
	return nil
}

// Flush forces any pending coalesced write for the session's key
// through the write queue and waits for confirmation.
func (s *Session) Flush(ctx context.Context) error {
	return s.engine.flushKey(ctx, s.entryKey)
}

// Close detaches the session from the fan-out. Pending writes for the
// key are unaffected; they belong to the key, not the session.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()
	s.engine.subs.Unsubscribe(s.handle)
	s.logger.Debug("session closed")
}

// load resolves the durable value in the background. The session stays
// usable throughout; Ready() closes when load settles.
func (s *Session) load() {
	ctx, cancel := s.engine.opCtx()
	defer cancel()
	b, err := s.col.Get(ctx, s.key)

	var apply interface{}
	var applyOK, writeDefault bool
	switch {
	case err == nil:
		v, derr := decodeRecord(b)
		if derr != nil {
			s.logger.Warn("stored record undecodable, keeping in-memory value", logpkg.Err(derr))
		} else {
			apply, applyOK = v, true
		}
	case errors.Is(err, storage.ErrNotFound):
		if s.def != nil {
			// Write-through: the default becomes the durable value.
			apply, applyOK, writeDefault = s.def, true, true
		}
	default:
		s.logger.Warn("load failed, continuing in memory", logpkg.Err(err))
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.dirty {
		// A local write landed during the load; it wins and its
		// persistence is already scheduled.
		applyOK, writeDefault = false, false
	}
	var cb func(interface{})
	if applyOK {
		changed := !Equal(s.local, apply)
		s.local = apply
		s.engine.cache.Set(s.entryKey, apply)
		if changed {
			cb = s.onChange
			s.syncing = true
		}
	}
	s.state = StateReady
	close(s.ready)
	s.mu.Unlock()

	if writeDefault {
		s.engine.scheduleWrite(s.entryKey, s.col, s.key, apply, s.debounce)
	}
	if cb != nil {
		cb(apply)
		s.mu.Lock()
		s.syncing = false
		s.mu.Unlock()
	}
}

// onNotify applies a confirmed event from another session. Removal
// resets the session to its own default without re-persisting it.
func (s *Session) onNotify(ev subscription.Event) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	next := ev.Value
	if ev.Removed {
		next = s.def
	}
	// The writer receives its own confirmation too; equality makes it
	// a no-op.
	if Equal(s.local, next) {
		s.mu.Unlock()
		return
	}
	s.local = next
	s.syncing = true
	cb := s.onChange
	s.mu.Unlock()

	if cb != nil {
		cb(next)
	}
	s.mu.Lock()
	s.syncing = false
	s.mu.Unlock()
}
