package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rzbill/keysync/internal/cache"
	"github.com/rzbill/keysync/internal/config"
	"github.com/rzbill/keysync/internal/debounce"
	"github.com/rzbill/keysync/internal/namespace"
	"github.com/rzbill/keysync/internal/storage"
	"github.com/rzbill/keysync/internal/subscription"
	"github.com/rzbill/keysync/internal/writequeue"
	logpkg "github.com/rzbill/keysync/pkg/log"
)

var (
	// ErrEngineClosed is returned for operations on a closed engine.
	ErrEngineClosed = errors.New("session: engine closed")
	// ErrSessionClosed is returned for writes on a closed session.
	ErrSessionClosed = errors.New("session: session closed")
	// ErrEmptyKey is returned when a caller passes an empty key.
	ErrEmptyKey = errors.New("session: empty key")
)

// Options configures an Engine.
type Options struct {
	// Storage is the durable adapter. Required. The engine does not
	// close it; the caller owns its lifecycle.
	Storage storage.Adapter
	// Config supplies defaults (namespace, debounce, op timeout). A
	// zero value selects config.Default().
	Config config.Config
	// Logger is the base logger. Nil selects the package default.
	Logger logpkg.Logger
}

// Engine owns the process-wide synchronization state: the value cache,
// the per-key write queues, the subscription fan-out, and the debounce
// scheduler. Sessions are acquired from it and share all four.
type Engine struct {
	adapter storage.Adapter
	cfg     config.Config
	logger  logpkg.Logger

	cache *cache.Cache
	queue *writequeue.Registry
	subs  *subscription.Registry
	deb   *debounce.Scheduler

	mu      sync.Mutex
	cols    map[string]storage.Collection
	targets map[string]target
	closed  bool
}

// target remembers where a debounced entry key flushes to.
type target struct {
	col storage.Collection
	key string
}

// New returns an Engine over the given adapter.
func New(opts Options) (*Engine, error) {
	if opts.Storage == nil {
		return nil, errors.New("session: storage adapter required")
	}
	cfg := opts.Config
	if cfg == (config.Config{}) {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewLogger()
	}
	e := &Engine{
		adapter: opts.Storage,
		cfg:     cfg,
		logger:  logger.WithComponent("engine"),
		cache:   cache.New(),
		queue:   writequeue.New(logger),
		subs:    subscription.New(logger),
		cols:    map[string]storage.Collection{},
		targets: map[string]target{},
	}
	e.deb = debounce.New(e.flushEntry)
	return e, nil
}

// AcquireOptions tunes one session.
type AcquireOptions struct {
	// Debounce overrides the engine's default coalescing window. Zero
	// keeps the default; negative disables coalescing so each write
	// flushes on the next timer tick.
	Debounce time.Duration
	// OnChange is invoked with the new value whenever the session's
	// value changes from the outside: a confirmed sibling write, a
	// removal (delivering the session's default), or the initial load
	// overwriting a stale local value. It is never invoked for the
	// session's own writes.
	OnChange func(value interface{})
	// Filter is an optional CEL expression gating OnChange delivery.
	// Variables: key, value, removed, now_ms.
	Filter string
}

// Acquire binds a session to key within ns. A zero ns selects the
// configured default namespace. The session is usable immediately with
// the cached or default value while the durable load settles in the
// background; Ready() closes once it has.
func (e *Engine) Acquire(ctx context.Context, key string, defaultValue interface{}, ns namespace.Namespace, opts AcquireOptions) (*Session, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	ns, err := e.resolve(ns)
	if err != nil {
		return nil, err
	}
	col, err := e.collection(ctx, ns)
	if err != nil {
		return nil, err
	}
	def, err := Normalize(defaultValue)
	if err != nil {
		return nil, err
	}
	var filter *subscription.Filter
	if opts.Filter != "" {
		filter, err = subscription.NewFilter(opts.Filter)
		if err != nil {
			return nil, fmt.Errorf("session: filter: %w", err)
		}
	}
	delay := opts.Debounce
	if delay == 0 {
		delay = e.cfg.Debounce()
	}
	if delay < 0 {
		delay = 0
	}

	ek := ns.EntryKey(key)
	s := &Session{
		engine:   e,
		id:       uuid.NewString(),
		key:      key,
		ns:       ns,
		entryKey: ek,
		col:      col,
		def:      def,
		debounce: delay,
		onChange: opts.OnChange,
		state:    StateLoading,
		ready:    make(chan struct{}),
	}
	s.logger = e.logger.WithComponent("session").With(
		logpkg.Str("session", s.id),
		logpkg.Str("entry", ek),
	)
	// Fast path: a sibling already materialized this entry.
	if v, ok := e.cache.Get(ek); ok {
		s.local = v
	} else {
		s.local = def
	}
	// Subscribe before the load starts so writes confirmed during
	// LOADING are not missed.
	s.handle = e.subs.Subscribe(ek, s.onNotify, filter)
	go s.load()
	return s, nil
}

// RemoveKey deletes key from the durable store and evicts its cache
// entry. Any pending coalesced write for the key is dropped first so it
// cannot resurrect the entry. Subscribers receive a removal event and
// sessions reset to their own defaults. The call returns once the
// delete has been confirmed.
func (e *Engine) RemoveKey(ctx context.Context, key string, ns namespace.Namespace) error {
	if key == "" {
		return ErrEmptyKey
	}
	ns, err := e.resolve(ns)
	if err != nil {
		return err
	}
	col, err := e.collection(ctx, ns)
	if err != nil {
		return err
	}
	ek := ns.EntryKey(key)
	e.deb.Cancel(ek)
	done := e.queue.Enqueue(ek, func(context.Context) error {
		opctx, cancel := e.opCtx()
		defer cancel()
		if derr := col.Delete(opctx, key); derr != nil {
			e.logger.Error("delete failed", logpkg.Str("entry", ek), logpkg.Err(derr))
			return derr
		}
		e.cache.Delete(ek)
		e.subs.Notify(subscription.Event{Key: ek, Removed: true})
		return nil
	})
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close flushes every pending coalesced write and waits for the write
// queues to drain. The storage adapter is left open for its owner.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	e.deb.FlushAll()
	e.queue.Wait()
	e.logger.Debug("engine closed")
	return nil
}

func (e *Engine) resolve(ns namespace.Namespace) (namespace.Namespace, error) {
	if ns == (namespace.Namespace{}) {
		ns = namespace.Namespace{Database: e.cfg.DefaultDatabase, Store: e.cfg.DefaultStore}
	}
	if err := ns.Validate(); err != nil {
		return namespace.Namespace{}, err
	}
	return ns, nil
}

// collection opens (or reuses) the adapter collection for ns.
func (e *Engine) collection(ctx context.Context, ns namespace.Namespace) (storage.Collection, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, ErrEngineClosed
	}
	if col, ok := e.cols[ns.String()]; ok {
		e.mu.Unlock()
		return col, nil
	}
	e.mu.Unlock()

	col, err := e.adapter.Open(ctx, ns)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if prev, ok := e.cols[ns.String()]; ok {
		return prev, nil
	}
	e.cols[ns.String()] = col
	return col, nil
}

// opCtx bounds one storage operation by the configured timeout.
func (e *Engine) opCtx() (context.Context, context.CancelFunc) {
	if d := e.cfg.OpTimeout(); d > 0 {
		return context.WithTimeout(context.Background(), d)
	}
	return context.WithCancel(context.Background())
}

// scheduleWrite records value as the latest pending write for ek and
// (re)starts its debounce window.
func (e *Engine) scheduleWrite(ek string, col storage.Collection, key string, value interface{}, delay time.Duration) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.targets[ek] = target{col: col, key: key}
	e.mu.Unlock()
	e.deb.Schedule(ek, value, delay)
}

// flushEntry is the debounce callback: it moves the surviving value
// into the key's write queue. Notification happens inside the queued
// operation, strictly after the put is confirmed.
func (e *Engine) flushEntry(ek string, value interface{}) {
	e.mu.Lock()
	tgt, ok := e.targets[ek]
	e.mu.Unlock()
	if !ok {
		return
	}
	e.queue.Enqueue(ek, func(context.Context) error {
		opctx, cancel := e.opCtx()
		defer cancel()
		b, err := encodeRecord(tgt.key, value)
		if err != nil {
			return err
		}
		if err := tgt.col.Put(opctx, tgt.key, b); err != nil {
			e.logger.Error("persist failed, durable copy is stale",
				logpkg.Str("entry", ek), logpkg.Err(err))
			return err
		}
		e.subs.Notify(subscription.Event{Key: ek, Value: value})
		return nil
	})
}

// flushKey forces the pending write for ek (if any) through its queue
// and waits for every earlier operation on ek to resolve.
func (e *Engine) flushKey(ctx context.Context, ek string) error {
	e.deb.Flush(ek)
	done := e.queue.Barrier(ek)
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
