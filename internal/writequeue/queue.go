package writequeue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rzbill/keysync/pkg/id"
	logpkg "github.com/rzbill/keysync/pkg/log"
)

// Op is one asynchronous unit of persistence work.
type Op func(ctx context.Context) error

// Registry serializes operations per key. Each key owns an ordered task
// list drained by a single worker goroutine, so for a fixed key
// operations execute strictly in submission order with at most one in
// flight; operations for different keys run concurrently. Key queues
// are created lazily on first use and never destroyed.
type Registry struct {
	mu     sync.Mutex
	queues map[string]*queue
	wg     sync.WaitGroup
	gen    *id.Generator
	logger logpkg.Logger
}

type queue struct {
	mu      sync.Mutex
	tasks   []*task
	running bool
}

type task struct {
	id   id.ID
	op   Op
	done chan error
}

// New returns an empty Registry.
func New(logger logpkg.Logger) *Registry {
	if logger == nil {
		logger = logpkg.NewLogger()
	}
	return &Registry{
		queues: map[string]*queue{},
		gen:    id.NewGenerator(),
		logger: logger.WithComponent("writequeue"),
	}
}

// Enqueue submits op for key and returns a channel that receives the
// operation's outcome exactly once. A failed op reports only to its own
// caller; queued successors still run.
func (r *Registry) Enqueue(key string, op Op) <-chan error {
	t := &task{id: r.gen.Next(), op: op, done: make(chan error, 1)}

	r.mu.Lock()
	q := r.queues[key]
	if q == nil {
		q = &queue{}
		r.queues[key] = q
	}
	r.mu.Unlock()

	q.mu.Lock()
	q.tasks = append(q.tasks, t)
	if !q.running {
		q.running = true
		r.wg.Add(1)
		go r.drain(key, q)
	}
	q.mu.Unlock()
	return t.done
}

// Barrier enqueues a no-op for key. Receiving from the returned channel
// observes that every previously submitted operation for key resolved.
func (r *Registry) Barrier(key string) <-chan error {
	return r.Enqueue(key, func(context.Context) error { return nil })
}

// Wait blocks until every running key worker has drained its queue.
// Callers must stop submitting before waiting.
func (r *Registry) Wait() { r.wg.Wait() }

func (r *Registry) drain(key string, q *queue) {
	defer r.wg.Done()
	for {
		q.mu.Lock()
		if len(q.tasks) == 0 {
			q.running = false
			q.mu.Unlock()
			return
		}
		t := q.tasks[0]
		q.tasks = q.tasks[1:]
		q.mu.Unlock()

		start := time.Now()
		err := runOp(t.op)
		if err != nil {
			r.logger.Debug("writequeue.op_failed",
				logpkg.Str("key", key),
				logpkg.Str("task", t.id.String()),
				logpkg.Dur("dur", time.Since(start)),
				logpkg.Err(err),
			)
		}
		t.done <- err
	}
}

// runOp executes op, converting a panic into an error so a faulty
// operation cannot kill its key worker.
func runOp(op Op) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("writequeue: operation panic: %v", rec)
		}
	}()
	return op(context.Background())
}
