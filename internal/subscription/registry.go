package subscription

import (
	"sync"

	"github.com/rzbill/keysync/pkg/id"
	logpkg "github.com/rzbill/keysync/pkg/log"
)

// Event is delivered to subscribers after a persistence operation for
// their key is confirmed. Removed marks the "absent" sentinel emitted
// when the key is deleted from the durable store.
type Event struct {
	Key     string
	Value   interface{}
	Removed bool
}

// Callback receives confirmed events for a key.
type Callback func(Event)

// Handle identifies one registered subscriber.
type Handle struct {
	key string
	id  id.ID
}

// Key returns the entry key the handle is registered under.
func (h Handle) Key() string { return h.key }

// Registry is the process-wide fan-out map from entry key to the set of
// interested callbacks. Notification is synchronous and panic-isolated:
// one callback's failure never suppresses the rest.
type Registry struct {
	mu     sync.RWMutex
	subs   map[string]map[id.ID]*subscriber
	gen    *id.Generator
	logger logpkg.Logger
}

type subscriber struct {
	cb     Callback
	filter *Filter
}

// New returns an empty Registry.
func New(logger logpkg.Logger) *Registry {
	if logger == nil {
		logger = logpkg.NewLogger()
	}
	return &Registry{
		subs:   map[string]map[id.ID]*subscriber{},
		gen:    id.NewGenerator(),
		logger: logger.WithComponent("subscription"),
	}
}

// Subscribe registers cb for key. filter may be nil to receive every
// event. The returned handle is the only way to unsubscribe.
func (r *Registry) Subscribe(key string, cb Callback, filter *Filter) Handle {
	h := Handle{key: key, id: r.gen.Next()}
	r.mu.Lock()
	set := r.subs[key]
	if set == nil {
		set = map[id.ID]*subscriber{}
		r.subs[key] = set
	}
	set[h.id] = &subscriber{cb: cb, filter: filter}
	r.mu.Unlock()
	return h
}

// Unsubscribe removes the handle's registration. Removing the last
// subscriber for a key reclaims that key's subscriber set. Unknown
// handles are ignored.
func (r *Registry) Unsubscribe(h Handle) {
	r.mu.Lock()
	if set := r.subs[h.key]; set != nil {
		delete(set, h.id)
		if len(set) == 0 {
			delete(r.subs, h.key)
		}
	}
	r.mu.Unlock()
}

// Notify invokes every currently-registered callback for ev.Key,
// synchronously, in unspecified order. Callbacks run outside the
// registry lock so they may subscribe or unsubscribe reentrantly.
func (r *Registry) Notify(ev Event) {
	r.mu.RLock()
	set := r.subs[ev.Key]
	snapshot := make([]*subscriber, 0, len(set))
	for _, s := range set {
		snapshot = append(snapshot, s)
	}
	r.mu.RUnlock()

	for _, s := range snapshot {
		if s.filter != nil && !s.filter.Eval(ev) {
			continue
		}
		r.invoke(s.cb, ev)
	}
}

func (r *Registry) invoke(cb Callback, ev Event) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("subscriber panic",
				logpkg.Str("key", ev.Key),
				logpkg.Any("panic", rec),
			)
		}
	}()
	cb(ev)
}

// Count returns the number of subscribers registered for key.
func (r *Registry) Count(key string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs[key])
}
