package hooks

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
)

// Handler is a function registered against a topic. It receives the arguments
// passed to InvokeAll and returns a result, a Deferred, or an error.
type Handler func(ctx context.Context, args ...any) (any, error)

// Deferred is a result that is resolved later. InvokeAll awaits all deferred
// results of a call concurrently.
type Deferred func(ctx context.Context) (any, error)

// Async wraps fn so that it runs in the deferred batch of InvokeAll instead of
// inline with the synchronous handlers.
func Async(fn Handler) Handler {
	return func(ctx context.Context, args ...any) (any, error) {
		return Deferred(func(ctx context.Context) (any, error) {
			return fn(ctx, args...)
		}), nil
	}
}

// entry is a single handler registration.
type entry struct {
	owner   string
	handler Handler
}

// Registry maps topics to ordered lists of handlers.
type Registry struct {
	mu     sync.RWMutex
	topics map[string][]entry
	order  []string // topic keys in first-registration order
}

// NewRegistry creates an empty topic registry.
func NewRegistry() *Registry {
	return &Registry{
		topics: make(map[string][]entry),
	}
}

type registerOptions struct {
	override bool
	owner    string
}

// RegisterOption customizes a single Register call.
type RegisterOption func(*registerOptions)

// Override clears the handlers stored under the exact topic before the new
// handler is appended. Handlers under prefix or sibling topics are untouched.
func Override() RegisterOption {
	return func(o *registerOptions) { o.override = true }
}

// Owner tags the registration with the name of the extension that made it so
// it can later be removed with DropOwner.
func Owner(name string) RegisterOption {
	return func(o *registerOptions) { o.owner = name }
}

// Register appends handler to the list stored under topic.
func (r *Registry) Register(topic string, handler Handler, opts ...RegisterOption) {
	if topic == "" || handler == nil {
		slog.Warn("Ignoring hook registration", "topic", topic, "nil_handler", handler == nil)
		return
	}

	var o registerOptions
	for _, opt := range opts {
		opt(&o)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	list, exists := r.topics[topic]
	if !exists {
		r.order = append(r.order, topic)
	}
	if o.override {
		list = nil
	}

	r.topics[topic] = append(list, entry{owner: o.owner, handler: handler})
}

// Clear removes every handler stored under the exact topic and reports how
// many were removed.
func (r *Registry) Clear(topic string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.topics[topic])
	if _, exists := r.topics[topic]; exists {
		r.topics[topic] = nil
	}
	return n
}

// DropOwner removes every handler registered with Owner(owner). Topic keys stay
// in place so that a subsequent re-registration keeps the original topic order.
func (r *Registry) DropOwner(owner string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for topic, list := range r.topics {
		kept := list[:0:0]
		for _, e := range list {
			if e.owner == owner {
				removed++
				continue
			}
			kept = append(kept, e)
		}
		r.topics[topic] = kept
	}
	return removed
}

// Registration is a staged Register call, applied later by ReplaceOwner.
type Registration struct {
	Topic    string
	Handler  Handler
	Override bool
}

// NewRegistration stages a Register call with the same options Register takes.
// Owner options are ignored; ReplaceOwner sets the owner.
func NewRegistration(topic string, handler Handler, opts ...RegisterOption) Registration {
	var o registerOptions
	for _, opt := range opts {
		opt(&o)
	}
	return Registration{Topic: topic, Handler: handler, Override: o.override}
}

// ReplaceOwner atomically swaps every handler registered by owner for regs.
// Within each topic the new handlers take the position of the owner's first
// previous handler, so replaying the same registrations keeps handler order
// stable relative to other owners. It returns the number of handlers added.
func (r *Registry) ReplaceOwner(owner string, regs []Registration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	pos := make(map[string]int)
	for topic, list := range r.topics {
		kept := list[:0:0]
		for _, e := range list {
			if e.owner == owner {
				if _, seen := pos[topic]; !seen {
					pos[topic] = len(kept)
				}
				continue
			}
			kept = append(kept, e)
		}
		r.topics[topic] = kept
	}

	added := 0
	for _, reg := range regs {
		if reg.Topic == "" || reg.Handler == nil {
			slog.Warn("Ignoring hook registration", "owner", owner, "topic", reg.Topic, "nil_handler", reg.Handler == nil)
			continue
		}
		list, exists := r.topics[reg.Topic]
		if !exists {
			r.order = append(r.order, reg.Topic)
		}

		e := entry{owner: owner, handler: reg.Handler}
		switch at, ok := pos[reg.Topic]; {
		case reg.Override:
			list = []entry{e}
			pos[reg.Topic] = 1
		case ok:
			list = slices.Insert(list, at, e)
			pos[reg.Topic] = at + 1
		default:
			list = append(list, e)
		}
		r.topics[reg.Topic] = list
		added++
	}
	return added
}

// Find returns the handlers of every stored topic that equals (prefix=false)
// or starts with (prefix=true) one of the requested topics. Topics are visited
// in the order they were first registered and each contributes its handlers
// once, in insertion order.
func (r *Registry) Find(topics []string, prefix bool) []Handler {
	entries := r.find(topics, prefix)
	handlers := make([]Handler, len(entries))
	for i, e := range entries {
		handlers[i] = e.handler
	}
	return handlers
}

func (r *Registry) find(topics []string, prefix bool) []entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var found []entry
	for _, key := range r.order {
		if !matches(key, topics, prefix) {
			continue
		}
		found = append(found, r.topics[key]...)
	}
	return found
}

func matches(key string, terms []string, prefix bool) bool {
	for _, term := range terms {
		if prefix && strings.HasPrefix(key, term) {
			return true
		}
		if !prefix && key == term {
			return true
		}
	}
	return false
}

// TopicInfo describes one stored topic.
type TopicInfo struct {
	Topic    string   `json:"topic"`
	Handlers int      `json:"handlers"`
	Owners   []string `json:"owners"`
}

// Topics lists every topic that currently has at least one handler, in
// registration order.
func (r *Registry) Topics() []TopicInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]TopicInfo, 0, len(r.order))
	for _, key := range r.order {
		list := r.topics[key]
		if len(list) == 0 {
			continue
		}
		info := TopicInfo{Topic: key, Handlers: len(list)}
		seen := make(map[string]bool)
		for _, e := range list {
			if e.owner != "" && !seen[e.owner] {
				seen[e.owner] = true
				info.Owners = append(info.Owners, e.owner)
			}
		}
		infos = append(infos, info)
	}
	return infos
}

// Count returns the total number of registered handlers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, list := range r.topics {
		n += len(list)
	}
	return n
}
