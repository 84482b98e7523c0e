// Package models dispatches typed content to presentation transformers.
//
// A transformer is registered for a (type, variant) pair, for example
// ("xinmods:blog", "card"). Transform reads the type tag off the value it is
// given and calls the transformer registered for that type and the requested
// variant. Transformers may call back into the registry to compose variants.
package models

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// DefaultVariant is used when Transform is called with an empty variant.
const DefaultVariant = "default"

// Transformer converts a typed context into a presentation value.
type Transformer func(ctx any) (any, error)

// Key identifies a transformer.
type Key struct {
	Type    string `json:"type"`
	Variant string `json:"variant"`
}

func (k Key) String() string {
	return k.Type + "/" + k.Variant
}

type entry struct {
	owner  string
	fn     Transformer
	forced bool
}

// Registry stores at most one transformer per Key.
type Registry struct {
	mu      sync.RWMutex
	entries map[Key]entry
}

// NewRegistry creates an empty transform registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[Key]entry),
	}
}

type registerOptions struct {
	force bool
	owner string
}

// RegisterOption customizes a Register call.
type RegisterOption func(*registerOptions)

// Force replaces an existing transformer instead of failing.
func Force() RegisterOption {
	return func(o *registerOptions) { o.force = true }
}

// Owner tags the registration with the registering extension's name.
func Owner(name string) RegisterOption {
	return func(o *registerOptions) { o.owner = name }
}

// Register stores fn for (modelType, variant). Registering a key twice without
// Force is a configuration error.
func (r *Registry) Register(modelType, variant string, fn Transformer, opts ...RegisterOption) error {
	if fn == nil {
		return newError(ErrorConfiguration, modelType, variant,
			"no transformer function given for type %q variant %q", modelType, variant)
	}
	if modelType == "" || variant == "" {
		return newError(ErrorConfiguration, modelType, variant,
			"type and variant are required (type %q, variant %q)", modelType, variant)
	}

	var o registerOptions
	for _, opt := range opts {
		opt(&o)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := Key{Type: modelType, Variant: variant}
	if existing, exists := r.entries[key]; exists {
		if !o.force {
			registrationConflicts.Inc()
			return newError(ErrorConfiguration, modelType, variant,
				"transformer already registered for type %q variant %q (owner %q)", modelType, variant, existing.owner)
		}
		slog.Debug("Replacing transformer", "type", modelType, "variant", variant, "previous_owner", existing.owner)
	}

	r.entries[key] = entry{owner: o.owner, fn: fn, forced: o.force}
	return nil
}

// RegisterMultiple registers every variant in fns for modelType. Variants are
// registered in sorted order and the first failure stops the loop.
func (r *Registry) RegisterMultiple(modelType string, fns map[string]Transformer, opts ...RegisterOption) error {
	variants := make([]string, 0, len(fns))
	for variant := range fns {
		variants = append(variants, variant)
	}
	sort.Strings(variants)

	for _, variant := range variants {
		if err := r.Register(modelType, variant, fns[variant], opts...); err != nil {
			return err
		}
	}
	return nil
}

// Transform looks up the transformer for the type tag of ctx and the given
// variant, then returns its result unmodified.
func (r *Registry) Transform(ctx any, variant string) (any, error) {
	if variant == "" {
		variant = DefaultVariant
	}

	modelType, ok := TypeOf(ctx)
	if !ok {
		transformFailures.WithLabelValues(string(ErrorMissingType)).Inc()
		return nil, newError(ErrorMissingType, "", variant,
			"context of type %T has no type tag to determine the transformation for", ctx)
	}

	r.mu.RLock()
	e, exists := r.entries[Key{Type: modelType, Variant: variant}]
	r.mu.RUnlock()

	if !exists {
		transformFailures.WithLabelValues(string(ErrorNoTransformer)).Inc()
		return nil, newError(ErrorNoTransformer, modelType, variant,
			"did not find a transformer for type %q with variant %q", modelType, variant)
	}

	transformCalls.WithLabelValues(modelType, variant).Inc()
	return e.fn(ctx)
}

// TransformAs is Transform with the result asserted to T.
func TransformAs[T any](r *Registry, ctx any, variant string) (T, error) {
	var zero T
	v, err := r.Transform(ctx, variant)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("transformer for variant %q returned %T, want %T", variant, v, zero)
	}
	return out, nil
}

// Has reports whether a transformer exists for (modelType, variant).
func (r *Registry) Has(modelType, variant string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.entries[Key{Type: modelType, Variant: variant}]
	return exists
}

// KeyInfo describes one registration.
type KeyInfo struct {
	Key
	Owner string `json:"owner"`
}

// Keys lists all registrations sorted by type and variant.
func (r *Registry) Keys() []KeyInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]KeyInfo, 0, len(r.entries))
	for k, e := range r.entries {
		keys = append(keys, KeyInfo{Key: k, Owner: e.owner})
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Type != keys[j].Type {
			return keys[i].Type < keys[j].Type
		}
		return keys[i].Variant < keys[j].Variant
	})
	return keys
}

// DropOwner removes every transformer registered with Owner(owner).
func (r *Registry) DropOwner(owner string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for k, e := range r.entries {
		if e.owner == owner {
			delete(r.entries, k)
			removed++
		}
	}
	return removed
}

// Registration is a staged Register call, applied later by ReplaceOwner.
type Registration struct {
	Key
	Fn    Transformer
	Force bool
}

// NewRegistration stages a Register call with the same options Register takes.
// Owner options are ignored; ReplaceOwner sets the owner.
func NewRegistration(modelType, variant string, fn Transformer, opts ...RegisterOption) Registration {
	var o registerOptions
	for _, opt := range opts {
		opt(&o)
	}
	return Registration{Key: Key{Type: modelType, Variant: variant}, Fn: fn, Force: o.force}
}

// ReplaceOwner atomically swaps every transformer registered by owner for regs.
// The batch is validated as a whole first: an invalid registration, a key
// repeated within the batch, or a key held by another owner without Force
// fails with a configuration error and leaves the registry unchanged.
//
// A key another owner took over with Force stays with that owner: a plain
// registration of it in regs is skipped rather than rejected.
func (r *Registry) ReplaceOwner(owner string, regs []Registration) error {
	batch := make(map[Key]Registration, len(regs))
	for _, reg := range regs {
		if reg.Fn == nil || reg.Type == "" || reg.Variant == "" {
			return newError(ErrorConfiguration, reg.Type, reg.Variant,
				"invalid transformer registration for type %q variant %q by %q", reg.Type, reg.Variant, owner)
		}
		if _, dup := batch[reg.Key]; dup && !reg.Force {
			registrationConflicts.Inc()
			return newError(ErrorConfiguration, reg.Type, reg.Variant,
				"transformer registered twice for type %q variant %q by %q", reg.Type, reg.Variant, owner)
		}
		batch[reg.Key] = reg
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for key, reg := range batch {
		existing, exists := r.entries[key]
		if !exists || existing.owner == owner || reg.Force {
			continue
		}
		if existing.forced {
			slog.Debug("Keeping forced transformer", "type", key.Type, "variant", key.Variant,
				"owner", existing.owner, "skipped_owner", owner)
			delete(batch, key)
			continue
		}
		registrationConflicts.Inc()
		return newError(ErrorConfiguration, key.Type, key.Variant,
			"transformer already registered for type %q variant %q (owner %q)", key.Type, key.Variant, existing.owner)
	}

	for k, e := range r.entries {
		if e.owner == owner {
			delete(r.entries, k)
		}
	}
	for key, reg := range batch {
		r.entries[key] = entry{owner: owner, fn: reg.Fn, forced: reg.Force}
	}
	return nil
}
