// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package message

import (
	"fmt"
	"reflect"
	"sync"
)

// Registry maps payload types to their [TypeID] and back, so a
// checkpointed payload can be rehydrated into a concrete Go value after
// a restore. It is the message-layer analogue of the teacher's
// pattern-keyed LLM registry, generalized from regex matching to exact
// reflect-type identity since a TypeID must be content-addressable
// rather than pattern-matched.
type Registry struct {
	mu    sync.RWMutex
	types map[TypeID]reflect.Type
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// Default returns the process-wide singleton registry.
func Default() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[TypeID]reflect.Type)}
}

// Register associates T's [TypeID] with its reflect.Type so later calls
// to [Registry.New] can rehydrate a zero value of T. Register is
// idempotent for the same T; registering a different type under an
// already-used TypeID panics, since that would silently corrupt
// checkpoint round-trips.
func Register[T any](r *Registry) TypeID {
	id := TypeIDFor[T]()
	t := reflect.TypeOf((*T)(nil)).Elem()

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.types[id]; ok && existing != t {
		panic(fmt.Sprintf("message: TypeID %q already registered for %s, cannot reuse for %s", id, existing, t))
	}
	r.types[id] = t
	return id
}

// Lookup returns the reflect.Type registered for id.
func (r *Registry) Lookup(id TypeID) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[id]
	return t, ok
}

// New allocates a zero value of the type registered for id.
func (r *Registry) New(id TypeID) (any, error) {
	t, ok := r.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("message: no type registered for TypeID %q", id)
	}
	return reflect.New(t).Elem().Interface(), nil
}
