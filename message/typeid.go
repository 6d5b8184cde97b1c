// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package message defines the envelope and type-identity primitives that
// flow through a workflow graph: a [TypeID] stable enough to survive a
// checkpoint round-trip, a [Registry] mapping types to and from it, and
// the [Envelope] that carries a payload between executors.
package message

import (
	"fmt"
	"reflect"
)

// TypeID is a stable, content-addressable identifier for a message
// payload type: the same underlying Go type always produces the same
// TypeID, and it survives process restarts (it is derived from the
// type's package path and name, not from any in-memory pointer or
// registration order).
type TypeID string

// TypeIDFor derives the TypeID for T. Pointer types are dereferenced
// through every level so that T, *T and **T share an identity, matching how payloads are
// normally passed by value through the scheduler.
func TypeIDFor[T any]() TypeID {
	var zero T
	return typeIDOf(reflect.TypeOf(zero))
}

// TypeIDOf derives the TypeID for the dynamic type of v.
func TypeIDOf(v any) TypeID {
	return typeIDOf(reflect.TypeOf(v))
}

func typeIDOf(t reflect.Type) TypeID {
	if t == nil {
		return TypeID("nil")
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if pkg := t.PkgPath(); pkg != "" {
		return TypeID(fmt.Sprintf("%s.%s", pkg, t.Name()))
	}
	// Unnamed/builtin types (string, int, []byte, ...) have no package path;
	// fall back to the type's own String() form, which is still stable and
	// content-addressable for a fixed set of builtin kinds.
	return TypeID(t.String())
}
