// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package cache implements the in-memory conversation cache spec.md
// §4.7 requires of the OpenAI-compatible host shim: per-conversation
// ordered item insertion with duplicate-id rejection, cursor-style
// pagination, and a per-entry TTL that resets on every mutation.
//
// Grounded on the teacher's session/in_memory_service.go locking
// discipline (one [sync.RWMutex] guarding a logically two-level map),
// adapted from a three-tier app/user/session store to a flat
// conversation-id-keyed item list, with a [time.AfterFunc]-driven TTL
// sweep added per spec.md §4.7's "touch the cache entry's TTL on every
// mutating operation" requirement.
package cache
