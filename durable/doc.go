// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package durable implements the durable session entity of spec.md
// §4.8: one addressable entity per (agentName, sessionKey) pair that
// serializes requests, appends to an append-only conversation log,
// tracks expiration metadata, and self-schedules TTL eviction via a
// deferred self-signal.
//
// [Entity] owns exactly the state for one pair and serializes every
// operation against it with its own mutex, mirroring how the teacher's
// session/in_memory_service.go guards its session map — here narrowed
// to one entity instead of one process-wide store. The conversation log
// persists through the pluggable [Store] interface; [SQLiteStore] and
// [PostgresStore] are the two concrete backends, wired from the
// corpus's `modernc.org/sqlite` and `github.com/jackc/pgx/v5`
// dependencies. [Manager] keys entities by (agentName, sessionKey) and
// hands out the same *[Entity] for repeated lookups so that the
// per-entity mutex actually serializes repeated callers.
package durable
