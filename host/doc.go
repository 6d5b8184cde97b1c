// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package host implements the name-keyed agent/workflow registries and
// the session-store-backed host wrapper of spec.md §4.9.
//
// [AgentCatalog] and [WorkflowCatalog] are grounded on the teacher's
// model/registry.go (model.LLMRegistry): the same mutex-guarded map
// shape, generalized from LLMRegistry's regex-pattern matching down to
// an exact, case-folded name lookup (durable agent names are
// case-insensitive per spec.md §4.9, and there is no pattern-matching
// requirement in this domain). [HostAgent] wraps any [session.Agent]
// with [SessionStore]-backed persistence hooks, grounded on the
// teacher's session/in_memory_service.go deep-copy-on-read discipline.
package host
