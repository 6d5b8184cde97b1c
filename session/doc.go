// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package session implements the per-conversation state container
// (spec.md §3, §4.4): a [Session] that is either service-backed (holds
// an opaque conversation id assigned by an external AI service) or
// locally managed (owns a [ChatHistoryProvider]), never both, plus a
// state bag shared by [ChatHistoryProvider] and [ContextProvider] hooks.
//
// [RunPipeline] drives the full per-run pipeline spec.md §4.4 describes:
// merge per-run [AgentOptions] over an agent's defaults, run the
// chat-history provider, run each context provider, issue the request to
// an opaque [ChatClient], notify providers of the outcome, and reconcile
// the session's conversation id. Concrete chat-client backends live in
// the sibling chatclient package, which implements [ChatClient] against
// real providers; this package only defines the contract so the
// pipeline has no dependency on any one provider.
//
// [ChatMessage] and its [ContentPart] union are the spec's wire content
// model (§3, §6): seven closed content-part kinds, each marshaled with a
// `type` discriminant via [MarshalContentPart]/[UnmarshalContentPart].
package session
