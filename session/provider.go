// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package session

import "context"

// Tool is a capability an agent may expose to its chat client, carried
// opaquely through the pipeline (spec.md treats tool schemas as
// provider/agent concerns, not scheduler concerns).
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// AIContext is the accumulated instructions/messages/tools a
// [ContextProvider] chain builds around one agent invocation
// (spec.md §4.4 step 3).
type AIContext struct {
	Instructions string
	Messages     []ChatMessage
	Tools        []Tool
}

// ContextProvider is a pre/post hook that enriches the [AIContext]
// around an agent invocation and may persist its own state across
// sessions via its unique state key (spec.md §4.4 step 3, §"Context
// provider" in the glossary).
type ContextProvider interface {
	// StateKey returns the unique state-bag key this provider persists
	// under. Must be unique across every provider attached to one agent.
	StateKey() string

	// Invoke returns an updated AIContext derived from in, the
	// accumulated context so far in the provider chain.
	Invoke(ctx context.Context, agentName string, sess *Session, in AIContext) (AIContext, error)

	// Record is invoked after the chat-client call completes, mirroring
	// [ChatHistoryProvider.Record]'s success/failure contract.
	Record(ctx context.Context, sess *Session, request, response []ChatMessage, callErr error) error
}
