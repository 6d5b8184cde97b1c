// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"sync"
)

// DefaultHistoryStateKey is the state-bag key the default in-memory
// chat-history provider uses, and the key installed automatically at
// pipeline step 7 (spec.md §4.4) when a service call returns no
// conversation id and the session has no provider yet.
const DefaultHistoryStateKey = "chat_history"

// ChatHistoryProvider is the pre/post hook around an agent invocation
// that owns a locally-managed session's message history. Exactly one
// may be active on a session at a time (spec.md §4.4 step 7's "a chat
// history provider forbidden" rule enforces the service-backed side of
// that exclusivity; [Session.UseChatHistoryProvider] enforces it on the
// local side).
type ChatHistoryProvider interface {
	// StateKey returns the unique state-bag key this provider persists
	// under. Must be unique across every provider (history + context)
	// attached to one agent (spec.md §4.4 uniqueness invariant).
	StateKey() string

	// PrepareMessages returns the merged message sequence (stored
	// history followed by input) to send to the chat client
	// (spec.md §4.4 step 2).
	PrepareMessages(ctx context.Context, agentName string, sess *Session, input []ChatMessage) ([]ChatMessage, error)

	// Record is invoked after the chat-client call completes.
	// On success (callErr == nil) request is the full message sequence
	// sent to the client and response is the messages it returned; the
	// provider should persist request+response as its new canonical
	// history so the next PrepareMessages call doesn't double-count.
	// On failure, callErr is non-nil and the provider must leave its
	// state unchanged rather than partially append (spec.md §4.4 step 6).
	Record(ctx context.Context, sess *Session, request, response []ChatMessage, callErr error) error

	// ExportMessages returns the provider's current canonical history,
	// used by [Session.Serialize].
	ExportMessages(ctx context.Context) ([]ChatMessage, error)

	// ImportMessages replaces the provider's canonical history, used by
	// [Session.Deserialize].
	ImportMessages(ctx context.Context, messages []ChatMessage) error
}

// InMemoryChatHistoryProvider is the default [ChatHistoryProvider]
// installed automatically when a locally managed session has none
// (spec.md §4.4 step 7). Grounded on the teacher's
// session/in_memory_service.go deep-copy-on-read discipline, collapsed
// from a three-tier app/user/session store to one conversation's flat
// message list.
type InMemoryChatHistoryProvider struct {
	mu       sync.Mutex
	messages []ChatMessage
}

var _ ChatHistoryProvider = (*InMemoryChatHistoryProvider)(nil)

// NewInMemoryChatHistoryProvider creates an empty in-memory history
// provider.
func NewInMemoryChatHistoryProvider() *InMemoryChatHistoryProvider {
	return &InMemoryChatHistoryProvider{}
}

func (p *InMemoryChatHistoryProvider) StateKey() string { return DefaultHistoryStateKey }

func (p *InMemoryChatHistoryProvider) PrepareMessages(_ context.Context, _ string, _ *Session, input []ChatMessage) ([]ChatMessage, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	merged := make([]ChatMessage, 0, len(p.messages)+len(input))
	merged = append(merged, p.messages...)
	merged = append(merged, input...)
	return merged, nil
}

func (p *InMemoryChatHistoryProvider) Record(_ context.Context, _ *Session, request, response []ChatMessage, callErr error) error {
	if callErr != nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	merged := make([]ChatMessage, 0, len(request)+len(response))
	merged = append(merged, request...)
	merged = append(merged, response...)
	p.messages = merged
	return nil
}

func (p *InMemoryChatHistoryProvider) ExportMessages(context.Context) ([]ChatMessage, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]ChatMessage(nil), p.messages...), nil
}

func (p *InMemoryChatHistoryProvider) ImportMessages(_ context.Context, messages []ChatMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append([]ChatMessage(nil), messages...)
	return nil
}
