// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package host

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/go-a2a/agentflow/session"
)

// SessionStore persists and retrieves sessions on behalf of a
// [HostAgent], keyed by (agent name, conversation id) per spec.md
// §4.9.
type SessionStore interface {
	Get(ctx context.Context, agent *session.Agent, conversationID string) (*session.Session, bool, error)
	Save(ctx context.Context, agent *session.Agent, conversationID string, sess *session.Session) error
}

func sessionStoreKey(agentName, conversationID string) string { return agentName + "\x00" + conversationID }

// InMemoryStore is the default [SessionStore], grounded on the
// teacher's session/in_memory_service.go deep-copy-on-read discipline:
// sessions are persisted in their serialized wire form and
// deserialized fresh on every Get so callers can never mutate the
// store's state through a returned pointer.
type InMemoryStore struct {
	mu    sync.Mutex
	saved map[string][]byte
}

var _ SessionStore = (*InMemoryStore)(nil)

// NewInMemoryStore creates an empty InMemoryStore.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{saved: make(map[string][]byte)}
}

// Get implements [SessionStore].
func (s *InMemoryStore) Get(ctx context.Context, agent *session.Agent, conversationID string) (*session.Session, bool, error) {
	s.mu.Lock()
	data, ok := s.saved[sessionStoreKey(agent.Name, conversationID)]
	s.mu.Unlock()
	if !ok {
		return nil, false, nil
	}

	sess := session.New()
	if err := sess.Deserialize(ctx, data); err != nil {
		return nil, false, err
	}
	return sess, true, nil
}

// Save implements [SessionStore].
func (s *InMemoryStore) Save(ctx context.Context, agent *session.Agent, conversationID string, sess *session.Session) error {
	data, err := sess.Serialize(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.saved[sessionStoreKey(agent.Name, conversationID)] = data
	s.mu.Unlock()
	return nil
}

// NoopStore is a [SessionStore] that never persists anything: Get
// always reports a miss and Save discards its argument, matching
// spec.md §4.9's "no-op (returns a fresh session; discards saves)".
type NoopStore struct{}

var _ SessionStore = NoopStore{}

// Get implements [SessionStore].
func (NoopStore) Get(context.Context, *session.Agent, string) (*session.Session, bool, error) {
	return nil, false, nil
}

// Save implements [SessionStore].
func (NoopStore) Save(context.Context, *session.Agent, string, *session.Session) error {
	return nil
}

// HostAgent wraps any [session.Agent] with persistence hooks backed by
// a [SessionStore] (spec.md §4.9).
type HostAgent struct {
	Agent *session.Agent
	Store SessionStore

	group singleflight.Group
}

// NewHostAgent wraps agent, persisting sessions through store.
func NewHostAgent(agent *session.Agent, store SessionStore) *HostAgent {
	return &HostAgent{Agent: agent, Store: store}
}

// GetOrCreateSession fetches the session for conversationID, or
// returns a fresh one if the store has none. Concurrent callers
// racing on the same conversationID are collapsed onto a single
// [SessionStore.Get] call via [singleflight.Group], grounded on the
// same "collapse duplicate concurrent work" idiom the corpus uses
// singleflight for elsewhere, rather than every caller hitting the
// backing store independently.
func (h *HostAgent) GetOrCreateSession(ctx context.Context, conversationID string) (*session.Session, error) {
	v, err, _ := h.group.Do(conversationID, func() (any, error) {
		sess, ok, err := h.Store.Get(ctx, h.Agent, conversationID)
		if err != nil {
			return nil, err
		}
		if ok {
			return sess, nil
		}
		return session.New(), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*session.Session), nil
}

// SaveSession persists sess's serialized form under conversationID.
func (h *HostAgent) SaveSession(ctx context.Context, conversationID string, sess *session.Session) error {
	return h.Store.Save(ctx, h.Agent, conversationID, sess)
}
