// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"encoding/json/jsontext"
	json "encoding/json/v2"
	"sync"

	"github.com/go-a2a/agentflow/agflowerr"
)

// discipline names which of the two mutually exclusive storage
// disciplines a [Session] has committed to (spec.md §3 Session
// invariant). A fresh session starts disciplineUnset and commits to one
// discipline on its first [Session.SetConversationID] or
// [Session.UseChatHistoryProvider] call.
type discipline int

const (
	disciplineUnset discipline = iota
	disciplineService
	disciplineLocal
)

// Session is per-conversation state carried across agent runs: either a
// remote conversation identifier (service-backed) or a locally owned
// chat-history provider, never both, plus a shared state bag keyed by
// provider state keys. Grounded directly on the teacher's
// session/session.go and session/in_memory_service.go (deep-copy-on-read
// discipline, mutex-guarded maps), collapsed from the teacher's
// app/user/session three-tier addressing down to the spec's single
// per-conversation container, with the mutually-exclusive discipline
// check added as a hard invariant (spec.md §3, §8).
type Session struct {
	mu sync.Mutex

	discipline     discipline
	conversationID string
	history        ChatHistoryProvider

	stateBag map[string]jsontext.Value
}

// New creates an empty Session with neither storage discipline
// committed yet.
func New() *Session {
	return &Session{stateBag: make(map[string]jsontext.Value)}
}

// SetConversationID commits this session to the service-backed
// discipline, or fails with an [agflowerr.ConfigurationError] if the
// session is already locally managed.
func (s *Session) SetConversationID(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.discipline == disciplineLocal {
		return agflowerr.NewConfigurationError("session: cannot set conversation id, session already has a locally managed chat history")
	}
	s.discipline = disciplineService
	s.conversationID = id
	return nil
}

// ConversationID returns the service-assigned conversation id, if this
// session is service-backed.
func (s *Session) ConversationID() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversationID, s.discipline == disciplineService
}

// UseChatHistoryProvider commits this session to the locally-managed
// discipline with p as its chat-history provider, or fails with an
// [agflowerr.ConfigurationError] if the session is already
// service-backed.
func (s *Session) UseChatHistoryProvider(p ChatHistoryProvider) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.discipline == disciplineService {
		return agflowerr.NewConfigurationError("session: cannot install a chat-history provider, session already has a conversation id")
	}
	s.discipline = disciplineLocal
	s.history = p
	return nil
}

// HistoryProvider returns the active chat-history provider, if this
// session is locally managed and one has been installed.
func (s *Session) HistoryProvider() (ChatHistoryProvider, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history, s.history != nil
}

// IsLocallyManaged reports whether this session has committed to the
// locally-managed discipline (regardless of whether a provider has been
// installed yet).
func (s *Session) IsLocallyManaged() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.discipline == disciplineLocal
}

// StateGet decodes the state bag value stored under key into out,
// reporting whether key was present.
func (s *Session) StateGet(key string, out any) (bool, error) {
	s.mu.Lock()
	raw, ok := s.stateBag[key]
	s.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return true, err
	}
	return true, nil
}

// StateSet encodes v and stores it under key in the state bag, used by
// chat-history and context providers to persist their own state across
// serialize/deserialize (spec.md §4.4).
func (s *Session) StateSet(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.stateBag[key] = raw
	s.mu.Unlock()
	return nil
}

// StateKeys lists every key currently populated in the state bag.
func (s *Session) StateKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.stateBag))
	for k := range s.stateBag {
		keys = append(keys, k)
	}
	return keys
}
