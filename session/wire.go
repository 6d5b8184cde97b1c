// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"encoding/json/jsontext"
	json "encoding/json/v2"
	"fmt"

	"github.com/go-a2a/agentflow/agflowerr"
)

// wireMessage is the JSON shape of one [ChatMessage] on the wire: role
// and author are plain fields, contents are encoded through
// [MarshalContentPart]/[UnmarshalContentPart] so each part keeps its
// tagged `type` discriminant (spec.md §6).
type wireMessage struct {
	Role       Role              `json:"role"`
	AuthorName string            `json:"authorName,omitempty"`
	Contents   []jsontext.Value `json:"contents"`
	Metadata   map[string]any    `json:"metadata,omitempty"`
}

// EncodeMessage renders m into the spec.md §6 wire shape, for callers
// (e.g. the durable entity's conversation-log stores) that need to
// persist a [ChatMessage] outside of a full [Session.Serialize] call.
func EncodeMessage(m ChatMessage) ([]byte, error) {
	w, err := marshalMessage(m)
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

// DecodeMessage is [EncodeMessage]'s inverse.
func DecodeMessage(data []byte) (ChatMessage, error) {
	var w wireMessage
	if err := json.Unmarshal(data, &w); err != nil {
		return ChatMessage{}, err
	}
	return unmarshalMessage(w)
}

func marshalMessage(m ChatMessage) (wireMessage, error) {
	w := wireMessage{Role: m.Role, AuthorName: m.AuthorName, Metadata: m.Metadata}
	for _, part := range m.Contents {
		raw, err := MarshalContentPart(part)
		if err != nil {
			return wireMessage{}, err
		}
		w.Contents = append(w.Contents, raw)
	}
	return w, nil
}

func unmarshalMessage(w wireMessage) (ChatMessage, error) {
	m := ChatMessage{Role: w.Role, AuthorName: w.AuthorName, Metadata: w.Metadata}
	for _, raw := range w.Contents {
		part, err := UnmarshalContentPart(raw)
		if err != nil {
			return ChatMessage{}, err
		}
		m.Contents = append(m.Contents, part)
	}
	return m, nil
}

// wireSession is the JSON object spec.md §6 defines for a serialized
// session: exactly one of conversationId (service-backed) or storeState
// (locally managed).
type wireSession struct {
	ConversationID *string          `json:"conversationId,omitempty"`
	StoreState     *wireStoreState  `json:"storeState,omitempty"`
}

// wireStoreState is the opaque payload a locally managed session's
// storeState key encloses: the conversation's messages plus every
// provider's own sub-state, keyed by its unique state key.
type wireStoreState struct {
	Messages []wireMessage              `json:"messages"`
	Provider map[string]jsontext.Value `json:"provider,omitempty"`
}

// Serialize renders s into the spec.md §6 wire format. A service-backed
// session serializes to {"conversationId": ...}; a locally managed
// session serializes to {"storeState": {...}}, exporting its
// chat-history provider's messages (if any) and the full state bag.
// An untouched session (neither discipline ever committed) serializes
// as an empty locally-managed store, the more conservative default for
// a conversation that has not started yet.
func (s *Session) Serialize(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	disc := s.discipline
	convID := s.conversationID
	hist := s.history
	stateBag := make(map[string]jsontext.Value, len(s.stateBag))
	for k, v := range s.stateBag {
		stateBag[k] = v
	}
	s.mu.Unlock()

	if disc == disciplineService {
		return json.Marshal(wireSession{ConversationID: &convID})
	}

	store := wireStoreState{Provider: stateBag}
	if hist != nil {
		msgs, err := hist.ExportMessages(ctx)
		if err != nil {
			return nil, fmt.Errorf("session: serialize: exporting chat history: %w", err)
		}
		for _, m := range msgs {
			wm, err := marshalMessage(m)
			if err != nil {
				return nil, fmt.Errorf("session: serialize: encoding message: %w", err)
			}
			store.Messages = append(store.Messages, wm)
		}
	}
	return json.Marshal(wireSession{StoreState: &store})
}

// Deserialize replaces s's state from data, a spec.md §6 wire-format
// session. Mixing both conversationId and storeState (or providing
// neither) is a hard [agflowerr.SerializationError], raised
// synchronously rather than silently picking one. A locally managed
// session's messages are imported into s's current chat-history
// provider if one is installed, or into a fresh
// [InMemoryChatHistoryProvider] otherwise.
func (s *Session) Deserialize(ctx context.Context, data []byte) error {
	var w wireSession
	if err := json.Unmarshal(data, &w); err != nil {
		return agflowerr.NewSerializationError("session: deserialize: invalid JSON: %v", err)
	}

	switch {
	case w.ConversationID != nil && w.StoreState != nil:
		return agflowerr.NewSerializationError("session: deserialize: object carries both conversationId and storeState")
	case w.ConversationID == nil && w.StoreState == nil:
		return agflowerr.NewSerializationError("session: deserialize: object carries neither conversationId nor storeState")
	case w.ConversationID != nil:
		s.mu.Lock()
		s.discipline = disciplineService
		s.conversationID = *w.ConversationID
		s.history = nil
		s.mu.Unlock()
		return nil
	}

	messages := make([]ChatMessage, 0, len(w.StoreState.Messages))
	for _, wm := range w.StoreState.Messages {
		m, err := unmarshalMessage(wm)
		if err != nil {
			return agflowerr.NewSerializationError("session: deserialize: decoding message: %v", err)
		}
		messages = append(messages, m)
	}

	s.mu.Lock()
	s.discipline = disciplineLocal
	s.conversationID = ""
	hist := s.history
	if hist == nil {
		hist = NewInMemoryChatHistoryProvider()
		s.history = hist
	}
	s.stateBag = make(map[string]jsontext.Value, len(w.StoreState.Provider))
	for k, v := range w.StoreState.Provider {
		s.stateBag[k] = v
	}
	s.mu.Unlock()

	return hist.ImportMessages(ctx, messages)
}
