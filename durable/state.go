// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package durable

import (
	"time"

	"github.com/go-a2a/agentflow/session"
)

// LogEntry is one append-only record in a [SessionState]'s conversation
// log: exactly one of Request or Response is populated (spec.md §3
// DurableSessionState).
type LogEntry struct {
	CorrelationID string
	IsResponse    bool
	Request       []session.ChatMessage
	Response      []session.ChatMessage
}

// SessionState is the durable entity's persisted state (spec.md §3
// DurableSessionState, §4.8).
type SessionState struct {
	AgentName  string
	SessionKey string

	ConversationLog []LogEntry

	// ExpirationTimeUTC is nil when TTL is disabled for this entity.
	ExpirationTimeUTC *time.Time

	// SignalScheduled records whether the first-interaction self-signal
	// has already been scheduled, so later interactions only refresh
	// ExpirationTimeUTC per spec.md §4.8's lazy-reschedule rule.
	SignalScheduled bool
}

// history concatenates every message across the conversation log in
// append order, request then response per entry — the "concatenated
// conversation history" spec.md §4.8 step 3 feeds to the agent.
func (s *SessionState) history() []session.ChatMessage {
	var out []session.ChatMessage
	for _, e := range s.ConversationLog {
		out = append(out, e.Request...)
		out = append(out, e.Response...)
	}
	return out
}

// findResponse returns the response already recorded for correlationID,
// if any (spec.md §8's Run-is-idempotent-per-correlationId property).
func (s *SessionState) findResponse(correlationID string) ([]session.ChatMessage, bool) {
	for _, e := range s.ConversationLog {
		if e.CorrelationID == correlationID && e.IsResponse {
			return e.Response, true
		}
	}
	return nil, false
}
