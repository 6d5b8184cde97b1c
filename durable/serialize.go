// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package durable

import (
	"encoding/json/jsontext"
	json "encoding/json/v2"
	"fmt"
	"time"

	"github.com/go-a2a/agentflow/session"
)

// wireLogEntry is one [LogEntry]'s JSON shape, encoding each message
// through [session.EncodeMessage] so content parts keep their tagged
// `type` discriminant on the wire (spec.md §6).
type wireLogEntry struct {
	CorrelationID string            `json:"correlationId"`
	IsResponse    bool              `json:"isResponse"`
	Request       []jsontext.Value `json:"request,omitempty"`
	Response      []jsontext.Value `json:"response,omitempty"`
}

// wireState is a [SessionState]'s JSON shape, used by the SQL-backed
// stores to persist the whole entity as one row.
type wireState struct {
	AgentName         string         `json:"agentName"`
	SessionKey        string         `json:"sessionKey"`
	Log               []wireLogEntry `json:"log"`
	ExpirationTimeUTC *time.Time     `json:"expirationTimeUtc,omitempty"`
	SignalScheduled   bool           `json:"signalScheduled"`
}

// encodeState renders state as a JSON blob for SQL-backed [Store]s.
func encodeState(state *SessionState) ([]byte, error) {
	w := wireState{
		AgentName:         state.AgentName,
		SessionKey:        state.SessionKey,
		ExpirationTimeUTC: state.ExpirationTimeUTC,
		SignalScheduled:   state.SignalScheduled,
	}
	for _, e := range state.ConversationLog {
		we := wireLogEntry{CorrelationID: e.CorrelationID, IsResponse: e.IsResponse}
		for _, m := range e.Request {
			raw, err := session.EncodeMessage(m)
			if err != nil {
				return nil, fmt.Errorf("durable: encode request message: %w", err)
			}
			we.Request = append(we.Request, raw)
		}
		for _, m := range e.Response {
			raw, err := session.EncodeMessage(m)
			if err != nil {
				return nil, fmt.Errorf("durable: encode response message: %w", err)
			}
			we.Response = append(we.Response, raw)
		}
		w.Log = append(w.Log, we)
	}
	return json.Marshal(w)
}

// decodeState is [encodeState]'s inverse.
func decodeState(data []byte) (*SessionState, error) {
	var w wireState
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("durable: decode state: %w", err)
	}
	state := &SessionState{
		AgentName:         w.AgentName,
		SessionKey:        w.SessionKey,
		ExpirationTimeUTC: w.ExpirationTimeUTC,
		SignalScheduled:   w.SignalScheduled,
	}
	for _, we := range w.Log {
		e := LogEntry{CorrelationID: we.CorrelationID, IsResponse: we.IsResponse}
		for _, raw := range we.Request {
			m, err := session.DecodeMessage(raw)
			if err != nil {
				return nil, fmt.Errorf("durable: decode request message: %w", err)
			}
			e.Request = append(e.Request, m)
		}
		for _, raw := range we.Response {
			m, err := session.DecodeMessage(raw)
			if err != nil {
				return nil, fmt.Errorf("durable: decode response message: %w", err)
			}
			e.Response = append(e.Response, m)
		}
		state.ConversationLog = append(state.ConversationLog, e)
	}
	return state, nil
}
