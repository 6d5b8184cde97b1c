// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package workflow

import (
	"time"

	"github.com/google/uuid"
)

// EventKind names one of the lifecycle events the run observer stream
// carries (spec.md §6 Run API surface).
type EventKind string

const (
	EventExecutorInvoked   EventKind = "executor_invoked"
	EventExecutorCompleted EventKind = "executor_completed"
	EventExecutorFailed    EventKind = "executor_failed"
	EventMessageSend       EventKind = "message_send"
	EventRequestInfo       EventKind = "request_info"
	EventWorkflowOutput    EventKind = "workflow_output"
	EventWorkflowCompleted EventKind = "workflow_completed"
	EventRequestHalt       EventKind = "request_halt"
	EventAgentRunUpdate    EventKind = "agent_run_update"
	EventUnroutedMessage   EventKind = "unrouted_message"
)

// Event is one entry in the run's observable output stream. Grounded on
// the teacher's types.Event builder-style With* construction, generalized
// from an LLM-conversation event to a scheduler lifecycle event.
type Event struct {
	ID         string
	Timestamp  time.Time
	Kind       EventKind
	ExecutorID ExecutorID
	Value      any
	Err        error
}

// NewEvent builds an Event of the given kind, stamping a fresh id and
// the current time.
func NewEvent(kind EventKind, executorID ExecutorID, value any) *Event {
	return &Event{
		ID:         uuid.NewString(),
		Timestamp:  time.Now(),
		Kind:       kind,
		ExecutorID: executorID,
		Value:      value,
	}
}

// WithErr attaches a fault payload (used for ExecutorFailed).
func (e *Event) WithErr(err error) *Event {
	e.Err = err
	return e
}
