// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package workflow defines the graph model that the scheduler drives:
// executors (typed message handlers), edges (static routing rules), the
// immutable compiled [Graph], and the per-handler [Context].
package workflow

import (
	"context"

	"github.com/go-a2a/agentflow/message"
)

// ExecutorID is a non-empty, stable identifier for an executor, unique
// within one workflow graph.
type ExecutorID string

// Handler is invoked once per delivered envelope. It reports effects
// (sent messages, events, state writes, output yields, halt/external
// requests) through ctx rather than returning them, so a single handler
// signature covers every executor shape named in the design notes
// (ActionExecutor, AgentExecutor, HostExecutor, FanInJoinExecutor).
type Handler func(ctx context.Context, wc *Context, envelope message.Envelope) error

// Executor is a unit of computation in the graph: a declared set of
// input/output types plus a handler closure. Composition replaces the
// inheritance-based specialization the teacher's BaseAgent used —
// distinct executor shapes are distinct small structs built with
// [NewExecutor], never subclasses of a common base.
type Executor interface {
	// ID returns this executor's stable identifier.
	ID() ExecutorID

	// InputTypes returns the set of payload TypeIDs this executor
	// declares it can handle. Must be non-empty unless the executor is
	// an external-input sink (fed only via directly-addressed sends).
	InputTypes() []message.TypeID

	// OutputTypes returns the set of payload TypeIDs this executor may
	// emit.
	OutputTypes() []message.TypeID

	// Handle processes one delivered envelope.
	Handle(ctx context.Context, wc *Context, envelope message.Envelope) error

	// Reset clears any executor-local state retained across runs. Most
	// executors are stateless and use the embedded no-op default.
	Reset()
}

// BaseExecutor implements the bookkeeping shared by every concrete
// executor shape (id, declared types, optional reset), so a concrete
// type only needs to supply Handle. Grounded on the teacher's
// struct-embedding idiom for BaseAgent, stripped of the parent/child
// fields the spec's flat executor graph has no place for.
type BaseExecutor struct {
	id          ExecutorID
	inputTypes  []message.TypeID
	outputTypes []message.TypeID
	handler     Handler
	resetFunc   func()
}

var _ Executor = (*BaseExecutor)(nil)

// NewExecutor builds an Executor from a plain handler closure. inputs
// declares the payload types this executor accepts; outputs declares
// what it may emit. Either may be empty for executors that are pure
// sinks or pure sources.
func NewExecutor(id ExecutorID, inputs, outputs []message.TypeID, handler Handler) *BaseExecutor {
	return &BaseExecutor{
		id:          id,
		inputTypes:  inputs,
		outputTypes: outputs,
		handler:     handler,
	}
}

// WithReset attaches a reset callback, invoked by the scheduler/compose
// layer's Reset() passthrough (e.g. RoundRobinGroupChatManager.reset()).
func (e *BaseExecutor) WithReset(fn func()) *BaseExecutor {
	e.resetFunc = fn
	return e
}

func (e *BaseExecutor) ID() ExecutorID { return e.id }

func (e *BaseExecutor) InputTypes() []message.TypeID { return e.inputTypes }

func (e *BaseExecutor) OutputTypes() []message.TypeID { return e.outputTypes }

func (e *BaseExecutor) Handle(ctx context.Context, wc *Context, envelope message.Envelope) error {
	return e.handler(ctx, wc, envelope)
}

func (e *BaseExecutor) Reset() {
	if e.resetFunc != nil {
		e.resetFunc()
	}
}
