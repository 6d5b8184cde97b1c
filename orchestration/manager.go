// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package orchestration

import (
	"context"

	"github.com/go-a2a/agentflow/session"
)

// HumanInputFunc optionally solicits human input given the
// conversation so far. ok reports whether any input was produced; when
// false, the manager proceeds straight to the termination check.
type HumanInputFunc func(ctx context.Context, history []session.ChatMessage) (input []session.ChatMessage, ok bool)

// FilterResultsFunc reduces the final history to the single message a
// [Result] carries. The zero value (nil) defaults to the last message
// in history.
type FilterResultsFunc func(history []session.ChatMessage) session.ChatMessage

// ManagerActor is the C9 orchestration actor loop of spec.md §4.6: on
// every InputTask/Group it receives, it optionally solicits human
// input, asks its [Strategy] whether to terminate, and otherwise
// publishes a Speak for the next selected agent.
type ManagerActor struct {
	Bus         *Bus
	Topic       string
	Strategy    Strategy
	HumanInput  HumanInputFunc
	FilterFunc  FilterResultsFunc
}

// Run starts the manager loop in a new goroutine and returns
// immediately with a non-blocking handle over its eventual result. The
// loop exits once the strategy terminates the conversation, ctx is
// canceled, or the topic subscription is otherwise torn down.
func (m *ManagerActor) Run(ctx context.Context, input []session.ChatMessage) *AgentResponseHandle {
	handle := newHandle()
	m.Strategy.Reset()

	sub, unsubscribe := m.Bus.Subscribe(m.Topic)

	go func() {
		defer unsubscribe()

		history := input
		m.step(ctx, handle, history)

		for {
			select {
			case <-ctx.Done():
				handle.fail(ctx.Err())
				return
			case msg, ok := <-sub:
				if !ok {
					return
				}
				switch v := msg.(type) {
				case InputTask:
					history = v.Messages
				case Group:
					history = v.Messages
				default:
					continue
				}
				if handle.Status() != StatusRunning {
					return
				}
				if done := m.step(ctx, handle, history); done {
					return
				}
			}
		}
	}()

	m.Bus.Publish(ctx, m.Topic, InputTask{Messages: input})
	return handle
}

// step evaluates history once: solicit human input, check termination,
// or publish the next Speak. Returns true once the conversation has
// reached a terminal state (handle already completed or failed).
func (m *ManagerActor) step(ctx context.Context, handle *AgentResponseHandle, history []session.ChatMessage) bool {
	history = m.Strategy.UpdateHistory(history)

	if m.HumanInput != nil {
		if extra, ok := m.HumanInput(ctx, history); ok {
			history = append(append([]session.ChatMessage{}, history...), extra...)
			m.Bus.Publish(ctx, m.Topic, Group{Messages: history})
		}
	}

	if m.Strategy.ShouldTerminate(history) {
		final := m.filterResults(history)
		m.Bus.Publish(ctx, m.Topic, Result{Final: final})
		handle.complete(ActorResponse{Final: final, History: history})
		return true
	}

	next := m.Strategy.SelectNextAgent(history)
	m.Strategy.Advance()
	m.Bus.Publish(ctx, m.Topic, Speak{Target: next})
	return false
}

func (m *ManagerActor) filterResults(history []session.ChatMessage) session.ChatMessage {
	if m.FilterFunc != nil {
		return m.FilterFunc(history)
	}
	if len(history) == 0 {
		return session.ChatMessage{}
	}
	return history[len(history)-1]
}
