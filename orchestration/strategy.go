// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package orchestration

import "github.com/go-a2a/agentflow/session"

// Strategy is the decision logic a [ManagerActor] delegates to: who
// speaks next, whether the conversation is over, and how the committed
// history is massaged before either question is asked. Mirrors
// compose.GroupChatManager's role for the graph-based group chat, but
// shaped around the actor runtime's full-history signature
// (SelectNextAgent/UpdateHistory/ShouldTerminate/Reset) rather than a
// per-turn Turn/round pair, since the manager here only ever sees the
// broadcast Group history, never a superstep-scoped payload.
type Strategy interface {
	// SelectNextAgent returns the participant id that should speak next.
	// Must return one of the ids the manager was constructed with.
	SelectNextAgent(history []session.ChatMessage) string

	// UpdateHistory optionally rewrites history before it's evaluated
	// (e.g. summarizing it down). The default is the identity
	// transform.
	UpdateHistory(history []session.ChatMessage) []session.ChatMessage

	// ShouldTerminate reports whether the conversation is done.
	ShouldTerminate(history []session.ChatMessage) bool

	// Reset clears any internal counters, called when a ManagerActor
	// starts a fresh conversation.
	Reset()

	// Advance records that one speaker turn was taken, called by
	// ManagerActor right after it publishes a Speak for the agent
	// SelectNextAgent returned.
	Advance()
}

// RoundRobinStrategy cycles through Participants in declaration order
// and terminates once MaximumIterations turns have been taken (or
// immediately if an optional Predicate also says to stop — the two
// conditions are combined with OR, matching spec's "optional user
// predicate runs before the default termination check (disjunction)").
// Grounded on the same round-robin convention compose.
// RoundRobinGroupChatManager follows, adapted to the actor runtime's
// full-history Strategy shape.
type RoundRobinStrategy struct {
	Participants      []string
	MaximumIterations int
	Predicate         func(history []session.ChatMessage) bool

	iteration int
}

var _ Strategy = (*RoundRobinStrategy)(nil)

// SelectNextAgent implements [Strategy].
func (s *RoundRobinStrategy) SelectNextAgent(_ []session.ChatMessage) string {
	if len(s.Participants) == 0 {
		return ""
	}
	return s.Participants[s.iteration%len(s.Participants)]
}

// UpdateHistory implements [Strategy] as the identity transform.
func (s *RoundRobinStrategy) UpdateHistory(history []session.ChatMessage) []session.ChatMessage {
	return history
}

// ShouldTerminate implements [Strategy].
func (s *RoundRobinStrategy) ShouldTerminate(history []session.ChatMessage) bool {
	if s.Predicate != nil && s.Predicate(history) {
		return true
	}
	max := s.MaximumIterations
	if max < 1 {
		max = 1
	}
	return s.iteration >= max
}

// Reset implements [Strategy].
func (s *RoundRobinStrategy) Reset() {
	s.iteration = 0
}

// Advance implements [Strategy].
func (s *RoundRobinStrategy) Advance() {
	s.iteration++
}
