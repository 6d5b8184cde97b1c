// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package compose

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-a2a/agentflow/agflowerr"
	"github.com/go-a2a/agentflow/message"
	"github.com/go-a2a/agentflow/session"
	"github.com/go-a2a/agentflow/workflow"
)

const groupChatHostID = workflow.ExecutorID("__host__")

// GroupChatManager decides who speaks next in a [GroupChat]. Next
// receives the conversation so far, the participants in the order they
// were declared, and the number of speaker turns already taken, and
// returns the next speaker plus whether the chat should continue at
// all. Implementations must be deterministic given the same turn and
// round, matching the purity requirement the graph's own
// [workflow.Assigner]/[workflow.SwitchCase] predicates already carry.
type GroupChatManager interface {
	Next(t Turn, participants []workflow.ExecutorID, round int) (next workflow.ExecutorID, ok bool)
}

// RoundRobinGroupChatManager cycles through participants in declaration
// order and ends the chat after MaxRounds speaker turns. Built fresh
// for this package: the teacher has no native group-chat primitive to
// ground it on, so the selection rule follows the most common
// multi-agent-chat convention (strict rotation) instead.
type RoundRobinGroupChatManager struct {
	MaxRounds int
}

var _ GroupChatManager = RoundRobinGroupChatManager{}

// Next implements [GroupChatManager].
func (m RoundRobinGroupChatManager) Next(_ Turn, participants []workflow.ExecutorID, round int) (workflow.ExecutorID, bool) {
	if len(participants) == 0 || round >= m.MaxRounds {
		return "", false
	}
	return participants[round%len(participants)], true
}

// validate enforces spec.md §8's "maximumIterationCount = 0 is rejected
// at configuration; the minimum is 1". Checked by [GroupChat] via the
// unexported configValidator interface rather than unconditionally in
// Next, so a manager built as a bare struct literal for direct [Next]
// testing isn't forced through a constructor.
func (m RoundRobinGroupChatManager) validate() error {
	if m.MaxRounds < 1 {
		return agflowerr.NewConfigurationError("compose: RoundRobinGroupChatManager.MaxRounds must be >= 1, got %d", m.MaxRounds)
	}
	return nil
}

// configValidator is implemented by GroupChatManagers whose
// construction-time bounds must be enforced before [GroupChat] builds
// the chat's workflow.Graph.
type configValidator interface {
	validate() error
}

// GroupChat builds a [workflow.Graph] with a stateful host executor
// that picks the next speaker via manager after every participant
// reply, until manager reports the chat is done. The host is the sole
// output producer: a GroupChat composition yields once, the full
// conversation at the point the manager ended it.
func GroupChat(name string, manager GroupChatManager, participants ...*Participant) (*workflow.Graph, error) {
	if len(participants) == 0 {
		return nil, fmt.Errorf("compose: GroupChat %q: at least one participant is required", name)
	}
	if v, ok := manager.(configValidator); ok {
		if err := v.validate(); err != nil {
			return nil, err
		}
	}

	b := workflow.NewBuilder(name)
	participantIDs := ids(participants)

	// A fresh hostExecutor per factory call, not one shared instance
	// captured by the closure: unlike a Participant's session (meant to
	// persist across repeated Start calls for conversational
	// continuity), the round counter is scoped to a single run and must
	// not carry over into the next one.
	b.AddExecutor(groupChatHostID, func() workflow.Executor {
		return newHostExecutor(manager, participantIDs)
	})
	b.WithStartingExecutor(groupChatHostID)
	b.MarkOutputProducer(groupChatHostID)

	cases := make([]workflow.SwitchCase, 0, len(participantIDs))
	for _, pid := range participantIDs {
		pid := pid
		cases = append(cases, workflow.SwitchCase{
			Target: pid,
			Predicate: func(payload any) bool {
				t, ok := payload.(Turn)
				return ok && t.Route == string(pid)
			},
		})
	}
	b.AddEdge(workflow.SwitchEdge{From: groupChatHostID, Cases: cases, Default: groupChatHostID})

	for _, p := range participants {
		p := p
		b.AddExecutor(p.ID, func() workflow.Executor {
			return newAgentExecutor(p, []message.TypeID{turnType}, func(wc *workflow.Context, t Turn, reply session.ChatMessage) {
				next := t.append(reply)
				next.Route = ""
				wc.SendMessage(next)
			})
		})
		b.AddEdge(workflow.DirectEdge{From: p.ID, To: groupChatHostID})
	}

	return b.Build()
}

// hostExecutor is a hand-rolled [workflow.Executor], not a
// [workflow.BaseExecutor] wrapping a stateless closure, because it owns
// genuine mutable state across invocations within one run: the speaker
// round counter a [GroupChatManager] needs to decide when to stop.
// Grounded on [workflow.Handler]'s doc comment, which names exactly this
// shape (HostExecutor) as one BaseExecutor's composition was meant to
// replace the teacher's inheritance-based specialization for.
type hostExecutor struct {
	manager      GroupChatManager
	participants []workflow.ExecutorID

	mu    sync.Mutex
	round int
}

var _ workflow.Executor = (*hostExecutor)(nil)

func newHostExecutor(manager GroupChatManager, participants []workflow.ExecutorID) *hostExecutor {
	return &hostExecutor{manager: manager, participants: participants}
}

func (h *hostExecutor) ID() workflow.ExecutorID { return groupChatHostID }

func (h *hostExecutor) InputTypes() []message.TypeID { return []message.TypeID{turnType} }

func (h *hostExecutor) OutputTypes() []message.TypeID { return []message.TypeID{turnType} }

func (h *hostExecutor) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.round = 0
}

func (h *hostExecutor) Handle(_ context.Context, wc *workflow.Context, envelope message.Envelope) error {
	t, ok := envelope.Payload.(Turn)
	if !ok {
		return fmt.Errorf("compose: group chat host: unexpected payload %T", envelope.Payload)
	}

	h.mu.Lock()
	round := h.round
	h.round++
	h.mu.Unlock()

	next, ok := h.manager.Next(t, h.participants, round)
	if !ok {
		out := t
		out.Route = ""
		wc.YieldOutput(out)
		return nil
	}

	t.Route = string(next)
	wc.SendMessage(t)
	return nil
}
