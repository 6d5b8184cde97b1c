// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package compose

import (
	"github.com/go-a2a/agentflow/session"
	"github.com/go-a2a/agentflow/workflow"
)

// Participant is one agent taking part in a composed workflow: a stable
// executor id (unique within the graph being built) plus the
// [session.Agent] and [session.Session] [session.RunPipeline] drives on
// its behalf. The Session is owned by the Participant (not the graph),
// so a composition the caller re-runs across several [scheduler.Scheduler]
// invocations keeps each participant's conversation history intact
// between runs, the same continuity [session.RunPipeline] gives a
// standalone agent.
type Participant struct {
	ID      workflow.ExecutorID
	Agent   *session.Agent
	Session *session.Session
}

// NewParticipant wraps agent as a Participant identified by id, seeded
// with a fresh [session.Session].
func NewParticipant(id string, agent *session.Agent) *Participant {
	return &Participant{
		ID:      workflow.ExecutorID(id),
		Agent:   agent,
		Session: session.New(),
	}
}

func ids(participants []*Participant) []workflow.ExecutorID {
	out := make([]workflow.ExecutorID, len(participants))
	for i, p := range participants {
		out[i] = p.ID
	}
	return out
}
