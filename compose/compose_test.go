// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package compose

import (
	"context"
	"testing"

	"github.com/go-a2a/agentflow/session"
	"github.com/go-a2a/agentflow/workflow"
	"github.com/go-a2a/agentflow/workflow/scheduler"
)

// scriptedClient is a [session.ChatClient] test double that returns one
// fixed reply per call, in order, cycling back to the last reply once
// exhausted so a participant invoked more times than scripted (e.g. a
// later GroupChat round) still gets a deterministic answer instead of a
// test crash.
type scriptedClient struct {
	replies []session.ChatMessage
	calls   int
}

var _ session.ChatClient = (*scriptedClient)(nil)

func (c *scriptedClient) GenerateResponse(context.Context, session.Request) (session.Response, error) {
	i := c.calls
	if i >= len(c.replies) {
		i = len(c.replies) - 1
	}
	c.calls++
	return session.Response{Messages: []session.ChatMessage{c.replies[i]}}, nil
}

func newTestParticipant(t *testing.T, id string, replies ...session.ChatMessage) *Participant {
	t.Helper()
	agent, err := session.NewAgent(id, &scriptedClient{replies: replies})
	if err != nil {
		t.Fatalf("NewAgent(%q): %v", id, err)
	}
	return NewParticipant(id, agent)
}

func drainOutputs(t *testing.T, g *workflow.Graph, input any) []any {
	t.Helper()
	s := scheduler.New(g, scheduler.Options{})
	var outputs []any
	for ev, err := range s.RunStreaming(context.Background(), input) {
		if err != nil {
			t.Fatalf("scheduler error: %v", err)
		}
		if ev.Kind == workflow.EventWorkflowOutput {
			outputs = append(outputs, ev.Value)
		}
	}
	return outputs
}
