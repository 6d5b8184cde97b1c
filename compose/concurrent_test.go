// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package compose

import (
	"testing"

	"github.com/go-a2a/agentflow/session"
)

func TestConcurrentJoinsRepliesInDeclarationOrder(t *testing.T) {
	optimist := newTestParticipant(t, "optimist", session.NewTextMessage(session.RoleAssistant, "it'll work out"))
	pessimist := newTestParticipant(t, "pessimist", session.NewTextMessage(session.RoleAssistant, "it won't"))

	g, err := Concurrent("takes", []*Participant{optimist, pessimist})
	if err != nil {
		t.Fatalf("Concurrent: %v", err)
	}

	outputs := drainOutputs(t, g, Turn{Messages: []session.ChatMessage{
		session.NewTextMessage(session.RoleUser, "will this work?"),
	}})
	if len(outputs) != 1 {
		t.Fatalf("outputs = %v, want exactly one", outputs)
	}

	joined, ok := outputs[0].(Turn)
	if !ok {
		t.Fatalf("output = %T, want Turn", outputs[0])
	}
	// 1 original message + 2 replies, ordered optimist then pessimist
	// regardless of which executor's superstep committed first.
	if len(joined.Messages) != 3 {
		t.Fatalf("joined.Messages = %+v, want 3 messages", joined.Messages)
	}
	if got := joined.Messages[1].Text(); got != "it'll work out" {
		t.Fatalf("Messages[1] = %q, want the optimist's reply", got)
	}
	if got := joined.Messages[2].Text(); got != "it won't" {
		t.Fatalf("Messages[2] = %q, want the pessimist's reply", got)
	}
}

func TestConcurrentRejectsNoParticipants(t *testing.T) {
	if _, err := Concurrent("empty", nil); err == nil {
		t.Fatal("expected an error for zero participants")
	}
}

func TestConcurrentWithAggregatorUsesCustomJoin(t *testing.T) {
	optimist := newTestParticipant(t, "optimist", session.NewTextMessage(session.RoleAssistant, "it'll work out"))
	pessimist := newTestParticipant(t, "pessimist", session.NewTextMessage(session.RoleAssistant, "it won't"))

	var gotParticipantIDs []string
	g, err := Concurrent("takes", []*Participant{optimist, pessimist}, WithAggregator(func(base Turn, contributions []Contribution) Turn {
		for _, c := range contributions {
			gotParticipantIDs = append(gotParticipantIDs, c.ParticipantID)
		}
		return Turn{Messages: []session.ChatMessage{session.NewTextMessage(session.RoleAssistant, "summary")}}
	}))
	if err != nil {
		t.Fatalf("Concurrent: %v", err)
	}

	outputs := drainOutputs(t, g, Turn{Messages: []session.ChatMessage{
		session.NewTextMessage(session.RoleUser, "will this work?"),
	}})
	if len(outputs) != 1 {
		t.Fatalf("outputs = %v, want exactly one", outputs)
	}

	joined, ok := outputs[0].(Turn)
	if !ok {
		t.Fatalf("output = %T, want Turn", outputs[0])
	}
	if len(joined.Messages) != 1 || joined.Messages[0].Text() != "summary" {
		t.Fatalf("joined = %+v, want the custom aggregator's single summary message", joined)
	}
	if want := []string{"optimist", "pessimist"}; len(gotParticipantIDs) != 2 || gotParticipantIDs[0] != want[0] || gotParticipantIDs[1] != want[1] {
		t.Fatalf("gotParticipantIDs = %v, want %v", gotParticipantIDs, want)
	}
}
