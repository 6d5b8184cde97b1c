// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package compose

import (
	"testing"

	"github.com/go-a2a/agentflow/session"
)

func TestSequentialChainsRepliesInOrder(t *testing.T) {
	drafter := newTestParticipant(t, "drafter", session.NewTextMessage(session.RoleAssistant, "draft"))
	editor := newTestParticipant(t, "editor", session.NewTextMessage(session.RoleAssistant, "edited"))

	g, err := Sequential("draft-then-edit", drafter, editor)
	if err != nil {
		t.Fatalf("Sequential: %v", err)
	}

	outputs := drainOutputs(t, g, Turn{Messages: []session.ChatMessage{
		session.NewTextMessage(session.RoleUser, "write something"),
	}})
	if len(outputs) != 1 {
		t.Fatalf("outputs = %v, want exactly one", outputs)
	}

	final, ok := outputs[0].(Turn)
	if !ok {
		t.Fatalf("output = %T, want Turn", outputs[0])
	}
	if len(final.Messages) != 3 {
		t.Fatalf("final.Messages = %+v, want 3 messages", final.Messages)
	}
	if got := final.Messages[1].Text(); got != "draft" {
		t.Fatalf("Messages[1] = %q, want %q", got, "draft")
	}
	if got := final.Messages[2].Text(); got != "edited" {
		t.Fatalf("Messages[2] = %q, want %q", got, "edited")
	}
}

func TestSequentialRejectsNoParticipants(t *testing.T) {
	if _, err := Sequential("empty"); err == nil {
		t.Fatal("expected an error for zero participants")
	}
}
