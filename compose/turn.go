// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package compose

import "github.com/go-a2a/agentflow/session"

// Turn is the conversation accumulated so far, the payload every
// composition shape in this package routes between executors. Route is
// an optional steering hint a sender sets for a [workflow.SwitchEdge]
// predicate to read ([Handoff]'s target agent, [GroupChat]'s next
// speaker); executors that never branch leave it empty.
type Turn struct {
	Messages []session.ChatMessage
	Route    string
}

// append returns a new Turn holding t's messages followed by reply,
// never mutating t's backing array (t may still be referenced by the
// handler invocation that produced it). The returned Turn's Route is
// empty.
func (t Turn) append(reply session.ChatMessage) Turn {
	messages := make([]session.ChatMessage, 0, len(t.Messages)+1)
	messages = append(messages, t.Messages...)
	messages = append(messages, reply)
	return Turn{Messages: messages}
}

// Contribution is one participant's reply in a [Concurrent] composition,
// the payload a [Concurrent] fan-in releases as a batch. Base is the
// Turn the participant replied to (identical across every contribution
// in one fan-in batch, since every participant sees the same starting
// Turn), carried along so the fan-in executor can reconstruct the
// joined Turn without needing the starting Turn routed to it directly.
type Contribution struct {
	ParticipantID string
	Base          Turn
	Message       session.ChatMessage
}
