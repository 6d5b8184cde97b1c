// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package orchestration

import "github.com/go-a2a/agentflow/session"

// InputTask is the initial input delivered to a [ManagerActor] to start
// a conversation.
type InputTask struct {
	Messages []session.ChatMessage
}

// Group broadcasts the conversation's current, authoritative message
// slice to every subscriber on the topic — published by the manager
// after folding in human input, and by a participant after it speaks.
type Group struct {
	Messages []session.ChatMessage
}

// Speak signals a specific participant (by id) to produce its next
// turn. Every subscriber on the topic receives it; a participant answers
// only a Speak whose Target names it.
type Speak struct {
	Target string
}

// Result signals that the conversation is complete, carrying the final
// message the [ManagerActor]'s filter callback selected.
type Result struct {
	Final session.ChatMessage
}
