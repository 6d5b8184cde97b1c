// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"iter"
)

// Request is the fully merged/assembled call the pipeline issues to a
// [ChatClient] (spec.md §4.4 step 4).
type Request struct {
	Instructions         string
	Messages             []ChatMessage
	Tools                []Tool
	StopSequences        []string
	AdditionalProperties map[string]any
	RawRepresentation    any
}

// Response is what a [ChatClient] returns for one [Request]. ConversationID
// is set only when the backing service manages conversation state itself
// (spec.md §4.4 step 7's reconciliation).
type Response struct {
	Messages       []ChatMessage
	ConversationID string
}

// ResponseUpdate is one incremental chunk from a [StreamingChatClient].
type ResponseUpdate struct {
	Delta          ChatMessage
	Done           bool
	ConversationID string
}

// ChatClient is the opaque AI-provider capability the pipeline drives.
// Spec.md §1 explicitly scopes concrete providers out of the core;
// [ChatClient] is the seam the chatclient package's Client (built by
// chatclient.NewAnthropic or chatclient.NewGemini) implements.
type ChatClient interface {
	GenerateResponse(ctx context.Context, req Request) (Response, error)
}

// StreamingChatClient is a [ChatClient] that can also stream its
// response incrementally.
type StreamingChatClient interface {
	ChatClient

	StreamResponse(ctx context.Context, req Request) iter.Seq2[ResponseUpdate, error]
}
