// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package chatclient

import (
	"context"
	"fmt"
	"iter"

	"github.com/go-a2a/agentflow/model"
	"github.com/go-a2a/agentflow/session"
)

// StreamingClient adapts a [model.GenerativeModel] to
// [session.StreamingChatClient].
type StreamingClient struct {
	*Client

	gm model.GenerativeModel
}

var _ session.StreamingChatClient = (*StreamingClient)(nil)

// NewStreaming wraps gm as a [session.StreamingChatClient].
func NewStreaming(gm model.GenerativeModel) *StreamingClient {
	return &StreamingClient{Client: New(gm), gm: gm}
}

// NewAnthropicStreaming builds a [StreamingClient] backed by [model.NewClaude].
func NewAnthropicStreaming(ctx context.Context, modelName string, mode model.ClaudeMode, opts ...model.Option) (*StreamingClient, error) {
	claude, err := model.NewClaude(ctx, modelName, mode, opts...)
	if err != nil {
		return nil, fmt.Errorf("chatclient: new Claude streaming client: %w", err)
	}
	return NewStreaming(claude), nil
}

// NewGeminiStreaming builds a [StreamingClient] backed by [model.NewGemini].
func NewGeminiStreaming(ctx context.Context, apiKey, modelName string, opts ...model.Option) (*StreamingClient, error) {
	gemini, err := model.NewGemini(ctx, apiKey, modelName, opts...)
	if err != nil {
		return nil, fmt.Errorf("chatclient: new Gemini streaming client: %w", err)
	}
	return NewStreaming(gemini), nil
}

// StreamResponse implements [session.StreamingChatClient].
func (c *StreamingClient) StreamResponse(ctx context.Context, req session.Request) iter.Seq2[session.ResponseUpdate, error] {
	return func(yield func(session.ResponseUpdate, error) bool) {
		llmReq, err := toLLMRequest(req, c.gm.Name())
		if err != nil {
			yield(session.ResponseUpdate{}, err)
			return
		}

		for llmResp, err := range c.gm.StreamGenerateContent(ctx, llmReq) {
			if err != nil {
				if !yield(session.ResponseUpdate{}, fmt.Errorf("chatclient: %s: %w", c.gm.Name(), err)) {
					return
				}
				continue
			}

			delta, err := fromGenAIResponse(llmResp)
			if err != nil {
				if !yield(session.ResponseUpdate{}, err) {
					return
				}
				continue
			}

			if !yield(session.ResponseUpdate{Delta: delta, Done: llmResp.TurnComplete}, nil) {
				return
			}
		}
	}
}
