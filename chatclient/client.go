// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package chatclient

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/go-a2a/agentflow/model"
	"github.com/go-a2a/agentflow/session"
)

// Client adapts any [model.Model] to [session.ChatClient]. It carries no
// conversation state of its own: every call is a stateless translation
// of one [session.Request] into a [model.LLMRequest] and back.
type Client struct {
	m model.Model
}

var _ session.ChatClient = (*Client)(nil)

// New wraps m as a [session.ChatClient].
func New(m model.Model) *Client {
	return &Client{m: m}
}

// NewAnthropic builds a [Client] backed by [model.NewClaude].
func NewAnthropic(ctx context.Context, modelName string, mode model.ClaudeMode, opts ...model.Option) (*Client, error) {
	claude, err := model.NewClaude(ctx, modelName, mode, opts...)
	if err != nil {
		return nil, fmt.Errorf("chatclient: new Claude client: %w", err)
	}
	return New(claude), nil
}

// NewGemini builds a [Client] backed by [model.NewGemini].
func NewGemini(ctx context.Context, apiKey, modelName string, opts ...model.Option) (*Client, error) {
	gemini, err := model.NewGemini(ctx, apiKey, modelName, opts...)
	if err != nil {
		return nil, fmt.Errorf("chatclient: new Gemini client: %w", err)
	}
	return New(gemini), nil
}

// GenerateResponse implements [session.ChatClient].
func (c *Client) GenerateResponse(ctx context.Context, req session.Request) (session.Response, error) {
	llmReq, err := toLLMRequest(req, c.m.Name())
	if err != nil {
		return session.Response{}, err
	}

	llmResp, err := c.m.GenerateContent(ctx, llmReq)
	if err != nil {
		return session.Response{}, fmt.Errorf("chatclient: %s: %w", c.m.Name(), err)
	}

	msg, err := fromGenAIResponse(llmResp)
	if err != nil {
		return session.Response{}, err
	}
	return session.Response{Messages: []session.ChatMessage{msg}}, nil
}

// toLLMRequest assembles a [model.LLMRequest] from a [session.Request],
// grounded on LLMRequest's own builder methods rather than constructing
// the struct directly.
func toLLMRequest(req session.Request, modelName string) (*model.LLMRequest, error) {
	turns, systemText := splitSystemText(req.Messages)
	contents, err := toGenAIContents(turns)
	if err != nil {
		return nil, err
	}

	llmReq := model.NewLLMRequest(contents).WithModelName(modelName)

	if req.Instructions != "" {
		systemText = append([]string{req.Instructions}, systemText...)
	}
	if len(systemText) > 0 {
		llmReq.AppendInstructions(systemText...)
	}

	if tools := toGenAITools(req.Tools); len(tools) > 0 {
		llmReq.AppendTools(tools...)
	}

	if len(req.StopSequences) > 0 {
		if llmReq.Config == nil {
			llmReq.Config = &genai.GenerationConfig{}
		}
		llmReq.Config.StopSequences = req.StopSequences
	}

	return llmReq, nil
}
