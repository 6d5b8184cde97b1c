// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"os"
	"testing"

	"google.golang.org/genai"
)

// EnvAnthropicAPIKey is the environment variable the Anthropic SDK client
// reads from when ClaudeModeAnthropic is used; these tests only run when
// it's set, since they call the live API.
const EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"

func TestClaude_Generate(t *testing.T) {
	if os.Getenv(EnvAnthropicAPIKey) == "" {
		t.Skip("ANTHROPIC_API_KEY not set")
	}

	claude, err := NewClaude(t.Context(), "", ClaudeModeAnthropic)
	if err != nil {
		t.Fatalf("NewClaude: %v", err)
	}

	req := &LLMRequest{
		Contents: []*genai.Content{
			{
				Role: RoleUser,
				Parts: []*genai.Part{
					genai.NewPartFromText(`Handle the requests as specified in the System Instruction.`),
				},
			},
		},
	}
	got, err := claude.GenerateContent(t.Context(), req)
	if err != nil {
		t.Fatalf("unexpected error on GenerateContent: %v", err)
	}
	t.Logf("got: %#v", got.Content.Parts[0].Text)

	if got.Partial {
		t.Fatalf("unary response should not be partial")
	}
}

func TestClaude_StreamGenerate_UnarySuccess(t *testing.T) {
	if os.Getenv(EnvAnthropicAPIKey) == "" {
		t.Skip("ANTHROPIC_API_KEY not set")
	}

	claude, err := NewClaude(t.Context(), "", ClaudeModeAnthropic)
	if err != nil {
		t.Fatalf("NewClaude: %v", err)
	}

	req := &LLMRequest{
		Contents: []*genai.Content{
			{
				Role: RoleUser,
				Parts: []*genai.Part{
					genai.NewPartFromText(`Handle the requests as specified in the System Instruction.`),
				},
			},
		},
	}
	seq := claude.StreamGenerateContent(t.Context(), req)
	var got []*LLMResponse
	for r, err := range seq {
		if err != nil {
			t.Fatalf("unexpected error on StreamGenerateContent: %v", err)
		}
		t.Logf("r.Content: %#v", r.Content.Parts[0])
		got = append(got, r)
	}

	if len(got) == 0 {
		t.Fatalf("got %d but want at least 1 response", len(got))
	}
	if got[0].Content.Parts[0].Text == "" {
		t.Fatal("want non empty text")
	}
}

func TestClaude_StreamGenerate_StreamAggregation(t *testing.T) {
	if os.Getenv(EnvAnthropicAPIKey) == "" {
		t.Skip("ANTHROPIC_API_KEY not set")
	}

	claude, err := NewClaude(t.Context(), "", ClaudeModeAnthropic)
	if err != nil {
		t.Fatalf("NewClaude: %v", err)
	}

	req := &LLMRequest{
		Contents: []*genai.Content{
			{
				Role: RoleUser,
				Parts: []*genai.Part{
					genai.NewPartFromText(`Handle the requests as specified in the System Instruction.`),
				},
			},
		},
	}
	seq := claude.StreamGenerateContent(t.Context(), req)
	var texts []string
	for r, err := range seq {
		if err != nil {
			t.Fatalf("unexpected error on StreamGenerateContent: %v", err)
		}
		if r != nil && r.Content != nil && len(r.Content.Parts) > 0 && r.Content.Parts[0].Text != "" {
			if !r.Partial { // aggregated flush
				texts = append(texts, r.Content.Parts[0].Text)
			}
		}
	}
	t.Logf("texts: %#v", texts)

	if len(texts) == 0 {
		t.Fatal("want at least one aggregated text chunk")
	}
}
