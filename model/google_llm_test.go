// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package model_test

import (
	"os"
	"testing"

	"github.com/go-a2a/agentflow/model"
)

func TestGemini_Generate(t *testing.T) {
	if os.Getenv(model.EnvGoogleAPIKey) == "" {
		t.Skip("GOOGLE_API_KEY not set")
	}

	gemini, err := model.NewGemini(t.Context(), os.Getenv(model.EnvGoogleAPIKey), "gemini-2.0-flash")
	if err != nil {
		t.Fatalf("NewGemini: %v", err)
	}

	got, err := gemini.GenerateContent(t.Context(), &model.LLMRequest{})
	if err != nil {
		t.Fatalf("unexpected error on GenerateContent: %v", err)
	}
	t.Logf("got: %#v", got.Content.Parts[0].Text)

	if got.Partial {
		t.Fatalf("unary response should not be partial")
	}
}

func TestGemini_StreamGenerate_UnarySuccess(t *testing.T) {
	if os.Getenv(model.EnvGoogleAPIKey) == "" {
		t.Skip("GOOGLE_API_KEY not set")
	}

	gemini, err := model.NewGemini(t.Context(), os.Getenv(model.EnvGoogleAPIKey), "gemini-2.0-flash")
	if err != nil {
		t.Fatalf("NewGemini: %v", err)
	}

	seq := gemini.StreamGenerateContent(t.Context(), &model.LLMRequest{})
	var got []*model.LLMResponse
	for r, err := range seq {
		if err != nil {
			t.Fatalf("unexpected error on StreamGenerateContent: %v", err)
		}
		for _, part := range r.Content.Parts {
			t.Logf("part: %#v", part.Text)
		}
		got = append(got, r)
	}

	if len(got) == 0 {
		t.Fatalf("got %d but want at least 1 response", len(got))
	}
	if got[0].Content.Parts[0].Text == "" {
		t.Fatal("want non empty text")
	}
}

func TestGemini_StreamGenerate_StreamAggregation(t *testing.T) {
	if os.Getenv(model.EnvGoogleAPIKey) == "" {
		t.Skip("GOOGLE_API_KEY not set")
	}

	gemini, err := model.NewGemini(t.Context(), os.Getenv(model.EnvGoogleAPIKey), "gemini-2.0-flash")
	if err != nil {
		t.Fatalf("NewGemini: %v", err)
	}

	seq := gemini.StreamGenerateContent(t.Context(), &model.LLMRequest{})
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

	if len(texts) == 0 {
		t.Fatal("want at least one aggregated text chunk")
	}
}
