// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSessionDisciplineExclusive(t *testing.T) {
	s := New()
	if err := s.SetConversationID("conv-1"); err != nil {
		t.Fatalf("SetConversationID: %v", err)
	}
	if err := s.UseChatHistoryProvider(NewInMemoryChatHistoryProvider()); err == nil {
		t.Fatal("expected ConfigurationError switching to locally managed after service-backed")
	}

	s2 := New()
	if err := s2.UseChatHistoryProvider(NewInMemoryChatHistoryProvider()); err != nil {
		t.Fatalf("UseChatHistoryProvider: %v", err)
	}
	if err := s2.SetConversationID("conv-2"); err == nil {
		t.Fatal("expected ConfigurationError switching to service-backed after locally managed")
	}
}

func TestSessionServiceBackedRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.SetConversationID("conv-123"); err != nil {
		t.Fatalf("SetConversationID: %v", err)
	}

	data, err := s.Serialize(ctx)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	s2 := New()
	if err := s2.Deserialize(ctx, data); err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	id, ok := s2.ConversationID()
	if !ok || id != "conv-123" {
		t.Fatalf("ConversationID() = %q, %v; want conv-123, true", id, ok)
	}
	if _, ok := s2.HistoryProvider(); ok {
		t.Fatal("service-backed session must not have a chat-history provider after round trip")
	}
}

func TestSessionLocallyManagedRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New()
	hist := NewInMemoryChatHistoryProvider()
	if err := s.UseChatHistoryProvider(hist); err != nil {
		t.Fatalf("UseChatHistoryProvider: %v", err)
	}
	want := []ChatMessage{
		NewTextMessage(RoleUser, "hello"),
		{Role: RoleAssistant, AuthorName: "bot", Contents: []ContentPart{TextPart{Text: "hi there"}}},
	}
	if err := hist.ImportMessages(ctx, want); err != nil {
		t.Fatalf("ImportMessages: %v", err)
	}
	if err := s.StateSet("custom-key", map[string]any{"turns": 2.0}); err != nil {
		t.Fatalf("StateSet: %v", err)
	}

	data, err := s.Serialize(ctx)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	s2 := New()
	if err := s2.Deserialize(ctx, data); err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	h2, ok := s2.HistoryProvider()
	if !ok {
		t.Fatal("expected a chat-history provider after deserialize")
	}
	got, err := h2.ExportMessages(ctx)
	if err != nil {
		t.Fatalf("ExportMessages: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("message round-trip mismatch (-want +got):\n%s", diff)
	}

	var turns map[string]any
	ok, err = s2.StateGet("custom-key", &turns)
	if err != nil || !ok {
		t.Fatalf("StateGet(custom-key) = %v, %v, %v", ok, turns, err)
	}
	if turns["turns"] != 2.0 {
		t.Fatalf("turns = %v, want 2.0", turns["turns"])
	}
}

func TestSessionDeserializeMixedShapeFails(t *testing.T) {
	s := New()
	err := s.Deserialize(context.Background(), []byte(`{"conversationId":"x","storeState":{"messages":[]}}`))
	if err == nil {
		t.Fatal("expected SerializationError for an object carrying both keys")
	}
}

func TestSessionDeserializeEmptyShapeFails(t *testing.T) {
	s := New()
	if err := s.Deserialize(context.Background(), []byte(`{}`)); err == nil {
		t.Fatal("expected SerializationError for an object carrying neither key")
	}
}

func TestMergeOptions(t *testing.T) {
	agentDefault := AgentOptions{
		Instructions:  "be terse",
		StopSequences: []string{"STOP"},
		Tools:         []Tool{{Name: "search"}},
	}
	perRun := AgentOptions{
		Instructions:  "answer in french",
		StopSequences: []string{"END"},
		Tools:         []Tool{{Name: "calc"}},
	}

	merged := MergeOptions(agentDefault, perRun)
	if merged.Instructions != "be terse\nanswer in french" {
		t.Fatalf("Instructions = %q", merged.Instructions)
	}
	if diff := cmp.Diff([]string{"STOP", "END"}, merged.StopSequences); diff != "" {
		t.Fatalf("StopSequences mismatch (-want +got):\n%s", diff)
	}
	if len(merged.Tools) != 2 || merged.Tools[0].Name != "search" || merged.Tools[1].Name != "calc" {
		t.Fatalf("Tools = %+v", merged.Tools)
	}
}

type constClient struct {
	resp Response
	err  error
}

func (c *constClient) GenerateResponse(context.Context, Request) (Response, error) {
	return c.resp, c.err
}

func TestRunPipelineInstallsDefaultHistoryProvider(t *testing.T) {
	ctx := context.Background()
	reply := NewTextMessage(RoleAssistant, "pong")
	client := &constClient{resp: Response{Messages: []ChatMessage{reply}}}

	agent, err := NewAgent("echo-agent", client)
	if err != nil {
		t.Fatalf("NewAgent: %v", err)
	}

	s := New()
	resp, err := RunPipeline(ctx, agent, s, AgentOptions{}, []ChatMessage{NewTextMessage(RoleUser, "ping")})
	if err != nil {
		t.Fatalf("RunPipeline: %v", err)
	}
	if len(resp.Messages) != 1 || resp.Messages[0].Text() != "pong" {
		t.Fatalf("resp.Messages = %+v", resp.Messages)
	}

	hist, ok := s.HistoryProvider()
	if !ok {
		t.Fatal("expected default chat-history provider to be installed")
	}
	msgs, err := hist.ExportMessages(ctx)
	if err != nil {
		t.Fatalf("ExportMessages: %v", err)
	}
	if len(msgs) != 2 || msgs[0].Text() != "ping" || msgs[1].Text() != "pong" {
		t.Fatalf("history = %+v", msgs)
	}
}

func TestRunPipelineDuplicateProviderKeyRejectedAtConstruction(t *testing.T) {
	hist := NewInMemoryChatHistoryProvider() // state key: DefaultHistoryStateKey
	dup := fakeContextProvider{key: DefaultHistoryStateKey}

	_, err := NewAgent("dup-agent", &constClient{}, WithHistoryProvider(hist), WithContextProviders(dup))
	if err == nil {
		t.Fatal("expected ConfigurationError for duplicate provider state keys")
	}
}

type fakeContextProvider struct{ key string }

func (f fakeContextProvider) StateKey() string { return f.key }
func (f fakeContextProvider) Invoke(_ context.Context, _ string, _ *Session, in AIContext) (AIContext, error) {
	return in, nil
}
func (f fakeContextProvider) Record(context.Context, *Session, []ChatMessage, []ChatMessage, error) error {
	return nil
}
