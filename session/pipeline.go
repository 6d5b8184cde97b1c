// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"fmt"
	"iter"

	"github.com/go-a2a/agentflow/agflowerr"
)

// Agent is the pipeline-facing description of one AI agent: its name
// (used to key durable registration, spec.md §4.8), default options, the
// [ChatClient] it calls, and its attached providers. Grounded on the
// teacher's functional-option construction idiom (types.Option-style),
// applied here to the provider uniqueness invariant rather than struct
// field defaults.
type Agent struct {
	Name           string
	DefaultOptions AgentOptions
	Client         ChatClient

	HistoryProvider  ChatHistoryProvider
	ContextProviders []ContextProvider
}

// NewAgent builds an Agent, validating at construction time that every
// attached provider (history + context) uses a distinct state key
// (spec.md §4.4 uniqueness invariant, §8 "attaching two with equal keys
// fails at construction").
func NewAgent(name string, client ChatClient, opts ...AgentOption) (*Agent, error) {
	a := &Agent{Name: name, Client: client}
	for _, opt := range opts {
		opt(a)
	}

	seen := make(map[string]bool)
	if a.HistoryProvider != nil {
		seen[a.HistoryProvider.StateKey()] = true
	}
	for _, cp := range a.ContextProviders {
		key := cp.StateKey()
		if seen[key] {
			return nil, agflowerr.NewConfigurationError("session: agent %q: duplicate provider state key %q", name, key)
		}
		seen[key] = true
	}

	return a, nil
}

// AgentOption configures an [Agent] at construction time.
type AgentOption func(*Agent)

// WithDefaultOptions sets the agent-default [AgentOptions] merged into
// every run (spec.md §4.4 step 1).
func WithDefaultOptions(o AgentOptions) AgentOption {
	return func(a *Agent) { a.DefaultOptions = o }
}

// WithHistoryProvider attaches a chat-history provider, used when the
// session has no provider of its own and no conversation id; the first
// run installs it on the session.
func WithHistoryProvider(p ChatHistoryProvider) AgentOption {
	return func(a *Agent) { a.HistoryProvider = p }
}

// WithContextProviders attaches context providers, invoked in the given
// order around every run (spec.md §4.4 step 3).
func WithContextProviders(providers ...ContextProvider) AgentOption {
	return func(a *Agent) { a.ContextProviders = append(a.ContextProviders, providers...) }
}

// RunPipeline drives spec.md §4.4's full pipeline for one agent
// invocation: merge options, run the chat-history provider, run each
// context provider, issue the request, notify providers of the outcome,
// and reconcile the session's conversation id.
func RunPipeline(ctx context.Context, agent *Agent, sess *Session, perRun AgentOptions, input []ChatMessage) (Response, error) {
	merged := MergeOptions(agent.DefaultOptions, perRun)

	history, err := resolveHistoryProvider(sess, agent)
	if err != nil {
		return Response{}, err
	}

	messages := input
	if history != nil {
		messages, err = history.PrepareMessages(ctx, agent.Name, sess, input)
		if err != nil {
			return Response{}, fmt.Errorf("session: pipeline: preparing chat history: %w", err)
		}
	}

	aiCtx := AIContext{Instructions: merged.Instructions, Messages: messages, Tools: merged.Tools}
	for _, cp := range agent.ContextProviders {
		aiCtx, err = cp.Invoke(ctx, agent.Name, sess, aiCtx)
		if err != nil {
			return Response{}, fmt.Errorf("session: pipeline: context provider %q: %w", cp.StateKey(), err)
		}
	}

	req := Request{
		Instructions:         aiCtx.Instructions,
		Messages:             aiCtx.Messages,
		Tools:                aiCtx.Tools,
		StopSequences:        merged.StopSequences,
		AdditionalProperties: merged.AdditionalProperties,
	}
	if merged.RawRepresentationFactory != nil {
		req.RawRepresentation = merged.RawRepresentationFactory()
	}

	resp, callErr := agent.Client.GenerateResponse(ctx, req)

	if notifyErr := notifyProviders(ctx, agent, sess, history, req.Messages, resp.Messages, callErr); notifyErr != nil {
		if callErr != nil {
			return Response{}, fmt.Errorf("session: pipeline: %w (notifying providers of original error also failed: %v)", agflowerr.NewExternalServiceFault(agent.Name, callErr), notifyErr)
		}
		return Response{}, fmt.Errorf("session: pipeline: notifying providers: %w", notifyErr)
	}
	if callErr != nil {
		return Response{}, agflowerr.NewExternalServiceFault(agent.Name, callErr)
	}

	if err := reconcileConversationID(ctx, sess, history, resp.ConversationID, req.Messages, resp.Messages); err != nil {
		return Response{}, err
	}

	return resp, nil
}

// StreamPipeline is [RunPipeline]'s streaming counterpart: it runs the
// same pre-request steps, issues the request via a
// [StreamingChatClient], and forwards each update while still
// performing the post-request provider notification and conversation-id
// reconciliation once the stream completes.
func StreamPipeline(ctx context.Context, agent *Agent, sess *Session, perRun AgentOptions, input []ChatMessage, client StreamingChatClient) iter.Seq2[ResponseUpdate, error] {
	return func(yield func(ResponseUpdate, error) bool) {
		merged := MergeOptions(agent.DefaultOptions, perRun)

		history, err := resolveHistoryProvider(sess, agent)
		if err != nil {
			yield(ResponseUpdate{}, err)
			return
		}

		messages := input
		if history != nil {
			messages, err = history.PrepareMessages(ctx, agent.Name, sess, input)
			if err != nil {
				yield(ResponseUpdate{}, fmt.Errorf("session: pipeline: preparing chat history: %w", err))
				return
			}
		}

		aiCtx := AIContext{Instructions: merged.Instructions, Messages: messages, Tools: merged.Tools}
		for _, cp := range agent.ContextProviders {
			aiCtx, err = cp.Invoke(ctx, agent.Name, sess, aiCtx)
			if err != nil {
				yield(ResponseUpdate{}, fmt.Errorf("session: pipeline: context provider %q: %w", cp.StateKey(), err))
				return
			}
		}

		req := Request{
			Instructions:         aiCtx.Instructions,
			Messages:             aiCtx.Messages,
			Tools:                aiCtx.Tools,
			StopSequences:        merged.StopSequences,
			AdditionalProperties: merged.AdditionalProperties,
		}
		if merged.RawRepresentationFactory != nil {
			req.RawRepresentation = merged.RawRepresentationFactory()
		}

		var (
			collected []ChatMessage
			convID    string
			streamErr error
		)
		for update, uerr := range client.StreamResponse(ctx, req) {
			if uerr != nil {
				streamErr = uerr
				if !yield(ResponseUpdate{}, uerr) {
					return
				}
				break
			}
			collected = append(collected, update.Delta)
			if update.ConversationID != "" {
				convID = update.ConversationID
			}
			if !yield(update, nil) {
				return
			}
		}

		if notifyErr := notifyProviders(ctx, agent, sess, history, req.Messages, collected, streamErr); notifyErr != nil {
			yield(ResponseUpdate{}, fmt.Errorf("session: pipeline: notifying providers: %w", notifyErr))
			return
		}
		if streamErr != nil {
			return
		}
		if err := reconcileConversationID(ctx, sess, history, convID, req.Messages, collected); err != nil {
			yield(ResponseUpdate{}, err)
		}
	}
}

// resolveHistoryProvider returns the provider to invoke for this run:
// the session's own installed provider takes precedence over the
// agent's configured default, matching step 2's "invoke chat-history
// provider (if any)" — service-backed sessions have none.
func resolveHistoryProvider(sess *Session, agent *Agent) (ChatHistoryProvider, error) {
	if p, ok := sess.HistoryProvider(); ok {
		return p, nil
	}
	if _, ok := sess.ConversationID(); ok {
		return nil, nil
	}
	if agent.HistoryProvider == nil {
		return nil, nil
	}
	// The agent's configured default becomes this session's provider for
	// good, not just for this call, so Serialize later exports it.
	if err := sess.UseChatHistoryProvider(agent.HistoryProvider); err != nil {
		return nil, err
	}
	return agent.HistoryProvider, nil
}

func notifyProviders(ctx context.Context, agent *Agent, sess *Session, history ChatHistoryProvider, request, response []ChatMessage, callErr error) error {
	if history != nil {
		if err := history.Record(ctx, sess, request, response, callErr); err != nil {
			return fmt.Errorf("chat-history provider: %w", err)
		}
	}
	for _, cp := range agent.ContextProviders {
		if err := cp.Record(ctx, sess, request, response, callErr); err != nil {
			return fmt.Errorf("context provider %q: %w", cp.StateKey(), err)
		}
	}
	return nil
}

// reconcileConversationID implements spec.md §4.4 step 7: if the
// service returned a conversation id, commit the session to the
// service-backed discipline (failing if a chat-history provider is
// already active); otherwise, if the session has no provider at all,
// install the default in-memory one, seeded with this run's request and
// response, so later runs retain context.
func reconcileConversationID(ctx context.Context, sess *Session, history ChatHistoryProvider, conversationID string, request, response []ChatMessage) error {
	if conversationID != "" {
		if history != nil {
			return agflowerr.NewConfigurationError("session: service returned conversation id %q but a chat-history provider is active", conversationID)
		}
		return sess.SetConversationID(conversationID)
	}

	if history == nil {
		if _, ok := sess.ConversationID(); ok {
			return nil
		}
		p := NewInMemoryChatHistoryProvider()
		if err := sess.UseChatHistoryProvider(p); err != nil {
			return err
		}
		return p.Record(ctx, sess, request, response, nil)
	}
	return nil
}
