// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package durable

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-a2a/agentflow/agflowerr"
	"github.com/go-a2a/agentflow/internal/telemetry"
	"github.com/go-a2a/agentflow/pkg/logging"
	"github.com/go-a2a/agentflow/session"
)

// AgentResolver materializes the registered agent for a durable
// entity's AgentName (spec.md §4.8 step 2). [host.AgentCatalog]
// satisfies this interface directly.
type AgentResolver interface {
	Resolve(name string) (*session.Agent, bool)
}

// AgentResolverFunc adapts a plain function to an [AgentResolver].
type AgentResolverFunc func(name string) (*session.Agent, bool)

// Resolve implements [AgentResolver].
func (f AgentResolverFunc) Resolve(name string) (*session.Agent, bool) { return f(name) }

// RunRequest is one durable Run invocation (spec.md §6).
type RunRequest struct {
	CorrelationID    string
	Messages         []session.ChatMessage
	ResponseFormat   string
	EnableToolCalls  bool
	EnabledToolNames []string
	OrchestrationID  string
}

// RunResponse is what [Entity.Run] returns.
type RunResponse struct {
	Messages []session.ChatMessage
}

// StreamSink receives the agent's response after the run has completed,
// one [session.ResponseUpdate] per response message. The agent run
// itself is not streamed: no update reaches the sink before the full
// response exists. Entities without a sink simply return the full
// response.
type StreamSink func(ctx context.Context, update session.ResponseUpdate)

// Entity is one durable session, addressed by (AgentName, SessionKey).
// Every operation is serialized by mu, matching spec.md §5's "the
// durable entity serializes all operations per-entity-id" guarantee;
// callers should obtain entities through a [Manager] rather than
// constructing them directly so that guarantee actually holds across
// callers.
type Entity struct {
	AgentName  string
	SessionKey string

	mu        sync.Mutex
	store     Store
	clock     Clock
	cfg       Config
	resolver  AgentResolver
	scheduler SelfSignalScheduler
	sink      StreamSink
	telemetry *telemetry.Instruments
	log       *slog.Logger
}

// newEntity is unexported: build entities via [Manager.Entity].
func newEntity(agentName, sessionKey string, store Store, clock Clock, cfg Config, resolver AgentResolver, scheduler SelfSignalScheduler, sink StreamSink, inst *telemetry.Instruments) *Entity {
	return &Entity{
		AgentName:  agentName,
		SessionKey: sessionKey,
		store:      store,
		clock:      clock,
		cfg:        cfg,
		resolver:   resolver,
		scheduler:  scheduler,
		sink:       sink,
		telemetry:  inst,
		log:        slog.Default(),
	}
}

// Run implements spec.md §4.8's Run operation.
func (e *Entity) Run(ctx context.Context, req RunRequest) (_ RunResponse, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ctx, finish := e.telemetry.StartDurableRun(ctx, e.AgentName, e.SessionKey)
	defer func() { finish(err) }()

	log := logging.FromContext(ctx)

	if len(req.Messages) == 0 {
		return RunResponse{}, nil
	}

	state, err := e.store.Load(ctx, e.AgentName, e.SessionKey)
	if err != nil {
		return RunResponse{}, fmt.Errorf("durable: run: loading state: %w", err)
	}
	firstInteraction := state == nil
	if state == nil {
		state = &SessionState{AgentName: e.AgentName, SessionKey: e.SessionKey}
	}

	if cached, ok := state.findResponse(req.CorrelationID); ok {
		log.DebugContext(ctx, "durable: duplicate correlation id, returning cached response",
			slog.String("agent", e.AgentName), slog.String("correlationId", req.CorrelationID))
		return RunResponse{Messages: cached}, nil
	}

	agent, ok := e.resolver.Resolve(e.AgentName)
	if !ok {
		return RunResponse{}, agflowerr.NewAgentNotRegistered(e.AgentName, e.SessionKey)
	}

	state.ConversationLog = append(state.ConversationLog, LogEntry{
		CorrelationID: req.CorrelationID,
		Request:       req.Messages,
	})

	history := state.history()
	runSession := session.New()
	resp, runErr := session.RunPipeline(ctx, agent, runSession, session.AgentOptions{}, history)
	if runErr != nil {
		return RunResponse{}, fmt.Errorf("durable: run: agent %q: %w", e.AgentName, runErr)
	}

	if e.sink != nil {
		for _, m := range resp.Messages {
			e.sink(ctx, session.ResponseUpdate{Delta: m})
		}
	}

	state.ConversationLog = append(state.ConversationLog, LogEntry{
		CorrelationID: req.CorrelationID,
		IsResponse:    true,
		Response:      resp.Messages,
	})

	e.updateTTL(state, firstInteraction)

	if err := e.store.Save(ctx, state); err != nil {
		return RunResponse{}, fmt.Errorf("durable: run: saving state: %w", err)
	}

	return RunResponse{Messages: resp.Messages}, nil
}

// updateTTL applies spec.md §4.8 step 6: refresh expiration, and arm the
// self-signal on the first interaction, or on a later one when no signal
// is recorded as scheduled yet (for example, TTL was disabled until then).
func (e *Entity) updateTTL(state *SessionState, firstInteraction bool) {
	ttl := e.cfg.ttlFor(e.AgentName)
	now := e.clock.Now()

	if ttl == nil {
		state.ExpirationTimeUTC = nil
		return
	}

	expiration := now.Add(*ttl)
	state.ExpirationTimeUTC = &expiration

	if firstInteraction || !state.SignalScheduled {
		e.armSignal(state, expiration)
	}
}

// armSignal schedules a self-signal at max(expiration, now+minSignalDelay)
// and marks it scheduled.
func (e *Entity) armSignal(state *SessionState, expiration time.Time) {
	at := expiration
	if min := e.clock.Now().Add(e.cfg.MinSignalDelay); min.After(at) {
		at = min
	}
	state.SignalScheduled = true
	if e.scheduler != nil {
		e.scheduler.Schedule(e.AgentName, e.SessionKey, at, func(ctx context.Context) {
			_ = e.CheckAndDeleteIfExpired(ctx)
		})
	}
}

// CheckAndDeleteIfExpired implements spec.md §4.8's CheckAndDeleteIfExpired
// operation: idempotent, deletes the entity atomically if past
// expiration, otherwise reschedules another self-signal.
func (e *Entity) CheckAndDeleteIfExpired(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	state, err := e.store.Load(ctx, e.AgentName, e.SessionKey)
	if err != nil {
		return fmt.Errorf("durable: check-expired: loading state: %w", err)
	}
	if state == nil || state.ExpirationTimeUTC == nil {
		return nil
	}

	now := e.clock.Now()
	if !state.ExpirationTimeUTC.After(now) {
		if err := e.store.Delete(ctx, e.AgentName, e.SessionKey); err != nil {
			return fmt.Errorf("durable: check-expired: deleting state: %w", err)
		}
		e.telemetry.RecordTTLEviction(ctx, e.AgentName)
		return nil
	}

	e.armSignal(state, *state.ExpirationTimeUTC)
	return e.store.Save(ctx, state)
}
