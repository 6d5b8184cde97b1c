// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package durable

import (
	"context"
	"sync"

	"github.com/go-a2a/agentflow/internal/telemetry"
)

// Manager hands out one *[Entity] per (agentName, sessionKey) pair,
// reusing it across calls so the entity's own mutex actually serializes
// every caller that addresses the same pair (spec.md §5).
type Manager struct {
	store     Store
	clock     Clock
	cfg       Config
	resolver  AgentResolver
	scheduler SelfSignalScheduler
	sink      StreamSink
	telemetry *telemetry.Instruments

	mu       sync.Mutex
	entities map[string]*Entity
}

// NewManager builds a Manager. clock defaults to [RealClock] and
// scheduler to a [TimerScheduler] over that clock when nil.
func NewManager(store Store, cfg Config, resolver AgentResolver, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:    store,
		clock:    RealClock{},
		cfg:      cfg,
		resolver: resolver,
		entities: make(map[string]*Entity),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.scheduler == nil {
		m.scheduler = NewTimerScheduler(m.clock)
	}
	return m
}

// ManagerOption configures a [Manager] at construction time.
type ManagerOption func(*Manager)

// WithClock overrides the [Clock] used for TTL computations (tests use
// a [FakeClock]).
func WithClock(c Clock) ManagerOption {
	return func(m *Manager) { m.clock = c }
}

// WithScheduler overrides the [SelfSignalScheduler] (tests use a
// [ManualScheduler] to dispatch signals deterministically).
func WithScheduler(s SelfSignalScheduler) ManagerOption {
	return func(m *Manager) { m.scheduler = s }
}

// WithStreamSink wires a [StreamSink] every entity forwards response
// updates to.
func WithStreamSink(sink StreamSink) ManagerOption {
	return func(m *Manager) { m.sink = sink }
}

// WithTelemetry wires span-per-Run tracing and TTL-eviction counting
// into every entity the Manager hands out.
func WithTelemetry(inst *telemetry.Instruments) ManagerOption {
	return func(m *Manager) { m.telemetry = inst }
}

// Entity returns the (agentName, sessionKey) entity, creating it on
// first reference.
func (m *Manager) Entity(agentName, sessionKey string) *Entity {
	key := storeKey(agentName, sessionKey)

	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entities[key]; ok {
		return e
	}
	e := newEntity(agentName, sessionKey, m.store, m.clock, m.cfg, m.resolver, m.scheduler, m.sink, m.telemetry)
	m.entities[key] = e
	return e
}

// Run is a convenience wrapper around Entity(agentName,
// sessionKey).Run(ctx, req).
func (m *Manager) Run(ctx context.Context, agentName, sessionKey string, req RunRequest) (RunResponse, error) {
	return m.Entity(agentName, sessionKey).Run(ctx, req)
}
