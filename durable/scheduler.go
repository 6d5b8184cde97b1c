// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package durable

import (
	"context"
	"sync"
	"time"
)

// SelfSignalScheduler arms a one-shot callback for a (agentName,
// sessionKey) pair at a future time — the "deletion self-signal"
// spec.md §4.8 describes. Re-arming the same pair replaces any pending
// signal.
type SelfSignalScheduler interface {
	Schedule(agentName, sessionKey string, at time.Time, fire func(ctx context.Context))
}

// TimerScheduler is the production [SelfSignalScheduler]: one
// [time.Timer] per pair, grounded on the teacher's single-process,
// no-external-queue default posture (session.InMemoryService has no
// external scheduling dependency either).
type TimerScheduler struct {
	clock Clock

	mu     sync.Mutex
	timers map[string]*time.Timer
}

var _ SelfSignalScheduler = (*TimerScheduler)(nil)

// NewTimerScheduler creates a TimerScheduler that measures delays
// against clock.
func NewTimerScheduler(clock Clock) *TimerScheduler {
	return &TimerScheduler{clock: clock, timers: make(map[string]*time.Timer)}
}

// Schedule implements [SelfSignalScheduler].
func (t *TimerScheduler) Schedule(agentName, sessionKey string, at time.Time, fire func(ctx context.Context)) {
	key := storeKey(agentName, sessionKey)
	delay := at.Sub(t.clock.Now())
	if delay < 0 {
		delay = 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if existing, ok := t.timers[key]; ok {
		existing.Stop()
	}
	t.timers[key] = time.AfterFunc(delay, func() { fire(context.Background()) })
}

// ManualScheduler records the most recently scheduled signal per pair
// without arming any real timer, so deterministic tests can dispatch it
// explicitly (spec.md §8 scenario 5's "advance virtual time... and
// dispatch the CheckAndDeleteIfExpired signal").
type ManualScheduler struct {
	mu      sync.Mutex
	pending map[string]func(ctx context.Context)
	at      map[string]time.Time
}

var _ SelfSignalScheduler = (*ManualScheduler)(nil)

// NewManualScheduler creates an empty ManualScheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{
		pending: make(map[string]func(ctx context.Context)),
		at:      make(map[string]time.Time),
	}
}

// Schedule implements [SelfSignalScheduler].
func (m *ManualScheduler) Schedule(agentName, sessionKey string, at time.Time, fire func(ctx context.Context)) {
	key := storeKey(agentName, sessionKey)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending[key] = fire
	m.at[key] = at
}

// Fire invokes the pending signal for (agentName, sessionKey), if any,
// and clears it. It reports whether a signal was pending.
func (m *ManualScheduler) Fire(ctx context.Context, agentName, sessionKey string) bool {
	key := storeKey(agentName, sessionKey)
	m.mu.Lock()
	fire, ok := m.pending[key]
	if ok {
		delete(m.pending, key)
		delete(m.at, key)
	}
	m.mu.Unlock()
	if !ok {
		return false
	}
	fire(ctx)
	return true
}

// ScheduledAt reports the time a pending signal for (agentName,
// sessionKey) was armed for, if any.
func (m *ManualScheduler) ScheduledAt(agentName, sessionKey string) (time.Time, bool) {
	key := storeKey(agentName, sessionKey)
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.at[key]
	return t, ok
}
