// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package orchestration

import (
	"sync"

	"github.com/go-a2a/agentflow/session"
)

// Status is an [AgentResponseHandle]'s lifecycle state.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// ActorResponse is the terminal value a [ManagerActor]'s conversation
// produces: the final message the manager's own filter callback
// selected, plus the full history at the point of termination.
type ActorResponse struct {
	Final   session.ChatMessage
	History []session.ChatMessage
}

// AgentResponseHandle is a non-blocking caller handle over one
// [ManagerActor] run: callers that cannot iterate a generator (e.g. an
// HTTP handler) poll [AgentResponseHandle.Status] or block on
// [AgentResponseHandle.Wait], grounded on the teacher's iter.Seq2
// streaming convention (agent/parallel_agents.go's Run/RunLive),
// adapted here to a pull handle instead of a pushed sequence.
type AgentResponseHandle struct {
	mu     sync.Mutex
	status Status
	resp   ActorResponse
	err    error
	done   chan struct{}
}

func newHandle() *AgentResponseHandle {
	return &AgentResponseHandle{status: StatusRunning, done: make(chan struct{})}
}

// Status reports the run's current lifecycle state.
func (h *AgentResponseHandle) Status() Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

// Done returns a channel closed once the run reaches a terminal state.
func (h *AgentResponseHandle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the run completes or fails, then returns its
// terminal [ActorResponse] (or the error it failed with).
func (h *AgentResponseHandle) Wait() (ActorResponse, error) {
	<-h.done
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.resp, h.err
}

func (h *AgentResponseHandle) complete(resp ActorResponse) {
	h.mu.Lock()
	h.status = StatusCompleted
	h.resp = resp
	h.mu.Unlock()
	close(h.done)
}

func (h *AgentResponseHandle) fail(err error) {
	h.mu.Lock()
	h.status = StatusFailed
	h.err = err
	h.mu.Unlock()
	close(h.done)
}
