// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package workflow

import (
	"sort"
	"sync"
)

// Scope namespaces state keys the way the teacher's State prefixed
// app/user/temp keys, generalized to an arbitrary caller-chosen scope
// string (default: the executor's own id).
type Scope string

// OutboundMessage is one payload a handler asked to send, queued for
// routing at the end of the current superstep.
type OutboundMessage struct {
	// Target is the explicit destination ExecutorID, or "" to route via
	// the graph's outgoing edges.
	Target  string
	Payload any
}

// ExternalRequest is a pending human-in-the-loop (or other out-of-band)
// request registered via Context.PostExternalRequest. The run cannot
// reach quiescence while any request of this kind is outstanding.
type ExternalRequest struct {
	ID      string
	Payload any
}

// Context is the capability surface a [Handler] receives. It accumulates
// effects in a per-superstep transaction rather than applying them
// immediately: sent messages are delivered next superstep, state writes
// commit atomically after every handler in the current superstep has
// run, and events are emitted in the order raised. Grounded on the
// teacher's InvocationContext (explicit struct passed by reference,
// never a service-locator) and State's value/delta buffering, scoped
// per-executor instead of per-session.
type Context struct {
	executorID ExecutorID

	mu sync.Mutex

	committed     map[Scope]map[string]any // committed state, read-only snapshot as of superstep start
	buffered      map[Scope]map[string]any // this handler's pending writes, not yet visible to anyone
	clearedScopes map[Scope]bool           // scopes buffered for a full clear rather than a merge

	outbound []OutboundMessage
	events   []*Event
	external []ExternalRequest
	outputs  []any
	haltReq  bool
}

// NewRunContext constructs a Context for one handler invocation, seeded
// with the committed state snapshot visible to executorID. Called by
// workflow/scheduler once per dispatched envelope.
func NewRunContext(executorID ExecutorID, committed map[Scope]map[string]any) *Context {
	return &Context{
		executorID: executorID,
		committed:  committed,
		buffered:   make(map[Scope]map[string]any),
	}
}

func (c *Context) defaultScope() Scope {
	return Scope(c.executorID)
}

// SendMessage enqueues payload for delivery after the current superstep
// completes. If targetID is "", routing consults the graph's outgoing
// edges from this executor; otherwise payload is addressed directly.
func (c *Context) SendMessage(payload any, targetID ...ExecutorID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	target := ""
	if len(targetID) > 0 {
		target = string(targetID[0])
	}
	c.outbound = append(c.outbound, OutboundMessage{Target: target, Payload: payload})
}

// AddEvent raises a lifecycle event visible to the run's observer
// stream, in the order raised relative to other AddEvent calls from
// this same handler invocation.
func (c *Context) AddEvent(event *Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

// YieldOutput marks this executor as having produced a workflow output.
// The scheduler does not check the graph's outputProducers set: every
// value yielded here becomes a WorkflowOutput event, whichever executor
// yields it.
func (c *Context) YieldOutput(value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outputs = append(c.outputs, value)
}

// RequestHalt requests cooperative termination of the run after the
// current superstep finishes committing and routing.
func (c *Context) RequestHalt() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.haltReq = true
}

// PostExternalRequest registers a pending external request (e.g.
// human-in-the-loop input). The run cannot reach quiescence while any
// request posted this way remains unanswered.
func (c *Context) PostExternalRequest(id string, payload any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.external = append(c.external, ExternalRequest{ID: id, Payload: payload})
}

// ReadState reads key from scope (default: this executor's own scope),
// reflecting only state committed before this superstep began — never
// this handler's own buffered, uncommitted writes from earlier in the
// same invocation, matching §4.3's "no state written in N is observed
// within N" guarantee.
func (c *Context) ReadState(key string, scope ...Scope) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.scopeOrDefault(scope)
	m, ok := c.committed[s]
	if !ok {
		return nil, false
	}
	v, ok := m[key]
	return v, ok
}

// ReadStateKeys lists the keys committed in scope.
func (c *Context) ReadStateKeys(scope ...Scope) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.scopeOrDefault(scope)
	m := c.committed[s]
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ReadOrInitState reads key from scope, or if absent, buffers factory()
// as its initial value (visible starting next superstep) and returns it.
func (c *Context) ReadOrInitState(key string, factory func() any, scope ...Scope) any {
	if v, ok := c.ReadState(key, scope...); ok {
		return v
	}
	v := factory()
	c.QueueStateUpdate(key, v, scope...)
	return v
}

// QueueStateUpdate buffers a write to key in scope. The write commits
// atomically with every other buffered write at the end of the current
// superstep; it is not visible to ReadState calls from this or any
// other handler until then.
func (c *Context) QueueStateUpdate(key string, value any, scope ...Scope) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.scopeOrDefault(scope)
	if c.buffered[s] == nil {
		c.buffered[s] = make(map[string]any)
	}
	c.buffered[s][key] = value
}

// ClearScope buffers the removal of every key in scope, applied at
// commit time like any other write.
func (c *Context) ClearScope(scope ...Scope) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.scopeOrDefault(scope)
	// A cleared scope is represented by an empty (non-nil) buffered map
	// combined with a marker so commit knows to drop the committed
	// contents rather than merge over them.
	c.buffered[s] = make(map[string]any)
	c.cleared(s)
}

func (c *Context) scopeOrDefault(scope []Scope) Scope {
	if len(scope) > 0 {
		return scope[0]
	}
	return c.defaultScope()
}

func (c *Context) cleared(s Scope) {
	if c.clearedScopes == nil {
		c.clearedScopes = make(map[Scope]bool)
	}
	c.clearedScopes[s] = true
}

// Effects is the immutable snapshot of everything a handler invocation
// accumulated, read out by the scheduler once Handle returns
// successfully so it can be applied in the commit/route phases of the
// superstep (§4.3).
type Effects struct {
	ExecutorID    ExecutorID
	Outbound      []OutboundMessage
	Events        []*Event
	External      []ExternalRequest
	Outputs       []any
	HaltRequested bool
	Buffered      map[Scope]map[string]any
	ClearedScopes map[Scope]bool
}

// Effects snapshots this Context's accumulated effects. Safe to call
// only after the handler invocation that owns c has returned.
func (c *Context) Effects() Effects {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Effects{
		ExecutorID:    c.executorID,
		Outbound:      c.outbound,
		Events:        c.events,
		External:      c.external,
		Outputs:       c.outputs,
		HaltRequested: c.haltReq,
		Buffered:      c.buffered,
		ClearedScopes: c.clearedScopes,
	}
}
