// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package scheduler drives a [workflow.Graph] with deterministic,
// superstep-based scheduling: advance, dispatch, commit, route, check
// quiescence (spec.md §4.3). It supports cooperative single-threaded or
// parallel-within-a-superstep dispatch, cancellation at every
// suspension point, and checkpoint/resume.
package scheduler

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"sort"

	"github.com/go-a2a/agentflow/agflowerr"
	"github.com/go-a2a/agentflow/internal/pyasync"
	"github.com/go-a2a/agentflow/internal/telemetry"
	"github.com/go-a2a/agentflow/message"
	"github.com/go-a2a/agentflow/pkg/logging"
	"github.com/go-a2a/agentflow/workflow"
)

// Status is the run's lifecycle state (spec.md §4.3 state machine).
type Status string

const (
	StatusCreated               Status = "created"
	StatusRunning               Status = "running"
	StatusIdle                  Status = "idle"
	StatusAwaitingExternalInput Status = "awaiting_external_input"
	StatusCompleted             Status = "completed"
	StatusFailed                Status = "failed"
	StatusCancelled             Status = "cancelled"
	StatusHalted                Status = "halted"
)

// Options configures a Scheduler.
type Options struct {
	// Parallel enables concurrent dispatch of every message within one
	// superstep, isolating each handler's effects until commit (§5).
	// When false (the default), messages within a superstep are
	// dispatched one at a time in enqueue order.
	Parallel bool

	// Logger is the logger each run resolves and stores. Defaults to the
	// logger found in the run's context via pkg/logging. The scheduler
	// writes no log records through it.
	Logger *slog.Logger

	// Telemetry records a span and duration histogram per superstep and
	// a counter on quiescence. Nil disables instrumentation.
	Telemetry *telemetry.Instruments
}

// Scheduler drives one [workflow.Graph]. It holds no per-run state
// itself — [Scheduler.RunStreaming] creates a fresh [run] for every
// invocation — so one Scheduler may drive many concurrent runs of the
// same graph.
type Scheduler struct {
	graph *workflow.Graph
	opts  Options
}

// New creates a Scheduler for graph.
func New(graph *workflow.Graph, opts Options) *Scheduler {
	return &Scheduler{graph: graph, opts: opts}
}

// queuedEnvelope wraps one envelope waiting in a queue; delivery order
// is the queue order.
type queuedEnvelope struct {
	env message.Envelope
}

// run is one in-flight execution of a graph.
type run struct {
	graph *workflow.Graph
	opts  Options
	log   *slog.Logger

	executors map[workflow.ExecutorID]workflow.Executor
	committed map[workflow.ExecutorID]map[workflow.Scope]map[string]any

	currentQueue []queuedEnvelope
	nextQueue    []queuedEnvelope

	// fanInBuffers[target] accumulates one message per declared source
	// until the join policy is satisfied, then releases a batch.
	fanInBuffers map[workflow.ExecutorID]*fanInBuffer

	outstanding map[string]workflow.ExternalRequest
	responses   chan externalResponse

	status     Status
	haltNext   bool
	outputsYet bool
	step       int
}

// fanInBuffer accumulates at most one payload per declared source for a
// FanInEdge until its join policy releases the batch. Payloads are kept
// per-source rather than in arrival order so the released batch can be
// ordered by the edge's declared Sources order (DESIGN.md Open
// Question #1), independent of dispatch order.
type fanInBuffer struct {
	received map[workflow.ExecutorID]bool
	payloads map[workflow.ExecutorID]any
}

func newFanInBuffer() *fanInBuffer {
	return &fanInBuffer{
		received: make(map[workflow.ExecutorID]bool),
		payloads: make(map[workflow.ExecutorID]any),
	}
}

type externalResponse struct {
	requestID string
	payload   any
}

func newRun(g *workflow.Graph, opts Options) *run {
	return &run{
		graph:        g,
		opts:         opts,
		executors:    make(map[workflow.ExecutorID]workflow.Executor),
		committed:    make(map[workflow.ExecutorID]map[workflow.Scope]map[string]any),
		fanInBuffers: make(map[workflow.ExecutorID]*fanInBuffer),
		outstanding:  make(map[string]workflow.ExternalRequest),
		responses:    make(chan externalResponse, 16),
		status:       StatusCreated,
	}
}

func (r *run) executorFor(id workflow.ExecutorID) (workflow.Executor, error) {
	if e, ok := r.executors[id]; ok {
		return e, nil
	}
	e, ok := r.graph.NewExecutor(id)
	if !ok {
		return nil, agflowerr.NewRoutingError("unregistered executor %q", id)
	}
	r.executors[id] = e
	return e, nil
}

// declaredInputTypesOf implements [declaredInputTypes] for route's
// explicit-target type check, reusing executorFor's memoized instance
// so checking a target's declared types never creates a throwaway
// second instance of a stateful executor. An unregistered id reports
// ok=false so route leaves that case to dispatch's own RoutingError.
func (r *run) declaredInputTypesOf(id workflow.ExecutorID) ([]message.TypeID, bool) {
	e, err := r.executorFor(id)
	if err != nil {
		return nil, false
	}
	return e.InputTypes(), true
}

// Start begins a fresh run of the graph with input delivered to its
// starting executor. It returns a [Run] handle (used to satisfy
// external requests mid-run via [Run.ProvideExternalResponse]) and the
// run's event stream (spec.md §6 Run API surface). The sequence ends
// after a terminal WorkflowCompleted-equivalent event, or after an
// error.
func (s *Scheduler) Start(ctx context.Context, input any) (*Run, iter.Seq2[*workflow.Event, error]) {
	r := newRun(s.graph, s.opts)
	r.log = resolveLogger(ctx, s.opts.Logger)
	env := message.New("", string(s.graph.StartingExecutor()), input)
	r.nextQueue = append(r.nextQueue, queuedEnvelope{env: env})
	r.status = StatusRunning
	return &Run{inner: r}, r.stream(ctx)
}

// RunStreaming is a convenience wrapper around [Scheduler.Start] for
// callers that never need to provide external responses mid-run.
func (s *Scheduler) RunStreaming(ctx context.Context, input any) iter.Seq2[*workflow.Event, error] {
	_, events := s.Start(ctx, input)
	return events
}

// Resume rebuilds a run from cp, decoding payloads via reg, and resumes
// its event stream from the checkpointed superstep boundary.
func (s *Scheduler) Resume(ctx context.Context, cp *Checkpoint, reg *message.Registry) (*Run, iter.Seq2[*workflow.Event, error], error) {
	resumed, err := Resume(s.graph, s.opts, cp, reg)
	if err != nil {
		return nil, nil, err
	}
	resumed.inner.log = resolveLogger(ctx, s.opts.Logger)
	return resumed, resumed.inner.stream(ctx), nil
}

// Run is the externally visible handle for one in-flight or completed
// execution, used to interleave [Run.ProvideExternalResponse] calls
// with event stream consumption.
type Run struct {
	inner *run
}

// ProvideExternalResponse satisfies an outstanding external request,
// re-enabling progress for a run paused in StatusAwaitingExternalInput.
// It is a no-op if requestID names no outstanding request.
func (r *Run) ProvideExternalResponse(requestID string, payload any) {
	r.inner.responses <- externalResponse{requestID: requestID, payload: payload}
}

// Status reports the run's current lifecycle state.
func (r *Run) Status() Status { return r.inner.status }

func (r *run) stream(ctx context.Context) iter.Seq2[*workflow.Event, error] {
	return func(yield func(*workflow.Event, error) bool) {
		for {
			if ctx.Err() != nil {
				r.status = StatusCancelled
				return
			}

			r.step++
			spanCtx, finish := r.opts.Telemetry.StartSuperstep(ctx, string(r.graph.Name()), r.step)
			events, err := r.superstep(spanCtx)
			finish(err)
			for _, ev := range events {
				if !yield(ev, nil) {
					return
				}
			}
			if err != nil {
				if !yield(nil, err) {
					return
				}
				return
			}

			switch r.status {
			case StatusCompleted, StatusFailed, StatusCancelled, StatusHalted:
				return
			case StatusAwaitingExternalInput:
				select {
				case <-ctx.Done():
					r.status = StatusCancelled
					return
				case resp := <-r.responses:
					r.applyExternalResponse(resp)
					r.status = StatusRunning
				}
			case StatusIdle:
				// Nothing queued and nothing outstanding: the run is
				// logically done without an explicit output/halt.
				r.status = StatusCompleted
				return
			}
		}
	}
}

func (r *run) applyExternalResponse(resp externalResponse) {
	if _, ok := r.outstanding[resp.requestID]; !ok {
		return
	}
	delete(r.outstanding, resp.requestID)
	// The response re-enters the graph as a directly targeted message
	// is left to the caller's executor design: the runtime only clears
	// the outstanding marker so quiescence can be reevaluated. Callers
	// that need the payload delivered to an executor call SendMessage
	// via their own bookkeeping before calling ProvideExternalResponse.
	_ = resp.payload
}

// superstep runs one full advance/dispatch/commit/route/quiescence
// cycle (§4.3) and returns the events raised during it, in emission
// order.
func (r *run) superstep(ctx context.Context) ([]*workflow.Event, error) {
	// 1. Advance.
	r.currentQueue, r.nextQueue = r.nextQueue, nil

	if len(r.currentQueue) == 0 {
		r.status = r.quiescenceStatus()
		return nil, nil
	}

	// 2. Dispatch.
	dispatched, err := r.dispatch(ctx)
	if err != nil {
		return nil, err
	}

	// 3. Commit (state) — executor-id order, then key order, for
	// determinism (§4.3 point 3).
	commitStateInOrder(r.committed, dispatched)

	// Collect events in enqueue (dispatch) order. Every dispatched
	// result is processed regardless of position: a fault in one
	// executor must not drop the completions, outputs, or outbound
	// messages of other executors dispatched in the same superstep
	// (§4.1: "Other executors scheduled within the same superstep still
	// run; their outputs are delivered normally."). Faults are recorded
	// and only decided on after every result has contributed its
	// events.
	var events []*workflow.Event
	var outbound []routedMessage
	var faults []*dispatchResult
	for i := range dispatched {
		d := &dispatched[i]
		if d.fault != nil {
			faults = append(faults, d)
			continue
		}
		events = append(events, workflow.NewEvent(workflow.EventExecutorCompleted, d.executorID, d.effects.Outputs))
		events = append(events, d.effects.Events...)
		for _, ext := range d.effects.External {
			r.outstanding[ext.ID] = ext
			events = append(events, workflow.NewEvent(workflow.EventRequestInfo, d.executorID, ext.Payload))
		}
		for _, out := range d.effects.Outputs {
			events = append(events, workflow.NewEvent(workflow.EventWorkflowOutput, d.executorID, out))
			r.outputsYet = true
		}
		if d.effects.HaltRequested {
			r.haltNext = true
		}
		for _, ob := range d.effects.Outbound {
			outbound = append(outbound, routedMessage{source: d.executorID, target: workflow.ExecutorID(ob.Target), payload: ob.Payload})
		}
	}

	if len(faults) > 0 {
		// A handler fault terminates the run (§4.1/§7): no routing of
		// this superstep's outbound messages, but every other
		// executor's events collected above are still emitted first.
		for _, d := range faults {
			events = append(events, workflow.NewEvent(workflow.EventExecutorFailed, d.executorID, d.fault).WithErr(d.fault))
		}
		events = append(events, workflow.NewEvent(workflow.EventWorkflowCompleted, "", "failed"))
		r.status = StatusFailed
		return events, nil
	}

	// 4. Route.
	routed, unrouted, err := route(r.graph, r.fanInBuffers, r.declaredInputTypesOf, outbound)
	if err != nil {
		return events, err
	}
	for _, u := range unrouted {
		events = append(events, workflow.NewEvent(workflow.EventUnroutedMessage, u.source, u.payload))
	}
	for _, env := range routed {
		events = append(events, workflow.NewEvent(workflow.EventMessageSend, workflow.ExecutorID(env.Target), env.Payload))
		r.nextQueue = append(r.nextQueue, queuedEnvelope{env: env})
	}

	// 5. Check quiescence.
	r.status = r.quiescenceStatus()
	if r.status == StatusHalted || r.status == StatusCompleted {
		r.opts.Telemetry.RecordQuiescence(ctx, string(r.graph.Name()))
		events = append(events, workflow.NewEvent(workflow.EventWorkflowCompleted, "", string(r.status)))
	}
	return events, nil
}

func (r *run) quiescenceStatus() Status {
	if len(r.outstanding) > 0 {
		return StatusAwaitingExternalInput
	}
	if r.haltNext {
		return StatusHalted
	}
	if len(r.nextQueue) == 0 {
		if r.outputsYet {
			return StatusCompleted
		}
		return StatusIdle
	}
	return StatusRunning
}

type dispatchResult struct {
	executorID workflow.ExecutorID
	effects    workflow.Effects
	fault      error
}

// dispatch invokes each envelope's target executor handler, either
// sequentially or, when Options.Parallel is set, concurrently via
// internal/pyasync.TaskGroup — one task per queued envelope, isolated
// until commit per §5's parallel-execution mode.
func (r *run) dispatch(ctx context.Context) ([]dispatchResult, error) {
	if !r.opts.Parallel || len(r.currentQueue) <= 1 {
		results := make([]dispatchResult, 0, len(r.currentQueue))
		for _, qe := range r.currentQueue {
			results = append(results, r.dispatchOne(ctx, qe.env))
		}
		return results, nil
	}

	tg := pyasync.NewTaskGroup[dispatchResult](ctx)
	for _, qe := range r.currentQueue {
		env := qe.env
		if _, err := tg.CreateTask(func(taskCtx context.Context) (dispatchResult, error) {
			return r.dispatchOne(taskCtx, env), nil
		}); err != nil {
			return nil, fmt.Errorf("scheduler: scheduling parallel dispatch: %w", err)
		}
	}
	results, err := tg.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("scheduler: parallel dispatch: %w", err)
	}
	return results, nil
}

func (r *run) dispatchOne(ctx context.Context, env message.Envelope) dispatchResult {
	target := workflow.ExecutorID(env.Target)
	executor, err := r.executorFor(target)
	if err != nil {
		return dispatchResult{executorID: target, fault: err}
	}

	wc := workflow.NewRunContext(executor.ID(), r.committed[executor.ID()])
	if err := executor.Handle(ctx, wc, env); err != nil {
		return dispatchResult{executorID: executor.ID(), fault: agflowerr.NewHandlerFault(string(executor.ID()), err)}
	}
	return dispatchResult{executorID: executor.ID(), effects: wc.Effects()}
}

// commitStateInOrder applies every dispatch result's buffered state
// writes atomically, in executor-id order then key order, per §4.3
// point 3.
func commitStateInOrder(committed map[workflow.ExecutorID]map[workflow.Scope]map[string]any, results []dispatchResult) {
	ordered := append([]dispatchResult(nil), results...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].executorID < ordered[j].executorID })

	for _, d := range ordered {
		if d.fault != nil {
			continue // no partial state writes from a faulted handler
		}
		if committed[d.executorID] == nil {
			committed[d.executorID] = make(map[workflow.Scope]map[string]any)
		}
		scopeMap := committed[d.executorID]

		for scope := range d.effects.ClearedScopes {
			delete(scopeMap, scope)
		}

		scopes := make([]workflow.Scope, 0, len(d.effects.Buffered))
		for scope := range d.effects.Buffered {
			scopes = append(scopes, scope)
		}
		sort.Slice(scopes, func(i, j int) bool { return scopes[i] < scopes[j] })

		for _, scope := range scopes {
			keys := make([]string, 0, len(d.effects.Buffered[scope]))
			for k := range d.effects.Buffered[scope] {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			if scopeMap[scope] == nil {
				scopeMap[scope] = make(map[string]any)
			}
			for _, k := range keys {
				scopeMap[scope][k] = d.effects.Buffered[scope][k]
			}
		}
	}
}

func resolveLogger(ctx context.Context, override *slog.Logger) *slog.Logger {
	if override != nil {
		return override
	}
	return logging.FromContext(ctx)
}
