// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package scheduler_test

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/go-a2a/agentflow/message"
	"github.com/go-a2a/agentflow/workflow"
	"github.com/go-a2a/agentflow/workflow/scheduler"
)

// buildSpamPipeline mirrors the worked example from the routing design
// notes: a detector classifies incoming text, then a SwitchEdge routes
// spam to a removal executor and everything else to a response
// executor, both of which yield a workflow output.
func buildSpamPipeline(t *testing.T) *workflow.Graph {
	t.Helper()

	detect := workflow.NewExecutor("detect", nil, nil, func(ctx context.Context, wc *workflow.Context, env message.Envelope) error {
		text, _ := env.Payload.(string)
		isSpam := text == "buy now"
		wc.QueueStateUpdate("lastText", text)
		wc.SendMessage(isSpam)
		return nil
	})
	remove := workflow.NewExecutor("remove", nil, nil, func(ctx context.Context, wc *workflow.Context, env message.Envelope) error {
		wc.YieldOutput("removed")
		return nil
	})
	respond := workflow.NewExecutor("respond", nil, nil, func(ctx context.Context, wc *workflow.Context, env message.Envelope) error {
		wc.YieldOutput("responded")
		return nil
	})

	g, err := workflow.NewBuilder("spam-pipeline").
		AddExecutor("detect", func() workflow.Executor { return detect }).
		AddExecutor("remove", func() workflow.Executor { return remove }).
		AddExecutor("respond", func() workflow.Executor { return respond }).
		WithStartingExecutor("detect").
		AddEdge(workflow.SwitchEdge{
			From: "detect",
			Cases: []workflow.SwitchCase{
				{Predicate: func(p any) bool { return p.(bool) }, Target: "remove"},
			},
			Default: "respond",
		}).
		MarkOutputProducer("remove").
		MarkOutputProducer("respond").
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func drain(t *testing.T, events func(func(*workflow.Event, error) bool)) []*workflow.Event {
	t.Helper()
	var got []*workflow.Event
	for ev, err := range events {
		if err != nil {
			t.Fatalf("unexpected scheduler error: %v", err)
		}
		got = append(got, ev)
	}
	return got
}

func TestSchedulerRoutesSpamToRemoval(t *testing.T) {
	g := buildSpamPipeline(t)
	s := scheduler.New(g, scheduler.Options{})

	events := drain(t, s.RunStreaming(context.Background(), "buy now"))

	var outputs []any
	for _, ev := range events {
		if ev.Kind == workflow.EventWorkflowOutput {
			outputs = append(outputs, ev.Value)
		}
	}
	if len(outputs) != 1 || outputs[0] != "removed" {
		t.Fatalf("outputs = %v, want [removed]", outputs)
	}
}

func TestSchedulerRoutesHamToResponse(t *testing.T) {
	g := buildSpamPipeline(t)
	s := scheduler.New(g, scheduler.Options{})

	events := drain(t, s.RunStreaming(context.Background(), "hello there"))

	var outputs []any
	for _, ev := range events {
		if ev.Kind == workflow.EventWorkflowOutput {
			outputs = append(outputs, ev.Value)
		}
	}
	if len(outputs) != 1 || outputs[0] != "responded" {
		t.Fatalf("outputs = %v, want [responded]", outputs)
	}
}

// buildFanInGraph wires two independent sources into a join executor
// via a FanInEdge, so the test can assert the released batch is ordered
// by the edge's declared Sources rather than by arrival order.
func buildFanInGraph(t *testing.T, arrivalOrder []string) *workflow.Graph {
	t.Helper()

	start := workflow.NewExecutor("start", nil, nil, func(ctx context.Context, wc *workflow.Context, env message.Envelope) error {
		// Send to "b" first, "a" second, regardless of Sources declaration
		// order, to prove release order follows Sources, not arrival.
		for _, id := range arrivalOrder {
			wc.SendMessage(id+"-payload", workflow.ExecutorID(id))
		}
		return nil
	})
	a := workflow.NewExecutor("a", nil, nil, func(ctx context.Context, wc *workflow.Context, env message.Envelope) error {
		wc.SendMessage(env.Payload)
		return nil
	})
	b := workflow.NewExecutor("b", nil, nil, func(ctx context.Context, wc *workflow.Context, env message.Envelope) error {
		wc.SendMessage(env.Payload)
		return nil
	})
	join := workflow.NewExecutor("join", nil, nil, func(ctx context.Context, wc *workflow.Context, env message.Envelope) error {
		wc.YieldOutput(env.Payload)
		return nil
	})

	g, err := workflow.NewBuilder("fan-in").
		AddExecutor("start", func() workflow.Executor { return start }).
		AddExecutor("a", func() workflow.Executor { return a }).
		AddExecutor("b", func() workflow.Executor { return b }).
		AddExecutor("join", func() workflow.Executor { return join }).
		WithStartingExecutor("start").
		AddEdge(workflow.FanInEdge{Sources: []workflow.ExecutorID{"a", "b"}, Target: "join"}).
		MarkOutputProducer("join").
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func TestSchedulerFanInReleasesInSourcesOrder(t *testing.T) {
	g := buildFanInGraph(t, []string{"b", "a"})
	s := scheduler.New(g, scheduler.Options{})

	events := drain(t, s.RunStreaming(context.Background(), nil))

	var batch []any
	for _, ev := range events {
		if ev.Kind == workflow.EventWorkflowOutput {
			batch, _ = ev.Value.([]any)
		}
	}
	if len(batch) != 2 || batch[0] != "a-payload" || batch[1] != "b-payload" {
		t.Fatalf("batch = %v, want [a-payload b-payload] (Sources order)", batch)
	}
}

func TestSchedulerStopsOnRequestHalt(t *testing.T) {
	halting := workflow.NewExecutor("halting", nil, nil, func(ctx context.Context, wc *workflow.Context, env message.Envelope) error {
		wc.RequestHalt()
		return nil
	})
	g, err := workflow.NewBuilder("halts").
		AddExecutor("halting", func() workflow.Executor { return halting }).
		WithStartingExecutor("halting").
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	s := scheduler.New(g, scheduler.Options{})
	events := drain(t, s.RunStreaming(context.Background(), "go"))

	found := false
	for _, ev := range events {
		if ev.Kind == workflow.EventWorkflowCompleted && ev.Value == string(scheduler.StatusHalted) {
			found = true
		}
	}
	if !found {
		t.Fatal("want a WorkflowCompleted(halted) event")
	}
}

func TestSchedulerAwaitsThenResumesOnExternalResponse(t *testing.T) {
	asker := workflow.NewExecutor("asker", nil, nil, func(ctx context.Context, wc *workflow.Context, env message.Envelope) error {
		if v, ok := wc.ReadState("asked"); ok && v == true {
			wc.YieldOutput("resumed")
			return nil
		}
		wc.QueueStateUpdate("asked", true)
		wc.PostExternalRequest("approval-1", "please confirm")
		return nil
	})
	g, err := workflow.NewBuilder("asks").
		AddExecutor("asker", func() workflow.Executor { return asker }).
		WithStartingExecutor("asker").
		MarkOutputProducer("asker").
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	s := scheduler.New(g, scheduler.Options{})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	run, events := s.Start(ctx, "start")

	next, stop := iterPull(events)
	defer stop()

	sawAwaiting := false
	for {
		ev, err, ok := next()
		if !ok {
			break
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ev.Kind == workflow.EventRequestInfo {
			sawAwaiting = true
			run.ProvideExternalResponse("approval-1", "yes")
		}
	}
	if !sawAwaiting {
		t.Fatal("expected to observe the outstanding external request")
	}
}

// iterPull adapts an iter.Seq2 into an explicit pull-style next()
// function so the test can interleave ProvideExternalResponse calls
// between events instead of consuming the whole stream with range.
func iterPull(seq func(func(*workflow.Event, error) bool)) (next func() (*workflow.Event, error, bool), stop func()) {
	type item struct {
		ev  *workflow.Event
		err error
	}
	ch := make(chan item)
	done := make(chan struct{})
	go func() {
		defer close(ch)
		seq(func(ev *workflow.Event, err error) bool {
			select {
			case ch <- item{ev, err}:
				return true
			case <-done:
				return false
			}
		})
	}()
	return func() (*workflow.Event, error, bool) {
			it, ok := <-ch
			if !ok {
				return nil, nil, false
			}
			return it.ev, it.err, true
		}, func() {
			close(done)
		}
}

// TestSchedulerParallelDispatchReachesAllTargets exercises
// Options.Parallel fan-out dispatch: every target executor runs and
// yields its own output exactly once, independent of goroutine
// scheduling order (§4.3/§5 determinism requirement covers commit and
// route ordering, not handler start order).
func TestSchedulerParallelDispatchReachesAllTargets(t *testing.T) {
	mk := func(id string) *workflow.BaseExecutor {
		return workflow.NewExecutor(workflow.ExecutorID(id), nil, nil, func(ctx context.Context, wc *workflow.Context, env message.Envelope) error {
			wc.QueueStateUpdate("touched", id)
			wc.YieldOutput(id)
			return nil
		})
	}
	fanOut := workflow.NewExecutor("fanout", nil, nil, func(ctx context.Context, wc *workflow.Context, env message.Envelope) error {
		wc.SendMessage("go")
		return nil
	})

	ids := []string{"charlie", "alpha", "bravo"}
	builder := workflow.NewBuilder("parallel").
		AddExecutor("fanout", func() workflow.Executor { return fanOut }).
		WithStartingExecutor("fanout")
	var targets []workflow.ExecutorID
	for _, id := range ids {
		targets = append(targets, workflow.ExecutorID(id))
		builder = builder.AddExecutor(workflow.ExecutorID(id), func() workflow.Executor { return mk(id) }).
			MarkOutputProducer(workflow.ExecutorID(id))
	}
	builder = builder.AddEdge(workflow.FanOutEdge{From: "fanout", Targets: targets})
	g, err := builder.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	s := scheduler.New(g, scheduler.Options{Parallel: true})
	events := drain(t, s.RunStreaming(context.Background(), "start"))

	var outputs []string
	for _, ev := range events {
		if ev.Kind == workflow.EventWorkflowOutput {
			outputs = append(outputs, ev.Value.(string))
		}
	}
	sort.Strings(outputs)
	want := append([]string(nil), ids...)
	sort.Strings(want)
	if len(outputs) != len(want) {
		t.Fatalf("outputs = %v, want one per target %v", outputs, want)
	}
	for i := range want {
		if outputs[i] != want[i] {
			t.Fatalf("outputs = %v, want %v", outputs, want)
		}
	}
}

// TestSchedulerParallelDispatchPreservesQueueOrder proves parallel
// dispatch reports results in queue order rather than completion order:
// each executor sleeps for a distinct, reversed duration so the
// fastest-finishing executor is declared last and the slowest-finishing
// executor is declared first. If dispatch let completion order leak
// through (e.g. via an unordered TaskGroup.Wait), the observed output
// order would match the sleep order instead of the declared order.
func TestSchedulerParallelDispatchPreservesQueueOrder(t *testing.T) {
	delays := map[string]time.Duration{
		"charlie": 30 * time.Millisecond,
		"alpha":   20 * time.Millisecond,
		"bravo":   10 * time.Millisecond,
	}
	mk := func(id string) *workflow.BaseExecutor {
		return workflow.NewExecutor(workflow.ExecutorID(id), nil, nil, func(ctx context.Context, wc *workflow.Context, env message.Envelope) error {
			time.Sleep(delays[id])
			wc.YieldOutput(id)
			return nil
		})
	}
	fanOut := workflow.NewExecutor("fanout", nil, nil, func(ctx context.Context, wc *workflow.Context, env message.Envelope) error {
		wc.SendMessage("go")
		return nil
	})

	ids := []string{"charlie", "alpha", "bravo"}
	builder := workflow.NewBuilder("parallel-order").
		AddExecutor("fanout", func() workflow.Executor { return fanOut }).
		WithStartingExecutor("fanout")
	var targets []workflow.ExecutorID
	for _, id := range ids {
		targets = append(targets, workflow.ExecutorID(id))
		builder = builder.AddExecutor(workflow.ExecutorID(id), func() workflow.Executor { return mk(id) }).
			MarkOutputProducer(workflow.ExecutorID(id))
	}
	builder = builder.AddEdge(workflow.FanOutEdge{From: "fanout", Targets: targets})
	g, err := builder.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	s := scheduler.New(g, scheduler.Options{Parallel: true})
	events := drain(t, s.RunStreaming(context.Background(), "start"))

	var outputs []string
	for _, ev := range events {
		if ev.Kind == workflow.EventWorkflowOutput {
			outputs = append(outputs, ev.Value.(string))
		}
	}
	if len(outputs) != len(ids) {
		t.Fatalf("outputs = %v, want one per target %v", outputs, ids)
	}
	for i := range ids {
		if outputs[i] != ids[i] {
			t.Fatalf("outputs = %v, want %v (declared/queue order, not completion order)", outputs, ids)
		}
	}
}

// TestSchedulerFaultDeliversOtherExecutorsInSameSuperstep exercises
// §4.1's "a handler that raises a fault ... [other executors] scheduled
// within the same superstep still run; their outputs are delivered
// normally" guarantee: a fan-out to a faulting and a succeeding
// executor dispatched in the same superstep must still surface the
// succeeding executor's ExecutorCompleted/WorkflowOutput events
// alongside the fault, in enqueue order, before the terminal
// WorkflowCompleted("failed").
func TestSchedulerFaultDeliversOtherExecutorsInSameSuperstep(t *testing.T) {
	faultErr := errors.New("boom")
	good := workflow.NewExecutor("good", nil, nil, func(ctx context.Context, wc *workflow.Context, env message.Envelope) error {
		wc.YieldOutput("good-output")
		return nil
	})
	bad := workflow.NewExecutor("bad", nil, nil, func(ctx context.Context, wc *workflow.Context, env message.Envelope) error {
		return faultErr
	})
	fanOut := workflow.NewExecutor("fanout", nil, nil, func(ctx context.Context, wc *workflow.Context, env message.Envelope) error {
		wc.SendMessage("go")
		return nil
	})

	g, err := workflow.NewBuilder("fault-fanout").
		AddExecutor("fanout", func() workflow.Executor { return fanOut }).
		AddExecutor("good", func() workflow.Executor { return good }).
		AddExecutor("bad", func() workflow.Executor { return bad }).
		WithStartingExecutor("fanout").
		AddEdge(workflow.FanOutEdge{From: "fanout", Targets: []workflow.ExecutorID{"good", "bad"}}).
		MarkOutputProducer("good").
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	s := scheduler.New(g, scheduler.Options{})
	events := drain(t, s.RunStreaming(context.Background(), "start"))

	var sawGoodCompleted, sawGoodOutput, sawBadFailed bool
	var sawWorkflowFailed bool
	for i, ev := range events {
		switch {
		case ev.Kind == workflow.EventExecutorCompleted && ev.ExecutorID == "good":
			sawGoodCompleted = true
		case ev.Kind == workflow.EventWorkflowOutput && ev.Value == "good-output":
			sawGoodOutput = true
		case ev.Kind == workflow.EventExecutorFailed && ev.ExecutorID == "bad":
			sawBadFailed = true
			if ev.Err == nil {
				t.Fatalf("ExecutorFailed event for %q has no Err", ev.ExecutorID)
			}
		case ev.Kind == workflow.EventWorkflowCompleted:
			sawWorkflowFailed = ev.Value == "failed"
			if i != len(events)-1 {
				t.Fatalf("WorkflowCompleted at index %d, want last event", i)
			}
		}
	}
	if !sawGoodCompleted || !sawGoodOutput {
		t.Fatalf("events = %+v, want good executor's completion and output delivered despite bad's fault", events)
	}
	if !sawBadFailed {
		t.Fatalf("events = %+v, want an ExecutorFailed event for bad", events)
	}
	if !sawWorkflowFailed {
		t.Fatalf("events = %+v, want a terminal WorkflowCompleted(\"failed\") event", events)
	}
}

// TestSchedulerExplicitSendRejectsMismatchedType exercises §4.2 point
// 1's "subject to its handling the payload's TypeId": an explicitly
// targeted send whose payload TypeID the target never declares must
// raise a RoutingError rather than being delivered anyway.
func TestSchedulerExplicitSendRejectsMismatchedType(t *testing.T) {
	picky := workflow.NewExecutor("picky", []message.TypeID{message.TypeIDFor[int]()}, nil, func(ctx context.Context, wc *workflow.Context, env message.Envelope) error {
		wc.YieldOutput(env.Payload)
		return nil
	})
	sender := workflow.NewExecutor("sender", nil, nil, func(ctx context.Context, wc *workflow.Context, env message.Envelope) error {
		wc.SendMessage("not an int", workflow.ExecutorID("picky"))
		return nil
	})

	g, err := workflow.NewBuilder("mismatched-send").
		AddExecutor("sender", func() workflow.Executor { return sender }).
		AddExecutor("picky", func() workflow.Executor { return picky }).
		WithStartingExecutor("sender").
		MarkOutputProducer("picky").
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	s := scheduler.New(g, scheduler.Options{})
	var sawErr error
	for _, err := range s.RunStreaming(context.Background(), "start") {
		if err != nil {
			sawErr = err
			break
		}
	}
	if sawErr == nil {
		t.Fatal("RunStreaming: want a RoutingError for the mismatched explicit send, got none")
	}
}
