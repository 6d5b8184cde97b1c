// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package workflow_test

import (
	"context"
	"testing"

	"github.com/go-a2a/agentflow/message"
	"github.com/go-a2a/agentflow/workflow"
)

func noopHandler(ctx context.Context, wc *workflow.Context, env message.Envelope) error {
	return nil
}

func TestBuilderRejectsMissingStartingExecutor(t *testing.T) {
	_, err := workflow.NewBuilder("empty").Build()
	if err == nil {
		t.Fatal("want error for missing starting executor")
	}
}

func TestBuilderRejectsUnregisteredEdgeTarget(t *testing.T) {
	b := workflow.NewBuilder("bad-edge").
		AddExecutor("a", func() workflow.Executor {
			return workflow.NewExecutor("a", nil, nil, noopHandler)
		}).
		WithStartingExecutor("a").
		AddEdge(workflow.DirectEdge{From: "a", To: "missing"})

	if _, err := b.Build(); err == nil {
		t.Fatal("want error for edge referencing unregistered target")
	}
}

func TestBuilderBuildsValidGraph(t *testing.T) {
	b := workflow.NewBuilder("upper-reverse").
		AddExecutor("upper", func() workflow.Executor {
			return workflow.NewExecutor("upper", nil, nil, noopHandler)
		}).
		AddExecutor("reverse", func() workflow.Executor {
			return workflow.NewExecutor("reverse", nil, nil, noopHandler)
		}).
		WithStartingExecutor("upper").
		AddEdge(workflow.DirectEdge{From: "upper", To: "reverse"}).
		MarkOutputProducer("reverse")

	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if g.StartingExecutor() != "upper" {
		t.Fatalf("StartingExecutor = %q", g.StartingExecutor())
	}
	if !g.IsOutputProducer("reverse") {
		t.Fatal("reverse should be an output producer")
	}
	edges := g.OutgoingEdges("upper")
	if len(edges) != 1 {
		t.Fatalf("len(edges) = %d, want 1", len(edges))
	}
}

func TestSwitchEdgeResolvesFirstMatch(t *testing.T) {
	edge := workflow.SwitchEdge{
		From: "detect",
		Cases: []workflow.SwitchCase{
			{Predicate: func(p any) bool { return p.(bool) }, Target: "remove"},
		},
		Default: "respond",
	}
	if got := edge.Resolve(true); got != "remove" {
		t.Fatalf("Resolve(true) = %q, want remove", got)
	}
	if got := edge.Resolve(false); got != "respond" {
		t.Fatalf("Resolve(false) = %q, want respond", got)
	}
}

func TestFanOutEdgeDefaultsToAllTargets(t *testing.T) {
	edge := workflow.FanOutEdge{From: "start", Targets: []workflow.ExecutorID{"a", "b", "c"}}
	if got := edge.ResolveTargets("anything"); len(got) != 3 {
		t.Fatalf("ResolveTargets = %v, want 3 targets", got)
	}
}

func TestContextStateIsBufferedUntilCommit(t *testing.T) {
	wc := workflow.NewRunContext("exec1", map[workflow.Scope]map[string]any{})
	if _, ok := wc.ReadState("k"); ok {
		t.Fatal("unexpected initial state")
	}
	wc.QueueStateUpdate("k", "v")
	if _, ok := wc.ReadState("k"); ok {
		t.Fatal("buffered write must not be visible before commit")
	}
	effects := wc.Effects()
	if effects.Buffered["exec1"]["k"] != "v" {
		t.Fatalf("Effects().Buffered = %v", effects.Buffered)
	}
}
