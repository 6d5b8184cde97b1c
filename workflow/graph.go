// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package workflow

import (
	"fmt"

	"github.com/go-a2a/agentflow/agflowerr"
)

// Factory creates a fresh Executor instance. The scheduler calls it at
// most once per run, on first use of the executor id, matching §4.3
// dispatch's "ensure the target executor instance exists (create via
// its factory on first use)".
type Factory func() Executor

// Graph is the immutable compiled form of a workflow: a starting
// executor, every registered executor factory, the outgoing edges per
// node, and the set of nodes allowed to yield a workflow output. Built
// only via [NewBuilder]; once Build succeeds it never changes.
type Graph struct {
	name              string
	startingExecutor  ExecutorID
	executors         map[ExecutorID]Factory
	outgoingEdges     map[ExecutorID][]Edge
	outputProducers   map[ExecutorID]bool
	fanInEdgesByTarget map[ExecutorID][]FanInEdge
}

// Name returns the workflow's name.
func (g *Graph) Name() string { return g.name }

// StartingExecutor returns the entry-point ExecutorID external input is
// queued into.
func (g *Graph) StartingExecutor() ExecutorID { return g.startingExecutor }

// NewExecutor materializes a fresh Executor instance for id.
func (g *Graph) NewExecutor(id ExecutorID) (Executor, bool) {
	f, ok := g.executors[id]
	if !ok {
		return nil, false
	}
	return f(), true
}

// HasExecutor reports whether id names a registered executor.
func (g *Graph) HasExecutor(id ExecutorID) bool {
	_, ok := g.executors[id]
	return ok
}

// OutgoingEdges returns the edges declared from source, in declaration
// order.
func (g *Graph) OutgoingEdges(source ExecutorID) []Edge {
	return g.outgoingEdges[source]
}

// FanInEdgesInto returns the FanInEdges whose Target is target.
func (g *Graph) FanInEdgesInto(target ExecutorID) []FanInEdge {
	return g.fanInEdgesByTarget[target]
}

// IsOutputProducer reports whether id may call Context.YieldOutput.
func (g *Graph) IsOutputProducer(id ExecutorID) bool {
	return g.outputProducers[id]
}

// Builder incrementally assembles a [Graph], validating invariants at
// [Builder.Build] time (every edge endpoint names a registered
// executor, exactly one starting executor is set) rather than letting
// an inconsistent graph run. Grounded on the teacher's functional
// construction idiom (config.Option-style incremental assembly),
// applied to graph wiring instead of struct fields.
type Builder struct {
	name             string
	startingExecutor ExecutorID
	executors        map[ExecutorID]Factory
	outgoingEdges    map[ExecutorID][]Edge
	outputProducers  map[ExecutorID]bool
}

// NewBuilder starts a new graph builder named name.
func NewBuilder(name string) *Builder {
	return &Builder{
		name:            name,
		executors:       make(map[ExecutorID]Factory),
		outgoingEdges:   make(map[ExecutorID][]Edge),
		outputProducers: make(map[ExecutorID]bool),
	}
}

// AddExecutor registers a factory for id. Registering the same id twice
// replaces the factory.
func (b *Builder) AddExecutor(id ExecutorID, factory Factory) *Builder {
	b.executors[id] = factory
	return b
}

// WithStartingExecutor sets the entry-point executor.
func (b *Builder) WithStartingExecutor(id ExecutorID) *Builder {
	b.startingExecutor = id
	return b
}

// AddEdge appends one outgoing edge. For a [FanInEdge], which has no
// single source, it is indexed by every declared source as well as by
// its target for join-buffer lookups.
func (b *Builder) AddEdge(edge Edge) *Builder {
	switch e := edge.(type) {
	case FanInEdge:
		for _, src := range e.Sources {
			b.outgoingEdges[src] = append(b.outgoingEdges[src], edge)
		}
	default:
		b.outgoingEdges[edge.Source()] = append(b.outgoingEdges[edge.Source()], edge)
	}
	return b
}

// MarkOutputProducer allows id to call Context.YieldOutput.
func (b *Builder) MarkOutputProducer(id ExecutorID) *Builder {
	b.outputProducers[id] = true
	return b
}

// Build validates and freezes the graph. Every edge endpoint must name
// a registered executor, and exactly one starting executor must be
// set; violations raise an *agflowerr.ConfigurationError rather than
// producing a graph the scheduler would fail on later.
func (b *Builder) Build() (*Graph, error) {
	if b.startingExecutor == "" {
		return nil, agflowerr.NewConfigurationError("workflow %q: no starting executor set", b.name)
	}
	if !b.hasExecutor(b.startingExecutor) {
		return nil, agflowerr.NewConfigurationError("workflow %q: starting executor %q is not registered", b.name, b.startingExecutor)
	}

	fanInByTarget := make(map[ExecutorID][]FanInEdge)

	for source, edges := range b.outgoingEdges {
		if source != "" && !b.hasExecutor(source) {
			return nil, agflowerr.NewConfigurationError("workflow %q: edge source %q is not registered", b.name, source)
		}
		for _, edge := range edges {
			if err := b.validateEdgeTargets(edge); err != nil {
				return nil, err
			}
			if fi, ok := edge.(FanInEdge); ok {
				fanInByTarget[fi.Target] = append(fanInByTarget[fi.Target], fi)
			}
		}
	}

	for id := range b.outputProducers {
		if !b.hasExecutor(id) {
			return nil, agflowerr.NewConfigurationError("workflow %q: output producer %q is not registered", b.name, id)
		}
	}

	// AddEdge indexes a FanInEdge once per declared source, so collapse
	// back down to one entry per distinct edge before storing it.
	for target, edges := range fanInByTarget {
		fanInByTarget[target] = dedupeFanIn(edges)
	}

	return &Graph{
		name:               b.name,
		startingExecutor:   b.startingExecutor,
		executors:          b.executors,
		outgoingEdges:      b.outgoingEdges,
		outputProducers:    b.outputProducers,
		fanInEdgesByTarget: fanInByTarget,
	}, nil
}

// dedupeFanIn removes duplicate FanInEdge entries that AddEdge indexed
// once per source.
func dedupeFanIn(edges []FanInEdge) []FanInEdge {
	out := make([]FanInEdge, 0, len(edges))
	seenTargets := make(map[ExecutorID]bool)
	for _, e := range edges {
		if seenTargets[e.Target] {
			continue
		}
		seenTargets[e.Target] = true
		out = append(out, e)
	}
	return out
}

func (b *Builder) hasExecutor(id ExecutorID) bool {
	_, ok := b.executors[id]
	return ok
}

func (b *Builder) validateEdgeTargets(edge Edge) error {
	switch e := edge.(type) {
	case DirectEdge:
		if !b.hasExecutor(e.To) {
			return agflowerr.NewConfigurationError("workflow %q: direct edge target %q is not registered", b.name, e.To)
		}
	case FanOutEdge:
		for _, t := range e.Targets {
			if !b.hasExecutor(t) {
				return agflowerr.NewConfigurationError("workflow %q: fan-out target %q is not registered", b.name, t)
			}
		}
	case FanInEdge:
		for _, s := range e.Sources {
			if !b.hasExecutor(s) {
				return agflowerr.NewConfigurationError("workflow %q: fan-in source %q is not registered", b.name, s)
			}
		}
		if !b.hasExecutor(e.Target) {
			return agflowerr.NewConfigurationError("workflow %q: fan-in target %q is not registered", b.name, e.Target)
		}
	case SwitchEdge:
		if !b.hasExecutor(e.Default) {
			return agflowerr.NewConfigurationError("workflow %q: switch default %q is not registered", b.name, e.Default)
		}
		for _, c := range e.Cases {
			if !b.hasExecutor(c.Target) {
				return agflowerr.NewConfigurationError("workflow %q: switch case target %q is not registered", b.name, c.Target)
			}
		}
	default:
		return fmt.Errorf("workflow: unknown edge type %T", edge)
	}
	return nil
}
