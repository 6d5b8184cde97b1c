// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package workflow

// Edge is a static routing rule between registered executors. It is a
// closed sum type — DirectEdge, FanOutEdge, FanInEdge, SwitchEdge are
// its only members — sealed via the unexported isEdge method, the same
// small-sealed-interface idiom the teacher uses for its capability
// types (Tool, Model), applied here to a routing rule instead.
type Edge interface {
	isEdge()

	// Source returns the ExecutorID this edge routes from. FanInEdge has
	// multiple sources and returns "".
	Source() ExecutorID
}

// DirectEdge unconditionally routes every message from Source to
// Target.
type DirectEdge struct {
	From ExecutorID
	To   ExecutorID
}

func (e DirectEdge) isEdge() {}

func (e DirectEdge) Source() ExecutorID { return e.From }

// Assigner computes which of |targets| indices should receive payload.
// It must be pure and deterministic (§4.2, and Open Question #2 in
// DESIGN.md resolves this as a hard requirement rather than an
// implementation suggestion, so the same workflow run produces the same
// routing under both cooperative and parallel dispatch).
type Assigner func(payload any, targetCount int) []int

// FanOutEdge routes from Source to a subset (default: all) of Targets,
// chosen by Assigner.
type FanOutEdge struct {
	From     ExecutorID
	Targets  []ExecutorID
	Assigner Assigner // nil means "all targets"
}

func (e FanOutEdge) isEdge() {}

func (e FanOutEdge) Source() ExecutorID { return e.From }

// ResolveTargets applies Assigner (or the "all targets" default) to
// payload.
func (e FanOutEdge) ResolveTargets(payload any) []ExecutorID {
	if e.Assigner == nil {
		return e.Targets
	}
	indices := e.Assigner(payload, len(e.Targets))
	out := make([]ExecutorID, 0, len(indices))
	for _, i := range indices {
		if i >= 0 && i < len(e.Targets) {
			out = append(out, e.Targets[i])
		}
	}
	return out
}

// JoinPolicy decides when a FanInEdge releases its buffered batch to
// Target. The default policy releases once one message has arrived from
// every declared Source within or before the current superstep
// boundary (§4.2 point 5).
type JoinPolicy func(received map[ExecutorID]bool, sources []ExecutorID) bool

// DefaultJoinPolicy implements the spec's default: release once every
// source has contributed at least one message.
func DefaultJoinPolicy(received map[ExecutorID]bool, sources []ExecutorID) bool {
	for _, s := range sources {
		if !received[s] {
			return false
		}
	}
	return true
}

// FanInEdge buffers one message per Source and releases the accumulated
// batch to Target, ordered by Sources' declaration order, once Join is
// satisfied. Open Question #1 (DESIGN.md) resolves a heterogeneous-payload
// fan-in as a batch ([]any in Sources order), never a merged message.
type FanInEdge struct {
	Sources []ExecutorID
	Target  ExecutorID
	Join    JoinPolicy // nil means DefaultJoinPolicy
}

func (e FanInEdge) isEdge() {}

func (e FanInEdge) Source() ExecutorID { return "" }

func (e FanInEdge) join() JoinPolicy {
	if e.Join != nil {
		return e.Join
	}
	return DefaultJoinPolicy
}

// SwitchCase pairs a pure, deterministic Predicate with the Target it
// routes to when the predicate matches.
type SwitchCase struct {
	Predicate func(payload any) bool
	Target    ExecutorID
}

// SwitchEdge evaluates Cases in declaration order and routes to the
// first match's Target, or to Default if none match (§4.2 point 4).
// Predicates must be pure and deterministic, same requirement as
// FanOutEdge's Assigner.
type SwitchEdge struct {
	From    ExecutorID
	Cases   []SwitchCase
	Default ExecutorID
}

func (e SwitchEdge) isEdge() {}

func (e SwitchEdge) Source() ExecutorID { return e.From }

// Resolve evaluates Cases against payload and returns the winning
// target.
func (e SwitchEdge) Resolve(payload any) ExecutorID {
	for _, c := range e.Cases {
		if c.Predicate(payload) {
			return c.Target
		}
	}
	return e.Default
}
