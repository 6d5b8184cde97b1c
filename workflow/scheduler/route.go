// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package scheduler

import (
	"github.com/go-a2a/agentflow/agflowerr"
	"github.com/go-a2a/agentflow/message"
	"github.com/go-a2a/agentflow/workflow"
)

// routedMessage is one payload emitted by a handler during the current
// superstep, still awaiting the route step's resolution of which
// executor(s) receive it.
type routedMessage struct {
	source  workflow.ExecutorID
	target  workflow.ExecutorID // explicit destination, "" if graph-routed
	payload any
}

// declaredInputTypes resolves the input TypeIDs an executor declares,
// backed by the run's own memoized executor cache so an explicit-target
// type check never materializes a second, throwaway instance of a
// stateful executor (e.g. a GroupChat hostExecutor). The bool result is
// false when id names no registered executor, in which case route
// leaves the "unregistered executor" RoutingError to dispatch, which
// already raises it (scheduler.go's executorFor).
type declaredInputTypes func(id workflow.ExecutorID) (types []message.TypeID, ok bool)

// route resolves every message a superstep's handlers sent into
// concrete envelopes for the next superstep's queue, implementing
// §4.2's routing rules in order:
//
//  1. An explicit target (set via Context.SendMessage's optional
//     targetID) short-circuits the graph's outgoing edges entirely,
//     subject to the target executor handling the payload's TypeId.
//  2. DirectEdge enqueues unconditionally.
//  3. FanOutEdge enqueues to every target its Assigner selects (or all
//     targets, if unset).
//  4. SwitchEdge enqueues to the first matching Case's Target, or to
//     Default.
//  5. FanInEdge buffers the payload under its source and releases an
//     ordered batch to Target once its JoinPolicy is satisfied.
//
// A message whose source has no outgoing edges and no explicit target
// is unroutable and is returned in unrouted rather than silently
// dropped.
func route(graph *workflow.Graph, fanInBuffers map[workflow.ExecutorID]*fanInBuffer, inputTypes declaredInputTypes, outbound []routedMessage) (routed []message.Envelope, unrouted []routedMessage, err error) {
	for _, m := range outbound {
		if m.target != "" {
			env := message.New(string(m.source), string(m.target), m.payload)
			if types, ok := inputTypes(m.target); ok && !acceptsType(types, env.Type) {
				return nil, nil, agflowerr.NewRoutingError(
					"explicit send from %q to %q: target does not declare input type %q", m.source, m.target, env.Type)
			}
			routed = append(routed, env)
			continue
		}

		edges := graph.OutgoingEdges(m.source)
		if len(edges) == 0 {
			unrouted = append(unrouted, m)
			continue
		}

		routedAny := false
		for _, edge := range edges {
			switch e := edge.(type) {
			case workflow.DirectEdge:
				routed = append(routed, message.New(string(m.source), string(e.To), m.payload))
				routedAny = true

			case workflow.FanOutEdge:
				for _, target := range e.ResolveTargets(m.payload) {
					routed = append(routed, message.New(string(m.source), string(target), m.payload))
					routedAny = true
				}

			case workflow.SwitchEdge:
				target := e.Resolve(m.payload)
				routed = append(routed, message.New(string(m.source), string(target), m.payload))
				routedAny = true

			case workflow.FanInEdge:
				released := applyFanIn(fanInBuffers, e, m.source, m.payload)
				routedAny = true
				if released != nil {
					routed = append(routed, message.New(string(m.source), string(e.Target), released))
				}
			}
		}

		if !routedAny {
			unrouted = append(unrouted, m)
		}
	}

	return routed, unrouted, nil
}

// applyFanIn records payload as source's contribution to the FanInEdge
// targeting e.Target, and returns the released batch (ordered by
// e.Sources) once e's join policy is satisfied, or nil if the edge is
// still waiting on further sources.
func applyFanIn(buffers map[workflow.ExecutorID]*fanInBuffer, e workflow.FanInEdge, source workflow.ExecutorID, payload any) []any {
	buf, ok := buffers[e.Target]
	if !ok {
		buf = newFanInBuffer()
		buffers[e.Target] = buf
	}
	buf.received[source] = true
	buf.payloads[source] = payload

	join := e.Join
	if join == nil {
		join = workflow.DefaultJoinPolicy
	}
	if !join(buf.received, e.Sources) {
		return nil
	}

	batch := make([]any, 0, len(e.Sources))
	for _, s := range e.Sources {
		batch = append(batch, buf.payloads[s])
	}

	delete(buffers, e.Target)
	return batch
}

// acceptsType reports whether id is one of types, the target-side half
// of spec.md §4.2 point 1's "subject to its handling the payload's
// TypeId". An executor declaring no input types (a pure external-input
// sink, per spec.md §3) accepts anything sent directly at it.
func acceptsType(types []message.TypeID, id message.TypeID) bool {
	if len(types) == 0 {
		return true
	}
	for _, t := range types {
		if t == id {
			return true
		}
	}
	return false
}
