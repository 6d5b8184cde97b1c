// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package compose

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-a2a/agentflow/message"
	"github.com/go-a2a/agentflow/session"
	"github.com/go-a2a/agentflow/workflow"
)

// handoffToolPrefix is the synthesized per-peer tool name prefix a
// participant calls to transfer the conversation: spec.md §4.5 declares
// one "handoff_to_<targetId>(reason?)" tool per declared handoff edge,
// not a single transfer tool taking a target-name argument.
const handoffToolPrefix = "handoff_to_"

func handoffToolName(target workflow.ExecutorID) string {
	return handoffToolPrefix + string(target)
}

// Handoff builds a [workflow.Graph] where every participant may either
// answer directly (ending the run, since every participant is an output
// producer) or call one of its synthesized handoff_to_<target> tools to
// route the conversation to a named peer. Unlike [Sequential]/
// [Concurrent], the next hop isn't static: it is decided per-turn by
// the model's own tool call, read back via [Turn.Route] and dispatched
// through a [workflow.SwitchEdge].
func Handoff(name string, start *Participant, participants ...*Participant) (*workflow.Graph, error) {
	if start == nil {
		return nil, fmt.Errorf("compose: Handoff %q: start participant is required", name)
	}
	if len(participants) == 0 {
		return nil, fmt.Errorf("compose: Handoff %q: at least one participant is required", name)
	}

	all := append([]*Participant{start}, participants...)

	b := workflow.NewBuilder(name)
	b.WithStartingExecutor(start.ID)

	for _, p := range all {
		p := p
		targets := peersOf(all, p.ID)
		tools := handoffTools(targets)

		b.AddExecutor(p.ID, func() workflow.Executor {
			return newHandoffExecutor(p, targets, tools, func(wc *workflow.Context, t Turn, appended []session.ChatMessage, route string) {
				next := t
				for _, m := range appended {
					next = next.append(m)
				}
				next.Route = route
				if route == "" {
					wc.YieldOutput(next)
					return
				}
				wc.SendMessage(next)
			})
		})
		b.MarkOutputProducer(p.ID)

		cases := make([]workflow.SwitchCase, 0, len(targets))
		for _, target := range targets {
			target := target
			cases = append(cases, workflow.SwitchCase{
				Target: target,
				Predicate: func(payload any) bool {
					t, ok := payload.(Turn)
					return ok && t.Route == string(target)
				},
			})
		}
		// Default routes back to the sender itself: a Turn with an empty
		// Route never reaches this SwitchEdge (the handler yields output
		// instead of sending), so Default only matters if a future Route
		// value names a target outside targets, which Resolve then sends
		// harmlessly back to p rather than dropping it.
		b.AddEdge(workflow.SwitchEdge{From: p.ID, Cases: cases, Default: p.ID})
	}

	return b.Build()
}

func peersOf(all []*Participant, self workflow.ExecutorID) []workflow.ExecutorID {
	out := make([]workflow.ExecutorID, 0, len(all)-1)
	for _, p := range all {
		if p.ID != self {
			out = append(out, p.ID)
		}
	}
	return out
}

// handoffTools builds one handoff_to_<target> tool per target, each
// taking an optional "reason" argument, per spec.md §4.5.
func handoffTools(targets []workflow.ExecutorID) []session.Tool {
	tools := make([]session.Tool, 0, len(targets))
	for _, target := range targets {
		tools = append(tools, session.Tool{
			Name:        handoffToolName(target),
			Description: fmt.Sprintf("Transfer the conversation to %s when it is better suited to answer.", target),
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"reason": map[string]any{
						"type":        "string",
						"description": "Why the conversation is being transferred.",
					},
				},
			},
		})
	}
	return tools
}

// newHandoffExecutor is [newAgentExecutor]'s Handoff-specific sibling:
// it adds this participant's handoff_to_<target> tools to the per-run
// options, then inspects the reply for a call to one of them instead of
// always continuing down a fixed edge.
func newHandoffExecutor(p *Participant, targets []workflow.ExecutorID, tools []session.Tool, onReply func(wc *workflow.Context, t Turn, appended []session.ChatMessage, route string)) *workflow.BaseExecutor {
	return workflow.NewExecutor(p.ID, []message.TypeID{turnType}, []message.TypeID{turnType},
		func(ctx context.Context, wc *workflow.Context, envelope message.Envelope) error {
			t, ok := envelope.Payload.(Turn)
			if !ok {
				return fmt.Errorf("compose: handoff participant %q: unexpected payload %T", p.ID, envelope.Payload)
			}

			perRun := session.AgentOptions{Tools: tools}
			resp, err := session.RunPipeline(ctx, p.Agent, p.Session, perRun, t.Messages)
			if err != nil {
				return fmt.Errorf("compose: handoff participant %q: %w", p.ID, err)
			}
			if len(resp.Messages) == 0 {
				return fmt.Errorf("compose: handoff participant %q: agent returned no messages", p.ID)
			}
			reply := resp.Messages[len(resp.Messages)-1]

			route, call := findHandoffCall(reply, targets)
			if route == "" {
				onReply(wc, t, []session.ChatMessage{reply}, "")
				return nil
			}

			// Synthesize the tool-result message the teacher's
			// TransferToAgent tool never needs to (it mutates
			// ToolContext.Actions directly instead of returning a
			// model-visible result), since this runtime routes purely
			// through message content rather than an out-of-band
			// actions struct.
			result := session.ChatMessage{
				Role: session.RoleTool,
				Contents: []session.ContentPart{
					session.FunctionResultPart{CallID: call.CallID, Value: "Transferred."},
				},
			}

			onReply(wc, t, []session.ChatMessage{reply, result}, route)
			return nil
		})
}

// findHandoffCall scans reply for a call to one of targets'
// handoff_to_<target> [session.FunctionCallPart]s and returns the
// target id and the call itself, or "" if reply contains no such call.
func findHandoffCall(reply session.ChatMessage, targets []workflow.ExecutorID) (string, session.FunctionCallPart) {
	for _, c := range reply.Contents {
		fc, ok := c.(session.FunctionCallPart)
		if !ok || !strings.HasPrefix(fc.Name, handoffToolPrefix) {
			continue
		}
		for _, target := range targets {
			if fc.Name == handoffToolName(target) {
				return string(target), fc
			}
		}
	}
	return "", session.FunctionCallPart{}
}
