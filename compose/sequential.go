// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package compose

import (
	"fmt"

	"github.com/go-a2a/agentflow/message"
	"github.com/go-a2a/agentflow/session"
	"github.com/go-a2a/agentflow/workflow"
)

// Sequential builds a [workflow.Graph] that runs participants one after
// another, each one's reply appended to the [Turn] before it is handed
// to the next. The last participant is the sole output producer: a
// Sequential composition yields exactly once, the accumulated [Turn]
// ending with the final participant's reply.
func Sequential(name string, participants ...*Participant) (*workflow.Graph, error) {
	if len(participants) == 0 {
		return nil, fmt.Errorf("compose: Sequential %q: at least one participant is required", name)
	}

	b := workflow.NewBuilder(name)
	last := len(participants) - 1

	for i, p := range participants {
		p := p
		isLast := i == last
		b.AddExecutor(p.ID, func() workflow.Executor {
			return newAgentExecutor(p, []message.TypeID{turnType}, func(wc *workflow.Context, t Turn, reply session.ChatMessage) {
				next := t.append(reply)
				if isLast {
					wc.YieldOutput(next)
					return
				}
				wc.SendMessage(next)
			})
		})
		if !isLast {
			b.AddEdge(workflow.DirectEdge{From: p.ID, To: participants[i+1].ID})
		}
	}

	b.WithStartingExecutor(participants[0].ID)
	b.MarkOutputProducer(participants[last].ID)

	return b.Build()
}
