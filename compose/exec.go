// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package compose

import (
	"context"
	"fmt"

	"github.com/go-a2a/agentflow/message"
	"github.com/go-a2a/agentflow/session"
	"github.com/go-a2a/agentflow/workflow"
)

var (
	turnType         = message.TypeIDFor[Turn]()
	contributionType = message.TypeIDFor[Contribution]()
)

// newAgentExecutor builds the [workflow.Executor] every composition
// shape uses to run one [Participant]: decode the incoming [Turn], run
// [session.RunPipeline] against p's own session, and hand the resulting
// reply to onReply to decide how the turn continues. onReply runs
// inside the handler's superstep, so it may call wc.SendMessage,
// wc.YieldOutput or both. outputTypes declares what onReply may emit
// (Turn for every shape but Concurrent, which emits a Contribution per
// participant).
func newAgentExecutor(p *Participant, outputTypes []message.TypeID, onReply func(wc *workflow.Context, t Turn, reply session.ChatMessage)) *workflow.BaseExecutor {
	return workflow.NewExecutor(p.ID, []message.TypeID{turnType}, outputTypes,
		func(ctx context.Context, wc *workflow.Context, envelope message.Envelope) error {
			t, ok := envelope.Payload.(Turn)
			if !ok {
				return fmt.Errorf("compose: participant %q: unexpected payload %T", p.ID, envelope.Payload)
			}

			resp, err := session.RunPipeline(ctx, p.Agent, p.Session, session.AgentOptions{}, t.Messages)
			if err != nil {
				return fmt.Errorf("compose: participant %q: %w", p.ID, err)
			}
			if len(resp.Messages) == 0 {
				return fmt.Errorf("compose: participant %q: agent returned no messages", p.ID)
			}
			reply := resp.Messages[len(resp.Messages)-1]

			onReply(wc, t, reply)
			return nil
		})
}
