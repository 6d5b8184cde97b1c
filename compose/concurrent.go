// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package compose

import (
	"context"
	"fmt"
	"sort"

	"github.com/go-a2a/agentflow/message"
	"github.com/go-a2a/agentflow/session"
	"github.com/go-a2a/agentflow/workflow"
)

const concurrentFanInID = workflow.ExecutorID("__fan_in__")

// Aggregator joins one round's per-participant [Contribution]s into the
// final [Turn] a [Concurrent] graph yields as output. base is the
// incoming Turn every participant answered; contributions are ordered
// by participant declaration order regardless of completion order.
type Aggregator func(base Turn, contributions []Contribution) Turn

// defaultAggregator appends each participant's reply, in declaration
// order, after base's existing messages: spec.md §4.5's fan-in default
// when no aggregator is supplied.
func defaultAggregator(base Turn, contributions []Contribution) Turn {
	messages := make([]session.ChatMessage, 0, len(base.Messages)+len(contributions))
	messages = append(messages, base.Messages...)
	for _, c := range contributions {
		messages = append(messages, c.Message)
	}
	return Turn{Messages: messages}
}

// ConcurrentOption configures a [Concurrent] graph at construction time.
type ConcurrentOption func(*concurrentConfig)

type concurrentConfig struct {
	aggregator Aggregator
}

// WithAggregator installs a custom [Aggregator], replacing the default
// "append every reply in declaration order" join: spec.md §6's
// buildConcurrent(agents, aggregator?, name?) names this as an optional
// constructor argument.
func WithAggregator(agg Aggregator) ConcurrentOption {
	return func(c *concurrentConfig) { c.aggregator = agg }
}

// Concurrent builds a [workflow.Graph] that sends the same incoming
// [Turn] to every participant, runs them independently, and joins their
// replies into one [Turn] once every participant has answered, via
// aggregator (or [defaultAggregator] if none is supplied via
// [WithAggregator]). Contributions reach the aggregator in participant
// declaration order, regardless of which participant happened to finish
// first ([workflow.FanInEdge]'s ordered-batch guarantee, §4.2 point 5).
func Concurrent(name string, participants []*Participant, opts ...ConcurrentOption) (*workflow.Graph, error) {
	if len(participants) == 0 {
		return nil, fmt.Errorf("compose: Concurrent %q: at least one participant is required", name)
	}

	cfg := concurrentConfig{aggregator: defaultAggregator}
	for _, opt := range opts {
		opt(&cfg)
	}

	b := workflow.NewBuilder(name)

	start := workflow.NewExecutor("__start__", []message.TypeID{turnType}, []message.TypeID{turnType},
		func(_ context.Context, wc *workflow.Context, envelope message.Envelope) error {
			wc.SendMessage(envelope.Payload)
			return nil
		})
	b.AddExecutor(start.ID(), func() workflow.Executor { return start })
	b.WithStartingExecutor(start.ID())

	participantIDs := ids(participants)
	b.AddEdge(workflow.FanOutEdge{From: start.ID(), Targets: participantIDs})

	for _, p := range participants {
		p := p
		b.AddExecutor(p.ID, func() workflow.Executor {
			return newAgentExecutor(p, []message.TypeID{contributionType}, func(wc *workflow.Context, t Turn, reply session.ChatMessage) {
				wc.SendMessage(Contribution{ParticipantID: string(p.ID), Base: t, Message: reply})
			})
		})
	}

	b.AddEdge(workflow.FanInEdge{Sources: participantIDs, Target: concurrentFanInID})

	order := make(map[workflow.ExecutorID]int, len(participantIDs))
	for i, id := range participantIDs {
		order[id] = i
	}

	fanIn := workflow.NewExecutor(concurrentFanInID, []message.TypeID{contributionType}, []message.TypeID{turnType},
		func(_ context.Context, wc *workflow.Context, envelope message.Envelope) error {
			batch, ok := envelope.Payload.([]any)
			if !ok {
				return fmt.Errorf("compose: Concurrent %q: fan-in expected a batch, got %T", name, envelope.Payload)
			}

			contributions := make([]Contribution, 0, len(batch))
			for _, item := range batch {
				c, ok := item.(Contribution)
				if !ok {
					return fmt.Errorf("compose: Concurrent %q: fan-in batch element %T is not a Contribution", name, item)
				}
				contributions = append(contributions, c)
			}
			sort.SliceStable(contributions, func(i, j int) bool {
				return order[workflow.ExecutorID(contributions[i].ParticipantID)] < order[workflow.ExecutorID(contributions[j].ParticipantID)]
			})

			joined := cfg.aggregator(contributions[0].Base, contributions)
			wc.YieldOutput(joined)
			return nil
		})
	b.AddExecutor(fanIn.ID(), func() workflow.Executor { return fanIn })
	b.MarkOutputProducer(fanIn.ID())

	return b.Build()
}
