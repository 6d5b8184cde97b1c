// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package orchestration

import (
	"context"
	"sync"
)

// Bus is an in-process, named-topic publish/subscribe channel.
// Grounded on the teacher's agent/parallel_agents.go MergeAgentRun,
// which fans multiple agent runs' events into one channel guarded by a
// context-cancellation select; Bus generalizes the same
// channel-plus-context idiom from "many producers, one consumer" to
// "one producer, many topic subscribers", the shape an actor runtime
// broadcasting Group/Speak messages needs.
type Bus struct {
	mu          sync.Mutex
	subscribers map[string][]chan any
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{subscribers: make(map[string][]chan any)}
}

// Subscribe registers a new subscriber to topic and returns its
// delivery channel plus an unsubscribe function. The channel is
// buffered so a slow subscriber doesn't stall Publish; a subscriber
// that falls behind anyway drops messages rather than block the bus,
// the same backpressure trade-off MergeAgentRun's unbuffered channel
// makes explicit via its ctx.Done() select.
func (b *Bus) Subscribe(topic string) (<-chan any, func()) {
	ch := make(chan any, 32)

	b.mu.Lock()
	b.subscribers[topic] = append(b.subscribers[topic], ch)
	b.mu.Unlock()

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.subscribers[topic]
		for i, c := range subs {
			if c == ch {
				b.subscribers[topic] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
	}
	return ch, unsubscribe
}

// Publish delivers msg to every current subscriber of topic. Delivery
// to each subscriber is attempted independently: a full subscriber
// channel drops msg for that subscriber rather than blocking delivery
// to the others, and ctx cancellation aborts the remaining deliveries.
func (b *Bus) Publish(ctx context.Context, topic string, msg any) {
	b.mu.Lock()
	subs := append([]chan any(nil), b.subscribers[topic]...)
	b.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- msg:
		case <-ctx.Done():
			return
		default:
		}
	}
}
