// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package message

// Envelope carries one payload between executors. The payload is opaque
// to the scheduler; it is inspected only by the routing rules (to test
// predicates/assigners) and by the target executor's declared input
// types.
type Envelope struct {
	// Payload is the message body. It is never nil for a well-formed
	// envelope produced by routing.
	Payload any

	// Source is the ExecutorID that emitted this envelope.
	Source string

	// Target is the explicit destination ExecutorID, if the sender
	// addressed a specific executor rather than letting the graph's
	// outgoing edges decide. Empty when unset.
	Target string

	// Type is the payload's TypeID, computed once at send time so
	// routing and checkpointing never need to re-derive it via
	// reflection.
	Type TypeID
}

// New builds an Envelope for payload, sent from source and optionally
// addressed directly at target ("" means "route via the graph's
// outgoing edges").
func New(source string, target string, payload any) Envelope {
	return Envelope{
		Payload: payload,
		Source:  source,
		Target:  target,
		Type:    TypeIDOf(payload),
	}
}
