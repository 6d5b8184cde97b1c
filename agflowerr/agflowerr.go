// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package agflowerr defines the runtime's error taxonomy.
//
// Every error the runtime raises belongs to one of a small set of kinds
// (RoutingError, ConfigurationError, HandlerFault, ExternalServiceFault,
// CancellationObserved, DurableStateConflict, SerializationError). Each
// kind is a distinct Go type so callers can branch with [errors.As] (or
// [KindOf]) instead of matching on message text. The package defines no
// sentinel values: [errors.Is] matches only the same error value, and the
// kinds that carry a cause expose it through Unwrap.
package agflowerr

import (
	"errors"
	"fmt"
)

// Kind identifies which of the seven error taxonomies an error belongs to.
type Kind string

const (
	KindRouting              Kind = "routing"
	KindConfiguration        Kind = "configuration"
	KindHandlerFault         Kind = "handler_fault"
	KindExternalServiceFault Kind = "external_service_fault"
	KindCancellationObserved Kind = "cancellation_observed"
	KindDurableStateConflict Kind = "durable_state_conflict"
	KindSerialization        Kind = "serialization"
)

// RoutingError reports an unregistered executor, a mismatched type on a
// directed send, or an unroutable message with no default target.
type RoutingError struct {
	Reason string
}

func NewRoutingError(format string, a ...any) *RoutingError {
	return &RoutingError{Reason: fmt.Sprintf(format, a...)}
}

func (e *RoutingError) Error() string { return "routing error: " + e.Reason }

func (e *RoutingError) Kind() Kind { return KindRouting }

// ConfigurationError reports a build/construction-time invariant
// violation: duplicate state keys, a TTL signal delay over the bound,
// a mixed session discipline, an invalid handoff registration, or a
// name mismatch at agent registration.
type ConfigurationError struct {
	Reason string
}

func NewConfigurationError(format string, a ...any) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, a...)}
}

func (e *ConfigurationError) Error() string { return "configuration error: " + e.Reason }

func (e *ConfigurationError) Kind() Kind { return KindConfiguration }

// HandlerFault wraps a fault raised by an executor or a provider hook.
// The scheduler surfaces it as an ExecutorFailedEvent followed by a
// WorkflowFailedEvent; it never crashes the scheduler itself.
type HandlerFault struct {
	ExecutorID string
	Cause      error
}

func NewHandlerFault(executorID string, cause error) *HandlerFault {
	return &HandlerFault{ExecutorID: executorID, Cause: cause}
}

func (e *HandlerFault) Error() string {
	return fmt.Sprintf("handler fault in %q: %v", e.ExecutorID, e.Cause)
}

func (e *HandlerFault) Kind() Kind { return KindHandlerFault }

func (e *HandlerFault) Unwrap() error { return e.Cause }

// ExternalServiceFault wraps a fault raised by a chat client or a
// storage backend. Providers are notified with this error before it
// propagates to the caller.
type ExternalServiceFault struct {
	Service string
	Cause   error
}

func NewExternalServiceFault(service string, cause error) *ExternalServiceFault {
	return &ExternalServiceFault{Service: service, Cause: cause}
}

func (e *ExternalServiceFault) Error() string {
	return fmt.Sprintf("external service fault (%s): %v", e.Service, e.Cause)
}

func (e *ExternalServiceFault) Kind() Kind { return KindExternalServiceFault }

func (e *ExternalServiceFault) Unwrap() error { return e.Cause }

// CancellationObserved reports caller-driven cancellation; the run ends
// Cancelled rather than Failed.
type CancellationObserved struct {
	Cause error
}

func NewCancellationObserved(cause error) *CancellationObserved {
	return &CancellationObserved{Cause: cause}
}

func (e *CancellationObserved) Error() string {
	return fmt.Sprintf("cancellation observed: %v", e.Cause)
}

func (e *CancellationObserved) Kind() Kind { return KindCancellationObserved }

func (e *CancellationObserved) Unwrap() error { return e.Cause }

// DurableStateConflict reports an interaction with a durable entity
// whose state was deleted by TTL eviction. It is surfaced as
// AgentNotRegistered only when the agent name itself is no longer
// registered; otherwise the entity simply starts fresh.
type DurableStateConflict struct {
	AgentName string
	SessionKey string
}

func NewAgentNotRegistered(agentName, sessionKey string) *DurableStateConflict {
	return &DurableStateConflict{AgentName: agentName, SessionKey: sessionKey}
}

func (e *DurableStateConflict) Error() string {
	return fmt.Sprintf("agent %q not registered (session %q)", e.AgentName, e.SessionKey)
}

func (e *DurableStateConflict) Kind() Kind { return KindDurableStateConflict }

// SerializationError reports a session deserialize call that received a
// non-object JSON payload or a shape mismatch (both conversationId and
// storeState present, or neither).
type SerializationError struct {
	Reason string
}

func NewSerializationError(format string, a ...any) *SerializationError {
	return &SerializationError{Reason: fmt.Sprintf(format, a...)}
}

func (e *SerializationError) Error() string { return "serialization error: " + e.Reason }

func (e *SerializationError) Kind() Kind { return KindSerialization }

// KindOf reports the [Kind] of err if it is (or wraps) one of this
// package's error types, and ok=false otherwise.
func KindOf(err error) (kind Kind, ok bool) {
	var k interface{ Kind() Kind }
	if errors.As(err, &k) {
		return k.Kind(), true
	}
	return "", false
}
