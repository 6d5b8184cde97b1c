// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package scheduler

import (
	"bytes"
	json "encoding/json/v2"
	"fmt"
	"reflect"

	"github.com/go-a2a/agentflow/message"
	"github.com/go-a2a/agentflow/workflow"
)

// Checkpoint is a serializable snapshot of a run, sufficient to resume
// it from exactly the point it was taken: the queued-for-next-superstep
// messages, every executor's committed state, and any outstanding
// external requests. Grounded on the teacher's EncodeContent/
// DecodeContent round-trip (marshal to JSON, decode into a generic
// value so the payload survives without a concrete Go type,
// then re-marshal into the concrete type on restore), generalized from
// one genai.Content shape to any registered payload type.
type Checkpoint struct {
	Status      Status                          `json:"status"`
	NextQueue   []checkpointedEnvelope          `json:"nextQueue"`
	Committed   map[string]scopedState          `json:"committed"`   // keyed by ExecutorID
	Outstanding map[string]checkpointedPayload  `json:"outstanding"` // keyed by request id
	HaltNext    bool                            `json:"haltNext"`
	OutputsYet  bool                            `json:"outputsYet"`
}

type scopedState map[string]map[string]checkpointedPayload // scope -> key -> value

type checkpointedEnvelope struct {
	Source  string              `json:"source"`
	Target  string              `json:"target"`
	Payload checkpointedPayload `json:"payload"`
}

// checkpointedPayload carries a payload's TypeID alongside its
// generic JSON form, so [Resume] can look the concrete type up in a
// [message.Registry] and re-marshal into it.
type checkpointedPayload struct {
	Type  message.TypeID `json:"type"`
	Value any            `json:"value"`
}

// Checkpoint captures r's current snapshot. It must only be called
// between supersteps (i.e. from an observer consuming the event stream
// between yields), never concurrently with a dispatch in progress.
func (r *Run) Checkpoint() (*Checkpoint, error) {
	return checkpointRun(r.inner)
}

func checkpointRun(r *run) (*Checkpoint, error) {
	cp := &Checkpoint{
		Status:      r.status,
		Committed:   make(map[string]scopedState, len(r.committed)),
		Outstanding: make(map[string]checkpointedPayload, len(r.outstanding)),
		HaltNext:    r.haltNext,
		OutputsYet:  r.outputsYet,
	}

	for _, qe := range r.nextQueue {
		payload, err := encodePayload(qe.env.Payload)
		if err != nil {
			return nil, fmt.Errorf("scheduler: checkpoint: encoding queued message: %w", err)
		}
		cp.NextQueue = append(cp.NextQueue, checkpointedEnvelope{
			Source:  qe.env.Source,
			Target:  qe.env.Target,
			Payload: payload,
		})
	}

	for execID, scopes := range r.committed {
		ss := make(scopedState, len(scopes))
		for scope, kv := range scopes {
			encoded := make(map[string]checkpointedPayload, len(kv))
			for k, v := range kv {
				payload, err := encodePayload(v)
				if err != nil {
					return nil, fmt.Errorf("scheduler: checkpoint: encoding state %s/%s/%s: %w", execID, scope, k, err)
				}
				encoded[k] = payload
			}
			ss[string(scope)] = encoded
		}
		cp.Committed[string(execID)] = ss
	}

	for id, ext := range r.outstanding {
		payload, err := encodePayload(ext.Payload)
		if err != nil {
			return nil, fmt.Errorf("scheduler: checkpoint: encoding external request %s: %w", id, err)
		}
		cp.Outstanding[id] = payload
	}

	return cp, nil
}

// Resume rebuilds a [Run] from a [Checkpoint] against graph, decoding
// every payload via reg (typically [message.Default]). The returned
// Run's event stream, started by calling [Scheduler.Resume], continues
// scheduling from the checkpointed superstep boundary as if stream had
// never stopped.
func Resume(graph *workflow.Graph, opts Options, cp *Checkpoint, reg *message.Registry) (*Run, error) {
	r := newRun(graph, opts)
	r.status = cp.Status
	r.haltNext = cp.HaltNext
	r.outputsYet = cp.OutputsYet

	for _, qe := range cp.NextQueue {
		payload, err := decodePayload(reg, qe.Payload)
		if err != nil {
			return nil, fmt.Errorf("scheduler: resume: decoding queued message to %q: %w", qe.Target, err)
		}
		r.nextQueue = append(r.nextQueue, queuedEnvelope{env: message.New(qe.Source, qe.Target, payload)})
	}

	for execIDStr, scopes := range cp.Committed {
		execID := workflow.ExecutorID(execIDStr)
		ss := make(map[workflow.Scope]map[string]any, len(scopes))
		for scope, kv := range scopes {
			decoded := make(map[string]any, len(kv))
			for k, v := range kv {
				payload, err := decodePayload(reg, v)
				if err != nil {
					return nil, fmt.Errorf("scheduler: resume: decoding state %s/%s/%s: %w", execID, scope, k, err)
				}
				decoded[k] = payload
			}
			ss[workflow.Scope(scope)] = decoded
		}
		r.committed[execID] = ss
	}

	for id, v := range cp.Outstanding {
		payload, err := decodePayload(reg, v)
		if err != nil {
			return nil, fmt.Errorf("scheduler: resume: decoding external request %s: %w", id, err)
		}
		r.outstanding[id] = workflow.ExternalRequest{ID: id, Payload: payload}
	}

	return &Run{inner: r}, nil
}

func encodePayload(v any) (checkpointedPayload, error) {
	var buf bytes.Buffer
	if err := json.MarshalWrite(&buf, v); err != nil {
		return checkpointedPayload{}, err
	}
	var generic any
	if err := json.UnmarshalRead(bytes.NewReader(buf.Bytes()), &generic); err != nil {
		return checkpointedPayload{}, err
	}
	return checkpointedPayload{Type: message.TypeIDOf(v), Value: generic}, nil
}

func decodePayload(reg *message.Registry, p checkpointedPayload) (any, error) {
	t, ok := reg.Lookup(p.Type)
	if !ok {
		return nil, fmt.Errorf("message: no type registered for TypeID %q", p.Type)
	}

	var buf bytes.Buffer
	if err := json.MarshalWrite(&buf, p.Value); err != nil {
		return nil, err
	}

	ptr := reflect.New(t)
	if err := json.UnmarshalRead(bytes.NewReader(buf.Bytes()), ptr.Interface()); err != nil {
		return nil, err
	}
	return ptr.Elem().Interface(), nil
}
