// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package telemetry wires OpenTelemetry tracing and metrics into the
// scheduler and durable-entity hot paths: one span per superstep, one
// span per durable Run, and counters for quiescence and TTL-eviction
// events.
//
// Grounded on the `nevindra-oasis` and `vanducng-goclaw` examples' OTel
// stacks — specifically nevindra-oasis/observer's tracer/meter
// instrument shape (a small Instruments struct of counters/histograms
// built once against the global providers, span-wrapped calls recording
// status + duration), adapted here from per-LLM-call spans to
// per-superstep and per-durable-Run spans.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const scopeName = "github.com/go-a2a/agentflow"

// Instruments bundles every counter/histogram the scheduler and durable
// entity record against, built once against the global
// TracerProvider/MeterProvider (set up by the host, e.g. via
// go.opentelemetry.io/otel/sdk; defaults to the no-op backend when the
// host configures none, matching how nevindra-oasis's observer package
// falls back silently if Init() is never called).
type Instruments struct {
	Tracer trace.Tracer

	Supersteps      metric.Int64Counter
	SuperstepMillis metric.Float64Histogram
	Quiescences     metric.Int64Counter

	DurableRuns      metric.Int64Counter
	DurableRunMillis metric.Float64Histogram
	TTLEvictions     metric.Int64Counter
}

// New builds Instruments against the current global OTel providers.
func New() (*Instruments, error) {
	meter := otel.Meter(scopeName)

	supersteps, err := meter.Int64Counter("agentflow.scheduler.supersteps",
		metric.WithDescription("number of supersteps dispatched"))
	if err != nil {
		return nil, err
	}
	superstepMillis, err := meter.Float64Histogram("agentflow.scheduler.superstep_duration_ms",
		metric.WithDescription("wall-clock duration of one superstep, in milliseconds"))
	if err != nil {
		return nil, err
	}
	quiescences, err := meter.Int64Counter("agentflow.scheduler.quiescences",
		metric.WithDescription("number of times a run reached quiescence"))
	if err != nil {
		return nil, err
	}
	durableRuns, err := meter.Int64Counter("agentflow.durable.runs",
		metric.WithDescription("number of durable entity Run invocations"))
	if err != nil {
		return nil, err
	}
	durableRunMillis, err := meter.Float64Histogram("agentflow.durable.run_duration_ms",
		metric.WithDescription("wall-clock duration of one durable Run invocation, in milliseconds"))
	if err != nil {
		return nil, err
	}
	ttlEvictions, err := meter.Int64Counter("agentflow.durable.ttl_evictions",
		metric.WithDescription("number of durable entities deleted by TTL eviction"))
	if err != nil {
		return nil, err
	}

	return &Instruments{
		Tracer:           otel.Tracer(scopeName),
		Supersteps:       supersteps,
		SuperstepMillis:  superstepMillis,
		Quiescences:      quiescences,
		DurableRuns:      durableRuns,
		DurableRunMillis: durableRunMillis,
		TTLEvictions:     ttlEvictions,
	}, nil
}

// StartSuperstep opens a span for one scheduler superstep. Call the
// returned func with the outcome once the superstep completes.
func (inst *Instruments) StartSuperstep(ctx context.Context, workflowName string, step int) (context.Context, func(err error)) {
	if inst == nil {
		return ctx, func(error) {}
	}

	ctx, span := inst.Tracer.Start(ctx, "scheduler.superstep", trace.WithAttributes(
		attribute.String("workflow.name", workflowName),
		attribute.Int("superstep", step),
	))
	start := time.Now()

	return ctx, func(err error) {
		durationMs := float64(time.Since(start).Milliseconds())
		attrs := metric.WithAttributes(attribute.String("workflow.name", workflowName))
		inst.Supersteps.Add(ctx, 1, attrs)
		inst.SuperstepMillis.Record(ctx, durationMs, attrs)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

// RecordQuiescence increments the quiescence counter for workflowName.
func (inst *Instruments) RecordQuiescence(ctx context.Context, workflowName string) {
	if inst == nil {
		return
	}
	inst.Quiescences.Add(ctx, 1, metric.WithAttributes(attribute.String("workflow.name", workflowName)))
}

// StartDurableRun opens a span for one durable entity Run invocation.
func (inst *Instruments) StartDurableRun(ctx context.Context, agentName, sessionKey string) (context.Context, func(err error)) {
	if inst == nil {
		return ctx, func(error) {}
	}

	ctx, span := inst.Tracer.Start(ctx, "durable.run", trace.WithAttributes(
		attribute.String("durable.agent_name", agentName),
		attribute.String("durable.session_key", sessionKey),
	))
	start := time.Now()

	return ctx, func(err error) {
		durationMs := float64(time.Since(start).Milliseconds())
		attrs := metric.WithAttributes(attribute.String("durable.agent_name", agentName))
		inst.DurableRuns.Add(ctx, 1, attrs)
		inst.DurableRunMillis.Record(ctx, durationMs, attrs)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

// RecordTTLEviction increments the TTL-eviction counter for agentName.
func (inst *Instruments) RecordTTLEviction(ctx context.Context, agentName string) {
	if inst == nil {
		return
	}
	inst.TTLEvictions.Add(ctx, 1, metric.WithAttributes(attribute.String("durable.agent_name", agentName)))
}
