// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package compose builds ready-to-run [workflow.Graph]s out of
// [session.Agent] participants for the four standard agent-composition
// shapes: [Sequential] (a straight-line chain), [Concurrent] (fan-out,
// independent replies, fan-in), [Handoff] (agent-directed transfer via a
// synthesized tool call), and [GroupChat] (a host executor picking the
// next speaker via a pluggable [GroupChatManager]).
//
// Every shape is built the same way: one [workflow.Builder], one
// [workflow.Executor] per participant wrapping a call to
// [session.RunPipeline], and edges or explicit targets carrying a
// [Turn] (the conversation accumulated so far) between them. None of
// this needs its own scheduler or executor kind — the graphs returned
// here run on the same [scheduler.Scheduler] as any other workflow.
package compose
