// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package orchestration is an alternative, actor-style backing for
// group-chat compositions, built around a named-topic [Bus] instead of
// a [workflow.Graph]: one [ManagerActor] decides who speaks next and
// when the conversation is done, and communicates purely by publishing
// [InputTask]/[Group]/[Speak]/[Result] messages rather than through
// declared graph edges. The package has no per-participant actor type;
// a participant is whatever subscriber on the topic answers a [Speak]
// addressed to it. Use this package instead of
// compose.GroupChat when callers need to observe orchestration over a
// pub/sub channel (an HTTP handler polling an [AgentResponseHandle],
// a second manager mirroring the same topic) rather than driving a
// scheduler run end to end.
package orchestration
