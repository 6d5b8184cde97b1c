// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package chatclient adapts the model package's provider-specific
// [model.Model] implementations (Claude, Gemini) to the session
// package's provider-agnostic [session.ChatClient] and
// [session.StreamingChatClient] contracts.
//
// [Client] wraps any [model.Model] (or [model.GenerativeModel] for
// streaming) and handles the two-way conversion between
// [session.ChatMessage]'s content-part union and genai's
// role/Content/Part shape: text, function calls, and function results
// translate directly; media parts round-trip through genai.Blob/
// genai.FileData the way the teacher's types/aiconv package converts
// between genai and Vertex AI's wire representations.
package chatclient
