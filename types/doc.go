// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package types provides small, dependency-free helpers shared across the
// runtime: generic pointer conversion ([ToPtr], [Deref]) and the aiconv
// subpackage's conversions between [google.golang.org/genai] content and
// the Vertex AI aiplatform protobuf types.
package types
